package ports

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// ListParams selects one page of a listing. Page is 1-based.
type ListParams struct {
	Page  int
	Limit int
}

// Normalize clamps the parameters into their valid ranges.
func (p ListParams) Normalize() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

// Skip returns the number of rows preceding the page.
func (p ListParams) Skip() int64 {
	return int64((p.Page - 1) * p.Limit)
}

// PageInfo describes where a page sits in the full result set.
type PageInfo struct {
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// NewPageInfo computes page metadata for total rows under normalized params.
func NewPageInfo(total int64, p ListParams) PageInfo {
	pages := 0
	if p.Limit > 0 {
		pages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return PageInfo{Total: total, Page: p.Page, Limit: p.Limit, TotalPages: pages}
}
