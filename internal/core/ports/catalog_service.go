package ports

import (
	"context"

	"github.com/yamdb/reviews-api/internal/core/domain"
)

// TaxonList is one page of categories or genres.
type TaxonList struct {
	Items []*domain.Taxon
	PageInfo
}

// TaxonService manages one kind of taxon.
type TaxonService interface {
	Kind() domain.TaxonKind
	List(ctx context.Context, params ListParams) (*TaxonList, error)
	Create(ctx context.Context, name, slug string) (*domain.Taxon, error)
	Delete(ctx context.Context, slug string) error
}

// TitleInput carries a new title. Category and genres are referenced by slug.
type TitleInput struct {
	Name         string
	Year         int
	Description  string
	CategorySlug string
	GenreSlugs   []string
}

// TitleDetail is the read view of a title with resolved references.
// Rating is nil when the title has no reviews.
type TitleDetail struct {
	*domain.Title
	Category *domain.Taxon
	Genres   []*domain.Taxon
	Rating   *int
}

// TitleList is one page of titles.
type TitleList struct {
	Items []*TitleDetail
	PageInfo
}

// TitleService manages the catalogue of reviewable works.
type TitleService interface {
	List(ctx context.Context, filter domain.TitleFilter, params ListParams) (*TitleList, error)
	Get(ctx context.Context, id string) (*TitleDetail, error)
	Create(ctx context.Context, in TitleInput) (*TitleDetail, error)
	Update(ctx context.Context, id string, patch domain.TitlePatch) (*TitleDetail, error)
	Delete(ctx context.Context, id string) error
}
