package domain

import "time"

// TaxonKind distinguishes the two slug-addressed classifications of a title.
type TaxonKind string

const (
	KindCategory TaxonKind = "category"
	KindGenre    TaxonKind = "genre"
)

// Taxon is a named, slug-addressed classification: a category or a genre.
type Taxon struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Title is a catalogued work that can be reviewed.
type Title struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Year         int       `json:"year"`
	Description  string    `json:"description"`
	CategorySlug string    `json:"category,omitempty"`
	GenreSlugs   []string  `json:"genre"`
	CreatedAt    time.Time `json:"created_at"`
}

// TitlePatch carries a partial title update. Nil fields are left untouched.
// A non-nil CategorySlug pointing at "" clears the category.
type TitlePatch struct {
	Name         *string
	Year         *int
	Description  *string
	CategorySlug *string
	GenreSlugs   *[]string
}

// TitleFilter narrows title listings. Zero values disable a criterion.
type TitleFilter struct {
	CategorySlug string
	GenreSlug    string
	Name         string // case-insensitive substring
	Year         int
}
