package ports

import (
	"context"

	"github.com/yamdb/reviews-api/internal/core/domain"
)

// TaxonRepository stores one kind of taxon (categories or genres).
// Lookups return notFound-style errors chosen by the implementation's kind;
// a duplicate slug returns domain.ErrSlugExists.
type TaxonRepository interface {
	Create(ctx context.Context, t *domain.Taxon) error
	FindBySlug(ctx context.Context, slug string) (*domain.Taxon, error)
	FindBySlugs(ctx context.Context, slugs []string) ([]*domain.Taxon, error)
	Delete(ctx context.Context, slug string) error
	List(ctx context.Context, params ListParams) ([]*domain.Taxon, int64, error)
}

// TitleRepository stores titles. Missing titles yield domain.ErrTitleNotFound.
type TitleRepository interface {
	Create(ctx context.Context, t *domain.Title) error
	FindByID(ctx context.Context, id string) (*domain.Title, error)
	Update(ctx context.Context, id string, patch domain.TitlePatch) (*domain.Title, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter domain.TitleFilter, params ListParams) ([]*domain.Title, int64, error)

	// ClearCategory unsets the category on every title referencing slug.
	ClearCategory(ctx context.Context, slug string) error
	// RemoveGenre drops slug from the genre list of every title.
	RemoveGenre(ctx context.Context, slug string) error
}
