package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yamdb/reviews-api/internal/core/domain"
	"github.com/yamdb/reviews-api/internal/core/ports"
)

const (
	collectionCategories = "categories"
	collectionGenres     = "genres"
)

// TaxonRepository stores categories or genres; the slug is the document id.
type TaxonRepository struct {
	col      *mongo.Collection
	notFound error
}

func NewCategoryRepository(db *mongo.Database) *TaxonRepository {
	return &TaxonRepository{col: db.Collection(collectionCategories), notFound: domain.ErrCategoryNotFound}
}

func NewGenreRepository(db *mongo.Database) *TaxonRepository {
	return &TaxonRepository{col: db.Collection(collectionGenres), notFound: domain.ErrGenreNotFound}
}

type taxonDoc struct {
	Slug string `bson:"_id"`
	Name string `bson:"name"`
}

func (d taxonDoc) toDomain() *domain.Taxon {
	return &domain.Taxon{Name: d.Name, Slug: d.Slug}
}

func (r *TaxonRepository) Create(ctx context.Context, t *domain.Taxon) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, taxonDoc{Slug: t.Slug, Name: t.Name}); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrSlugExists
		}
		return fmt.Errorf("insert %s: %w", r.col.Name(), err)
	}
	return nil
}

func (r *TaxonRepository) FindBySlug(ctx context.Context, slug string) (*domain.Taxon, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc taxonDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": slug}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, r.notFound
		}
		return nil, fmt.Errorf("find %s: %w", r.col.Name(), err)
	}
	return doc.toDomain(), nil
}

// FindBySlugs returns the taxa that exist among slugs; unknown slugs are
// silently absent from the result.
func (r *TaxonRepository) FindBySlugs(ctx context.Context, slugs []string) ([]*domain.Taxon, error) {
	if len(slugs) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": slugs}})
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", r.col.Name(), err)
	}
	var docs []taxonDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.col.Name(), err)
	}

	out := make([]*domain.Taxon, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *TaxonRepository) Delete(ctx context.Context, slug string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": slug})
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.col.Name(), err)
	}
	if res.DeletedCount == 0 {
		return r.notFound
	}
	return nil
}

func (r *TaxonRepository) List(ctx context.Context, params ports.ListParams) ([]*domain.Taxon, int64, error) {
	docs, total, err := findPage[taxonDoc](ctx, r.col, bson.M{}, bson.D{{Key: "name", Value: 1}}, params)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*domain.Taxon, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, total, nil
}

// EnsureIndexes is a no-op beyond the implicit _id index, which already
// enforces slug uniqueness.
func (r *TaxonRepository) EnsureIndexes(context.Context) error { return nil }
