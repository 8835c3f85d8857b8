package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yamdb/reviews-api/internal/core/domain"
	"github.com/yamdb/reviews-api/internal/core/ports"
)

const collectionTitles = "titles"

type TitleRepository struct {
	col *mongo.Collection
}

func NewTitleRepository(db *mongo.Database) *TitleRepository {
	return &TitleRepository{col: db.Collection(collectionTitles)}
}

type titleDoc struct {
	ID          string    `bson:"_id"`
	Name        string    `bson:"name"`
	Year        int       `bson:"year"`
	Description string    `bson:"description,omitempty"`
	Category    string    `bson:"category,omitempty"`
	Genres      []string  `bson:"genres"`
	CreatedAt   time.Time `bson:"created_at"`
}

func (d titleDoc) toDomain() *domain.Title {
	genres := d.Genres
	if genres == nil {
		genres = []string{}
	}
	return &domain.Title{
		ID:           d.ID,
		Name:         d.Name,
		Year:         d.Year,
		Description:  d.Description,
		CategorySlug: d.Category,
		GenreSlugs:   genres,
		CreatedAt:    d.CreatedAt.UTC(),
	}
}

func (r *TitleRepository) Create(ctx context.Context, t *domain.Title) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := titleDoc{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Description: t.Description,
		Category:    t.CategorySlug,
		Genres:      t.GenreSlugs,
		CreatedAt:   t.CreatedAt.UTC(),
	}
	if doc.Genres == nil {
		doc.Genres = []string{}
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert title: %w", err)
	}
	return nil
}

func (r *TitleRepository) FindByID(ctx context.Context, id string) (*domain.Title, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc titleDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTitleNotFound
		}
		return nil, fmt.Errorf("find title: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *TitleRepository) Update(ctx context.Context, id string, patch domain.TitlePatch) (*domain.Title, error) {
	set := bson.M{}
	unset := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Year != nil {
		set["year"] = *patch.Year
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.CategorySlug != nil {
		if *patch.CategorySlug == "" {
			unset["category"] = ""
		} else {
			set["category"] = *patch.CategorySlug
		}
	}
	if patch.GenreSlugs != nil {
		set["genres"] = *patch.GenreSlugs
	}

	if len(set) == 0 && len(unset) == 0 {
		return r.FindByID(ctx, id)
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc titleDoc
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTitleNotFound
		}
		return nil, fmt.Errorf("update title: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *TitleRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete title: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTitleNotFound
	}
	return nil
}

func (r *TitleRepository) List(ctx context.Context, f domain.TitleFilter, params ports.ListParams) ([]*domain.Title, int64, error) {
	filter := bson.M{}
	if f.CategorySlug != "" {
		filter["category"] = f.CategorySlug
	}
	if f.GenreSlug != "" {
		filter["genres"] = f.GenreSlug
	}
	if f.Name != "" {
		filter["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Name), Options: "i"}
	}
	if f.Year != 0 {
		filter["year"] = f.Year
	}

	docs, total, err := findPage[titleDoc](ctx, r.col, filter, bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}, params)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*domain.Title, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, total, nil
}

func (r *TitleRepository) ClearCategory(ctx context.Context, slug string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.UpdateMany(ctx, bson.M{"category": slug}, bson.M{"$unset": bson.M{"category": ""}})
	if err != nil {
		return fmt.Errorf("clear category: %w", err)
	}
	return nil
}

func (r *TitleRepository) RemoveGenre(ctx context.Context, slug string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.UpdateMany(ctx, bson.M{"genres": slug}, bson.M{"$pull": bson.M{"genres": slug}})
	if err != nil {
		return fmt.Errorf("remove genre: %w", err)
	}
	return nil
}

// EnsureIndexes creates the indexes backing the listing filters.
func (r *TitleRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "genres", Value: 1}}},
		{Keys: bson.D{{Key: "year", Value: 1}}},
		{Keys: bson.D{{Key: "name", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
