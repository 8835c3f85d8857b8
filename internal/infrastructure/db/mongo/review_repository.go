package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yamdb/reviews-api/internal/core/domain"
	"github.com/yamdb/reviews-api/internal/core/ports"
)

const collectionReviews = "reviews"

type ReviewRepository struct {
	col *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{col: db.Collection(collectionReviews)}
}

type reviewDoc struct {
	ID         string    `bson:"_id"`
	TitleID    string    `bson:"title_id"`
	AuthorID   string    `bson:"author_id"`
	AuthorName string    `bson:"author"`
	Text       string    `bson:"text"`
	Score      int       `bson:"score"`
	PubDate    time.Time `bson:"pub_date"`
}

func (d reviewDoc) toDomain() *domain.Review {
	return &domain.Review{
		ID:         d.ID,
		TitleID:    d.TitleID,
		AuthorID:   d.AuthorID,
		AuthorName: d.AuthorName,
		Text:       d.Text,
		Score:      d.Score,
		PubDate:    d.PubDate.UTC(),
	}
}

func (r *ReviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := reviewDoc{
		ID:         rv.ID,
		TitleID:    rv.TitleID,
		AuthorID:   rv.AuthorID,
		AuthorName: rv.AuthorName,
		Text:       rv.Text,
		Score:      rv.Score,
		PubDate:    rv.PubDate.UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateReview
		}
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

func (r *ReviewRepository) FindByID(ctx context.Context, titleID, id string) (*domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc reviewDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id, "title_id": titleID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReviewNotFound
		}
		return nil, fmt.Errorf("find review: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ReviewRepository) Update(ctx context.Context, id string, text *string, score *int) (*domain.Review, error) {
	set := bson.M{}
	if text != nil {
		set["text"] = *text
	}
	if score != nil {
		set["score"] = *score
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc reviewDoc
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrReviewNotFound
		}
		return nil, fmt.Errorf("update review: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrReviewNotFound
	}
	return nil
}

func (r *ReviewRepository) List(ctx context.Context, titleID string, params ports.ListParams) ([]*domain.Review, int64, error) {
	docs, total, err := findPage[reviewDoc](ctx, r.col, bson.M{"title_id": titleID},
		bson.D{{Key: "pub_date", Value: -1}, {Key: "_id", Value: 1}}, params)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*domain.Review, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, total, nil
}

// AverageScores groups reviews by title and averages their scores on the
// server.
func (r *ReviewRepository) AverageScores(ctx context.Context, titleIDs []string) (map[string]float64, error) {
	out := make(map[string]float64, len(titleIDs))
	if len(titleIDs) == 0 {
		return out, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"title_id": bson.M{"$in": titleIDs}}}},
		{{Key: "$group", Value: bson.M{"_id": "$title_id", "avg": bson.M{"$avg": "$score"}}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate ratings: %w", err)
	}

	var rows []struct {
		TitleID string  `bson:"_id"`
		Avg     float64 `bson:"avg"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode ratings: %w", err)
	}
	for _, row := range rows {
		out[row.TitleID] = row.Avg
	}
	return out, nil
}

func (r *ReviewRepository) DeleteByTitle(ctx context.Context, titleID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteMany(ctx, bson.M{"title_id": titleID}); err != nil {
		return fmt.Errorf("delete reviews of title: %w", err)
	}
	return nil
}

func (r *ReviewRepository) DeleteByAuthor(ctx context.Context, authorID string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"author_id": authorID}
	cur, err := r.col.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("find reviews of author: %w", err)
	}
	var rows []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode reviews of author: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	if _, err := r.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return nil, fmt.Errorf("delete reviews of author: %w", err)
	}
	return ids, nil
}

// EnsureIndexes creates the unique (title, author) index that rejects a
// second review of the same title by one author.
func (r *ReviewRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "title_id", Value: 1}, {Key: "author_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "author_id", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
