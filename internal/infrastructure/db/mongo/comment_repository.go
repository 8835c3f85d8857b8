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

const collectionComments = "comments"

type CommentRepository struct {
	col *mongo.Collection
}

func NewCommentRepository(db *mongo.Database) *CommentRepository {
	return &CommentRepository{col: db.Collection(collectionComments)}
}

type commentDoc struct {
	ID         string    `bson:"_id"`
	TitleID    string    `bson:"title_id"`
	ReviewID   string    `bson:"review_id"`
	AuthorID   string    `bson:"author_id"`
	AuthorName string    `bson:"author"`
	Text       string    `bson:"text"`
	PubDate    time.Time `bson:"pub_date"`
}

func (d commentDoc) toDomain() *domain.Comment {
	return &domain.Comment{
		ID:         d.ID,
		TitleID:    d.TitleID,
		ReviewID:   d.ReviewID,
		AuthorID:   d.AuthorID,
		AuthorName: d.AuthorName,
		Text:       d.Text,
		PubDate:    d.PubDate.UTC(),
	}
}

func (r *CommentRepository) Create(ctx context.Context, c *domain.Comment) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := commentDoc{
		ID:         c.ID,
		TitleID:    c.TitleID,
		ReviewID:   c.ReviewID,
		AuthorID:   c.AuthorID,
		AuthorName: c.AuthorName,
		Text:       c.Text,
		PubDate:    c.PubDate.UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (r *CommentRepository) FindByID(ctx context.Context, reviewID, id string) (*domain.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc commentDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id, "review_id": reviewID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCommentNotFound
		}
		return nil, fmt.Errorf("find comment: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *CommentRepository) Update(ctx context.Context, id, text string) (*domain.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc commentDoc
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"text": text}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCommentNotFound
		}
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrCommentNotFound
	}
	return nil
}

func (r *CommentRepository) List(ctx context.Context, reviewID string, params ports.ListParams) ([]*domain.Comment, int64, error) {
	docs, total, err := findPage[commentDoc](ctx, r.col, bson.M{"review_id": reviewID},
		bson.D{{Key: "pub_date", Value: 1}, {Key: "_id", Value: 1}}, params)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*domain.Comment, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, total, nil
}

func (r *CommentRepository) DeleteByTitle(ctx context.Context, titleID string) error {
	return r.deleteMany(ctx, bson.M{"title_id": titleID})
}

func (r *CommentRepository) DeleteByReviews(ctx context.Context, reviewIDs []string) error {
	if len(reviewIDs) == 0 {
		return nil
	}
	return r.deleteMany(ctx, bson.M{"review_id": bson.M{"$in": reviewIDs}})
}

func (r *CommentRepository) DeleteByAuthor(ctx context.Context, authorID string) error {
	return r.deleteMany(ctx, bson.M{"author_id": authorID})
}

func (r *CommentRepository) deleteMany(ctx context.Context, filter bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("delete comments: %w", err)
	}
	return nil
}

func (r *CommentRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "review_id", Value: 1}, {Key: "pub_date", Value: 1}}},
		{Keys: bson.D{{Key: "title_id", Value: 1}}},
		{Keys: bson.D{{Key: "author_id", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
