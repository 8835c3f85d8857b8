package ports

import (
	"context"

	"github.com/yamdb/reviews-api/internal/core/domain"
)

// ReviewRepository stores reviews. A second review by the same author on the
// same title yields domain.ErrDuplicateReview.
type ReviewRepository interface {
	Create(ctx context.Context, r *domain.Review) error
	// FindByID returns domain.ErrReviewNotFound unless the review exists and
	// belongs to titleID.
	FindByID(ctx context.Context, titleID, id string) (*domain.Review, error)
	Update(ctx context.Context, id string, text *string, score *int) (*domain.Review, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, titleID string, params ListParams) ([]*domain.Review, int64, error)

	// AverageScores returns the mean score per title id. Titles without
	// reviews are absent from the map.
	AverageScores(ctx context.Context, titleIDs []string) (map[string]float64, error)

	DeleteByTitle(ctx context.Context, titleID string) error
	// DeleteByAuthor removes the author's reviews and returns their ids.
	DeleteByAuthor(ctx context.Context, authorID string) ([]string, error)
}

// CommentRepository stores comments.
type CommentRepository interface {
	Create(ctx context.Context, c *domain.Comment) error
	// FindByID returns domain.ErrCommentNotFound unless the comment exists
	// under reviewID.
	FindByID(ctx context.Context, reviewID, id string) (*domain.Comment, error)
	Update(ctx context.Context, id, text string) (*domain.Comment, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, reviewID string, params ListParams) ([]*domain.Comment, int64, error)

	DeleteByTitle(ctx context.Context, titleID string) error
	DeleteByReviews(ctx context.Context, reviewIDs []string) error
	DeleteByAuthor(ctx context.Context, authorID string) error
}
