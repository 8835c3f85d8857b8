package ports

import (
	"context"

	"github.com/yamdb/reviews-api/internal/core/access"
	"github.com/yamdb/reviews-api/internal/core/domain"
)

// ReviewList is one page of reviews.
type ReviewList struct {
	Items []*domain.Review
	PageInfo
}

// CommentList is one page of comments.
type CommentList struct {
	Items []*domain.Comment
	PageInfo
}

// ReviewService manages reviews of a title. Mutations of an existing review
// are checked against the caller with the object-level access rule.
type ReviewService interface {
	List(ctx context.Context, titleID string, params ListParams) (*ReviewList, error)
	Get(ctx context.Context, titleID, reviewID string) (*domain.Review, error)
	Create(ctx context.Context, caller access.Caller, titleID, text string, score int) (*domain.Review, error)
	Update(ctx context.Context, caller access.Caller, titleID, reviewID string, text *string, score *int) (*domain.Review, error)
	Delete(ctx context.Context, caller access.Caller, titleID, reviewID string) error
}

// CommentService manages comments on a review.
type CommentService interface {
	List(ctx context.Context, titleID, reviewID string, params ListParams) (*CommentList, error)
	Get(ctx context.Context, titleID, reviewID, commentID string) (*domain.Comment, error)
	Create(ctx context.Context, caller access.Caller, titleID, reviewID, text string) (*domain.Comment, error)
	Update(ctx context.Context, caller access.Caller, titleID, reviewID, commentID, text string) (*domain.Comment, error)
	Delete(ctx context.Context, caller access.Caller, titleID, reviewID, commentID string) error
}
