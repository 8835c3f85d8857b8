package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yamdb/reviews-api/internal/core/access"
	"github.com/yamdb/reviews-api/internal/core/domain"
	"github.com/yamdb/reviews-api/internal/core/ports"
)

type ReviewService struct {
	titles   ports.TitleRepository
	reviews  ports.ReviewRepository
	comments ports.CommentRepository
	ids      ports.IDGenerator
	logger   zerolog.Logger
}

func NewReviewService(
	titles ports.TitleRepository,
	reviews ports.ReviewRepository,
	comments ports.CommentRepository,
	ids ports.IDGenerator,
	logger zerolog.Logger,
) *ReviewService {
	return &ReviewService{titles: titles, reviews: reviews, comments: comments, ids: ids, logger: logger}
}

func (s *ReviewService) List(ctx context.Context, titleID string, params ports.ListParams) (*ports.ReviewList, error) {
	if _, err := s.titles.FindByID(ctx, titleID); err != nil {
		return nil, err
	}
	params = params.Normalize()
	items, total, err := s.reviews.List(ctx, titleID, params)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return &ports.ReviewList{Items: items, PageInfo: ports.NewPageInfo(total, params)}, nil
}

func (s *ReviewService) Get(ctx context.Context, titleID, reviewID string) (*domain.Review, error) {
	if _, err := s.titles.FindByID(ctx, titleID); err != nil {
		return nil, err
	}
	return s.reviews.FindByID(ctx, titleID, reviewID)
}

func (s *ReviewService) Create(ctx context.Context, caller access.Caller, titleID, text string, score int) (*domain.Review, error) {
	if !caller.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	if _, err := s.titles.FindByID(ctx, titleID); err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	verr := &domain.ValidationError{}
	validateText(verr, text)
	validateScore(verr, score)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	r := &domain.Review{
		ID:         s.ids.NewID(),
		TitleID:    titleID,
		AuthorID:   caller.AccountID,
		AuthorName: caller.Username,
		Text:       text,
		Score:      score,
		PubDate:    time.Now().UTC(),
	}
	if err := s.reviews.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.logger.Info().Str("title_id", titleID).Str("review_id", r.ID).Str("author", caller.Username).Msg("review created")
	return r, nil
}

func (s *ReviewService) Update(ctx context.Context, caller access.Caller, titleID, reviewID string, text *string, score *int) (*domain.Review, error) {
	r, err := s.authorize(ctx, caller, http.MethodPatch, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if text == nil && score == nil {
		return r, nil
	}

	verr := &domain.ValidationError{}
	if text != nil {
		trimmed := strings.TrimSpace(*text)
		text = &trimmed
		validateText(verr, trimmed)
	}
	if score != nil {
		validateScore(verr, *score)
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	updated, err := s.reviews.Update(ctx, r.ID, text, score)
	if err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}
	return updated, nil
}

// Delete removes the review and its comments.
func (s *ReviewService) Delete(ctx context.Context, caller access.Caller, titleID, reviewID string) error {
	r, err := s.authorize(ctx, caller, http.MethodDelete, titleID, reviewID)
	if err != nil {
		return err
	}
	if err := s.comments.DeleteByReviews(ctx, []string{r.ID}); err != nil {
		return fmt.Errorf("delete review comments: %w", err)
	}
	if err := s.reviews.Delete(ctx, r.ID); err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	s.logger.Info().Str("review_id", r.ID).Str("by", caller.Username).Msg("review deleted")
	return nil
}

// authorize locates the review first so a missing review is reported as not
// found before any ownership decision.
func (s *ReviewService) authorize(ctx context.Context, caller access.Caller, method, titleID, reviewID string) (*domain.Review, error) {
	if !caller.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	r, err := s.Get(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if !access.CanAccessObject(caller, access.Reviews, method, r) {
		return nil, domain.ErrForbidden
	}
	return r, nil
}

func validateText(verr *domain.ValidationError, text string) {
	if text == "" {
		verr.Add("text", "this field is required")
	}
}

func validateScore(verr *domain.ValidationError, score int) {
	if score < domain.MinScore || score > domain.MaxScore {
		verr.Add("score", fmt.Sprintf("score must be between %d and %d", domain.MinScore, domain.MaxScore))
	}
}
