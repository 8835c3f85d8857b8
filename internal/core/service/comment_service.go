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

type CommentService struct {
	titles   ports.TitleRepository
	reviews  ports.ReviewRepository
	comments ports.CommentRepository
	ids      ports.IDGenerator
	logger   zerolog.Logger
}

func NewCommentService(
	titles ports.TitleRepository,
	reviews ports.ReviewRepository,
	comments ports.CommentRepository,
	ids ports.IDGenerator,
	logger zerolog.Logger,
) *CommentService {
	return &CommentService{titles: titles, reviews: reviews, comments: comments, ids: ids, logger: logger}
}

// review resolves the parent chain title -> review.
func (s *CommentService) review(ctx context.Context, titleID, reviewID string) (*domain.Review, error) {
	if _, err := s.titles.FindByID(ctx, titleID); err != nil {
		return nil, err
	}
	return s.reviews.FindByID(ctx, titleID, reviewID)
}

func (s *CommentService) List(ctx context.Context, titleID, reviewID string, params ports.ListParams) (*ports.CommentList, error) {
	if _, err := s.review(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	params = params.Normalize()
	items, total, err := s.comments.List(ctx, reviewID, params)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return &ports.CommentList{Items: items, PageInfo: ports.NewPageInfo(total, params)}, nil
}

func (s *CommentService) Get(ctx context.Context, titleID, reviewID, commentID string) (*domain.Comment, error) {
	if _, err := s.review(ctx, titleID, reviewID); err != nil {
		return nil, err
	}
	return s.comments.FindByID(ctx, reviewID, commentID)
}

func (s *CommentService) Create(ctx context.Context, caller access.Caller, titleID, reviewID, text string) (*domain.Comment, error) {
	if !caller.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	if _, err := s.review(ctx, titleID, reviewID); err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	verr := &domain.ValidationError{}
	validateText(verr, text)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	c := &domain.Comment{
		ID:         s.ids.NewID(),
		TitleID:    titleID,
		ReviewID:   reviewID,
		AuthorID:   caller.AccountID,
		AuthorName: caller.Username,
		Text:       text,
		PubDate:    time.Now().UTC(),
	}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	s.logger.Info().Str("review_id", reviewID).Str("comment_id", c.ID).Str("author", caller.Username).Msg("comment created")
	return c, nil
}

func (s *CommentService) Update(ctx context.Context, caller access.Caller, titleID, reviewID, commentID, text string) (*domain.Comment, error) {
	c, err := s.authorize(ctx, caller, http.MethodPatch, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	verr := &domain.ValidationError{}
	validateText(verr, text)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	updated, err := s.comments.Update(ctx, c.ID, text)
	if err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return updated, nil
}

func (s *CommentService) Delete(ctx context.Context, caller access.Caller, titleID, reviewID, commentID string) error {
	c, err := s.authorize(ctx, caller, http.MethodDelete, titleID, reviewID, commentID)
	if err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, c.ID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	s.logger.Info().Str("comment_id", c.ID).Str("by", caller.Username).Msg("comment deleted")
	return nil
}

func (s *CommentService) authorize(ctx context.Context, caller access.Caller, method, titleID, reviewID, commentID string) (*domain.Comment, error) {
	if !caller.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	c, err := s.Get(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if !access.CanAccessObject(caller, access.Comments, method, c) {
		return nil, domain.ErrForbidden
	}
	return c, nil
}
