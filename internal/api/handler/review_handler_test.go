package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamdb/reviews-api/internal/api/middleware"
	"github.com/yamdb/reviews-api/internal/core/access"
	"github.com/yamdb/reviews-api/internal/core/domain"
	"github.com/yamdb/reviews-api/internal/core/ports"
)

type stubReviewService struct {
	ports.ReviewService
	caller access.Caller
	err    error
}

func (s *stubReviewService) Create(_ context.Context, caller access.Caller, titleID, text string, score int) (*domain.Review, error) {
	s.caller = caller
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Review{ID: "r1", TitleID: titleID, AuthorID: caller.AccountID, AuthorName: caller.Username, Text: text, Score: score}, nil
}

func (s *stubReviewService) Delete(_ context.Context, caller access.Caller, titleID, reviewID string) error {
	s.caller = caller
	return s.err
}

type stubCommentService struct {
	ports.CommentService
	text string
}

func (s *stubCommentService) Update(_ context.Context, caller access.Caller, titleID, reviewID, commentID, text string) (*domain.Comment, error) {
	s.text = text
	return &domain.Comment{ID: commentID, AuthorName: caller.Username, Text: text}, nil
}

func TestReviewHandler_Create_UsesCaller(t *testing.T) {
	e := newTestEcho()
	svc := &stubReviewService{}
	h := NewReviewHandler(svc)

	c, rec := jsonContext(e, http.MethodPost, "/", `{"text":"great","score":9}`)
	c.SetParamNames("title_id")
	c.SetParamValues("t1")
	c.Set(middleware.CallerKey, access.Caller{AccountID: "u1", Username: "alice", Role: domain.RoleUser})

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "u1", svc.caller.AccountID)
	assert.JSONEq(t, `{"id":"r1","author":"alice","text":"great","score":9,"pub_date":"0001-01-01T00:00:00Z"}`, rec.Body.String())
}

func TestReviewHandler_Delete_Forbidden(t *testing.T) {
	e := newTestEcho()
	h := NewReviewHandler(&stubReviewService{err: domain.ErrForbidden})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), rec)
	c.SetParamNames("title_id", "review_id")
	c.SetParamValues("t1", "r1")

	assert.ErrorIs(t, h.Delete(c), domain.ErrForbidden)
	assert.Equal(t, 0, rec.Body.Len())
}

func TestCommentHandler_Update(t *testing.T) {
	e := newTestEcho()
	svc := &stubCommentService{}
	h := NewCommentHandler(svc)

	c, rec := jsonContext(e, http.MethodPatch, "/", `{"text":"edited"}`)
	c.SetParamNames("title_id", "review_id", "comment_id")
	c.SetParamValues("t1", "r1", "c1")
	c.Set(middleware.CallerKey, access.Caller{AccountID: "u1", Username: "alice", Role: domain.RoleUser})

	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "edited", svc.text)
}
