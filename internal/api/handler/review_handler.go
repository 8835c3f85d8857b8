package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/yamdb/reviews-api/internal/api/metrics"
	"github.com/yamdb/reviews-api/internal/core/ports"
)

// ReviewHandler serves /titles/:title_id/reviews.
type ReviewHandler struct {
	service ports.ReviewService
}

func NewReviewHandler(service ports.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

type createReviewRequest struct {
	Text  string `json:"text"`
	Score int    `json:"score"`
}

type updateReviewRequest struct {
	Text  *string `json:"text"`
	Score *int    `json:"score"`
}

// List handles GET /titles/:title_id/reviews.
//
// @Summary      List reviews of a title
// @Tags         reviews
// @Produce      json
// @Param        title_id  path      string  true   "Title id"
// @Param        page      query     int     false  "Page number (1-based)"
// @Param        limit     query     int     false  "Page size (max 100)"
// @Success      200       {object}  pageResponse[domain.Review]
// @Failure      404       {object}  map[string]string
// @Router       /titles/{title_id}/reviews [get]
func (h *ReviewHandler) List(c echo.Context) error {
	params, err := listParams(c)
	if err != nil {
		return err
	}

	list, err := h.service.List(c.Request().Context(), c.Param("title_id"), params)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPage(list.Items, list.PageInfo))
}

// Get handles GET /titles/:title_id/reviews/:review_id.
//
// @Summary      Get a review
// @Tags         reviews
// @Produce      json
// @Param        title_id   path      string  true  "Title id"
// @Param        review_id  path      string  true  "Review id"
// @Success      200        {object}  domain.Review
// @Failure      404        {object}  map[string]string
// @Router       /titles/{title_id}/reviews/{review_id} [get]
func (h *ReviewHandler) Get(c echo.Context) error {
	review, err := h.service.Get(c.Request().Context(), c.Param("title_id"), c.Param("review_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, review)
}

// Create handles POST /titles/:title_id/reviews. The author is the caller.
//
// @Summary      Review a title
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        title_id  path      string               true  "Title id"
// @Param        body      body      createReviewRequest  true  "Text and score (1-10)"
// @Success      201       {object}  domain.Review
// @Failure      400       {object}  map[string][]string
// @Failure      401       {object}  map[string]string
// @Failure      404       {object}  map[string]string
// @Router       /titles/{title_id}/reviews [post]
func (h *ReviewHandler) Create(c echo.Context) error {
	var req createReviewRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	review, err := h.service.Create(c.Request().Context(), caller(c), c.Param("title_id"), req.Text, req.Score)
	if err != nil {
		return err
	}

	metrics.ReviewsCreatedTotal.WithLabelValues(strconv.Itoa(review.Score)).Inc()
	return c.JSON(http.StatusCreated, review)
}

// Update handles PATCH /titles/:title_id/reviews/:review_id.
//
// @Summary      Edit a review
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        title_id   path      string               true  "Title id"
// @Param        review_id  path      string               true  "Review id"
// @Param        body       body      updateReviewRequest  true  "Fields to change"
// @Success      200        {object}  domain.Review
// @Failure      400        {object}  map[string][]string
// @Failure      403        {object}  map[string]string
// @Failure      404        {object}  map[string]string
// @Router       /titles/{title_id}/reviews/{review_id} [patch]
func (h *ReviewHandler) Update(c echo.Context) error {
	var req updateReviewRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	review, err := h.service.Update(c.Request().Context(), caller(c),
		c.Param("title_id"), c.Param("review_id"), req.Text, req.Score)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, review)
}

// Delete handles DELETE /titles/:title_id/reviews/:review_id.
//
// @Summary      Delete a review
// @Tags         reviews
// @Security     BearerAuth
// @Param        title_id   path  string  true  "Title id"
// @Param        review_id  path  string  true  "Review id"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /titles/{title_id}/reviews/{review_id} [delete]
func (h *ReviewHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), caller(c), c.Param("title_id"), c.Param("review_id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// CommentHandler serves /titles/:title_id/reviews/:review_id/comments.
type CommentHandler struct {
	service ports.CommentService
}

func NewCommentHandler(service ports.CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

type commentRequest struct {
	Text string `json:"text"`
}

// List handles GET .../comments.
//
// @Summary      List comments on a review
// @Tags         comments
// @Produce      json
// @Param        title_id   path      string  true   "Title id"
// @Param        review_id  path      string  true   "Review id"
// @Param        page       query     int     false  "Page number (1-based)"
// @Param        limit      query     int     false  "Page size (max 100)"
// @Success      200        {object}  pageResponse[domain.Comment]
// @Failure      404        {object}  map[string]string
// @Router       /titles/{title_id}/reviews/{review_id}/comments [get]
func (h *CommentHandler) List(c echo.Context) error {
	params, err := listParams(c)
	if err != nil {
		return err
	}

	list, err := h.service.List(c.Request().Context(), c.Param("title_id"), c.Param("review_id"), params)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPage(list.Items, list.PageInfo))
}

// Get handles GET .../comments/:comment_id.
//
// @Summary      Get a comment
// @Tags         comments
// @Produce      json
// @Param        title_id    path      string  true  "Title id"
// @Param        review_id   path      string  true  "Review id"
// @Param        comment_id  path      string  true  "Comment id"
// @Success      200         {object}  domain.Comment
// @Failure      404         {object}  map[string]string
// @Router       /titles/{title_id}/reviews/{review_id}/comments/{comment_id} [get]
func (h *CommentHandler) Get(c echo.Context) error {
	comment, err := h.service.Get(c.Request().Context(),
		c.Param("title_id"), c.Param("review_id"), c.Param("comment_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comment)
}

// Create handles POST .../comments.
//
// @Summary      Comment on a review
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        title_id   path      string          true  "Title id"
// @Param        review_id  path      string          true  "Review id"
// @Param        body       body      commentRequest  true  "Comment text"
// @Success      201        {object}  domain.Comment
// @Failure      400        {object}  map[string][]string
// @Failure      401        {object}  map[string]string
// @Failure      404        {object}  map[string]string
// @Router       /titles/{title_id}/reviews/{review_id}/comments [post]
func (h *CommentHandler) Create(c echo.Context) error {
	var req commentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.service.Create(c.Request().Context(), caller(c),
		c.Param("title_id"), c.Param("review_id"), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, comment)
}

// Update handles PATCH .../comments/:comment_id.
//
// @Summary      Edit a comment
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        title_id    path      string          true  "Title id"
// @Param        review_id   path      string          true  "Review id"
// @Param        comment_id  path      string          true  "Comment id"
// @Param        body        body      commentRequest  true  "Comment text"
// @Success      200         {object}  domain.Comment
// @Failure      400         {object}  map[string][]string
// @Failure      403         {object}  map[string]string
// @Failure      404         {object}  map[string]string
// @Router       /titles/{title_id}/reviews/{review_id}/comments/{comment_id} [patch]
func (h *CommentHandler) Update(c echo.Context) error {
	var req commentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment, err := h.service.Update(c.Request().Context(), caller(c),
		c.Param("title_id"), c.Param("review_id"), c.Param("comment_id"), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comment)
}

// Delete handles DELETE .../comments/:comment_id.
//
// @Summary      Delete a comment
// @Tags         comments
// @Security     BearerAuth
// @Param        title_id    path  string  true  "Title id"
// @Param        review_id   path  string  true  "Review id"
// @Param        comment_id  path  string  true  "Comment id"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /titles/{title_id}/reviews/{review_id}/comments/{comment_id} [delete]
func (h *CommentHandler) Delete(c echo.Context) error {
	err := h.service.Delete(c.Request().Context(), caller(c),
		c.Param("title_id"), c.Param("review_id"), c.Param("comment_id"))
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
