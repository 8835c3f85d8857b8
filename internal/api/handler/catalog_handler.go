package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yamdb/reviews-api/internal/core/domain"
	"github.com/yamdb/reviews-api/internal/core/ports"
)

// TaxonHandler serves one kind of taxon: /categories or /genres.
type TaxonHandler struct {
	service ports.TaxonService
}

func NewTaxonHandler(service ports.TaxonService) *TaxonHandler {
	return &TaxonHandler{service: service}
}

type taxonRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// List handles GET /categories and GET /genres.
//
// @Summary      List categories or genres
// @Tags         catalog
// @Produce      json
// @Param        kind   path      string  true   "categories or genres"
// @Param        page   query     int     false  "Page number (1-based)"
// @Param        limit  query     int     false  "Page size (max 100)"
// @Success      200    {object}  pageResponse[domain.Taxon]
// @Router       /{kind} [get]
func (h *TaxonHandler) List(c echo.Context) error {
	params, err := listParams(c)
	if err != nil {
		return err
	}

	list, err := h.service.List(c.Request().Context(), params)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPage(list.Items, list.PageInfo))
}

// Create handles POST /categories and POST /genres.
//
// @Summary      Create a category or genre
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path      string        true  "categories or genres"
// @Param        body  body      taxonRequest  true  "Name and slug"
// @Success      201   {object}  domain.Taxon
// @Failure      400   {object}  map[string][]string
// @Failure      403   {object}  map[string]string
// @Router       /{kind} [post]
func (h *TaxonHandler) Create(c echo.Context) error {
	var req taxonRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	taxon, err := h.service.Create(c.Request().Context(), req.Name, req.Slug)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, taxon)
}

// Delete handles DELETE /categories/:slug and DELETE /genres/:slug.
//
// @Summary      Delete a category or genre
// @Tags         catalog
// @Security     BearerAuth
// @Param        kind  path  string  true  "categories or genres"
// @Param        slug  path  string  true  "Slug"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /{kind}/{slug} [delete]
func (h *TaxonHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("slug")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// TitleHandler serves /titles.
type TitleHandler struct {
	service ports.TitleService
}

func NewTitleHandler(service ports.TitleService) *TitleHandler {
	return &TitleHandler{service: service}
}

type createTitleRequest struct {
	Name        string   `json:"name"`
	Year        int      `json:"year"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Genre       []string `json:"genre"`
}

type updateTitleRequest struct {
	Name        *string   `json:"name"`
	Year        *int      `json:"year"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	Genre       *[]string `json:"genre"`
}

type titleResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Year        int             `json:"year"`
	Rating      *int            `json:"rating"`
	Description string          `json:"description"`
	Genre       []*domain.Taxon `json:"genre"`
	Category    *domain.Taxon   `json:"category"`
}

func toTitleResponse(d *ports.TitleDetail) titleResponse {
	genres := d.Genres
	if genres == nil {
		genres = []*domain.Taxon{}
	}
	return titleResponse{
		ID:          d.ID,
		Name:        d.Name,
		Year:        d.Year,
		Rating:      d.Rating,
		Description: d.Description,
		Genre:       genres,
		Category:    d.Category,
	}
}

// List handles GET /titles.
//
// @Summary      List titles
// @Tags         titles
// @Produce      json
// @Param        category  query     string  false  "Category slug"
// @Param        genre     query     string  false  "Genre slug"
// @Param        name      query     string  false  "Case-insensitive name fragment"
// @Param        year      query     int     false  "Release year"
// @Param        page      query     int     false  "Page number (1-based)"
// @Param        limit     query     int     false  "Page size (max 100)"
// @Success      200       {object}  pageResponse[titleResponse]
// @Failure      400       {object}  map[string]string
// @Router       /titles [get]
func (h *TitleHandler) List(c echo.Context) error {
	params, err := listParams(c)
	if err != nil {
		return err
	}

	filter := domain.TitleFilter{
		CategorySlug: c.QueryParam("category"),
		GenreSlug:    c.QueryParam("genre"),
		Name:         c.QueryParam("name"),
	}
	if err := echo.QueryParamsBinder(c).Int("year", &filter.Year).BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "year must be an integer")
	}

	list, err := h.service.List(c.Request().Context(), filter, params)
	if err != nil {
		return err
	}

	items := make([]titleResponse, 0, len(list.Items))
	for _, d := range list.Items {
		items = append(items, toTitleResponse(d))
	}
	return c.JSON(http.StatusOK, newPage(items, list.PageInfo))
}

// Get handles GET /titles/:title_id.
//
// @Summary      Get a title
// @Tags         titles
// @Produce      json
// @Param        title_id  path      string  true  "Title id"
// @Success      200       {object}  titleResponse
// @Failure      404       {object}  map[string]string
// @Router       /titles/{title_id} [get]
func (h *TitleHandler) Get(c echo.Context) error {
	detail, err := h.service.Get(c.Request().Context(), c.Param("title_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTitleResponse(detail))
}

// Create handles POST /titles.
//
// @Summary      Create a title
// @Tags         titles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTitleRequest  true  "Title; category and genres by slug"
// @Success      201   {object}  titleResponse
// @Failure      400   {object}  map[string][]string
// @Failure      403   {object}  map[string]string
// @Router       /titles [post]
func (h *TitleHandler) Create(c echo.Context) error {
	var req createTitleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	detail, err := h.service.Create(c.Request().Context(), ports.TitleInput{
		Name:         req.Name,
		Year:         req.Year,
		Description:  req.Description,
		CategorySlug: req.Category,
		GenreSlugs:   req.Genre,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toTitleResponse(detail))
}

// Update handles PATCH /titles/:title_id.
//
// @Summary      Update a title
// @Tags         titles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        title_id  path      string              true  "Title id"
// @Param        body      body      updateTitleRequest  true  "Fields to change"
// @Success      200       {object}  titleResponse
// @Failure      400       {object}  map[string][]string
// @Failure      403       {object}  map[string]string
// @Failure      404       {object}  map[string]string
// @Router       /titles/{title_id} [patch]
func (h *TitleHandler) Update(c echo.Context) error {
	var req updateTitleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	detail, err := h.service.Update(c.Request().Context(), c.Param("title_id"), domain.TitlePatch{
		Name:         req.Name,
		Year:         req.Year,
		Description:  req.Description,
		CategorySlug: req.Category,
		GenreSlugs:   req.Genre,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTitleResponse(detail))
}

// Delete handles DELETE /titles/:title_id.
//
// @Summary      Delete a title
// @Tags         titles
// @Security     BearerAuth
// @Param        title_id  path  string  true  "Title id"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /titles/{title_id} [delete]
func (h *TitleHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("title_id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
