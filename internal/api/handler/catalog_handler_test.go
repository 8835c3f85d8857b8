package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamdb/reviews-api/internal/core/domain"
	"github.com/yamdb/reviews-api/internal/core/ports"
)

type stubTitleService struct {
	ports.TitleService
	lastFilter domain.TitleFilter
	lastParams ports.ListParams
	lastInput  ports.TitleInput
	detail     *ports.TitleDetail
}

func (s *stubTitleService) List(_ context.Context, f domain.TitleFilter, p ports.ListParams) (*ports.TitleList, error) {
	s.lastFilter, s.lastParams = f, p
	return &ports.TitleList{Items: []*ports.TitleDetail{s.detail}, PageInfo: ports.NewPageInfo(1, p)}, nil
}

func (s *stubTitleService) Create(_ context.Context, in ports.TitleInput) (*ports.TitleDetail, error) {
	s.lastInput = in
	return s.detail, nil
}

func (s *stubTitleService) Get(_ context.Context, id string) (*ports.TitleDetail, error) {
	if s.detail == nil || s.detail.ID != id {
		return nil, domain.ErrTitleNotFound
	}
	return s.detail, nil
}

type stubTaxonService struct {
	ports.TaxonService
	deleted string
}

func (s *stubTaxonService) Create(_ context.Context, name, slug string) (*domain.Taxon, error) {
	return &domain.Taxon{Name: name, Slug: slug}, nil
}

func (s *stubTaxonService) Delete(_ context.Context, slug string) error {
	s.deleted = slug
	return nil
}

func sampleDetail() *ports.TitleDetail {
	return &ports.TitleDetail{
		Title: &domain.Title{ID: "t1", Name: "Solaris", Year: 1961},
	}
}

func TestTitleHandler_List_Filters(t *testing.T) {
	e := newTestEcho()
	svc := &stubTitleService{detail: sampleDetail()}
	h := NewTitleHandler(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/?category=books&genre=sci-fi&name=sol&year=1961&limit=500", nil)
	require.NoError(t, h.List(e.NewContext(req, rec)))

	assert.Equal(t, domain.TitleFilter{CategorySlug: "books", GenreSlug: "sci-fi", Name: "sol", Year: 1961}, svc.lastFilter)
	assert.Equal(t, ports.MaxPageLimit, svc.lastParams.Limit)
	assert.Equal(t, 1, svc.lastParams.Page)
}

func TestTitleHandler_List_BadYear(t *testing.T) {
	e := newTestEcho()
	h := NewTitleHandler(&stubTitleService{detail: sampleDetail()})

	req := httptest.NewRequest(http.MethodGet, "/?year=last", nil)
	assert.Error(t, h.List(e.NewContext(req, httptest.NewRecorder())))
}

func TestTitleHandler_Get_NullRatingAndEmptyGenres(t *testing.T) {
	e := newTestEcho()
	h := NewTitleHandler(&stubTitleService{detail: sampleDetail()})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("title_id")
	c.SetParamValues("t1")
	require.NoError(t, h.Get(c))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp["rating"])
	assert.Nil(t, resp["category"])
	assert.Equal(t, []any{}, resp["genre"])
}

func TestTitleHandler_Create_MapsSlugs(t *testing.T) {
	e := newTestEcho()
	svc := &stubTitleService{detail: sampleDetail()}
	h := NewTitleHandler(svc)

	c, rec := jsonContext(e, http.MethodPost, "/", `{"name":"Solaris","year":1961,"category":"books","genre":["sci-fi","drama"]}`)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "books", svc.lastInput.CategorySlug)
	assert.Equal(t, []string{"sci-fi", "drama"}, svc.lastInput.GenreSlugs)
}

func TestTaxonHandler_CreateAndDelete(t *testing.T) {
	e := newTestEcho()
	svc := &stubTaxonService{}
	h := NewTaxonHandler(svc)

	c, rec := jsonContext(e, http.MethodPost, "/", `{"name":"Books","slug":"books"}`)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"name":"Books","slug":"books"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), rec)
	c.SetParamNames("slug")
	c.SetParamValues("books")
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "books", svc.deleted)
}
