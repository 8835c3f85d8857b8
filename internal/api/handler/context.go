package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yamdb/reviews-api/internal/api/middleware"
	"github.com/yamdb/reviews-api/internal/core/access"
	"github.com/yamdb/reviews-api/internal/core/ports"
)

// caller returns the identity resolved by the Auth middleware.
func caller(c echo.Context) access.Caller {
	return middleware.CallerFrom(c)
}

// bindAndValidate decodes the request body into req and runs the struct
// validator on it.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}

// listParams reads the page and limit query parameters.
func listParams(c echo.Context) (ports.ListParams, error) {
	var p ports.ListParams
	err := echo.QueryParamsBinder(c).
		Int("page", &p.Page).
		Int("limit", &p.Limit).
		BindError()
	if err != nil {
		return p, echo.NewHTTPError(http.StatusBadRequest, "page and limit must be integers")
	}
	return p.Normalize(), nil
}

// pageResponse is the envelope of every paginated listing.
type pageResponse[T any] struct {
	Count      int64 `json:"count"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
	Results    []T   `json:"results"`
}

func newPage[T any](items []T, info ports.PageInfo) pageResponse[T] {
	if items == nil {
		items = []T{}
	}
	return pageResponse[T]{
		Count:      info.Total,
		Page:       info.Page,
		Limit:      info.Limit,
		TotalPages: info.TotalPages,
		Results:    items,
	}
}
