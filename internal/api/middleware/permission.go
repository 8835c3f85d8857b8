package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yamdb/reviews-api/internal/api/metrics"
	"github.com/yamdb/reviews-api/internal/core/access"
	"github.com/yamdb/reviews-api/internal/core/domain"
)

// Permission applies the collection-level access rule of res to every
// request. Anonymous callers are asked to authenticate (401); authenticated
// callers without the required role are refused (403).
func Permission(res access.Resource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(ResourceKey, string(res))

			caller := CallerFrom(c)
			if access.CanAccessCollection(caller, res, c.Request().Method) {
				return next(c)
			}

			metrics.AccessDeniedTotal.WithLabelValues(string(res), "collection").Inc()
			if !caller.Authenticated() {
				return echo.NewHTTPError(http.StatusUnauthorized, domain.ErrUnauthenticated.Error())
			}
			return echo.NewHTTPError(http.StatusForbidden, domain.ErrForbidden.Error())
		}
	}
}

// RequireAuthenticated rejects anonymous callers regardless of method.
func RequireAuthenticated() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !CallerFrom(c).Authenticated() {
				return echo.NewHTTPError(http.StatusUnauthorized, domain.ErrUnauthenticated.Error())
			}
			return next(c)
		}
	}
}
