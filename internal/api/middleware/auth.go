package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/yamdb/reviews-api/internal/core/access"
	"github.com/yamdb/reviews-api/internal/core/domain"
	"github.com/yamdb/reviews-api/internal/pkg/authtoken"
)

// Context keys shared with the handlers.
const (
	CallerKey   = "caller"
	ResourceKey = "resource"
)

// AccountLookup loads the account a token was issued to.
type AccountLookup interface {
	FindByID(ctx context.Context, id string) (*domain.Account, error)
}

// Auth resolves the caller from an optional bearer token. Requests without an
// Authorization header continue as anonymous; a malformed or invalid token is
// rejected with 401. The account is reloaded on every request so role
// changes and deletions take effect immediately.
func Auth(jwtSecret string, accounts AccountLookup, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				c.Set(CallerKey, access.Anonymous())
				return next(c)
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := authtoken.Parse(strings.TrimSpace(parts[1]), jwtSecret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			account, err := accounts.FindByID(c.Request().Context(), claims.Subject)
			if err != nil {
				if errors.Is(err, domain.ErrAccountNotFound) {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
				}
				log.Error().Err(err).Str("account_id", claims.Subject).Msg("failed to load token account")
				return err
			}

			c.Set(CallerKey, access.CallerFor(account))
			return next(c)
		}
	}
}

// CallerFrom returns the caller stored by Auth, or anonymous.
func CallerFrom(c echo.Context) access.Caller {
	caller, _ := c.Get(CallerKey).(access.Caller)
	return caller
}
