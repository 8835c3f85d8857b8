package api

import (
	"net/http"
	"time"

	"github.com/didip/tollbooth/v7"
	"github.com/didip/tollbooth/v7/limiter"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/yamdb/reviews-api/internal/api/handler"
	"github.com/yamdb/reviews-api/internal/api/middleware"
	"github.com/yamdb/reviews-api/internal/core/access"
	"github.com/yamdb/reviews-api/internal/core/ports"
)

// Deps carries everything the router wires into handlers and middleware.
type Deps struct {
	JWTSecret    string
	AllowOrigins []string

	// Per-IP request rate on the /auth endpoints. Zero disables the limiter.
	AuthRatePerSecond float64
	AuthRateTTL       time.Duration

	Accounts middleware.AccountLookup

	AuthService    ports.AuthService
	AccountService ports.AccountService
	Categories     ports.TaxonService
	Genres         ports.TaxonService
	Titles         ports.TitleService
	Reviews        ports.ReviewService
	Comments       ports.CommentService

	Checks map[string]handler.DependencyCheck

	Logger zerolog.Logger
	// Registerer receives the HTTP request metrics. Nil means the default registry.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: d.AllowOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: d.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Operational endpoints (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- API v1 ---
	v1 := e.Group("/api/v1", middleware.Auth(d.JWTSecret, d.Accounts, d.Logger))

	authHandler := handler.NewAuthHandler(d.AuthService)
	auth := v1.Group("/auth")
	if d.AuthRatePerSecond > 0 {
		auth.Use(rateLimiter(d.AuthRatePerSecond, d.AuthRateTTL))
	}
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/token", authHandler.Token)

	accountHandler := handler.NewAccountHandler(d.AccountService)
	me := v1.Group("/users/me", middleware.RequireAuthenticated())
	me.GET("", accountHandler.Me)
	me.PATCH("", accountHandler.UpdateMe)

	users := v1.Group("/users", middleware.Permission(access.Accounts))
	users.GET("", accountHandler.List)
	users.POST("", accountHandler.Create)
	users.GET("/:username", accountHandler.Get)
	users.PATCH("/:username", accountHandler.Update)
	users.DELETE("/:username", accountHandler.Delete)

	registerTaxon(v1, "/categories", access.Categories, handler.NewTaxonHandler(d.Categories))
	registerTaxon(v1, "/genres", access.Genres, handler.NewTaxonHandler(d.Genres))

	titleHandler := handler.NewTitleHandler(d.Titles)
	titles := v1.Group("/titles", middleware.Permission(access.Titles))
	titles.GET("", titleHandler.List)
	titles.POST("", titleHandler.Create)
	titles.GET("/:title_id", titleHandler.Get)
	titles.PATCH("/:title_id", titleHandler.Update)
	titles.DELETE("/:title_id", titleHandler.Delete)

	reviewHandler := handler.NewReviewHandler(d.Reviews)
	reviews := v1.Group("/titles/:title_id/reviews", middleware.Permission(access.Reviews))
	reviews.GET("", reviewHandler.List)
	reviews.POST("", reviewHandler.Create)
	reviews.GET("/:review_id", reviewHandler.Get)
	reviews.PATCH("/:review_id", reviewHandler.Update)
	reviews.DELETE("/:review_id", reviewHandler.Delete)

	commentHandler := handler.NewCommentHandler(d.Comments)
	comments := v1.Group("/titles/:title_id/reviews/:review_id/comments", middleware.Permission(access.Comments))
	comments.GET("", commentHandler.List)
	comments.POST("", commentHandler.Create)
	comments.GET("/:comment_id", commentHandler.Get)
	comments.PATCH("/:comment_id", commentHandler.Update)
	comments.DELETE("/:comment_id", commentHandler.Delete)

	return e
}

func registerTaxon(v1 *echo.Group, prefix string, res access.Resource, h *handler.TaxonHandler) {
	g := v1.Group(prefix, middleware.Permission(res))
	g.GET("", h.List)
	g.POST("", h.Create)
	g.DELETE("/:slug", h.Delete)
}

// rateLimiter throttles requests per client IP with tollbooth.
func rateLimiter(perSecond float64, ttl time.Duration) echo.MiddlewareFunc {
	if ttl <= 0 {
		ttl = time.Hour
	}
	lmt := tollbooth.NewLimiter(perSecond, &limiter.ExpirableOptions{DefaultExpirationTTL: ttl})
	lmt.SetIPLookups([]string{"RemoteAddr", "X-Forwarded-For", "X-Real-IP"})
	lmt.SetMessage(`{"error":"too many requests, please try again later"}`)
	lmt.SetMessageContentType(echo.MIMEApplicationJSON)

	return echo.WrapMiddleware(func(next http.Handler) http.Handler {
		return tollbooth.LimitHandler(lmt, next)
	})
}

// requestLogger writes one zerolog entry per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Status >= http.StatusInternalServerError {
				event = log.Error().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
