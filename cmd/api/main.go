// Command api serves the reviews REST API.
//
// @title                       Reviews API
// @version                     1.0
// @description                 Reviews, ratings and comments on catalogued titles with passwordless signup.
// @BasePath                    /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	_ "github.com/yamdb/reviews-api/docs"
	"github.com/yamdb/reviews-api/internal/api"
	"github.com/yamdb/reviews-api/internal/api/handler"
	"github.com/yamdb/reviews-api/internal/core/domain"
	"github.com/yamdb/reviews-api/internal/core/ports"
	"github.com/yamdb/reviews-api/internal/core/service"
	mongostore "github.com/yamdb/reviews-api/internal/infrastructure/db/mongo"
	redisstore "github.com/yamdb/reviews-api/internal/infrastructure/db/redis"
	"github.com/yamdb/reviews-api/internal/infrastructure/mail"
	"github.com/yamdb/reviews-api/internal/infrastructure/queue"
	"github.com/yamdb/reviews-api/internal/infrastructure/uuidgen"
	"github.com/yamdb/reviews-api/internal/pkg/authtoken"
	"github.com/yamdb/reviews-api/internal/pkg/config"
	"github.com/yamdb/reviews-api/pkg/logger"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "reviews-api",
	})
	if envErr != nil {
		log.Debug().Msg("no .env file found, using environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	mongoClient, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		Password: cfg.Redis.Password,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer rdb.Close()

	accounts := mongostore.NewAccountRepository(db)
	categories := mongostore.NewCategoryRepository(db)
	genres := mongostore.NewGenreRepository(db)
	titles := mongostore.NewTitleRepository(db)
	reviews := mongostore.NewReviewRepository(db)
	comments := mongostore.NewCommentRepository(db)

	if err := mongostore.EnsureIndexes(ctx, accounts, categories, genres, titles, reviews, comments); err != nil {
		log.Fatal().Err(err).Msg("failed to create indexes")
	}

	// --- Mail ---
	var mailer ports.Mailer
	if cfg.Mail.Host != "" {
		mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
		})
	} else {
		log.Warn().Msg("SMTP_HOST not set, confirmation mails will only be logged")
		mailer = mail.NewLogMailer(logger.Named("mail"))
	}

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.Mail.Workers, mailer, logger.Named("dispatcher"))
	dispatcher.Start(workerCtx)

	// --- Services ---
	ids := uuidgen.NewGenerator()
	policy := service.DefaultSignupPolicy()
	policy.CodeLength = cfg.Auth.CodeLength

	authService := service.NewAuthService(
		accounts,
		dispatcher,
		redisstore.NewAttemptCounter(rdb, cfg.Auth.MaxFailedAttempts, cfg.Auth.FailedAttemptsWindow),
		authtoken.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		ids,
		policy,
		logger.Named("auth"),
	)

	accountService := service.NewAccountService(accounts, reviews, comments, ids, policy, logger.Named("accounts"))
	if err := accountService.PromoteAdmins(ctx, cfg.Auth.BootstrapAdmins); err != nil {
		log.Fatal().Err(err).Msg("failed to promote bootstrap admins")
	}

	router := api.NewRouter(api.Deps{
		JWTSecret:         cfg.Auth.JWTSecret,
		AllowOrigins:      cfg.HTTP.AllowOrigins,
		AuthRatePerSecond: cfg.Auth.RateLimitPerSecond,
		AuthRateTTL:       cfg.Auth.RateLimitTTL,
		Accounts:          accounts,
		AuthService:       authService,
		AccountService:    accountService,
		Categories:        service.NewTaxonService(domain.KindCategory, categories, titles, logger.Named("categories")),
		Genres:            service.NewTaxonService(domain.KindGenre, genres, titles, logger.Named("genres")),
		Titles:            service.NewTitleService(titles, categories, genres, reviews, comments, ids, logger.Named("titles")),
		Reviews:           service.NewReviewService(titles, reviews, comments, ids, logger.Named("reviews")),
		Comments:          service.NewCommentService(titles, reviews, comments, ids, logger.Named("comments")),
		Checks: map[string]handler.DependencyCheck{
			"mongodb": handler.MongoCheck(db),
			"redis":   handler.RedisCheck(rdb),
		},
		Logger: logger.Named("http"),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	// Give queued mail a moment to drain before the workers stop.
	drain := time.NewTimer(2 * time.Second)
	select {
	case <-drain.C:
	case <-shutdownCtx.Done():
	}
	stopWorkers()
	dispatcher.Wait()
}
