package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`

	Auth  AuthConfig
	Mongo MongoConfig
	Redis RedisConfig
	Mail  MailConfig
	HTTP  HTTPConfig
}

type AuthConfig struct {
	JWTSecret string        `env:"JWT_SECRET, required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,  default=24h"`

	CodeLength int `env:"CONFIRMATION_CODE_LENGTH, default=16"`

	// Failed code exchanges tolerated per username within the window.
	MaxFailedAttempts    int           `env:"AUTH_MAX_FAILED_ATTEMPTS,    default=10"`
	FailedAttemptsWindow time.Duration `env:"AUTH_FAILED_ATTEMPTS_WINDOW, default=15m"`

	// Per-IP request rate on /auth endpoints.
	RateLimitPerSecond float64       `env:"AUTH_RATE_LIMIT_PER_SECOND, default=1"`
	RateLimitTTL       time.Duration `env:"AUTH_RATE_LIMIT_TTL,        default=1h"`

	// Usernames granted the admin role at startup.
	BootstrapAdmins []string `env:"BOOTSTRAP_ADMINS"`
}

type MongoConfig struct {
	URI      string        `env:"MONGO_URI,     default=mongodb://localhost:27017"`
	Database string        `env:"MONGO_DB,      default=reviews"`
	Timeout  time.Duration `env:"MONGO_TIMEOUT, default=10s"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	DB       int    `env:"REDIS_DB,   default=0"`
	Password string `env:"REDIS_PASSWORD"`
}

// MailConfig configures outbound mail. An empty Host logs mail instead of
// sending it.
type MailConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     string `env:"SMTP_PORT,     default=587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"MAIL_FROM,     default=noreply@reviews.local"`
	Workers  int    `env:"MAIL_WORKERS,  default=4"`
}

type HTTPConfig struct {
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT,     default=10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT,    default=10s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT, default=15s"`
	AllowOrigins    []string      `env:"CORS_ALLOW_ORIGINS,    default=*"`
}

// IsProduction reports whether the service runs with production defaults.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration from an arbitrary lookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if cfg.Auth.CodeLength < 6 {
		return nil, fmt.Errorf("CONFIRMATION_CODE_LENGTH must be at least 6, got %d", cfg.Auth.CodeLength)
	}
	return &cfg, nil
}
