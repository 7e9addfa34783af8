package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/design-survey/storage"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	ServerPort         int        `env:"SERVER_PORT" envDefault:"8080"`
	DatabaseURL        string     `env:"DATABASE_URL,required,notEmpty"`
	JWTSecretKey       string     `env:"JWT_SECRET_KEY,required,notEmpty"`
	LogLevel           slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	RunMigrations      bool       `env:"RUN_MIGRATIONS" envDefault:"true"`
	CORSAllowedOrigins []string   `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	SubmitRateLimit    int        `env:"SUBMIT_RATE_LIMIT" envDefault:"10"`
	SessionRateLimit   int        `env:"SESSION_RATE_LIMIT" envDefault:"30"`
	TrustProxyHeaders  bool       `env:"TRUST_PROXY_HEADERS" envDefault:"false"`
	AdminPasswordHash  string     `env:"ADMIN_PASSWORD_HASH"`

	TournamentSize     int           `env:"TOURNAMENT_SIZE" envDefault:"32"`
	SessionTTL         time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	SessionSweepPeriod time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"1m"`

	R2AccountID       string `env:"R2_ACCOUNT_ID"`
	R2AccessKeyID     string `env:"R2_ACCESS_KEY_ID"`
	R2SecretAccessKey string `env:"R2_SECRET_ACCESS_KEY"`
	R2BucketName      string `env:"R2_BUCKET_NAME"`
	R2PublicBaseURL   string `env:"R2_PUBLIC_BASE_URL"`
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Отсутствие .env не ошибка.
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		errs = append(errs, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort))
	}
	if c.TournamentSize < 2 {
		errs = append(errs, fmt.Errorf("TOURNAMENT_SIZE must be at least 2, got %d", c.TournamentSize))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL))
	}
	if c.SessionSweepPeriod <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_SWEEP_INTERVAL must be positive, got %s", c.SessionSweepPeriod))
	}
	if c.SubmitRateLimit <= 0 {
		errs = append(errs, fmt.Errorf("SUBMIT_RATE_LIMIT must be positive, got %d", c.SubmitRateLimit))
	}
	if c.SessionRateLimit <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_RATE_LIMIT must be positive, got %d", c.SessionRateLimit))
	}
	return errors.Join(errs...)
}

func (c Config) R2() storage.CloudflareR2UploaderConfig {
	return storage.CloudflareR2UploaderConfig{
		AccountID:       c.R2AccountID,
		AccessKeyID:     c.R2AccessKeyID,
		SecretAccessKey: c.R2SecretAccessKey,
		BucketName:      c.R2BucketName,
		PublicBaseURL:   c.R2PublicBaseURL,
	}
}
