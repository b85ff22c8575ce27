package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name     string     `envconfig:"APP_NAME" default:"Invoicer"`
		Port     int        `envconfig:"PORT" default:"8080"`
		LogLevel slog.Level `envconfig:"LOG_LEVEL" default:"INFO"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"invoicer"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Session struct {
		Secret string        `envconfig:"SESSION_SECRET" required:"true"`
		Cookie string        `envconfig:"SESSION_COOKIE" default:"session"`
		TTL    time.Duration `envconfig:"SESSION_TTL" default:"720h"`
	}

	ViewCache struct {
		// Empty selects the in-process cache.
		RedisURL string        `envconfig:"REDIS_URL"`
		TTL      time.Duration `envconfig:"VIEW_CACHE_TTL" default:"5m"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
