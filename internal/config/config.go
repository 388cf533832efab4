package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds environment-driven configuration.
type Config struct {
	Addr    string `envconfig:"APP_ADDR" default:":8080"`
	Storage string `envconfig:"STORAGE" default:"postgres"`

	DatabaseURL string `envconfig:"DATABASE_URL"`

	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	CartTTL       time.Duration `envconfig:"CART_TTL" default:"24h"`

	AMQPURL      string `envconfig:"AMQP_URL"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"marketplace.orders"`

	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"72h"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	AdminEmail    string `envconfig:"ADMIN_EMAIL"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`

	AdminPageSize    int    `envconfig:"ADMIN_PAGE_SIZE" default:"20"`
	PlaceholderImage string `envconfig:"PLACEHOLDER_IMAGE" default:"/static/placeholder.png"`
}

// Load reads .env (if present) and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Storage {
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is not set")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown STORAGE %q", c.Storage)
	}
	if c.AdminPageSize <= 0 {
		return errors.New("ADMIN_PAGE_SIZE must be positive")
	}
	return nil
}
