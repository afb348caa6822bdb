package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
)

// Config holds everything the API process reads from the environment.
type Config struct {
	Env         string `env:"ENV" envDefault:"dev"`
	Port        string `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET,required"`
	CORSOrigin  string `env:"CORS_ORIGIN" envDefault:"*"`

	// Receipts bucket; empty disables the upload endpoint.
	ReceiptsBucket string `env:"RECEIPTS_BUCKET"`

	// Notification webhook; empty falls back to log-only emission.
	NotifyWebhookURL string        `env:"NOTIFY_WEBHOOK_URL"`
	NotifyTimeout    time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"5s"`

	RateLimitWriteMax   int           `env:"RATE_LIMIT_WRITE_MAX" envDefault:"60"`
	RateLimitWindow     time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
	TokenTTL            time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
}

// Load parses the process environment into a Config.
func Load() (Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
