// Package config loads engine configuration from the environment.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Config holds everything needed to run the engine as a process-wide
// background task. Defaults match the cadences and windows the lanes were
// designed around.
type Config struct {
	// DatabaseDSN is the connection string for the transactional store.
	// A postgres DSN enables skip-locked claiming; a sqlite path works for
	// single-instance deployments.
	DatabaseDSN string `env:"DATABASE_DSN,required"`

	PublishEvery   time.Duration `env:"PUBLISH_EVERY" envDefault:"1m"`
	AnalyticsEvery time.Duration `env:"ANALYTICS_EVERY" envDefault:"1m"`

	// Credential renewal runs once a day at this UTC wall-clock time.
	RenewalHour   int `env:"RENEWAL_HOUR" envDefault:"3"`
	RenewalMinute int `env:"RENEWAL_MINUTE" envDefault:"0"`

	MetricsFreshness time.Duration `env:"METRICS_FRESHNESS" envDefault:"1h"`
	RenewalHorizon   time.Duration `env:"RENEWAL_HORIZON" envDefault:"168h"`
	CallTimeout      time.Duration `env:"CALL_TIMEOUT" envDefault:"30s"`
	ClaimTTL         time.Duration `env:"CLAIM_TTL" envDefault:"15m"`
	BatchLimit       int           `env:"BATCH_LIMIT" envDefault:"500"`

	LinkedInClientID     string `env:"LINKEDIN_CLIENT_ID"`
	LinkedInClientSecret string `env:"LINKEDIN_CLIENT_SECRET"`
	LinkedInAPIBaseURL   string `env:"LINKEDIN_API_BASE_URL" envDefault:"https://api.linkedin.com"`
	LinkedInOAuthBaseURL string `env:"LINKEDIN_OAUTH_BASE_URL" envDefault:"https://www.linkedin.com/oauth/v2"`
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	// .env is a development convenience; a missing file is not an error.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
