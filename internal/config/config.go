package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// DefaultFeedURL is the active-alerts endpoint of the public weather.gov API.
const DefaultFeedURL = "https://api.weather.gov/alerts/active"

// Config holds all service settings, populated from environment variables.
type Config struct {
	Port        string
	DatabaseURL string

	FeedURL       string
	FeedTimeout   time.Duration
	FetchInterval time.Duration
	FeedRate      float64 // requests per second allowed against the feed

	// SamplePolicyholders enables synthetic policyholder generation for every
	// newly attributed zipcode. Demo environments only.
	SamplePolicyholders bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	fetchInterval, err := parseDuration("ALERT_FETCH_INTERVAL", "5m")
	if err != nil {
		return nil, err
	}

	feedTimeout, err := parseDuration("ALERT_FEED_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	feedRate := 1.0
	if s := os.Getenv("ALERT_FEED_RATE"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v <= 0 {
			return nil, errors.New("invalid ALERT_FEED_RATE")
		}
		feedRate = v
	}

	cfg := &Config{
		Port:                envOrDefault("PORT", "5050"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		FeedURL:             envOrDefault("ALERT_FEED_URL", DefaultFeedURL),
		FeedTimeout:         feedTimeout,
		FetchInterval:       fetchInterval,
		FeedRate:            feedRate,
		SamplePolicyholders: os.Getenv("SAMPLE_POLICYHOLDERS") == "true",
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.FeedURL == "" {
		return nil, errors.New("ALERT_FEED_URL must not be empty")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	s := envOrDefault(key, fallback)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}
