package config

import "os"

// Config holds the service-level knobs; the Postgres connection has its own
// config in pkg/db.
type Config struct {
	ServerPort      string
	RedisURL        string
	StripeSecretKey string
	FrontendURL     string
}

func Load() *Config {
	cfg := &Config{
		ServerPort:      os.Getenv("PORT"),
		RedisURL:        os.Getenv("REDIS_URL"),
		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		FrontendURL:     os.Getenv("FRONTEND_URL"),
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.RedisURL == "" {
		cfg.RedisURL = "localhost:6379"
	}
	if cfg.FrontendURL == "" {
		cfg.FrontendURL = "http://localhost:3000"
	}
	return cfg
}
