package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type HTTPConfig struct {
	Addr string
	// Per-client token bucket in front of write routes.
	RatePerSec float64
	RateBurst  int
}

type GRPCConfig struct {
	Addr string
}

type AppConfig struct {
	ServiceName string
	LogLevel    string
	Env         string
	HTTP        HTTPConfig
	GRPC        GRPCConfig

	DatabaseURL string
	RedisDSN    string
	NATSURL     string
	JWTSecret   string
	PolicyFile  string

	// ModeratorIDs are promoted to the moderator role at startup.
	ModeratorIDs []string

	PenaltySweepInterval time.Duration
}

// IsProduction reports whether APP_ENV=production.
func (c AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Load reads configuration from the environment. A .env file in the working
// directory, if present, is loaded first; real environment variables win.
func Load() (AppConfig, error) {
	_ = godotenv.Load()

	cfg := AppConfig{
		ServiceName: env("SERVICE_NAME"),
		LogLevel:    env("LOG_LEVEL"),
		Env:         env("APP_ENV"),
		HTTP: HTTPConfig{
			Addr:       env("HTTP_ADDR"),
			RatePerSec: envFloat("HTTP_RATE_PER_SEC", 5),
			RateBurst:  envInt("HTTP_RATE_BURST", 20),
		},
		GRPC: GRPCConfig{
			Addr: env("GRPC_ADDR"),
		},
		DatabaseURL:          env("DATABASE_URL"),
		RedisDSN:             env("REDIS_DSN"),
		NATSURL:              env("NATS_URL"),
		JWTSecret:            env("JWT_SECRET"),
		PolicyFile:           env("POLICY_FILE"),
		ModeratorIDs:         splitList(env("MODERATOR_IDS")),
		PenaltySweepInterval: envDuration("PENALTY_SWEEP_INTERVAL", 30*time.Second),
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "social"
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.GRPC.Addr == "" {
		cfg.GRPC.Addr = ":9090"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.IsProduction() && cfg.JWTSecret == "" {
		return AppConfig{}, errors.New("JWT_SECRET is required in production")
	}
	return cfg, nil
}
