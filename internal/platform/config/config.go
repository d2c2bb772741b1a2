package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr string

	// Env names the deployment environment reported by health endpoints.
	Env string

	// PublicBaseURL is the origin public pass URLs are built from.
	PublicBaseURL string

	// ApproverSigningKey signs and verifies approver bearer tokens.
	ApproverSigningKey string

	// ApproverTokenHash is the bcrypt hash of the static fallback approver
	// token. Empty disables the fallback; cmd/tokengen -static-token mints
	// a token/hash pair.
	ApproverTokenHash string

	// TxAttempts is the optimistic retry budget for store transactions.
	TxAttempts int

	ShutdownTimeout time.Duration
}

const (
	defaultAddr          = ":8080"
	defaultPublicBaseURL = "https://pass.chefpass.example.com"

	// Dev signing key; must be overridden in production.
	defaultSigningKey = "dev-secret-key-change-in-production"
)

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:               defaultAddr,
		Env:                "development",
		PublicBaseURL:      defaultPublicBaseURL,
		ApproverSigningKey: defaultSigningKey,
		TxAttempts:         5,
		ShutdownTimeout:    10 * time.Second,
	}
	if addr := os.Getenv("CHEFPASS_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if env := os.Getenv("CHEFPASS_ENV"); env != "" {
		cfg.Env = env
	}
	if base := os.Getenv("CHEFPASS_PUBLIC_BASE_URL"); base != "" {
		cfg.PublicBaseURL = base
	}
	if key := os.Getenv("CHEFPASS_APPROVER_SIGNING_KEY"); key != "" {
		cfg.ApproverSigningKey = key
	}
	if hash := os.Getenv("CHEFPASS_APPROVER_TOKEN_HASH"); hash != "" {
		cfg.ApproverTokenHash = hash
	}
	if raw := os.Getenv("CHEFPASS_TX_ATTEMPTS"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			cfg.TxAttempts = n
		}
	}
	return cfg
}
