package main

import (
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// AppConfig is the process-wide configuration, loaded once at startup and
// never mutated afterwards.
type AppConfig struct {
	SigningKey string
	TokenTTL   time.Duration
	Issuer     string
	ContextKey string
	AuthScheme string
	Addr       string
	DSN        string
}

const envPrefix = "AUTHHUB_"

// LoadConfig reads the AUTHHUB_* environment surface. The signing key is
// required; everything else has a default.
func LoadConfig() (*AppConfig, error) {
	k := koanf.New(".")

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
	}), nil); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load environment")
	}

	cfg := &AppConfig{
		SigningKey: k.String("signing.key"),
		TokenTTL:   24 * time.Hour,
		Issuer:     "authhub",
		ContextKey: "user",
		AuthScheme: "Bearer",
		Addr:       ":5000",
		DSN:        "file:authhub.db?cache=shared&_pragma=foreign_keys(1)",
	}

	if cfg.SigningKey == "" {
		return nil, errors.New("AUTHHUB_SIGNING_KEY is required", errors.CategoryInternal).
			WithTextCode("MISSING_SIGNING_KEY")
	}

	if raw := k.String("token.ttl"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "invalid AUTHHUB_TOKEN_TTL")
		}
		cfg.TokenTTL = ttl
	}

	if v := k.String("issuer"); v != "" {
		cfg.Issuer = v
	}

	if v := k.String("addr"); v != "" {
		cfg.Addr = v
	}

	if v := k.String("db.dsn"); v != "" {
		cfg.DSN = v
	}

	return cfg, nil
}

func (c *AppConfig) GetSigningKey() string {
	return c.SigningKey
}

func (c *AppConfig) GetTokenTTL() time.Duration {
	return c.TokenTTL
}

func (c *AppConfig) GetIssuer() string {
	return c.Issuer
}

func (c *AppConfig) GetContextKey() string {
	return c.ContextKey
}

func (c *AppConfig) GetAuthScheme() string {
	return c.AuthScheme
}
