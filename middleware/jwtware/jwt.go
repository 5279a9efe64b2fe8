// Package jwtware gates protected routes behind bearer token verification.
// It is a pure gate: it touches no store, mutates nothing but the request
// context, and never invokes the protected handler on failure.
package jwtware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

var ErrJWTMissingOrMalformed = errors.New("missing or malformed JWT")

// TokenValidator interface for validating tokens without import cycles.
// This mirrors the TokenService.Validate method from the auth package.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// AuthClaims interface for structured claims without import cycles.
// This mirrors the AuthClaims interface from the auth package.
type AuthClaims interface {
	Subject() string
	UserID() string
}

type Config struct {
	// Filter defines a function to skip the middleware
	Filter func(*fiber.Ctx) bool
	// SuccessHandler runs after claims have been stored; defaults to Next
	SuccessHandler fiber.Handler
	// ErrorHandler turns a rejection into a response; defaults to a uniform 401
	ErrorHandler fiber.ErrorHandler
	// ContextKey is the Locals key claims are stored under
	ContextKey string
	// AuthScheme is the expected Authorization scheme, "Bearer" by default
	AuthScheme string
	// TokenValidator is required for token validation
	TokenValidator TokenValidator
	// ContextEnricher propagates claims to the standard Go context. If
	// provided, it is called after successful token validation.
	ContextEnricher func(c context.Context, claims AuthClaims) context.Context
}

// New builds the guard middleware. The Authorization header must carry
// exactly "<scheme> <token>"; anything else is rejected before the validator
// runs. Every rejection, missing header, wrong scheme, bad signature, or
// expired token, produces the same unauthorized response.
func New(config ...Config) fiber.Handler {
	cfg := GetDefaultConfig(config...)

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		raw, err := TokenFromHeader(c.Get(fiber.HeaderAuthorization), cfg.AuthScheme)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		claims, err := cfg.TokenValidator.Validate(raw)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		c.Locals(cfg.ContextKey, claims)

		if cfg.ContextEnricher != nil {
			c.SetUserContext(cfg.ContextEnricher(c.UserContext(), claims))
		}

		return cfg.SuccessHandler(c)
	}
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c *fiber.Ctx, _ error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid or expired token",
			})
		}
	}

	if cfg.TokenValidator == nil {
		panic("AUTH: JWT middleware configuration: TokenValidator is required.")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	return cfg
}

// TokenFromHeader extracts the raw token from an Authorization header value.
// The scheme match is case sensitive: the header must carry the scheme in
// its exact configured form, "Bearer" by default.
func TokenFromHeader(header, authScheme string) (string, error) {
	scheme := strings.TrimSpace(authScheme)
	l := len(scheme)
	if l == 0 || len(header) <= l+1 {
		return "", ErrJWTMissingOrMalformed
	}

	if header[:l] != scheme || header[l] != ' ' {
		return "", ErrJWTMissingOrMalformed
	}

	token := strings.TrimSpace(header[l+1:])
	if token == "" {
		return "", ErrJWTMissingOrMalformed
	}

	return token, nil
}
