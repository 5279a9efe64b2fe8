package auth

import (
	"context"

	"github.com/goliatone/go-errors"
)

// Auther orchestrates credential verification and token issuance. It holds
// no mutable state beyond the signing key captured at construction, so a
// single instance serves concurrent requests without locking.
type Auther struct {
	provider     IdentityProvider
	tokenService TokenService
	logger       Logger
}

// NewAuthenticator returns a new Authenticator. The signing key is validated
// here; a short key is a configuration error the caller should treat as
// fatal.
func NewAuthenticator(provider IdentityProvider, cfg Config) (*Auther, error) {
	tokenService, err := NewTokenService(
		[]byte(cfg.GetSigningKey()),
		cfg.GetTokenTTL(),
		cfg.GetIssuer(),
		defLogger{},
	)
	if err != nil {
		return nil, err
	}

	return &Auther{
		provider:     provider,
		tokenService: tokenService,
		logger:       defLogger{},
	}, nil
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithTokenService overrides the token service, mostly for tests that need a
// controllable clock.
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the credentials and returns a signed token for the subject.
// The identifier and password are never logged.
func (s *Auther) Login(ctx context.Context, identifier, password string) (string, error) {
	if NormalizeEmail(identifier) == "" || password == "" {
		return "", errors.New("email and password are required", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest).
			WithTextCode("MISSING_FIELDS")
	}

	identity, err := s.provider.VerifyIdentity(ctx, identifier, password)
	if err != nil {
		if IsInvalidCredentialsError(err) {
			s.logger.Info("Login rejected", "reason", "credential mismatch")
			return "", ErrInvalidCredentials
		}
		s.logger.Error("Login verify identity error", "error", err)
		return "", err
	}

	if identity == nil {
		s.logger.Error("Login identity is nil")
		return "", ErrInvalidCredentials
	}

	token, err := s.tokenService.Generate(identity)
	if err != nil {
		s.logger.Error("Login token generation failed", "error", err)
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign token")
	}

	return token, nil
}

// WhoAmI introspects a bearer token and returns its verified claims. It is
// side-effect free: no store access, no state mutation, safe to poll.
func (s *Auther) WhoAmI(ctx context.Context, token string) (AuthClaims, error) {
	claims, err := s.tokenService.Validate(token)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

var _ Authenticator = (*Auther)(nil)
