package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// minSigningKeyLen is the smallest secret we accept for HS256. Anything
// shorter than the HMAC output undercuts the algorithm's security margin.
const minSigningKeyLen = 32

// TokenService issues and verifies the signed bearer tokens this package
// hands out at login.
type TokenService interface {
	Generate(identity Identity) (string, error)
	TokenValidator
}

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey []byte
	tokenTTL   time.Duration
	issuer     string
	logger     Logger
	now        func() time.Time
}

// NewTokenService creates a new TokenService instance. A signing key shorter
// than 32 bytes is a configuration error and is rejected here, before any
// token can be minted with it.
func NewTokenService(signingKey []byte, tokenTTL time.Duration, issuer string, logger Logger) (*TokenServiceImpl, error) {
	if len(signingKey) < minSigningKeyLen {
		return nil, ErrSigningKeyTooShort
	}

	if logger == nil {
		logger = defLogger{}
	}

	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}

	return &TokenServiceImpl{
		signingKey: signingKey,
		tokenTTL:   tokenTTL,
		issuer:     issuer,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// MustNewTokenService is NewTokenService for wiring paths where a bad signing
// key should stop the process.
func MustNewTokenService(signingKey []byte, tokenTTL time.Duration, issuer string, logger Logger) *TokenServiceImpl {
	ts, err := NewTokenService(signingKey, tokenTTL, issuer, logger)
	if err != nil {
		panic(err)
	}
	return ts
}

// WithTimeFunc overrides the clock used for issuance and verification.
// Production code never calls this; tests use it to simulate expiry.
func (ts *TokenServiceImpl) WithTimeFunc(now func() time.Time) *TokenServiceImpl {
	if now != nil {
		ts.now = now
	}
	return ts
}

// Generate creates a signed JWT asserting the identity's id for the
// configured TTL
func (ts *TokenServiceImpl) Generate(identity Identity) (string, error) {
	now := ts.now()
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   identity.ID(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.tokenTTL)),
		},
		UID: identity.ID(),
	}

	return ts.SignClaims(claims)
}

// SignClaims signs arbitrary JWT claims using the configured signing key.
func (ts *TokenServiceImpl) SignClaims(claims *JWTClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", err
	}

	return signedString, nil
}

// Validate parses and verifies a token string, returning structured claims.
// Every failure mode, bad signature, malformed structure, unexpected
// algorithm, or expiry, comes back as the same ErrTokenInvalid so callers
// learn nothing about which check tripped.
func (ts *TokenServiceImpl) Validate(tokenString string) (AuthClaims, error) {
	parserOptions := []jwt.ParserOption{
		jwt.WithTimeFunc(ts.now),
	}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService validate encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, ErrTokenInvalid
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		ts.logger.Error("TokenService validate could not decode claims")
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
