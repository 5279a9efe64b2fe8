package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	auth "github.com/authhub/go-auth"
)

// MockIdentity implements auth.Identity for testing
type MockIdentity struct {
	mock.Mock
}

func (m *MockIdentity) ID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Email() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Name() string {
	args := m.Called()
	return args.String(0)
}

var testSigningKey = []byte("0123456789abcdef0123456789abcdef")

func TestNewTokenService(t *testing.T) {
	t.Run("creates token service", func(t *testing.T) {
		service, err := auth.NewTokenService(testSigningKey, time.Hour, "test-issuer", nil)

		assert.NoError(t, err)
		assert.NotNil(t, service)
	})

	t.Run("rejects short signing key", func(t *testing.T) {
		service, err := auth.NewTokenService([]byte("too-short"), time.Hour, "test-issuer", nil)

		assert.Nil(t, service)
		assert.Equal(t, auth.ErrSigningKeyTooShort, err)
	})

	t.Run("must variant panics on short key", func(t *testing.T) {
		assert.Panics(t, func() {
			auth.MustNewTokenService([]byte("short"), time.Hour, "test-issuer", nil)
		})
	})
}

func TestTokenService_Generate(t *testing.T) {
	service, err := auth.NewTokenService(testSigningKey, 2*time.Hour, "test-issuer", nil)
	assert.NoError(t, err)

	t.Run("generates valid JWT token", func(t *testing.T) {
		identity := &MockIdentity{}
		identity.On("ID").Return("user-123")

		tokenString, err := service.Generate(identity)

		assert.NoError(t, err)
		assert.NotEmpty(t, tokenString)

		token, err := jwt.ParseWithClaims(tokenString, &auth.JWTClaims{}, func(token *jwt.Token) (any, error) {
			return testSigningKey, nil
		})

		assert.NoError(t, err)
		assert.True(t, token.Valid)

		claims, ok := token.Claims.(*auth.JWTClaims)
		assert.True(t, ok)
		assert.Equal(t, "user-123", claims.Subject())
		assert.Equal(t, "user-123", claims.UserID())
		assert.Equal(t, "test-issuer", claims.Issuer)
		assert.NotNil(t, claims.RegisteredClaims.IssuedAt)
		assert.NotNil(t, claims.RegisteredClaims.ExpiresAt)

		ttl := claims.Expires().Sub(claims.IssuedAt())
		assert.Equal(t, 2*time.Hour, ttl)

		identity.AssertExpectations(t)
	})
}

func TestTokenService_Validate(t *testing.T) {
	service, err := auth.NewTokenService(testSigningKey, time.Hour, "test-issuer", nil)
	assert.NoError(t, err)

	identity := &MockIdentity{}
	identity.On("ID").Return("user-123")

	t.Run("validates freshly issued token", func(t *testing.T) {
		tokenString, err := service.Generate(identity)
		assert.NoError(t, err)

		claims, err := service.Validate(tokenString)
		assert.NoError(t, err)
		assert.Equal(t, "user-123", claims.UserID())
	})

	t.Run("rejects token signed with a different key", func(t *testing.T) {
		other := auth.MustNewTokenService([]byte("ffffffffffffffffffffffffffffffff"), time.Hour, "test-issuer", nil)
		tokenString, err := other.Generate(identity)
		assert.NoError(t, err)

		claims, err := service.Validate(tokenString)
		assert.Nil(t, claims)
		assert.Equal(t, auth.ErrTokenInvalid, err)
	})

	t.Run("rejects malformed token", func(t *testing.T) {
		claims, err := service.Validate("not.a.jwt")
		assert.Nil(t, claims)
		assert.Equal(t, auth.ErrTokenInvalid, err)
	})

	t.Run("rejects empty token", func(t *testing.T) {
		claims, err := service.Validate("")
		assert.Nil(t, claims)
		assert.Equal(t, auth.ErrTokenInvalid, err)
	})

	t.Run("rejects unsigned token", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &auth.JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "user-123"},
		})
		tokenString, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		assert.NoError(t, err)

		claims, err := service.Validate(tokenString)
		assert.Nil(t, claims)
		assert.Equal(t, auth.ErrTokenInvalid, err)
	})
}

func TestTokenService_Expiry(t *testing.T) {
	identity := &MockIdentity{}
	identity.On("ID").Return("user-123")

	issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	ttl := 15 * time.Minute

	now := issuedAt
	service := auth.MustNewTokenService(testSigningKey, ttl, "test-issuer", nil).
		WithTimeFunc(func() time.Time { return now })

	tokenString, err := service.Generate(identity)
	assert.NoError(t, err)

	t.Run("valid immediately after issuance", func(t *testing.T) {
		now = issuedAt
		claims, err := service.Validate(tokenString)
		assert.NoError(t, err)
		assert.Equal(t, "user-123", claims.UserID())
	})

	t.Run("valid just before expiry", func(t *testing.T) {
		now = issuedAt.Add(ttl - time.Second)
		_, err := service.Validate(tokenString)
		assert.NoError(t, err)
	})

	t.Run("expired token fails with the uniform error", func(t *testing.T) {
		now = issuedAt.Add(ttl + time.Second)
		claims, err := service.Validate(tokenString)
		assert.Nil(t, claims)
		assert.Equal(t, auth.ErrTokenInvalid, err)
	})

	t.Run("no grace window at the expiry instant", func(t *testing.T) {
		now = issuedAt.Add(ttl)
		_, err := service.Validate(tokenString)
		assert.Equal(t, auth.ErrTokenInvalid, err)
	})
}
