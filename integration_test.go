package auth_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	auth "github.com/authhub/go-auth"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	_, err = db.NewCreateTable().
		Model((*auth.User)(nil)).
		IfNotExists().
		Exec(context.Background())
	require.NoError(t, err)

	return db
}

func TestRegistrationFlow(t *testing.T) {
	ctx := context.Background()
	repo := auth.NewRepositoryManager(newTestDB(t))
	repo.MustValidate()

	handler := auth.NewRegisterUserHandler(repo)

	t.Run("register persists a normalized record", func(t *testing.T) {
		user, err := handler.Execute(ctx, auth.RegisterUserMessage{
			Name:     "Ada",
			Email:    "  Ada@Example.COM ",
			Password: "secret1",
		})

		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", user.Email)
		assert.Equal(t, "Ada", user.Name)
		assert.NotEmpty(t, user.PasswordHash)
		assert.NotEqual(t, "secret1", user.PasswordHash)

		stored, err := repo.Users().GetByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, stored.ID)
	})

	t.Run("case variant registration conflicts", func(t *testing.T) {
		_, err := handler.Execute(ctx, auth.RegisterUserMessage{
			Email:    "ADA@example.com",
			Password: "another",
		})

		assert.Equal(t, auth.ErrIdentityExists, err)
	})

	t.Run("empty fields are a validation error", func(t *testing.T) {
		_, err := handler.Execute(ctx, auth.RegisterUserMessage{
			Email:    "",
			Password: "secret1",
		})
		assert.Error(t, err)

		_, err = handler.Execute(ctx, auth.RegisterUserMessage{
			Email:    "x@y.com",
			Password: "",
		})
		assert.Error(t, err)
	})

	t.Run("store-level duplicate maps to conflict", func(t *testing.T) {
		// bypass the handler's existence pre-check to exercise the unique
		// index path a concurrent registration would hit
		hash, err := auth.HashPassword("secret1")
		require.NoError(t, err)

		_, err = repo.Users().Register(ctx, &auth.User{
			Email:        "ada@example.com",
			PasswordHash: hash,
		})

		assert.Equal(t, auth.ErrIdentityExists, err)
	})
}

func TestEndToEndAuthentication(t *testing.T) {
	ctx := context.Background()
	repo := auth.NewRepositoryManager(newTestDB(t))

	handler := auth.NewRegisterUserHandler(repo)
	provider := auth.NewUserProvider(repo.Users())

	auther, err := auth.NewAuthenticator(provider, testConfig{
		signingKey: string(testSigningKey),
		ttl:        time.Hour,
	})
	require.NoError(t, err)

	created, err := handler.Execute(ctx, auth.RegisterUserMessage{
		Email:    "a@b.com",
		Password: "secret1",
	})
	require.NoError(t, err)

	t.Run("register then login then whoami yields the created subject", func(t *testing.T) {
		token, err := auther.Login(ctx, "a@b.com", "secret1")
		require.NoError(t, err)

		claims, err := auther.WhoAmI(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, created.ID.String(), claims.UserID())
	})

	t.Run("login with the case variant email works", func(t *testing.T) {
		token, err := auther.Login(ctx, "A@B.COM", "secret1")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
	})

	t.Run("wrong password fails closed", func(t *testing.T) {
		_, err := auther.Login(ctx, "a@b.com", "wrong")
		assert.Equal(t, auth.ErrInvalidCredentials, err)
	})

	t.Run("unknown email against the real store is invalid credentials", func(t *testing.T) {
		// the repository's record-not-found must not surface as a store
		// failure; both misses have to look like a credential mismatch
		_, err := auther.Login(ctx, "nobody@b.com", "secret1")
		assert.Equal(t, auth.ErrInvalidCredentials, err)
	})
}
