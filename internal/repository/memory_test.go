package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"unihub-auth/internal/model"
)

func TestMemoryTokenRepositoryLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ledger := NewMemoryTokenRepository()
	expiresAt := time.Now().Add(time.Hour).Unix()

	t.Run("absent token is invalid", func(t *testing.T) {
		valid, err := ledger.IsValid(ctx, "never-saved")
		require.NoError(t, err)
		require.False(t, valid)
	})

	t.Run("saved token is valid until revoked", func(t *testing.T) {
		require.NoError(t, ledger.Save(ctx, "tok-1", 42, expiresAt))

		valid, err := ledger.IsValid(ctx, "tok-1")
		require.NoError(t, err)
		require.True(t, valid)

		require.NoError(t, ledger.Revoke(ctx, "tok-1"))
		valid, err = ledger.IsValid(ctx, "tok-1")
		require.NoError(t, err)
		require.False(t, valid)
	})

	t.Run("revoke is idempotent", func(t *testing.T) {
		require.NoError(t, ledger.Revoke(ctx, "tok-1"))
		require.NoError(t, ledger.Revoke(ctx, "never-saved"))
	})

	t.Run("ledger expiry invalidates lazily", func(t *testing.T) {
		require.NoError(t, ledger.Save(ctx, "tok-2", 42, expiresAt))

		ledger.SetClock(func() time.Time { return time.Unix(expiresAt, 0) })
		valid, err := ledger.IsValid(ctx, "tok-2")
		require.NoError(t, err)
		require.False(t, valid)

		ledger.SetClock(func() time.Time { return time.Unix(expiresAt-1, 0) })
		valid, err = ledger.IsValid(ctx, "tok-2")
		require.NoError(t, err)
		require.True(t, valid)
	})

	t.Run("re-saving the same token resets it to active", func(t *testing.T) {
		require.NoError(t, ledger.Save(ctx, "tok-3", 42, expiresAt))
		require.NoError(t, ledger.Revoke(ctx, "tok-3"))
		require.NoError(t, ledger.Save(ctx, "tok-3", 42, expiresAt))

		valid, err := ledger.IsValid(ctx, "tok-3")
		require.NoError(t, err)
		require.True(t, valid)
	})
}

func TestMemoryUserRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	users := NewMemoryUserRepository()

	created, err := users.Create(ctx, model.User{
		FullName: "A B",
		Username: "ab01",
		Email:    "ab@x.com",
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), created.ID)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := users.Create(ctx, model.User{Username: "other", Email: "ab@x.com"})
		require.ErrorIs(t, err, model.ErrEmailTaken)
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := users.Create(ctx, model.User{Username: "ab01", Email: "other@x.com"})
		require.ErrorIs(t, err, model.ErrUsernameTaken)
	})

	t.Run("lookup by id and email", func(t *testing.T) {
		byID, err := users.FindByID(ctx, created.ID)
		require.NoError(t, err)
		require.Equal(t, created, byID)

		byEmail, err := users.FindByEmail(ctx, "ab@x.com")
		require.NoError(t, err)
		require.Equal(t, created, byEmail)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := users.FindByID(ctx, 999)
		require.ErrorIs(t, err, model.ErrUserNotFound)

		_, err = users.FindByEmail(ctx, "ghost@x.com")
		require.ErrorIs(t, err, model.ErrUserNotFound)
	})
}
