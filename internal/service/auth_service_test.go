package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"unihub-auth/internal/model"
	"unihub-auth/internal/password"
	"unihub-auth/internal/repository"
	"unihub-auth/internal/token"
)

type fixture struct {
	service *AuthService
	codec   *token.Codec
	users   *repository.MemoryUserRepository
	ledger  *repository.MemoryTokenRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	codec := token.NewCodec("test-secret")
	users := repository.NewMemoryUserRepository()
	ledger := repository.NewMemoryTokenRepository()
	svc := NewAuthService(
		password.NewHasher(1_000),
		codec,
		token.NewIssuer(codec, 30*time.Minute, 7*24*time.Hour),
		users,
		ledger,
	)
	return &fixture{service: svc, codec: codec, users: users, ledger: ledger}
}

func registerRequest() model.RegisterRequest {
	return model.RegisterRequest{
		FullName: "A B",
		Username: "ab01",
		Email:    "ab@x.com",
		Password: "Passw0rd",
	}
}

func TestRegister(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("success issues a decodable session", func(t *testing.T) {
		f := newFixture(t)

		session, err := f.service.Register(ctx, registerRequest())
		require.NoError(t, err)
		require.Equal(t, "Account created", session.Message)
		require.Equal(t, int64(1), session.User.ID)
		require.Equal(t, "ab@x.com", session.User.Email)
		require.Equal(t, "bearer", session.TokenType)

		access, err := f.codec.Decode(session.AccessToken)
		require.NoError(t, err)
		require.Equal(t, "1", access.Sub)
		require.Equal(t, token.TypeAccess, access.Type)

		refresh, err := f.codec.Decode(session.RefreshToken)
		require.NoError(t, err)
		require.Equal(t, access.Sub, refresh.Sub)
		require.Equal(t, token.TypeRefresh, refresh.Type)

		valid, err := f.ledger.IsValid(ctx, session.RefreshToken)
		require.NoError(t, err)
		require.True(t, valid)
	})

	t.Run("normalizes username and email", func(t *testing.T) {
		f := newFixture(t)

		req := registerRequest()
		req.Username = "  AB01 "
		req.Email = " AB@X.Com "
		session, err := f.service.Register(ctx, req)
		require.NoError(t, err)
		require.Equal(t, "ab01", session.User.Username)
		require.Equal(t, "ab@x.com", session.User.Email)
	})

	t.Run("duplicate email names the email field", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.Register(ctx, registerRequest())
		require.NoError(t, err)

		req := registerRequest()
		req.Username = "different"
		_, err = f.service.Register(ctx, req)
		require.ErrorIs(t, err, model.ErrEmailTaken)
	})

	t.Run("duplicate username", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.Register(ctx, registerRequest())
		require.NoError(t, err)

		req := registerRequest()
		req.Email = "other@x.com"
		_, err = f.service.Register(ctx, req)
		require.ErrorIs(t, err, model.ErrUsernameTaken)
	})

	t.Run("validation rejections", func(t *testing.T) {
		f := newFixture(t)

		for name, mutate := range map[string]func(*model.RegisterRequest){
			"short full name":         func(r *model.RegisterRequest) { r.FullName = "A" },
			"bad username characters": func(r *model.RegisterRequest) { r.Username = "Not Valid!" },
			"short username":          func(r *model.RegisterRequest) { r.Username = "ab" },
			"bad email":               func(r *model.RegisterRequest) { r.Email = "not-an-email" },
			"short password":          func(r *model.RegisterRequest) { r.Password = "Pw1" },
			"password without digits": func(r *model.RegisterRequest) { r.Password = "OnlyLetters" },
			"password without letters": func(r *model.RegisterRequest) {
				r.Password = "12345678"
			},
		} {
			t.Run(name, func(t *testing.T) {
				req := registerRequest()
				mutate(&req)
				_, err := f.service.Register(ctx, req)
				require.Error(t, err)
			})
		}
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	_, err := f.service.Register(ctx, registerRequest())
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		session, err := f.service.Login(ctx, "ab@x.com", "Passw0rd")
		require.NoError(t, err)
		require.Equal(t, "Signed in", session.Message)
		require.NotEmpty(t, session.AccessToken)
	})

	t.Run("email lookup is normalized", func(t *testing.T) {
		_, err := f.service.Login(ctx, "  AB@X.COM ", "Passw0rd")
		require.NoError(t, err)
	})

	t.Run("wrong password and unknown account are indistinguishable", func(t *testing.T) {
		_, wrongPassword := f.service.Login(ctx, "ab@x.com", "wrong")
		require.ErrorIs(t, wrongPassword, model.ErrInvalidCredentials)

		_, unknownAccount := f.service.Login(ctx, "ghost@x.com", "Passw0rd")
		require.ErrorIs(t, unknownAccount, model.ErrInvalidCredentials)
	})
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("rotation is single-use", func(t *testing.T) {
		f := newFixture(t)
		session, err := f.service.Register(ctx, registerRequest())
		require.NoError(t, err)

		refreshed, err := f.service.Refresh(ctx, session.RefreshToken)
		require.NoError(t, err)
		require.Equal(t, "Token refreshed", refreshed.Message)
		require.NotEqual(t, session.RefreshToken, refreshed.RefreshToken)

		// Replaying the consumed token fails.
		_, err = f.service.Refresh(ctx, session.RefreshToken)
		require.ErrorIs(t, err, model.ErrInvalidRefreshToken)

		// The new token works.
		_, err = f.service.Refresh(ctx, refreshed.RefreshToken)
		require.NoError(t, err)
	})

	t.Run("unknown token", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.Refresh(ctx, "never-issued")
		require.ErrorIs(t, err, model.ErrInvalidRefreshToken)
	})

	t.Run("ledger-valid token failing decode is revoked", func(t *testing.T) {
		f := newFixture(t)

		// Simulate ledger/codec disagreement: the ledger thinks the string
		// is active but it does not decode.
		garbage := "not.a.token"
		require.NoError(t, f.ledger.Save(ctx, garbage, 1, time.Now().Add(time.Hour).Unix()))

		_, err := f.service.Refresh(ctx, garbage)
		require.ErrorIs(t, err, model.ErrInvalidRefreshToken)

		valid, err := f.ledger.IsValid(ctx, garbage)
		require.NoError(t, err)
		require.False(t, valid, "decode failure must revoke the ledger entry")
	})

	t.Run("access token presented as refresh is rejected without revocation", func(t *testing.T) {
		f := newFixture(t)
		session, err := f.service.Register(ctx, registerRequest())
		require.NoError(t, err)

		require.NoError(t, f.ledger.Save(ctx, session.AccessToken, session.User.ID, time.Now().Add(time.Hour).Unix()))

		_, err = f.service.Refresh(ctx, session.AccessToken)
		require.ErrorIs(t, err, model.ErrWrongTokenType)

		// Wrong type is not evidence of compromise; the entry stays live.
		valid, err := f.ledger.IsValid(ctx, session.AccessToken)
		require.NoError(t, err)
		require.True(t, valid)
	})

	t.Run("vanished account revokes the token", func(t *testing.T) {
		f := newFixture(t)
		session, err := f.service.Register(ctx, registerRequest())
		require.NoError(t, err)

		f.users.Delete(session.User.ID)

		_, err = f.service.Refresh(ctx, session.RefreshToken)
		require.ErrorIs(t, err, model.ErrUserNotFound)

		valid, err := f.ledger.IsValid(ctx, session.RefreshToken)
		require.NoError(t, err)
		require.False(t, valid)
	})

	t.Run("logout revokes the refresh token", func(t *testing.T) {
		f := newFixture(t)
		session, err := f.service.Register(ctx, registerRequest())
		require.NoError(t, err)

		require.NoError(t, f.service.Logout(ctx, session.RefreshToken))
		_, err = f.service.Refresh(ctx, session.RefreshToken)
		require.ErrorIs(t, err, model.ErrInvalidRefreshToken)

		// Logging out twice is not an error.
		require.NoError(t, f.service.Logout(ctx, session.RefreshToken))
	})
}

func TestResolveIdentity(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("resolves the registered account", func(t *testing.T) {
		f := newFixture(t)
		session, err := f.service.Register(ctx, registerRequest())
		require.NoError(t, err)

		user, err := f.service.ResolveIdentity(ctx, "Bearer "+session.AccessToken)
		require.NoError(t, err)
		require.Equal(t, session.User, user)
	})

	t.Run("missing or unprefixed header", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.ResolveIdentity(ctx, "")
		require.ErrorIs(t, err, model.ErrMissingToken)

		_, err = f.service.ResolveIdentity(ctx, "Token abc")
		require.ErrorIs(t, err, model.ErrMissingToken)
	})

	t.Run("tampered token is a generic unauthorized", func(t *testing.T) {
		f := newFixture(t)
		session, err := f.service.Register(ctx, registerRequest())
		require.NoError(t, err)

		_, err = f.service.ResolveIdentity(ctx, "Bearer "+session.AccessToken+"x")
		require.ErrorIs(t, err, model.ErrUnauthorized)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		f := newFixture(t)
		session, err := f.service.Register(ctx, registerRequest())
		require.NoError(t, err)

		now := time.Now().Unix()
		expired, err := f.codec.Encode(token.Claims{
			Sub:   "1",
			Email: session.User.Email,
			Type:  token.TypeAccess,
			Iat:   now - 3600,
			Exp:   now - 1,
			Jti:   "expired",
		})
		require.NoError(t, err)

		_, err = f.service.ResolveIdentity(ctx, "Bearer "+expired)
		require.ErrorIs(t, err, model.ErrUnauthorized)
	})

	t.Run("refresh token is the wrong type at this checkpoint", func(t *testing.T) {
		f := newFixture(t)
		session, err := f.service.Register(ctx, registerRequest())
		require.NoError(t, err)

		_, err = f.service.ResolveIdentity(ctx, "Bearer "+session.RefreshToken)
		require.ErrorIs(t, err, model.ErrWrongTokenType)
	})

	t.Run("vanished account", func(t *testing.T) {
		f := newFixture(t)
		session, err := f.service.Register(ctx, registerRequest())
		require.NoError(t, err)

		f.users.Delete(session.User.ID)
		_, err = f.service.ResolveIdentity(ctx, "Bearer "+session.AccessToken)
		require.ErrorIs(t, err, model.ErrUserNotFound)
	})
}

func TestSeedDefaultUsers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.service.SeedDefaultUsers(ctx))

	session, err := f.service.Login(ctx, "demo@unihub.com", "Demo@123")
	require.NoError(t, err)
	require.Equal(t, "demo", session.User.Username)

	// Seeding is idempotent.
	require.NoError(t, f.service.SeedDefaultUsers(ctx))
	_, err = f.service.Login(ctx, "test@unihub.com", "Test@1234")
	require.NoError(t, err)
}
