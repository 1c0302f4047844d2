package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssuer(t *testing.T) {
	t.Parallel()

	codec := NewCodec(testSecret)
	issuer := NewIssuer(codec, 30*time.Minute, 7*24*time.Hour)

	t.Run("access token carries the access type and TTL", func(t *testing.T) {
		issued, err := issuer.IssueAccess(42, "ab@x.com")
		require.NoError(t, err)

		claims, err := codec.Decode(issued)
		require.NoError(t, err)
		require.Equal(t, "42", claims.Sub)
		require.Equal(t, "ab@x.com", claims.Email)
		require.Equal(t, TypeAccess, claims.Type)
		require.Equal(t, int64((30 * time.Minute).Seconds()), claims.Exp-claims.Iat)
		require.NotEmpty(t, claims.Jti)
	})

	t.Run("refresh token carries the refresh type and TTL", func(t *testing.T) {
		issued, err := issuer.IssueRefresh(42, "ab@x.com")
		require.NoError(t, err)

		claims, err := codec.Decode(issued)
		require.NoError(t, err)
		require.Equal(t, TypeRefresh, claims.Type)
		require.Equal(t, int64((7 * 24 * time.Hour).Seconds()), claims.Exp-claims.Iat)
	})

	t.Run("tokens are never byte-identical", func(t *testing.T) {
		// A fresh jti per call guarantees this even within one second.
		first, err := issuer.IssueAccess(42, "ab@x.com")
		require.NoError(t, err)
		second, err := issuer.IssueAccess(42, "ab@x.com")
		require.NoError(t, err)
		require.NotEqual(t, first, second)
	})

	t.Run("zero TTLs fall back to defaults", func(t *testing.T) {
		fallback := NewIssuer(codec, 0, 0)
		require.Equal(t, DefaultRefreshTTL, fallback.RefreshTTL())

		issued, err := fallback.IssueAccess(1, "demo@unihub.com")
		require.NoError(t, err)
		claims, err := codec.Decode(issued)
		require.NoError(t, err)
		require.Equal(t, int64(DefaultAccessTTL.Seconds()), claims.Exp-claims.Iat)
	})
}
