package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"unihub-auth/internal/model"
)

// identityResolver is the single identity hand-off point of the auth core.
type identityResolver interface {
	ResolveIdentity(ctx context.Context, authorization string) (model.PublicUser, error)
}

type contextKey string

const currentUserContextKey contextKey = "current_user"

type AuthMiddleware struct {
	resolver identityResolver
}

func NewAuthMiddleware(resolver identityResolver) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver}
}

// RequireAuth rejects the request unless the Authorization header resolves
// to an account. All protected routes sit behind this.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.resolver.ResolveIdentity(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			writeUnauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), currentUserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func UserFromContext(ctx context.Context) (model.PublicUser, bool) {
	user, ok := ctx.Value(currentUserContextKey).(model.PublicUser)
	return user, ok
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    "UNAUTHORIZED",
			Message: "Invalid or expired token",
		},
	})
}
