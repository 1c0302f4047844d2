package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"unihub-auth/internal/model"
	"unihub-auth/internal/password"
	"unihub-auth/internal/token"
	"unihub-auth/pkg/apierror"
)

var (
	usernameRE = regexp.MustCompile(`^[a-z0-9._]{3,20}$`)
	emailRE    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// UserDirectory is the account store the session protocol reads and writes.
type UserDirectory interface {
	Create(ctx context.Context, u model.User) (model.User, error)
	FindByID(ctx context.Context, id int64) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
}

// TokenLedger tracks refresh token validity. Refresh tokens are the only
// token class with server-side revocation; access tokens stay stateless.
type TokenLedger interface {
	Save(ctx context.Context, token string, userID int64, expiresAt int64) error
	IsValid(ctx context.Context, token string) (bool, error)
	Revoke(ctx context.Context, token string) error
}

// AuthService orchestrates registration, login, refresh rotation and bearer
// identity resolution over the credential codec, token issuer and ledger.
type AuthService struct {
	hasher *password.Hasher
	codec  *token.Codec
	issuer *token.Issuer
	users  UserDirectory
	ledger TokenLedger
	now    func() time.Time
}

func NewAuthService(hasher *password.Hasher, codec *token.Codec, issuer *token.Issuer, users UserDirectory, ledger TokenLedger) *AuthService {
	return &AuthService{
		hasher: hasher,
		codec:  codec,
		issuer: issuer,
		users:  users,
		ledger: ledger,
		now:    time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	fullName := strings.TrimSpace(req.FullName)
	username := strings.ToLower(strings.TrimSpace(req.Username))
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if len(fullName) < 2 || len(fullName) > 80 {
		return model.AuthResponse{}, validationError("full_name must be 2-80 characters", "full_name")
	}
	if !usernameRE.MatchString(username) {
		return model.AuthResponse{}, validationError("username must be 3-20 chars: lowercase letters, numbers, dot, underscore", "username")
	}
	if !emailRE.MatchString(email) {
		return model.AuthResponse{}, validationError("enter a valid email address", "email")
	}
	if len(req.Password) < 8 || len(req.Password) > 128 {
		return model.AuthResponse{}, validationError("password must be 8-128 characters", "password")
	}
	if !passwordStrongEnough(req.Password) {
		return model.AuthResponse{}, validationError("password must include letters and numbers", "password")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return model.AuthResponse{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, model.User{
		FullName:     fullName,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Provider:     req.Provider,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return model.AuthResponse{}, err
	}

	return s.issueSession(ctx, user, "Account created")
}

func (s *AuthService) Login(ctx context.Context, email string, plaintext string) (model.AuthResponse, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.FindByEmail(ctx, normalized)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.AuthResponse{}, model.ErrInvalidCredentials
	}
	if err != nil {
		return model.AuthResponse{}, err
	}

	if !s.hasher.Verify(plaintext, user.PasswordHash) {
		return model.AuthResponse{}, model.ErrInvalidCredentials
	}

	return s.issueSession(ctx, user, "Signed in")
}

// Refresh rotates a refresh token: the presented token is revoked and a
// brand-new access/refresh pair is issued. A token that passes the ledger
// check but fails decode is treated as compromised and revoked before the
// rejection is surfaced.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (model.AuthResponse, error) {
	refreshToken = strings.TrimSpace(refreshToken)

	valid, err := s.ledger.IsValid(ctx, refreshToken)
	if err != nil {
		return model.AuthResponse{}, err
	}
	if !valid {
		return model.AuthResponse{}, model.ErrInvalidRefreshToken
	}

	claims, err := s.codec.Decode(refreshToken)
	if err != nil {
		slog.Warn("refresh token failed decode after ledger check; revoking", "reason", err)
		if revokeErr := s.ledger.Revoke(ctx, refreshToken); revokeErr != nil {
			return model.AuthResponse{}, revokeErr
		}
		return model.AuthResponse{}, model.ErrInvalidRefreshToken
	}

	if claims.Type != token.TypeRefresh {
		return model.AuthResponse{}, model.ErrWrongTokenType
	}

	userID, err := strconv.ParseInt(claims.Sub, 10, 64)
	if err != nil {
		if revokeErr := s.ledger.Revoke(ctx, refreshToken); revokeErr != nil {
			return model.AuthResponse{}, revokeErr
		}
		return model.AuthResponse{}, model.ErrInvalidRefreshToken
	}

	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, model.ErrUserNotFound) {
		if revokeErr := s.ledger.Revoke(ctx, refreshToken); revokeErr != nil {
			return model.AuthResponse{}, revokeErr
		}
		return model.AuthResponse{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.AuthResponse{}, err
	}

	// Single-use rotation.
	if err := s.ledger.Revoke(ctx, refreshToken); err != nil {
		return model.AuthResponse{}, err
	}

	return s.issueSession(ctx, user, "Token refreshed")
}

// Logout revokes the presented refresh token. Idempotent.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.ledger.Revoke(ctx, strings.TrimSpace(refreshToken))
}

// ResolveIdentity turns an Authorization header value into the public
// account view. This is the sole identity hand-off point for the rest of
// the system; every protected operation calls it as a precondition.
func (s *AuthService) ResolveIdentity(ctx context.Context, authorization string) (model.PublicUser, error) {
	if authorization == "" || !strings.HasPrefix(authorization, "Bearer ") {
		return model.PublicUser{}, model.ErrMissingToken
	}

	claims, err := s.codec.Decode(strings.TrimSpace(authorization[len("Bearer "):]))
	if err != nil {
		// The specific failure stays in the logs; clients get a generic 401.
		slog.Warn("bearer token rejected", "reason", err)
		return model.PublicUser{}, model.ErrUnauthorized
	}

	if claims.Type != token.TypeAccess {
		return model.PublicUser{}, model.ErrWrongTokenType
	}

	userID, err := strconv.ParseInt(claims.Sub, 10, 64)
	if err != nil {
		return model.PublicUser{}, model.ErrUnauthorized
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return model.PublicUser{}, err
	}

	return user.Public(), nil
}

func (s *AuthService) issueSession(ctx context.Context, user model.User, message string) (model.AuthResponse, error) {
	accessToken, err := s.issuer.IssueAccess(user.ID, user.Email)
	if err != nil {
		return model.AuthResponse{}, fmt.Errorf("issue access token: %w", err)
	}

	refreshToken, err := s.issuer.IssueRefresh(user.ID, user.Email)
	if err != nil {
		return model.AuthResponse{}, fmt.Errorf("issue refresh token: %w", err)
	}

	expiresAt := s.now().Unix() + int64(s.issuer.RefreshTTL().Seconds())
	if err := s.ledger.Save(ctx, refreshToken, user.ID, expiresAt); err != nil {
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{
		Message:      message,
		User:         user.Public(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}, nil
}

func passwordStrongEnough(plaintext string) bool {
	var hasLetter, hasDigit bool
	for _, ch := range plaintext {
		switch {
		case unicode.IsLetter(ch):
			hasLetter = true
		case unicode.IsDigit(ch):
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

func validationError(message string, field string) *apierror.APIError {
	return apierror.New("VALIDATION_ERROR", message, field, http.StatusUnprocessableEntity)
}
