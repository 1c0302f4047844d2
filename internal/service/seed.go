package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"unihub-auth/internal/model"
)

type seedUser struct {
	fullName string
	username string
	email    string
	password string
}

var defaultUsers = []seedUser{
	{fullName: "Demo User", username: "demo", email: "demo@unihub.com", password: "Demo@123"},
	{fullName: "Test User", username: "testuser", email: "test@unihub.com", password: "Test@1234"},
}

// SeedDefaultUsers creates the demo accounts if they do not exist yet.
// Only runs when explicitly enabled in config; meant for development setups.
func (s *AuthService) SeedDefaultUsers(ctx context.Context) error {
	for _, seed := range defaultUsers {
		if _, err := s.users.FindByEmail(ctx, seed.email); err == nil {
			continue
		} else if !errors.Is(err, model.ErrUserNotFound) {
			return fmt.Errorf("check seed user %s: %w", seed.email, err)
		}

		hash, err := s.hasher.Hash(seed.password)
		if err != nil {
			return fmt.Errorf("hash seed password: %w", err)
		}

		if _, err := s.users.Create(ctx, model.User{
			FullName:     seed.fullName,
			Username:     seed.username,
			Email:        seed.email,
			PasswordHash: hash,
			CreatedAt:    s.now().UTC(),
		}); err != nil {
			return fmt.Errorf("create seed user %s: %w", seed.email, err)
		}
		slog.Info("seeded demo user", "email", seed.email)
	}
	return nil
}
