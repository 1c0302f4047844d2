package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TokenRepository is the refresh token ledger. Rows are created on issue and
// flipped to revoked on rotation or logout; they are never deleted, so a
// presented token can be rejected idempotently for as long as it exists.
type TokenRepository struct {
	pool *pgxpool.Pool
}

func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{pool: pool}
}

// Save upserts the record as active. The single-statement upsert keeps the
// write path atomic per key. Overwriting an existing token string is
// permitted; collisions are cryptographically implausible.
func (r *TokenRepository) Save(ctx context.Context, token string, userID int64, expiresAt int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO refresh_tokens (token, user_id, expires_at, created_at, revoked)
		 VALUES ($1, $2, $3, $4, false)
		 ON CONFLICT (token) DO UPDATE
		 SET user_id = EXCLUDED.user_id,
		     expires_at = EXCLUDED.expires_at,
		     created_at = EXCLUDED.created_at,
		     revoked = false`,
		token, userID, expiresAt, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}
	return nil
}

// IsValid reports whether an active, unexpired record exists for token.
// Absence of a record is invalid; there is no default-allow.
func (r *TokenRepository) IsValid(ctx context.Context, token string) (bool, error) {
	var revoked bool
	var expiresAt int64
	err := r.pool.QueryRow(ctx,
		`SELECT revoked, expires_at FROM refresh_tokens WHERE token = $1`, token).
		Scan(&revoked, &expiresAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check refresh token: %w", err)
	}
	return !revoked && expiresAt > time.Now().Unix(), nil
}

// Revoke marks the record revoked. Revoking twice, or a token that was never
// saved, is not an error.
func (r *TokenRepository) Revoke(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE refresh_tokens SET revoked = true WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}
