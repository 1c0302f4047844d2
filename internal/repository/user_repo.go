package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"unihub-auth/internal/model"
)

const uniqueViolation = "23505"

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts a new account. Which uniqueness constraint fired is taken
// from the typed driver error, never from matching on error text.
func (r *UserRepository) Create(ctx context.Context, u model.User) (model.User, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (full_name, username, email, password_hash, provider, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		u.FullName, u.Username, u.Email, u.PasswordHash, u.Provider, u.CreatedAt).
		Scan(&u.ID)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case "users_email_key":
			return model.User{}, model.ErrEmailTaken
		case "users_username_key":
			return model.User{}, model.ErrUsernameTaken
		}
		return model.User{}, model.ErrEmailTaken
	}
	if err != nil {
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (model.User, error) {
	return r.findOne(ctx,
		`SELECT id, full_name, username, email, password_hash, provider, created_at
		 FROM users WHERE id = $1`, id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (model.User, error) {
	return r.findOne(ctx,
		`SELECT id, full_name, username, email, password_hash, provider, created_at
		 FROM users WHERE email = $1`, strings.ToLower(strings.TrimSpace(email)))
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx, query, arg).
		Scan(&u.ID, &u.FullName, &u.Username, &u.Email, &u.PasswordHash, &u.Provider, &u.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}
