package repository

import (
	"context"
	"sync"
	"time"

	"unihub-auth/internal/model"
)

// MemoryUserRepository implements the user directory in memory with the
// same semantics as the Postgres repository. Used by tests.
type MemoryUserRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]model.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{nextID: 1, byID: map[int64]model.User{}}
}

func (r *MemoryUserRepository) Create(_ context.Context, u model.User) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.byID {
		if existing.Email == u.Email {
			return model.User{}, model.ErrEmailTaken
		}
		if existing.Username == u.Username {
			return model.User{}, model.ErrUsernameTaken
		}
	}

	u.ID = r.nextID
	r.nextID++
	r.byID[u.ID] = u
	return u, nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id int64) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

// Delete exists so tests can simulate an account vanishing between token
// issue and refresh.
func (r *MemoryUserRepository) Delete(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
}

// MemoryTokenRepository is the in-memory refresh token ledger.
type MemoryTokenRepository struct {
	mu      sync.RWMutex
	records map[string]model.RefreshTokenRecord
	now     func() time.Time
}

func NewMemoryTokenRepository() *MemoryTokenRepository {
	return &MemoryTokenRepository{records: map[string]model.RefreshTokenRecord{}, now: time.Now}
}

// SetClock overrides the ledger clock. Tests only.
func (r *MemoryTokenRepository) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

func (r *MemoryTokenRepository) Save(_ context.Context, token string, userID int64, expiresAt int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[token] = model.RefreshTokenRecord{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: r.now().UTC(),
		Revoked:   false,
	}
	return nil
}

func (r *MemoryTokenRepository) IsValid(_ context.Context, token string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[token]
	if !ok {
		return false, nil
	}
	return !rec.Revoked && rec.ExpiresAt > r.now().Unix(), nil
}

func (r *MemoryTokenRepository) Revoke(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[token]
	if !ok {
		return nil
	}
	rec.Revoked = true
	r.records[token] = rec
	return nil
}
