package model

import "time"

// User is the full account row, including the credential hash.
// Only the repository and service layers ever see it.
type User struct {
	ID           int64     `json:"id"`
	FullName     string    `json:"full_name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Provider     *string   `json:"provider"`
	CreatedAt    time.Time `json:"created_at"`
}

// PublicUser is the view handed to clients and downstream collaborators.
// It never carries the credential hash.
type PublicUser struct {
	ID        int64     `json:"id"`
	FullName  string    `json:"full_name"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Provider  *string   `json:"provider"`
	CreatedAt time.Time `json:"created_at"`
}

// Public strips the credential hash from a User.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		FullName:  u.FullName,
		Username:  u.Username,
		Email:     u.Email,
		Provider:  u.Provider,
		CreatedAt: u.CreatedAt,
	}
}

// RefreshTokenRecord is a row in the refresh token ledger. Rows are only
// ever flipped to revoked, never deleted.
type RefreshTokenRecord struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	ExpiresAt int64     `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	Revoked   bool      `json:"revoked"`
}

// AuthResponse is the session payload returned by register, login and refresh.
type AuthResponse struct {
	Message      string     `json:"message"`
	User         PublicUser `json:"user"`
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	TokenType    string     `json:"token_type"`
}
