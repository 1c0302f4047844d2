package token

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultAccessTTL  = 30 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// Issuer mints access and refresh tokens with the appropriate type tags and
// expirations. Stateless; safe for concurrent use.
type Issuer struct {
	codec      *Codec
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewIssuer(codec *Codec, accessTTL time.Duration, refreshTTL time.Duration) *Issuer {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}
	return &Issuer{codec: codec, accessTTL: accessTTL, refreshTTL: refreshTTL, now: time.Now}
}

func (i *Issuer) IssueAccess(userID int64, email string) (string, error) {
	return i.issue(userID, email, TypeAccess, i.accessTTL)
}

func (i *Issuer) IssueRefresh(userID int64, email string) (string, error) {
	return i.issue(userID, email, TypeRefresh, i.refreshTTL)
}

// RefreshTTL exposes the configured refresh lifetime so the session layer
// can record the matching ledger expiry.
func (i *Issuer) RefreshTTL() time.Duration {
	return i.refreshTTL
}

func (i *Issuer) issue(userID int64, email string, tokenType string, ttl time.Duration) (string, error) {
	now := i.now().Unix()
	return i.codec.Encode(Claims{
		Sub:   strconv.FormatInt(userID, 10),
		Email: email,
		Type:  tokenType,
		Iat:   now,
		Exp:   now + int64(ttl.Seconds()),
		Jti:   uuid.NewString(),
	})
}
