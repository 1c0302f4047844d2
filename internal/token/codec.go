// Package token implements the compact three-part signed token format and
// the access/refresh issuer built on top of it.
//
// Wire format: base64url(header) + "." + base64url(payload) + "." +
// base64url(HMAC-SHA256(secret, first two parts)), all segments unpadded.
// The header is the literal {"alg":"HS256","typ":"JWT"}.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

const headerJSON = `{"alg":"HS256","typ":"JWT"}`

var (
	ErrMalformedToken   = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrInvalidPayload   = errors.New("invalid token payload")
	ErrTokenExpired     = errors.New("token expired")
)

var b64 = base64.RawURLEncoding

// Codec signs and verifies tokens under a single process-wide secret,
// injected once at construction. It holds no mutable state and is safe for
// unrestricted concurrent use.
type Codec struct {
	secret []byte
	now    func() time.Time
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret), now: time.Now}
}

// Sign returns the unpadded base64url HMAC-SHA256 of signingInput.
func (c *Codec) Sign(signingInput string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(signingInput))
	return b64.EncodeToString(mac.Sum(nil))
}

// Encode serializes claims into a signed compact token.
func (c *Codec) Encode(claims Claims) (string, error) {
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	signingInput := b64.EncodeToString([]byte(headerJSON)) + "." + b64.EncodeToString(payload)
	return signingInput + "." + c.Sign(signingInput), nil
}

// Decode verifies and parses a token. The signature is checked before any
// trust is placed in the payload, including the expiry check; a token is
// expired at now >= exp.
func (c *Codec) Decode(tokenString string) (Claims, error) {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return Claims{}, ErrMalformedToken
	}

	expected := c.Sign(parts[0] + "." + parts[1])
	if !hmac.Equal([]byte(expected), []byte(parts[2])) {
		return Claims{}, ErrInvalidSignature
	}

	payload, err := b64.DecodeString(parts[1])
	if err != nil {
		return Claims{}, ErrInvalidPayload
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return Claims{}, ErrInvalidPayload
	}
	if claims.Sub == "" || claims.Exp == 0 {
		return Claims{}, ErrInvalidPayload
	}

	if c.now().Unix() >= claims.Exp {
		return Claims{}, ErrTokenExpired
	}

	return claims, nil
}
