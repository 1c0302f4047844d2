package token

// Token type tags. The type claim determines which checkpoints accept a token.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims is the signed token payload. Field order matters: the encoder
// marshals fields in declaration order and tests assert on the wire bytes.
type Claims struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Type  string `json:"type"`
	Iat   int64  `json:"iat"`
	Exp   int64  `json:"exp"`
	Jti   string `json:"jti"`
}
