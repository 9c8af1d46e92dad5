package auth

import (
	"errors"
	"time"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// TokenService issues and verifies self-contained bearer tokens carrying
// the user's email under the "usermail" claim. Tokens are stateless: there
// is no revocation list, so a token stays valid for its full TTL.
//
// Implementations: JWTService (HMAC-signed JWT, the default) and
// PasetoService (PASETO v4.local).
type TokenService interface {
	Issue(usermail string, ttl time.Duration) (string, error)
	Verify(tokenStr string) (string, error)
}
