package auth

import (
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
)

// PasetoService is the alternate token codec, using PASETO v4.local
// (symmetric encryption with XChaCha20-Poly1305). Selected with
// TOKEN_PROVIDER=paseto; the key must be exactly 32 bytes.
type PasetoService struct {
	symmetricKey paseto.V4SymmetricKey
}

func NewPasetoService(symmetricKey []byte) (*PasetoService, error) {
	if len(symmetricKey) != 32 {
		return nil, fmt.Errorf("symmetric key must be exactly 32 bytes, got %d", len(symmetricKey))
	}

	key, err := paseto.V4SymmetricKeyFromBytes(symmetricKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create symmetric key: %w", err)
	}

	return &PasetoService{symmetricKey: key}, nil
}

// Issue creates an encrypted token that expires ttl from now.
func (s *PasetoService) Issue(usermail string, ttl time.Duration) (string, error) {
	now := time.Now()

	token := paseto.NewToken()
	token.SetIssuedAt(now)
	token.SetExpiration(now.Add(ttl))
	token.SetString("usermail", usermail)

	return token.V4Encrypt(s.symmetricKey, nil), nil
}

// Verify decrypts the token, checks expiry and returns the usermail claim.
func (s *PasetoService) Verify(tokenStr string) (string, error) {
	parser := paseto.NewParser()

	token, err := parser.ParseV4Local(s.symmetricKey, tokenStr, nil)
	if err != nil {
		// The parser checks expiration by default; a rule error means the
		// token decrypted fine but a claim check (expiry) failed.
		var ruleErr *paseto.RuleError
		if errors.As(err, &ruleErr) {
			return "", ErrExpiredToken
		}
		return "", ErrInvalidToken
	}

	usermail, err := token.GetString("usermail")
	if err != nil || usermail == "" {
		return "", ErrInvalidToken
	}

	return usermail, nil
}
