package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the JWT payload: the identity claim plus the registered
// expiry/issued-at fields.
type Claims struct {
	Usermail string `json:"usermail"`
	jwt.RegisteredClaims
}

// JWTService signs and verifies JWTs with a shared secret.
type JWTService struct {
	secret []byte
	method jwt.SigningMethod
}

// NewJWTService creates a JWT token service. algorithm must be one of
// HS256, HS384 or HS512.
func NewJWTService(secret []byte, algorithm string) (*JWTService, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("signing secret must not be empty")
	}

	var method jwt.SigningMethod
	switch algorithm {
	case "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}

	return &JWTService{secret: secret, method: method}, nil
}

// Issue creates a signed token that expires ttl from now.
func (s *JWTService) Issue(usermail string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Usermail: usermail,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(s.method, claims)
	return token.SignedString(s.secret)
}

// Verify checks the signature and expiry and returns the usermail claim.
func (s *JWTService) Verify(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{s.method.Alg()}))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Usermail == "" {
		return "", ErrInvalidToken
	}

	return claims.Usermail, nil
}
