package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pasetoTestKey = []byte("0123456789abcdef0123456789abcdef")

func TestNewPasetoService_KeyLength(t *testing.T) {
	_, err := NewPasetoService([]byte("too-short"))
	assert.Error(t, err)

	svc, err := NewPasetoService(pasetoTestKey)
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestPasetoService_RoundTrip(t *testing.T) {
	svc, err := NewPasetoService(pasetoTestKey)
	require.NoError(t, err)

	token, err := svc.Issue("user@example.com", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	usermail, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", usermail)
}

func TestPasetoService_Verify_Expired(t *testing.T) {
	svc, err := NewPasetoService(pasetoTestKey)
	require.NoError(t, err)

	token, err := svc.Issue("user@example.com", -time.Minute)
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestPasetoService_Verify_WrongKey(t *testing.T) {
	issuer, err := NewPasetoService(pasetoTestKey)
	require.NoError(t, err)
	verifier, err := NewPasetoService([]byte("ffffffffffffffffffffffffffffffff"))
	require.NoError(t, err)

	token, err := issuer.Issue("user@example.com", time.Hour)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasetoService_Verify_Garbage(t *testing.T) {
	svc, err := NewPasetoService(pasetoTestKey)
	require.NoError(t, err)

	_, err = svc.Verify("v4.local.not-a-real-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
