package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// PasswordScheme produces the stored credential form and compares a
// supplied credential against it. Swapping schemes never changes the
// handler contract: clients always send a "hashed_password" field.
type PasswordScheme interface {
	Hash(password string) (string, error)
	Verify(stored, supplied string) bool
}

// NewPasswordScheme returns the scheme for the configured name.
func NewPasswordScheme(name string) (PasswordScheme, error) {
	switch name {
	case "plain":
		return PlainScheme{}, nil
	case "argon2id":
		return Argon2Scheme{}, nil
	default:
		return nil, fmt.Errorf("unsupported password scheme %q", name)
	}
}

// PlainScheme stores the client-supplied hash verbatim and compares in
// constant time. This is the wire contract of the original API: hashing,
// if any, happens on the client.
type PlainScheme struct{}

func (PlainScheme) Hash(password string) (string, error) {
	return password, nil
}

func (PlainScheme) Verify(stored, supplied string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}

// Argon2id parameters: time 3, memory 64MB, 4 threads, 32-byte key.
const (
	argon2Time    = 3
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2KeyLen  = 32
	saltLen       = 16
)

// Argon2Scheme hashes server-side with argon2id. The stored form is
// $argon2id$v=19$m=65536,t=3,p=4$salt$hash.
type Argon2Scheme struct{}

func (Argon2Scheme) Hash(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey(
		[]byte(password),
		salt,
		argon2Time,
		argon2Memory,
		argon2Threads,
		argon2KeyLen,
	)

	encodedSalt := base64.RawStdEncoding.EncodeToString(salt)
	encodedHash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		encodedSalt,
		encodedHash,
	), nil
}

func (Argon2Scheme) Verify(stored, supplied string) bool {
	parts := strings.Split(stored, "$")
	if len(parts) != 6 {
		return false
	}

	var version int
	var memory, time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false
	}
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	decodedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}

	inputHash := argon2.IDKey(
		[]byte(supplied),
		salt,
		time,
		memory,
		threads,
		uint32(len(decodedHash)),
	)

	return subtle.ConstantTimeCompare(decodedHash, inputHash) == 1
}
