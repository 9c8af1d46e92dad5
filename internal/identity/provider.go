// Package identity abstracts the external identity/notification
// collaborator: something that can establish email ownership for a user
// and answer whether it has been established. The auth flow only depends
// on this interface, so a hosted identity provider can replace the local
// implementation without touching any handler.
package identity

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/redmonkez12/trip-expense-api/internal/logging"
	"github.com/redmonkez12/trip-expense-api/internal/user"
)

// Provider is the capability "verify email ownership".
type Provider interface {
	// Register creates the external identity for a newly registered user
	// and starts the verification flow.
	Register(ctx context.Context, usermail string) error

	// SendVerification (re-)sends the verification message for an
	// existing unverified identity.
	SendVerification(ctx context.Context, usermail string) error

	// EmailVerified reports whether the identity's email ownership has
	// been established.
	EmailVerified(ctx context.Context, usermail string) (bool, error)
}

// Mailer is the slice of the email service the providers need.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, toEmail, token string) error
}

// MailProvider implements verification locally: a random token is stored
// on the user row and mailed out; the verify-email endpoint completes the
// loop by flipping the verified flag.
type MailProvider struct {
	users  *user.Repository
	mailer Mailer
	logger *logging.Logger
}

func NewMailProvider(users *user.Repository, mailer Mailer, logger *logging.Logger) *MailProvider {
	return &MailProvider{users: users, mailer: mailer, logger: logger}
}

func (p *MailProvider) Register(ctx context.Context, usermail string) error {
	return p.SendVerification(ctx, usermail)
}

func (p *MailProvider) SendVerification(ctx context.Context, usermail string) error {
	token, err := generateToken()
	if err != nil {
		return fmt.Errorf("failed to generate verification token: %w", err)
	}

	if err := p.users.UpdateVerificationToken(ctx, usermail, token); err != nil {
		return fmt.Errorf("failed to store verification token: %w", err)
	}

	// Delivery must not block or fail the request; the user can ask for a
	// resend by registering again.
	go func() {
		if err := p.mailer.SendVerificationEmail(context.Background(), usermail, token); err != nil {
			p.logger.Warn("failed to send verification email", "email", usermail, "error", err)
		}
	}()

	return nil
}

func (p *MailProvider) EmailVerified(ctx context.Context, usermail string) (bool, error) {
	u, err := p.users.GetByEmail(ctx, usermail)
	if err != nil {
		return false, err
	}
	return u.EmailVerified, nil
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// NoopProvider is the base-variant collaborator: no external identity,
// every email counts as verified.
type NoopProvider struct{}

func (NoopProvider) Register(ctx context.Context, usermail string) error         { return nil }
func (NoopProvider) SendVerification(ctx context.Context, usermail string) error { return nil }
func (NoopProvider) EmailVerified(ctx context.Context, usermail string) (bool, error) {
	return true, nil
}
