package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/redmonkez12/trip-expense-api/internal/identity"
	"github.com/redmonkez12/trip-expense-api/internal/logging"
	"github.com/redmonkez12/trip-expense-api/internal/user"
)

var (
	ErrInvalidCredentials       = errors.New("invalid email or password")
	ErrDuplicateUser            = errors.New("user already exists")
	ErrEmailNotVerified         = errors.New("email not verified")
	ErrEmailRequired            = errors.New("email is required")
	ErrInvalidEmailFormat       = errors.New("invalid email format")
	ErrPasswordRequired         = errors.New("password is required")
	ErrInvalidVerificationToken = errors.New("invalid verification token")
	ErrVerificationExpired      = errors.New("verification token has expired")
)

// verificationTokenTTL bounds how long a mailed verification link stays valid.
const verificationTokenTTL = 24 * time.Hour

// UserStore is the slice of the credential repository the auth flow needs.
type UserStore interface {
	Create(ctx context.Context, usermail, firstName, lastName, hashedPassword string) (*user.User, error)
	GetByEmail(ctx context.Context, usermail string) (*user.User, error)
	GetByVerificationToken(ctx context.Context, token string) (*user.User, error)
	MarkEmailVerified(ctx context.Context, usermail string) error
}

// Service implements registration, login and email verification. The
// base/extended variants are one pipeline: requireVerified selects the
// extended behavior.
type Service struct {
	users            UserStore
	tokens           TokenService
	provider         identity.Provider
	passwords        PasswordScheme
	logger           *logging.Logger
	loginTokenTTL    time.Duration
	registerTokenTTL time.Duration
	requireVerified  bool
}

func NewService(
	users UserStore,
	tokens TokenService,
	provider identity.Provider,
	passwords PasswordScheme,
	logger *logging.Logger,
	loginTokenTTL time.Duration,
	registerTokenTTL time.Duration,
	requireVerified bool,
) *Service {
	return &Service{
		users:            users,
		tokens:           tokens,
		provider:         provider,
		passwords:        passwords,
		logger:           logger,
		loginTokenTTL:    loginTokenTTL,
		registerTokenTTL: registerTokenTTL,
		requireVerified:  requireVerified,
	}
}

// RegisterInput is the validated registration payload. HashedPassword is
// whatever the client sends; the active password scheme decides what gets
// stored.
type RegisterInput struct {
	Usermail       string
	FirstName      string
	LastName       string
	HashedPassword string
}

// RegisterResult carries the outcome message and, in the base variant,
// an immediately issued token.
type RegisterResult struct {
	Message string
	Token   string
}

// Register creates a new user, or re-sends verification for an existing
// unverified one. An existing verified user is a duplicate.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	if in.Usermail == "" {
		return nil, ErrEmailRequired
	}
	if _, err := mail.ParseAddress(in.Usermail); err != nil {
		return nil, ErrInvalidEmailFormat
	}
	if in.HashedPassword == "" {
		return nil, ErrPasswordRequired
	}

	existing, err := s.users.GetByEmail(ctx, in.Usermail)
	if err == nil {
		if existing.EmailVerified {
			return nil, ErrDuplicateUser
		}
		if err := s.provider.SendVerification(ctx, in.Usermail); err != nil {
			return nil, fmt.Errorf("failed to re-send verification: %w", err)
		}
		return &RegisterResult{
			Message: "User already registered but not verified. Verification email re-sent.",
		}, nil
	}
	if !errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	stored, err := s.passwords.Hash(in.HashedPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare credential: %w", err)
	}

	if _, err := s.users.Create(ctx, in.Usermail, in.FirstName, in.LastName, stored); err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.provider.Register(ctx, in.Usermail); err != nil {
		// The local record exists; verification can be re-triggered by
		// registering again.
		s.logger.Warn("failed to start identity verification", "email", in.Usermail, "error", err)
	}

	if s.requireVerified {
		return &RegisterResult{
			Message: "User added successfully. Please verify your email address before logging in.",
		}, nil
	}

	token, err := s.tokens.Issue(in.Usermail, s.registerTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &RegisterResult{
		Message: "User added successfully",
		Token:   token,
	}, nil
}

// Login checks the credentials and returns a fresh token. In the extended
// variant the identity provider is the source of truth for the verified
// flag; when it says verified and the local record disagrees, the local
// record is brought in line.
func (s *Service) Login(ctx context.Context, usermail, hashedPassword string) (string, error) {
	if usermail == "" || hashedPassword == "" {
		return "", ErrInvalidCredentials
	}

	existing, err := s.users.GetByEmail(ctx, usermail)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	if !s.passwords.Verify(existing.HashedPassword, hashedPassword) {
		return "", ErrInvalidCredentials
	}

	if s.requireVerified {
		verified, err := s.provider.EmailVerified(ctx, usermail)
		if err != nil {
			return "", fmt.Errorf("failed to check verification status: %w", err)
		}
		if !verified {
			return "", ErrEmailNotVerified
		}
		if !existing.EmailVerified {
			// One-way sync from the provider.
			if err := s.users.MarkEmailVerified(ctx, usermail); err != nil {
				s.logger.Warn("failed to sync verified flag", "email", usermail, "error", err)
			}
		}
	}

	token, err := s.tokens.Issue(usermail, s.loginTokenTTL)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	return token, nil
}

// VerifyEmail completes the mail-based verification flow.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	existing, err := s.users.GetByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrInvalidVerificationToken
		}
		return fmt.Errorf("failed to find user by token: %w", err)
	}

	if existing.VerificationSentAt == nil || time.Now().After(existing.VerificationSentAt.Add(verificationTokenTTL)) {
		return ErrVerificationExpired
	}

	if err := s.users.MarkEmailVerified(ctx, existing.Usermail); err != nil {
		return fmt.Errorf("failed to verify email: %w", err)
	}

	return nil
}
