package user

import "time"

// User is the credential record. The email address identifies the user;
// there is no surrogate id.
type User struct {
	Usermail           string     `json:"usermail"`
	FirstName          string     `json:"first_name"`
	LastName           string     `json:"last_name"`
	HashedPassword     string     `json:"-"`
	EmailVerified      bool       `json:"email_verified"`
	VerificationToken  *string    `json:"-"`
	VerificationSentAt *time.Time `json:"-"`
}
