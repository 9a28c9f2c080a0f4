package domain

import (
	"time"

	"github.com/google/uuid"
)

// CodeChallenge is a single-use code proving control of an email address.
// The same shape backs both email confirmation and password recovery.
type CodeChallenge struct {
	Code      string    `bson:"code"`
	ExpiresAt time.Time `bson:"expires_at"`
	Confirmed bool      `bson:"confirmed"`
}

// IsValid reports whether the code can still be applied: it must not have
// been consumed yet and must not be past its expiration.
func (c *CodeChallenge) IsValid(now time.Time) bool {
	return !c.Confirmed && c.ExpiresAt.After(now)
}

// User is the identity aggregate. Login and email are unique among
// non-deleted users; deletion is always soft (DeletedAt set, document kept).
type User struct {
	ID                string         `bson:"_id,omitempty"`
	Login             string         `bson:"login"`
	Email             string         `bson:"email"`
	PasswordHash      string         `bson:"password_hash"`
	IsEmailConfirmed  bool           `bson:"is_email_confirmed"`
	EmailConfirmation *CodeChallenge `bson:"email_confirmation,omitempty"`
	PasswordRecovery  *CodeChallenge `bson:"password_recovery,omitempty"`
	CreatedAt         time.Time      `bson:"created_at"`
	UpdatedAt         time.Time      `bson:"updated_at"`
	DeletedAt         *time.Time     `bson:"deleted_at"`
}

// ResetEmailConfirmation assigns a fresh confirmation code expiring after ttl.
// Any previous confirmation state is discarded.
func (u *User) ResetEmailConfirmation(ttl time.Duration) {
	u.EmailConfirmation = newChallenge(ttl)
}

// ResetPasswordRecovery assigns a fresh recovery code expiring after ttl.
func (u *User) ResetPasswordRecovery(ttl time.Duration) {
	u.PasswordRecovery = newChallenge(ttl)
}

func newChallenge(ttl time.Duration) *CodeChallenge {
	return &CodeChallenge{
		Code:      uuid.NewString(),
		ExpiresAt: time.Now().UTC().Add(ttl),
	}
}
