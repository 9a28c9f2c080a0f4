package ports

import "context"

// RegisterUserInput carries the data needed to create a new account.
type RegisterUserInput struct {
	Login    string
	Email    string
	Password string
}

// LoginInput carries login credentials.
type LoginInput struct {
	Login    string
	Password string
}

// UserContext is the ephemeral identity derived from a verified token. It
// lives for the duration of a single request and is never persisted.
type UserContext struct {
	UserID string
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	AccessToken string
}

// AuthService orchestrates the credential lifecycle.
type AuthService interface {
	// RegisterUser creates an account and dispatches a confirmation email.
	// The email send is fire-and-forget; registration succeeds once the user
	// is persisted.
	RegisterUser(ctx context.Context, input RegisterUserInput) error

	// ValidateUser checks credentials and yields the user context. Both an
	// unknown login and a wrong password fail identically.
	ValidateUser(ctx context.Context, input LoginInput) (UserContext, error)

	// Login issues an access token for a validated user context.
	Login(ctx context.Context, user UserContext) (LoginResult, error)

	// PasswordRecovery assigns a recovery code and emails it. An unknown
	// email succeeds silently so callers cannot probe for registered emails.
	PasswordRecovery(ctx context.Context, email string) error

	// NewPassword applies a password change authorized by a recovery code.
	// Invalid, expired or consumed codes are a silent no-op.
	NewPassword(ctx context.Context, newPassword, recoveryCode string) error

	// RegistrationConfirmation marks the email confirmed. Invalid, expired
	// or consumed codes are a silent no-op.
	RegistrationConfirmation(ctx context.Context, code string) error

	// RegistrationEmailResending regenerates the confirmation code and emails
	// it. Unknown or already-confirmed emails are a silent no-op.
	RegistrationEmailResending(ctx context.Context, email string) error
}
