package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/bloggers-platform/accounts-api/internal/core/domain"
	"github.com/bloggers-platform/accounts-api/internal/core/ports"
	"github.com/bloggers-platform/accounts-api/internal/pkg/metrics"
)

// Expirations holds the configured lifetimes of single-use codes. Loaded once
// at startup and passed by reference; a zero value means the key was unset.
type Expirations struct {
	EmailConfirmation time.Duration
	PasswordRecovery  time.Duration
}

// AuthService orchestrates registration, login, email confirmation, password
// recovery and resend flows.
type AuthService struct {
	repo       ports.UserRepository
	factory    *UserFactory
	hasher     CredentialHasher
	tokens     *TokenIssuer
	sender     ports.NotificationSender
	dispatcher ports.EmailDispatcher
	exp        Expirations
	log        zerolog.Logger
}

func NewAuthService(
	repo ports.UserRepository,
	factory *UserFactory,
	hasher CredentialHasher,
	tokens *TokenIssuer,
	sender ports.NotificationSender,
	dispatcher ports.EmailDispatcher,
	exp Expirations,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		repo:       repo,
		factory:    factory,
		hasher:     hasher,
		tokens:     tokens,
		sender:     sender,
		dispatcher: dispatcher,
		exp:        exp,
		log:        log,
	}
}

// RegisterUser creates the account, assigns a confirmation code and hands the
// confirmation email to the dispatcher. The send is fire-and-forget: once the
// user is persisted, registration succeeds regardless of email delivery.
func (s *AuthService) RegisterUser(ctx context.Context, input ports.RegisterUserInput) error {
	user, err := s.factory.Create(ctx, input)
	if err != nil {
		return err
	}

	ttl, err := s.confirmationTTL()
	if err != nil {
		return err
	}
	user.ResetEmailConfirmation(ttl)

	if err := s.repo.Save(ctx, user); err != nil {
		return fmt.Errorf("register user: %w", err)
	}

	s.dispatcher.EnqueueConfirmation(user.Email, user.EmailConfirmation.Code)
	metrics.RegistrationsTotal.Inc()

	s.log.Info().Str("login", user.Login).Msg("user registered")
	return nil
}

// ValidateUser checks credentials. An unknown login and a wrong password
// produce the same failure so the response does not leak which check failed.
func (s *AuthService) ValidateUser(ctx context.Context, input ports.LoginInput) (ports.UserContext, error) {
	user, err := s.repo.FindByLogin(ctx, input.Login)
	if err != nil {
		return ports.UserContext{}, fmt.Errorf("validate user: %w", err)
	}
	if user == nil {
		metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		return ports.UserContext{}, domain.NewError(domain.CodeUnauthorized, "Invalid credentials")
	}

	if !s.hasher.Compare(input.Password, user.PasswordHash) {
		metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		return ports.UserContext{}, domain.NewError(domain.CodeUnauthorized, "Invalid credentials")
	}

	return ports.UserContext{UserID: user.ID}, nil
}

// Login issues an access token for a validated user context.
func (s *AuthService) Login(_ context.Context, user ports.UserContext) (ports.LoginResult, error) {
	token, err := s.tokens.Sign(user.UserID)
	if err != nil {
		return ports.LoginResult{}, fmt.Errorf("login: sign token: %w", err)
	}
	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	return ports.LoginResult{AccessToken: token}, nil
}

// PasswordRecovery assigns a recovery code and emails it. An unknown email
// succeeds silently with no state change and no send, so the endpoint cannot
// be used to enumerate registered emails. The send here is awaited: a
// delivery failure propagates, unlike the registration dispatch.
func (s *AuthService) PasswordRecovery(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("password recovery: %w", err)
	}
	if user == nil {
		return nil
	}

	ttl, err := s.recoveryTTL()
	if err != nil {
		return err
	}
	user.ResetPasswordRecovery(ttl)

	if err := s.repo.Save(ctx, user); err != nil {
		return fmt.Errorf("password recovery: %w", err)
	}
	if err := s.sender.SendRecoveryEmail(ctx, user.Email, user.PasswordRecovery.Code); err != nil {
		metrics.EmailsSentTotal.WithLabelValues("recovery", "failure").Inc()
		return fmt.Errorf("password recovery: send email: %w", err)
	}
	metrics.EmailsSentTotal.WithLabelValues("recovery", "success").Inc()
	return nil
}

// NewPassword applies a password change authorized by a recovery code.
// An unknown code, missing recovery state, or an invalid code (consumed or
// expired) is a silent no-op; the boundary cannot distinguish "applied" from
// "rejected" by the response alone.
func (s *AuthService) NewPassword(ctx context.Context, newPassword, recoveryCode string) error {
	user, err := s.repo.FindByRecoveryCode(ctx, recoveryCode)
	if err != nil {
		return fmt.Errorf("new password: %w", err)
	}
	if user == nil || user.PasswordRecovery == nil || !user.PasswordRecovery.IsValid(time.Now().UTC()) {
		return nil
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("new password: hash: %w", err)
	}
	user.PasswordHash = hash
	user.PasswordRecovery.Confirmed = true

	if err := s.repo.Save(ctx, user); err != nil {
		return fmt.Errorf("new password: %w", err)
	}
	s.log.Info().Str("user_id", user.ID).Msg("password changed via recovery code")
	return nil
}

// RegistrationConfirmation marks the email confirmed. Invalid codes are a
// silent no-op, which also makes a second application of the same code
// idempotent: the first call flips Confirmed, the second fails validity.
func (s *AuthService) RegistrationConfirmation(ctx context.Context, code string) error {
	user, err := s.repo.FindByConfirmationCode(ctx, code)
	if err != nil {
		return fmt.Errorf("registration confirmation: %w", err)
	}
	if user == nil || user.EmailConfirmation == nil || !user.EmailConfirmation.IsValid(time.Now().UTC()) {
		return nil
	}

	user.IsEmailConfirmed = true
	user.EmailConfirmation.Confirmed = true

	if err := s.repo.Save(ctx, user); err != nil {
		return fmt.Errorf("registration confirmation: %w", err)
	}
	s.log.Info().Str("user_id", user.ID).Msg("email confirmed")
	return nil
}

// RegistrationEmailResending regenerates the confirmation code and emails it.
// Unknown or already-confirmed emails are a silent no-op. The send is
// awaited, like recovery.
func (s *AuthService) RegistrationEmailResending(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("resend confirmation: %w", err)
	}
	if user == nil || user.IsEmailConfirmed {
		return nil
	}

	ttl, err := s.confirmationTTL()
	if err != nil {
		return err
	}
	user.ResetEmailConfirmation(ttl)

	if err := s.repo.Save(ctx, user); err != nil {
		return fmt.Errorf("resend confirmation: %w", err)
	}
	if err := s.sender.SendConfirmationEmail(ctx, user.Email, user.EmailConfirmation.Code); err != nil {
		metrics.EmailsSentTotal.WithLabelValues("confirmation", "failure").Inc()
		return fmt.Errorf("resend confirmation: send email: %w", err)
	}
	metrics.EmailsSentTotal.WithLabelValues("confirmation", "success").Inc()
	return nil
}

func (s *AuthService) confirmationTTL() (time.Duration, error) {
	if s.exp.EmailConfirmation <= 0 {
		return 0, domain.NewError(domain.CodeInternalServerError,
			"Config value for EMAIL_CONFIRMATION_EXPIRATION is not set")
	}
	return s.exp.EmailConfirmation, nil
}

func (s *AuthService) recoveryTTL() (time.Duration, error) {
	if s.exp.PasswordRecovery <= 0 {
		return 0, domain.NewError(domain.CodeInternalServerError,
			"Config value for PASSWORD_RECOVERY_EXPIRATION is not set")
	}
	return s.exp.PasswordRecovery, nil
}
