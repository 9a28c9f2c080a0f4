package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/bloggers-platform/accounts-api/internal/core/domain"
	"github.com/bloggers-platform/accounts-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users   map[string]*domain.User // keyed by id
	nextID  int
	saveErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	if u.EmailConfirmation != nil {
		c := *u.EmailConfirmation
		clone.EmailConfirmation = &c
	}
	if u.PasswordRecovery != nil {
		c := *u.PasswordRecovery
		clone.PasswordRecovery = &c
	}
	return &clone
}

func (r *stubUserRepo) find(match func(*domain.User) bool) *domain.User {
	for _, u := range r.users {
		if u.DeletedAt == nil && match(u) {
			return cloneUser(u)
		}
	}
	return nil
}

func (r *stubUserRepo) FindByLogin(_ context.Context, login string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Login == login }), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email }), nil
}

func (r *stubUserRepo) FindByLoginOrEmail(_ context.Context, value string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Login == value || u.Email == value }), nil
}

func (r *stubUserRepo) FindByConfirmationCode(_ context.Context, code string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool {
		return u.EmailConfirmation != nil && u.EmailConfirmation.Code == code
	}), nil
}

func (r *stubUserRepo) FindByRecoveryCode(_ context.Context, code string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool {
		return u.PasswordRecovery != nil && u.PasswordRecovery.Code == code
	}), nil
}

func (r *stubUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok || u.DeletedAt != nil {
		return nil, nil
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.nextID++
	created := cloneUser(user)
	created.ID = strconv.Itoa(r.nextID)
	r.users[created.ID] = cloneUser(created)
	return created, nil
}

func (r *stubUserRepo) Save(_ context.Context, user *domain.User) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *stubUserRepo) List(_ context.Context, query ports.ListUsersQuery) ([]*domain.User, int64, error) {
	var out []*domain.User
	for _, u := range r.users {
		if u.DeletedAt != nil {
			continue
		}
		if query.SearchLoginTerm != "" || query.SearchEmailTerm != "" {
			loginHit := query.SearchLoginTerm != "" &&
				strings.Contains(strings.ToLower(u.Login), strings.ToLower(query.SearchLoginTerm))
			emailHit := query.SearchEmailTerm != "" &&
				strings.Contains(strings.ToLower(u.Email), strings.ToLower(query.SearchEmailTerm))
			if !loginHit && !emailHit {
				continue
			}
		}
		out = append(out, cloneUser(u))
	}
	total := int64(len(out))

	start := (query.PageNumber - 1) * query.PageSize
	if start > len(out) {
		start = len(out)
	}
	end := start + query.PageSize
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

type sentEmail struct {
	Email string
	Code  string
}

type stubSender struct {
	confirmations []sentEmail
	recoveries    []sentEmail
	sendErr       error
}

func (s *stubSender) SendConfirmationEmail(_ context.Context, email, code string) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	s.confirmations = append(s.confirmations, sentEmail{email, code})
	return nil
}

func (s *stubSender) SendRecoveryEmail(_ context.Context, email, code string) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	s.recoveries = append(s.recoveries, sentEmail{email, code})
	return nil
}

// stubDispatcher records enqueued jobs synchronously.
type stubDispatcher struct {
	enqueued []sentEmail
}

func (d *stubDispatcher) EnqueueConfirmation(email, code string) {
	d.enqueued = append(d.enqueued, sentEmail{email, code})
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var testExpirations = Expirations{
	EmailConfirmation: time.Hour,
	PasswordRecovery:  30 * time.Minute,
}

func newAuthFixture() (*AuthService, *stubUserRepo, *stubSender, *stubDispatcher) {
	repo := newStubUserRepo()
	sender := &stubSender{}
	dispatcher := &stubDispatcher{}
	hasher := NewBcryptHasher(4) // min cost keeps tests fast
	tokens := NewTokenIssuer("secret", time.Hour)
	factory := NewUserFactory(repo, hasher)
	svc := NewAuthService(repo, factory, hasher, tokens, sender, dispatcher, testExpirations, zerolog.Nop())
	return svc, repo, sender, dispatcher
}

func registerTestUser(t *testing.T, svc *AuthService) ports.RegisterUserInput {
	t.Helper()
	input := ports.RegisterUserInput{Login: "login123", Email: "a@b.com", Password: "superpassword"}
	if err := svc.RegisterUser(context.Background(), input); err != nil {
		t.Fatalf("register: %v", err)
	}
	return input
}

func domainCode(t *testing.T, err error) domain.ErrorCode {
	t.Helper()
	var de *domain.Error
	if !errors.As(err, &de) {
		t.Fatalf("expected domain error, got %v", err)
	}
	return de.Code
}

// ---------------------------------------------------------------------------
// Registration
// ---------------------------------------------------------------------------

func TestRegisterUser_Success(t *testing.T) {
	svc, repo, _, dispatcher := newAuthFixture()
	registerTestUser(t, svc)

	user, _ := repo.FindByLogin(context.Background(), "login123")
	if user == nil {
		t.Fatalf("expected user persisted")
	}
	if user.PasswordHash == "superpassword" || user.PasswordHash == "" {
		t.Errorf("expected a hashed password, got %q", user.PasswordHash)
	}
	if user.IsEmailConfirmed {
		t.Errorf("new user must not be confirmed")
	}
	if user.EmailConfirmation == nil || user.EmailConfirmation.Code == "" {
		t.Fatalf("expected confirmation code assigned")
	}
	if !user.EmailConfirmation.ExpiresAt.After(time.Now().UTC()) {
		t.Errorf("expected future expiration")
	}

	if len(dispatcher.enqueued) != 1 {
		t.Fatalf("expected 1 queued confirmation email, got %d", len(dispatcher.enqueued))
	}
	if dispatcher.enqueued[0].Code != user.EmailConfirmation.Code {
		t.Errorf("queued code does not match stored code")
	}
}

func TestRegisterUser_LookupByConfirmationCode(t *testing.T) {
	svc, repo, _, dispatcher := newAuthFixture()
	registerTestUser(t, svc)

	user, _ := repo.FindByConfirmationCode(context.Background(), dispatcher.enqueued[0].Code)
	if user == nil {
		t.Fatalf("expected lookup by issued code to succeed")
	}
	if user.IsEmailConfirmed {
		t.Errorf("expected unconfirmed user")
	}
}

func TestRegisterUser_DuplicateLoginOrEmail(t *testing.T) {
	svc, repo, _, _ := newAuthFixture()
	registerTestUser(t, svc)

	cases := []ports.RegisterUserInput{
		{Login: "login123", Email: "other@b.com", Password: "password1"}, // same login
		{Login: "other1", Email: "a@b.com", Password: "password1"},      // same email
	}
	for _, input := range cases {
		err := svc.RegisterUser(context.Background(), input)
		if code := domainCode(t, err); code != domain.CodeAlreadyExists {
			t.Errorf("input %+v: expected AlreadyExists, got code %d", input, code)
		}
	}
	if len(repo.users) != 1 {
		t.Errorf("expected no new records, have %d", len(repo.users))
	}
}

func TestRegisterUser_MissingExpirationConfig(t *testing.T) {
	repo := newStubUserRepo()
	hasher := NewBcryptHasher(4)
	svc := NewAuthService(repo, NewUserFactory(repo, hasher), hasher,
		NewTokenIssuer("secret", time.Hour), &stubSender{}, &stubDispatcher{},
		Expirations{}, zerolog.Nop())

	err := svc.RegisterUser(context.Background(), ports.RegisterUserInput{
		Login: "login123", Email: "a@b.com", Password: "superpassword",
	})
	if code := domainCode(t, err); code != domain.CodeInternalServerError {
		t.Errorf("expected InternalServerError for unset expiration, got code %d", code)
	}
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func TestValidateUser_NoCredentialLeak(t *testing.T) {
	svc, _, _, _ := newAuthFixture()
	registerTestUser(t, svc)

	_, errUnknown := svc.ValidateUser(context.Background(), ports.LoginInput{Login: "nosuchuser", Password: "superpassword"})
	_, errWrongPw := svc.ValidateUser(context.Background(), ports.LoginInput{Login: "login123", Password: "wrongpassword"})

	for _, err := range []error{errUnknown, errWrongPw} {
		var de *domain.Error
		if !errors.As(err, &de) {
			t.Fatalf("expected domain error, got %v", err)
		}
		if de.Code != domain.CodeUnauthorized || de.Message != "Invalid credentials" {
			t.Errorf("expected Unauthorized/Invalid credentials, got %d/%q", de.Code, de.Message)
		}
	}
	// Both failures must be indistinguishable.
	if errUnknown.Error() != errWrongPw.Error() {
		t.Errorf("failure messages differ: %q vs %q", errUnknown, errWrongPw)
	}
}

func TestLogin_FullScenario(t *testing.T) {
	svc, repo, _, dispatcher := newAuthFixture()
	registerTestUser(t, svc)

	// Confirm with the issued code.
	code := dispatcher.enqueued[0].Code
	if err := svc.RegistrationConfirmation(context.Background(), code); err != nil {
		t.Fatalf("confirmation: %v", err)
	}
	user, _ := repo.FindByLogin(context.Background(), "login123")
	if !user.IsEmailConfirmed {
		t.Fatalf("expected email confirmed")
	}

	ctxUser, err := svc.ValidateUser(context.Background(), ports.LoginInput{Login: "login123", Password: "superpassword"})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	result, err := svc.Login(context.Background(), ctxUser)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.AccessToken == "" {
		t.Fatalf("expected a non-empty access token")
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(result.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["sub"] != user.ID {
		t.Errorf("expected sub %q, got %v", user.ID, claims["sub"])
	}
}

// ---------------------------------------------------------------------------
// Password recovery
// ---------------------------------------------------------------------------

func TestPasswordRecovery_UnknownEmailSilentlySucceeds(t *testing.T) {
	svc, repo, sender, _ := newAuthFixture()
	registerTestUser(t, svc)

	before, _ := repo.FindByLogin(context.Background(), "login123")

	if err := svc.PasswordRecovery(context.Background(), "ghost@b.com"); err != nil {
		t.Fatalf("expected silent success, got %v", err)
	}
	if len(sender.recoveries) != 0 {
		t.Errorf("expected zero recovery emails, got %d", len(sender.recoveries))
	}

	after, _ := repo.FindByLogin(context.Background(), "login123")
	if after.PasswordRecovery != nil || before.PasswordRecovery != nil {
		t.Errorf("expected no record mutation")
	}
}

func TestPasswordRecovery_AssignsCodeAndSendsEmail(t *testing.T) {
	svc, repo, sender, _ := newAuthFixture()
	registerTestUser(t, svc)

	if err := svc.PasswordRecovery(context.Background(), "a@b.com"); err != nil {
		t.Fatalf("recovery: %v", err)
	}

	user, _ := repo.FindByEmail(context.Background(), "a@b.com")
	if user.PasswordRecovery == nil || user.PasswordRecovery.Code == "" {
		t.Fatalf("expected recovery code assigned")
	}
	if len(sender.recoveries) != 1 {
		t.Fatalf("expected 1 recovery email, got %d", len(sender.recoveries))
	}
	if sender.recoveries[0].Code != user.PasswordRecovery.Code {
		t.Errorf("emailed code does not match stored code")
	}
}

func TestPasswordRecovery_SendFailurePropagates(t *testing.T) {
	svc, _, sender, _ := newAuthFixture()
	registerTestUser(t, svc)
	sender.sendErr = errors.New("smtp down")

	err := svc.PasswordRecovery(context.Background(), "a@b.com")
	if err == nil {
		t.Fatalf("expected awaited send failure to propagate")
	}
	var de *domain.Error
	if errors.As(err, &de) {
		t.Errorf("infrastructure failure must not be a domain error, got code %d", de.Code)
	}
}

func TestNewPassword_ValidCode(t *testing.T) {
	svc, repo, sender, _ := newAuthFixture()
	registerTestUser(t, svc)
	_ = svc.PasswordRecovery(context.Background(), "a@b.com")

	before, _ := repo.FindByEmail(context.Background(), "a@b.com")

	if err := svc.NewPassword(context.Background(), "newpassword1", sender.recoveries[0].Code); err != nil {
		t.Fatalf("new password: %v", err)
	}

	after, _ := repo.FindByEmail(context.Background(), "a@b.com")
	if after.PasswordHash == before.PasswordHash {
		t.Errorf("expected password hash to change")
	}
	if !after.PasswordRecovery.Confirmed {
		t.Errorf("expected recovery code marked consumed")
	}

	// The new password must now authenticate.
	if _, err := svc.ValidateUser(context.Background(), ports.LoginInput{Login: "login123", Password: "newpassword1"}); err != nil {
		t.Errorf("login with new password failed: %v", err)
	}
}

func TestNewPassword_InvalidCodesAreNoOps(t *testing.T) {
	svc, repo, sender, _ := newAuthFixture()
	registerTestUser(t, svc)
	_ = svc.PasswordRecovery(context.Background(), "a@b.com")
	code := sender.recoveries[0].Code

	// Expire the stored code.
	user, _ := repo.FindByEmail(context.Background(), "a@b.com")
	user.PasswordRecovery.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	_ = repo.Save(context.Background(), user)
	before, _ := repo.FindByEmail(context.Background(), "a@b.com")

	cases := []struct {
		name string
		code string
	}{
		{"unknown code", "does-not-exist"},
		{"expired code", code},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := svc.NewPassword(context.Background(), "newpassword1", tc.code); err != nil {
				t.Fatalf("expected silent no-op, got %v", err)
			}
			after, _ := repo.FindByEmail(context.Background(), "a@b.com")
			if after.PasswordHash != before.PasswordHash {
				t.Errorf("password hash must stay unchanged")
			}
		})
	}
}

func TestNewPassword_ConsumedCodeIsNoOp(t *testing.T) {
	svc, repo, sender, _ := newAuthFixture()
	registerTestUser(t, svc)
	_ = svc.PasswordRecovery(context.Background(), "a@b.com")
	code := sender.recoveries[0].Code

	if err := svc.NewPassword(context.Background(), "newpassword1", code); err != nil {
		t.Fatalf("first application: %v", err)
	}
	mid, _ := repo.FindByEmail(context.Background(), "a@b.com")

	if err := svc.NewPassword(context.Background(), "anotherpass2", code); err != nil {
		t.Fatalf("second application must be a silent no-op, got %v", err)
	}
	after, _ := repo.FindByEmail(context.Background(), "a@b.com")
	if after.PasswordHash != mid.PasswordHash {
		t.Errorf("consumed code must not change the password again")
	}
}

// ---------------------------------------------------------------------------
// Registration confirmation & resend
// ---------------------------------------------------------------------------

func TestRegistrationConfirmation_Idempotent(t *testing.T) {
	svc, repo, _, dispatcher := newAuthFixture()
	registerTestUser(t, svc)
	code := dispatcher.enqueued[0].Code

	if err := svc.RegistrationConfirmation(context.Background(), code); err != nil {
		t.Fatalf("first confirmation: %v", err)
	}
	user, _ := repo.FindByLogin(context.Background(), "login123")
	if !user.IsEmailConfirmed || !user.EmailConfirmation.Confirmed {
		t.Fatalf("expected confirmation applied: %+v", user.EmailConfirmation)
	}

	// Second application fails validity and is a no-op, not an error.
	if err := svc.RegistrationConfirmation(context.Background(), code); err != nil {
		t.Fatalf("second confirmation must be silent, got %v", err)
	}
}

func TestRegistrationConfirmation_UnknownOrExpiredCode(t *testing.T) {
	svc, repo, _, dispatcher := newAuthFixture()
	registerTestUser(t, svc)

	if err := svc.RegistrationConfirmation(context.Background(), "bogus-code"); err != nil {
		t.Fatalf("unknown code must be silent, got %v", err)
	}

	user, _ := repo.FindByLogin(context.Background(), "login123")
	user.EmailConfirmation.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	_ = repo.Save(context.Background(), user)

	if err := svc.RegistrationConfirmation(context.Background(), dispatcher.enqueued[0].Code); err != nil {
		t.Fatalf("expired code must be silent, got %v", err)
	}
	user, _ = repo.FindByLogin(context.Background(), "login123")
	if user.IsEmailConfirmed {
		t.Errorf("expired code must not confirm the email")
	}
}

func TestRegistrationEmailResending_RegeneratesCode(t *testing.T) {
	svc, repo, sender, dispatcher := newAuthFixture()
	registerTestUser(t, svc)
	original := dispatcher.enqueued[0].Code

	if err := svc.RegistrationEmailResending(context.Background(), "a@b.com"); err != nil {
		t.Fatalf("resend: %v", err)
	}

	user, _ := repo.FindByEmail(context.Background(), "a@b.com")
	if user.EmailConfirmation.Code == original {
		t.Errorf("expected a regenerated code")
	}
	if len(sender.confirmations) != 1 {
		t.Fatalf("expected the resend to be delivered via the awaited sender, got %d", len(sender.confirmations))
	}
	if sender.confirmations[0].Code != user.EmailConfirmation.Code {
		t.Errorf("emailed code does not match stored code")
	}
}

func TestRegistrationEmailResending_NoOps(t *testing.T) {
	svc, _, sender, dispatcher := newAuthFixture()
	registerTestUser(t, svc)
	_ = svc.RegistrationConfirmation(context.Background(), dispatcher.enqueued[0].Code)

	// Already confirmed.
	if err := svc.RegistrationEmailResending(context.Background(), "a@b.com"); err != nil {
		t.Fatalf("confirmed email must be silent, got %v", err)
	}
	// Unknown email.
	if err := svc.RegistrationEmailResending(context.Background(), "ghost@b.com"); err != nil {
		t.Fatalf("unknown email must be silent, got %v", err)
	}
	if len(sender.confirmations) != 0 {
		t.Errorf("expected no emails for no-op resends, got %d", len(sender.confirmations))
	}
}

// Guards against the fixtures growing stale if the interfaces change.
var (
	_ ports.AuthService    = (*AuthService)(nil)
	_ ports.UserRepository = (*stubUserRepo)(nil)
)
