package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bloggers-platform/accounts-api/internal/core/domain"
	"github.com/bloggers-platform/accounts-api/internal/core/ports"
)

// UserFactory validates uniqueness of login and email and constructs a new
// user record with a hashed password. Confirmation-code setup is applied
// afterwards by the caller.
type UserFactory struct {
	repo   ports.UserRepository
	hasher CredentialHasher
}

func NewUserFactory(repo ports.UserRepository, hasher CredentialHasher) *UserFactory {
	return &UserFactory{repo: repo, hasher: hasher}
}

// Create persists a new user. The two lookups are separate round trips; the
// store's unique indexes are the authoritative guard against a concurrent
// registration slipping between them.
func (f *UserFactory) Create(ctx context.Context, input ports.RegisterUserInput) (*domain.User, error) {
	byLogin, err := f.repo.FindByLogin(ctx, input.Login)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	byEmail, err := f.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if byLogin != nil || byEmail != nil {
		return nil, domain.NewError(domain.CodeAlreadyExists, "Login or Email already exists!")
	}

	hash, err := f.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("create user: hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Login:        input.Login,
		Email:        input.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := f.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	return created, nil
}
