package ports

import (
	"context"

	"github.com/bloggers-platform/accounts-api/internal/core/domain"
)

// ListUsersQuery carries all query parameters for the user listing.
// Search terms are case-insensitive substring matches; when both are set the
// filter is a logical OR, mirroring the public API contract.
type ListUsersQuery struct {
	SearchLoginTerm string
	SearchEmailTerm string
	SortBy          string // "created_at", "login" or "email"
	SortDirection   string // "asc" or "desc"
	PageNumber      int    // 1-based
	PageSize        int
}

// UserRepository defines persistence and lookup of user records. Every finder
// skips soft-deleted users and returns (nil, nil) when nothing matches; only
// infrastructure failures produce a non-nil error.
type UserRepository interface {
	FindByLogin(ctx context.Context, login string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByLoginOrEmail(ctx context.Context, value string) (*domain.User, error)
	FindByConfirmationCode(ctx context.Context, code string) (*domain.User, error)
	FindByRecoveryCode(ctx context.Context, code string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)

	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Save(ctx context.Context, user *domain.User) error

	// List returns a page of users matching query plus the total count.
	List(ctx context.Context, query ListUsersQuery) ([]*domain.User, int64, error)
}
