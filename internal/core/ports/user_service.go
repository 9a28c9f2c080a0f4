package ports

import (
	"context"
	"time"
)

// UserView is the public projection of a user record.
type UserView struct {
	ID        string
	Login     string
	Email     string
	CreatedAt time.Time
}

// PaginatedUsers is a page of user views plus pagination metadata.
type PaginatedUsers struct {
	Items      []UserView
	TotalCount int64
	Page       int
	PageSize   int
	PagesCount int
}

// UsersService exposes read-side user operations.
type UsersService interface {
	// Me returns the view for the authenticated user, failing with NotFound
	// when the record is absent or soft-deleted.
	Me(ctx context.Context, user UserContext) (*UserView, error)

	// GetByID returns the view for a user id, failing with NotFound when the
	// record is absent or soft-deleted.
	GetByID(ctx context.Context, id string) (*UserView, error)

	// GetAll returns a filtered, sorted page of users.
	GetAll(ctx context.Context, query ListUsersQuery) (*PaginatedUsers, error)
}
