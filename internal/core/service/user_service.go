package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bloggers-platform/accounts-api/internal/core/domain"
	"github.com/bloggers-platform/accounts-api/internal/core/ports"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// UsersService implements the read side: the "me" view and the paginated,
// filtered user listing.
type UsersService struct {
	repo ports.UserRepository
	log  zerolog.Logger
}

func NewUsersService(repo ports.UserRepository, log zerolog.Logger) *UsersService {
	return &UsersService{repo: repo, log: log}
}

// Me returns the view for the authenticated user.
func (s *UsersService) Me(ctx context.Context, user ports.UserContext) (*ports.UserView, error) {
	return s.GetByID(ctx, user.UserID)
}

// GetByID returns the view for a user id, failing with NotFound when the
// record is absent or soft-deleted.
func (s *UsersService) GetByID(ctx context.Context, id string) (*ports.UserView, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, domain.NewError(domain.CodeNotFound, "User not found!")
	}
	view := toView(user)
	return &view, nil
}

// GetAll returns a page of users. Page and size are normalized here so the
// repository always receives sane values.
func (s *UsersService) GetAll(ctx context.Context, query ports.ListUsersQuery) (*ports.PaginatedUsers, error) {
	if query.PageNumber < 1 {
		query.PageNumber = 1
	}
	if query.PageSize <= 0 {
		query.PageSize = defaultPageSize
	}
	if query.PageSize > maxPageSize {
		query.PageSize = maxPageSize
	}
	switch query.SortBy {
	case "login", "email", "created_at":
	default:
		query.SortBy = "created_at"
	}
	if query.SortDirection != "asc" {
		query.SortDirection = "desc"
	}

	users, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	items := make([]ports.UserView, len(users))
	for i, u := range users {
		items[i] = toView(u)
	}

	pagesCount := int((total + int64(query.PageSize) - 1) / int64(query.PageSize))

	return &ports.PaginatedUsers{
		Items:      items,
		TotalCount: total,
		Page:       query.PageNumber,
		PageSize:   query.PageSize,
		PagesCount: pagesCount,
	}, nil
}

func toView(u *domain.User) ports.UserView {
	return ports.UserView{
		ID:        u.ID,
		Login:     u.Login,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
