package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bloggers-platform/accounts-api/internal/core/ports"
)

// UserHandler handles the read-side user endpoints.
type UserHandler struct {
	users ports.UsersService
	log   zerolog.Logger
}

func NewUserHandler(users ports.UsersService, log zerolog.Logger) *UserHandler {
	return &UserHandler{users: users, log: log}
}

type userViewResponse struct {
	ID        string    `json:"id"`
	Login     string    `json:"login"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type paginatedUsersResponse struct {
	PagesCount int                `json:"pagesCount"`
	Page       int                `json:"page"`
	PageSize   int                `json:"pageSize"`
	TotalCount int64              `json:"totalCount"`
	Items      []userViewResponse `json:"items"`
}

// List handles GET /users — a filtered, sorted, paginated listing.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Param        searchLoginTerm  query     string  false  "Case-insensitive substring filter on login"
// @Param        searchEmailTerm  query     string  false  "Case-insensitive substring filter on email"
// @Param        sortBy           query     string  false  "Sort field: created_at, login or email"
// @Param        sortDirection    query     string  false  "asc or desc"
// @Param        pageNumber       query     int     false  "1-based page number"
// @Param        pageSize         query     int     false  "Page size (max 100)"
// @Success      200              {object}  paginatedUsersResponse
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	query := ports.ListUsersQuery{
		SearchLoginTerm: c.QueryParam("searchLoginTerm"),
		SearchEmailTerm: c.QueryParam("searchEmailTerm"),
		SortBy:          c.QueryParam("sortBy"),
		SortDirection:   c.QueryParam("sortDirection"),
	}
	query.PageNumber, _ = strconv.Atoi(c.QueryParam("pageNumber"))
	query.PageSize, _ = strconv.Atoi(c.QueryParam("pageSize"))

	page, err := h.users.GetAll(c.Request().Context(), query)
	if err != nil {
		return err
	}

	items := make([]userViewResponse, len(page.Items))
	for i, v := range page.Items {
		items[i] = toUserViewResponse(v)
	}

	return c.JSON(http.StatusOK, paginatedUsersResponse{
		PagesCount: page.PagesCount,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalCount: page.TotalCount,
		Items:      items,
	})
}

// Get handles GET /users/:id.
//
// @Summary      Get a user by id
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  userViewResponse
// @Failure      404  {object}  map[string]any
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	view, err := h.users.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	if requester := ctxUserIfExists(c); requester != nil {
		h.log.Debug().
			Str("requester_id", requester.UserID).
			Str("user_id", view.ID).
			Msg("user profile viewed")
	}

	return c.JSON(http.StatusOK, toUserViewResponse(*view))
}

func toUserViewResponse(v ports.UserView) userViewResponse {
	return userViewResponse{
		ID:        v.ID,
		Login:     v.Login,
		Email:     v.Email,
		CreatedAt: v.CreatedAt,
	}
}
