package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/bloggers-platform/accounts-api/internal/core/domain"
	"github.com/bloggers-platform/accounts-api/internal/core/ports"
)

// userIDKey is where the auth middleware stores the verified user id.
const userIDKey = "user_id"

// ctxUser extracts the user context injected by the bearer middleware.
// Presence of the id proves the middleware ran and verified the token.
func ctxUser(c echo.Context) (ports.UserContext, error) {
	id, _ := c.Get(userIDKey).(string)
	if id == "" {
		return ports.UserContext{}, domain.NewError(domain.CodeUnauthorized, "Unauthorized")
	}
	return ports.UserContext{UserID: id}, nil
}

// ctxUserIfExists is the optional variant: an absent or unverified identity
// yields a nil context instead of a failure.
func ctxUserIfExists(c echo.Context) *ports.UserContext {
	id, _ := c.Get(userIDKey).(string)
	if id == "" {
		return nil
	}
	return &ports.UserContext{UserID: id}
}
