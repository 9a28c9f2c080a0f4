package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bloggers-platform/accounts-api/internal/core/domain"
)

// TokenVerifier validates a bearer credential and yields the user id it
// carries.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

const userIDKey = "user_id"

// Auth verifies the bearer token and injects the user id into context.
// Requests without a valid credential fail with Unauthorized.
func Auth(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c)
			if !ok {
				return domain.NewError(domain.CodeUnauthorized, "Unauthorized")
			}

			userID, err := verifier.Verify(token)
			if err != nil {
				return domain.NewError(domain.CodeUnauthorized, "Unauthorized")
			}

			c.Set(userIDKey, userID)
			return next(c)
		}
	}
}

// OptionalAuth injects the user id when a valid bearer token is present but
// never fails the request: a missing or invalid credential simply yields an
// absent user context.
func OptionalAuth(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token, ok := bearerToken(c); ok {
				if userID, err := verifier.Verify(token); err == nil {
					c.Set(userIDKey, userID)
				}
			}
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) (string, bool) {
	header := c.Request().Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}
