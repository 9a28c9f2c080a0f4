package middleware

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bloggers-platform/accounts-api/internal/core/domain"
	"github.com/bloggers-platform/accounts-api/internal/pkg/metrics"
)

// Limiter reports whether a caller is within its request budget for a route.
type Limiter interface {
	Allow(ctx context.Context, route, caller string) (bool, error)
}

// Throttle rejects callers exceeding the configured burst with
// TooManyRequests. The limiter fails open: if the backing store is
// unreachable the request proceeds and the failure is logged.
func Throttle(limiter Limiter, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			route := c.Path()
			ok, err := limiter.Allow(c.Request().Context(), route, c.RealIP())
			if err != nil {
				log.Warn().Err(err).Str("path", route).Msg("throttle check failed, allowing request")
				return next(c)
			}
			if !ok {
				metrics.ThrottledRequestsTotal.WithLabelValues(route).Inc()
				return domain.NewError(domain.CodeTooManyRequests, "Too many requests")
			}
			return next(c)
		}
	}
}
