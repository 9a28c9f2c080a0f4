package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bloggers-platform/accounts-api/internal/core/domain"
)

// errorBody is the canonical envelope for all API errors. Path is a pointer
// so it serialises as null when suppressed in production.
type errorBody struct {
	Timestamp  time.Time          `json:"timestamp"`
	Path       *string            `json:"path"`
	Message    string             `json:"message"`
	Code       domain.ErrorCode   `json:"code"`
	Extensions []domain.Extension `json:"extensions"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps tagged domain errors to their HTTP statuses with a full body.
//   - Maps everything else to 500 (InternalServerError code), logging the
//     real cause; in production the path and message are suppressed.
func NewHTTPErrorHandler(env string, log zerolog.Logger) echo.HTTPErrorHandler {
	isProduction := env == "production"

	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		path := c.Request().RequestURI

		var de *domain.Error
		if errors.As(err, &de) {
			_ = c.JSON(statusForCode(de.Code), errorBody{
				Timestamp:  time.Now().UTC(),
				Path:       &path,
				Message:    de.Message,
				Code:       de.Code,
				Extensions: extensionsOrEmpty(de.Extensions),
			})
			return
		}

		// Echo's own errors (bind failures, 404 from the router, etc.)
		// carry a usable status; keep it and tag the body with a matching
		// domain code.
		var he *echo.HTTPError
		if errors.As(err, &he) {
			_ = c.JSON(he.Code, errorBody{
				Timestamp:  time.Now().UTC(),
				Path:       &path,
				Message:    fmt.Sprintf("%v", he.Message),
				Code:       codeForStatus(he.Code),
				Extensions: []domain.Extension{},
			})
			return
		}

		// Anything else is normalized to a single internal variant, never
		// introspected structurally.
		log.Error().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("unhandled error")

		body := errorBody{
			Timestamp:  time.Now().UTC(),
			Path:       &path,
			Message:    err.Error(),
			Code:       domain.CodeInternalServerError,
			Extensions: []domain.Extension{},
		}
		if isProduction {
			body.Path = nil
			body.Message = "Some error occurred"
		}
		_ = c.JSON(http.StatusInternalServerError, body)
	}
}

// statusForCode is the fixed code→status mapping table.
func statusForCode(code domain.ErrorCode) int {
	switch code {
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeBadRequest, domain.CodeValidationError,
		domain.CodeEmailNotConfirmed,
		domain.CodeConfirmationCodeExpired,
		domain.CodePasswordRecoveryCodeExpired:
		return http.StatusBadRequest
	case domain.CodeForbidden:
		return http.StatusForbidden
	case domain.CodeAlreadyExists, domain.CodeAlreadyDeleted:
		return http.StatusConflict
	case domain.CodeUnauthorized:
		return http.StatusUnauthorized
	case domain.CodeTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func codeForStatus(status int) domain.ErrorCode {
	switch status {
	case http.StatusNotFound:
		return domain.CodeNotFound
	case http.StatusUnauthorized:
		return domain.CodeUnauthorized
	case http.StatusForbidden:
		return domain.CodeForbidden
	case http.StatusTooManyRequests:
		return domain.CodeTooManyRequests
	case http.StatusInternalServerError:
		return domain.CodeInternalServerError
	default:
		return domain.CodeBadRequest
	}
}

func extensionsOrEmpty(ext []domain.Extension) []domain.Extension {
	if ext == nil {
		return []domain.Extension{}
	}
	return ext
}
