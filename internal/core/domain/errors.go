package domain

// ErrorCode identifies a business-rule failure. The set is closed: the HTTP
// boundary maps every code to a status, and anything outside the set is
// normalized to InternalServerError before it reaches a client.
type ErrorCode int

const (
	// common
	CodeNotFound            ErrorCode = 1
	CodeBadRequest          ErrorCode = 2
	CodeInternalServerError ErrorCode = 3
	CodeForbidden           ErrorCode = 4
	CodeValidationError     ErrorCode = 5
	CodeAlreadyExists       ErrorCode = 6
	CodeAlreadyDeleted      ErrorCode = 7

	// auth
	CodeUnauthorized                ErrorCode = 11
	CodeEmailNotConfirmed           ErrorCode = 12
	CodeConfirmationCodeExpired     ErrorCode = 13
	CodePasswordRecoveryCodeExpired ErrorCode = 14
	CodeTooManyRequests             ErrorCode = 15
)

// Extension carries a field-level detail attached to an Error, typically
// produced by input validation.
type Extension struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a tagged domain failure. Services construct it at the point of a
// business-rule violation; only the HTTP error handler consumes it.
type Error struct {
	Code       ErrorCode
	Message    string
	Extensions []Extension
}

func (e *Error) Error() string {
	return e.Message
}

// NewError returns a domain Error without extensions.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewValidationError returns a ValidationError carrying per-field details.
func NewValidationError(extensions []Extension) *Error {
	return &Error{
		Code:       CodeValidationError,
		Message:    "Validation failed",
		Extensions: extensions,
	}
}
