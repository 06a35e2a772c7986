package apperrors

import (
	"errors"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// FieldError reports a single rejected input field. It matches ErrValidation.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *FieldError) Is(target error) bool {
	return target == ErrValidation
}

func NewFieldError(field, message string) error {
	return &FieldError{Field: field, Message: message}
}

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// Authentication errors surfaced by the session flows.
var (
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrAccessDenied          = errors.New("access denied")
	ErrInvalidRefreshToken   = errors.New("invalid refresh token")
	ErrNoTokenProvided       = errors.New("no refresh token provided")
	ErrInvalidFederatedToken = errors.New("invalid federated token")
)

// Token codec errors.
var (
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrTokenExpired     = errors.New("token has expired")
)

// ErrUpstream wraps failures of the store or the identity provider.
var ErrUpstream = errors.New("upstream failure")

// AppError is the JSON error body returned by handlers.
// Details carries the internal error string for store/oracle failures.
type AppError struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
	Details string `json:"details,omitempty"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError with the given status code. When err is
// non-nil its message is exposed as Details.
func NewAppError(code int, message string, err error) *AppError {
	appErr := &AppError{Code: code, Message: message, Err: err}
	if err != nil {
		appErr.Details = err.Error()
	}
	return appErr
}

func NewBadRequestError(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: message}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{Code: http.StatusUnauthorized, Message: message}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{Code: http.StatusForbidden, Message: message}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: message}
}

func NewInternalServerError(message string) *AppError {
	return &AppError{Code: http.StatusInternalServerError, Message: message}
}
