package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinels for the request gate. Every APIError built by the constructors
// below wraps one of them, so callers can branch with errors.Is.
var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrUserNotFound       = errors.New("user not found")
	ErrAccountDeactivated = errors.New("account deactivated")
	ErrForbidden          = errors.New("forbidden")
	ErrBadRequest         = errors.New("bad request")
	ErrRateLimited        = errors.New("rate limited")
	ErrInternal           = errors.New("internal error")
)

type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func New(code string, message string, status int) *APIError {
	return &APIError{Code: code, Message: message, HTTPStatus: status}
}

func Wrap(err error, code string, message string, status int) *APIError {
	return &APIError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

func Unauthenticated() *APIError {
	return Wrap(ErrUnauthenticated, "UNAUTHORIZED", "Not authorized to access this route", http.StatusUnauthorized)
}

func TokenRevoked() *APIError {
	return Wrap(ErrTokenRevoked, "TOKEN_REVOKED", "Token has been revoked", http.StatusUnauthorized)
}

func UserNotFound() *APIError {
	return Wrap(ErrUserNotFound, "USER_NOT_FOUND", "User not found", http.StatusUnauthorized)
}

func AccountDeactivated() *APIError {
	return Wrap(ErrAccountDeactivated, "ACCOUNT_DEACTIVATED", "Account has been deactivated", http.StatusUnauthorized)
}

func Forbidden(message string) *APIError {
	return Wrap(ErrForbidden, "FORBIDDEN", message, http.StatusForbidden)
}

func BadRequest(message string) *APIError {
	return Wrap(ErrBadRequest, "BAD_REQUEST", message, http.StatusBadRequest)
}

// RateLimited names the throttled action in the client-facing message.
func RateLimited(action string) *APIError {
	return Wrap(ErrRateLimited, "RATE_LIMITED", fmt.Sprintf("Too many %s attempts. Try again later.", action), http.StatusTooManyRequests)
}

// Internal keeps cause for logging only; the message sent to clients is fixed.
func Internal(cause error) *APIError {
	err := ErrInternal
	if cause != nil {
		err = fmt.Errorf("%w: %w", ErrInternal, cause)
	}
	return Wrap(err, "INTERNAL_ERROR", "Internal server error", http.StatusInternalServerError)
}

// From converts any error into an APIError. Unknown errors become Internal.
func From(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	return Internal(err)
}
