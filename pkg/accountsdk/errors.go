package accountsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/scrimflow/accounts/pkg/httpx"
)

// ============================================================================
// Error Codes
// ============================================================================

const (
	CodeValidation                  = "VALIDATION_ERROR"
	CodeEmailOrUsernameTaken        = "EMAIL_OR_USERNAME_TAKEN"
	CodeInvalidCredentials          = "INVALID_CREDENTIALS"
	CodeEmailNotVerified            = "EMAIL_NOT_VERIFIED"
	CodeInvalidOrExpiredCode        = "INVALID_OR_EXPIRED_CODE"
	CodeUnsupportedVerificationType = "UNSUPPORTED_VERIFICATION_TYPE"
	CodeInvalidPassword             = "INVALID_PASSWORD"
	CodeEmailTaken                  = "EMAIL_TAKEN"
	CodeUnauthorized                = "UNAUTHORIZED"
	CodeForbidden                   = "FORBIDDEN"
	CodeNotFound                    = "NOT_FOUND"
	CodeRateLimited                 = "RATE_LIMITED"
	CodeInternal                    = "INTERNAL"
)

// ============================================================================
// APIError
// ============================================================================

// APIError is the error body returned by every failing endpoint. It is used
// by the server to write responses and by the SDK client to report them.
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Code is the machine-readable error code (one of the Code* constants)
	Code string `json:"code"`

	// Message is a human-readable description of the error
	Message string `json:"message"`

	// Details carries per-field validation messages
	Details map[string]string `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WriteError writes this APIError to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.StatusCode, e)
}

// NewValidationError returns a 400 carrying per-field details.
func NewValidationError(details map[string]string) *APIError {
	return &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       CodeValidation,
		Message:    "request validation failed",
		Details:    details,
	}
}

// ============================================================================
// Predefined Errors
// ============================================================================

var (
	ErrInvalidBody = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       CodeValidation,
		Message:    "request body must be a JSON object",
	}

	ErrEmailOrUsernameTaken = &APIError{
		StatusCode: http.StatusConflict,
		Code:       CodeEmailOrUsernameTaken,
		Message:    "Email or Username already taken",
	}

	// ErrInvalidCredentials is identical for unknown emails and wrong passwords.
	ErrInvalidCredentials = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       CodeInvalidCredentials,
		Message:    "Invalid email or password",
	}

	ErrEmailNotVerified = &APIError{
		StatusCode: http.StatusForbidden,
		Code:       CodeEmailNotVerified,
		Message:    "Please verify your email before logging in",
	}

	ErrInvalidOrExpiredCode = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       CodeInvalidOrExpiredCode,
		Message:    "Invalid or expired code",
	}

	ErrUnsupportedVerificationType = &APIError{
		StatusCode: http.StatusBadRequest,
		Code:       CodeUnsupportedVerificationType,
		Message:    "This verification type cannot be resent",
	}

	ErrInvalidPassword = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       CodeInvalidPassword,
		Message:    "Invalid password",
	}

	ErrEmailTaken = &APIError{
		StatusCode: http.StatusConflict,
		Code:       CodeEmailTaken,
		Message:    "Email already in use",
	}

	ErrUnauthorized = &APIError{
		StatusCode: http.StatusUnauthorized,
		Code:       CodeUnauthorized,
		Message:    "authentication required",
	}

	ErrNotFound = &APIError{
		StatusCode: http.StatusNotFound,
		Code:       CodeNotFound,
		Message:    "not found",
	}

	ErrInternal = &APIError{
		StatusCode: http.StatusInternalServerError,
		Code:       CodeInternal,
		Message:    "internal server error",
	}
)

// parseErrorResponse turns a non-2xx response body into an *APIError.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != "" {
		apiErr.StatusCode = resp.StatusCode
		return &apiErr
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       http.StatusText(resp.StatusCode),
		Message:    string(body),
	}
}
