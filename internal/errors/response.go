package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StatusPageExpired is returned when a form's CSRF token does not match the session.
const StatusPageExpired = 419

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error   string `json:"error"`   // error code, see codes.go
	Message string `json:"message"` // localized, user-facing message
}

// RespondWithError writes an error body and aborts the handler chain.
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.AbortWithStatusJSON(statusCode, ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}

// Shorthands for the common responses.

func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Unauthenticated."
	}
	RespondWithError(c, http.StatusUnauthorized, AuthUnauthorized, message)
}

func Forbidden(c *gin.Context, errorCode string, message string) {
	if message == "" {
		message = "This action is unauthorized."
	}
	RespondWithError(c, http.StatusForbidden, errorCode, message)
}

func NotFound(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusNotFound, errorCode, message)
}

func Unprocessable(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusUnprocessableEntity, errorCode, message)
}

func PageExpired(c *gin.Context, message string) {
	RespondWithError(c, StatusPageExpired, AuthCSRFMismatch, message)
}

func TooManyRequests(c *gin.Context, message string) {
	RespondWithError(c, http.StatusTooManyRequests, RateLimitExceeded, message)
}

func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "An unexpected error occurred."
	}
	RespondWithError(c, http.StatusInternalServerError, InternalServerError, message)
}

// ValidationError carries per-field messages.
type ValidationError struct {
	Error      string            `json:"error"`
	Message    string            `json:"message"`
	Fields     map[string]string `json:"fields,omitempty"`
	RetryAfter int               `json:"retry_after,omitempty"`
}

// RespondWithValidationError answers 422 with field errors.
func RespondWithValidationError(c *gin.Context, message string, fields map[string]string) {
	RespondWithFieldError(c, ValidationInvalidInput, message, fields)
}

// RespondWithFieldError answers 422 with a specific code and field errors.
func RespondWithFieldError(c *gin.Context, errorCode string, message string, fields map[string]string) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, ValidationError{
		Error:   errorCode,
		Message: message,
		Fields:  fields,
	})
}

// TooManyAttempts answers 422 on the email field with the lockout remaining.
func TooManyAttempts(c *gin.Context, message string, retryAfter int) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, ValidationError{
		Error:      AuthTooManyAttempts,
		Message:    message,
		Fields:     map[string]string{"email": message},
		RetryAfter: retryAfter,
	})
}
