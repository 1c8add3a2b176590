package errors

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is the HTTP rendering of a datastore error.
type ErrorInfo struct {
	Status int
	Code   string
}

// ParseError classifies datastore errors. Driver details are never exposed;
// anything unrecognized becomes a 500.
func ParseError(err error) ErrorInfo {
	switch {
	case err == nil:
		return ErrorInfo{Status: http.StatusInternalServerError, Code: InternalServerError}
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrorInfo{Status: http.StatusNotFound, Code: ResourceNotFound}
	case IsDuplicateKey(err):
		return ErrorInfo{Status: http.StatusConflict, Code: ResourceAlreadyExists}
	default:
		return ErrorInfo{Status: http.StatusInternalServerError, Code: InternalDatabaseError}
	}
}

// IsDuplicateKey reports a unique constraint violation (23505 on PostgreSQL).
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
