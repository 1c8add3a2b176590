package errors

// Error codes returned in the "error" field of every error response.
// Format: CATEGORY_SPECIFIC_DETAIL. Clients map on the code, not the message.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized        = "AUTH_UNAUTHORIZED"          // login required
	AuthInvalidCredentials  = "AUTH_INVALID_CREDENTIALS"   // wrong email/password
	AuthTooManyAttempts     = "AUTH_TOO_MANY_ATTEMPTS"     // login locked out
	AuthTokenInvalid        = "AUTH_TOKEN_INVALID"         // malformed/unknown/expired bearer token
	AuthEmailAlreadyExists  = "AUTH_EMAIL_EXISTS"          // duplicate email
	AuthPasswordIncorrect   = "AUTH_PASSWORD_INCORRECT"    // wrong current password
	AuthCannotRevokeCurrent = "AUTH_CANNOT_REVOKE_CURRENT" // revoke of the presenting token
	AuthResetTokenInvalid   = "AUTH_RESET_TOKEN_INVALID"   // unknown/expired reset token
	AuthResetEmailUnknown   = "AUTH_RESET_EMAIL_UNKNOWN"   // reset for unregistered email
	AuthCSRFMismatch        = "AUTH_CSRF_MISMATCH"         // page expired

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden      = "AUTHZ_FORBIDDEN"       // access denied
	AuthzMissingAbility = "AUTHZ_MISSING_ABILITY" // token lacks the ability

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT" // invalid input
	ValidationInvalidID    = "VALIDATION_INVALID_ID"    // invalid id

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"      // no such resource
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS" // already exists

	// ==================== Upload (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE" // not an accepted image type
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"    // over the size limit
	UploadFailed          = "UPLOAD_FAILED"            // storage error

	// ==================== Rate limiting (RATE_) ====================
	RateLimitExceeded = "RATE_LIMIT_EXCEEDED" // route throttle

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"   // server error
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR" // datastore error
)
