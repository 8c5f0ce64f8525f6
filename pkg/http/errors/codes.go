package errors

// Error codes for standardized error responses
const (
	// Validation errors
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeInvalidID        = "invalid_id"

	// Storage errors
	ErrCodeConstraintViolation = "constraint_violation"
	ErrCodeStorageFailed       = "storage_failed"

	// Resource errors
	ErrCodeRecordNotFound = "record_not_found"
	ErrCodeAlreadySet     = "already_set"

	// Generation errors
	ErrCodeGenerationFailed     = "generation_failed"
	ErrCodeGeneratorUnavailable = "generator_unavailable"
	ErrCodeRateLimited          = "rate_limited"

	// Server errors
	ErrCodeInternalError = "internal_error"
)
