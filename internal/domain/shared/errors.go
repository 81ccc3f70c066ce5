package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrValidationFailure   = NewDomainError("VALIDATION_FAILURE", "Input failed validation")
	ErrIntegrityViolation  = NewDomainError("INTEGRITY_VIOLATION", "Ledger invariant violated")
	ErrPeriodLocked        = NewDomainError("PERIOD_LOCKED", "Payroll period is locked")
	ErrRetryExhausted      = NewDomainError("RETRY_EXHAUSTED", "Retry limit reached, manual reissue required")
)

// IsDomainError returns the DomainError if err is one, nil otherwise
func IsDomainError(err error) *DomainError {
	if de, ok := err.(*DomainError); ok {
		return de
	}
	return nil
}
