package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Circuit errors
const (
	// ErrCodeOpenCircuit indicates a breaker denied admission and no
	// fallback value could be produced.
	ErrCodeOpenCircuit ErrorCode = "OPEN_CIRCUIT"
	// ErrCodeFallbackRaised indicates a fallback policy configured to throw.
	ErrCodeFallbackRaised ErrorCode = "FALLBACK_RAISED"
	// ErrCodeUnableToProduceValue indicates a fallback policy could not
	// produce a value of the requested type.
	ErrCodeUnableToProduceValue ErrorCode = "UNABLE_TO_PRODUCE_VALUE"
)

// Configuration errors
const (
	// ErrCodeInvalidConfiguration indicates a policy was constructed with
	// missing or invalid settings.
	ErrCodeInvalidConfiguration ErrorCode = "INVALID_CONFIGURATION"
)

// Collaborator errors (retryable)
const (
	// ErrCodeTimeout indicates the operation exceeded its deadline.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeBulkheadFull indicates no concurrency slot was available.
	ErrCodeBulkheadFull ErrorCode = "BULKHEAD_FULL"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeOpenCircuit:          true,
	ErrCodeTimeout:              true,
	ErrCodeBulkheadFull:         true,
	ErrCodeFallbackRaised:       false,
	ErrCodeUnableToProduceValue: false,
	ErrCodeInvalidConfiguration: false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
// An open circuit is retryable: admission is level-triggered, so a later
// attempt past the open deadline can succeed without any external event.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
