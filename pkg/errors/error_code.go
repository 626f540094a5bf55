package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInsufficientData     ErrorCode = 106
	ErrCodeInvalidType          ErrorCode = 107
	ErrCodeInvalidPeriod        ErrorCode = 108
	ErrCodeMissingParameter     ErrorCode = 109
	ErrCodeInvalidVersion       ErrorCode = 110

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeNoDataFound           ErrorCode = 204

	// Strategy errors (400-499)
	ErrCodeStrategyNotFound    ErrorCode = 400
	ErrCodeStrategyConfigError ErrorCode = 401
	ErrCodeVersionMismatch     ErrorCode = 404

	// Step engine errors (900-999)
	ErrCodeLoadError           ErrorCode = 900
	ErrCodeContractError       ErrorCode = 901
	ErrCodeCycleError          ErrorCode = 902
	ErrCodeMissingRuntimeValue ErrorCode = 903
	ErrCodeMissingConfigValue  ErrorCode = 904
	ErrCodeOutputCollision     ErrorCode = 905
	ErrCodeDuplicateStep       ErrorCode = 906
	ErrCodeUnknownReevaluation ErrorCode = 907
	ErrCodeStepFailed          ErrorCode = 908
	ErrCodeStepPanicked        ErrorCode = 909
)
