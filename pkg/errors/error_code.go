package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidBarSeries     ErrorCode = 102

	// Data/Resource errors (200-299)
	ErrCodeDataUnavailable ErrorCode = 201
	ErrCodeQueryFailed     ErrorCode = 202
	ErrCodeNoData          ErrorCode = 204

	// Strategy errors (400-499)
	ErrCodeNoStrategySelected ErrorCode = 400
	ErrCodeVersionMismatch    ErrorCode = 404

	// Evaluation errors (600-699)
	ErrCodeEmptySeries  ErrorCode = 600
	ErrCodeExportFailed ErrorCode = 601

	// Market data errors (700-799)
	ErrCodeInvalidInterval ErrorCode = 703
	ErrCodeInvalidProvider ErrorCode = 704

	// Callback errors (800-899)
	ErrCodeCallbackFailed ErrorCode = 800
)

var codeNames = map[ErrorCode]string{
	ErrCodeUnknown:              "Unknown",
	ErrCodeInvalidParameter:     "InvalidParameter",
	ErrCodeInvalidConfiguration: "InvalidConfiguration",
	ErrCodeInvalidBarSeries:     "InvalidBarSeries",
	ErrCodeDataUnavailable:      "DataUnavailable",
	ErrCodeQueryFailed:          "QueryFailed",
	ErrCodeNoData:               "NoData",
	ErrCodeNoStrategySelected:   "NoStrategySelected",
	ErrCodeVersionMismatch:      "VersionMismatch",
	ErrCodeEmptySeries:          "EmptySeries",
	ErrCodeExportFailed:         "ExportFailed",
	ErrCodeInvalidInterval:      "InvalidInterval",
	ErrCodeInvalidProvider:      "InvalidProvider",
	ErrCodeCallbackFailed:       "CallbackFailed",
}

// String returns the symbolic name of the code, e.g. "NoData".
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}

	return "Unknown"
}
