// File: codes.go
// Title: Error Code Definitions
// Description: Defines the structured error codes used across the rollcall
//              tooling so that batch failures can be classified consistently
//              in logs and run reports.

package errorx

// Code classifies an error for reporting and log filtering.
type Code string

const (
	// Generic codes
	CodeUnknown  Code = "UNKNOWN"
	CodeInternal Code = "INTERNAL"
	CodeNotFound Code = "NOT_FOUND"

	// Configuration
	CodeInvalidConfig Code = "INVALID_CONFIG"
	CodeMissingConfig Code = "MISSING_CONFIG"

	// Input data
	CodeMissingColumn   Code = "MISSING_COLUMN"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeInvalidRecord   Code = "INVALID_RECORD"
	CodeEmptyInput      Code = "EMPTY_INPUT"
	CodeEncodingError   Code = "ENCODING_ERROR"
	CodeValueOutOfRange Code = "VALUE_OUT_OF_RANGE"

	// Scheduling
	CodeCalendarExhausted Code = "CALENDAR_EXHAUSTED"
	CodeChainAborted      Code = "CHAIN_ABORTED"
	CodeBadAnchor         Code = "BAD_ANCHOR"

	// Persistence
	CodeStoreError Code = "STORE_ERROR"
)

// String returns the string representation of the error code.
func (c Code) String() string {
	return string(c)
}

// Category returns the high-level category of the error code.
func (c Code) Category() string {
	switch c {
	case CodeInvalidConfig, CodeMissingConfig:
		return "configuration"
	case CodeMissingColumn, CodeInvalidFormat, CodeInvalidRecord, CodeEmptyInput, CodeEncodingError, CodeValueOutOfRange:
		return "input"
	case CodeCalendarExhausted, CodeChainAborted, CodeBadAnchor:
		return "scheduling"
	case CodeStoreError:
		return "persistence"
	default:
		return "generic"
	}
}

// IsFatalForFile reports whether an error with this code should abort the
// current file while letting the batch continue with the next one.
func (c Code) IsFatalForFile() bool {
	switch c {
	case CodeInvalidConfig, CodeMissingConfig, CodeMissingColumn, CodeEncodingError, CodeEmptyInput:
		return true
	default:
		return false
	}
}
