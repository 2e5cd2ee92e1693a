// Package errors defines the coded errors raised for fatal configuration
// problems. Architectural violations are not errors in this sense; they are
// accumulated by the verify package and only become one aggregate error when
// verification is asked to raise.
package errors

import (
	"fmt"
)

// ErrorCode represents stable error codes for all fatal failure modes
type ErrorCode string

const (
	// StrategyAmbiguous indicates more than one partitioning strategy was supplied
	StrategyAmbiguous ErrorCode = "STRATEGY_AMBIGUOUS"
	// ModuleNotFound indicates a referenced module does not exist
	ModuleNotFound ErrorCode = "MODULE_NOT_FOUND"
	// InterfaceNotFound indicates a referenced named interface does not exist
	InterfaceNotFound ErrorCode = "INTERFACE_NOT_FOUND"
	// DeclarationInvalid indicates a malformed module or dependency declaration
	DeclarationInvalid ErrorCode = "DECLARATION_INVALID"
	// UniverseInvalid indicates the code universe could not be loaded
	UniverseInvalid ErrorCode = "UNIVERSE_INVALID"
	// StoreError indicates the run-history store failed
	StoreError ErrorCode = "STORE_ERROR"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// ModguardError represents a fatal error with a stable code and message
type ModguardError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Hint    string      `json:"hint,omitempty"`
	cause   error       // underlying error, not exported to JSON
}

// New creates a new ModguardError
func New(code ErrorCode, message string, cause error) *ModguardError {
	return &ModguardError{
		Code:    code,
		Message: message,
		Hint:    hints[code],
		cause:   cause,
	}
}

// Newf creates a new ModguardError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *ModguardError {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// Error implements the error interface
func (e *ModguardError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *ModguardError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *ModguardError) WithDetails(details interface{}) *ModguardError {
	e.Details = details
	return e
}

// hints maps error codes to a short remediation hint shown by the CLI
var hints = map[ErrorCode]string{
	StrategyAmbiguous:  "supply exactly one partitioning strategy in the configuration",
	ModuleNotFound:     "run 'modguard modules' to list the modules of the analyzed roots",
	InterfaceNotFound:  "check the named-interface declarations of the target module",
	DeclarationInvalid: "declared dependencies use the form 'module' or 'module::interface'",
	UniverseInvalid:    "verify the snapshot or SCIP index with 'modguard modules --format=json'",
}

// CodeOf extracts the error code from err, or InternalError for plain errors
func CodeOf(err error) ErrorCode {
	if me, ok := err.(*ModguardError); ok {
		return me.Code
	}
	return InternalError
}
