// Package errors provides the standardized error type shared by the catalog,
// facts and report layers, and the codes the dialogue uses to decide between
// a silent re-prompt and an explicit failure message.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ==========================
// Error Codes
// ==========================

type ErrorCode string

const (
	// Catalog and facts lookups
	ErrCodeCatalogNotFound  ErrorCode = "CATALOG_NOT_FOUND"
	ErrCodeFactsUnavailable ErrorCode = "FACTS_UNAVAILABLE"

	// User input
	ErrCodeInvalidSelection ErrorCode = "INVALID_SELECTION"
	ErrCodeEmptySelection   ErrorCode = "EMPTY_SELECTION"

	// Tabular data
	ErrCodeMalformedTable ErrorCode = "MALFORMED_TABLE"
	ErrCodeMissingColumn  ErrorCode = "MISSING_COLUMN"

	// Report assembly
	ErrCodeReportBuildFailed ErrorCode = "REPORT_BUILD_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// ==========================
// Standard Error
// ==========================

type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key to the error and returns it for chaining.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// Is reports whether any error in err's chain is a StandardError with code.
func Is(err error, code ErrorCode) bool {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code == code
	}
	return false
}

// CodeOf returns the code of the first StandardError in err's chain.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// ==========================
// Constructors
// ==========================

func NewCatalogNotFoundError(location string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogNotFound,
		Message:   "Catalog location not found",
		Details:   location,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidSelectionError(input string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidSelection,
		Message:   "Input is not one of the offered choices",
		Details:   fmt.Sprintf("input: %q", input),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewEmptySelectionError() *StandardError {
	return &StandardError{
		Code:      ErrCodeEmptySelection,
		Message:   "No variables selected",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewMalformedTableError(resource string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedTable,
		Message:   "Table could not be read",
		Details:   fmt.Sprintf("resource: %s: %v", resource, err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewMissingColumnError(resource, column string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingColumn,
		Message:   "Expected column is missing",
		Details:   fmt.Sprintf("resource: %s, column: %s", resource, column),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewFactsUnavailableError(sheet string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeFactsUnavailable,
		Message:   "Facts backend failed",
		Details:   fmt.Sprintf("sheet: %s: %v", sheet, err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewReportBuildFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeReportBuildFailed,
		Message:   "Report could not be assembled",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// Classification
// ==========================

// IsUserInputError reports codes that are recovered by re-prompting.
func IsUserInputError(code ErrorCode) bool {
	return code == ErrCodeInvalidSelection || code == ErrCodeEmptySelection
}

// IsDataError reports codes that abort the current report build.
func IsDataError(code ErrorCode) bool {
	switch code {
	case ErrCodeMalformedTable, ErrCodeMissingColumn, ErrCodeFactsUnavailable, ErrCodeReportBuildFailed:
		return true
	}
	return false
}

func GetErrorCategory(code ErrorCode) string {
	switch {
	case code == ErrCodeCatalogNotFound:
		return "NOT_FOUND"
	case IsUserInputError(code):
		return "USER_INPUT"
	case IsDataError(code):
		return "DATA"
	}
	return "INTERNAL"
}
