// Package errors defines the pipeline error taxonomy.
//
// Errors are split into two classes: record-scoped errors (a single bad
// record, the batch keeps going) and control-plane errors (the pipeline
// cannot make progress and must stop). Recoverable reports which class an
// error belongs to.
package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Record-scoped errors, recovered by skip-and-continue
	ErrorTypeMalformedTimestamp ErrorType = "MALFORMED_TIMESTAMP"
	ErrorTypeMissingField       ErrorType = "MISSING_FIELD"
	ErrorTypeSinkWrite          ErrorType = "SINK_WRITE"

	// Control-plane errors, propagated as fatal
	ErrorTypeUpstream ErrorType = "UPSTREAM_UNAVAILABLE"
	ErrorTypeInternal ErrorType = "INTERNAL"
)

// PipelineError represents a typed pipeline error
type PipelineError struct {
	Type     ErrorType
	Message  string
	RecordID string
	Cause    error
}

// Error implements the error interface
func (e *PipelineError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Type, e.Message)
	if e.RecordID != "" {
		msg = fmt.Sprintf("%s (record %s)", msg, e.RecordID)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying error
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// WithRecord tags the error with the offending record id
func (e *PipelineError) WithRecord(id string) *PipelineError {
	e.RecordID = id
	return e
}

// NewMalformedTimestamp creates an error for an unparseable created_time value
func NewMalformedTimestamp(value string, cause error) *PipelineError {
	return &PipelineError{
		Type:    ErrorTypeMalformedTimestamp,
		Message: fmt.Sprintf("cannot parse created_time %q", value),
		Cause:   cause,
	}
}

// NewMissingField creates an error for a required field that is absent
func NewMissingField(field string) *PipelineError {
	return &PipelineError{
		Type:    ErrorTypeMissingField,
		Message: fmt.Sprintf("required field %q is missing", field),
	}
}

// NewSinkWriteError creates an error for a failed durable-store write
func NewSinkWriteError(recordID string, cause error) *PipelineError {
	return &PipelineError{
		Type:     ErrorTypeSinkWrite,
		Message:  "failed to write record to sink",
		RecordID: recordID,
		Cause:    cause,
	}
}

// NewUpstreamError creates an error for a failed transport operation
func NewUpstreamError(operation string, cause error) *PipelineError {
	return &PipelineError{
		Type:    ErrorTypeUpstream,
		Message: fmt.Sprintf("upstream operation %q failed", operation),
		Cause:   cause,
	}
}

// NewInternalError creates an internal error
func NewInternalError(message string, cause error) *PipelineError {
	return &PipelineError{
		Type:    ErrorTypeInternal,
		Message: message,
		Cause:   cause,
	}
}

// GetPipelineError extracts a PipelineError from an error chain
func GetPipelineError(err error) *PipelineError {
	var perr *PipelineError
	if errors.As(err, &perr) {
		return perr
	}
	return nil
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	perr := GetPipelineError(err)
	return perr != nil && perr.Type == errType
}

// IsMalformedTimestamp checks for an unparseable created_time error
func IsMalformedTimestamp(err error) bool {
	return IsType(err, ErrorTypeMalformedTimestamp)
}

// IsMissingField checks for a missing required field error
func IsMissingField(err error) bool {
	return IsType(err, ErrorTypeMissingField)
}

// IsSinkWrite checks for a failed sink write error
func IsSinkWrite(err error) bool {
	return IsType(err, ErrorTypeSinkWrite)
}

// IsUpstream checks for a transport failure error
func IsUpstream(err error) bool {
	return IsType(err, ErrorTypeUpstream)
}

// Recoverable reports whether the error is scoped to a single record and
// the surrounding batch may continue. Unknown errors are treated as fatal.
func Recoverable(err error) bool {
	perr := GetPipelineError(err)
	if perr == nil {
		return false
	}
	switch perr.Type {
	case ErrorTypeMalformedTimestamp, ErrorTypeMissingField, ErrorTypeSinkWrite:
		return true
	}
	return false
}
