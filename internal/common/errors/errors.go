// Package errors provides the standardized error taxonomy shared by the
// award processing stages.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Submission errors. These reject a single submission and never halt a batch.
const (
	ErrCodeConfiguration         ErrorCode = "CONFIGURATION_ERROR"
	ErrCodeAmbiguousField        ErrorCode = "AMBIGUOUS_FIELD"
	ErrCodeRequiredFieldMissing  ErrorCode = "REQUIRED_FIELD_MISSING"
	ErrCodeDuplicateOrIncomplete ErrorCode = "DUPLICATE_OR_INCOMPLETE"
	ErrCodeCompliance            ErrorCode = "COMPLIANCE_ERROR"
	ErrCodeIDCollisionExhausted  ErrorCode = "ID_COLLISION_EXHAUSTED"
)

// Infrastructure errors raised around the engine.
const (
	ErrCodeArchiveFailed           ErrorCode = "ARCHIVE_FAILED"
	ErrCodeCounterStoreFailed      ErrorCode = "COUNTER_STORE_FAILED"
	ErrCodeRecordContractViolation ErrorCode = "RECORD_CONTRACT_VIOLATION"
	ErrCodeIndexFailed             ErrorCode = "INDEX_FAILED"
	ErrCodeNotificationSendFailed  ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeBatchLocked             ErrorCode = "BATCH_LOCKED"
	ErrCodeInternal                ErrorCode = "INTERNAL_ERROR"
)

// StandardError is the internal structured error format.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error { return e.cause }

// Is matches another StandardError by code so callers can test with
// errors.Is(err, &StandardError{Code: ...}).
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMetadata attaches a key to the error payload and returns the error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

func NewConfigurationError(details string) *StandardError {
	return newError(ErrCodeConfiguration, "Form does not match a supported configuration", details, false)
}

func NewAmbiguousFieldError(field, details string) *StandardError {
	return newError(ErrCodeAmbiguousField, "Field could not be resolved unambiguously", details, false).
		WithMetadata("field", field)
}

func NewRequiredFieldMissingError(fields ...string) *StandardError {
	return newError(ErrCodeRequiredFieldMissing, "Required fields missing",
		strings.Join(fields, ", "), false).
		WithMetadata("fields", fields)
}

func NewDuplicateOrIncompleteError(details string, names []string) *StandardError {
	return newError(ErrCodeDuplicateOrIncomplete, "Nominee list is duplicated or incomplete", details, false).
		WithMetadata("nominees", names)
}

// NewComplianceError carries the user-facing alert text in Details.
func NewComplianceError(message, alert string) *StandardError {
	return newError(ErrCodeCompliance, message, alert, false)
}

func NewIDCollisionExhaustedError(lastID string, attempts int) *StandardError {
	return newError(ErrCodeIDCollisionExhausted, "No free log id found",
		fmt.Sprintf("lastTried: %s, attempts: %d", lastID, attempts), false).
		WithMetadata("lastTried", lastID).
		WithMetadata("attempts", attempts)
}

func NewArchiveFailedError(recordID string, err error) *StandardError {
	e := newError(ErrCodeArchiveFailed, "Archive operation failed",
		fmt.Sprintf("recordId: %s, error: %s", recordID, err.Error()), true)
	e.cause = err
	return e
}

func NewCounterStoreFailedError(op string, err error) *StandardError {
	e := newError(ErrCodeCounterStoreFailed, "Serial counter store error",
		fmt.Sprintf("op: %s, error: %s", op, err.Error()), true)
	e.cause = err
	return e
}

func NewRecordContractViolationError(details string) *StandardError {
	return newError(ErrCodeRecordContractViolation, "Record does not satisfy the export contract", details, false)
}

func NewIndexFailedError(recordID string, err error) *StandardError {
	e := newError(ErrCodeIndexFailed, "Record indexing failed",
		fmt.Sprintf("recordId: %s, error: %s", recordID, err.Error()), true)
	e.cause = err
	return e
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	e := newError(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("channel: %s, error: %s", channel, err.Error()), true)
	e.cause = err
	return e
}

func NewBatchLockedError(key string) *StandardError {
	return newError(ErrCodeBatchLocked, "Another batch holds the serial counter lock",
		fmt.Sprintf("lockKey: %s", key), false)
}

// ==========================
// 3. Utility Functions
// ==========================

// As extracts a StandardError from an error chain.
func As(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code ErrorCode) bool {
	return stderrors.Is(err, &StandardError{Code: code})
}

// GetRetryCount returns the retry budget for infrastructure calls.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeArchiveFailed,
		ErrCodeCounterStoreFailed:
		return 3

	case ErrCodeIndexFailed,
		ErrCodeNotificationSendFailed:
		return 2

	default:
		return 0 // submission errors: no retry
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the rejection category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "CONFIGURATION"):
		return "FORM"
	case strings.Contains(codeStr, "AMBIGUOUS") || strings.Contains(codeStr, "REQUIRED") ||
		strings.Contains(codeStr, "DUPLICATE"):
		return "DATA_ENTRY"
	case strings.Contains(codeStr, "COMPLIANCE"):
		return "COMPLIANCE"
	case strings.Contains(codeStr, "COLLISION") || strings.Contains(codeStr, "COUNTER") ||
		strings.Contains(codeStr, "LOCKED"):
		return "ESCALATION"
	case strings.Contains(codeStr, "ARCHIVE") || strings.Contains(codeStr, "INDEX") ||
		strings.Contains(codeStr, "CONTRACT"):
		return "STORAGE"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	default:
		return "OTHER"
	}
}
