// internal/common/errors/handler.go
package errors

import (
	"time"

	"github.com/cinematicsodium/awards/internal/models"
)

// SubmissionErrorHandler turns a per-submission failure into a typed
// rejection. It never aborts the batch.
type SubmissionErrorHandler struct {
	logger Logger
}

// Logger is the subset of logger.Logger the handler needs.
type Logger interface {
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

func NewSubmissionErrorHandler(logger Logger) *SubmissionErrorHandler {
	return &SubmissionErrorHandler{logger: logger}
}

// Handle normalizes err, logs it and returns the rejection to attach to the
// record.
func (h *SubmissionErrorHandler) Handle(source string, err error) *models.Rejection {
	stdErr := Normalize(err)
	rejection := ToRejection(stdErr)
	h.logError(source, stdErr)
	return rejection
}

// Normalize returns the StandardError in err's chain, or wraps err as an
// internal error.
func Normalize(err error) *StandardError {
	if stdErr, ok := As(err); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ToRejection converts a StandardError to the rejection payload.
func ToRejection(stdErr *StandardError) *models.Rejection {
	return &models.Rejection{
		Code:     string(stdErr.Code),
		Category: GetErrorCategory(stdErr.Code),
		Message:  stdErr.Message,
		Details:  stdErr.Details,
		Metadata: stdErr.Metadata,
	}
}

func (h *SubmissionErrorHandler) logError(source string, stdErr *StandardError) {
	fields := map[string]interface{}{
		"source":        source,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"errorCategory": GetErrorCategory(stdErr.Code),
	}
	if stdErr.Code == ErrCodeIDCollisionExhausted || stdErr.Code == ErrCodeInternal {
		h.logger.Error("submission failed", fields)
		return
	}
	h.logger.Warn("submission rejected", fields)
}
