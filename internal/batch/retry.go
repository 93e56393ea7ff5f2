// internal/batch/retry.go
package batch

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/cinematicsodium/awards/internal/common/errors"
	"github.com/cinematicsodium/awards/internal/common/logger"
)

// retryWithBackoff runs operation until it succeeds, fails with a
// non-retryable error, or exhausts the retry budget of its error code.
func (r *Runner) retryWithBackoff(ctx context.Context, log logger.Logger, operationName string, operation func() error) error {
	delay := r.config.InitialDelay
	for attempt := 1; ; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}

		stdErr, ok := apperrors.As(err)
		if !ok || !stdErr.Retryable || attempt > apperrors.GetRetryCount(stdErr.Code) {
			if attempt > 1 {
				return fmt.Errorf("%s failed after %d attempts: %w", operationName, attempt, err)
			}
			return err
		}

		log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
			"error":       err.Error(),
			"attempt":     attempt,
			"nextRetryIn": delay.String(),
		})
		if err := r.sleep(ctx, delay); err != nil {
			return err
		}
		delay *= 2
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
