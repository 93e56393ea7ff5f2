// internal/workers/award/allocate-id/handler.go
package allocateid

import (
	"context"
	"fmt"

	apperrors "github.com/cinematicsodium/awards/internal/common/errors"
	"github.com/cinematicsodium/awards/internal/common/logger"
	"github.com/cinematicsodium/awards/internal/models"
)

const (
	TaskType = "allocate-id"
)

type Handler struct {
	config  *Config
	archive Archive
	logger  logger.Logger
}

func NewHandler(config *Config, archive Archive, log logger.Logger) *Handler {
	return &Handler{
		config:  config,
		archive: archive,
		logger:  log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	alloc, err := h.Allocate(ctx, input.Counter, input.Category, input.FiscalYear)
	if err != nil {
		return nil, err
	}
	return &Output{Allocation: alloc}, nil
}

// Allocate picks the first serial at or after the counter whose log id is
// not archived. The counter itself is not changed.
func (h *Handler) Allocate(ctx context.Context, counter models.SerialCounter, cat models.Category, fy string) (Allocation, error) {
	if cat != models.CategoryIND && cat != models.CategoryGRP {
		return Allocation{}, apperrors.NewConfigurationError(fmt.Sprintf("unknown award category %q", cat))
	}

	serial := counter.Next(cat)
	var candidate string
	for attempt := 1; attempt <= h.config.MaxCollisionAttempts; attempt++ {
		candidate = models.FormatLogID(fy, cat, serial)
		taken, err := h.archive.Exists(ctx, candidate)
		if err != nil {
			return Allocation{}, apperrors.NewArchiveFailedError(candidate, err)
		}
		if !taken {
			if attempt > 1 {
				h.logger.Warn("log id collision resolved", map[string]interface{}{
					"id":       candidate,
					"attempts": attempt,
				})
			}
			return Allocation{
				ID:         candidate,
				FiscalYear: fy,
				Category:   cat,
				Serial:     serial,
				Attempts:   attempt,
			}, nil
		}
		serial++
	}

	h.logger.Error("log id collisions exhausted", map[string]interface{}{
		"lastTried": candidate,
		"attempts":  h.config.MaxCollisionAttempts,
	})
	return Allocation{}, apperrors.NewIDCollisionExhaustedError(candidate, h.config.MaxCollisionAttempts)
}

// Commit returns the counter advanced past an archived allocation.
func Commit(counter models.SerialCounter, alloc Allocation) models.SerialCounter {
	return counter.Advance(alloc.Category, alloc.Serial)
}
