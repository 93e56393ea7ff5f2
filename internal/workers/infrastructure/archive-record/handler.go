// internal/workers/infrastructure/archive-record/handler.go
package archiverecord

import (
	"context"
	_ "embed"
	"errors"
	"strings"
	"time"

	apperrors "github.com/cinematicsodium/awards/internal/common/errors"
	"github.com/cinematicsodium/awards/internal/common/logger"
	"github.com/cinematicsodium/awards/internal/common/validation"
	"github.com/cinematicsodium/awards/internal/models"
)

const (
	TaskType = "archive-record"
)

//go:embed record.schema.json
var recordSchema []byte

var recordContract = validation.MustCompile(recordSchema)

type Handler struct {
	config  *Config
	store   Store
	indexer Indexer
	clock   func() time.Time
	logger  logger.Logger
}

// NewHandler builds the archiver. indexer may be nil.
func NewHandler(config *Config, store Store, indexer Indexer, log logger.Logger) *Handler {
	return &Handler{
		config:  config,
		store:   store,
		indexer: indexer,
		clock:   time.Now,
		logger:  log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

// Exists lets the handler stand in as the ID allocator's archive.
func (h *Handler) Exists(ctx context.Context, id string) (bool, error) {
	return h.store.Exists(ctx, id)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	rec := input.Record
	if rec == nil {
		return nil, apperrors.NewRecordContractViolationError("no record to archive")
	}
	if err := CheckContract(rec); err != nil {
		return nil, err
	}

	archivedAt := h.clock().UTC()
	if err := h.store.Insert(ctx, rec, archivedAt); err != nil {
		h.logger.Error("archive insert failed", map[string]interface{}{
			"id":    rec.ID,
			"error": err.Error(),
		})
		archiveErr := apperrors.NewArchiveFailedError(rec.ID, err)
		// a duplicate id fails the same way on every attempt
		archiveErr.Retryable = !errors.Is(err, ErrAlreadyArchived)
		return nil, archiveErr
	}

	indexed := false
	if h.indexer != nil && h.config.IndexRecords {
		// Index failures never fail the submission.
		if err := h.indexer.Index(ctx, rec); err != nil {
			h.logger.Warn("record index failed", map[string]interface{}{
				"id":    rec.ID,
				"error": apperrors.NewIndexFailedError(rec.ID, err).Error(),
			})
		} else {
			indexed = true
		}
	}

	h.logger.Info("record archived", map[string]interface{}{
		"id":       rec.ID,
		"source":   rec.Source,
		"category": string(rec.Category),
		"indexed":  indexed,
	})

	return &Output{
		ID:         rec.ID,
		ArchivedAt: archivedAt,
		Indexed:    indexed,
	}, nil
}

// CheckContract validates a record against the archive contract. Only
// VALID records satisfy it.
func CheckContract(rec *models.AwardRecord) error {
	res, err := recordContract.Validate(rec)
	if err != nil {
		return apperrors.NewRecordContractViolationError(err.Error())
	}
	if !res.Valid {
		return apperrors.NewRecordContractViolationError(strings.Join(res.GetErrorMessages(), "; ")).
			WithMetadata("violations", res.Errors)
	}
	return nil
}
