// internal/batch/runner.go
package batch

import (
	"context"
	"time"

	apperrors "github.com/cinematicsodium/awards/internal/common/errors"
	"github.com/cinematicsodium/awards/internal/common/logger"
	"github.com/cinematicsodium/awards/internal/common/metrics"
	"github.com/cinematicsodium/awards/internal/common/observability"
	"github.com/cinematicsodium/awards/internal/models"
	allocateid "github.com/cinematicsodium/awards/internal/workers/award/allocate-id"
	assemblerecord "github.com/cinematicsodium/awards/internal/workers/award/assemble-record"
	archiverecord "github.com/cinematicsodium/awards/internal/workers/infrastructure/archive-record"
	sendrejection "github.com/cinematicsodium/awards/internal/workers/infrastructure/send-rejection"

	"github.com/google/uuid"
)

type Assembler interface {
	Execute(ctx context.Context, input *assemblerecord.Input) (*assemblerecord.Output, error)
}

type Archiver interface {
	Execute(ctx context.Context, input *archiverecord.Input) (*archiverecord.Output, error)
}

type Notifier interface {
	Execute(ctx context.Context, input *sendrejection.Input) (*sendrejection.Output, error)
}

type Config struct {
	FiscalYear string
	// DryRun assembles and allocates in memory only: nothing is archived,
	// persisted or sent.
	DryRun       bool
	InitialDelay time.Duration
}

func DefaultConfig(fiscalYear string) *Config {
	return &Config{
		FiscalYear:   fiscalYear,
		InitialDelay: 500 * time.Millisecond,
	}
}

// Runner processes a batch sequentially. It owns the serial counter for
// the duration of the batch and advances it only after a record is archived.
type Runner struct {
	config    *Config
	assembler Assembler
	archiver  Archiver
	notifier  Notifier
	counters  allocateid.CounterStore
	obs       *observability.Observability
	errors    *apperrors.SubmissionErrorHandler
	sleep     func(context.Context, time.Duration) error
	logger    logger.Logger
}

// Dependencies are the collaborators of a Runner. Notifier and
// Observability may be nil.
type Dependencies struct {
	Assembler     Assembler
	Archiver      Archiver
	Notifier      Notifier
	Counters      allocateid.CounterStore
	Observability *observability.Observability
}

func NewRunner(config *Config, deps Dependencies, log logger.Logger) *Runner {
	return &Runner{
		config:    config,
		assembler: deps.Assembler,
		archiver:  deps.Archiver,
		notifier:  deps.Notifier,
		counters:  deps.Counters,
		obs:       deps.Observability,
		errors:    apperrors.NewSubmissionErrorHandler(log),
		sleep:     sleepContext,
		logger:    log,
	}
}

// Result summarizes a batch run.
type Result struct {
	BatchID  string                `json:"batchId"`
	Records  []*models.AwardRecord `json:"records"`
	Valid    int                   `json:"valid"`
	Rejected int                   `json:"rejected"`
	Counter  models.SerialCounter  `json:"counter"`
	Duration time.Duration         `json:"duration"`
}

// Run processes submissions in order. Per-submission failures become
// REJECTED records; only a counter-store failure at start or a cancelled
// context stops the batch, returning the records processed so far.
func (r *Runner) Run(ctx context.Context, submissions []models.RawFieldMap) (*Result, error) {
	start := time.Now()
	res := &Result{BatchID: uuid.New().String()}
	log := r.logger.WithFields(map[string]interface{}{
		"batchId":    res.BatchID,
		"fiscalYear": r.config.FiscalYear,
		"dryRun":     r.config.DryRun,
	})

	var counter models.SerialCounter
	err := r.retryWithBackoff(ctx, log, "counter load", func() (err error) {
		counter, err = r.counters.Load(ctx, r.config.FiscalYear)
		return err
	})
	if err != nil {
		log.Error("serial counter unavailable", map[string]interface{}{"error": err.Error()})
		return res, err
	}
	log.Info("batch started", map[string]interface{}{
		"submissions": len(submissions),
		"nextIND":     counter.Next(models.CategoryIND),
		"nextGRP":     counter.Next(models.CategoryGRP),
	})

	for _, fields := range submissions {
		if err := ctx.Err(); err != nil {
			res.Counter = counter
			return res, err
		}

		rec, next, err := r.process(ctx, log, res.BatchID, fields, counter)
		if err != nil {
			res.Counter = counter
			return res, err
		}
		counter = next
		res.Records = append(res.Records, rec)
		r.count(ctx, rec, res)
	}

	res.Counter = counter
	res.Duration = time.Since(start)
	r.obs.RecordBatchDuration(ctx, res.Duration, r.config.DryRun)

	log.Info("batch finished", map[string]interface{}{
		"valid":    res.Valid,
		"rejected": res.Rejected,
		"duration": res.Duration.String(),
	})
	return res, nil
}

func (r *Runner) process(ctx context.Context, log logger.Logger, batchID string, fields models.RawFieldMap, counter models.SerialCounter) (*models.AwardRecord, models.SerialCounter, error) {
	out, err := r.assembler.Execute(ctx, &assemblerecord.Input{Fields: fields, Counter: counter})
	if err != nil {
		return nil, counter, err
	}
	rec := out.Record
	subLog := log.WithFields(map[string]interface{}{"source": rec.Source})

	if rec.Status == models.StatusRejected {
		r.notify(ctx, subLog, batchID, rec)
		return rec, counter, nil
	}

	if r.config.DryRun {
		return rec, allocateid.Commit(counter, *out.Allocation), nil
	}

	err = r.retryWithBackoff(ctx, subLog, "archive", func() error {
		_, err := r.archiver.Execute(ctx, &archiverecord.Input{Record: rec})
		return err
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, counter, ctxErr
		}
		rejectArchived(rec, r.errors.Handle(rec.Source, err))
		r.notify(ctx, subLog, batchID, rec)
		return rec, counter, nil
	}

	next := allocateid.Commit(counter, *out.Allocation)
	err = r.retryWithBackoff(ctx, subLog, "counter save", func() error {
		return r.counters.Save(ctx, r.config.FiscalYear, next)
	})
	if err != nil {
		// The archive already holds the id; the allocator's collision
		// probe skips it on the next run.
		subLog.Error("serial counter not saved", map[string]interface{}{
			"id":    rec.ID,
			"error": err.Error(),
		})
	}
	metrics.SerialCounter.WithLabelValues(string(rec.Category)).Set(float64(next.Next(rec.Category) - 1))
	return rec, next, nil
}

// rejectArchived turns a record that could not be archived into a rejection.
func rejectArchived(rec *models.AwardRecord, rejection *models.Rejection) {
	rec.ID = ""
	rec.Status = models.StatusRejected
	rec.Rejection = rejection
}

func (r *Runner) notify(ctx context.Context, log logger.Logger, batchID string, rec *models.AwardRecord) {
	if r.notifier == nil || r.config.DryRun {
		return
	}
	err := r.retryWithBackoff(ctx, log, "rejection notice", func() error {
		_, err := r.notifier.Execute(ctx, &sendrejection.Input{BatchID: batchID, Record: rec})
		return err
	})
	if err != nil {
		log.Error("rejection notice not delivered", map[string]interface{}{
			"code":  rec.Rejection.Code,
			"error": err.Error(),
		})
	}
}

func (r *Runner) count(ctx context.Context, rec *models.AwardRecord, res *Result) {
	category := string(rec.Category)
	if category == "" {
		category = "unknown"
	}
	metrics.SubmissionsTotal.WithLabelValues(category, string(rec.Status)).Inc()
	r.obs.RecordSubmission(ctx, string(rec.Status))

	if rec.Status == models.StatusValid {
		res.Valid++
		return
	}
	res.Rejected++
	metrics.RejectionsTotal.WithLabelValues(rec.Rejection.Code).Inc()
}
