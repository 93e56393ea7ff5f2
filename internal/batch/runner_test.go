// internal/batch/runner_test.go
package batch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	apperrors "github.com/cinematicsodium/awards/internal/common/errors"
	"github.com/cinematicsodium/awards/internal/common/logger"
	"github.com/cinematicsodium/awards/internal/models"
	aggregateemployees "github.com/cinematicsodium/awards/internal/workers/award/aggregate-employees"
	allocateid "github.com/cinematicsodium/awards/internal/workers/award/allocate-id"
	assemblerecord "github.com/cinematicsodium/awards/internal/workers/award/assemble-record"
	evaluatecompensation "github.com/cinematicsodium/awards/internal/workers/award/evaluate-compensation"
	classifyform "github.com/cinematicsodium/awards/internal/workers/intake/classify-form"
	resolvefields "github.com/cinematicsodium/awards/internal/workers/intake/resolve-fields"
	archiverecord "github.com/cinematicsodium/awards/internal/workers/infrastructure/archive-record"
	sendrejection "github.com/cinematicsodium/awards/internal/workers/infrastructure/send-rejection"
	matchorganization "github.com/cinematicsodium/awards/internal/workers/normalize/match-organization"
	"github.com/cinematicsodium/awards/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl.WithFields(map[string]interface{}{"error": err})
}

func (tl *testLogger) With(fields map[string]interface{}) logger.Logger {
	return tl
}

// scriptedAssembler allocates sequential ids in fiscal year 25 and rejects
// sources listed in rejects.
type scriptedAssembler struct {
	rejects  map[string]apperrors.ErrorCode
	counters []models.SerialCounter
}

func (a *scriptedAssembler) Execute(_ context.Context, input *assemblerecord.Input) (*assemblerecord.Output, error) {
	a.counters = append(a.counters, input.Counter)
	source := input.Fields.Source

	if code, ok := a.rejects[source]; ok {
		return &assemblerecord.Output{Record: &models.AwardRecord{
			Source:    source,
			Category:  models.CategoryIND,
			Status:    models.StatusRejected,
			Rejection: &models.Rejection{Code: string(code), Message: "rejected"},
		}}, nil
	}

	serial := input.Counter.Next(models.CategoryIND)
	alloc := allocateid.Allocation{
		ID:         models.FormatLogID("25", models.CategoryIND, serial),
		FiscalYear: "25",
		Category:   models.CategoryIND,
		Serial:     serial,
		Attempts:   1,
	}
	return &assemblerecord.Output{
		Record: &models.AwardRecord{
			ID:       alloc.ID,
			Source:   source,
			Category: models.CategoryIND,
			Status:   models.StatusValid,
		},
		Allocation: &alloc,
	}, nil
}

// flakyArchiver fails the first failures calls with err.
type flakyArchiver struct {
	mu       sync.Mutex
	failures int
	err      error
	calls    int
	archived []string
}

func (a *flakyArchiver) Execute(_ context.Context, input *archiverecord.Input) (*archiverecord.Output, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	if a.calls <= a.failures {
		return nil, a.err
	}
	a.archived = append(a.archived, input.Record.ID)
	return &archiverecord.Output{ID: input.Record.ID}, nil
}

type fakeNotifier struct {
	err    error
	calls  int
	inputs []*sendrejection.Input
}

func (n *fakeNotifier) Execute(_ context.Context, input *sendrejection.Input) (*sendrejection.Output, error) {
	n.calls++
	if n.err != nil {
		return nil, n.err
	}
	n.inputs = append(n.inputs, input)
	return &sendrejection.Output{Status: sendrejection.StatusSent}, nil
}

type failingCounterStore struct {
	loadErr error
	saveErr error
	loads   int
	saved   []models.SerialCounter
}

func (s *failingCounterStore) Load(context.Context, string) (models.SerialCounter, error) {
	s.loads++
	return models.SerialCounter{}, s.loadErr
}

func (s *failingCounterStore) Save(_ context.Context, _ string, c models.SerialCounter) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, c)
	return nil
}

type sleepRecorder struct {
	delays []time.Duration
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return nil
}

func createTestRunner(t *testing.T, config *Config, deps Dependencies) (*Runner, *sleepRecorder) {
	t.Helper()
	if config == nil {
		config = DefaultConfig("25")
	}
	if deps.Counters == nil {
		deps.Counters = allocateid.NewMemoryCounterStore()
	}
	r := NewRunner(config, deps, &testLogger{t: t})
	rec := &sleepRecorder{}
	r.sleep = rec.sleep
	return r, rec
}

func submissions(sources ...string) []models.RawFieldMap {
	out := make([]models.RawFieldMap, len(sources))
	for i, s := range sources {
		out[i] = models.RawFieldMap{Source: s}
	}
	return out
}

// ==========================
// Core Functionality Tests
// ==========================

func TestRunner_Run_AllocatesInOrderAndCommits(t *testing.T) {
	counters := allocateid.NewMemoryCounterStore()
	require.NoError(t, counters.Save(context.Background(), "25", models.SerialCounter{IND: 7}))

	archiver := &flakyArchiver{}
	r, _ := createTestRunner(t, nil, Dependencies{
		Assembler: &scriptedAssembler{},
		Archiver:  archiver,
		Counters:  counters,
	})

	res, err := r.Run(context.Background(), submissions("a.pdf", "b.pdf", "c.pdf"))
	require.NoError(t, err)

	assert.NotEmpty(t, res.BatchID)
	assert.Equal(t, 3, res.Valid)
	assert.Equal(t, 0, res.Rejected)
	assert.Equal(t, []string{"25-IND-007", "25-IND-008", "25-IND-009"}, archiver.archived)
	assert.Equal(t, 10, res.Counter.IND)

	saved, err := counters.Load(context.Background(), "25")
	require.NoError(t, err)
	assert.Equal(t, 10, saved.IND)
}

func TestRunner_Run_RejectionsDoNotConsumeSerials(t *testing.T) {
	assembler := &scriptedAssembler{rejects: map[string]apperrors.ErrorCode{
		"bad.pdf": apperrors.ErrCodeCompliance,
	}}
	archiver := &flakyArchiver{}
	notifier := &fakeNotifier{}
	r, _ := createTestRunner(t, nil, Dependencies{
		Assembler: assembler,
		Archiver:  archiver,
		Notifier:  notifier,
	})

	res, err := r.Run(context.Background(), submissions("a.pdf", "bad.pdf", "c.pdf"))
	require.NoError(t, err)

	require.Len(t, res.Records, 3)
	assert.Equal(t, models.StatusRejected, res.Records[1].Status)
	assert.Equal(t, 2, res.Valid)
	assert.Equal(t, 1, res.Rejected)
	assert.Equal(t, []string{"25-IND-001", "25-IND-002"}, archiver.archived)

	require.Len(t, notifier.inputs, 1)
	assert.Equal(t, res.BatchID, notifier.inputs[0].BatchID)
	assert.Equal(t, "bad.pdf", notifier.inputs[0].Record.Source)

	// The rejected submission saw the counter left by a.pdf.
	assert.Equal(t, 2, assembler.counters[1].Next(models.CategoryIND))
	assert.Equal(t, 2, assembler.counters[2].Next(models.CategoryIND))
}

func TestRunner_Run_DryRunNeverPersists(t *testing.T) {
	counters := allocateid.NewMemoryCounterStore()
	archiver := &flakyArchiver{}
	notifier := &fakeNotifier{}

	config := DefaultConfig("25")
	config.DryRun = true
	r, _ := createTestRunner(t, config, Dependencies{
		Assembler: &scriptedAssembler{rejects: map[string]apperrors.ErrorCode{"bad.pdf": apperrors.ErrCodeRequiredFieldMissing}},
		Archiver:  archiver,
		Notifier:  notifier,
		Counters:  counters,
	})

	res, err := r.Run(context.Background(), submissions("a.pdf", "b.pdf", "bad.pdf"))
	require.NoError(t, err)

	assert.Equal(t, "25-IND-001", res.Records[0].ID)
	assert.Equal(t, "25-IND-002", res.Records[1].ID)
	assert.Equal(t, 3, res.Counter.IND)
	assert.Empty(t, archiver.archived)
	assert.Zero(t, notifier.calls)

	saved, err := counters.Load(context.Background(), "25")
	require.NoError(t, err)
	assert.Zero(t, saved.IND)
}

// ==========================
// Retry Tests
// ==========================

func TestRunner_Run_ArchiveRetriedWithBackoff(t *testing.T) {
	archiver := &flakyArchiver{
		failures: 2,
		err:      apperrors.NewArchiveFailedError("25-IND-001", errors.New("connection reset")),
	}
	r, sleeps := createTestRunner(t, nil, Dependencies{
		Assembler: &scriptedAssembler{},
		Archiver:  archiver,
	})

	res, err := r.Run(context.Background(), submissions("a.pdf"))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Valid)
	assert.Equal(t, 3, archiver.calls)
	assert.Equal(t, []time.Duration{500 * time.Millisecond, time.Second}, sleeps.delays)
}

func TestRunner_Run_ArchiveExhaustedRejectsWithoutCommit(t *testing.T) {
	archiver := &flakyArchiver{
		failures: 100,
		err:      apperrors.NewArchiveFailedError("25-IND-001", errors.New("disk full")),
	}
	notifier := &fakeNotifier{}
	counters := allocateid.NewMemoryCounterStore()
	r, sleeps := createTestRunner(t, nil, Dependencies{
		Assembler: &scriptedAssembler{},
		Archiver:  archiver,
		Notifier:  notifier,
		Counters:  counters,
	})

	res, err := r.Run(context.Background(), submissions("a.pdf", "b.pdf"))
	require.NoError(t, err)

	retries := apperrors.GetRetryCount(apperrors.ErrCodeArchiveFailed)
	assert.Equal(t, 2*(retries+1), archiver.calls)
	assert.Len(t, sleeps.delays, 2*retries)

	for _, rec := range res.Records {
		assert.Equal(t, models.StatusRejected, rec.Status)
		assert.Empty(t, rec.ID)
		require.NotNil(t, rec.Rejection)
		assert.Equal(t, string(apperrors.ErrCodeArchiveFailed), rec.Rejection.Code)
	}
	assert.Equal(t, 2, res.Rejected)
	assert.Equal(t, 2, notifier.calls)
	assert.Zero(t, res.Counter.IND)

	saved, err := counters.Load(context.Background(), "25")
	require.NoError(t, err)
	assert.Zero(t, saved.IND)
}

func TestRunner_Run_NonRetryableArchiveErrorNotRetried(t *testing.T) {
	dup := apperrors.NewArchiveFailedError("25-IND-001", errors.New("ALREADY_ARCHIVED: 25-IND-001"))
	dup.Retryable = false
	archiver := &flakyArchiver{failures: 100, err: dup}
	r, sleeps := createTestRunner(t, nil, Dependencies{
		Assembler: &scriptedAssembler{},
		Archiver:  archiver,
	})

	res, err := r.Run(context.Background(), submissions("a.pdf"))
	require.NoError(t, err)

	assert.Equal(t, 1, archiver.calls)
	assert.Empty(t, sleeps.delays)
	assert.Equal(t, 1, res.Rejected)
	assert.Equal(t, string(apperrors.ErrCodeArchiveFailed), res.Records[0].Rejection.Code)
}

func TestRunner_Run_ContractViolationNotRetried(t *testing.T) {
	archiver := &flakyArchiver{
		failures: 1,
		err:      apperrors.NewRecordContractViolationError("employee: is required"),
	}
	r, sleeps := createTestRunner(t, nil, Dependencies{
		Assembler: &scriptedAssembler{},
		Archiver:  archiver,
	})

	res, err := r.Run(context.Background(), submissions("a.pdf"))
	require.NoError(t, err)

	assert.Equal(t, 1, archiver.calls)
	assert.Empty(t, sleeps.delays)
	assert.Equal(t, string(apperrors.ErrCodeRecordContractViolation), res.Records[0].Rejection.Code)
}

func TestRunner_Run_CounterLoadFailureStopsBatch(t *testing.T) {
	store := &failingCounterStore{loadErr: apperrors.NewCounterStoreFailedError("load", errors.New("connection refused"))}
	assembler := &scriptedAssembler{}
	r, _ := createTestRunner(t, nil, Dependencies{
		Assembler: assembler,
		Archiver:  &flakyArchiver{},
		Counters:  store,
	})

	res, err := r.Run(context.Background(), submissions("a.pdf"))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeCounterStoreFailed))
	assert.Equal(t, apperrors.GetRetryCount(apperrors.ErrCodeCounterStoreFailed)+1, store.loads)
	assert.Empty(t, res.Records)
	assert.Empty(t, assembler.counters)
}

func TestRunner_Run_CounterSaveFailureKeepsRecordValid(t *testing.T) {
	store := &failingCounterStore{saveErr: apperrors.NewCounterStoreFailedError("save", errors.New("timeout"))}
	r, _ := createTestRunner(t, nil, Dependencies{
		Assembler: &scriptedAssembler{},
		Archiver:  &flakyArchiver{},
		Counters:  store,
	})

	res, err := r.Run(context.Background(), submissions("a.pdf", "b.pdf"))
	require.NoError(t, err)

	assert.Equal(t, 2, res.Valid)
	assert.Equal(t, "25-IND-002", res.Records[1].ID)
	assert.Equal(t, 3, res.Counter.IND)
}

func TestRunner_Run_NotifierFailureLogged(t *testing.T) {
	notifier := &fakeNotifier{err: apperrors.NewNotificationSendFailedError("ses", errors.New("throttled"))}
	r, _ := createTestRunner(t, nil, Dependencies{
		Assembler: &scriptedAssembler{rejects: map[string]apperrors.ErrorCode{"bad.pdf": apperrors.ErrCodeAmbiguousField}},
		Archiver:  &flakyArchiver{},
		Notifier:  notifier,
	})

	res, err := r.Run(context.Background(), submissions("bad.pdf"))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Rejected)
	assert.Equal(t, apperrors.GetRetryCount(apperrors.ErrCodeNotificationSendFailed)+1, notifier.calls)
}

func TestRunner_Run_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, _ := createTestRunner(t, nil, Dependencies{
		Assembler: &scriptedAssembler{},
		Archiver:  &flakyArchiver{},
	})

	res, err := r.Run(ctx, submissions("a.pdf"))
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, res.Records)
}

// ==========================
// Integration Tests
// ==========================

func TestRunner_Run_WithAwardWorkers(t *testing.T) {
	log := &testLogger{t: t}
	reg := registry.Default()
	archive := archiverecord.NewMemoryArchive("25-IND-002")

	assembler := assemblerecord.NewHandler(&assemblerecord.Config{FiscalYearSuffix: "25"}, assemblerecord.Workers{
		Classifier:    classifyform.NewHandler(classifyform.LoadConfig(), reg, log),
		Resolver:      resolvefields.NewHandler(resolvefields.LoadConfig(), reg, log),
		Organizations: matchorganization.NewHandler(matchorganization.LoadConfig(), matchorganization.DefaultTaxonomy(), log),
		Aggregator:    aggregateemployees.NewHandler(aggregateemployees.LoadConfig(), reg, log),
		Evaluator:     evaluatecompensation.NewHandler(evaluatecompensation.LoadConfig(), log),
		Allocator:     allocateid.NewHandler(allocateid.LoadConfig(), archive, log),
	}, reg, log)

	r, _ := createTestRunner(t, nil, Dependencies{
		Assembler: assembler,
		Archiver:  archiverecord.NewHandler(archiverecord.LoadConfig(), archive, nil, log),
	})

	first := individualForm("smith-jane.pdf", "Jane Smith")
	second := individualForm("doe-alex.pdf", "Alex Doe")
	unsigned := individualForm("unsigned.pdf", "Sam Roe")
	unsigned.FirstPage["nominators name"] = ""

	res, err := r.Run(context.Background(), []models.RawFieldMap{first, unsigned, second})
	require.NoError(t, err)

	require.Len(t, res.Records, 3)
	assert.Equal(t, "25-IND-001", res.Records[0].ID)
	assert.Equal(t, "Smith, Jane", res.Records[0].Employee.Name)
	assert.Equal(t, models.StatusRejected, res.Records[1].Status)
	assert.Equal(t, string(apperrors.ErrCodeRequiredFieldMissing), res.Records[1].Rejection.Code)
	assert.Equal(t, "25-IND-003", res.Records[2].ID)

	assert.Equal(t, []string{"25-IND-001", "25-IND-002", "25-IND-003"}, archive.IDs())
	assert.Equal(t, 4, res.Counter.IND)
}

func individualForm(source, nominee string) models.RawFieldMap {
	return models.RawFieldMap{
		Source:    source,
		PageCount: 2,
		FirstPage: map[string]string{
			"employee name":                      nominee,
			"organization":                       "NA-121.2",
			"pay plan gradestep":                 "EN-03",
			"amount":                             "$1,000",
			"nominators name":                    "John Doe",
			"organization_2":                     "NA-121.2 Budget Office",
			"a nominees team leadersupervisor 1": "Bob Lee",
			"approving officialdesignee 1":       "Ann Ray",
			"organization_5":                     "NA-10",
			"extent of application limited extended or general": "Delivered the budget early.",
		},
		LastPage: map[string]string{
			"high":     "On",
			"extended": "On",
		},
	}
}
