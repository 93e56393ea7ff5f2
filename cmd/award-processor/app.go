// cmd/award-processor/app.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cinematicsodium/awards/internal/common/config"
	"github.com/cinematicsodium/awards/internal/common/logger"
	"github.com/cinematicsodium/awards/internal/common/metrics"
	"github.com/cinematicsodium/awards/internal/models"
	aggregateemployees "github.com/cinematicsodium/awards/internal/workers/award/aggregate-employees"
	allocateid "github.com/cinematicsodium/awards/internal/workers/award/allocate-id"
	assemblerecord "github.com/cinematicsodium/awards/internal/workers/award/assemble-record"
	evaluatecompensation "github.com/cinematicsodium/awards/internal/workers/award/evaluate-compensation"
	classifyform "github.com/cinematicsodium/awards/internal/workers/intake/classify-form"
	resolvefields "github.com/cinematicsodium/awards/internal/workers/intake/resolve-fields"
	matchorganization "github.com/cinematicsodium/awards/internal/workers/normalize/match-organization"
	"github.com/cinematicsodium/awards/pkg/registry"

	"go.uber.org/zap"
)

// app holds what every command needs: the loaded configuration and the
// process logger.
type app struct {
	cfg *config.Config
	zap *zap.Logger
	log logger.Logger
}

func newApp() (*app, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	return &app{
		cfg: cfg,
		zap: zapLog,
		log: logger.NewZapAdapter(zapLog),
	}, nil
}

func (a *app) close() {
	_ = a.zap.Sync()
}

func (a *app) fiscalYear() string {
	if a.cfg.Awards.FiscalYearSuffix != "" {
		return a.cfg.Awards.FiscalYearSuffix
	}
	return models.FiscalYearSuffix(time.Now())
}

// newAssembler wires the engine stages. archive answers the allocator's
// collision probe.
func (a *app) newAssembler(archive allocateid.Archive) (*assemblerecord.Handler, error) {
	reg, err := registry.LoadRegistry(a.cfg.Awards.RegistryPath)
	if err != nil {
		return nil, fmt.Errorf("load field registry: %w", err)
	}
	taxonomy, err := matchorganization.LoadTaxonomy(a.cfg.Awards.TaxonomyPath)
	if err != nil {
		return nil, fmt.Errorf("load taxonomy: %w", err)
	}

	classifyCfg := classifyform.LoadConfig()
	classifyCfg.MinFieldCount = a.cfg.Awards.MinFieldCount

	resolveCfg := resolvefields.LoadConfig()
	resolveCfg.ExternalAgency = a.cfg.Awards.ExternalAgency

	orgCfg := matchorganization.LoadConfig()
	orgCfg.ManagementOrg = a.cfg.Awards.ManagementOrg

	evalCfg := evaluatecompensation.LoadConfig()
	evalCfg.PolicyReference = a.cfg.Awards.PolicyReference

	allocCfg := allocateid.LoadConfig()
	allocCfg.MaxCollisionAttempts = a.cfg.Awards.MaxCollisionAttempts

	workers := assemblerecord.Workers{
		Classifier:    classifyform.NewHandler(classifyCfg, reg, a.log),
		Resolver:      resolvefields.NewHandler(resolveCfg, reg, a.log),
		Organizations: matchorganization.NewHandler(orgCfg, taxonomy, a.log),
		Aggregator:    aggregateemployees.NewHandler(aggregateemployees.LoadConfig(), reg, a.log),
		Evaluator:     evaluatecompensation.NewHandler(evalCfg, a.log),
		Allocator:     allocateid.NewHandler(allocCfg, archive, a.log),
	}

	observe := func(stage string, d time.Duration) {
		metrics.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
	}
	assembleCfg := assemblerecord.LoadConfig()
	assembleCfg.FiscalYearSuffix = a.fiscalYear()
	assembleCfg.Consultants = a.cfg.Awards.Consultants
	assembleCfg.MonetaryHold = a.cfg.Awards.MonetaryHold

	return assemblerecord.NewHandler(
		assembleCfg,
		workers, reg, a.log,
		assemblerecord.WithStageObserver(observe),
	), nil
}

func readBatch(path string) ([]models.RawFieldMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch: %w", err)
	}
	var batch []models.RawFieldMap
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("parse batch %s: %w", path, err)
	}
	return batch, nil
}

// writeRecords writes one JSON object per line.
func writeRecords(w io.Writer, records []*models.AwardRecord) error {
	enc := json.NewEncoder(w)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("write record %s: %w", rec.Source, err)
		}
	}
	return nil
}

// openOutput returns stdout for "" or "-".
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
