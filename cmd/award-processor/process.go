// cmd/award-processor/process.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cinematicsodium/awards/internal/batch"
	"github.com/cinematicsodium/awards/internal/common/config"
	"github.com/cinematicsodium/awards/internal/common/database"
	"github.com/cinematicsodium/awards/internal/common/metrics"
	"github.com/cinematicsodium/awards/internal/common/observability"
	"github.com/cinematicsodium/awards/internal/models"
	allocateid "github.com/cinematicsodium/awards/internal/workers/award/allocate-id"
	archiverecord "github.com/cinematicsodium/awards/internal/workers/infrastructure/archive-record"
	sendrejection "github.com/cinematicsodium/awards/internal/workers/infrastructure/send-rejection"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

type processOptions struct {
	out        string
	metricsOut string
	dryRun     bool
}

func newProcessCmd() *cobra.Command {
	opts := &processOptions{}
	cmd := &cobra.Command{
		Use:   "process <batch.json>",
		Short: "Assemble, archive and number a batch of submissions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runProcess(ctx, args[0], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "write JSON-lines records to this file instead of stdout")
	cmd.Flags().StringVar(&opts.metricsOut, "metrics-out", "", "write Prometheus text metrics to this file after the run")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "allocate ids without archiving, committing or notifying")
	return cmd
}

func runProcess(ctx context.Context, path string, opts *processOptions) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	submissions, err := readBatch(path)
	if err != nil {
		return err
	}

	fy := a.fiscalYear()
	log := a.log.WithFields(map[string]interface{}{"fiscalYear": fy, "batchFile": path})

	db, err := database.OpenArchive(a.cfg.Awards.ArchiveDriver, a.cfg.Database)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer db.Close()

	store := archiverecord.NewSQLArchive(db, archiverecord.Dialect(a.cfg.Awards.ArchiveDriver), archiverecord.LoadConfig().Table)
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate archive: %w", err)
	}

	archiver, err := newArchiver(ctx, a, store)
	if err != nil {
		return err
	}

	var counters allocateid.CounterStore = allocateid.NewMemoryCounterStore()
	if !opts.dryRun {
		if a.cfg.Database.Redis.Address == "" {
			return fmt.Errorf("database.redis.address is required unless --dry-run is set")
		}
		rdb, err := database.NewRedis(a.cfg.Database.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()
		if err := rdb.Ping(ctx); err != nil {
			return err
		}

		allocCfg := allocateid.LoadConfig()
		allocCfg.LockTTL = config.GetDuration(a.cfg.Database.Redis.LockTTL)
		redisStore := allocateid.NewRedisCounterStore(rdb.GetClient(), allocCfg)

		unlock, err := redisStore.Lock(ctx, fy)
		if err != nil {
			return err
		}
		defer func() {
			if err := unlock(context.Background()); err != nil {
				log.Warn("batch lock not released", map[string]interface{}{"error": err.Error()})
			}
		}()
		counters = redisStore
	}

	notifier, err := newNotifier(ctx, a)
	if err != nil {
		return err
	}

	var obs *observability.Observability
	if a.cfg.Metrics.Enabled {
		obs, err = observability.New(a.cfg.Metrics.ServiceName, prometheus.DefaultRegisterer)
		if err != nil {
			return fmt.Errorf("init observability: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = obs.Shutdown(shutdownCtx)
		}()
	}

	assembler, err := a.newAssembler(store)
	if err != nil {
		return err
	}

	runCfg := batch.DefaultConfig(fy)
	runCfg.DryRun = opts.dryRun
	deps := batch.Dependencies{
		Assembler:     assembler,
		Archiver:      archiver,
		Counters:      counters,
		Observability: obs,
	}
	if notifier != nil {
		deps.Notifier = notifier
	}
	runner := batch.NewRunner(runCfg, deps, a.log)

	res, runErr := runner.Run(ctx, submissions)
	if res != nil && len(res.Records) > 0 {
		out, err := openOutput(opts.out)
		if err != nil {
			return err
		}
		defer out.Close()
		if err := writeRecords(out, res.Records); err != nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}

	if opts.metricsOut != "" {
		f, err := os.Create(opts.metricsOut)
		if err != nil {
			return fmt.Errorf("create metrics output: %w", err)
		}
		defer f.Close()
		if err := metrics.WriteText(f, prometheus.DefaultGatherer); err != nil {
			return err
		}
	}

	log.Info("batch complete", map[string]interface{}{
		"batchId":  res.BatchID,
		"valid":    res.Valid,
		"rejected": res.Rejected,
		"nextIND":  res.Counter.Next(models.CategoryIND),
		"nextGRP":  res.Counter.Next(models.CategoryGRP),
	})
	return nil
}

func newArchiver(ctx context.Context, a *app, store archiverecord.Store) (*archiverecord.Handler, error) {
	archiveCfg := archiverecord.LoadConfig()
	esCfg := a.cfg.Database.Elasticsearch
	if !esCfg.Enabled {
		return archiverecord.NewHandler(archiveCfg, store, nil, a.log), nil
	}

	es, err := database.NewElasticsearch(esCfg)
	if err != nil {
		return nil, err
	}
	if err := es.Ping(ctx); err != nil {
		a.log.Warn("elasticsearch unavailable, records will not be indexed", map[string]interface{}{
			"error": err.Error(),
		})
		return archiverecord.NewHandler(archiveCfg, store, nil, a.log), nil
	}

	indexer := archiverecord.NewElasticsearchIndexer(es.Client, es.Index)
	if err := indexer.EnsureIndex(ctx); err != nil {
		return nil, err
	}

	archiveCfg.IndexRecords = true
	archiveCfg.IndexName = es.Index
	return archiverecord.NewHandler(archiveCfg, store, indexer, a.log), nil
}

// newNotifier returns nil when neither rejection mail nor escalation is
// enabled.
func newNotifier(ctx context.Context, a *app) (*sendrejection.Handler, error) {
	n := a.cfg.Notifications
	if !n.SES.Enabled && !n.SNS.Enabled {
		return nil, nil
	}

	cfg := sendrejection.LoadConfig()
	cfg.AWSRegion = n.Region
	cfg.EmailEnabled = n.SES.Enabled
	cfg.FromEmail = n.SES.FromEmail
	cfg.ToEmail = n.SES.ToEmail
	cfg.EscalationEnabled = n.SNS.Enabled
	cfg.TopicARN = n.SNS.TopicARN

	h, err := sendrejection.NewHandler(ctx, cfg, a.log)
	if err != nil {
		return nil, fmt.Errorf("init notifier: %w", err)
	}
	return h, nil
}
