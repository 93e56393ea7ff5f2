// cmd/award-processor/validate.go
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/cinematicsodium/awards/internal/batch"
	"github.com/cinematicsodium/awards/internal/models"
	allocateid "github.com/cinematicsodium/awards/internal/workers/award/allocate-id"
	archiverecord "github.com/cinematicsodium/awards/internal/workers/infrastructure/archive-record"

	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <batch.json>",
		Short: "Check a batch without archiving or numbering anything",
		Long: `validate assembles every submission against an empty in-memory archive
and prints its status. Nothing is archived, committed or sent; the ids shown
are previews.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), args[0], cmd.OutOrStdout())
		},
	}
}

func runValidate(ctx context.Context, path string, w io.Writer) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	submissions, err := readBatch(path)
	if err != nil {
		return err
	}

	archive := archiverecord.NewMemoryArchive()
	assembler, err := a.newAssembler(archive)
	if err != nil {
		return err
	}

	runCfg := batch.DefaultConfig(a.fiscalYear())
	runCfg.DryRun = true
	runner := batch.NewRunner(runCfg, batch.Dependencies{
		Assembler: assembler,
		Archiver:  archiverecord.NewHandler(archiverecord.LoadConfig(), archive, nil, a.log),
		Counters:  allocateid.NewMemoryCounterStore(),
	}, a.log)

	res, err := runner.Run(ctx, submissions)
	if err != nil {
		return err
	}

	if err := printStatuses(w, res.Records); err != nil {
		return err
	}
	if res.Rejected > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d submissions rejected\n", res.Rejected, len(res.Records))
	}
	return nil
}

func printStatuses(w io.Writer, records []*models.AwardRecord) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tSTATUS\tID\tREASON")
	for _, rec := range records {
		reason := ""
		if rec.Rejection != nil {
			reason = rec.Rejection.Code
			if rec.Rejection.Details != "" {
				reason += ": " + rec.Rejection.Details
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", rec.Source, rec.Status, rec.ID, reason)
	}
	return tw.Flush()
}
