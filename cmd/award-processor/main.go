// cmd/award-processor/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "award-processor",
		Short: "Assemble, validate and archive award nomination forms",
		Long: `award-processor turns batches of extracted nomination form fields into
validated award records with sequential log ids.

Input batches are JSON arrays of {source, page_count, first_page,
mid_pages, last_page} objects. Records are written as JSON lines.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./configs/config.yaml)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")

	root.AddCommand(newProcessCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(newLimitsCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
