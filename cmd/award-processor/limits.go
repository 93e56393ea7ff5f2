// cmd/award-processor/limits.go
package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/cinematicsodium/awards/internal/models"
	evaluatecompensation "github.com/cinematicsodium/awards/internal/workers/award/evaluate-compensation"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func newLimitsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "limits",
		Short: "Print the monetary and time-off limit matrices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printLimits(cmd.OutOrStdout())
		},
	}
}

func printLimits(w io.Writer) error {
	p := message.NewPrinter(language.English)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)

	header := make([]string, 0, len(models.Extents)+1)
	header = append(header, "VALUE \\ EXTENT")
	for _, e := range models.Extents {
		header = append(header, e.Title())
	}

	fmt.Fprintln(tw, "Monetary (USD)\t")
	fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")
	for _, v := range models.Values {
		row := []string{v.Title()}
		for _, e := range models.Extents {
			m, _, _ := evaluatecompensation.Limits(v, e)
			row = append(row, p.Sprintf("$%d", m))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t")+"\t")
	}

	fmt.Fprintln(tw, "\t")
	fmt.Fprintln(tw, "Time-off (hours)\t")
	fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")
	for _, v := range models.Values {
		row := []string{v.Title()}
		for _, e := range models.Extents {
			_, h, _ := evaluatecompensation.Limits(v, e)
			row = append(row, fmt.Sprintf("%d", h))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t")+"\t")
	}
	return tw.Flush()
}
