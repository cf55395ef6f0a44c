package main

import (
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/vilaca/ci-metrics/internal/domain"
	"github.com/vilaca/ci-metrics/internal/service"
)

func newShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display a previously written metrics summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.cfg.Err(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			store := service.NewSummaryStore(opts.cfg.OutputPath, opts.logger)

			summary, err := store.Load()
			if err != nil {
				return err
			}

			printSummary(cmd, summary)
			return nil
		},
	}
}

// printSummary renders the summary as a two column table.
func printSummary(cmd *cobra.Command, summary *domain.Summary) {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Metric", "Value"})
	table.SetBorder(true)
	table.SetRowLine(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)

	table.Append([]string{"Commit", summary.CommitSHA})
	table.Append([]string{"Last build", formatTimestamp(summary.BuildStatus.Last.Timestamp)})
	table.Append([]string{"Coverage", formatPercentage(summary.Coverage.Percentage)})
	table.Append([]string{"Tests", formatCounts(summary.Tests)})
	table.Append([]string{"Lint", formatCounts(summary.Lint)})

	table.Render()
}

func formatTimestamp(m domain.Metric[float64]) string {
	seconds, ok := m.Value()
	if !ok {
		return domain.Unknown
	}
	t := time.UnixMicro(int64(seconds * 1e6)).UTC()
	return t.Format(time.RFC3339)
}

func formatPercentage(m domain.Metric[float64]) string {
	pct, ok := m.Value()
	if !ok {
		return domain.Unknown
	}
	return fmt.Sprintf("%.2f%%", pct)
}

func formatCounts(c domain.Counts) string {
	return fmt.Sprintf("errors=%s failures=%s total=%s", c.Errors, c.Failures, c.Total)
}
