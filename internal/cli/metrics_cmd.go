package cli

import (
	"fmt"

	"ai-study-planner/internal/cli/formatter"
	"ai-study-planner/internal/metrics"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newMetricsCmd(a *App) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Show LLM token usage and system health",
		RunE: func(cmd *cobra.Command, args []string) error {
			usage, err := a.Metrics.GetDailyUsage(cmd.Context(), days)
			if err != nil {
				return err
			}
			fmt.Fprint(a.out(), formatter.FormatUsage(usage, metrics.GetSysHealth(a.Config.DatabasePath)))
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 7, "Number of days to report")
	return cmd
}

func newMetricsCleanupCmd(a *App) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "metrics-cleanup",
		Short: "Remove old metric records",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 1 {
				return fmt.Errorf("--days must be positive")
			}
			affected, err := a.Metrics.Cleanup(cmd.Context(), days)
			if err != nil {
				return fmt.Errorf("cleanup failed: %w", err)
			}
			fmt.Fprintf(a.out(), "Successfully removed %s old metric records.\n", humanize.Comma(affected))
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "Keep records for the last N days")
	return cmd
}
