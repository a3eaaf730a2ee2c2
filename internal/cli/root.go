package cli

import (
	"context"
	"io"
	"os"

	"ai-study-planner/internal/app"
	"ai-study-planner/internal/config"
	"ai-study-planner/internal/ghost"
	"ai-study-planner/internal/metrics"
	"ai-study-planner/internal/planner"
	"ai-study-planner/internal/session"

	"github.com/spf13/cobra"
)

// PlanGenerator produces a batch of study plans from uploads.
type PlanGenerator interface {
	HasCredential() bool
	GeneratePlans(ctx context.Context, uploads []app.Upload) (planner.Batch, error)
}

// App holds the dependencies used by CLI commands.
type App struct {
	Config    *config.Config
	Plans     PlanGenerator
	Metrics   *metrics.Store
	Results   session.ResultStore
	Publisher ghost.Client

	// Out receives command output. Defaults to stdout.
	Out io.Writer
}

func (a *App) out() io.Writer {
	if a.Out == nil {
		return os.Stdout
	}
	return a.Out
}

// NewRootCmd creates the top-level "study-planner" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "study-planner",
		Short:         "Generate exam study plans from course syllabi",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(app),
		newPlanCmd(app),
		newMetricsCmd(app),
		newMetricsCleanupCmd(app),
	)

	return root
}
