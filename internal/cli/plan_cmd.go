package cli

import (
	"encoding/json"
	"fmt"
	"log"

	"ai-study-planner/internal/app"
	"ai-study-planner/internal/cli/formatter"
	"ai-study-planner/internal/ghost"
	"ai-study-planner/internal/planner"

	"github.com/spf13/cobra"
)

func newPlanCmd(a *App) *cobra.Command {
	var exams []string
	var batchPath string
	var interactive, publish, asJSON bool

	cmd := &cobra.Command{
		Use:   "plan [syllabus files...]",
		Short: "Generate study plans for one or more courses",
		Example: `  study-planner plan "Calculus II.pdf" --exam 2026-12-15
  study-planner plan calc.pdf chem.html --exam 2026-12-15 --exam 2026-12-18
  study-planner plan --batch courses.yaml --publish`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.Plans.HasCredential() {
				return planner.ErrMissingCredential
			}

			var uploads []app.Upload
			var err error
			switch {
			case batchPath != "":
				uploads, err = LoadBatch(batchPath)
			case interactive:
				var files, dates []string
				if files, dates, err = promptCourses(); err == nil {
					uploads, err = uploadsFromArgs(files, dates)
				}
			default:
				uploads, err = uploadsFromArgs(args, exams)
			}
			if err != nil {
				return err
			}

			batch, err := a.Plans.GeneratePlans(cmd.Context(), uploads)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(a.out())
				enc.SetIndent("", "  ")
				if err := enc.Encode(batch); err != nil {
					return err
				}
			} else {
				fmt.Fprint(a.out(), formatter.FormatBatch(batch))
			}

			if publish {
				return publishBatch(cmd, a, batch)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&exams, "exam", nil, "Exam date (YYYY-MM-DD), once for all files or once per file")
	cmd.Flags().StringVar(&batchPath, "batch", "", "YAML file listing courses, files and exam dates")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Enter courses in an interactive form")
	cmd.Flags().BoolVar(&publish, "publish", false, "Publish each plan as a draft post on Ghost")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the batch as JSON")
	cmd.MarkFlagsMutuallyExclusive("batch", "interactive", "exam")

	return cmd
}

func publishBatch(cmd *cobra.Command, a *App, batch planner.Batch) error {
	if a.Publisher == nil {
		return fmt.Errorf("publishing requires GHOST_API_URL and GHOST_ADMIN_API_KEY")
	}
	for _, r := range batch.Results {
		if !r.OK() {
			continue
		}
		post, err := ghost.PublishPlan(cmd.Context(), a.Publisher, r, batch.Sessions)
		if err != nil {
			log.Printf("Failed to publish plan for '%s': %v", r.CourseName, err)
			continue
		}
		fmt.Fprintf(a.out(), "%s Draft created for %s: %s\n", formatter.StyleGreen.Render("✓"), r.CourseName, post.URL)
	}
	return nil
}
