package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/spineworks/vertebrae/internal/repo"
	"github.com/spineworks/vertebrae/internal/types"
	"github.com/spineworks/vertebrae/internal/ui"
)

func newTriageCmd(app *App) *cobra.Command {
	var (
		force          bool
		skipValidation bool
	)

	cmd := &cobra.Command{
		Use:   "triage <id>",
		Short: "Move a backlog task to todo, checking it is well specified",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			task, err := app.Tasks.MustGet(ctx, args[0])
			if err != nil {
				return err
			}

			if task.Status == types.StatusTodo {
				fmt.Printf("%s is already todo\n", task.ID)
				return nil
			}

			if !skipValidation {
				report := repo.ValidateTriage(task)
				for _, note := range report.Notes {
					fmt.Printf("%s %s\n", ui.MutedStyle.Render(ui.IconInfo), note)
				}
				for _, warning := range report.Warnings {
					warnf("%s", warning)
				}
				for _, e := range report.Errors {
					fmt.Printf("%s %s\n", color.RedString(ui.IconFail), e)
				}
				if !report.Ready(force) {
					if len(report.Errors) > 0 {
						return fmt.Errorf("%s is not ready for triage", task.ID)
					}
					return fmt.Errorf("%s has warnings; pass --force to proceed", task.ID)
				}
			}

			updated, _, err := app.Tasks.Transition(ctx, task.ID, types.StatusTodo)
			if err != nil {
				return err
			}
			fmt.Printf("%s %s is now %s\n", color.GreenString("✓"), updated.ID, ui.RenderStatus(updated.Status))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "proceed despite warnings")
	cmd.Flags().BoolVar(&skipValidation, "skip-validation", false, "skip section validation entirely")
	return cmd
}
