package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/spineworks/vertebrae/internal/repo"
)

func newReviewCmd(app *App) *cobra.Command {
	var set string

	cmd := &cobra.Command{
		Use:   "review <id>",
		Short: "Toggle the needs-human-review flag, or set it with --set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			upd := repo.TaskUpdate{ToggleReview: true}
			if cmd.Flags().Changed("set") {
				var value bool
				switch set {
				case "true":
					value = true
				case "false":
					value = false
				default:
					return fmt.Errorf("--set takes true or false, got %q", set)
				}
				upd = repo.TaskUpdate{SetReview: &value}
			}

			task, err := app.Tasks.Update(cmd.Context(), args[0], upd)
			if err != nil {
				return err
			}
			state := "off"
			if task.NeedsHumanReview {
				state = "on"
			}
			fmt.Printf("%s review flag for %s is %s\n", color.GreenString("✓"), task.ID, state)
			return nil
		},
	}

	cmd.Flags().StringVar(&set, "set", "", "set the flag explicitly: true or false")
	return cmd
}
