package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spineworks/vertebrae/internal/repo"
	"github.com/spineworks/vertebrae/internal/types"
)

func newReadyCmd(app *App) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "ready",
		Short: "List todo and backlog tasks with no incomplete blockers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			candidates, err := app.Tasks.List(ctx, repo.Filter{})
			if err != nil {
				return err
			}

			var ready []types.Task
			for _, task := range candidates {
				if task.Status != types.StatusTodo && task.Status != types.StatusBacklog {
					continue
				}
				incomplete, err := app.Rels.IncompleteBlockers(ctx, task.ID, app.Tasks)
				if err != nil {
					return err
				}
				if len(incomplete) == 0 {
					ready = append(ready, task)
				}
			}

			if jsonOutput {
				return printJSON(ready)
			}
			if len(ready) == 0 {
				fmt.Println("nothing is ready")
				return nil
			}
			printTaskTable(ready)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}
