package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newDeleteCmd(app *App) *cobra.Command {
	var cascade bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task (children are orphaned unless --cascade)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			task, err := app.Tasks.MustGet(ctx, args[0])
			if err != nil {
				return err
			}

			var victims []string
			if cascade {
				// Deepest first, the task itself last.
				desc, err := app.Rels.Descendants(ctx, task.ID)
				if err != nil {
					return err
				}
				for i := len(desc) - 1; i >= 0; i-- {
					victims = append(victims, desc[i])
				}
			} else {
				orphaned, err := app.Rels.OrphanChildren(ctx, task.ID)
				if err != nil {
					return err
				}
				if orphaned > 0 {
					fmt.Printf("orphaned %d child task(s)\n", orphaned)
				}
			}
			victims = append(victims, task.ID)

			for _, id := range victims {
				if err := app.Rels.RemoveAllEdges(ctx, id); err != nil {
					return err
				}
				if err := app.Tasks.Delete(ctx, id); err != nil {
					return err
				}
			}

			if cascade && len(victims) > 1 {
				fmt.Printf("%s deleted %s and %d descendant(s)\n", color.GreenString("✓"), task.ID, len(victims)-1)
			} else {
				fmt.Printf("%s deleted %s\n", color.GreenString("✓"), task.ID)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&cascade, "cascade", false, "also delete every descendant")
	return cmd
}
