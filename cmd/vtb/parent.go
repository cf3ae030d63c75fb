package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newParentCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parent",
		Short: "Manage hierarchy edges",
	}

	set := &cobra.Command{
		Use:   "set <child> <parent>",
		Short: "Place a task under a parent (one parent per task)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Rels.CreateChildOf(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("%s %s is now a child of %s\n", color.GreenString("✓"),
				normalized(args[0]), normalized(args[1]))
			return nil
		},
	}

	clear := &cobra.Command{
		Use:   "clear <child>",
		Short: "Detach a task from its parent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := app.Rels.RemoveChildOf(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !removed {
				fmt.Printf("%s has no parent\n", normalized(args[0]))
				return nil
			}
			fmt.Printf("%s cleared parent of %s\n", color.GreenString("✓"), normalized(args[0]))
			return nil
		},
	}

	children := &cobra.Command{
		Use:   "children <id>",
		Short: "List a task's direct children",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			task, err := app.Tasks.MustGet(ctx, args[0])
			if err != nil {
				return err
			}
			kids, err := app.Rels.Children(ctx, task.ID)
			if err != nil {
				return err
			}
			if len(kids) == 0 {
				fmt.Printf("%s has no children\n", task.ID)
				return nil
			}
			fmt.Println(strings.Join(kids, "\n"))
			return nil
		},
	}

	cmd.AddCommand(set, clear, children)
	return cmd
}
