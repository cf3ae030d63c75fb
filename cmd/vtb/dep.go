package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/spineworks/vertebrae/internal/repo"
	"github.com/spineworks/vertebrae/internal/ui"
)

func newDepCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dep",
		Short: "Manage dependency edges",
	}

	add := &cobra.Command{
		Use:   "add <task> <blocker>",
		Short: "Record that a task is blocked by another",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Rels.CreateDependsOn(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("%s %s now depends on %s\n", color.GreenString("✓"),
				normalized(args[0]), normalized(args[1]))
			return nil
		},
	}

	rm := &cobra.Command{
		Use:   "rm <task> <blocker>",
		Short: "Remove a dependency edge",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := app.Rels.RemoveDependsOn(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if !removed {
				fmt.Printf("no such dependency: %s -> %s\n", normalized(args[0]), normalized(args[1]))
				return nil
			}
			fmt.Printf("%s removed dependency %s -> %s\n", color.GreenString("✓"),
				normalized(args[0]), normalized(args[1]))
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list <id>",
		Short: "Show a task's blockers and dependents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			task, err := app.Tasks.MustGet(ctx, args[0])
			if err != nil {
				return err
			}
			blockers, err := app.Rels.Blockers(ctx, task.ID)
			if err != nil {
				return err
			}
			dependents, err := app.Rels.Dependents(ctx, task.ID)
			if err != nil {
				return err
			}
			if len(blockers) == 0 && len(dependents) == 0 {
				fmt.Printf("%s has no dependencies\n", task.ID)
				return nil
			}
			if len(blockers) > 0 {
				fmt.Printf("blocked by: %s\n", strings.Join(blockers, ", "))
			}
			if len(dependents) > 0 {
				fmt.Printf("blocks: %s\n", strings.Join(dependents, ", "))
			}
			return nil
		},
	}

	cmd.AddCommand(add, rm, list)
	return cmd
}

func newBlockersCmd(app *App) *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:   "blockers <id>",
		Short: "Show the blocker tree for a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := app.Rels.BlockerTree(cmd.Context(), args[0], depth, app.Tasks)
			if err != nil {
				return err
			}
			printBlockerNode(tree, "", true, true)
			return nil
		},
	}

	cmd.Flags().IntVar(&depth, "depth", 5, "maximum tree depth")
	return cmd
}

func printBlockerNode(node *repo.BlockerNode, prefix string, isLast, isRoot bool) {
	label := fmt.Sprintf("%s %s %s", node.ID, ui.RenderStatus(node.Status), ui.MutedStyle.Render(node.Title))
	if isRoot {
		fmt.Println(label)
	} else {
		branch := ui.TreeBranch
		if isLast {
			branch = ui.TreeLast
		}
		fmt.Println(prefix + branch + label)
	}

	childPrefix := prefix
	if !isRoot {
		if isLast {
			childPrefix += ui.TreeIndent
		} else {
			childPrefix += ui.TreePipe
		}
	}
	for i := range node.Blockers {
		printBlockerNode(&node.Blockers[i], childPrefix, i == len(node.Blockers)-1, false)
	}
}

func newPathCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "path <from> <to>",
		Short: "Show a dependency path between two tasks",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := app.Rels.FindPath(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if path == nil {
				fmt.Printf("no dependency path from %s to %s\n", normalized(args[0]), normalized(args[1]))
				return nil
			}
			fmt.Println(strings.Join(path, " -> "))
			return nil
		},
	}
}
