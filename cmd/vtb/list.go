package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spineworks/vertebrae/internal/repo"
	"github.com/spineworks/vertebrae/internal/types"
	"github.com/spineworks/vertebrae/internal/ui"
)

func newListCmd(app *App) *cobra.Command {
	var (
		status     string
		level      string
		priority   string
		tag        string
		review     bool
		rootOnly   bool
		childrenOf string
		all        bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks (done and rejected hidden unless --all)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := repo.Filter{
				IncludeComplete: all,
				Tag:             tag,
				RootOnly:        rootOnly,
				ChildrenOf:      childrenOf,
			}
			if status != "" {
				s := types.Status(status)
				if !s.IsValid() {
					return fmt.Errorf("invalid status %q", status)
				}
				filter.Status = &s
			}
			if level != "" {
				l := types.Level(level)
				if !l.IsValid() {
					return fmt.Errorf("invalid level %q", level)
				}
				filter.Level = &l
			}
			if priority != "" {
				p := types.Priority(priority)
				if !p.IsValid() {
					return fmt.Errorf("invalid priority %q", priority)
				}
				filter.Priority = &p
			}
			if cmd.Flags().Changed("review") {
				filter.NeedsReview = &review
			}

			tasks, err := app.Tasks.List(cmd.Context(), filter)
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(tasks)
			}
			if len(tasks) == 0 {
				fmt.Println("no tasks match")
				return nil
			}
			printTaskTable(tasks)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().StringVar(&level, "level", "", "filter by level")
	cmd.Flags().StringVar(&priority, "priority", "", "filter by priority")
	cmd.Flags().StringVar(&tag, "tag", "", "filter by tag")
	cmd.Flags().BoolVar(&review, "review", false, "filter by review flag")
	cmd.Flags().BoolVar(&rootOnly, "root", false, "only tasks with no parent")
	cmd.Flags().StringVar(&childrenOf, "children-of", "", "only direct children of the given task")
	cmd.Flags().BoolVar(&all, "all", false, "include done and rejected tasks")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func printTaskTable(tasks []types.Task) {
	width := ui.TermWidth()
	titleMax := width - 46
	if titleMax < 16 {
		titleMax = 16
	}
	for _, t := range tasks {
		marker := " "
		if t.NeedsHumanReview {
			marker = ui.WarnStyle.Render("R")
		}
		fmt.Printf("%-14s %-22s %-10s %s %s\n",
			t.ID,
			ui.RenderStatus(t.Status),
			ui.RenderPriority(t.Priority),
			marker,
			ui.Truncate(t.Title, titleMax))
	}
}
