package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/spineworks/vertebrae/internal/types"
	"github.com/spineworks/vertebrae/internal/ui"
)

func newStartCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "start <id>",
		Short: "Begin work: move a task to in_progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			task, err := app.Tasks.MustGet(ctx, args[0])
			if err != nil {
				return err
			}
			if task.Status == types.StatusInProgress {
				fmt.Printf("%s is already in_progress\n", task.ID)
				return nil
			}

			incomplete, err := app.Rels.IncompleteBlockers(ctx, task.ID, app.Tasks)
			if err != nil {
				return err
			}
			if len(incomplete) > 0 {
				warnf("%s is blocked by: %s", task.ID, strings.Join(incomplete, ", "))
			}

			updated, _, err := app.Tasks.Transition(ctx, task.ID, types.StatusInProgress)
			if err != nil {
				return err
			}
			fmt.Printf("%s started %s\n", color.GreenString("✓"), updated.ID)
			return nil
		},
	}
}

func newSubmitCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "submit <id>",
		Short: "Submit work for review: move a task to pending_review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			task, err := app.Tasks.MustGet(ctx, args[0])
			if err != nil {
				return err
			}
			if task.Status == types.StatusPendingReview {
				fmt.Printf("%s is already pending_review\n", task.ID)
				return nil
			}
			updated, _, err := app.Tasks.Transition(ctx, task.ID, types.StatusPendingReview)
			if err != nil {
				return err
			}
			fmt.Printf("%s %s is now %s\n", color.GreenString("✓"), updated.ID, ui.RenderStatus(updated.Status))
			return nil
		},
	}
}

func newDoneCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Complete a reviewed task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			task, err := app.Tasks.MustGet(ctx, args[0])
			if err != nil {
				return err
			}
			if task.Status == types.StatusDone {
				fmt.Printf("%s is already done\n", task.ID)
				return nil
			}

			// A parent cannot complete over unfinished children.
			incomplete, err := app.Rels.IncompleteDescendants(ctx, task.ID, app.Tasks)
			if err != nil {
				return err
			}
			if len(incomplete) > 0 {
				return fmt.Errorf("%s has incomplete descendants: %s", task.ID, strings.Join(incomplete, ", "))
			}

			unblocked, err := app.Rels.NewlyUnblocked(ctx, task.ID, app.Tasks)
			if err != nil {
				return err
			}

			updated, _, err := app.Tasks.Transition(ctx, task.ID, types.StatusDone)
			if err != nil {
				return err
			}
			fmt.Printf("%s completed %s\n", color.GreenString("✓"), updated.ID)
			for _, id := range unblocked {
				fmt.Printf("  unblocked: %s\n", id)
			}
			return nil
		},
	}
}

func newRejectCmd(app *App) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "reject <id>",
		Short: "Reject a todo task: it will not be worked",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			task, err := app.Tasks.MustGet(ctx, args[0])
			if err != nil {
				return err
			}
			if task.Status == types.StatusRejected {
				fmt.Printf("%s is already rejected\n", task.ID)
				return nil
			}

			if reason != "" {
				if _, err := app.Tasks.Update(ctx, task.ID, taskNoteUpdate(reason)); err != nil {
					return err
				}
			}
			updated, _, err := app.Tasks.Transition(ctx, task.ID, types.StatusRejected)
			if err != nil {
				return err
			}
			fmt.Printf("%s rejected %s\n", color.GreenString("✓"), updated.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "why the task is rejected, stored as a context section")
	return cmd
}

func newTransitionToCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "transition-to <id> <status>",
		Short: "Move a task to an explicit lifecycle status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := types.Status(args[1])
			if !target.IsValid() {
				return fmt.Errorf("invalid status %q (valid: %s)", args[1], statusNames())
			}
			updated, changed, err := app.Tasks.Transition(cmd.Context(), args[0], target)
			if err != nil {
				return err
			}
			if !changed {
				fmt.Printf("%s is already %s\n", updated.ID, updated.Status)
				return nil
			}
			fmt.Printf("%s %s is now %s\n", color.GreenString("✓"), updated.ID, ui.RenderStatus(updated.Status))
			return nil
		},
	}
}

func statusNames() string {
	all := types.AllStatuses()
	names := make([]string, len(all))
	for i, s := range all {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
