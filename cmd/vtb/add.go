package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/spineworks/vertebrae/internal/idgen"
	"github.com/spineworks/vertebrae/internal/types"
)

// idCollisionRetries bounds the nonce bumps when a generated id is taken.
const idCollisionRetries = 10

func newAddCmd(app *App) *cobra.Command {
	var (
		id          string
		level       string
		priority    string
		tags        []string
		parent      string
		dependsOn   []string
		backlog     bool
		goal        string
		contextBody string
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			title := args[0]

			task := &types.Task{
				Title:  title,
				Level:  types.LevelTask,
				Status: types.StatusTodo,
			}
			if backlog {
				task.Status = types.StatusBacklog
			}
			if level != "" {
				task.Level = types.Level(level)
			}
			if priority != "" {
				p := types.Priority(priority)
				task.Priority = &p
			}
			task.Tags = tags
			if goal != "" {
				task.Sections = append(task.Sections, types.Section{Type: types.SectionGoal, Content: goal})
			}
			if contextBody != "" {
				task.Sections = append(task.Sections, types.Section{Type: types.SectionContext, Content: contextBody})
			}

			// Both ends of every requested edge must exist before the task
			// is created, so a bad flag leaves nothing behind.
			if parent != "" {
				if err := requireTask(cmd, app, parent); err != nil {
					return err
				}
			}
			for _, dep := range dependsOn {
				if err := requireTask(cmd, app, dep); err != nil {
					return err
				}
			}

			if id != "" {
				if err := app.Tasks.Create(ctx, id, task); err != nil {
					return err
				}
			} else {
				created := false
				now := time.Now()
				for nonce := 0; nonce < idCollisionRetries; nonce++ {
					candidate := idgen.GenerateID(app.Config.IDPrefix, title, now, nonce)
					err := app.Tasks.Create(ctx, candidate, task)
					if err == nil {
						created = true
						break
					}
					if !isAlreadyExists(err) {
						return err
					}
				}
				if !created {
					return fmt.Errorf("could not find a free id after %d attempts", idCollisionRetries)
				}
			}

			if parent != "" {
				if err := app.Rels.CreateChildOf(ctx, task.ID, parent); err != nil {
					return err
				}
			}
			for _, dep := range dependsOn {
				if err := app.Rels.CreateDependsOn(ctx, task.ID, dep); err != nil {
					return err
				}
			}

			fmt.Printf("%s created %s: %s\n", color.GreenString("✓"), task.ID, task.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "explicit task id (default: generated)")
	cmd.Flags().StringVar(&level, "level", "", "task level: epic, ticket or task")
	cmd.Flags().StringVar(&priority, "priority", "", "priority: low, medium, high or critical")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "tag (repeatable)")
	cmd.Flags().StringVar(&parent, "parent", "", "parent task id")
	cmd.Flags().StringArrayVar(&dependsOn, "depends-on", nil, "blocker task id (repeatable)")
	cmd.Flags().BoolVar(&backlog, "backlog", false, "create in backlog instead of todo")
	cmd.Flags().StringVar(&goal, "goal", "", "goal section content")
	cmd.Flags().StringVar(&contextBody, "context", "", "context section content")
	return cmd
}

func requireTask(cmd *cobra.Command, app *App, id string) error {
	exists, err := app.Tasks.Exists(cmd.Context(), id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("task not found: %s", types.NormalizeID(id))
	}
	return nil
}
