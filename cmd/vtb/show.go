package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spineworks/vertebrae/internal/types"
	"github.com/spineworks/vertebrae/internal/ui"
)

func newShowCmd(app *App) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one task in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			task, err := app.Tasks.MustGet(ctx, args[0])
			if err != nil {
				return err
			}

			parent, hasParent, err := app.Rels.Parent(ctx, task.ID)
			if err != nil {
				return err
			}
			children, err := app.Rels.Children(ctx, task.ID)
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

			if jsonOutput {
				out := struct {
					types.Task
					Parent     string   `json:"parent,omitempty"`
					Children   []string `json:"children,omitempty"`
					Blockers   []string `json:"blockers,omitempty"`
					Dependents []string `json:"dependents,omitempty"`
				}{Task: *task, Parent: parent, Children: children, Blockers: blockers, Dependents: dependents}
				return printJSON(out)
			}

			fmt.Printf("%s %s\n", ui.HeaderStyle.Render(task.ID), task.Title)
			fmt.Printf("  level: %s   status: %s   priority: %s\n",
				task.Level, ui.RenderStatus(task.Status), ui.RenderPriority(task.Priority))
			if task.NeedsHumanReview {
				fmt.Printf("  %s needs human review\n", ui.WarnStyle.Render(ui.IconWarn))
			}
			if len(task.Tags) > 0 {
				fmt.Printf("  tags: %s\n", strings.Join(task.Tags, ", "))
			}
			fmt.Printf("  created: %s   updated: %s\n",
				task.CreatedAt.Format("2006-01-02 15:04"), task.UpdatedAt.Format("2006-01-02 15:04"))
			if task.StartedAt != nil {
				fmt.Printf("  started: %s\n", task.StartedAt.Format("2006-01-02 15:04"))
			}
			if task.CompletedAt != nil {
				fmt.Printf("  completed: %s\n", task.CompletedAt.Format("2006-01-02 15:04"))
			}

			if hasParent {
				fmt.Printf("  parent: %s\n", parent)
			}
			if len(children) > 0 {
				fmt.Printf("  children: %s\n", strings.Join(children, ", "))
			}
			if len(blockers) > 0 {
				fmt.Printf("  blocked by: %s\n", strings.Join(blockers, ", "))
			}
			if len(dependents) > 0 {
				fmt.Printf("  blocks: %s\n", strings.Join(dependents, ", "))
			}

			if len(task.Sections) > 0 {
				fmt.Println()
				for i, s := range task.Sections {
					header := string(s.Type)
					if s.Done != nil {
						if *s.Done {
							header += " " + ui.PassStyle.Render(ui.IconPass)
						} else {
							header += " " + ui.MutedStyle.Render("…")
						}
					}
					fmt.Printf("  [%d] %s\n", i, ui.AccentStyle.Render(header))
					fmt.Println(ui.Indent(s.Content, 2))
				}
			}
			if len(task.Refs) > 0 {
				fmt.Println()
				fmt.Println("  " + ui.HeaderStyle.Render("code refs"))
				for i, r := range task.Refs {
					loc := r.Path
					if r.LineStart != nil {
						loc = fmt.Sprintf("%s:%d", loc, *r.LineStart)
						if r.LineEnd != nil {
							loc = fmt.Sprintf("%s-%d", loc, *r.LineEnd)
						}
					}
					line := loc
					if r.Name != "" {
						line += " (" + r.Name + ")"
					}
					if r.Description != "" {
						line += ": " + r.Description
					}
					fmt.Printf("  [%d] %s\n", i, line)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}
