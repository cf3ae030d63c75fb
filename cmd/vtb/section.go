package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/spineworks/vertebrae/internal/repo"
	"github.com/spineworks/vertebrae/internal/types"
)

func newSectionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "section",
		Short: "Manage a task's content sections",
	}

	add := &cobra.Command{
		Use:   "add <id> <type> <content>",
		Short: "Add a section; single-instance types replace the existing one",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := types.SectionType(args[1])
			task, replaced, err := app.Tasks.SetSection(cmd.Context(), args[0], st, args[2])
			if err != nil {
				return err
			}
			verb := "added"
			if replaced {
				verb = "replaced"
			}
			fmt.Printf("%s %s %s section on %s\n", color.GreenString("✓"), verb, st, task.ID)
			return nil
		},
	}

	rm := &cobra.Command{
		Use:   "rm <id> <index>",
		Short: "Remove a section by its position in vtb show",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("index must be a number, got %q", args[1])
			}
			task, err := app.Tasks.Update(cmd.Context(), args[0], repo.TaskUpdate{RemoveSection: &idx})
			if err != nil {
				return err
			}
			fmt.Printf("%s removed section %d from %s\n", color.GreenString("✓"), idx, task.ID)
			return nil
		},
	}

	cmd.AddCommand(add, rm)
	return cmd
}

func newStepDoneCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "step-done <id> <n>",
		Short: "Mark the nth step complete (steps count from 1)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("step number must be a number, got %q", args[1])
			}
			task, content, err := app.Tasks.CompleteStep(cmd.Context(), args[0], n)
			if err != nil {
				return err
			}
			fmt.Printf("%s %s step %d done: %s\n", color.GreenString("✓"), task.ID, n, content)
			return nil
		},
	}
}

func newCriterionRefCmd(app *App) *cobra.Command {
	var (
		name        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "criterion-ref <id> <n> <file[:start[-end]]>",
		Short: "Anchor the nth testing criterion to a code location",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("criterion number must be a number, got %q", args[1])
			}
			ref, err := parseFileSpec(args[2])
			if err != nil {
				return err
			}
			ref.Name = name
			ref.Description = description

			task, content, err := app.Tasks.AttachCriterionRef(cmd.Context(), args[0], n, ref)
			if err != nil {
				return err
			}
			fmt.Printf("%s %s criterion %d (%s) -> %s\n", color.GreenString("✓"),
				task.ID, n, content, args[2])
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "symbol name at the location")
	cmd.Flags().StringVar(&description, "description", "", "what the location demonstrates")
	return cmd
}

// parseFileSpec reads path, path:12, or path:12-40 into a CodeRef.
func parseFileSpec(spec string) (types.CodeRef, error) {
	path, lines, found := strings.Cut(spec, ":")
	if path == "" {
		return types.CodeRef{}, fmt.Errorf("file spec needs a path, got %q", spec)
	}
	ref := types.CodeRef{Path: path}
	if !found {
		return ref, nil
	}

	startStr, endStr, ranged := strings.Cut(lines, "-")
	start, err := strconv.Atoi(startStr)
	if err != nil || start < 1 {
		return types.CodeRef{}, fmt.Errorf("bad line number in %q", spec)
	}
	ref.LineStart = &start
	if ranged {
		end, err := strconv.Atoi(endStr)
		if err != nil || end < start {
			return types.CodeRef{}, fmt.Errorf("bad line range in %q", spec)
		}
		ref.LineEnd = &end
	}
	return ref, nil
}
