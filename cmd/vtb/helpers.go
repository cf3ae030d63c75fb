package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/spineworks/vertebrae/internal/repo"
	"github.com/spineworks/vertebrae/internal/storage"
	"github.com/spineworks/vertebrae/internal/types"
)

// normalized echoes an id the way the graph stored it.
func normalized(id string) string {
	return types.NormalizeID(id)
}

// taskNoteUpdate records free-form operator text as a context section.
func taskNoteUpdate(note string) repo.TaskUpdate {
	return repo.TaskUpdate{
		AddSections: []types.Section{{Type: types.SectionContext, Content: note}},
	}
}

func isAlreadyExists(err error) bool {
	return errors.Is(err, storage.ErrAlreadyExists)
}

// printJSON renders v as indented JSON on stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// warnf writes a yellow-tagged warning line to stderr.
func warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", color.YellowString("⚠"), fmt.Sprintf(format, args...))
}
