package porter

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spineworks/vertebrae/internal/repo"
	"github.com/spineworks/vertebrae/internal/storage"
)

// maxLineSize bounds a single JSONL record; tasks with many sections fit
// comfortably under 4 MiB.
const maxLineSize = 4 << 20

// Importer restores a JSONL dump through the repositories, so every record
// passes the same validation as interactive edits.
type Importer struct {
	tasks *repo.TaskRepository
	rels  *repo.RelationshipRepository
}

// NewImporter creates an importer over the given repositories.
func NewImporter(tasks *repo.TaskRepository, rels *repo.RelationshipRepository) *Importer {
	return &Importer{tasks: tasks, rels: rels}
}

// Options controls import behavior.
type Options struct {
	// SkipExisting leaves live tasks untouched instead of overwriting them.
	SkipExisting bool
}

// Result reports what one import did.
type Result struct {
	TasksCreated  int `json:"tasks_created"`
	TasksReplaced int `json:"tasks_replaced"`
	TasksSkipped  int `json:"tasks_skipped"`
	ChildOfEdges  int `json:"child_of_edges"`
	DependsEdges  int `json:"depends_on_edges"`
}

// Import reads an entire dump, then applies it in two passes: all task
// records first, then all edges. Any malformed line aborts before anything
// is applied. The apply phase is not wrapped in a transaction; a failure
// partway leaves the records applied so far (each one individually valid).
func (im *Importer) Import(ctx context.Context, r io.Reader, path string, opts Options) (*Result, error) {
	records, err := readAll(r, path)
	if err != nil {
		return nil, err
	}

	result := &Result{}

	// Pass 1: tasks. Overwriting is delete-then-create so the new record
	// fully replaces the old one; the task's stale hierarchy edge goes
	// with it, to be re-created from the dump.
	for _, rec := range records {
		if rec.Task == nil {
			continue
		}
		exists, err := im.tasks.Exists(ctx, rec.Task.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			if opts.SkipExisting {
				result.TasksSkipped++
				continue
			}
			if err := im.tasks.Delete(ctx, rec.Task.ID); err != nil {
				return nil, err
			}
			if _, err := im.rels.RemoveChildOf(ctx, rec.Task.ID); err != nil {
				return nil, err
			}
			result.TasksReplaced++
		} else {
			result.TasksCreated++
		}
		task := *rec.Task
		if err := im.tasks.Create(ctx, task.ID, &task); err != nil {
			return nil, err
		}
	}

	// Pass 2: edges, now that every endpoint the dump mentions exists.
	for _, rec := range records {
		switch {
		case rec.ChildOf != nil:
			created, err := im.importChildOf(ctx, rec.ChildOf.Child, rec.ChildOf.Parent)
			if err != nil {
				return nil, err
			}
			if created {
				result.ChildOfEdges++
			}
		case rec.DependsOn != nil:
			created, err := im.importDependsOn(ctx, rec.DependsOn.Task, rec.DependsOn.Blocker)
			if err != nil {
				return nil, err
			}
			if created {
				result.DependsEdges++
			}
		}
	}

	return result, nil
}

// ImportFile imports from the named file. I/O failures surface as
// InvalidPathError.
func (im *Importer) ImportFile(ctx context.Context, path string, opts Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &storage.InvalidPathError{Path: path, Reason: err.Error()}
	}
	defer f.Close()
	return im.Import(ctx, f, path, opts)
}

// importChildOf absorbs a re-imported identical edge; a conflicting parent
// from the dump wins over the stored one.
func (im *Importer) importChildOf(ctx context.Context, child, parent string) (bool, error) {
	current, has, err := im.rels.Parent(ctx, child)
	if err != nil {
		return false, err
	}
	if has {
		if current == parent {
			return false, nil
		}
		if _, err := im.rels.RemoveChildOf(ctx, child); err != nil {
			return false, err
		}
	}
	return true, im.rels.CreateChildOf(ctx, child, parent)
}

// importDependsOn reports whether the edge was actually new, so a
// re-imported edge the store absorbs is not counted as created.
func (im *Importer) importDependsOn(ctx context.Context, task, blocker string) (bool, error) {
	exists, err := im.rels.DependsOnExists(ctx, task, blocker)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	return true, im.rels.CreateDependsOn(ctx, task, blocker)
}

// readAll parses the whole stream up front. Blank lines are skipped;
// any malformed or unknown record aborts with its line number.
func readAll(r io.Reader, path string) ([]Record, error) {
	var records []Record
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		rec, err := ParseRecord(line)
		if err != nil {
			return nil, &storage.InvalidPathError{
				Path:   path,
				Reason: fmt.Sprintf("line %d: %v", lineNo, err),
			}
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, &storage.InvalidPathError{Path: path, Reason: err.Error()}
	}
	return records, nil
}
