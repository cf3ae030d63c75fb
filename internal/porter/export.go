package porter

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/spineworks/vertebrae/internal/repo"
	"github.com/spineworks/vertebrae/internal/storage"
	"github.com/spineworks/vertebrae/internal/types"
)

// Exporter streams the full graph as JSONL.
type Exporter struct {
	tasks *repo.TaskRepository
	rels  *repo.RelationshipRepository
}

// NewExporter creates an exporter over the given repositories.
func NewExporter(tasks *repo.TaskRepository, rels *repo.RelationshipRepository) *Exporter {
	return &Exporter{tasks: tasks, rels: rels}
}

// ExportStats counts what one export wrote.
type ExportStats struct {
	Tasks     int `json:"tasks"`
	ChildOf   int `json:"child_of"`
	DependsOn int `json:"depends_on"`
}

// Export writes every task, then every child_of edge, then every
// depends_on edge, one record per line. The three snapshots are collected
// concurrently; writing is sequential to keep the ordering guarantee.
func (e *Exporter) Export(ctx context.Context, w io.Writer) (*ExportStats, error) {
	var (
		tasks     []types.Task
		childOf   []types.ChildOf
		dependsOn []types.DependsOn
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		tasks, err = e.tasks.ExportAll(gctx)
		return err
	})
	g.Go(func() (err error) {
		childOf, err = e.rels.ExportAllChildOf(gctx)
		return err
	})
	g.Go(func() (err error) {
		dependsOn, err = e.rels.ExportAllDependsOn(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	bw := bufio.NewWriter(w)
	for i := range tasks {
		line, err := MarshalTask(&tasks[i])
		if err != nil {
			return nil, fmt.Errorf("failed to marshal task %s: %w", tasks[i].ID, err)
		}
		if err := writeLine(bw, line); err != nil {
			return nil, err
		}
	}
	for _, edge := range childOf {
		line, err := MarshalChildOf(edge)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal child_of edge: %w", err)
		}
		if err := writeLine(bw, line); err != nil {
			return nil, err
		}
	}
	for _, edge := range dependsOn {
		line, err := MarshalDependsOn(edge)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal depends_on edge: %w", err)
		}
		if err := writeLine(bw, line); err != nil {
			return nil, err
		}
	}
	if err := bw.Flush(); err != nil {
		return nil, err
	}

	return &ExportStats{
		Tasks:     len(tasks),
		ChildOf:   len(childOf),
		DependsOn: len(dependsOn),
	}, nil
}

// ExportFile exports to the named file, created or truncated. I/O failures
// surface as InvalidPathError.
func (e *Exporter) ExportFile(ctx context.Context, path string) (*ExportStats, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, &storage.InvalidPathError{Path: path, Reason: err.Error()}
	}
	stats, err := e.Export(ctx, f)
	if cerr := f.Close(); err == nil && cerr != nil {
		return nil, &storage.InvalidPathError{Path: path, Reason: cerr.Error()}
	}
	return stats, err
}

func writeLine(w *bufio.Writer, line []byte) error {
	if _, err := w.Write(line); err != nil {
		return err
	}
	return w.WriteByte('\n')
}
