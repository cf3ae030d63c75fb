package repo

import (
	"context"

	"github.com/spineworks/vertebrae/internal/storage"
	"github.com/spineworks/vertebrae/internal/types"
)

// RelationshipRepository manages the two edge kinds: child_of (hierarchy
// forest, one parent per task) and depends_on (acyclic dependency graph).
// Every edge creation re-checks both endpoints and runs a cycle check, even
// on paths that look safe.
type RelationshipRepository struct {
	store storage.Store
}

// NewRelationshipRepository creates a relationship repository over the
// given store.
func NewRelationshipRepository(store storage.Store) *RelationshipRepository {
	return &RelationshipRepository{store: store}
}

// CreateChildOf makes child belong to parent. Both ends must exist; a task
// keeps at most one parent, and a second assignment fails until the first
// edge is cleared explicitly. Self-parenting and hierarchy loops are
// rejected with CycleError.
func (r *RelationshipRepository) CreateChildOf(ctx context.Context, child, parent string) error {
	child = types.NormalizeID(child)
	parent = types.NormalizeID(parent)

	if err := r.requireTasks(ctx, child, parent); err != nil {
		return err
	}
	if child == parent {
		return &storage.CycleError{Path: []string{child, child}}
	}

	// Walk up from the proposed parent; finding child there closes a loop.
	path := []string{child, parent}
	cur := parent
	for {
		anc, ok, err := r.store.Parent(ctx, cur)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		path = append(path, anc)
		if anc == child {
			return &storage.CycleError{Path: path}
		}
		cur = anc
	}

	return r.store.CreateChildOf(ctx, child, parent)
}

// RemoveChildOf clears child's parent edge. The bool reports whether one
// existed.
func (r *RelationshipRepository) RemoveChildOf(ctx context.Context, child string) (bool, error) {
	return r.store.DeleteChildOf(ctx, types.NormalizeID(child))
}

// OrphanChildren clears the parent edge of every direct child of parent,
// returning how many were orphaned.
func (r *RelationshipRepository) OrphanChildren(ctx context.Context, parent string) (int, error) {
	parent = types.NormalizeID(parent)
	children, err := r.store.Children(ctx, parent)
	if err != nil {
		return 0, err
	}
	for _, child := range children {
		if _, err := r.store.DeleteChildOf(ctx, child); err != nil {
			return 0, err
		}
	}
	return len(children), nil
}

// Parent returns the task's parent id, if any.
func (r *RelationshipRepository) Parent(ctx context.Context, child string) (string, bool, error) {
	return r.store.Parent(ctx, types.NormalizeID(child))
}

// Children returns the direct children of parent, ordered by id.
func (r *RelationshipRepository) Children(ctx context.Context, parent string) ([]string, error) {
	return r.store.Children(ctx, types.NormalizeID(parent))
}

// CreateDependsOn records that task is blocked by blocker. Both ends must
// exist; self-dependency and any edge that would close a dependency loop
// are rejected with CycleError. Recreating an existing edge succeeds
// without effect.
func (r *RelationshipRepository) CreateDependsOn(ctx context.Context, task, blocker string) error {
	task = types.NormalizeID(task)
	blocker = types.NormalizeID(blocker)

	if err := r.requireTasks(ctx, task, blocker); err != nil {
		return err
	}
	if task == blocker {
		return &storage.CycleError{Path: []string{task, task}}
	}

	cyclePath, err := r.dependencyCyclePath(ctx, task, blocker)
	if err != nil {
		return err
	}
	if cyclePath != nil {
		return &storage.CycleError{Path: cyclePath}
	}

	return r.store.CreateDependsOn(ctx, task, blocker)
}

// RemoveDependsOn removes the edge if present; the bool reports whether
// one existed.
func (r *RelationshipRepository) RemoveDependsOn(ctx context.Context, task, blocker string) (bool, error) {
	return r.store.DeleteDependsOn(ctx, types.NormalizeID(task), types.NormalizeID(blocker))
}

// DependsOnExists reports whether the exact edge is recorded.
func (r *RelationshipRepository) DependsOnExists(ctx context.Context, task, blocker string) (bool, error) {
	return r.store.DependsOnExists(ctx, types.NormalizeID(task), types.NormalizeID(blocker))
}

// Blockers returns the ids the given task directly depends on.
func (r *RelationshipRepository) Blockers(ctx context.Context, task string) ([]string, error) {
	return r.store.Blockers(ctx, types.NormalizeID(task))
}

// Dependents returns the ids that directly depend on the given task.
func (r *RelationshipRepository) Dependents(ctx context.Context, task string) ([]string, error) {
	return r.store.Dependents(ctx, types.NormalizeID(task))
}

// RemoveAllEdges removes every edge naming the task on either end, both
// kinds. Called when a task record is deleted.
func (r *RelationshipRepository) RemoveAllEdges(ctx context.Context, id string) error {
	return r.store.DeleteEdgesFor(ctx, types.NormalizeID(id))
}

// ExportAllChildOf returns every hierarchy edge ordered by child id.
func (r *RelationshipRepository) ExportAllChildOf(ctx context.Context) ([]types.ChildOf, error) {
	return r.store.ListChildOf(ctx)
}

// ExportAllDependsOn returns every dependency edge ordered by (task,
// blocker).
func (r *RelationshipRepository) ExportAllDependsOn(ctx context.Context) ([]types.DependsOn, error) {
	return r.store.ListDependsOn(ctx)
}

// dependencyCyclePath checks whether blocker already depends, transitively,
// on task. BFS from blocker through its blockers; reaching task means the
// new edge would close a loop. Returns the loop path task -> blocker ->
// ... -> task, or nil.
func (r *RelationshipRepository) dependencyCyclePath(ctx context.Context, task, blocker string) ([]string, error) {
	parent := map[string]string{blocker: task}
	queue := []string{blocker}
	visited := map[string]bool{blocker: true}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		next, err := r.store.Blockers(ctx, cur)
		if err != nil {
			return nil, err
		}
		for _, n := range next {
			if n == task {
				path := []string{task}
				for at := cur; ; at = parent[at] {
					path = append(path, at)
					if at == blocker {
						break
					}
				}
				// path is task, cur, ..., blocker walking parents; reverse
				// the middle so it reads task -> blocker -> ... -> task.
				reverse(path[1:])
				return append(path, task), nil
			}
			if !visited[n] {
				visited[n] = true
				parent[n] = cur
				queue = append(queue, n)
			}
		}
	}
	return nil, nil
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func (r *RelationshipRepository) requireTasks(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		exists, err := r.store.TaskExists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return &storage.NotFoundError{TaskID: id}
		}
	}
	return nil
}
