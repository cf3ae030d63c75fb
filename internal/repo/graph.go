package repo

import (
	"context"

	"github.com/spineworks/vertebrae/internal/types"
)

// Descendants returns every task below the given one in the hierarchy,
// breadth-first, nearest first. The task itself is excluded.
func (r *RelationshipRepository) Descendants(ctx context.Context, id string) ([]string, error) {
	id = types.NormalizeID(id)
	var out []string
	queue := []string{id}
	seen := map[string]bool{id: true}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		children, err := r.store.Children(ctx, cur)
		if err != nil {
			return nil, err
		}
		for _, c := range children {
			if seen[c] {
				continue
			}
			seen[c] = true
			out = append(out, c)
			queue = append(queue, c)
		}
	}
	return out, nil
}

// AncestorChain walks parent edges from the task to its root, nearest
// first. The task itself is excluded.
func (r *RelationshipRepository) AncestorChain(ctx context.Context, id string) ([]string, error) {
	cur := types.NormalizeID(id)
	var out []string
	seen := map[string]bool{cur: true}

	for {
		parent, ok, err := r.store.Parent(ctx, cur)
		if err != nil {
			return nil, err
		}
		if !ok || seen[parent] {
			return out, nil
		}
		seen[parent] = true
		out = append(out, parent)
		cur = parent
	}
}

// IncompleteDescendants returns the descendants whose status still counts
// as pending work. Used to hold a parent out of done while children are
// unfinished.
func (r *RelationshipRepository) IncompleteDescendants(ctx context.Context, id string, tasks *TaskRepository) ([]string, error) {
	desc, err := r.Descendants(ctx, id)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, d := range desc {
		task, ok, err := tasks.Get(ctx, d)
		if err != nil {
			return nil, err
		}
		if ok && !task.Status.IsComplete() {
			out = append(out, d)
		}
	}
	return out, nil
}

// IncompleteBlockers returns the task's direct blockers that are not yet
// complete.
func (r *RelationshipRepository) IncompleteBlockers(ctx context.Context, id string, tasks *TaskRepository) ([]string, error) {
	blockers, err := r.Blockers(ctx, id)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, b := range blockers {
		task, ok, err := tasks.Get(ctx, b)
		if err != nil {
			return nil, err
		}
		if ok && !task.Status.IsComplete() {
			out = append(out, b)
		}
	}
	return out, nil
}

// NewlyUnblocked returns the dependents of id that, assuming id just
// completed, no longer have any incomplete blocker.
func (r *RelationshipRepository) NewlyUnblocked(ctx context.Context, id string, tasks *TaskRepository) ([]string, error) {
	id = types.NormalizeID(id)
	dependents, err := r.Dependents(ctx, id)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, d := range dependents {
		incomplete, err := r.IncompleteBlockers(ctx, d, tasks)
		if err != nil {
			return nil, err
		}
		blocked := false
		for _, b := range incomplete {
			if b != id {
				blocked = true
				break
			}
		}
		if !blocked {
			out = append(out, d)
		}
	}
	return out, nil
}

// FindPath returns a dependency path from one task to another following
// depends_on edges, endpoints included, or nil when none exists.
func (r *RelationshipRepository) FindPath(ctx context.Context, from, to string) ([]string, error) {
	from = types.NormalizeID(from)
	to = types.NormalizeID(to)

	if from == to {
		return []string{from}, nil
	}

	parent := map[string]string{}
	queue := []string{from}
	visited := map[string]bool{from: true}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		next, err := r.store.Blockers(ctx, cur)
		if err != nil {
			return nil, err
		}
		for _, n := range next {
			if visited[n] {
				continue
			}
			visited[n] = true
			parent[n] = cur
			if n == to {
				path := []string{to}
				for at := cur; ; at = parent[at] {
					path = append(path, at)
					if at == from {
						break
					}
				}
				reverse(path)
				return path, nil
			}
			queue = append(queue, n)
		}
	}
	return nil, nil
}

// BlockerNode is one task in a blocker tree, with the tasks blocking it
// nested beneath.
type BlockerNode struct {
	ID       string
	Status   types.Status
	Title    string
	Blockers []BlockerNode
}

// BlockerTree expands the task's blockers recursively up to maxDepth
// levels. Tasks already on the walk are not re-expanded, so shared
// blockers appear once per branch without looping.
func (r *RelationshipRepository) BlockerTree(ctx context.Context, id string, maxDepth int, tasks *TaskRepository) (*BlockerNode, error) {
	id = types.NormalizeID(id)
	task, err := tasks.MustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	root := &BlockerNode{ID: id, Status: task.Status, Title: task.Title}
	if err := r.fillBlockers(ctx, root, maxDepth, map[string]bool{id: true}, tasks); err != nil {
		return nil, err
	}
	return root, nil
}

func (r *RelationshipRepository) fillBlockers(ctx context.Context, node *BlockerNode, depth int, onPath map[string]bool, tasks *TaskRepository) error {
	if depth <= 0 {
		return nil
	}
	blockers, err := r.Blockers(ctx, node.ID)
	if err != nil {
		return err
	}
	for _, b := range blockers {
		if onPath[b] {
			continue
		}
		task, ok, err := tasks.Get(ctx, b)
		if err != nil {
			return err
		}
		child := BlockerNode{ID: b}
		if ok {
			child.Status = task.Status
			child.Title = task.Title
			onPath[b] = true
			if err := r.fillBlockers(ctx, &child, depth-1, onPath, tasks); err != nil {
				return err
			}
			delete(onPath, b)
		}
		node.Blockers = append(node.Blockers, child)
	}
	return nil
}
