// Package storage defines the interface for task storage backends.
package storage

import (
	"context"

	"github.com/spineworks/vertebrae/internal/types"
)

// Store is the record-oriented persistence surface. Implementations own
// timestamps (CreatedAt/UpdatedAt) and durability; they do not own graph
// rules. All identifiers arriving here are already normalized; callers in
// the repository layer normalize and validate before touching the store.
type Store interface {
	// Task records

	// CreateTask persists a new task under id. Returns AlreadyExistsError
	// if a record with that id is live.
	CreateTask(ctx context.Context, id string, task *types.Task) error

	// GetTask fetches the task stored under id. The bool reports presence;
	// absence is not an error.
	GetTask(ctx context.Context, id string) (*types.Task, bool, error)

	// TaskExists reports whether a record is live under id.
	TaskExists(ctx context.Context, id string) (bool, error)

	// UpdateTask replaces the stored record under id and refreshes
	// UpdatedAt. Returns NotFoundError if absent.
	UpdateTask(ctx context.Context, id string, task *types.Task) error

	// DeleteTask removes the record under id. Edges are not touched; the
	// repository layer decides edge cleanup. Returns NotFoundError if
	// absent.
	DeleteTask(ctx context.Context, id string) error

	// ListTasks returns every live (id, task) pair ordered by id.
	ListTasks(ctx context.Context) ([]types.Task, error)

	// Hierarchy edges

	// CreateChildOf records child's single parent. Returns HasParentError
	// if child already has one.
	CreateChildOf(ctx context.Context, child, parent string) error

	// DeleteChildOf removes child's parent edge if present. Removing a
	// missing edge is not an error; the bool reports whether one existed.
	DeleteChildOf(ctx context.Context, child string) (bool, error)

	// Parent returns child's parent id; the bool reports whether an edge
	// exists.
	Parent(ctx context.Context, child string) (string, bool, error)

	// Children returns the ids whose parent is the given task, ordered.
	Children(ctx context.Context, parent string) ([]string, error)

	// ListChildOf returns every hierarchy edge ordered by child id.
	ListChildOf(ctx context.Context) ([]types.ChildOf, error)

	// Dependency edges

	// CreateDependsOn records that task is blocked by blocker. Duplicate
	// edges are absorbed; the edge set has set semantics.
	CreateDependsOn(ctx context.Context, task, blocker string) error

	// DeleteDependsOn removes the edge if present; the bool reports
	// whether one existed.
	DeleteDependsOn(ctx context.Context, task, blocker string) (bool, error)

	// DependsOnExists reports whether the exact edge is recorded.
	DependsOnExists(ctx context.Context, task, blocker string) (bool, error)

	// Blockers returns the ids the given task depends on, ordered.
	Blockers(ctx context.Context, task string) ([]string, error)

	// Dependents returns the ids that depend on the given task, ordered.
	Dependents(ctx context.Context, task string) ([]string, error)

	// ListDependsOn returns every dependency edge ordered by (task,
	// blocker).
	ListDependsOn(ctx context.Context) ([]types.DependsOn, error)

	// DeleteEdgesFor removes every edge that names id on either end, both
	// kinds. Used when a task record is deleted.
	DeleteEdgesFor(ctx context.Context, id string) error

	// Close releases the backing resources.
	Close() error
}
