package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spineworks/vertebrae/internal/storage"
	"github.com/spineworks/vertebrae/internal/types"
)

func TestChildOfRules(t *testing.T) {
	ctx := context.Background()
	tasks, rels := newTestRepos(t)
	mkTask(t, tasks, "epic-1", types.StatusTodo)
	mkTask(t, tasks, "t-1", types.StatusTodo)
	mkTask(t, tasks, "t-2", types.StatusTodo)

	require.NoError(t, rels.CreateChildOf(ctx, "T-1", "EPIC-1"))

	parent, ok, err := rels.Parent(ctx, "t-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "epic-1", parent)

	// Second parent requires an explicit clear first.
	err = rels.CreateChildOf(ctx, "t-1", "t-2")
	assert.ErrorIs(t, err, storage.ErrHasParent)

	removed, err := rels.RemoveChildOf(ctx, "t-1")
	require.NoError(t, err)
	assert.True(t, removed)
	require.NoError(t, rels.CreateChildOf(ctx, "t-1", "t-2"))

	// Both endpoints must exist.
	err = rels.CreateChildOf(ctx, "ghost", "epic-1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	err = rels.CreateChildOf(ctx, "t-2", "ghost")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestChildOfCycles(t *testing.T) {
	ctx := context.Background()
	tasks, rels := newTestRepos(t)
	mkTask(t, tasks, "a", types.StatusTodo)
	mkTask(t, tasks, "b", types.StatusTodo)
	mkTask(t, tasks, "c", types.StatusTodo)

	err := rels.CreateChildOf(ctx, "a", "a")
	var cycle *storage.CycleError
	require.ErrorAs(t, err, &cycle)

	require.NoError(t, rels.CreateChildOf(ctx, "b", "a"))
	require.NoError(t, rels.CreateChildOf(ctx, "c", "b"))

	// a under c would close a loop three levels up.
	err = rels.CreateChildOf(ctx, "a", "c")
	require.ErrorAs(t, err, &cycle)
}

func TestDependsOnRules(t *testing.T) {
	ctx := context.Background()
	tasks, rels := newTestRepos(t)
	mkTask(t, tasks, "a", types.StatusTodo)
	mkTask(t, tasks, "b", types.StatusTodo)

	require.NoError(t, rels.CreateDependsOn(ctx, "B", "A"))

	exists, err := rels.DependsOnExists(ctx, "b", "a")
	require.NoError(t, err)
	assert.True(t, exists)

	// Recreating the edge is a quiet success.
	require.NoError(t, rels.CreateDependsOn(ctx, "b", "a"))

	blockers, err := rels.Blockers(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, blockers)

	err = rels.CreateDependsOn(ctx, "b", "ghost")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	var cycle *storage.CycleError
	err = rels.CreateDependsOn(ctx, "a", "a")
	require.ErrorAs(t, err, &cycle)
}

func TestDependsOnCyclePath(t *testing.T) {
	ctx := context.Background()
	tasks, rels := newTestRepos(t)
	for _, id := range []string{"a", "b", "c"} {
		mkTask(t, tasks, id, types.StatusTodo)
	}

	// a depends on b depends on c.
	require.NoError(t, rels.CreateDependsOn(ctx, "a", "b"))
	require.NoError(t, rels.CreateDependsOn(ctx, "b", "c"))

	// c depending on a closes the loop.
	err := rels.CreateDependsOn(ctx, "c", "a")
	var cycle *storage.CycleError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, []string{"c", "a", "b", "c"}, cycle.Path)

	// The graph is untouched after the rejection.
	blockers, err := rels.Blockers(ctx, "c")
	require.NoError(t, err)
	assert.Empty(t, blockers)
}

func TestOrphanChildren(t *testing.T) {
	ctx := context.Background()
	tasks, rels := newTestRepos(t)
	mkTask(t, tasks, "parent", types.StatusTodo)
	mkTask(t, tasks, "kid-1", types.StatusTodo)
	mkTask(t, tasks, "kid-2", types.StatusTodo)

	require.NoError(t, rels.CreateChildOf(ctx, "kid-1", "parent"))
	require.NoError(t, rels.CreateChildOf(ctx, "kid-2", "parent"))

	n, err := rels.OrphanChildren(ctx, "parent")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	children, err := rels.Children(ctx, "parent")
	require.NoError(t, err)
	assert.Empty(t, children)
}
