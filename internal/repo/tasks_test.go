package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spineworks/vertebrae/internal/storage"
	"github.com/spineworks/vertebrae/internal/storage/sqlite"
	"github.com/spineworks/vertebrae/internal/types"
)

func newTestRepos(t *testing.T) (*TaskRepository, *RelationshipRepository) {
	t.Helper()
	store, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewTaskRepository(store), NewRelationshipRepository(store)
}

func mkTask(t *testing.T, tasks *TaskRepository, id string, status types.Status) {
	t.Helper()
	err := tasks.Create(context.Background(), id, &types.Task{
		Title: "Task " + id, Level: types.LevelTask, Status: status,
	})
	require.NoError(t, err)
}

func TestCreateNormalizesID(t *testing.T) {
	ctx := context.Background()
	tasks, _ := newTestRepos(t)

	require.NoError(t, tasks.Create(ctx, "AUTH-1", &types.Task{Title: "Login", Level: types.LevelTask, Status: types.StatusTodo}))

	got, ok, err := tasks.Get(ctx, "auth-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "auth-1", got.ID)

	// The same identity under different case is a duplicate.
	err = tasks.Create(ctx, "Auth-1", &types.Task{Title: "Again", Level: types.LevelTask, Status: types.StatusTodo})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	// Lookups are case-insensitive in every direction.
	got, ok, err = tasks.Get(ctx, "AUTH-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Login", got.Title)
}

func TestCreateValidates(t *testing.T) {
	ctx := context.Background()
	tasks, _ := newTestRepos(t)

	err := tasks.Create(ctx, "bad-1", &types.Task{Level: types.LevelTask, Status: types.StatusTodo})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title is required")
}

func TestTransitionLifecycle(t *testing.T) {
	ctx := context.Background()
	tasks, _ := newTestRepos(t)
	mkTask(t, tasks, "t-1", types.StatusTodo)

	got, changed, err := tasks.Transition(ctx, "t-1", types.StatusInProgress)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, types.StatusInProgress, got.Status)
	require.NotNil(t, got.StartedAt)
	firstStart := *got.StartedAt

	got, changed, err = tasks.Transition(ctx, "t-1", types.StatusPendingReview)
	require.NoError(t, err)
	assert.True(t, changed)

	// Back to in_progress keeps the original StartedAt.
	got, _, err = tasks.Transition(ctx, "t-1", types.StatusInProgress)
	require.NoError(t, err)
	require.NotNil(t, got.StartedAt)
	assert.True(t, got.StartedAt.Equal(firstStart))

	_, _, err = tasks.Transition(ctx, "t-1", types.StatusPendingReview)
	require.NoError(t, err)
	got, changed, err = tasks.Transition(ctx, "t-1", types.StatusDone)
	require.NoError(t, err)
	assert.True(t, changed)
	require.NotNil(t, got.CompletedAt)
}

func TestTransitionSameStatusIsNoOp(t *testing.T) {
	ctx := context.Background()
	tasks, _ := newTestRepos(t)

	for _, status := range types.AllStatuses() {
		id := "noop-" + string(status)
		mkTask(t, tasks, id, status)

		before, err := tasks.MustGet(ctx, id)
		require.NoError(t, err)

		got, changed, err := tasks.Transition(ctx, id, status)
		require.NoError(t, err, "same-status request must succeed for %s", status)
		assert.False(t, changed)
		assert.Equal(t, before.UpdatedAt, got.UpdatedAt, "no-op must not refresh UpdatedAt")
	}
}

func TestTransitionDenied(t *testing.T) {
	ctx := context.Background()
	tasks, _ := newTestRepos(t)
	mkTask(t, tasks, "t-2", types.StatusTodo)

	_, _, err := tasks.Transition(ctx, "t-2", types.StatusPendingReview)
	require.Error(t, err)
	var invalid *storage.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, types.StatusTodo, invalid.From)
	assert.Equal(t, types.StatusPendingReview, invalid.To)
	assert.Contains(t, err.Error(), "Valid transitions from 'todo' are: in_progress, rejected")

	mkTask(t, tasks, "t-3", types.StatusDone)
	_, _, err = tasks.Transition(ctx, "t-3", types.StatusTodo)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "final state")
}

func TestUpdatePartial(t *testing.T) {
	ctx := context.Background()
	tasks, _ := newTestRepos(t)
	mkTask(t, tasks, "u-1", types.StatusTodo)

	title := "Renamed"
	p := types.PriorityCritical
	got, err := tasks.Update(ctx, "u-1", TaskUpdate{
		Title:    &title,
		Priority: &p,
		AddTags:  []string{"infra", "infra", "web"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	require.NotNil(t, got.Priority)
	assert.Equal(t, types.PriorityCritical, *got.Priority)
	assert.Equal(t, []string{"infra", "web"}, got.Tags)

	got, err = tasks.Update(ctx, "u-1", TaskUpdate{
		ClearPriority: true,
		RemoveTags:    []string{"infra"},
	})
	require.NoError(t, err)
	assert.Nil(t, got.Priority)
	assert.Equal(t, []string{"web"}, got.Tags)
}

func TestUpdateReviewFlag(t *testing.T) {
	ctx := context.Background()
	tasks, _ := newTestRepos(t)
	mkTask(t, tasks, "r-1", types.StatusTodo)

	// Explicit set wins even when the value already matches.
	on := true
	got, err := tasks.Update(ctx, "r-1", TaskUpdate{SetReview: &on})
	require.NoError(t, err)
	assert.True(t, got.NeedsHumanReview)

	got, err = tasks.Update(ctx, "r-1", TaskUpdate{ToggleReview: true})
	require.NoError(t, err)
	assert.False(t, got.NeedsHumanReview)

	got, err = tasks.Update(ctx, "r-1", TaskUpdate{ToggleReview: true})
	require.NoError(t, err)
	assert.True(t, got.NeedsHumanReview)
}

func TestUpdateSections(t *testing.T) {
	ctx := context.Background()
	tasks, _ := newTestRepos(t)
	mkTask(t, tasks, "s-1", types.StatusTodo)

	got, err := tasks.Update(ctx, "s-1", TaskUpdate{
		AddSections: []types.Section{
			{Type: types.SectionStep, Content: "write the parser"},
			{Type: types.SectionGoal, Content: "ship"},
		},
	})
	require.NoError(t, err)
	require.Len(t, got.Sections, 2)

	got, err = tasks.Update(ctx, "s-1", TaskUpdate{SetStepDone: &StepDone{Index: 0, Done: true}})
	require.NoError(t, err)
	require.NotNil(t, got.Sections[0].Done)
	assert.True(t, *got.Sections[0].Done)

	// Marking a non-step section done is rejected.
	_, err = tasks.Update(ctx, "s-1", TaskUpdate{SetStepDone: &StepDone{Index: 1, Done: true}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a step")

	idx := 1
	got, err = tasks.Update(ctx, "s-1", TaskUpdate{RemoveSection: &idx})
	require.NoError(t, err)
	require.Len(t, got.Sections, 1)
	assert.Equal(t, types.SectionStep, got.Sections[0].Type)
}

func TestUpdateIndexesStoredListsBeforeAppend(t *testing.T) {
	ctx := context.Background()
	tasks, _ := newTestRepos(t)
	mkTask(t, tasks, "s-2", types.StatusTodo)

	line := 10
	_, err := tasks.Update(ctx, "s-2", TaskUpdate{
		AddSections: []types.Section{
			{Type: types.SectionGoal, Content: "old goal"},
			{Type: types.SectionStep, Content: "old step"},
		},
		AddRefs: []types.CodeRef{{Path: "old/path.go", LineStart: &line}},
	})
	require.NoError(t, err)

	// Removing index 0 and appending in one update drops the stored goal,
	// not the incoming section; refs behave the same way.
	idx := 0
	got, err := tasks.Update(ctx, "s-2", TaskUpdate{
		RemoveSection: &idx,
		AddSections:   []types.Section{{Type: types.SectionGoal, Content: "new goal"}},
		RemoveRef:     &idx,
		AddRefs:       []types.CodeRef{{Path: "new/path.go"}},
	})
	require.NoError(t, err)
	require.Len(t, got.Sections, 2)
	assert.Equal(t, "old step", got.Sections[0].Content)
	assert.Equal(t, "new goal", got.Sections[1].Content)
	require.Len(t, got.Refs, 1)
	assert.Equal(t, "new/path.go", got.Refs[0].Path)

	// An index into the incoming batch, past the stored list, is rejected.
	bad := 2
	_, err = tasks.Update(ctx, "s-2", TaskUpdate{
		RemoveSection: &bad,
		AddSections:   []types.Section{{Type: types.SectionContext, Content: "x"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no section at index 2")
}

func TestUpdateMissingTask(t *testing.T) {
	ctx := context.Background()
	tasks, _ := newTestRepos(t)

	_, err := tasks.Update(ctx, "ghost", TaskUpdate{ToggleReview: true})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListFilters(t *testing.T) {
	ctx := context.Background()
	tasks, _ := newTestRepos(t)

	mkTask(t, tasks, "w-1", types.StatusTodo)
	mkTask(t, tasks, "w-2", types.StatusInProgress)
	mkTask(t, tasks, "w-3", types.StatusDone)
	mkTask(t, tasks, "w-4", types.StatusRejected)

	// Complete tasks hidden by default.
	got, err := tasks.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, got, 2)

	got, err = tasks.List(ctx, Filter{IncludeComplete: true})
	require.NoError(t, err)
	require.Len(t, got, 4)

	done := types.StatusDone
	got, err = tasks.List(ctx, Filter{Status: &done})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "w-3", got[0].ID)
}

func TestListPriorityOrder(t *testing.T) {
	ctx := context.Background()
	tasks, _ := newTestRepos(t)

	low, crit := types.PriorityLow, types.PriorityCritical
	require.NoError(t, tasks.Create(ctx, "p-low", &types.Task{Title: "a", Level: types.LevelTask, Status: types.StatusTodo, Priority: &low}))
	require.NoError(t, tasks.Create(ctx, "p-none", &types.Task{Title: "b", Level: types.LevelTask, Status: types.StatusTodo}))
	require.NoError(t, tasks.Create(ctx, "p-crit", &types.Task{Title: "c", Level: types.LevelTask, Status: types.StatusTodo, Priority: &crit}))

	got, err := tasks.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "p-crit", got[0].ID)
	assert.Equal(t, "p-low", got[1].ID)
	assert.Equal(t, "p-none", got[2].ID)
}

func TestListHierarchyFilters(t *testing.T) {
	ctx := context.Background()
	tasks, rels := newTestRepos(t)

	mkTask(t, tasks, "root-1", types.StatusTodo)
	mkTask(t, tasks, "root-2", types.StatusTodo)
	mkTask(t, tasks, "kid-1", types.StatusTodo)
	mkTask(t, tasks, "kid-2", types.StatusTodo)
	require.NoError(t, rels.CreateChildOf(ctx, "kid-1", "root-1"))
	require.NoError(t, rels.CreateChildOf(ctx, "kid-2", "root-1"))

	got, err := tasks.List(ctx, Filter{RootOnly: true})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "root-1", got[0].ID)
	assert.Equal(t, "root-2", got[1].ID)

	got, err = tasks.List(ctx, Filter{ChildrenOf: "ROOT-1"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "kid-1", got[0].ID)
	assert.Equal(t, "kid-2", got[1].ID)

	got, err = tasks.List(ctx, Filter{ChildrenOf: "root-2"})
	require.NoError(t, err)
	require.Empty(t, got)
}
