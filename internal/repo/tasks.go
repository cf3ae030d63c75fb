// Package repo layers graph rules and lifecycle validation over a storage
// backend. Identifier normalization happens here, once, at the boundary:
// everything below receives canonical ids.
package repo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spineworks/vertebrae/internal/storage"
	"github.com/spineworks/vertebrae/internal/types"
)

// TaskRepository manages task records. Edge bookkeeping lives in
// RelationshipRepository; deleting a record here never touches edges.
type TaskRepository struct {
	store storage.Store
}

// NewTaskRepository creates a task repository over the given store.
func NewTaskRepository(store storage.Store) *TaskRepository {
	return &TaskRepository{store: store}
}

// Create persists a new task under id. The id is normalized before the
// uniqueness check; creation under a live id fails with AlreadyExistsError
// and is never implicitly destructive.
func (r *TaskRepository) Create(ctx context.Context, id string, task *types.Task) error {
	norm := types.NormalizeID(id)
	task.ID = norm
	task.SetDefaults()
	if err := task.Validate(); err != nil {
		return fmt.Errorf("invalid task %s: %w", norm, err)
	}
	return r.store.CreateTask(ctx, norm, task)
}

// Get fetches a task. Absence is reported through the bool, not an error.
func (r *TaskRepository) Get(ctx context.Context, id string) (*types.Task, bool, error) {
	return r.store.GetTask(ctx, types.NormalizeID(id))
}

// MustGet fetches a task, converting absence into NotFoundError.
func (r *TaskRepository) MustGet(ctx context.Context, id string) (*types.Task, error) {
	norm := types.NormalizeID(id)
	task, ok, err := r.store.GetTask(ctx, norm)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &storage.NotFoundError{TaskID: norm}
	}
	return task, nil
}

// Exists reports whether a record is live under the normalized id.
func (r *TaskRepository) Exists(ctx context.Context, id string) (bool, error) {
	return r.store.TaskExists(ctx, types.NormalizeID(id))
}

// Delete removes the task record only. Callers decide what happens to
// edges and descendants first.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	return r.store.DeleteTask(ctx, types.NormalizeID(id))
}

// StepDone addresses one step section by index within the task's sections.
type StepDone struct {
	Index int
	Done  bool
}

// TaskUpdate describes a partial update. Nil fields are untouched.
// Status changes must already have been validated by Transition or the
// state machine; Update applies them verbatim.
type TaskUpdate struct {
	Title         *string
	Priority      *types.Priority
	ClearPriority bool
	Status        *types.Status
	SetReview     *bool
	ToggleReview  bool
	AddTags       []string
	RemoveTags    []string
	AddSections   []types.Section
	RemoveSection *int
	AddRefs       []types.CodeRef
	RemoveRef     *int
	SetStepDone   *StepDone
}

// Update applies a partial update and returns the stored result. UpdatedAt
// is always refreshed, even for a vacuous update.
func (r *TaskRepository) Update(ctx context.Context, id string, upd TaskUpdate) (*types.Task, error) {
	norm := types.NormalizeID(id)
	task, err := r.MustGet(ctx, norm)
	if err != nil {
		return nil, err
	}

	if upd.Title != nil {
		task.Title = *upd.Title
	}
	if upd.ClearPriority {
		task.Priority = nil
	} else if upd.Priority != nil {
		p := *upd.Priority
		task.Priority = &p
	}
	if upd.Status != nil {
		task.Status = *upd.Status
	}
	if upd.SetReview != nil {
		task.NeedsHumanReview = *upd.SetReview
	} else if upd.ToggleReview {
		task.NeedsHumanReview = !task.NeedsHumanReview
	}
	for _, tag := range upd.AddTags {
		if !containsString(task.Tags, tag) {
			task.Tags = append(task.Tags, tag)
		}
	}
	for _, tag := range upd.RemoveTags {
		task.Tags = removeString(task.Tags, tag)
	}
	// Index-addressed edits see the stored lists; appends land after them,
	// for sections and refs alike.
	if upd.SetStepDone != nil {
		i := upd.SetStepDone.Index
		if i < 0 || i >= len(task.Sections) {
			return nil, fmt.Errorf("task %s has no section at index %d", norm, i)
		}
		if task.Sections[i].Type != types.SectionStep {
			return nil, fmt.Errorf("section %d of task %s is not a step", i, norm)
		}
		done := upd.SetStepDone.Done
		task.Sections[i].Done = &done
	}
	if upd.RemoveSection != nil {
		i := *upd.RemoveSection
		if i < 0 || i >= len(task.Sections) {
			return nil, fmt.Errorf("task %s has no section at index %d", norm, i)
		}
		task.Sections = append(task.Sections[:i], task.Sections[i+1:]...)
	}
	task.Sections = append(task.Sections, upd.AddSections...)
	if upd.RemoveRef != nil {
		i := *upd.RemoveRef
		if i < 0 || i >= len(task.Refs) {
			return nil, fmt.Errorf("task %s has no ref at index %d", norm, i)
		}
		task.Refs = append(task.Refs[:i], task.Refs[i+1:]...)
	}
	task.Refs = append(task.Refs, upd.AddRefs...)

	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("invalid update for %s: %w", norm, err)
	}
	if err := r.store.UpdateTask(ctx, norm, task); err != nil {
		return nil, err
	}
	return task, nil
}

// ValidateTransition checks the lifecycle table for the task's current
// status. Same-status requests are the caller's no-op; routing one here
// yields InvalidTransitionError like any other unlisted pair.
func (r *TaskRepository) ValidateTransition(ctx context.Context, id string, to types.Status) error {
	norm := types.NormalizeID(id)
	task, err := r.MustGet(ctx, norm)
	if err != nil {
		return err
	}
	if !task.Status.CanTransitionTo(to) {
		return &storage.InvalidTransitionError{TaskID: norm, From: task.Status, To: to}
	}
	return nil
}

// Transition moves the task to the given status. A request for the current
// status is a no-op success: the task is returned untouched, UpdatedAt
// included, and the state machine is never consulted. Entering in_progress
// stamps StartedAt once; entering done stamps CompletedAt.
func (r *TaskRepository) Transition(ctx context.Context, id string, to types.Status) (*types.Task, bool, error) {
	norm := types.NormalizeID(id)
	task, err := r.MustGet(ctx, norm)
	if err != nil {
		return nil, false, err
	}
	if task.Status == to {
		return task, false, nil
	}
	if !task.Status.CanTransitionTo(to) {
		return nil, false, &storage.InvalidTransitionError{TaskID: norm, From: task.Status, To: to}
	}

	task.Status = to
	switch to {
	case types.StatusInProgress:
		if task.StartedAt == nil {
			t := nowUTC()
			task.StartedAt = &t
		}
	case types.StatusDone:
		t := nowUTC()
		task.CompletedAt = &t
	}

	if err := r.store.UpdateTask(ctx, norm, task); err != nil {
		return nil, false, err
	}
	return task, true, nil
}

// Filter narrows List output. Zero values match everything; done and
// rejected tasks are excluded unless IncludeComplete is set or the status
// filter names them.
type Filter struct {
	Status          *types.Status
	Level           *types.Level
	Priority        *types.Priority
	Tag             string
	NeedsReview     *bool
	RootOnly        bool
	ChildrenOf      string
	IncludeComplete bool
}

// List returns tasks matching the filter, ordered by priority rank then id.
func (r *TaskRepository) List(ctx context.Context, f Filter) ([]types.Task, error) {
	all, err := r.store.ListTasks(ctx)
	if err != nil {
		return nil, err
	}

	var allowed map[string]bool
	if f.ChildrenOf != "" {
		children, err := r.store.Children(ctx, types.NormalizeID(f.ChildrenOf))
		if err != nil {
			return nil, err
		}
		allowed = make(map[string]bool, len(children))
		for _, c := range children {
			allowed[c] = true
		}
	}

	var out []types.Task
	for _, task := range all {
		if allowed != nil && !allowed[task.ID] {
			continue
		}
		if f.RootOnly {
			_, has, err := r.store.Parent(ctx, task.ID)
			if err != nil {
				return nil, err
			}
			if has {
				continue
			}
		}
		if f.Status != nil {
			if task.Status != *f.Status {
				continue
			}
		} else if task.Status.IsComplete() && !f.IncludeComplete {
			continue
		}
		if f.Level != nil && task.Level != *f.Level {
			continue
		}
		if f.Priority != nil && (task.Priority == nil || *task.Priority != *f.Priority) {
			continue
		}
		if f.Tag != "" && !containsString(task.Tags, f.Tag) {
			continue
		}
		if f.NeedsReview != nil && task.NeedsHumanReview != *f.NeedsReview {
			continue
		}
		out = append(out, task)
	}

	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := rank(out[i].Priority), rank(out[j].Priority)
		if ri != rj {
			return ri < rj
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ExportAll returns every task ordered by id, complete ones included.
func (r *TaskRepository) ExportAll(ctx context.Context) ([]types.Task, error) {
	return r.store.ListTasks(ctx)
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

func rank(p *types.Priority) int {
	if p == nil {
		return types.Priority("").Rank()
	}
	return p.Rank()
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func removeString(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
