package repo

import (
	"context"
	"fmt"
	"sort"

	"github.com/spineworks/vertebrae/internal/types"
)

// singleInstanceSections can appear once per task; setting one replaces
// any existing section of that type. Every other type is multi-instance
// and appends with an auto-incrementing ordinal.
var singleInstanceSections = map[types.SectionType]bool{
	types.SectionGoal:            true,
	types.SectionContext:         true,
	types.SectionCurrentBehavior: true,
	types.SectionDesiredBehavior: true,
}

// SetSection adds a typed content section to the task. Single-instance
// types replace an existing section of the same type; the bool reports
// whether one was replaced. Multi-instance types append with Order set to
// one past the highest existing ordinal of that type.
func (r *TaskRepository) SetSection(ctx context.Context, id string, st types.SectionType, content string) (*types.Task, bool, error) {
	norm := types.NormalizeID(id)
	if !st.IsValid() {
		return nil, false, fmt.Errorf("invalid section type: %s", st)
	}
	task, err := r.MustGet(ctx, norm)
	if err != nil {
		return nil, false, err
	}

	replaced := false
	section := types.Section{Type: st, Content: content}
	if singleInstanceSections[st] {
		var kept []types.Section
		for _, s := range task.Sections {
			if s.Type == st {
				replaced = true
				continue
			}
			kept = append(kept, s)
		}
		task.Sections = append(kept, section)
	} else {
		ordinal := nextOrdinal(task.Sections, st)
		section.Order = &ordinal
		task.Sections = append(task.Sections, section)
	}

	if err := task.Validate(); err != nil {
		return nil, false, fmt.Errorf("invalid update for %s: %w", norm, err)
	}
	if err := r.store.UpdateTask(ctx, norm, task); err != nil {
		return nil, false, err
	}
	return task, replaced, nil
}

// CompleteStep marks the nth step done, counting only step sections,
// 1-based, ordered by their ordinal (unordered steps last). Returns the
// completed step's content.
func (r *TaskRepository) CompleteStep(ctx context.Context, id string, n int) (*types.Task, string, error) {
	norm := types.NormalizeID(id)
	if n < 1 {
		return nil, "", fmt.Errorf("step number must be 1 or greater, got %d", n)
	}
	task, err := r.MustGet(ctx, norm)
	if err != nil {
		return nil, "", err
	}

	steps := sectionIndexes(task.Sections, types.SectionStep)
	if n > len(steps) {
		return nil, "", fmt.Errorf("task %s has %d step(s), no step %d", norm, len(steps), n)
	}
	idx := steps[n-1]
	content := task.Sections[idx].Content

	task, err = r.Update(ctx, norm, TaskUpdate{SetStepDone: &StepDone{Index: idx, Done: true}})
	if err != nil {
		return nil, "", err
	}
	return task, content, nil
}

// AttachCriterionRef records a code reference for the nth testing
// criterion, 1-based. The ref lands on the task's ref list; the criterion
// index only validates the target and names it in the result.
func (r *TaskRepository) AttachCriterionRef(ctx context.Context, id string, n int, ref types.CodeRef) (*types.Task, string, error) {
	norm := types.NormalizeID(id)
	if n < 1 {
		return nil, "", fmt.Errorf("criterion number must be 1 or greater, got %d", n)
	}
	task, err := r.MustGet(ctx, norm)
	if err != nil {
		return nil, "", err
	}

	criteria := sectionIndexes(task.Sections, types.SectionTestingCriterion)
	if n > len(criteria) {
		return nil, "", fmt.Errorf("task %s has %d testing criterion(s), no criterion %d", norm, len(criteria), n)
	}
	content := task.Sections[criteria[n-1]].Content

	task, err = r.Update(ctx, norm, TaskUpdate{AddRefs: []types.CodeRef{ref}})
	if err != nil {
		return nil, "", err
	}
	return task, content, nil
}

// sectionIndexes returns the positions of every section of the given type,
// ordered by their ordinal, unordered ones last in stored order.
func sectionIndexes(sections []types.Section, st types.SectionType) []int {
	var idx []int
	for i, s := range sections {
		if s.Type == st {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		oa, ob := sections[idx[a]].Order, sections[idx[b]].Order
		if oa == nil {
			return false
		}
		if ob == nil {
			return true
		}
		return *oa < *ob
	})
	return idx
}

func nextOrdinal(sections []types.Section, st types.SectionType) int {
	next := 0
	for _, s := range sections {
		if s.Type == st && s.Order != nil && *s.Order >= next {
			next = *s.Order + 1
		}
	}
	return next
}
