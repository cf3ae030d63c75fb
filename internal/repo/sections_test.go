package repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spineworks/vertebrae/internal/types"
)

func TestSetSectionReplacesSingleInstance(t *testing.T) {
	ctx := context.Background()
	tasks, _ := newTestRepos(t)
	mkTask(t, tasks, "sec-1", types.StatusBacklog)

	got, replaced, err := tasks.SetSection(ctx, "sec-1", types.SectionGoal, "first goal")
	require.NoError(t, err)
	assert.False(t, replaced)
	require.Len(t, got.Sections, 1)
	assert.Nil(t, got.Sections[0].Order)

	got, replaced, err = tasks.SetSection(ctx, "SEC-1", types.SectionGoal, "revised goal")
	require.NoError(t, err)
	assert.True(t, replaced)
	require.Len(t, got.Sections, 1)
	assert.Equal(t, "revised goal", got.Sections[0].Content)
}

func TestSetSectionAppendsMultiInstanceWithOrdinal(t *testing.T) {
	ctx := context.Background()
	tasks, _ := newTestRepos(t)
	mkTask(t, tasks, "sec-2", types.StatusBacklog)

	got, _, err := tasks.SetSection(ctx, "sec-2", types.SectionStep, "write the parser")
	require.NoError(t, err)
	require.NotNil(t, got.Sections[0].Order)
	assert.Equal(t, 0, *got.Sections[0].Order)

	got, replaced, err := tasks.SetSection(ctx, "sec-2", types.SectionStep, "wire it up")
	require.NoError(t, err)
	assert.False(t, replaced)
	require.Len(t, got.Sections, 2)
	assert.Equal(t, 1, *got.Sections[1].Order)

	// Ordinals count per type, not across the whole list.
	got, _, err = tasks.SetSection(ctx, "sec-2", types.SectionConstraint, "no new deps")
	require.NoError(t, err)
	assert.Equal(t, 0, *got.Sections[2].Order)
}

func TestSetSectionRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	tasks, _ := newTestRepos(t)
	mkTask(t, tasks, "sec-3", types.StatusBacklog)

	_, _, err := tasks.SetSection(ctx, "sec-3", "chapter", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid section type")

	_, _, err = tasks.SetSection(ctx, "sec-3", types.SectionStep, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content is required")
}

func TestCompleteStepCountsStepsOnly(t *testing.T) {
	ctx := context.Background()
	tasks, _ := newTestRepos(t)
	mkTask(t, tasks, "sec-4", types.StatusInProgress)

	// Interleave non-step sections so step numbering diverges from
	// section positions.
	_, _, err := tasks.SetSection(ctx, "sec-4", types.SectionGoal, "ship it")
	require.NoError(t, err)
	_, _, err = tasks.SetSection(ctx, "sec-4", types.SectionStep, "design")
	require.NoError(t, err)
	_, _, err = tasks.SetSection(ctx, "sec-4", types.SectionConstraint, "keep it small")
	require.NoError(t, err)
	_, _, err = tasks.SetSection(ctx, "sec-4", types.SectionStep, "implement")
	require.NoError(t, err)

	got, content, err := tasks.CompleteStep(ctx, "sec-4", 2)
	require.NoError(t, err)
	assert.Equal(t, "implement", content)

	var done []string
	for _, s := range got.Sections {
		if s.Type == types.SectionStep && s.Done != nil && *s.Done {
			done = append(done, s.Content)
		}
	}
	assert.Equal(t, []string{"implement"}, done)
}

func TestCompleteStepBounds(t *testing.T) {
	ctx := context.Background()
	tasks, _ := newTestRepos(t)
	mkTask(t, tasks, "sec-5", types.StatusInProgress)
	_, _, err := tasks.SetSection(ctx, "sec-5", types.SectionStep, "only step")
	require.NoError(t, err)

	_, _, err = tasks.CompleteStep(ctx, "sec-5", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 or greater")

	_, _, err = tasks.CompleteStep(ctx, "sec-5", 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has 1 step(s)")
}

func TestAttachCriterionRef(t *testing.T) {
	ctx := context.Background()
	tasks, _ := newTestRepos(t)
	mkTask(t, tasks, "sec-6", types.StatusTodo)
	_, _, err := tasks.SetSection(ctx, "sec-6", types.SectionTestingCriterion, "parser accepts ranges")
	require.NoError(t, err)
	_, _, err = tasks.SetSection(ctx, "sec-6", types.SectionTestingCriterion, "parser rejects garbage")
	require.NoError(t, err)

	start, end := 10, 24
	got, content, err := tasks.AttachCriterionRef(ctx, "sec-6", 2, types.CodeRef{
		Path: "internal/parse/parse.go", LineStart: &start, LineEnd: &end,
	})
	require.NoError(t, err)
	assert.Equal(t, "parser rejects garbage", content)
	require.Len(t, got.Refs, 1)
	assert.Equal(t, "internal/parse/parse.go", got.Refs[0].Path)

	_, _, err = tasks.AttachCriterionRef(ctx, "sec-6", 3, types.CodeRef{Path: "x.go"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no criterion 3")
}
