// Package types defines core data structures for the vtb task tracker.
package types

import (
	"fmt"
	"strings"
	"time"
)

// MaxTitleLength caps task titles at creation and update time.
const MaxTitleLength = 500

// NormalizeID canonicalizes a task identifier for storage and comparison.
// Identifiers are case-insensitive: "AUTH-1" and "auth-1" name the same task.
// Normalization lowercases only; it never trims, substitutes, or rejects.
func NormalizeID(raw string) string {
	return strings.ToLower(raw)
}

// Task represents a trackable unit of work at any level of the hierarchy.
type Task struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Level            Level      `json:"level,omitempty"`
	Status           Status     `json:"status,omitempty"`
	Priority         *Priority  `json:"priority,omitempty"`
	NeedsHumanReview bool       `json:"needs_human_review,omitempty"`
	Tags             []string   `json:"tags,omitempty"`
	Sections         []Section  `json:"sections,omitempty"`
	Refs             []CodeRef  `json:"refs,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

// Validate checks if the task has valid field values.
func (t *Task) Validate() error {
	if len(t.Title) == 0 {
		return fmt.Errorf("title is required")
	}
	if len(t.Title) > MaxTitleLength {
		return fmt.Errorf("title must be %d characters or less (got %d)", MaxTitleLength, len(t.Title))
	}
	if !t.Level.IsValid() {
		return fmt.Errorf("invalid level: %s", t.Level)
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("invalid status: %s", t.Status)
	}
	if t.Priority != nil && !t.Priority.IsValid() {
		return fmt.Errorf("invalid priority: %s", *t.Priority)
	}
	for i, s := range t.Sections {
		if !s.Type.IsValid() {
			return fmt.Errorf("section %d: invalid section type: %s", i, s.Type)
		}
		if len(s.Content) == 0 {
			return fmt.Errorf("section %d: content is required", i)
		}
	}
	for i, r := range t.Refs {
		if len(r.Path) == 0 {
			return fmt.Errorf("ref %d: path is required", i)
		}
		if r.LineStart != nil && r.LineEnd != nil && *r.LineEnd < *r.LineStart {
			return fmt.Errorf("ref %d: line_end before line_start", i)
		}
	}
	return nil
}

// SetDefaults applies default values for fields omitted during JSONL import.
// Call this after json.Unmarshal so sparse records get proper defaults:
//   - Status: defaults to StatusTodo if empty
//   - Level: defaults to LevelTask if empty
func (t *Task) SetDefaults() {
	if t.Status == "" {
		t.Status = StatusTodo
	}
	if t.Level == "" {
		t.Level = LevelTask
	}
}

// HasSection reports whether the task carries at least one section of the
// given type.
func (t *Task) HasSection(st SectionType) bool {
	return t.CountSections(st) > 0
}

// CountSections returns how many sections of the given type the task carries.
func (t *Task) CountSections(st SectionType) int {
	n := 0
	for _, s := range t.Sections {
		if s.Type == st {
			n++
		}
	}
	return n
}

// Level places a task in the hierarchy
type Level string

// Task level constants
const (
	LevelEpic   Level = "epic"
	LevelTicket Level = "ticket"
	LevelTask   Level = "task"
)

// IsValid checks if the level value is valid
func (l Level) IsValid() bool {
	switch l {
	case LevelEpic, LevelTicket, LevelTask:
		return true
	}
	return false
}

// Priority ranks tasks for selection; tasks may carry none.
type Priority string

// Priority constants
const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// IsValid checks if the priority value is valid
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Rank orders priorities for sorting, critical first. Tasks without a
// priority sort after all ranked ones.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	}
	return 4
}

// Section is a typed block of task content. Sections are ordered; Order is
// meaningful for steps, Done tracks per-step completion.
type Section struct {
	Type    SectionType `json:"type"`
	Content string      `json:"content"`
	Order   *int        `json:"order,omitempty"`
	Done    *bool       `json:"done,omitempty"`
}

// SectionType categorizes a block of task content
type SectionType string

// Section type constants
const (
	SectionGoal             SectionType = "goal"
	SectionContext          SectionType = "context"
	SectionCurrentBehavior  SectionType = "current_behavior"
	SectionDesiredBehavior  SectionType = "desired_behavior"
	SectionStep             SectionType = "step"
	SectionTestingCriterion SectionType = "testing_criterion"
	SectionAntiPattern      SectionType = "anti_pattern"
	SectionFailureTest      SectionType = "failure_test"
	SectionConstraint       SectionType = "constraint"
)

// IsValid checks if the section type value is valid
func (s SectionType) IsValid() bool {
	switch s {
	case SectionGoal, SectionContext, SectionCurrentBehavior, SectionDesiredBehavior,
		SectionStep, SectionTestingCriterion, SectionAntiPattern, SectionFailureTest,
		SectionConstraint:
		return true
	}
	return false
}

// CodeRef anchors a task to a location in the codebase.
type CodeRef struct {
	Path        string `json:"path"`
	LineStart   *int   `json:"line_start,omitempty"`
	LineEnd     *int   `json:"line_end,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// ChildOf is a hierarchy edge: Child belongs to Parent. A task has at most
// one parent, so the hierarchy forms a forest.
type ChildOf struct {
	Child  string `json:"child"`
	Parent string `json:"parent"`
}

// DependsOn is a dependency edge: Task is blocked until Blocker completes.
// The dependency graph must stay acyclic.
type DependsOn struct {
	Task    string `json:"task"`
	Blocker string `json:"blocker"`
}
