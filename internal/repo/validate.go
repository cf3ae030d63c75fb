package repo

import (
	"fmt"
	"strings"

	"github.com/spineworks/vertebrae/internal/types"
)

// sectionRule states how many sections a task should carry before leaving
// the backlog. Alternatives count toward the same minimum, so a rule can
// accept any of several section types.
type sectionRule struct {
	Types []types.SectionType
	Min   int
}

func (r sectionRule) count(task *types.Task) int {
	n := 0
	for _, st := range r.Types {
		n += task.CountSections(st)
	}
	return n
}

func (r sectionRule) label() string {
	names := make([]string, len(r.Types))
	for i, st := range r.Types {
		names[i] = string(st)
	}
	return strings.Join(names, " or ")
}

// Triage readiness rules, by severity. Required rules block the move,
// encouraged rules warn and yield to --force, recommended rules only note.
var (
	requiredSections = []sectionRule{
		{[]types.SectionType{types.SectionGoal, types.SectionDesiredBehavior}, 1},
		{[]types.SectionType{types.SectionTestingCriterion}, 2},
		{[]types.SectionType{types.SectionStep}, 1},
		{[]types.SectionType{types.SectionConstraint}, 2},
	}
	encouragedSections = []sectionRule{
		{[]types.SectionType{types.SectionAntiPattern}, 1},
		{[]types.SectionType{types.SectionFailureTest}, 1},
	}
	recommendedSections = []types.SectionType{
		types.SectionContext,
		types.SectionCurrentBehavior,
	}
)

// TriageReport collects readiness findings for a backlog task.
type TriageReport struct {
	Errors   []string
	Warnings []string
	Notes    []string
}

// Ready reports whether the move may proceed; force waives warnings but
// never errors.
func (r *TriageReport) Ready(force bool) bool {
	if len(r.Errors) > 0 {
		return false
	}
	return force || len(r.Warnings) == 0
}

// ValidateTriage checks a task's sections against the readiness rules for
// leaving the backlog. Pure; the caller decides what the findings mean.
func ValidateTriage(task *types.Task) *TriageReport {
	report := &TriageReport{}

	for _, rule := range requiredSections {
		if n := rule.count(task); n < rule.Min {
			report.Errors = append(report.Errors,
				fmt.Sprintf("needs at least %d %s section(s), has %d", rule.Min, rule.label(), n))
		}
	}
	for _, rule := range encouragedSections {
		if rule.count(task) < rule.Min {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("consider adding a %s section", rule.label()))
		}
	}
	for _, st := range recommendedSections {
		if !task.HasSection(st) {
			report.Notes = append(report.Notes,
				fmt.Sprintf("a %s section would add context", st))
		}
	}
	return report
}
