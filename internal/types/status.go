package types

// Status represents where a task sits in its lifecycle
type Status string

// Task status constants
const (
	StatusBacklog       Status = "backlog"
	StatusTodo          Status = "todo"
	StatusInProgress    Status = "in_progress"
	StatusPendingReview Status = "pending_review"
	StatusDone          Status = "done"
	StatusRejected      Status = "rejected"
)

// transitions is the only source of truth for lifecycle moves. A status
// absent from a target list is unreachable from that source; a status with
// an empty list is final.
var transitions = map[Status][]Status{
	StatusBacklog:       {StatusTodo},
	StatusTodo:          {StatusInProgress, StatusRejected},
	StatusInProgress:    {StatusPendingReview},
	StatusPendingReview: {StatusInProgress, StatusDone},
	StatusDone:          {},
	StatusRejected:      {},
}

// IsValid checks if the status value is valid
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransitionTo reports whether the lifecycle allows moving from s to
// target. Same-status requests are the caller's concern: commands treat
// them as no-ops before ever consulting the table, so s -> s is denied
// here like any other unlisted pair.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// ValidNext returns the statuses reachable from s in one move, in table
// order. Final statuses return an empty slice.
func (s Status) ValidNext() []Status {
	next := transitions[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// IsFinal reports whether no further transitions are possible.
func (s Status) IsFinal() bool {
	return s.IsValid() && len(transitions[s]) == 0
}

// IsComplete reports whether the task no longer counts as pending work.
func (s Status) IsComplete() bool {
	return s == StatusDone || s == StatusRejected
}

// AllStatuses returns every valid status in lifecycle order.
func AllStatuses() []Status {
	return []Status{
		StatusBacklog,
		StatusTodo,
		StatusInProgress,
		StatusPendingReview,
		StatusDone,
		StatusRejected,
	}
}
