package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spineworks/vertebrae/internal/types"
)

// Sentinel errors for errors.Is matching. The typed errors below carry the
// identifiers involved; each reports Is against its sentinel.
var (
	ErrNotFound      = errors.New("task not found")
	ErrAlreadyExists = errors.New("task already exists")
	ErrHasParent     = errors.New("task already has a parent")
)

// NotFoundError identifies which task a lookup missed.
type NotFoundError struct {
	TaskID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task not found: %s", e.TaskID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AlreadyExistsError rejects creation under a live identifier. Creation is
// never implicitly destructive; the caller must delete first.
type AlreadyExistsError struct {
	TaskID string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("task already exists: %s", e.TaskID)
}

func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// InvalidTransitionError reports a lifecycle move the state machine denies.
// The message names the workable alternatives so an automated caller can
// parse its way out.
type InvalidTransitionError struct {
	TaskID string
	From   types.Status
	To     types.Status
}

func (e *InvalidTransitionError) Error() string {
	valid := e.From.ValidNext()
	if len(valid) == 0 {
		return fmt.Sprintf("%s: cannot transition from '%s': this is a final state", e.TaskID, e.From)
	}
	names := make([]string, len(valid))
	for i, s := range valid {
		names[i] = string(s)
	}
	return fmt.Sprintf("%s: cannot transition from '%s' to '%s'. Valid transitions from '%s' are: %s",
		e.TaskID, e.From, e.To, e.From, strings.Join(names, ", "))
}

// HasParentError rejects a second hierarchy parent. The existing edge must
// be cleared explicitly before a new one is created.
type HasParentError struct {
	Child  string
	Parent string
}

func (e *HasParentError) Error() string {
	return fmt.Sprintf("task %s already has parent %s", e.Child, e.Parent)
}

func (e *HasParentError) Is(target error) bool {
	return target == ErrHasParent
}

// CycleError rejects an edge that would close a loop. Path lists the
// identifiers along the loop when known, starting and ending at the task
// the edge was requested for.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	if len(e.Path) == 0 {
		return "operation would create a cycle"
	}
	return fmt.Sprintf("operation would create a cycle: %s", strings.Join(e.Path, " -> "))
}

// InvalidPathError reports export/import failures: unreadable or unwritable
// files, and malformed lines (Reason carries the line number).
type InvalidPathError struct {
	Path   string
	Reason string
}

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("invalid path %s: %s", e.Path, e.Reason)
}
