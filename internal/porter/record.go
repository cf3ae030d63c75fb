// Package porter implements the JSONL export/import protocol. A dump is a
// stream of self-describing records: every task line first, then every
// child_of line, then every depends_on line, so an import never sees an
// edge before both of its endpoints.
package porter

import (
	"encoding/json"
	"fmt"

	"github.com/spineworks/vertebrae/internal/types"
)

// Record type discriminants. The record space is closed: any other value
// on a line is a hard error, never skipped.
const (
	recordTask      = "task"
	recordChildOf   = "child_of"
	recordDependsOn = "depends_on"
)

// Record is one parsed JSONL line. Exactly one of the three fields is set.
type Record struct {
	Task      *types.Task
	ChildOf   *types.ChildOf
	DependsOn *types.DependsOn
}

// taskLine is the wire shape of a task record: the discriminant plus the
// task's own fields flattened into the same object.
type taskLine struct {
	Type string `json:"type"`
	types.Task
}

type childOfLine struct {
	Type string `json:"type"`
	types.ChildOf
}

type dependsOnLine struct {
	Type string `json:"type"`
	types.DependsOn
}

// MarshalTask renders one task record line, without trailing newline.
func MarshalTask(task *types.Task) ([]byte, error) {
	return json.Marshal(taskLine{Type: recordTask, Task: *task})
}

// MarshalChildOf renders one hierarchy edge record line.
func MarshalChildOf(edge types.ChildOf) ([]byte, error) {
	return json.Marshal(childOfLine{Type: recordChildOf, ChildOf: edge})
}

// MarshalDependsOn renders one dependency edge record line.
func MarshalDependsOn(edge types.DependsOn) ([]byte, error) {
	return json.Marshal(dependsOnLine{Type: recordDependsOn, DependsOn: edge})
}

// ParseRecord decodes one JSONL line. Identifiers are normalized here so
// the rest of the import never sees a raw id; sparse task records get
// their defaults applied.
func ParseRecord(line []byte) (Record, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(line, &head); err != nil {
		return Record{}, fmt.Errorf("malformed JSON: %w", err)
	}

	switch head.Type {
	case recordTask:
		var tl taskLine
		if err := json.Unmarshal(line, &tl); err != nil {
			return Record{}, fmt.Errorf("malformed task record: %w", err)
		}
		if tl.ID == "" {
			return Record{}, fmt.Errorf("task record missing id")
		}
		task := tl.Task
		task.ID = types.NormalizeID(task.ID)
		task.SetDefaults()
		return Record{Task: &task}, nil

	case recordChildOf:
		var cl childOfLine
		if err := json.Unmarshal(line, &cl); err != nil {
			return Record{}, fmt.Errorf("malformed child_of record: %w", err)
		}
		if cl.Child == "" || cl.Parent == "" {
			return Record{}, fmt.Errorf("child_of record missing child or parent")
		}
		edge := types.ChildOf{
			Child:  types.NormalizeID(cl.Child),
			Parent: types.NormalizeID(cl.Parent),
		}
		return Record{ChildOf: &edge}, nil

	case recordDependsOn:
		var dl dependsOnLine
		if err := json.Unmarshal(line, &dl); err != nil {
			return Record{}, fmt.Errorf("malformed depends_on record: %w", err)
		}
		if dl.DependsOn.Task == "" || dl.Blocker == "" {
			return Record{}, fmt.Errorf("depends_on record missing task or blocker")
		}
		edge := types.DependsOn{
			Task:    types.NormalizeID(dl.DependsOn.Task),
			Blocker: types.NormalizeID(dl.Blocker),
		}
		return Record{DependsOn: &edge}, nil

	case "":
		return Record{}, fmt.Errorf("record missing type")
	default:
		return Record{}, fmt.Errorf("unknown record type %q", head.Type)
	}
}
