package types

import (
	"strings"
	"testing"
)

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"AUTH-1", "auth-1"},
		{"auth-1", "auth-1"},
		{"Auth-1", "auth-1"},
		{"", ""},
		{"  SPACED  ", "  spaced  "}, // lowercase only, never trim
		{"MIXED_Case.42", "mixed_case.42"},
	}
	for _, tt := range tests {
		if got := NormalizeID(tt.raw); got != tt.want {
			t.Errorf("NormalizeID(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestTaskValidation(t *testing.T) {
	tests := []struct {
		name    string
		task    Task
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid task",
			task: Task{
				ID:     "auth-1",
				Title:  "Implement login",
				Level:  LevelTask,
				Status: StatusTodo,
			},
			wantErr: false,
		},
		{
			name: "missing title",
			task: Task{
				ID:     "auth-1",
				Level:  LevelTask,
				Status: StatusTodo,
			},
			wantErr: true,
			errMsg:  "title is required",
		},
		{
			name: "title too long",
			task: Task{
				ID:     "auth-1",
				Title:  strings.Repeat("x", 501),
				Level:  LevelTask,
				Status: StatusTodo,
			},
			wantErr: true,
			errMsg:  "title must be 500 characters or less",
		},
		{
			name: "invalid level",
			task: Task{
				ID:     "auth-1",
				Title:  "Test",
				Level:  Level("saga"),
				Status: StatusTodo,
			},
			wantErr: true,
			errMsg:  "invalid level",
		},
		{
			name: "invalid status",
			task: Task{
				ID:     "auth-1",
				Title:  "Test",
				Level:  LevelTask,
				Status: Status("paused"),
			},
			wantErr: true,
			errMsg:  "invalid status",
		},
		{
			name: "invalid priority",
			task: func() Task {
				p := Priority("urgent")
				return Task{
					ID:       "auth-1",
					Title:    "Test",
					Level:    LevelTask,
					Status:   StatusTodo,
					Priority: &p,
				}
			}(),
			wantErr: true,
			errMsg:  "invalid priority",
		},
		{
			name: "invalid section type",
			task: Task{
				ID:     "auth-1",
				Title:  "Test",
				Level:  LevelTask,
				Status: StatusTodo,
				Sections: []Section{
					{Type: SectionType("musing"), Content: "hm"},
				},
			},
			wantErr: true,
			errMsg:  "invalid section type",
		},
		{
			name: "empty section content",
			task: Task{
				ID:     "auth-1",
				Title:  "Test",
				Level:  LevelTask,
				Status: StatusTodo,
				Sections: []Section{
					{Type: SectionGoal, Content: ""},
				},
			},
			wantErr: true,
			errMsg:  "content is required",
		},
		{
			name: "ref without path",
			task: Task{
				ID:     "auth-1",
				Title:  "Test",
				Level:  LevelTask,
				Status: StatusTodo,
				Refs:   []CodeRef{{Name: "handler"}},
			},
			wantErr: true,
			errMsg:  "path is required",
		},
		{
			name: "ref with inverted line range",
			task: func() Task {
				start, end := 40, 10
				return Task{
					ID:     "auth-1",
					Title:  "Test",
					Level:  LevelTask,
					Status: StatusTodo,
					Refs:   []CodeRef{{Path: "src/auth.go", LineStart: &start, LineEnd: &end}},
				}
			}(),
			wantErr: true,
			errMsg:  "line_end before line_start",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.errMsg)
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("error = %q, want substring %q", err.Error(), tt.errMsg)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestSetDefaults(t *testing.T) {
	task := Task{ID: "x-1", Title: "Sparse"}
	task.SetDefaults()
	if task.Status != StatusTodo {
		t.Errorf("Status = %s, want %s", task.Status, StatusTodo)
	}
	if task.Level != LevelTask {
		t.Errorf("Level = %s, want %s", task.Level, LevelTask)
	}

	task2 := Task{ID: "x-2", Title: "Explicit", Status: StatusBacklog, Level: LevelEpic}
	task2.SetDefaults()
	if task2.Status != StatusBacklog || task2.Level != LevelEpic {
		t.Errorf("SetDefaults overwrote explicit values: %s/%s", task2.Status, task2.Level)
	}
}

func TestSectionCounting(t *testing.T) {
	task := Task{
		Sections: []Section{
			{Type: SectionStep, Content: "one"},
			{Type: SectionStep, Content: "two"},
			{Type: SectionGoal, Content: "ship it"},
		},
	}
	if got := task.CountSections(SectionStep); got != 2 {
		t.Errorf("CountSections(step) = %d, want 2", got)
	}
	if !task.HasSection(SectionGoal) {
		t.Error("HasSection(goal) = false, want true")
	}
	if task.HasSection(SectionConstraint) {
		t.Error("HasSection(constraint) = true, want false")
	}
}

func TestPriorityRank(t *testing.T) {
	order := []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}
	for i := 1; i < len(order); i++ {
		if order[i-1].Rank() >= order[i].Rank() {
			t.Errorf("Rank(%s) should sort before Rank(%s)", order[i-1], order[i])
		}
	}
	if Priority("").Rank() <= PriorityLow.Rank() {
		t.Error("missing priority should rank after low")
	}
}
