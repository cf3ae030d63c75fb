package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spineworks/vertebrae/internal/storage"
	"github.com/spineworks/vertebrae/internal/types"
)

const taskColumns = `id, title, level, status, priority, needs_human_review,
	tags, sections, refs, created_at, updated_at, started_at, completed_at`

// CreateTask persists a new task under id. The store owns CreatedAt and
// UpdatedAt; any values already on the task win (import restores history).
func (s *Store) CreateTask(ctx context.Context, id string, task *types.Task) error {
	exists, err := s.TaskExists(ctx, id)
	if err != nil {
		return err
	}
	if exists {
		return &storage.AlreadyExistsError{TaskID: id}
	}

	now := s.now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	if task.UpdatedAt.IsZero() {
		task.UpdatedAt = now
	}

	tags, sections, refs, err := marshalTaskBlobs(task)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, title, level, status, priority, needs_human_review,
			tags, sections, refs, created_at, updated_at, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, task.Title, string(task.Level), string(task.Status), priorityValue(task.Priority),
		task.NeedsHumanReview, tags, sections, refs,
		task.CreatedAt, task.UpdatedAt, nullTime(task.StartedAt), nullTime(task.CompletedAt))
	if err != nil {
		return fmt.Errorf("failed to insert task %s: %w", id, err)
	}
	return nil
}

// GetTask fetches the task stored under id.
func (s *Store) GetTask(ctx context.Context, id string) (*types.Task, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get task %s: %w", id, err)
	}
	return task, true, nil
}

// TaskExists reports whether a record is live under id.
func (s *Store) TaskExists(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM tasks WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check task %s: %w", id, err)
	}
	return true, nil
}

// UpdateTask replaces the stored record under id and refreshes UpdatedAt.
func (s *Store) UpdateTask(ctx context.Context, id string, task *types.Task) error {
	task.UpdatedAt = s.now().UTC()

	tags, sections, refs, err := marshalTaskBlobs(task)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET title = ?, level = ?, status = ?, priority = ?,
			needs_human_review = ?, tags = ?, sections = ?, refs = ?,
			updated_at = ?, started_at = ?, completed_at = ?
		WHERE id = ?`,
		task.Title, string(task.Level), string(task.Status), priorityValue(task.Priority),
		task.NeedsHumanReview, tags, sections, refs,
		task.UpdatedAt, nullTime(task.StartedAt), nullTime(task.CompletedAt), id)
	if err != nil {
		return fmt.Errorf("failed to update task %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &storage.NotFoundError{TaskID: id}
	}
	return nil
}

// DeleteTask removes the record under id. Edge cleanup is the caller's job.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &storage.NotFoundError{TaskID: id}
	}
	return nil
}

// ListTasks returns every live task ordered by id.
func (s *Store) ListTasks(ctx context.Context) ([]types.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []types.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*types.Task, error) {
	var (
		task                 types.Task
		level, status        string
		priority             sql.NullString
		tags, sections, refs string
		started, completed   sql.NullTime
	)
	err := row.Scan(&task.ID, &task.Title, &level, &status, &priority,
		&task.NeedsHumanReview, &tags, &sections, &refs,
		&task.CreatedAt, &task.UpdatedAt, &started, &completed)
	if err != nil {
		return nil, err
	}

	task.Level = types.Level(level)
	task.Status = types.Status(status)
	if priority.Valid {
		p := types.Priority(priority.String)
		task.Priority = &p
	}
	if started.Valid {
		t := started.Time
		task.StartedAt = &t
	}
	if completed.Valid {
		t := completed.Time
		task.CompletedAt = &t
	}

	if err := json.Unmarshal([]byte(tags), &task.Tags); err != nil {
		return nil, fmt.Errorf("corrupt tags for %s: %w", task.ID, err)
	}
	if err := json.Unmarshal([]byte(sections), &task.Sections); err != nil {
		return nil, fmt.Errorf("corrupt sections for %s: %w", task.ID, err)
	}
	if err := json.Unmarshal([]byte(refs), &task.Refs); err != nil {
		return nil, fmt.Errorf("corrupt refs for %s: %w", task.ID, err)
	}
	return &task, nil
}

func marshalTaskBlobs(task *types.Task) (tags, sections, refs string, err error) {
	b, err := json.Marshal(emptyIfNilStrings(task.Tags))
	if err != nil {
		return "", "", "", fmt.Errorf("failed to marshal tags: %w", err)
	}
	tags = string(b)

	if task.Sections == nil {
		sections = "[]"
	} else if b, err = json.Marshal(task.Sections); err != nil {
		return "", "", "", fmt.Errorf("failed to marshal sections: %w", err)
	} else {
		sections = string(b)
	}

	if task.Refs == nil {
		refs = "[]"
	} else if b, err = json.Marshal(task.Refs); err != nil {
		return "", "", "", fmt.Errorf("failed to marshal refs: %w", err)
	} else {
		refs = string(b)
	}
	return tags, sections, refs, nil
}

func emptyIfNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func priorityValue(p *types.Priority) any {
	if p == nil {
		return nil
	}
	return string(*p)
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
