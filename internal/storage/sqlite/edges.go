package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spineworks/vertebrae/internal/storage"
	"github.com/spineworks/vertebrae/internal/types"
)

// CreateChildOf records child's single parent.
func (s *Store) CreateChildOf(ctx context.Context, child, parent string) error {
	current, has, err := s.Parent(ctx, child)
	if err != nil {
		return err
	}
	if has {
		return &storage.HasParentError{Child: child, Parent: current}
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO child_of (child, parent) VALUES (?, ?)`, child, parent)
	if err != nil {
		return fmt.Errorf("failed to insert child_of %s -> %s: %w", child, parent, err)
	}
	return nil
}

// DeleteChildOf removes child's parent edge if present.
func (s *Store) DeleteChildOf(ctx context.Context, child string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM child_of WHERE child = ?`, child)
	if err != nil {
		return false, fmt.Errorf("failed to delete child_of for %s: %w", child, err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Parent returns child's parent id, if any.
func (s *Store) Parent(ctx context.Context, child string) (string, bool, error) {
	var parent string
	err := s.db.QueryRowContext(ctx, `SELECT parent FROM child_of WHERE child = ?`, child).Scan(&parent)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get parent of %s: %w", child, err)
	}
	return parent, true, nil
}

// Children returns the ids whose parent is the given task.
func (s *Store) Children(ctx context.Context, parent string) ([]string, error) {
	return s.idColumn(ctx, `SELECT child FROM child_of WHERE parent = ? ORDER BY child`, parent)
}

// ListChildOf returns every hierarchy edge ordered by child id.
func (s *Store) ListChildOf(ctx context.Context) ([]types.ChildOf, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT child, parent FROM child_of ORDER BY child`)
	if err != nil {
		return nil, fmt.Errorf("failed to list child_of edges: %w", err)
	}
	defer rows.Close()

	var edges []types.ChildOf
	for rows.Next() {
		var e types.ChildOf
		if err := rows.Scan(&e.Child, &e.Parent); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// CreateDependsOn records that task is blocked by blocker. Duplicate edges
// are absorbed.
func (s *Store) CreateDependsOn(ctx context.Context, task, blocker string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO depends_on (task, blocker) VALUES (?, ?)`, task, blocker)
	if err != nil {
		return fmt.Errorf("failed to insert depends_on %s -> %s: %w", task, blocker, err)
	}
	return nil
}

// DeleteDependsOn removes the edge if present.
func (s *Store) DeleteDependsOn(ctx context.Context, task, blocker string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM depends_on WHERE task = ? AND blocker = ?`, task, blocker)
	if err != nil {
		return false, fmt.Errorf("failed to delete depends_on %s -> %s: %w", task, blocker, err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DependsOnExists reports whether the exact edge is recorded.
func (s *Store) DependsOnExists(ctx context.Context, task, blocker string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM depends_on WHERE task = ? AND blocker = ?`, task, blocker).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check depends_on %s -> %s: %w", task, blocker, err)
	}
	return true, nil
}

// Blockers returns the ids the given task depends on.
func (s *Store) Blockers(ctx context.Context, task string) ([]string, error) {
	return s.idColumn(ctx, `SELECT blocker FROM depends_on WHERE task = ? ORDER BY blocker`, task)
}

// Dependents returns the ids that depend on the given task.
func (s *Store) Dependents(ctx context.Context, task string) ([]string, error) {
	return s.idColumn(ctx, `SELECT task FROM depends_on WHERE blocker = ? ORDER BY task`, task)
}

// ListDependsOn returns every dependency edge ordered by (task, blocker).
func (s *Store) ListDependsOn(ctx context.Context) ([]types.DependsOn, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT task, blocker FROM depends_on ORDER BY task, blocker`)
	if err != nil {
		return nil, fmt.Errorf("failed to list depends_on edges: %w", err)
	}
	defer rows.Close()

	var edges []types.DependsOn
	for rows.Next() {
		var e types.DependsOn
		if err := rows.Scan(&e.Task, &e.Blocker); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// DeleteEdgesFor removes every edge naming id on either end, both kinds.
func (s *Store) DeleteEdgesFor(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM child_of WHERE child = ? OR parent = ?`, id, id); err != nil {
		return fmt.Errorf("failed to clear child_of edges for %s: %w", id, err)
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM depends_on WHERE task = ? OR blocker = ?`, id, id); err != nil {
		return fmt.Errorf("failed to clear depends_on edges for %s: %w", id, err)
	}
	return nil
}

func (s *Store) idColumn(ctx context.Context, query string, arg string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
