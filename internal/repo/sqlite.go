package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/BuzzLyutic/daily-tasks/internal/config"
	"github.com/BuzzLyutic/daily-tasks/internal/model"
)

// AUTOINCREMENT keeps ids monotonic even after the highest row is deleted.
const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		completed BOOLEAN NOT NULL
	)`

// SQLiteTaskRepo opens a fresh connection for every operation and releases
// it before returning.
type SQLiteTaskRepo struct {
	path   string
	logger *zap.Logger
}

func NewSQLiteTaskRepo(ctx context.Context, path string, logger *zap.Logger) (*SQLiteTaskRepo, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: db path must be provided", config.ErrValidation)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &SQLiteTaskRepo{path: path, logger: logger}
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx, sqliteSchema)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Using sqlite database", zap.String("path", path))
	return r, nil
}

func (r *SQLiteTaskRepo) withConn(ctx context.Context, fn func(conn *sql.Conn) error) error {
	db, err := sql.Open("sqlite", r.path)
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", ErrorStorage, r.path, err)
	}
	defer db.Close()

	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("%w: connect %s: %w", ErrorStorage, r.path, err)
	}
	defer conn.Close()

	return r.mapError(fn(conn))
}

func (r *SQLiteTaskRepo) Create(ctx context.Context, t model.Task) (model.Task, error) {
	if !t.IsNew() {
		return t, fmt.Errorf("%w: task already has id %d", ErrorInvalidTask, t.ID)
	}

	err := r.withConn(ctx, func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, `
			INSERT INTO tasks (title, description, completed)
			VALUES (?, ?, ?)
		`, t.Title, t.Description, t.Completed)
		if err != nil {
			return err
		}
		t.ID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return model.Task{}, err
	}
	return t, nil
}

func (r *SQLiteTaskRepo) Get(ctx context.Context, id int64) (model.Task, error) {
	var t model.Task
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		return r.get(ctx, conn, id, &t)
	})
	return t, err
}

func (r *SQLiteTaskRepo) get(ctx context.Context, conn *sql.Conn, id int64, t *model.Task) error {
	err := conn.QueryRowContext(ctx, `
		SELECT id, title, description, completed
		FROM tasks
		WHERE id = ?
	`, id).Scan(&t.ID, &t.Title, &t.Description, &t.Completed)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: task %d", ErrorNotFound, id)
	}
	return err
}

func (r *SQLiteTaskRepo) Update(ctx context.Context, id int64, patch model.TaskPatch) (model.Task, error) {
	columns, args := patchColumns(patch, func(int) string { return "?" })

	var t model.Task
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		if len(columns) > 0 {
			args = append(args, id)
			res, err := conn.ExecContext(ctx,
				"UPDATE tasks SET "+strings.Join(columns, ", ")+" WHERE id = ?", args...)
			if err != nil {
				return err
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("%w: task %d", ErrorNotFound, id)
			}
		}
		return r.get(ctx, conn, id, &t)
	})
	return t, err
}

func (r *SQLiteTaskRepo) Delete(ctx context.Context, id int64) error {
	return r.withConn(ctx, func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: task %d", ErrorNotFound, id)
		}
		return nil
	})
}

func (r *SQLiteTaskRepo) List(ctx context.Context) ([]model.Task, error) {
	return r.Filter(ctx, model.FilterAll)
}

func (r *SQLiteTaskRepo) Filter(ctx context.Context, f model.Filter) ([]model.Task, error) {
	var tasks []model.Task
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, `
			SELECT id, title, description, completed
			FROM tasks
			WHERE (?1 IS NULL OR completed = ?1)
			ORDER BY id
		`, f.Completed())
		if err != nil {
			return err
		}
		defer rows.Close()

		tasks = make([]model.Task, 0)
		for rows.Next() {
			var t model.Task
			if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Completed); err != nil {
				return err
			}
			tasks = append(tasks, t)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *SQLiteTaskRepo) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrorNotFound) || errors.Is(err, ErrorStorage) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrorStorage, err)
}

// patchColumns renders the set fields of patch as "column = <placeholder>"
// pairs, in a fixed column order.
func patchColumns(patch model.TaskPatch, placeholder func(n int) string) ([]string, []any) {
	var (
		columns []string
		args    []any
	)
	add := func(column string, v any) {
		args = append(args, v)
		columns = append(columns, column+" = "+placeholder(len(args)))
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Completed != nil {
		add("completed", *patch.Completed)
	}
	return columns, args
}
