package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/daily-tasks/internal/config"
	"github.com/BuzzLyutic/daily-tasks/internal/model"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS tasks (
		id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		completed BOOLEAN NOT NULL
	)`

type PostgresTaskRepo struct { // один коннект на операцию, без пула
	url    string
	logger *zap.Logger
}

func NewPostgresTaskRepo(ctx context.Context, url string, logger *zap.Logger) (*PostgresTaskRepo, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: database url must be provided", config.ErrValidation)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &PostgresTaskRepo{url: url, logger: logger}
	err := r.withConn(ctx, func(conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, postgresSchema)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Successfully connected to the Database!")
	return r, nil
}

func (r *PostgresTaskRepo) withConn(ctx context.Context, fn func(conn *pgx.Conn) error) error {
	conn, err := pgx.Connect(ctx, r.url)
	if err != nil {
		return fmt.Errorf("%w: connect: %w", ErrorStorage, err)
	}
	defer conn.Close(ctx)

	return r.mapError(fn(conn))
}

func (r *PostgresTaskRepo) Create(ctx context.Context, t model.Task) (model.Task, error) {
	if !t.IsNew() {
		return t, fmt.Errorf("%w: task already has id %d", ErrorInvalidTask, t.ID)
	}

	err := r.withConn(ctx, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, `
			INSERT INTO tasks (title, description, completed)
			VALUES ($1, $2, $3)
			RETURNING id, title, description, completed
		`, t.Title, t.Description, t.Completed).Scan(
			&t.ID, &t.Title, &t.Description, &t.Completed,
		)
	})
	if err != nil {
		return model.Task{}, err
	}
	return t, nil
}

func (r *PostgresTaskRepo) Get(ctx context.Context, id int64) (model.Task, error) {
	var t model.Task
	err := r.withConn(ctx, func(conn *pgx.Conn) error {
		return r.get(ctx, conn, id, &t)
	})
	return t, err
}

func (r *PostgresTaskRepo) get(ctx context.Context, conn *pgx.Conn, id int64, t *model.Task) error {
	err := conn.QueryRow(ctx, `
		SELECT id, title, description, completed
		FROM tasks
		WHERE id = $1
	`, id).Scan(&t.ID, &t.Title, &t.Description, &t.Completed)

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: task %d", ErrorNotFound, id)
	}
	return err
}

func (r *PostgresTaskRepo) Update(ctx context.Context, id int64, patch model.TaskPatch) (model.Task, error) {
	columns, args := patchColumns(patch, func(n int) string { return fmt.Sprintf("$%d", n) })

	var t model.Task
	err := r.withConn(ctx, func(conn *pgx.Conn) error {
		if len(columns) == 0 {
			return r.get(ctx, conn, id, &t)
		}

		args = append(args, id)
		err := conn.QueryRow(ctx, fmt.Sprintf(`
			UPDATE tasks
			SET %s
			WHERE id = $%d
			RETURNING id, title, description, completed
		`, strings.Join(columns, ", "), len(args)), args...).Scan(
			&t.ID, &t.Title, &t.Description, &t.Completed,
		)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: task %d", ErrorNotFound, id)
		}
		return err
	})
	return t, err
}

func (r *PostgresTaskRepo) Delete(ctx context.Context, id int64) error {
	return r.withConn(ctx, func(conn *pgx.Conn) error {
		cmd, err := conn.Exec(ctx, "DELETE FROM tasks WHERE id = $1", id)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return fmt.Errorf("%w: task %d", ErrorNotFound, id)
		}
		return nil
	})
}

func (r *PostgresTaskRepo) List(ctx context.Context) ([]model.Task, error) {
	return r.Filter(ctx, model.FilterAll)
}

func (r *PostgresTaskRepo) Filter(ctx context.Context, f model.Filter) ([]model.Task, error) {
	var tasks []model.Task
	err := r.withConn(ctx, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT id, title, description, completed
			FROM tasks
			WHERE ($1::boolean IS NULL OR completed = $1)
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

func (r *PostgresTaskRepo) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrorNotFound) || errors.Is(err, ErrorStorage) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%w: postgres %s: %w", ErrorStorage, pgErr.Code, err)
	}
	return fmt.Errorf("%w: %w", ErrorStorage, err)
}
