package repo

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/daily-tasks/internal/config"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	t.Run("json", func(t *testing.T) {
		r, err := Open(ctx, config.Config{Backend: config.BackendJSON, TasksPath: filepath.Join(dir, "tasks.json")}, nil)
		require.NoError(t, err)
		assert.IsType(t, &JSONTaskRepo{}, r)
	})

	t.Run("sqlite", func(t *testing.T) {
		r, err := Open(ctx, config.Config{Backend: config.BackendSQLite, DBPath: filepath.Join(dir, "tasks.db")}, nil)
		require.NoError(t, err)
		assert.IsType(t, &SQLiteTaskRepo{}, r)
	})

	t.Run("missing location", func(t *testing.T) {
		_, err := Open(ctx, config.Config{Backend: config.BackendSQLite}, nil)
		assert.ErrorIs(t, err, config.ErrValidation)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := Open(ctx, config.Config{Backend: "yaml", TasksPath: filepath.Join(dir, "tasks.yaml")}, nil)
		assert.ErrorIs(t, err, config.ErrValidation)
	})
}
