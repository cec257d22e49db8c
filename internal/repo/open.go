package repo

import (
	"context"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/daily-tasks/internal/config"
)

// Open validates cfg and constructs the backend it selects.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (TaskRepository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case config.BackendSQLite:
		return NewSQLiteTaskRepo(ctx, cfg.DBPath, logger)
	case config.BackendPostgres:
		return NewPostgresTaskRepo(ctx, cfg.DatabaseURL, logger)
	default:
		return NewJSONTaskRepo(cfg.TasksPath, logger)
	}
}
