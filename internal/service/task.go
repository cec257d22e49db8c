package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/daily-tasks/internal/model"
	"github.com/BuzzLyutic/daily-tasks/internal/repo"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// TaskManager sits between a UI and one repository. It keeps the list of
// tasks the UI currently shows and rebuilds it from the repository after
// every mutation. Repository errors are returned as is and leave the
// visible list untouched.
type TaskManager struct {
	repo    repo.TaskRepository
	logger  *zap.Logger
	visible []model.Task
}

// NewTaskManager seeds the visible list with every stored task.
func NewTaskManager(ctx context.Context, repo repo.TaskRepository, logger *zap.Logger) (*TaskManager, error) {
	if repo == nil {
		return nil, fmt.Errorf("%w: repository must be provided", ErrValidation)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &TaskManager{repo: repo, logger: logger}
	if _, err := m.refresh(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// Visible returns a copy of the current visible list.
func (m *TaskManager) Visible() []model.Task {
	return slices.Clone(m.visible)
}

// GetVisible returns the task at index in the last rendered list. It does
// not consult the repository, so the result may be stale.
func (m *TaskManager) GetVisible(index int) (model.Task, error) {
	if index < 0 || index >= len(m.visible) {
		return model.Task{}, fmt.Errorf("%w: %d (visible tasks: %d)", ErrIndexOutOfRange, index, len(m.visible))
	}
	return m.visible[index], nil
}

func (m *TaskManager) GetByID(ctx context.Context, id int64) (model.Task, error) {
	return m.repo.Get(ctx, id)
}

func (m *TaskManager) Filter(ctx context.Context, f model.Filter) ([]model.Task, error) {
	tasks, err := m.repo.Filter(ctx, f)
	if err != nil {
		return nil, err
	}
	m.setVisible(tasks, string(f))
	return m.Visible(), nil
}

// Create stores t and shows the full, unfiltered list afterwards.
func (m *TaskManager) Create(ctx context.Context, t model.Task) ([]model.Task, error) {
	if err := m.validate(t); err != nil {
		return nil, err
	}
	if _, err := m.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return m.refresh(ctx)
}

func (m *TaskManager) Edit(ctx context.Context, id int64, patch model.TaskPatch) ([]model.Task, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, fmt.Errorf("%w: title must not be empty", ErrValidation)
	}
	if _, err := m.repo.Update(ctx, id, patch); err != nil {
		return nil, err
	}
	return m.refresh(ctx)
}

func (m *TaskManager) Delete(ctx context.Context, id int64) ([]model.Task, error) {
	if err := m.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	return m.refresh(ctx)
}

func (m *TaskManager) Complete(ctx context.Context, id int64) ([]model.Task, error) {
	done := true
	return m.Edit(ctx, id, model.TaskPatch{Completed: &done})
}

func (m *TaskManager) refresh(ctx context.Context) ([]model.Task, error) {
	tasks, err := m.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	m.setVisible(tasks, string(model.FilterAll))
	return m.Visible(), nil
}

func (m *TaskManager) setVisible(tasks []model.Task, view string) {
	m.visible = tasks
	m.logger.Debug("Visible tasks rebuilt", zap.String("view", view), zap.Int("count", len(tasks)))
}

func (m *TaskManager) validate(t model.Task) error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: title must not be empty", ErrValidation)
	}
	return nil
}
