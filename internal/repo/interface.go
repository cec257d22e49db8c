package repo

import (
	"context"
	"errors"

	"github.com/BuzzLyutic/daily-tasks/internal/model"
)

var (
	ErrorNotFound         = errors.New("not found")
	ErrorCapacityExceeded = errors.New("capacity exceeded")
	ErrorStorage          = errors.New("storage failure")
	ErrorInvalidTask      = errors.New("invalid task")
)

// TaskRepository is the contract every storage backend satisfies.
// Errors are never recovered inside a backend; callers match them with errors.Is.
type TaskRepository interface {
	// Create assigns an id to a task that has none and persists it.
	Create(ctx context.Context, t model.Task) (model.Task, error)
	Get(ctx context.Context, id int64) (model.Task, error)
	// Update writes only the set fields of the patch.
	Update(ctx context.Context, id int64, patch model.TaskPatch) (model.Task, error)
	Delete(ctx context.Context, id int64) error
	// List returns every task in insertion order.
	List(ctx context.Context) ([]model.Task, error)
	// Filter returns the tasks matching f in the same order as List.
	Filter(ctx context.Context, f model.Filter) ([]model.Task, error)
}
