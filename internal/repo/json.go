package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/daily-tasks/internal/config"
	"github.com/BuzzLyutic/daily-tasks/internal/model"
)

// MaxTasks is the flat-file ceiling. A task set of this size is never saved.
const MaxTasks = 2000

// JSONTaskRepo keeps every task in a single JSON array file which is
// rewritten wholesale on each mutation.
//
// Ids are count based: the next id is always len(tasks)+1 after a save,
// not a high-water mark. After deletions this can yield the id of a task
// that still exists, in which case the existing record is replaced in
// place. The behaviour is kept for compatibility with existing task files.
type JSONTaskRepo struct {
	path   string
	logger *zap.Logger

	mu     sync.Mutex
	tasks  []model.Task
	nextID int64
}

func NewJSONTaskRepo(path string, logger *zap.Logger) (*JSONTaskRepo, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: tasks path must be provided", config.ErrValidation)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: create tasks dir: %w", ErrorStorage, err)
	}

	_, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
			return nil, fmt.Errorf("%w: create tasks file: %w", ErrorStorage, err)
		}
		logger.Info("Created new tasks file", zap.String("path", path))
	case err != nil:
		return nil, fmt.Errorf("%w: stat tasks file: %w", ErrorStorage, err)
	default:
		logger.Info("Using existing tasks file", zap.String("path", path))
	}

	r := &JSONTaskRepo{path: path, logger: logger}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *JSONTaskRepo) load() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("%w: read tasks file: %w", ErrorStorage, err)
	}

	var records []model.Task
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("%w: decode tasks file: %w", ErrorStorage, err)
	}

	// Later records win on duplicate ids, keeping the first position.
	tasks := make([]model.Task, 0, len(records))
	for _, rec := range records {
		if i := indexOf(tasks, rec.ID); i >= 0 {
			tasks[i] = rec
			continue
		}
		tasks = append(tasks, rec)
	}

	r.tasks = tasks
	r.nextID = int64(len(records)) + 1
	r.logger.Debug("Loaded tasks", zap.String("path", r.path), zap.Int("count", len(tasks)))
	return nil
}

// save writes tasks to disk and, on success, adopts them as the current set.
// Nothing is written and memory is untouched when it fails.
func (r *JSONTaskRepo) save(tasks []model.Task) error {
	if len(tasks) >= MaxTasks {
		return fmt.Errorf("%w: maximum number of tasks per file is %d, delete some tasks first",
			ErrorCapacityExceeded, MaxTasks)
	}

	data := []byte("[]")
	if len(tasks) > 0 {
		var err error
		data, err = json.MarshalIndent(tasks, "", "    ")
		if err != nil {
			return fmt.Errorf("%w: encode tasks: %w", ErrorStorage, err)
		}
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: write tasks tmp: %w", ErrorStorage, err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: rename tasks file: %w", ErrorStorage, err)
	}

	r.tasks = tasks
	r.nextID = int64(len(tasks)) + 1
	return nil
}

func (r *JSONTaskRepo) Create(_ context.Context, t model.Task) (model.Task, error) {
	if !t.IsNew() {
		return t, fmt.Errorf("%w: task already has id %d", ErrorInvalidTask, t.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t.ID = r.nextID
	next := clone(r.tasks)
	if i := indexOf(next, t.ID); i >= 0 {
		r.logger.Warn("Assigned id collides with an existing task, replacing it",
			zap.Int64("task_id", t.ID), zap.String("replaced_title", next[i].Title))
		next[i] = t
	} else {
		next = append(next, t)
	}

	if err := r.save(next); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

func (r *JSONTaskRepo) Get(_ context.Context, id int64) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := indexOf(r.tasks, id)
	if i < 0 {
		return model.Task{}, fmt.Errorf("%w: task %d", ErrorNotFound, id)
	}
	return r.tasks[i], nil
}

func (r *JSONTaskRepo) Update(_ context.Context, id int64, patch model.TaskPatch) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := indexOf(r.tasks, id)
	if i < 0 {
		return model.Task{}, fmt.Errorf("%w: task %d", ErrorNotFound, id)
	}

	next := clone(r.tasks)
	next[i] = patch.Apply(next[i])
	if err := r.save(next); err != nil {
		return model.Task{}, err
	}
	return next[i], nil
}

func (r *JSONTaskRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := indexOf(r.tasks, id)
	if i < 0 {
		return fmt.Errorf("%w: task %d", ErrorNotFound, id)
	}

	next := make([]model.Task, 0, len(r.tasks)-1)
	next = append(next, r.tasks[:i]...)
	next = append(next, r.tasks[i+1:]...)
	return r.save(next)
}

func (r *JSONTaskRepo) List(_ context.Context) ([]model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return clone(r.tasks), nil
}

func (r *JSONTaskRepo) Filter(_ context.Context, f model.Filter) ([]model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tasks := make([]model.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		if f.Match(t) {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

func indexOf(tasks []model.Task, id int64) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func clone(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks), len(tasks)+1)
	copy(out, tasks)
	return out
}
