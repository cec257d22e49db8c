package repo

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/daily-tasks/internal/model"
)

func ptr[T any](v T) *T { return &v }

// runContractTests exercises the behaviour every backend shares. newRepo must
// return an empty repository.
func runContractTests(t *testing.T, newRepo func(t *testing.T) TaskRepository) {
	ctx := context.Background()

	t.Run("create then get returns equal task", func(t *testing.T) {
		r := newRepo(t)

		created, err := r.Create(ctx, model.Task{Title: "Buy milk", Description: "2%"})
		require.NoError(t, err)
		require.NotZero(t, created.ID)

		got, err := r.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, got)
		assert.Equal(t, model.Task{ID: created.ID, Title: "Buy milk", Description: "2%"}, got)
	})

	t.Run("create rejects task with id", func(t *testing.T) {
		r := newRepo(t)

		_, err := r.Create(ctx, model.Task{ID: 7, Title: "x"})
		assert.ErrorIs(t, err, ErrorInvalidTask)

		tasks, err := r.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("missing id is not found", func(t *testing.T) {
		r := newRepo(t)
		_, err := r.Create(ctx, model.Task{Title: "only"})
		require.NoError(t, err)

		_, err = r.Get(ctx, 999)
		assert.ErrorIs(t, err, ErrorNotFound)

		_, err = r.Update(ctx, 999, model.TaskPatch{Title: ptr("nope")})
		assert.ErrorIs(t, err, ErrorNotFound)

		_, err = r.Update(ctx, 999, model.TaskPatch{})
		assert.ErrorIs(t, err, ErrorNotFound)

		err = r.Delete(ctx, 999)
		assert.ErrorIs(t, err, ErrorNotFound)
	})

	t.Run("update changes only supplied fields", func(t *testing.T) {
		r := newRepo(t)
		created, err := r.Create(ctx, model.Task{Title: "Write report", Description: "Q3"})
		require.NoError(t, err)

		tests := []struct {
			name  string
			patch model.TaskPatch
			want  model.Task
		}{
			{
				name:  "title",
				patch: model.TaskPatch{Title: ptr("Write Q3 report")},
				want:  model.Task{ID: created.ID, Title: "Write Q3 report", Description: "Q3"},
			},
			{
				name:  "completed",
				patch: model.TaskPatch{Completed: ptr(true)},
				want:  model.Task{ID: created.ID, Title: "Write Q3 report", Description: "Q3", Completed: true},
			},
			{
				name:  "description",
				patch: model.TaskPatch{Description: ptr("")},
				want:  model.Task{ID: created.ID, Title: "Write Q3 report", Completed: true},
			},
			{
				name:  "empty patch",
				patch: model.TaskPatch{},
				want:  model.Task{ID: created.ID, Title: "Write Q3 report", Completed: true},
			},
		}

		for _, tt := range tests {
			updated, err := r.Update(ctx, created.ID, tt.patch)
			require.NoError(t, err, tt.name)
			assert.Equal(t, tt.want, updated, tt.name)

			got, err := r.Get(ctx, created.ID)
			require.NoError(t, err, tt.name)
			assert.Equal(t, tt.want, got, tt.name)
		}
	})

	t.Run("list keeps insertion order", func(t *testing.T) {
		r := newRepo(t)
		for i := 1; i <= 3; i++ {
			_, err := r.Create(ctx, model.Task{Title: fmt.Sprintf("Task %d", i)})
			require.NoError(t, err)
		}

		tasks, err := r.List(ctx)
		require.NoError(t, err)
		require.Len(t, tasks, 3)
		assert.Equal(t, "Task 1", tasks[0].Title)
		assert.Equal(t, "Task 2", tasks[1].Title)
		assert.Equal(t, "Task 3", tasks[2].Title)
	})

	t.Run("empty store lists nothing", func(t *testing.T) {
		r := newRepo(t)
		tasks, err := r.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, tasks)

		tasks, err = r.Filter(ctx, model.FilterCompleted)
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("filters partition the list", func(t *testing.T) {
		r := newRepo(t)
		for i := 1; i <= 6; i++ {
			_, err := r.Create(ctx, model.Task{Title: fmt.Sprintf("Task %d", i), Completed: i%3 == 0})
			require.NoError(t, err)
		}

		all, err := r.List(ctx)
		require.NoError(t, err)

		filtered, err := r.Filter(ctx, model.FilterAll)
		require.NoError(t, err)
		assert.Equal(t, all, filtered)

		active, err := r.Filter(ctx, model.FilterActive)
		require.NoError(t, err)
		completed, err := r.Filter(ctx, model.FilterCompleted)
		require.NoError(t, err)

		assert.Len(t, active, 4)
		assert.Len(t, completed, 2)
		for _, task := range active {
			assert.False(t, task.Completed)
		}
		for _, task := range completed {
			assert.True(t, task.Completed)
		}

		// Merging the two halves by list position rebuilds the list exactly.
		var merged []model.Task
		ai, ci := 0, 0
		for _, task := range all {
			switch {
			case ai < len(active) && active[ai].ID == task.ID:
				merged = append(merged, active[ai])
				ai++
			case ci < len(completed) && completed[ci].ID == task.ID:
				merged = append(merged, completed[ci])
				ci++
			}
		}
		assert.Equal(t, all, merged)
	})

	t.Run("delete removes exactly one task", func(t *testing.T) {
		r := newRepo(t)
		first, err := r.Create(ctx, model.Task{Title: "Buy milk", Description: "2%"})
		require.NoError(t, err)
		second, err := r.Create(ctx, model.Task{Title: "Walk dog"})
		require.NoError(t, err)

		require.NoError(t, r.Delete(ctx, first.ID))

		tasks, err := r.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []model.Task{second}, tasks)

		_, err = r.Get(ctx, first.ID)
		assert.ErrorIs(t, err, ErrorNotFound)
	})

	t.Run("complete scenario", func(t *testing.T) {
		r := newRepo(t)
		first, err := r.Create(ctx, model.Task{Title: "Buy milk", Description: "2%"})
		require.NoError(t, err)
		second, err := r.Create(ctx, model.Task{Title: "Call mom"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), first.ID)
		assert.Equal(t, int64(2), second.ID)

		_, err = r.Update(ctx, first.ID, model.TaskPatch{Completed: ptr(true)})
		require.NoError(t, err)

		completed, err := r.Filter(ctx, model.FilterCompleted)
		require.NoError(t, err)
		assert.Equal(t, []model.Task{{ID: 1, Title: "Buy milk", Description: "2%", Completed: true}}, completed)

		active, err := r.Filter(ctx, model.FilterActive)
		require.NoError(t, err)
		assert.Equal(t, []model.Task{second}, active)

		require.NoError(t, r.Delete(ctx, first.ID))
		tasks, err := r.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []model.Task{second}, tasks)
	})
}
