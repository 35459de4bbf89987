package view

import (
	"fmt"
	"sync"
	"testing"

	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/sheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTasks(n int) []model.Task {
	tasks := make([]model.Task, n)
	for i := range tasks {
		tasks[i] = model.Task{
			ID:     fmt.Sprintf("T%02d", i),
			Date:   fmt.Sprintf("%d ม.ค. 68", i+1),
			Status: []string{"open", "done"}[i%2],
			Owner:  []string{"Ann", "Ben", "Cid"}[i%3],
		}
	}
	return tasks
}

func loaded(t *testing.T, n int) *Controller {
	t.Helper()
	c := NewController(nil, 10)
	gen := c.BeginLoad("0")
	require.True(t, c.CompleteLoad(gen, sampleTasks(n), nil))
	return c
}

func TestLoadLifecycle(t *testing.T) {
	c := NewController(nil, 0)
	gen := c.BeginLoad("111")
	s := c.Snapshot()
	assert.True(t, s.Loading)
	assert.Equal(t, "111", s.Tab)
	assert.Equal(t, 10, s.PageSize)

	require.True(t, c.CompleteLoad(gen, sampleTasks(25), nil))
	s = c.Snapshot()
	assert.False(t, s.Loading)
	assert.NoError(t, s.Err)
	assert.Equal(t, 25, s.Total)
	assert.Equal(t, 3, s.TotalPages)
	assert.Equal(t, 1, s.Page)
	assert.Len(t, s.Rows, 10)
	assert.Equal(t, []string{"Ann", "Ben", "Cid"}, s.Options[model.KeyOwner])
}

func TestStaleLoadIsDiscarded(t *testing.T) {
	c := NewController(nil, 10)
	first := c.BeginLoad("A")
	second := c.BeginLoad("B")

	assert.False(t, c.IsCurrent(first))
	assert.False(t, c.CompleteLoad(first, sampleTasks(3), nil))
	s := c.Snapshot()
	assert.True(t, s.Loading)
	assert.Equal(t, "B", s.Tab)
	assert.Zero(t, s.Loaded)

	assert.True(t, c.CompleteLoad(second, sampleTasks(5), nil))
	assert.Equal(t, 5, c.Snapshot().Loaded)

	// a late result from the first request must not overwrite the second
	assert.False(t, c.CompleteLoad(first, sampleTasks(9), nil))
	assert.Equal(t, 5, c.Snapshot().Loaded)
}

func TestLoadErrorClearsTasks(t *testing.T) {
	c := loaded(t, 12)
	gen := c.BeginLoad("bad")
	require.True(t, c.CompleteLoad(gen, nil, &sheet.FormatError{Reason: "missing table"}))

	s := c.Snapshot()
	require.Error(t, s.Err)
	assert.ErrorIs(t, s.Err, sheet.ErrSource)
	assert.Empty(t, s.Rows)
	assert.Zero(t, s.Loaded)

	gen = c.BeginLoad("good")
	assert.NoError(t, c.Snapshot().Err)
	require.True(t, c.CompleteLoad(gen, sampleTasks(2), nil))
	assert.Len(t, c.Snapshot().Rows, 2)
}

func TestToggleSort(t *testing.T) {
	c := loaded(t, 25)
	c.SetPage(3)
	require.Equal(t, 3, c.Snapshot().Page)

	c.ToggleSort(model.KeyDate)
	s := c.Snapshot()
	assert.Equal(t, model.SortConfig{Key: model.KeyDate, Direction: model.Descending}, s.Sort)
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, "T24", s.Rows[0].ID)

	c.ToggleSort(model.KeyDate)
	assert.Equal(t, model.Ascending, c.Snapshot().Sort.Direction)

	c.ToggleSort(model.KeyOwner)
	assert.Equal(t, model.SortConfig{Key: model.KeyOwner, Direction: model.Ascending}, c.Snapshot().Sort)
	c.ToggleSort(model.KeyDate)
	assert.Equal(t, model.SortConfig{Key: model.KeyDate, Direction: model.Ascending}, c.Snapshot().Sort)
}

func TestPaging(t *testing.T) {
	c := loaded(t, 25)
	c.NextPage()
	c.NextPage()
	c.NextPage()
	s := c.Snapshot()
	assert.Equal(t, 3, s.Page)
	assert.Len(t, s.Rows, 5)

	c.SetPage(-4)
	assert.Equal(t, 1, c.Snapshot().Page)
	c.PrevPage()
	assert.Equal(t, 1, c.Snapshot().Page)
}

func TestFilters(t *testing.T) {
	c := loaded(t, 25)
	c.SetPage(2)

	require.NoError(t, c.SetFilter(model.KeyStatus, "done"))
	s := c.Snapshot()
	assert.Equal(t, 12, s.Total)
	assert.Equal(t, 25, s.Loaded)
	assert.Equal(t, 1, s.Page)

	require.NoError(t, c.CycleFilter(model.KeyOwner))
	assert.Equal(t, "Ann", c.Snapshot().Filter.Owner)
	require.NoError(t, c.CycleFilter(model.KeyOwner))
	require.NoError(t, c.CycleFilter(model.KeyOwner))
	require.NoError(t, c.CycleFilter(model.KeyOwner))
	assert.Equal(t, "", c.Snapshot().Filter.Owner)

	assert.Error(t, c.SetFilter(model.KeyDetails, "x"))

	c.ResetFilters()
	assert.True(t, c.Snapshot().Filter.IsZero())
	assert.Equal(t, 25, c.Snapshot().Total)
}

func TestSelect(t *testing.T) {
	c := loaded(t, 12)
	c.SetPage(2)

	task, err := c.Select(1)
	require.NoError(t, err)
	assert.Equal(t, "T11", task.ID)
	require.NotNil(t, c.Snapshot().Selected)
	assert.Equal(t, "T11", c.Snapshot().Selected.ID)

	_, err = c.Select(2)
	assert.ErrorIs(t, err, ErrNoSuchRow)

	c.ClearSelection()
	assert.Nil(t, c.Snapshot().Selected)
}

func TestConcurrentPagingKeepsEveryStep(t *testing.T) {
	c := NewController(nil, 1)
	gen := c.BeginLoad("0")
	require.True(t, c.CompleteLoad(gen, sampleTasks(50), nil))

	var wg sync.WaitGroup
	for range 30 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.NextPage()
		}()
	}
	wg.Wait()
	assert.Equal(t, 31, c.Snapshot().Page)
}

func TestConcurrentCycleFilterVisitsEachOption(t *testing.T) {
	c := loaded(t, 9)

	var wg sync.WaitGroup
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.CycleFilter(model.KeyOwner))
		}()
	}
	wg.Wait()
	assert.Equal(t, "Cid", c.Snapshot().Filter.Owner)
}
