package view

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/pipeline"
)

// Generation identifies one load request. Only the latest one may write.
type Generation uint64

// ErrNoSuchRow is returned when selecting outside the visible page.
var ErrNoSuchRow = errors.New("no such row on this page")

// Controller owns the dashboard state: the loaded tasks, the sort column,
// filters, current page and selection. Every update reads and replaces state
// under one write lock so readers never see a half-applied change.
type Controller struct {
	mu       sync.RWMutex
	sorter   *pipeline.Sorter
	pageSize int

	gen     Generation
	tab     string
	loading bool
	err     error

	tasks   []model.Task
	visible []model.Task
	options map[model.SortKey][]string

	sort     model.SortConfig
	filter   model.Filter
	page     int
	selected *model.Task
}

// NewController creates an empty controller. pageSize below 1 uses the default.
func NewController(sorter *pipeline.Sorter, pageSize int) *Controller {
	if sorter == nil {
		sorter = pipeline.NewSorter(nil)
	}
	if pageSize < 1 {
		pageSize = pipeline.DefaultPageSize
	}
	return &Controller{
		sorter:   sorter,
		pageSize: pageSize,
		sort:     model.DefaultSort(),
		page:     1,
		visible:  []model.Task{},
		options:  map[model.SortKey][]string{},
	}
}

// BeginLoad starts loading tab and returns the token the result must carry.
// Any load still in flight becomes stale.
func (c *Controller) BeginLoad(tab string) Generation {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.tab = tab
	c.loading = true
	c.err = nil
	c.selected = nil
	return c.gen
}

// CompleteLoad applies a load result. It returns false and changes nothing
// when gen is not the latest generation.
func (c *Controller) CompleteLoad(gen Generation, tasks []model.Task, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.loading = false
	c.page = 1
	c.filter = model.Filter{}
	c.selected = nil
	if err != nil {
		c.err = err
		c.tasks = nil
	} else {
		c.err = nil
		c.tasks = tasks
	}
	c.options = make(map[model.SortKey][]string, len(model.FilterKeys))
	for _, k := range model.FilterKeys {
		c.options[k] = pipeline.Options(c.tasks, k)
	}
	c.refresh()
	return true
}

// IsCurrent reports whether gen is still the latest request.
func (c *Controller) IsCurrent(gen Generation) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return gen == c.gen
}

// ToggleSort flips the direction when key is already sorted ascending and
// otherwise sorts ascending by key.
func (c *Controller) ToggleSort(key model.SortKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	dir := model.Ascending
	if c.sort.Key == key && c.sort.Direction == model.Ascending {
		dir = model.Descending
	}
	c.sort = model.SortConfig{Key: key, Direction: dir}
	c.page = 1
	c.refresh()
}

// SetSort replaces the sort config outright.
func (c *Controller) SetSort(cfg model.SortConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sort = cfg
	c.page = 1
	c.refresh()
}

// SetFilter constrains one filterable field. An empty value clears it.
func (c *Controller) SetFilter(key model.SortKey, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setFilter(key, value)
}

// CycleFilter moves a filter to the next option, wrapping back to "any".
func (c *Controller) CycleFilter(key model.SortKey) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	opts := c.options[key]
	current := c.filter.Get(key)
	next := ""
	if i := slices.Index(opts, current); i+1 < len(opts) {
		next = opts[i+1]
	}
	return c.setFilter(key, next)
}

func (c *Controller) setFilter(key model.SortKey, value string) error {
	f, err := c.filter.With(key, value)
	if err != nil {
		return err
	}
	c.filter = f
	c.page = 1
	c.refresh()
	return nil
}

func (c *Controller) ResetFilters() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = model.Filter{}
	c.page = 1
	c.refresh()
}

// SetPage moves to page n, clamped to the available pages.
func (c *Controller) SetPage(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setPage(n)
}

func (c *Controller) NextPage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setPage(c.page + 1)
}

func (c *Controller) PrevPage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setPage(c.page - 1)
}

func (c *Controller) setPage(n int) {
	c.page = pipeline.ClampPage(n, pipeline.TotalPages(len(c.visible), c.pageSize))
	c.selected = nil
}

// Select marks the i-th row (0-based) of the current page.
func (c *Controller) Select(i int) (model.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rows := pipeline.Paginate(c.visible, c.page, c.pageSize)
	if i < 0 || i >= len(rows) {
		return model.Task{}, fmt.Errorf("select row %d: %w", i+1, ErrNoSuchRow)
	}
	t := rows[i]
	c.selected = &t
	return t, nil
}

func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = nil
}

// refresh recomputes the filtered, sorted list. Callers hold the write lock.
func (c *Controller) refresh() {
	c.visible = c.sorter.Sort(pipeline.Filter(c.tasks, c.filter), c.sort)
}

// State is a read-only copy of the controller for rendering.
type State struct {
	Tab        string
	Loading    bool
	Err        error
	Sort       model.SortConfig
	Filter     model.Filter
	Options    map[model.SortKey][]string
	Page       int
	PageSize   int
	TotalPages int
	Total      int
	Loaded     int
	Rows       []model.Task
	Selected   *model.Task
}

// Snapshot copies the current state. While an error is set Rows is empty.
func (c *Controller) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := State{
		Tab:        c.tab,
		Loading:    c.loading,
		Err:        c.err,
		Sort:       c.sort,
		Filter:     c.filter,
		Options:    make(map[model.SortKey][]string, len(c.options)),
		Page:       c.page,
		PageSize:   c.pageSize,
		TotalPages: pipeline.TotalPages(len(c.visible), c.pageSize),
		Total:      len(c.visible),
		Loaded:     len(c.tasks),
		Rows:       []model.Task{},
	}
	for k, v := range c.options {
		s.Options[k] = append([]string(nil), v...)
	}
	if c.err == nil {
		s.Rows = append(s.Rows, pipeline.Paginate(c.visible, c.page, c.pageSize)...)
	}
	if c.selected != nil {
		t := *c.selected
		s.Selected = &t
	}
	return s
}

// Visible returns every task that passes the filters, in sort order.
func (c *Controller) Visible() []model.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Task(nil), c.visible...)
}
