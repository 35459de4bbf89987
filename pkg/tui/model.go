package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	charmlog "github.com/charmbracelet/log"
	"github.com/harrisonrobin/taskboard/pkg/colors"
	"github.com/harrisonrobin/taskboard/pkg/config"
	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/overdue"
	"github.com/harrisonrobin/taskboard/pkg/sheet"
	"github.com/harrisonrobin/taskboard/pkg/view"
)

// loadedMsg carries a fetch result back with the generation it was started as.
type loadedMsg struct {
	gen   view.Generation
	tasks []model.Task
	err   error
}

type column struct {
	key   model.SortKey
	width int
}

var columns = []column{
	{model.KeyDate, 12},
	{model.KeyID, 8},
	{model.KeyStatus, 14},
	{model.KeyWorkType, 14},
	{model.KeyDetails, 28},
	{model.KeyOwner, 12},
	{model.KeyDeadline, 14},
	{model.KeySentDate, 12},
	{model.KeyRound, 6},
}

type Options struct {
	Logger  *charmlog.Logger
	Colors  *colors.ColorCache
	Overdue *overdue.Table
	Now     func() time.Time
}

// Model is the Bubble Tea dashboard. It renders whatever the view
// controller holds and turns key presses into controller calls.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	ctrl   *view.Controller
	src    sheet.Source
	tabs   []config.Tab
	active int

	table   table.Model
	spinner spinner.Model
	keys    KeyMap
	styles  Styles

	colors  *colors.ColorCache
	overdue *overdue.Table
	now     func() time.Time
	log     *charmlog.Logger

	width int
}

func New(ctx context.Context, ctrl *view.Controller, src sheet.Source, tabs []config.Tab, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = charmlog.Default()
	}
	if opts.Colors == nil {
		opts.Colors, _ = colors.NewColorCache("")
	}
	if opts.Overdue == nil {
		opts.Overdue = overdue.NewTable(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	t := table.New(
		table.WithFocused(true),
		table.WithHeight(ctrl.Snapshot().PageSize+2),
	)
	t.SetStyles(tableStyles())

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(Primary)

	m := &Model{
		ctx:     ctx,
		ctrl:    ctrl,
		src:     src,
		tabs:    tabs,
		table:   t,
		spinner: sp,
		keys:    DefaultKeyMap(),
		styles:  DefaultStyles(),
		colors:  opts.Colors,
		overdue: opts.Overdue,
		now:     opts.Now,
		log:     opts.Logger,
	}
	m.syncTable()
	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load())
}

// load cancels any fetch in flight and starts one for the active tab.
func (m *Model) load() tea.Cmd {
	if len(m.tabs) == 0 {
		return nil
	}
	if m.cancel != nil {
		m.cancel()
	}
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel

	tab := m.tabs[m.active]
	gen := m.ctrl.BeginLoad(tab.GID)
	m.syncTable()
	m.log.Info("loading tab", "name", tab.Name, "gid", tab.GID, "generation", gen)

	src, ctrl := m.src, m.ctrl
	return func() tea.Msg {
		if !ctrl.IsCurrent(gen) {
			return loadedMsg{gen: gen, err: context.Canceled}
		}
		tasks, err := src.FetchTab(ctx, tab.GID)
		return loadedMsg{gen: gen, tasks: tasks, err: err}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.table.SetWidth(min(msg.Width, tableWidth()+2*len(columns)))
		return m, nil

	case loadedMsg:
		if !m.ctrl.CompleteLoad(msg.gen, msg.tasks, msg.err) {
			m.log.Debug("dropping stale result", "generation", msg.gen)
			return m, nil
		}
		if msg.err != nil {
			m.log.Error("load failed", "err", msg.err)
		} else {
			m.colors.Seed(m.ctrl.Snapshot().Options[model.KeyStatus])
		}
		m.table.SetCursor(0)
		m.syncTable()
		return m, nil

	case spinner.TickMsg:
		if !m.ctrl.Snapshot().Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit
	}

	state := m.ctrl.Snapshot()
	if state.Selected != nil {
		if key.Matches(msg, m.keys.Close) {
			m.ctrl.ClearSelection()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.NextTab):
		return m.switchTab(1)
	case key.Matches(msg, m.keys.PrevTab):
		return m.switchTab(-1)
	case key.Matches(msg, m.keys.Reload):
		return m, tea.Batch(m.load(), m.spinner.Tick)
	case key.Matches(msg, m.keys.NextPage):
		m.ctrl.NextPage()
	case key.Matches(msg, m.keys.PrevPage):
		m.ctrl.PrevPage()
	case key.Matches(msg, m.keys.Open):
		if _, err := m.ctrl.Select(m.table.Cursor()); err != nil {
			m.log.Debug("nothing to open", "err", err)
		}
		return m, nil
	case key.Matches(msg, m.keys.Status):
		m.cycleFilter(model.KeyStatus)
	case key.Matches(msg, m.keys.Owner):
		m.cycleFilter(model.KeyOwner)
	case key.Matches(msg, m.keys.WorkType):
		m.cycleFilter(model.KeyWorkType)
	case key.Matches(msg, m.keys.ResetFilter):
		m.ctrl.ResetFilters()
	default:
		for i, b := range m.keys.Sort {
			if key.Matches(msg, b) {
				m.ctrl.ToggleSort(model.Keys[i])
				m.table.SetCursor(0)
				m.syncTable()
				return m, nil
			}
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	m.table.SetCursor(0)
	m.syncTable()
	return m, nil
}

func (m *Model) switchTab(step int) (tea.Model, tea.Cmd) {
	if len(m.tabs) == 0 {
		return m, nil
	}
	m.active = (m.active + step + len(m.tabs)) % len(m.tabs)
	return m, tea.Batch(m.load(), m.spinner.Tick)
}

func (m *Model) cycleFilter(k model.SortKey) {
	if err := m.ctrl.CycleFilter(k); err != nil {
		m.log.Warn("filter", "key", k, "err", err)
	}
}

// syncTable copies the controller's current page into the table widget.
func (m *Model) syncTable() {
	state := m.ctrl.Snapshot()

	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		title := c.key.Label()
		if state.Sort.Key == c.key {
			if state.Sort.Direction == model.Descending {
				title += " ▼"
			} else {
				title += " ▲"
			}
		}
		cols[i] = table.Column{Title: title, Width: c.width}
	}
	m.table.SetColumns(cols)

	now := m.now()
	rows := make([]table.Row, len(state.Rows))
	for i, t := range state.Rows {
		late := m.overdue.IsOverdue(t, now)
		row := make(table.Row, len(columns))
		for j, c := range columns {
			row[j] = t.Field(c.key)
			if late && c.key == model.KeyDeadline {
				row[j] = "! " + row[j]
			}
		}
		rows[i] = row
	}
	m.table.SetRows(rows)
}

func tableWidth() int {
	w := 0
	for _, c := range columns {
		w += c.width
	}
	return w
}

func (m *Model) View() string {
	state := m.ctrl.Snapshot()
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Work Checklist"))
	b.WriteString("\n")
	b.WriteString(m.styles.Subtitle.Render("Live data from your Google Sheet"))
	b.WriteString("\n\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	b.WriteString(m.renderFilters(state))
	b.WriteString("\n\n")

	switch {
	case state.Selected != nil:
		b.WriteString(m.renderDetail(*state.Selected))
	case state.Loading:
		b.WriteString(m.spinner.View() + " Loading…")
	case state.Err != nil:
		b.WriteString(m.styles.Error.Render(sheet.UserMessage(state.Err)))
	case len(state.Rows) == 0:
		b.WriteString(m.styles.Empty.Render("No data found for this tab."))
	default:
		b.WriteString(m.table.View())
		b.WriteString("\n")
		b.WriteString(m.styles.Footer.Render(fmt.Sprintf("Page %d of %d · %d tasks", state.Page, state.TotalPages, state.Total)))
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m *Model) renderTabs() string {
	parts := make([]string, len(m.tabs))
	for i, t := range m.tabs {
		if i == m.active {
			parts[i] = m.styles.ActiveTab.Render(t.Name)
		} else {
			parts[i] = m.styles.Tab.Render(t.Name)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderFilters(state view.State) string {
	parts := make([]string, 0, len(model.FilterKeys))
	for _, k := range model.FilterKeys {
		v := state.Filter.Get(k)
		label := k.Label() + ": "
		if v == "" {
			parts = append(parts, m.styles.Filter.Render(label+"all"))
			continue
		}
		chip := m.colors.Style(v).Render(v)
		parts = append(parts, m.styles.Filter.Render(label)+chip)
	}
	return strings.Join(parts, m.styles.Filter.Render("  │  "))
}

func (m *Model) renderDetail(t model.Task) string {
	var b strings.Builder
	for _, k := range model.Keys {
		v := t.Field(k)
		if v == "" {
			v = "-"
		}
		if k == model.KeyStatus && t.Status != "" {
			v = m.colors.Style(t.Status).Render(v)
		}
		b.WriteString(m.styles.Label.Render(k.Label()))
		b.WriteString(v)
		b.WriteString("\n")
	}
	now := m.now()
	if e, ok := m.overdue.Lookup(t, now); ok {
		msg := fmt.Sprintf("Overdue by %d days: nothing sent yet", e.DaysLate(now))
		b.WriteString(lipgloss.NewStyle().Foreground(Danger).Render(msg))
		b.WriteString("\n")
	}
	return m.styles.Detail.Render(strings.TrimRight(b.String(), "\n"))
}

func (m *Model) renderHelp() string {
	var parts []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	parts = append(parts, "1-0 sort")
	return m.styles.Help.Render(strings.Join(parts, " • "))
}

// Close stops any fetch in flight and saves the colour cache.
func (m *Model) Close() error {
	if m.cancel != nil {
		m.cancel()
	}
	return m.colors.Save()
}
