package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/harrisonrobin/taskboard/pkg/colors"
	"github.com/harrisonrobin/taskboard/pkg/config"
	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/overdue"
	"github.com/harrisonrobin/taskboard/pkg/report"
	"github.com/harrisonrobin/taskboard/pkg/view"
)

// listKeys are the columns printed by list. The file link only shows in show.
var listKeys = []model.SortKey{
	model.KeyDate, model.KeyID, model.KeyStatus, model.KeyWorkType, model.KeyDetails,
	model.KeyOwner, model.KeyDeadline, model.KeySentDate, model.KeyRound,
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	lateStyle   = cellStyle.Foreground(lipgloss.Color("203"))
	mutedStyle  = lipgloss.NewStyle().Foreground(colors.Muted)
)

type listOutput struct {
	Tab        config.Tab       `json:"tab"`
	Sort       model.SortConfig `json:"sort"`
	Filter     model.Filter     `json:"filter"`
	Page       int              `json:"page"`
	TotalPages int              `json:"totalPages"`
	Total      int              `json:"total"`
	Tasks      []model.Task     `json:"tasks"`
}

func pageJSON(tab config.Tab, s view.State) listOutput {
	return listOutput{
		Tab:        tab,
		Sort:       s.Sort,
		Filter:     s.Filter,
		Page:       s.Page,
		TotalPages: s.TotalPages,
		Total:      s.Total,
		Tasks:      s.Rows,
	}
}

func newTable() *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle)
}

func renderPage(w io.Writer, tab config.Tab, s view.State, palette *colors.ColorCache, late *overdue.Table, now time.Time) {
	if s.Total == 0 {
		fmt.Fprintln(w, "No data found for this tab.")
		return
	}

	headers := []string{"#"}
	statusCol := 0
	for i, k := range listKeys {
		h := k.Label()
		if k == s.Sort.Key {
			if s.Sort.Direction == model.Descending {
				h += " ▼"
			} else {
				h += " ▲"
			}
		}
		if k == model.KeyStatus {
			statusCol = i + 1
		}
		headers = append(headers, h)
	}

	first := (s.Page-1)*s.PageSize + 1
	rows := make([][]string, len(s.Rows))
	lateRows := make(map[int]bool)
	for i, t := range s.Rows {
		lateRows[i] = late.IsOverdue(t, now)
		row := []string{strconv.Itoa(first + i)}
		for _, k := range listKeys {
			v := t.Field(k)
			if lateRows[i] && k == model.KeyDeadline {
				v = "! " + v
			}
			row = append(row, v)
		}
		rows[i] = row
	}

	t := newTable().
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == statusCol && row < len(s.Rows):
				return palette.Style(s.Rows[row].Status).Padding(0, 1)
			case lateRows[row]:
				return lateStyle
			}
			return cellStyle
		})

	fmt.Fprintf(w, "%s\n", tab.Name)
	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("Page %d of %d · %d tasks", s.Page, s.TotalPages, s.Total)))
}

func renderTask(w io.Writer, t model.Task, late *overdue.Table, now time.Time) {
	label := lipgloss.NewStyle().Bold(true).Width(11)
	for _, k := range model.Keys {
		v := t.Field(k)
		if v == "" {
			v = mutedStyle.Render("-")
		}
		fmt.Fprintf(w, "%s %s\n", label.Render(k.Label()+":"), v)
	}
	if e, ok := late.Lookup(t, now); ok {
		msg := fmt.Sprintf("Overdue by %d days: nothing sent yet", e.DaysLate(now))
		fmt.Fprintln(w, lateStyle.UnsetPadding().Render(msg))
	}
}

func renderTabs(w io.Writer, tabs []config.Tab) {
	rows := make([][]string, len(tabs))
	for i, t := range tabs {
		rows[i] = []string{t.Name, t.GID}
	}
	t := newTable().
		Headers("Tab", "GID").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.Render())
}

func renderSummary(w io.Writer, sums []report.TabSummary, palette *colors.ColorCache) {
	rows := make([][]string, len(sums))
	for i, s := range sums {
		parts := make([]string, 0, len(s.ByStatus))
		for _, c := range s.ByStatus {
			name := c.Status
			if name == "" {
				name = "(none)"
			}
			parts = append(parts, palette.Style(c.Status).Render(name)+" "+strconv.Itoa(c.Count))
		}
		rows[i] = []string{s.Tab.Name, strconv.Itoa(s.Total), strconv.Itoa(s.Overdue), strings.Join(parts, ", ")}
	}
	t := newTable().
		Headers("Tab", "Tasks", "Overdue", "By status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 2 && row < len(sums) && sums[row].Overdue > 0:
				return lateStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.Render())
}
