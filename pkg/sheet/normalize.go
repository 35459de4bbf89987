package sheet

import "github.com/harrisonrobin/taskboard/pkg/model"

// CellText prefers the formatted string, then the raw value, then "".
func CellText(c *Cell) string {
	if c == nil {
		return ""
	}
	if c.F != nil {
		return *c.F
	}
	return stringify(c.V)
}

// RawText ignores formatting and renders the raw value.
func RawText(c *Cell) string {
	if c == nil {
		return ""
	}
	return stringify(c.V)
}

// IsBlank reports whether a row is a spacer: no first cell, or a first cell
// without a raw value and without a formatted string.
func IsBlank(r Row) bool {
	if len(r.C) == 0 || r.C[0] == nil {
		return true
	}
	first := r.C[0]
	return stringify(first.V) == "" && (first.F == nil || *first.F == "")
}

// Normalize drops blank rows, then the header row, and converts what is left
// into tasks in sheet order.
func Normalize(rows []Row) []model.Task {
	kept := make([]Row, 0, len(rows))
	for _, r := range rows {
		if !IsBlank(r) {
			kept = append(kept, r)
		}
	}
	if len(kept) <= 1 {
		return []model.Task{}
	}

	tasks := make([]model.Task, 0, len(kept)-1)
	for _, r := range kept[1:] {
		tasks = append(tasks, ParseTask(r))
	}
	return tasks
}

// ParseTask maps the first ten cells of a row onto a task. Date columns use
// the formatted text so Thai rendering survives.
func ParseTask(r Row) model.Task {
	cell := func(i int) *Cell {
		if i < len(r.C) {
			return r.C[i]
		}
		return nil
	}
	return model.Task{
		Date:     CellText(cell(0)),
		ID:       RawText(cell(1)),
		Status:   RawText(cell(2)),
		WorkType: RawText(cell(3)),
		Details:  RawText(cell(4)),
		Owner:    RawText(cell(5)),
		Deadline: CellText(cell(6)),
		SentDate: CellText(cell(7)),
		Round:    RawText(cell(8)),
		FileLink: RawText(cell(9)),
	}
}
