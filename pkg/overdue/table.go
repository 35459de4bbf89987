package overdue

import (
	"math"
	"time"

	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/thaidate"
)

// Entry is a task whose deadline has passed without a sent date.
type Entry struct {
	Task     model.Task
	Deadline time.Time
}

// DaysLate counts whole calendar days between the deadline and now.
func (e Entry) DaysLate(now time.Time) int {
	return int(math.Round(startOfDay(now).Sub(e.Deadline).Hours() / 24))
}

type Table struct {
	dates *thaidate.Parser
}

// NewTable returns a checker reading deadlines with p. A nil parser uses the
// Thai month table.
func NewTable(p *thaidate.Parser) *Table {
	if p == nil {
		p = thaidate.NewParser()
	}
	return &Table{dates: p}
}

// IsOverdue reports whether t was due before today and never sent. Tasks
// with unreadable deadlines are never overdue.
func (t *Table) IsOverdue(task model.Task, now time.Time) bool {
	_, ok := t.Lookup(task, now)
	return ok
}

// Lookup returns the overdue entry for task, if it is overdue.
func (t *Table) Lookup(task model.Task, now time.Time) (Entry, bool) {
	if task.SentDate != "" {
		return Entry{}, false
	}
	d, ok := t.dates.ParseCalendar(task.Deadline)
	if !ok {
		return Entry{}, false
	}
	deadline := d.Time()
	if !deadline.Before(startOfDay(now)) {
		return Entry{}, false
	}
	return Entry{Task: task, Deadline: deadline}, true
}

// Sweep returns the overdue tasks in input order.
func (t *Table) Sweep(tasks []model.Task, now time.Time) []Entry {
	var swept []Entry
	for _, task := range tasks {
		if e, ok := t.Lookup(task, now); ok {
			swept = append(swept, e)
		}
	}
	return swept
}

func startOfDay(t time.Time) time.Time {
	t = t.In(time.Local)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}
