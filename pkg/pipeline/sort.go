package pipeline

import (
	"slices"
	"time"

	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/thaidate"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Sorter orders tasks. It is not safe for concurrent use because the
// collator keeps internal buffers.
type Sorter struct {
	dates    *thaidate.Parser
	collator *collate.Collator
}

// NewSorter returns a sorter that reads dates with p and compares text with
// Thai collation. A nil parser uses the Thai month table.
func NewSorter(p *thaidate.Parser) *Sorter {
	if p == nil {
		p = thaidate.NewParser()
	}
	return &Sorter{
		dates:    p,
		collator: collate.New(language.Thai),
	}
}

// Sort returns a sorted copy of tasks using a fresh Thai sorter.
func Sort(tasks []model.Task, cfg model.SortConfig) []model.Task {
	return NewSorter(nil).Sort(tasks, cfg)
}

// Sort returns a new slice. Ascending order is stable; descending order is
// the exact reverse of it, so tasks with equal keys come out in reverse input
// order and an unparseable date lands ahead of the parseable ones.
func (s *Sorter) Sort(tasks []model.Task, cfg model.SortConfig) []model.Task {
	out := slices.Clone(tasks)
	if out == nil {
		out = []model.Task{}
	}

	if cfg.Key.IsDate() {
		s.sortByDate(out, cfg.Key)
	} else {
		slices.SortStableFunc(out, func(a, b model.Task) int {
			return s.collator.CompareString(a.Field(cfg.Key), b.Field(cfg.Key))
		})
	}

	if cfg.Direction == model.Descending {
		slices.Reverse(out)
	}
	return out
}

type dated struct {
	task model.Task
	at   time.Time
	ok   bool
}

// sortByDate parses every value once up front. Parseable dates sort before
// unparseable ones; two unparseable values fall back to text order.
func (s *Sorter) sortByDate(tasks []model.Task, key model.SortKey) {
	keyed := make([]dated, len(tasks))
	for i, t := range tasks {
		at, ok := s.dates.ParseTime(t.Field(key))
		keyed[i] = dated{task: t, at: at, ok: ok}
	}

	slices.SortStableFunc(keyed, func(a, b dated) int {
		switch {
		case a.ok && b.ok:
			return a.at.Compare(b.at)
		case a.ok:
			return -1
		case b.ok:
			return 1
		}
		return s.collator.CompareString(a.task.Field(key), b.task.Field(key))
	})

	for i := range keyed {
		tasks[i] = keyed[i].task
	}
}
