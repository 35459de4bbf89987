package report

import (
	"context"
	"fmt"
	"time"

	"github.com/harrisonrobin/taskboard/pkg/config"
	"github.com/harrisonrobin/taskboard/pkg/model"
	"github.com/harrisonrobin/taskboard/pkg/overdue"
	"github.com/harrisonrobin/taskboard/pkg/pipeline"
	"github.com/harrisonrobin/taskboard/pkg/sheet"
	"github.com/sourcegraph/conc/pool"
)

// maxParallel bounds concurrent tab fetches.
const maxParallel = 4

// StatusCount is the number of tasks carrying one status value.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type TabSummary struct {
	Tab      config.Tab    `json:"tab"`
	Total    int           `json:"total"`
	Overdue  int           `json:"overdue"`
	ByStatus []StatusCount `json:"byStatus"`
}

// Summarize fetches every tab concurrently and returns one summary per tab in
// the order given. The first failure cancels the rest and is returned.
func Summarize(ctx context.Context, src sheet.Source, tabs []config.Tab, now time.Time) ([]TabSummary, error) {
	table := overdue.NewTable(nil)
	p := pool.NewWithResults[indexed]().
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError().
		WithMaxGoroutines(maxParallel)

	for i, tab := range tabs {
		p.Go(func(ctx context.Context) (indexed, error) {
			tasks, err := src.FetchTab(ctx, tab.GID)
			if err != nil {
				return indexed{}, fmt.Errorf("tab '%s': %w", tab.Name, err)
			}
			return indexed{i: i, summary: summarize(tab, tasks, table, now)}, nil
		})
	}

	results, err := p.Wait()
	if err != nil {
		return nil, err
	}
	out := make([]TabSummary, len(tabs))
	for _, r := range results {
		out[r.i] = r.summary
	}
	return out, nil
}

type indexed struct {
	i       int
	summary TabSummary
}

func summarize(tab config.Tab, tasks []model.Task, table *overdue.Table, now time.Time) TabSummary {
	s := TabSummary{
		Tab:     tab,
		Total:   len(tasks),
		Overdue: len(table.Sweep(tasks, now)),
	}
	counts := make(map[string]int)
	for _, t := range tasks {
		counts[t.Status]++
	}
	for _, status := range pipeline.Options(tasks, model.KeyStatus) {
		s.ByStatus = append(s.ByStatus, StatusCount{Status: status, Count: counts[status]})
	}
	if n := counts[""]; n > 0 {
		s.ByStatus = append(s.ByStatus, StatusCount{Status: "", Count: n})
	}
	return s
}
