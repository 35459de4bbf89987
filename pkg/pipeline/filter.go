package pipeline

import (
	"github.com/harrisonrobin/taskboard/pkg/model"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Filter keeps the tasks matching f, in order.
func Filter(tasks []model.Task, f model.Filter) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Options lists the distinct non-empty values of key, in Thai collation order.
func Options(tasks []model.Task, key model.SortKey) []string {
	seen := make(map[string]bool)
	var values []string
	for _, t := range tasks {
		v := t.Field(key)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	collate.New(language.Thai).SortStrings(values)
	return values
}
