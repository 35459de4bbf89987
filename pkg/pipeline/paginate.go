package pipeline

import "github.com/harrisonrobin/taskboard/pkg/model"

// DefaultPageSize is the number of rows shown per page.
const DefaultPageSize = 10

// TotalPages is ceil(count/pageSize), and 0 for an empty list.
func TotalPages(count, pageSize int) int {
	if count <= 0 || pageSize <= 0 {
		return 0
	}
	return (count + pageSize - 1) / pageSize
}

// ClampPage keeps page inside [1, totalPages]. With no pages it returns 1.
func ClampPage(page, totalPages int) int {
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}

// Paginate returns the 1-based page window of tasks. Pages outside the list
// give an empty slice, never an error.
func Paginate(tasks []model.Task, page, pageSize int) []model.Task {
	if page < 1 || pageSize < 1 {
		return []model.Task{}
	}
	start := (page - 1) * pageSize
	if start >= len(tasks) {
		return []model.Task{}
	}
	end := min(start+pageSize, len(tasks))
	return tasks[start:end:end]
}
