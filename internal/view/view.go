package view

import (
	"time"

	"github.com/twiced-technology-gmbh/tasklane/internal/task"
)

// DefaultPageSize is used when no page size is configured.
const DefaultPageSize = 10

// Options is the complete configuration of a derived list.
type Options struct {
	Filter    FilterOptions
	Sort      SortKey
	Direction Direction
	Page      int
	PageSize  int
}

// DefaultOptions returns the first page sorted by due date ascending.
func DefaultOptions() Options {
	return Options{Sort: SortDueDate, Direction: Asc, Page: 1, PageSize: DefaultPageSize}
}

// Apply filters, sorts and paginates tasks, strictly in that order.
func Apply(tasks []*task.Task, opts Options, now time.Time) (Page, error) {
	matched := Filter(tasks, opts.Filter, now)
	if opts.Sort != "" {
		matched = Sort(matched, opts.Sort, opts.Direction)
	}
	return Paginate(matched, opts.Page, opts.PageSize)
}

// Count returns the number of tasks matching the filter, and the resulting
// number of pages at the given size.
func Count(tasks []*task.Task, opts Options, now time.Time) (total, pages int) {
	total = len(Filter(tasks, opts.Filter, now))
	return total, TotalPages(total, opts.PageSize)
}
