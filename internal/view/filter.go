// Package view computes derived projections of a task snapshot: filtered,
// sorted and paginated lists, date buckets and calendar months. Nothing in
// this package mutates the input collection.
package view

import (
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/tasklane/internal/clierr"
	"github.com/twiced-technology-gmbh/tasklane/internal/task"
)

// Status restricts tasks by completion.
type Status string

// Completion filters.
const (
	StatusAll       Status = ""
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// ParseStatus validates a completion filter. "all" and "" both mean no filter.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return StatusAll, nil
	case string(StatusActive):
		return StatusActive, nil
	case string(StatusCompleted), "done":
		return StatusCompleted, nil
	}
	return StatusAll, clierr.Newf(clierr.InvalidInput, "invalid status %q", s).
		WithDetails(map[string]any{
			"status":  s,
			"allowed": []string{"all", string(StatusActive), string(StatusCompleted)},
		})
}

// Matches reports whether completed satisfies the status filter.
func (s Status) Matches(completed bool) bool {
	switch s {
	case StatusActive:
		return !completed
	case StatusCompleted:
		return completed
	default:
		return true
	}
}

// FilterOptions defines which tasks to include.
type FilterOptions struct {
	Search  string // case-insensitive substring match across title and description
	Status  Status
	Tag     string // tag ID
	Overdue bool   // only overdue tasks
}

// Active reports whether any predicate is set.
func (o FilterOptions) Active() bool {
	return o.Search != "" || o.Status != StatusAll || o.Tag != "" || o.Overdue
}

// Filter returns tasks matching all specified criteria (AND logic). The
// result is a new slice; tasks keeps its order.
func Filter(tasks []*task.Task, opts FilterOptions, now time.Time) []*task.Task {
	result := make([]*task.Task, 0, len(tasks))
	for _, t := range tasks {
		if matches(t, opts, now) {
			result = append(result, t)
		}
	}
	return result
}

func matches(t *task.Task, opts FilterOptions, now time.Time) bool {
	if opts.Search != "" && !matchesSearch(t, opts.Search) {
		return false
	}
	if !opts.Status.Matches(t.Completed) {
		return false
	}
	if opts.Tag != "" && !t.HasTag(opts.Tag) {
		return false
	}
	if opts.Overdue && !t.IsOverdue(now) {
		return false
	}
	return true
}

func matchesSearch(t *task.Task, query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(t.Title), q) {
		return true
	}
	return t.Description != "" && strings.Contains(strings.ToLower(t.Description), q)
}
