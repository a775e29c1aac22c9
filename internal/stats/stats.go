// Package stats aggregates counts over a task snapshot.
package stats

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/twiced-technology-gmbh/tasklane/internal/task"
)

// Stats summarizes a task collection.
type Stats struct {
	Total          int            `json:"total"`
	Completed      int            `json:"completed"`
	Active         int            `json:"active"`
	Overdue        int            `json:"overdue"`
	CompletionRate int            `json:"completion_rate"`
	Tags           map[string]int `json:"tags"`
	Priorities     map[string]int `json:"priorities"`
}

// TagCount is one entry of the tag distribution.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Compute aggregates tasks as of now. Tag counts are keyed by tag name when
// the tag exists in the catalog and by tag ID otherwise. Catalog tags that
// share a name are keyed "name (id)" so their counts stay apart. A task
// carrying a tag counts once toward it.
func Compute(tasks []*task.Task, tags []task.Tag, now time.Time) Stats {
	s := Stats{
		Tags:       make(map[string]int),
		Priorities: make(map[string]int),
	}
	labels := tagLabels(tags)
	for _, t := range tasks {
		s.Total++
		if t.Completed {
			s.Completed++
		}
		if t.IsOverdue(now) {
			s.Overdue++
		}
		for _, id := range t.Tags {
			label, ok := labels[id]
			if !ok {
				label = id
			}
			s.Tags[label]++
		}
		if t.Priority != task.PriorityNone {
			s.Priorities[string(t.Priority)]++
		}
	}
	s.Active = s.Total - s.Completed
	s.CompletionRate = CompletionRate(s.Completed, s.Total)
	return s
}

func tagLabels(tags []task.Tag) map[string]string {
	seen := make(map[string]int, len(tags))
	for _, t := range tags {
		seen[t.Name]++
	}
	labels := make(map[string]string, len(tags))
	for _, t := range tags {
		if seen[t.Name] > 1 {
			labels[t.ID] = t.Name + " (" + t.ID + ")"
		} else {
			labels[t.ID] = t.Name
		}
	}
	return labels
}

// CompletionRate returns round(completed/total*100), or 0 for an empty collection.
func CompletionRate(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100)) //nolint:mnd // percent
}

// Empty reports whether the stats describe no tasks at all. Callers render
// an explicit empty state rather than a zeroed chart.
func (s Stats) Empty() bool { return s.Total == 0 }

// TagDistribution returns tag counts ordered by count descending, then name.
func (s Stats) TagDistribution() []TagCount {
	out := make([]TagCount, 0, len(s.Tags))
	for tag, n := range s.Tags {
		out = append(out, TagCount{Tag: tag, Count: n})
	}
	slices.SortFunc(out, func(a, b TagCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Tag, b.Tag)
	})
	return out
}
