package view

import (
	"time"

	"github.com/twiced-technology-gmbh/tasklane/internal/task"
	"github.com/twiced-technology-gmbh/tasklane/internal/timestamp"
)

// UpcomingDays is how far past today the upcoming bucket reaches.
const UpcomingDays = 7

// Bucket is a named date-derived subset.
type Bucket string

// Buckets.
const (
	BucketToday    Bucket = "today"
	BucketUpcoming Bucket = "upcoming"
	BucketOverdue  Bucket = "overdue"
)

// Buckets returns the valid bucket names.
func Buckets() []string {
	return []string{string(BucketToday), string(BucketUpcoming), string(BucketOverdue)}
}

// InBucket reports whether t belongs to bucket b as of now. Completed tasks
// belong to no bucket.
func InBucket(t *task.Task, b Bucket, now time.Time) bool {
	if t.DueDate == nil || t.Completed {
		return false
	}
	today := timestamp.DateOf(now)
	due := timestamp.DateOf(*t.DueDate)
	switch b {
	case BucketToday:
		return due.Compare(today) == 0
	case BucketUpcoming:
		return due.Compare(today) > 0 && due.Compare(today.AddDays(UpcomingDays)) <= 0
	case BucketOverdue:
		return t.IsOverdue(now)
	}
	return false
}

// SelectBucket returns the tasks in bucket b, keeping input order.
func SelectBucket(tasks []*task.Task, b Bucket, now time.Time) []*task.Task {
	result := make([]*task.Task, 0)
	for _, t := range tasks {
		if InBucket(t, b, now) {
			result = append(result, t)
		}
	}
	return result
}

// Day is one calendar cell.
type Day struct {
	Date  timestamp.Date `json:"date"`
	Tasks []*task.Task   `json:"tasks"`
}

// Month groups tasks with a due date by calendar day within one month.
type Month struct {
	Start timestamp.Date `json:"start"`
	Days  []Day          `json:"days"`
}

// Calendar builds the month containing first. Every day of the month is
// present, including days with no tasks. Within a day tasks are ordered by
// due time, then order.
func Calendar(tasks []*task.Task, first timestamp.Date) Month {
	start := timestamp.NewDate(first.Year(), first.Month(), 1)
	end := start.AddDate(0, 1, 0)

	byDay := make(map[timestamp.Date][]*task.Task)
	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}
		d := timestamp.DateOf(*t.DueDate)
		if d.Compare(start) < 0 || !d.Before(end) {
			continue
		}
		byDay[d] = append(byDay[d], t)
	}

	m := Month{Start: start}
	for d := start; d.Before(end); d = d.AddDays(1) {
		m.Days = append(m.Days, Day{Date: d, Tasks: Sort(byDay[d], SortDueDate, Asc)})
	}
	return m
}
