package view

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/twiced-technology-gmbh/tasklane/internal/clierr"
	"github.com/twiced-technology-gmbh/tasklane/internal/task"
)

// SortKey names the field a list is ordered by.
type SortKey string

// Sort keys.
const (
	SortDueDate     SortKey = "dueDate"
	SortTitle       SortKey = "title"
	SortCreatedDate SortKey = "createdDate"
	SortPriority    SortKey = "priority"
)

// Direction is the sort polarity.
type Direction string

// Sort directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortKeys returns the valid sort keys.
func SortKeys() []string {
	return []string{string(SortDueDate), string(SortTitle), string(SortCreatedDate), string(SortPriority)}
}

// ParseSortKey validates a sort key. Matching is case-insensitive and
// accepts "due" and "created" as short forms.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "duedate", "due":
		return SortDueDate, nil
	case "title":
		return SortTitle, nil
	case "createddate", "created":
		return SortCreatedDate, nil
	case "priority":
		return SortPriority, nil
	}
	return "", clierr.Newf(clierr.InvalidSort, "invalid sort field %q", s).
		WithDetails(map[string]any{"sort": s, "allowed": SortKeys()})
}

// ParseDirection validates a sort direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "":
		return Asc, nil
	case "desc":
		return Desc, nil
	}
	return "", clierr.Newf(clierr.InvalidSort, "invalid sort direction %q", s).
		WithDetails(map[string]any{"direction": s, "allowed": []string{string(Asc), string(Desc)}})
}

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Desc {
		return Asc
	}
	return Desc
}

// Sort returns a sorted copy of tasks. Ties on the key are broken by order
// ascending. Tasks lacking the key (no due date, no priority, empty title)
// go last in either direction; direction never affects the tie-break.
func Sort(tasks []*task.Task, key SortKey, dir Direction) []*task.Task {
	sorted := slices.Clone(tasks)
	col := collate.New(language.Und, collate.IgnoreCase)

	slices.SortStableFunc(sorted, func(a, b *task.Task) int {
		aMissing, bMissing := missing(a, key), missing(b, key)
		switch {
		case aMissing && !bMissing:
			return 1
		case !aMissing && bMissing:
			return -1
		case !aMissing && !bMissing:
			c := compareKey(a, b, key, col)
			if dir == Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return cmp.Compare(a.Order, b.Order)
	})
	return sorted
}

func missing(t *task.Task, key SortKey) bool {
	switch key {
	case SortDueDate:
		return t.DueDate == nil
	case SortPriority:
		return t.Priority.Rank() == 0
	case SortTitle:
		return t.Title == ""
	default:
		return false
	}
}

func compareKey(a, b *task.Task, key SortKey, col *collate.Collator) int {
	switch key {
	case SortDueDate:
		return a.DueDate.Compare(*b.DueDate)
	case SortTitle:
		return col.CompareString(a.Title, b.Title)
	case SortCreatedDate:
		return a.CreatedAt.Compare(b.CreatedAt)
	case SortPriority:
		return cmp.Compare(a.Priority.Rank(), b.Priority.Rank())
	default:
		return 0
	}
}
