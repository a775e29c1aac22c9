package view

import (
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/twiced-technology-gmbh/tasklane/internal/clierr"
	"github.com/twiced-technology-gmbh/tasklane/internal/task"
	"github.com/twiced-technology-gmbh/tasklane/internal/timestamp"
)

var now = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

func at(day int) *time.Time {
	t := time.Date(2024, 1, day, 9, 0, 0, 0, time.UTC)
	return &t
}

func ids(tasks []*task.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func manyTasks(n int) []*task.Task {
	tasks := make([]*task.Task, 0, n)
	for i := range n {
		tasks = append(tasks, &task.Task{ID: fmt.Sprintf("t%03d", i), Title: "task", Order: i, Tags: []string{}})
	}
	return tasks
}

func TestFilterIsConjunctive(t *testing.T) {
	tasks := []*task.Task{
		{ID: "a", Title: "Buy Milk", Tags: []string{"home"}, DueDate: at(10)},
		{ID: "b", Title: "Write report", Description: "milk stats", Tags: []string{"work"}},
		{ID: "c", Title: "Milk the cow", Tags: []string{"home"}, Completed: true, DueDate: at(10)},
		{ID: "d", Title: "Walk", Tags: []string{"home"}, DueDate: at(20)},
	}

	tests := []struct {
		name string
		opts FilterOptions
		want []string
	}{
		{"no predicates", FilterOptions{}, []string{"a", "b", "c", "d"}},
		{"search title and description", FilterOptions{Search: "MILK"}, []string{"a", "b", "c"}},
		{"search and tag", FilterOptions{Search: "milk", Tag: "home"}, []string{"a", "c"}},
		{"search tag and active", FilterOptions{Search: "milk", Tag: "home", Status: StatusActive}, []string{"a"}},
		{"completed", FilterOptions{Status: StatusCompleted}, []string{"c"}},
		{"overdue", FilterOptions{Overdue: true}, []string{"a"}},
		{"nothing matches", FilterOptions{Search: "zzz"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Filter(tasks, tt.opts, now))
			if !slices.Equal(got, tt.want) {
				t.Errorf("Filter() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSortMissingDueDateAlwaysLast(t *testing.T) {
	tasks := []*task.Task{
		{ID: "none1", Order: 2},
		{ID: "late", DueDate: at(20), Order: 5},
		{ID: "early", DueDate: at(5), Order: 1},
		{ID: "none0", Order: 1},
	}

	asc := ids(Sort(tasks, SortDueDate, Asc))
	if want := []string{"early", "late", "none0", "none1"}; !slices.Equal(asc, want) {
		t.Errorf("asc = %v, want %v", asc, want)
	}
	desc := ids(Sort(tasks, SortDueDate, Desc))
	if want := []string{"late", "early", "none0", "none1"}; !slices.Equal(desc, want) {
		t.Errorf("desc = %v, want %v", desc, want)
	}
}

func TestSortTiesBreakByOrderInBothDirections(t *testing.T) {
	tasks := []*task.Task{
		{ID: "h2", Priority: task.PriorityHigh, Order: 2},
		{ID: "l1", Priority: task.PriorityLow, Order: 1},
		{ID: "h1", Priority: task.PriorityHigh, Order: 1},
		{ID: "unset", Order: 0},
	}
	if got, want := ids(Sort(tasks, SortPriority, Asc)), []string{"l1", "h1", "h2", "unset"}; !slices.Equal(got, want) {
		t.Errorf("asc = %v, want %v", got, want)
	}
	if got, want := ids(Sort(tasks, SortPriority, Desc)), []string{"h1", "h2", "l1", "unset"}; !slices.Equal(got, want) {
		t.Errorf("desc = %v, want %v", got, want)
	}
}

func TestSortIsStableAndPure(t *testing.T) {
	tasks := []*task.Task{
		{ID: "b", Title: "beta", Order: 1},
		{ID: "A", Title: "Alpha", Order: 3},
		{ID: "a", Title: "alpha", Order: 3},
		{ID: "c", Title: "Čaj", Order: 0},
	}
	before := ids(tasks)
	first := Sort(tasks, SortTitle, Asc)
	second := Sort(first, SortTitle, Asc)

	if !slices.Equal(ids(first), ids(second)) {
		t.Errorf("sorting twice changed order: %v then %v", ids(first), ids(second))
	}
	if want := []string{"A", "a", "b", "c"}; !slices.Equal(ids(first), want) {
		t.Errorf("title sort = %v, want %v", ids(first), want)
	}
	if !slices.Equal(ids(tasks), before) {
		t.Errorf("Sort mutated its input: %v", ids(tasks))
	}
}

func TestPaginationTotals(t *testing.T) {
	tasks := manyTasks(100)

	p, err := Paginate(tasks, 1, 10)
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	if p.TotalPages != 10 || p.Total != 100 || len(p.Items) != 10 {
		t.Errorf("page = %d items of %d, %d pages; want 10 of 100, 10 pages", len(p.Items), p.Total, p.TotalPages)
	}

	p, err = Paginate(tasks, 4, 25)
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	if p.TotalPages != 4 || p.Items[0].ID != "t075" || p.HasNext() {
		t.Errorf("page 4/25 = first %s, %d pages, next %v", p.Items[0].ID, p.TotalPages, p.HasNext())
	}

	for _, bad := range []int{0, -1, 11} {
		_, err := Paginate(tasks, bad, 10)
		if !clierr.HasCode(err, clierr.InvalidPage) {
			t.Errorf("page %d: got %v, want INVALID_PAGE", bad, err)
		}
		if err != nil && err.Error() != "Invalid page number" {
			t.Errorf("page %d: message %q", bad, err.Error())
		}
	}
}

func TestPaginationEmptyHasOnePage(t *testing.T) {
	p, err := Paginate(nil, 1, 10)
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	if p.TotalPages != 1 || p.Total != 0 || len(p.Items) != 0 {
		t.Errorf("empty page = %+v", p)
	}
	if _, err := Paginate(nil, 2, 10); !clierr.HasCode(err, clierr.InvalidPage) {
		t.Errorf("page 2 of empty list: got %v", err)
	}
	if _, err := Paginate(nil, 1, 0); !clierr.HasCode(err, clierr.InvalidPageSize) {
		t.Errorf("page size 0: got %v", err)
	}
}

func TestApplyFiltersBeforePaginating(t *testing.T) {
	tasks := manyTasks(30)
	for i, tk := range tasks {
		if i%3 == 0 {
			tk.Completed = true
		}
	}
	opts := Options{
		Filter:    FilterOptions{Status: StatusActive},
		Sort:      SortCreatedDate,
		Direction: Asc,
		Page:      2,
		PageSize:  15,
	}
	p, err := Apply(tasks, opts, now)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if p.Total != 20 || p.TotalPages != 2 || len(p.Items) != 5 {
		t.Errorf("Apply = %d items of %d, %d pages", len(p.Items), p.Total, p.TotalPages)
	}
}

func TestBuckets(t *testing.T) {
	tasks := []*task.Task{
		{ID: "past", DueDate: at(10)},
		{ID: "earlier-today", DueDate: at(15)},
		{ID: "tomorrow", DueDate: at(16)},
		{ID: "week", DueDate: at(22)},
		{ID: "far", DueDate: at(23)},
		{ID: "done-today", DueDate: at(15), Completed: true},
		{ID: "undated"},
	}
	tests := []struct {
		bucket Bucket
		want   []string
	}{
		{BucketToday, []string{"earlier-today"}},
		{BucketUpcoming, []string{"tomorrow", "week"}},
		{BucketOverdue, []string{"past", "earlier-today"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.bucket), func(t *testing.T) {
			if got := ids(SelectBucket(tasks, tt.bucket, now)); !slices.Equal(got, tt.want) {
				t.Errorf("%s = %v, want %v", tt.bucket, got, tt.want)
			}
		})
	}
}

func TestCalendarGroupsByDay(t *testing.T) {
	feb := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	tasks := []*task.Task{
		{ID: "b", DueDate: at(3), Order: 2},
		{ID: "a", DueDate: at(3), Order: 1},
		{ID: "c", DueDate: at(31)},
		{ID: "next-month", DueDate: &feb},
		{ID: "undated"},
	}
	m := Calendar(tasks, timestamp.NewDate(2024, 1, 20))

	if len(m.Days) != 31 {
		t.Fatalf("got %d days, want 31", len(m.Days))
	}
	if got := ids(m.Days[2].Tasks); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Jan 3 = %v, want [a b]", got)
	}
	if got := ids(m.Days[30].Tasks); !slices.Equal(got, []string{"c"}) {
		t.Errorf("Jan 31 = %v, want [c]", got)
	}
	if len(m.Days[0].Tasks) != 0 {
		t.Errorf("Jan 1 should be empty, got %v", ids(m.Days[0].Tasks))
	}
}

func TestParseSortKeyRejectsUnknown(t *testing.T) {
	if k, err := ParseSortKey("Due"); err != nil || k != SortDueDate {
		t.Errorf("ParseSortKey(Due) = %v, %v", k, err)
	}
	if _, err := ParseSortKey("status"); !clierr.HasCode(err, clierr.InvalidSort) {
		t.Errorf("ParseSortKey(status) = %v, want INVALID_SORT", err)
	}
	if _, err := ParseDirection("up"); !clierr.HasCode(err, clierr.InvalidSort) {
		t.Errorf("ParseDirection(up) = %v, want INVALID_SORT", err)
	}
}
