package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/tasklane/internal/stats"
	"github.com/twiced-technology-gmbh/tasklane/internal/task"
	"github.com/twiced-technology-gmbh/tasklane/internal/view"
)

// TaskCompact renders a list of tasks in one-line-per-record compact format.
func TaskCompact(w io.Writer, tasks []*task.Task, cat task.Catalog, now time.Time) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	for _, t := range tasks {
		fmt.Fprintln(w, formatTaskLine(t, cat, now))
	}
}

// TaskDetailCompact renders a single task with detail in compact format.
func TaskDetailCompact(w io.Writer, t *task.Task, cat task.Catalog, now time.Time) {
	fmt.Fprintln(w, formatTaskLine(t, cat, now))

	// Timestamps line.
	fmt.Fprintln(w, "  created:"+t.CreatedAt.Format("2006-01-02")+
		" updated:"+t.UpdatedAt.Format("2006-01-02"))

	for i, s := range t.Subtasks {
		mark := " "
		if s.Completed {
			mark = "x"
		}
		fmt.Fprintf(w, "  %d.[%s] %s\n", i+1, mark, s.Title)
	}
	for _, s := range t.SharedWith {
		fmt.Fprintln(w, "  shared:"+s.Email+"/"+string(s.Role))
	}
	if t.Description != "" {
		for _, line := range strings.Split(t.Description, "\n") {
			fmt.Fprintln(w, "  "+line)
		}
	}
}

// StatsCompact renders statistics on a few lines.
func StatsCompact(w io.Writer, s stats.Stats) {
	if s.Empty() {
		fmt.Fprintln(w, "no tasks")
		return
	}
	fmt.Fprintf(w, "total:%d done:%d open:%d overdue:%d rate:%d%%\n",
		s.Total, s.Completed, s.Active, s.Overdue, s.CompletionRate)
	if dist := s.TagDistribution(); len(dist) > 0 {
		parts := make([]string, 0, len(dist))
		for _, tc := range dist {
			parts = append(parts, tc.Tag+"="+strconv.Itoa(tc.Count))
		}
		fmt.Fprintln(w, "Tags: "+strings.Join(parts, " "))
	}
}

// CalendarCompact renders a month as one line per task.
func CalendarCompact(w io.Writer, m view.Month, cat task.Catalog, now time.Time) {
	for _, d := range m.Days {
		for _, t := range d.Tasks {
			fmt.Fprintln(w, d.Date.String()+" "+formatTaskLine(t, cat, now))
		}
	}
}

// formatTaskLine builds the one-line representation of a task.
func formatTaskLine(t *task.Task, cat task.Catalog, now time.Time) string {
	line := ShortID(t.ID) + " [" + State(t, now)
	if t.Priority != task.PriorityNone {
		line += "/" + string(t.Priority)
	}
	line += "] " + t.Title

	if name := cat.Category(t.CategoryID); name != "" {
		line += " @" + name
	}
	if len(t.Tags) > 0 {
		line += " (" + strings.Join(cat.TagNames(t.Tags), ", ") + ")"
	}
	if t.DueDate != nil {
		line += " due:" + t.DueDate.Format(dateLayout)
	}

	return line
}
