package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/twiced-technology-gmbh/tasklane/internal/activity"
	"github.com/twiced-technology-gmbh/tasklane/internal/stats"
	"github.com/twiced-technology-gmbh/tasklane/internal/task"
	"github.com/twiced-technology-gmbh/tasklane/internal/view"
)

const (
	shortIDLen = 8
	dateLayout = "2006-01-02 15:04"
)

var (
	headerStyle lipgloss.Style
	dimStyle    lipgloss.Style
	tagStyle    lipgloss.Style
	shareStyle  lipgloss.Style

	// State colors aligned with the TUI list palette.
	stateStyles map[string]lipgloss.Style

	// Priority colors matching TUI priority palette.
	priorityStyles map[string]lipgloss.Style
)

func init() { resetStyles() }

func resetStyles() {
	if !colorEnabled {
		headerStyle = lipgloss.NewStyle()
		dimStyle = lipgloss.NewStyle()
		tagStyle = lipgloss.NewStyle()
		shareStyle = lipgloss.NewStyle()
		stateStyles = map[string]lipgloss.Style{}
		priorityStyles = map[string]lipgloss.Style{}
		return
	}
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	tagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
	shareStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("44")).Bold(true)
	stateStyles = map[string]lipgloss.Style{
		"open":    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		"done":    lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
		"overdue": lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
	priorityStyles = map[string]lipgloss.Style{
		"high":   lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
		"medium": lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		"low":    lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	}
}

// ShortID returns the display prefix of a task ID.
func ShortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

// State returns "done", "overdue" or "open" for t as of now.
func State(t *task.Task, now time.Time) string {
	switch {
	case t.Completed:
		return "done"
	case t.IsOverdue(now):
		return "overdue"
	}
	return "open"
}

// TaskTable renders a list of tasks as a formatted table.
func TaskTable(w io.Writer, tasks []*task.Task, cat task.Catalog, now time.Time) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	// Calculate column widths.
	const pad = 2
	idW, stateW, prioW, titleW, catW, tagsW := shortIDLen+pad, 7, 10, 5, 10, 6
	for _, t := range tasks {
		prioW = max(prioW, len(t.Priority)+pad)
		titleW = max(titleW, min(len(t.Title)+pad, 50))                                 //nolint:mnd // max title column width
		catW = max(catW, min(len(cat.Category(t.CategoryID))+pad, 20))                  //nolint:mnd // max category column width
		tagsW = max(tagsW, min(len(strings.Join(cat.TagNames(t.Tags), ","))+pad, 30)) //nolint:mnd // max tags column width
	}

	// Print header.
	header := fmt.Sprintf("%-*s %-*s %-*s %-*s %-*s %-*s %s",
		idW, "ID", stateW+pad, "STATE", prioW, "PRIORITY",
		titleW, "TITLE", catW, "CATEGORY", tagsW, "TAGS", "DUE")
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(header, " ")))

	// Print rows.
	for _, t := range tasks {
		title := t.Title
		const maxTitle = 48
		if len(title) > maxTitle {
			title = title[:maxTitle-3] + "..."
		}
		if len(t.SharedWith) > 0 {
			title += shareStyle.Render(" +")
		}
		category := cat.Category(t.CategoryID)
		if category == "" {
			category = dimStyle.Render("--")
		}
		tags := strings.Join(cat.TagNames(t.Tags), ",")
		if tags == "" {
			tags = dimStyle.Render("--")
		} else {
			tags = tagStyle.Render(tags)
		}
		due := dimStyle.Render("--")
		if t.DueDate != nil {
			due = t.DueDate.Format(dateLayout)
		}

		row := fmt.Sprintf("%-*s %s %s %s %s %s %s",
			idW, ShortID(t.ID),
			padRight(styledValue(State(t, now), stateStyles), stateW+pad),
			padRight(styledValue(string(t.Priority), priorityStyles), prioW),
			padRight(title, titleW),
			padRight(category, catW),
			padRight(tags, tagsW),
			due)
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}

// PageFooter prints the pagination summary under a task table.
func PageFooter(w io.Writer, p view.Page) {
	line := fmt.Sprintf("Page %d/%d (%d tasks, %d per page)", p.Page, p.TotalPages, p.Total, p.PageSize)
	fmt.Fprintln(w, dimStyle.Render(line))
}

// TaskDetail renders a single task with full detail.
func TaskDetail(w io.Writer, t *task.Task, cat task.Catalog, now time.Time) {
	titleLine := "Task " + ShortID(t.ID) + ": " + t.Title
	fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render(titleLine))
	fmt.Fprintln(w, strings.Repeat("─", lipgloss.Width(titleLine)))

	printField(w, "ID", t.ID)
	printField(w, "State", styledValue(State(t, now), stateStyles))
	printField(w, "Priority", stringOrDash(styledValue(string(t.Priority), priorityStyles)))
	printField(w, "Category", stringOrDash(cat.Category(t.CategoryID)))
	if len(t.Tags) > 0 {
		printField(w, "Tags", tagStyle.Render(strings.Join(cat.TagNames(t.Tags), ", ")))
	} else {
		printField(w, "Tags", dimStyle.Render("--"))
	}
	if t.DueDate != nil {
		printField(w, "Due", t.DueDate.Format(dateLayout))
	} else {
		printField(w, "Due", dimStyle.Render("--"))
	}
	printField(w, "Order", strconv.Itoa(t.Order))
	printField(w, "Created", t.CreatedAt.Format(dateLayout))
	printField(w, "Updated", t.UpdatedAt.Format(dateLayout))

	for i, s := range t.SharedWith {
		label := ""
		if i == 0 {
			label = "Shared with"
		}
		printField(w, label, shareStyle.Render(s.Email)+" ("+string(s.Role)+")")
	}

	if len(t.Subtasks) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headerStyle.Render("Subtasks"))
		for i, s := range t.Subtasks {
			check := "[ ]"
			if s.Completed {
				check = "[x]"
			}
			fmt.Fprintf(w, "  %d. %s %s\n", i+1, check, s.Title)
		}
	}

	if len(t.Comments) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headerStyle.Render("Comments"))
		for _, c := range t.Comments {
			author := c.Author
			if author == "" {
				author = "unknown"
			}
			fmt.Fprintf(w, "  %s %s: %s\n", dimStyle.Render(c.CreatedAt.Format(dateLayout)), author, c.Text)
		}
	}

	if t.Description != "" {
		fmt.Fprintln(w)
		_ = Markdown(w, t.Description)
	}
}

// StatsTable renders task statistics. An empty collection prints an
// explicit empty state instead of zero counts.
func StatsTable(w io.Writer, s stats.Stats) {
	if s.Empty() {
		fmt.Fprintln(w, "No tasks yet. Add one with: tasklane add TITLE")
		return
	}
	fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%d tasks, %d%% complete", s.Total, s.CompletionRate)))
	fmt.Fprintln(w, progressBar(s.CompletionRate))
	fmt.Fprintln(w)

	header := fmt.Sprintf("%-16s %6s", "STATE", "COUNT")
	fmt.Fprintln(w, headerStyle.Render(header))
	const colW = 16
	fmt.Fprintf(w, "%s %6d\n", padRight(styledValue("open", stateStyles), colW), s.Active)
	fmt.Fprintf(w, "%s %6d\n", padRight(styledValue("done", stateStyles), colW), s.Completed)
	fmt.Fprintf(w, "%s %6d\n", padRight(styledValue("overdue", stateStyles), colW), s.Overdue)

	if len(s.Priorities) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-16s %6s", "PRIORITY", "COUNT")))
		for _, p := range task.Priorities() {
			if n := s.Priorities[p]; n > 0 {
				fmt.Fprintf(w, "%s %6d\n", padRight(styledValue(p, priorityStyles), colW), n)
			}
		}
	}

	if dist := s.TagDistribution(); len(dist) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-16s %6s", "TAG", "COUNT")))
		for _, tc := range dist {
			fmt.Fprintf(w, "%s %6d\n", padRight(tagStyle.Render(tc.Tag), colW), tc.Count)
		}
	}
}

func progressBar(rate int) string {
	const width = 30
	filled := rate * width / 100 //nolint:mnd // percent
	return stateStyles["done"].Render(strings.Repeat("█", filled)) +
		dimStyle.Render(strings.Repeat("░", width-filled))
}

// CalendarTable renders one month, listing each day that has tasks.
func CalendarTable(w io.Writer, m view.Month, now time.Time) {
	fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render(m.Start.Format("January 2006")))
	empty := true
	for _, d := range m.Days {
		if len(d.Tasks) == 0 {
			continue
		}
		empty = false
		fmt.Fprintln(w, headerStyle.Render(d.Date.Format("Mon 02")))
		for _, t := range d.Tasks {
			fmt.Fprintf(w, "  %s %s %s %s\n",
				t.DueDate.Format("15:04"),
				ShortID(t.ID),
				padRight(styledValue(State(t, now), stateStyles), 9), //nolint:mnd // state column width
				t.Title)
		}
	}
	if empty {
		fmt.Fprintln(w, dimStyle.Render("No tasks due this month."))
	}
}

// CategoryTable lists categories in display order.
func CategoryTable(w io.Writer, cats []task.Category) {
	if len(cats) == 0 {
		fmt.Fprintln(os.Stderr, "No categories found.")
		return
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-*s %-6s %s", shortIDLen+2, "ID", "ORDER", "NAME")))
	for _, c := range cats {
		fmt.Fprintf(w, "%-*s %-6d %s\n", shortIDLen+2, ShortID(c.ID), c.Order, c.Name)
	}
}

// TagTable lists tags.
func TagTable(w io.Writer, tags []task.Tag) {
	if len(tags) == 0 {
		fmt.Fprintln(os.Stderr, "No tags found.")
		return
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-*s %-10s %s", shortIDLen+2, "ID", "COLOR", "NAME")))
	for _, t := range tags {
		name := t.Name
		if t.Color != "" && colorEnabled {
			name = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Color)).Render(name)
		}
		fmt.Fprintf(w, "%-*s %-10s %s\n", shortIDLen+2, ShortID(t.ID), stringOrDash(t.Color), name)
	}
}

// ActivityTable renders activity log entries, oldest first.
func ActivityTable(w io.Writer, entries []activity.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "No activity recorded.")
		return
	}
	for _, e := range entries {
		id := ""
		if e.TaskID != "" {
			id = ShortID(e.TaskID) + " "
		}
		fmt.Fprintf(w, "%s %-9s %s%s\n", dimStyle.Render(e.Timestamp.Format(dateLayout)), e.Action, id, e.Detail)
	}
}

// BatchTable prints one line per batch result.
func BatchTable(w io.Writer, results []BatchResult) {
	for _, r := range results {
		if r.OK {
			fmt.Fprintf(w, "%s %s\n", styledValue("done", stateStyles), ShortID(r.ID))
			continue
		}
		fmt.Fprintf(w, "%s %s %s (%s)\n", styledValue("overdue", stateStyles), ShortID(r.ID), r.Error, r.Code)
	}
}

// Messagef prints a simple formatted message line.
func Messagef(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, format+"\n", args...)
}

func printField(w io.Writer, label, value string) {
	if label != "" {
		label += ":"
	}
	fmt.Fprintf(w, "  %-12s %s\n", label, value)
}

// padRight pads s with spaces to the given visible width, accounting for ANSI
// escape codes that are invisible but consume bytes.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func stringOrDash(s string) string {
	if s == "" {
		return dimStyle.Render("--")
	}
	return s
}

// styledValue renders s using a matching style from the map, or returns s unchanged.
func styledValue(s string, styles map[string]lipgloss.Style) string {
	if st, ok := styles[s]; ok {
		return st.Render(s)
	}
	return s
}
