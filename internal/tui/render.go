package tui

import (
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/twiced-technology-gmbh/tasklane/internal/clierr"
	"github.com/twiced-technology-gmbh/tasklane/internal/task"
)

// --- Styles ---

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")).
			Bold(true)

	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Strikethrough(true)
	overdueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	// tagColorPalette is a set of distinct, readable terminal colors for auto-coloring tags.
	tagColorPalette = []lipgloss.Color{"33", "36", "35", "32", "91", "34", "93", "96"}

	priorityMarks = map[task.Priority]string{
		task.PriorityHigh:   "!!!",
		task.PriorityMedium: "!! ",
		task.PriorityLow:    "!  ",
	}

	dialogPadY = 1
	dialogPadX = 2

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(dialogPadY, dialogPadX)
)

// tagStyle returns a consistent lipgloss style for a tag, derived from the
// catalog color when set or by hashing the tag name into the palette.
func tagStyle(t task.Tag) lipgloss.Style {
	if t.Color != "" {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Color))
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(t.Name))
	color := tagColorPalette[h.Sum32()%uint32(len(tagColorPalette))]
	return lipgloss.NewStyle().Foreground(color)
}

// View implements tea.Model.
func (l *List) View() string {
	if l.mode == modeConfirmDelete {
		return l.viewDeleteConfirm()
	}

	var b strings.Builder
	user := l.app.Identity()
	b.WriteString(headerStyle.Render(fmt.Sprintf("tasklane · %s", user.Name)))
	b.WriteString("\n\n")

	now := l.app.Now()
	cat := l.app.Catalog()
	width := l.width
	if width == 0 {
		width = 80 //nolint:mnd // default terminal width before the first resize
	}

	if len(l.page.Items) == 0 {
		if l.app.View().Filter.Active() {
			b.WriteString(dimStyle.Render("  No tasks match the current filter."))
		} else {
			b.WriteString(dimStyle.Render("  No tasks yet."))
		}
		b.WriteString("\n")
	}
	for i, t := range l.page.Items {
		b.WriteString(l.renderRow(t, i == l.cursor, cat, width, now))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if l.mode == modeSearch {
		b.WriteString(l.search.View())
		b.WriteString("\n")
	}
	b.WriteString(l.renderStatusBar(cat, width))
	return b.String()
}

func (l *List) renderRow(t *task.Task, active bool, cat task.Catalog, width int, now time.Time) string {
	pointer := "  "
	if active {
		pointer = cursorStyle.Render("> ")
	}
	check := "[ ]"
	if l.app.Bulk.IsSelected(t.ID) {
		check = cursorStyle.Render("[*]")
	}
	done := " "
	if t.Completed {
		done = "✓"
	}

	title := t.Title
	switch {
	case t.Completed:
		title = doneStyle.Render(title)
	case t.IsOverdue(now):
		title = overdueStyle.Render(title)
	}

	due := ""
	if t.DueDate != nil {
		due = dimStyle.Render(" " + t.DueDate.Format("Jan 02 15:04"))
	}

	var tags []string
	for _, id := range t.Tags {
		tags = append(tags, tagStyle(lookupTag(id, cat)).Render("#"+task.TagName(id, cat.Tags)))
	}

	line := pointer + check + " " + done + " " + priorityMarks[t.Priority] + " " + title + due
	if len(tags) > 0 {
		line += " " + strings.Join(tags, " ")
	}
	return truncate(line, width)
}

func lookupTag(id string, cat task.Catalog) task.Tag {
	for _, t := range cat.Tags {
		if t.ID == id {
			return t
		}
	}
	return task.Tag{ID: id, Name: id}
}

func (l *List) renderStatusBar(cat task.Catalog, width int) string {
	v := l.app.View()
	chosen := "none"
	if id := l.app.Bulk.Tag(); id != "" {
		chosen = task.TagName(id, cat.Tags)
	}
	filter := string(v.Filter.Status)
	if filter == "" {
		filter = "all"
	}
	if v.Filter.Overdue {
		filter += "+overdue"
	}
	if v.Filter.Search != "" {
		filter += fmt.Sprintf(" %q", v.Filter.Search)
	}

	status := fmt.Sprintf(" page %d/%d · %d tasks · %d/page · sort %s %s · %s · %d selected · tag %s",
		l.page.Page, l.page.TotalPages, l.page.Total, l.page.PageSize,
		v.Sort, v.Direction, filter, len(l.app.Bulk.Selected()), chosen)

	var lines []string
	if l.disabled() {
		lines = append(lines, dimStyle.Render(" loading..."))
	}
	if l.err != nil {
		hint := ""
		if clierr.Retryable(l.err) {
			hint = "  (r to retry)"
		}
		lines = append(lines, errorStyle.Render(truncate("Error: "+l.err.Error()+hint, width)))
	} else if l.status != "" {
		lines = append(lines, statusBarStyle.Render(truncate(" "+l.status, width)))
	}
	lines = append(lines, statusBarStyle.Render(truncate(status, width)))

	var help []string
	for _, k := range l.keys.help() {
		h := k.Help()
		help = append(help, h.Key+":"+h.Desc)
	}
	lines = append(lines, dimStyle.Render(truncate(" "+strings.Join(help, " "), width)))
	return strings.Join(lines, "\n")
}

func (l *List) viewDeleteConfirm() string {
	n := len(l.app.Bulk.Selected())
	content := errorStyle.Render(fmt.Sprintf("Delete %d task(s)?", n)) + "\n\n"
	for i, id := range l.app.Bulk.Selected() {
		const maxListed = 5
		if i == maxListed {
			content += fmt.Sprintf("  ... and %d more\n", n-maxListed)
			break
		}
		title := id
		if t, err := l.app.Task(id); err == nil {
			title = t.Title
		}
		content += "  " + title + "\n"
	}
	content += "\n" + dimStyle.Render("y:yes  n:no")

	return dialogStyle.Render(content)
}

func truncate(s string, maxLen int) string {
	if maxLen < 4 { //nolint:mnd // minimum length for truncation
		maxLen = 4
	}
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	// Slice by runes to avoid breaking multi-byte UTF-8 characters.
	runes := []rune(s)
	target := maxLen - 3 //nolint:mnd // room for "..."
	if target > len(runes) {
		target = len(runes)
	}
	// Trim runes from the end until the display width fits.
	for target > 0 && lipgloss.Width(string(runes[:target])) > maxLen-3 {
		target--
	}
	return string(runes[:target]) + "..."
}
