package export

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// DocumentRenderer renders a printable Markdown document: a heading, a
// summary line and one table row per task. The result is what the CLI
// converts to print output.
type DocumentRenderer struct {
	Title string
	Now   func() time.Time
}

// Render implements Renderer.
func (d DocumentRenderer) Render(w io.Writer, p Payload, cat Catalog) error {
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	title := d.Title
	if title == "" {
		title = "Tasks"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	done := 0
	for _, t := range p.Tasks {
		if t.Completed {
			done++
		}
	}
	fmt.Fprintf(&b, "_Exported %s: %d task(s), %d completed._\n\n",
		now().Format("2006-01-02 15:04"), len(p.Tasks), done)

	if len(p.Tasks) == 0 {
		b.WriteString("No tasks match the selected filters.\n")
	} else {
		b.WriteString("| Done | Title | Due | Priority | Category | Tags |\n")
		b.WriteString("|------|-------|-----|----------|----------|------|\n")
		for _, r := range Records(p.Tasks, cat) {
			check := " "
			if r.Completed {
				check = "x"
			}
			due := "-"
			if r.DueDate != nil {
				due = r.DueDate.Format("2006-01-02 15:04")
			}
			fmt.Fprintf(&b, "| [%s] | %s | %s | %s | %s | %s |\n",
				check, cell(r.Title), due, orDash(r.Priority), orDash(cell(r.Category)), orDash(cell(strings.Join(r.Tags, ", "))))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

var _ Renderer = DocumentRenderer{}
