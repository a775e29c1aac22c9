// Package export selects tasks for export and serializes them as CSV or
// JSON, or hands them to a document renderer.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/tasklane/internal/clierr"
	"github.com/twiced-technology-gmbh/tasklane/internal/intent"
	"github.com/twiced-technology-gmbh/tasklane/internal/output"
	"github.com/twiced-technology-gmbh/tasklane/internal/task"
)

// Formats returns the supported export formats.
func Formats() []string {
	return []string{string(intent.FormatCSV), string(intent.FormatJSON), string(intent.FormatPDF)}
}

// ParseFormat validates an export format name.
func ParseFormat(s string) (intent.Format, error) {
	switch f := intent.Format(strings.ToLower(strings.TrimSpace(s))); f {
	case intent.FormatCSV, intent.FormatJSON, intent.FormatPDF:
		return f, nil
	}
	return "", clierr.Newf(clierr.InvalidFormat, "invalid export format %q", s).
		WithDetails(map[string]any{"format": s, "allowed": Formats()})
}

// Payload is the filtered task list together with the chosen format.
type Payload = intent.Payload

// Catalog resolves category and tag IDs to display names.
type Catalog = task.Catalog

// Build applies filter to tasks. With a date range active, only tasks whose
// due date falls on a day inside the inclusive range are kept; tasks
// without a due date are excluded. Tag and status filters apply as well.
func Build(tasks []*task.Task, format intent.Format, filter intent.ExportFilter) (Payload, error) {
	if !filter.Range.Valid() {
		return Payload{}, clierr.Newf(clierr.InvalidDateRange, "range start %s is after end %s",
			filter.Range.From, filter.Range.To).
			WithDetails(map[string]any{"from": filter.Range.From.String(), "to": filter.Range.To.String()})
	}
	p := Payload{Format: format, Tasks: make([]*task.Task, 0, len(tasks))}
	for _, t := range tasks {
		if Include(t, filter) {
			p.Tasks = append(p.Tasks, t)
		}
	}
	return p, nil
}

// Include reports whether t passes filter.
func Include(t *task.Task, filter intent.ExportFilter) bool {
	if filter.Range.Active() && (t.DueDate == nil || !filter.Range.Contains(*t.DueDate)) {
		return false
	}
	if filter.Tag != "" && !t.HasTag(filter.Tag) {
		return false
	}
	return filter.Status.Matches(t.Completed)
}

// Record is the flat, display-resolved form of a task used by the
// structural formats.
type Record struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	Category    string     `json:"category,omitempty"`
	Tags        []string   `json:"tags"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Records flattens tasks, resolving category and tag names through cat.
func Records(tasks []*task.Task, cat Catalog) []Record {
	out := make([]Record, 0, len(tasks))
	for _, t := range tasks {
		tags := cat.TagNames(t.Tags)
		out = append(out, Record{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Completed:   t.Completed,
			DueDate:     t.DueDate,
			Priority:    string(t.Priority),
			Category:    cat.Category(t.CategoryID),
			Tags:        tags,
			CreatedAt:   t.CreatedAt,
			UpdatedAt:   t.UpdatedAt,
		})
	}
	return out
}

// Renderer turns a payload into a rendered document, for formats that are
// not structural serializations.
type Renderer interface {
	Render(w io.Writer, p Payload, cat Catalog) error
}

// Write serializes p to w. CSV and JSON are written directly; PDF is
// delegated to r.
func Write(w io.Writer, p Payload, cat Catalog, r Renderer) error {
	switch p.Format {
	case intent.FormatCSV:
		return WriteCSV(w, Records(p.Tasks, cat))
	case intent.FormatJSON:
		return output.JSON(w, Records(p.Tasks, cat))
	case intent.FormatPDF:
		if r == nil {
			return clierr.New(clierr.InvalidFormat, "no document renderer configured for pdf export")
		}
		if err := r.Render(w, p, cat); err != nil {
			return fmt.Errorf("rendering document: %w", err)
		}
		return nil
	}
	_, err := ParseFormat(string(p.Format))
	return err
}
