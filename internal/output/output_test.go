package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/twiced-technology-gmbh/tasklane/internal/stats"
	"github.com/twiced-technology-gmbh/tasklane/internal/task"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name                 string
		json, table, compact bool
		env                  string
		want                 Format
	}{
		{"default", false, false, false, "", FormatTable},
		{"json flag wins", true, true, true, "compact", FormatJSON},
		{"compact flag", false, true, true, "", FormatCompact},
		{"env json", false, false, false, "json", FormatJSON},
		{"env oneline", false, false, false, "oneline", FormatCompact},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvFormat, tt.env)
			if got := Detect(tt.json, tt.table, tt.compact); got != tt.want {
				t.Errorf("Detect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTaskLineResolvesCatalogNames(t *testing.T) {
	DisableColor()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	due := now.Add(-time.Hour)
	tk := &task.Task{
		ID: "0123456789abcdef", Title: "File taxes", DueDate: &due,
		Priority: task.PriorityHigh, CategoryID: "c1", Tags: []string{"g1", "gone"},
	}
	cat := task.Catalog{
		Categories: []task.Category{{ID: "c1", Name: "Home"}},
		Tags:       []task.Tag{{ID: "g1", Name: "urgent"}},
	}

	got := formatTaskLine(tk, cat, now)
	want := "01234567 [overdue/high] File taxes @Home (urgent, gone) due:2024-03-01 08:00"
	if got != want {
		t.Errorf("formatTaskLine() =\n %q\nwant\n %q", got, want)
	}
}

func TestStatsTableEmptyState(t *testing.T) {
	DisableColor()
	var buf bytes.Buffer
	StatsTable(&buf, stats.Stats{})
	if !strings.Contains(buf.String(), "No tasks yet") {
		t.Errorf("expected empty state, got %q", buf.String())
	}
	if strings.Contains(buf.String(), "0%") {
		t.Errorf("empty state should not print zeroed counts: %q", buf.String())
	}
}

func TestMarkdownPlainWithoutColor(t *testing.T) {
	DisableColor()
	var buf bytes.Buffer
	if err := Markdown(&buf, "# Notes\n\n- one"); err != nil {
		t.Fatalf("Markdown: %v", err)
	}
	if buf.String() != "# Notes\n\n- one\n" {
		t.Errorf("Markdown() = %q", buf.String())
	}
}
