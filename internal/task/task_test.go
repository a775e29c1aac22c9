package task

import (
	"testing"
	"time"

	"github.com/twiced-technology-gmbh/tasklane/internal/clierr"
)

func TestIsOverdue(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		task Task
		want bool
	}{
		{"no due date", Task{}, false},
		{"past and open", Task{DueDate: &past}, true},
		{"past but completed", Task{DueDate: &past, Completed: true}, false},
		{"future", Task{DueDate: &future}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.task.IsOverdue(now); got != tt.want {
				t.Errorf("IsOverdue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveIDByPrefix(t *testing.T) {
	tasks := []*Task{{ID: "abc123"}, {ID: "abd456"}, {ID: "xyz"}}

	got, err := ResolveID(tasks, "abc")
	if err != nil {
		t.Fatalf("ResolveID: %v", err)
	}
	if got.ID != "abc123" {
		t.Errorf("got %q, want abc123", got.ID)
	}

	if _, err := ResolveID(tasks, "ab"); !clierr.HasCode(err, clierr.InvalidInput) {
		t.Errorf("expected ambiguous prefix to fail with INVALID_INPUT, got %v", err)
	}
	if _, err := ResolveID(tasks, "nope"); !clierr.HasCode(err, clierr.TaskNotFound) {
		t.Errorf("expected TASK_NOT_FOUND, got %v", err)
	}
	if got, err := ResolveID(tasks, "xyz"); err != nil || got.ID != "xyz" {
		t.Errorf("expected exact match, got %v, %v", got, err)
	}
}

func TestValidateTitle(t *testing.T) {
	for _, title := range []string{"", "   ", "\t\n"} {
		if err := ValidateTitle(title); !clierr.HasCode(err, clierr.EmptyTitle) {
			t.Errorf("ValidateTitle(%q) = %v, want EMPTY_TITLE", title, err)
		}
	}
	if err := ValidateTitle("Trash 3pm"); err != nil {
		t.Errorf("ValidateTitle: unexpected error %v", err)
	}
}

func TestSharingKeepsOwnership(t *testing.T) {
	now := time.Now()
	tk := &Task{ID: "t1", UserID: "owner"}

	SetShare(tk, "ed@example.com", RoleEditor, now)
	SetShare(tk, "vi@example.com", RoleViewer, now)

	if tk.UserID != "owner" {
		t.Fatalf("sharing changed owner to %q", tk.UserID)
	}
	if !CanEdit(tk, "someone", "ed@example.com") {
		t.Error("expected editor to be allowed")
	}
	if CanEdit(tk, "someone", "vi@example.com") {
		t.Error("expected viewer to be denied")
	}

	SetShare(tk, "vi@example.com", RoleEditor, now)
	if len(tk.SharedWith) != 2 {
		t.Errorf("expected role change to replace entry, got %d shares", len(tk.SharedWith))
	}
	if !RemoveShare(tk, "ed@example.com", now) || len(tk.SharedWith) != 1 {
		t.Errorf("expected share removal, got %v", tk.SharedWith)
	}
}

func TestToggleSubtaskBounds(t *testing.T) {
	now := time.Now()
	tk := &Task{}
	AddSubtask(tk, "first", now)
	if ToggleSubtask(tk, 0, now) || ToggleSubtask(tk, 2, now) {
		t.Error("expected out-of-range subtask toggles to fail")
	}
	if !ToggleSubtask(tk, 1, now) || !tk.Subtasks[0].Completed {
		t.Error("expected first subtask to be completed")
	}
}
