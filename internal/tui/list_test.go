package tui

import (
	"context"
	"slices"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/twiced-technology-gmbh/tasklane/internal/app"
	"github.com/twiced-technology-gmbh/tasklane/internal/clierr"
	"github.com/twiced-technology-gmbh/tasklane/internal/session"
	"github.com/twiced-technology-gmbh/tasklane/internal/store"
)

func newTestList(t *testing.T, titles ...string) (*List, *app.App) {
	t.Helper()
	s, err := store.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	a := app.New(app.Options{
		Store:    s,
		Identity: session.Identity{UserID: session.UserID("ada@example.com"), Name: "Ada", Email: "ada@example.com"},
		Now:      func() time.Time { return now },
	})
	t.Cleanup(func() { _ = a.Close() })
	ctx := context.Background()
	if err := a.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, title := range titles {
		if _, err := a.Create(ctx, app.Draft{Title: title}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	return NewList(a), a
}

func keyMsg(k string) tea.KeyMsg {
	if k == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// press sends a key and runs the resulting command, feeding its message
// back into the model.
func press(l *List, k string) {
	_, cmd := l.Update(keyMsg(k))
	if cmd == nil {
		return
	}
	if msg := cmd(); msg != nil {
		l.Update(msg)
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	l, a := newTestList(t, "first", "second")

	press(l, " ")
	press(l, "d")
	if l.mode != modeConfirmDelete {
		t.Fatalf("mode = %v, want confirm", l.mode)
	}
	if len(a.Tasks()) != 2 {
		t.Fatal("delete ran without confirmation")
	}

	press(l, "n")
	if l.mode != modeList || a.Bulk.PendingDelete() {
		t.Fatal("expected cancel to return to the list")
	}

	press(l, "d")
	press(l, "y")
	if got := len(a.Tasks()); got != 1 {
		t.Errorf("got %d tasks after confirmed delete, want 1", got)
	}
	if l.busy {
		t.Error("busy flag left set")
	}
}

func TestActionsDisabledWithoutSelection(t *testing.T) {
	l, a := newTestList(t, "only")

	press(l, "c")
	if !clierr.HasCode(l.err, clierr.ActionDisabled) {
		t.Errorf("err = %v, want ACTION_DISABLED", l.err)
	}
	press(l, " ")
	press(l, "T")
	if !clierr.HasCode(l.err, clierr.NoTagSelected) {
		t.Errorf("err = %v, want NO_TAG_SELECTED", l.err)
	}
	if tk := a.Tasks()[0]; len(tk.Tags) != 0 {
		t.Error("tag applied without a chosen tag")
	}
}

func TestInvalidPageKeepsCurrentPage(t *testing.T) {
	l, a := newTestList(t, "a", "b")

	press(l, "n")
	if !clierr.HasCode(l.err, clierr.InvalidPage) {
		t.Errorf("err = %v, want INVALID_PAGE", l.err)
	}
	if a.View().Page != 1 || l.page.Page != 1 {
		t.Errorf("page moved to %d", a.View().Page)
	}
}

func TestToggleAndBusy(t *testing.T) {
	l, a := newTestList(t, "water plants")

	press(l, "x")
	if tk := a.Tasks()[0]; !tk.Completed {
		t.Error("expected task completed")
	}

	l.busy = true
	press(l, " ")
	if len(a.Bulk.Selected()) != 0 {
		t.Error("selection changed while busy")
	}
	if l.status == "" {
		t.Error("expected a busy notice")
	}
}

func TestSelectAllAndPageSize(t *testing.T) {
	l, a := newTestList(t, "a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l")

	press(l, "a")
	if got := len(a.Bulk.Selected()); got != 10 {
		t.Errorf("select-all selected %d, want the 10 visible", got)
	}

	press(l, "+")
	if l.page.PageSize != 25 || l.page.TotalPages != 1 {
		t.Errorf("page = %+v, want size 25 on one page", l.page)
	}
	press(l, "-")
	press(l, "-")
	if l.page.PageSize != 5 {
		t.Errorf("page size = %d, want 5", l.page.PageSize)
	}
}

func TestPageSizeStepLeavesFallbackOrder(t *testing.T) {
	saved := fallbackPageSizes
	t.Cleanup(func() { fallbackPageSizes = saved })
	fallbackPageSizes = []int{50, 5, 25, 10}

	l, _ := newTestList(t, "a")
	if got := l.stepPageSize(1); got != 25 {
		t.Errorf("stepPageSize(+1) from %d = %d, want 25", l.page.PageSize, got)
	}
	if want := []int{50, 5, 25, 10}; !slices.Equal(fallbackPageSizes, want) {
		t.Errorf("fallbackPageSizes = %v, want %v unchanged", fallbackPageSizes, want)
	}
}
