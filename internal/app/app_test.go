package app

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/twiced-technology-gmbh/tasklane/internal/clierr"
	"github.com/twiced-technology-gmbh/tasklane/internal/intent"
	"github.com/twiced-technology-gmbh/tasklane/internal/normalize"
	"github.com/twiced-technology-gmbh/tasklane/internal/session"
	"github.com/twiced-technology-gmbh/tasklane/internal/store"
	"github.com/twiced-technology-gmbh/tasklane/internal/task"
	"github.com/twiced-technology-gmbh/tasklane/internal/view"
)

var fixedNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// flakyStore wraps a real store and fails selected calls.
type flakyStore struct {
	store.Store
	failUpdate map[string]bool
	failQuery  bool
	updates    int
}

var errBackend = errors.New("backend unavailable")

func (f *flakyStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	f.updates++
	if f.failUpdate[id] {
		return errBackend
	}
	return f.Store.Update(ctx, collection, id, fields)
}

func (f *flakyStore) Query(ctx context.Context, collection string, q store.Query) ([]normalize.Document, error) {
	if f.failQuery {
		return nil, errBackend
	}
	return f.Store.Query(ctx, collection, q)
}

func identity(name, email string) session.Identity {
	return session.Identity{UserID: session.UserID(email), Name: name, Email: email}
}

func newTestApp(t *testing.T) (*App, *flakyStore) {
	t.Helper()
	s, err := store.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	fs := &flakyStore{Store: s, failUpdate: map[string]bool{}}
	a := New(Options{
		Store:     fs,
		Identity:  identity("Ada", "ada@example.com"),
		Now:       func() time.Time { return fixedNow },
		View:      view.Options{PageSize: 5},
		PageSizes: []int{5, 10},
	})
	t.Cleanup(func() { _ = a.Close() })
	if err := a.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return a, fs
}

func mustCreate(t *testing.T, a *App, title string) *task.Task {
	t.Helper()
	tk, err := a.Create(context.Background(), Draft{Title: title})
	if err != nil {
		t.Fatalf("Create(%q): %v", title, err)
	}
	return tk
}

func TestCreateParsesClockTimeFromTitle(t *testing.T) {
	a, _ := newTestApp(t)

	tk := mustCreate(t, a, "Trash 3pm")
	want := time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC)
	if tk.DueDate == nil || !tk.DueDate.Equal(want) {
		t.Errorf("DueDate = %v, want %v", tk.DueDate, want)
	}
	if tk.Title != "Trash 3pm" {
		t.Errorf("Title = %q, want it unchanged", tk.Title)
	}
	if tk.UserID != a.Identity().UserID {
		t.Errorf("UserID = %q, want owner", tk.UserID)
	}

	second := mustCreate(t, a, "Second")
	if second.Order != tk.Order+1 {
		t.Errorf("Order = %d, want %d", second.Order, tk.Order+1)
	}
	if second.DueDate != nil {
		t.Errorf("expected no due date, got %v", second.DueDate)
	}
}

func TestValidationHappensBeforeStore(t *testing.T) {
	a, fs := newTestApp(t)
	tk := mustCreate(t, a, "Task")

	if _, err := a.Create(context.Background(), Draft{Title: "  "}); !clierr.HasCode(err, clierr.EmptyTitle) {
		t.Errorf("Create blank title: got %v, want EMPTY_TITLE", err)
	}
	if _, err := a.Update(context.Background(), tk.ID, nil); !clierr.HasCode(err, clierr.NoChanges) {
		t.Errorf("Update no fields: got %v, want NO_CHANGES", err)
	}
	if _, err := a.Update(context.Background(), tk.ID, map[string]any{"priority": "urgent"}); !clierr.HasCode(err, clierr.InvalidPriority) {
		t.Errorf("Update bad priority: got %v, want INVALID_PRIORITY", err)
	}
	if _, err := a.Update(context.Background(), tk.ID, map[string]any{"owner": "x"}); !clierr.HasCode(err, clierr.InvalidInput) {
		t.Errorf("Update unknown field: got %v, want INVALID_INPUT", err)
	}
	if fs.updates != 0 {
		t.Errorf("store Update called %d times, want 0", fs.updates)
	}
}

func TestUpdateAndEdit(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestApp(t)
	tk := mustCreate(t, a, "Draft report")

	due := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	got, err := a.Update(ctx, tk.ID, map[string]any{"priority": "high", "dueDate": due})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Priority != task.PriorityHigh || got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Errorf("after Update: %+v", got)
	}

	edited := got.Clone()
	edited.DueDate = nil
	edited.Title = "Final report"
	got, err = a.Edit(ctx, edited)
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if got.Title != "Final report" || got.DueDate != nil {
		t.Errorf("after Edit: title %q due %v", got.Title, got.DueDate)
	}
	if _, err := a.Edit(ctx, got.Clone()); !clierr.HasCode(err, clierr.NoChanges) {
		t.Errorf("Edit unchanged: got %v, want NO_CHANGES", err)
	}
}

func TestToggleCompleteResyncsOnFailure(t *testing.T) {
	ctx := context.Background()
	a, fs := newTestApp(t)
	tk := mustCreate(t, a, "Water plants")

	fs.failUpdate[tk.ID] = true
	_, err := a.ToggleComplete(ctx, tk.ID)
	if !clierr.HasCode(err, clierr.PersistenceError) || !clierr.Retryable(err) {
		t.Fatalf("ToggleComplete: got %v, want retryable PERSISTENCE_ERROR", err)
	}
	if err.Error() != errBackend.Error() {
		t.Errorf("message = %q, want verbatim %q", err.Error(), errBackend.Error())
	}
	cur, _ := a.Task(tk.ID)
	if cur.Completed {
		t.Error("snapshot kept the optimistic toggle after failure")
	}

	delete(fs.failUpdate, tk.ID)
	got, err := a.ToggleComplete(ctx, tk.ID)
	if err != nil {
		t.Fatalf("ToggleComplete retry: %v", err)
	}
	if !got.Completed {
		t.Error("expected task completed after retry")
	}
}

func TestSharingPermissions(t *testing.T) {
	ctx := context.Background()
	owner, fs := newTestApp(t)
	tk := mustCreate(t, owner, "Shared")

	if _, err := owner.Share(ctx, tk.ID, "ed@example.com", task.RoleEditor); err != nil {
		t.Fatalf("Share editor: %v", err)
	}
	if _, err := owner.Share(ctx, tk.ID, "vi@example.com", task.RoleViewer); err != nil {
		t.Fatalf("Share viewer: %v", err)
	}
	if _, err := owner.Share(ctx, tk.ID, "not an email", task.RoleViewer); !clierr.HasCode(err, clierr.InvalidInput) {
		t.Errorf("Share bad email: got %v", err)
	}

	editor := New(Options{Store: fs, Identity: identity("Ed", "ed@example.com"), Now: func() time.Time { return fixedNow }})
	if err := editor.Load(ctx); err != nil {
		t.Fatalf("editor Load: %v", err)
	}
	if len(editor.Tasks()) != 1 {
		t.Fatalf("editor sees %d tasks, want 1", len(editor.Tasks()))
	}
	if _, err := editor.ToggleComplete(ctx, tk.ID); err != nil {
		t.Errorf("editor toggle: %v", err)
	}
	if _, err := editor.Delete(ctx, tk.ID); !clierr.HasCode(err, clierr.PermissionDenied) {
		t.Errorf("editor delete: got %v, want PERMISSION_DENIED", err)
	}

	viewer := New(Options{Store: fs, Identity: identity("Vi", "vi@example.com"), Now: func() time.Time { return fixedNow }})
	if err := viewer.Load(ctx); err != nil {
		t.Fatalf("viewer Load: %v", err)
	}
	if _, err := viewer.Update(ctx, tk.ID, map[string]any{"title": "mine"}); !clierr.HasCode(err, clierr.PermissionDenied) {
		t.Errorf("viewer update: got %v, want PERMISSION_DENIED", err)
	}

	if err := owner.Load(ctx); err != nil {
		t.Fatalf("owner reload: %v", err)
	}
	cur, _ := owner.Task(tk.ID)
	if cur.UserID != owner.Identity().UserID {
		t.Errorf("ownership changed to %q", cur.UserID)
	}
}

func TestBulkPartialFailureNarrowsSelection(t *testing.T) {
	ctx := context.Background()
	a, fs := newTestApp(t)
	var ids []string
	for _, title := range []string{"a", "b", "c"} {
		ids = append(ids, mustCreate(t, a, title).ID)
	}
	fs.failUpdate[ids[1]] = true

	a.Bulk.Select(ids...)
	out, err := a.Bulk.Run(ctx, intent.BulkComplete, a.Visible())
	if !clierr.HasCode(err, clierr.PartialFailure) {
		t.Fatalf("Run: got %v, want PARTIAL_FAILURE", err)
	}
	if len(out.Results) != 3 {
		t.Fatalf("got %d results, want 3", len(out.Results))
	}
	if got := a.Bulk.Selected(); !slices.Equal(got, []string{ids[1]}) {
		t.Errorf("Selected = %v, want only the failed id", got)
	}
	for _, id := range []string{ids[0], ids[2]} {
		if tk, _ := a.Task(id); !tk.Completed {
			t.Errorf("task %s not completed", id)
		}
	}

	delete(fs.failUpdate, ids[1])
	if _, err := a.Bulk.Retry(ctx); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if len(a.Bulk.Selected()) != 0 {
		t.Errorf("selection not cleared after success: %v", a.Bulk.Selected())
	}
}

func TestBulkDeleteAndTag(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestApp(t)
	x := mustCreate(t, a, "x")
	y := mustCreate(t, a, "y")

	tag, err := a.CreateTag(ctx, "urgent", "#f00")
	if err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	a.Bulk.Select(x.ID, y.ID)
	if _, err := a.Bulk.Run(ctx, intent.BulkTag, nil); !clierr.HasCode(err, clierr.NoTagSelected) {
		t.Errorf("tag without choice: got %v", err)
	}
	a.Bulk.ChooseTag(tag.ID)
	if _, err := a.Bulk.Run(ctx, intent.BulkTag, nil); err != nil {
		t.Fatalf("bulk tag: %v", err)
	}
	if s := a.Stats(); s.Tags["urgent"] != 2 {
		t.Errorf("tag distribution = %v, want urgent:2", s.Tags)
	}

	a.Bulk.Select(x.ID, y.ID)
	if _, err := a.Bulk.Run(ctx, intent.BulkDelete, nil); !clierr.HasCode(err, clierr.ConfirmationReq) {
		t.Fatalf("delete: got %v, want CONFIRMATION_REQUIRED", err)
	}
	if len(a.Tasks()) != 2 {
		t.Fatal("delete ran before confirmation")
	}
	if _, err := a.Bulk.Confirm(ctx); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if len(a.Tasks()) != 0 {
		t.Errorf("got %d tasks after confirmed delete, want 0", len(a.Tasks()))
	}
}

func TestViewStateThroughDispatch(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestApp(t)
	for i := range 12 {
		mustCreate(t, a, string(rune('a'+i)))
	}

	out, err := a.Dispatch(ctx, intent.Intent{Kind: intent.ChangePage, N: 3})
	if err != nil {
		t.Fatalf("ChangePage 3: %v", err)
	}
	if out.Page.Page != 3 || len(out.Page.Items) != 2 || out.Page.TotalPages != 3 {
		t.Errorf("page 3 = %+v", out.Page)
	}

	_, err = a.Dispatch(ctx, intent.Intent{Kind: intent.ChangePage, N: 4})
	if !clierr.HasCode(err, clierr.InvalidPage) || err.Error() != "Invalid page number" {
		t.Errorf("ChangePage 4: got %v, want INVALID_PAGE", err)
	}
	if a.View().Page != 3 {
		t.Errorf("page changed to %d after rejected request", a.View().Page)
	}

	if _, err := a.Dispatch(ctx, intent.Intent{Kind: intent.ChangePageSize, N: 7}); !clierr.HasCode(err, clierr.InvalidPageSize) {
		t.Errorf("ChangePageSize 7: got %v, want INVALID_PAGE_SIZE", err)
	}
	out, err = a.Dispatch(ctx, intent.Intent{Kind: intent.ChangePageSize, N: 10})
	if err != nil || out.Page.Page != 1 || out.Page.TotalPages != 2 {
		t.Errorf("ChangePageSize 10: %+v, %v", out.Page, err)
	}

	if _, err := a.Dispatch(ctx, intent.Intent{Kind: intent.ChangePage, N: 2}); err != nil {
		t.Fatalf("ChangePage 2: %v", err)
	}
	out, err = a.Dispatch(ctx, intent.Intent{Kind: intent.ChangeFilter, Filter: view.FilterOptions{Search: "b"}})
	if err != nil || out.Page.Page != 1 || out.Page.Total != 1 {
		t.Errorf("ChangeFilter: %+v, %v", out.Page, err)
	}

	out, err = a.Dispatch(ctx, intent.Intent{Kind: intent.ChangeSort, Sort: view.SortTitle, Direction: view.Desc})
	if err != nil || a.View().Sort != view.SortTitle || out.Page.Page != 1 {
		t.Errorf("ChangeSort: %+v, %v", a.View(), err)
	}
}

func TestPageSnapsToLastPageWhenDataShrinks(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestApp(t)
	var last *task.Task
	for i := range 6 {
		last = mustCreate(t, a, string(rune('a'+i)))
	}
	if err := a.SetPage(2); err != nil {
		t.Fatalf("SetPage: %v", err)
	}
	if _, err := a.Delete(ctx, last.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	p, err := a.Page()
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if p.Page != 1 {
		t.Errorf("page = %d, want 1", p.Page)
	}
}

func TestLoadFailureKeepsSnapshot(t *testing.T) {
	a, fs := newTestApp(t)
	mustCreate(t, a, "keep me")

	fs.failQuery = true
	err := a.Load(context.Background())
	if !clierr.Retryable(err) {
		t.Fatalf("Load: got %v, want retryable error", err)
	}
	if len(a.Tasks()) != 1 {
		t.Errorf("snapshot has %d tasks, want 1", len(a.Tasks()))
	}
	if a.Err() == nil {
		t.Error("expected Err to report the failed load")
	}
	if a.Bulk.Loading() {
		t.Error("loading flag left set")
	}
}

func TestExportIntent(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestApp(t)
	mustCreate(t, a, "Trash 3pm")
	done := mustCreate(t, a, "Done thing")
	if _, err := a.ToggleComplete(ctx, done.ID); err != nil {
		t.Fatalf("ToggleComplete: %v", err)
	}

	out, err := a.Dispatch(ctx, intent.Intent{
		Kind:   intent.Export,
		Format: intent.FormatJSON,
		Export: intent.ExportFilter{Status: view.StatusActive},
	})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if out.Export == nil || len(out.Export.Tasks) != 1 || out.Export.Tasks[0].Title != "Trash 3pm" {
		t.Errorf("export payload = %+v", out.Export)
	}
}
