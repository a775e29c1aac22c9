package bulk

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/twiced-technology-gmbh/tasklane/internal/clierr"
	"github.com/twiced-technology-gmbh/tasklane/internal/intent"
	"github.com/twiced-technology-gmbh/tasklane/internal/output"
)

// recorder is a Dispatcher that records every intent and fails the IDs in fail.
type recorder struct {
	calls []intent.Intent
	fail  map[string]bool
	err   error
}

func (r *recorder) Dispatch(_ context.Context, in intent.Intent) (intent.Outcome, error) {
	r.calls = append(r.calls, in)
	if r.err != nil {
		return intent.Outcome{}, r.err
	}
	var out intent.Outcome
	for _, id := range in.IDs {
		res := output.BatchResult{ID: id, OK: !r.fail[id]}
		if !res.OK {
			res.Error = "write rejected"
			res.Code = clierr.PersistenceError
		}
		out.Results = append(out.Results, res)
	}
	return out, nil
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	c := New(rec)
	c.Select("a", "b")

	_, err := c.Run(ctx, intent.BulkDelete, nil)
	if !clierr.HasCode(err, clierr.ConfirmationReq) {
		t.Fatalf("Run(delete) = %v, want CONFIRMATION_REQUIRED", err)
	}
	if len(rec.calls) != 0 {
		t.Fatalf("delete dispatched without confirmation: %+v", rec.calls)
	}
	if !c.PendingDelete() {
		t.Fatal("expected a pending delete")
	}

	out, err := c.Confirm(ctx)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if len(rec.calls) != 1 || rec.calls[0].Bulk != intent.BulkDelete || rec.calls[0].Kind != intent.BulkAction {
		t.Fatalf("calls = %+v, want one bulk delete", rec.calls)
	}
	if !slices.Equal(rec.calls[0].IDs, []string{"a", "b"}) {
		t.Errorf("IDs = %v, want [a b]", rec.calls[0].IDs)
	}
	if len(out.Results) != 2 || len(c.Selected()) != 0 || c.PendingDelete() {
		t.Errorf("after confirm: results %v, selection %v, pending %v", out.Results, c.Selected(), c.PendingDelete())
	}
}

func TestCancelDropsPendingDelete(t *testing.T) {
	rec := &recorder{}
	c := New(rec)
	c.Select("a")
	_, _ = c.Run(context.Background(), intent.BulkDelete, nil)
	c.Cancel()

	if _, err := c.Confirm(context.Background()); !clierr.HasCode(err, clierr.ActionDisabled) {
		t.Errorf("Confirm after cancel = %v, want ACTION_DISABLED", err)
	}
	if len(rec.calls) != 0 {
		t.Errorf("cancelled delete was dispatched")
	}
}

func TestEmptySelectionDisablesActions(t *testing.T) {
	c := New(&recorder{})
	for _, action := range []intent.BulkKind{intent.BulkComplete, intent.BulkDelete, intent.BulkTag} {
		if c.Enabled(action) {
			t.Errorf("%s enabled with empty selection", action)
		}
		if _, err := c.Run(context.Background(), action, nil); !clierr.HasCode(err, clierr.ActionDisabled) {
			t.Errorf("Run(%s) = %v, want ACTION_DISABLED", action, err)
		}
	}
	if !c.Enabled(intent.BulkSelectAll) {
		t.Error("select-all should not need a selection")
	}
}

func TestSelectAllReplacesSelection(t *testing.T) {
	rec := &recorder{}
	c := New(rec)
	c.Select("stale")

	if _, err := c.Run(context.Background(), intent.BulkSelectAll, []string{"a", "b", "c"}); err != nil {
		t.Fatalf("select-all: %v", err)
	}
	if got := c.Selected(); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("Selected = %v", got)
	}
	if len(rec.calls) != 0 {
		t.Error("select-all should not dispatch")
	}
}

func TestTagNeedsChosenTag(t *testing.T) {
	rec := &recorder{}
	c := New(rec)
	c.Select("a")

	if _, err := c.Run(context.Background(), intent.BulkTag, nil); !clierr.HasCode(err, clierr.NoTagSelected) {
		t.Fatalf("Run(tag) = %v, want NO_TAG_SELECTED", err)
	}
	c.ChooseTag("g1")
	c.ChooseTag("g2")
	if _, err := c.Run(context.Background(), intent.BulkTag, nil); err != nil {
		t.Fatalf("Run(tag): %v", err)
	}
	if len(rec.calls) != 1 || rec.calls[0].Tag != "g2" {
		t.Errorf("calls = %+v, want a single tag intent for g2", rec.calls)
	}
}

func TestLoadingDisablesEverything(t *testing.T) {
	rec := &recorder{}
	c := New(rec)
	c.Select("a")
	c.SetLoading(true)

	for _, action := range []intent.BulkKind{intent.BulkComplete, intent.BulkSelectAll, intent.BulkDelete} {
		if _, err := c.Run(context.Background(), action, []string{"a"}); !clierr.HasCode(err, clierr.ActionDisabled) {
			t.Errorf("Run(%s) while loading = %v, want ACTION_DISABLED", action, err)
		}
	}
	if len(rec.calls) != 0 {
		t.Error("dispatched while loading")
	}
}

func TestPartialFailureNarrowsSelection(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{fail: map[string]bool{"b": true}}
	c := New(rec)
	c.Select("a", "b", "c")

	out, err := c.Run(ctx, intent.BulkComplete, nil)
	if !clierr.HasCode(err, clierr.PartialFailure) {
		t.Fatalf("Run = %v, want PARTIAL_FAILURE", err)
	}
	if got := out.Failed(); !slices.Equal(got, []string{"b"}) {
		t.Errorf("Failed = %v, want [b]", got)
	}
	if got := c.Selected(); !slices.Equal(got, []string{"b"}) {
		t.Errorf("selection = %v, want the failed ID only", got)
	}
	if !errors.Is(c.Err(), err) {
		t.Errorf("Err() = %v, want %v", c.Err(), err)
	}

	rec.fail = nil
	if _, err := c.Retry(ctx); err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if last := rec.calls[len(rec.calls)-1]; !slices.Equal(last.IDs, []string{"b"}) || last.Bulk != intent.BulkComplete {
		t.Errorf("retry dispatched %+v", last)
	}
	if c.Err() != nil || len(c.Selected()) != 0 {
		t.Errorf("after retry: err %v, selection %v", c.Err(), c.Selected())
	}
}

func TestDispatchErrorIsSurfacedVerbatim(t *testing.T) {
	rec := &recorder{err: errors.New("permission-denied: missing or insufficient permissions")}
	c := New(rec)
	c.Select("a")

	_, err := c.Run(context.Background(), intent.BulkComplete, nil)
	if err == nil || err.Error() != "permission-denied: missing or insufficient permissions" {
		t.Fatalf("err = %v", err)
	}
	if c.Loading() {
		t.Error("loading should clear after dispatch")
	}
	if got := c.Selected(); !slices.Equal(got, []string{"a"}) {
		t.Errorf("selection = %v, want it kept for retry", got)
	}
}

func TestToggleSelection(t *testing.T) {
	c := New(&recorder{})
	c.Toggle("a")
	c.Toggle("b")
	c.Toggle("a")
	if got := c.Selected(); !slices.Equal(got, []string{"b"}) || c.IsSelected("a") {
		t.Errorf("Selected = %v", got)
	}
}
