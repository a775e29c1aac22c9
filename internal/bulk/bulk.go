// Package bulk coordinates selection state and bulk actions over the
// visible task list.
package bulk

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/twiced-technology-gmbh/tasklane/internal/clierr"
	"github.com/twiced-technology-gmbh/tasklane/internal/intent"
)

// Coordinator holds the selection, the chosen tag and the pending delete
// confirmation, and dispatches bulk intents. It is safe for concurrent use.
type Coordinator struct {
	dispatcher intent.Dispatcher

	mu       sync.Mutex
	selected []string
	tag      string
	pending  bool
	loading  bool
	last     intent.BulkKind
	err      error
}

// New returns a Coordinator dispatching through d.
func New(d intent.Dispatcher) *Coordinator {
	return &Coordinator{dispatcher: d}
}

// Toggle adds id to the selection, or removes it if already selected.
func (c *Coordinator) Toggle(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := slices.Index(c.selected, id); i >= 0 {
		c.selected = slices.Delete(c.selected, i, i+1)
		return
	}
	c.selected = append(c.selected, id)
}

// Select adds ids to the selection, ignoring duplicates.
func (c *Coordinator) Select(ids ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		if id != "" && !slices.Contains(c.selected, id) {
			c.selected = append(c.selected, id)
		}
	}
}

// Clear empties the selection and cancels any pending delete.
func (c *Coordinator) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = nil
	c.pending = false
}

// Selected returns the selected IDs in selection order.
func (c *Coordinator) Selected() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.selected)
}

// IsSelected reports whether id is selected.
func (c *Coordinator) IsSelected(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Contains(c.selected, id)
}

// ChooseTag sets the tag the tag action applies. Only one tag is applied
// per action; choosing another replaces it. An empty id clears the choice.
func (c *Coordinator) ChooseTag(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tag = id
}

// Tag returns the chosen tag ID.
func (c *Coordinator) Tag() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tag
}

// SetLoading marks the underlying list as loading. All actions are
// disabled while loading.
func (c *Coordinator) SetLoading(loading bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = loading
}

// Loading reports whether actions are currently disabled by a load or a
// dispatch in flight.
func (c *Coordinator) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// PendingDelete reports whether a delete is waiting for confirmation.
func (c *Coordinator) PendingDelete() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Err returns the error of the last dispatch, or nil.
func (c *Coordinator) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Enabled reports whether action would currently be accepted by Run.
func (c *Coordinator) Enabled(action intent.BulkKind) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.check(action) == nil
}

// check reports why action cannot run. Callers hold mu.
func (c *Coordinator) check(action intent.BulkKind) error {
	if c.loading {
		return clierr.New(clierr.ActionDisabled, "actions are disabled while loading")
	}
	switch action {
	case intent.BulkSelectAll:
		return nil
	case intent.BulkComplete, intent.BulkDelete, intent.BulkTag:
	default:
		return clierr.Newf(clierr.InvalidInput, "unknown bulk action %q", action).
			WithDetails(map[string]any{"action": string(action), "allowed": intent.BulkKinds()})
	}
	if len(c.selected) == 0 {
		return clierr.New(clierr.ActionDisabled, "no tasks selected")
	}
	if action == intent.BulkTag && c.tag == "" {
		return clierr.New(clierr.NoTagSelected, "choose a tag to apply")
	}
	return nil
}

// Run triggers action. select-all replaces the selection with visible and
// dispatches nothing. delete only arms the confirmation and returns a
// CONFIRMATION_REQUIRED error; Confirm dispatches it. complete and tag are
// dispatched immediately.
func (c *Coordinator) Run(ctx context.Context, action intent.BulkKind, visible []string) (intent.Outcome, error) {
	c.mu.Lock()
	if err := c.check(action); err != nil {
		c.mu.Unlock()
		return intent.Outcome{}, err
	}
	switch action {
	case intent.BulkSelectAll:
		c.selected = slices.Clone(visible)
		c.pending = false
		c.mu.Unlock()
		return intent.Outcome{}, nil
	case intent.BulkDelete:
		c.pending = true
		n := len(c.selected)
		c.mu.Unlock()
		return intent.Outcome{}, clierr.Newf(clierr.ConfirmationReq, "delete %d task(s)? confirm to continue", n).
			WithDetails(map[string]any{"count": n})
	}
	c.pending = false
	return c.dispatchLocked(ctx, action)
}

// Confirm dispatches the pending delete.
func (c *Coordinator) Confirm(ctx context.Context) (intent.Outcome, error) {
	c.mu.Lock()
	if !c.pending {
		c.mu.Unlock()
		return intent.Outcome{}, clierr.New(clierr.ActionDisabled, "no delete awaiting confirmation")
	}
	if err := c.check(intent.BulkDelete); err != nil {
		c.pending = false
		c.mu.Unlock()
		return intent.Outcome{}, err
	}
	c.pending = false
	return c.dispatchLocked(ctx, intent.BulkDelete)
}

// Cancel discards a pending delete.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = false
}

// Retry re-dispatches the last failed action over the current selection,
// which a partial failure narrowed to the failed IDs.
func (c *Coordinator) Retry(ctx context.Context) (intent.Outcome, error) {
	c.mu.Lock()
	if c.err == nil || c.last == "" {
		c.mu.Unlock()
		return intent.Outcome{}, clierr.New(clierr.ActionDisabled, "nothing to retry")
	}
	action := c.last
	if err := c.check(action); err != nil {
		c.mu.Unlock()
		return intent.Outcome{}, err
	}
	return c.dispatchLocked(ctx, action)
}

// dispatchLocked sends action over the current selection. It is called
// with mu held and releases it while the dispatcher runs; actions are
// disabled for the duration.
func (c *Coordinator) dispatchLocked(ctx context.Context, action intent.BulkKind) (intent.Outcome, error) {
	in := intent.Intent{
		Kind: intent.BulkAction,
		Bulk: action,
		IDs:  slices.Clone(c.selected),
		Tag:  c.tag,
	}
	c.loading = true
	c.mu.Unlock()

	out, err := c.dispatcher.Dispatch(ctx, in)
	failed := out.Failed()
	if err == nil && len(failed) > 0 {
		err = PartialFailure(failed)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	c.last = action
	c.err = err
	switch {
	case err == nil:
		c.selected = nil
	case len(failed) > 0:
		c.selected = failed
	}
	return out, err
}

// PartialFailure reports the IDs that failed within an otherwise
// dispatched batch.
func PartialFailure(failed []string) *clierr.Error {
	return clierr.Newf(clierr.PartialFailure, "%d task(s) failed: %s", len(failed), strings.Join(failed, ", ")).
		WithDetails(map[string]any{"failed": failed, "retryable": true})
}

// Summary describes a finished batch for display.
func Summary(action intent.BulkKind, out intent.Outcome) string {
	ok := 0
	for _, r := range out.Results {
		if r.OK {
			ok++
		}
	}
	return fmt.Sprintf("%s: %d of %d task(s) succeeded", action, ok, len(out.Results))
}
