// Package app holds the application state for one signed-in session: the
// store, the identity, the normalized snapshot and the list view. It is the
// single dispatch point for intents.
package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/twiced-technology-gmbh/tasklane/internal/activity"
	"github.com/twiced-technology-gmbh/tasklane/internal/bulk"
	"github.com/twiced-technology-gmbh/tasklane/internal/clierr"
	"github.com/twiced-technology-gmbh/tasklane/internal/normalize"
	"github.com/twiced-technology-gmbh/tasklane/internal/session"
	"github.com/twiced-technology-gmbh/tasklane/internal/stats"
	"github.com/twiced-technology-gmbh/tasklane/internal/store"
	"github.com/twiced-technology-gmbh/tasklane/internal/task"
	"github.com/twiced-technology-gmbh/tasklane/internal/view"
)

// Options configures an App.
type Options struct {
	Store    store.Store
	Identity session.Identity
	// Log receives mutation entries; nil disables logging.
	Log *activity.Log
	// Now is the clock; defaults to time.Now.
	Now func() time.Time
	// View is the initial list view.
	View view.Options
	// PageSizes restricts ChangePageSize; empty allows any positive size.
	PageSizes []int
	// DefaultPriority is applied to new tasks without an explicit priority.
	DefaultPriority task.Priority
}

// App is the application state. Its snapshot is replaced wholesale on each
// successful load and never patched by callers; the only in-place change
// is the optimistic completion toggle.
type App struct {
	store           store.Store
	user            session.Identity
	log             *activity.Log
	now             func() time.Time
	pageSizes       []int
	defaultPriority task.Priority

	// Bulk holds selection state and dispatches bulk intents back into the App.
	Bulk *bulk.Coordinator

	mu         sync.Mutex
	tasks      []*task.Task
	categories []task.Category
	tags       []task.Tag
	view       view.Options
	err        error
}

// New creates an App. Call Load before reading the snapshot and Close at
// the end of the session.
func New(opts Options) *App {
	a := &App{
		store:           opts.Store,
		user:            opts.Identity,
		log:             opts.Log,
		now:             opts.Now,
		pageSizes:       slices.Clone(opts.PageSizes),
		defaultPriority: opts.DefaultPriority,
		view:            opts.View,
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.view.Page < 1 {
		a.view.Page = 1
	}
	if a.view.PageSize < 1 {
		a.view.PageSize = view.DefaultPageSize
	}
	if a.view.Sort == "" {
		a.view.Sort = view.SortDueDate
	}
	if a.view.Direction == "" {
		a.view.Direction = view.Asc
	}
	a.Bulk = bulk.New(a)
	return a
}

// Close releases the store.
func (a *App) Close() error {
	return a.store.Close()
}

// Identity returns the signed-in user.
func (a *App) Identity() session.Identity { return a.user }

// Now returns the App's current time.
func (a *App) Now() time.Time { return a.now() }

// Load reads tasks, categories and tags for the current user and replaces
// the snapshot. Tasks owned by the user and tasks shared with the user's
// email are both included. On failure the snapshot is left unchanged and a
// retryable PERSISTENCE_ERROR is returned.
func (a *App) Load(ctx context.Context) error {
	a.Bulk.SetLoading(true)
	defer a.Bulk.SetLoading(false)
	return a.reload(ctx)
}

// reload replaces the snapshot without touching the bulk loading flag, so
// it can run inside a bulk dispatch.
func (a *App) reload(ctx context.Context) error {
	tasks, cats, tags, err := a.fetch(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.err = persistenceError(err)
		return a.err
	}
	a.tasks = tasks
	a.categories = cats
	a.tags = tags
	a.err = nil
	return nil
}

func (a *App) fetch(ctx context.Context) ([]*task.Task, []task.Category, []task.Tag, error) {
	now := a.now()
	docs, err := a.store.Query(ctx, store.Tasks, store.Query{Owner: a.user.UserID, SharedWith: a.user.Email})
	if err != nil {
		return nil, nil, nil, err
	}
	tasks := normalize.Tasks(docs, now)

	catDocs, err := a.store.Query(ctx, store.Categories, store.Query{Owner: a.user.UserID})
	if err != nil {
		return nil, nil, nil, err
	}
	cats := make([]task.Category, 0, len(catDocs))
	for _, d := range catDocs {
		cats = append(cats, normalize.Category(d))
	}
	slices.SortStableFunc(cats, func(x, y task.Category) int { return x.Order - y.Order })

	tagDocs, err := a.store.Query(ctx, store.Tags, store.Query{Owner: a.user.UserID})
	if err != nil {
		return nil, nil, nil, err
	}
	tags := make([]task.Tag, 0, len(tagDocs))
	for _, d := range tagDocs {
		tags = append(tags, normalize.Tag(d))
	}
	return tasks, cats, tags, nil
}

// Err returns the error of the last load, if it failed.
func (a *App) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Tasks returns the current snapshot. The returned tasks must not be modified.
func (a *App) Tasks() []*task.Task {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.tasks)
}

// Categories returns the user's categories in display order.
func (a *App) Categories() []task.Category {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.categories)
}

// Tags returns the user's tags.
func (a *App) Tags() []task.Tag {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.tags)
}

// Catalog returns the category and tag catalog for name resolution.
func (a *App) Catalog() task.Catalog {
	a.mu.Lock()
	defer a.mu.Unlock()
	return task.Catalog{Categories: slices.Clone(a.categories), Tags: slices.Clone(a.tags)}
}

// Task resolves a full ID or unique prefix against the snapshot.
func (a *App) Task(ref string) (*task.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return task.ResolveID(a.tasks, ref)
}

// Stats aggregates the snapshot as of now.
func (a *App) Stats() stats.Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return stats.Compute(a.tasks, a.tags, a.now())
}

// View returns the current list view options.
func (a *App) View() view.Options {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.view
}

// Page computes the current page of the list view. When the snapshot has
// shrunk below the current page, the view moves to the last page.
func (a *App) Page() (view.Page, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, pages := view.Count(a.tasks, a.view, a.now())
	if a.view.Page > pages {
		a.view.Page = pages
	}
	return view.Apply(a.tasks, a.view, a.now())
}

// Visible returns the IDs on the current page, in display order.
func (a *App) Visible() []string {
	p, err := a.Page()
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(p.Items))
	for _, t := range p.Items {
		ids = append(ids, t.ID)
	}
	return ids
}

// PageSizes returns the allowed page sizes, or nil when any size is allowed.
func (a *App) PageSizes() []int {
	return slices.Clone(a.pageSizes)
}

// SetFilter replaces the filter and returns to the first page.
func (a *App) SetFilter(f view.FilterOptions) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.view.Filter = f
	a.view.Page = 1
}

// SetSort changes the sort key and direction and returns to the first page.
func (a *App) SetSort(key view.SortKey, dir view.Direction) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.view.Sort = key
	a.view.Direction = dir
	a.view.Page = 1
}

// SetPage moves to page n. A page outside [1, totalPages] is rejected with
// INVALID_PAGE and the current page is kept.
func (a *App) SetPage(n int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, pages := view.Count(a.tasks, a.view, a.now())
	if err := view.ValidatePage(n, pages); err != nil {
		return err
	}
	a.view.Page = n
	return nil
}

// SetPageSize changes the page size and returns to the first page.
func (a *App) SetPageSize(n int) error {
	if err := view.ValidatePageSize(n); err != nil {
		return err
	}
	if len(a.pageSizes) > 0 && !slices.Contains(a.pageSizes, n) {
		return clierr.Newf(clierr.InvalidPageSize, "invalid page size %d", n).
			WithDetails(map[string]any{"page_size": n, "allowed": a.pageSizes})
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.view.PageSize = n
	a.view.Page = 1
	return nil
}

// persistenceError wraps a store failure. Missing documents and refused
// access keep their own codes; everything else is a retryable
// PERSISTENCE_ERROR carrying the store's message verbatim.
func persistenceError(err error) error {
	var cliErr *clierr.Error
	switch {
	case errors.As(err, &cliErr):
		return err
	case errors.Is(err, store.ErrNotFound):
		return clierr.Wrap(clierr.TaskNotFound, err)
	case errors.Is(err, store.ErrPermission):
		return clierr.Wrap(clierr.PermissionDenied, err)
	}
	return clierr.Wrap(clierr.PersistenceError, err).
		WithDetails(map[string]any{"retryable": true})
}

func permissionDenied(action string, t *task.Task) *clierr.Error {
	return clierr.Newf(clierr.PermissionDenied, "not allowed to %s task %s", action, t.ID).
		WithDetails(map[string]any{"id": t.ID, "action": action})
}

func (a *App) record(action, taskID, detail string) {
	a.log.Record(action, taskID, a.user.UserID, detail)
}

func (a *App) mustEdit(t *task.Task) error {
	if !task.CanEdit(t, a.user.UserID, a.user.Email) {
		return permissionDenied("edit", t)
	}
	return nil
}

func (a *App) mustOwn(t *task.Task, action string) error {
	if !task.IsOwner(t, a.user.UserID) {
		return permissionDenied(action, t)
	}
	return nil
}

func (a *App) replace(t *task.Task) {
	next := slices.Clone(a.tasks)
	for i := range next {
		if next[i].ID == t.ID {
			next[i] = t
		}
	}
	a.tasks = next
}

func describe(t *task.Task) string {
	return fmt.Sprintf("%q", t.Title)
}
