// Package tui implements the interactive task list.
package tui

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/twiced-technology-gmbh/tasklane/internal/app"
	"github.com/twiced-technology-gmbh/tasklane/internal/bulk"
	"github.com/twiced-technology-gmbh/tasklane/internal/clierr"
	"github.com/twiced-technology-gmbh/tasklane/internal/intent"
	"github.com/twiced-technology-gmbh/tasklane/internal/task"
	"github.com/twiced-technology-gmbh/tasklane/internal/view"
)

// mode represents the current screen state.
type mode int

const (
	modeList mode = iota
	modeSearch
	modeConfirmDelete
)

const tickInterval = 30 * time.Second // how often overdue state refreshes

var fallbackPageSizes = []int{5, 10, 25, 50}

// List is the top-level bubbletea model.
type List struct {
	app    *app.App
	keys   keyMap
	search textinput.Model

	mode   mode
	page   view.Page
	cursor int
	width  int
	height int
	busy   bool
	err    error
	status string
	tagIdx int // 0 means no tag chosen; otherwise index+1 into the catalog
}

// NewList creates a List over a loaded App.
func NewList(a *app.App) *List {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "search title or description"
	l := &List{app: a, keys: defaultKeys(), search: ti}
	l.refresh()
	return l
}

// ReloadMsg is sent by the store watcher to trigger a reload.
type ReloadMsg struct{}

// TickMsg is sent periodically so overdue state follows the clock.
type TickMsg struct{}

// loadedMsg reports the end of a reload.
type loadedMsg struct{ err error }

// doneMsg reports the end of a dispatched action.
type doneMsg struct {
	status string
	err    error
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg { return TickMsg{} })
}

// Init implements tea.Model.
func (l *List) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (l *List) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return l.handleKey(msg)
	case tea.WindowSizeMsg:
		l.width = msg.Width
		l.height = msg.Height
		return l, nil
	case ReloadMsg:
		if l.busy {
			return l, nil
		}
		return l, l.reload()
	case TickMsg:
		l.refresh()
		return l, tickCmd()
	case loadedMsg:
		l.busy = false
		l.err = msg.err
		l.refresh()
		return l, nil
	case doneMsg:
		l.busy = false
		l.err = msg.err
		if msg.status != "" {
			l.status = msg.status
		}
		l.refresh()
		return l, nil
	}
	return l, nil
}

func (l *List) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return l, tea.Quit
	}
	switch l.mode {
	case modeSearch:
		return l.handleSearchKey(msg)
	case modeConfirmDelete:
		return l.handleConfirmKey(msg)
	}
	return l.handleListKey(msg)
}

func (l *List) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := l.keys
	switch {
	case key.Matches(msg, k.Quit):
		return l, tea.Quit
	case key.Matches(msg, k.Up):
		if l.cursor > 0 {
			l.cursor--
		}
		return l, nil
	case key.Matches(msg, k.Down):
		if l.cursor < len(l.page.Items)-1 {
			l.cursor++
		}
		return l, nil
	}

	// Everything below acts on data and is disabled while loading.
	if l.disabled() {
		l.status = "busy, please wait"
		return l, nil
	}
	l.status = ""

	switch {
	case key.Matches(msg, k.Select):
		if t := l.current(); t != nil {
			l.app.Bulk.Toggle(t.ID)
		}
	case key.Matches(msg, k.SelectAll):
		_, err := l.app.Bulk.Run(context.Background(), intent.BulkSelectAll, l.app.Visible())
		l.err = err
	case key.Matches(msg, k.Toggle):
		if t := l.current(); t != nil {
			return l, l.dispatch(intent.Intent{Kind: intent.ToggleComplete, ID: t.ID}, "")
		}
	case key.Matches(msg, k.Complete):
		return l.runBulk(intent.BulkComplete)
	case key.Matches(msg, k.Delete):
		_, err := l.app.Bulk.Run(context.Background(), intent.BulkDelete, nil)
		if clierr.HasCode(err, clierr.ConfirmationReq) {
			l.mode = modeConfirmDelete
			l.err = nil
			return l, nil
		}
		l.err = err
	case key.Matches(msg, k.CycleTag):
		l.cycleTag()
	case key.Matches(msg, k.Tag):
		return l.runBulk(intent.BulkTag)
	case key.Matches(msg, k.Search):
		l.mode = modeSearch
		l.search.SetValue(l.app.View().Filter.Search)
		return l, l.search.Focus()
	case key.Matches(msg, k.Sort):
		v := l.app.View()
		return l, l.change(intent.Intent{Kind: intent.ChangeSort, Sort: nextSortKey(v.Sort), Direction: v.Direction})
	case key.Matches(msg, k.Direction):
		v := l.app.View()
		return l, l.change(intent.Intent{Kind: intent.ChangeSort, Sort: v.Sort, Direction: v.Direction.Flip()})
	case key.Matches(msg, k.Status):
		f := l.app.View().Filter
		f.Status = nextStatus(f.Status)
		return l, l.change(intent.Intent{Kind: intent.ChangeFilter, Filter: f})
	case key.Matches(msg, k.Overdue):
		f := l.app.View().Filter
		f.Overdue = !f.Overdue
		return l, l.change(intent.Intent{Kind: intent.ChangeFilter, Filter: f})
	case key.Matches(msg, k.Next):
		return l, l.change(intent.Intent{Kind: intent.ChangePage, N: l.page.Page + 1})
	case key.Matches(msg, k.Prev):
		return l, l.change(intent.Intent{Kind: intent.ChangePage, N: l.page.Page - 1})
	case key.Matches(msg, k.Bigger):
		return l, l.change(intent.Intent{Kind: intent.ChangePageSize, N: l.stepPageSize(1)})
	case key.Matches(msg, k.Smaller):
		return l, l.change(intent.Intent{Kind: intent.ChangePageSize, N: l.stepPageSize(-1)})
	case key.Matches(msg, k.Retry):
		if l.app.Bulk.Err() != nil {
			return l.retryBulk()
		}
		return l, l.reload()
	}
	l.refresh()
	return l, nil
}

func (l *List) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		l.mode = modeList
		l.search.Blur()
		f := l.app.View().Filter
		f.Search = l.search.Value()
		return l, l.change(intent.Intent{Kind: intent.ChangeFilter, Filter: f})
	case "esc":
		l.mode = modeList
		l.search.Blur()
		return l, nil
	}
	var cmd tea.Cmd
	l.search, cmd = l.search.Update(msg)
	return l, cmd
}

func (l *List) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, l.keys.Yes):
		l.mode = modeList
		l.busy = true
		n := len(l.app.Bulk.Selected())
		return l, func() tea.Msg {
			out, err := l.app.Bulk.Confirm(context.Background())
			return doneMsg{status: summary(intent.BulkDelete, out, n), err: err}
		}
	case key.Matches(msg, l.keys.No):
		l.app.Bulk.Cancel()
		l.mode = modeList
	}
	return l, nil
}

// disabled reports whether data actions are currently refused.
func (l *List) disabled() bool {
	return l.busy || l.app.Bulk.Loading()
}

// change applies a view intent synchronously; view changes never touch
// the store. A rejected change keeps the current page.
func (l *List) change(in intent.Intent) tea.Cmd {
	_, err := l.app.Dispatch(context.Background(), in)
	l.err = err
	if err == nil {
		l.cursor = 0
	}
	l.refresh()
	return nil
}

// dispatch runs a persisting intent off the update loop.
func (l *List) dispatch(in intent.Intent, status string) tea.Cmd {
	l.busy = true
	return func() tea.Msg {
		_, err := l.app.Dispatch(context.Background(), in)
		return doneMsg{status: status, err: err}
	}
}

func (l *List) runBulk(action intent.BulkKind) (tea.Model, tea.Cmd) {
	if !l.app.Bulk.Enabled(action) {
		_, l.err = l.app.Bulk.Run(context.Background(), action, nil)
		return l, nil
	}
	l.busy = true
	n := len(l.app.Bulk.Selected())
	return l, func() tea.Msg {
		out, err := l.app.Bulk.Run(context.Background(), action, nil)
		return doneMsg{status: summary(action, out, n), err: err}
	}
}

func (l *List) retryBulk() (tea.Model, tea.Cmd) {
	l.busy = true
	return l, func() tea.Msg {
		out, err := l.app.Bulk.Retry(context.Background())
		return doneMsg{status: bulk.Summary("retry", out), err: err}
	}
}

func (l *List) reload() tea.Cmd {
	l.busy = true
	return func() tea.Msg {
		return loadedMsg{err: l.app.Load(context.Background())}
	}
}

// refresh recomputes the visible page from the App.
func (l *List) refresh() {
	p, err := l.app.Page()
	if err != nil {
		l.err = err
		return
	}
	l.page = p
	if l.cursor >= len(p.Items) {
		l.cursor = max(len(p.Items)-1, 0)
	}
}

func (l *List) current() *task.Task {
	if l.cursor >= 0 && l.cursor < len(l.page.Items) {
		return l.page.Items[l.cursor]
	}
	return nil
}

// cycleTag moves the chosen tag through the catalog and back to none.
func (l *List) cycleTag() {
	tags := l.app.Tags()
	if len(tags) == 0 {
		l.err = clierr.New(clierr.NoTagSelected, "no tags defined; add one with: tasklane tag add NAME")
		return
	}
	l.tagIdx = (l.tagIdx + 1) % (len(tags) + 1)
	if l.tagIdx == 0 {
		l.app.Bulk.ChooseTag("")
		return
	}
	l.app.Bulk.ChooseTag(tags[l.tagIdx-1].ID)
}

func (l *List) stepPageSize(step int) int {
	sizes := l.app.PageSizes()
	if len(sizes) == 0 {
		sizes = fallbackPageSizes
	}
	sizes = slices.Sorted(slices.Values(sizes))
	i := slices.Index(sizes, l.page.PageSize)
	if i < 0 {
		return sizes[0]
	}
	return sizes[min(max(i+step, 0), len(sizes)-1)]
}

func nextSortKey(k view.SortKey) view.SortKey {
	keys := view.SortKeys()
	i := slices.Index(keys, string(k))
	return view.SortKey(keys[(i+1)%len(keys)])
}

func nextStatus(s view.Status) view.Status {
	switch s {
	case view.StatusAll:
		return view.StatusActive
	case view.StatusActive:
		return view.StatusCompleted
	}
	return view.StatusAll
}

func summary(action intent.BulkKind, out intent.Outcome, n int) string {
	if len(out.Results) == 0 {
		return fmt.Sprintf("%s: nothing done (%d selected)", action, n)
	}
	return bulk.Summary(action, out)
}
