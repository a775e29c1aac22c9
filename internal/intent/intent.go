// Package intent defines the commands a user can issue against the task
// list. Every mutation and view change flows through a single Dispatcher.
package intent

import (
	"context"
	"fmt"

	"github.com/twiced-technology-gmbh/tasklane/internal/output"
	"github.com/twiced-technology-gmbh/tasklane/internal/task"
	"github.com/twiced-technology-gmbh/tasklane/internal/timestamp"
	"github.com/twiced-technology-gmbh/tasklane/internal/view"
)

// Kind enumerates the intents.
type Kind int

// Intent kinds.
const (
	ToggleComplete Kind = iota + 1
	Delete
	Update
	Edit
	BulkAction
	Export
	ChangeSort
	ChangeFilter
	ChangePage
	ChangePageSize
)

var kindNames = map[Kind]string{
	ToggleComplete: "toggleComplete",
	Delete:         "delete",
	Update:         "update",
	Edit:           "edit",
	BulkAction:     "bulkAction",
	Export:         "export",
	ChangeSort:     "changeSort",
	ChangeFilter:   "changeFilter",
	ChangePage:     "changePage",
	ChangePageSize: "changePageSize",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// BulkKind is the action applied to a selection.
type BulkKind string

// Bulk actions.
const (
	BulkComplete  BulkKind = "complete"
	BulkDelete    BulkKind = "delete"
	BulkTag       BulkKind = "tag"
	BulkSelectAll BulkKind = "select-all"
)

// BulkKinds returns the valid bulk actions.
func BulkKinds() []string {
	return []string{string(BulkComplete), string(BulkDelete), string(BulkTag), string(BulkSelectAll)}
}

// Format is an export output format.
type Format string

// Export formats.
const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatPDF  Format = "pdf"
)

// ExportFilter narrows an export. A zero value exports everything.
type ExportFilter struct {
	Range  timestamp.Range `json:"range,omitzero"`
	Tag    string          `json:"tag,omitempty"`
	Status view.Status     `json:"status,omitempty"`
}

// Intent is a single user command. Only the fields relevant to Kind are set.
type Intent struct {
	Kind Kind

	// ID targets ToggleComplete, Delete, Update and Edit.
	ID string
	// Task is the edited task for Edit.
	Task *task.Task
	// Fields holds the partial update for Update. A nil value clears the field.
	Fields map[string]any

	// Bulk, IDs and Tag describe a BulkAction.
	Bulk BulkKind
	IDs  []string
	Tag  string

	// Format and Export describe an Export.
	Format Format
	Export ExportFilter

	// Sort and Direction describe a ChangeSort.
	Sort      view.SortKey
	Direction view.Direction
	// Filter describes a ChangeFilter.
	Filter view.FilterOptions
	// N is the target page for ChangePage or the size for ChangePageSize.
	N int
}

// Payload is a filtered task list together with the chosen export format.
// Rendering it into bytes is up to the receiver.
type Payload struct {
	Format Format       `json:"format"`
	Tasks  []*task.Task `json:"filteredTasks"`
}

// Outcome is what a dispatched intent produced. Results holds one entry per
// affected task ID for mutations that touch several tasks; Page is set by
// view changes and Export by exports.
type Outcome struct {
	Results []output.BatchResult
	Page    *view.Page
	Export  *Payload
}

// Failed returns the IDs whose operation did not succeed.
func (o Outcome) Failed() []string {
	var ids []string
	for _, r := range o.Results {
		if !r.OK {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// Dispatcher executes intents.
type Dispatcher interface {
	Dispatch(ctx context.Context, in Intent) (Outcome, error)
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, in Intent) (Outcome, error)

// Dispatch implements Dispatcher.
func (f DispatcherFunc) Dispatch(ctx context.Context, in Intent) (Outcome, error) {
	return f(ctx, in)
}
