package app

import (
	"context"
	"errors"
	"time"

	"github.com/twiced-technology-gmbh/tasklane/internal/bulk"
	"github.com/twiced-technology-gmbh/tasklane/internal/clierr"
	"github.com/twiced-technology-gmbh/tasklane/internal/export"
	"github.com/twiced-technology-gmbh/tasklane/internal/intent"
	"github.com/twiced-technology-gmbh/tasklane/internal/output"
	"github.com/twiced-technology-gmbh/tasklane/internal/store"
	"github.com/twiced-technology-gmbh/tasklane/internal/task"
)

// Dispatch executes a single intent. It implements intent.Dispatcher.
func (a *App) Dispatch(ctx context.Context, in intent.Intent) (intent.Outcome, error) {
	switch in.Kind {
	case intent.ToggleComplete:
		return single(a.ToggleComplete(ctx, in.ID))
	case intent.Delete:
		return single(a.Delete(ctx, in.ID))
	case intent.Update:
		return single(a.Update(ctx, in.ID, in.Fields))
	case intent.Edit:
		return single(a.Edit(ctx, in.Task))
	case intent.BulkAction:
		if in.Bulk == intent.BulkSelectAll {
			return a.Bulk.Run(ctx, in.Bulk, a.Visible())
		}
		return a.ApplyBulk(ctx, in.Bulk, in.IDs, in.Tag)
	case intent.Export:
		p, err := a.Export(in.Format, in.Export)
		if err != nil {
			return intent.Outcome{}, err
		}
		return intent.Outcome{Export: &p}, nil
	case intent.ChangeSort:
		a.SetSort(in.Sort, in.Direction)
		return a.pageOutcome()
	case intent.ChangeFilter:
		a.SetFilter(in.Filter)
		return a.pageOutcome()
	case intent.ChangePage:
		if err := a.SetPage(in.N); err != nil {
			return intent.Outcome{}, err
		}
		return a.pageOutcome()
	case intent.ChangePageSize:
		if err := a.SetPageSize(in.N); err != nil {
			return intent.Outcome{}, err
		}
		return a.pageOutcome()
	}
	return intent.Outcome{}, clierr.Newf(clierr.InvalidInput, "unknown intent %s", in.Kind)
}

func (a *App) pageOutcome() (intent.Outcome, error) {
	p, err := a.Page()
	if err != nil {
		return intent.Outcome{}, err
	}
	return intent.Outcome{Page: &p}, nil
}

func single(t *task.Task, err error) (intent.Outcome, error) {
	if t == nil {
		return intent.Outcome{}, err
	}
	r := output.BatchResult{ID: t.ID, OK: err == nil}
	if err != nil {
		r.Error, r.Code = errorFields(err)
	}
	return intent.Outcome{Results: []output.BatchResult{r}}, err
}

// Export builds the export payload over the whole snapshot.
func (a *App) Export(format intent.Format, filter intent.ExportFilter) (export.Payload, error) {
	p, err := export.Build(a.Tasks(), format, filter)
	if err != nil {
		return p, err
	}
	a.record("export", "", string(format))
	return p, nil
}

// ApplyBulk runs action over ids with one store call per task. Failures do
// not stop the batch; every id gets a result, and any failure makes the
// returned error a retryable PARTIAL_FAILURE naming the failed ids.
func (a *App) ApplyBulk(ctx context.Context, action intent.BulkKind, ids []string, tag string) (intent.Outcome, error) {
	switch action {
	case intent.BulkComplete, intent.BulkDelete:
	case intent.BulkTag:
		if tag == "" {
			return intent.Outcome{}, clierr.New(clierr.NoTagSelected, "choose a tag to apply")
		}
		id, err := a.TagID(tag)
		if err != nil {
			return intent.Outcome{}, err
		}
		tag = id
	default:
		return intent.Outcome{}, clierr.Newf(clierr.InvalidInput, "unknown bulk action %q", action).
			WithDetails(map[string]any{"action": string(action), "allowed": intent.BulkKinds()})
	}
	if len(ids) == 0 {
		return intent.Outcome{}, clierr.New(clierr.ActionDisabled, "no tasks selected")
	}

	now := a.now()
	out := intent.Outcome{Results: make([]output.BatchResult, 0, len(ids))}
	for _, id := range ids {
		err := a.applyOne(ctx, action, id, tag, now)
		r := output.BatchResult{ID: id, OK: err == nil}
		if err != nil {
			r.Error, r.Code = errorFields(err)
		}
		out.Results = append(out.Results, r)
	}
	a.record("bulk", "", string(action)+" "+bulk.Summary(action, out))

	if err := a.reload(ctx); err != nil && len(out.Failed()) == 0 {
		return out, err
	}
	if failed := out.Failed(); len(failed) > 0 {
		return out, bulk.PartialFailure(failed)
	}
	return out, nil
}

func (a *App) applyOne(ctx context.Context, action intent.BulkKind, id, tag string, now time.Time) error {
	t, err := a.Task(id)
	if err != nil {
		return err
	}
	switch action {
	case intent.BulkDelete:
		if err := a.mustOwn(t, "delete"); err != nil {
			return err
		}
		if err := a.store.Delete(ctx, store.Tasks, t.ID); err != nil {
			return persistenceError(err)
		}
		return nil
	case intent.BulkComplete:
		if err := a.mustEdit(t); err != nil {
			return err
		}
		if t.Completed {
			return nil
		}
		return a.write(ctx, t.ID, map[string]any{"completed": true, "updatedAt": now})
	case intent.BulkTag:
		if err := a.mustEdit(t); err != nil {
			return err
		}
		next := t.Clone()
		if !task.AddTag(next, tag, now) {
			return nil
		}
		return a.write(ctx, t.ID, map[string]any{"tags": next.Tags, "updatedAt": now})
	}
	return nil
}

func (a *App) write(ctx context.Context, id string, fields map[string]any) error {
	if err := a.store.Update(ctx, store.Tasks, id, fields); err != nil {
		return persistenceError(err)
	}
	return nil
}

func errorFields(err error) (message, code string) {
	var cliErr *clierr.Error
	if errors.As(err, &cliErr) {
		return cliErr.Message, cliErr.Code
	}
	return err.Error(), clierr.InternalError
}

var _ intent.Dispatcher = (*App)(nil)
