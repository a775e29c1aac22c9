package app

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/tasklane/internal/clierr"
	"github.com/twiced-technology-gmbh/tasklane/internal/normalize"
	"github.com/twiced-technology-gmbh/tasklane/internal/store"
	"github.com/twiced-technology-gmbh/tasklane/internal/task"
	"github.com/twiced-technology-gmbh/tasklane/internal/timeparse"
)

// Draft holds the user-supplied fields of a new task.
type Draft struct {
	Title       string
	Description string
	// Due is the explicit due date. When nil, a clock time found in the
	// title sets the due date to today at that time.
	Due        *time.Time
	Priority   task.Priority
	Tags       []string // tag IDs
	CategoryID string
}

// Create validates d, persists a new task owned by the current user and
// reloads the snapshot.
func (a *App) Create(ctx context.Context, d Draft) (*task.Task, error) {
	if err := task.ValidateTitle(d.Title); err != nil {
		return nil, err
	}
	if d.Priority == task.PriorityNone {
		d.Priority = a.defaultPriority
	}
	if err := task.ValidatePriority(string(d.Priority)); err != nil {
		return nil, err
	}

	now := a.now()
	due := d.Due
	if due == nil {
		if r := timeparse.Parse(d.Title, now); r.Found() {
			due = &r.Match.Time
		}
	}

	a.mu.Lock()
	order := 0
	for _, t := range a.tasks {
		order = max(order, t.Order)
	}
	a.mu.Unlock()

	t := &task.Task{
		UserID:      a.user.UserID,
		Title:       d.Title,
		Description: d.Description,
		DueDate:     due,
		CreatedAt:   now,
		UpdatedAt:   now,
		Order:       order + 1,
		Tags:        uniqueTags(d.Tags),
		CategoryID:  d.CategoryID,
		Priority:    d.Priority,
	}
	doc := normalize.FromTask(t)
	delete(doc, "id")

	id, err := a.store.Create(ctx, store.Tasks, doc)
	if err != nil {
		return nil, persistenceError(err)
	}
	t.ID = id
	a.record("create", id, describe(t))

	if err := a.reload(ctx); err != nil {
		return t, err
	}
	if fresh, err := a.Task(id); err == nil {
		return fresh, nil
	}
	return t, nil
}

// Update applies a partial update to the task referenced by ref. Keys are
// document field names; a nil value clears an optional field. Fields are
// validated before the store is called.
func (a *App) Update(ctx context.Context, ref string, fields map[string]any) (*task.Task, error) {
	if len(fields) == 0 {
		return nil, clierr.New(clierr.NoChanges, "no fields to update")
	}
	current, err := a.Task(ref)
	if err != nil {
		return nil, err
	}
	if err := a.mustEdit(current); err != nil {
		return nil, err
	}
	next := current.Clone()
	stored, err := applyFields(next, fields)
	if err != nil {
		return nil, err
	}
	return a.persist(ctx, "update", next, stored, strings.Join(slices.Sorted(maps.Keys(fields)), ","))
}

// Edit persists the difference between t and the snapshot copy of the
// same task. An edit that changes nothing returns NO_CHANGES.
func (a *App) Edit(ctx context.Context, t *task.Task) (*task.Task, error) {
	if t == nil {
		return nil, clierr.New(clierr.InvalidInput, "no task to edit")
	}
	current, err := a.Task(t.ID)
	if err != nil {
		return nil, err
	}
	fields := diff(current, t)
	if len(fields) == 0 {
		return nil, clierr.New(clierr.NoChanges, "no changes specified").
			WithDetails(map[string]any{"id": current.ID})
	}
	return a.Update(ctx, current.ID, fields)
}

// ToggleComplete flips completion. The snapshot is updated before the
// store call; on failure it is re-synced from the store and a retryable
// PERSISTENCE_ERROR is returned.
func (a *App) ToggleComplete(ctx context.Context, ref string) (*task.Task, error) {
	current, err := a.Task(ref)
	if err != nil {
		return nil, err
	}
	if err := a.mustEdit(current); err != nil {
		return nil, err
	}
	next := current.Clone()
	task.Toggle(next, a.now())

	a.mu.Lock()
	a.replace(next)
	a.mu.Unlock()

	err = a.store.Update(ctx, store.Tasks, next.ID, map[string]any{
		"completed": next.Completed,
		"updatedAt": next.UpdatedAt,
	})
	if err != nil {
		if a.reload(ctx) != nil {
			a.mu.Lock()
			a.replace(current)
			a.mu.Unlock()
		}
		return nil, persistenceError(err)
	}
	state := "reopened"
	if next.Completed {
		state = "completed"
	}
	a.record("toggle", next.ID, state)
	return next, a.reload(ctx)
}

// Delete removes a task. Only the owner may delete.
func (a *App) Delete(ctx context.Context, ref string) (*task.Task, error) {
	t, err := a.Task(ref)
	if err != nil {
		return nil, err
	}
	if err := a.mustOwn(t, "delete"); err != nil {
		return nil, err
	}
	if err := a.store.Delete(ctx, store.Tasks, t.ID); err != nil {
		return nil, persistenceError(err)
	}
	a.record("delete", t.ID, describe(t))
	return t, a.reload(ctx)
}

// Reorder sets the manual ordering position of a task.
func (a *App) Reorder(ctx context.Context, ref string, order int) (*task.Task, error) {
	t, err := a.Task(ref)
	if err != nil {
		return nil, err
	}
	if err := a.mustEdit(t); err != nil {
		return nil, err
	}
	if t.Order == order {
		return nil, clierr.Newf(clierr.NoChanges, "task %s is already at position %d", t.ID, order).
			WithDetails(map[string]any{"id": t.ID, "order": order})
	}
	next := t.Clone()
	next.Order = order
	next.UpdatedAt = a.now()
	return a.persist(ctx, "reorder", next, map[string]any{"order": order}, fmt.Sprintf("%d -> %d", t.Order, order))
}

// Share grants email access to a task with the given role. Only the owner
// may share; sharing again with a different role replaces the entry.
func (a *App) Share(ctx context.Context, ref, email string, role task.Role) (*task.Task, error) {
	if err := task.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := task.ValidateRole(string(role)); err != nil {
		return nil, err
	}
	t, err := a.Task(ref)
	if err != nil {
		return nil, err
	}
	if err := a.mustOwn(t, "share"); err != nil {
		return nil, err
	}
	next := t.Clone()
	task.SetShare(next, email, role, a.now())
	return a.persist(ctx, "share", next, map[string]any{"sharedWith": normalize.Shares(next.SharedWith)},
		email+" as "+string(role))
}

// Unshare revokes email's access. Only the owner may unshare.
func (a *App) Unshare(ctx context.Context, ref, email string) (*task.Task, error) {
	t, err := a.Task(ref)
	if err != nil {
		return nil, err
	}
	if err := a.mustOwn(t, "unshare"); err != nil {
		return nil, err
	}
	next := t.Clone()
	if !task.RemoveShare(next, email, a.now()) {
		return nil, clierr.Newf(clierr.NoChanges, "task %s is not shared with %s", t.ID, email).
			WithDetails(map[string]any{"id": t.ID, "email": email})
	}
	var shares any
	if len(next.SharedWith) > 0 {
		shares = normalize.Shares(next.SharedWith)
	}
	return a.persist(ctx, "unshare", next, map[string]any{"sharedWith": shares}, email)
}

// AddSubtask appends a subtask to a task.
func (a *App) AddSubtask(ctx context.Context, ref, title string) (*task.Task, error) {
	if err := task.ValidateTitle(title); err != nil {
		return nil, err
	}
	t, err := a.Task(ref)
	if err != nil {
		return nil, err
	}
	if err := a.mustEdit(t); err != nil {
		return nil, err
	}
	next := t.Clone()
	task.AddSubtask(next, title, a.now())
	return a.persist(ctx, "subtask", next, map[string]any{"subtasks": normalize.Subtasks(next.Subtasks)}, title)
}

// ToggleSubtask flips the n-th (1-indexed) subtask of a task.
func (a *App) ToggleSubtask(ctx context.Context, ref string, n int) (*task.Task, error) {
	t, err := a.Task(ref)
	if err != nil {
		return nil, err
	}
	if err := a.mustEdit(t); err != nil {
		return nil, err
	}
	next := t.Clone()
	if !task.ToggleSubtask(next, n, a.now()) {
		return nil, clierr.Newf(clierr.InvalidInput, "task %s has no subtask %d", t.ID, n).
			WithDetails(map[string]any{"id": t.ID, "subtask": n, "count": len(t.Subtasks)})
	}
	return a.persist(ctx, "subtask", next, map[string]any{"subtasks": normalize.Subtasks(next.Subtasks)},
		fmt.Sprintf("toggled #%d", n))
}

// AddComment appends a comment authored by the current user.
func (a *App) AddComment(ctx context.Context, ref, text string) (*task.Task, error) {
	if strings.TrimSpace(text) == "" {
		return nil, clierr.New(clierr.InvalidInput, "comment must not be empty")
	}
	t, err := a.Task(ref)
	if err != nil {
		return nil, err
	}
	if err := a.mustEdit(t); err != nil {
		return nil, err
	}
	next := t.Clone()
	task.AddComment(next, text, a.user.Name, a.now())
	return a.persist(ctx, "comment", next, map[string]any{"comments": normalize.Comments(next.Comments)}, text)
}

// persist writes fields for next, stamping updatedAt, logs the action and
// reloads the snapshot. The snapshot is only replaced after the store
// accepts the write.
func (a *App) persist(ctx context.Context, action string, next *task.Task, fields map[string]any, detail string) (*task.Task, error) {
	next.UpdatedAt = a.now()
	fields["updatedAt"] = next.UpdatedAt
	if err := a.store.Update(ctx, store.Tasks, next.ID, fields); err != nil {
		return nil, persistenceError(err)
	}
	a.record(action, next.ID, detail)
	if err := a.reload(ctx); err != nil {
		return next, err
	}
	if fresh, err := a.Task(next.ID); err == nil {
		return fresh, nil
	}
	return next, nil
}

// applyFields validates a partial update, applies it to t and returns the
// store form of the fields.
func applyFields(t *task.Task, fields map[string]any) (map[string]any, error) {
	stored := make(map[string]any, len(fields))
	for key, v := range fields {
		switch key {
		case "title":
			s, ok := v.(string)
			if !ok {
				return nil, badField(key, v)
			}
			if err := task.ValidateTitle(s); err != nil {
				return nil, err
			}
			t.Title = s
			stored[key] = s
		case "description":
			s, ok := optionalString(v)
			if !ok {
				return nil, badField(key, v)
			}
			t.Description = s
			stored[key] = orNil(s)
		case "categoryId":
			s, ok := optionalString(v)
			if !ok {
				return nil, badField(key, v)
			}
			t.CategoryID = s
			stored[key] = orNil(s)
		case "priority":
			s, ok := optionalString(v)
			if p, isPriority := v.(task.Priority); isPriority {
				s, ok = string(p), true
			}
			if !ok {
				return nil, badField(key, v)
			}
			if err := task.ValidatePriority(s); err != nil {
				return nil, err
			}
			t.Priority = task.Priority(s)
			stored[key] = orNil(s)
		case "dueDate":
			switch due := v.(type) {
			case nil:
				t.DueDate = nil
				stored[key] = nil
			case time.Time:
				t.DueDate = &due
				stored[key] = due
			case *time.Time:
				if due == nil {
					t.DueDate = nil
					stored[key] = nil
					continue
				}
				d := *due
				t.DueDate = &d
				stored[key] = d
			default:
				return nil, badField(key, v)
			}
		case "tags":
			tags, ok := v.([]string)
			if !ok && v != nil {
				return nil, badField(key, v)
			}
			t.Tags = uniqueTags(tags)
			stored[key] = slices.Clone(t.Tags)
		case "order":
			n, ok := v.(int)
			if !ok {
				return nil, badField(key, v)
			}
			t.Order = n
			stored[key] = n
		case "completed":
			b, ok := v.(bool)
			if !ok {
				return nil, badField(key, v)
			}
			t.Completed = b
			stored[key] = b
		default:
			return nil, clierr.Newf(clierr.InvalidInput, "field %q cannot be updated", key).
				WithDetails(map[string]any{"field": key, "allowed": updatableFields()})
		}
	}
	return stored, nil
}

func updatableFields() []string {
	return []string{"title", "description", "dueDate", "priority", "tags", "categoryId", "order", "completed"}
}

// diff returns the update fields that turn current into edited.
func diff(current, edited *task.Task) map[string]any {
	fields := make(map[string]any)
	if edited.Title != current.Title {
		fields["title"] = edited.Title
	}
	if edited.Description != current.Description {
		fields["description"] = edited.Description
	}
	if edited.CategoryID != current.CategoryID {
		fields["categoryId"] = edited.CategoryID
	}
	if edited.Priority != current.Priority {
		fields["priority"] = string(edited.Priority)
	}
	if !sameTime(edited.DueDate, current.DueDate) {
		if edited.DueDate == nil {
			fields["dueDate"] = nil
		} else {
			fields["dueDate"] = *edited.DueDate
		}
	}
	if !slices.Equal(edited.Tags, current.Tags) {
		fields["tags"] = slices.Clone(edited.Tags)
	}
	if edited.Order != current.Order {
		fields["order"] = edited.Order
	}
	if edited.Completed != current.Completed {
		fields["completed"] = edited.Completed
	}
	return fields
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func optionalString(v any) (string, bool) {
	switch s := v.(type) {
	case nil:
		return "", true
	case string:
		return s, true
	}
	return "", false
}

func orNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func badField(key string, v any) *clierr.Error {
	return clierr.Newf(clierr.InvalidInput, "invalid value for %s: %v", key, v).
		WithDetails(map[string]any{"field": key})
}

func uniqueTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t != "" && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}
