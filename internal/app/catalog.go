package app

import (
	"context"
	"strings"

	"github.com/twiced-technology-gmbh/tasklane/internal/clierr"
	"github.com/twiced-technology-gmbh/tasklane/internal/normalize"
	"github.com/twiced-technology-gmbh/tasklane/internal/store"
	"github.com/twiced-technology-gmbh/tasklane/internal/task"
)

// TagID resolves a tag by ID or case-insensitive name.
func (a *App) TagID(ref string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, t := range a.tags {
		if t.ID == ref || strings.EqualFold(t.Name, ref) {
			return t.ID, nil
		}
	}
	return "", clierr.Newf(clierr.TagNotFound, "tag not found: %s", ref).
		WithDetails(map[string]any{"tag": ref})
}

// CategoryID resolves a category by ID or case-insensitive name.
func (a *App) CategoryID(ref string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, c := range a.categories {
		if c.ID == ref || strings.EqualFold(c.Name, ref) {
			return c.ID, nil
		}
	}
	return "", clierr.Newf(clierr.CategoryNotFound, "category not found: %s", ref).
		WithDetails(map[string]any{"category": ref})
}

// CreateCategory adds a category at the end of the display order.
func (a *App) CreateCategory(ctx context.Context, name string) (task.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return task.Category{}, clierr.New(clierr.InvalidInput, "category name must not be empty")
	}
	if _, err := a.CategoryID(name); err == nil {
		return task.Category{}, clierr.Newf(clierr.InvalidInput, "category %q already exists", name).
			WithDetails(map[string]any{"category": name})
	}
	a.mu.Lock()
	c := task.Category{UserID: a.user.UserID, Name: name, Order: len(a.categories) + 1}
	a.mu.Unlock()

	doc := normalize.FromCategory(c)
	delete(doc, "id")
	id, err := a.store.Create(ctx, store.Categories, doc)
	if err != nil {
		return task.Category{}, persistenceError(err)
	}
	c.ID = id
	a.record("category", "", "added "+name)
	return c, a.reload(ctx)
}

// DeleteCategory removes a category. Tasks keep their categoryId and
// resolve to no category.
func (a *App) DeleteCategory(ctx context.Context, ref string) error {
	id, err := a.CategoryID(ref)
	if err != nil {
		return err
	}
	if err := a.store.Delete(ctx, store.Categories, id); err != nil {
		return persistenceError(err)
	}
	a.record("category", "", "removed "+ref)
	return a.reload(ctx)
}

// CreateTag adds a tag with an optional display color.
func (a *App) CreateTag(ctx context.Context, name, color string) (task.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return task.Tag{}, clierr.New(clierr.InvalidInput, "tag name must not be empty")
	}
	if _, err := a.TagID(name); err == nil {
		return task.Tag{}, clierr.Newf(clierr.InvalidInput, "tag %q already exists", name).
			WithDetails(map[string]any{"tag": name})
	}
	tg := task.Tag{UserID: a.user.UserID, Name: name, Color: color}
	doc := normalize.FromTag(tg)
	delete(doc, "id")
	id, err := a.store.Create(ctx, store.Tags, doc)
	if err != nil {
		return task.Tag{}, persistenceError(err)
	}
	tg.ID = id
	a.record("tag", "", "added "+name)
	return tg, a.reload(ctx)
}

// DeleteTag removes a tag. Task references are left in place and display
// as the raw ID.
func (a *App) DeleteTag(ctx context.Context, ref string) error {
	id, err := a.TagID(ref)
	if err != nil {
		return err
	}
	if err := a.store.Delete(ctx, store.Tags, id); err != nil {
		return persistenceError(err)
	}
	a.record("tag", "", "removed "+ref)
	return a.reload(ctx)
}
