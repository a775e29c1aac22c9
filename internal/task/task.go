// Package task defines the canonical in-memory task model.
package task

import (
	"slices"
	"time"
)

// Priority is an optional task priority.
type Priority string

// Known priorities, lowest first.
const (
	PriorityNone   Priority = ""
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Role is the access level granted to a share recipient.
type Role string

// Share roles.
const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
)

// Task is the canonical task. All timestamps are concrete regardless of
// how the backing document stored them.
type Task struct {
	ID          string       `json:"id"`
	UserID      string       `json:"userId"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Completed   bool         `json:"completed"`
	DueDate     *time.Time   `json:"dueDate,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	Order       int          `json:"order"`
	Tags        []string     `json:"tags"`
	CategoryID  string       `json:"categoryId,omitempty"`
	Priority    Priority     `json:"priority,omitempty"`
	Subtasks    []Subtask    `json:"subtasks,omitempty"`
	Comments    []Comment    `json:"comments,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	SharedWith  []Share      `json:"sharedWith,omitempty"`
}

// Subtask is a checklist entry nested in a task.
type Subtask struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

// Comment is a note left on a task.
type Comment struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Author    string    `json:"author,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Attachment references an uploaded file.
type Attachment struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Size       int64     `json:"size,omitempty"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Share grants another user access to a task. Ownership is unaffected.
type Share struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Category groups tasks. Tasks reference it weakly by ID.
type Category struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Order  int    `json:"order"`
}

// Tag labels tasks. Tasks reference it by ID.
type Tag struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Color  string `json:"color,omitempty"`
}

// IsOverdue reports whether the task has a due date before now and is not completed.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && !t.Completed
}

// HasTag reports whether the task references the given tag ID.
func (t *Task) HasTag(id string) bool {
	return slices.Contains(t.Tags, id)
}

// ShareFor returns the share entry for email, if any.
func (t *Task) ShareFor(email string) (Share, bool) {
	for _, s := range t.SharedWith {
		if s.Email == email {
			return s, true
		}
	}
	return Share{}, false
}

// Clone returns a deep copy of t.
func (t *Task) Clone() *Task {
	c := *t
	if t.DueDate != nil {
		due := *t.DueDate
		c.DueDate = &due
	}
	c.Tags = slices.Clone(t.Tags)
	c.Subtasks = slices.Clone(t.Subtasks)
	c.Comments = slices.Clone(t.Comments)
	c.Attachments = slices.Clone(t.Attachments)
	c.SharedWith = slices.Clone(t.SharedWith)
	return &c
}

// Rank orders priorities low to high. The unset priority ranks 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2 //nolint:mnd // rank order
	case PriorityHigh:
		return 3 //nolint:mnd // rank order
	default:
		return 0
	}
}

// Catalog resolves category and tag IDs to display names.
type Catalog struct {
	Categories []Category
	Tags       []Tag
}

// Category returns the display name of a category ID, or "".
func (c Catalog) Category(id string) string {
	return CategoryName(id, c.Categories)
}

// TagNames resolves every tag ID in ids.
func (c Catalog) TagNames(ids []string) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, TagName(id, c.Tags))
	}
	return names
}

// CategoryName resolves a category ID against the catalog. A missing or
// deleted category resolves to "".
func CategoryName(id string, categories []Category) string {
	if id == "" {
		return ""
	}
	for _, c := range categories {
		if c.ID == id {
			return c.Name
		}
	}
	return ""
}

// TagName resolves a tag ID against the catalog, falling back to the ID itself.
func TagName(id string, tags []Tag) string {
	for _, t := range tags {
		if t.ID == id {
			return t.Name
		}
	}
	return id
}
