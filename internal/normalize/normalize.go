// Package normalize converts loosely-typed stored documents into canonical
// tasks, categories and tags. It never fails: malformed fields degrade to
// defaults so one bad record cannot break a whole list.
package normalize

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/tasklane/internal/task"
	"github.com/twiced-technology-gmbh/tasklane/internal/timestamp"
)

// Document is a raw stored record as decoded from the backing store.
type Document map[string]any

// Task converts a raw document into a canonical task. now is substituted
// for missing or malformed required timestamps.
func Task(doc Document, now time.Time) *task.Task {
	t := &task.Task{
		ID:          str(doc["id"]),
		UserID:      str(doc["userId"]),
		Title:       str(doc["title"]),
		Description: str(doc["description"]),
		Completed:   boolean(doc["completed"]),
		DueDate:     timestamp.Optional(doc["dueDate"]),
		CreatedAt:   timestamp.Required(doc["createdAt"], now),
		UpdatedAt:   timestamp.Required(doc["updatedAt"], now),
		Order:       integer(doc["order"]),
		Tags:        stringSet(doc["tags"]),
		CategoryID:  str(doc["categoryId"]),
		Priority:    priority(doc["priority"]),
	}

	for _, m := range maps(doc["subtasks"]) {
		t.Subtasks = append(t.Subtasks, task.Subtask{
			ID:        str(m["id"]),
			Title:     str(m["title"]),
			Completed: boolean(m["completed"]),
			CreatedAt: timestamp.Required(m["createdAt"], now),
		})
	}
	for _, m := range maps(doc["comments"]) {
		t.Comments = append(t.Comments, task.Comment{
			ID:        str(m["id"]),
			Text:      str(m["text"]),
			Author:    str(m["author"]),
			CreatedAt: timestamp.Required(m["createdAt"], now),
		})
	}
	for _, m := range maps(doc["attachments"]) {
		t.Attachments = append(t.Attachments, task.Attachment{
			ID:         str(m["id"]),
			Name:       str(m["name"]),
			URL:        str(m["url"]),
			Size:       int64(integer(m["size"])),
			UploadedAt: timestamp.Required(m["uploadedAt"], now),
		})
	}
	for _, m := range maps(doc["sharedWith"]) {
		email := str(m["email"])
		if email == "" {
			continue
		}
		role := task.Role(str(m["role"]))
		if role != task.RoleEditor {
			role = task.RoleViewer
		}
		t.SharedWith = append(t.SharedWith, task.Share{Email: email, Role: role})
	}

	return t
}

// Tasks normalizes every document in docs.
func Tasks(docs []Document, now time.Time) []*task.Task {
	tasks := make([]*task.Task, 0, len(docs))
	for _, d := range docs {
		tasks = append(tasks, Task(d, now))
	}
	return tasks
}

// Category converts a raw document into a category.
func Category(doc Document) task.Category {
	return task.Category{
		ID:     str(doc["id"]),
		UserID: str(doc["userId"]),
		Name:   str(doc["name"]),
		Order:  integer(doc["order"]),
	}
}

// Tag converts a raw document into a tag.
func Tag(doc Document) task.Tag {
	return task.Tag{
		ID:     str(doc["id"]),
		UserID: str(doc["userId"]),
		Name:   str(doc["name"]),
		Color:  str(doc["color"]),
	}
}

func str(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func boolean(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return false
}

func integer(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case uint64:
		return int(n)
	case float32:
		return int(n)
	case float64:
		return int(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
		if f, err := n.Float64(); err == nil {
			return int(f)
		}
	}
	return 0
}

func priority(v any) task.Priority {
	p := task.Priority(strings.ToLower(strings.TrimSpace(str(v))))
	if p.Rank() == 0 {
		return task.PriorityNone
	}
	return p
}

// stringSet returns the distinct strings in v, keeping first-seen order.
// A missing or malformed value yields an empty, non-nil set.
func stringSet(v any) []string {
	out := []string{}
	seen := make(map[string]bool)
	add := func(s string) {
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}
	switch list := v.(type) {
	case []string:
		for _, s := range list {
			add(s)
		}
	case []any:
		for _, item := range list {
			add(str(item))
		}
	}
	return out
}

// maps returns the object elements of a list value, skipping anything else.
func maps(v any) []map[string]any {
	switch list := v.(type) {
	case []map[string]any:
		return list
	case []any:
		out := make([]map[string]any, 0, len(list))
		for _, item := range list {
			switch m := item.(type) {
			case map[string]any:
				out = append(out, m)
			case Document:
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}
