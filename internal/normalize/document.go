package normalize

import (
	"github.com/twiced-technology-gmbh/tasklane/internal/task"
)

// FromTask converts a canonical task back into a document. Timestamps are
// written as concrete times; empty optional collections are omitted.
func FromTask(t *task.Task) Document {
	doc := Document{
		"id":        t.ID,
		"userId":    t.UserID,
		"title":     t.Title,
		"completed": t.Completed,
		"createdAt": t.CreatedAt,
		"updatedAt": t.UpdatedAt,
		"order":     t.Order,
		"tags":      tagList(t.Tags),
	}
	if t.Description != "" {
		doc["description"] = t.Description
	}
	if t.DueDate != nil {
		doc["dueDate"] = *t.DueDate
	}
	if t.CategoryID != "" {
		doc["categoryId"] = t.CategoryID
	}
	if t.Priority != task.PriorityNone {
		doc["priority"] = string(t.Priority)
	}
	if len(t.Subtasks) > 0 {
		doc["subtasks"] = Subtasks(t.Subtasks)
	}
	if len(t.Comments) > 0 {
		doc["comments"] = Comments(t.Comments)
	}
	if len(t.Attachments) > 0 {
		list := make([]any, 0, len(t.Attachments))
		for _, a := range t.Attachments {
			m := map[string]any{
				"id":         a.ID,
				"name":       a.Name,
				"url":        a.URL,
				"uploadedAt": a.UploadedAt,
			}
			if a.Size > 0 {
				m["size"] = a.Size
			}
			list = append(list, m)
		}
		doc["attachments"] = list
	}
	if len(t.SharedWith) > 0 {
		doc["sharedWith"] = Shares(t.SharedWith)
	}
	return doc
}

// Subtasks converts subtasks into their document form.
func Subtasks(subtasks []task.Subtask) []any {
	list := make([]any, 0, len(subtasks))
	for _, s := range subtasks {
		list = append(list, map[string]any{
			"id":        s.ID,
			"title":     s.Title,
			"completed": s.Completed,
			"createdAt": s.CreatedAt,
		})
	}
	return list
}

// Comments converts comments into their document form.
func Comments(comments []task.Comment) []any {
	list := make([]any, 0, len(comments))
	for _, c := range comments {
		m := map[string]any{
			"id":        c.ID,
			"text":      c.Text,
			"createdAt": c.CreatedAt,
		}
		if c.Author != "" {
			m["author"] = c.Author
		}
		list = append(list, m)
	}
	return list
}

// Shares converts share entries into their document form.
func Shares(shares []task.Share) []any {
	list := make([]any, 0, len(shares))
	for _, s := range shares {
		list = append(list, map[string]any{"email": s.Email, "role": string(s.Role)})
	}
	return list
}

// FromCategory converts a category into a document.
func FromCategory(c task.Category) Document {
	return Document{"id": c.ID, "userId": c.UserID, "name": c.Name, "order": c.Order}
}

// FromTag converts a tag into a document.
func FromTag(t task.Tag) Document {
	doc := Document{"id": t.ID, "userId": t.UserID, "name": t.Name}
	if t.Color != "" {
		doc["color"] = t.Color
	}
	return doc
}

func tagList(tags []string) []any {
	list := make([]any, 0, len(tags))
	for _, t := range tags {
		list = append(list, t)
	}
	return list
}
