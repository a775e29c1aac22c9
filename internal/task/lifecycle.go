package task

import (
	"time"

	"github.com/google/uuid"
)

// Toggle flips completion and stamps the mutation time.
func Toggle(t *Task, now time.Time) {
	t.Completed = !t.Completed
	t.UpdatedAt = now
}

// AddSubtask appends a new open subtask.
func AddSubtask(t *Task, title string, now time.Time) Subtask {
	s := Subtask{ID: uuid.NewString(), Title: title, CreatedAt: now}
	t.Subtasks = append(t.Subtasks, s)
	t.UpdatedAt = now
	return s
}

// ToggleSubtask flips the n-th (1-indexed) subtask. Returns false when n is out of range.
func ToggleSubtask(t *Task, n int, now time.Time) bool {
	if n < 1 || n > len(t.Subtasks) {
		return false
	}
	t.Subtasks[n-1].Completed = !t.Subtasks[n-1].Completed
	t.UpdatedAt = now
	return true
}

// AddComment appends a comment authored by author.
func AddComment(t *Task, text, author string, now time.Time) Comment {
	c := Comment{ID: uuid.NewString(), Text: text, Author: author, CreatedAt: now}
	t.Comments = append(t.Comments, c)
	t.UpdatedAt = now
	return c
}

// SetShare adds or replaces the share entry for email.
func SetShare(t *Task, email string, role Role, now time.Time) {
	for i := range t.SharedWith {
		if t.SharedWith[i].Email == email {
			t.SharedWith[i].Role = role
			t.UpdatedAt = now
			return
		}
	}
	t.SharedWith = append(t.SharedWith, Share{Email: email, Role: role})
	t.UpdatedAt = now
}

// RemoveShare drops the share entry for email. Returns false if there was none.
func RemoveShare(t *Task, email string, now time.Time) bool {
	for i := range t.SharedWith {
		if t.SharedWith[i].Email == email {
			t.SharedWith = append(t.SharedWith[:i], t.SharedWith[i+1:]...)
			t.UpdatedAt = now
			return true
		}
	}
	return false
}

// AddTag adds a tag ID if not already present. Returns false when unchanged.
func AddTag(t *Task, id string, now time.Time) bool {
	if t.HasTag(id) {
		return false
	}
	t.Tags = append(t.Tags, id)
	t.UpdatedAt = now
	return true
}

// CanEdit reports whether the user (by id and email) may modify t.
// Owners and editors may; viewers and strangers may not.
func CanEdit(t *Task, userID, email string) bool {
	if t.UserID == userID {
		return true
	}
	s, ok := t.ShareFor(email)
	return ok && s.Role == RoleEditor
}

// IsOwner reports whether userID owns t.
func IsOwner(t *Task, userID string) bool {
	return t.UserID == userID
}
