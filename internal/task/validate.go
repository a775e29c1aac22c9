package task

import (
	"net/mail"
	"strings"

	"github.com/twiced-technology-gmbh/tasklane/internal/clierr"
)

// Priorities lists the accepted priority values, lowest first.
func Priorities() []string {
	return []string{string(PriorityLow), string(PriorityMedium), string(PriorityHigh)}
}

// ValidateTitle rejects empty or whitespace-only titles.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return clierr.New(clierr.EmptyTitle, "title must not be empty")
	}
	return nil
}

// ValidatePriority checks that a priority is one of the known values.
// The empty priority is accepted and means "unset".
func ValidatePriority(p string) error {
	if p == "" {
		return nil
	}
	for _, allowed := range Priorities() {
		if p == allowed {
			return nil
		}
	}
	return clierr.Newf(clierr.InvalidPriority, "invalid priority %q", p).
		WithDetails(map[string]any{
			"priority": p,
			"allowed":  Priorities(),
		})
}

// ValidateRole checks a share role.
func ValidateRole(role string) error {
	switch Role(role) {
	case RoleViewer, RoleEditor:
		return nil
	}
	return clierr.Newf(clierr.InvalidRole, "invalid role %q", role).
		WithDetails(map[string]any{
			"role":    role,
			"allowed": []string{string(RoleViewer), string(RoleEditor)},
		})
}

// ValidateEmail checks a share recipient address.
func ValidateEmail(email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return clierr.Newf(clierr.InvalidInput, "invalid email %q", email).
			WithDetails(map[string]any{"email": email})
	}
	return nil
}

// ValidateDate returns a CLIError for invalid date input.
func ValidateDate(field, input string, err error) *clierr.Error {
	return clierr.Newf(clierr.InvalidDate, "invalid %s date: %v", field, err).
		WithDetails(map[string]any{
			"field": field,
			"input": input,
		})
}

// NotFound returns a CLIError for a missing task.
func NotFound(id string) *clierr.Error {
	return clierr.Newf(clierr.TaskNotFound, "task not found: %s", id).
		WithDetails(map[string]any{"id": id})
}

// ResolveID finds the task whose ID equals ref or, failing that, the single
// task whose ID starts with ref. Short prefixes are how IDs are typed at the prompt.
func ResolveID(tasks []*Task, ref string) (*Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, clierr.New(clierr.InvalidInput, "task ID is required")
	}
	var match *Task
	for _, t := range tasks {
		if t.ID == ref {
			return t, nil
		}
		if strings.HasPrefix(t.ID, ref) {
			if match != nil {
				return nil, clierr.Newf(clierr.InvalidInput, "ambiguous task ID %q", ref).
					WithDetails(map[string]any{"id": ref})
			}
			match = t
		}
	}
	if match == nil {
		return nil, NotFound(ref)
	}
	return match, nil
}
