package view

import (
	"github.com/twiced-technology-gmbh/tasklane/internal/clierr"
	"github.com/twiced-technology-gmbh/tasklane/internal/task"
)

// Page is one window of a derived list together with its counts.
type Page struct {
	Items      []*task.Task `json:"items"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	Total      int          `json:"total"`
	TotalPages int          `json:"total_pages"`
}

// HasNext reports whether a later page exists.
func (p Page) HasNext() bool { return p.Page < p.TotalPages }

// HasPrev reports whether an earlier page exists.
func (p Page) HasPrev() bool { return p.Page > 1 }

// TotalPages returns ceil(total/size), never less than 1.
func TotalPages(total, size int) int {
	if size < 1 || total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// ValidatePageSize rejects non-positive page sizes.
func ValidatePageSize(size int) error {
	if size < 1 {
		return clierr.Newf(clierr.InvalidPageSize, "invalid page size %d", size).
			WithDetails(map[string]any{"page_size": size})
	}
	return nil
}

// ValidatePage checks that page lies in [1, totalPages].
func ValidatePage(page, totalPages int) error {
	if page < 1 || page > totalPages {
		return clierr.New(clierr.InvalidPage, "Invalid page number").
			WithDetails(map[string]any{"page": page, "total_pages": totalPages})
	}
	return nil
}

// Paginate returns the 1-indexed page of tasks. A page outside
// [1, totalPages] is an error; it is never clamped.
func Paginate(tasks []*task.Task, page, size int) (Page, error) {
	if err := ValidatePageSize(size); err != nil {
		return Page{}, err
	}
	total := len(tasks)
	pages := TotalPages(total, size)
	if err := ValidatePage(page, pages); err != nil {
		return Page{}, err
	}
	start := (page - 1) * size
	end := min(start+size, total)
	return Page{
		Items:      tasks[start:end],
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: pages,
	}, nil
}
