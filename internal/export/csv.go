package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

var csvHeader = []string{
	"id", "title", "description", "completed", "dueDate",
	"priority", "category", "tags", "createdAt", "updatedAt",
}

// WriteCSV writes records with a header row. Times are RFC 3339; tags are
// joined with ";".
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, r := range records {
		due := ""
		if r.DueDate != nil {
			due = r.DueDate.Format(time.RFC3339)
		}
		row := []string{
			r.ID,
			r.Title,
			r.Description,
			strconv.FormatBool(r.Completed),
			due,
			r.Priority,
			r.Category,
			strings.Join(r.Tags, ";"),
			r.CreatedAt.Format(time.RFC3339),
			r.UpdatedAt.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}
