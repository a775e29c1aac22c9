package output

import (
	"encoding/json"
	"fmt"
	"io"
)

func newEncoder(w io.Writer) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc
}

// JSON writes data as indented JSON to the given writer.
func JSON(w io.Writer, data any) error {
	if err := newEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// ErrorResponse is the JSON envelope for structured error output.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
}

// JSONError writes a structured error to w. Write failures are ignored;
// there is nowhere left to report them.
func JSONError(w io.Writer, code, msg string, details map[string]any) {
	_ = newEncoder(w).Encode(ErrorResponse{Error: msg, Code: code, Details: details})
}

// BatchResult is the outcome for one task of a multi-task operation.
// Error and Code are set only when OK is false.
type BatchResult struct {
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
}
