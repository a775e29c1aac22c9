package output

import (
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"
)

const markdownWrap = 80

// Markdown renders md for the terminal. With color disabled the source is
// written as is.
func Markdown(w io.Writer, md string) error {
	if !colorEnabled {
		_, err := io.WriteString(w, md+"\n")
		return err
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(markdownWrap),
	)
	if err != nil {
		return fmt.Errorf("creating markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("rendering markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
