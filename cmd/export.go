package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/twiced-technology-gmbh/tasklane/internal/app"
	"github.com/twiced-technology-gmbh/tasklane/internal/export"
	"github.com/twiced-technology-gmbh/tasklane/internal/intent"
	"github.com/twiced-technology-gmbh/tasklane/internal/output"
	"github.com/twiced-technology-gmbh/tasklane/internal/task"
	"github.com/twiced-technology-gmbh/tasklane/internal/timestamp"
	"github.com/twiced-technology-gmbh/tasklane/internal/view"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export tasks as CSV, JSON or a printable document",
	Long: `Exports tasks, optionally restricted to an inclusive due-date range,
a tag and a completion status. With a date range, tasks without a due date
are left out. The pdf format writes a printable markdown document; on a
terminal without --out it is previewed instead.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringP("format", "f", string(intent.FormatCSV), "export format ("+strings.Join(export.Formats(), ", ")+")")
	exportCmd.Flags().String("from", "", "first due date to include (YYYY-MM-DD)")
	exportCmd.Flags().String("to", "", "last due date to include (YYYY-MM-DD)")
	exportCmd.Flags().String("tag", "", "only tasks with this tag")
	exportCmd.Flags().String("status", "all", "completion filter (all, active, completed)")
	exportCmd.Flags().StringP("out", "o", "", "write to file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	formatStr, _ := cmd.Flags().GetString("format")
	format, err := export.ParseFormat(formatStr)
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, cfg, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck // read side already done

	filter, err := exportFilter(cmd, a)
	if err != nil {
		return err
	}
	out, err := a.Dispatch(ctx, intent.Intent{Kind: intent.Export, Format: format, Export: filter})
	if err != nil {
		return err
	}
	p := *out.Export

	renderer := export.DocumentRenderer{Title: cfg.Name, Now: a.Now}
	path, _ := cmd.Flags().GetString("out")
	if path != "" {
		return writeExportFile(path, p, a, renderer)
	}

	if p.Format == intent.FormatPDF && term.IsTerminal(int(os.Stdout.Fd())) {
		var buf bytes.Buffer
		if err := export.Write(&buf, p, a.Catalog(), renderer); err != nil {
			return err
		}
		return output.Markdown(os.Stdout, buf.String())
	}
	return export.Write(os.Stdout, p, a.Catalog(), renderer)
}

func exportFilter(cmd *cobra.Command, a *app.App) (intent.ExportFilter, error) {
	var filter intent.ExportFilter
	flags := cmd.Flags()

	for _, bound := range []struct {
		flag string
		dst  *timestamp.Date
	}{{"from", &filter.Range.From}, {"to", &filter.Range.To}} {
		s, _ := flags.GetString(bound.flag)
		if s == "" {
			continue
		}
		d, err := timestamp.ParseDate(s)
		if err != nil {
			return filter, task.ValidateDate(bound.flag, s, err)
		}
		*bound.dst = d
	}

	if ref, _ := flags.GetString("tag"); ref != "" {
		id, err := a.TagID(ref)
		if err != nil {
			return filter, err
		}
		filter.Tag = id
	}

	statusStr, _ := flags.GetString("status")
	status, err := view.ParseStatus(statusStr)
	if err != nil {
		return filter, err
	}
	filter.Status = status
	return filter, nil
}

func writeExportFile(path string, p export.Payload, a *app.App, r export.Renderer) (err error) {
	f, err := os.Create(path) //nolint:gosec // user-chosen output path
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if err := export.Write(f, p, a.Catalog(), r); err != nil {
		return err
	}
	return reportExport(os.Stdout, path, p)
}

func reportExport(w io.Writer, path string, p export.Payload) error {
	if outputFormat() == output.FormatJSON {
		return output.JSON(w, map[string]any{
			"status": "exported",
			"format": p.Format,
			"path":   path,
			"count":  len(p.Tasks),
		})
	}
	output.Messagef(w, "Exported %d tasks as %s to %s", len(p.Tasks), p.Format, path)
	return nil
}
