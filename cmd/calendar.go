package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasklane/internal/output"
	"github.com/twiced-technology-gmbh/tasklane/internal/task"
	"github.com/twiced-technology-gmbh/tasklane/internal/timestamp"
	"github.com/twiced-technology-gmbh/tasklane/internal/view"
)

var calendarCmd = &cobra.Command{
	Use:     "calendar [YYYY-MM]",
	Aliases: []string{"cal"},
	Short:   "Show tasks by due day for a month",
	Long:    `Groups tasks with a due date by calendar day. Defaults to the current month.`,
	Args:    cobra.MaximumNArgs(1),
	RunE:    runCalendar,
}

func init() {
	rootCmd.AddCommand(calendarCmd)
}

func runCalendar(_ *cobra.Command, args []string) error {
	ctx := context.Background()
	a, _, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck // read side already done

	first := timestamp.DateOf(a.Now())
	if len(args) > 0 {
		if first, err = timestamp.ParseMonth(args[0]); err != nil {
			return task.ValidateDate("month", args[0], err)
		}
	}

	m := view.Calendar(a.Tasks(), first)
	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, m)
	case output.FormatCompact:
		output.CalendarCompact(os.Stdout, m, a.Catalog(), a.Now())
	default:
		output.CalendarTable(os.Stdout, m, a.Now())
	}
	return nil
}
