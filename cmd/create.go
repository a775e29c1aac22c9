package cmd

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasklane/internal/app"
	"github.com/twiced-technology-gmbh/tasklane/internal/clierr"
	"github.com/twiced-technology-gmbh/tasklane/internal/task"
	"github.com/twiced-technology-gmbh/tasklane/internal/timeparse"
	"github.com/twiced-technology-gmbh/tasklane/internal/timestamp"
)

var createCmd = &cobra.Command{
	Use:     "add [TITLE]",
	Aliases: []string{"create"},
	Short:   "Create a new task",
	Long: `Creates a new task with the given title and optional fields.

Title can be provided as a positional argument or via --title flag.
A clock time in the title ("call mom 3pm") sets the due date to today at
that time unless --due is given; the title itself is kept as written.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCreate,
}

func init() {
	createCmd.Flags().String("title", "", "task title (alternative to positional argument)")
	createCmd.Flags().String("priority", "", "task priority (low, medium, high)")
	createCmd.Flags().StringSlice("tags", nil, "comma-separated tag names or IDs")
	createCmd.Flags().SetNormalizeFunc(normalizeTaskFlags)
	createCmd.Flags().String("due", "", "due date (YYYY-MM-DD)")
	createCmd.Flags().String("at", "", "due time of day (e.g. 3pm, 9:30am)")
	createCmd.Flags().String("category", "", "category name or ID")
	createCmd.Flags().String("body", "", "task description (markdown)")
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	title, err := resolveCreateTitle(cmd, args)
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, _, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck // read side already done

	d, err := draftFromFlags(cmd, a, title)
	if err != nil {
		return err
	}
	t, err := a.Create(ctx, d)
	if err != nil {
		return err
	}
	return printTask(a, t, "Created")
}

func resolveCreateTitle(cmd *cobra.Command, args []string) (string, error) {
	flagTitle, _ := cmd.Flags().GetString("title")
	switch {
	case len(args) > 0 && flagTitle != "":
		return "", clierr.New(clierr.InvalidInput, "provide title as argument or --title, not both")
	case len(args) > 0:
		return args[0], nil
	default:
		return flagTitle, nil
	}
}

func draftFromFlags(cmd *cobra.Command, a *app.App, title string) (app.Draft, error) {
	d := app.Draft{Title: title}
	d.Description, _ = cmd.Flags().GetString("body")

	p, _ := cmd.Flags().GetString("priority")
	d.Priority = task.Priority(strings.ToLower(p))

	dueStr, _ := cmd.Flags().GetString("due")
	atStr, _ := cmd.Flags().GetString("at")
	due, err := parseDue(dueStr, atStr, a.Now())
	if err != nil {
		return d, err
	}
	d.Due = due

	tags, _ := cmd.Flags().GetStringSlice("tags")
	for _, ref := range tags {
		id, err := a.TagID(ref)
		if err != nil {
			return d, err
		}
		d.Tags = append(d.Tags, id)
	}

	if ref, _ := cmd.Flags().GetString("category"); ref != "" {
		id, err := a.CategoryID(ref)
		if err != nil {
			return d, err
		}
		d.CategoryID = id
	}
	return d, nil
}

// parseDue combines a YYYY-MM-DD date and a clock time into a due time in
// the local zone. A date alone is due at the start of that day; a time
// alone is due today. Both empty yields nil.
func parseDue(dueStr, atStr string, now time.Time) (*time.Time, error) {
	if dueStr == "" && atStr == "" {
		return nil, nil
	}

	day := timestamp.DateOf(now)
	if dueStr != "" {
		d, err := timestamp.ParseDate(dueStr)
		if err != nil {
			return nil, task.ValidateDate("due", dueStr, err)
		}
		day = d
	}
	due := day.In(now.Location())

	if atStr != "" {
		res := timeparse.Parse(atStr, due)
		if !res.Found() {
			return nil, clierr.Newf(clierr.InvalidDate, "invalid time %q: expected e.g. 3pm or 9:30am", atStr).
				WithDetails(map[string]any{"field": "at", "input": atStr})
		}
		due = res.Match.Time
	}
	return &due, nil
}
