package cmd

import (
	"context"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasklane/internal/app"
	"github.com/twiced-technology-gmbh/tasklane/internal/clierr"
	"github.com/twiced-technology-gmbh/tasklane/internal/intent"
	"github.com/twiced-technology-gmbh/tasklane/internal/output"
	"github.com/twiced-technology-gmbh/tasklane/internal/view"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long: `Lists tasks with filtering, sorting and pagination. Filters combine
with AND; the result is sorted, then paginated.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringP("search", "s", "", "search title and description (case-insensitive)")
	listCmd.Flags().String("status", "all", "completion filter (all, active, completed)")
	listCmd.Flags().String("tag", "", "filter by tag name or ID")
	listCmd.Flags().Bool("overdue", false, "show only overdue tasks")
	listCmd.Flags().String("when", "", "due-date bucket ("+strings.Join(view.Buckets(), ", ")+")")
	listCmd.Flags().String("sort", "", "sort key ("+strings.Join(view.SortKeys(), ", ")+")")
	listCmd.Flags().String("direction", "", "sort direction (asc, desc)")
	listCmd.Flags().BoolP("reverse", "r", false, "flip the sort direction")
	listCmd.Flags().Int("page", 1, "page number")
	listCmd.Flags().Int("page-size", 0, "tasks per page (default from config)")
	listCmd.Flags().BoolP("watch", "w", false, "re-render when the store changes")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	a, cfg, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck // read side already done

	bucket, err := parseBucket(cmd)
	if err != nil {
		return err
	}
	if err := applyListFlags(ctx, cmd, a); err != nil {
		return err
	}

	render := func() error { return outputTaskPage(a, bucket) }
	if watch, _ := cmd.Flags().GetBool("watch"); watch {
		return watchStore(ctx, cfg, a, render)
	}
	return render()
}

// applyListFlags routes the list flags through the view-state intents, so
// the CLI validates them exactly like the interactive list does.
func applyListFlags(ctx context.Context, cmd *cobra.Command, a *app.App) error {
	flags := cmd.Flags()

	statusStr, _ := flags.GetString("status")
	status, err := view.ParseStatus(statusStr)
	if err != nil {
		return err
	}
	filter := view.FilterOptions{Status: status}
	filter.Search, _ = flags.GetString("search")
	filter.Overdue, _ = flags.GetBool("overdue")
	if ref, _ := flags.GetString("tag"); ref != "" {
		if filter.Tag, err = a.TagID(ref); err != nil {
			return err
		}
	}
	if _, err := a.Dispatch(ctx, intent.Intent{Kind: intent.ChangeFilter, Filter: filter}); err != nil {
		return err
	}

	current := a.View()
	key, dir := current.Sort, current.Direction
	if s, _ := flags.GetString("sort"); s != "" {
		if key, err = view.ParseSortKey(s); err != nil {
			return err
		}
	}
	if d, _ := flags.GetString("direction"); d != "" {
		if dir, err = view.ParseDirection(d); err != nil {
			return err
		}
	}
	if reverse, _ := flags.GetBool("reverse"); reverse {
		dir = dir.Flip()
	}
	if key != current.Sort || dir != current.Direction {
		if _, err := a.Dispatch(ctx, intent.Intent{Kind: intent.ChangeSort, Sort: key, Direction: dir}); err != nil {
			return err
		}
	}

	if size, _ := flags.GetInt("page-size"); flags.Changed("page-size") {
		if _, err := a.Dispatch(ctx, intent.Intent{Kind: intent.ChangePageSize, N: size}); err != nil {
			return err
		}
	}
	if page, _ := flags.GetInt("page"); page != 1 {
		if _, err := a.Dispatch(ctx, intent.Intent{Kind: intent.ChangePage, N: page}); err != nil {
			return err
		}
	}
	return nil
}

func parseBucket(cmd *cobra.Command) (view.Bucket, error) {
	when, _ := cmd.Flags().GetString("when")
	if when == "" {
		return "", nil
	}
	when = strings.ToLower(when)
	if !slices.Contains(view.Buckets(), when) {
		return "", clierr.Newf(clierr.InvalidInput, "invalid --when %q; valid: %s",
			when, strings.Join(view.Buckets(), ", "))
	}
	return view.Bucket(when), nil
}

func outputTaskPage(a *app.App, bucket view.Bucket) error {
	var (
		page view.Page
		err  error
	)
	if bucket == "" {
		page, err = a.Page()
	} else {
		opts := a.View()
		opts.Page = 1
		page, err = view.Apply(view.SelectBucket(a.Tasks(), bucket, a.Now()), opts, a.Now())
	}
	if err != nil {
		return err
	}

	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, page)
	case output.FormatCompact:
		output.TaskCompact(os.Stdout, page.Items, a.Catalog(), a.Now())
	default:
		output.TaskTable(os.Stdout, page.Items, a.Catalog(), a.Now())
		output.PageFooter(os.Stdout, page)
	}
	return nil
}
