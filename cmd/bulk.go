package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasklane/internal/app"
	"github.com/twiced-technology-gmbh/tasklane/internal/clierr"
	"github.com/twiced-technology-gmbh/tasklane/internal/intent"
	"github.com/twiced-technology-gmbh/tasklane/internal/output"
)

var bulkCmd = &cobra.Command{
	Use:   "bulk ACTION [ID...]",
	Short: "Apply an action to several tasks",
	Long: `Applies complete, delete or tag to the given task IDs, or to every task
on the current list page with --all. select-all prints the IDs --all would
select. Each task is written separately: failures are reported per task and
do not stop the batch.

Actions: ` + strings.Join(intent.BulkKinds(), ", "),
	Args: cobra.MinimumNArgs(1),
	RunE: runBulk,
}

func init() {
	bulkCmd.Flags().String("tag", "", "tag name or ID to apply (tag action)")
	bulkCmd.Flags().Bool("all", false, "select every task on the current list page")
	bulkCmd.Flags().BoolP("yes", "y", false, "skip delete confirmation prompt")
	rootCmd.AddCommand(bulkCmd)
}

func runBulk(cmd *cobra.Command, args []string) error {
	action := intent.BulkKind(strings.ToLower(args[0]))

	ctx := context.Background()
	a, _, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck // read side already done

	all, _ := cmd.Flags().GetBool("all")
	if action == intent.BulkSelectAll || all {
		if _, err := a.Dispatch(ctx, intent.Intent{Kind: intent.BulkAction, Bulk: intent.BulkSelectAll}); err != nil {
			return err
		}
	}
	if action == intent.BulkSelectAll {
		return printSelection(a)
	}

	if err := selectArgs(a, args[1:]); err != nil {
		return err
	}
	if ref, _ := cmd.Flags().GetString("tag"); ref != "" {
		id, err := a.TagID(ref)
		if err != nil {
			return err
		}
		a.Bulk.ChooseTag(id)
	}

	out, err := a.Bulk.Run(ctx, action, a.Visible())
	if action == intent.BulkDelete && clierr.HasCode(err, clierr.ConfirmationReq) {
		out, err = confirmBulkDelete(ctx, cmd, a)
	}
	if len(out.Results) > 0 {
		return printBatch(out.Results)
	}
	return err
}

// selectArgs adds the tasks named by refs to the selection.
func selectArgs(a *app.App, refs []string) error {
	for _, ref := range refs {
		for _, part := range strings.Split(ref, ",") {
			if part == "" {
				continue
			}
			t, err := a.Task(part)
			if err != nil {
				return err
			}
			if !a.Bulk.IsSelected(t.ID) {
				a.Bulk.Toggle(t.ID)
			}
		}
	}
	return nil
}

func confirmBulkDelete(ctx context.Context, cmd *cobra.Command, a *app.App) (intent.Outcome, error) {
	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		ok, err := confirm(fmt.Sprintf("Delete %d task(s)?", len(a.Bulk.Selected())))
		if err != nil {
			a.Bulk.Cancel()
			return intent.Outcome{}, err
		}
		if !ok {
			a.Bulk.Cancel()
			fmt.Fprintln(os.Stderr, "Canceled.")
			return intent.Outcome{}, nil
		}
	}
	return a.Bulk.Confirm(ctx)
}

func printSelection(a *app.App) error {
	ids := a.Bulk.Selected()
	if outputFormat() == output.FormatJSON {
		if ids == nil {
			ids = []string{}
		}
		return output.JSON(os.Stdout, map[string]any{"selected": ids})
	}
	for _, id := range ids {
		fmt.Fprintln(os.Stdout, id)
	}
	return nil
}
