package cmd

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasklane/internal/clierr"
)

var moveCmd = &cobra.Command{
	Use:   "move ID ORDER",
	Short: "Change a task's manual order",
	Long: `Sets the task's order value. Order breaks ties when sorting and
positions the task in an unsorted list.`,
	Args: cobra.ExactArgs(2), //nolint:mnd // id and order
	RunE: runMove,
}

func init() {
	rootCmd.AddCommand(moveCmd)
}

func runMove(_ *cobra.Command, args []string) error {
	order, err := strconv.Atoi(args[1])
	if err != nil {
		return clierr.Newf(clierr.InvalidInput, "invalid order %q: expected an integer", args[1])
	}

	ctx := context.Background()
	a, _, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck // read side already done

	t, err := a.Reorder(ctx, args[0], order)
	if err != nil {
		return err
	}
	return printTask(a, t, "Moved")
}
