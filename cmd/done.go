package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var doneCmd = &cobra.Command{
	Use:     "done ID",
	Aliases: []string{"toggle"},
	Short:   "Toggle a task's completion",
	Long:    `Marks an open task completed, or reopens a completed one.`,
	Args:    cobra.ExactArgs(1),
	RunE:    runDone,
}

func init() {
	rootCmd.AddCommand(doneCmd)
}

func runDone(_ *cobra.Command, args []string) error {
	ctx := context.Background()
	a, _, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck // read side already done

	t, err := a.ToggleComplete(ctx, args[0])
	if err != nil {
		return err
	}
	verb := "Reopened"
	if t.Completed {
		verb = "Completed"
	}
	return printTask(a, t, verb)
}
