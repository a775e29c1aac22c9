package cmd

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasklane/internal/clierr"
)

var subtaskCmd = &cobra.Command{
	Use:   "subtask",
	Short: "Manage a task's checklist",
}

var subtaskAddCmd = &cobra.Command{
	Use:   "add ID TITLE",
	Short: "Add a subtask",
	Args:  cobra.MinimumNArgs(2), //nolint:mnd // id and title words
	RunE:  runSubtaskAdd,
}

var subtaskDoneCmd = &cobra.Command{
	Use:   "done ID N",
	Short: "Toggle the N-th subtask (1-indexed)",
	Args:  cobra.ExactArgs(2), //nolint:mnd // id and index
	RunE:  runSubtaskDone,
}

var commentCmd = &cobra.Command{
	Use:   "comment ID TEXT",
	Short: "Add a comment to a task",
	Args:  cobra.MinimumNArgs(2), //nolint:mnd // id and text words
	RunE:  runComment,
}

func init() {
	subtaskCmd.AddCommand(subtaskAddCmd, subtaskDoneCmd)
	rootCmd.AddCommand(subtaskCmd)
	rootCmd.AddCommand(commentCmd)
}

func runSubtaskAdd(_ *cobra.Command, args []string) error {
	ctx := context.Background()
	a, _, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck // read side already done

	t, err := a.AddSubtask(ctx, args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	return printTask(a, t, "Updated")
}

func runSubtaskDone(_ *cobra.Command, args []string) error {
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return clierr.Newf(clierr.InvalidInput, "invalid subtask number %q", args[1])
	}

	ctx := context.Background()
	a, _, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck // read side already done

	t, err := a.ToggleSubtask(ctx, args[0], n)
	if err != nil {
		return err
	}
	return printTask(a, t, "Updated")
}

func runComment(_ *cobra.Command, args []string) error {
	ctx := context.Background()
	a, _, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck // read side already done

	t, err := a.AddComment(ctx, args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	return printTask(a, t, "Commented on")
}
