package cmd

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasklane/internal/output"
	"github.com/twiced-technology-gmbh/tasklane/internal/task"
)

var shareCmd = &cobra.Command{
	Use:   "share ID EMAIL",
	Short: "Share a task with another user",
	Long: `Grants another user access to a task. Editors may update and complete it;
viewers may only read it. Sharing again with a different role replaces the
previous one. Only the owner may share.`,
	Args: cobra.ExactArgs(2), //nolint:mnd // id and email
	RunE: runShare,
}

var unshareCmd = &cobra.Command{
	Use:   "unshare ID EMAIL",
	Short: "Revoke a user's access to a task",
	Args:  cobra.ExactArgs(2), //nolint:mnd // id and email
	RunE:  runUnshare,
}

func init() {
	shareCmd.Flags().String("role", string(task.RoleViewer), "access role (viewer, editor)")
	rootCmd.AddCommand(shareCmd)
	rootCmd.AddCommand(unshareCmd)
}

func runShare(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, _, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck // read side already done

	role, _ := cmd.Flags().GetString("role")
	t, err := a.Share(ctx, args[0], strings.TrimSpace(args[1]), task.Role(strings.ToLower(role)))
	if err != nil {
		return err
	}
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, t)
	}
	output.Messagef(os.Stdout, "Shared task %s with %s as %s", output.ShortID(t.ID), args[1], strings.ToLower(role))
	return nil
}

func runUnshare(_ *cobra.Command, args []string) error {
	ctx := context.Background()
	a, _, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck // read side already done

	t, err := a.Unshare(ctx, args[0], strings.TrimSpace(args[1]))
	if err != nil {
		return err
	}
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, t)
	}
	output.Messagef(os.Stdout, "Stopped sharing task %s with %s", output.ShortID(t.ID), args[1])
	return nil
}
