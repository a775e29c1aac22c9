package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasklane/internal/output"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show task statistics",
	Long:  `Shows totals, completion rate, overdue count and the tag and priority distribution.`,
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolP("watch", "w", false, "re-render when the store changes")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	a, cfg, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck // read side already done

	render := func() error {
		s := a.Stats()
		switch outputFormat() {
		case output.FormatJSON:
			return output.JSON(os.Stdout, s)
		case output.FormatCompact:
			output.StatsCompact(os.Stdout, s)
		default:
			output.StatsTable(os.Stdout, s)
		}
		return nil
	}

	if watch, _ := cmd.Flags().GetBool("watch"); watch {
		return watchStore(ctx, cfg, a, render)
	}
	return render()
}
