package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasklane/internal/activity"
	"github.com/twiced-technology-gmbh/tasklane/internal/output"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show recent activity",
	Long:  `Prints the most recent entries of the mutation log, oldest first.`,
	Args:  cobra.NoArgs,
	RunE:  runLog,
}

func init() {
	logCmd.Flags().IntP("limit", "n", 20, "number of entries") //nolint:mnd // default page of history
	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	n, _ := cmd.Flags().GetInt("limit")
	entries, err := activity.Tail(cfg.Dir(), n)
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		if entries == nil {
			entries = []activity.Entry{}
		}
		return output.JSON(os.Stdout, entries)
	}
	output.ActivityTable(os.Stdout, entries)
	return nil
}
