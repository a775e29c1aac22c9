// Package cmd implements the tasklane CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/twiced-technology-gmbh/tasklane/internal/activity"
	"github.com/twiced-technology-gmbh/tasklane/internal/app"
	"github.com/twiced-technology-gmbh/tasklane/internal/clierr"
	"github.com/twiced-technology-gmbh/tasklane/internal/config"
	"github.com/twiced-technology-gmbh/tasklane/internal/output"
	"github.com/twiced-technology-gmbh/tasklane/internal/session"
	"github.com/twiced-technology-gmbh/tasklane/internal/store"
	"github.com/twiced-technology-gmbh/tasklane/internal/task"
)

// version is set at build time via ldflags.
var version = "dev"

// Global flags.
var (
	flagJSON    bool
	flagTable   bool
	flagCompact bool
	flagDir     string
	flagNoColor bool
)

var rootCmd = &cobra.Command{
	Use:   "tasklane",
	Short: "Personal task list with sharing, bulk actions and exports",
	Long: `tasklane keeps a personal task list in a local document store.
Run tasklane without a subcommand to open the interactive list.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runTUI,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if flagNoColor || os.Getenv("NO_COLOR") != "" {
			output.DisableColor()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagTable, "table", false, "output as table")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "compact", false, "compact one-line-per-record output")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "oneline", false, "alias for --compact")
	rootCmd.PersistentFlags().StringVar(&flagDir, "dir", "", "path to tasklane data directory")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable color output")
}

// Execute runs the root command.
func Execute() {
	_, err := rootCmd.ExecuteC()
	if err == nil {
		return
	}

	var silent *clierr.SilentError
	if errors.As(err, &silent) {
		os.Exit(silent.Code)
	}

	jsonMode := flagJSON
	if !jsonMode {
		jsonMode = os.Getenv(output.EnvFormat) == "json"
	}

	if jsonMode {
		var cliErr *clierr.Error
		if errors.As(err, &cliErr) {
			output.JSONError(os.Stdout, cliErr.Code, cliErr.Message, cliErr.Details)
			os.Exit(cliErr.ExitCode())
		}
		output.JSONError(os.Stdout, clierr.InternalError, err.Error(), nil)
		os.Exit(2) //nolint:mnd // exit code 2 for internal errors
	}

	fmt.Fprintln(os.Stderr, err)
	var cliErr *clierr.Error
	if errors.As(err, &cliErr) {
		os.Exit(cliErr.ExitCode())
	}
	os.Exit(1)
}

// resolveDir returns the absolute path to the data directory.
// Falls back to ~/.config/tasklane if none is found in the current directory tree.
func resolveDir() (string, error) {
	if flagDir != "" {
		return flagDir, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}

	dir, err := config.FindDir(cwd)
	if err == nil {
		return dir, nil
	}
	return config.UserDir()
}

// loadConfig finds and loads the config. The per-user fallback directory
// is created on first use; any other directory must exist already.
func loadConfig() (*config.Config, error) {
	dir, err := resolveDir()
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(dir)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, config.ErrNotFound) {
		return nil, err
	}
	userDir, userErr := config.UserDir()
	if userErr != nil || dir != userDir {
		return nil, clierr.New(clierr.StoreNotFound, err.Error())
	}
	return config.LoadOrInit(userDir)
}

// sessionManager returns the session manager for cfg.
func sessionManager(cfg *config.Config) *session.Manager {
	return session.NewManager(cfg.Dir(), cfg.SessionSecret(), cfg.SessionTTL())
}

// currentUser returns the logged-in identity or NOT_LOGGED_IN.
func currentUser(cfg *config.Config) (session.Identity, error) {
	id, err := sessionManager(cfg).Current()
	if errors.Is(err, session.ErrNoSession) {
		return session.Identity{}, clierr.New(clierr.NotLoggedIn,
			"not logged in (run 'tasklane login --name NAME --email EMAIL')")
	}
	return id, err
}

// openStore opens the configured backend. Unreadable documents are
// reported on stderr and skipped.
func openStore(cfg *config.Config) (store.Store, error) {
	s, err := store.Open(cfg.Store.Backend, cfg.Dir(), cfg.Store.Path)
	if err != nil {
		return nil, clierr.Wrap(clierr.PersistenceError, err)
	}
	switch b := s.(type) {
	case *store.FileStore:
		b.OnWarning = printWarning
	case *store.SQLiteStore:
		b.OnWarning = printWarning
	}
	return s, nil
}

// printWarning writes a skipped-document warning to stderr.
func printWarning(w store.ReadWarning) {
	fmt.Fprintf(os.Stderr, "Warning: skipping unreadable document %s: %v\n", w.File, w.Err)
}

// openApp loads config, session and store and returns a loaded App.
// The caller must Close it.
func openApp(ctx context.Context) (*app.App, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	user, err := currentUser(cfg)
	if err != nil {
		return nil, nil, err
	}
	s, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	a := app.New(app.Options{
		Store:           s,
		Identity:        user,
		Log:             activity.New(cfg.Dir()),
		View:            cfg.ViewOptions(),
		PageSizes:       cfg.PageSizes,
		DefaultPriority: task.Priority(cfg.Defaults.Priority),
	})
	if err := a.Load(ctx); err != nil {
		a.Close() //nolint:errcheck // already failing
		return nil, nil, err
	}
	return a, cfg, nil
}

// outputFormat returns the detected output format from flags/env.
func outputFormat() output.Format {
	return output.Detect(flagJSON, flagTable, flagCompact)
}

// normalizeTaskFlags maps flag aliases onto their canonical names.
func normalizeTaskFlags(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	switch name {
	case "tag":
		name = "tags"
	case "description":
		name = "body"
	}
	return pflag.NormalizedName(name)
}

// printBatch writes per-task results. Returns a SilentError with exit code 1
// if any operation failed (after outputting results).
func printBatch(results []output.BatchResult) error {
	anyFailed := false
	for _, r := range results {
		if !r.OK {
			anyFailed = true
		}
	}

	if outputFormat() == output.FormatJSON {
		if err := output.JSON(os.Stdout, results); err != nil {
			return err
		}
	} else {
		var succeeded int
		for _, r := range results {
			if r.OK {
				succeeded++
			}
		}
		output.BatchTable(os.Stdout, results)
		output.Messagef(os.Stdout, "Completed %d/%d operations", succeeded, len(results))
	}

	if anyFailed {
		return &clierr.SilentError{Code: 1}
	}
	return nil
}

// printTask writes a single task in the selected format.
func printTask(a *app.App, t *task.Task, verb string) error {
	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, t)
	case output.FormatCompact:
		output.TaskDetailCompact(os.Stdout, t, a.Catalog(), a.Now())
	default:
		output.Messagef(os.Stdout, "%s task %s: %s", verb, output.ShortID(t.ID), t.Title)
	}
	return nil
}
