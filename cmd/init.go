package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasklane/internal/clierr"
	"github.com/twiced-technology-gmbh/tasklane/internal/config"
	"github.com/twiced-technology-gmbh/tasklane/internal/output"
	"github.com/twiced-technology-gmbh/tasklane/internal/store"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new task store",
	Long:  `Creates a tasklane directory with config.yml and an empty document store.`,
	RunE:  runInit,
}

func init() {
	initCmd.Flags().String("name", "", "list name (defaults to current directory name)")
	initCmd.Flags().String("backend", config.DefaultBackend, "store backend (file or sqlite)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	dir := flagDir
	if dir == "" {
		dir = config.DefaultDir
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	if _, err := os.Stat(filepath.Join(absDir, config.ConfigFileName)); err == nil {
		return clierr.Newf(clierr.StoreAlreadyExists, "tasklane already initialized in %s", absDir).
			WithDetails(map[string]any{"dir": absDir})
	}

	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		name = filepath.Base(cwd)
	}
	backend, _ := cmd.Flags().GetString("backend")

	cfg, err := config.Init(absDir, name)
	if err != nil {
		return err
	}
	if backend != cfg.Store.Backend {
		cfg.Store.Backend = backend
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
	}

	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	if err := s.Close(); err != nil {
		return fmt.Errorf("closing store: %w", err)
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]string{
			"status":  "initialized",
			"dir":     absDir,
			"name":    name,
			"config":  cfg.ConfigPath(),
			"backend": cfg.Store.Backend,
		})
	}

	output.Messagef(os.Stdout, "Initialized %q in %s", name, absDir)
	output.Messagef(os.Stdout, "  Config:  %s", cfg.ConfigPath())
	output.Messagef(os.Stdout, "  Backend: %s", cfg.Store.Backend)
	if cfg.Store.Backend == store.BackendSQLite {
		output.Messagef(os.Stdout, "  DB:      %s", cfg.SQLitePath())
	}
	output.Messagef(os.Stdout, "  Hint:    Log in with: tasklane login --name NAME --email EMAIL")
	return nil
}
