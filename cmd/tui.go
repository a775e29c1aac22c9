package cmd

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasklane/internal/config"
	"github.com/twiced-technology-gmbh/tasklane/internal/tui"
	"github.com/twiced-technology-gmbh/tasklane/internal/watcher"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive task list",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, cfg, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck // read side already done

	model := tui.NewList(a)
	p := tea.NewProgram(model, tea.WithAltScreen())

	go startTUIWatcher(ctx, cfg, p)

	_, err = p.Run()
	return err
}

func startTUIWatcher(ctx context.Context, cfg *config.Config, p *tea.Program) {
	w, err := watcher.ForStore(cfg.Dir(), cfg.Store.Backend, cfg.SQLitePath(), func() {
		p.Send(tui.ReloadMsg{})
	})
	if err != nil {
		return // non-fatal: the list works without live refresh
	}
	defer w.Close()
	w.Run(ctx, nil)
}
