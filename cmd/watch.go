package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/twiced-technology-gmbh/tasklane/internal/app"
	"github.com/twiced-technology-gmbh/tasklane/internal/config"
	"github.com/twiced-technology-gmbh/tasklane/internal/output"
	"github.com/twiced-technology-gmbh/tasklane/internal/watcher"
)

// watchStore renders once, then again after every store change until
// interrupted. Reload failures are printed and the previous render stays.
func watchStore(ctx context.Context, cfg *config.Config, a *app.App, render func() error) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	changed := make(chan struct{}, 1)
	w, err := watcher.ForStore(cfg.Dir(), cfg.Store.Backend, cfg.SQLitePath(), func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return fmt.Errorf("watching store: %w", err)
	}
	defer w.Close() //nolint:errcheck // best-effort close on exit
	go w.Run(ctx, func(err error) {
		fmt.Fprintf(os.Stderr, "Warning: watcher: %v\n", err)
	})

	clearScreen := term.IsTerminal(int(os.Stdout.Fd())) && outputFormat() != output.FormatJSON
	draw := func() {
		if clearScreen {
			fmt.Fprint(os.Stdout, "\033[H\033[2J")
		}
		if err := render(); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}

	draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changed:
			if err := a.Load(ctx); err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			draw()
		}
	}
}
