package cmd

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/tidlog/tidlog/internal/config"
	"github.com/tidlog/tidlog/internal/tui"
	"github.com/tidlog/tidlog/internal/watcher"
)

func runTUI(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	model := tui.New(cfg)
	p := tea.NewProgram(model, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go startTUIWatcher(ctx, cfg, p)

	_, err = p.Run()
	return err
}

func startTUIWatcher(ctx context.Context, cfg *config.Config, p *tea.Program) {
	w, err := watcher.New(cfg.SnapshotPath(), func() {
		p.Send(tui.ReloadMsg{})
	})
	if err != nil {
		return // non-fatal: TUI works without live refresh
	}
	defer w.Close()
	w.Run(ctx, nil)
}
