package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/badmusic/internal/player"
	"github.com/desertthunder/badmusic/internal/shared"
	"github.com/desertthunder/badmusic/internal/ui"
)

// TUI launches the interactive terminal player.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, r.logger.GetLevel())
	r.SetLogger(fileLogger)

	if err := r.open(); err != nil {
		return err
	}

	coord, err := r.coordinator(ctx)
	if err != nil {
		return err
	}
	defer coord.Shutdown()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go coord.Run(runCtx)

	model, err := ui.NewModel(runCtx, ui.Deps{
		Player:    coord,
		Library:   r.library,
		Resolver:  r.library.Catalogs(),
		URLs:      r.urls(),
		Waves:     player.NewWaveStore(),
		CacheSize: r.config.Playback.CacheSize,
		Logger:    shared.WithLogger(fileLogger, "component", "tui"),
	})
	if err != nil {
		return err
	}
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(runCtx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
