package cli

import (
	"fmt"
	"image/color"
	"log/slog"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"

	"FreeHand/internal/config"
	"FreeHand/internal/state"
	"FreeHand/internal/store"
	"FreeHand/internal/surface"
	"FreeHand/internal/ui"
)

// AppID names the preferences namespace of the desktop app.
const AppID = "io.freehand.app"

func runGUI(opts *RootOptions, cmd *cobra.Command) error {
	cfg, err := opts.resolve(cmd)
	if err != nil {
		return err
	}

	a := app.NewWithID(AppID)
	s, release, err := openStore(cfg, a.Preferences())
	if err != nil {
		return err
	}
	defer release()

	board, settings, err := assemble(cfg, s, fyne.Do)
	if err != nil {
		return err
	}
	if err := board.Load(); err != nil {
		return err
	}
	slog.Info("starting", "backend", cfg.Storage.Backend, "drawings", s.Len())
	ui.RunApp(a, board, settings)
	return nil
}

// assemble builds the Board and window settings described by cfg on top of
// an opened store.
func assemble(cfg config.Config, s *store.Store, dispatch func(func())) (*state.Board, ui.Settings, error) {
	bg, err := config.ParseHexColor(cfg.Canvas.Background)
	if err != nil {
		return nil, ui.Settings{}, fmt.Errorf("canvas.background: %w", err)
	}
	pen, err := config.ParseHexColor(cfg.Canvas.DefaultColor)
	if err != nil {
		return nil, ui.Settings{}, fmt.Errorf("canvas.default_color: %w", err)
	}
	presets := make([]color.NRGBA, 0, len(cfg.Canvas.Presets))
	for _, p := range cfg.Canvas.Presets {
		c, err := config.ParseHexColor(p)
		if err != nil {
			return nil, ui.Settings{}, fmt.Errorf("canvas.presets: %w", err)
		}
		presets = append(presets, c)
	}

	board := state.NewBoard(s,
		surface.New(bg),
		state.NewTools(pen, bg, cfg.Canvas.DefaultWidth, cfg.Canvas.RecentLimit),
		state.Options{
			ReturnDelay:    cfg.UI.ReturnDelay,
			ThumbnailWidth: cfg.Canvas.ThumbnailWidth,
			Now:            time.Now,
			Dispatch:       dispatch,
		})

	settings := ui.Settings{
		Title:   "Free Hand",
		Size:    fyne.NewSize(cfg.UI.Width, cfg.UI.Height),
		Presets: presets,
		Sizes:   cfg.Canvas.Sizes,
	}
	return board, settings, nil
}
