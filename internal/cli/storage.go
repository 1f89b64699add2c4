package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"fyne.io/fyne/v2"
	"github.com/spf13/cobra"

	"FreeHand/internal/config"
	"FreeHand/internal/store"
)

// ErrNeedsGUI is returned when a headless command is pointed at the
// preferences backend, which lives inside the running app.
var ErrNeedsGUI = errors.New("preferences backend is only available in the GUI")

// openStore builds the configured backend and loads the drawings from it.
// prefs may be nil outside the GUI. The returned func releases the backend.
func openStore(cfg config.Config, prefs fyne.Preferences) (*store.Store, func(), error) {
	var (
		kv      store.KV
		release = func() {}
	)
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		db, err := store.OpenSQLite(cfg.Storage.Path)
		if err != nil {
			return nil, nil, err
		}
		kv = db
		release = func() {
			if err := db.Close(); err != nil {
				slog.Error("close store", "path", cfg.Storage.Path, "err", err)
			}
		}
	case config.BackendPreferences:
		if prefs == nil {
			return nil, nil, ErrNeedsGUI
		}
		kv = store.NewPreferencesKV(prefs)
	case config.BackendMemory:
		kv = store.NewMemoryKV()
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.Storage.Backend)
	}

	s := store.New(kv, cfg.Storage.Key)
	if err := s.Load(); err != nil {
		release()
		return nil, nil, err
	}
	slog.Debug("store opened", "backend", cfg.Storage.Backend, "drawings", s.Len())
	return s, release, nil
}

// openHeadless resolves the config and opens the store for a subcommand.
func openHeadless(opts *RootOptions, cmd *cobra.Command) (*store.Store, func(), error) {
	cfg, err := opts.resolve(cmd)
	if err != nil {
		return nil, nil, err
	}
	return openStore(cfg, nil)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid drawing id %q", arg)
	}
	return id, nil
}
