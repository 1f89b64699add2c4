package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"FreeHand/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Backend    string // overrides storage.backend
	DBPath     string // overrides storage.path
	LogLevel   string // overrides log.level
}

// NewRootCommand creates the root command. Without a subcommand it opens the
// drawing window.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "freehand",
		Short: "FreeHand - freehand sketching",
		Long:  "Draw on a canvas with the pointer and keep a gallery of saved drawings.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGUI(opts, cmd)
		},
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Backend, "store", "", "storage backend (sqlite|preferences|memory)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "SQLite database path")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")

	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))

	return cmd
}

// resolve loads the config file, applies flag overrides and installs the
// default logger on the command's error stream.
func (o *RootOptions) resolve(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return cfg, err
	}
	if o.Backend != "" {
		cfg.Storage.Backend = o.Backend
	}
	if o.DBPath != "" {
		cfg.Storage.Path = o.DBPath
	}
	if o.LogLevel != "" {
		if _, err := config.ParseLevel(o.LogLevel); err != nil {
			return cfg, fmt.Errorf("--log-level: %w", err)
		}
		cfg.Log.Level = o.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	config.SetupLogging(cmd.ErrOrStderr(), cfg.Log.Level)
	return cfg, nil
}
