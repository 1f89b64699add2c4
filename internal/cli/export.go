package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"FreeHand/internal/export"
)

type exportOptions struct {
	output string
	format string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a saved drawing as PNG or PDF",
		Long: `Export a saved drawing to a file.

The format is taken from --format, or from the output file extension when
--format is not given.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (required)")
	cmd.Flags().StringVar(&opts.format, "format", "", "output format (png|pdf)")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runExport(rootOpts *RootOptions, opts *exportOptions, arg string, cmd *cobra.Command) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	format := opts.format
	if format == "" {
		format = export.FormatFromPath(opts.output)
	}

	s, release, err := openHeadless(rootOpts, cmd)
	if err != nil {
		return err
	}
	defer release()

	d, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := export.ToFile(opts.output, d, format); err != nil {
		return err
	}
	slog.Info("drawing exported", "id", id, "format", format, "path", opts.output)
	fmt.Fprintf(cmd.OutOrStdout(), "exported %d to %s\n", id, opts.output)
	return nil
}
