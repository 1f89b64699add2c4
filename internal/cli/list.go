package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"FreeHand/internal/surface"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved drawings",
		Long: `List saved drawings in gallery order.

Each line shows the id, the last save time and the image size in pixels.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, cmd)
		},
	}
}

func runList(opts *RootOptions, cmd *cobra.Command) error {
	s, release, err := openHeadless(opts, cmd)
	if err != nil {
		return err
	}
	defer release()

	out := cmd.OutOrStdout()
	drawings := s.List()
	if len(drawings) == 0 {
		fmt.Fprintln(out, "no drawings")
		return nil
	}
	for _, d := range drawings {
		size := "?"
		if img, err := surface.DecodeDataURI(d.Data); err == nil {
			b := img.Bounds()
			size = fmt.Sprintf("%dx%d", b.Dx(), b.Dy())
		}
		fmt.Fprintf(out, "%d\t%s\t%s\n", d.ID, time.UnixMilli(d.UpdatedAt).Format(time.RFC3339), size)
	}
	return nil
}
