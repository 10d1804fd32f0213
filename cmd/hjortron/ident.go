package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/FabianRolfMatthiasNoll/hjortron/internal/romident"
)

func newIdentCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ident <file>...",
		Short: "Identify cartridge images by their headers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return identFiles(cmd.OutOrStdout(), args)
		},
	}
}

// identFiles prints one line per file. Unrecognised files are reported and
// do not fail the command.
func identFiles(w io.Writer, paths []string) error {
	for _, p := range paths {
		r, err := romident.IdentifyFile(p)
		if err != nil {
			fmt.Fprintf(w, "%s: %v\n", p, err)
			continue
		}
		fmt.Fprintf(w, "%s: %s %q checksum=%08x verified=%v %s\n",
			p, dimStyle.Render(r.System.String()), r.Title, r.Checksum, r.Verified, r.Detail)
	}
	return nil
}
