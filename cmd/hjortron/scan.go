package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/FabianRolfMatthiasNoll/hjortron/internal/catalog"
	"github.com/FabianRolfMatthiasNoll/hjortron/internal/core"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Width(12)
	valueStyle = lipgloss.NewStyle().Bold(true)
)

func newScanCommand(a *app) *cobra.Command {
	var prune bool
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Add the ROMs under the ROM directory to the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cores, err := a.loadCores()
			if err != nil {
				return err
			}
			defer cores.Close()

			lib, err := catalog.Open(a.cfg.Catalog.Path)
			if err != nil {
				return err
			}
			defer lib.Close()

			res, err := a.scan(cmd.Context(), lib, cores, prune)
			if err != nil {
				return err
			}
			total, err := lib.Count(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderScan(a.cfg.Directories.ROMs, res, total))
			return nil
		},
	}
	cmd.Flags().BoolVar(&prune, "prune", false, "remove catalog entries whose files are gone")
	return cmd
}

func (a *app) scan(ctx context.Context, lib *catalog.Catalog, cores *core.Collection, prune bool) (catalog.ScanResult, error) {
	s := &catalog.Scanner{
		Catalog: lib,
		Cores: catalog.MatcherFunc(func(path string) string {
			if d := cores.ForFile(path); d != nil {
				return d.Name
			}
			return ""
		}),
		Prune:  prune,
		Logger: a.log,
	}
	return s.Scan(ctx, a.cfg.Directories.ROMs)
}

func renderScan(dir string, res catalog.ScanResult, total int) string {
	row := func(label string, n int) string {
		return lipgloss.JoinHorizontal(lipgloss.Left, labelStyle.Render(label), valueStyle.Render(fmt.Sprint(n)))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Scanned "+dir),
		row("files", res.Seen),
		row("added", res.Added),
		row("identified", res.Identified),
		row("skipped", res.Skipped),
		row("removed", res.Removed),
		row("catalog", total),
	)
}
