package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/FabianRolfMatthiasNoll/hjortron/internal/core"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	cellStyle   = lipgloss.NewStyle().PaddingRight(2)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func newCoresCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cores",
		Short: "List the cores found in the core directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cores, err := a.loadCores()
			if err != nil {
				return err
			}
			defer cores.Close()
			fmt.Fprintln(cmd.OutOrStdout(), renderCores(cores.All()))
			return nil
		},
	}
}

// renderCores lays the cores out as a table with one column per field.
func renderCores(cores []*core.Descriptor) string {
	cols := [][]string{{"NAME"}, {"VERSION"}, {"EXTENSIONS"}, {"PATH"}}
	for _, d := range cores {
		cols[0] = append(cols[0], d.Name)
		cols[1] = append(cols[1], d.Version)
		cols[2] = append(cols[2], strings.Join(d.ExtensionList(), " "))
		cols[3] = append(cols[3], d.Path)
	}
	rendered := make([]string, len(cols))
	for i, col := range cols {
		lines := make([]string, len(col))
		for j, cell := range col {
			switch {
			case j == 0:
				lines[j] = headerStyle.Render(cell)
			case i == len(cols)-1:
				lines[j] = dimStyle.Render(cell)
			default:
				lines[j] = cell
			}
		}
		rendered[i] = cellStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}
