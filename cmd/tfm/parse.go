package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/albertocavalcante/go-tfm/moniker"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	rawStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func newParseCmd(_ *rootOptions) *cobra.Command {
	var sorted bool

	cmd := &cobra.Command{
		Use:     "parse MONIKER...",
		Short:   "Show the family, version and platform of target framework monikers",
		Example: `  tfm parse --sort net6.0-windows net48 netstandard2.0`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ms, err := moniker.ParseAll(args)
			if err != nil {
				return err
			}
			if sorted {
				moniker.Sort(ms)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderMonikers(ms))
			return nil
		},
	}
	cmd.Flags().BoolVar(&sorted, "sort", false, "print monikers in ascending order")
	return cmd
}

// renderMonikers lays out one row per moniker in aligned columns.
func renderMonikers(ms []moniker.Moniker) string {
	header := []string{"MONIKER", "FAMILY", "VERSION", "PLATFORM"}
	rows := make([][]string, len(ms))
	for i, m := range ms {
		platform := m.Platform().String()
		if v := m.PlatformVersion(); v != "" {
			platform += " " + v
		}
		rows[i] = []string{m.Raw(), m.Family().String(), m.Version().String(), platform}
	}

	widths := make([]int, len(header))
	for _, row := range append([][]string{header}, rows...) {
		for c, cell := range row {
			widths[c] = max(widths[c], lipgloss.Width(cell))
		}
	}

	var sb strings.Builder
	writeRow := func(row []string, first, rest lipgloss.Style) {
		for c, cell := range row {
			style := rest
			if c == 0 {
				style = first
			}
			// Pad before styling so escape codes do not skew the columns.
			if c < len(row)-1 {
				cell += strings.Repeat(" ", widths[c]-lipgloss.Width(cell)+2)
			}
			sb.WriteString(style.Render(cell))
		}
		sb.WriteString("\n")
	}
	writeRow(header, headerStyle, headerStyle)
	for _, row := range rows {
		writeRow(row, rawStyle, mutedStyle)
	}
	return sb.String()
}
