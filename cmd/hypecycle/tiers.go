package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/flanksource/hypecycle"
	"github.com/flanksource/hypecycle/layout"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newTiersCommand(flags *hypecycle.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "tiers [width]",
		Short: "Show the layout tiers, or the tier a viewport width resolves to",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.Config()
			if err != nil {
				return err
			}
			policy, err := cfg.Policy()
			if err != nil {
				return err
			}

			active := ""
			if len(args) == 1 {
				width, err := strconv.ParseFloat(args[0], 64)
				if err != nil {
					return fmt.Errorf("invalid width %q: %w", args[0], err)
				}
				active = policy.Resolve(width).Name
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTiers(newRenderer(out), policy, active))
			if active != "" {
				fmt.Fprintf(out, "%s px -> %s\n", args[0], active)
			}
			return nil
		},
	}
}

// newRenderer colours output only for a terminal that has not set NO_COLOR.
func newRenderer(w io.Writer) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) || termenv.EnvNoColor() {
		r.SetColorProfile(termenv.Ascii)
	}
	return r
}

func renderTiers(r *lipgloss.Renderer, policy *layout.Policy, active string) string {
	header := r.NewStyle().Bold(true).Foreground(lipgloss.Color("#8A2BE2")).Padding(0, 1)
	cell := r.NewStyle().Padding(0, 1)
	highlight := cell.Foreground(lipgloss.Color("#32CD32")).Bold(true)
	muted := r.NewStyle().Foreground(lipgloss.Color("#808080"))

	tiers := policy.Tiers()
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(muted).
		Headers("TIER", "WIDTH", "SCALE", "FONT", "BOX")
	for i, tier := range tiers {
		width := fmt.Sprintf(">= %.0f", tier.MinWidth)
		if i+1 < len(tiers) {
			width = fmt.Sprintf("%.0f-%.0f", tier.MinWidth, tiers[i+1].MinWidth-1)
		}
		t.Row(tier.Name, width,
			strconv.FormatFloat(tier.Scale, 'f', -1, 64),
			fmt.Sprintf("%.0fpx", tier.FontSize),
			fmt.Sprintf("%.0fpx", tier.BoxHeight))
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return header
		case row >= 0 && row < len(tiers) && tiers[row].Name == active:
			return highlight
		}
		return cell
	})
	return t.Render()
}
