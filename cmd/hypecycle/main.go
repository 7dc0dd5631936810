package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/flanksource/hypecycle"
	"github.com/flanksource/hypecycle/shutdown"
	"github.com/spf13/cobra"
)

// Build information (set by goreleaser)
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	rootCmd := newRootCommand()
	err := rootCmd.Execute()
	shutdown.Shutdown()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	flags := hypecycle.DefaultFlags()

	rootCmd := &cobra.Command{
		Use:   "hypecycle",
		Short: "Place technologies on a Gartner hype cycle and export the chart",
		Long: `hypecycle lays out a tray of technology tokens above a hype-cycle chart.
Tokens are dragged onto the chart with pointer events, the layout follows the
viewport width, and the widget can be exported as a PNG or PDF.`,
		Example: `  hypecycle render -o chart.svg
  hypecycle export drags.yaml --pixel-scale 2
  hypecycle tiers 700
  hypecycle serve --addr :8080`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			flags.UseFlags()
		},
	}
	hypecycle.BindFlags(rootCmd.PersistentFlags(), &flags)

	rootCmd.AddCommand(
		newRenderCommand(&flags),
		newExportCommand(&flags),
		newTiersCommand(&flags),
		newServeCommand(&flags),
		newVersionCommand(),
	)
	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), getVersionInfo())
		},
	}
}

func getVersionInfo() string {
	return fmt.Sprintf("hypecycle %s (commit: %s, built: %s, go: %s)",
		version, commit, date, runtime.Version())
}
