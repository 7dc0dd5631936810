package main

import (
	"context"

	"github.com/flanksource/hypecycle"
	"github.com/flanksource/hypecycle/capture"
	"github.com/flanksource/hypecycle/server"
	"github.com/flanksource/hypecycle/shutdown"
	"github.com/spf13/cobra"
)

func newServeCommand(flags *hypecycle.Flags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the widget over HTTP",
		Long: `Mount one widget and serve it over HTTP:

  GET  /surface.svg            current frame as SVG
  GET  /tokens                 token state
  POST /tokens/{id}/pointer    {"type":"press|move|release","x":..,"y":..}
  GET  /tier                   active layout tier
  POST /viewport               {"width":..}
  POST /export                 PNG (or ?format=pdf) attachment`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.Config()
			if err != nil {
				return err
			}
			ctx, stop := shutdown.NotifyContext(cmd.Context())
			shutdown.AddHookWithPriority("signal handler", shutdown.PriorityIngress, stop)

			// exports are returned in the response, not written to disk
			return hypecycle.Run(ctx, cfg, func(ctx context.Context, w *hypecycle.Widget) error {
				return server.New(w).ListenAndServe(ctx, addr)
			}, hypecycle.WithDownloader(capture.NewMemoryDownloader()))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "Address to listen on")
	return cmd
}
