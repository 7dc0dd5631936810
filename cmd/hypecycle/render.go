package main

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/flanksource/commons/logger"
	"github.com/flanksource/hypecycle"
	"github.com/flanksource/hypecycle/surface"
	"github.com/spf13/cobra"
)

func newRenderCommand(flags *hypecycle.Flags) *cobra.Command {
	var output string
	var shapesOnly bool

	cmd := &cobra.Command{
		Use:   "render [script.yaml]",
		Short: "Render the widget as SVG",
		Long: `Render the widget as SVG, optionally after replaying a drag script.
Writes to stdout unless --out is set.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.Config()
			if err != nil {
				return err
			}
			return hypecycle.Run(cmd.Context(), cfg, func(_ context.Context, w *hypecycle.Widget) error {
				if err := play(w, args); err != nil {
					return err
				}
				var opts []surface.RenderOption
				if shapesOnly {
					opts = append(opts, surface.ShapesOnly())
				}
				var buf bytes.Buffer
				if err := w.RenderSVG(&buf, opts...); err != nil {
					return err
				}
				if output == "" || output == "-" {
					_, err := cmd.OutOrStdout().Write(buf.Bytes())
					return err
				}
				if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", output, err)
				}
				logger.Infof("Rendered %s to %s", w, output)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&output, "out", "", "Write the SVG to this file instead of stdout")
	cmd.Flags().BoolVar(&shapesOnly, "shapes-only", false, "Omit text and background images")
	return cmd
}

func play(w *hypecycle.Widget, args []string) error {
	if len(args) == 0 {
		return nil
	}
	script, err := hypecycle.LoadScript(args[0])
	if err != nil {
		return err
	}
	logger.Debugf("Replaying %d drags from %s", len(script.Drags), args[0])
	return w.Play(script)
}
