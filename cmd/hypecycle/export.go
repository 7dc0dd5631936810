package main

import (
	"context"
	"fmt"

	"github.com/flanksource/commons/logger"
	"github.com/flanksource/hypecycle"
	"github.com/flanksource/hypecycle/capture"
	"github.com/flanksource/hypecycle/geometry"
	"github.com/spf13/cobra"
)

func newExportCommand(flags *hypecycle.Flags) *cobra.Command {
	var format string
	var region []float64

	cmd := &cobra.Command{
		Use:   "export [script.yaml]",
		Short: "Export the widget as an image",
		Long: fmt.Sprintf(`Replay an optional drag script, then capture the widget and save it as
%s in the output directory. With --format pdf the
capture is placed on an A4 page and saved as %s.`, capture.Filename, capture.PDFFilename()),
		Example: `  hypecycle export drags.yaml
  hypecycle export --region 16,280,968,550 --pixel-scale 2
  hypecycle export drags.yaml --format pdf -o out/`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "png" && format != "pdf" {
				return fmt.Errorf("unsupported format %q (expected png or pdf)", format)
			}
			if len(region) != 0 && len(region) != 4 {
				return fmt.Errorf("--region takes x,y,width,height")
			}
			cfg, err := flags.Config()
			if err != nil {
				return err
			}

			var opts []hypecycle.Option
			memory := capture.NewMemoryDownloader()
			if format == "pdf" {
				opts = append(opts, hypecycle.WithDownloader(memory))
			}

			return hypecycle.Run(cmd.Context(), cfg, func(ctx context.Context, w *hypecycle.Widget) error {
				if err := play(w, args); err != nil {
					return err
				}

				var job *capture.Job
				if len(region) == 4 {
					job = w.ExportRegion(ctx, geometry.FromXYWH(region[0], region[1], region[2], region[3]), nil)
				} else {
					job = w.Export(ctx, nil)
				}
				result := job.Wait()
				if result.Err != nil {
					return result.Err
				}

				path := result.Path
				if format == "pdf" {
					pdf, err := capture.EncodePDF(result.PNG)
					if err != nil {
						return err
					}
					path, err = capture.NewFileDownloader(cfg.Capture.OutputDir).Save(ctx, capture.PDFFilename(), pdf)
					if err != nil {
						return err
					}
				}
				logger.Infof("Exported %dx%d px to %s", result.Size.X, result.Size.Y, path)
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			}, opts...)
		},
	}
	cmd.Flags().StringVar(&format, "format", "png", "Output format: png or pdf")
	cmd.Flags().Float64SliceVar(&region, "region", nil, "Capture only this region: x,y,width,height in client px")
	return cmd
}
