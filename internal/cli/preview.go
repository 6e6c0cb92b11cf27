package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plateworks/tavola/pkg/pipeline"
)

// previewCommand creates the preview command for inspecting the first plate.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		metadata string
		noCache  bool
	)
	lf := &layoutFlags{}

	cmd := &cobra.Command{
		Use:   "preview [images-dir]",
		Short: "Show the first plate without rendering any output",
		Long: `Show the first plate without rendering any output.

The preview command runs load and layout only and prints where each image
lands on the first plate. Use it to tune placement flags before a full run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			built, err := lf.build()
			if err != nil {
				return err
			}
			opts := pipeline.Options{
				InputDir:     args[0],
				MetadataPath: metadata,
				Layout:       built,
			}
			return c.runPreview(cmd.Context(), opts, noCache)
		},
	}

	cmd.Flags().StringVar(&metadata, "metadata", "", "CSV metadata file (first column matches filenames)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	lf.register(cmd)

	return cmd
}

// runPreview lays out the input and prints the first plate.
func (c *CLI) runPreview(ctx context.Context, opts pipeline.Options, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	page, report, err := runner.Preview(ctx, opts)
	if err != nil {
		return err
	}

	printSuccess("First plate: %d images", len(page.Images))
	for _, img := range page.Images {
		printDetail("%-30s %7.1f,%-7.1f %6.0f×%.0f", img.Item.ID, img.X, img.Y, img.W, img.H)
	}
	if report != nil {
		if report.DroppedImages > 0 {
			printWarning("%d images could not be placed", report.DroppedImages)
		}
		for _, w := range report.Warnings {
			printWarning("%s", w.Message)
		}
	}
	printNewline()
	printNextStep("Generate", "tavola generate "+opts.InputDir)

	return nil
}
