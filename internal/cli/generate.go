package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/plateworks/tavola/pkg/layout"
	"github.com/plateworks/tavola/pkg/pipeline"
	"github.com/plateworks/tavola/pkg/render"
)

// layoutFlags collects layout flag values before they are folded into
// engine options. Keeping them separate lets named page sizes and manual
// placement files resolve after flag parsing.
type layoutFlags struct {
	mode        string
	pageSize    string
	pageWidth   float64
	pageHeight  float64
	margin      float64
	spacing     float64
	gridRows    int
	gridCols    int
	masonryCols int

	scale         float64
	imagesPerPage int

	sortMethod         string
	sortField          string
	sortSecondary      string
	sortSecondaryField string
	seed               uint64

	breakKind string

	caption          bool
	captionSize      float64
	captionFields    string
	captionHideNames bool
	captionKeepExt   bool

	scaleBar    bool
	scaleBarCm  int
	pixelsPerCm float64

	numbering      bool
	numberScope    string
	numberStart    int
	numberPosition string
	numberPrefix   string

	border     bool
	manualPath string
}

// register adds the layout flags to cmd.
func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.mode, "mode", "m", string(layout.ModeGrid), "placement mode: grid, puzzle, masonry, manual")
	cmd.Flags().StringVar(&f.pageSize, "page-size", "A4", "named page format: A4, A3, LETTER, HD, 4K")
	cmd.Flags().Float64Var(&f.pageWidth, "page-width", 0, "page width in pixels (overrides --page-size)")
	cmd.Flags().Float64Var(&f.pageHeight, "page-height", 0, "page height in pixels (overrides --page-size)")
	cmd.Flags().Float64Var(&f.margin, "margin", layout.DefaultMargin, "page margin in pixels")
	cmd.Flags().Float64Var(&f.spacing, "spacing", layout.DefaultSpacing, "minimum gap between images in pixels")
	cmd.Flags().IntVar(&f.gridRows, "grid-rows", layout.DefaultGridRows, "grid rows per plate")
	cmd.Flags().IntVar(&f.gridCols, "grid-cols", layout.DefaultGridCols, "grid columns per plate")
	cmd.Flags().IntVar(&f.masonryCols, "masonry-columns", layout.DefaultMasonryColumns, "masonry column count")

	cmd.Flags().Float64Var(&f.scale, "scale", layout.DefaultScale, "fixed scale factor for image sizes")
	cmd.Flags().IntVar(&f.imagesPerPage, "images-per-page", 0, "auto-scale to fit this many images on the first plate")

	cmd.Flags().StringVar(&f.sortMethod, "sort", layout.SortNone, "primary sort: none, alphabetical, natural, random, metadata")
	cmd.Flags().StringVar(&f.sortField, "sort-field", "", "metadata field for the primary sort")
	cmd.Flags().StringVar(&f.sortSecondary, "sort-secondary", layout.SortNone, "secondary sort applied within primary ties")
	cmd.Flags().StringVar(&f.sortSecondaryField, "sort-secondary-field", "", "metadata field for the secondary sort")
	cmd.Flags().Uint64Var(&f.seed, "seed", layout.DefaultSeed, "random seed for reproducible shuffles")

	cmd.Flags().StringVar(&f.breakKind, "break", "", "break plates when the primary sort field changes: new_page, divider")

	cmd.Flags().BoolVar(&f.caption, "captions", false, "draw a caption under each image")
	cmd.Flags().Float64Var(&f.captionSize, "caption-size", layout.DefaultCaptionFontSize, "caption font size in points")
	cmd.Flags().StringVar(&f.captionFields, "caption-fields", "", "comma-separated metadata fields to include in captions")
	cmd.Flags().BoolVar(&f.captionHideNames, "caption-hide-field-names", false, "omit field names from caption lines")
	cmd.Flags().BoolVar(&f.captionKeepExt, "caption-keep-extension", false, "keep the filename extension in captions")

	cmd.Flags().BoolVar(&f.scaleBar, "scale-bar", false, "draw a metric scale bar on each plate")
	cmd.Flags().IntVar(&f.scaleBarCm, "scale-bar-cm", layout.DefaultScaleBarCm, "scale bar length in centimeters")
	cmd.Flags().Float64Var(&f.pixelsPerCm, "pixels-per-cm", layout.DefaultPixelsPerCm, "capture resolution in pixels per centimeter")

	cmd.Flags().BoolVar(&f.numbering, "numbering", false, "draw plate or sequence numbers")
	cmd.Flags().StringVar(&f.numberScope, "number-scope", layout.NumberPerPage, "numbering scope: page, image")
	cmd.Flags().IntVar(&f.numberStart, "number-start", layout.DefaultNumberStart, "first number in the sequence")
	cmd.Flags().StringVar(&f.numberPosition, "number-position", layout.DefaultNumberPosition, "number anchor: top_left, top_center, top_right, bottom_left, bottom_center, bottom_right")
	cmd.Flags().StringVar(&f.numberPrefix, "number-prefix", layout.DefaultNumberPrefix, "plate number prefix")

	cmd.Flags().BoolVar(&f.border, "border", false, "draw a frame around the content area")
	cmd.Flags().StringVar(&f.manualPath, "manual", "", "JSON file with explicit placements (manual mode)")
}

// build resolves the flag values into engine options.
func (f *layoutFlags) build() (layout.Options, error) {
	opts := layout.Options{
		Mode:           layout.Mode(f.mode),
		PageWidth:      f.pageWidth,
		PageHeight:     f.pageHeight,
		Margin:         f.margin,
		Spacing:        f.spacing,
		GridRows:       f.gridRows,
		GridCols:       f.gridCols,
		MasonryColumns: f.masonryCols,
		Scale:          f.scale,
		ImagesPerPage:  f.imagesPerPage,
		Seed:           f.seed,
		MarginBorder:   f.border,
	}

	if opts.PageWidth == 0 || opts.PageHeight == 0 {
		w, h, err := layout.PageSizeDims(f.pageSize)
		if err != nil {
			return layout.Options{}, err
		}
		opts.PageWidth, opts.PageHeight = w, h
	}

	opts.SortPrimary = layout.SortSpec{Method: f.sortMethod, Field: f.sortField}
	opts.SortSecondary = layout.SortSpec{Method: f.sortSecondary, Field: f.sortSecondaryField}

	if f.breakKind != "" {
		opts.Break = layout.BreakSpec{Enabled: true, Kind: f.breakKind}
	}

	opts.Caption = layout.CaptionSpec{
		Enabled:        f.caption,
		FontSize:       f.captionSize,
		Fields:         parseFields(f.captionFields),
		HideFieldNames: f.captionHideNames,
		KeepExtension:  f.captionKeepExt,
	}
	opts.ScaleBar = layout.ScaleBarSpec{
		Enabled:     f.scaleBar,
		Cm:          f.scaleBarCm,
		PixelsPerCm: f.pixelsPerCm,
	}
	opts.Numbering = layout.NumberSpec{
		Enabled:  f.numbering,
		Scope:    f.numberScope,
		Start:    f.numberStart,
		Position: f.numberPosition,
		Prefix:   f.numberPrefix,
	}

	if f.manualPath != "" {
		placements, err := readManualFile(f.manualPath)
		if err != nil {
			return layout.Options{}, err
		}
		opts.Manual = placements
	}

	return opts, nil
}

// readManualFile parses a JSON array of explicit placements.
func readManualFile(path string) ([]layout.ManualPlacement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manual placements %s: %w", path, err)
	}
	var placements []layout.ManualPlacement
	if err := json.Unmarshal(data, &placements); err != nil {
		return nil, fmt.Errorf("parse manual placements %s: %w", path, err)
	}
	return placements, nil
}

// generateCommand creates the generate command, the main entry point.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		output      string
		metadata    string
		formats     string
		quality     int
		dpi         float64
		workers     int
		noCache     bool
		refresh     bool
		configPath  string
		interactive bool
	)
	lf := &layoutFlags{}

	cmd := &cobra.Command{
		Use:   "generate [images-dir]",
		Short: "Compose artefact photographs into printable plates",
		Long: `Compose artefact photographs into printable plates.

The generate command loads every image from the input directory, optionally
attaches CSV metadata, arranges the images onto plates using the selected
placement mode, and writes the plates in the requested output formats.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := pipeline.Options{
				MetadataPath: metadata,
				Workers:      workers,
				Refresh:      refresh,
				Formats:      parseFormats(formats),
				Quality:      quality,
				DPI:          dpi,
			}

			if configPath != "" {
				cfg, err := loadConfig(configPath)
				if err != nil {
					return err
				}
				opts = cfg.pipelineOptions()
				opts.Refresh = refresh
				if output == "" {
					output = cfg.Output
				}
			} else {
				built, err := lf.build()
				if err != nil {
					return err
				}
				opts.Layout = built
			}

			if len(args) == 1 {
				opts.InputDir = args[0]
			}
			if interactive {
				chosen, err := pickFormats(opts.Formats)
				if err != nil {
					return err
				}
				opts.Formats = chosen
			}

			return c.runGenerate(cmd.Context(), opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "plates", "output directory")
	cmd.Flags().StringVar(&metadata, "metadata", "", "CSV metadata file (first column matches filenames)")
	cmd.Flags().StringVarP(&formats, "formats", "f", "", "comma-separated output formats: svg, pdf, png, jpeg, json")
	cmd.Flags().IntVar(&quality, "quality", render.DefaultQuality, "JPEG quality (1-100)")
	cmd.Flags().Float64Var(&dpi, "dpi", render.DefaultDPI, "render resolution for PDF output")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent image decoders (default: CPU count)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute everything, ignoring cached results")
	cmd.Flags().StringVar(&configPath, "config", "", "TOML config file (replaces other flags except --output, --refresh, --no-cache)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "pick output formats interactively")
	lf.register(cmd)

	return cmd
}

// runGenerate executes the pipeline and writes artifacts to the output directory.
func (c *CLI) runGenerate(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Arranging plates...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Generation failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	written, err := writeArtifacts(output, result.Artifacts)
	if err != nil {
		return err
	}

	printSuccess("Plates complete")
	for _, path := range written {
		printFile(path)
	}
	printStats(result.Stats.ItemCount, result.Stats.PageCount, result.CacheInfo.DocumentHit && result.CacheInfo.RenderHit)

	for _, w := range result.LoadWarnings {
		printWarning("skipped %s: %v", w.Path, w.Err)
	}
	if result.Report != nil {
		for _, w := range result.Report.Warnings {
			printWarning("%s", w.Message)
		}
		if result.Report.AutoScale != nil && result.Report.AutoScale.Infeasible {
			printWarning("auto scale: wanted %d images per plate, best achievable is %d",
				result.Report.AutoScale.Requested, result.Report.AutoScale.Achieved)
		}
	}

	return nil
}

// writeArtifacts stores rendered files under dir and returns the written paths.
func writeArtifacts(dir string, artifacts map[string][]render.File) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", dir, err)
	}
	var written []string
	for _, files := range artifacts {
		for _, f := range files {
			path := filepath.Join(dir, f.Name)
			if err := os.WriteFile(path, f.Data, 0o644); err != nil {
				return nil, fmt.Errorf("write %s: %w", path, err)
			}
			written = append(written, path)
		}
	}
	sort.Strings(written)
	return written, nil
}
