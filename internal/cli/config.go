package cli

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/plateworks/tavola/pkg/layout"
	"github.com/plateworks/tavola/pkg/pipeline"
)

// fileConfig mirrors the generate flags as a TOML document, so recurring
// plate setups can live next to the photographs.
//
// Example:
//
//	input = "./photos"
//	metadata = "./finds.csv"
//	output = "./plates"
//	formats = ["pdf", "svg"]
//
//	[layout]
//	mode = "grid"
//	page_size = "A4"
//	grid_rows = 4
//	grid_cols = 3
//
//	[layout.sort]
//	method = "metadata"
//	field = "site"
//
//	[layout.captions]
//	enabled = true
//	fields = ["site", "type"]
type fileConfig struct {
	Input    string   `toml:"input"`
	Metadata string   `toml:"metadata"`
	Output   string   `toml:"output"`
	Formats  []string `toml:"formats"`
	Quality  int      `toml:"quality"`
	DPI      float64  `toml:"dpi"`
	Workers  int      `toml:"workers"`

	Layout layoutConfig `toml:"layout"`
}

type layoutConfig struct {
	Mode           string  `toml:"mode"`
	PageSize       string  `toml:"page_size"`
	PageWidth      float64 `toml:"page_width"`
	PageHeight     float64 `toml:"page_height"`
	Margin         float64 `toml:"margin"`
	Spacing        float64 `toml:"spacing"`
	GridRows       int     `toml:"grid_rows"`
	GridCols       int     `toml:"grid_cols"`
	MasonryColumns int     `toml:"masonry_columns"`
	Scale          float64 `toml:"scale"`
	ImagesPerPage  int     `toml:"images_per_page"`
	Seed           uint64  `toml:"seed"`
	Border         bool    `toml:"border"`

	Sort      sortConfig               `toml:"sort"`
	Secondary sortConfig               `toml:"sort_secondary"`
	Break     breakConfig              `toml:"break"`
	Captions  captionConfig            `toml:"captions"`
	ScaleBar  scaleBarConfig           `toml:"scale_bar"`
	Numbering numberConfig             `toml:"numbering"`
	Manual    []layout.ManualPlacement `toml:"manual"`
}

type sortConfig struct {
	Method string `toml:"method"`
	Field  string `toml:"field"`
}

type breakConfig struct {
	Enabled       bool    `toml:"enabled"`
	Kind          string  `toml:"kind"`
	Thickness     float64 `toml:"thickness"`
	WidthFraction float64 `toml:"width_fraction"`
}

type captionConfig struct {
	Enabled        bool     `toml:"enabled"`
	FontSize       float64  `toml:"font_size"`
	Padding        float64  `toml:"padding"`
	Fields         []string `toml:"fields"`
	HideFieldNames bool     `toml:"hide_field_names"`
	KeepExtension  bool     `toml:"keep_extension"`
}

type scaleBarConfig struct {
	Enabled     bool    `toml:"enabled"`
	Cm          int     `toml:"cm"`
	PixelsPerCm float64 `toml:"pixels_per_cm"`
}

type numberConfig struct {
	Enabled  bool    `toml:"enabled"`
	Scope    string  `toml:"scope"`
	Start    int     `toml:"start"`
	Position string  `toml:"position"`
	Prefix   string  `toml:"prefix"`
	FontSize float64 `toml:"font_size"`
}

// loadConfig reads and parses a TOML config file.
func loadConfig(path string) (*fileConfig, error) {
	var cfg fileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// pipelineOptions converts the config into pipeline options. Named page
// sizes resolve here; unknown names surface later through validation as a
// zero page box.
func (cfg *fileConfig) pipelineOptions() pipeline.Options {
	lc := cfg.Layout

	opts := layout.Options{
		Mode:           layout.Mode(lc.Mode),
		PageWidth:      lc.PageWidth,
		PageHeight:     lc.PageHeight,
		Margin:         lc.Margin,
		Spacing:        lc.Spacing,
		GridRows:       lc.GridRows,
		GridCols:       lc.GridCols,
		MasonryColumns: lc.MasonryColumns,
		Scale:          lc.Scale,
		ImagesPerPage:  lc.ImagesPerPage,
		Seed:           lc.Seed,
		MarginBorder:   lc.Border,
		SortPrimary:    layout.SortSpec{Method: lc.Sort.Method, Field: lc.Sort.Field},
		SortSecondary:  layout.SortSpec{Method: lc.Secondary.Method, Field: lc.Secondary.Field},
		Break: layout.BreakSpec{
			Enabled:       lc.Break.Enabled,
			Kind:          lc.Break.Kind,
			Thickness:     lc.Break.Thickness,
			WidthFraction: lc.Break.WidthFraction,
		},
		Caption: layout.CaptionSpec{
			Enabled:        lc.Captions.Enabled,
			FontSize:       lc.Captions.FontSize,
			Padding:        lc.Captions.Padding,
			Fields:         lc.Captions.Fields,
			HideFieldNames: lc.Captions.HideFieldNames,
			KeepExtension:  lc.Captions.KeepExtension,
		},
		ScaleBar: layout.ScaleBarSpec{
			Enabled:     lc.ScaleBar.Enabled,
			Cm:          lc.ScaleBar.Cm,
			PixelsPerCm: lc.ScaleBar.PixelsPerCm,
		},
		Numbering: layout.NumberSpec{
			Enabled:  lc.Numbering.Enabled,
			Scope:    lc.Numbering.Scope,
			Start:    lc.Numbering.Start,
			Position: lc.Numbering.Position,
			Prefix:   lc.Numbering.Prefix,
			FontSize: lc.Numbering.FontSize,
		},
		Manual: lc.Manual,
	}

	if opts.PageWidth == 0 && opts.PageHeight == 0 && lc.PageSize != "" {
		if w, h, err := layout.PageSizeDims(lc.PageSize); err == nil {
			opts.PageWidth, opts.PageHeight = w, h
		}
	}

	return pipeline.Options{
		InputDir:     cfg.Input,
		MetadataPath: cfg.Metadata,
		Workers:      cfg.Workers,
		Layout:       opts,
		Formats:      cfg.Formats,
		Quality:      cfg.Quality,
		DPI:          cfg.DPI,
	}
}
