// Package pipeline provides the complete load → layout → render pipeline.
//
// This package implements the plate generation flow shared by the CLI and
// the HTTP server. By centralizing this logic, both entry points behave
// identically and caching works the same everywhere.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Decode images and CSV metadata from an input directory
//  2. Layout: Sort, scale, and place images onto plates
//  3. Render: Encode the plates in the requested output formats
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    InputDir: "./photos",
//	    Layout:   layout.Options{Mode: layout.ModeGrid},
//	    Formats:  []string{"pdf"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	pdf := result.Artifacts["pdf"][0].Data
package pipeline

import (
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/plateworks/tavola/pkg/cache"
	"github.com/plateworks/tavola/pkg/catalog"
	"github.com/plateworks/tavola/pkg/errors"
	"github.com/plateworks/tavola/pkg/imageio"
	"github.com/plateworks/tavola/pkg/layout"
	"github.com/plateworks/tavola/pkg/render"
)

// DefaultFormat is the output format used when none is requested.
const DefaultFormat = string(render.FormatPDF)

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Input options
	InputDir     string `json:"input_dir,omitempty"`
	MetadataPath string `json:"metadata_path,omitempty"`
	Workers      int    `json:"workers,omitempty"`
	Refresh      bool   `json:"refresh,omitempty"`

	// Layout options
	Layout layout.Options `json:"layout"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Quality int      `json:"quality,omitempty"`
	DPI     float64  `json:"dpi,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.InputDir == "" {
		return errors.New(errors.ErrCodeInvalidInput, "input directory is required")
	}
	if err := o.Layout.ValidateAndSetDefaults(); err != nil {
		return err
	}

	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	for _, f := range o.Formats {
		if !render.ValidFormats[render.Format(f)] {
			return errors.New(errors.ErrCodeInvalidFormat, "unknown output format: %q", f)
		}
	}
	if o.Quality == 0 {
		o.Quality = render.DefaultQuality
	}
	if o.DPI == 0 {
		o.DPI = render.DefaultDPI
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// DocumentKeyOpts returns cache key options for document geometry caching.
func (o *Options) DocumentKeyOpts() cache.DocumentKeyOpts {
	return cache.DocumentKeyOpts{
		Mode:          string(o.Layout.Mode),
		PageWidth:     o.Layout.PageWidth,
		PageHeight:    o.Layout.PageHeight,
		Margin:        o.Layout.Margin,
		Spacing:       o.Layout.Spacing,
		Scale:         o.Layout.Scale,
		ImagesPerPage: o.Layout.ImagesPerPage,
		Seed:          o.Layout.Seed,
		OptionsHash:   o.layoutOptionsHash(),
	}
}

// ArtifactKeyOpts returns cache key options for artifact caching.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:  format,
		Quality: o.Quality,
		DPI:     o.DPI,
	}
}

// layoutOptionsHash fingerprints the full layout options. The JSON encoding
// skips runtime-only fields, so the hash covers exactly the knobs that
// shape the document.
func (o *Options) layoutOptionsHash() string {
	data, err := json.Marshal(o.Layout)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Document is the laid-out plate document.
	Document *catalog.Document

	// DocumentHash is the content hash of the serialized document.
	DocumentHash string

	// Report describes placement outcomes, drops, and warnings.
	Report *layout.Report

	// LoadWarnings lists input files that could not be decoded.
	LoadWarnings []imageio.Warning

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]render.File

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ItemCount  int
	PageCount  int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each cacheable pipeline stage.
type CacheInfo struct {
	DocumentHit bool // Whether the laid-out document came from cache
	RenderHit   bool // Whether all artifacts came from cache
}
