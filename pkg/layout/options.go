package layout

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/plateworks/tavola/pkg/catalog"
	"github.com/plateworks/tavola/pkg/errors"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Server
// =============================================================================

const (
	// DefaultPageWidth and DefaultPageHeight are A4 at 300 DPI.
	DefaultPageWidth  = 2480.0
	DefaultPageHeight = 3508.0

	// DefaultMargin is the page margin in pixels.
	DefaultMargin = 50.0

	// DefaultSpacing is the minimum gap between placed images in pixels.
	DefaultSpacing = 10.0

	// DefaultScale is the fixed scale factor applied to intrinsic sizes.
	DefaultScale = 1.0

	// DefaultGridRows and DefaultGridCols define the grid capacity per page.
	DefaultGridRows = 4
	DefaultGridCols = 3

	// DefaultMasonryColumns is the column count for masonry flow.
	DefaultMasonryColumns = 3

	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(42)

	// DefaultCaptionFontSize and DefaultCaptionPadding shape image captions.
	DefaultCaptionFontSize = 12.0
	DefaultCaptionPadding  = 5.0

	// DefaultScaleBarCm is the scale bar length in centimeters.
	DefaultScaleBarCm = 5

	// DefaultPixelsPerCm converts centimeters to pixels at capture resolution.
	DefaultPixelsPerCm = 118.0

	// DefaultNumberStart, DefaultNumberPrefix and DefaultNumberFontSize
	// shape plate numbering ("Tav. 1", "Tav. 2", ...).
	DefaultNumberStart    = 1
	DefaultNumberPrefix   = "Tav."
	DefaultNumberFontSize = 18.0

	// DefaultDividerThickness and DefaultDividerWidthFraction shape the
	// horizontal rule drawn at group boundaries in divider mode.
	DefaultDividerThickness     = 3.0
	DefaultDividerWidthFraction = 0.8
)

// DefaultNumberPosition is the default plate number anchor.
const DefaultNumberPosition = catalog.PositionTopLeft

// =============================================================================
// Modes, Sort Methods, Break Kinds
// =============================================================================

// Mode selects the placement strategy.
type Mode string

// Placement strategies.
const (
	ModeGrid    Mode = "grid"
	ModePuzzle  Mode = "puzzle"
	ModeMasonry Mode = "masonry"
	ModeManual  Mode = "manual"
)

// ValidModes is the set of supported placement strategies.
var ValidModes = map[Mode]bool{
	ModeGrid:    true,
	ModePuzzle:  true,
	ModeMasonry: true,
	ModeManual:  true,
}

// Sort methods for each sort level.
const (
	SortNone         = "none"
	SortAlphabetical = "alphabetical"
	SortNatural      = "natural"
	SortRandom       = "random"
	SortMetadata     = "metadata"
)

// ValidSortMethods is the set of supported sort methods.
var ValidSortMethods = map[string]bool{
	SortNone:         true,
	SortAlphabetical: true,
	SortNatural:      true,
	SortRandom:       true,
	SortMetadata:     true,
}

// Break kinds for group boundaries.
const (
	BreakNewPage = "new_page"
	BreakDivider = "divider"
)

// ValidBreakKinds is the set of supported break kinds.
var ValidBreakKinds = map[string]bool{
	BreakNewPage: true,
	BreakDivider: true,
}

// ValidPositions is the set of supported numbering anchors.
var ValidPositions = map[string]bool{
	catalog.PositionTopLeft:      true,
	catalog.PositionTopCenter:    true,
	catalog.PositionTopRight:     true,
	catalog.PositionBottomLeft:   true,
	catalog.PositionBottomCenter: true,
	catalog.PositionBottomRight:  true,
}

// Numbering scopes.
const (
	NumberPerPage  = "page"  // One plate number per page
	NumberPerImage = "image" // A running sequence number on each image
)

// PageSizes maps named page formats to pixel dimensions at 300 DPI
// (screen formats at native resolution).
var PageSizes = map[string][2]float64{
	"A4":     {2480, 3508},
	"A3":     {3508, 4961},
	"LETTER": {2550, 3300},
	"HD":     {1920, 1080},
	"4K":     {3840, 2160},
}

// =============================================================================
// Option Specs
// =============================================================================

// SortSpec selects the sort method for one level.
// Field is consulted only when Method is "metadata".
type SortSpec struct {
	Method string `json:"method,omitempty"`
	Field  string `json:"field,omitempty"`
}

// BreakSpec controls group boundaries on primary sort field changes.
type BreakSpec struct {
	Enabled       bool    `json:"enabled,omitempty"`
	Kind          string  `json:"kind,omitempty"`           // "new_page" or "divider"
	Thickness     float64 `json:"thickness,omitempty"`      // Divider stroke thickness
	WidthFraction float64 `json:"width_fraction,omitempty"` // Divider length as fraction of content width
}

// CaptionSpec controls per-image captions.
type CaptionSpec struct {
	Enabled        bool     `json:"enabled,omitempty"`
	FontSize       float64  `json:"font_size,omitempty"`
	Padding        float64  `json:"padding,omitempty"` // Gap between image bottom and first line
	Fields         []string `json:"fields,omitempty"`  // Metadata fields to include, in order
	HideFieldNames bool     `json:"hide_field_names,omitempty"`
	KeepExtension  bool     `json:"keep_extension,omitempty"` // Keep the filename extension in the name line
}

// ScaleBarSpec controls the per-page metric scale bar.
type ScaleBarSpec struct {
	Enabled     bool    `json:"enabled,omitempty"`
	Cm          int     `json:"cm,omitempty"`
	PixelsPerCm float64 `json:"pixels_per_cm,omitempty"`
}

// NumberSpec controls plate or sequence numbering.
type NumberSpec struct {
	Enabled  bool    `json:"enabled,omitempty"`
	Scope    string  `json:"scope,omitempty"` // "page" or "image"
	Start    int     `json:"start,omitempty"`
	Position string  `json:"position,omitempty"`
	Prefix   string  `json:"prefix,omitempty"`
	FontSize float64 `json:"font_size,omitempty"`
}

// ManualPlacement is a caller-supplied position for manual mode.
// Coordinates are content-box local; Page is a 0-based page index.
type ManualPlacement struct {
	ID   string  `json:"id"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Page int     `json:"page"`
}

// =============================================================================
// Options - Engine Configuration
// =============================================================================

// TextMeasurer supplies font metrics to the annotation compositor.
// pkg/layout/text provides the standard implementation.
type TextMeasurer interface {
	Measure(s string, size float64) (w, h float64)
	LineHeight(size float64) float64
}

// Options contains all configuration for a generation run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Placement
	Mode           Mode    `json:"mode"`
	PageWidth      float64 `json:"page_width,omitempty"`
	PageHeight     float64 `json:"page_height,omitempty"`
	Margin         float64 `json:"margin,omitempty"`
	Spacing        float64 `json:"spacing,omitempty"`
	GridRows       int     `json:"grid_rows,omitempty"`
	GridCols       int     `json:"grid_cols,omitempty"`
	MasonryColumns int     `json:"masonry_columns,omitempty"`

	// Scaling: Scale is the fixed factor; ImagesPerPage > 0 switches to
	// auto mode, searching for the factor that puts that many images on
	// the first page.
	Scale         float64 `json:"scale,omitempty"`
	ImagesPerPage int     `json:"images_per_page,omitempty"`

	// Sorting
	SortPrimary   SortSpec `json:"sort_primary,omitempty"`
	SortSecondary SortSpec `json:"sort_secondary,omitempty"`
	Seed          uint64   `json:"seed,omitempty"`

	// Grouping and annotations
	Break        BreakSpec    `json:"break,omitempty"`
	Caption      CaptionSpec  `json:"caption,omitempty"`
	ScaleBar     ScaleBarSpec `json:"scale_bar,omitempty"`
	Numbering    NumberSpec   `json:"numbering,omitempty"`
	MarginBorder bool         `json:"margin_border,omitempty"`

	// Manual mode placements
	Manual []ManualPlacement `json:"manual,omitempty"`

	// Runtime options (not serialized)
	Logger   *log.Logger  `json:"-"`
	Measurer TextMeasurer `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ContentWidth returns the usable width inside the margins.
func (o *Options) ContentWidth() float64 { return o.PageWidth - 2*o.Margin }

// ContentHeight returns the usable height inside the margins.
func (o *Options) ContentHeight() float64 { return o.PageHeight - 2*o.Margin }

// AutoScale reports whether the scale factor is searched rather than fixed.
func (o *Options) AutoScale() bool { return o.ImagesPerPage > 0 }

// =============================================================================
// Validation
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if !ValidModes[o.Mode] {
		return errors.New(errors.ErrCodeInvalidMode, "unknown layout mode: %q (must be one of: grid, puzzle, masonry, manual)", o.Mode)
	}

	o.setDefaults()

	if o.PageWidth <= 0 || o.PageHeight <= 0 {
		return errors.New(errors.ErrCodeInvalidPageSize, "page box must be positive, got %gx%g", o.PageWidth, o.PageHeight)
	}
	if o.Margin < 0 {
		return errors.New(errors.ErrCodeInvalidPageSize, "margin cannot be negative")
	}
	if o.ContentWidth() <= 0 || o.ContentHeight() <= 0 {
		return errors.New(errors.ErrCodeInvalidPageSize, "margin %g leaves no content area on a %gx%g page", o.Margin, o.PageWidth, o.PageHeight)
	}
	if o.Spacing < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "spacing cannot be negative")
	}
	if o.Scale <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive, got %g", o.Scale)
	}
	if o.GridRows <= 0 || o.GridCols <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "grid must have positive rows and columns, got %dx%d", o.GridRows, o.GridCols)
	}
	if o.MasonryColumns <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "masonry needs at least one column")
	}
	if o.Mode == ModeMasonry && o.Spacing*float64(o.MasonryColumns-1) >= o.ContentWidth() {
		return errors.New(errors.ErrCodeInvalidInput, "%d masonry columns with spacing %g leave no column width on a %g wide content box", o.MasonryColumns, o.Spacing, o.ContentWidth())
	}

	if err := validateSortSpec("primary", o.SortPrimary); err != nil {
		return err
	}
	if err := validateSortSpec("secondary", o.SortSecondary); err != nil {
		return err
	}

	if o.Break.Enabled {
		if !ValidBreakKinds[o.Break.Kind] {
			return errors.New(errors.ErrCodeInvalidInput, "unknown break kind: %q (must be new_page or divider)", o.Break.Kind)
		}
		if o.SortPrimary.Method != SortMetadata {
			return errors.New(errors.ErrCodeInvalidSort, "break on field change requires a metadata primary sort")
		}
	}

	if o.Numbering.Enabled {
		if !ValidPositions[o.Numbering.Position] {
			return errors.New(errors.ErrCodeInvalidInput, "unknown numbering position: %q", o.Numbering.Position)
		}
		if o.Numbering.Scope != NumberPerPage && o.Numbering.Scope != NumberPerImage {
			return errors.New(errors.ErrCodeInvalidInput, "unknown numbering scope: %q (must be page or image)", o.Numbering.Scope)
		}
	}

	if o.Mode == ModeManual {
		if len(o.Manual) == 0 {
			return errors.New(errors.ErrCodeInvalidInput, "manual mode requires explicit placements")
		}
		for _, m := range o.Manual {
			if m.Page < 0 {
				return errors.New(errors.ErrCodeInvalidInput, "manual placement for %q has negative page index %d", m.ID, m.Page)
			}
		}
	}

	o.validated = true
	return nil
}

func validateSortSpec(level string, s SortSpec) error {
	if s.Method == "" {
		return nil
	}
	if !ValidSortMethods[s.Method] {
		return errors.New(errors.ErrCodeInvalidSort, "unknown %s sort method: %q", level, s.Method)
	}
	if s.Method == SortMetadata {
		if err := errors.ValidateMetadataField(s.Field); err != nil {
			return err
		}
	}
	return nil
}

// setDefaults fills zero-valued numeric options with the documented defaults.
func (o *Options) setDefaults() {
	if o.PageWidth == 0 {
		o.PageWidth = DefaultPageWidth
	}
	if o.PageHeight == 0 {
		o.PageHeight = DefaultPageHeight
	}
	if o.Margin == 0 {
		o.Margin = DefaultMargin
	}
	if o.Spacing == 0 {
		o.Spacing = DefaultSpacing
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.GridRows == 0 {
		o.GridRows = DefaultGridRows
	}
	if o.GridCols == 0 {
		o.GridCols = DefaultGridCols
	}
	if o.MasonryColumns == 0 {
		o.MasonryColumns = DefaultMasonryColumns
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.SortPrimary.Method == "" {
		o.SortPrimary.Method = SortNone
	}
	if o.SortSecondary.Method == "" {
		o.SortSecondary.Method = SortNone
	}
	if o.Break.Kind == "" {
		o.Break.Kind = BreakNewPage
	}
	if o.Break.Thickness == 0 {
		o.Break.Thickness = DefaultDividerThickness
	}
	if o.Break.WidthFraction == 0 {
		o.Break.WidthFraction = DefaultDividerWidthFraction
	}
	if o.Caption.FontSize == 0 {
		o.Caption.FontSize = DefaultCaptionFontSize
	}
	if o.Caption.Padding == 0 {
		o.Caption.Padding = DefaultCaptionPadding
	}
	if o.ScaleBar.Cm == 0 {
		o.ScaleBar.Cm = DefaultScaleBarCm
	}
	if o.ScaleBar.PixelsPerCm == 0 {
		o.ScaleBar.PixelsPerCm = DefaultPixelsPerCm
	}
	if o.Numbering.Scope == "" {
		o.Numbering.Scope = NumberPerPage
	}
	if o.Numbering.Start == 0 {
		o.Numbering.Start = DefaultNumberStart
	}
	if o.Numbering.Position == "" {
		o.Numbering.Position = DefaultNumberPosition
	}
	if o.Numbering.Prefix == "" {
		o.Numbering.Prefix = DefaultNumberPrefix
	}
	if o.Numbering.FontSize == 0 {
		o.Numbering.FontSize = DefaultNumberFontSize
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Measurer == nil {
		o.Measurer = defaultMeasurer()
	}
}

// PageSizeDims resolves a named page format ("A4", "A3", ...).
func PageSizeDims(name string) (w, h float64, err error) {
	dims, ok := PageSizes[name]
	if !ok {
		return 0, 0, errors.New(errors.ErrCodeInvalidPageSize, "unknown page size: %q", name)
	}
	return dims[0], dims[1], nil
}

// geometry is the per-page placement envelope handed to strategies.
type geometry struct {
	contentW float64
	contentH float64
	spacing  float64
}

func (o *Options) geometry() geometry {
	return geometry{
		contentW: o.ContentWidth(),
		contentH: o.ContentHeight(),
		spacing:  o.Spacing,
	}
}
