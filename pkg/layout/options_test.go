package layout

import (
	"testing"

	"github.com/plateworks/tavola/pkg/catalog"
	"github.com/plateworks/tavola/pkg/errors"
)

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{Mode: ModeGrid}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}

	if opts.PageWidth != DefaultPageWidth || opts.PageHeight != DefaultPageHeight {
		t.Errorf("page box = %gx%g, want defaults", opts.PageWidth, opts.PageHeight)
	}
	if opts.Margin != DefaultMargin || opts.Spacing != DefaultSpacing {
		t.Errorf("margin/spacing = %g/%g, want defaults", opts.Margin, opts.Spacing)
	}
	if opts.Scale != DefaultScale {
		t.Errorf("scale = %g, want %g", opts.Scale, DefaultScale)
	}
	if opts.GridRows != DefaultGridRows || opts.GridCols != DefaultGridCols {
		t.Errorf("grid = %dx%d, want defaults", opts.GridRows, opts.GridCols)
	}
	if opts.Seed != DefaultSeed {
		t.Errorf("seed = %d, want %d", opts.Seed, DefaultSeed)
	}
	if opts.SortPrimary.Method != SortNone {
		t.Errorf("primary sort = %q, want none", opts.SortPrimary.Method)
	}
	if opts.Logger == nil || opts.Measurer == nil {
		t.Error("runtime defaults not filled")
	}
}

func TestValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Mode: ModeGrid}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("first call error = %v", err)
	}
	opts.Scale = 2.5
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("second call error = %v", err)
	}
	if opts.Scale != 2.5 {
		t.Errorf("second call reset scale to %g", opts.Scale)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"unknown mode", Options{Mode: "spiral"}, errors.ErrCodeInvalidMode},
		{"negative margin", Options{Mode: ModeGrid, Margin: -1}, errors.ErrCodeInvalidPageSize},
		{"margin eats page", Options{Mode: ModeGrid, PageWidth: 100, PageHeight: 100, Margin: 60}, errors.ErrCodeInvalidPageSize},
		{"negative spacing", Options{Mode: ModeGrid, Spacing: -1}, errors.ErrCodeInvalidInput},
		{"negative scale", Options{Mode: ModeGrid, Scale: -0.5}, errors.ErrCodeInvalidInput},
		{"bad sort method", Options{Mode: ModeGrid, SortPrimary: SortSpec{Method: "chaotic"}}, errors.ErrCodeInvalidSort},
		{"metadata sort without field", Options{Mode: ModeGrid, SortPrimary: SortSpec{Method: SortMetadata}}, errors.ErrCodeInvalidSort},
		{"bad break kind", Options{Mode: ModeGrid, SortPrimary: SortSpec{Method: SortMetadata, Field: "site"}, Break: BreakSpec{Enabled: true, Kind: "soft"}}, errors.ErrCodeInvalidInput},
		{"break without metadata sort", Options{Mode: ModeGrid, Break: BreakSpec{Enabled: true, Kind: BreakNewPage}}, errors.ErrCodeInvalidSort},
		{"bad numbering position", Options{Mode: ModeGrid, Numbering: NumberSpec{Enabled: true, Position: "middle", Scope: NumberPerPage}}, errors.ErrCodeInvalidInput},
		{"masonry spacing eats content", Options{Mode: ModeMasonry, PageWidth: 1000, PageHeight: 1000, Margin: 50, MasonryColumns: 10, Spacing: 100}, errors.ErrCodeInvalidInput},
		{"manual without placements", Options{Mode: ModeManual}, errors.ErrCodeInvalidInput},
		{"manual negative page", Options{Mode: ModeManual, Manual: []ManualPlacement{{ID: "a", Page: -1}}}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if err == nil {
				t.Fatal("ValidateAndSetDefaults() accepted invalid options")
			}
			if errors.GetCode(err) != tt.code {
				t.Errorf("error code = %v, want %v (err: %v)", errors.GetCode(err), tt.code, err)
			}
		})
	}
}

func TestPageSizeDims(t *testing.T) {
	w, h, err := PageSizeDims("A4")
	if err != nil {
		t.Fatalf("PageSizeDims(A4) error = %v", err)
	}
	if w != 2480 || h != 3508 {
		t.Errorf("A4 = %gx%g, want 2480x3508", w, h)
	}

	if _, _, err := PageSizeDims("B5"); errors.GetCode(err) != errors.ErrCodeInvalidPageSize {
		t.Errorf("unknown size error = %v, want INVALID_PAGE_SIZE", err)
	}
}

func TestContentBox(t *testing.T) {
	opts := Options{Mode: ModeGrid, PageWidth: 1000, PageHeight: 800, Margin: 100}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	if opts.ContentWidth() != 800 || opts.ContentHeight() != 600 {
		t.Errorf("content box = %gx%g, want 800x600", opts.ContentWidth(), opts.ContentHeight())
	}
}

func TestAutoScaleFlag(t *testing.T) {
	opts := Options{Mode: ModeGrid}
	if opts.AutoScale() {
		t.Error("AutoScale() true without a target")
	}
	opts.ImagesPerPage = 8
	if !opts.AutoScale() {
		t.Error("AutoScale() false with a target set")
	}
}

func TestDefaultNumberPositionValid(t *testing.T) {
	if !ValidPositions[catalog.PositionTopLeft] {
		t.Error("default numbering position not in ValidPositions")
	}
}
