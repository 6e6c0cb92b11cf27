package layout

import (
	"fmt"

	"github.com/plateworks/tavola/pkg/catalog"
	"github.com/plateworks/tavola/pkg/errors"
)

// scaledItem is an item with its final render size.
type scaledItem struct {
	item catalog.ImageItem
	w, h float64
}

// placeResult is what a strategy returns for one batch of items.
type placeResult struct {
	images   []catalog.PlacedImage
	lastPage int // Highest page index used; startPage-1 when nothing placed
}

// strategy lays out a batch of pre-scaled items.
//
// Strategies are stateless: Place must depend only on its arguments, so a
// dry run during the auto-scale search behaves exactly like the real run.
// Placements start on startPage and use content-box coordinates.
type strategy interface {
	Name() Mode
	Place(items []scaledItem, geom geometry, startPage int) placeResult
}

// strategyFor returns the strategy for a validated mode.
func strategyFor(opts *Options) strategy {
	switch opts.Mode {
	case ModeGrid:
		return &gridStrategy{rows: opts.GridRows, cols: opts.GridCols}
	case ModePuzzle:
		return &puzzleStrategy{}
	case ModeMasonry:
		return &masonryStrategy{columns: opts.MasonryColumns}
	case ModeManual:
		return &manualStrategy{placements: opts.Manual}
	default:
		// Unreachable after validation
		panic(fmt.Sprintf("layout: no strategy for mode %q", opts.Mode))
	}
}

// scaleItems applies the scale factor and drops images that cannot fit the
// content box at that scale. Manual mode skips the oversize check: caller
// positions are authoritative there.
func scaleItems(items []catalog.ImageItem, scale float64, opts *Options, report *Report) []scaledItem {
	geom := opts.geometry()
	out := make([]scaledItem, 0, len(items))

	for _, it := range items {
		s := scaledItem{
			item: it,
			w:    float64(it.Width) * scale,
			h:    float64(it.Height) * scale,
		}

		if opts.Mode != ModeManual && oversized(s, geom, opts) {
			if report != nil {
				report.warn(errors.ErrCodeOversizedImage, it.ID,
					fmt.Sprintf("%s is %.0fx%.0f at scale %.3f and exceeds the %gx%g content box",
						it.ID, s.w, s.h, scale, geom.contentW, geom.contentH))
				report.DroppedImages++
			}
			continue
		}
		out = append(out, s)
	}
	return out
}

// oversized reports whether a scaled item can never be placed.
// Masonry rescales to column width, so only the resulting height matters.
func oversized(s scaledItem, geom geometry, opts *Options) bool {
	if opts.Mode == ModeMasonry {
		colW := columnWidth(geom, opts.MasonryColumns)
		if colW <= 0 || s.w <= 0 {
			return true
		}
		return s.h*(colW/s.w) > geom.contentH
	}
	return s.w > geom.contentW || s.h > geom.contentH
}

// columnWidth returns the masonry column width for the given geometry.
func columnWidth(geom geometry, columns int) float64 {
	return (geom.contentW - float64(columns-1)*geom.spacing) / float64(columns)
}
