package layout

import "github.com/plateworks/tavola/pkg/catalog"

// dividerMark records where a group boundary falls inside a page.
type dividerMark struct {
	page int
	y    float64
}

// placeItems runs grouping and strategy placement for the sorted items at
// one scale factor. It is the single placement path for real runs and for
// auto-scale dry runs; a nil report suppresses warning collection so dry
// runs stay side-effect free.
func placeItems(sorted []catalog.ImageItem, scale float64, opts *Options, report *Report) ([]catalog.PlacedImage, []dividerMark) {
	scaled := scaleItems(sorted, scale, opts, report)
	strat := strategyFor(opts)
	geom := opts.geometry()

	// Manual mode carries absolute page indices; grouping does not apply.
	if opts.Mode == ModeManual || !opts.Break.Enabled || len(scaled) == 0 {
		res := strat.Place(scaled, geom, 0)
		return res.images, nil
	}

	kind := opts.Break.Kind
	if opts.Mode == ModePuzzle && kind == BreakDivider {
		// Packing has no meaningful boundary line; fall back to page breaks.
		kind = BreakNewPage
	}

	groups := groupByPrimary(scaled, opts)

	if kind == BreakNewPage {
		var images []catalog.PlacedImage
		start := 0
		for _, g := range groups {
			res := strat.Place(g, geom, start)
			images = append(images, res.images...)
			if res.lastPage >= start {
				start = res.lastPage + 1
			}
		}
		return images, nil
	}

	// Divider kind: place without interruption, then mark each boundary
	// that falls inside a page with a horizontal rule position.
	res := strat.Place(scaled, geom, 0)

	var marks []dividerMark
	idx := 0
	for gi, g := range groups {
		idx += len(g)
		if gi == len(groups)-1 || idx == 0 || idx >= len(res.images) {
			continue
		}
		prev, next := res.images[idx-1], res.images[idx]
		if prev.Page != next.Page {
			continue
		}
		y := next.Y - geom.spacing/2
		if y < 0 {
			y = 0
		}
		marks = append(marks, dividerMark{page: next.Page, y: y})
	}
	return res.images, marks
}

// groupByPrimary splits scaled items into maximal runs sharing the primary
// metadata field value. Items arrive sorted, so equal values are adjacent.
func groupByPrimary(scaled []scaledItem, opts *Options) [][]scaledItem {
	var groups [][]scaledItem
	start := 0
	for i := 1; i <= len(scaled); i++ {
		if i == len(scaled) ||
			primaryGroupKey(&scaled[i].item, opts) != primaryGroupKey(&scaled[start].item, opts) {
			groups = append(groups, scaled[start:i])
			start = i
		}
	}
	return groups
}
