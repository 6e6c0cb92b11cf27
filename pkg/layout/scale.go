package layout

import (
	"math"

	"github.com/plateworks/tavola/pkg/catalog"
)

// Bounds and convergence limits for the automatic scale search.
const (
	autoScaleMin   = 0.05
	autoScaleMax   = 8.0
	autoScaleIters = 24
	autoScaleTol   = 1e-3
)

// resolveScale returns the effective scale factor. Fixed mode returns
// opts.Scale unchanged; auto mode searches for the largest factor that puts
// opts.ImagesPerPage images on the first page.
//
// The search seeds a candidate from an area heuristic and falls back to
// bisection when the seed misses. The first-page count is monotonically
// non-increasing in the scale factor, so bisection converges on the largest
// feasible factor; when the exact target is unreachable (too few items, or
// a capacity cap like grid rows x cols) the nearest achievable count wins
// and the outcome is flagged infeasible.
func resolveScale(sorted []catalog.ImageItem, opts *Options) (float64, *AutoScaleOutcome) {
	if !opts.AutoScale() {
		return opts.Scale, nil
	}

	target := opts.ImagesPerPage
	countAt := func(scale float64) int {
		images, _ := placeItems(sorted, scale, opts, nil)
		n := 0
		for i := range images {
			if images[i].Page == 0 {
				n++
			}
		}
		return n
	}

	// Fast path: the area heuristic often lands on the target directly.
	seed := clamp(heuristicScale(sorted, opts), autoScaleMin, autoScaleMax)
	if countAt(seed) == target {
		return seed, &AutoScaleOutcome{Requested: target, Achieved: target, Factor: seed}
	}

	goal := target
	infeasible := false
	if maxCount := countAt(autoScaleMin); maxCount < target {
		// Even the smallest scale cannot reach the target; aim for the
		// best achievable count instead.
		goal = maxCount
		infeasible = true
	}

	lo, hi := autoScaleMin, autoScaleMax
	var factor float64
	if countAt(hi) >= goal {
		factor = hi
	} else {
		for i := 0; i < autoScaleIters && hi-lo > autoScaleTol; i++ {
			mid := (lo + hi) / 2
			if countAt(mid) >= goal {
				lo = mid
			} else {
				hi = mid
			}
		}
		factor = lo
	}

	achieved := countAt(factor)
	if achieved != target {
		infeasible = true
	}
	return factor, &AutoScaleOutcome{
		Requested:  target,
		Achieved:   achieved,
		Factor:     factor,
		Infeasible: infeasible,
	}
}

// heuristicScale estimates a starting factor from areas: the factor that
// makes opts.ImagesPerPage average-sized images cover 85% of the content
// box, leaving headroom for spacing and packing waste.
func heuristicScale(items []catalog.ImageItem, opts *Options) float64 {
	if len(items) == 0 || opts.ImagesPerPage <= 0 {
		return 1
	}

	var total float64
	for i := range items {
		total += float64(items[i].Width) * float64(items[i].Height)
	}
	avg := total / float64(len(items))
	if avg <= 0 {
		return 1
	}

	usable := opts.ContentWidth() * opts.ContentHeight() * 0.85
	return math.Sqrt(usable / (avg * float64(opts.ImagesPerPage)))
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
