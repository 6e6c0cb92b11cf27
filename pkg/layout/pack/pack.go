// Package pack implements MaxRects rectangle packing for the puzzle
// placement strategy.
//
// The packer maintains a list of maximal free rectangles inside a fixed bin.
// Each insertion chooses the free rectangle that leaves the least wasted
// area (best-area-fit), splits every free rectangle the placement
// intersects, and prunes free rectangles contained in others. Rotation is
// never applied: artefact photographs have a fixed orientation.
package pack

import "math"

// Rect is an axis-aligned rectangle with a top-left origin.
type Rect struct {
	X, Y, W, H float64
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// contains reports whether r fully contains o.
func (r Rect) contains(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y && o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

// intersects reports whether r and o overlap with positive area.
func (r Rect) intersects(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Packer packs rectangles into a fixed-size bin.
type Packer struct {
	width  float64
	height float64
	free   []Rect
	used   []Rect
}

// New creates a packer for a bin of the given size.
func New(width, height float64) *Packer {
	return &Packer{
		width:  width,
		height: height,
		free:   []Rect{{X: 0, Y: 0, W: width, H: height}},
	}
}

// Reset restores the packer to an empty bin of the same size.
func (p *Packer) Reset() {
	p.free = p.free[:0]
	p.free = append(p.free, Rect{X: 0, Y: 0, W: p.width, H: p.height})
	p.used = p.used[:0]
}

// Used returns the rectangles placed so far.
func (p *Packer) Used() []Rect {
	return p.used
}

// Occupancy returns the fraction of the bin area covered by placements.
func (p *Packer) Occupancy() float64 {
	if p.width <= 0 || p.height <= 0 {
		return 0
	}
	var area float64
	for _, r := range p.used {
		area += r.W * r.H
	}
	return area / (p.width * p.height)
}

// Insert places a w x h rectangle using the best-area-fit heuristic.
// Ties are broken by the lowest y, then the lowest x. Returns the placed
// rectangle and true, or the zero Rect and false when nothing fits.
func (p *Packer) Insert(w, h float64) (Rect, bool) {
	if w <= 0 || h <= 0 {
		return Rect{}, false
	}

	best, ok := p.findBestArea(w, h)
	if !ok {
		return Rect{}, false
	}

	p.place(best)
	return best, true
}

// findBestArea scans the free list for the placement wasting the least area.
func (p *Packer) findBestArea(w, h float64) (Rect, bool) {
	bestWaste := math.MaxFloat64
	var best Rect
	found := false

	for _, f := range p.free {
		if w > f.W || h > f.H {
			continue
		}
		waste := f.W*f.H - w*h
		candidate := Rect{X: f.X, Y: f.Y, W: w, H: h}

		if !found || waste < bestWaste || (waste == bestWaste && better(candidate, best)) {
			best = candidate
			bestWaste = waste
			found = true
		}
	}
	return best, found
}

// better is the tie-break order: lowest y wins, then lowest x.
func better(a, b Rect) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.X < b.X
}

// place commits a rectangle: splits intersecting free rects and prunes.
func (p *Packer) place(r Rect) {
	next := p.free[:0:0]
	for _, f := range p.free {
		if !f.intersects(r) {
			next = append(next, f)
			continue
		}
		next = append(next, split(f, r)...)
	}
	p.free = prune(next)
	p.used = append(p.used, r)
}

// split returns the maximal sub-rectangles of f not covered by r.
// Up to four pieces result: above, below, left of, and right of r.
func split(f, r Rect) []Rect {
	var out []Rect

	if r.Y > f.Y {
		out = append(out, Rect{X: f.X, Y: f.Y, W: f.W, H: r.Y - f.Y})
	}
	if r.Bottom() < f.Bottom() {
		out = append(out, Rect{X: f.X, Y: r.Bottom(), W: f.W, H: f.Bottom() - r.Bottom()})
	}
	if r.X > f.X {
		out = append(out, Rect{X: f.X, Y: f.Y, W: r.X - f.X, H: f.H})
	}
	if r.Right() < f.Right() {
		out = append(out, Rect{X: r.Right(), Y: f.Y, W: f.Right() - r.Right(), H: f.H})
	}
	return out
}

// prune removes free rectangles fully contained in another.
func prune(rects []Rect) []Rect {
	out := rects[:0:0]
	for i, a := range rects {
		contained := false
		for j, b := range rects {
			if i == j {
				continue
			}
			if b.contains(a) && !(a == b && i < j) {
				contained = true
				break
			}
		}
		if !contained {
			out = append(out, a)
		}
	}
	return out
}
