package layout

import (
	"sort"

	"github.com/plateworks/tavola/pkg/catalog"
	"github.com/plateworks/tavola/pkg/layout/pack"
)

// puzzleStrategy packs images tightly with a MaxRects best-area-fit packer.
//
// The batch is ordered by descending area before packing (big pieces first
// leave the most usable free space). Spacing is enforced by padding every
// rectangle on its right and bottom edge and growing the bin by the same
// amount, so images can still touch the content box edges. The first image
// that no longer fits closes the page and opens the next; rotation is never
// applied.
type puzzleStrategy struct{}

func (p *puzzleStrategy) Name() Mode { return ModePuzzle }

func (p *puzzleStrategy) Place(items []scaledItem, geom geometry, startPage int) placeResult {
	res := placeResult{lastPage: startPage - 1}
	if len(items) == 0 {
		return res
	}

	ordered := make([]scaledItem, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].w*ordered[i].h > ordered[j].w*ordered[j].h
	})

	packer := pack.New(geom.contentW+geom.spacing, geom.contentH+geom.spacing)
	page := startPage

	for _, it := range ordered {
		r, ok := packer.Insert(it.w+geom.spacing, it.h+geom.spacing)
		if !ok {
			page++
			packer.Reset()
			// A fresh bin always fits: oversize filtering bounds the item
			// by the content box.
			r, _ = packer.Insert(it.w+geom.spacing, it.h+geom.spacing)
		}
		res.images = append(res.images, catalog.PlacedImage{
			Item: it.item,
			X:    r.X,
			Y:    r.Y,
			W:    it.w,
			H:    it.h,
			Page: page,
		})
		res.lastPage = page
	}

	return res
}
