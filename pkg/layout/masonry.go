package layout

import "github.com/plateworks/tavola/pkg/catalog"

// masonryStrategy flows images down a fixed number of columns.
//
// Every image is rescaled to the column width preserving aspect ratio and
// appended to the currently shortest column (leftmost on ties). A page
// closes only when no column can take the next image; the item order within
// a column therefore follows the sorted input, not the column fill level.
type masonryStrategy struct {
	columns int
}

func (m *masonryStrategy) Name() Mode { return ModeMasonry }

func (m *masonryStrategy) Place(items []scaledItem, geom geometry, startPage int) placeResult {
	res := placeResult{lastPage: startPage - 1}
	if len(items) == 0 {
		return res
	}

	colW := columnWidth(geom, m.columns)
	page := startPage
	heights := make([]float64, m.columns)

	for _, it := range items {
		h := it.h
		if it.w > 0 {
			h = it.h * (colW / it.w)
		}

		col, ok := m.pickColumn(heights, h, geom.contentH)
		if !ok {
			page++
			for c := range heights {
				heights[c] = 0
			}
			col = 0
		}

		res.images = append(res.images, catalog.PlacedImage{
			Item: it.item,
			X:    float64(col) * (colW + geom.spacing),
			Y:    heights[col],
			W:    colW,
			H:    h,
			Page: page,
		})
		heights[col] += h + geom.spacing
		res.lastPage = page
	}

	return res
}

// pickColumn returns the shortest column that can still take an image of
// height h, preferring the leftmost on ties. ok is false when no column
// fits and the page must close.
func (m *masonryStrategy) pickColumn(heights []float64, h, contentH float64) (int, bool) {
	best := -1
	for c, y := range heights {
		if y+h > contentH {
			continue
		}
		if best == -1 || y < heights[best] {
			best = c
		}
	}
	return best, best != -1
}
