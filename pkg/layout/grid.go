package layout

import "github.com/plateworks/tavola/pkg/catalog"

// gridStrategy arranges images in row-major order on a rows x cols raster.
//
// Rows are composed greedily: a row takes up to cols images but closes
// early when the next image would exceed the available width. At least one
// image is always placed per row. Finished rows are centered horizontally
// and each image is centered vertically within its row. A page closes after
// rows rows or when the next row would exceed the content height, so a page
// never holds more than rows*cols images.
type gridStrategy struct {
	rows, cols int
}

func (g *gridStrategy) Name() Mode { return ModeGrid }

func (g *gridStrategy) Place(items []scaledItem, geom geometry, startPage int) placeResult {
	res := placeResult{lastPage: startPage - 1}
	if len(items) == 0 {
		return res
	}

	page := startPage
	y := 0.0
	rowsOnPage := 0

	i := 0
	for i < len(items) {
		count, rowW := g.composeRow(items[i:], geom)
		row := items[i : i+count]

		rowH := 0.0
		for _, it := range row {
			if it.h > rowH {
				rowH = it.h
			}
		}

		// Page break when the row cap is hit or the row no longer fits
		// vertically. The first row of a page is always placed: oversize
		// filtering guarantees rowH <= contentH.
		if rowsOnPage >= g.rows || (rowsOnPage > 0 && y+rowH > geom.contentH) {
			page++
			y = 0
			rowsOnPage = 0
		}

		x := (geom.contentW - rowW) / 2
		for _, it := range row {
			res.images = append(res.images, catalog.PlacedImage{
				Item: it.item,
				X:    x,
				Y:    y + (rowH-it.h)/2,
				W:    it.w,
				H:    it.h,
				Page: page,
			})
			x += it.w + geom.spacing
		}

		y += rowH + geom.spacing
		rowsOnPage++
		res.lastPage = page
		i += count
	}

	return res
}

// composeRow decides how many of the next items share a row and returns the
// count with the total row width (images plus inter-image spacing).
func (g *gridStrategy) composeRow(items []scaledItem, geom geometry) (count int, rowW float64) {
	for _, it := range items {
		if count >= g.cols {
			break
		}
		need := rowW + it.w
		if count > 0 {
			need += geom.spacing
		}
		if need > geom.contentW && count > 0 {
			break
		}
		rowW = need
		count++
	}
	return count, rowW
}
