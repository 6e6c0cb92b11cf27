package layout

import "github.com/plateworks/tavola/pkg/catalog"

// manualStrategy passes caller-supplied positions through unchanged.
//
// Positions are trusted: no bounds clamping and no overlap checks. Items
// without a placement entry are skipped here; the engine reports them.
// Page indices in the placements are absolute, so startPage is ignored.
type manualStrategy struct {
	placements []ManualPlacement
}

func (m *manualStrategy) Name() Mode { return ModeManual }

func (m *manualStrategy) Place(items []scaledItem, geom geometry, startPage int) placeResult {
	res := placeResult{lastPage: startPage - 1}

	byID := make(map[string]ManualPlacement, len(m.placements))
	for _, p := range m.placements {
		byID[p.ID] = p
	}

	for _, it := range items {
		p, ok := byID[it.item.ID]
		if !ok {
			continue
		}
		res.images = append(res.images, catalog.PlacedImage{
			Item: it.item,
			X:    p.X,
			Y:    p.Y,
			W:    it.w,
			H:    it.h,
			Page: p.Page,
		})
		if p.Page > res.lastPage {
			res.lastPage = p.Page
		}
	}

	return res
}
