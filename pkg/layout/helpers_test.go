package layout

import (
	"testing"

	"github.com/plateworks/tavola/pkg/catalog"
)

func testItem(id string, w, h int) catalog.ImageItem {
	return catalog.ImageItem{ID: id, Ref: "/in/" + id, Width: w, Height: h}
}

func metaItem(id string, w, h int, meta map[string]string) catalog.ImageItem {
	it := testItem(id, w, h)
	it.Meta = meta
	return it
}

func ids(items []catalog.ImageItem) []string {
	out := make([]string, len(items))
	for i := range items {
		out[i] = items[i].ID
	}
	return out
}

func placedIDs(images []catalog.PlacedImage) []string {
	out := make([]string, len(images))
	for i := range images {
		out[i] = images[i].Item.ID
	}
	return out
}

func sameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// validOpts returns validated options for a 1000x1000 content box with
// 10px spacing, which keeps the geometry easy to reason about in tests.
func validOpts(t *testing.T, mode Mode) Options {
	t.Helper()
	opts := Options{
		Mode:       mode,
		PageWidth:  1100,
		PageHeight: 1100,
		Margin:     50,
		Spacing:    10,
	}
	if mode == ModeManual {
		opts.Manual = []ManualPlacement{{ID: "placeholder", X: 0, Y: 0, Page: 0}}
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	return opts
}

// asScaled wraps items at scale 1 without any oversize filtering.
func asScaled(items []catalog.ImageItem) []scaledItem {
	out := make([]scaledItem, len(items))
	for i, it := range items {
		out[i] = scaledItem{item: it, w: float64(it.Width), h: float64(it.Height)}
	}
	return out
}

// checkInBounds fails if any placement crosses the content box.
func checkInBounds(t *testing.T, images []catalog.PlacedImage, contentW, contentH float64) {
	t.Helper()
	for _, img := range images {
		if img.X < 0 || img.Y < 0 || img.Right() > contentW+1e-9 || img.Bottom() > contentH+1e-9 {
			t.Errorf("image %q out of bounds: x=%g y=%g right=%g bottom=%g (content %gx%g)",
				img.Item.ID, img.X, img.Y, img.Right(), img.Bottom(), contentW, contentH)
		}
	}
}

// checkNoOverlap fails if any two placements on the same page overlap.
func checkNoOverlap(t *testing.T, images []catalog.PlacedImage) {
	t.Helper()
	for i := range images {
		for j := i + 1; j < len(images); j++ {
			if images[i].Page == images[j].Page && images[i].Overlaps(&images[j]) {
				t.Errorf("images %q and %q overlap on page %d",
					images[i].Item.ID, images[j].Item.ID, images[i].Page)
			}
		}
	}
}
