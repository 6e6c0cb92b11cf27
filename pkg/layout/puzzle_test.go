package layout

import (
	"testing"

	"github.com/plateworks/tavola/pkg/catalog"
)

func TestPuzzleLargestFirst(t *testing.T) {
	p := &puzzleStrategy{}
	geom := geometry{contentW: 1000, contentH: 1000, spacing: 10}

	items := []catalog.ImageItem{
		testItem("small", 100, 100),
		testItem("big", 500, 500),
	}
	res := p.Place(asScaled(items), geom, 0)

	if len(res.images) != 2 {
		t.Fatalf("placed %d images, want 2", len(res.images))
	}
	if res.images[0].Item.ID != "big" {
		t.Errorf("first placement = %q, want the larger image", res.images[0].Item.ID)
	}
	if res.images[0].X != 0 || res.images[0].Y != 0 {
		t.Errorf("largest image at (%g,%g), want origin", res.images[0].X, res.images[0].Y)
	}
}

func TestPuzzleSpacingBetweenImages(t *testing.T) {
	p := &puzzleStrategy{}
	geom := geometry{contentW: 1000, contentH: 1000, spacing: 10}

	items := []catalog.ImageItem{
		testItem("a", 400, 400),
		testItem("b", 400, 400),
	}
	res := p.Place(asScaled(items), geom, 0)

	a, b := res.images[0], res.images[1]
	if a.Page != b.Page {
		t.Fatalf("images split across pages %d and %d", a.Page, b.Page)
	}
	dx := b.X - a.Right()
	dy := b.Y - a.Bottom()
	if dx < geom.spacing && dy < geom.spacing {
		t.Errorf("spacing violated: dx=%g dy=%g, want at least %g on one axis", dx, dy, geom.spacing)
	}
}

func TestPuzzleNoOverlapManyItems(t *testing.T) {
	p := &puzzleStrategy{}
	geom := geometry{contentW: 1000, contentH: 1000, spacing: 10}

	var items []catalog.ImageItem
	sizes := [][2]int{{300, 200}, {250, 400}, {120, 90}, {480, 310}, {200, 200}, {90, 350}, {330, 120}, {150, 150}}
	for i, s := range sizes {
		items = append(items, testItem(string(rune('a'+i)), s[0], s[1]))
	}
	res := p.Place(asScaled(items), geom, 0)

	if len(res.images) != len(items) {
		t.Fatalf("placed %d of %d images", len(res.images), len(items))
	}
	checkInBounds(t, res.images, geom.contentW, geom.contentH)
	checkNoOverlap(t, res.images)
}

func TestPuzzlePageBreakOnFullBin(t *testing.T) {
	p := &puzzleStrategy{}
	geom := geometry{contentW: 1000, contentH: 1000, spacing: 10}

	// Three images of 900x900 cannot share a 1000x1000 bin.
	var items []catalog.ImageItem
	for _, id := range []string{"a", "b", "c"} {
		items = append(items, testItem(id, 900, 900))
	}
	res := p.Place(asScaled(items), geom, 0)

	pages := map[int]bool{}
	for _, img := range res.images {
		pages[img.Page] = true
	}
	if len(pages) != 3 {
		t.Errorf("got %d pages, want one per image", len(pages))
	}
	if res.lastPage != 2 {
		t.Errorf("lastPage = %d, want 2", res.lastPage)
	}
}

func TestPuzzleEdgeTouchAllowed(t *testing.T) {
	// A full-content-box image fits exactly thanks to the padded bin.
	p := &puzzleStrategy{}
	geom := geometry{contentW: 1000, contentH: 1000, spacing: 10}

	res := p.Place(asScaled([]catalog.ImageItem{testItem("full", 1000, 1000)}), geom, 0)
	if len(res.images) != 1 {
		t.Fatalf("placed %d images, want 1", len(res.images))
	}
	if res.images[0].Right() != 1000 || res.images[0].Bottom() != 1000 {
		t.Errorf("full-size image does not reach the content edge: right=%g bottom=%g",
			res.images[0].Right(), res.images[0].Bottom())
	}
}

func TestPuzzleDeterministic(t *testing.T) {
	p := &puzzleStrategy{}
	geom := geometry{contentW: 1000, contentH: 1000, spacing: 10}

	var items []catalog.ImageItem
	for i := 0; i < 10; i++ {
		items = append(items, testItem(string(rune('a'+i)), 100+30*i, 90+25*i))
	}

	first := p.Place(asScaled(items), geom, 0)
	second := p.Place(asScaled(items), geom, 0)
	if len(first.images) != len(second.images) {
		t.Fatalf("runs placed different counts: %d vs %d", len(first.images), len(second.images))
	}
	for i := range first.images {
		a, b := first.images[i], second.images[i]
		if a.Item.ID != b.Item.ID || a.X != b.X || a.Y != b.Y || a.Page != b.Page {
			t.Errorf("placement %d differs between runs: %+v vs %+v", i, a, b)
		}
	}
}
