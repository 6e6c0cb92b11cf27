package sink

import (
	"bytes"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"testing"

	"github.com/plateworks/tavola/pkg/catalog"
)

// testDoc builds a one-page document with an image and one of every
// overlay kind.
func testDoc() *catalog.Document {
	doc := &catalog.Document{
		PageWidth:  600,
		PageHeight: 800,
		Margin:     50,
		Pages: []catalog.Page{{
			Index: 0,
			Images: []catalog.PlacedImage{{
				Item: catalog.ImageItem{ID: "vessel_01.png", Width: 100, Height: 80},
				X:    10, Y: 20, W: 100, H: 80, Page: 0,
			}},
			Overlays: []catalog.Overlay{
				{Kind: catalog.OverlayCaption, X: 10, Y: 105, Width: 100, FontSize: 12, Lines: []string{"vessel_01", "site: A & B"}},
				{Kind: catalog.OverlayScaleBar, X: 0, Y: 685, Width: 0, Height: 15, Segments: 5, SegmentPx: 30, FontSize: 12, Lines: []string{"0", "5 cm"}},
				{Kind: catalog.OverlayBorder, X: 0, Y: 0, Width: 500, Height: 700},
				{Kind: catalog.OverlayDivider, X: 50, Y: 300, Width: 400, Height: 3},
				{Kind: catalog.OverlayNumber, X: 5, Y: 5, Width: 60, Height: 20, FontSize: 18, Lines: []string{"Tav. 1"}, Position: catalog.PositionTopLeft},
			},
		}},
		TotalImages: 1,
		TotalPages:  1,
	}
	return doc
}

func testPixels() map[string]image.Image {
	return map[string]image.Image{
		"vessel_01.png": image.NewRGBA(image.Rect(0, 0, 100, 80)),
	}
}

func TestRenderSVGStructure(t *testing.T) {
	out := string(RenderSVG(testDoc(), 0, WithImages(testPixels())))

	for _, want := range []string{
		`viewBox="0 0 600.0 800.0"`,
		`<g id="images">`,
		`<g id="annotations">`,
		"data:image/png;base64,",
		">vessel_01<",
		"site: A &amp; B",
		">Tav. 1<",
		">5 cm<",
		"</svg>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("SVG output missing %q", want)
		}
	}
}

func TestRenderSVGPlaceholderWithoutPixels(t *testing.T) {
	out := string(RenderSVG(testDoc(), 0))

	if strings.Contains(out, "data:image/png;base64,") {
		t.Error("SVG embedded pixels that were never supplied")
	}
	if !strings.Contains(out, `fill="#eeeeee"`) {
		t.Error("SVG has no placeholder box for the missing pixels")
	}
	if !strings.Contains(out, "vessel_01.png") {
		t.Error("placeholder is not labeled with the item ID")
	}
}

func TestRenderSVGScaleBarSegments(t *testing.T) {
	out := string(RenderSVG(testDoc(), 0))
	if got := strings.Count(out, `stroke="black"/>`); got < 5 {
		t.Errorf("found %d stroked segment rects, want at least the 5 scale bar segments", got)
	}
}

func TestRenderSVGMarginOffset(t *testing.T) {
	out := string(RenderSVG(testDoc(), 0))
	// Image at content (10,20) with margin 50 lands at page (60,70).
	if !strings.Contains(out, `x="60.0" y="70.0"`) {
		t.Error("image position not offset by the page margin")
	}
}

func TestRenderPDF(t *testing.T) {
	data, err := RenderPDF(testDoc(), WithPDFImages(testPixels()), WithPDFDPI(300))
	if err != nil {
		t.Fatalf("RenderPDF() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("output does not start with a PDF header: %q", data[:min(8, len(data))])
	}
	if !bytes.Contains(data, []byte("%%EOF")) {
		t.Error("output has no PDF trailer")
	}
}

func TestRenderPDFWithoutPixels(t *testing.T) {
	data, err := RenderPDF(testDoc())
	if err != nil {
		t.Fatalf("RenderPDF() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Error("placeholder-only render is not a valid PDF")
	}
}

func TestRenderRasterPNG(t *testing.T) {
	data, err := RenderRaster(testDoc(), 0, WithRasterImages(testPixels()))
	if err != nil {
		t.Fatalf("RenderRaster() error = %v", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode rendered page: %v", err)
	}
	if format != "png" {
		t.Errorf("format = %q, want png", format)
	}
	if cfg.Width != 600 || cfg.Height != 800 {
		t.Errorf("page size = %dx%d, want 600x800", cfg.Width, cfg.Height)
	}
}

func TestRenderRasterJPEG(t *testing.T) {
	data, err := RenderRaster(testDoc(), 0, WithJPEG(true, 80))
	if err != nil {
		t.Fatalf("RenderRaster() error = %v", err)
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode rendered page: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("format = %q, want jpeg", format)
	}
}
