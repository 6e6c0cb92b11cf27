package sink

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/plateworks/tavola/pkg/catalog"
	"github.com/plateworks/tavola/pkg/layout/text"
)

// RasterOption configures PNG and JPEG rendering.
type RasterOption func(*rasterRenderer)

type rasterRenderer struct {
	images  map[string]image.Image
	jpeg    bool
	quality int
}

// WithRasterImages supplies decoded pixels keyed by item ID.
func WithRasterImages(m map[string]image.Image) RasterOption {
	return func(r *rasterRenderer) { r.images = m }
}

// WithJPEG switches the output to JPEG at the given quality. The default
// is lossless PNG.
func WithJPEG(enabled bool, quality int) RasterOption {
	return func(r *rasterRenderer) { r.jpeg = enabled; r.quality = quality }
}

// RenderRaster renders one page of a document as a raster image at the
// document's native pixel size.
func RenderRaster(doc *catalog.Document, pageIndex int, opts ...RasterOption) ([]byte, error) {
	r := rasterRenderer{quality: 90}
	for _, opt := range opts {
		opt(&r)
	}

	page := &doc.Pages[pageIndex]
	dc := gg.NewContext(int(doc.PageWidth+0.5), int(doc.PageHeight+0.5))
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	for i := range page.Images {
		r.renderImage(dc, &page.Images[i], doc.Margin)
	}
	for i := range page.Overlays {
		renderRasterOverlay(dc, &page.Overlays[i], doc.Margin)
	}

	var buf bytes.Buffer
	if r.jpeg {
		if err := imaging.Encode(&buf, dc.Image(), imaging.JPEG, imaging.JPEGQuality(r.quality)); err != nil {
			return nil, fmt.Errorf("encode JPEG: %w", err)
		}
	} else {
		if err := dc.EncodePNG(&buf); err != nil {
			return nil, fmt.Errorf("encode PNG: %w", err)
		}
	}
	return buf.Bytes(), nil
}

func (r *rasterRenderer) renderImage(dc *gg.Context, img *catalog.PlacedImage, m float64) {
	x, y := m+img.X, m+img.Y

	pixels, ok := r.images[img.Item.ID]
	if !ok {
		dc.SetRGB255(238, 238, 238)
		dc.DrawRectangle(x, y, img.W, img.H)
		dc.FillPreserve()
		dc.SetRGB255(153, 153, 153)
		dc.SetLineWidth(1)
		dc.Stroke()
		dc.SetFontFace(text.Shared().Face(12))
		dc.SetRGB255(102, 102, 102)
		dc.DrawStringAnchored(img.Item.ID, x+img.W/2, y+img.H/2, 0.5, 0.5)
		return
	}

	resized := imaging.Resize(pixels, int(img.W+0.5), int(img.H+0.5), imaging.Lanczos)
	dc.DrawImage(resized, int(x+0.5), int(y+0.5))
}

func renderRasterOverlay(dc *gg.Context, o *catalog.Overlay, m float64) {
	x, y := m+o.X, m+o.Y
	dc.SetRGB(0, 0, 0)

	switch o.Kind {
	case catalog.OverlayCaption:
		dc.SetFontFace(text.Shared().Face(o.FontSize))
		lineY := y + o.FontSize
		for _, line := range o.Lines {
			dc.DrawStringAnchored(line, x+o.Width/2, lineY, 0.5, 0)
			lineY += o.FontSize * lineSpacing
		}

	case catalog.OverlayScaleBar:
		for i := 0; i < o.Segments; i++ {
			dc.DrawRectangle(x+float64(i)*o.SegmentPx, y, o.SegmentPx, o.Height)
			if i%2 == 0 {
				dc.SetRGB(0, 0, 0)
			} else {
				dc.SetRGB(1, 1, 1)
			}
			dc.FillPreserve()
			dc.SetRGB(0, 0, 0)
			dc.SetLineWidth(1)
			dc.Stroke()
		}
		if len(o.Lines) == 2 {
			dc.SetFontFace(text.Shared().Face(o.FontSize))
			dc.DrawStringAnchored(o.Lines[0], x, y-2, 0, 0)
			dc.DrawStringAnchored(o.Lines[1], x+float64(o.Segments)*o.SegmentPx, y-2, 1, 0)
		}

	case catalog.OverlayBorder:
		dc.DrawRectangle(x, y, o.Width, o.Height)
		dc.SetLineWidth(2)
		dc.Stroke()

	case catalog.OverlayDivider:
		dc.SetRGB255(51, 51, 51)
		dc.DrawRectangle(x, y, o.Width, o.Height)
		dc.Fill()

	case catalog.OverlayNumber:
		dc.SetFontFace(text.Shared().Face(o.FontSize))
		for _, line := range o.Lines {
			dc.DrawStringAnchored(line, x, y, 0, 1)
		}
	}
}
