package sink

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/plateworks/tavola/pkg/catalog"
)

const svgFontFamily = "Helvetica, Arial, sans-serif"

// lineSpacing is the baseline step between caption lines as a multiple of
// the font size.
const lineSpacing = 1.25

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	images map[string]image.Image
}

// WithImages supplies decoded pixels keyed by item ID. Placements without
// pixels render as labeled placeholder boxes.
func WithImages(m map[string]image.Image) SVGOption {
	return func(r *svgRenderer) { r.images = m }
}

// RenderSVG renders one page of a document as a standalone SVG. Image
// pixels are embedded as base64 PNG data so the file has no external
// references.
func RenderSVG(doc *catalog.Document, pageIndex int, opts ...SVGOption) []byte {
	r := svgRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	page := &doc.Pages[pageIndex]
	m := doc.Margin

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		doc.PageWidth, doc.PageHeight, doc.PageWidth, doc.PageHeight)
	fmt.Fprintf(&buf, `  <rect x="0" y="0" width="%.1f" height="%.1f" fill="white"/>`+"\n",
		doc.PageWidth, doc.PageHeight)

	buf.WriteString(`  <g id="images">` + "\n")
	for i := range page.Images {
		r.renderImage(&buf, &page.Images[i], m)
	}
	buf.WriteString("  </g>\n")

	buf.WriteString(`  <g id="annotations">` + "\n")
	for i := range page.Overlays {
		renderOverlay(&buf, &page.Overlays[i], m)
	}
	buf.WriteString("  </g>\n")

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *svgRenderer) renderImage(buf *bytes.Buffer, img *catalog.PlacedImage, m float64) {
	x, y := m+img.X, m+img.Y

	if pixels, ok := r.images[img.Item.ID]; ok {
		fmt.Fprintf(buf, `    <image x="%.1f" y="%.1f" width="%.1f" height="%.1f" preserveAspectRatio="none" href="data:image/png;base64,%s"/>`+"\n",
			x, y, img.W, img.H, pngBase64(pixels))
		return
	}

	// No pixels available, draw a labeled placeholder box instead.
	fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="#eeeeee" stroke="#999999"/>`+"\n",
		x, y, img.W, img.H)
	fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-family="%s" font-size="12" text-anchor="middle" fill="#666666">%s</text>`+"\n",
		x+img.W/2, y+img.H/2, svgFontFamily, xmlEscaper.Replace(img.Item.ID))
}

func renderOverlay(buf *bytes.Buffer, o *catalog.Overlay, m float64) {
	switch o.Kind {
	case catalog.OverlayCaption:
		cx := m + o.X + o.Width/2
		y := m + o.Y + o.FontSize
		for _, line := range o.Lines {
			fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-family="%s" font-size="%.1f" text-anchor="middle">%s</text>`+"\n",
				cx, y, svgFontFamily, o.FontSize, xmlEscaper.Replace(line))
			y += o.FontSize * lineSpacing
		}

	case catalog.OverlayScaleBar:
		renderScaleBar(buf, o, m)

	case catalog.OverlayBorder:
		fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="none" stroke="black" stroke-width="2"/>`+"\n",
			m+o.X, m+o.Y, o.Width, o.Height)

	case catalog.OverlayDivider:
		fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="#333333"/>`+"\n",
			m+o.X, m+o.Y, o.Width, o.Height)

	case catalog.OverlayNumber:
		for _, line := range o.Lines {
			fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-family="%s" font-size="%.1f" dominant-baseline="hanging">%s</text>`+"\n",
				m+o.X, m+o.Y, svgFontFamily, o.FontSize, xmlEscaper.Replace(line))
		}
	}
}

// renderScaleBar draws alternating filled and open centimeter segments
// with the end labels above the bar.
func renderScaleBar(buf *bytes.Buffer, o *catalog.Overlay, m float64) {
	x, y := m+o.X, m+o.Y
	for i := 0; i < o.Segments; i++ {
		fill := "black"
		if i%2 == 1 {
			fill = "white"
		}
		fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" stroke="black"/>`+"\n",
			x+float64(i)*o.SegmentPx, y, o.SegmentPx, o.Height, fill)
	}
	if len(o.Lines) == 2 {
		labelY := y - 4
		fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-family="%s" font-size="%.1f">%s</text>`+"\n",
			x, labelY, svgFontFamily, o.FontSize, xmlEscaper.Replace(o.Lines[0]))
		fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-family="%s" font-size="%.1f" text-anchor="end">%s</text>`+"\n",
			x+float64(o.Segments)*o.SegmentPx, labelY, svgFontFamily, o.FontSize, xmlEscaper.Replace(o.Lines[1]))
	}
}

// pngBase64 encodes pixels as a base64 PNG payload for data URIs.
func pngBase64(img image.Image) string {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}
