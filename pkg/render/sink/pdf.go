package sink

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"codeberg.org/go-pdf/fpdf"

	"github.com/plateworks/tavola/pkg/catalog"
)

// PDFOption configures PDF rendering.
type PDFOption func(*pdfRenderer)

type pdfRenderer struct {
	images map[string]image.Image
	dpi    float64
}

// WithPDFImages supplies decoded pixels keyed by item ID.
func WithPDFImages(m map[string]image.Image) PDFOption {
	return func(r *pdfRenderer) { r.images = m }
}

// WithPDFDPI sets the pixel density the document was laid out for. It
// drives the pixel-to-point conversion, so an A4 layout at 300 DPI maps
// onto a true A4 PDF page.
func WithPDFDPI(dpi float64) PDFOption {
	return func(r *pdfRenderer) { r.dpi = dpi }
}

// RenderPDF renders the whole document as a single PDF using the built-in
// Helvetica font. Pages keep their physical size: pixel coordinates are
// converted to points at the configured DPI.
func RenderPDF(doc *catalog.Document, opts ...PDFOption) ([]byte, error) {
	r := pdfRenderer{dpi: 300}
	for _, opt := range opts {
		opt(&r)
	}

	k := 72.0 / r.dpi
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: doc.PageWidth * k, Ht: doc.PageHeight * k},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	registered := map[string]bool{}
	for pi := range doc.Pages {
		page := &doc.Pages[pi]
		pdf.AddPage()

		for i := range page.Images {
			r.renderImage(pdf, &page.Images[i], doc.Margin, k, registered, tr)
		}
		for i := range page.Overlays {
			renderPDFOverlay(pdf, &page.Overlays[i], doc.Margin, k, tr)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *pdfRenderer) renderImage(pdf *fpdf.Fpdf, img *catalog.PlacedImage, m, k float64, registered map[string]bool, tr func(string) string) {
	x, y := (m+img.X)*k, (m+img.Y)*k
	w, h := img.W*k, img.H*k

	pixels, ok := r.images[img.Item.ID]
	if !ok {
		pdf.SetDrawColor(153, 153, 153)
		pdf.SetFillColor(238, 238, 238)
		pdf.Rect(x, y, w, h, "FD")
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(102, 102, 102)
		pdf.SetXY(x, y+h/2)
		pdf.CellFormat(w, 10, tr(img.Item.ID), "", 0, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		return
	}

	if !registered[img.Item.ID] {
		var buf bytes.Buffer
		if err := png.Encode(&buf, pixels); err != nil {
			pdf.SetError(fmt.Errorf("encode %s: %w", img.Item.ID, err))
			return
		}
		pdf.RegisterImageOptionsReader(img.Item.ID, fpdf.ImageOptions{ImageType: "PNG"}, &buf)
		registered[img.Item.ID] = true
	}
	pdf.ImageOptions(img.Item.ID, x, y, w, h, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
}

func renderPDFOverlay(pdf *fpdf.Fpdf, o *catalog.Overlay, m, k float64, tr func(string) string) {
	x, y := (m+o.X)*k, (m+o.Y)*k

	switch o.Kind {
	case catalog.OverlayCaption:
		size := o.FontSize * k
		pdf.SetFont("Helvetica", "", size)
		lineY := y
		for _, line := range o.Lines {
			pdf.SetXY(x, lineY)
			pdf.CellFormat(o.Width*k, size*lineSpacing, tr(line), "", 0, "C", false, 0, "")
			lineY += size * lineSpacing
		}

	case catalog.OverlayScaleBar:
		pdf.SetDrawColor(0, 0, 0)
		pdf.SetLineWidth(0.5)
		for i := 0; i < o.Segments; i++ {
			if i%2 == 0 {
				pdf.SetFillColor(0, 0, 0)
			} else {
				pdf.SetFillColor(255, 255, 255)
			}
			pdf.Rect(x+float64(i)*o.SegmentPx*k, y, o.SegmentPx*k, o.Height*k, "FD")
		}
		if len(o.Lines) == 2 {
			size := o.FontSize * k
			pdf.SetFont("Helvetica", "", size)
			pdf.Text(x, y-2, tr(o.Lines[0]))
			end := x + float64(o.Segments)*o.SegmentPx*k
			pdf.Text(end-pdf.GetStringWidth(tr(o.Lines[1])), y-2, tr(o.Lines[1]))
		}

	case catalog.OverlayBorder:
		pdf.SetDrawColor(0, 0, 0)
		pdf.SetLineWidth(1)
		pdf.Rect(x, y, o.Width*k, o.Height*k, "D")

	case catalog.OverlayDivider:
		pdf.SetFillColor(51, 51, 51)
		pdf.Rect(x, y, o.Width*k, o.Height*k, "F")

	case catalog.OverlayNumber:
		size := o.FontSize * k
		pdf.SetFont("Helvetica", "", size)
		for _, line := range o.Lines {
			// Overlay coordinates are the text box top-left; Text draws
			// from the baseline.
			pdf.Text(x, y+size, tr(line))
		}
	}
}
