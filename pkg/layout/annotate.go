package layout

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/plateworks/tavola/pkg/catalog"
	"github.com/plateworks/tavola/pkg/layout/text"
)

// scaleBarHeight is the bar thickness in pixels; labels sit above the bar.
const scaleBarHeight = 15.0

// numberInset is how far numbering text sits inside its anchor corner.
const numberInset = 5.0

// imageNumberInset is the corner inset for per-image sequence numbers.
const imageNumberInset = 4.0

func defaultMeasurer() TextMeasurer {
	return text.Shared()
}

// annotatePage appends all enabled annotation overlays to a page. The
// per-image sequence counter is threaded through seq explicitly so the
// compositor stays a pure function of page, options, and counter.
func annotatePage(p *catalog.Page, opts *Options, effectiveScale float64, seq *int) {
	if opts.Caption.Enabled {
		for i := range p.Images {
			p.Overlays = append(p.Overlays, captionOverlay(&p.Images[i], opts))
		}
	}

	if opts.Numbering.Enabled && opts.Numbering.Scope == NumberPerImage {
		for i := range p.Images {
			p.Overlays = append(p.Overlays, imageNumberOverlay(&p.Images[i], opts, *seq))
			*seq++
		}
	}

	if opts.ScaleBar.Enabled {
		p.Overlays = append(p.Overlays, scaleBarOverlay(opts, effectiveScale))
	}

	if opts.MarginBorder {
		p.Overlays = append(p.Overlays, catalog.Overlay{
			Kind:   catalog.OverlayBorder,
			X:      0,
			Y:      0,
			Width:  opts.ContentWidth(),
			Height: opts.ContentHeight(),
		})
	}

	if opts.Numbering.Enabled && opts.Numbering.Scope == NumberPerPage {
		p.Overlays = append(p.Overlays, plateNumberOverlay(p.Index, opts))
	}
}

// captionOverlay builds the text block under one image: the display name
// first (extension stripped unless kept), then one line per selected
// metadata field with a non-empty value, in selection order.
func captionOverlay(img *catalog.PlacedImage, opts *Options) catalog.Overlay {
	return catalog.Overlay{
		Kind:     catalog.OverlayCaption,
		X:        img.X,
		Y:        img.Bottom() + opts.Caption.Padding,
		Width:    img.W,
		Lines:    captionLines(&img.Item, opts),
		FontSize: opts.Caption.FontSize,
	}
}

// captionLines builds the caption text for one item.
func captionLines(item *catalog.ImageItem, opts *Options) []string {
	name := item.ID
	if !opts.Caption.KeepExtension {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	lines := []string{name}

	for _, field := range opts.Caption.Fields {
		v := item.Field(field)
		if v == "" {
			continue
		}
		if opts.Caption.HideFieldNames {
			lines = append(lines, v)
		} else {
			lines = append(lines, field+": "+v)
		}
	}
	return lines
}

// scaleBarOverlay builds the metric scale bar, bottom-left inside the
// margin. Segment length reflects the effective scale so the bar stays
// truthful after auto-scaling.
func scaleBarOverlay(opts *Options, effectiveScale float64) catalog.Overlay {
	return catalog.Overlay{
		Kind:      catalog.OverlayScaleBar,
		X:         0,
		Y:         opts.ContentHeight() - scaleBarHeight,
		Height:    scaleBarHeight,
		Segments:  opts.ScaleBar.Cm,
		SegmentPx: opts.ScaleBar.PixelsPerCm * effectiveScale,
		FontSize:  opts.Caption.FontSize,
		Lines:     []string{"0", fmt.Sprintf("%d cm", opts.ScaleBar.Cm)},
	}
}

// plateNumberOverlay builds the per-page plate number ("Tav. 3") anchored
// at the configured position, numberInset pixels inside the margin.
func plateNumberOverlay(pageIndex int, opts *Options) catalog.Overlay {
	label := strconv.Itoa(opts.Numbering.Start + pageIndex)
	if opts.Numbering.Prefix != "" {
		label = opts.Numbering.Prefix + " " + label
	}

	fs := opts.Numbering.FontSize
	w, h := opts.Measurer.Measure(label, fs)
	x, y := anchorPosition(opts.Numbering.Position, opts.ContentWidth(), opts.ContentHeight(), w, h, numberInset)

	return catalog.Overlay{
		Kind:     catalog.OverlayNumber,
		X:        x,
		Y:        y,
		Width:    w,
		Height:   h,
		Lines:    []string{label},
		FontSize: fs,
		Position: opts.Numbering.Position,
	}
}

// imageNumberOverlay builds a running sequence number pinned to one corner
// of an image. seq is the zero-based running index across the document.
func imageNumberOverlay(img *catalog.PlacedImage, opts *Options, seq int) catalog.Overlay {
	label := strconv.Itoa(opts.Numbering.Start + seq)
	if opts.Numbering.Prefix != "" {
		label = opts.Numbering.Prefix + label
	}

	fs := opts.Numbering.FontSize
	w, h := opts.Measurer.Measure(label, fs)
	x, y := anchorPosition(opts.Numbering.Position, img.W, img.H, w, h, imageNumberInset)

	return catalog.Overlay{
		Kind:     catalog.OverlayNumber,
		X:        img.X + x,
		Y:        img.Y + y,
		Width:    w,
		Height:   h,
		Lines:    []string{label},
		FontSize: fs,
		Position: opts.Numbering.Position,
	}
}

// anchorPosition resolves a named anchor inside a boxW x boxH box for text
// of size w x h, inset pixels away from the nearest edges.
func anchorPosition(position string, boxW, boxH, w, h, inset float64) (x, y float64) {
	switch position {
	case catalog.PositionTopCenter, catalog.PositionBottomCenter:
		x = (boxW - w) / 2
	case catalog.PositionTopRight, catalog.PositionBottomRight:
		x = boxW - inset - w
	default:
		x = inset
	}
	switch position {
	case catalog.PositionBottomLeft, catalog.PositionBottomCenter, catalog.PositionBottomRight:
		y = boxH - inset - h
	default:
		y = inset
	}
	return x, y
}
