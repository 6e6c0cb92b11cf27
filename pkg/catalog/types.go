package catalog

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Overlay kinds for annotation elements.
const (
	OverlayCaption  = "caption"
	OverlayScaleBar = "scale_bar"
	OverlayBorder   = "border"
	OverlayDivider  = "divider"
	OverlayNumber   = "number"
)

// Positions for page and image numbering overlays.
const (
	PositionTopLeft      = "top_left"
	PositionTopCenter    = "top_center"
	PositionTopRight     = "top_right"
	PositionBottomLeft   = "bottom_left"
	PositionBottomCenter = "bottom_center"
	PositionBottomRight  = "bottom_right"
)

// =============================================================================
// ImageItem - Source Photograph
// =============================================================================

// ImageItem describes a single artefact photograph to be placed.
//
// Items are immutable once loaded: the engine computes placements from them
// but never mutates the item itself. Ref is an opaque handle back to the
// image source (typically a file path) used by encoders to fetch pixel data.
type ImageItem struct {
	ID     string            `json:"id"`             // Display name (typically the filename)
	Ref    string            `json:"ref,omitempty"`  // Opaque source handle
	Width  int               `json:"width"`          // Intrinsic width in pixels
	Height int               `json:"height"`         // Intrinsic height in pixels
	Meta   map[string]string `json:"meta,omitempty"` // Spreadsheet metadata, field → value
}

// Field returns the metadata value for a field, or "" if absent.
func (it *ImageItem) Field(name string) string {
	if it.Meta == nil {
		return ""
	}
	return it.Meta[name]
}

// AspectRatio returns width/height, or 1 for degenerate dimensions.
func (it *ImageItem) AspectRatio() float64 {
	if it.Width <= 0 || it.Height <= 0 {
		return 1
	}
	return float64(it.Width) / float64(it.Height)
}

// =============================================================================
// PlacedImage - Positioned Photograph
// =============================================================================

// PlacedImage is an image with its computed position on a page.
//
// X and Y are the top-left corner in content-box coordinates: (0,0) is the
// top-left of the area inside the page margin. W and H are the final render
// size after scaling.
type PlacedImage struct {
	Item ImageItem `json:"item"`
	X    float64   `json:"x"`
	Y    float64   `json:"y"`
	W    float64   `json:"w"`
	H    float64   `json:"h"`
	Page int       `json:"page"` // 0-based page index
}

// Right returns the x coordinate of the right edge.
func (p *PlacedImage) Right() float64 { return p.X + p.W }

// Bottom returns the y coordinate of the bottom edge.
func (p *PlacedImage) Bottom() float64 { return p.Y + p.H }

// Overlaps reports whether two placed rectangles intersect.
func (p *PlacedImage) Overlaps(o *PlacedImage) bool {
	return p.X < o.Right() && o.X < p.Right() && p.Y < o.Bottom() && o.Y < p.Bottom()
}

// =============================================================================
// Overlay - Annotation Element
// =============================================================================

// Overlay is a single annotation element on a page.
//
// This is a discriminated union type - check Kind to determine which fields
// are populated:
//
//	Caption ("caption"):
//	  - X, Y: top-left of the text block; Lines: text lines; FontSize
//	Scale bar ("scale_bar"):
//	  - X, Y: top-left; Segments: number of 1 cm segments; SegmentPx: pixel
//	    length of one segment; Height: bar height; FontSize: label size
//	Border ("border"):
//	  - X, Y, Width, Height: rectangle outline at the margin edge
//	Divider ("divider"):
//	  - X, Y: left end of the rule; Width: length; Height: stroke thickness
//	Number ("number"):
//	  - X, Y: anchor point; Lines: single text line; FontSize; Position
type Overlay struct {
	Kind string `json:"kind"`

	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	Lines    []string `json:"lines,omitempty"`
	FontSize float64  `json:"font_size,omitempty"`
	Position string   `json:"position,omitempty"`

	Segments  int     `json:"segments,omitempty"`
	SegmentPx float64 `json:"segment_px,omitempty"`
}

// =============================================================================
// Page - One Printable Plate
// =============================================================================

// Page is a single plate: placed images in paint order plus annotations.
type Page struct {
	Index    int           `json:"index"` // 0-based, contiguous across the document
	Images   []PlacedImage `json:"images"`
	Overlays []Overlay     `json:"overlays,omitempty"`
}
