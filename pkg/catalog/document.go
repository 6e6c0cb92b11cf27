package catalog

import (
	"encoding/json"
	"fmt"
	"os"
)

// =============================================================================
// Document - Assembled Plate Set
// =============================================================================

// Document is the canonical serialization format for a generated plate set.
// Used for API responses, storage, caching, and as the encoder input.
//
// The format is human-readable and designed for round-trip fidelity:
// generate → export → re-import produces identical geometry.
type Document struct {
	// Page geometry, recorded for the encoders.
	PageWidth  float64 `json:"page_width"`
	PageHeight float64 `json:"page_height"`
	Margin     float64 `json:"margin"`

	Pages []Page `json:"pages"`

	// Derived totals, kept in sync by Finalize.
	TotalImages int `json:"total_images"`
	TotalPages  int `json:"total_pages"`
}

// ContentWidth returns the width of the area inside the margins.
func (d *Document) ContentWidth() float64 { return d.PageWidth - 2*d.Margin }

// ContentHeight returns the height of the area inside the margins.
func (d *Document) ContentHeight() float64 { return d.PageHeight - 2*d.Margin }

// Finalize recomputes the derived totals from the page list.
func (d *Document) Finalize() {
	d.TotalPages = len(d.Pages)
	d.TotalImages = 0
	for i := range d.Pages {
		d.TotalImages += len(d.Pages[i].Images)
	}
}

// Validate checks structural invariants: positive page box, margins that
// leave a content area, contiguous zero-based page indices, and per-page
// placement indices that match their page.
func (d *Document) Validate() error {
	if d.PageWidth <= 0 || d.PageHeight <= 0 {
		return fmt.Errorf("page box must be positive, got %gx%g", d.PageWidth, d.PageHeight)
	}
	if d.ContentWidth() <= 0 || d.ContentHeight() <= 0 {
		return fmt.Errorf("margin %g leaves no content area on a %gx%g page", d.Margin, d.PageWidth, d.PageHeight)
	}
	for i := range d.Pages {
		p := &d.Pages[i]
		if p.Index != i {
			return fmt.Errorf("page indices must be contiguous: page %d has index %d", i, p.Index)
		}
		for j := range p.Images {
			if p.Images[j].Page != p.Index {
				return fmt.Errorf("image %q on page %d carries page index %d", p.Images[j].Item.ID, p.Index, p.Images[j].Page)
			}
		}
	}
	return nil
}

// =============================================================================
// Serialization API
// =============================================================================

// Marshal serializes a Document to pretty-printed JSON bytes.
func Marshal(d *Document) ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Unmarshal deserializes JSON bytes into a Document and validates it.
func Unmarshal(data []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("invalid document: %w", err)
	}
	return &d, nil
}

// WriteFile writes a Document to a JSON file.
func WriteFile(d *Document, path string) error {
	data, err := Marshal(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadFile reads a Document from a JSON file.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Unmarshal(data)
}
