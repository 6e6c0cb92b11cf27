// Package catalog defines the data model for generated plate sets.
//
// A generation run turns a batch of ImageItems into a Document: an ordered
// list of Pages, each holding PlacedImages (positioned photographs) and
// Overlays (captions, scale bars, borders, dividers, numbering). The model
// is pure data - layout computation lives in pkg/layout and encoding in
// pkg/render.
//
// # Coordinates
//
// All placement coordinates are content-box local: (0,0) is the top-left
// corner of the area inside the page margin, x grows right, y grows down.
// Encoders add the margin offset when painting onto the full page.
//
// # Serialization
//
// Documents serialize to JSON with round-trip fidelity. Unmarshal validates
// structural invariants (positive page box, contiguous page indices) so that
// a deserialized document is always safe to hand to an encoder.
package catalog
