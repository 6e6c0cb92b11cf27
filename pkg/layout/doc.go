// Package layout arranges artifact photographs onto printable plates.
//
// Generate is the entry point: it sorts the input, resolves the scale
// factor (fixed or searched to hit an images-per-page target), places
// images with the selected strategy (grid, puzzle, masonry, or manual),
// and composes annotation overlays (captions, scale bar, border, plate
// numbers, group dividers) into a catalog.Document.
//
// All coordinates are content-box local with a top-left origin; output
// encoders add the page margin. Runs are deterministic for identical
// input, options, and seed. Unplaceable items are dropped and reported
// in the Report rather than aborting the run.
package layout
