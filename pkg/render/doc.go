// Package render encodes laid-out documents into output artifacts.
//
// Encode dispatches to the format sinks in the [sink] subpackage: SVG,
// PNG and JPEG produce one file per plate, PDF assembles the whole
// document, and JSON writes the document itself for inspection or
// re-rendering.
//
// [sink]: github.com/plateworks/tavola/pkg/render/sink
package render
