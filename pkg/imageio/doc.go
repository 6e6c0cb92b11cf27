// Package imageio loads artifact photographs and their CSV metadata from
// disk or from in-memory uploads. Decoding failures are collected as
// warnings so one corrupt file never aborts a batch.
package imageio
