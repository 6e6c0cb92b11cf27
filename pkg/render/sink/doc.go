// Package sink implements the per-format output encoders. Each sink takes
// a laid-out document plus optional decoded pixels and produces bytes;
// format selection and file naming live in the parent render package.
package sink
