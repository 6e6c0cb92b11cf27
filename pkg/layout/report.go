package layout

import "github.com/plateworks/tavola/pkg/errors"

// Warning records a per-item problem that did not stop generation.
type Warning struct {
	Code    errors.Code `json:"code"`
	ItemID  string      `json:"item_id,omitempty"`
	Message string      `json:"message"`
}

// AutoScaleOutcome describes the result of the automatic scale search.
type AutoScaleOutcome struct {
	Requested  int     `json:"requested"`  // Target images on the first page
	Achieved   int     `json:"achieved"`   // Images actually on the first page
	Factor     float64 `json:"factor"`     // Chosen scale factor
	Infeasible bool    `json:"infeasible"` // True when the exact target was unreachable
}

// Report summarizes a generation run: how many images made it onto pages,
// which were dropped and why, and how the scale factor was chosen.
type Report struct {
	PlacedImages  int               `json:"placed_images"`
	DroppedImages int               `json:"dropped_images"`
	Warnings      []Warning         `json:"warnings,omitempty"`
	AutoScale     *AutoScaleOutcome `json:"auto_scale,omitempty"`
	Scale         float64           `json:"scale"` // Effective scale factor used for placement
}

// FullyPlaced reports whether every requested image was placed.
func (r *Report) FullyPlaced() bool {
	return r.DroppedImages == 0
}

// warn appends a warning and bumps the dropped counter when the warning
// represents a dropped item.
func (r *Report) warn(code errors.Code, itemID, message string) {
	r.Warnings = append(r.Warnings, Warning{Code: code, ItemID: itemID, Message: message})
}
