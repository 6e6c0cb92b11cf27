package layout

import (
	"fmt"

	"github.com/plateworks/tavola/pkg/catalog"
	"github.com/plateworks/tavola/pkg/errors"
)

// Generate arranges items into a paginated document.
//
// The pipeline is sort, scale resolution, placement, annotation. Items that
// cannot be placed are dropped and reported rather than failing the run; an
// error return means the options were invalid and nothing was produced.
// With identical items, options, and seed the output is deterministic.
func Generate(items []catalog.ImageItem, opts Options) (*catalog.Document, *Report, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, err
	}

	report := &Report{}
	sorted := Sort(items, &opts)
	opts.Logger.Debug("sorted input",
		"count", len(sorted),
		"primary", opts.SortPrimary.Method,
		"secondary", opts.SortSecondary.Method)

	scale, outcome := resolveScale(sorted, &opts)
	report.Scale = scale
	report.AutoScale = outcome
	if outcome != nil {
		opts.Logger.Debug("auto scale resolved",
			"factor", outcome.Factor,
			"requested", outcome.Requested,
			"achieved", outcome.Achieved)
		if outcome.Infeasible {
			report.warn(errors.ErrCodeInfeasibleAutoScale, "",
				fmt.Sprintf("requested %d images per page, best achievable is %d at scale %.3f",
					outcome.Requested, outcome.Achieved, outcome.Factor))
		}
	}

	images, marks := placeItems(sorted, scale, &opts, report)
	report.PlacedImages = len(images)

	if opts.Mode == ModeManual {
		reportUnplaced(sorted, images, report)
	}

	doc := assemble(images, marks, scale, &opts)
	opts.Logger.Info("layout complete",
		"mode", opts.Mode,
		"pages", doc.TotalPages,
		"placed", report.PlacedImages,
		"dropped", report.DroppedImages)
	return doc, report, nil
}

// PreviewFirstPage runs the full pipeline and returns only the first page.
// Scale resolution and pagination depend on the whole input, so the preview
// cannot shortcut placement; it just discards the tail.
func PreviewFirstPage(items []catalog.ImageItem, opts Options) (*catalog.Page, *Report, error) {
	doc, report, err := Generate(items, opts)
	if err != nil {
		return nil, nil, err
	}
	if len(doc.Pages) == 0 {
		return &catalog.Page{Index: 0}, report, nil
	}
	page := doc.Pages[0]
	return &page, report, nil
}

// assemble groups placements into pages, adds divider rules, and runs the
// annotation compositor over every page in order.
func assemble(images []catalog.PlacedImage, marks []dividerMark, scale float64, opts *Options) *catalog.Document {
	pageCount := 0
	for i := range images {
		if images[i].Page+1 > pageCount {
			pageCount = images[i].Page + 1
		}
	}

	doc := &catalog.Document{
		PageWidth:  opts.PageWidth,
		PageHeight: opts.PageHeight,
		Margin:     opts.Margin,
		Pages:      make([]catalog.Page, pageCount),
	}
	for i := range doc.Pages {
		doc.Pages[i].Index = i
	}
	for _, img := range images {
		doc.Pages[img.Page].Images = append(doc.Pages[img.Page].Images, img)
	}
	for _, m := range marks {
		doc.Pages[m.page].Overlays = append(doc.Pages[m.page].Overlays, dividerOverlay(m, opts))
	}

	seq := 0
	for i := range doc.Pages {
		annotatePage(&doc.Pages[i], opts, scale, &seq)
	}

	doc.Finalize()
	return doc
}

// dividerOverlay builds the horizontal rule drawn at a group boundary,
// centered and spanning the configured fraction of the content width.
func dividerOverlay(m dividerMark, opts *Options) catalog.Overlay {
	width := opts.ContentWidth() * opts.Break.WidthFraction
	return catalog.Overlay{
		Kind:   catalog.OverlayDivider,
		X:      (opts.ContentWidth() - width) / 2,
		Y:      m.y,
		Width:  width,
		Height: opts.Break.Thickness,
	}
}

// reportUnplaced records a warning for every sorted item that manual
// placement skipped for lack of a position entry.
func reportUnplaced(sorted []catalog.ImageItem, images []catalog.PlacedImage, report *Report) {
	placed := make(map[string]bool, len(images))
	for i := range images {
		placed[images[i].Item.ID] = true
	}
	for i := range sorted {
		if placed[sorted[i].ID] {
			continue
		}
		report.warn(errors.ErrCodeNotFound, sorted[i].ID, "no manual placement for image")
		report.DroppedImages++
	}
}
