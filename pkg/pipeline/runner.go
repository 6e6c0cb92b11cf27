package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/plateworks/tavola/pkg/cache"
	"github.com/plateworks/tavola/pkg/catalog"
	"github.com/plateworks/tavola/pkg/errors"
	"github.com/plateworks/tavola/pkg/imageio"
	"github.com/plateworks/tavola/pkg/layout"
	"github.com/plateworks/tavola/pkg/observability"
	"github.com/plateworks/tavola/pkg/render"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid options")
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]render.File),
	}

	// Stage 1: Load
	loadStart := time.Now()
	observability.Pipeline().OnLoadStart(ctx, opts.InputDir, 0)
	loaded, err := r.load(ctx, &opts)
	observability.Pipeline().OnLoadComplete(ctx, opts.InputDir, len(loaded.Items), time.Since(loadStart), err)
	if err != nil {
		return nil, err
	}
	result.LoadWarnings = loaded.Warnings
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.ItemCount = len(loaded.Items)

	r.Logger.Info("loaded input",
		"items", len(loaded.Items),
		"skipped", len(loaded.Warnings),
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, string(opts.Layout.Mode), len(loaded.Items))
	doc, report, docHit, err := r.LayoutWithCacheInfo(ctx, loaded.Items, opts)
	observability.Pipeline().OnLayoutComplete(ctx, string(opts.Layout.Mode), pageCount(doc), time.Since(layoutStart), err)
	if err != nil {
		return nil, err
	}
	result.Document = doc
	result.Report = report
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.PageCount = doc.TotalPages
	result.CacheInfo.DocumentHit = docHit

	if docData, err := catalog.Marshal(doc); err == nil {
		result.DocumentHash = cache.Hash(docData)
	}

	r.Logger.Info("computed layout",
		"pages", doc.TotalPages,
		"placed", doc.TotalImages,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, doc, loaded, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(renderStart), err)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Preview runs load and layout only and returns the first page. Rendering
// and artifact caching are skipped; the page is meant for interactive
// inspection before a full run.
func (r *Runner) Preview(ctx context.Context, opts Options) (*catalog.Page, *layout.Report, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid options")
	}
	r.applyLogger(&opts)

	loaded, err := r.load(ctx, &opts)
	if err != nil {
		return nil, nil, err
	}
	return layout.PreviewFirstPage(loaded.Items, opts.Layout)
}

// load decodes the input directory and attaches CSV metadata when given.
func (r *Runner) load(ctx context.Context, opts *Options) (*imageio.Result, error) {
	loaded, err := imageio.LoadDir(ctx, opts.InputDir, opts.Workers)
	if err != nil {
		return nil, err
	}
	for _, w := range loaded.Warnings {
		r.Logger.Warn("skipping unreadable image", "path", w.Path, "error", w.Err)
	}

	if opts.MetadataPath != "" {
		table, err := imageio.LoadMetadata(opts.MetadataPath)
		if err != nil {
			return nil, err
		}
		table.Apply(loaded.Items)
	}
	return loaded, nil
}

// LayoutWithCacheInfo lays out items with caching and returns cache hit info.
//
// On a cache hit the document geometry is reused and the report is rebuilt
// from the document totals; per-item warnings are only available on a
// fresh run.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, items []catalog.ImageItem, opts Options) (*catalog.Document, *layout.Report, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, false, err
	}
	r.applyLogger(&opts)

	cacheKey := r.Keyer.DocumentKey(inputHash(items), opts.DocumentKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if doc, err := catalog.Unmarshal(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "doc")
				report := &layout.Report{
					PlacedImages:  doc.TotalImages,
					DroppedImages: len(items) - doc.TotalImages,
				}
				return doc, report, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "doc")
	}

	doc, report, err := layout.Generate(items, opts.Layout)
	if err != nil {
		return nil, nil, false, err
	}

	if !opts.Refresh {
		if data, err := catalog.Marshal(doc); err == nil {
			if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLDocument); err == nil {
				observability.Cache().OnCacheSet(ctx, "doc", len(data))
			}
		}
	}

	return doc, report, false, nil
}

// RenderWithCacheInfo encodes artifacts with caching and returns cache hit
// info. Cached artifacts are keyed by document hash, so identical geometry
// re-renders for free regardless of how it was produced.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, doc *catalog.Document, loaded *imageio.Result, opts Options) (map[string][]render.File, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	docData, err := catalog.Marshal(doc)
	if err != nil {
		return nil, false, errors.Wrap(err, errors.ErrCodeEncoding, "serialize document for cache key")
	}
	docHash := cache.Hash(docData)

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]render.File, len(opts.Formats))

	if !opts.Refresh {
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(docHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, cacheKey)
			if err != nil || !hit {
				allCached = false
				break
			}
			files, err := decodeFiles(data)
			if err != nil {
				allCached = false
				break
			}
			artifacts[format] = files
		}
		if allCached && len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	// Render all formats
	renderOpts := render.Options{
		Quality: opts.Quality,
		DPI:     opts.DPI,
		Logger:  opts.Logger,
	}
	if loaded != nil {
		renderOpts.Images = loaded.Images
	}

	rendered := make(map[string][]render.File, len(opts.Formats))
	for _, format := range opts.Formats {
		files, err := render.Encode(doc, render.Format(format), renderOpts)
		if err != nil {
			return nil, false, err
		}
		rendered[format] = files

		if data, err := encodeFiles(files); err == nil {
			cacheKey := r.Keyer.ArtifactKey(docHash, opts.ArtifactKeyOpts(format))
			if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err == nil {
				observability.Cache().OnCacheSet(ctx, "artifact", len(data))
			}
		}
	}

	return rendered, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if opts.Layout.Logger == nil {
		opts.Layout.Logger = opts.Logger
	}
}

// inputHash fingerprints the item list: IDs, intrinsic sizes, and metadata.
// Pixel content is deliberately excluded; replacing a file with a
// same-named, same-sized image requires --refresh.
func inputHash(items []catalog.ImageItem) string {
	data, err := json.Marshal(items)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}

// pageCount tolerates a nil document for hook reporting on errors.
func pageCount(doc *catalog.Document) int {
	if doc == nil {
		return 0
	}
	return doc.TotalPages
}

// encodeFiles serializes rendered files for cache storage.
func encodeFiles(files []render.File) ([]byte, error) {
	return json.Marshal(files)
}

// decodeFiles restores rendered files from cache storage.
func decodeFiles(data []byte) ([]render.File, error) {
	var files []render.File
	if err := json.Unmarshal(data, &files); err != nil {
		return nil, err
	}
	return files, nil
}
