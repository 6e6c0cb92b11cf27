package imageio

import (
	"bytes"
	"context"
	"image"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	// Register WebP decoding; imaging covers PNG, JPEG, GIF, TIFF and BMP.
	_ "golang.org/x/image/webp"

	"github.com/plateworks/tavola/pkg/catalog"
	"github.com/plateworks/tavola/pkg/errors"
)

// supportedExts are the file extensions picked up by LoadDir.
var supportedExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".tif":  true,
	".tiff": true,
	".bmp":  true,
	".webp": true,
}

// Warning records one file that could not be decoded.
type Warning struct {
	Path string
	Err  error
}

// Result is the outcome of loading a directory. Items are ready for the
// layout engine; Images holds the decoded pixels keyed by item ID for
// rendering. Files that failed to decode appear in Warnings instead of
// aborting the load.
type Result struct {
	Items    []catalog.ImageItem
	Images   map[string]image.Image
	Warnings []Warning
}

// LoadDir decodes every supported image directly under dir.
//
// Files are decoded concurrently on up to workers goroutines (NumCPU when
// workers <= 0) but Items preserves the directory's lexical file order, so
// downstream sorting and placement stay deterministic. EXIF orientation is
// applied during decode. An error is returned only when the directory
// itself is unreadable or ctx is canceled.
func LoadDir(ctx context.Context, dir string, workers int) (*Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeFileNotFound, "read image directory %s", dir)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !supportedExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}

	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	type slot struct {
		img image.Image
		err error
	}
	slots := make([]slot, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := imaging.Open(path, imaging.AutoOrientation(true))
			slots[i] = slot{img: img, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeImageLoad, "image load interrupted")
	}

	res := &Result{Images: make(map[string]image.Image, len(paths))}
	for i, path := range paths {
		if slots[i].err != nil {
			res.Warnings = append(res.Warnings, Warning{
				Path: path,
				Err:  errors.Wrap(slots[i].err, errors.ErrCodeImageLoad, "decode %s", path),
			})
			continue
		}
		id := filepath.Base(path)
		bounds := slots[i].img.Bounds()
		res.Items = append(res.Items, catalog.ImageItem{
			ID:     id,
			Ref:    path,
			Width:  bounds.Dx(),
			Height: bounds.Dy(),
		})
		res.Images[id] = slots[i].img
	}
	return res, nil
}

// LoadFiles decodes an explicit list of image readers, keyed by name. It
// serves upload handling, where files arrive in memory rather than on disk.
func LoadFiles(files map[string][]byte) (*Result, error) {
	res := &Result{Images: make(map[string]image.Image, len(files))}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !supportedExts[strings.ToLower(filepath.Ext(name))] {
			res.Warnings = append(res.Warnings, Warning{
				Path: name,
				Err:  errors.New(errors.ErrCodeUnsupported, "unsupported image format: %s", name),
			})
			continue
		}
		img, _, err := image.Decode(bytes.NewReader(files[name]))
		if err != nil {
			res.Warnings = append(res.Warnings, Warning{
				Path: name,
				Err:  errors.Wrap(err, errors.ErrCodeImageLoad, "decode %s", name),
			})
			continue
		}
		bounds := img.Bounds()
		res.Items = append(res.Items, catalog.ImageItem{
			ID:     name,
			Ref:    name,
			Width:  bounds.Dx(),
			Height: bounds.Dy(),
		})
		res.Images[name] = img
	}
	return res, nil
}

