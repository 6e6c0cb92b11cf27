package render

import (
	"fmt"
	"image"
	"io"

	"github.com/charmbracelet/log"

	"github.com/plateworks/tavola/pkg/catalog"
	"github.com/plateworks/tavola/pkg/errors"
	"github.com/plateworks/tavola/pkg/render/sink"
)

// Format selects an output encoding.
type Format string

// Supported output formats.
const (
	FormatSVG  Format = "svg"
	FormatPDF  Format = "pdf"
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatJSON Format = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[Format]bool{
	FormatSVG:  true,
	FormatPDF:  true,
	FormatPNG:  true,
	FormatJPEG: true,
	FormatJSON: true,
}

// Default encoding parameters.
const (
	DefaultQuality = 90
	DefaultDPI     = 300.0
)

// Options configures encoding. Images maps item IDs to decoded pixels;
// placements without pixels render as labeled placeholders, which keeps
// JSON-driven re-rendering possible without the original files.
type Options struct {
	Images  map[string]image.Image
	Quality int     // JPEG quality, 1-100
	DPI     float64 // Pixel density the document was laid out for
	Logger  *log.Logger
}

func (o *Options) setDefaults() {
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = DefaultQuality
	}
	if o.DPI <= 0 {
		o.DPI = DefaultDPI
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// File is one encoded artifact.
type File struct {
	Name string
	Data []byte
}

// Encode renders a document to the requested format. Paged formats (SVG,
// PNG, JPEG) produce one file per page named plate_001.svg and so on; PDF
// and JSON produce a single file.
func Encode(doc *catalog.Document, format Format, opts Options) ([]File, error) {
	if !ValidFormats[format] {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown output format: %q", format)
	}
	opts.setDefaults()

	switch format {
	case FormatJSON:
		data, err := catalog.Marshal(doc)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeEncoding, "encode document JSON")
		}
		return []File{{Name: "plates.json", Data: data}}, nil

	case FormatPDF:
		data, err := sink.RenderPDF(doc, sink.WithPDFImages(opts.Images), sink.WithPDFDPI(opts.DPI))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeEncoding, "encode PDF")
		}
		return []File{{Name: "plates.pdf", Data: data}}, nil

	case FormatSVG:
		files := make([]File, 0, len(doc.Pages))
		for i := range doc.Pages {
			data := sink.RenderSVG(doc, i, sink.WithImages(opts.Images))
			files = append(files, File{Name: pageName(i, "svg"), Data: data})
		}
		return files, nil

	default: // FormatPNG, FormatJPEG
		files := make([]File, 0, len(doc.Pages))
		for i := range doc.Pages {
			data, err := sink.RenderRaster(doc, i,
				sink.WithRasterImages(opts.Images),
				sink.WithJPEG(format == FormatJPEG, opts.Quality))
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeEncoding, "encode page %d as %s", i+1, format)
			}
			files = append(files, File{Name: pageName(i, string(format)), Data: data})
		}
		return files, nil
	}
}

// pageName builds the artifact name for a 0-based page index.
func pageName(index int, ext string) string {
	return fmt.Sprintf("plate_%03d.%s", index+1, ext)
}
