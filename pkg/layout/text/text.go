// Package text provides font metrics for caption and label layout.
//
// The annotation compositor and the encoders need the pixel width and height
// a string will occupy before anything is drawn. Measurements come from the
// embedded Go Regular face, so they are identical across platforms and
// require no font files on disk.
package text

import (
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// Measurer measures strings at arbitrary point sizes.
//
// Face construction is comparatively expensive, so faces are cached per
// size. A single mutex guards the cache and the faces themselves: freetype
// faces are not safe for concurrent use.
type Measurer struct {
	mu    sync.Mutex
	font  *truetype.Font
	faces map[float64]font.Face
}

// NewMeasurer creates a measurer over the embedded Go Regular face.
func NewMeasurer() (*Measurer, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	return &Measurer{
		font:  f,
		faces: make(map[float64]font.Face),
	}, nil
}

var (
	sharedOnce sync.Once
	shared     *Measurer
)

// Shared returns the process-wide measurer.
// The embedded font is known-good, so parse failure is a programmer error.
func Shared() *Measurer {
	sharedOnce.Do(func() {
		m, err := NewMeasurer()
		if err != nil {
			panic("text: parse embedded font: " + err.Error())
		}
		shared = m
	})
	return shared
}

// Measure returns the width and height in pixels that s occupies at the
// given point size. Height is the face's ascent plus descent, independent
// of the string content, so stacked lines align consistently.
func (m *Measurer) Measure(s string, size float64) (w, h float64) {
	if size <= 0 || s == "" {
		return 0, 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	face := m.face(size)
	adv := font.MeasureString(face, s)
	metrics := face.Metrics()

	return fixedToFloat(adv), fixedToFloat(metrics.Ascent + metrics.Descent)
}

// LineHeight returns the vertical advance between stacked lines at size.
func (m *Measurer) LineHeight(size float64) float64 {
	if size <= 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fixedToFloat(m.face(size).Metrics().Height)
}

// Face returns a freetype face at the given size for drawing contexts.
// The caller must not use the face concurrently with Measure calls.
func (m *Measurer) Face(size float64) font.Face {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.face(size)
}

// face returns the cached face for size, creating it on first use.
// Callers must hold mu.
func (m *Measurer) face(size float64) font.Face {
	if f, ok := m.faces[size]; ok {
		return f
	}
	f := truetype.NewFace(m.font, &truetype.Options{
		Size: size,
		DPI:  72,
	})
	m.faces[size] = f
	return f
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
