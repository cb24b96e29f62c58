// Package raster renders PDF pages to bitmaps for OCR. Backends register
// themselves as the default rasterizer from init; without one, every Open
// fails with ErrUnavailable and callers fall back to native text.
package raster

import (
	"errors"
	"fmt"
	"image"
	"sync"
)

// DefaultDPI is the render resolution used when none is configured.
const DefaultDPI = 300

// ErrUnavailable is returned when no rendering backend is usable.
var ErrUnavailable = errors.New("rasterizer unavailable")

// Rasterizer opens documents for rendering.
type Rasterizer interface {
	Name() string
	Open(data []byte) (Document, error)
}

// Document is an open, renderable PDF. Render takes a zero-based page index.
type Document interface {
	NumPages() int
	Render(page, dpi int) (image.Image, error)
	Close() error
}

var (
	defaultMu         sync.RWMutex
	defaultRasterizer Rasterizer = Unavailable("no rasterizer registered")
)

// Default returns the process-wide rasterizer.
func Default() Rasterizer {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultRasterizer
}

// SetDefault replaces the process-wide rasterizer.
func SetDefault(r Rasterizer) {
	if r == nil {
		r = Unavailable("no rasterizer registered")
	}
	defaultMu.Lock()
	defaultRasterizer = r
	defaultMu.Unlock()
}

// Unavailable returns a rasterizer whose Open always fails.
func Unavailable(reason string) Rasterizer { return unavailable{reason: reason} }

type unavailable struct{ reason string }

func (u unavailable) Name() string { return "unavailable" }

func (u unavailable) Open([]byte) (Document, error) {
	return nil, fmt.Errorf("%w: %s", ErrUnavailable, u.reason)
}

// CheckPage validates a zero-based page index against n pages.
func CheckPage(page, n int) error {
	if page < 0 || page >= n {
		return fmt.Errorf("page %d out of range [0,%d)", page, n)
	}
	return nil
}
