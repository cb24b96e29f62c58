// Package imageprep prepares rendered page bitmaps for OCR: orientation
// correction, contrast normalisation, denoising, bounded resizing and Otsu
// binarisation.
package imageprep

import (
	"context"
	"image"

	"github.com/wudi/coursekit/observability"
)

const (
	DefaultMinDim = 1200
	DefaultMaxDim = 2600

	// OrientationPreviewDim bounds the copy handed to orientation detection.
	OrientationPreviewDim = 1000
)

// OrientationFunc reports the clockwise rotation, in degrees, that makes the
// preview upright.
type OrientationFunc func(ctx context.Context, preview image.Image) (int, error)

// Preprocessor turns rendered pages into OCR-ready bitmaps.
type Preprocessor struct {
	MinDim int
	MaxDim int
	Detect OrientationFunc
	Logger observability.Logger
}

// New returns a Preprocessor with the given dimension bounds. Zero bounds
// fall back to the defaults.
func New(minDim, maxDim int, detect OrientationFunc, logger observability.Logger) *Preprocessor {
	if minDim <= 0 {
		minDim = DefaultMinDim
	}
	if maxDim <= 0 {
		maxDim = DefaultMaxDim
	}
	if logger == nil {
		logger = observability.NopLogger{}
	}
	return &Preprocessor{MinDim: minDim, MaxDim: maxDim, Detect: detect, Logger: logger}
}

// FixOrientation rotates img upright using the detector on a reduced
// grayscale copy. Detector failures leave img untouched.
func (p *Preprocessor) FixOrientation(ctx context.Context, img image.Image) (image.Image, int) {
	if p.Detect == nil || img == nil {
		return img, 0
	}
	preview := Grayscale(Thumbnail(img, OrientationPreviewDim, OrientationPreviewDim))
	angle, err := p.Detect(ctx, preview)
	if err != nil {
		p.logger().Debug("orientation detection failed", observability.Err(err))
		return img, 0
	}
	if angle == 0 {
		return img, 0
	}
	rotated, ok := Rotate(img, angle)
	if !ok {
		p.logger().Debug("orientation angle ignored", observability.Int("angle", angle))
		return img, 0
	}
	return rotated, angle
}

// Prepare converts an upright page to grayscale, stretches contrast,
// removes speckle, bounds its size and binarises it with Otsu's threshold.
// A panic inside the chain degrades to the plain grayscale page.
func (p *Preprocessor) Prepare(img image.Image) (out *image.Gray) {
	gray := Grayscale(img)
	defer func() {
		if r := recover(); r != nil {
			p.logger().Warn("preprocessing failed, using grayscale page", observability.String("panic", panicString(r)))
			out = gray
		}
	}()
	g := AutoContrast(gray)
	g = Median3(g)
	g = ResizeBounded(g, p.MinDim, p.MaxDim)
	return Binarize(g, OtsuThreshold(Histogram(g)))
}

func (p *Preprocessor) logger() observability.Logger {
	if p.Logger == nil {
		return observability.NopLogger{}
	}
	return p.Logger
}

func panicString(r any) string {
	if err, ok := r.(error); ok {
		return err.Error()
	}
	if s, ok := r.(string); ok {
		return s
	}
	return "unknown panic"
}
