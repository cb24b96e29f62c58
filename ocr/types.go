package ocr

import (
	"context"
	"errors"
)

// ErrUnavailable is returned by engines that cannot run on this host.
var ErrUnavailable = errors.New("ocr engine unavailable")

// ImageFormat identifies the content type of an OCR input image.
type ImageFormat string

const ImageFormatPNG ImageFormat = "image/png"

// DefaultEngineMode leaves the engine mode to the backend.
const DefaultEngineMode = -1

// Input encapsulates a single image submitted for OCR.
type Input struct {
	// ID is an optional caller-provided identifier that is echoed back in the
	// corresponding Result.
	ID string
	// Image is the encoded image payload in the format specified by Format.
	Image []byte
	// Format declares the image content type (e.g., image/png).
	Format ImageFormat
	// PageIndex links the input back to the zero-based PDF page index where the
	// image originated.
	PageIndex int
	// DPI carries the effective dots-per-inch for the image. Providers such as
	// Tesseract use this for scaling and layout heuristics; zero means unknown.
	DPI int
	// Languages lists Tesseract language codes (e.g., "eng", "deu") that are
	// loaded together.
	Languages []string
	// EngineMode selects the recognizer (Tesseract --oem). DefaultEngineMode
	// keeps the backend's choice.
	EngineMode int
	// Metadata allows callers to pass through engine-specific knobs (e.g.,
	// "tessedit_pageseg_mode" for Tesseract) without hard-coding them into the
	// API surface.
	Metadata map[string]string
}

// Result captures OCR output for a single input image.
type Result struct {
	// InputID mirrors the Input.ID that produced this result.
	InputID string
	// PlainText contains the trimmed, linearized text extracted from the image.
	PlainText string
	// Language is the language specification the engine ran with.
	Language string
	// Confidence is the mean word confidence in [0,1]; zero when unknown.
	Confidence float64
}

// Engine is the simplest OCR provider contract: one image in, one result out.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, input Input) (Result, error)
}

// Capabilities describes an engine installation.
type Capabilities struct {
	Engine    string
	Version   string
	Languages []string
	// EngineModes reports whether Input.EngineMode is honoured.
	EngineModes bool
}

// HasLanguage reports whether lang is installed. An empty language list means
// the engine could not enumerate them and every language is assumed present.
func (c Capabilities) HasLanguage(lang string) bool {
	if len(c.Languages) == 0 {
		return true
	}
	for _, l := range c.Languages {
		if l == lang {
			return true
		}
	}
	return false
}

// Prober is implemented by engines that can verify their installation.
type Prober interface {
	Probe(ctx context.Context) (Capabilities, error)
}

// OrientationDetector is implemented by engines that can estimate page
// orientation. The returned angle is the clockwise rotation in degrees that
// makes the page upright.
type OrientationDetector interface {
	DetectOrientation(ctx context.Context, input Input) (int, error)
}
