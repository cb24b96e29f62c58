// Package tesseract provides Tesseract-backed OCR engines: an in-process
// engine on top of gosseract and a command-line engine that shells out to the
// tesseract binary. Importing the package registers both and makes the
// gosseract engine the default.
package tesseract

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/wudi/coursekit/ocr"
)

// Backend names used for registration.
const (
	BackendGosseract = "gosseract"
	BackendCLI       = "cli"
)

func init() {
	engine := NewTesseractEngine()
	ocr.Register(BackendGosseract, engine)
	ocr.Register(BackendCLI, NewCLIEngine(""))
	ocr.SetDefaultEngine(engine)
}

// TesseractEngine runs recognition in-process through the gosseract client.
// gosseract fixes the engine mode at client initialisation, so Input.EngineMode
// is not honoured here and Probe reports no engine mode support; use
// CLIEngine when it matters.
type TesseractEngine struct {
	clientFactory func() *gosseract.Client
	// cli handles orientation detection and language listing, which the
	// client API does not expose.
	cli *CLIEngine
}

// NewTesseractEngine constructs a Tesseract-backed OCR engine.
func NewTesseractEngine() *TesseractEngine {
	return &TesseractEngine{clientFactory: gosseract.NewClient, cli: NewCLIEngine("")}
}

func (e *TesseractEngine) Name() string { return "tesseract" }

// Recognize performs OCR on a single image input.
func (e *TesseractEngine) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	if err := ctx.Err(); err != nil {
		return ocr.Result{}, err
	}
	c := e.clientFactory()
	defer c.Close()
	return e.recognizeWithClient(c, in)
}

func (e *TesseractEngine) recognizeWithClient(c *gosseract.Client, in ocr.Input) (ocr.Result, error) {
	if err := c.SetImageFromBytes(in.Image); err != nil {
		return ocr.Result{}, fmt.Errorf("set image: %w", err)
	}
	if len(in.Languages) > 0 {
		if err := c.SetLanguage(in.Languages...); err != nil {
			return ocr.Result{}, fmt.Errorf("set languages: %w", err)
		}
	}
	if in.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), strconv.Itoa(in.DPI)); err != nil {
			return ocr.Result{}, fmt.Errorf("set dpi: %w", err)
		}
	}
	for k, v := range in.Metadata {
		if k == ocr.VarPageSegMode {
			mode, err := strconv.Atoi(v)
			if err != nil {
				return ocr.Result{}, fmt.Errorf("page segmentation mode %q: %w", v, err)
			}
			if err := c.SetPageSegMode(gosseract.PageSegMode(mode)); err != nil {
				return ocr.Result{}, fmt.Errorf("set page segmentation mode: %w", err)
			}
			continue
		}
		if err := c.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return ocr.Result{}, fmt.Errorf("set variable %s: %w", k, err)
		}
	}
	text, err := c.Text()
	if err != nil {
		return ocr.Result{}, fmt.Errorf("recognize text: %w", err)
	}

	return ocr.Result{
		InputID:    in.ID,
		PlainText:  strings.TrimSpace(text),
		Language:   ocr.JoinLanguages(in.Languages),
		Confidence: meanWordConfidence(c),
	}, nil
}

func meanWordConfidence(c *gosseract.Client) float64 {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence / 100.0
	}
	return sum / float64(len(boxes))
}

// Probe reports the linked Tesseract version and the installed languages.
func (e *TesseractEngine) Probe(ctx context.Context) (ocr.Capabilities, error) {
	caps := ocr.Capabilities{Engine: e.Name(), Version: strings.TrimSpace(gosseract.Version())}
	if caps.Version == "" {
		return caps, fmt.Errorf("%w: tesseract library not linked", ocr.ErrUnavailable)
	}
	langs, err := e.cli.ListLanguages(ctx)
	if err == nil {
		caps.Languages = langs
	}
	return caps, nil
}

// DetectOrientation delegates to the tesseract binary's OSD mode.
func (e *TesseractEngine) DetectOrientation(ctx context.Context, in ocr.Input) (int, error) {
	return e.cli.DetectOrientation(ctx, in)
}
