package ocr

import (
	"context"
	"image"
	"strings"

	"github.com/wudi/coursekit/imageprep"
	"github.com/wudi/coursekit/observability"
)

const (
	LangEnglish = "eng"
	LangGerman  = "deu"

	// PreviewLanguages is the broad model used for the preview pass.
	PreviewLanguages = "eng+deu"
	// PreviewDim bounds the thumbnail recognised during language preview.
	PreviewDim = 800
	// PreviewPSM assumes a single uniform block of text.
	PreviewPSM = 6
	// PreviewEngineMode selects the LSTM recognizer for the preview pass.
	PreviewEngineMode = 1
)

const germanChars = "äöüÄÖÜß"

// HasGermanChars reports whether text contains umlauts or sharp s.
func HasGermanChars(text string) bool {
	return strings.ContainsAny(text, germanChars)
}

// LanguageSelector picks the OCR language specification for a page.
type LanguageSelector struct {
	// Preferred is the configured language preference, e.g. "eng+deu".
	Preferred string
	// Engine runs the preview pass. Nil disables the preview.
	Engine Engine
	Logger observability.Logger
}

// Decide returns the language for a page with the given native text. A
// multi-language preference is used verbatim; otherwise German characters in
// the native text (or in a preview OCR pass when there is no native text)
// select "deu", other native text selects "eng", and the preference is the
// fallback.
func (s LanguageSelector) Decide(ctx context.Context, native string, preview image.Image) string {
	if strings.Contains(s.Preferred, "+") {
		return s.Preferred
	}
	if HasGermanChars(native) {
		return LangGerman
	}
	if native != "" {
		return LangEnglish
	}
	if preview != nil && s.Engine != nil {
		text, err := s.previewText(ctx, preview)
		if err != nil {
			s.logger().Debug("language preview failed", observability.Err(err))
		} else if HasGermanChars(text) {
			return LangGerman
		}
	}
	if s.Preferred == "" {
		return LangEnglish
	}
	return s.Preferred
}

func (s LanguageSelector) previewText(ctx context.Context, preview image.Image) (string, error) {
	thumb := imageprep.Grayscale(imageprep.Thumbnail(preview, PreviewDim, PreviewDim))
	in, err := InputFromImage(-1, thumb, WithLanguages(PreviewLanguages), WithEngineMode(PreviewEngineMode), WithTesseractPSM(PreviewPSM))
	if err != nil {
		return "", err
	}
	in.ID = "language-preview"
	res, err := s.Engine.Recognize(ctx, in)
	if err != nil {
		return "", err
	}
	return res.PlainText, nil
}

func (s LanguageSelector) logger() observability.Logger {
	if s.Logger == nil {
		return observability.NopLogger{}
	}
	return s.Logger
}
