package ocr

import (
	"strconv"
	"strings"
)

// InputOption mutates an OCR input.
type InputOption func(*Input)

// WithLanguages sets language hints on the OCR input. Each argument may itself
// be a "+" or "," separated list such as "eng+deu".
func WithLanguages(langs ...string) InputOption {
	return func(in *Input) { in.Languages = SplitLanguages(strings.Join(langs, "+")) }
}

// WithDPI overrides the DPI value on the OCR input.
func WithDPI(dpi int) InputOption {
	return func(in *Input) { in.DPI = dpi }
}

// WithEngineMode selects the Tesseract OCR engine mode (--oem).
func WithEngineMode(mode int) InputOption {
	return func(in *Input) { in.EngineMode = mode }
}

// Tesseract variable names used by the pipeline.
const (
	VarPageSegMode            = "tessedit_pageseg_mode"
	VarPreserveInterwordSpace = "preserve_interword_spaces"
	VarCharWhitelist          = "tessedit_char_whitelist"
)

// WithTesseractPSM sets the page segmentation mode (PSM) variable for Tesseract.
// See https://tesseract-ocr.github.io/tessdoc/ImproveQuality.html#page-segmentation-method for values.
func WithTesseractPSM(mode int) InputOption {
	return withVariable(VarPageSegMode, strconv.Itoa(mode))
}

// WithPreserveInterwordSpaces keeps runs of spaces between words.
func WithPreserveInterwordSpaces() InputOption {
	return withVariable(VarPreserveInterwordSpace, "1")
}

// WithTesseractWhitelist restricts recognition to the provided characters.
func WithTesseractWhitelist(chars string) InputOption {
	return withVariable(VarCharWhitelist, chars)
}

func withVariable(key, value string) InputOption {
	return func(in *Input) {
		if in.Metadata == nil {
			in.Metadata = make(map[string]string)
		}
		in.Metadata[key] = value
	}
}

// SplitLanguages turns "eng+deu" or "eng, deu" into its language codes.
func SplitLanguages(spec string) []string {
	fields := strings.FieldsFunc(spec, func(r rune) bool {
		return r == '+' || r == ',' || r == ' '
	})
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// JoinLanguages is the inverse of SplitLanguages using Tesseract's "+" form.
func JoinLanguages(langs []string) string {
	return strings.Join(langs, "+")
}
