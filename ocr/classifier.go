package ocr

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// GarbageThreshold is the minimum share of alphanumeric characters native
// text must reach to be trusted without OCR.
const GarbageThreshold = 0.45

// Classifier decides per page whether native text can be used as-is.
type Classifier struct {
	// MinTextLen is the trimmed length, in characters, below which OCR is
	// always attempted.
	MinTextLen int
}

// NeedsOCR reports whether native text is too short or too garbled.
func (c Classifier) NeedsOCR(native string) bool {
	text := strings.TrimSpace(native)
	if utf8.RuneCountInString(text) < c.MinTextLen {
		return true
	}
	return LooksLikeGarbage(text)
}

// LooksLikeGarbage reports whether text is empty after trimming or mostly
// non-alphanumeric noise.
func LooksLikeGarbage(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return true
	}
	return AlphanumericRatio(text) < GarbageThreshold
}

// AlphanumericRatio is the fraction of letters and digits among the
// characters of the trimmed text.
func AlphanumericRatio(text string) float64 {
	text = strings.TrimSpace(text)
	total, alnum := 0, 0
	for _, r := range text {
		total++
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			alnum++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(alnum) / float64(total)
}

// GarbageRatio is the share of non-alphanumeric characters in the trimmed
// text.
func GarbageRatio(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 1
	}
	return 1 - AlphanumericRatio(text)
}
