// Package chunking turns extracted page text into index-ready units: fixed
// windows for course material and question blocks for exams.
package chunking

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidWindow reports a window size or overlap that cannot make
// progress.
var ErrInvalidWindow = errors.New("invalid chunk window")

const (
	DefaultChunkSize    = 1200
	DefaultChunkOverlap = 200
)

// Splitter cuts text into overlapping windows of Size characters, each
// starting Size-Overlap characters after the previous one.
type Splitter struct {
	size    int
	overlap int
}

// NewSplitter validates the window and returns a Splitter.
func NewSplitter(size, overlap int) (*Splitter, error) {
	if err := ValidateWindow(size, overlap); err != nil {
		return nil, err
	}
	return &Splitter{size: size, overlap: overlap}, nil
}

// ValidateWindow requires size > 0 and 0 <= overlap < size.
func ValidateWindow(size, overlap int) error {
	if size <= 0 {
		return fmt.Errorf("%w: chunk size %d must be positive", ErrInvalidWindow, size)
	}
	if overlap < 0 || overlap >= size {
		return fmt.Errorf("%w: overlap %d must be in [0, %d)", ErrInvalidWindow, overlap, size)
	}
	return nil
}

func (s *Splitter) Size() int    { return s.size }
func (s *Splitter) Overlap() int { return s.overlap }

// Split trims text and slices it by code point. The last window may be
// shorter than Size; blank text yields no windows.
func (s *Splitter) Split(text string) []string {
	runes := []rune(strings.TrimSpace(text))
	n := len(runes)
	if n == 0 {
		return nil
	}
	step := s.size - s.overlap
	out := make([]string, 0, (n+step-1)/step)
	for start := 0; start < n; start += step {
		end := min(n, start+s.size)
		out = append(out, string(runes[start:end]))
		if end == n {
			break
		}
	}
	return out
}
