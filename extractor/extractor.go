// Package extractor pulls native text and an embedded-image flag out of each
// page of a PDF.
package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// ErrNoPages is returned by Open for documents without a single page.
var ErrNoPages = errors.New("pdf has no pages")

// Document is a parsed PDF opened for read-only page access.
type Document struct {
	reader *pdf.Reader
	pages  int
}

// PageContent captures what the extractor found on one page.
type PageContent struct {
	// Index is zero-based.
	Index     int
	Text      string
	HasImages bool
}

// Open parses the PDF available through r. The underlying reader panics on
// some malformed files; those panics are reported as errors.
func Open(r io.ReaderAt, size int64) (doc *Document, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			doc = nil
			err = fmt.Errorf("parse pdf: %v", rec)
		}
	}()
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("parse pdf: %w", err)
	}
	n := reader.NumPage()
	if n <= 0 {
		return nil, ErrNoPages
	}
	return &Document{reader: reader, pages: n}, nil
}

// OpenBytes is Open over an in-memory document.
func OpenBytes(data []byte) (*Document, error) {
	return Open(bytes.NewReader(data), int64(len(data)))
}

// NumPages returns the page count.
func (d *Document) NumPages() int { return d.pages }

// Page extracts text and the image flag for page i (zero-based). A text
// extraction failure is returned alongside whatever image flag was found.
func (d *Document) Page(i int) (PageContent, error) {
	content := PageContent{Index: i, HasImages: d.PageHasImages(i)}
	text, err := d.PageText(i)
	content.Text = text
	return content, err
}

func (d *Document) page(i int) (pdf.Page, error) {
	if i < 0 || i >= d.pages {
		return pdf.Page{}, fmt.Errorf("page index %d out of range [0,%d)", i, d.pages)
	}
	return d.reader.Page(i + 1), nil
}
