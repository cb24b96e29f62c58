// Package fitz renders pages with MuPDF through go-fitz. Importing it makes
// MuPDF the default rasterizer.
package fitz

import (
	"fmt"
	"image"

	gofitz "github.com/gen2brain/go-fitz"
	"github.com/wudi/coursekit/raster"
)

func init() {
	raster.SetDefault(Rasterizer{})
}

// Rasterizer opens documents with MuPDF.
type Rasterizer struct{}

func (Rasterizer) Name() string { return "mupdf" }

// Open loads a PDF from memory. MuPDF keeps a reference to data until the
// document is closed.
func (Rasterizer) Open(data []byte) (raster.Document, error) {
	doc, err := gofitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("open pdf for rendering: %w", err)
	}
	return &document{doc: doc, pages: doc.NumPage()}, nil
}

type document struct {
	doc   *gofitz.Document
	pages int
}

func (d *document) NumPages() int { return d.pages }

// Render draws page at dpi, i.e. a zoom of dpi/72.
func (d *document) Render(page, dpi int) (image.Image, error) {
	if err := raster.CheckPage(page, d.pages); err != nil {
		return nil, err
	}
	if dpi <= 0 {
		dpi = raster.DefaultDPI
	}
	img, err := d.doc.ImageDPI(page, float64(dpi))
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", page+1, err)
	}
	return img, nil
}

func (d *document) Close() error { return d.doc.Close() }
