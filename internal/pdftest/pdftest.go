// Package pdftest builds small in-memory PDFs for tests.
package pdftest

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"testing"

	"github.com/go-pdf/fpdf"
)

// Page describes one fixture page.
type Page struct {
	Text string
	// WithImage places a small PNG XObject below the text.
	WithImage bool
}

// Build renders pages as A4 pages with Arial 12pt text.
func Build(t *testing.T, pages ...Page) []byte {
	t.Helper()
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 10)
	pdf.SetFont("Arial", "", 12)

	imageRegistered := false
	for _, p := range pages {
		pdf.AddPage()
		if p.Text != "" {
			pdf.MultiCell(0, 10, p.Text, "", "L", false)
		}
		if p.WithImage {
			if !imageRegistered {
				opts := fpdf.ImageOptions{ImageType: "PNG"}
				pdf.RegisterImageOptionsReader("fixture", opts, bytes.NewReader(fixturePNG(t)))
				imageRegistered = true
			}
			pdf.ImageOptions("fixture", 20, 150, 40, 40, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		}
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("render fixture pdf: %v", err)
	}
	return buf.Bytes()
}

// Texts is Build for text-only pages.
func Texts(t *testing.T, texts ...string) []byte {
	t.Helper()
	pages := make([]Page, len(texts))
	for i, text := range texts {
		pages[i] = Page{Text: text}
	}
	return Build(t, pages...)
}

func fixturePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{R: 200, G: 30, B: 30, A: 255}}, image.Point{}, draw.Src)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture png: %v", err)
	}
	return buf.Bytes()
}
