package tesseract

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"os/exec"
	"reflect"
	"strings"
	"testing"

	"github.com/wudi/coursekit/ocr"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ensureTesseractAvailable checks that the tesseract binary is reachable.
func ensureTesseractAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract not installed in PATH")
	}
}

func helloInput(t *testing.T) ocr.Input {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 200, 80))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	d := &font.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(10, 50),
	}
	d.DrawString("Hello PDF")

	in, err := ocr.InputFromImage(0, img, ocr.WithLanguages("eng"), ocr.WithDPI(300))
	if err != nil {
		t.Fatalf("InputFromImage: %v", err)
	}
	return in
}

func TestTesseractEngineRecognize(t *testing.T) {
	ensureTesseractAvailable(t)

	res, err := NewTesseractEngine().Recognize(context.Background(), helloInput(t))
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	got := strings.ToLower(res.PlainText)
	if !strings.Contains(got, "hello") || !strings.Contains(got, "pdf") {
		t.Fatalf("unexpected OCR output: %q", res.PlainText)
	}
	if res.InputID != "page-0" || res.Language != "eng" {
		t.Fatalf("unexpected result identity: %+v", res)
	}
}

func TestCLIEngineRecognize(t *testing.T) {
	ensureTesseractAvailable(t)

	in := helloInput(t)
	ocr.WithEngineMode(1)(&in)
	ocr.WithTesseractPSM(6)(&in)
	res, err := NewCLIEngine("").Recognize(context.Background(), in)
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if !strings.Contains(strings.ToLower(res.PlainText), "hello") {
		t.Fatalf("unexpected OCR output: %q", res.PlainText)
	}
}

func TestCLIEngineProbe(t *testing.T) {
	ensureTesseractAvailable(t)

	caps, err := NewCLIEngine("").Probe(context.Background())
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if caps.Version == "" {
		t.Fatalf("expected a version")
	}
}

func TestCLIEngineMissingBinary(t *testing.T) {
	e := NewCLIEngine("definitely-not-tesseract-binary")
	if _, err := e.Probe(context.Background()); err == nil {
		t.Fatalf("expected probe failure")
	}
	_, err := e.Recognize(context.Background(), ocr.Input{Image: []byte{1}})
	if err == nil {
		t.Fatalf("expected recognize failure")
	}
}

func TestRecognizeArgs(t *testing.T) {
	in := ocr.Input{Languages: []string{"eng", "deu"}, EngineMode: 1, DPI: 300}
	ocr.WithTesseractPSM(3)(&in)
	ocr.WithPreserveInterwordSpaces()(&in)

	want := []string{
		"stdin", "stdout", "-l", "eng+deu", "--oem", "1", "--dpi", "300",
		"-c", "preserve_interword_spaces=1", "--psm", "3",
	}
	if got := recognizeArgs(in); !reflect.DeepEqual(got, want) {
		t.Fatalf("recognizeArgs = %v\nwant %v", got, want)
	}

	plain := recognizeArgs(ocr.Input{EngineMode: ocr.DefaultEngineMode})
	if !reflect.DeepEqual(plain, []string{"stdin", "stdout"}) {
		t.Fatalf("default args = %v", plain)
	}
}

func TestParseRotation(t *testing.T) {
	osd := "Page number: 0\nOrientation in degrees: 270\nRotate: 90\nOrientation confidence: 4.11\n"
	got, err := ParseRotation(osd)
	if err != nil || got != 90 {
		t.Fatalf("ParseRotation = %d, %v", got, err)
	}
	if _, err := ParseRotation("Too few characters. Skipping this page"); err == nil {
		t.Fatalf("expected error without rotation")
	}
}

func TestParseLanguagesAndVersion(t *testing.T) {
	out := "List of available languages in \"/usr/share/tessdata/\" (3):\ndeu\neng\nosd\n"
	if got := parseLanguages(out); !reflect.DeepEqual(got, []string{"deu", "eng", "osd"}) {
		t.Fatalf("parseLanguages = %v", got)
	}
	if got := parseVersion("tesseract 5.3.0\n leptonica-1.82.0\n"); got != "5.3.0" {
		t.Fatalf("parseVersion = %q", got)
	}
}
