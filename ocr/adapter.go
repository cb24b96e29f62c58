package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
)

// InputFromImage converts a rendered or preprocessed page bitmap into an OCR
// input using PNG encoding. The generated ID is stable for the page index to
// simplify correlation with downstream results.
func InputFromImage(pageIndex int, img image.Image, opts ...InputOption) (Input, error) {
	if img == nil {
		return Input{}, fmt.Errorf("page %d: nil image", pageIndex)
	}
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img); err != nil {
		return Input{}, fmt.Errorf("encode page %d image: %w", pageIndex, err)
	}
	in := Input{
		ID:         fmt.Sprintf("page-%d", pageIndex),
		Image:      buf.Bytes(),
		Format:     ImageFormatPNG,
		PageIndex:  pageIndex,
		EngineMode: DefaultEngineMode,
	}
	for _, opt := range opts {
		opt(&in)
	}
	return in, nil
}
