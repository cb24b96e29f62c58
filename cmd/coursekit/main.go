// Command coursekit turns course PDFs into retrieval chunks.
//
//	coursekit ingest --kind slides --course 12 lecture01.pdf
//	coursekit ingest --kind exam --course 12 --format markdown midterm.pdf
//	coursekit probe
package main

import (
	"fmt"
	"os"

	_ "github.com/wudi/coursekit/ocr/tesseract"
	_ "github.com/wudi/coursekit/raster/fitz"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "coursekit: %v\n", err)
		os.Exit(1)
	}
}
