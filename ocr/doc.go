// Package ocr defines the abstraction layer for plugging an OCR engine
// (Tesseract through gosseract, the tesseract binary, or a remote service)
// into page ingestion, together with the decisions taken around it: whether
// a page needs OCR at all and which language to ask the engine for.
//
// Engines are optional at runtime. The package-level default engine is a
// null object that reports ErrUnavailable until a backend such as
// ocr/tesseract registers itself.
package ocr
