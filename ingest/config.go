package ingest

import (
	"errors"
	"fmt"
	"slices"

	"github.com/wudi/coursekit/chunking"
)

// OCR backends selectable through Config.OCRBackend.
const (
	BackendGosseract = "gosseract"
	BackendCLI       = "cli"
)

// Config holds every pipeline knob. It is copied at construction and never
// changed afterwards.
type Config struct {
	ChunkSize    int  `mapstructure:"chunk_size" json:"chunk_size"`
	ChunkOverlap int  `mapstructure:"chunk_overlap" json:"chunk_overlap"`
	UseOCR       bool `mapstructure:"use_ocr" json:"use_ocr"`
	// MaxImagesPerPage is accepted for compatibility and only logged.
	MaxImagesPerPage int    `mapstructure:"max_images_per_page" json:"max_images_per_page"`
	MinTextLenForOCR int    `mapstructure:"min_text_len_for_ocr" json:"min_text_len_for_ocr"`
	OCRMaxDim        int    `mapstructure:"ocr_max_dim" json:"ocr_max_dim"`
	OCRMinDim        int    `mapstructure:"ocr_min_dim" json:"ocr_min_dim"`
	OCRPSM           int    `mapstructure:"ocr_psm" json:"ocr_psm"`
	OCRLogText       bool   `mapstructure:"ocr_log_text" json:"ocr_log_text"`
	OCRDPI           int    `mapstructure:"ocr_dpi" json:"ocr_dpi"`
	OCRLang          string `mapstructure:"ocr_lang" json:"ocr_lang"`
	OCREngineMode    int    `mapstructure:"ocr_engine_mode" json:"ocr_engine_mode"`
	OCRWorkers       int    `mapstructure:"ocr_workers" json:"ocr_workers"`
	OCRBackend       string `mapstructure:"ocr_backend" json:"ocr_backend"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		ChunkSize:        chunking.DefaultChunkSize,
		ChunkOverlap:     chunking.DefaultChunkOverlap,
		UseOCR:           true,
		MaxImagesPerPage: 5,
		MinTextLenForOCR: 50,
		OCRMaxDim:        2600,
		OCRMinDim:        1200,
		OCRPSM:           3,
		OCRLogText:       false,
		OCRDPI:           300,
		OCRLang:          "eng+deu",
		OCREngineMode:    1,
		OCRWorkers:       1,
		OCRBackend:       BackendGosseract,
	}
}

// Normalize clamps soft limits into their usable range.
func (c Config) Normalize() Config {
	c.MinTextLenForOCR = max(0, c.MinTextLenForOCR)
	c.OCRMaxDim = max(100, c.OCRMaxDim)
	c.OCRMinDim = max(32, c.OCRMinDim)
	c.OCRDPI = max(72, c.OCRDPI)
	c.OCRWorkers = max(1, c.OCRWorkers)
	if c.OCRLang == "" {
		c.OCRLang = "eng"
	}
	if c.OCRBackend == "" {
		c.OCRBackend = BackendGosseract
	}
	return c
}

// Validate reports every hard configuration error.
func (c Config) Validate() error {
	var errs []error
	if err := chunking.ValidateWindow(c.ChunkSize, c.ChunkOverlap); err != nil {
		field := "chunk_overlap"
		if c.ChunkSize <= 0 {
			field = "chunk_size"
		}
		errs = append(errs, &ConfigError{Field: field, Reason: err.Error(), Err: err})
	}
	if c.OCRPSM < 0 || c.OCRPSM > 13 {
		errs = append(errs, &ConfigError{Field: "ocr_psm", Reason: fmt.Sprintf("%d outside 0..13", c.OCRPSM)})
	}
	if c.OCREngineMode < 0 || c.OCREngineMode > 3 {
		errs = append(errs, &ConfigError{Field: "ocr_engine_mode", Reason: fmt.Sprintf("%d outside 0..3", c.OCREngineMode)})
	}
	if c.OCRBackend != "" && !slices.Contains([]string{BackendGosseract, BackendCLI}, c.OCRBackend) {
		errs = append(errs, &ConfigError{Field: "ocr_backend", Reason: fmt.Sprintf("unknown backend %q", c.OCRBackend)})
	}
	return errors.Join(errs...)
}
