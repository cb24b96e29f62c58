// Package ingest turns an uploaded PDF into chunks plus index-aligned
// metadata. Course material (slides, notes) is cut into overlapping windows
// per page; exams are segmented into whole questions with their options.
//
// Pages whose native text is missing or garbled are rendered and run through
// OCR when an engine and a rasterizer are available. Every OCR-side failure
// degrades to native text for that page; only unreadable documents, exams
// without text and invalid input are fatal.
package ingest

import (
	"context"
	"encoding/hex"
	"fmt"
	"image"
	"io"
	"time"

	"github.com/wudi/coursekit/chunking"
	"github.com/wudi/coursekit/extractor"
	"github.com/wudi/coursekit/imageprep"
	"github.com/wudi/coursekit/model"
	"github.com/wudi/coursekit/observability"
	"github.com/wudi/coursekit/ocr"
	"github.com/wudi/coursekit/raster"
	"golang.org/x/crypto/blake2b"
)

// PageSource yields native page content. *extractor.Document implements it.
type PageSource interface {
	NumPages() int
	Page(i int) (extractor.PageContent, error)
}

// Opener parses a document for native extraction.
type Opener func(data []byte) (PageSource, error)

func openExtractor(data []byte) (PageSource, error) {
	return extractor.OpenBytes(data)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(l observability.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithTracer sets the tracer used for document and page spans.
func WithTracer(t observability.Tracer) Option {
	return func(p *Pipeline) {
		if t != nil {
			p.tracer = t
		}
	}
}

// WithEngine overrides the OCR engine selected by Config.OCRBackend.
func WithEngine(e ocr.Engine) Option {
	return func(p *Pipeline) { p.engine = e }
}

// WithRasterizer overrides the process-wide default rasterizer.
func WithRasterizer(r raster.Rasterizer) Option {
	return func(p *Pipeline) { p.rasterizer = r }
}

// WithOpener replaces native page extraction.
func WithOpener(o Opener) Option {
	return func(p *Pipeline) {
		if o != nil {
			p.open = o
		}
	}
}

// Pipeline is safe for concurrent use; calls share no mutable state.
type Pipeline struct {
	cfg        Config
	splitter   *chunking.Splitter
	segmenter  *chunking.Segmenter
	classifier ocr.Classifier
	engine     ocr.Engine
	rasterizer raster.Rasterizer
	prep       *imageprep.Preprocessor
	languages  ocr.LanguageSelector
	open       Opener
	logger     observability.Logger
	tracer     observability.Tracer

	// ocrReady is decided once by the capability probe in New.
	ocrReady     bool
	capabilities ocr.Capabilities
}

// New validates cfg, wires the collaborators and probes the OCR engine.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	splitter, err := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, &ConfigError{Field: "chunk_size", Reason: err.Error(), Err: err}
	}
	p := &Pipeline{
		cfg:        cfg,
		splitter:   splitter,
		segmenter:  chunking.NewSegmenter(),
		classifier: ocr.Classifier{MinTextLen: cfg.MinTextLenForOCR},
		open:       openExtractor,
		logger:     observability.NopLogger{},
		tracer:     observability.NopTracer(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.engine == nil {
		p.engine = ocr.Lookup(cfg.OCRBackend)
	}
	if p.rasterizer == nil {
		p.rasterizer = raster.Default()
	}
	p.prep = imageprep.New(cfg.OCRMinDim, cfg.OCRMaxDim, orientationFunc(p.engine), p.logger)
	p.languages = ocr.LanguageSelector{Preferred: cfg.OCRLang, Engine: p.engine, Logger: p.logger}
	p.ocrReady = p.probe(context.Background())
	return p, nil
}

// Config returns the normalised configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// OCRReady reports whether OCR survived the capability probe.
func (p *Pipeline) OCRReady() bool { return p.ocrReady }

// Capabilities returns what the probe learned about the OCR engine.
func (p *Pipeline) Capabilities() ocr.Capabilities { return p.capabilities }

var requiredLanguages = []string{ocr.LangEnglish, ocr.LangGerman}

func (p *Pipeline) probe(ctx context.Context) bool {
	if !p.cfg.UseOCR {
		return false
	}
	caps, err := ocr.Probe(ctx, p.engine)
	p.capabilities = caps
	if err != nil {
		p.logger.Warn("OCR engine not available; disabling OCR",
			observability.String("engine", p.engine.Name()), observability.Err(err))
		return false
	}
	p.logger.Info("OCR engine detected",
		observability.String("engine", caps.Engine),
		observability.String("version", caps.Version),
		observability.Strings("languages", caps.Languages))
	for _, lang := range requiredLanguages {
		if !caps.HasLanguage(lang) {
			p.logger.Warn("OCR language missing; OCR quality may suffer", observability.String("language", lang))
		}
	}
	if !caps.EngineModes && p.cfg.OCREngineMode != ocr.DefaultEngineMode {
		p.logger.Warn("OCR engine ignores the engine mode; select the cli backend to apply it",
			observability.String("engine", caps.Engine),
			observability.Int("ocr_engine_mode", p.cfg.OCREngineMode))
	}
	return true
}

func orientationFunc(engine ocr.Engine) imageprep.OrientationFunc {
	det, ok := engine.(ocr.OrientationDetector)
	if !ok {
		return nil
	}
	return func(ctx context.Context, preview image.Image) (int, error) {
		in, err := ocr.InputFromImage(-1, preview)
		if err != nil {
			return 0, err
		}
		in.ID = "orientation"
		return det.DetectOrientation(ctx, in)
	}
}

// Fingerprint is the hex BLAKE2b-256 digest of a document.
func Fingerprint(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ChunkAndEnrich reads the whole PDF from r and returns per-chunk metadata
// and chunks of equal length, index-aligned. Material kinds produce
// model.MaterialChunk values, exams model.ExamQuestionChunk values.
func (p *Pipeline) ChunkAndEnrich(ctx context.Context, r io.ReadSeeker, kind model.MaterialKind, courseID int64) (meta []model.Metadata, chunks []model.Chunk, err error) {
	if !kind.Valid() {
		return nil, nil, fmt.Errorf("%w %q: %w", ErrUnsupportedKind, string(kind), model.ErrUnknownMaterialKind)
	}
	ctx, span := p.tracer.StartSpan(ctx, observability.SpanDocument)
	defer func() {
		if err != nil {
			span.SetError(err)
		}
		span.Finish()
	}()
	span.SetTag("kind", kind.String())
	span.SetTag("course_id", courseID)

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, nil, &DocumentError{Op: "read", Err: err}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, &DocumentError{Op: "read", Err: err}
	}
	src, err := p.open(data)
	if err != nil {
		return nil, nil, &DocumentError{Op: "open", Err: err}
	}
	if src.NumPages() == 0 {
		return nil, nil, &DocumentError{Op: "open", Err: extractor.ErrNoPages}
	}

	doc := &document{
		kind:     kind,
		courseID: courseID,
		digest:   Fingerprint(data),
		src:      src,
		logger: p.logger.With(
			observability.String("material_type", kind.String()),
			observability.Int64("course_id", courseID)),
	}
	if p.ocrReady {
		render, err := p.rasterizer.Open(data)
		if err != nil {
			doc.logger.Warn("cannot open PDF for rendering; disabling OCR for this file", observability.Err(err))
		} else {
			doc.render = render
			defer func() {
				if cerr := render.Close(); cerr != nil {
					doc.logger.Debug("render document close failed", observability.Err(cerr))
				}
			}()
		}
	}

	doc.logger.Info("chunking start",
		observability.Int("pages", src.NumPages()),
		observability.Bool("use_ocr", p.ocrReady),
		observability.Int("max_images_per_page", p.cfg.MaxImagesPerPage),
		observability.Int("chunk_size", p.splitter.Size()),
		observability.Int("chunk_overlap", p.splitter.Overlap()))
	start := time.Now()

	pages, err := p.extractPages(ctx, doc)
	if err != nil {
		return nil, nil, err
	}
	if kind == model.MaterialExam {
		meta, chunks, err = p.examChunks(doc, pages)
	} else {
		meta, chunks = p.materialChunks(doc, pages)
	}
	if err != nil {
		return nil, nil, err
	}

	doc.logger.Info("chunking complete",
		observability.Int("chunks", len(chunks)),
		observability.Duration("duration", time.Since(start)))
	return meta, chunks, nil
}

// document is the per-call state of one ingestion.
type document struct {
	kind     model.MaterialKind
	courseID int64
	digest   string
	src      PageSource
	// render is nil when OCR is disabled for this file.
	render raster.Document
	logger observability.Logger
}
