package ingest

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/wudi/coursekit/extractor"
	"github.com/wudi/coursekit/internal/pdftest"
	"github.com/wudi/coursekit/model"
	"github.com/wudi/coursekit/observability"
	"github.com/wudi/coursekit/ocr"
	"github.com/wudi/coursekit/raster"
)

// fakeSource serves fixed native page text.
type fakeSource struct {
	texts  []string
	images []bool
}

func (s fakeSource) NumPages() int { return len(s.texts) }

func (s fakeSource) Page(i int) (extractor.PageContent, error) {
	c := extractor.PageContent{Index: i, Text: s.texts[i]}
	if i < len(s.images) {
		c.HasImages = s.images[i]
	}
	return c, nil
}

func sourceOpener(texts ...string) Option {
	return WithOpener(func([]byte) (PageSource, error) { return fakeSource{texts: texts}, nil })
}

// fakeEngine records inputs and answers by input ID.
type fakeEngine struct {
	mu          sync.Mutex
	answers     map[string]string
	err         error
	engineModes bool
	calls       []ocr.Input
}

func (e *fakeEngine) Name() string { return "fake" }

func (e *fakeEngine) Recognize(_ context.Context, in ocr.Input) (ocr.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, in)
	if e.err != nil {
		return ocr.Result{}, e.err
	}
	return ocr.Result{InputID: in.ID, PlainText: "  " + e.answers[in.ID] + "\n"}, nil
}

func (e *fakeEngine) Probe(context.Context) (ocr.Capabilities, error) {
	return ocr.Capabilities{Engine: "fake", Version: "1.0", Languages: []string{"eng", "deu"}, EngineModes: e.engineModes}, nil
}

func (e *fakeEngine) pageCalls() []ocr.Input {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []ocr.Input
	for _, in := range e.calls {
		if strings.HasPrefix(in.ID, "page-") {
			out = append(out, in)
		}
	}
	return out
}

// fakeRasterizer renders blank pages.
type fakeRasterizer struct {
	mu      sync.Mutex
	openErr error
	opened  int
	closed  int
}

func (r *fakeRasterizer) Name() string { return "fake" }

func (r *fakeRasterizer) Open([]byte) (raster.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.openErr != nil {
		return nil, r.openErr
	}
	r.opened++
	return fakeRenderDoc{r: r}, nil
}

type fakeRenderDoc struct{ r *fakeRasterizer }

func (d fakeRenderDoc) NumPages() int { return 0 }

func (d fakeRenderDoc) Render(int, int) (image.Image, error) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	return img, nil
}

func (d fakeRenderDoc) Close() error {
	d.r.mu.Lock()
	d.r.closed++
	d.r.mu.Unlock()
	return nil
}

// recordingLogger keeps warning messages.
type recordingLogger struct {
	observability.NopLogger
	mu    *sync.Mutex
	warns *[]string
}

func newRecordingLogger() recordingLogger {
	return recordingLogger{mu: &sync.Mutex{}, warns: new([]string)}
}

func (l recordingLogger) Warn(msg string, _ ...observability.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.warns = append(*l.warns, msg)
}

func (l recordingLogger) With(...observability.Field) observability.Logger { return l }

func (l recordingLogger) warned(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, w := range *l.warns {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

func noOCRConfig() Config {
	cfg := DefaultConfig()
	cfg.UseOCR = false
	return cfg
}

func newPipeline(t *testing.T, cfg Config, opts ...Option) *Pipeline {
	t.Helper()
	p, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func TestChunkAndEnrich_CourseMaterial(t *testing.T) {
	data := pdftest.Texts(t,
		strings.Repeat("This is page one with enough text to require chunking. ", 4),
		"Second page is short.")
	cfg := noOCRConfig()
	cfg.ChunkSize = 60
	cfg.ChunkOverlap = 10
	p := newPipeline(t, cfg)

	meta, chunks, err := p.ChunkAndEnrich(context.Background(), bytes.NewReader(data), model.MaterialSlides, 7)
	if err != nil {
		t.Fatalf("ChunkAndEnrich: %v", err)
	}
	if len(chunks) <= 1 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	if len(meta) != len(chunks) {
		t.Fatalf("metadata/chunk length mismatch: %d vs %d", len(meta), len(chunks))
	}
	if !strings.HasSuffix(chunks[0].ChunkID(), "-0") || chunks[0].ChunkID() != "7-slides-0" {
		t.Fatalf("first chunk id = %q", chunks[0].ChunkID())
	}
	if start, _ := meta[0].Int(model.KeyPageStart); start != 1 {
		t.Fatalf("page_start = %v", meta[0][model.KeyPageStart])
	}
	if end, _ := meta[0].Int(model.KeyPageEnd); end != 1 {
		t.Fatalf("page_end = %v", meta[0][model.KeyPageEnd])
	}
	if has, ok := meta[0].Bool(model.KeyHasImages); !ok || has {
		t.Fatalf("has_images = %v", meta[0][model.KeyHasImages])
	}
	for i, c := range chunks {
		mc, ok := c.(model.MaterialChunk)
		if !ok {
			t.Fatalf("chunk %d is %T", i, c)
		}
		if mc.Index != i || mc.CourseID != 7 {
			t.Fatalf("chunk %d has index %d course %d", i, mc.Index, mc.CourseID)
		}
		if n, _ := meta[i].Int(model.KeyCharLen); n != len([]rune(mc.Text)) || n > 60 {
			t.Fatalf("chunk %d char_len %d for %q", i, n, mc.Text)
		}
		if kind, _ := meta[i].String(model.KeyMaterialType); kind != "slides" {
			t.Fatalf("material_type = %q", kind)
		}
		if topic, _ := meta[i].String(model.KeyTopic); topic != model.Unknown {
			t.Fatalf("topic = %q", topic)
		}
		if used, _ := meta[i].Bool(model.KeyOCRUsed); used {
			t.Fatalf("OCR must not be used when disabled")
		}
	}
	last := meta[len(meta)-1]
	if start, _ := last.Int(model.KeyPageStart); start != 2 {
		t.Fatalf("last chunk page = %v", last[model.KeyPageStart])
	}
	digest, _ := meta[0].String(model.KeySourceDigest)
	if digest != Fingerprint(data) {
		t.Fatalf("source_digest = %q", digest)
	}
}

func TestChunkAndEnrich_Exam(t *testing.T) {
	data := pdftest.Texts(t, "1. What is 2+2?\nA) 3\nB) 4\nC) 5\n\n2. Select all prime numbers:\nA) 2\nB) 4\nC) 5\nD) 9")
	p := newPipeline(t, noOCRConfig())

	meta, chunks, err := p.ChunkAndEnrich(context.Background(), bytes.NewReader(data), model.MaterialExam, 3)
	if err != nil {
		t.Fatalf("ChunkAndEnrich: %v", err)
	}
	if len(chunks) != 2 || len(meta) != 2 {
		t.Fatalf("expected 2 chunks, got %d/%d", len(chunks), len(meta))
	}
	want := []model.QuestionType{model.QuestionSingleChoice, model.QuestionMultipleChoice}
	for i, c := range chunks {
		q, ok := c.(model.ExamQuestionChunk)
		if !ok {
			t.Fatalf("chunk %d is %T", i, c)
		}
		if q.QuestionType != want[i] {
			t.Fatalf("chunk %d type %s, want %s", i, q.QuestionType, want[i])
		}
		if !strings.Contains(q.Text, "[ANSWER_KEYS]") || !strings.Contains(q.Text, "[SEP]") {
			t.Fatalf("chunk %d text %q", i, q.Text)
		}
		if has, _ := meta[i].Bool(model.KeyHasChoices); !has {
			t.Fatalf("chunk %d has_choices false", i)
		}
		if n, _ := meta[i].Int(model.KeyQuestionNumber); n != i+1 {
			t.Fatalf("question_number = %d", n)
		}
		if page, _ := meta[i].Int(model.KeyPageStart); page != 1 {
			t.Fatalf("page_start = %v", meta[i][model.KeyPageStart])
		}
	}
	if id := chunks[1].ChunkID(); id != "3-exam-1" {
		t.Fatalf("chunk id = %q", id)
	}
	if n, _ := meta[1].Int(model.KeyOptionCount); n != 4 {
		t.Fatalf("option_count = %d", n)
	}
}

func TestChunkAndEnrich_ExamWithoutText(t *testing.T) {
	data := pdftest.Build(t, pdftest.Page{WithImage: true})
	p := newPipeline(t, noOCRConfig())

	_, _, err := p.ChunkAndEnrich(context.Background(), bytes.NewReader(data), model.MaterialExam, 1)
	if !errors.Is(err, ErrNoExtractableText) || !errors.Is(err, ErrDocument) {
		t.Fatalf("expected no-text document error, got %v", err)
	}
}

func TestChunkAndEnrich_BlankMaterialHasNoChunks(t *testing.T) {
	p := newPipeline(t, noOCRConfig(), sourceOpener("", "   "))
	meta, chunks, err := p.ChunkAndEnrich(context.Background(), bytes.NewReader([]byte("x")), model.MaterialNotes, 1)
	if err != nil || len(meta) != 0 || len(chunks) != 0 {
		t.Fatalf("blank notes = %v %v %v", meta, chunks, err)
	}
}

func TestChunkAndEnrich_UnsupportedKind(t *testing.T) {
	p := newPipeline(t, noOCRConfig())
	_, _, err := p.ChunkAndEnrich(context.Background(), failingReader{}, model.MaterialKind("lecture"), 1)
	if !errors.Is(err, ErrUnsupportedKind) || !errors.Is(err, model.ErrUnknownMaterialKind) {
		t.Fatalf("expected unsupported kind, got %v", err)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error)       { return 0, errors.New("read called") }
func (failingReader) Seek(int64, int) (int64, error) { return 0, errors.New("seek called") }

func TestChunkAndEnrich_UnreadableDocument(t *testing.T) {
	p := newPipeline(t, noOCRConfig())
	_, _, err := p.ChunkAndEnrich(context.Background(), strings.NewReader("definitely not a pdf"), model.MaterialNotes, 1)
	var derr *DocumentError
	if !errors.As(err, &derr) || derr.Op != "open" || !errors.Is(err, ErrDocument) {
		t.Fatalf("expected open DocumentError, got %v", err)
	}

	_, _, err = p.ChunkAndEnrich(context.Background(), failingReader{}, model.MaterialNotes, 1)
	if !errors.As(err, &derr) || derr.Op != "read" {
		t.Fatalf("expected read DocumentError, got %v", err)
	}

	empty := newPipeline(t, noOCRConfig(), sourceOpener())
	_, _, err = empty.ChunkAndEnrich(context.Background(), strings.NewReader("x"), model.MaterialNotes, 1)
	if !errors.Is(err, extractor.ErrNoPages) {
		t.Fatalf("expected ErrNoPages, got %v", err)
	}
}

func TestChunkAndEnrich_RereadsFromStart(t *testing.T) {
	data := pdftest.Texts(t, "Rewind me please, the reader was already consumed.")
	p := newPipeline(t, noOCRConfig())
	r := bytes.NewReader(data)
	if _, err := io.Copy(io.Discard, r); err != nil {
		t.Fatalf("drain: %v", err)
	}
	_, chunks, err := p.ChunkAndEnrich(context.Background(), r, model.MaterialNotes, 1)
	if err != nil || len(chunks) != 1 {
		t.Fatalf("chunks = %d err = %v", len(chunks), err)
	}
}

func TestChunkAndEnrich_OCRMergesText(t *testing.T) {
	engine := &fakeEngine{answers: map[string]string{"page-0": "Recognised words"}}
	rast := &fakeRasterizer{}
	cfg := DefaultConfig()
	cfg.OCRLang = "eng"
	cfg.MinTextLenForOCR = 10
	p := newPipeline(t, cfg, WithEngine(engine), WithRasterizer(rast),
		sourceOpener("", "Plenty of native text that is long enough to skip OCR."))
	if !p.OCRReady() {
		t.Fatalf("fake engine should pass the probe")
	}

	meta, chunks, err := p.ChunkAndEnrich(context.Background(), strings.NewReader("pdf"), model.MaterialNotes, 9)
	if err != nil {
		t.Fatalf("ChunkAndEnrich: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].ChunkText() != "Recognised words" {
		t.Fatalf("chunk 0 text = %q", chunks[0].ChunkText())
	}
	if used, _ := meta[0].Bool(model.KeyOCRUsed); !used {
		t.Fatalf("ocr_used should be true for page 1")
	}
	if lang, _ := meta[0].String(model.KeyOCRLanguage); lang != "eng" {
		t.Fatalf("ocr_language = %q", lang)
	}
	if used, _ := meta[1].Bool(model.KeyOCRUsed); used {
		t.Fatalf("page 2 has enough native text")
	}
	if lang, _ := meta[1].String(model.KeyOCRLanguage); lang != "" {
		t.Fatalf("page 2 ocr_language = %q", lang)
	}

	calls := engine.pageCalls()
	if len(calls) != 1 {
		t.Fatalf("expected one page OCR call, got %d", len(calls))
	}
	in := calls[0]
	if in.EngineMode != 1 || in.DPI != 300 || in.Metadata[ocr.VarPageSegMode] != "3" || in.Metadata[ocr.VarPreserveInterwordSpace] != "1" {
		t.Fatalf("unexpected OCR input: %+v", in)
	}
	if rast.opened != 1 || rast.closed != 1 {
		t.Fatalf("render document opened %d closed %d", rast.opened, rast.closed)
	}
}

func TestChunkAndEnrich_OCRFailureDegrades(t *testing.T) {
	engine := &fakeEngine{err: errors.New("tesseract crashed")}
	p := newPipeline(t, DefaultConfig(), WithEngine(engine), WithRasterizer(&fakeRasterizer{}),
		sourceOpener("short"))

	meta, chunks, err := p.ChunkAndEnrich(context.Background(), strings.NewReader("pdf"), model.MaterialSlides, 1)
	if err != nil {
		t.Fatalf("OCR failure must not be fatal: %v", err)
	}
	if len(chunks) != 1 || chunks[0].ChunkText() != "short" {
		t.Fatalf("chunks = %+v", chunks)
	}
	if used, _ := meta[0].Bool(model.KeyOCRUsed); used {
		t.Fatalf("failed OCR is not used")
	}
	if lang, _ := meta[0].String(model.KeyOCRLanguage); lang != "eng+deu" {
		t.Fatalf("attempted language = %q", lang)
	}
}

func TestChunkAndEnrich_RenderOpenFailureDisablesOCR(t *testing.T) {
	engine := &fakeEngine{}
	rast := &fakeRasterizer{openErr: errors.New("mupdf missing")}
	p := newPipeline(t, DefaultConfig(), WithEngine(engine), WithRasterizer(rast), sourceOpener("", "x"))

	_, chunks, err := p.ChunkAndEnrich(context.Background(), strings.NewReader("pdf"), model.MaterialNotes, 1)
	if err != nil {
		t.Fatalf("ChunkAndEnrich: %v", err)
	}
	if len(engine.calls) != 0 {
		t.Fatalf("OCR must not run without a render document")
	}
	if len(chunks) != 1 || chunks[0].ChunkText() != "x" {
		t.Fatalf("chunks = %+v", chunks)
	}
}

func TestChunkAndEnrich_UnavailableEngineDisablesOCR(t *testing.T) {
	rast := &fakeRasterizer{}
	p := newPipeline(t, DefaultConfig(), WithEngine(ocr.Unavailable("not installed")), WithRasterizer(rast), sourceOpener(""))
	if p.OCRReady() {
		t.Fatalf("unavailable engine must disable OCR")
	}
	if _, _, err := p.ChunkAndEnrich(context.Background(), strings.NewReader("pdf"), model.MaterialNotes, 1); err != nil {
		t.Fatalf("ChunkAndEnrich: %v", err)
	}
	if rast.opened != 0 {
		t.Fatalf("render document opened without OCR")
	}
}

func TestChunkAndEnrich_ParallelOCRKeepsPageOrder(t *testing.T) {
	const pages = 6
	answers := make(map[string]string, pages)
	texts := make([]string, pages)
	for i := 0; i < pages; i++ {
		id := "page-" + string(rune('0'+i))
		answers[id] = "text of " + id
	}
	engine := &fakeEngine{answers: answers}
	cfg := DefaultConfig()
	cfg.OCRWorkers = 3
	p := newPipeline(t, cfg, WithEngine(engine), WithRasterizer(&fakeRasterizer{}), sourceOpener(texts...))

	_, chunks, err := p.ChunkAndEnrich(context.Background(), strings.NewReader("pdf"), model.MaterialNotes, 1)
	if err != nil {
		t.Fatalf("ChunkAndEnrich: %v", err)
	}
	if len(chunks) != pages {
		t.Fatalf("expected %d chunks, got %d", pages, len(chunks))
	}
	for i, c := range chunks {
		want := "text of page-" + string(rune('0'+i))
		if c.ChunkText() != want {
			t.Fatalf("chunk %d = %q, want %q", i, c.ChunkText(), want)
		}
	}
}

func TestChunkAndEnrich_ExamOCRLanguages(t *testing.T) {
	engine := &fakeEngine{answers: map[string]string{"page-1": "2. Explain entropy."}}
	p := newPipeline(t, DefaultConfig(), WithEngine(engine), WithRasterizer(&fakeRasterizer{}),
		sourceOpener("1. Define the term heat capacity in your own words, please.", ""))

	meta, chunks, err := p.ChunkAndEnrich(context.Background(), strings.NewReader("pdf"), model.MaterialExam, 2)
	if err != nil {
		t.Fatalf("ChunkAndEnrich: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(chunks))
	}
	for i, m := range meta {
		if used, _ := m.Bool(model.KeyOCRUsed); !used {
			t.Fatalf("meta %d: ocr_used should reflect any page", i)
		}
		if langs, _ := m.String(model.KeyOCRLanguagesUsed); langs != "eng+deu" {
			t.Fatalf("meta %d: ocr_languages_used = %q", i, langs)
		}
		if typ, _ := m.String(model.KeyQuestionType); typ != string(model.QuestionTextAnswer) {
			t.Fatalf("meta %d: question_type = %q", i, typ)
		}
	}
	if page, _ := meta[1].Int(model.KeyPageStart); page != 2 {
		t.Fatalf("OCR question page = %v", meta[1][model.KeyPageStart])
	}
}

func TestChunkAndEnrich_UnknownPageIsNil(t *testing.T) {
	// The question spans two pages, so its leading text is on neither page.
	p := newPipeline(t, noOCRConfig(), sourceOpener("1. A question that", "continues here"))
	meta, _, err := p.ChunkAndEnrich(context.Background(), strings.NewReader("pdf"), model.MaterialExam, 1)
	if err != nil {
		t.Fatalf("ChunkAndEnrich: %v", err)
	}
	if v, ok := meta[0][model.KeyPageStart]; !ok || v != nil {
		t.Fatalf("page_start = %v (present %v), want nil", v, ok)
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]byte("a"))
	if len(a) != 64 || a == Fingerprint([]byte("b")) || a != Fingerprint([]byte("a")) {
		t.Fatalf("fingerprint %q", a)
	}
}

func TestNew_EngineModeSupport(t *testing.T) {
	logger := newRecordingLogger()
	p := newPipeline(t, DefaultConfig(), WithEngine(&fakeEngine{}), WithLogger(logger))
	if caps := p.Capabilities(); caps.Engine != "fake" || caps.Version != "1.0" || caps.EngineModes {
		t.Fatalf("capabilities = %+v", caps)
	}
	if !logger.warned("engine mode") {
		t.Fatalf("expected a warning for an engine that ignores the engine mode")
	}

	logger = newRecordingLogger()
	p = newPipeline(t, DefaultConfig(), WithEngine(&fakeEngine{engineModes: true}), WithLogger(logger))
	if !p.Capabilities().EngineModes {
		t.Fatalf("engine mode support not recorded")
	}
	if logger.warned("engine mode") {
		t.Fatalf("no warning expected when the engine applies the engine mode")
	}
}

func TestChunkAndEnrich_ExamFromRenderedPDF(t *testing.T) {
	data := pdftest.Texts(t, "Final exam\n1. Name the capital of France.\nA) Paris\nB) Lyon\n2. Explain why the sky is blue.")
	p := newPipeline(t, noOCRConfig())

	meta, chunks, err := p.ChunkAndEnrich(context.Background(), bytes.NewReader(data), model.MaterialExam, 5)
	if err != nil {
		t.Fatalf("ChunkAndEnrich: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(chunks))
	}
	first := chunks[0].(model.ExamQuestionChunk)
	if first.Text != "1. Name the capital of France. [ANSWER_KEYS] A) Paris [SEP] B) Lyon" {
		t.Fatalf("first question = %q", first.Text)
	}
	if first.QuestionType != model.QuestionSingleChoice {
		t.Fatalf("first question type = %s", first.QuestionType)
	}
	if n, _ := meta[0].Int(model.KeyOptionCount); n != 2 {
		t.Fatalf("option_count = %d", n)
	}
	if page, _ := meta[1].Int(model.KeyPageStart); page != 1 {
		t.Fatalf("page_start = %v", meta[1][model.KeyPageStart])
	}
}
