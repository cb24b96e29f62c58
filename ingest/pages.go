package ingest

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/wudi/coursekit/model"
	"github.com/wudi/coursekit/observability"
	"github.com/wudi/coursekit/ocr"
	"golang.org/x/sync/errgroup"
)

// extractPages reads native content page by page, then runs OCR on the pages
// that need it with up to OCRWorkers pages in flight. Results land in their
// page slot so the returned slice is always in page order.
func (p *Pipeline) extractPages(ctx context.Context, doc *document) ([]model.Page, error) {
	n := doc.src.NumPages()
	pages := make([]model.Page, n)
	for i := range pages {
		content, err := doc.src.Page(i)
		if err != nil {
			doc.logger.Debug("native text extraction failed", observability.Int("page", i+1), observability.Err(err))
		}
		pages[i] = model.Page{Index: i, NativeText: content.Text, HasEmbeddedImage: content.HasImages}
		doc.logger.Debug("page extracted",
			observability.Int("page", i+1),
			observability.Int("pages", n),
			observability.Bool("has_images", content.HasImages),
			observability.Int("native_len", utf8.RuneCountInString(content.Text)))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.OCRWorkers)
	for i := range pages {
		if doc.render == nil || !p.classifier.NeedsOCR(pages[i].NativeText) {
			doc.logger.Debug("OCR skipped",
				observability.Int("page", i+1),
				observability.Int("native_len", utf8.RuneCountInString(pages[i].NativeText)),
				observability.Float64("garbage_ratio", ocr.GarbageRatio(pages[i].NativeText)),
				observability.Int("threshold", p.cfg.MinTextLenForOCR))
			continue
		}
		page := &pages[i]
		g.Go(func() error {
			p.ocrPage(gctx, doc, page)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pages, nil
}

// ocrPage renders, straightens and preprocesses one page and records the
// recognised text and language on it. Failures leave the page native-only.
func (p *Pipeline) ocrPage(ctx context.Context, doc *document, page *model.Page) {
	ctx, span := p.tracer.StartSpan(ctx, observability.SpanPage)
	defer span.Finish()
	span.SetTag("page", page.Number())
	span.SetTag("ocr", true)

	log := doc.logger.With(observability.Int("page", page.Number()))
	log.Debug("OCR start", observability.Float64("garbage_ratio", ocr.GarbageRatio(page.NativeText)))
	start := time.Now()

	img, err := doc.render.Render(page.Index, p.cfg.OCRDPI)
	if err != nil {
		log.Warn("page render failed", observability.Err(err))
		return
	}
	img, rotation := p.prep.FixOrientation(ctx, img)

	var preview = img
	if !ocr.LooksLikeGarbage(page.NativeText) {
		preview = nil
	}
	lang := p.languages.Decide(ctx, page.NativeText, preview)
	page.OCRLanguage = lang

	prepared := p.prep.Prepare(img)
	in, err := ocr.InputFromImage(page.Index, prepared,
		ocr.WithLanguages(lang),
		ocr.WithDPI(p.cfg.OCRDPI),
		ocr.WithEngineMode(p.cfg.OCREngineMode),
		ocr.WithTesseractPSM(p.cfg.OCRPSM),
		ocr.WithPreserveInterwordSpaces())
	if err != nil {
		log.Warn("OCR input encoding failed", observability.Err(err))
		return
	}

	_, ocrSpan := p.tracer.StartSpan(ctx, observability.SpanOCR)
	res, err := p.engine.Recognize(ctx, in)
	if err != nil {
		ocrSpan.SetError(err)
		ocrSpan.Finish()
		log.Warn("OCR failed", observability.String("lang", lang), observability.Err(err))
		return
	}
	ocrSpan.Finish()

	page.OCRText = strings.TrimSpace(res.PlainText)
	bounds := prepared.Bounds()
	log.Debug("OCR end",
		observability.Int("ocr_chars", utf8.RuneCountInString(page.OCRText)),
		observability.String("lang", lang),
		observability.Int("rotation", rotation),
		observability.Int("prepared_width", bounds.Dx()),
		observability.Int("prepared_height", bounds.Dy()),
		observability.Duration("duration", time.Since(start)))
	if page.OCRText == "" {
		log.Debug("OCR returned no text")
		return
	}
	if p.cfg.OCRLogText {
		log.Info("OCR text",
			observability.Int("chars", utf8.RuneCountInString(page.OCRText)),
			observability.String("lang", lang),
			observability.String("text", page.OCRText))
	}
}
