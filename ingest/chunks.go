package ingest

import (
	"strings"
	"unicode/utf8"

	"github.com/wudi/coursekit/chunking"
	"github.com/wudi/coursekit/model"
)

// materialChunks windows every page separately. Chunk indices continue
// across pages.
func (p *Pipeline) materialChunks(doc *document, pages []model.Page) ([]model.Metadata, []model.Chunk) {
	var (
		meta   []model.Metadata
		chunks []model.Chunk
		idx    int
	)
	for _, pg := range pages {
		for _, text := range p.splitter.Split(pg.MergedText()) {
			chunks = append(chunks, model.MaterialChunk{
				ID:       model.ChunkID(doc.courseID, doc.kind, idx),
				CourseID: doc.courseID,
				Index:    idx,
				Text:     text,
			})
			meta = append(meta, model.Metadata{
				model.KeyPageStart:    pg.Number(),
				model.KeyPageEnd:      pg.Number(),
				model.KeyHasImages:    pg.HasEmbeddedImage,
				model.KeyOCRUsed:      pg.OCRUsed(),
				model.KeyOCRLanguage:  pg.OCRLanguage,
				model.KeyCharLen:      utf8.RuneCountInString(text),
				model.KeyMaterialType: doc.kind.String(),
				model.KeyTopic:        model.Unknown,
				model.KeySourceDigest: doc.digest,
			})
			idx++
		}
	}
	return meta, chunks
}

// examChunks segments the joined page texts into one chunk per question.
func (p *Pipeline) examChunks(doc *document, pages []model.Page) ([]model.Metadata, []model.Chunk, error) {
	texts := make([]string, len(pages))
	var (
		ocrUsed bool
		langs   []string
	)
	for i, pg := range pages {
		texts[i] = pg.MergedText()
		ocrUsed = ocrUsed || pg.OCRUsed()
		if pg.OCRLanguage != "" {
			langs = append(langs, pg.OCRLanguage)
		}
	}
	full := strings.Join(texts, "\n")
	if strings.TrimSpace(full) == "" {
		return nil, nil, &DocumentError{Op: "segment", Err: ErrNoExtractableText}
	}

	questions := p.segmenter.Segment(full)
	meta := make([]model.Metadata, 0, len(questions))
	chunks := make([]model.Chunk, 0, len(questions))
	for idx, q := range questions {
		text := q.Text()
		chunks = append(chunks, model.ExamQuestionChunk{
			ID:           model.ChunkID(doc.courseID, model.MaterialExam, idx),
			CourseID:     doc.courseID,
			Index:        idx,
			Text:         text,
			QuestionType: q.Type,
		})
		page := pageRef(texts, q.Block)
		meta = append(meta, model.Metadata{
			model.KeyQuestionNumber:   idx + 1,
			model.KeyPageStart:        page,
			model.KeyPageEnd:          page,
			model.KeyOCRUsed:          ocrUsed,
			model.KeyHasChoices:       q.HasChoices(),
			model.KeyOptionCount:      len(q.Options),
			model.KeyCharLen:          utf8.RuneCountInString(text),
			model.KeyQuestionType:     q.Type.String(),
			model.KeyTopic:            model.Unknown,
			model.KeyDifficulty:       model.Unknown,
			model.KeyOCRLanguagesUsed: strings.Join(langs, ","),
			model.KeyMaterialType:     doc.kind.String(),
			model.KeySourceDigest:     doc.digest,
		})
	}
	return meta, chunks, nil
}

// pageRef is the 1-based page of block, or nil when unknown.
func pageRef(pages []string, block string) any {
	if n, ok := chunking.FindPageForText(pages, block); ok {
		return n
	}
	return nil
}
