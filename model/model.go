// Package model holds the records produced by the ingestion pipeline: pages,
// chunks and the per-chunk metadata that travels with them to an index.
package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMaterialKind is returned when a material kind tag is not one of
// slides, notes or exam.
var ErrUnknownMaterialKind = errors.New("unknown material kind")

// MaterialKind tags an uploaded document.
type MaterialKind string

const (
	MaterialSlides MaterialKind = "slides"
	MaterialNotes  MaterialKind = "notes"
	MaterialExam   MaterialKind = "exam"
)

// MaterialKinds lists every supported kind in a stable order.
func MaterialKinds() []MaterialKind {
	return []MaterialKind{MaterialSlides, MaterialNotes, MaterialExam}
}

// ParseMaterialKind maps a case-insensitive tag onto a MaterialKind.
func ParseMaterialKind(s string) (MaterialKind, error) {
	kind := MaterialKind(strings.ToLower(strings.TrimSpace(s)))
	if !kind.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownMaterialKind, s)
	}
	return kind, nil
}

// Valid reports whether k is a supported kind.
func (k MaterialKind) Valid() bool {
	switch k {
	case MaterialSlides, MaterialNotes, MaterialExam:
		return true
	}
	return false
}

// IsCourseMaterial reports whether k goes through fixed-size chunking.
func (k MaterialKind) IsCourseMaterial() bool {
	return k == MaterialSlides || k == MaterialNotes
}

func (k MaterialKind) String() string { return string(k) }

// QuestionType classifies an exam question.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple-choice"
	QuestionSingleChoice   QuestionType = "single-choice"
	QuestionTextAnswer     QuestionType = "text-answer"
)

func (q QuestionType) String() string { return string(q) }

// Page is the per-page extraction result. It is built once per document pass
// and not modified afterwards.
type Page struct {
	// Index is zero-based.
	Index            int
	NativeText       string
	HasEmbeddedImage bool
	// OCRText is empty when OCR was skipped or produced nothing.
	OCRText string
	// OCRLanguage is the language handed to the engine, empty if OCR did not run.
	OCRLanguage string
}

// Number returns the 1-based page number.
func (p Page) Number() int { return p.Index + 1 }

// OCRUsed reports whether OCR contributed text to the page.
func (p Page) OCRUsed() bool { return p.OCRText != "" }

// MergedText joins native and OCR text with a newline and trims the result.
// Without OCR text the native text is returned untouched.
func (p Page) MergedText() string {
	if p.OCRText == "" {
		return p.NativeText
	}
	return strings.TrimSpace(p.NativeText + "\n" + p.OCRText)
}

// ChunkID forms the deterministic chunk identifier
// "{course_id}-{material_kind}-{chunk_index}".
func ChunkID(courseID int64, kind MaterialKind, index int) string {
	return fmt.Sprintf("%d-%s-%d", courseID, kind, index)
}

// Chunk is implemented by MaterialChunk and ExamQuestionChunk only.
type Chunk interface {
	ChunkID() string
	ChunkCourseID() int64
	ChunkIndex() int
	ChunkText() string
	isChunk()
}

// MaterialChunk is a fixed-size window of slides or notes text.
type MaterialChunk struct {
	ID       string `json:"id"`
	CourseID int64  `json:"course_id"`
	Index    int    `json:"chunk_index"`
	Text     string `json:"text"`
}

func (c MaterialChunk) ChunkID() string      { return c.ID }
func (c MaterialChunk) ChunkCourseID() int64 { return c.CourseID }
func (c MaterialChunk) ChunkIndex() int      { return c.Index }
func (c MaterialChunk) ChunkText() string    { return c.Text }
func (MaterialChunk) isChunk()               {}

// ExamQuestionChunk holds one question with its encoded answer options.
type ExamQuestionChunk struct {
	ID           string       `json:"id"`
	CourseID     int64        `json:"course_id"`
	Index        int          `json:"chunk_index"`
	Text         string       `json:"text"`
	QuestionType QuestionType `json:"question_type"`
}

func (c ExamQuestionChunk) ChunkID() string      { return c.ID }
func (c ExamQuestionChunk) ChunkCourseID() int64 { return c.CourseID }
func (c ExamQuestionChunk) ChunkIndex() int      { return c.Index }
func (c ExamQuestionChunk) ChunkText() string    { return c.Text }
func (ExamQuestionChunk) isChunk()               {}
