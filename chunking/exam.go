package chunking

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/wudi/coursekit/model"
)

// Separator tokens of the canonical exam chunk text. Consumers split on them
// verbatim.
const (
	AnswerKeysToken = "[ANSWER_KEYS]"
	SepToken        = "[SEP]"
)

// PageSnippetLen is how many leading characters of a block are searched for
// when attributing it to a page.
const PageSnippetLen = 200

// Format describes how an exam document marks questions and options.
type Format struct {
	// QuestionMarker must match at a line start; it is anchored with \A.
	QuestionMarker *regexp.Regexp
	// OptionMarker matches a trimmed line that opens the answer options.
	OptionMarker *regexp.Regexp
	// MultiAnswerHints are lower-case phrases that make a stem multiple-choice.
	MultiAnswerHints []string
}

// DefaultFormat recognises "1." / "2)" numbered questions and "A)" / "B."
// options.
func DefaultFormat() Format {
	return Format{
		QuestionMarker:   regexp.MustCompile(`\A\s*\d+\s*[.)]\s+`),
		OptionMarker:     regexp.MustCompile(`^[A-H][).]\s+`),
		MultiAnswerHints: []string{"select all", "choose all", "multiple", "two correct", "three correct"},
	}
}

// Question is one parsed exam question.
type Question struct {
	// Block is the raw, trimmed block the question was parsed from.
	Block   string
	Stem    string
	Options []string
	Type    model.QuestionType
}

// HasChoices reports whether the question carries answer options.
func (q Question) HasChoices() bool { return len(q.Options) > 0 }

// Text is the canonical chunk text of q.
func (q Question) Text() string { return EncodeQuestion(q.Stem, q.Options) }

// Segmenter splits exam text into questions.
type Segmenter struct {
	Format Format
}

// NewSegmenter returns a Segmenter using DefaultFormat.
func NewSegmenter() *Segmenter { return &Segmenter{Format: DefaultFormat()} }

// Segment parses every question block of text in order.
func (s *Segmenter) Segment(text string) []Question {
	blocks := s.SplitQuestions(text)
	out := make([]Question, 0, len(blocks))
	for _, block := range blocks {
		stem, options := s.ExtractQuestionAndAnswers(block)
		out = append(out, Question{
			Block:   block,
			Stem:    stem,
			Options: options,
			Type:    s.InferQuestionType(stem, options),
		})
	}
	return out
}

// SplitQuestions cuts text at every line start where a question marker
// matches. Text before the first marker is dropped and empty blocks are
// skipped. Without any marker the whole trimmed text is one block.
func (s *Segmenter) SplitQuestions(text string) []string {
	starts := questionStarts(text, s.Format.QuestionMarker)
	if len(starts) == 0 {
		return []string{strings.TrimSpace(text)}
	}
	blocks := make([]string, 0, len(starts))
	for i, start := range starts {
		end := len(text)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		if block := strings.TrimSpace(text[start:end]); block != "" {
			blocks = append(blocks, block)
		}
	}
	return blocks
}

// questionStarts returns every line-start offset at which marker matches.
// Candidates may overlap, so each line start is tested on its own.
func questionStarts(text string, marker *regexp.Regexp) []int {
	var starts []int
	for pos := 0; pos < len(text); {
		if marker.MatchString(text[pos:]) {
			starts = append(starts, pos)
		}
		nl := strings.IndexByte(text[pos:], '\n')
		if nl < 0 {
			break
		}
		pos += nl + 1
	}
	return starts
}

// ExtractQuestionAndAnswers splits a block into its stem and option lines.
// Lines are trimmed and blank lines dropped; the first line matching the
// option marker starts the options. options is nil for free-text questions.
func (s *Segmenter) ExtractQuestionAndAnswers(block string) (stem string, options []string) {
	lines := nonBlankLines(block)
	if len(lines) == 0 {
		return "", nil
	}
	split := -1
	for i, line := range lines {
		if s.Format.OptionMarker.MatchString(line) {
			split = i
			break
		}
	}
	if split < 0 {
		return strings.Join(lines, " "), nil
	}
	return strings.Join(lines[:split], " "), lines[split:]
}

func nonBlankLines(block string) []string {
	raw := strings.FieldsFunc(block, isLineBreak)
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', 0x1c, 0x1d, 0x1e, 0x85, 0x2028, 0x2029:
		return true
	}
	return false
}

// InferQuestionType classifies a question from its stem and options.
func (s *Segmenter) InferQuestionType(stem string, options []string) model.QuestionType {
	if len(options) == 0 {
		return model.QuestionTextAnswer
	}
	hint := strings.ToLower(stem)
	for _, h := range s.Format.MultiAnswerHints {
		if strings.Contains(hint, h) {
			return model.QuestionMultipleChoice
		}
	}
	return model.QuestionSingleChoice
}

// EncodeQuestion renders "{stem} [ANSWER_KEYS] {opt1} [SEP] {opt2} ...", or
// just the stem without options.
func EncodeQuestion(stem string, options []string) string {
	if len(options) == 0 {
		return stem
	}
	return stem + " " + AnswerKeysToken + " " + strings.Join(options, " "+SepToken+" ")
}

// DecodeQuestion reverses EncodeQuestion, trimming every part.
func DecodeQuestion(text string) (stem string, options []string) {
	head, tail, ok := strings.Cut(text, AnswerKeysToken)
	if !ok {
		return strings.TrimSpace(text), nil
	}
	for _, opt := range strings.Split(tail, SepToken) {
		options = append(options, strings.TrimSpace(opt))
	}
	return strings.TrimSpace(head), options
}

// FindPageForText returns the 1-based number of the first page whose text
// contains the leading PageSnippetLen characters of the trimmed snippet.
// ok is false for blank snippets or when no page matches.
func FindPageForText(pages []string, snippet string) (page int, ok bool) {
	snippet = strings.TrimSpace(snippet)
	if snippet == "" {
		return 0, false
	}
	preview := snippet
	if utf8.RuneCountInString(snippet) > PageSnippetLen {
		preview = string([]rune(snippet)[:PageSnippetLen])
	}
	for i, text := range pages {
		if strings.Contains(text, preview) {
			return i + 1, true
		}
	}
	return 0, false
}
