package model

// Metadata describes one chunk. Position i of a metadata slice always
// describes position i of the matching chunk slice.
type Metadata map[string]any

// Metadata keys shared by material and exam chunks.
const (
	KeyPageStart    = "page_start"
	KeyPageEnd      = "page_end"
	KeyHasImages    = "has_images"
	KeyOCRUsed      = "ocr_used"
	KeyOCRLanguage  = "ocr_language"
	KeyCharLen      = "char_len"
	KeyMaterialType = "material_type"
	KeyTopic        = "topic"
	KeySourceDigest = "source_digest"

	KeyQuestionNumber   = "question_number"
	KeyHasChoices       = "has_choices"
	KeyOptionCount      = "option_count"
	KeyQuestionType     = "question_type"
	KeyDifficulty       = "difficulty"
	KeyOCRLanguagesUsed = "ocr_languages_used"
)

// Unknown is the placeholder for topic and difficulty until a later stage
// fills them in.
const Unknown = "unknown"

// Int returns the integer stored under key.
func (m Metadata) Int(key string) (int, bool) {
	v, ok := m[key].(int)
	return v, ok
}

// Bool returns the boolean stored under key.
func (m Metadata) Bool(key string) (bool, bool) {
	v, ok := m[key].(bool)
	return v, ok
}

// String returns the string stored under key.
func (m Metadata) String(key string) (string, bool) {
	v, ok := m[key].(string)
	return v, ok
}
