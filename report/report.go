// Package report renders ingestion results for people and tools: indented
// JSON, a Markdown table, or an HTML page built from that Markdown.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/wudi/coursekit/model"
	treeblood "github.com/wyatt915/goldmark-treeblood"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Format selects the output encoding.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat accepts json, markdown (or md) and html.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unknown report format %q", s)
}

// Document is one ingestion result.
type Document struct {
	Source   string             `json:"source"`
	Kind     model.MaterialKind `json:"material_type"`
	CourseID int64              `json:"course_id"`
	Metadata []model.Metadata   `json:"-"`
	Chunks   []model.Chunk      `json:"-"`
}

type jsonEntry struct {
	Chunk    model.Chunk    `json:"chunk"`
	Metadata model.Metadata `json:"metadata"`
}

type jsonDocument struct {
	Document
	Count   int         `json:"count"`
	Entries []jsonEntry `json:"chunks"`
}

// Write renders doc to w in the given format.
func Write(w io.Writer, format Format, doc Document) error {
	if len(doc.Metadata) != len(doc.Chunks) {
		return fmt.Errorf("report: %d metadata entries for %d chunks", len(doc.Metadata), len(doc.Chunks))
	}
	switch format {
	case FormatJSON:
		return writeJSON(w, doc)
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(doc))
		return err
	case FormatHTML:
		return writeHTML(w, doc)
	}
	return fmt.Errorf("unknown report format %q", format)
}

func writeJSON(w io.Writer, doc Document) error {
	out := jsonDocument{Document: doc, Count: len(doc.Chunks), Entries: make([]jsonEntry, len(doc.Chunks))}
	for i := range doc.Chunks {
		out.Entries[i] = jsonEntry{Chunk: doc.Chunks[i], Metadata: doc.Metadata[i]}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}

// Markdown renders doc as a heading, a summary list and one table row per
// chunk.
func Markdown(doc Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", escapeCell(titleOf(doc)))
	fmt.Fprintf(&b, "- Material type: %s\n", doc.Kind)
	fmt.Fprintf(&b, "- Course: %d\n", doc.CourseID)
	fmt.Fprintf(&b, "- Chunks: %d\n\n", len(doc.Chunks))
	if len(doc.Chunks) == 0 {
		return b.String()
	}

	b.WriteString("| # | ID | Pages | OCR | Details | Text |\n")
	b.WriteString("|---|----|-------|-----|---------|------|\n")
	for i, c := range doc.Chunks {
		m := doc.Metadata[i]
		ocrUsed, _ := m.Bool(model.KeyOCRUsed)
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s |\n",
			c.ChunkIndex(),
			escapeCell(c.ChunkID()),
			pages(m),
			yesNo(ocrUsed),
			escapeCell(details(c, m)),
			escapeCell(c.ChunkText()))
	}
	return b.String()
}

func writeHTML(w io.Writer, doc Document) error {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			treeblood.MathML(),
		),
	)
	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(doc)), &body); err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	_, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n%s</body>\n</html>\n",
		html.EscapeString(titleOf(doc)), body.String())
	return err
}

func titleOf(doc Document) string {
	if doc.Source != "" {
		return doc.Source
	}
	return fmt.Sprintf("Course %d %s", doc.CourseID, doc.Kind)
}

func pages(m model.Metadata) string {
	start, ok := m.Int(model.KeyPageStart)
	if !ok {
		return "?"
	}
	if end, ok := m.Int(model.KeyPageEnd); ok && end != start {
		return fmt.Sprintf("%d-%d", start, end)
	}
	return fmt.Sprint(start)
}

// details lists the chunk-kind specific metadata as key=value pairs.
func details(c model.Chunk, m model.Metadata) string {
	var parts []string
	if q, ok := c.(model.ExamQuestionChunk); ok {
		parts = append(parts, "type="+q.QuestionType.String())
		if n, ok := m.Int(model.KeyOptionCount); ok {
			parts = append(parts, fmt.Sprintf("options=%d", n))
		}
	}
	if lang, ok := m.String(model.KeyOCRLanguage); ok && lang != "" {
		parts = append(parts, "lang="+lang)
	}
	if has, ok := m.Bool(model.KeyHasImages); ok && has {
		parts = append(parts, "images")
	}
	return strings.Join(parts, ", ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// Table cells cannot span lines.
var cellEscaper = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ", "\r", " ")

func escapeCell(s string) string {
	return cellEscaper.Replace(strings.TrimSpace(s))
}
