package extractor

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// PageText returns the native text of page i with one line per text row,
// top to bottom. Pages without a content stream yield an empty string.
func (d *Document) PageText(i int) (text string, err error) {
	page, err := d.page(i)
	if err != nil {
		return "", err
	}
	if page.V.IsNull() {
		return "", nil
	}
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("extract text from page %d: %v", i+1, rec)
		}
	}()
	return glyphsToText(page.Content().Text), nil
}

// glyphsToText lays out positioned glyphs as lines of text.
func glyphsToText(glyphs []pdf.Text) string {
	return rowsToText(groupRows(glyphRuns(glyphs)))
}

// glyphRuns merges consecutive glyphs that continue rightwards on the same
// baseline into one fragment. Stream order is kept inside a run: fonts
// without width tables report every glyph of a show operation at the same X.
func glyphRuns(glyphs []pdf.Text) []pdf.Text {
	var (
		runs []pdf.Text
		cur  pdf.Text
		b    strings.Builder
		open bool
		last rune
	)
	flush := func() {
		if open {
			cur.S = b.String()
			runs = append(runs, cur)
			b.Reset()
		}
	}
	for _, g := range glyphs {
		if g.S == "" {
			continue
		}
		first, _ := utf8.DecodeRuneInString(g.S)
		if open && sameLine(cur, g) && g.X >= cur.X+cur.W-fontSize(cur) {
			end := cur.X + cur.W
			if cur.W > 0 && g.X-end > fontSize(cur)*0.25 && !unicode.IsSpace(last) && !unicode.IsSpace(first) {
				b.WriteByte(' ')
			}
			b.WriteString(g.S)
			if e := g.X + g.W; e > end {
				cur.W = e - cur.X
			}
		} else {
			flush()
			cur, open = g, true
			b.WriteString(g.S)
		}
		last, _ = utf8.DecodeLastRuneInString(g.S)
	}
	flush()
	return runs
}

// groupRows collects runs sharing a baseline into rows, top to bottom, each
// ordered left to right.
func groupRows(runs []pdf.Text) pdf.Rows {
	sorted := append([]pdf.Text(nil), runs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y > sorted[j].Y })

	var (
		rows pdf.Rows
		rowY float64
	)
	for _, r := range sorted {
		if n := len(rows); n > 0 && math.Abs(rowY-r.Y) <= fontSize(r)*0.5 {
			rows[n-1].Content = append(rows[n-1].Content, r)
			continue
		}
		rowY = r.Y
		rows = append(rows, &pdf.Row{Position: int64(math.Round(r.Y)), Content: pdf.TextHorizontal{r}})
	}
	for _, row := range rows {
		sort.SliceStable(row.Content, func(i, j int) bool { return row.Content[i].X < row.Content[j].X })
	}
	return rows
}

func sameLine(a, b pdf.Text) bool {
	return math.Abs(a.Y-b.Y) <= fontSize(a)*0.3
}

func fontSize(t pdf.Text) float64 {
	if t.FontSize <= 0 {
		return 10
	}
	return t.FontSize
}

func rowsToText(rows pdf.Rows) string {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		var b strings.Builder
		for j, t := range row.Content {
			if j > 0 && needsSpace(row.Content[j-1], t) {
				b.WriteByte(' ')
			}
			b.WriteString(t.S)
		}
		lines = append(lines, strings.TrimRightFunc(b.String(), unicode.IsSpace))
	}
	return strings.Join(lines, "\n")
}

// needsSpace guesses whether two fragments on the same row were separated
// by a visual gap. Fragment widths are not always reported, so a missing
// width is estimated from the glyph count.
func needsSpace(prev, next pdf.Text) bool {
	if prev.S == "" || next.S == "" {
		return false
	}
	last, _ := utf8.DecodeLastRuneInString(prev.S)
	first, _ := utf8.DecodeRuneInString(next.S)
	if unicode.IsSpace(last) || unicode.IsSpace(first) {
		return false
	}
	size := fontSize(prev)
	width := prev.W
	if width <= 0 {
		width = float64(utf8.RuneCountInString(prev.S)) * size * 0.5
	}
	return next.X-(prev.X+width) > size*0.25
}
