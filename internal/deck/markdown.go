package deck

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var md = goldmark.New()

// RenderCaptionHTML converts a markdown caption to HTML for the
// slideshow view. Captions are short, so no extensions beyond
// CommonMark are enabled.
func RenderCaptionHTML(caption string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(caption), &buf); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// CaptionText flattens a markdown caption to plain text for PDF export.
func CaptionText(caption string) string {
	src := []byte(caption)
	doc := md.Parser().Parse(text.NewReader(src))

	var buf strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			// separate block-level nodes with a space
			if _, ok := n.(*ast.Paragraph); ok && buf.Len() > 0 {
				buf.WriteByte(' ')
			}
			return ast.WalkContinue, nil
		}
		if t, ok := n.(*ast.Text); ok {
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(buf.String())
}
