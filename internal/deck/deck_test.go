package deck

import (
	"bytes"
	"encoding/base64"
	"testing"

	"slidecast-go/internal/slides"

	"github.com/stretchr/testify/require"
)

// 1x1 PNG, enough for the registerer to read real dimensions.
const tinyPNGB64 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(tinyPNGB64)
	require.NoError(t, err)
	return raw
}

func sampleDeck(t *testing.T) *Deck {
	img := slides.Image{MIMEType: "image/png", Data: tinyPNG(t)}
	return New("How rainbows form", "watercolor", "gemini-2.0-flash-exp", []slides.Slide{
		{Index: 0, Caption: "Sunlight enters a raindrop and bends.", Image: img},
		{Index: 1, Caption: "Each color bends a *slightly* different amount.", Image: img},
	})
}

func TestNewAndValidate(t *testing.T) {
	d := sampleDeck(t)
	require.NotEmpty(t, d.ID)
	require.False(t, d.CreatedAt.IsZero())
	require.NoError(t, d.Validate())

	s := d.Summarize()
	require.Equal(t, d.ID, s.ID)
	require.Equal(t, 2, s.SlideCount)
}

func TestValidateRejections(t *testing.T) {
	d := sampleDeck(t)
	d.Slides = nil
	require.Error(t, d.Validate())

	d = sampleDeck(t)
	d.Topic = ""
	require.Error(t, d.Validate())

	d = sampleDeck(t)
	d.Slides[1].Caption = ""
	require.Error(t, d.Validate())

	d = sampleDeck(t)
	d.Slides[0].Image.Data = nil
	require.Error(t, d.Validate())
}

func TestRenderCaptionHTML(t *testing.T) {
	html, err := RenderCaptionHTML("light *bends* in water")
	require.NoError(t, err)
	require.Contains(t, html, "<em>bends</em>")
}

func TestCaptionText(t *testing.T) {
	require.Equal(t, "light bends in water", CaptionText("light *bends* in **water**"))
	require.Equal(t, "two lines joined", CaptionText("two lines\njoined"))
	require.Equal(t, "a link", CaptionText("[a link](https://example.com)"))
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePDF(sampleDeck(t), &buf))
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")), "output is not a PDF")
	require.Greater(t, buf.Len(), 500)
}

func TestWritePDFUnsupportedMIME(t *testing.T) {
	d := sampleDeck(t)
	d.Slides[0].Image.MIMEType = "image/webp"
	require.Error(t, WritePDF(d, &bytes.Buffer{}))
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(sampleDeck(t), &buf))
	out := buf.String()
	require.Contains(t, out, "# How rainbows form")
	require.Contains(t, out, "data:image/png;base64,")
	require.Contains(t, out, "![slide 1]")
}

func TestWriteHTML(t *testing.T) {
	d := sampleDeck(t)
	d.Topic = "Rainbows <3"
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(d, &buf))
	out := buf.String()
	require.Contains(t, out, "<h1>Rainbows &lt;3</h1>")
	require.Contains(t, out, "<em>slightly</em>")
	require.Contains(t, out, "data:image/png;base64,")
	require.Contains(t, out, `alt="slide 2"`)
}
