package main

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"slidecast-go/internal/deck"
	"slidecast-go/internal/slides"
)

const tinyPNGB64 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

func writeTestDeck(t *testing.T, dir string) string {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(tinyPNGB64)
	require.NoError(t, err)

	d := &deck.Deck{
		ID:        "test-deck",
		Topic:     "test topic",
		Model:     "gemini-2.0-flash-exp",
		CreatedAt: time.Now().UTC(),
		Slides: []slides.Slide{
			{Index: 0, Caption: "Caption one", Image: slides.Image{MIMEType: "image/png", Data: raw}},
		},
	}
	data, err := json.Marshal(d)
	require.NoError(t, err)

	path := filepath.Join(dir, "deck.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func runApp(t *testing.T, args ...string) error {
	t.Helper()
	deckID, inputPath, outputPath, format = "", "", "", ""
	app := &cli.App{Commands: []*cli.Command{exportCommand}}
	return app.Run(append([]string{"deckexport"}, args...))
}

func TestExportMarkdownFromFile(t *testing.T) {
	dir := t.TempDir()
	in := writeTestDeck(t, dir)
	out := filepath.Join(dir, "deck.md")

	require.NoError(t, runApp(t, "export", "--input", in, "--output", out, "--format", "markdown"))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Contains(t, string(data), "Caption one")
}

func TestExportPDFFromFile(t *testing.T) {
	dir := t.TempDir()
	in := writeTestDeck(t, dir)
	out := filepath.Join(dir, "deck.pdf")

	require.NoError(t, runApp(t, "export", "--input", in, "--output", out, "--format", "pdf"))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.True(t, len(data) > 4 && string(data[:4]) == "%PDF")
}

func TestExportRejectsAmbiguousSource(t *testing.T) {
	require.Error(t, runApp(t, "export", "--format", "pdf"))
	require.Error(t, runApp(t, "export", "--deck", "x", "--input", "y"))
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	in := writeTestDeck(t, dir)
	require.Error(t, runApp(t, "export", "--input", in, "--format", "docx"))
}
