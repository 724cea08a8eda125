package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"slidecast-go/internal/config"
	"slidecast-go/internal/deck"
	"slidecast-go/internal/events"
	"slidecast-go/internal/server"
	"slidecast-go/internal/slides"
	"slidecast-go/internal/stats"
	"slidecast-go/internal/storage"
	upstream "slidecast-go/internal/upstream/gemini"
)

func startStack(t *testing.T, upstreamURL string) (string, storage.Backend) {
	t.Helper()
	mgr, err := config.NewManager("")
	require.NoError(t, err)
	cfg := mgr.Config()
	cfg.Upstream.Endpoint = upstreamURL
	cfg.Upstream.APIKey = "upstream-key"

	backend := storage.NewFileBackend(t.TempDir())
	require.NoError(t, backend.Initialize(context.Background()))
	t.Cleanup(func() { _ = backend.Close() })

	engine := server.BuildEngine(server.Dependencies{
		Config:      mgr,
		Upstream:    upstream.New(cfg),
		Storage:     backend,
		BackendName: "file",
		Usage:       stats.NewUsageStats(backend, 24*time.Hour),
		Hub:         events.NewHub(),
	})
	srv := startTestServer(t, engine)
	t.Cleanup(srv.Close)
	return srv.URL, backend
}

// TestExplainEndToEnd drives the whole loop: the client asks the proxy
// for an explainer, the proxy streams from the fake upstream, and the
// client-side assembler yields completed slides.
func TestExplainEndToEnd(t *testing.T) {
	fake := startTestServer(t, fakeGemini(t, 3))
	defer fake.Close()

	baseURL, _ := startStack(t, fake.URL)

	client := slides.NewClient(baseURL)
	got, err := client.Collect(context.Background(), slides.ExplainRequest{Topic: "why the sky is blue", Slides: 3})
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, s := range got {
		require.Equal(t, i, s.Index)
		require.True(t, strings.HasPrefix(s.Caption, "Slide caption number"))
		require.Equal(t, "image/png", s.Image.MIMEType)
		require.Equal(t, tinyPNG(t), s.Image.Data)
	}
}

// TestServerSideAssemblyEndToEnd exercises the /v1/explain/slides
// surface, then persists and exports the resulting deck over HTTP.
func TestServerSideAssemblyEndToEnd(t *testing.T) {
	fake := startTestServer(t, fakeGemini(t, 2))
	defer fake.Close()

	baseURL, _ := startStack(t, fake.URL)

	resp, err := http.Post(baseURL+"/v1/explain/slides", "application/json",
		strings.NewReader(`{"topic":"tides","slides":2}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, 2, strings.Count(string(body), "event: slide\n"))
	require.Contains(t, string(body), `"slides":2`)

	// Assemble the same stream client-side and save it as a deck.
	client := slides.NewClient(baseURL)
	got, err := client.Collect(context.Background(), slides.ExplainRequest{Topic: "tides", Slides: 2})
	require.NoError(t, err)
	require.Len(t, got, 2)

	savePayload, _ := json.Marshal(map[string]any{
		"topic":  "tides",
		"model":  "gemini-2.0-flash-exp",
		"slides": got,
	})
	resp, err = http.Post(baseURL+"/v1/decks", "application/json", bytes.NewReader(savePayload))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var summary deck.Summary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summary))
	require.Equal(t, 2, summary.SlideCount)

	pdfResp, err := http.Get(baseURL + "/v1/decks/" + summary.ID + "/pdf")
	require.NoError(t, err)
	defer pdfResp.Body.Close()
	require.Equal(t, http.StatusOK, pdfResp.StatusCode)
	prefix := make([]byte, 4)
	_, err = io.ReadFull(pdfResp.Body, prefix)
	require.NoError(t, err)
	require.Equal(t, "%PDF", string(prefix))
}

// TestUsageRecordedEndToEnd checks that a finished stream lands in the
// usage counters with token totals from usageMetadata.
func TestUsageRecordedEndToEnd(t *testing.T) {
	fake := startTestServer(t, fakeGemini(t, 1))
	defer fake.Close()

	baseURL, backend := startStack(t, fake.URL)

	client := slides.NewClient(baseURL)
	_, err := client.Collect(context.Background(), slides.ExplainRequest{Topic: "volcanoes"})
	require.NoError(t, err)

	usage, err := backend.GetUsage(context.Background(), "gemini-2.0-flash-exp")
	require.NoError(t, err)
	require.Equal(t, int64(1), usage["total_requests"])
	require.Equal(t, int64(352), usage["total_tokens"])
}
