package tests

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func startTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	func() {
		defer func() {
			if r := recover(); r != nil {
				t.Skipf("httptest server unavailable: %v", r)
			}
		}()
		srv = httptest.NewServer(handler)
	}()
	return srv
}

// tinyPNGB64 is a valid 1x1 PNG so PDF export can decode what the fake
// upstream emits.
const tinyPNGB64 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

// tinyPNG returns the decoded image bytes.
func tinyPNG(t *testing.T) []byte {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(tinyPNGB64)
	if err != nil {
		t.Fatalf("decode test png: %v", err)
	}
	return raw
}

// fakeGemini imitates the upstream streamGenerateContent SSE surface.
// Each call emits the configured caption/image alternation and a final
// usageMetadata chunk.
func fakeGemini(t *testing.T, slideCount int) http.Handler {
	t.Helper()
	imageB64 := tinyPNGB64

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("alt") != "sse" {
			http.Error(w, "expected alt=sse", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		flusher, _ := w.(http.Flusher)

		writeChunk := func(parts []map[string]any, extra map[string]any) {
			payload := map[string]any{
				"candidates": []any{map[string]any{
					"content": map[string]any{"parts": parts},
				}},
			}
			for k, v := range extra {
				payload[k] = v
			}
			b, _ := json.Marshal(payload)
			w.Write([]byte("data: "))
			w.Write(b)
			w.Write([]byte("\n\n"))
			if flusher != nil {
				flusher.Flush()
			}
		}

		for i := 0; i < slideCount; i++ {
			writeChunk([]map[string]any{{"text": "Slide caption "}}, nil)
			writeChunk([]map[string]any{
				{"text": "number " + string(rune('1'+i))},
				{"inlineData": map[string]any{"mimeType": "image/png", "data": imageB64}},
			}, nil)
		}
		writeChunk([]map[string]any{{"text": ""}}, map[string]any{
			"usageMetadata": map[string]any{
				"promptTokenCount":     12,
				"candidatesTokenCount": 340,
				"totalTokenCount":      352,
			},
		})
		w.Write([]byte("data: [DONE]\n\n"))
		if flusher != nil {
			flusher.Flush()
		}
	})
}
