package decks

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"slidecast-go/internal/deck"
	"slidecast-go/internal/storage"
)

const tinyPNGB64 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

func newDeckRouter(t *testing.T) (*gin.Engine, storage.Backend) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := storage.NewFileBackend(t.TempDir())
	require.NoError(t, store.Initialize(context.Background()))
	t.Cleanup(func() { _ = store.Close() })

	h := New(store, "file", nil)
	r := gin.New()
	r.POST("/v1/decks", h.Save)
	r.GET("/v1/decks", h.List)
	r.GET("/v1/decks/:id", h.Get)
	r.DELETE("/v1/decks/:id", h.Delete)
	r.GET("/v1/decks/:id/html", h.ViewHTML)
	r.GET("/v1/decks/:id/pdf", h.ExportPDF)
	return r, store
}

func saveBody(topic string) string {
	body, _ := json.Marshal(map[string]any{
		"topic": topic,
		"model": "gemini-2.0-flash-exp",
		"slides": []map[string]any{
			{"caption": "One", "image": map[string]any{"mime_type": "image/png", "data": tinyPNGB64}},
			{"caption": "Two", "image": map[string]any{"mime_type": "image/png", "data": tinyPNGB64}},
		},
	})
	return string(body)
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(rec, req)
	return rec
}

func TestSaveAndGetDeck(t *testing.T) {
	r, _ := newDeckRouter(t)

	rec := doJSON(r, http.MethodPost, "/v1/decks", saveBody("glaciers"))
	require.Equal(t, http.StatusCreated, rec.Code)

	var summary deck.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	require.NotEmpty(t, summary.ID)
	require.Equal(t, 2, summary.SlideCount)

	rec = doJSON(r, http.MethodGet, "/v1/decks/"+summary.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got deck.Deck
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "glaciers", got.Topic)
	require.Len(t, got.Slides, 2)
	raw, err := base64.StdEncoding.DecodeString(tinyPNGB64)
	require.NoError(t, err)
	require.Equal(t, raw, got.Slides[0].Image.Data)
}

func TestSaveDeckRejectsEmptySlides(t *testing.T) {
	r, _ := newDeckRouter(t)
	rec := doJSON(r, http.MethodPost, "/v1/decks", `{"topic":"x","slides":[]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "INVALID_ARGUMENT")
}

func TestListDecks(t *testing.T) {
	r, _ := newDeckRouter(t)
	rec := doJSON(r, http.MethodGet, "/v1/decks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"decks":[],"count":0}`, rec.Body.String())

	require.Equal(t, http.StatusCreated, doJSON(r, http.MethodPost, "/v1/decks", saveBody("a")).Code)
	require.Equal(t, http.StatusCreated, doJSON(r, http.MethodPost, "/v1/decks", saveBody("b")).Code)

	rec = doJSON(r, http.MethodGet, "/v1/decks", "")
	var listing struct {
		Decks []deck.Summary `json:"decks"`
		Count int            `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.Equal(t, 2, listing.Count)
}

func TestDeleteDeck(t *testing.T) {
	r, _ := newDeckRouter(t)

	rec := doJSON(r, http.MethodPost, "/v1/decks", saveBody("to delete"))
	var summary deck.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))

	rec = doJSON(r, http.MethodDelete, "/v1/decks/"+summary.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(r, http.MethodGet, "/v1/decks/"+summary.ID, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "NOT_FOUND")
}

func TestDeleteMissingDeck(t *testing.T) {
	r, _ := newDeckRouter(t)
	rec := doJSON(r, http.MethodDelete, "/v1/decks/nope", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestViewHTML(t *testing.T) {
	r, _ := newDeckRouter(t)

	rec := doJSON(r, http.MethodPost, "/v1/decks", saveBody("show me"))
	var summary deck.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))

	rec = doJSON(r, http.MethodGet, "/v1/decks/"+summary.ID+"/html", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	require.Contains(t, body, "<h1>show me</h1>")
	require.Contains(t, body, "data:image/png;base64,"+tinyPNGB64)
}

func TestExportPDF(t *testing.T) {
	r, _ := newDeckRouter(t)

	rec := doJSON(r, http.MethodPost, "/v1/decks", saveBody("pdf me"))
	var summary deck.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))

	rec = doJSON(r, http.MethodGet, "/v1/decks/"+summary.ID+"/pdf", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	require.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
}
