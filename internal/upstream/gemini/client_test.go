package gemini

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"slidecast-go/internal/config"
	apperrors "slidecast-go/internal/errors"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func testConfig(endpoint string) *config.Config {
	cfg := config.Default()
	cfg.Upstream.Endpoint = endpoint
	cfg.Upstream.APIKey = "test-key"
	cfg.Upstream.RetryMax = 2
	return cfg
}

func TestBuildGeneratePayload(t *testing.T) {
	body := BuildGeneratePayload("explain volcanoes")
	require.Equal(t, "explain volcanoes", gjson.GetBytes(body, "contents.0.parts.0.text").String())
	require.Equal(t, "user", gjson.GetBytes(body, "contents.0.role").String())
	mods := gjson.GetBytes(body, "generationConfig.responseModalities").Array()
	require.Len(t, mods, 2)
	require.Equal(t, "TEXT", mods[0].String())
	require.Equal(t, "IMAGE", mods[1].String())
	require.Equal(t, "explain volcanoes", PromptFromPayload(body))
}

func TestBuildModelActionPath(t *testing.T) {
	require.Equal(t, "/v1beta/models/gemini-2.0-flash-exp:streamGenerateContent",
		BuildModelActionPath("gemini-2.0-flash-exp", ActionStreamGenerate))
}

func TestStreamGenerateSendsAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		require.Equal(t, "sse", r.URL.Query().Get("alt"))
		require.Contains(t, r.URL.Path, ":streamGenerateContent")
		_, _ = w.Write([]byte("data: {\"candidates\":[]}\n\n"))
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	body, err := c.StreamGenerate(context.Background(), "gemini-2.0-flash-exp", BuildGeneratePayload("hi"))
	require.NoError(t, err)
	defer body.Close()
	raw, err := io.ReadAll(body)
	require.NoError(t, err)
	require.Contains(t, string(raw), "candidates")
}

func TestRetryOn429ThenSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	out, err := c.Generate(context.Background(), "gemini-2.0-flash-exp", BuildGeneratePayload("hi"))
	require.NoError(t, err)
	require.Contains(t, string(out), "candidates")
	require.Equal(t, int32(2), calls.Load())
}

func TestNoRetryOn400(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad prompt"}}`))
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL))
	_, err := c.Generate(context.Background(), "gemini-2.0-flash-exp", BuildGeneratePayload("hi"))
	require.Error(t, err)
	var apiErr *apperrors.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.HTTPStatus)
	require.Contains(t, apiErr.Message, "bad prompt")
	require.Equal(t, int32(1), calls.Load())
}

func TestRetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Upstream.RetryMax = 1
	c := New(cfg)
	_, err := c.Generate(context.Background(), "gemini-2.0-flash-exp", BuildGeneratePayload("hi"))
	require.Error(t, err)
	require.Equal(t, int32(2), calls.Load())
}

func TestNoCredentialsFails(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.Upstream.APIKey = ""
	cfg.Upstream.RetryOnNetworkError = false
	c := New(cfg)
	_, err := c.Generate(context.Background(), "m", []byte(`{}`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "credentials")
}

func TestParseRetryAfter(t *testing.T) {
	d, ok := parseRetryAfter("5")
	require.True(t, ok)
	require.Equal(t, 5*time.Second, d)

	_, ok = parseRetryAfter("")
	require.False(t, ok)

	d, ok = parseRetryAfter("-3")
	require.True(t, ok)
	require.Equal(t, time.Duration(0), d)

	future := time.Now().Add(30 * time.Second).UTC().Format(time.RFC1123)
	d, ok = parseRetryAfter(future)
	require.True(t, ok)
	require.Greater(t, d, 20*time.Second)
}
