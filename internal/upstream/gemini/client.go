package gemini

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"slidecast-go/internal/config"
	"slidecast-go/internal/constants"
	apperrors "slidecast-go/internal/errors"
	"slidecast-go/internal/logging"
	mw "slidecast-go/internal/middleware"
	"slidecast-go/internal/monitoring/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
)

// Client is a thin HTTP client for the Generative Language API. It is
// an external collaborator: no response parsing happens here beyond
// error mapping; stream bodies are handed back to the caller untouched.
type Client struct {
	cfg    *config.Config
	cli    *http.Client
	tokens oauth2.TokenSource // optional, preferred over the API key when set
}

func durationOrDefault(seconds int, fallback time.Duration) time.Duration {
	if seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}

func New(cfg *config.Config) *Client {
	dialTO := durationOrDefault(cfg.Upstream.DialTimeoutSec, constants.DefaultDialTimeout)
	tlsTO := durationOrDefault(cfg.Upstream.TLSHandshakeTimeoutSec, constants.DefaultTLSHandshakeTimeout)
	hdrTO := durationOrDefault(cfg.Upstream.ResponseHeaderTimeoutSec, constants.DefaultResponseHeaderTimeout)

	tr := &http.Transport{
		Proxy: getProxyFunc(cfg.Upstream.ProxyURL),
		DialContext: (&net.Dialer{
			Timeout:   dialTO,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   tlsTO,
		ResponseHeaderTimeout: hdrTO,
		ExpectContinueTimeout: constants.DefaultExpectContinueTimeout,
		MaxIdleConns:          constants.BaseMaxIdleConns,
		MaxIdleConnsPerHost:   constants.BaseMaxIdleConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
	}
	// Timeout stays 0: streaming responses outlive any sane fixed value.
	return &Client{cfg: cfg, cli: &http.Client{Transport: tr, Timeout: 0}}
}

// getProxyFunc returns the proxy function based on configuration.
func getProxyFunc(proxyURL string) func(*http.Request) (*url.URL, error) {
	if proxyURL != "" {
		if parsedURL, err := url.Parse(proxyURL); err == nil {
			return http.ProxyURL(parsedURL)
		}
	}
	return http.ProxyFromEnvironment
}

// WithTokenSource switches the client to OAuth bearer authentication.
func (c *Client) WithTokenSource(ts oauth2.TokenSource) *Client {
	c.tokens = ts
	return c
}

// StreamGenerate opens a streaming generation call and returns the SSE
// body. The caller owns closing it. Retries happen only before the
// first byte of a successful response.
func (c *Client) StreamGenerate(ctx context.Context, model string, body []byte) (io.ReadCloser, error) {
	u := strings.TrimRight(c.cfg.Upstream.Endpoint, "/") + BuildModelActionPath(model, ActionStreamGenerate) + "?alt=sse"
	resp, err := c.post(ctx, u, model, body)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Generate performs a non-streaming generation call and returns the
// full response body.
func (c *Client) Generate(ctx context.Context, model string, body []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.UpstreamGenerateTimeout)
	defer cancel()
	u := strings.TrimRight(c.cfg.Upstream.Endpoint, "/") + BuildModelActionPath(model, ActionGenerate)
	resp, err := c.post(ctx, u, model, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// post sends the request with retry. On return either err is non-nil,
// or resp has status 200 and the caller owns resp.Body.
func (c *Client) post(ctx context.Context, url, model string, body []byte) (*http.Response, error) {
	spanCtx, span := tracing.StartSpan(ctx, "upstream/gemini", "Gemini.Post",
		trace.WithAttributes(
			attribute.String("http.method", http.MethodPost),
			attribute.String("http.url", url),
			attribute.String("gen_ai.request.model", model),
		))
	defer span.End()
	ctx = spanCtx

	maxRetries := c.cfg.Upstream.RetryMax
	if maxRetries < 0 {
		maxRetries = 0
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		start := time.Now()
		resp, err := c.doOnce(ctx, url, body)
		status := getStatus(resp)
		mw.RecordUpstream(model, status, time.Since(start))
		span.AddEvent("attempt", trace.WithAttributes(
			attribute.Int("http.status_code", status),
			attribute.Int("retry.count", attempt),
		))

		if err == nil && status == http.StatusOK {
			span.SetStatus(codes.Ok, "")
			return resp, nil
		}

		retry, wait := c.shouldRetry(resp, err, attempt)
		if !retry || attempt >= maxRetries {
			if resp != nil {
				payload, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
				_ = resp.Body.Close()
				apiErr := apperrors.MapHTTPError(status, payload)
				span.SetStatus(codes.Error, fmt.Sprintf("http_status=%d", status))
				return nil, apiErr
			}
			if err == nil {
				err = lastErr
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, apperrors.MapNetworkError(err)
		}

		if resp != nil {
			_ = resp.Body.Close()
		}
		lastErr = err
		mw.RecordUpstreamRetry(model, retryReason(status, err))
		log.WithFields(log.Fields{
			"model":   model,
			"status":  status,
			"kind":    logging.ErrorKind(status, err != nil),
			"attempt": attempt + 1,
			"wait_ms": wait.Milliseconds(),
		}).Warn("retrying upstream request")

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, apperrors.MapNetworkError(ctx.Err())
		}
	}
}

func (c *Client) doOnce(ctx context.Context, url string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if err := c.authorize(req); err != nil {
		return nil, err
	}
	return c.cli.Do(req)
}

func (c *Client) authorize(req *http.Request) error {
	if c.tokens != nil {
		tok, err := c.tokens.Token()
		if err != nil {
			return fmt.Errorf("oauth token: %w", err)
		}
		tok.SetAuthHeader(req)
		return nil
	}
	if key := c.cfg.Upstream.APIKey; key != "" {
		req.Header.Set("x-goog-api-key", key)
		return nil
	}
	return fmt.Errorf("no upstream credentials configured")
}

func getStatus(resp *http.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}

func (c *Client) shouldRetry(resp *http.Response, err error, attempt int) (bool, time.Duration) {
	// Never retry on context cancellation/deadline.
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false, 0
		}
		if c.cfg.Upstream.RetryOnNetworkError {
			return true, c.nextBackoff(attempt)
		}
		return false, 0
	}
	if resp == nil {
		return false, 0
	}
	code := resp.StatusCode
	if code == http.StatusTooManyRequests {
		if d, ok := parseRetryAfter(resp.Header.Get("Retry-After")); ok {
			return true, d
		}
		return true, c.nextBackoff(attempt)
	}
	if c.cfg.Upstream.RetryOn5xx && code >= 500 && code <= 599 {
		if code == http.StatusServiceUnavailable {
			if d, ok := parseRetryAfter(resp.Header.Get("Retry-After")); ok {
				return true, d
			}
		}
		return true, c.nextBackoff(attempt)
	}
	if code == http.StatusRequestTimeout || code == http.StatusTooEarly {
		return true, c.nextBackoff(attempt)
	}
	return false, 0
}

func retryReason(status int, err error) string {
	if err != nil {
		return "network"
	}
	switch {
	case status == 429:
		return "429"
	case status >= 500:
		return "5xx"
	default:
		return "other"
	}
}
