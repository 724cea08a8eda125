package slides

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "slidecast-go/internal/errors"
	"slidecast-go/internal/monitoring"

	log "github.com/sirupsen/logrus"
)

// ExplainRequest is the request body accepted by POST /v1/explain.
type ExplainRequest struct {
	Topic  string `json:"topic"`
	Style  string `json:"style,omitempty"`
	Slides int    `json:"slides,omitempty"`
}

// Client is the Go-side consumer of a slidecast explain stream: it
// dials the server, reads the SSE response, and assembles slides.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.httpc = h }
}

// WithAPIKey sets the bearer key sent on explain requests.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) { c.apiKey = key }
}

// NewClient creates a client for the given slidecast server base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		// Streaming responses run for minutes; no client-level timeout.
		httpc: &http.Client{Timeout: 0},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Explain requests a narrative for req.Topic and invokes sink for each
// completed slide, in order, on the calling goroutine. It returns once
// the stream finishes or ctx is cancelled. Chunks whose JSON payload
// does not parse are skipped; everything after them is still processed
// in arrival order.
func (c *Client) Explain(ctx context.Context, req ExplainRequest, sink Sink) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/explain", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return apperrors.MapNetworkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return apperrors.MapHTTPError(resp.StatusCode, payload)
	}

	return c.consume(resp.Body, req.Topic, sink)
}

func (c *Client) consume(body io.Reader, topic string, sink Sink) error {
	asm := NewAssembler(sink)
	reader := NewStreamReader(body)

	for {
		evt, done, err := reader.Next()
		if err != nil {
			return fmt.Errorf("read stream: %w", err)
		}
		if done {
			break
		}
		if streamErr := extractStreamError(evt.Raw); streamErr != nil {
			return streamErr
		}
		if err := asm.PushChunk(evt.Raw); err != nil {
			monitoring.MalformedChunksTotal.Inc()
			log.WithError(err).Debug("skipping malformed chunk")
		}
	}

	if caption, img := asm.Remainder(); caption != "" || img != nil {
		log.WithFields(log.Fields{
			"topic":            topic,
			"trailing_caption": caption != "",
			"trailing_image":   img != nil,
		}).Debug("discarding unpaired trailing fragments")
	}
	return nil
}

// Collect is a convenience wrapper that gathers all slides into a slice.
func (c *Client) Collect(ctx context.Context, req ExplainRequest) ([]Slide, error) {
	var out []Slide
	if err := c.Explain(ctx, req, func(s Slide) { out = append(out, s) }); err != nil {
		return nil, err
	}
	return out, nil
}

// extractStreamError recognizes the error envelope the server emits as
// a terminal SSE event when the upstream fails mid-stream.
func extractStreamError(raw []byte) error {
	var env apperrors.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil
	}
	if env.Error.Message == "" && env.Error.Code == 0 {
		return nil
	}
	status := env.Error.Code
	if status == 0 {
		status = http.StatusBadGateway
	}
	return apperrors.New(status, "stream_error", env.Error.Type, env.Error.Message)
}
