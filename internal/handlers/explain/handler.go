package explain

import (
	"context"
	"errors"
	"io"
	"net/http"

	"slidecast-go/internal/config"
	apperrors "slidecast-go/internal/errors"
	"slidecast-go/internal/events"
	"slidecast-go/internal/handlers/common"
	"slidecast-go/internal/prompt"
	"slidecast-go/internal/stats"
	upstream "slidecast-go/internal/upstream/gemini"

	"github.com/gin-gonic/gin"
)

// Generator is the upstream surface the handler needs. Satisfied by
// upstream/gemini.Client.
type Generator interface {
	StreamGenerate(ctx context.Context, model string, body []byte) (io.ReadCloser, error)
}

// Handler serves the explain endpoints: raw SSE passthrough, server-side
// slide assembly, and the WebSocket variant.
type Handler struct {
	cfg    *config.Manager
	client Generator
	usage  *stats.UsageStats
	hub    *events.Hub
}

func New(cfg *config.Manager, client Generator, usage *stats.UsageStats, hub *events.Hub) *Handler {
	return &Handler{cfg: cfg, client: client, usage: usage, hub: hub}
}

func (h *Handler) defaults() (model string, slideTarget int, style string) {
	gen := h.cfg.Config().Generation
	return gen.Model, gen.SlideTarget, gen.Style
}

// openStream builds the explainer prompt and dials upstream.
func (h *Handler) openStream(ctx context.Context, params *common.ExplainParams) (io.ReadCloser, error) {
	style := params.Style
	if style == "" {
		_, _, style = h.defaults()
	}
	p := prompt.Explain(params.Topic, style, params.Slides)
	payload := upstream.BuildGeneratePayload(p)
	return h.client.StreamGenerate(ctx, params.Model, payload)
}

// abortUpstreamError maps an upstream failure onto the error envelope.
func abortUpstreamError(c *gin.Context, err error) {
	var apiErr *apperrors.APIError
	if errors.As(err, &apiErr) {
		common.AbortWithAPIError(c, apiErr)
		return
	}
	common.AbortWithAPIError(c, apperrors.MapNetworkError(err))
}

func (h *Handler) parse(c *gin.Context) (*common.ExplainParams, bool) {
	model, slideTarget, _ := h.defaults()
	params, err := common.ParseExplainRequest(c, model, slideTarget)
	if err != nil {
		var verr *common.ValidationError
		if errors.As(err, &verr) {
			common.AbortWithAPIError(c, verr.APIError())
		} else {
			common.AbortWithError(c, http.StatusBadRequest, "invalid_request_error", err.Error())
		}
		return nil, false
	}
	return params, true
}

func (h *Handler) publishFinished(ctx context.Context, params *common.ExplainParams, slides int, success bool) {
	if h.hub == nil {
		return
	}
	h.hub.Publish(ctx, events.TopicExplainFinished, map[string]any{
		"topic":   params.Topic,
		"model":   params.Model,
		"slides":  slides,
		"success": success,
	}, nil)
}
