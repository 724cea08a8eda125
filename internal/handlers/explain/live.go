package explain

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	ws "github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"slidecast-go/internal/constants"
	"slidecast-go/internal/handlers/common"
	"slidecast-go/internal/logging"
	"slidecast-go/internal/monitoring"
	"slidecast-go/internal/slides"
	"slidecast-go/internal/stats"
)

var liveUpgrader = ws.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || strings.Contains(origin, r.Host)
	},
}

// liveFrame is one WebSocket message on the live stream.
type liveFrame struct {
	Slide *slides.Slide `json:"slide,omitempty"`
	Done  *doneEvent    `json:"done,omitempty"`
	Error string        `json:"error,omitempty"`
}

// Live is the WebSocket variant of the assembled slide stream. Request
// parameters arrive as query values since browsers cannot attach a body
// to a WebSocket handshake.
func (h *Handler) Live(c *gin.Context) {
	params, ok := h.parseQuery(c)
	if !ok {
		return
	}

	conn, err := liveUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote its own response.
		return
	}
	defer conn.Close()

	writeFrame := func(f liveFrame) error {
		_ = conn.SetWriteDeadline(time.Now().Add(constants.WebSocketWriteTimeout))
		return conn.WriteJSON(f)
	}

	ctx, cancel := common.WithUpstreamTimeout(c.Request.Context(), true)
	defer cancel()

	body, err := h.openStream(ctx, params)
	if err != nil {
		_ = writeFrame(liveFrame{Error: err.Error()})
		return
	}
	defer body.Close()

	scanner := common.NewSSEScanner(body)

	var writeErr error
	asm := slides.NewAssembler(func(s slides.Slide) {
		if writeErr != nil {
			return
		}
		slide := s
		writeErr = writeFrame(liveFrame{Slide: &slide})
	})

	var tokens *stats.TokenUsage
	finishReason := ""
	malformed := 0
	failed := false

	for writeErr == nil {
		ev, done, err := scanner.Next()
		if err != nil {
			_ = writeFrame(liveFrame{Error: err.Error()})
			failed = true
			break
		}
		if done {
			break
		}
		if err := asm.PushChunk(ev.Raw); err != nil {
			malformed++
			monitoring.MalformedChunksTotal.Inc()
			continue
		}
		if fr := slides.FinishReason(ev.Raw); fr != "" {
			finishReason = fr
		}
		if tu := stats.ExtractTokenUsage(ev.Raw); tu != nil {
			tokens = tu
		}
	}

	if writeErr == nil && !failed {
		caption, image := asm.Remainder()
		_ = writeFrame(liveFrame{Done: &doneEvent{
			Slides:           asm.Count(),
			FinishReason:     finishReason,
			DiscardedCaption: caption,
			DiscardedImage:   image != nil,
			MalformedSkipped: malformed,
		}})
	}

	success := writeErr == nil && !failed
	if err := h.usage.RecordExplain(c.Request.Context(), params.Model, success, int64(asm.Count()), tokens); err != nil {
		log.WithError(err).Debug("failed to record usage")
	}
	h.publishFinished(c.Request.Context(), params, asm.Count(), success)

	logging.WithReq(c, log.Fields{
		"slides": asm.Count(),
	}).Info("live explain stream finished")

	_ = conn.WriteControl(ws.CloseMessage,
		ws.FormatCloseMessage(ws.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
}

// parseQuery validates query-string explain parameters for the
// WebSocket handshake.
func (h *Handler) parseQuery(c *gin.Context) (*common.ExplainParams, bool) {
	model, slideTarget, _ := h.defaults()

	topic := strings.TrimSpace(c.Query("topic"))
	if topic == "" {
		common.AbortWithError(c, http.StatusBadRequest, "invalid_request_error", "missing required query parameter: topic")
		return nil, false
	}
	if len(topic) > constants.MaxTopicLength {
		common.AbortWithError(c, http.StatusBadRequest, "invalid_request_error", "topic too long")
		return nil, false
	}

	count := slideTarget
	if raw := c.Query("slides"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > constants.MaxSlideTarget {
			common.AbortWithError(c, http.StatusBadRequest, "invalid_request_error", "invalid slides parameter")
			return nil, false
		}
		count = n
	}

	m := c.Query("model")
	if m == "" {
		m = model
	}
	c.Set("model", m)
	c.Set("topic", topic)

	return &common.ExplainParams{
		Topic:  topic,
		Style:  strings.TrimSpace(c.Query("style")),
		Slides: count,
		Model:  m,
	}, true
}
