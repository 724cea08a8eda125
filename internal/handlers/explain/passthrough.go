package explain

import (
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"slidecast-go/internal/handlers/common"
	"slidecast-go/internal/logging"
	mw "slidecast-go/internal/middleware"
	"slidecast-go/internal/stats"
)

// Explain streams raw upstream chunks to the client as SSE. Nothing is
// buffered beyond the current event; the assembler is the client's job
// on this surface.
func (h *Handler) Explain(c *gin.Context) {
	params, ok := h.parse(c)
	if !ok {
		return
	}

	ctx, cancel := common.WithUpstreamTimeout(c.Request.Context(), true)
	defer cancel()

	body, err := h.openStream(ctx, params)
	if err != nil {
		abortUpstreamError(c, err)
		return
	}
	defer body.Close()

	path := c.FullPath()
	writer, flusher := common.PrepareSSE(c)
	scanner := common.NewSSEScanner(body)

	var tokens *stats.TokenUsage
	imageParts := 0
	eventCount := 0
	closeReason := "done"

	for {
		ev, done, err := scanner.Next()
		if err != nil {
			logging.WithReq(c, nil).WithError(err).Warn("upstream stream aborted")
			writeStreamError(writer, flusher, err)
			closeReason = "error"
			break
		}
		if done {
			break
		}

		raw := ev.Raw
		// Unwrap the response envelope so clients see one chunk shape.
		if inner := gjson.GetBytes(raw, "response"); inner.Exists() && inner.IsObject() {
			raw = []byte(inner.Raw)
		}
		if err := common.SSEWriteRaw(writer, flusher, raw); err != nil {
			closeReason = "client_gone"
			break
		}
		eventCount++
		mw.RecordSSEEvent(path)

		imageParts += countImageParts(raw)
		if tu := stats.ExtractTokenUsage(raw); tu != nil {
			tokens = tu
		}
	}

	if closeReason == "done" {
		_ = common.SSEWriteDone(writer, flusher)
	}
	mw.RecordSSEClose(path, closeReason)

	success := closeReason == "done"
	if err := h.usage.RecordExplain(c.Request.Context(), params.Model, success, int64(imageParts), tokens); err != nil {
		log.WithError(err).Debug("failed to record usage")
	}
	h.publishFinished(c.Request.Context(), params, imageParts, success)

	logging.WithReq(c, log.Fields{
		"events": eventCount,
		"images": imageParts,
		"reason": closeReason,
	}).Info("explain stream finished")
}

// countImageParts counts inline image parts without decoding them.
func countImageParts(raw []byte) int {
	n := 0
	gjson.GetBytes(raw, "candidates.0.content.parts").ForEach(func(_, part gjson.Result) bool {
		if part.Get("inlineData.data").String() != "" {
			n++
		}
		return true
	})
	return n
}
