package explain

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	apperrors "slidecast-go/internal/errors"
	"slidecast-go/internal/handlers/common"
	"slidecast-go/internal/logging"
	mw "slidecast-go/internal/middleware"
	"slidecast-go/internal/monitoring"
	"slidecast-go/internal/slides"
	"slidecast-go/internal/stats"
)

// doneEvent closes an assembled slide stream.
type doneEvent struct {
	Slides           int    `json:"slides"`
	FinishReason     string `json:"finish_reason,omitempty"`
	DiscardedCaption string `json:"discarded_caption,omitempty"`
	DiscardedImage   bool   `json:"discarded_image,omitempty"`
	MalformedSkipped int    `json:"malformed_skipped,omitempty"`
}

// ExplainSlides runs the assembler server-side and emits one SSE event
// per completed slide. Thin clients get ready slides without carrying
// the chunk parser themselves.
func (h *Handler) ExplainSlides(c *gin.Context) {
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

	var writeErr error
	asm := slides.NewAssembler(func(s slides.Slide) {
		if writeErr != nil {
			return
		}
		writeErr = common.SSEWriteEvent(writer, flusher, "slide", s)
		mw.RecordSSEEvent(path)
	})

	var tokens *stats.TokenUsage
	finishReason := ""
	malformed := 0
	closeReason := "done"

	for writeErr == nil {
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
	if writeErr != nil {
		closeReason = "client_gone"
	}

	if closeReason != "client_gone" {
		caption, image := asm.Remainder()
		done := doneEvent{
			Slides:           asm.Count(),
			FinishReason:     finishReason,
			DiscardedCaption: caption,
			DiscardedImage:   image != nil,
			MalformedSkipped: malformed,
		}
		_ = common.SSEWriteEvent(writer, flusher, "done", done)
		_ = common.SSEWriteDone(writer, flusher)
	}
	mw.RecordSSEClose(path, closeReason)

	success := closeReason == "done"
	if err := h.usage.RecordExplain(c.Request.Context(), params.Model, success, int64(asm.Count()), tokens); err != nil {
		log.WithError(err).Debug("failed to record usage")
	}
	h.publishFinished(c.Request.Context(), params, asm.Count(), success)

	logging.WithReq(c, log.Fields{
		"slides":    asm.Count(),
		"malformed": malformed,
		"reason":    closeReason,
	}).Info("assembled explain stream finished")
}

// writeStreamError emits the error envelope as an SSE error event. The
// HTTP status is already committed by then, so this is the only channel
// left for surfacing a mid-stream failure.
func writeStreamError(writer gin.ResponseWriter, flusher http.Flusher, err error) {
	var apiErr *apperrors.APIError
	if !errors.As(err, &apiErr) {
		apiErr = apperrors.MapNetworkError(err)
	}
	if apiErr.IsRetryable() {
		apiErr = apiErr.WithDetails(map[string]interface{}{"retryable": true})
	}
	payload, jerr := apiErr.ToJSON()
	if jerr != nil {
		return
	}
	if _, werr := writer.Write([]byte("event: error\n")); werr != nil {
		return
	}
	_ = common.SSEWriteRaw(writer, flusher, payload)
}
