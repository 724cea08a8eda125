package common

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

// PrepareSSE sets standard headers for SSE and returns the writer/flusher pair.
func PrepareSSE(c *gin.Context) (gin.ResponseWriter, http.Flusher) {
	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	w := c.Writer
	fl, _ := w.(http.Flusher)
	return w, fl
}

// SSEWriteEvent writes an SSE event with the given name and JSON payload.
func SSEWriteEvent(w http.ResponseWriter, flusher http.Flusher, event string, payload any) error {
	if event != "" {
		if _, err := w.Write([]byte("event: " + event + "\n")); err != nil {
			return err
		}
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return SSEWriteRaw(w, flusher, b)
}

// SSEWriteData writes a data line with JSON payload and no event name.
func SSEWriteData(w http.ResponseWriter, flusher http.Flusher, payload any) error {
	return SSEWriteEvent(w, flusher, "", payload)
}

// SSEWriteRaw writes pre-serialized bytes as a single data line.
func SSEWriteRaw(w http.ResponseWriter, flusher http.Flusher, data []byte) error {
	if _, err := w.Write([]byte("data: ")); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if _, err := w.Write([]byte("\n\n")); err != nil {
		return err
	}
	if flusher != nil {
		flusher.Flush()
	}
	return nil
}

// SSEWriteDone writes the [DONE] terminator.
func SSEWriteDone(w http.ResponseWriter, flusher http.Flusher) error {
	if _, err := w.Write([]byte("data: [DONE]\n\n")); err != nil {
		return err
	}
	if flusher != nil {
		flusher.Flush()
	}
	return nil
}
