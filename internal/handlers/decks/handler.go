package decks

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"slidecast-go/internal/deck"
	"slidecast-go/internal/events"
	"slidecast-go/internal/handlers/common"
	"slidecast-go/internal/logging"
	"slidecast-go/internal/monitoring"
	"slidecast-go/internal/slides"
	"slidecast-go/internal/storage"
)

// Handler serves deck persistence and export routes.
type Handler struct {
	store       storage.Backend
	backendName string
	hub         *events.Hub
}

func New(store storage.Backend, backendName string, hub *events.Hub) *Handler {
	return &Handler{store: store, backendName: backendName, hub: hub}
}

type saveDeckRequest struct {
	Topic  string         `json:"topic"`
	Style  string         `json:"style"`
	Model  string         `json:"model"`
	Slides []slides.Slide `json:"slides"`
}

// Save persists an assembled deck. The server assigns id and timestamp;
// slide indexes are normalized to their position in the payload.
func (h *Handler) Save(c *gin.Context) {
	var req saveDeckRequest
	if err := common.DecodeJSONBody(c, &req); err != nil {
		common.AbortWithError(c, http.StatusBadRequest, "invalid_request_error", err.Error())
		return
	}

	for i := range req.Slides {
		req.Slides[i].Index = i
	}
	d := deck.New(strings.TrimSpace(req.Topic), strings.TrimSpace(req.Style), req.Model, req.Slides)
	if err := d.Validate(); err != nil {
		common.AbortWithError(c, http.StatusBadRequest, "invalid_request_error", err.Error())
		return
	}

	if err := h.store.SaveDeck(c.Request.Context(), d); err != nil {
		var conflict *storage.ErrConflict
		if errors.As(err, &conflict) {
			common.AbortWithError(c, http.StatusConflict, "conflict", "deck already exists")
			return
		}
		logging.WithReq(c, nil).WithError(err).Error("failed to save deck")
		common.AbortWithError(c, http.StatusInternalServerError, "storage_error", "failed to save deck")
		return
	}
	monitoring.DecksSavedTotal.WithLabelValues(h.backendName).Inc()
	if h.hub != nil {
		h.hub.Publish(c.Request.Context(), events.TopicDeckSaved, d.Summarize(), nil)
	}

	c.JSON(http.StatusCreated, d.Summarize())
}

// List returns summaries of all stored decks, newest first.
func (h *Handler) List(c *gin.Context) {
	summaries, err := h.store.ListDecks(c.Request.Context())
	if err != nil {
		logging.WithReq(c, nil).WithError(err).Error("failed to list decks")
		common.AbortWithError(c, http.StatusInternalServerError, "storage_error", "failed to list decks")
		return
	}
	if summaries == nil {
		summaries = []deck.Summary{}
	}
	c.JSON(http.StatusOK, gin.H{"decks": summaries, "count": len(summaries)})
}

// Get returns one full deck, images included.
func (h *Handler) Get(c *gin.Context) {
	d, ok := h.fetch(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, d)
}

// Delete removes a deck. Guarded by the management key at route level.
func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.DeleteDeck(c.Request.Context(), id); err != nil {
		var nf *storage.ErrNotFound
		if errors.As(err, &nf) {
			common.AbortWithError(c, http.StatusNotFound, "not_found", "deck not found")
			return
		}
		logging.WithReq(c, nil).WithError(err).Error("failed to delete deck")
		common.AbortWithError(c, http.StatusInternalServerError, "storage_error", "failed to delete deck")
		return
	}
	if h.hub != nil {
		h.hub.Publish(c.Request.Context(), events.TopicDeckDeleted, id, nil)
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// ViewHTML serves the deck as a self-contained HTML slideshow page.
func (h *Handler) ViewHTML(c *gin.Context) {
	d, ok := h.fetch(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := deck.WriteHTML(d, c.Writer); err != nil {
		logging.WithReq(c, nil).WithError(err).Error("html view failed mid-stream")
		return
	}
	monitoring.DeckExportsTotal.WithLabelValues("html").Inc()
}

// ExportPDF streams the deck as a PDF document.
func (h *Handler) ExportPDF(c *gin.Context) {
	d, ok := h.fetch(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "deck-"+d.ID+".pdf"))
	c.Status(http.StatusOK)
	if err := deck.WritePDF(d, c.Writer); err != nil {
		// Headers are committed; all we can do is log and close.
		logging.WithReq(c, nil).WithError(err).Error("pdf export failed mid-stream")
		return
	}
	monitoring.DeckExportsTotal.WithLabelValues("pdf").Inc()
	log.WithField("deck_id", d.ID).Debug("deck exported as pdf")
}

func (h *Handler) fetch(c *gin.Context) (*deck.Deck, bool) {
	id := c.Param("id")
	d, err := h.store.GetDeck(c.Request.Context(), id)
	if err != nil {
		var nf *storage.ErrNotFound
		if errors.As(err, &nf) {
			common.AbortWithError(c, http.StatusNotFound, "not_found", "deck not found")
			return nil, false
		}
		logging.WithReq(c, nil).WithError(err).Error("failed to load deck")
		common.AbortWithError(c, http.StatusInternalServerError, "storage_error", "failed to load deck")
		return nil, false
	}
	return d, true
}
