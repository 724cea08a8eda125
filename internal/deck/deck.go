package deck

import (
	"fmt"
	"time"

	"slidecast-go/internal/slides"

	"github.com/google/uuid"
)

// Deck is a fully assembled explainer: the ordered slide sequence plus
// the request that produced it. Decks are immutable once created;
// storage backends never update them in place.
type Deck struct {
	ID        string         `json:"id"`
	Topic     string         `json:"topic"`
	Style     string         `json:"style,omitempty"`
	Model     string         `json:"model"`
	CreatedAt time.Time      `json:"created_at"`
	Slides    []slides.Slide `json:"slides"`
}

// New builds a deck from assembled slides.
func New(topic, style, model string, assembled []slides.Slide) *Deck {
	return &Deck{
		ID:        uuid.NewString(),
		Topic:     topic,
		Style:     style,
		Model:     model,
		CreatedAt: time.Now().UTC(),
		Slides:    assembled,
	}
}

// Validate rejects decks that cannot be stored or exported.
func (d *Deck) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("deck id is empty")
	}
	if d.Topic == "" {
		return fmt.Errorf("deck topic is empty")
	}
	if len(d.Slides) == 0 {
		return fmt.Errorf("deck has no slides")
	}
	for i, s := range d.Slides {
		if s.Caption == "" {
			return fmt.Errorf("slide %d has no caption", i)
		}
		if len(s.Image.Data) == 0 {
			return fmt.Errorf("slide %d has no image", i)
		}
	}
	return nil
}

// Summary is the listing representation: everything but the image bytes.
type Summary struct {
	ID         string    `json:"id"`
	Topic      string    `json:"topic"`
	Model      string    `json:"model"`
	CreatedAt  time.Time `json:"created_at"`
	SlideCount int       `json:"slide_count"`
}

func (d *Deck) Summarize() Summary {
	return Summary{
		ID:         d.ID,
		Topic:      d.Topic,
		Model:      d.Model,
		CreatedAt:  d.CreatedAt,
		SlideCount: len(d.Slides),
	}
}
