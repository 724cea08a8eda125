package slides

import (
	"strings"

	"slidecast-go/internal/monitoring"
)

// Sink receives each completed slide in order.
type Sink func(Slide)

// Assembler reconstructs discrete slides from an interleaved text/image
// fragment stream. Fragments are processed strictly in arrival order;
// a slide is emitted the moment both a caption and an image have
// accumulated, after which both accumulators reset. The zero
// concurrency model is deliberate: one goroutine pushes, the sink runs
// inline.
type Assembler struct {
	sink    Sink
	caption strings.Builder
	image   *Image
	next    int
}

func NewAssembler(sink Sink) *Assembler {
	return &Assembler{sink: sink}
}

// Push feeds fragments into the assembler. Completion is checked after
// every fragment, not once per chunk, so an image that shares a chunk
// with the next slide's opening text still pairs with the caption that
// preceded it.
func (a *Assembler) Push(frags ...Fragment) {
	for _, f := range frags {
		if f.Image != nil {
			a.image = f.Image
		} else if f.Text != "" {
			a.caption.WriteString(f.Text)
		}
		a.tryEmit()
	}
}

// PushChunk parses one raw stream payload and pushes its fragments.
func (a *Assembler) PushChunk(payload []byte) error {
	frags, err := ParseChunk(payload)
	if err != nil {
		return err
	}
	a.Push(frags...)
	return nil
}

func (a *Assembler) tryEmit() {
	if a.image == nil || strings.TrimSpace(a.caption.String()) == "" {
		return
	}
	slide := Slide{
		Index:   a.next,
		Caption: strings.TrimSpace(a.caption.String()),
		Image:   *a.image,
	}
	a.next++
	a.caption.Reset()
	a.image = nil
	monitoring.SlidesEmittedTotal.Inc()
	if a.sink != nil {
		a.sink(slide)
	}
}

// Count reports how many slides have been emitted so far.
func (a *Assembler) Count() int { return a.next }

// Remainder exposes whatever is left in the accumulators once the
// stream ends. An unpaired trailing caption is not a slide; callers
// use this for diagnostics only.
func (a *Assembler) Remainder() (caption string, image *Image) {
	return strings.TrimSpace(a.caption.String()), a.image
}
