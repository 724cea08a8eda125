package slides

// Image holds one decoded inline image from the model stream.
type Image struct {
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

// Slide is an ordered (caption, image) pair. It is created only once
// both fragments have arrived and never mutated afterwards.
type Slide struct {
	Index   int    `json:"index"`
	Caption string `json:"caption"`
	Image   Image  `json:"image"`
}

// Fragment is a single candidate part extracted from one stream chunk:
// either a piece of caption text or a complete inline image.
type Fragment struct {
	Text  string
	Image *Image
}
