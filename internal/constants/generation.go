package constants

const (
	// DefaultExplainModel is the image-capable model used when config leaves it blank.
	DefaultExplainModel = "gemini-2.0-flash-exp"
	// DefaultSlideTarget is how many (caption, image) pairs the prompt asks for.
	DefaultSlideTarget = 8
	// MaxSlideTarget caps what a request may ask for.
	MaxSlideTarget = 20
)
