package constants

const (
	// SSEScannerInitialBufferSize defines the initial buffer for SSE scanners (64KB).
	SSEScannerInitialBufferSize = 64 * 1024
	// SSEScannerMaxBufferSize defines the max buffer size for SSE scanners (4MB).
	// Image chunks arrive base64-encoded inside a single event, so this has to
	// hold a full inlineData payload.
	SSEScannerMaxBufferSize = 4 * 1024 * 1024

	// MaxTopicLength bounds the user-supplied topic string.
	MaxTopicLength = 2048
	// MaxRequestBodySize bounds explain/deck request bodies (8MB, decks carry images).
	MaxRequestBodySize = 8 * 1024 * 1024
)
