package common

import (
	"context"

	"slidecast-go/internal/constants"
)

// WithUpstreamTimeout returns a context with the standard upstream timeout.
func WithUpstreamTimeout(parent context.Context, stream bool) (context.Context, context.CancelFunc) {
	timeout := constants.UpstreamGenerateTimeout
	if stream {
		timeout = constants.UpstreamStreamTimeout
	}
	return context.WithTimeout(parent, timeout)
}
