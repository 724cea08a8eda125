package constants

import "time"

const (
	DefaultDialTimeout           = 10 * time.Second
	DefaultTLSHandshakeTimeout   = 10 * time.Second
	DefaultResponseHeaderTimeout = 60 * time.Second
	DefaultExpectContinueTimeout = 1 * time.Second

	BaseMaxIdleConns        = 100
	BaseMaxIdleConnsPerHost = 10

	// WebSocketWriteTimeout bounds a single slide frame write.
	WebSocketWriteTimeout = 10 * time.Second
)
