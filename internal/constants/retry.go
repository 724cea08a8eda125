package constants

import "time"

const (
	UpstreamMaxRetries    = 3
	UpstreamRetryDelay    = 1 * time.Second
	UpstreamMaxRetryDelay = 10 * time.Second
	RetryBackoffFactor    = 2.0
)
