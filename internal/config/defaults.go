package config

import "slidecast-go/internal/constants"

// Default returns a configuration populated with service defaults.
// Values here are what a bare `slidecast-server` run uses.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8318",
		},
		Upstream: UpstreamConfig{
			Endpoint:            "https://generativelanguage.googleapis.com",
			RetryMax:            constants.UpstreamMaxRetries,
			RetryOn5xx:          true,
			RetryOnNetworkError: true,
		},
		Generation: GenerationConfig{
			Model:       constants.DefaultExplainModel,
			SlideTarget: constants.DefaultSlideTarget,
			Style:       "fun, doodle-style illustrations",
		},
		Storage: StorageConfig{
			Backend:     "file",
			BaseDir:     "./data",
			RedisPrefix: "slidecast:",
		},
		RateLimit: RateLimitConfig{
			RPS:                     5,
			Burst:                   10,
			UsageResetIntervalHours: 24,
		},
	}
}
