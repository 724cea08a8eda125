package config

import (
	"os"
	"strconv"
	"strings"
)

// applyEnvOverrides layers SLIDECAST_* environment variables on top of
// file values. Environment always wins; this mirrors how the service is
// deployed in containers without a mounted config file.
func applyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}

	setStr := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	setInt := func(dst *int, key string) {
		if v, ok := os.LookupEnv(key); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				*dst = n
			}
		}
	}
	setBool := func(dst *bool, key string) {
		if v, ok := os.LookupEnv(key); ok {
			switch strings.ToLower(strings.TrimSpace(v)) {
			case "1", "true", "yes", "on":
				*dst = true
			case "0", "false", "no", "off":
				*dst = false
			}
		}
	}

	setStr(&cfg.Server.Port, "SLIDECAST_PORT")
	setStr(&cfg.Server.BasePath, "SLIDECAST_BASE_PATH")

	setBool(&cfg.Security.Debug, "SLIDECAST_DEBUG")
	setStr(&cfg.Security.LogFile, "SLIDECAST_LOG_FILE")
	setStr(&cfg.Security.ManagementKey, "SLIDECAST_MANAGEMENT_KEY")
	setStr(&cfg.Security.ManagementKeyHash, "SLIDECAST_MANAGEMENT_KEY_HASH")
	if v, ok := os.LookupEnv("SLIDECAST_API_KEYS"); ok {
		cfg.Security.APIKeys = splitNonEmpty(v)
	}

	setStr(&cfg.Upstream.Endpoint, "SLIDECAST_UPSTREAM_ENDPOINT")
	setStr(&cfg.Upstream.APIKey, "SLIDECAST_UPSTREAM_API_KEY")
	// GEMINI_API_KEY is the conventional variable for the Google SDKs;
	// honor it as a fallback.
	if cfg.Upstream.APIKey == "" {
		setStr(&cfg.Upstream.APIKey, "GEMINI_API_KEY")
	}
	setStr(&cfg.Upstream.ProxyURL, "SLIDECAST_PROXY_URL")
	setInt(&cfg.Upstream.RetryMax, "SLIDECAST_RETRY_MAX")
	setBool(&cfg.Upstream.RetryOn5xx, "SLIDECAST_RETRY_ON_5XX")
	setBool(&cfg.Upstream.RetryOnNetworkError, "SLIDECAST_RETRY_ON_NETWORK_ERROR")

	setStr(&cfg.OAuth.ClientID, "SLIDECAST_OAUTH_CLIENT_ID")
	setStr(&cfg.OAuth.ClientSecret, "SLIDECAST_OAUTH_CLIENT_SECRET")
	setStr(&cfg.OAuth.RefreshToken, "SLIDECAST_OAUTH_REFRESH_TOKEN")
	setStr(&cfg.OAuth.TokenURL, "SLIDECAST_OAUTH_TOKEN_URL")

	setStr(&cfg.Generation.Model, "SLIDECAST_MODEL")
	setInt(&cfg.Generation.SlideTarget, "SLIDECAST_SLIDE_TARGET")
	setStr(&cfg.Generation.Style, "SLIDECAST_STYLE")

	setStr(&cfg.Storage.Backend, "SLIDECAST_STORAGE_BACKEND")
	setStr(&cfg.Storage.BaseDir, "SLIDECAST_STORAGE_BASE_DIR")
	setStr(&cfg.Storage.RedisAddr, "SLIDECAST_REDIS_ADDR")
	setStr(&cfg.Storage.RedisPassword, "SLIDECAST_REDIS_PASSWORD")
	setInt(&cfg.Storage.RedisDB, "SLIDECAST_REDIS_DB")
	setStr(&cfg.Storage.RedisPrefix, "SLIDECAST_REDIS_PREFIX")
	setStr(&cfg.Storage.PostgresDSN, "SLIDECAST_POSTGRES_DSN")
	setStr(&cfg.Storage.MongoURI, "SLIDECAST_MONGODB_URI")
	setStr(&cfg.Storage.MongoDatabase, "SLIDECAST_MONGODB_DATABASE")

	setInt(&cfg.RateLimit.RPS, "SLIDECAST_RATE_LIMIT_RPS")
	setInt(&cfg.RateLimit.Burst, "SLIDECAST_RATE_LIMIT_BURST")
	setInt(&cfg.RateLimit.UsageResetIntervalHours, "SLIDECAST_USAGE_RESET_INTERVAL_HOURS")
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
