package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Validate checks the configuration for values the service cannot run
// with and expands relative storage paths.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("nil config")
	}

	if _, err := strconv.Atoi(strings.TrimSpace(c.Server.Port)); err != nil {
		return fmt.Errorf("invalid server port %q", c.Server.Port)
	}
	if bp := c.Server.BasePath; bp != "" && !strings.HasPrefix(bp, "/") {
		return fmt.Errorf("base_path must start with '/': %q", bp)
	}

	if c.Upstream.Endpoint == "" {
		return fmt.Errorf("upstream endpoint is required")
	}
	if u, err := url.Parse(c.Upstream.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid upstream endpoint %q", c.Upstream.Endpoint)
	}
	if c.Upstream.ProxyURL != "" {
		if _, err := url.Parse(c.Upstream.ProxyURL); err != nil {
			return fmt.Errorf("invalid proxy url: %w", err)
		}
	}

	if c.Generation.SlideTarget < 1 {
		c.Generation.SlideTarget = 1
	}

	switch c.Storage.Backend {
	case "", "file", "redis", "postgres", "mongodb":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	if c.Storage.BaseDir != "" {
		abs, err := filepath.Abs(expandHome(c.Storage.BaseDir))
		if err != nil {
			return fmt.Errorf("resolve storage base dir: %w", err)
		}
		c.Storage.BaseDir = abs
	}
	if c.Security.LogFile != "" {
		abs, err := filepath.Abs(expandHome(c.Security.LogFile))
		if err != nil {
			return fmt.Errorf("resolve log file path: %w", err)
		}
		c.Security.LogFile = abs
	}

	return nil
}

func expandHome(p string) string {
	if !strings.HasPrefix(p, "~") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
