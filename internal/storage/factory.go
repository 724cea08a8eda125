package storage

import (
	"context"
	"fmt"

	"slidecast-go/internal/config"

	log "github.com/sirupsen/logrus"
)

// NewFromConfig builds the backend named in the storage config. The
// returned backend is not initialized.
func NewFromConfig(cfg *config.StorageConfig) (Backend, error) {
	switch cfg.Backend {
	case "", "file":
		return NewFileBackend(cfg.BaseDir), nil
	case "redis":
		return NewRedisBackend(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisPrefix)
	case "postgres":
		return NewPostgresBackend(cfg.PostgresDSN)
	case "mongodb":
		return NewMongoBackend(cfg.MongoURI, cfg.MongoDatabase), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// BuildWithFallback builds and initializes the configured backend. If a
// non-file backend fails to initialize, the file backend takes over so
// the server still comes up. Returns the backend and its effective name.
func BuildWithFallback(ctx context.Context, cfg *config.StorageConfig) (Backend, string, error) {
	backend, err := NewFromConfig(cfg)
	if err == nil {
		if err = backend.Initialize(ctx); err == nil {
			name := cfg.Backend
			if name == "" {
				name = "file"
			}
			return backend, name, nil
		}
		_ = backend.Close()
	}

	if cfg.Backend == "" || cfg.Backend == "file" {
		return nil, "", err
	}

	log.WithError(err).Warnf("storage backend %q unavailable, falling back to file storage", cfg.Backend)
	fallback := NewFileBackend(cfg.BaseDir)
	if ferr := fallback.Initialize(ctx); ferr != nil {
		return nil, "", fmt.Errorf("file fallback failed: %w (original: %v)", ferr, err)
	}
	return fallback, "file", nil
}
