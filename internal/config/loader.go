package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Manager owns the loaded configuration and serializes reloads.
type Manager struct {
	mu         sync.RWMutex
	configPath string
	config     *Config
	lastMod    time.Time
	onReload   []func(*Config)
}

// NewManager loads configuration from path (YAML or JSON) layered over
// defaults, then applies environment overrides. A missing file is not an
// error; defaults plus environment apply.
func NewManager(path string) (*Manager, error) {
	m := &Manager{configPath: path}
	cfg, err := m.load()
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		log.WithField("path", path).Info("config file absent, using defaults")
		cfg = Default()
	}
	applyEnvOverrides(cfg)
	m.config = cfg
	return m, nil
}

// load parses the config file layered over defaults. The result is not
// published; callers finish preparing it before swapping it in.
func (m *Manager) load() (*Config, error) {
	if m.configPath == "" {
		return nil, os.ErrNotExist
	}

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	ext := strings.ToLower(filepath.Ext(m.configPath))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file (tried YAML and JSON)")
			}
		}
	}

	if info, err := os.Stat(m.configPath); err == nil {
		m.lastMod = info.ModTime()
	}

	log.WithField("path", m.configPath).Info("configuration loaded")
	return cfg, nil
}

// Config returns the current configuration snapshot.
func (m *Manager) Config() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// OnReload registers a callback invoked after each successful reload.
func (m *Manager) OnReload(fn func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onReload = append(m.onReload, fn)
}

// Reload re-reads the config file and re-applies environment overrides.
// The new config is fully prepared and validated before it is published,
// so concurrent Config() readers never observe a half-built snapshot.
func (m *Manager) Reload() error {
	cfg, err := m.load()
	if err != nil {
		return err
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	m.config = cfg
	callbacks := append([]func(*Config){}, m.onReload...)
	m.mu.Unlock()
	for _, fn := range callbacks {
		fn(cfg)
	}
	return nil
}
