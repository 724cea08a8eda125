package config

import (
	"sync"
)

// Config is the runtime configuration for the slidecast service.
// It is loaded once at startup and refreshed by the file watcher.
type Config struct {
	Server     ServerConfig     `yaml:"server" json:"server"`
	Security   SecurityConfig   `yaml:"security" json:"security"`
	Upstream   UpstreamConfig   `yaml:"upstream" json:"upstream"`
	OAuth      OAuthConfig      `yaml:"oauth" json:"oauth"`
	Generation GenerationConfig `yaml:"generation" json:"generation"`
	Storage    StorageConfig    `yaml:"storage" json:"storage"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit" json:"rate_limit"`
}

type ServerConfig struct {
	Port     string `yaml:"port" json:"port"`
	BasePath string `yaml:"base_path" json:"base_path"`
}

type SecurityConfig struct {
	Debug             bool     `yaml:"debug" json:"debug"`
	LogFile           string   `yaml:"log_file" json:"log_file"`
	APIKeys           []string `yaml:"api_keys" json:"api_keys"`
	ManagementKey     string   `yaml:"management_key" json:"management_key"`
	ManagementKeyHash string   `yaml:"management_key_hash" json:"management_key_hash"`
}

type UpstreamConfig struct {
	Endpoint string `yaml:"endpoint" json:"endpoint"`
	APIKey   string `yaml:"api_key" json:"api_key"`
	ProxyURL string `yaml:"proxy_url" json:"proxy_url"`

	DialTimeoutSec           int `yaml:"dial_timeout_sec" json:"dial_timeout_sec"`
	TLSHandshakeTimeoutSec   int `yaml:"tls_handshake_timeout_sec" json:"tls_handshake_timeout_sec"`
	ResponseHeaderTimeoutSec int `yaml:"response_header_timeout_sec" json:"response_header_timeout_sec"`

	RetryMax            int  `yaml:"retry_max" json:"retry_max"`
	RetryOn5xx          bool `yaml:"retry_on_5xx" json:"retry_on_5xx"`
	RetryOnNetworkError bool `yaml:"retry_on_network_error" json:"retry_on_network_error"`
}

// OAuthConfig holds optional OAuth client credentials used instead of a
// plain API key when talking to the upstream API.
type OAuthConfig struct {
	ClientID     string `yaml:"client_id" json:"client_id"`
	ClientSecret string `yaml:"client_secret" json:"client_secret"`
	RefreshToken string `yaml:"refresh_token" json:"refresh_token"`
	TokenURL     string `yaml:"token_url" json:"token_url"`
}

type GenerationConfig struct {
	Model       string `yaml:"model" json:"model"`
	SlideTarget int    `yaml:"slide_target" json:"slide_target"`
	Style       string `yaml:"style" json:"style"`
}

type StorageConfig struct {
	Backend string `yaml:"backend" json:"backend"`
	BaseDir string `yaml:"base_dir" json:"base_dir"`

	RedisAddr     string `yaml:"redis_addr" json:"redis_addr"`
	RedisPassword string `yaml:"redis_password" json:"redis_password"`
	RedisDB       int    `yaml:"redis_db" json:"redis_db"`
	RedisPrefix   string `yaml:"redis_prefix" json:"redis_prefix"`

	PostgresDSN string `yaml:"postgres_dsn" json:"postgres_dsn"`

	MongoURI      string `yaml:"mongodb_uri" json:"mongodb_uri"`
	MongoDatabase string `yaml:"mongodb_database" json:"mongodb_database"`
}

type RateLimitConfig struct {
	RPS                     int `yaml:"rps" json:"rps"`
	Burst                   int `yaml:"burst" json:"burst"`
	UsageResetIntervalHours int `yaml:"usage_reset_interval_hours" json:"usage_reset_interval_hours"`
}

var (
	managerMu     sync.RWMutex
	globalManager *Manager
)

// SetManager installs the global configuration manager.
func SetManager(m *Manager) {
	managerMu.Lock()
	defer managerMu.Unlock()
	globalManager = m
}

// GetManager returns the global configuration manager, or nil before setup.
func GetManager() *Manager {
	managerMu.RLock()
	defer managerMu.RUnlock()
	return globalManager
}
