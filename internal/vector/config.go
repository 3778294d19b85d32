// File path: internal/vector/config.go
package vector

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config carries ChromaDB connection settings. Values are resolved from an
// optional JSON file, then environment variables, then built-in defaults,
// with later layers winning.
type Config struct {
	Host       string `json:"host"`
	Port       string `json:"port"`
	Scheme     string `json:"scheme"`
	Collection string `json:"collection"`
	APIKey     string `json:"api_key"`

	Timeout       time.Duration `json:"-"`
	TimeoutString string        `json:"timeout"`

	HTTPMaxIdleConns       int           `json:"http_max_idle_conns"`
	HTTPMaxIdlePerHost     int           `json:"http_max_idle_per_host"`
	HTTPMaxConnsPerHost    int           `json:"http_max_conns_per_host"`
	HTTPIdleConnTimeout    time.Duration `json:"-"`
	HTTPIdleConnTimeoutStr string        `json:"http_idle_conn_timeout"`
}

const (
	defaultChromaHost   = "localhost"
	defaultChromaPort   = "8000"
	defaultChromaScheme = "http"
	defaultCollection   = "css_contracts"
	defaultQueryTimeout = 10 * time.Second
	defaultIdleTimeout  = 90 * time.Second
	defaultMaxIdleConns = 64
	defaultIdlePerHost  = 16
)

// Merge returns a copy of c with every non-empty (or positive) field of
// override applied on top. String overrides are trimmed before use.
func (c Config) Merge(override Config) Config {
	out := c
	out.Host = pickString(out.Host, override.Host)
	out.Port = pickString(out.Port, override.Port)
	out.Scheme = pickString(out.Scheme, override.Scheme)
	out.Collection = pickString(out.Collection, override.Collection)
	if strings.TrimSpace(override.APIKey) != "" {
		out.APIKey = override.APIKey
	}
	out.TimeoutString = pickString(out.TimeoutString, override.TimeoutString)
	out.HTTPIdleConnTimeoutStr = pickString(out.HTTPIdleConnTimeoutStr, override.HTTPIdleConnTimeoutStr)
	if override.Timeout > 0 {
		out.Timeout = override.Timeout
	}
	if override.HTTPIdleConnTimeout > 0 {
		out.HTTPIdleConnTimeout = override.HTTPIdleConnTimeout
	}
	if override.HTTPMaxIdleConns > 0 {
		out.HTTPMaxIdleConns = override.HTTPMaxIdleConns
	}
	if override.HTTPMaxIdlePerHost > 0 {
		out.HTTPMaxIdlePerHost = override.HTTPMaxIdlePerHost
	}
	if override.HTTPMaxConnsPerHost > 0 {
		out.HTTPMaxConnsPerHost = override.HTTPMaxConnsPerHost
	}
	return out
}

func pickString(current, override string) string {
	if trimmed := strings.TrimSpace(override); trimmed != "" {
		return trimmed
	}
	return current
}

// LoadConfig resolves the ChromaDB configuration. A JSON file named by
// CHROMADB_CONFIG_FILE seeds the config, CHROMADB_* environment variables
// override it, and anything still unset falls back to defaults.
func LoadConfig() (Config, error) {
	var cfg Config
	if path := strings.TrimSpace(os.Getenv("CHROMADB_CONFIG_FILE")); path != "" {
		fromFile, err := readConfigFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = cfg.Merge(fromFile)
	}
	fromEnv, err := readConfigEnv()
	if err != nil {
		return Config{}, err
	}
	cfg = cfg.Merge(fromEnv)
	cfg.fillDefaults()
	return cfg, nil
}

func readConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("read chromadb config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse chromadb config: %w", err)
	}
	return cfg, nil
}

func readConfigEnv() (Config, error) {
	cfg := Config{
		Host:       strings.TrimSpace(os.Getenv("CHROMADB_HOST")),
		Port:       strings.TrimSpace(os.Getenv("CHROMADB_PORT")),
		Scheme:     strings.TrimSpace(os.Getenv("CHROMADB_SCHEME")),
		Collection: strings.TrimSpace(os.Getenv("CHROMADB_COLLECTION")),
		APIKey:     strings.TrimSpace(os.Getenv("CHROMADB_API_KEY")),
	}
	if raw := strings.TrimSpace(os.Getenv("CHROMADB_TIMEOUT")); raw != "" {
		cfg.TimeoutString = raw
		if d, err := time.ParseDuration(raw); err == nil {
			cfg.Timeout = d
		}
	}
	if raw := strings.TrimSpace(os.Getenv("CHROMADB_HTTP_IDLE_CONN_TIMEOUT")); raw != "" {
		cfg.HTTPIdleConnTimeoutStr = raw
		if d, err := time.ParseDuration(raw); err == nil {
			cfg.HTTPIdleConnTimeout = d
		}
	}
	pools := []struct {
		key string
		dst *int
	}{
		{"CHROMADB_HTTP_MAX_IDLE_CONNS", &cfg.HTTPMaxIdleConns},
		{"CHROMADB_HTTP_MAX_IDLE_PER_HOST", &cfg.HTTPMaxIdlePerHost},
		{"CHROMADB_HTTP_MAX_CONNS_PER_HOST", &cfg.HTTPMaxConnsPerHost},
	}
	for _, p := range pools {
		raw := strings.TrimSpace(os.Getenv(p.key))
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", p.key, err)
		}
		if value > 0 {
			*p.dst = value
		}
	}
	return cfg, nil
}

func (c *Config) fillDefaults() {
	c.Host = pickString(defaultChromaHost, c.Host)
	c.Port = pickString(defaultChromaPort, c.Port)
	c.Scheme = pickString(defaultChromaScheme, c.Scheme)
	c.Collection = pickString(defaultCollection, c.Collection)
	c.Timeout = resolveDuration(c.Timeout, c.TimeoutString, defaultQueryTimeout)
	c.HTTPIdleConnTimeout = resolveDuration(c.HTTPIdleConnTimeout, c.HTTPIdleConnTimeoutStr, defaultIdleTimeout)
	if c.HTTPMaxIdleConns <= 0 {
		c.HTTPMaxIdleConns = defaultMaxIdleConns
	}
	if c.HTTPMaxIdlePerHost <= 0 {
		c.HTTPMaxIdlePerHost = defaultIdlePerHost
	}
}

// resolveDuration keeps an explicit positive value, otherwise parses the
// string form, otherwise falls back.
func resolveDuration(explicit time.Duration, raw string, fallback time.Duration) time.Duration {
	if explicit > 0 {
		return explicit
	}
	if raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
