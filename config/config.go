// Package config loads codeshift configuration.
//
// Values are resolved in order: built-in defaults, the YAML file, then
// CODESHIFT_* environment variables. Command-line flags are applied by the
// binary on top of the result.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ZaguanLabs/codeshift"
)

// FileName is the default config file name.
const FileName = "codeshift.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CODESHIFT_"

// Backend names.
const (
	BackendOllama = "ollama"
	BackendOpenAI = "openai"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendFile   = "file"
)

// Config is the top-level codeshift.yaml structure.
type Config struct {
	Engine EngineConfig `yaml:"engine"`
	Model  ModelConfig  `yaml:"model"`
	Cache  CacheConfig  `yaml:"cache"`
	Store  StoreConfig  `yaml:"store"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	// Locale selects the status message catalog ("" auto-detects).
	Locale string `yaml:"locale,omitempty"`
}

// EngineConfig holds the conversion policy settings.
type EngineConfig struct {
	// Mode is one of adaptive, always-model, manual-only, disabled.
	Mode string `yaml:"mode"`
	// ConfidenceThreshold is the confidence below which adaptive mode asks the model.
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	// SimilarityThreshold is the similarity above which the rule result wins.
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	// KeyNormalization is "literals" or "aggressive".
	KeyNormalization string `yaml:"key_normalization"`
}

// ModelConfig selects and configures the model backend.
type ModelConfig struct {
	// Backend is "ollama" (native API) or "openai" (OpenAI-compatible chat API).
	Backend string `yaml:"backend"`
	Name    string `yaml:"name"`
	BaseURL string `yaml:"base_url"`
	// APIKey is only used by the openai backend.
	APIKey  string        `yaml:"api_key,omitempty"`
	Timeout time.Duration `yaml:"timeout"`
	// RequestsPerMinute limits model calls across all sessions (0 disables).
	RequestsPerMinute int `yaml:"requests_per_minute"`
	Burst             int `yaml:"burst,omitempty"`
}

// CacheConfig selects the pattern cache backend.
type CacheConfig struct {
	Backend   string `yaml:"backend"`
	RedisURL  string `yaml:"redis_url,omitempty"`
	KeyPrefix string `yaml:"key_prefix,omitempty"`
}

// StoreConfig selects where engine state is persisted.
type StoreConfig struct {
	Backend  string `yaml:"backend"`
	Path     string `yaml:"path,omitempty"`
	RedisURL string `yaml:"redis_url,omitempty"`
	Key      string `yaml:"key,omitempty"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
	// SessionTTL evicts idle sessions.
	SessionTTL time.Duration `yaml:"session_ttl"`
	// StaticDir serves a browser front-end when set.
	StaticDir string `yaml:"static_dir,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Mode:                string(codeshift.ModeAdaptive),
			ConfidenceThreshold: codeshift.DefaultConfidenceThreshold,
			SimilarityThreshold: codeshift.DefaultSimilarityThreshold,
			KeyNormalization:    string(codeshift.NormalizeLiterals),
		},
		Model: ModelConfig{
			Backend: BackendOllama,
			Name:    codeshift.DefaultModel,
			BaseURL: codeshift.DefaultBaseURL,
			Timeout: 180 * time.Second,
		},
		Cache: CacheConfig{
			Backend: BackendMemory,
		},
		Store: StoreConfig{
			Backend: BackendFile,
			Path:    defaultStatePath(),
		},
		Server: ServerConfig{
			Addr:       ":8080",
			SessionTTL: 30 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "codeshift-state.json"
	}
	return dir + string(os.PathSeparator) + "codeshift" + string(os.PathSeparator) + "state.json"
}

// Load reads path over the defaults and applies environment overrides.
// A missing file is not an error when path is empty or the default name.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = FileName
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case os.IsNotExist(err) && (!explicit || path == FileName):
	default:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from CODESHIFT_* variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"MODE":              &c.Engine.Mode,
		"KEY_NORMALIZATION": &c.Engine.KeyNormalization,
		"MODEL_BACKEND":     &c.Model.Backend,
		"MODEL":             &c.Model.Name,
		"BASE_URL":          &c.Model.BaseURL,
		"API_KEY":           &c.Model.APIKey,
		"CACHE_BACKEND":     &c.Cache.Backend,
		"CACHE_REDIS_URL":   &c.Cache.RedisURL,
		"STORE_BACKEND":     &c.Store.Backend,
		"STATE_PATH":        &c.Store.Path,
		"STORE_REDIS_URL":   &c.Store.RedisURL,
		"ADDR":              &c.Server.Addr,
		"STATIC_DIR":        &c.Server.StaticDir,
		"LOG_LEVEL":         &c.Log.Level,
		"LOG_FORMAT":        &c.Log.Format,
		"LOCALE":            &c.Locale,
	}
	for name, dst := range strs {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}

	floats := map[string]*float64{
		"CONFIDENCE_THRESHOLD": &c.Engine.ConfidenceThreshold,
		"SIMILARITY_THRESHOLD": &c.Engine.SimilarityThreshold,
	}
	for name, dst := range floats {
		if v, ok := lookup(EnvPrefix + name); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
			}
			*dst = f
		}
	}

	if v, ok := lookup(EnvPrefix + "TIMEOUT"); ok {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sTIMEOUT: %w", EnvPrefix, err)
		}
		c.Model.Timeout = d
	}
	if v, ok := lookup(EnvPrefix + "REQUESTS_PER_MINUTE"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sREQUESTS_PER_MINUTE: %w", EnvPrefix, err)
		}
		c.Model.RequestsPerMinute = n
	}
	return nil
}

// Validate checks modes, thresholds and backend settings.
func (c *Config) Validate() error {
	if !codeshift.Mode(c.Engine.Mode).Valid() {
		return fmt.Errorf("engine.mode %q is not one of %v", c.Engine.Mode, codeshift.Modes)
	}
	if c.Engine.ConfidenceThreshold < 0 || c.Engine.ConfidenceThreshold > 1 {
		return fmt.Errorf("engine.confidence_threshold %v is outside [0, 1]", c.Engine.ConfidenceThreshold)
	}
	if c.Engine.SimilarityThreshold < 0 || c.Engine.SimilarityThreshold > 1 {
		return fmt.Errorf("engine.similarity_threshold %v is outside [0, 1]", c.Engine.SimilarityThreshold)
	}
	switch codeshift.KeyNormalization(c.Engine.KeyNormalization) {
	case codeshift.NormalizeLiterals, codeshift.NormalizeAggressive:
	default:
		return fmt.Errorf("engine.key_normalization %q must be literals or aggressive", c.Engine.KeyNormalization)
	}

	switch c.Model.Backend {
	case BackendOllama, BackendOpenAI:
	default:
		return fmt.Errorf("model.backend %q must be ollama or openai", c.Model.Backend)
	}
	if c.Model.Timeout <= 0 {
		return fmt.Errorf("model.timeout must be positive")
	}
	if c.Model.RequestsPerMinute < 0 {
		return fmt.Errorf("model.requests_per_minute must not be negative")
	}

	switch c.Cache.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("cache.redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("cache.backend %q must be memory or redis", c.Cache.Backend)
	}

	switch c.Store.Backend {
	case BackendMemory:
	case BackendFile:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the file backend")
		}
	case BackendRedis:
		if c.Store.RedisURL == "" {
			return fmt.Errorf("store.redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("store.backend %q must be memory, file or redis", c.Store.Backend)
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q must be text or json", c.Log.Format)
	}
	return nil
}

// Settings returns the engine settings described by the config.
func (c *Config) Settings() codeshift.Settings {
	return codeshift.Settings{
		Mode:                codeshift.Mode(c.Engine.Mode),
		ConfidenceThreshold: c.Engine.ConfidenceThreshold,
		Model:               c.Model.Name,
		BaseURL:             c.Model.BaseURL,
	}
}

// Save writes the config as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
