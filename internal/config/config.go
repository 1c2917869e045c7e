// Package config provides layered configuration loading.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds the resolved configuration.
type Config struct {
	// API settings
	BaseURL   string `json:"base_url"`
	ProjectID string `json:"project_id"`

	// Cache settings
	CacheDir     string `json:"cache_dir"`
	CacheEnabled bool   `json:"cache_enabled"`

	// Output settings
	Format string `json:"format"`

	// Health analysis thresholds
	Health HealthConfig `json:"health"`

	// Sources tracks where each value came from (for debugging).
	Sources map[string]string `json:"-"`
}

// HealthConfig holds thresholds for the health analyzer.
type HealthConfig struct {
	// IdleDays: days without activity before a task is tagged idle.
	IdleDays int `json:"idle_days"`
	// PostponeDays: average postpone length before tagging long_postpones.
	PostponeDays float64 `json:"postpone_days"`
	// PostponeStreak: consecutive same-day postpones before tagging frequent_postpones.
	PostponeStreak int `json:"postpone_streak"`
}

// Source indicates where a config value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceSystem  Source = "system"
	SourceGlobal  Source = "global"
	SourceEnv     Source = "env"
	SourceFlag    Source = "flag"
)

// FlagOverrides holds command-line flag values.
type FlagOverrides struct {
	Project  string
	BaseURL  string
	CacheDir string
	Format   string
}

// Default returns the default configuration.
func Default() *Config {
	cacheDir := os.Getenv("XDG_CACHE_HOME")
	if cacheDir == "" {
		home, _ := os.UserHomeDir()
		cacheDir = filepath.Join(home, ".cache")
	}

	return &Config{
		BaseURL:      "https://api.todoist.com",
		CacheDir:     filepath.Join(cacheDir, "tdq"),
		CacheEnabled: true,
		Format:       "auto",
		Health: HealthConfig{
			IdleDays:       30,
			PostponeDays:   7,
			PostponeStreak: 3,
		},
		Sources: make(map[string]string),
	}
}

// Load loads configuration from all sources with proper precedence.
// Precedence: flags > env > global > system > defaults
func Load(overrides FlagOverrides) (*Config, error) {
	cfg := Default()

	loadFromFile(cfg, systemConfigPath(), SourceSystem)
	loadFromFile(cfg, globalConfigPath(), SourceGlobal)

	LoadFromEnv(cfg)
	ApplyOverrides(cfg, overrides)

	return cfg, nil
}

func loadFromFile(cfg *Config, path string, source Source) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: Path is from trusted config locations
	if err != nil {
		return // File doesn't exist, skip
	}

	var fileCfg map[string]any
	if err := json.Unmarshal(data, &fileCfg); err != nil {
		fmt.Fprintf(os.Stderr, "warning: skipping malformed config at %s: %v\n", path, err)
		return
	}

	if v, ok := fileCfg["base_url"].(string); ok && v != "" {
		cfg.BaseURL = v
		cfg.Sources["base_url"] = string(source)
	}
	if v := getStringOrNumber(fileCfg, "project_id"); v != "" {
		cfg.ProjectID = v
		cfg.Sources["project_id"] = string(source)
	}
	if v, ok := fileCfg["cache_dir"].(string); ok && v != "" {
		cfg.CacheDir = v
		cfg.Sources["cache_dir"] = string(source)
	}
	if v, ok := fileCfg["cache_enabled"].(bool); ok {
		cfg.CacheEnabled = v
		cfg.Sources["cache_enabled"] = string(source)
	}
	if v, ok := fileCfg["format"].(string); ok && v != "" {
		cfg.Format = v
		cfg.Sources["format"] = string(source)
	}
	if v, ok := fileCfg["health"].(map[string]any); ok {
		if d, ok := v["idle_days"].(float64); ok && d > 0 {
			cfg.Health.IdleDays = int(d)
			cfg.Sources["health.idle_days"] = string(source)
		}
		if d, ok := v["postpone_days"].(float64); ok && d > 0 {
			cfg.Health.PostponeDays = d
			cfg.Sources["health.postpone_days"] = string(source)
		}
		if d, ok := v["postpone_streak"].(float64); ok && d > 0 {
			cfg.Health.PostponeStreak = int(d)
			cfg.Sources["health.postpone_streak"] = string(source)
		}
	}
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("TDQ_BASE_URL"); v != "" {
		cfg.BaseURL = v
		cfg.Sources["base_url"] = string(SourceEnv)
	}
	if v := os.Getenv("TDQ_PROJECT_ID"); v != "" {
		cfg.ProjectID = v
		cfg.Sources["project_id"] = string(SourceEnv)
	}
	if v := os.Getenv("TDQ_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
		cfg.Sources["cache_dir"] = string(SourceEnv)
	}
	if v := os.Getenv("TDQ_CACHE_ENABLED"); v != "" {
		cfg.CacheEnabled = strings.ToLower(v) == "true" || v == "1"
		cfg.Sources["cache_enabled"] = string(SourceEnv)
	}
}

// getStringOrNumber extracts a value that may be either a string or number in JSON.
func getStringOrNumber(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case float64:
		// JSON numbers are unmarshaled as float64
		return strings.TrimSuffix(fmt.Sprintf("%.0f", val), ".0")
	default:
		return ""
	}
}

// ApplyOverrides applies non-empty flag overrides to cfg.
func ApplyOverrides(cfg *Config, o FlagOverrides) {
	if o.Project != "" {
		cfg.ProjectID = o.Project
		cfg.Sources["project_id"] = string(SourceFlag)
	}
	if o.BaseURL != "" {
		cfg.BaseURL = NormalizeBaseURL(o.BaseURL)
		cfg.Sources["base_url"] = string(SourceFlag)
	}
	if o.CacheDir != "" {
		cfg.CacheDir = o.CacheDir
		cfg.Sources["cache_dir"] = string(SourceFlag)
	}
	if o.Format != "" {
		cfg.Format = o.Format
		cfg.Sources["format"] = string(SourceFlag)
	}
}

// Path helpers

func systemConfigPath() string {
	return "/etc/tdq/config.json"
}

func globalConfigPath() string {
	return filepath.Join(GlobalConfigDir(), "config.json")
}

// GlobalConfigDir returns the global config directory path.
func GlobalConfigDir() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "tdq")
}

// NormalizeBaseURL ensures consistent URL format (no trailing slash).
func NormalizeBaseURL(url string) string {
	return strings.TrimSuffix(url, "/")
}

// SettableKeys lists the keys accepted by SetValue.
var SettableKeys = []string{
	"base_url", "project_id", "cache_dir", "cache_enabled", "format",
	"health.idle_days", "health.postpone_days", "health.postpone_streak",
}

// SetValue writes one key into the global config file, creating the file
// and directory when missing. Unknown keys are rejected.
func SetValue(key, value string) error {
	known := false
	for _, k := range SettableKeys {
		if k == key {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(SettableKeys, ", "))
	}

	path := globalConfigPath()
	raw := map[string]any{}
	if data, err := os.ReadFile(path); err == nil { //nolint:gosec // G304: trusted config location
		_ = json.Unmarshal(data, &raw)
	}

	if name, ok := strings.CutPrefix(key, "health."); ok {
		health, _ := raw["health"].(map[string]any)
		if health == nil {
			health = map[string]any{}
		}
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%s requires a number", key)
		}
		health[name] = n
		raw["health"] = health
	} else if key == "cache_enabled" {
		raw[key] = strings.ToLower(value) == "true" || value == "1"
	} else {
		raw[key] = value
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

// UnsetValue removes one key from the global config file.
func UnsetValue(key string) error {
	path := globalConfigPath()
	data, err := os.ReadFile(path) //nolint:gosec // G304: trusted config location
	if err != nil {
		return nil // nothing to unset
	}
	raw := map[string]any{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("malformed config at %s: %w", path, err)
	}

	if name, ok := strings.CutPrefix(key, "health."); ok {
		if health, ok := raw["health"].(map[string]any); ok {
			delete(health, name)
			if len(health) == 0 {
				delete(raw, "health")
			}
		}
	} else {
		delete(raw, key)
	}

	out, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(out, '\n'), 0o600)
}
