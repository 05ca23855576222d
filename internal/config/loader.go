package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// BaseURLEnv overrides backend.base_url when set.
const BaseURLEnv = "BIOREADER_BASE_URL"

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads, defaults, verifies and validates the configuration at configPath.
// A directory path resolves to config.yaml inside it.
func Load(configPath string) (*Config, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %s\n"+
			"Hint: Check the path or run with --config flag", absPath)
	}
	if info.IsDir() {
		absPath = filepath.Join(absPath, "config.yaml")
		if _, err := os.Stat(absPath); err != nil {
			return nil, fmt.Errorf("directory provided but config.yaml not found: %s", absPath)
		}
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.SourcePath = absPath

	result, err := VerifyIntegrity(absPath)
	if err != nil {
		return nil, err
	}
	if !result.Passed {
		return nil, fmt.Errorf("config integrity check failed: %s", strings.Join(result.Errors, "; "))
	}

	return cfg, nil
}

// Parse decodes YAML bytes into a defaulted, validated Config.
func Parse(data []byte) (*Config, error) {
	interpolated := interpolateEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(interpolated), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	applyConfigDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// DiscoverConfigPath finds a config file by checking standard locations.
// Priority order: $BIOBRIDGE_CONFIG, ~/.config/biobridge/config.yaml,
// /etc/biobridge/config.yaml, ./config.yaml.
func DiscoverConfigPath() (string, error) {
	if p := os.Getenv("BIOBRIDGE_CONFIG"); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	candidates := []string{}
	if homeDir, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(homeDir, ".config", "biobridge", "config.yaml"))
	}
	candidates = append(candidates, "/etc/biobridge/config.yaml", "./config.yaml")

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	return "", fmt.Errorf("no config found (checked: $BIOBRIDGE_CONFIG, %s)", strings.Join(candidates, ", "))
}

func applyEnvOverrides(cfg *Config) {
	if v, ok := os.LookupEnv(BaseURLEnv); ok && strings.TrimSpace(v) != "" {
		cfg.Backend.BaseURL = strings.TrimSpace(v)
	}
}

// applyConfigDefaults merges default values into config where not explicitly set.
func applyConfigDefaults(cfg *Config) {
	defaults := Defaults()

	if cfg.Service.Name == "" {
		cfg.Service.Name = defaults.Service.Name
	}
	if cfg.Service.LogLevel == "" {
		cfg.Service.LogLevel = defaults.Service.LogLevel
	}
	cfg.Service.LogLevel = strings.ToLower(cfg.Service.LogLevel)

	if cfg.State.Path == "" {
		cfg.State.Path = defaults.State.Path
	}

	if cfg.Backend.RequestTimeout == 0 {
		cfg.Backend.RequestTimeout = defaults.Backend.RequestTimeout
	}
	if cfg.Backend.DurableRetry.Delay == 0 {
		cfg.Backend.DurableRetry.Delay = defaults.Backend.DurableRetry.Delay
	}
	if cfg.Backend.DurableRetry.Multiplier == 0 {
		cfg.Backend.DurableRetry.Multiplier = defaults.Backend.DurableRetry.Multiplier
	}

	rt := &cfg.Realtime
	if rt.Room == "" {
		rt.Room = defaults.Realtime.Room
	}
	if rt.JoinEvent == "" {
		rt.JoinEvent = defaults.Realtime.JoinEvent
	}
	if rt.MessageEvent == "" {
		rt.MessageEvent = defaults.Realtime.MessageEvent
	}
	if rt.WakeMessage == "" {
		rt.WakeMessage = defaults.Realtime.WakeMessage
	}
	if rt.PingInterval == 0 {
		rt.PingInterval = defaults.Realtime.PingInterval
	}
	if rt.ReconnectBase == 0 {
		rt.ReconnectBase = defaults.Realtime.ReconnectBase
	}
	if rt.ReconnectMax == 0 {
		rt.ReconnectMax = defaults.Realtime.ReconnectMax
	}

	if cfg.Device.Driver == "" {
		cfg.Device.Driver = defaults.Device.Driver
	}

	if cfg.Schedule.Fetch.Every == "" {
		cfg.Schedule.Fetch.Every = defaults.Schedule.Fetch.Every
	}
	if cfg.Schedule.JournalRetention == 0 {
		cfg.Schedule.JournalRetention = defaults.Schedule.JournalRetention
	}

	if !cfg.API.Enabled && cfg.API.Listen == "" {
		cfg.API = defaults.API
	}
	if cfg.API.Listen == "" {
		cfg.API.Listen = defaults.API.Listen
	}
}

// interpolateEnv replaces ${VAR} with environment variable values.
// Undefined variables are left as-is (not expanded).
func interpolateEnv(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		return match
	})
}

func unresolved(field, value string) error {
	if matches := envVarPattern.FindStringSubmatch(value); len(matches) > 1 {
		return fmt.Errorf("%s: environment variable ${%s} is not set", field, matches[1])
	}
	return nil
}

// validate performs basic validation on the configuration.
func validate(cfg *Config) error {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[cfg.Service.LogLevel] {
		return fmt.Errorf("service.log_level must be one of: debug, info, warn, error (got %q)", cfg.Service.LogLevel)
	}

	if cfg.State.Path == "" {
		return fmt.Errorf("state.path is required")
	}

	// Backend
	if strings.TrimSpace(cfg.Backend.BaseURL) == "" {
		return fmt.Errorf("backend.base_url is required (or set %s)", BaseURLEnv)
	}
	if err := unresolved("backend.base_url", cfg.Backend.BaseURL); err != nil {
		return err
	}
	if err := checkURL("backend.base_url", cfg.Backend.BaseURL, "http", "https"); err != nil {
		return err
	}
	if err := unresolved("backend.token", cfg.Backend.Token); err != nil {
		return err
	}
	if cfg.Backend.RequestTimeout <= 0 {
		return fmt.Errorf("backend.request_timeout must be positive")
	}
	retry := cfg.Backend.DurableRetry
	if retry.MaxAttempts < 0 {
		return fmt.Errorf("backend.durable_retry.max_attempts must be >= 0")
	}
	if retry.Delay < 0 {
		return fmt.Errorf("backend.durable_retry.delay must be >= 0")
	}
	if retry.Multiplier < 1 {
		return fmt.Errorf("backend.durable_retry.multiplier must be >= 1")
	}

	// Realtime (optional)
	if cfg.Realtime.URL != "" {
		if err := unresolved("realtime.url", cfg.Realtime.URL); err != nil {
			return err
		}
		if err := checkURL("realtime.url", cfg.Realtime.URL, "ws", "wss"); err != nil {
			return err
		}
		if cfg.Realtime.ReconnectMax < cfg.Realtime.ReconnectBase {
			return fmt.Errorf("realtime.reconnect_max must be >= realtime.reconnect_base")
		}
	}

	if cfg.Device.Driver != "simulator" {
		return fmt.Errorf("device.driver %q is not supported (available: simulator)", cfg.Device.Driver)
	}

	if _, err := ParseInterval(cfg.Schedule.Fetch.Every); err != nil {
		return fmt.Errorf("schedule.fetch.every: %w", err)
	}
	if cfg.Schedule.Fetch.Jitter < 0 {
		return fmt.Errorf("schedule.fetch.jitter must be >= 0")
	}

	if cfg.API.Enabled {
		if cfg.API.Auth.APIKey == "" {
			return fmt.Errorf("api.auth.api_key is required when api.enabled is true")
		}
		if err := unresolved("api.auth.api_key", cfg.API.Auth.APIKey); err != nil {
			return err
		}
	}

	return nil
}

func checkURL(field, raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	for _, s := range schemes {
		if u.Scheme == s && u.Host != "" {
			return nil
		}
	}
	return fmt.Errorf("%s must be an absolute %s URL (got %q)", field, strings.Join(schemes, "/"), raw)
}

// ParseInterval converts a schedule string into a duration. It accepts the
// named intervals hourly, daily and weekly, Go durations ("15m", "2h"), and
// day/week counts ("3d", "2w").
func ParseInterval(interval string) (time.Duration, error) {
	interval = strings.TrimSpace(interval)
	switch interval {
	case "hourly":
		return time.Hour, nil
	case "daily":
		return 24 * time.Hour, nil
	case "weekly":
		return 7 * 24 * time.Hour, nil
	}

	var d time.Duration
	if n := len(interval); n > 1 && (interval[n-1] == 'd' || interval[n-1] == 'w') {
		count, err := strconv.Atoi(interval[:n-1])
		if err != nil {
			return 0, fmt.Errorf("invalid schedule interval %q: %w", interval, err)
		}
		unit := 24 * time.Hour
		if interval[n-1] == 'w' {
			unit *= 7
		}
		d = time.Duration(count) * unit
	} else {
		parsed, err := time.ParseDuration(interval)
		if err != nil {
			return 0, fmt.Errorf("invalid schedule interval %q: %w", interval, err)
		}
		d = parsed
	}

	if d <= 0 {
		return 0, fmt.Errorf("schedule interval must be positive: %q", interval)
	}
	return d, nil
}
