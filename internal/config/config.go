// Package config provides configuration loading and validation for dnsauthd.
//
// Configuration is loaded with the following priority (highest to lowest):
//  1. Command-line flags (not handled here, see cmd/dnsauthd/main.go)
//  2. Environment variables (DNSAUTHD_* prefix)
//  3. YAML config file (if specified with --config)
//  4. Hardcoded defaults
//
// Environment variables are mapped from DNSAUTHD_CATEGORY_SETTING format,
// e.g., DNSAUTHD_SERVER_HOST maps to server.host in YAML.
//
// All configuration is validated during Load() to ensure correctness early.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jthorne/dnsauthd/internal/cookie"
)

// initConfig sets up the config loader with defaults, env binding, and config file.
func initConfig(configPath string) (*viper.Viper, error) {
	v := viper.New()

	setDefaults(v)

	// Uses DNSAUTHD_ prefix: DNSAUTHD_SERVER_HOST -> server.host
	v.SetEnvPrefix("DNSAUTHD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return v, nil
}

// setDefaults configures all default values.
func setDefaults(v *viper.Viper) {
	// Server defaults. Non-privileged port for dev; production config
	// or flags override to 53.
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 1053)
	v.SetDefault("server.workers", "auto")
	v.SetDefault("server.max_udp_payload", 1232)
	v.SetDefault("server.tcp_keepalive", "30s")
	v.SetDefault("server.query_timeout", "4s")

	// Zones defaults
	v.SetDefault("zones.directory", "zones")
	v.SetDefault("zones.files", []string{})

	// Logging defaults
	v.SetDefault("logging.level", "INFO")
	v.SetDefault("logging.structured", false)
	v.SetDefault("logging.structured_format", "json")
	v.SetDefault("logging.include_pid", false)
	v.SetDefault("logging.extra_fields", map[string]string{})

	// EDNS defaults
	v.SetDefault("edns.cookie_strategy", "validate")
	v.SetDefault("edns.cookie_secret", "")
	v.SetDefault("edns.identity_enabled", false)
	v.SetDefault("edns.identity", "")

	// Management API defaults.
	// Default to disabled and bound to localhost for safety.
	v.SetDefault("api.enabled", false)
	v.SetDefault("api.host", "127.0.0.1")
	v.SetDefault("api.port", 8080)
}

// loadFromSource loads configuration from file and environment.
func loadFromSource(configPath string) (*Config, error) {
	v, err := initConfig(configPath)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}

	loadServerConfig(v, cfg)
	loadZonesConfig(v, cfg)
	loadLoggingConfig(v, cfg)
	loadEDNSConfig(v, cfg)
	loadAPIConfig(v, cfg)

	if err := normalizeConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadServerConfig(v *viper.Viper, cfg *Config) {
	cfg.Server.Host = v.GetString("server.host")
	cfg.Server.Port = v.GetInt("server.port")
	cfg.Server.MaxUDPPayload = v.GetInt("server.max_udp_payload")
	cfg.Server.TCPKeepalive = v.GetString("server.tcp_keepalive")
	cfg.Server.QueryTimeout = v.GetString("server.query_timeout")
	cfg.Server.WorkersRaw = v.GetString("server.workers")
	cfg.Server.Workers = parseWorkers(cfg.Server.WorkersRaw)
}

func loadZonesConfig(v *viper.Viper, cfg *Config) {
	cfg.Zones.Directory = v.GetString("zones.directory")
	cfg.Zones.Files = getStringSliceOrSplit(v, "zones.files")
}

func loadLoggingConfig(v *viper.Viper, cfg *Config) {
	cfg.Logging.Level = strings.ToUpper(v.GetString("logging.level"))
	cfg.Logging.Structured = v.GetBool("logging.structured")
	cfg.Logging.StructuredFormat = v.GetString("logging.structured_format")
	cfg.Logging.IncludePID = v.GetBool("logging.include_pid")
	cfg.Logging.ExtraFields = v.GetStringMapString("logging.extra_fields")
}

func loadEDNSConfig(v *viper.Viper, cfg *Config) {
	cfg.EDNS.CookieStrategy = strings.ToLower(v.GetString("edns.cookie_strategy"))
	cfg.EDNS.CookieSecret = v.GetString("edns.cookie_secret")
	cfg.EDNS.IdentityEnabled = v.GetBool("edns.identity_enabled")
	cfg.EDNS.Identity = v.GetString("edns.identity")
}

func loadAPIConfig(v *viper.Viper, cfg *Config) {
	cfg.API.Enabled = v.GetBool("api.enabled")
	cfg.API.Host = v.GetString("api.host")
	cfg.API.Port = v.GetInt("api.port")
}

// parseWorkers converts the workers string to WorkerSetting.
func parseWorkers(raw string) WorkerSetting {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" || raw == "auto" {
		return WorkerSetting{Mode: WorkersAuto}
	}
	if n, err := strconv.Atoi(raw); err == nil && n > 0 {
		return WorkerSetting{Mode: WorkersFixed, Value: n}
	}
	return WorkerSetting{Mode: WorkersAuto}
}

// getStringSliceOrSplit handles both slice and comma-separated string values.
func getStringSliceOrSplit(v *viper.Viper, key string) []string {
	if slice := v.GetStringSlice(key); len(slice) > 0 {
		result := make([]string, 0, len(slice))
		for _, s := range slice {
			if s = strings.TrimSpace(s); s != "" {
				result = append(result, s)
			}
		}
		return result
	}
	if s := v.GetString(key); s != "" {
		parts := strings.Split(s, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				result = append(result, p)
			}
		}
		return result
	}
	return nil
}

// normalizeConfig validates and normalizes the configuration.
func normalizeConfig(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return errors.New("server.port must be 1..65535")
	}
	if cfg.Server.MaxUDPPayload <= 0 {
		cfg.Server.MaxUDPPayload = 1232
	}
	if _, err := time.ParseDuration(cfg.Server.TCPKeepalive); err != nil {
		return fmt.Errorf("server.tcp_keepalive: %w", err)
	}
	if _, err := time.ParseDuration(cfg.Server.QueryTimeout); err != nil {
		return fmt.Errorf("server.query_timeout: %w", err)
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}
	if cfg.Logging.StructuredFormat == "" {
		cfg.Logging.StructuredFormat = "json"
	}
	if cfg.Logging.ExtraFields == nil {
		cfg.Logging.ExtraFields = map[string]string{}
	}

	switch cfg.EDNS.CookieStrategy {
	case "off", "validate", "enforce":
	case "":
		cfg.EDNS.CookieStrategy = "validate"
	default:
		return fmt.Errorf("edns.cookie_strategy must be off, validate, or enforce, got %q", cfg.EDNS.CookieStrategy)
	}
	if cfg.EDNS.CookieSecret != "" {
		if _, err := decodeCookieSecret(cfg.EDNS.CookieSecret); err != nil {
			return fmt.Errorf("edns.cookie_secret: %w", err)
		}
	}

	if cfg.API.Host == "" {
		cfg.API.Host = "127.0.0.1"
	}
	if cfg.API.Enabled {
		if cfg.API.Port <= 0 || cfg.API.Port > 65535 {
			return errors.New("api.port must be 1..65535")
		}
	}

	return nil
}

// CookieStrategy maps the configured string to a cookie.Strategy.
func (c *Config) CookieStrategy() cookie.Strategy {
	switch c.EDNS.CookieStrategy {
	case "off":
		return cookie.StrategyOff
	case "enforce":
		return cookie.StrategyEnforce
	default:
		return cookie.StrategyValidate
	}
}

// CookieSecret decodes the configured hex secret, generating a random
// one if none was configured. A random secret means cookies minted by
// one process run won't validate after a restart; that's acceptable
// without an explicit secret since this server carries no state across
// restarts beyond its zone files.
func (c *Config) CookieSecret() (cookie.Secret, error) {
	if c.EDNS.CookieSecret == "" {
		var raw [16]byte
		if _, err := rand.Read(raw[:]); err != nil {
			return cookie.Secret{}, fmt.Errorf("generating random cookie secret: %w", err)
		}
		return cookie.NewSecret(raw), nil
	}
	return decodeCookieSecret(c.EDNS.CookieSecret)
}

func decodeCookieSecret(s string) (cookie.Secret, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return cookie.Secret{}, fmt.Errorf("must be hex-encoded: %w", err)
	}
	if len(raw) != 16 {
		return cookie.Secret{}, fmt.Errorf("must decode to 16 bytes, got %d", len(raw))
	}
	var arr [16]byte
	copy(arr[:], raw)
	return cookie.NewSecret(arr), nil
}

// TCPKeepaliveDuration parses Server.TCPKeepalive, falling back to 30s
// if unset or invalid (normalizeConfig already validates it at load time).
func (c *Config) TCPKeepaliveDuration() time.Duration {
	d, err := time.ParseDuration(c.Server.TCPKeepalive)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// QueryTimeoutDuration parses Server.QueryTimeout, falling back to 4s.
func (c *Config) QueryTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Server.QueryTimeout)
	if err != nil {
		return 4 * time.Second
	}
	return d
}
