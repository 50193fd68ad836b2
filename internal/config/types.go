// Package config provides configuration loading for dnsauthd using Viper.
// Configuration is loaded from YAML files with automatic environment variable binding.
//
// Environment variables use the DNSAUTHD_ prefix and underscore-separated keys:
//   - DNSAUTHD_SERVER_HOST -> server.host
//   - DNSAUTHD_SERVER_PORT -> server.port
//   - DNSAUTHD_ZONES_DIRECTORY -> zones.directory
package config

import (
	"os"
	"strconv"
	"strings"
)

// WorkersMode specifies how worker count is determined.
type WorkersMode int

const (
	// WorkersAuto automatically determines worker count based on available CPUs.
	WorkersAuto WorkersMode = iota
	// WorkersFixed uses a specific worker count.
	WorkersFixed
)

// WorkerSetting represents the workers configuration.
type WorkerSetting struct {
	Mode  WorkersMode
	Value int
}

// String returns the string representation of the worker setting.
func (w WorkerSetting) String() string {
	if w.Mode == WorkersAuto {
		return "auto"
	}
	return strconv.Itoa(w.Value)
}

// ServerConfig contains transport bind settings.
type ServerConfig struct {
	Host          string        `yaml:"host"            mapstructure:"host"`
	Port          int           `yaml:"port"            mapstructure:"port"`
	Workers       WorkerSetting `yaml:"-"               mapstructure:"-"`
	WorkersRaw    string        `yaml:"workers"         mapstructure:"workers"`
	MaxUDPPayload int           `yaml:"max_udp_payload" mapstructure:"max_udp_payload"`
	TCPKeepalive  string        `yaml:"tcp_keepalive"   mapstructure:"tcp_keepalive"` // e.g. "30s"; parsed by TCPKeepaliveDuration; the TCP server does not read it
	QueryTimeout  string        `yaml:"query_timeout"   mapstructure:"query_timeout"`
}

// ZonesConfig contains zone file settings.
type ZonesConfig struct {
	Directory string   `yaml:"directory" mapstructure:"directory" json:"directory"`
	Files     []string `yaml:"files"     mapstructure:"files"     json:"files,omitempty"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level            string            `yaml:"level"             mapstructure:"level"             json:"level"`
	Structured       bool              `yaml:"structured"        mapstructure:"structured"        json:"structured"`
	StructuredFormat string            `yaml:"structured_format" mapstructure:"structured_format" json:"structured_format"`
	IncludePID       bool              `yaml:"include_pid"       mapstructure:"include_pid"       json:"include_pid"`
	ExtraFields      map[string]string `yaml:"extra_fields"      mapstructure:"extra_fields"      json:"extra_fields,omitempty"`
}

// EDNSConfig controls the server's EDNS(0) option handlers.
type EDNSConfig struct {
	CookieStrategy  string `yaml:"cookie_strategy"  mapstructure:"cookie_strategy"` // "off", "validate", "enforce"
	CookieSecret    string `yaml:"cookie_secret"    mapstructure:"cookie_secret"`   // 32 hex chars (16 bytes); random if empty
	IdentityEnabled bool   `yaml:"identity_enabled" mapstructure:"identity_enabled"`
	Identity        string `yaml:"identity"         mapstructure:"identity"` // NSID bytes, as plain text; sent as an empty NSID if empty
}

// APIConfig contains the read-only operational HTTP surface's settings.
type APIConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Host    string `yaml:"host"    mapstructure:"host"`
	Port    int    `yaml:"port"    mapstructure:"port"`
}

// Config is the root configuration structure.
type Config struct {
	Server  ServerConfig  `yaml:"server"  mapstructure:"server"`
	Zones   ZonesConfig   `yaml:"zones"   mapstructure:"zones"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	EDNS    EDNSConfig    `yaml:"edns"    mapstructure:"edns"`
	API     APIConfig     `yaml:"api"     mapstructure:"api"`
}

// ResolveConfigPath determines the config file path from flag or environment.
func ResolveConfigPath(flagValue string) string {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue
	}
	if v := strings.TrimSpace(os.Getenv("DNSAUTHD_CONFIG")); v != "" {
		return v
	}
	return ""
}

// Load loads configuration from a YAML file with environment variable overrides.
// This is the main entry point for loading configuration.
//
// Configuration priority (highest to lowest):
//  1. Environment variables (DNSAUTHD_*)
//  2. Config file values
//  3. Default values
func Load(path string) (*Config, error) {
	return loadFromSource(path)
}
