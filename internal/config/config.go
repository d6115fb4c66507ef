package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults for the detection thresholds. Each missing or invalid field
// falls back individually, never the whole config at once.
const (
	DefaultSynFloodThreshold   = 100
	DefaultSynFloodWindow      = 10 * time.Second
	DefaultPortScanUniquePorts = 10
	DefaultPortScanWindow      = 60 * time.Second
	DefaultBufferSize          = 1024
)

// EngineConfig holds the detection thresholds and the suspicion lists.
type EngineConfig struct {
	SynFloodThreshold   int      `yaml:"syn_flood_threshold"`
	SynFloodWindow      string   `yaml:"syn_flood_window"`
	PortScanUniquePorts int      `yaml:"port_scan_unique_ports"`
	PortScanWindow      string   `yaml:"port_scan_window"`
	WhitelistIPs        []string `yaml:"whitelist_ips"`
	BlacklistIPs        []string `yaml:"blacklist_ips"`
	BufferSize          int      `yaml:"size_of_record_channel"`
	AlertLogPath        string   `yaml:"alert_log_path"`
}

// ProbeConfig holds the NATS transport settings shared by the probe and
// the engine.
type ProbeConfig struct {
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

// ClickHouseConfig holds the connection settings for the alert store.
type ClickHouseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// SMTPConfig holds the settings for the email notifier.
type SMTPConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
}

// APIConfig holds the settings for the HTTP alerts API.
type APIConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	Engine     EngineConfig     `yaml:"engine"`
	Probe      ProbeConfig      `yaml:"probe"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
	SMTP       SMTPConfig       `yaml:"smtp"`
	API        APIConfig        `yaml:"api"`
}

// Thresholds is the normalized, validated form of EngineConfig consumed
// by the engine. All numeric fields are guaranteed positive.
type Thresholds struct {
	SynFloodThreshold   int
	SynFloodWindow      time.Duration
	PortScanUniquePorts int
	PortScanWindow      time.Duration
	Whitelist           []string
	Blacklist           []string
}

// LoadConfig reads the configuration from a YAML file and returns a Config struct.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	return &cfg, nil
}

// Thresholds normalizes the engine section into a Thresholds value,
// substituting the default for every missing field and clamping
// non-positive counts and windows to sane positive minimums. A zero or
// negative window therefore never reaches a tracker; eviction stays
// well-defined.
func (c *EngineConfig) Thresholds() Thresholds {
	t := Thresholds{
		SynFloodThreshold:   c.SynFloodThreshold,
		SynFloodWindow:      parseWindow(c.SynFloodWindow, DefaultSynFloodWindow),
		PortScanUniquePorts: c.PortScanUniquePorts,
		PortScanWindow:      parseWindow(c.PortScanWindow, DefaultPortScanWindow),
		Whitelist:           c.WhitelistIPs,
		Blacklist:           c.BlacklistIPs,
	}
	if t.SynFloodThreshold <= 0 {
		t.SynFloodThreshold = DefaultSynFloodThreshold
	}
	if t.PortScanUniquePorts <= 0 {
		t.PortScanUniquePorts = DefaultPortScanUniquePorts
	}
	return t
}

// parseWindow parses a window value, substituting fallback when the
// field is absent, malformed, or non-positive. Both a bare number of
// seconds ("30") and a Go duration string ("30s") are accepted.
func parseWindow(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	if secs, err := strconv.Atoi(s); err == nil {
		if secs <= 0 {
			return fallback
		}
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// BufferSizeOrDefault returns the configured record channel size, or the
// default when unset or non-positive.
func (c *EngineConfig) BufferSizeOrDefault() int {
	if c.BufferSize <= 0 {
		return DefaultBufferSize
	}
	return c.BufferSize
}
