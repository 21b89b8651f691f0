package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"
	"sync"

	"github.com/jreel/js-chem/pkg/templating"
	"github.com/natefinch/atomic"
)

// ServerConfig holds the configuration for the HTTP servers.
type ServerConfig struct {
	ServerAddr     string            `json:"server_addr"`
	ApiAddr        string            `json:"api_addr"`
	LogLevel       string            `json:"log_level"`
	TrustedProxies []string          `json:"trusted_proxies"`
	DataDir        string            `json:"data_dir"`
	DatabasePath   string            `json:"database_path"`
	StaticPath     string            `json:"static_path"`
	PagesPath      string            `json:"pages_path"`
	IndexTemplate  string            `json:"index_template"`
	LessonTemplate string            `json:"lesson_template"`
	EnableGzip     bool              `json:"enable_gzip"`
	Headers        map[string]string `json:"headers"`
	StatsConfig    *StatsConfig      `json:"stats_config"`
}

// FormatConfig holds limits for the formatting API.
type FormatConfig struct {
	MaxSteps       int `json:"max_steps"`
	MaxInputLength int `json:"max_input_length"`
	MaxBatchSize   int `json:"max_batch_size"`
}

// StatsConfig holds settings for formula statistics.
type StatsConfig struct {
	RecordFormulas bool `json:"record_formulas"`
	TopLimit       int  `json:"top_limit"`
}

// Config is the top-level configuration struct that aggregates all other configs.
type Config struct {
	Server    *ServerConfig              `json:"server_config"`
	Format    *FormatConfig              `json:"format_config"`
	Templates *templating.TemplateConfig `json:"template_config"`
}

// DefaultServerConfig creates a server configuration with default values.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		ServerAddr:     ":7277",
		ApiAddr:        ":7278",
		LogLevel:       "info",
		TrustedProxies: []string{},
		DataDir:        "./data",
		DatabasePath:   "./data/chem.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)",
		StaticPath:     "./data/static/",
		PagesPath:      "./data/pages/",
		IndexTemplate:  "index.tmpl.html",
		LessonTemplate: "lesson.tmpl.html",
		EnableGzip:     true,
		Headers: map[string]string{
			"Cache-Control":           "no-cache",
			"Content-Security-Policy": "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline';",
			"Content-Type":            "text/html; charset=utf-8",
		},
		StatsConfig: &StatsConfig{
			RecordFormulas: true,
			TopLimit:       100,
		},
	}
}

// DefaultFormatConfig creates a formatting configuration with default values.
func DefaultFormatConfig() *FormatConfig {
	return &FormatConfig{
		MaxSteps:       10000,
		MaxInputLength: 4096,
		MaxBatchSize:   100,
	}
}

// DefaultConfig returns a Config with every section at its defaults.
func DefaultConfig() *Config {
	return &Config{
		Server:    DefaultServerConfig(),
		Format:    DefaultFormatConfig(),
		Templates: templating.DefaultConfig(),
	}
}

// LoadConfig reads the configuration from a JSON file at the given path.
// If the file doesn't exist, it creates one with default values.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			var data []byte
			data, err = json.MarshalIndent(config, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("failed to marshal default config: %w", err)
			}
			if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
				// The server can still run with defaults.
				fmt.Printf("warning: failed to write default config file: %v\n", err)
			}
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err = json.Unmarshal(file, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err = config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// validate rejects configs missing a section, which a partial JSON file or
// an explicit null would otherwise leave nil.
func (c *Config) validate() error {
	switch {
	case c.Server == nil:
		return fmt.Errorf("config is missing server_config")
	case c.Format == nil:
		return fmt.Errorf("config is missing format_config")
	case c.Templates == nil:
		return fmt.Errorf("config is missing template_config")
	case c.Server.StatsConfig == nil:
		return fmt.Errorf("config is missing server_config.stats_config")
	}
	return nil
}

// ConfigManager handles thread-safe access to configuration and derived state (trusted proxies).
type ConfigManager struct {
	config       *Config
	mu           sync.RWMutex
	trustedCIDRs []*net.IPNet
	trustedIPs   []net.IP
	configPath   string
	logger       *slog.Logger
	tm           *templating.TemplateManager
}

// NewConfigManager loads the config and initializes the manager.
func NewConfigManager(path string) (*ConfigManager, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	cm := &ConfigManager{
		config:     cfg,
		configPath: path,
		// Log to stdout before the application-specific logger is set.
		logger: slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{})),
	}
	cm.refreshCache()

	return cm, nil
}

// SetTemplateManager registers the template manager to receive config updates.
func (cm *ConfigManager) SetTemplateManager(tm *templating.TemplateManager) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.tm = tm
	if tm != nil {
		tm.SetConfig(cm.config.Templates)
	}
}

// SetLogger sets the logger used for config warnings.
func (cm *ConfigManager) SetLogger(logger *slog.Logger) {
	cm.logger = logger
}

// Get returns a thread-safe copy of the current configuration.
func (cm *ConfigManager) Get() Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return *cm.config
}

// Update validates the configuration, applies the template section, saves it
// to disk, and refreshes derived state. Server and format changes take
// effect on the next restart.
func (cm *ConfigManager) Update(newConfig Config) error {
	if err := newConfig.validate(); err != nil {
		return err
	}

	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.tm != nil {
		oldTmplConfig := cm.config.Templates

		cm.tm.SetConfig(newConfig.Templates)
		if err := cm.tm.Refresh(); err != nil {
			cm.tm.SetConfig(oldTmplConfig)
			_ = cm.tm.Refresh()
			return fmt.Errorf("template configuration rejected: %w", err)
		}
	}

	*cm.config = newConfig
	cm.refreshCache()

	data, err := json.MarshalIndent(cm.config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := atomic.WriteFile(cm.configPath, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// IsTrusted checks if an IP is in the trusted proxies list using the cache.
func (cm *ConfigManager) IsTrusted(ipAddr string) bool {
	parsedIP := net.ParseIP(ipAddr)
	if parsedIP == nil {
		return false
	}

	cm.mu.RLock()
	defer cm.mu.RUnlock()

	for _, ipNet := range cm.trustedCIDRs {
		if ipNet.Contains(parsedIP) {
			return true
		}
	}

	for _, trustedIP := range cm.trustedIPs {
		if trustedIP.Equal(parsedIP) {
			return true
		}
	}

	return false
}

// refreshCache rebuilds the binary IP lists from the config strings.
func (cm *ConfigManager) refreshCache() {
	var cidrs []*net.IPNet
	var ips []net.IP

	for _, t := range cm.config.Server.TrustedProxies {
		if strings.Contains(t, "/") {
			_, ipNet, err := net.ParseCIDR(t)
			if err == nil {
				cidrs = append(cidrs, ipNet)
			} else {
				cm.logger.Warn("Failed to parse trusted proxy CIDR", "cidr", t, "error", err)
			}
		} else {
			ip := net.ParseIP(t)
			if ip != nil {
				ips = append(ips, ip)
			} else {
				cm.logger.Warn("Failed to parse trusted proxy IP", "ip", t)
			}
		}
	}
	cm.trustedCIDRs = cidrs
	cm.trustedIPs = ips
}
