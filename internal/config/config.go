// Package config provides configuration management for cineshelf.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/ini.v1"

	"github.com/cineshelf/cineshelf/internal/constants"
)

// Config holds client settings loaded from the INI config file.
//
// Config file location:
//   - Windows: %APPDATA%\cineshelf\config
//   - Unix: ~/.config/cineshelf/config
//
// INI format:
//
//	[catalog]
//	base_url = http://localhost:5000/api
//	page_size = 12
//	admin_page_size = 10
//	debounce_ms = 350
//	timeout_seconds = 30
//	max_retries = 0
//	requests_per_second = 10
//	burst = 20
//
//	[proxy]
//	mode = no-proxy
//	host =
//	port = 8080
//	user =
//	no_proxy =
//	warmup = false
//
//	[logging]
//	level = info
//	file = false
//
//	[notifications]
//	desktop = false
type Config struct {
	// Catalog API settings
	APIBaseURL        string
	PageSize          int
	AdminPageSize     int
	DebounceMS        int
	TimeoutSeconds    int
	MaxRetries        int
	RequestsPerSecond float64
	Burst             float64

	// Proxy settings
	ProxyMode     string // "no-proxy", "system", "basic", "ntlm"
	ProxyHost     string
	ProxyPort     int
	ProxyUser     string
	ProxyPassword string // never written to disk; env or prompt only
	NoProxy       string // Comma-separated list of hosts to bypass proxy
	ProxyWarmup   bool

	// Logging
	LogLevel string
	LogFile  bool

	// DesktopNotifications sends notices through the OS notification center
	DesktopNotifications bool
}

// Validation errors
var (
	ErrMissingBaseURL   = errors.New("base_url is required")
	ErrInvalidBaseURL   = errors.New("base_url must be an absolute http(s) URL")
	ErrInvalidPageSize  = errors.New("page_size and admin_page_size must be between 1 and 100")
	ErrInvalidDebounce  = errors.New("debounce_ms must be between 0 and 5000")
	ErrInvalidTimeout   = errors.New("timeout_seconds must be between 1 and 600")
	ErrInvalidRetries   = errors.New("max_retries must be between 0 and 10")
	ErrInvalidRateLimit = errors.New("requests_per_second and burst must be positive")
	ErrInvalidProxyMode = errors.New("proxy mode must be one of no-proxy, system, basic, ntlm")
)

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		APIBaseURL:        constants.DefaultBaseURL,
		PageSize:          constants.DefaultPageSize,
		AdminPageSize:     constants.AdminPageSize,
		DebounceMS:        int(constants.DebounceWindow / time.Millisecond),
		TimeoutSeconds:    int(constants.DefaultRequestTimeout / time.Second),
		MaxRetries:        constants.DefaultMaxRetries,
		RequestsPerSecond: constants.DefaultRequestsPerSecond,
		Burst:             constants.DefaultBurst,
		ProxyMode:         "no-proxy",
		ProxyPort:         8080,
		LogLevel:          "info",
	}
}

// Load reads configuration from an INI file.
// If path is empty the default location is used. A missing file yields defaults.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		path = DefaultConfigPath()
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	iniFile, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	catalog := iniFile.Section("catalog")
	cfg.APIBaseURL = catalog.Key("base_url").MustString(cfg.APIBaseURL)
	cfg.PageSize = catalog.Key("page_size").MustInt(cfg.PageSize)
	cfg.AdminPageSize = catalog.Key("admin_page_size").MustInt(cfg.AdminPageSize)
	cfg.DebounceMS = catalog.Key("debounce_ms").MustInt(cfg.DebounceMS)
	cfg.TimeoutSeconds = catalog.Key("timeout_seconds").MustInt(cfg.TimeoutSeconds)
	cfg.MaxRetries = catalog.Key("max_retries").MustInt(cfg.MaxRetries)
	cfg.RequestsPerSecond = catalog.Key("requests_per_second").MustFloat64(cfg.RequestsPerSecond)
	cfg.Burst = catalog.Key("burst").MustFloat64(cfg.Burst)

	proxy := iniFile.Section("proxy")
	cfg.ProxyMode = proxy.Key("mode").MustString(cfg.ProxyMode)
	cfg.ProxyHost = proxy.Key("host").String()
	cfg.ProxyPort = proxy.Key("port").MustInt(cfg.ProxyPort)
	cfg.ProxyUser = proxy.Key("user").String()
	cfg.NoProxy = proxy.Key("no_proxy").String()
	cfg.ProxyWarmup = proxy.Key("warmup").MustBool(false)

	logging := iniFile.Section("logging")
	cfg.LogLevel = logging.Key("level").MustString(cfg.LogLevel)
	cfg.LogFile = logging.Key("file").MustBool(false)

	cfg.DesktopNotifications = iniFile.Section("notifications").Key("desktop").MustBool(false)

	return cfg, nil
}

// Save writes configuration to an INI file.
// Creates parent directories if they don't exist. The proxy password is never saved.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	iniFile := ini.Empty()

	catalog, err := iniFile.NewSection("catalog")
	if err != nil {
		return fmt.Errorf("failed to create catalog section: %w", err)
	}
	catalog.Key("base_url").SetValue(cfg.APIBaseURL)
	catalog.Key("page_size").SetValue(strconv.Itoa(cfg.PageSize))
	catalog.Key("admin_page_size").SetValue(strconv.Itoa(cfg.AdminPageSize))
	catalog.Key("debounce_ms").SetValue(strconv.Itoa(cfg.DebounceMS))
	catalog.Key("timeout_seconds").SetValue(strconv.Itoa(cfg.TimeoutSeconds))
	catalog.Key("max_retries").SetValue(strconv.Itoa(cfg.MaxRetries))
	catalog.Key("requests_per_second").SetValue(strconv.FormatFloat(cfg.RequestsPerSecond, 'f', -1, 64))
	catalog.Key("burst").SetValue(strconv.FormatFloat(cfg.Burst, 'f', -1, 64))

	proxy, err := iniFile.NewSection("proxy")
	if err != nil {
		return fmt.Errorf("failed to create proxy section: %w", err)
	}
	proxy.Key("mode").SetValue(cfg.ProxyMode)
	proxy.Key("host").SetValue(cfg.ProxyHost)
	proxy.Key("port").SetValue(strconv.Itoa(cfg.ProxyPort))
	proxy.Key("user").SetValue(cfg.ProxyUser)
	proxy.Key("no_proxy").SetValue(cfg.NoProxy)
	proxy.Key("warmup").SetValue(strconv.FormatBool(cfg.ProxyWarmup))

	logging, err := iniFile.NewSection("logging")
	if err != nil {
		return fmt.Errorf("failed to create logging section: %w", err)
	}
	logging.Key("level").SetValue(cfg.LogLevel)
	logging.Key("file").SetValue(strconv.FormatBool(cfg.LogFile))

	notifications, err := iniFile.NewSection("notifications")
	if err != nil {
		return fmt.Errorf("failed to create notifications section: %w", err)
	}
	notifications.Key("desktop").SetValue(strconv.FormatBool(cfg.DesktopNotifications))

	// Temporary file + rename for atomicity
	tmpPath := path + ".tmp"
	if err := iniFile.SaveTo(tmpPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(tmpPath, 0600); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to set config permissions: %w", err)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

// MergeWithFlags applies environment variables and command-line flags.
// Priority (highest to lowest): flags > environment > config file > defaults.
func (c *Config) MergeWithFlags(apiBaseURL, proxyMode, proxyHost string, proxyPort int) {
	if envURL := os.Getenv("CINESHELF_API_URL"); envURL != "" {
		c.APIBaseURL = envURL
	}
	if envPass := os.Getenv("CINESHELF_PROXY_PASSWORD"); envPass != "" {
		c.ProxyPassword = envPass
	}

	if apiBaseURL != "" {
		c.APIBaseURL = apiBaseURL
	}
	if proxyMode != "" {
		c.ProxyMode = proxyMode
	}
	if proxyHost != "" {
		c.ProxyHost = proxyHost
	}
	if proxyPort > 0 {
		c.ProxyPort = proxyPort
	}

	c.APIBaseURL = strings.TrimSuffix(strings.TrimSpace(c.APIBaseURL), "/")
	if c.APIBaseURL != "" && !strings.HasPrefix(c.APIBaseURL, "http") {
		c.APIBaseURL = "https://" + c.APIBaseURL
	}
}

// Validate checks if the configuration is usable by the API client.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return ErrMissingBaseURL
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidBaseURL
	}
	if c.PageSize < 1 || c.PageSize > 100 || c.AdminPageSize < 1 || c.AdminPageSize > 100 {
		return ErrInvalidPageSize
	}
	if c.DebounceMS < 0 || c.DebounceMS > 5000 {
		return ErrInvalidDebounce
	}
	if c.TimeoutSeconds < 1 || c.TimeoutSeconds > 600 {
		return ErrInvalidTimeout
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return ErrInvalidRetries
	}
	if c.RequestsPerSecond <= 0 || c.Burst <= 0 {
		return ErrInvalidRateLimit
	}
	switch strings.ToLower(c.ProxyMode) {
	case "", "no-proxy", "system", "basic", "ntlm":
	default:
		return ErrInvalidProxyMode
	}
	return nil
}

// DebounceWindow returns the filter debounce as a duration.
func (c *Config) DebounceWindow() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// RequestTimeout returns the per-request timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
