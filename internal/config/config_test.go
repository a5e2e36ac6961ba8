package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	if cfg.APIBaseURL != "http://localhost:5000/api" {
		t.Errorf("APIBaseURL = %q, want http://localhost:5000/api", cfg.APIBaseURL)
	}
	if cfg.PageSize != 12 {
		t.Errorf("PageSize = %d, want 12", cfg.PageSize)
	}
	if cfg.AdminPageSize != 10 {
		t.Errorf("AdminPageSize = %d, want 10", cfg.AdminPageSize)
	}
	if cfg.DebounceWindow() != 350*time.Millisecond {
		t.Errorf("DebounceWindow() = %v, want 350ms", cfg.DebounceWindow())
	}
	if cfg.MaxRetries != 0 {
		t.Errorf("MaxRetries = %d, want 0", cfg.MaxRetries)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config")

	cfg := NewConfig()
	cfg.APIBaseURL = "https://movies.example.com/api"
	cfg.PageSize = 24
	cfg.DebounceMS = 200
	cfg.MaxRetries = 2
	cfg.RequestsPerSecond = 2.5
	cfg.ProxyMode = "basic"
	cfg.ProxyHost = "proxy.internal"
	cfg.ProxyPort = 3128
	cfg.ProxyUser = "svc"
	cfg.ProxyPassword = "secret"
	cfg.NoProxy = "localhost,10.0.0.0/8"
	cfg.LogLevel = "debug"
	cfg.LogFile = true
	cfg.DesktopNotifications = true

	if err := Save(cfg, configPath); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("config file was not created: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
		t.Errorf("config permissions = %04o, want 0600", info.Mode().Perm())
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.APIBaseURL != cfg.APIBaseURL {
		t.Errorf("APIBaseURL = %q, want %q", loaded.APIBaseURL, cfg.APIBaseURL)
	}
	if loaded.PageSize != 24 || loaded.DebounceMS != 200 || loaded.MaxRetries != 2 {
		t.Errorf("catalog section = %+v", loaded)
	}
	if loaded.RequestsPerSecond != 2.5 {
		t.Errorf("RequestsPerSecond = %v, want 2.5", loaded.RequestsPerSecond)
	}
	if loaded.ProxyMode != "basic" || loaded.ProxyHost != "proxy.internal" || loaded.ProxyPort != 3128 {
		t.Errorf("proxy section = %q %q %d", loaded.ProxyMode, loaded.ProxyHost, loaded.ProxyPort)
	}
	if loaded.NoProxy != cfg.NoProxy {
		t.Errorf("NoProxy = %q, want %q", loaded.NoProxy, cfg.NoProxy)
	}
	if loaded.ProxyPassword != "" {
		t.Error("proxy password must not be persisted")
	}
	if loaded.LogLevel != "debug" || !loaded.LogFile || !loaded.DesktopNotifications {
		t.Errorf("logging/notifications = %q %v %v", loaded.LogLevel, loaded.LogFile, loaded.DesktopNotifications)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("Load should not fail for non-existent file: %v", err)
	}
	if cfg.PageSize != 12 {
		t.Errorf("expected defaults for missing file, got PageSize %d", cfg.PageSize)
	}
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(path, []byte("[catalog\nbase_url"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load should fail for malformed INI")
	}
}

func TestMergeWithFlags(t *testing.T) {
	t.Setenv("CINESHELF_API_URL", "http://env.example.com/api/")
	t.Setenv("CINESHELF_PROXY_PASSWORD", "from-env")

	cfg := NewConfig()
	cfg.MergeWithFlags("", "", "", 0)
	if cfg.APIBaseURL != "http://env.example.com/api" {
		t.Errorf("APIBaseURL = %q, want env value without trailing slash", cfg.APIBaseURL)
	}
	if cfg.ProxyPassword != "from-env" {
		t.Errorf("ProxyPassword = %q, want from-env", cfg.ProxyPassword)
	}

	cfg.MergeWithFlags("movies.example.com/api", "system", "proxy", 9000)
	if cfg.APIBaseURL != "https://movies.example.com/api" {
		t.Errorf("APIBaseURL = %q, want https scheme added", cfg.APIBaseURL)
	}
	if cfg.ProxyMode != "system" || cfg.ProxyHost != "proxy" || cfg.ProxyPort != 9000 {
		t.Errorf("proxy flags not applied: %q %q %d", cfg.ProxyMode, cfg.ProxyHost, cfg.ProxyPort)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"empty base url", func(c *Config) { c.APIBaseURL = " " }, ErrMissingBaseURL},
		{"relative base url", func(c *Config) { c.APIBaseURL = "/api" }, ErrInvalidBaseURL},
		{"ftp base url", func(c *Config) { c.APIBaseURL = "ftp://host/api" }, ErrInvalidBaseURL},
		{"zero page size", func(c *Config) { c.PageSize = 0 }, ErrInvalidPageSize},
		{"huge admin page size", func(c *Config) { c.AdminPageSize = 500 }, ErrInvalidPageSize},
		{"negative debounce", func(c *Config) { c.DebounceMS = -1 }, ErrInvalidDebounce},
		{"zero timeout", func(c *Config) { c.TimeoutSeconds = 0 }, ErrInvalidTimeout},
		{"too many retries", func(c *Config) { c.MaxRetries = 11 }, ErrInvalidRetries},
		{"zero rate", func(c *Config) { c.RequestsPerSecond = 0 }, ErrInvalidRateLimit},
		{"unknown proxy", func(c *Config) { c.ProxyMode = "socks" }, ErrInvalidProxyMode},
		{"ntlm proxy", func(c *Config) { c.ProxyMode = "NTLM" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestConfigDirOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CINESHELF_CONFIG_DIR", dir)

	if got := DefaultConfigPath(); got != filepath.Join(dir, "config") {
		t.Errorf("DefaultConfigPath() = %q", got)
	}
	if got := DefaultSessionPath(); got != filepath.Join(dir, "session.json") {
		t.Errorf("DefaultSessionPath() = %q", got)
	}
	if got := DefaultLogPath(); got != filepath.Join(dir, "logs", "cineshelf.log") {
		t.Errorf("DefaultLogPath() = %q", got)
	}
}
