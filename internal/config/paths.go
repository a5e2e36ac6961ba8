package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// ConfigDirName is the directory under the user config root.
const ConfigDirName = "cineshelf"

// ConfigDir returns the platform-appropriate config directory.
// CINESHELF_CONFIG_DIR overrides it.
//   - Windows: %APPDATA%\cineshelf
//   - Unix: ~/.config/cineshelf (XDG standard)
func ConfigDir() string {
	if dir := os.Getenv("CINESHELF_CONFIG_DIR"); dir != "" {
		return dir
	}
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, ConfigDirName)
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", ConfigDirName)
	}
	return filepath.Join(os.TempDir(), ConfigDirName)
}

// DefaultConfigPath returns the default INI config path.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config")
}

// DefaultSessionPath returns where the CLI keeps the signed-in session.
func DefaultSessionPath() string {
	return filepath.Join(ConfigDir(), "session.json")
}

// LogDirectory returns the directory for rotating log files.
func LogDirectory() string {
	return filepath.Join(ConfigDir(), "logs")
}

// DefaultLogPath returns the rotating log file path.
func DefaultLogPath() string {
	return filepath.Join(LogDirectory(), "cineshelf.log")
}

// EnsureConfigDir creates the config directory with owner-only permissions.
func EnsureConfigDir() error {
	return os.MkdirAll(ConfigDir(), 0700)
}
