package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cineshelf/cineshelf/internal/api"
	"github.com/cineshelf/cineshelf/internal/config"
	"github.com/cineshelf/cineshelf/internal/models"
)

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage cineshelf configuration",
		Long: `Configuration management commands for cineshelf.

Commands:
  init  - Interactive configuration setup
  show  - Display current configuration
  test  - Test API connection
  path  - Show configuration file path`,
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigTestCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

func promptInt(label string, def int) (int, error) {
	input, err := promptLine(label, strconv.Itoa(def))
	if err != nil {
		return def, err
	}
	v, err := strconv.Atoi(input)
	if err != nil || v < 0 {
		return def, nil
	}
	return v, nil
}

// newConfigInitCmd creates the 'config init' command.
func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration interactively",
		Long: `Interactive configuration setup for cineshelf.

The configuration is saved to ~/.config/cineshelf/config
(%APPDATA%\cineshelf\config on Windows).

Use --force to overwrite existing configuration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := GetLogger()
			out := cmd.OutOrStdout()
			path := configPath()

			if !force {
				if _, err := os.Stat(path); err == nil {
					fmt.Fprintf(out, "Configuration already exists at: %s\n", path)
					fmt.Fprintln(out, "Use --force to overwrite or run 'config show' to view current config.")
					return nil
				}
			}

			fmt.Fprintln(out, "cineshelf Configuration Setup")
			fmt.Fprintln(out, "=============================")
			fmt.Fprintln(out)

			cfg := config.NewConfig()
			var err error

			if cfg.APIBaseURL, err = promptLine("API Base URL", cfg.APIBaseURL); err != nil {
				return err
			}
			if cfg.PageSize, err = promptInt("Movies per page", cfg.PageSize); err != nil {
				return err
			}
			if cfg.AdminPageSize, err = promptInt("Movies per manage page", cfg.AdminPageSize); err != nil {
				return err
			}
			if cfg.DebounceMS, err = promptInt("Search debounce (ms)", cfg.DebounceMS); err != nil {
				return err
			}

			fmt.Fprintln(out)
			useProxy, err := promptConfirm("Configure proxy?")
			if err != nil {
				return err
			}
			if useProxy {
				fmt.Fprintln(out, "Proxy modes: no-proxy, system, basic, ntlm")
				if cfg.ProxyMode, err = promptLine("Proxy mode", "system"); err != nil {
					return err
				}
				if cfg.ProxyMode != "no-proxy" {
					if cfg.ProxyHost, err = promptLine("Proxy host", ""); err != nil {
						return err
					}
					if cfg.ProxyPort, err = promptInt("Proxy port", cfg.ProxyPort); err != nil {
						return err
					}
				}
				mode := strings.ToLower(cfg.ProxyMode)
				if mode == "basic" || mode == "ntlm" {
					if cfg.ProxyUser, err = promptLine("Proxy user", ""); err != nil {
						return err
					}
				}
			}

			desktop, err := promptConfirm("Desktop notifications?")
			if err != nil {
				return err
			}
			cfg.DesktopNotifications = desktop

			cfg.MergeWithFlags("", "", "", 0)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			if err := config.Save(cfg, path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			logger.Info().Str("path", path).Msg("Configuration saved")

			fmt.Fprintln(out)
			fmt.Fprintf(out, "✓ Configuration saved to: %s\n", path)
			fmt.Fprintln(out, "Test your configuration with: cineshelf config test")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing configuration")

	return cmd
}

// newConfigShowCmd creates the 'config show' command.
func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long: `Display the current configuration settings.

This command shows the merged configuration from:
  1. Configuration file (~/.config/cineshelf/config)
  2. Environment variables (CINESHELF_API_URL, CINESHELF_PROXY_PASSWORD)
  3. Command-line flags (--api-url, --proxy-*)

Priority: flags > environment > config file > defaults`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			path := configPath()

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			fmt.Fprintln(out, "Current Configuration")
			fmt.Fprintln(out, "=====================")
			fmt.Fprintln(out)

			fmt.Fprintln(out, "Catalog:")
			fmt.Fprintf(out, "  API Base URL:     %s\n", cfg.APIBaseURL)
			fmt.Fprintf(out, "  Page Size:        %d\n", cfg.PageSize)
			fmt.Fprintf(out, "  Manage Page Size: %d\n", cfg.AdminPageSize)
			fmt.Fprintf(out, "  Debounce:         %s\n", cfg.DebounceWindow())
			fmt.Fprintf(out, "  Timeout:          %s\n", cfg.RequestTimeout())
			fmt.Fprintf(out, "  Max Retries:      %d\n", cfg.MaxRetries)
			fmt.Fprintf(out, "  Rate Limit:       %g req/s (burst %g)\n", cfg.RequestsPerSecond, cfg.Burst)
			fmt.Fprintln(out)

			fmt.Fprintln(out, "Proxy Settings:")
			fmt.Fprintf(out, "  Proxy Mode: %s\n", cfg.ProxyMode)
			if cfg.ProxyHost != "" {
				fmt.Fprintf(out, "  Proxy Host: %s\n", cfg.ProxyHost)
				fmt.Fprintf(out, "  Proxy Port: %d\n", cfg.ProxyPort)
			}
			if cfg.ProxyUser != "" {
				fmt.Fprintf(out, "  Proxy User: %s\n", cfg.ProxyUser)
				if cfg.ProxyPassword != "" {
					fmt.Fprintln(out, "  Proxy Password: <set>")
				} else {
					fmt.Fprintln(out, "  Proxy Password: <prompted>")
				}
			}
			if cfg.NoProxy != "" {
				fmt.Fprintf(out, "  No Proxy:   %s\n", cfg.NoProxy)
			}
			fmt.Fprintln(out)

			fmt.Fprintln(out, "Logging:")
			fmt.Fprintf(out, "  Level: %s\n", cfg.LogLevel)
			fmt.Fprintf(out, "  File:  %v\n", cfg.LogFile)
			fmt.Fprintf(out, "  Desktop Notifications: %v\n", cfg.DesktopNotifications)
			fmt.Fprintln(out)

			fmt.Fprintf(out, "Configuration file: %s\n", path)
			if _, err := os.Stat(path); os.IsNotExist(err) {
				fmt.Fprintln(out, "  (file does not exist - using defaults)")
			}

			return nil
		},
	}
}

// newConfigTestCmd creates the 'config test' command.
func newConfigTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Test API connection",
		Long: `Fetch one movie with the current configuration to check the base URL
and network connectivity.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := GetLogger()
			out := cmd.OutOrStdout()

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			fmt.Fprintf(out, "API URL: %s\n", cfg.APIBaseURL)
			fmt.Fprintln(out, "Testing connection...")

			client, err := api.NewClient(cfg, nil)
			if err != nil {
				return fmt.Errorf("failed to create API client: %w", err)
			}
			client.SetLogger(logger)

			ctx, cancel := context.WithTimeout(GetContext(), cfg.RequestTimeout())
			defer cancel()

			result, err := client.ListSorted(ctx, 1, 1, models.DefaultSort())
			if err != nil {
				logger.Error().Err(err).Msg("Connection test failed")
				fmt.Fprintln(out, "✗ Connection FAILED")
				fmt.Fprintf(out, "  Error: %s\n", api.ErrorMessage(err, "request failed"))
				return fmt.Errorf("connection test failed")
			}

			logger.Info().Msg("Connection test successful")
			fmt.Fprintln(out, "✓ Connection SUCCESSFUL")
			fmt.Fprintf(out, "  Catalog size: %d movies\n", result.Total)
			return nil
		},
	}
}

// newConfigPathCmd creates the 'config path' command.
func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Long:  `Display the paths of the configuration, session and log files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			path := configPath()

			if cfgFile != "" {
				fmt.Fprintln(out, "Configuration path (from --config flag):")
			} else {
				fmt.Fprintln(out, "Default configuration path:")
			}
			fmt.Fprintf(out, "  %s\n", path)
			fmt.Fprintln(out)

			if info, err := os.Stat(path); err == nil {
				fmt.Fprintln(out, "Status: ✓ File exists")
				fmt.Fprintf(out, "Size:   %d bytes\n", info.Size())
				fmt.Fprintf(out, "Modified: %s\n", info.ModTime().Format("2006-01-02 15:04:05"))
			} else {
				fmt.Fprintln(out, "Status: File does not exist")
				fmt.Fprintln(out, "Create a configuration file with: cineshelf config init")
			}

			fmt.Fprintln(out)
			fmt.Fprintf(out, "Session: %s\n", config.DefaultSessionPath())
			fmt.Fprintf(out, "Logs:    %s\n", config.DefaultLogPath())
			return nil
		},
	}
}
