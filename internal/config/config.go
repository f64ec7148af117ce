package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultShortcut      = "CommandOrControl+Shift+T"
	DefaultTitle         = "pintodo"
	DefaultBackground    = "#ffffff"
	DefaultWebSocketAddr = "127.0.0.1:47811"

	// DevModeEnv switches the host into development mode when set to
	// DevModeValue.
	DevModeEnv   = "PINTODO_ENV"
	DevModeValue = "development"
)

// WindowConfig describes the construction parameters of the single window.
type WindowConfig struct {
	Title       string `yaml:"title"`
	X           int    `yaml:"x"`
	Y           int    `yaml:"y"`
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	Resizable   bool   `yaml:"resizable"`
	AlwaysOnTop bool   `yaml:"always_on_top"`
	Background  string `yaml:"background"` // #rrggbb
	Icon        string `yaml:"icon,omitempty"`
}

// ContentConfig describes what is loaded into the window.
type ContentConfig struct {
	// URL of the page content. Empty means file://<config dir>/content/index.html.
	URL string `yaml:"url,omitempty"`
	// Command is an optional content process started after the window exists.
	Command []string `yaml:"command,omitempty"`
}

// BridgeConfig configures the content-to-host command transports.
type BridgeConfig struct {
	// Socket overrides the unix socket path (default: runtime dir).
	Socket string `yaml:"socket,omitempty"`
	// WebSocketAddr is the loopback listen address for web content. Empty disables it.
	WebSocketAddr  string   `yaml:"websocket_addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// LifecycleConfig controls process persistence.
type LifecycleConfig struct {
	// KeepAliveWithoutWindows keeps the host running after its window
	// closes. nil means the platform convention (darwin only).
	KeepAliveWithoutWindows *bool `yaml:"keep_alive_without_windows,omitempty"`
}

// DevConfig holds development-mode settings.
type DevConfig struct {
	// InspectorCommand is the terminal prefix used to launch the debugging panel.
	InspectorCommand []string `yaml:"inspector_command"`
}

// Config is the effective configuration after defaults and file values are merged.
type Config struct {
	LogLevel  string          `yaml:"log_level"`
	Shortcut  string          `yaml:"shortcut"`
	Window    WindowConfig    `yaml:"window"`
	Content   ContentConfig   `yaml:"content"`
	Bridge    BridgeConfig    `yaml:"bridge"`
	Lifecycle LifecycleConfig `yaml:"lifecycle"`
	Dev       DevConfig       `yaml:"dev"`

	// path is where the config was loaded from; empty for pure defaults.
	path string
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Shortcut: DefaultShortcut,
		Window: WindowConfig{
			Title:       DefaultTitle,
			X:           100,
			Y:           100,
			Width:       380,
			Height:      600,
			Resizable:   true,
			AlwaysOnTop: true,
			Background:  DefaultBackground,
		},
		Bridge: BridgeConfig{
			WebSocketAddr:  DefaultWebSocketAddr,
			AllowedOrigins: []string{"null", "file://"},
		},
		Dev: DevConfig{
			InspectorCommand: []string{"x-terminal-emulator", "-e"},
		},
	}
}

// Path returns the file this config was loaded from, if any.
func (c *Config) Path() string {
	return c.path
}

// KeepAliveWithoutWindows returns the effective keep-alive policy.
func (c *Config) KeepAliveWithoutWindows() bool {
	if c.Lifecycle.KeepAliveWithoutWindows == nil {
		return runtime.GOOS == "darwin"
	}
	return *c.Lifecycle.KeepAliveWithoutWindows
}

// ContentURL returns the configured content URL, falling back to the local
// index page next to the config file.
func (c *Config) ContentURL() string {
	if strings.TrimSpace(c.Content.URL) != "" {
		return c.Content.URL
	}
	dir := filepath.Dir(c.path)
	if c.path == "" {
		if p, err := DefaultConfigPath(); err == nil {
			dir = filepath.Dir(p)
		}
	}
	return "file://" + filepath.ToSlash(filepath.Join(dir, "content", "index.html"))
}

// BackgroundPixel parses the window background into a 0xRRGGBB pixel value.
func (c *Config) BackgroundPixel() (uint32, error) {
	return ParseHexColor(c.Window.Background)
}

// ParseHexColor parses "#rrggbb" (or "rrggbb").
func ParseHexColor(s string) (uint32, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return 0, fmt.Errorf("invalid color %q: want #rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return uint32(v), nil
}

// DevMode reports whether the process runs in development mode.
func DevMode() bool {
	return os.Getenv(DevModeEnv) == DevModeValue
}

// SlogLevel returns the slog level for LogLevel. Development mode always
// logs at debug.
func (c *Config) SlogLevel() slog.Level {
	if DevMode() {
		return slog.LevelDebug
	}
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate checks the effective configuration for values the host cannot use.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level: unsupported value %q (want debug, info, warn, error)", c.LogLevel)
	}
	if strings.TrimSpace(c.Shortcut) == "" {
		return fmt.Errorf("shortcut: must not be empty")
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window: width and height must be positive (got %dx%d)", c.Window.Width, c.Window.Height)
	}
	if _, err := c.BackgroundPixel(); err != nil {
		return fmt.Errorf("window.background: %w", err)
	}
	for i, arg := range c.Content.Command {
		if strings.TrimSpace(arg) == "" {
			return fmt.Errorf("content.command[%d]: must not be empty", i)
		}
	}
	return nil
}

// Marshal renders the effective configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
