package tui

import (
	"log/slog"
	"time"

	"github.com/Veraticus/zentrum/internal/service"
	"github.com/Veraticus/zentrum/internal/tui/themes"
)

// Config holds TUI configuration.
type Config struct {
	Theme          themes.Theme
	Client         service.Extractions
	Logger         *slog.Logger
	RequestTimeout time.Duration
	Width          int
	Height         int
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:          themes.Default,
		RequestTimeout: 2 * time.Minute,
		Width:          80,
		Height:         24,
	}
}

// WithClient sets the extraction service client.
func WithClient(client service.Extractions) Option {
	return func(c *Config) {
		c.Client = client
	}
}

// WithTheme sets the color theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithLogger sets the logger passed to the controllers.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithRequestTimeout bounds each request made from the browser.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.RequestTimeout = d
	}
}

// WithSize sets the initial dimensions.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}
