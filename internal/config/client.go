package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/Veraticus/zentrum/internal/common"
	"github.com/spf13/viper"
)

// Configuration keys understood by the client.
const (
	KeyServerURL     = "server.url"
	KeyServerTimeout = "server.timeout"
	KeyServerCAFile  = "server.ca_file"
	KeySettingsPath  = "settings.path"
	KeyWatchDebounce = "watch.debounce"
	KeyLogLevel      = "logging.level"
	KeyLogFormat     = "logging.format"
)

// Defaults applied when nothing is configured.
const (
	DefaultServerURL     = "http://localhost:8080"
	DefaultServerTimeout = 5 * time.Minute
	DefaultSettingsPath  = "$HOME/.local/share/zentrum/settings.db"
	DefaultWatchDebounce = 750 * time.Millisecond
)

// ClientConfig holds everything needed to talk to the extraction service.
type ClientConfig struct {
	ServerURL     string
	SettingsPath  string
	CAFile        string
	Timeout       time.Duration
	WatchDebounce time.Duration
}

// Default returns a ClientConfig populated with defaults.
func Default() ClientConfig {
	return ClientConfig{
		ServerURL:     DefaultServerURL,
		SettingsPath:  ExpandPath(DefaultSettingsPath),
		Timeout:       DefaultServerTimeout,
		WatchDebounce: DefaultWatchDebounce,
	}
}

// SetDefaults registers the defaults on a viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyServerURL, DefaultServerURL)
	v.SetDefault(KeyServerTimeout, DefaultServerTimeout)
	v.SetDefault(KeySettingsPath, DefaultSettingsPath)
	v.SetDefault(KeyWatchDebounce, DefaultWatchDebounce)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
}

// Load reads the client configuration from viper, falling back to defaults
// for unset values.
func Load(v *viper.Viper) (ClientConfig, error) {
	cfg := Default()

	if s := v.GetString(KeyServerURL); s != "" {
		cfg.ServerURL = s
	}
	// Zero disables the client-side limit.
	if v.IsSet(KeyServerTimeout) {
		cfg.Timeout = v.GetDuration(KeyServerTimeout)
	}
	if p := v.GetString(KeySettingsPath); p != "" {
		cfg.SettingsPath = ExpandPath(p)
	}
	if p := v.GetString(KeyServerCAFile); p != "" {
		cfg.CAFile = ExpandPath(p)
	}
	if d := v.GetDuration(KeyWatchDebounce); d > 0 {
		cfg.WatchDebounce = d
	}

	if err := cfg.Validate(); err != nil {
		return ClientConfig{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration can be used.
func (c ClientConfig) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("%w: server.url", common.ErrMissingConfig)
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("%w: server.url: %v", common.ErrInvalidConfig, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: server.url must be http or https, got %q", common.ErrInvalidConfig, c.ServerURL)
	}
	if c.SettingsPath == "" {
		return fmt.Errorf("%w: settings.path", common.ErrMissingConfig)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: server.timeout must not be negative", common.ErrInvalidConfig)
	}
	return nil
}
