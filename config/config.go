// Package config loads the autostart TOML configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/lixenwraith/autostart/apps/autostart"
	"github.com/lixenwraith/autostart/input"
	"github.com/lixenwraith/autostart/loader"
	"github.com/lixenwraith/autostart/notification"
)

// Duration is a time.Duration written as a Go duration string ("20ms", "1.5s")
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config is the file layout
type Config struct {
	Loader       LoaderConfig       `toml:"loader"`
	App          AppConfig          `toml:"app"`
	Input        InputConfig        `toml:"input"`
	Notification NotificationConfig `toml:"notification"`
}

type LoaderConfig struct {
	Autostart  string   `toml:"autostart"`
	StartDelay Duration `toml:"start_delay"`
	Chime      bool     `toml:"chime"`
}

type AppConfig struct {
	PollInterval Duration `toml:"poll_interval"`
}

// InputConfig maps device keys to terminal key names
// Listed device keys replace their default bindings, others keep them
type InputConfig struct {
	Bindings map[string][]string `toml:"bindings"`
}

type NotificationConfig struct {
	Enabled bool    `toml:"enabled"`
	Volume  float64 `toml:"volume"`
}

// Default returns the built-in configuration
func Default() Config {
	n := notification.DefaultConfig()
	return Config{
		Loader: LoaderConfig{
			Autostart: autostart.AppName,
		},
		App: AppConfig{
			PollInterval: Duration(autostart.DefaultPollInterval),
		},
		Input: InputConfig{
			Bindings: input.DefaultBindings(),
		},
		Notification: NotificationConfig{
			Enabled: n.Enabled,
			Volume:  n.Volume,
		},
	}
}

// Load reads path over the defaults; a missing file yields the defaults
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML from r over the defaults
// Unknown keys are rejected
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	defaults := cfg.Input.Bindings
	cfg.Input.Bindings = nil

	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("unknown keys:\n%s", strict.String())
		}
		return Config{}, err
	}

	for device, names := range defaults {
		if _, ok := cfg.Input.Bindings[device]; !ok {
			if cfg.Input.Bindings == nil {
				cfg.Input.Bindings = make(map[string][]string)
			}
			cfg.Input.Bindings[device] = names
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and key bindings
func (c Config) Validate() error {
	if c.Loader.StartDelay < 0 {
		return fmt.Errorf("loader.start_delay: negative duration %v", time.Duration(c.Loader.StartDelay))
	}
	if c.App.PollInterval <= 0 {
		return fmt.Errorf("app.poll_interval: must be positive, got %v", time.Duration(c.App.PollInterval))
	}
	if c.Notification.Volume < 0 || c.Notification.Volume > 1 {
		return fmt.Errorf("notification.volume: %v outside [0, 1]", c.Notification.Volume)
	}
	if _, err := input.NewKeymap(c.Input.Bindings); err != nil {
		return fmt.Errorf("input.bindings: %w", err)
	}
	return nil
}

// ForLoader returns the loader settings
func (c Config) ForLoader() loader.Config {
	return loader.Config{
		Autostart:  c.Loader.Autostart,
		StartDelay: time.Duration(c.Loader.StartDelay),
		Chime:      c.Loader.Chime,
	}
}

// ForNotification returns the notification settings
func (c Config) ForNotification() notification.Config {
	n := notification.DefaultConfig()
	n.Enabled = c.Notification.Enabled
	n.Volume = c.Notification.Volume
	return n
}

// PollInterval returns the application poll quantum
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.App.PollInterval)
}

// Keymap builds the input keymap from the bindings
func (c Config) Keymap() (*input.Keymap, error) {
	return input.NewKeymap(c.Input.Bindings)
}
