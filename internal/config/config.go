// Package config loads FreeHand settings from an optional YAML file layered
// over built-in defaults.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	BackendSQLite      = "sqlite"
	BackendPreferences = "preferences"
	BackendMemory      = "memory"
)

type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Canvas  CanvasConfig  `yaml:"canvas"`
	UI      UIConfig      `yaml:"ui"`
	Log     LogConfig     `yaml:"log"`
}

type StorageConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
	Key     string `yaml:"key"`
}

type CanvasConfig struct {
	Background     string   `yaml:"background"`
	DefaultColor   string   `yaml:"default_color"`
	DefaultWidth   float64  `yaml:"default_width"`
	Sizes          []int    `yaml:"sizes"`
	Presets        []string `yaml:"presets"`
	RecentLimit    int      `yaml:"recent_limit"`
	ThumbnailWidth int      `yaml:"thumbnail_width"`
}

type UIConfig struct {
	ReturnDelay time.Duration `yaml:"return_delay"`
	Width       float32       `yaml:"width"`
	Height      float32       `yaml:"height"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the settings used when no config file is given.
func Default() Config {
	return Config{
		Storage: StorageConfig{
			Backend: BackendSQLite,
			Path:    defaultDBPath(),
			Key:     "drawings",
		},
		Canvas: CanvasConfig{
			Background:   "#ffffff",
			DefaultColor: "#000000",
			DefaultWidth: 8,
			Sizes:        []int{4, 8, 16, 24, 32},
			Presets: []string{
				"#000000", "#FF6B6B", "#4ECDC4", "#45B7D1",
				"#FFA07A", "#98D8C8", "#F7DC6F", "#BB8FCE",
			},
			RecentLimit:    4,
			ThumbnailWidth: 320,
		},
		UI: UIConfig{
			ReturnDelay: 500 * time.Millisecond,
			Width:       1024,
			Height:      768,
		},
		Log: LogConfig{Level: "info"},
	}
}

func defaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "freehand", "drawings.db")
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	switch c.Storage.Backend {
	case BackendSQLite, BackendPreferences, BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("storage.backend: unknown backend %q", c.Storage.Backend))
	}
	if c.Storage.Backend == BackendSQLite && c.Storage.Path == "" {
		errs = append(errs, errors.New("storage.path: required for sqlite backend"))
	}
	if c.Storage.Key == "" {
		errs = append(errs, errors.New("storage.key: must not be empty"))
	}
	if _, err := ParseHexColor(c.Canvas.Background); err != nil {
		errs = append(errs, fmt.Errorf("canvas.background: %w", err))
	}
	if _, err := ParseHexColor(c.Canvas.DefaultColor); err != nil {
		errs = append(errs, fmt.Errorf("canvas.default_color: %w", err))
	}
	for _, p := range c.Canvas.Presets {
		if _, err := ParseHexColor(p); err != nil {
			errs = append(errs, fmt.Errorf("canvas.presets: %w", err))
		}
	}
	if c.Canvas.DefaultWidth <= 0 {
		errs = append(errs, fmt.Errorf("canvas.default_width: must be positive, got %v", c.Canvas.DefaultWidth))
	}
	for _, s := range c.Canvas.Sizes {
		if s <= 0 {
			errs = append(errs, fmt.Errorf("canvas.sizes: must be positive, got %d", s))
		}
	}
	if c.Canvas.RecentLimit < 1 {
		errs = append(errs, fmt.Errorf("canvas.recent_limit: must be at least 1, got %d", c.Canvas.RecentLimit))
	}
	if c.Canvas.ThumbnailWidth < 0 {
		errs = append(errs, fmt.Errorf("canvas.thumbnail_width: must not be negative, got %d", c.Canvas.ThumbnailWidth))
	}
	if c.UI.ReturnDelay < 0 {
		errs = append(errs, fmt.Errorf("ui.return_delay: must not be negative, got %v", c.UI.ReturnDelay))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	return errors.Join(errs...)
}

// ParseHexColor accepts "#rgb" and "#rrggbb" in either case.
func ParseHexColor(s string) (color.NRGBA, error) {
	c := color.NRGBA{A: 0xff}
	if !strings.HasPrefix(s, "#") {
		return c, fmt.Errorf("invalid colour %q: missing '#'", s)
	}
	hex := s[1:]
	var err error
	switch len(hex) {
	case 6:
		_, err = fmt.Sscanf(hex, "%02x%02x%02x", &c.R, &c.G, &c.B)
	case 3:
		_, err = fmt.Sscanf(hex, "%1x%1x%1x", &c.R, &c.G, &c.B)
		c.R *= 17
		c.G *= 17
		c.B *= 17
	default:
		err = errors.New("want 3 or 6 hex digits")
	}
	if err != nil {
		return c, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return c, nil
}

// HexColor formats c as "#rrggbb", dropping alpha.
func HexColor(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
}
