// Package config loads dotfield settings from defaults, an optional config
// file, DOTFIELD_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"dotfield/hal"
	"dotfield/particles"
	"dotfield/tasks/dots"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// EnvPrefix is prepended to every environment override, e.g. DOTFIELD_HEADLESS_HZ.
const EnvPrefix = "DOTFIELD"

// Keys shared with flag bindings.
const (
	KeyWidth      = "width"
	KeyHeight     = "height"
	KeyProfile    = "profile"
	KeyIterate    = "iterate"
	KeySeed       = "seed"
	KeyColor      = "color"
	KeyLineWidth  = "line_width"
	KeyFPS        = "fps"
	KeyHUD        = "hud"
	KeyVerbose    = "verbose"
	KeyTermHz     = "terminal.hz"
	KeyHz         = "headless.hz"
	KeyTicks      = "headless.ticks"
	KeyOrbit      = "headless.orbit"
	KeySnapshot   = "headless.snapshot"
	keyCustomBase = "custom."
)

var ErrInvalid = errors.New("invalid config")

type Custom struct {
	Count        int     `mapstructure:"count"`
	LinkDistance float64 `mapstructure:"link_distance"`
	CursorRadius float64 `mapstructure:"cursor_radius"`
	RadiusMin    float64 `mapstructure:"radius_min"`
	RadiusMax    float64 `mapstructure:"radius_max"`
}

type Terminal struct {
	Hz int `mapstructure:"hz"`
}

type Headless struct {
	Hz       int    `mapstructure:"hz"`
	Ticks    uint64 `mapstructure:"ticks"`
	Orbit    bool   `mapstructure:"orbit"`
	Snapshot string `mapstructure:"snapshot"` // PNG path written after the run
}

// Config is the resolved set of settings.
type Config struct {
	Width     int      `mapstructure:"width"`
	Height    int      `mapstructure:"height"`
	Profile   string   `mapstructure:"profile"` // auto|compact|full|custom
	Custom    Custom   `mapstructure:"custom"`
	Iterate   string   `mapstructure:"iterate"` // all|one
	Seed      int64    `mapstructure:"seed"`
	Color     string   `mapstructure:"color"` // hex, e.g. #ff7155
	LineWidth float64  `mapstructure:"line_width"`
	FPS       int      `mapstructure:"fps"`
	HUD       bool     `mapstructure:"hud"`
	Verbose   bool     `mapstructure:"verbose"`
	Terminal  Terminal `mapstructure:"terminal"`
	Headless  Headless `mapstructure:"headless"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

// New returns a viper instance with defaults and environment overrides set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyWidth, hal.DefaultWidth)
	v.SetDefault(KeyHeight, hal.DefaultHeight)
	v.SetDefault(KeyProfile, "auto")
	v.SetDefault(keyCustomBase+"count", 0)
	v.SetDefault(keyCustomBase+"link_distance", 0.0)
	v.SetDefault(keyCustomBase+"cursor_radius", 0.0)
	v.SetDefault(keyCustomBase+"radius_min", 0.0)
	v.SetDefault(keyCustomBase+"radius_max", 0.0)
	v.SetDefault(KeyIterate, particles.IterateAll.String())
	v.SetDefault(KeySeed, 0)
	v.SetDefault(KeyColor, "#ff7155")
	v.SetDefault(KeyLineWidth, particles.DefaultLineWidth)
	v.SetDefault(KeyFPS, dots.DefaultFPS)
	v.SetDefault(KeyHUD, false)
	v.SetDefault(KeyVerbose, false)
	v.SetDefault(KeyTermHz, 30)
	v.SetDefault(KeyHz, 60)
	v.SetDefault(KeyTicks, 0)
	v.SetDefault(KeyOrbit, true)
	v.SetDefault(KeySnapshot, "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads file (or dotfield.{yaml,toml,json} from the working and user config
// directories when file is empty), unmarshals and validates the result.
func Load(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("dotfield")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "dotfield"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges and enum values.
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: size %dx%d", ErrInvalid, c.Width, c.Height)
	case c.FPS <= 0 || c.FPS > 1000:
		return fmt.Errorf("%w: fps %d", ErrInvalid, c.FPS)
	case c.LineWidth < 0:
		return fmt.Errorf("%w: line_width %v", ErrInvalid, c.LineWidth)
	case c.Terminal.Hz <= 0:
		return fmt.Errorf("%w: terminal.hz %d", ErrInvalid, c.Terminal.Hz)
	case c.Headless.Hz <= 0:
		return fmt.Errorf("%w: headless.hz %d", ErrInvalid, c.Headless.Hz)
	}
	if _, err := particles.ParseIterationMode(c.Iterate); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := c.accent(); err != nil {
		return err
	}
	if c.Profile == dots.ProfileCustom {
		if err := c.customProfile().Validate(); err != nil {
			return fmt.Errorf("%w: custom: %v", ErrInvalid, err)
		}
		return nil
	}
	if _, err := particles.ProfileByName(c.Profile, c.Width); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

func (c Config) accent() (color.RGBA, error) {
	col, err := colorful.Hex(c.Color)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: color %q: %v", ErrInvalid, c.Color, err)
	}
	r, g, b := col.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}, nil
}

func (c Config) customProfile() particles.Profile {
	return particles.Profile{
		Name:         dots.ProfileCustom,
		Count:        c.Custom.Count,
		LinkDistance: c.Custom.LinkDistance,
		CursorRadius: c.Custom.CursorRadius,
		RadiusMin:    c.Custom.RadiusMin,
		RadiusMax:    c.Custom.RadiusMax,
	}
}

// DotsOptions converts the config into backdrop options. It assumes Validate passed.
func (c Config) DotsOptions(log *zap.Logger) dots.Options {
	mode, _ := particles.ParseIterationMode(c.Iterate)
	accent, _ := c.accent()
	opts := dots.Options{
		Profile:   c.Profile,
		Mode:      mode,
		Seed:      c.Seed,
		Color:     accent,
		LineWidth: c.LineWidth,
		FPS:       c.FPS,
		HUD:       c.HUD,
		Logger:    log,
	}
	if c.Profile == dots.ProfileCustom {
		opts.Custom = c.customProfile()
	}
	return opts
}

// HostOptions returns the HAL options for the configured framebuffer.
func (c Config) HostOptions(log *zap.Logger) hal.Options {
	return hal.Options{Width: c.Width, Height: c.Height, Logger: log}
}
