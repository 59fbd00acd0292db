// Package config holds the bridge's process-wide configuration, populated
// from CLI flags and environment overrides by cmd/xwl-run.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config is the bridge's immutable startup configuration.
type Config struct {
	Scale            float64
	AppID            string
	Display          int // X display number; -1 means auto-pick.
	ExitWithChild    bool
	ClipboardManager bool
	FrameColor       string // "" means unset, else "#RRGGBB"
	ShowWindowTitle  bool
	DRMDevice        string
	Glamor           bool
	Program          string
	ProgramArgs      []string
}

// Default returns a Config with the documented defaults, before flags or
// env are applied.
func Default() Config {
	return Config{
		Scale:            1.0,
		Display:          -1,
		ExitWithChild:    true,
		ClipboardManager: true,
	}
}

// ApplyEnv overlays XWL_* environment variables onto cfg. Flags parsed
// afterward by cmd/xwl-run take precedence over env.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("XWL_SCALE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("XWL_SCALE: %w", err)
		}
		c.Scale = f
	}
	if v := getenv("XWL_CLIPBOARD_MANAGER"); v != "" {
		c.ClipboardManager = parseBool(v, c.ClipboardManager)
	}
	if v := getenv("XWL_FRAME_COLOR"); v != "" {
		c.FrameColor = v
	}
	if v := getenv("XWL_SHOW_WINDOW_TITLE"); v != "" {
		c.ShowWindowTitle = parseBool(v, c.ShowWindowTitle)
	}
	if v := getenv("XWL_DRM_DEVICE"); v != "" {
		c.DRMDevice = v
	}
	if v := getenv("XWL_GLAMOR"); v != "" {
		c.Glamor = parseBool(v, c.Glamor)
	}
	return nil
}

func parseBool(v string, fallback bool) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// Validate catches configuration errors before any side effect (forking
// the X renderer, opening sockets, etc).
func (c *Config) Validate() error {
	if c.Scale < 0.1 || c.Scale > 10.0 {
		return fmt.Errorf("--scale=%v out of range [0.1, 10.0]", c.Scale)
	}
	if c.Program == "" {
		return fmt.Errorf("no program to run")
	}
	if c.FrameColor != "" {
		if _, err := parseHexColor(c.FrameColor); err != nil {
			return fmt.Errorf("--frame-color: %w", err)
		}
	}
	return nil
}

// FrameColorRGB parses the configured frame color, if any, into 8-bit
// components. ok is false when no frame color was configured.
func (c *Config) FrameColorRGB() (r, g, b byte, ok bool, err error) {
	if c.FrameColor == "" {
		return 0, 0, 0, false, nil
	}
	rgb, err := parseHexColor(c.FrameColor)
	if err != nil {
		return 0, 0, 0, false, err
	}
	return rgb[0], rgb[1], rgb[2], true, nil
}

func parseHexColor(s string) ([3]byte, error) {
	var rgb [3]byte
	if len(s) != 7 || s[0] != '#' {
		return rgb, fmt.Errorf("expected #RRGGBB, got %q", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return rgb, fmt.Errorf("expected #RRGGBB, got %q", s)
	}
	rgb[0] = byte(v >> 16)
	rgb[1] = byte(v >> 8)
	rgb[2] = byte(v)
	return rgb, nil
}

// Hostname-independent helper so tests don't need to touch the real
// environment.
var Getenv = os.Getenv
