package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Hotkey HotkeyConfig `toml:"hotkey"`
	Web    WebConfig    `toml:"web"`
	Menu   []MenuConfig `toml:"menu"`
}

type HotkeyConfig struct {
	Toggle string `toml:"toggle"`
}

type WebConfig struct {
	Enabled bool `toml:"enabled"`
	Port    int  `toml:"port"`
}

// MenuConfig declares one submenu of the overlay. Kind is one of
// "freetext", "voicewheel", or "animation"; WheelKey is the digit of
// the matching native voice-wheel category for voicewheel menus. The
// main menu shows the sections in declaration order.
type MenuConfig struct {
	Name     string   `toml:"name"`
	Kind     string   `toml:"kind"`
	WheelKey int      `toml:"wheel_key,omitempty"`
	Options  []string `toml:"options"`
}

// Default configuration
func defaultConfig() *Config {
	return &Config{
		Hotkey: HotkeyConfig{
			Toggle: ".",
		},
		Web: WebConfig{
			Enabled: true,
			Port:    8374,
		},
		Menu: defaultMenu(),
	}
}

func defaultMenu() []MenuConfig {
	return []MenuConfig{
		{
			Name: "Rocket League",
			Kind: "freetext",
			Options: []string{
				"What a save!",
				"Nice shot!",
				"Thanks!",
				"Well played!",
			},
		},
		{
			Name:    "Animations",
			Kind:    "animation",
			Options: []string{"Truck"},
		},
		{
			Name:     "Combat",
			Kind:     "voicewheel",
			WheelKey: 1,
			Options: []string{
				"Need Support",
				"Caution here!",
				"Need Healing!",
				"On My Way",
				"Ultimate Status",
			},
		},
		{
			Name:     "Tactics",
			Kind:     "voicewheel",
			WheelKey: 2,
			Options: []string{
				"I'll Take Point",
				"Let's rush them!",
				"Be Quiet",
				"Fall Back!",
				"Play For Picks",
			},
		},
		{
			Name:     "Social",
			Kind:     "voicewheel",
			WheelKey: 3,
			Options: []string{
				"Thanks",
				"Commend",
				"Yes",
				"No",
				"Sorry",
				"Hello",
			},
		},
		{
			Name:     "Strategy",
			Kind:     "voicewheel",
			WheelKey: 4,
			Options: []string{
				"Going A",
				"Going B",
				"Going C",
				"Going Mid",
			},
		},
	}
}

// Dir returns the application data directory, creating it if needed.
func Dir() (string, error) {
	appData := os.Getenv("APPDATA")
	if appData == "" {
		appData = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
	}

	dir := filepath.Join(appData, "callout")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return dir, nil
}

// ConfigPath returns the path to the configuration file
func ConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads the configuration from the TOML file.
// If the file doesn't exist, it creates it with default values.
// A file that fails to parse is not fatal: defaults take over with a
// warning, and malformed fields are filled in individually.
func Load() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	// If config doesn't exist, create it with defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := defaultConfig()
		if err := save(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	cfg := defaultConfig()
	if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		slog.Warn("Config file unreadable, falling back to defaults", "path", configPath, "error", err)
		return defaultConfig(), nil
	}

	cfg.fillGaps()
	return cfg, nil
}

// Save writes the full configuration snapshot to the TOML file.
func (c *Config) Save() error {
	configPath, err := ConfigPath()
	if err != nil {
		return err
	}
	return save(configPath, c)
}

func save(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// fillGaps replaces individually missing or invalid fields with their
// defaults so a partial config never breaks startup.
func (c *Config) fillGaps() {
	if c.Hotkey.Toggle == "" {
		c.Hotkey.Toggle = "."
	}
	if c.Web.Port <= 0 {
		c.Web.Port = 8374
	}
	if len(c.Menu) == 0 {
		c.Menu = defaultMenu()
	}
	for i := range c.Menu {
		if c.Menu[i].Kind == "" {
			c.Menu[i].Kind = "freetext"
		}
	}
}

// KeyCombo represents a parsed keyboard combination
type KeyCombo struct {
	Ctrl  bool
	Shift bool
	Alt   bool
	Win   bool
	Key   string
}

// ParseHotkey parses a hotkey combo string like "ctrl+shift+." or "."
func ParseHotkey(combo string) (KeyCombo, error) {
	var kc KeyCombo
	parts := strings.Split(strings.ToLower(combo), "+")

	if len(parts) == 0 {
		return kc, fmt.Errorf("empty hotkey combo")
	}

	for i, part := range parts {
		part = strings.TrimSpace(part)

		isModifier := false
		switch part {
		case "ctrl", "control":
			kc.Ctrl = true
			isModifier = true
		case "shift":
			kc.Shift = true
			isModifier = true
		case "alt":
			kc.Alt = true
			isModifier = true
		case "win", "windows":
			kc.Win = true
			isModifier = true
		}

		// If it's not a modifier and it's the last part, it's the key
		if !isModifier {
			if i == len(parts)-1 {
				kc.Key = part
			} else {
				return kc, fmt.Errorf("unknown modifier: %s", part)
			}
		}
	}

	if !kc.Ctrl && !kc.Shift && !kc.Alt && !kc.Win && kc.Key == "" {
		return kc, fmt.Errorf("no modifiers or key specified in combo")
	}

	return kc, nil
}
