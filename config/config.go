package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

// HardwareConfig locates the register window of the peripheral
type HardwareConfig struct {
	Device string `json:"device"`
	Base   int64  `json:"base"`
	Span   int    `json:"span"`
}

// TimingConfig sets the grid and the control loop rate
type TimingConfig struct {
	Subdivision uint32 `json:"subdivision"` // counter ticks per row
	CounterBits uint   `json:"counterBits"` // width of the hardware counter
	SubrowSteps uint32 `json:"subrowSteps"` // smooth-scroll positions per row
	PollMicros  int    `json:"pollMicros"`  // sleep between polls, 0 = spin
}

// PollInterval returns the sleep between control cycles
func (t TimingConfig) PollInterval() time.Duration {
	return time.Duration(t.PollMicros) * time.Microsecond
}

// ButtonsConfig holds the push button timing, in counter ticks
type ButtonsConfig struct {
	Debounce       uint32 `json:"debounce"`
	ScrollDelay    uint32 `json:"scrollDelay"`
	ScrollInterval uint32 `json:"scrollInterval"`
}

// SelectionConfig is the octave and instrument selected at startup
type SelectionConfig struct {
	Octave uint8 `json:"octave"`
	Inst   uint8 `json:"inst"`
}

// MIDIConfig names the optional MIDI ports
type MIDIConfig struct {
	MirrorPort string `json:"mirrorPort,omitempty"`
	InputPort  string `json:"inputPort,omitempty"`
	Kit        string `json:"kit"` // drum note mapping for the mirror
}

// UIConfig stores emulator preferences
type UIConfig struct {
	Palette string `json:"palette,omitempty"` // GIMP .gpl file
	Rows    int    `json:"rows"`              // piano roll rows shown
}

// DebugConfig controls the debug log
type DebugConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Hardware  HardwareConfig  `json:"hardware"`
	Timing    TimingConfig    `json:"timing"`
	Buttons   ButtonsConfig   `json:"buttons"`
	Selection SelectionConfig `json:"selection"`
	MIDI      MIDIConfig      `json:"midi,omitempty"`
	UI        UIConfig        `json:"ui"`
	Debug     DebugConfig     `json:"debug"`
}

// DefaultConfig returns the DE1-SoC setup
func DefaultConfig() *Config {
	return &Config{
		Hardware: HardwareConfig{
			Device: "/dev/mem",
			Base:   0xFF200000,
			Span:   0x1000,
		},
		Timing: TimingConfig{
			Subdivision: 4800,
			CounterBits: 14,
			SubrowSteps: 15,
		},
		Buttons: ButtonsConfig{
			Debounce:       4800,
			ScrollDelay:    12000,
			ScrollInterval: 1000,
		},
		Selection: SelectionConfig{
			Octave: 1,
		},
		MIDI: MIDIConfig{
			Kit: "gm",
		},
		UI: UIConfig{
			Rows: 32,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "hps-sequence"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// resolve expands ~ in an explicit path or falls back to ConfigPath
func resolve(path string) (string, error) {
	if path == "" {
		return ConfigPath()
	}
	return homedir.Expand(path)
}

// Load reads the config from path (default location if empty), or returns
// defaults if the file does not exist. Fields missing from the file keep
// their defaults.
func Load(path string) (*Config, error) {
	path, err := resolve(path)
	if err != nil {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrap(err, "read config")
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Validate rejects values the hardware cannot represent
func (c *Config) Validate() error {
	switch {
	case c.Selection.Octave > 4:
		return errors.Errorf("octave %d out of range 0-4", c.Selection.Octave)
	case c.Selection.Inst > 7:
		return errors.Errorf("instrument %d out of range 0-7", c.Selection.Inst)
	case c.Timing.CounterBits < 2 || c.Timing.CounterBits > 14:
		return errors.Errorf("counter width %d out of range 2-14", c.Timing.CounterBits)
	case c.Timing.Subdivision == 0:
		return errors.New("subdivision must be positive")
	case c.Timing.Subdivision >= 1<<(c.Timing.CounterBits-1):
		// Rows longer than half the counter would alias between polls.
		return errors.Errorf("subdivision %d too long for a %d-bit counter",
			c.Timing.Subdivision, c.Timing.CounterBits)
	case c.Timing.SubrowSteps == 0 || c.Timing.SubrowSteps > 15:
		return errors.Errorf("subrow steps %d out of range 1-15", c.Timing.SubrowSteps)
	}
	return nil
}

// DebugPath returns the debug log path with ~ expanded
func (c *Config) DebugPath() (string, error) {
	if c.Debug.Path != "" {
		return homedir.Expand(c.Debug.Path)
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "debug.log"), nil
}

// Save writes the config to path (default location if empty)
func (c *Config) Save(path string) error {
	path, err := resolve(path)
	if err != nil {
		return err
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "create config dir")
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return errors.Wrap(os.WriteFile(path, data, 0644), "write config")
}
