package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/lavelinevgeny/mediasort/internal/timestamp"
)

// Config holds the tunables of a mediasort run.
type Config struct {
	ReferenceTimezone string   `toml:"reference_timezone"` // IANA name all timestamps are expressed in
	Workers           int      `toml:"workers"`            // 0 picks a size from the CPU count
	LogDir            string   `toml:"log_dir"`            // mediasort.log and run locks live here
	LogLevel          string   `toml:"log_level"`          // debug, info, notice, warn, error
	LenientOffsets    bool     `toml:"lenient_offsets"`    // bad trailing offset means "assume local" instead of reject
	FutureWindowDays  int      `toml:"future_window_days"` // how far past now a timestamp may lie
	ExiftoolPath      string   `toml:"exiftool_path"`
	FFprobePath       string   `toml:"ffprobe_path"`
	FileTimeout       Duration `toml:"file_timeout"` // per subprocess call
	ProgressEvery     int      `toml:"progress_every"`
}

// Duration is a time.Duration written as "2m30s" in TOML.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Defaults returns the configuration used when no file is present.
func Defaults(logDir string) *Config {
	return &Config{
		ReferenceTimezone: timestamp.DefaultZone,
		LogDir:            logDir,
		LogLevel:          "info",
		LenientOffsets:    true,
		FutureWindowDays:  365,
		FileTimeout:       Duration{2 * time.Minute},
		ProgressEvery:     10,
	}
}

// FutureWindow returns FutureWindowDays as a duration.
func (c *Config) FutureWindow() time.Duration {
	return time.Duration(c.FutureWindowDays) * 24 * time.Hour
}

// Validate rejects values no run can work with.
func (c *Config) Validate() error {
	if _, err := timestamp.LoadZone(c.ReferenceTimezone); err != nil {
		return fmt.Errorf("reference_timezone: %w", err)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.FutureWindowDays < 0 {
		return fmt.Errorf("future_window_days must not be negative, got %d", c.FutureWindowDays)
	}
	if c.ProgressEvery <= 0 {
		return fmt.Errorf("progress_every must be positive, got %d", c.ProgressEvery)
	}
	if c.FileTimeout.Duration < 0 {
		return fmt.Errorf("file_timeout must not be negative, got %s", c.FileTimeout)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "notice", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes r over base so that keys absent from r keep their value.
func (m *Manager) Read(r io.Reader, base *Config) (*Config, error) {
	cfg := *base
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode mediasort config: %w", err)
	}
	return &cfg, nil
}

// Write renders cfg as TOML.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("encode mediasort config: %w", err)
	}
	return nil
}

// ReadFromFile overlays the TOML file at path on base.
func ReadFromFile(path string, base *Config) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mediasort config: %w", err)
	}
	defer f.Close()

	cfg, err := (&Manager{}).Read(f, base)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Load reads path on top of base. A missing file is only an error when the
// path was chosen explicitly; otherwise base is returned as is.
func Load(path string, explicit bool, base *Config) (*Config, error) {
	cfg, err := ReadFromFile(path, base)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			c := *base
			return &c, nil
		}
		return nil, err
	}
	return cfg, nil
}

// writeConfigFile creates path exclusively; an existing file is left untouched.
func writeConfigFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("mediasort config already exists at %s", path)
		}
		return err
	}
	if err := (&Manager{}).Write(f, cfg); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

// Init writes cfg to path. It refuses to overwrite an existing file.
func Init(path string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("refusing to write invalid config: %w", err)
	}
	return writeConfigFile(path, cfg)
}
