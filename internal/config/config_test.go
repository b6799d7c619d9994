package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := Defaults("/var/log/mediasort")
	original.ReferenceTimezone = "Europe/Berlin"
	original.Workers = 6
	original.LenientOffsets = false
	original.FileTimeout = Duration{90 * time.Second}
	original.ExiftoolPath = "/opt/exiftool/exiftool"

	var buf bytes.Buffer
	m := &Manager{}
	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !strings.Contains(buf.String(), `file_timeout = "1m30s"`) {
		t.Errorf("encoded config missing duration text:\n%s", buf.String())
	}

	got, err := m.Read(&buf, Defaults(""))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if *got != *original {
		t.Errorf("Read() = %+v, want %+v", got, original)
	}
}

func TestManager_Read_KeepsDefaults(t *testing.T) {
	m := &Manager{}
	got, err := m.Read(strings.NewReader("workers = 3\n"), Defaults("/logs"))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got.Workers != 3 {
		t.Errorf("Workers = %d, want 3", got.Workers)
	}
	if !got.LenientOffsets {
		t.Error("LenientOffsets = false, want default true")
	}
	if got.ReferenceTimezone != "Asia/Tokyo" {
		t.Errorf("ReferenceTimezone = %q, want Asia/Tokyo", got.ReferenceTimezone)
	}
	if got.LogDir != "/logs" {
		t.Errorf("LogDir = %q, want /logs", got.LogDir)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad zone", func(c *Config) { c.ReferenceTimezone = "Mars/Olympus" }, true},
		{"negative workers", func(c *Config) { c.Workers = -1 }, true},
		{"zero progress", func(c *Config) { c.ProgressEvery = 0 }, true},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"notice level", func(c *Config) { c.LogLevel = "NOTICE" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults("")
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sub", "mediasort.toml")
		if err := Init(path, Defaults("")); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "mediasort.toml")
		if err := Init(path, Defaults("")); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}
		before, _ := os.ReadFile(path)
		err := Init(path, &Config{ReferenceTimezone: "UTC", ProgressEvery: 1, LogLevel: "debug"})
		if err == nil || !strings.Contains(err.Error(), "mediasort config already exists") {
			t.Fatalf("second Init() error = %v", err)
		}
		after, _ := os.ReadFile(path)
		if string(after) != string(before) {
			t.Error("second Init() changed the existing file")
		}
	})

	t.Run("rejects invalid config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "mediasort.toml")
		cfg := Defaults("")
		cfg.ReferenceTimezone = "Nowhere/Atlantis"
		if err := Init(path, cfg); err == nil {
			t.Fatal("Init(invalid) error = nil")
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("invalid config written: %v", err)
		}
	})
}

func TestLoad(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "none.toml")

	t.Run("missing default file", func(t *testing.T) {
		got, err := Load(missing, false, Defaults("/x"))
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got.LogDir != "/x" {
			t.Errorf("LogDir = %q, want /x", got.LogDir)
		}
	})

	t.Run("missing explicit file", func(t *testing.T) {
		if _, err := Load(missing, true, Defaults("")); err == nil {
			t.Fatal("Load() expected error for missing explicit file")
		}
	})

	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "mediasort.toml")
		if err := os.WriteFile(path, []byte("reference_timezone = \"UTC\"\nprogress_every = 5\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		got, err := Load(path, true, Defaults(""))
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got.ReferenceTimezone != "UTC" || got.ProgressEvery != 5 {
			t.Errorf("Load() = %+v", got)
		}
		if got.FileTimeout.Duration != 2*time.Minute {
			t.Errorf("FileTimeout = %s, want default 2m0s", got.FileTimeout)
		}
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "mediasort.toml")
		if err := os.WriteFile(path, []byte("workers = [\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path, false, Defaults("")); err == nil {
			t.Fatal("Load() expected decode error")
		}
	})
}

func TestDefaultPaths(t *testing.T) {
	t.Run("uses env vars", func(t *testing.T) {
		t.Setenv("MEDIASORT_CONFIG", "/custom/mediasort.toml")
		t.Setenv("MEDIASORT_HOME", "/custom/state")
		got, err := DefaultPaths()
		if err != nil {
			t.Fatalf("DefaultPaths() error = %v", err)
		}
		if got.ConfigPath != "/custom/mediasort.toml" || !got.ConfigFromEnv {
			t.Errorf("ConfigPath = %q (env %v)", got.ConfigPath, got.ConfigFromEnv)
		}
		if got.StateDir != "/custom/state" {
			t.Errorf("StateDir = %q, want /custom/state", got.StateDir)
		}
	})

	t.Run("falls back to home", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("MEDIASORT_CONFIG", "")
		t.Setenv("MEDIASORT_HOME", "")
		t.Setenv("HOME", home)
		got, err := DefaultPaths()
		if err != nil {
			t.Fatalf("DefaultPaths() error = %v", err)
		}
		if want := filepath.Join(home, ".config", "mediasort.toml"); got.ConfigPath != want {
			t.Errorf("ConfigPath = %q, want %q", got.ConfigPath, want)
		}
		if got.ConfigFromEnv {
			t.Error("ConfigFromEnv = true, want false")
		}
	})
}
