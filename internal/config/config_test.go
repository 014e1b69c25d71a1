package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Camera.Device != 0 {
		t.Errorf("Camera.Device = %d, want 0", cfg.Camera.Device)
	}
	if cfg.Camera.IdleFPS != 5 || cfg.Camera.ActiveFPS != 15 {
		t.Errorf("Camera FPS = %d/%d, want 5/15", cfg.Camera.IdleFPS, cfg.Camera.ActiveFPS)
	}
	if cfg.Detector.MinConfidence != 0.8 {
		t.Errorf("Detector.MinConfidence = %v, want 0.8", cfg.Detector.MinConfidence)
	}
	if cfg.Detector.IoUThreshold != 0.7 {
		t.Errorf("Detector.IoUThreshold = %v, want 0.7", cfg.Detector.IoUThreshold)
	}
	if cfg.Points.CooldownSeconds != 5 {
		t.Errorf("Points.CooldownSeconds = %d, want 5", cfg.Points.CooldownSeconds)
	}
	if cfg.Points.AvatarChangeCost != 200 {
		t.Errorf("Points.AvatarChangeCost = %d, want 200", cfg.Points.AvatarChangeCost)
	}
	if cfg.Points.VoucherCost != 1000 {
		t.Errorf("Points.VoucherCost = %d, want 1000", cfg.Points.VoucherCost)
	}
	if cfg.Server.Addr() != "127.0.0.1:8080" {
		t.Errorf("Server.Addr() = %q, want 127.0.0.1:8080", cfg.Server.Addr())
	}
	if len(cfg.Bins) != 2 {
		t.Errorf("len(Bins) = %d, want 2", len(cfg.Bins))
	}
	if cfg.Data.LedgerStore != "file" {
		t.Errorf("Data.LedgerStore = %q, want file", cfg.Data.LedgerStore)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want default 8080", cfg.Server.Port)
	}
}

func TestLoad_OverridesAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[camera]
device = 1
active_fps = 30

[detector]
min_confidence = 0.6

[points]
voucher_cost = 10

[server]
port = 9090

[[bins]]
name = "Test Bin"
lat = 1.0
lng = 103.0
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Camera.Device != 1 {
		t.Errorf("Camera.Device = %d, want 1", cfg.Camera.Device)
	}
	if cfg.Camera.ActiveFPS != 30 {
		t.Errorf("Camera.ActiveFPS = %d, want 30", cfg.Camera.ActiveFPS)
	}
	if cfg.Detector.MinConfidence != 0.6 {
		t.Errorf("Detector.MinConfidence = %v, want 0.6", cfg.Detector.MinConfidence)
	}
	if cfg.Points.VoucherCost != 10 {
		t.Errorf("Points.VoucherCost = %d, want 10", cfg.Points.VoucherCost)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}

	// Unset values keep their defaults.
	if cfg.Camera.IdleFPS != 5 {
		t.Errorf("Camera.IdleFPS = %d, want default 5", cfg.Camera.IdleFPS)
	}
	if cfg.Points.AvatarChangeCost != 200 {
		t.Errorf("Points.AvatarChangeCost = %d, want default 200", cfg.Points.AvatarChangeCost)
	}

	// Bins specified in the file replace the defaults.
	if len(cfg.Bins) != 1 || cfg.Bins[0].Name != "Test Bin" {
		t.Errorf("Bins = %+v, want the single configured bin", cfg.Bins)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[[[not toml"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load() should fail on malformed TOML")
	}
}
