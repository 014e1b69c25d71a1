// Package config loads the kiosk's TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the full kiosk configuration.
type Config struct {
	Camera   CameraConfig   `toml:"camera"`
	Detector DetectorConfig `toml:"detector"`
	Points   PointsConfig   `toml:"points"`
	Server   ServerConfig   `toml:"server"`
	Data     DataConfig     `toml:"data"`
	Bins     []BinLocation  `toml:"bins"`
}

// CameraConfig holds webcam device hints.
type CameraConfig struct {
	Device       int     `toml:"device"`
	Width        int     `toml:"width"`
	Height       int     `toml:"height"`
	IdleFPS      int     `toml:"idle_fps"`
	ActiveFPS    int     `toml:"active_fps"`
	MotionThresh float64 `toml:"motion_threshold"`
}

// DetectorConfig holds classifier thresholds and subprocess paths.
type DetectorConfig struct {
	ScriptPath    string  `toml:"script_path"`
	PythonPath    string  `toml:"python_path"`
	MinConfidence float64 `toml:"min_confidence"`
	IoUThreshold  float64 `toml:"iou_threshold"`
}

// PointsConfig holds the credit table and redemption economy.
type PointsConfig struct {
	CooldownSeconds  int `toml:"cooldown_seconds"`
	AvatarChangeCost int `toml:"avatar_change_cost"`
	VoucherCost      int `toml:"voucher_cost"`

	// Per-material credit overrides; zero means use the default.
	CardboardCredits int `toml:"cardboard_credits"`
	MetalCredits     int `toml:"metal_credits"`
	PaperCredits     int `toml:"paper_credits"`
	PlasticCredits   int `toml:"plastic_credits"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host      string `toml:"host"`
	Port      int    `toml:"port"`
	StaticDir string `toml:"static_dir"`
}

// DataConfig holds storage locations. LedgerStore selects the ledger
// backend: "file" keeps a ledger.json next to the database, "sqlite"
// stores the record in the database itself.
type DataConfig struct {
	Dir         string `toml:"dir"`
	LedgerStore string `toml:"ledger_store"`
}

// BinLocation is one recycling point shown on the kiosk map.
type BinLocation struct {
	Name string  `toml:"name" json:"name"`
	Lat  float64 `toml:"lat" json:"lat"`
	Lng  float64 `toml:"lng" json:"lng"`
}

// DefaultConfig returns the kiosk's standard configuration.
func DefaultConfig() Config {
	return Config{
		Camera: CameraConfig{
			Device:       0,
			Width:        1280,
			Height:       720,
			IdleFPS:      5,
			ActiveFPS:    15,
			MotionThresh: 1.0,
		},
		Detector: DetectorConfig{
			MinConfidence: 0.8,
			IoUThreshold:  0.7,
		},
		Points: PointsConfig{
			CooldownSeconds:  5,
			AvatarChangeCost: 200,
			VoucherCost:      1000,
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Data: DataConfig{
			LedgerStore: "file",
		},
		Bins: []BinLocation{
			{Name: "Recycling Point - Block 123", Lat: 1.355, Lng: 103.82},
			{Name: "Recycling Point - Green Mall", Lat: 1.35, Lng: 103.83},
		},
	}
}

// Load reads a TOML config file, falling back to defaults for a missing
// file. Values absent from the file keep their defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	// A bins list in the file replaces the defaults wholesale.
	cfg.Bins = nil
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse config %s: %w", path, err)
	}
	if len(cfg.Bins) == 0 {
		cfg.Bins = DefaultConfig().Bins
	}

	return cfg, nil
}

// DefaultPath returns the standard config location, ~/.ecosort/config.toml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".ecosort", "config.toml")
}

// Addr returns the HTTP listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
