package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type fileConfig struct {
	Protocol     string        `toml:"protocol"`
	Steps        int           `toml:"steps"`
	Natoms       int           `toml:"natoms"`
	Displacement float64       `toml:"displacement"`
	Seed         int64         `toml:"seed"`
	Units        string        `toml:"units"`
	Transport    fileTransport `toml:"transport"`
	Box          fileBox       `toml:"box"`
}

type fileTransport struct {
	Mode    string `toml:"mode"`
	Address string `toml:"address"`
}

type fileBox struct {
	Lo []float64 `toml:"lo"`
	Hi []float64 `toml:"hi"`
}

type driveConfig struct {
	Protocol      string
	Steps         int
	Natoms        int
	Displacement  float64
	Seed          int64
	Units         string
	TransportMode string
	Address       string
	BoxLo         []float64
	BoxHi         []float64
}

func defaultDriveConfig() driveConfig {
	return driveConfig{
		Protocol:      "md",
		Steps:         10,
		Natoms:        32,
		Displacement:  0.05,
		Seed:          1,
		Units:         "lj",
		TransportMode: "socket",
		Address:       "localhost:31415",
		BoxLo:         []float64{0, 0, 0},
		BoxHi:         []float64{4, 4, 4},
	}
}

func loadDriveConfig(path string) (driveConfig, error) {
	cfg := defaultDriveConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return driveConfig{}, fmt.Errorf("load drive config: %w", err)
	}

	if meta.IsDefined("protocol") {
		cfg.Protocol = strings.TrimSpace(raw.Protocol)
	}
	if meta.IsDefined("steps") {
		cfg.Steps = raw.Steps
	}
	if meta.IsDefined("natoms") {
		cfg.Natoms = raw.Natoms
	}
	if meta.IsDefined("displacement") {
		cfg.Displacement = raw.Displacement
	}
	if meta.IsDefined("seed") {
		cfg.Seed = raw.Seed
	}
	if meta.IsDefined("units") {
		cfg.Units = strings.TrimSpace(raw.Units)
	}
	if meta.IsDefined("transport", "mode") {
		cfg.TransportMode = strings.TrimSpace(raw.Transport.Mode)
	}
	if meta.IsDefined("transport", "address") {
		cfg.Address = strings.TrimSpace(raw.Transport.Address)
	}
	if meta.IsDefined("box", "lo") {
		cfg.BoxLo = raw.Box.Lo
	}
	if meta.IsDefined("box", "hi") {
		cfg.BoxHi = raw.Box.Hi
	}

	if err := validateDriveConfig(cfg); err != nil {
		return driveConfig{}, err
	}
	return cfg, nil
}

func validateDriveConfig(cfg driveConfig) error {
	if cfg.Protocol == "" {
		return fmt.Errorf("drive config missing protocol")
	}
	if cfg.Steps < 0 {
		return fmt.Errorf("steps must be non-negative")
	}
	if cfg.Natoms <= 0 {
		return fmt.Errorf("natoms must be positive")
	}
	if cfg.Displacement < 0 {
		return fmt.Errorf("displacement must be non-negative")
	}
	switch cfg.TransportMode {
	case "socket", "file":
	default:
		return fmt.Errorf("transport mode must be socket or file, got %q", cfg.TransportMode)
	}
	if cfg.Address == "" {
		return fmt.Errorf("drive config missing transport address")
	}
	if len(cfg.BoxLo) != 3 || len(cfg.BoxHi) != 3 {
		return fmt.Errorf("box lo and hi must each have three components")
	}
	for d := 0; d < 3; d++ {
		if cfg.BoxHi[d] <= cfg.BoxLo[d] {
			return fmt.Errorf("box hi must exceed lo in every dimension")
		}
	}
	return nil
}
