// Package settings loads the viewer's runtime settings from the optional
// periscope.yaml file. These are host-side knobs (service address, poll
// rate, timeouts); the overlay itself is described by the TOML
// configuration document.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the settings file looked up next to the overlay config.
const FileName = "periscope.yaml"

// Settings represents the optional periscope.yaml configuration.
type Settings struct {
	Service ServiceSettings `yaml:"service"`
	Overlay OverlaySettings `yaml:"overlay"`
	Verbose bool            `yaml:"verbose,omitempty"`
}

// ServiceSettings configures the connection to the companion service.
type ServiceSettings struct {
	Address        string `yaml:"address,omitempty"`
	FetchTimeoutMS int    `yaml:"fetch_timeout_ms,omitempty"`
	DegradedAfter  int    `yaml:"degraded_after,omitempty"`
}

// OverlaySettings configures the frame loop.
type OverlaySettings struct {
	Config string `yaml:"config,omitempty"`
	FPS    int    `yaml:"fps,omitempty"`
}

// Resolved contains resolved settings values.
type Resolved struct {
	ServiceAddress string
	FetchTimeout   time.Duration
	DegradedAfter  int
	ConfigPath     string
	FrameInterval  time.Duration
	Verbose        bool
}

// LoadOptional reads periscope.yaml from dir if present.
func LoadOptional(dir string) (*Settings, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Settings{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}

	return &s, nil
}

// Resolve loads periscope.yaml (if present) and resolves defaults.
func Resolve(dir string) (*Resolved, error) {
	s, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}

	addr := strings.TrimSpace(s.Service.Address)
	if addr == "" {
		addr = "127.0.0.1:2579"
	}

	timeout := time.Duration(s.Service.FetchTimeoutMS) * time.Millisecond
	if s.Service.FetchTimeoutMS < 0 {
		return nil, fmt.Errorf("fetch_timeout_ms must not be negative")
	}

	if s.Service.DegradedAfter < 0 {
		return nil, fmt.Errorf("degraded_after must not be negative")
	}

	configPath := strings.TrimSpace(s.Overlay.Config)
	if configPath == "" {
		configPath = "periscope.toml"
	}
	if !filepath.IsAbs(configPath) {
		configPath = filepath.Join(dir, configPath)
	}

	fps := s.Overlay.FPS
	if fps < 0 {
		return nil, fmt.Errorf("fps must not be negative")
	}
	if fps == 0 {
		fps = 30
	}

	return &Resolved{
		ServiceAddress: addr,
		FetchTimeout:   timeout,
		DegradedAfter:  s.Service.DegradedAfter,
		ConfigPath:     configPath,
		FrameInterval:  time.Second / time.Duration(fps),
		Verbose:        s.Verbose,
	}, nil
}
