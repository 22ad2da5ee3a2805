package config

import (
	"fmt"
	"strings"

	"github.com/muurk/kpowire/internal/protocol"
)

// CurrentVersion is the settings file format version.
const CurrentVersion = 1

// Output formats for decoded messages.
const (
	OutputText = "text"
	OutputYAML = "yaml"
	OutputJSON = "json"
)

// Settings represents the entire user configuration file.
type Settings struct {
	Version  int      `yaml:"version" toml:"version" json:"version"`
	Protocol string   `yaml:"protocol" toml:"protocol" json:"protocol"`                        // "v1" or "v2"
	LogLevel string   `yaml:"log_level,omitempty" toml:"log_level" json:"log_level,omitempty"` // Empty keeps logging silent
	Output   string   `yaml:"output" toml:"output" json:"output"`                              // text, yaml or json
	Color    bool     `yaml:"color" toml:"color" json:"color"`                                 // Styled terminal output
	Metrics  *Metrics `yaml:"metrics,omitempty" toml:"metrics" json:"metrics,omitempty"`       // Codec metrics reporting
}

// Metrics controls the codec metrics printed after a command.
type Metrics struct {
	Enabled   bool   `yaml:"enabled" toml:"enabled" json:"enabled"`
	Namespace string `yaml:"namespace,omitempty" toml:"namespace" json:"namespace,omitempty"`
}

// NewSettings creates Settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version:  CurrentVersion,
		Protocol: protocol.V2.String(),
		Output:   OutputText,
		Color:    true,
		Metrics: &Metrics{
			Enabled:   false,
			Namespace: "kpowire",
		},
	}
}

// ProtocolVersion parses the configured protocol version.
func (s *Settings) ProtocolVersion() (protocol.Version, error) {
	return protocol.ParseVersion(s.Protocol)
}

// MetricsEnabled reports whether metrics reporting is on.
func (s *Settings) MetricsEnabled() bool {
	return s.Metrics != nil && s.Metrics.Enabled
}

// Validate checks the settings after loading.
func (s *Settings) Validate() error {
	if s.Version != CurrentVersion {
		return fmt.Errorf("unsupported config version: %d (expected %d)", s.Version, CurrentVersion)
	}
	if _, err := s.ProtocolVersion(); err != nil {
		return err
	}
	switch strings.ToLower(s.Output) {
	case OutputText, OutputYAML, OutputJSON:
	default:
		return fmt.Errorf("unsupported output format %q (want text, yaml or json)", s.Output)
	}
	switch strings.ToLower(s.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unsupported log level %q", s.LogLevel)
	}
	return nil
}

// applyDefaults fills fields a partial file left empty.
func (s *Settings) applyDefaults() {
	defaults := NewSettings()
	if s.Protocol == "" {
		s.Protocol = defaults.Protocol
	}
	if s.Output == "" {
		s.Output = defaults.Output
	}
	if s.Metrics == nil {
		s.Metrics = defaults.Metrics
	}
	if s.Metrics.Namespace == "" {
		s.Metrics.Namespace = defaults.Metrics.Namespace
	}
}
