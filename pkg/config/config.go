// Package config loads and validates runner settings.
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Timeouts holds per-class wait ceilings, in milliseconds.
type Timeouts struct {
	Default int `yaml:"default" validate:"gt=0"`
	URL     int `yaml:"url" validate:"gt=0"`
	API     int `yaml:"api" validate:"gt=0"`
}

// DefaultDuration returns the default-class timeout.
func (t Timeouts) DefaultDuration() time.Duration { return time.Duration(t.Default) * time.Millisecond }

// URLDuration returns the URL-class timeout.
func (t Timeouts) URLDuration() time.Duration { return time.Duration(t.URL) * time.Millisecond }

// APIDuration returns the API-class timeout.
func (t Timeouts) APIDuration() time.Duration { return time.Duration(t.API) * time.Millisecond }

// Retry holds attempt counts.
type Retry struct {
	// Step is the max attempts per step, at least 1.
	Step int `yaml:"step" validate:"gte=1"`
	// Scenario is how many times the whole scenario may be re-run by the
	// caller after a failure.
	Scenario int `yaml:"scenario" validate:"gte=0"`
}

// Settings is the runner configuration.
type Settings struct {
	BaseURL      string   `yaml:"baseUrl" validate:"required,url"`
	Headless     bool     `yaml:"headless"`
	SlowMo       int      `yaml:"slowMo" validate:"gte=0"`
	Timeouts     Timeouts `yaml:"timeouts"`
	Retry        Retry    `yaml:"retry"`
	RecordVideo  bool     `yaml:"recordVideo"`
	CollectHAR   bool     `yaml:"collectHAR"`
	AllowedHosts []string `yaml:"allowedHosts"`
	ArtifactsDir string   `yaml:"artifactsDir"`
}

// Default returns settings with every optional field at its default.
func Default() *Settings {
	return &Settings{
		Headless: true,
		Timeouts: Timeouts{
			Default: 8000,
			URL:     15000,
			API:     20000,
		},
		Retry:        Retry{Step: 1},
		ArtifactsDir: "artifacts",
	}
}

// Load reads, defaults, and validates settings from a YAML file.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	settings := Default()
	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	if err := Finalize(settings); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return settings, nil
}

// Finalize fills derived defaults and validates the settings. AllowedHosts
// defaults to the baseUrl hostname so a fresh config cannot navigate off the
// tested site by accident.
func Finalize(s *Settings) error {
	if s.Retry.Step < 1 {
		s.Retry.Step = 1
	}
	if len(s.AllowedHosts) == 0 && s.BaseURL != "" {
		if parsed, err := url.Parse(s.BaseURL); err == nil && parsed.Hostname() != "" {
			s.AllowedHosts = []string{parsed.Hostname()}
		}
	}
	if err := validator.New().Struct(s); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}
