// Package config provides configuration loading and management for
// gatewright.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/gatewright/gatewright/internal/artifact"
	"github.com/gatewright/gatewright/internal/validator"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file location relative to the project root.
var DefaultPath = filepath.Join(".gatewright", "gatewright.yaml")

// DefaultYAML renders the config file `gatewright init` writes. It parses
// back to the same configuration Default returns.
func DefaultYAML() ([]byte, error) {
	out, err := yaml.Marshal(Default())
	if err != nil {
		return nil, fmt.Errorf("render default config: %w", err)
	}
	return out, nil
}

// Config is the root configuration.
type Config struct {
	Conventions artifact.Conventions `json:"conventions" mapstructure:"conventions" yaml:"conventions"`
	Validators  []ValidatorConfig    `json:"validators"  mapstructure:"validators"  yaml:"validators"`
	Gates       GatesConfig          `json:"gates"       mapstructure:"gates"       yaml:"gates"`
}

// ValidatorConfig describes one external check.
type ValidatorConfig struct {
	ID             string   `json:"id"                        mapstructure:"id"              yaml:"id"`
	Kind           string   `json:"kind"                      mapstructure:"kind"            yaml:"kind"`
	Command        []string `json:"command"                   mapstructure:"command"         yaml:"command"`
	Scope          string   `json:"scope,omitempty"           mapstructure:"scope"           yaml:"scope,omitempty"`
	TimeoutSeconds int      `json:"timeout_seconds,omitempty" mapstructure:"timeout_seconds" yaml:"timeout_seconds,omitempty"`
	Threshold      float64  `json:"threshold,omitempty"       mapstructure:"threshold"       yaml:"threshold,omitempty"`
	SummaryFile    string   `json:"summary_file,omitempty"    mapstructure:"summary_file"    yaml:"summary_file,omitempty"`
	Extensions     []string `json:"extensions,omitempty"      mapstructure:"extensions"      yaml:"extensions,omitempty"`
}

// GatesConfig wires validators, by id, into the gate phases.
type GatesConfig struct {
	PreAction  PreActionConfig `json:"pre_action"  mapstructure:"pre_action"  yaml:"pre_action"`
	PostAction PhaseConfig     `json:"post_action" mapstructure:"post_action" yaml:"post_action"`
	Completion PhaseConfig     `json:"completion"  mapstructure:"completion"  yaml:"completion"`
}

// PreActionConfig controls the test-first precondition.
type PreActionConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled" yaml:"enabled"`
}

// PhaseConfig lists the validators a gate phase runs, in order. The order
// is the order failures are reported in.
type PhaseConfig struct {
	Validators []string `json:"validators" mapstructure:"validators" yaml:"validators"`
}

// Default returns the configuration `gatewright init` writes: a
// TypeScript/vitest project with style, typecheck and coverage checks.
func Default() Config {
	return Config{
		Conventions: artifact.DefaultConventions(),
		Validators: []ValidatorConfig{
			{
				ID:      "style",
				Kind:    validator.KindStyle,
				Command: []string{"npx", "oxlint", "{file}"},
				Scope:   "file",
			},
			{
				ID:      "typecheck",
				Kind:    validator.KindTypecheck,
				Command: []string{"npx", "tsc", "--noEmit"},
			},
			{
				ID:             "coverage",
				Kind:           validator.KindCoverage,
				Command:        []string{"npx", "vitest", "run", "--coverage"},
				Threshold:      80,
				TimeoutSeconds: 120,
				SummaryFile:    filepath.Join("coverage", "coverage-summary.json"),
			},
		},
		Gates: GatesConfig{
			PreAction:  PreActionConfig{Enabled: true},
			PostAction: PhaseConfig{Validators: []string{"style", "typecheck"}},
			Completion: PhaseConfig{Validators: []string{"coverage"}},
		},
	}
}

// Load reads, schema-validates and semantically validates the config file
// at path. Any failure is fatal to the caller: a gatekeeper with a broken
// config must refuse to start rather than wave actions through.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := ValidateSettings(v.AllSettings()); err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	// A config without conventions still gets the default classification
	// rules; an empty conventions block would otherwise classify nothing
	// and quietly disable the pre-action gate.
	if len(cfg.Conventions.Extensions) == 0 {
		cfg.Conventions = artifact.DefaultConventions()
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate enforces the constraints the schema cannot express: unique
// validator ids and phase wiring that references only declared ids.
func (c Config) Validate() error {
	seen := make(map[string]bool, len(c.Validators))
	for _, vc := range c.Validators {
		if vc.ID == "" {
			return fmt.Errorf("validators: id is required")
		}
		if seen[vc.ID] {
			return fmt.Errorf("validators: duplicate id %q", vc.ID)
		}
		seen[vc.ID] = true
		if _, err := validator.New(vc.Spec()); err != nil {
			return err
		}
	}
	for phase, ids := range map[string][]string{
		"post_action": c.Gates.PostAction.Validators,
		"completion":  c.Gates.Completion.Validators,
	} {
		for _, id := range ids {
			if !seen[id] {
				return fmt.Errorf("gates.%s: unknown validator %q", phase, id)
			}
		}
	}
	return nil
}

// Spec converts the config entry into a validator spec.
func (vc ValidatorConfig) Spec() validator.Spec {
	scope := validator.ScopeProject
	if vc.Scope == "file" {
		scope = validator.ScopeFile
	}
	return validator.Spec{
		ID:          vc.ID,
		Kind:        vc.Kind,
		Command:     vc.Command,
		Scope:       scope,
		Timeout:     time.Duration(vc.TimeoutSeconds) * time.Second,
		Threshold:   vc.Threshold,
		SummaryFile: vc.SummaryFile,
		Extensions:  vc.Extensions,
	}
}

// Runners builds the validators for one gate phase, in declared order.
func (c Config) Runners(ids []string) ([]validator.Runner, error) {
	byID := make(map[string]ValidatorConfig, len(c.Validators))
	for _, vc := range c.Validators {
		byID[vc.ID] = vc
	}
	out := make([]validator.Runner, 0, len(ids))
	for _, id := range ids {
		vc, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("unknown validator %q", id)
		}
		r, err := validator.New(vc.Spec())
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
