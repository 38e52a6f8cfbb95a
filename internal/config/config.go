// Package config provides Viper-based configuration loading for the
// simulation runner.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// SimulationConfig holds tick-driver tuning.
type SimulationConfig struct {
	// TickMs is the fixed simulation step in milliseconds.
	TickMs float64 `mapstructure:"tick_ms"`
	// DecisionIntervalTicks is how many AI ticks pass between decisions.
	DecisionIntervalTicks int `mapstructure:"decision_interval_ticks"`
	// MinUtility is the threshold below which the best candidate is discarded.
	MinUtility float64 `mapstructure:"min_utility"`
	// Seed feeds the shared random source. 0 selects a time-based seed.
	Seed int64 `mapstructure:"seed"`
}

// EngageConfig holds default engagement radii and timers for encounter-bound
// actors. Individual spawns may override the radii.
type EngageConfig struct {
	AggroRadius float64 `mapstructure:"aggro_radius"`
	LeashRadius float64 `mapstructure:"leash_radius"`
}

// ContentConfig holds the directories YAML and Lua content is loaded from.
type ContentConfig struct {
	AbilitiesDir  string `mapstructure:"abilities_dir"`
	EffectsDir    string `mapstructure:"effects_dir"`
	EncountersDir string `mapstructure:"encounters_dir"`
	// ScriptsDir holds per-encounter Lua hook files; empty disables scripting.
	ScriptsDir string `mapstructure:"scripts_dir"`
}

// ScriptingConfig holds Lua sandbox limits.
type ScriptingConfig struct {
	// InstructionLimit bounds opcodes per hook call. 0 uses the sandbox default.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// Config is the top-level application configuration.
type Config struct {
	Simulation SimulationConfig `mapstructure:"simulation"`
	Engage     EngageConfig     `mapstructure:"engage"`
	Content    ContentConfig    `mapstructure:"content"`
	Scripting  ScriptingConfig  `mapstructure:"scripting"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateSimulation(c.Simulation); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateEngage(c.Engage); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Scripting.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("scripting.instruction_limit must be >= 0, got %d", c.Scripting.InstructionLimit))
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateSimulation(s SimulationConfig) error {
	var errs []string
	if s.TickMs <= 0 {
		errs = append(errs, fmt.Sprintf("simulation.tick_ms must be > 0, got %g", s.TickMs))
	}
	if s.DecisionIntervalTicks < 1 {
		errs = append(errs, fmt.Sprintf("simulation.decision_interval_ticks must be >= 1, got %d", s.DecisionIntervalTicks))
	}
	if s.MinUtility <= 0 || s.MinUtility >= 1 {
		errs = append(errs, fmt.Sprintf("simulation.min_utility must be in (0, 1), got %g", s.MinUtility))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateEngage(e EngageConfig) error {
	var errs []string
	if e.AggroRadius <= 0 {
		errs = append(errs, fmt.Sprintf("engage.aggro_radius must be > 0, got %g", e.AggroRadius))
	}
	if e.LeashRadius <= e.AggroRadius {
		errs = append(errs, fmt.Sprintf("engage.leash_radius must exceed aggro_radius, got %g", e.LeashRadius))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateContent(c ContentConfig) error {
	var errs []string
	if c.AbilitiesDir == "" {
		errs = append(errs, "content.abilities_dir must not be empty")
	}
	if c.EffectsDir == "" {
		errs = append(errs, "content.effects_dir must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with FLURRY_ prefix
	v.SetEnvPrefix("FLURRY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("simulation.tick_ms", 100.0)
	v.SetDefault("simulation.decision_interval_ticks", 3)
	v.SetDefault("simulation.min_utility", 0.25)
	v.SetDefault("simulation.seed", 0)

	v.SetDefault("engage.aggro_radius", 30.0)
	v.SetDefault("engage.leash_radius", 60.0)

	v.SetDefault("content.abilities_dir", "content/abilities")
	v.SetDefault("content.effects_dir", "content/effects")
	v.SetDefault("content.encounters_dir", "content/encounters")
	v.SetDefault("content.scripts_dir", "content/scripts")

	v.SetDefault("scripting.instruction_limit", 100000)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
