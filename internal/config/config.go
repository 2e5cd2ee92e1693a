// Package config loads the modguard project configuration.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ConfigDir is the project-relative directory holding configuration, the
// declaration file and the run-history database
const ConfigDir = ".modguard"

// Config represents the complete modguard configuration
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Universe     UniverseConfig     `json:"universe" mapstructure:"universe"`
	Analysis     AnalysisConfig     `json:"analysis" mapstructure:"analysis"`
	Declarations DeclarationsConfig `json:"declarations" mapstructure:"declarations"`
	Rules        RulesConfig        `json:"rules" mapstructure:"rules"`
	Store        StoreConfig        `json:"store" mapstructure:"store"`
	Logging      LoggingConfig      `json:"logging" mapstructure:"logging"`
}

// UniverseConfig locates the code universe input
type UniverseConfig struct {
	// Snapshot is the path of a YAML universe snapshot (.yaml or .yaml.zst)
	Snapshot string `json:"snapshot,omitempty" mapstructure:"snapshot"`

	// SCIPIndex is the path of a SCIP protobuf index; used when Snapshot is
	// empty
	SCIPIndex string `json:"scipIndex,omitempty" mapstructure:"scipIndex"`
}

// AnalysisConfig contains module partitioning and extraction settings
type AnalysisConfig struct {
	RootPackages  []string `json:"rootPackages" mapstructure:"rootPackages"`
	SharedModules []string `json:"sharedModules,omitempty" mapstructure:"sharedModules"`
	StdPrefixes   []string `json:"stdPrefixes,omitempty" mapstructure:"stdPrefixes"`

	// Strategy names the partitioning strategy; empty selects the default
	Strategy string `json:"strategy,omitempty" mapstructure:"strategy"`
}

// DeclarationsConfig locates the file-based declaration fallback
type DeclarationsConfig struct {
	File string `json:"file,omitempty" mapstructure:"file"`
}

// RulesConfig locates the optional external rule set
type RulesConfig struct {
	File string `json:"file,omitempty" mapstructure:"file"`
}

// StoreConfig controls the run-history store
type StoreConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Path    string `json:"path,omitempty" mapstructure:"path"`
}

// LoggingConfig controls log output
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the configuration used when no file exists
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from <projectRoot>/.modguard/config.json,
// returning defaults when the file is absent
func LoadConfig(projectRoot string) (*Config, error) {
	v := viper.New()

	v.SetDefault("version", 1)
	v.SetDefault("logging.format", "human")
	v.SetDefault("logging.level", "info")

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(projectRoot, ConfigDir))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the configuration to <projectRoot>/.modguard/config.json
func (c *Config) Save(projectRoot string) error {
	dir := filepath.Join(projectRoot, ConfigDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if len(c.Analysis.RootPackages) == 0 {
		return &ConfigError{Field: "analysis.rootPackages", Message: "at least one root package is required"}
	}
	switch c.Logging.Format {
	case "", "human", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: "must be 'human' or 'json'"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
