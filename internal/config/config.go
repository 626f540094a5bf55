// Package config loads the application settings of the argo-steps CLI.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-steps/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. ARGO_LOG_LEVEL.
const EnvPrefix = "ARGO"

// Config holds the settings shared by every command.
type Config struct {
	StepsFile     string        `mapstructure:"steps_file" yaml:"steps_file" jsonschema:"title=Steps File,description=YAML step catalog" validate:"required"`
	StrategiesDir string        `mapstructure:"strategies_dir" yaml:"strategies_dir" jsonschema:"title=Strategies Directory,description=Directory of <name>.yaml strategy files" validate:"required"`
	Data          string        `mapstructure:"data" yaml:"data,omitempty" jsonschema:"title=Data,description=Parquet or CSV price series for batch runs"`
	WindowSize    int           `mapstructure:"window_size" yaml:"window_size" jsonschema:"title=Window Size,description=Bars exposed to steps; 0 exposes the whole history,minimum=0,default=200" validate:"min=0"`
	Log           LogConfig     `mapstructure:"log" yaml:"log" jsonschema:"title=Log"`
	History       HistoryConfig `mapstructure:"history" yaml:"history" jsonschema:"title=History"`
	Metrics       MetricsConfig `mapstructure:"metrics" yaml:"metrics" jsonschema:"title=Metrics"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level" jsonschema:"title=Level,enum=debug,enum=info,enum=warn,enum=error,default=info" validate:"oneof=debug info warn error"`
}

// HistoryConfig configures the parquet history writer.
type HistoryConfig struct {
	Output string `mapstructure:"output" yaml:"output,omitempty" jsonschema:"title=Output,description=Parquet file receiving every step attempt; empty disables history"`
}

// MetricsConfig configures the Prometheus textfile export.
type MetricsConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled" jsonschema:"title=Enabled"`
	Textfile string `mapstructure:"textfile" yaml:"textfile,omitempty" jsonschema:"title=Textfile,description=Path the metrics are written to after a run" validate:"required_if=Enabled true"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("steps_file", "")
	v.SetDefault("strategies_dir", "")
	v.SetDefault("data", "")
	v.SetDefault("window_size", 200)
	v.SetDefault("log.level", "info")
	v.SetDefault("history.output", "")
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.textfile", "")
}

// Load reads the settings from path, applying ARGO_ environment overrides.
// An empty path loads defaults and the environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config file %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to decode config", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the settings against their validate tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, fmt.Sprintf("invalid config: %v", err), err)
	}

	return nil
}
