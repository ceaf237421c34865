// Package config handles configuration loading using viper.
//
// Precedence, highest first: command-line flags, SMPARSER_* environment
// variables, the YAML config file, built-in defaults.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"firestige.xyz/smparser/internal/log"
)

const (
	EnvPrefix = "SMPARSER"

	// StdStream names stdin for parser.input and stdout for parser.output.
	StdStream = "-"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config is the root of the configuration file.
type Config struct {
	Log     log.LoggerConfig `mapstructure:"log" yaml:"log"`
	Parser  ParserConfig     `mapstructure:"parser" yaml:"parser"`
	Metrics MetricsConfig    `mapstructure:"metrics" yaml:"metrics"`
}

// ParserConfig controls where bytes come from and where packets go.
type ParserConfig struct {
	Input           string `mapstructure:"input" yaml:"input"`
	Output          string `mapstructure:"output" yaml:"output"`
	ReadBufferSize  int    `mapstructure:"read_buffer_size" yaml:"read_buffer_size"`
	WriteBufferSize int    `mapstructure:"write_buffer_size" yaml:"write_buffer_size"`
	// LineBuffered flushes every packet line as soon as it is complete.
	LineBuffered bool `mapstructure:"line_buffered" yaml:"line_buffered"`
}

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Listen  string `mapstructure:"listen" yaml:"listen"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// flagBindings maps command-line flag names to configuration keys.
var flagBindings = map[string]string{
	"input":          "parser.input",
	"output":         "parser.output",
	"line-buffered":  "parser.line_buffered",
	"log-level":      "log.level",
	"log-file":       "log.file.filename",
	"metrics":        "metrics.enabled",
	"metrics-listen": "metrics.listen",
	"read-buffer":    "parser.read_buffer_size",
	"write-buffer":   "parser.write_buffer_size",
}

// Load builds the configuration. path may be empty, in which case only
// defaults, environment and flags apply. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagBindings {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.ValidateAndApplyDefaults(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pattern", log.DefaultPattern)
	v.SetDefault("log.time", log.DefaultTime)
	v.SetDefault("log.file.enabled", false)
	v.SetDefault("log.file.filename", "")
	v.SetDefault("log.file.max_size", 100)
	v.SetDefault("log.file.max_backups", 5)
	v.SetDefault("log.file.max_age", 30)
	v.SetDefault("log.file.compress", true)

	v.SetDefault("parser.input", StdStream)
	v.SetDefault("parser.output", StdStream)
	v.SetDefault("parser.read_buffer_size", 64*1024)
	v.SetDefault("parser.write_buffer_size", 64*1024)
	v.SetDefault("parser.line_buffered", false)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.listen", "127.0.0.1:9464")
	v.SetDefault("metrics.path", "/metrics")
}

// ValidateAndApplyDefaults validates cfg and fills in runtime defaults.
func (cfg *Config) ValidateAndApplyDefaults() error {
	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "warning": true, "error": true}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	if !validLevels[cfg.Log.Level] {
		return fmt.Errorf("%w: log level %q (must be trace/debug/info/warn/error)", ErrInvalidConfig, cfg.Log.Level)
	}
	if cfg.Log.File.Filename != "" {
		cfg.Log.File.Enabled = true
	}

	if cfg.Parser.Input == "" {
		cfg.Parser.Input = StdStream
	}
	if cfg.Parser.Output == "" {
		cfg.Parser.Output = StdStream
	}
	if cfg.Parser.ReadBufferSize < 0 || cfg.Parser.WriteBufferSize < 0 {
		return fmt.Errorf("%w: buffer sizes must not be negative", ErrInvalidConfig)
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Listen == "" {
			return fmt.Errorf("%w: metrics.listen is required when metrics.enabled=true", ErrInvalidConfig)
		}
		if !strings.HasPrefix(cfg.Metrics.Path, "/") {
			return fmt.Errorf("%w: metrics.path %q must start with '/'", ErrInvalidConfig, cfg.Metrics.Path)
		}
	}
	return nil
}
