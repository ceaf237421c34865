package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "smparser.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.File.Enabled)
	assert.Equal(t, StdStream, cfg.Parser.Input)
	assert.Equal(t, StdStream, cfg.Parser.Output)
	assert.Equal(t, 64*1024, cfg.Parser.ReadBufferSize)
	assert.False(t, cfg.Parser.LineBuffered)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  file:
    filename: /tmp/smparser.log
    max_size: 10
parser:
  input: /dev/ttyUSB0
  line_buffered: true
metrics:
  enabled: true
  listen: ":9999"
`)
	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.File.Enabled)
	assert.Equal(t, "/tmp/smparser.log", cfg.Log.File.Filename)
	assert.Equal(t, 10, cfg.Log.File.MaxSize)
	assert.Equal(t, 5, cfg.Log.File.MaxBackups)
	assert.Equal(t, "/dev/ttyUSB0", cfg.Parser.Input)
	assert.True(t, cfg.Parser.LineBuffered)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, ":9999", cfg.Metrics.Listen)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "log:\n  level: debug\n")
	t.Setenv("SMPARSER_LOG_LEVEL", "error")
	t.Setenv("SMPARSER_PARSER_LINE_BUFFERED", "true")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.True(t, cfg.Parser.LineBuffered)
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Setenv("SMPARSER_PARSER_INPUT", "/from/env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("input", "", "")
	flags.String("output", "", "")
	flags.String("log-level", "", "")
	require.NoError(t, flags.Parse([]string{"--input", "/from/flag", "--log-level", "WARN"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "/from/flag", cfg.Parser.Input)
	assert.Equal(t, StdStream, cfg.Parser.Output)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"trace level", func(c *Config) { c.Log.Level = "trace" }, false},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, true},
		{"negative buffer", func(c *Config) { c.Parser.ReadBufferSize = -1 }, true},
		{"metrics without listen", func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Listen = "" }, true},
		{"metrics bad path", func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Path = "metrics" }, true},
		{"metrics disabled ignores path", func(c *Config) { c.Metrics.Path = "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.Log.Level = "info"
			cfg.Metrics.Listen = ":9464"
			cfg.Metrics.Path = "/metrics"
			tt.mutate(cfg)

			err := cfg.ValidateAndApplyDefaults()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StdStream, cfg.Parser.Input)
		})
	}
}
