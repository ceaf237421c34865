package log

// LoggerConfig is the `log:` section of the configuration file.
type LoggerConfig struct {
	Level   string          `mapstructure:"level" yaml:"level"`
	Pattern string          `mapstructure:"pattern" yaml:"pattern"`
	Time    string          `mapstructure:"time" yaml:"time"`
	File    FileAppenderOpt `mapstructure:"file" yaml:"file"`
}

const (
	DefaultPattern = "%time [%level] %msg %field%n"
	DefaultTime    = "2006-01-02 15:04:05.000"
)

func DefaultConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:   "info",
		Pattern: DefaultPattern,
		Time:    DefaultTime,
	}
}
