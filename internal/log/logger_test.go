package log

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInvalidLevel(t *testing.T) {
	for _, level := range []string{"invalid", "verbose", ""} {
		t.Run(level, func(t *testing.T) {
			_, err := New(&LoggerConfig{Level: level}, &bytes.Buffer{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid log level")
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&LoggerConfig{Level: "warn"}, &buf)
	require.NoError(t, err)

	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message")
	l.Error("error message")

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "warn message")
	assert.Contains(t, out, "error message")
	assert.False(t, l.IsDebugEnabled())
	assert.False(t, l.IsInfoEnabled())
}

func TestPatternFormat(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&LoggerConfig{Level: "debug", Pattern: "[%level] %msg %field%n"}, &buf)
	require.NoError(t, err)

	l.WithFields(map[string]interface{}{"state": "marker1", "offset": 7}).Debug("sync error")
	l.Info("no fields")

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "[DEBUG] sync error offset=7 state=marker1", lines[0])
	assert.Equal(t, "[INFO] no fields", lines[1])
}

func TestWithErrorField(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&LoggerConfig{Level: "info", Pattern: "%msg %field"}, &buf)
	require.NoError(t, err)

	l.WithError(errors.New("boom")).Error("read failed")
	assert.Equal(t, "read failed error=boom\n", buf.String())
}

func TestFileAppender(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "smparser.log")
	var buf bytes.Buffer
	l, err := New(&LoggerConfig{
		Level: "info",
		File: FileAppenderOpt{
			Enabled:    true,
			Filename:   logPath,
			MaxSize:    1,
			MaxBackups: 1,
		},
	}, &buf)
	require.NoError(t, err)

	l.Info("to both")
	require.NoError(t, closeLogger(l))

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to both")
	assert.Contains(t, buf.String(), "to both")
}

func TestFileAppenderRequiresFilename(t *testing.T) {
	_, err := New(&LoggerConfig{Level: "info", File: FileAppenderOpt{Enabled: true}}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "filename")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestMultiWriterKeepsWritingAfterFailure(t *testing.T) {
	var buf bytes.Buffer
	w := NewMultiWriter().Add(failingWriter{}).Add(&buf)

	n, err := w.Write([]byte("line"))
	assert.Equal(t, 4, n)
	assert.EqualError(t, err, "disk full")
	assert.Equal(t, "line", buf.String())
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Error("dropped")
	assert.False(t, l.IsInfoEnabled())
}
