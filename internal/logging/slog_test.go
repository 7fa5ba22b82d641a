package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// captureStdout swaps the console writer for a pipe until the returned
// function is called.
func captureStdout(t *testing.T) func() string {
	t.Helper()
	r, w, err := osPipe()
	require.NoError(t, err)
	orig := osStdout
	osStdout = w
	return func() string {
		_ = w.Close()
		osStdout = orig
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		_ = r.Close()
		return buf.String()
	}
}

func TestSetup_Destination(t *testing.T) {
	t.Run("file only", func(t *testing.T) {
		restore := captureStdout(t)
		var file bytes.Buffer
		m := NewSlogManager()
		m.Setup(&file, "info", nil)
		m.Logger().Info("scenario saved")

		assert.Empty(t, restore())
		assert.Contains(t, file.String(), "Logging initialized")
		assert.Contains(t, file.String(), "scenario saved")
	})

	t.Run("console without file", func(t *testing.T) {
		restore := captureStdout(t)
		m := NewSlogManager()
		m.Setup(nil, "info", nil)
		m.Logger().Info("scenario saved")

		assert.Contains(t, restore(), "scenario saved")
	})
}

func TestSetup_Levels(t *testing.T) {
	tests := []struct {
		level     string
		want      slog.Level
		wantDebug bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"", slog.LevelInfo, false},
		{"verbose", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			m := NewSlogManager()
			m.Setup(&buf, tt.level, nil)
			m.Logger().Debug("sample dropped")

			assert.Equal(t, tt.want, m.Level())
			assert.Equal(t, tt.wantDebug, strings.Contains(buf.String(), "sample dropped"))
		})
	}
}

func TestSetup_UTCTimestamps(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "info", nil)
	m.Logger().Info("tick")
	assert.Regexp(t, `time=\d{4}-\d\d-\d\dT\d\d:\d\d:\d\dZ`, buf.String())
}

func TestSetup_SecondCallRedirects(t *testing.T) {
	var before, after bytes.Buffer
	m := NewSlogManager()
	m.Setup(&before, "info", nil)
	m.Setup(&after, "info", nil, slog.NewJSONHandler(&bytes.Buffer{}, nil))
	m.Logger().Info("after reload")

	assert.NotContains(t, before.String(), "after reload")
	assert.Contains(t, after.String(), "after reload")
}

func TestSetup_ExtraHandlers(t *testing.T) {
	var file, graylog bytes.Buffer
	m := NewSlogManager()
	m.Setup(&file, "warn", nil, slog.NewJSONHandler(&graylog, nil))
	m.Logger().Warn("off route", "distance", 1.4)

	assert.Contains(t, file.String(), "off route")
	assert.Contains(t, graylog.String(), `"distance":1.4`)
}

func TestSetup_OTelBridge(t *testing.T) {
	provider := sdklog.NewLoggerProvider()
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "info", provider)
	m.Logger().Info("bridged")

	assert.Contains(t, buf.String(), "bridged")
	assert.NoError(t, m.Flush(context.Background()))
}

func TestLogger_DefaultBeforeSetup(t *testing.T) {
	m := NewSlogManager()
	assert.Equal(t, slog.Default(), m.Logger())
	assert.NoError(t, m.Flush(context.Background()))
	m.WriteLog("fn", "ignored", "info")
}

func TestWithSession_EvaluatesPerRecord(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "info", nil)

	scenario := "park"
	logger := m.WithSession(func() []slog.Attr {
		return []slog.Attr{slog.String("scenario", scenario)}
	})
	logger.Info("first")
	scenario = "garden"
	logger.With("mode", "static").Info("second")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3) // Logging initialized + two records
	assert.Contains(t, lines[1], "scenario=park")
	assert.Contains(t, lines[2], "scenario=garden")
	assert.Contains(t, lines[2], "mode=static")
}

func TestAttrHandler_WithGroupEmpty(t *testing.T) {
	h := NewAttrHandler(slog.NewTextHandler(&bytes.Buffer{}, nil), nil)
	assert.Equal(t, h, h.WithGroup(""))
}

func TestWriteLog(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "debug", nil)

	m.WriteLog("setupDB", "Migrating schema", "info")
	m.WriteLog("setupDB", "pragma applied", "DEBUG")
	m.WriteLog("setupDB", "fallback level", "nonsense")

	out := buf.String()
	assert.Contains(t, out, `level=INFO msg="Migrating schema" function=setupDB`)
	assert.Contains(t, out, `level=DEBUG msg="pragma applied"`)
	assert.Contains(t, out, `level=INFO msg="fallback level"`)
}
