package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		enable zapcore.Level
	}{
		{"debug level", "debug", zapcore.DebugLevel},
		{"warn level", "warn", zapcore.WarnLevel},
		{"default info", "", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.level, "json", "consultsim")
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.enable))
		})
	}
}

func TestNewConsoleFormat(t *testing.T) {
	logger, err := New("error", "console", "")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.ErrorLevel))
	assert.False(t, logger.Core().Enabled(zapcore.WarnLevel))
}

func TestDefaultLogger(t *testing.T) {
	logger := Default()
	logger.Info("test message")

	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}
