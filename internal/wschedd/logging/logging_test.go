package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	slogger, zlogger := New(Options{Level: "warn", Format: "json", Output: &buf})

	slogger.Info("dropped")
	slogger.Warn("kept", "deviceID", 4)
	zlogger.Info().Msg("dropped")
	componentLogger := WithComponent(zlogger, "schedule-http")
	componentLogger.Error().Msg("kept too")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "kept", first["msg"])
	assert.Equal(t, "wschedd", first["service"])
	assert.Equal(t, float64(4), first["deviceID"])

	var second map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "kept too", second["message"])
	assert.Equal(t, "schedule-http", second["component"])
}

func TestLevels(t *testing.T) {
	tests := []struct {
		in    string
		zero  zerolog.Level
		slogS string
	}{
		{"", zerolog.InfoLevel, "INFO"},
		{"debug", zerolog.DebugLevel, "DEBUG"},
		{"WARN", zerolog.WarnLevel, "WARN"},
		{"error", zerolog.ErrorLevel, "ERROR"},
		{"bogus", zerolog.InfoLevel, "INFO"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.zero, zerologLevel(tt.in))
			assert.Equal(t, tt.slogS, slogLevel(tt.in).String())
		})
	}
}
