package util

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrale/wrale-scheduler/internal/wschedctl/config"
)

func TestParseTime(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	tests := []struct {
		in   string
		want int64
		err  bool
	}{
		{"1709542800", 1709542800, false},
		{"2024-03-04T09:00:00Z", 1709542800, false},
		{"2024-03-04 10:00", 1709542800, false},
		{"2024-03-04T10:00", 1709542800, false},
		{"next tuesday", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTime(tt.in, loc)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Unix())
		})
	}
}

func TestUnixString(t *testing.T) {
	s, err := UnixString("", time.UTC)
	require.NoError(t, err)
	assert.Empty(t, s)

	s, err = UnixString("2024-03-04", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "1709510400", s)
}

func TestDurationParts(t *testing.T) {
	d, h, m, s := DurationParts(26*time.Hour + 30*time.Minute + 5*time.Second)
	assert.Equal(t, []string{"1", "2", "30", "5"}, []string{d, h, m, s})
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "0s", FormatSeconds(0))
	assert.Equal(t, "1h", FormatSeconds(3600))
	assert.Equal(t, "1d2h30m5s", FormatSeconds(86400+2*3600+30*60+5))
}

func TestFormatUnix(t *testing.T) {
	assert.Equal(t, "-", FormatUnix(0, time.UTC))
	assert.Equal(t, "2024-03-04 09:00", FormatUnix(1709542800, time.UTC))
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, map[string]int{"id": 1}))
	assert.Equal(t, "{\n  \"id\": 1\n}\n", buf.String())
}

func TestGetClient(t *testing.T) {
	t.Setenv(EnvServer, "")
	t.Setenv(EnvToken, "")

	cfg := &config.Config{}
	_, err := GetClient(cfg, Overrides{})
	assert.ErrorContains(t, err, "no API server")

	cfg.AddContext("dev", &config.Context{Server: "http://localhost:8080"})
	require.NoError(t, cfg.SetCurrentContext("dev"))
	_, err = GetClient(cfg, Overrides{})
	assert.ErrorContains(t, err, "no auth token")

	t.Setenv(EnvToken, "from-env")
	c, err := GetClient(cfg, Overrides{})
	require.NoError(t, err)
	assert.NotNil(t, c)

	_, err = GetClient(cfg, Overrides{Server: "::bad"})
	assert.Error(t, err)
}
