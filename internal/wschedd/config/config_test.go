package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithEnv(t *testing.T) {
	t.Setenv("WSCHED_SERVER_PORT", "9090")
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("WSCHED_REDIS_ADDR", "redis:6379")
	t.Setenv("WSCHED_TIMEZONE", "Europe/Berlin")
	t.Setenv("WSCHED_CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "Europe/Berlin", cfg.Schedule.Timezone)
	assert.Len(t, cfg.CORS.AllowedOrigins, 2)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wschedd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 8181
schedule:
  maxOccurrences: 500
  maxQueryWindow: 720h
log:
  level: debug
`), 0o600))

	_, err := LoadFile(path)
	require.Error(t, err, "temp dir is not an allowed config directory")

	DefaultConfigDirs = append(DefaultConfigDirs, dir)
	t.Cleanup(func() { DefaultConfigDirs = DefaultConfigDirs[:len(DefaultConfigDirs)-1] })

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 8181, cfg.Server.Port)
	assert.Equal(t, 500, cfg.Schedule.MaxOccurrences)
	assert.Equal(t, 720*time.Hour, cfg.Schedule.MaxQueryWindow)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Unset fields keep their defaults
	assert.Equal(t, 5432, cfg.Database.Port)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"half tls", func(c *Config) { c.Server.TLSCert = "cert.pem" }},
		{"bad timezone", func(c *Config) { c.Schedule.Timezone = "Mars/Olympus" }},
		{"no occurrences", func(c *Config) { c.Schedule.MaxOccurrences = 0 }},
		{"bad rate limit", func(c *Config) { c.RateLimit.Requests = 0 }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
	}

	require.NoError(t, Default().validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.validate())
		})
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "h", Port: 5432, Name: "sched", User: "u", Password: "p@ss", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss@h:5432/sched?sslmode=disable", d.DSN())
}
