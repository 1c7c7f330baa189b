// Package config provides configuration management for the schedule server
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds all configuration for the server
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Auth      AuthConfig      `yaml:"auth"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
	CORS      CORSConfig      `yaml:"cors"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	TLSCert         string        `yaml:"tlsCert"`
	TLSKey          string        `yaml:"tlsKey"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Name            string        `yaml:"name"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
	ConnectRetries  int           `yaml:"connectRetries"`
}

// DSN returns the lib/pq connection string
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.Name,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

// RedisConfig holds Redis settings. An empty Addr disables Redis; settings
// are then kept in memory and rate limiting and event fan-out stay local.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// MQTTConfig holds settings for pushing schedule changes to devices over
// MQTT. An empty Broker disables it.
type MQTTConfig struct {
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"clientId"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	TopicPrefix string `yaml:"topicPrefix"`
	QoS         byte   `yaml:"qos"`
}

// AuthConfig holds authentication settings
type AuthConfig struct {
	TokenExpiry time.Duration `yaml:"tokenExpiry"`
}

// ScheduleConfig holds scheduling engine settings
type ScheduleConfig struct {
	// Timezone is the zone recurrence steps are computed in
	Timezone string `yaml:"timezone"`
	// MaxOccurrences caps a single expansion
	MaxOccurrences int `yaml:"maxOccurrences"`
	// MaxQueryWindow caps the window of shows and permissions queries
	MaxQueryWindow time.Duration `yaml:"maxQueryWindow"`
}

// Location resolves the configured time zone
func (s ScheduleConfig) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(s.Timezone)
}

// RateLimitConfig holds API rate limit settings
type RateLimitConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Requests  int           `yaml:"requests"`
	Period    time.Duration `yaml:"period"`
	BurstSize int           `yaml:"burstSize"`
}

// CORSConfig holds browser access settings
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			Name:            "wrale_scheduler",
			User:            "postgres",
			SSLMode:         "disable",
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			ConnectRetries:  10,
		},
		MQTT: MQTTConfig{
			ClientID:    "wschedd",
			TopicPrefix: "wsched",
			QoS:         1,
		},
		Auth: AuthConfig{
			TokenExpiry: 24 * time.Hour,
		},
		Schedule: ScheduleConfig{
			Timezone:       "UTC",
			MaxOccurrences: 10000,
			MaxQueryWindow: 366 * 24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			Enabled:   true,
			Requests:  300,
			Period:    time.Minute,
			BurstSize: 50,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// the environment
func Load(path string) (*Config, error) {
	if path != "" {
		return LoadFile(path)
	}
	cfg := Default()
	cfg.overlayEnv()
	return cfg, cfg.validate()
}
