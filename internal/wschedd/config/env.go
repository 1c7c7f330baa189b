package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// overlayEnv overlays environment variables on top of file-based config
func (c *Config) overlayEnv() {
	// Server config
	if host := getEnv("WSCHED_SERVER_HOST", ""); host != "" {
		c.Server.Host = host
	}
	if port := getEnvAsInt("WSCHED_SERVER_PORT", 0); port != 0 {
		c.Server.Port = port
	}
	if readTimeout := getEnvAsDuration("WSCHED_SERVER_READ_TIMEOUT", 0); readTimeout != 0 {
		c.Server.ReadTimeout = readTimeout
	}
	if writeTimeout := getEnvAsDuration("WSCHED_SERVER_WRITE_TIMEOUT", 0); writeTimeout != 0 {
		c.Server.WriteTimeout = writeTimeout
	}
	if tlsCert := getEnv("WSCHED_TLS_CERT", ""); tlsCert != "" {
		c.Server.TLSCert = tlsCert
	}
	if tlsKey := getEnv("WSCHED_TLS_KEY", ""); tlsKey != "" {
		c.Server.TLSKey = tlsKey
	}

	// Database config - check multiple env var names
	if host := getEnvMulti([]string{"WSCHED_DB_HOST", "DB_HOST", "POSTGRES_HOST"}, ""); host != "" {
		c.Database.Host = host
	}
	if port := getEnvAsIntMulti([]string{"WSCHED_DB_PORT", "DB_PORT", "POSTGRES_PORT"}, 0); port != 0 {
		c.Database.Port = port
	}
	if name := getEnvMulti([]string{"WSCHED_DB_NAME", "DB_NAME", "POSTGRES_DB"}, ""); name != "" {
		c.Database.Name = name
	}
	if user := getEnvMulti([]string{"WSCHED_DB_USER", "DB_USER", "POSTGRES_USER"}, ""); user != "" {
		c.Database.User = user
	}
	if password := getEnvMulti([]string{"WSCHED_DB_PASSWORD", "DB_PASSWORD", "POSTGRES_PASSWORD"}, ""); password != "" {
		c.Database.Password = password
	}
	if sslmode := getEnv("WSCHED_DB_SSLMODE", ""); sslmode != "" {
		c.Database.SSLMode = sslmode
	}
	if maxOpenConns := getEnvAsInt("WSCHED_DB_MAX_OPEN_CONNS", 0); maxOpenConns != 0 {
		c.Database.MaxOpenConns = maxOpenConns
	}

	// Redis config
	if addr := getEnvMulti([]string{"WSCHED_REDIS_ADDR", "REDIS_ADDR"}, ""); addr != "" {
		c.Redis.Addr = addr
	}
	if password := getEnvMulti([]string{"WSCHED_REDIS_PASSWORD", "REDIS_PASSWORD"}, ""); password != "" {
		c.Redis.Password = password
	}
	if db := getEnvAsInt("WSCHED_REDIS_DB", -1); db >= 0 {
		c.Redis.DB = db
	}

	// MQTT config
	if broker := getEnvMulti([]string{"WSCHED_MQTT_BROKER", "MQTT_BROKER"}, ""); broker != "" {
		c.MQTT.Broker = broker
	}
	if clientID := getEnv("WSCHED_MQTT_CLIENT_ID", ""); clientID != "" {
		c.MQTT.ClientID = clientID
	}

	// Auth config
	if expiry := getEnvAsDuration("WSCHED_AUTH_TOKEN_EXPIRY", 0); expiry != 0 {
		c.Auth.TokenExpiry = expiry
	}

	// Schedule config
	if tz := getEnv("WSCHED_TIMEZONE", ""); tz != "" {
		c.Schedule.Timezone = tz
	}
	if limit := getEnvAsInt("WSCHED_MAX_OCCURRENCES", 0); limit != 0 {
		c.Schedule.MaxOccurrences = limit
	}

	// Rate limit config
	if enabled := getEnv("WSCHED_RATE_LIMIT_ENABLED", ""); enabled != "" {
		c.RateLimit.Enabled = enabled == "1" || strings.EqualFold(enabled, "true")
	}
	if requests := getEnvAsInt("WSCHED_RATE_LIMIT_REQUESTS", 0); requests != 0 {
		c.RateLimit.Requests = requests
	}

	if origins := getEnv("WSCHED_CORS_ORIGINS", ""); origins != "" {
		c.CORS.AllowedOrigins = strings.Split(origins, ",")
	}

	if level := getEnv("WSCHED_LOG_LEVEL", ""); level != "" {
		c.Log.Level = level
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvMulti(keys []string, fallback string) string {
	for _, key := range keys {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v
		}
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if n, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return n
	}
	return fallback
}

func getEnvAsIntMulti(keys []string, fallback int) int {
	if n, err := strconv.Atoi(getEnvMulti(keys, "")); err == nil {
		return n
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return d
	}
	return fallback
}
