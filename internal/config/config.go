// Package config loads server and client configuration from a YAML file
// with environment-variable overrides for deployment settings.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server Server `yaml:"server"`
	Auth   Auth   `yaml:"auth"`
	Socket Socket `yaml:"socket"`
}

// Server configures the HTTP listener and the entity store.
type Server struct {
	Addr           string   `yaml:"addr"`
	DatabasePath   string   `yaml:"database_path"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Auth configures token issuance.
type Auth struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// Socket configures the event channel endpoint and the client
// reconnection policy.
type Socket struct {
	URL               string        `yaml:"url"`
	ReconnectAttempts int           `yaml:"reconnect_attempts"`
	ReconnectDelay    time.Duration `yaml:"reconnect_delay"`
	SendBuffer        int           `yaml:"send_buffer"`
	BroadcastBuffer   int           `yaml:"broadcast_buffer"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: Server{
			Addr:           ":8080",
			DatabasePath:   "taskwire.db",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Auth: Auth{
			TokenTTL: 7 * 24 * time.Hour,
		},
		Socket: Socket{
			URL:               "ws://localhost:8080/ws",
			ReconnectAttempts: 5,
			ReconnectDelay:    1 * time.Second,
			SendBuffer:        10,
			BroadcastBuffer:   100,
		},
	}
}

// Load reads the config file at path, falling back to defaults when the
// file does not exist. Environment variables override file values.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("jwt secret is required (set auth.jwt_secret or TASKWIRE_JWT_SECRET)")
	}

	return cfg, nil
}

// applyEnv merges environment overrides for values that change per
// deployment.
func (c *Config) applyEnv() {
	if v := os.Getenv("TASKWIRE_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("TASKWIRE_DB"); v != "" {
		c.Server.DatabasePath = v
	}
	if v := os.Getenv("TASKWIRE_JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("TASKWIRE_ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("TASKWIRE_SOCKET_URL"); v != "" {
		c.Socket.URL = v
	}
	if v := os.Getenv("TASKWIRE_RECONNECT_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Socket.ReconnectAttempts = parsed
		}
	}
}

// applyDefaults fills in zero values left by a partial config file.
func (c *Config) applyDefaults() {
	def := Default()
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
	if c.Server.DatabasePath == "" {
		c.Server.DatabasePath = def.Server.DatabasePath
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = def.Server.AllowedOrigins
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = def.Auth.TokenTTL
	}
	if c.Socket.URL == "" {
		c.Socket.URL = def.Socket.URL
	}
	if c.Socket.ReconnectAttempts <= 0 {
		c.Socket.ReconnectAttempts = def.Socket.ReconnectAttempts
	}
	if c.Socket.ReconnectDelay <= 0 {
		c.Socket.ReconnectDelay = def.Socket.ReconnectDelay
	}
	if c.Socket.SendBuffer <= 0 {
		c.Socket.SendBuffer = def.Socket.SendBuffer
	}
	if c.Socket.BroadcastBuffer <= 0 {
		c.Socket.BroadcastBuffer = def.Socket.BroadcastBuffer
	}
}
