// Package config loads go-mindwave settings from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the server configuration. Command-line flags override it.
type Config struct {
	Port        string
	LogLevel    string
	StaticDir   string
	BroadcastHz float64
	AccessLog   bool

	ZMQEndpoint string // empty disables the sidecar source
	ZMQSession  string // session name given to sidecar frames

	LowLightInterval  time.Duration
	LowLightThreshold float64
}

// Load reads .env if present, then the MINDWAVE_* variables.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:              getEnv("MINDWAVE_PORT", "8080"),
		LogLevel:          getEnv("MINDWAVE_LOG_LEVEL", "info"),
		StaticDir:         getEnv("MINDWAVE_STATIC_DIR", "./web"),
		BroadcastHz:       getEnvFloat("MINDWAVE_BROADCAST_HZ", 15),
		AccessLog:         getEnvBool("MINDWAVE_ACCESS_LOG", false),
		ZMQEndpoint:       getEnv("MINDWAVE_ZMQ_ENDPOINT", ""),
		ZMQSession:        getEnv("MINDWAVE_ZMQ_SESSION", "sidecar"),
		LowLightInterval:  getEnvDuration("MINDWAVE_LOWLIGHT_INTERVAL", time.Second),
		LowLightThreshold: getEnvFloat("MINDWAVE_LOWLIGHT_THRESHOLD", 40),
	}
}

// Validate reports settings the server cannot run with.
func (c *Config) Validate() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("MINDWAVE_PORT %q is not a port number", c.Port)
	}
	if c.BroadcastHz <= 0 {
		return fmt.Errorf("MINDWAVE_BROADCAST_HZ must be positive, got %v", c.BroadcastHz)
	}
	if c.LowLightInterval <= 0 {
		return fmt.Errorf("MINDWAVE_LOWLIGHT_INTERVAL must be positive, got %v", c.LowLightInterval)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
