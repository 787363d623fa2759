package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{"config.yaml", "config.yml"}

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Log       LogConfig       `koanf:"log"`
	Analytics AnalyticsConfig `koanf:"analytics"`
	Realtime  RealtimeConfig  `koanf:"realtime"`
	Auth      AuthConfig      `koanf:"auth"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	AllowedOrigins  []string      `koanf:"allowed_origins"`
}

type DatabaseConfig struct {
	Path string `koanf:"path"`
}

type LogConfig struct {
	Level     string `koanf:"level"`
	Format    string `koanf:"format"`
	Directory string `koanf:"directory"`
}

// AnalyticsConfig tunes the dashboard queries.
type AnalyticsConfig struct {
	Timezone               string  `koanf:"timezone"`
	RecentLimit            int     `koanf:"recent_limit"`
	HistoryLimit           int     `koanf:"history_limit"`
	LowConfidenceThreshold float64 `koanf:"low_confidence_threshold"`
	RepeatedScanThreshold  float64 `koanf:"repeated_scan_threshold"`
}

// RealtimeConfig controls notification fan-out. An empty RedisAddr keeps
// the bus in-process.
type RealtimeConfig struct {
	RedisAddr    string `koanf:"redis_addr"`
	RedisChannel string `koanf:"redis_channel"`
	QueueSize    int    `koanf:"queue_size"`
	Workers      int    `koanf:"workers"`
}

type AuthConfig struct {
	JWTSecret string `koanf:"jwt_secret"`
}

type RateLimitConfig struct {
	IngestRequests int           `koanf:"ingest_requests"`
	IngestWindow   time.Duration `koanf:"ingest_window"`
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Location resolves the analytics time zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Analytics.Timezone == "" || strings.EqualFold(c.Analytics.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(c.Analytics.Timezone)
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            5000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"*"},
		},
		Database: DatabaseConfig{
			Path: filepath.Join(".", "data", "ecocare.db"),
		},
		Log: LogConfig{
			Level:     "info",
			Format:    "json",
			Directory: filepath.Join(".", "logs"),
		},
		Analytics: AnalyticsConfig{
			Timezone:               "Local",
			RecentLimit:            10,
			HistoryLimit:           50,
			LowConfidenceThreshold: 60,
			RepeatedScanThreshold:  40,
		},
		Realtime: RealtimeConfig{
			RedisChannel: "ecocare:detections",
			QueueSize:    100,
			Workers:      2,
		},
		RateLimit: RateLimitConfig{
			IngestRequests: 120,
			IngestWindow:   time.Minute,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in increasing priority. A .env file in the working directory
// is loaded into the environment first when present.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom is Load with an explicit config file. An empty path falls back to
// CONFIG_PATH and the default locations.
func LoadFrom(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if raw, ok := k.Get("server.allowed_origins").(string); ok {
		if err := k.Set("server.allowed_origins", splitList(raw)); err != nil {
			return nil, fmt.Errorf("failed to parse allowed origins: %w", err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// envMappings maps environment variable names to config keys.
var envMappings = map[string]string{
	"host":                     "server.host",
	"port":                     "server.port",
	"read_timeout":             "server.read_timeout",
	"write_timeout":            "server.write_timeout",
	"shutdown_timeout":         "server.shutdown_timeout",
	"cors_origins":             "server.allowed_origins",
	"db_path":                  "database.path",
	"log_level":                "log.level",
	"log_format":               "log.format",
	"log_dir":                  "log.directory",
	"timezone":                 "analytics.timezone",
	"recent_limit":             "analytics.recent_limit",
	"history_limit":            "analytics.history_limit",
	"low_confidence_threshold": "analytics.low_confidence_threshold",
	"repeated_scan_threshold":  "analytics.repeated_scan_threshold",
	"redis_addr":               "realtime.redis_addr",
	"redis_channel":            "realtime.redis_channel",
	"notify_queue_size":        "realtime.queue_size",
	"notify_workers":           "realtime.workers",
	"jwt_secret":               "auth.jwt_secret",
	"ingest_rate_limit":        "rate_limit.ingest_requests",
	"ingest_rate_window":       "rate_limit.ingest_window",
}

// envTransformFunc maps known variables to config keys; everything else is ignored.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		return path
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
