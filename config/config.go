/*
Package config loads server configuration.

PURPOSE:
  Collects every setting cmd/server needs in one validated struct.

SOURCES (later wins):
  1. Defaults
  2. Optional YAML file, with ${VAR} expansion
  3. .env file (if present) and REFUND_* environment variables
  4. Command-line flags (applied by cmd/server)

ENVIRONMENT:
  REFUND_PORT                HTTP port
  REFUND_DB_PATH             SQLite path, ":memory:" for in-memory
  REFUND_LOG_LEVEL           debug, info, warn, error
  REFUND_LOG_PRETTY          console output instead of JSON
  REFUND_POLICY_FILE         JSON or YAML policy to install at startup
  REFUND_WORKERS             batch evaluation concurrency
  REFUND_RETENTION_SCHEDULE  cron spec for purging old runs
  REFUND_RETENTION_DAYS      age in days after which runs are purged, 0 keeps all
  REFUND_ALLOWED_ORIGINS     comma-separated CORS origins

EXAMPLE YAML:
  server:
    port: 8080
    allowed_origins: ["http://localhost:5173"]
  database:
    path: ${DATA_DIR}/refunds.db
  retention:
    schedule: "@daily"
    days: 30
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	Engine    EngineConfig    `yaml:"engine"`
	Retention RetentionConfig `yaml:"retention"`
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

type EngineConfig struct {
	PolicyFile string `yaml:"policy_file"` // empty means the standard policy
	Workers    int    `yaml:"workers"`
}

type RetentionConfig struct {
	Schedule string `yaml:"schedule"`
	Days     int    `yaml:"days"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
		},
		Database:  DatabaseConfig{Path: "refunds.db"},
		Log:       LogConfig{Level: "info"},
		Engine:    EngineConfig{Workers: 4},
		Retention: RetentionConfig{Schedule: "@daily", Days: 30},
	}
}

// Load builds the configuration. path may be empty to skip the YAML file.
func Load(path string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	// Expand ${VAR} environment variables
	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), c); err != nil {
		return fmt.Errorf("parse config yaml: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnvAsInt("REFUND_PORT", c.Server.Port)
	c.Database.Path = getEnv("REFUND_DB_PATH", c.Database.Path)
	c.Log.Level = getEnv("REFUND_LOG_LEVEL", c.Log.Level)
	c.Log.Pretty = getEnvAsBool("REFUND_LOG_PRETTY", c.Log.Pretty)
	c.Engine.PolicyFile = getEnv("REFUND_POLICY_FILE", c.Engine.PolicyFile)
	c.Engine.Workers = getEnvAsInt("REFUND_WORKERS", c.Engine.Workers)
	c.Retention.Schedule = getEnv("REFUND_RETENTION_SCHEDULE", c.Retention.Schedule)
	c.Retention.Days = getEnvAsInt("REFUND_RETENTION_DAYS", c.Retention.Days)

	if origins := os.Getenv("REFUND_ALLOWED_ORIGINS"); origins != "" {
		c.Server.AllowedOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.Server.AllowedOrigins = append(c.Server.AllowedOrigins, o)
			}
		}
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if c.Engine.Workers < 1 {
		errs = append(errs, fmt.Errorf("engine.workers must be at least 1, got %d", c.Engine.Workers))
	}
	if c.Retention.Days < 0 {
		errs = append(errs, fmt.Errorf("retention.days must not be negative, got %d", c.Retention.Days))
	}
	if _, err := cron.ParseStandard(c.Retention.Schedule); err != nil {
		errs = append(errs, fmt.Errorf("retention.schedule %q: %w", c.Retention.Schedule, err))
	}
	return errors.Join(errs...)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
