package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	BackendJSON     = "json"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

var ErrValidation = errors.New("invalid configuration")

type Config struct {
	Backend     string `yaml:"backend"`
	TasksPath   string `yaml:"tasks_path"`
	DBPath      string `yaml:"db_path"`
	DatabaseURL string `yaml:"database_url"`
	LogLevel    string `yaml:"log_level"`
}

func Load() Config {
	dir := defaultDir()
	return Config{
		Backend:     getEnv("DT_BACKEND", BackendJSON),
		TasksPath:   getEnv("DT_TASKS_PATH", filepath.Join(dir, "tasks.json")),
		DBPath:      getEnv("DT_DB_PATH", filepath.Join(dir, "tasks.db")),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		LogLevel:    getEnv("DT_LOG_LEVEL", "info"),
	}
}

// LoadFile starts from Load and overlays the YAML document at path. Keys
// missing from the document keep their env/default values.
func LoadFile(path string) (Config, error) {
	cfg := Load()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// Validate checks that the selected backend is known and has a location.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendJSON:
		if c.TasksPath == "" {
			return fmt.Errorf("%w: tasks_path must be provided", ErrValidation)
		}
	case BackendSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("%w: db_path must be provided", ErrValidation)
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: database_url must be provided", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrValidation, c.Backend)
	}
	return nil
}

func defaultDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "daily_tasks")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
