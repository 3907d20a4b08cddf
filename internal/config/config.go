// Package config loads graphload settings from config files, the
// environment, and .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all settings.
type Config struct {
	Neo4j   Neo4jConfig   `yaml:"neo4j" mapstructure:"neo4j"`
	Ingest  IngestConfig  `yaml:"ingest" mapstructure:"ingest"`
	History HistoryConfig `yaml:"history" mapstructure:"history"`
}

type Neo4jConfig struct {
	URI      string `yaml:"uri" mapstructure:"uri"`
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
	Database string `yaml:"database" mapstructure:"database"`
}

type IngestConfig struct {
	BatchSize       int `yaml:"batch_size" mapstructure:"batch_size"`
	WritesPerSecond int `yaml:"writes_per_second" mapstructure:"writes_per_second"` // 0 = unlimited
}

type HistoryConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Driver  string `yaml:"driver" mapstructure:"driver"` // "sqlite" or "postgres"
	Path    string `yaml:"path" mapstructure:"path"`     // sqlite file
	DSN     string `yaml:"dsn" mapstructure:"dsn"`       // postgres DSN
}

// Default returns the default configuration.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Neo4j: Neo4jConfig{
			URI:      "bolt://localhost:7687",
			Username: "neo4j",
			Database: "neo4j",
		},
		Ingest: IngestConfig{
			BatchSize: 2000,
		},
		History: HistoryConfig{
			Enabled: true,
			Driver:  "sqlite",
			Path:    filepath.Join(homeDir, ".graphload", "history.db"),
		},
	}
}

// Load reads configuration from .env files, a config file, and the
// environment, in increasing precedence. A missing config file is fine;
// defaults apply.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("GRAPHLOAD")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".graphload")
		v.AddConfigPath(".")
		homeDir, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(homeDir, ".graphload"))
	}

	// In search mode a missing file simply means defaults; a file that was
	// found but fails to parse is always an error.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func loadEnvFiles() {
	for _, file := range []string{".env.local", ".env"} {
		if _, err := os.Stat(file); err == nil {
			godotenv.Load(file)
		}
	}
	homeDir, _ := os.UserHomeDir()
	homeEnvFile := filepath.Join(homeDir, ".graphload", ".env")
	if _, err := os.Stat(homeEnvFile); err == nil {
		godotenv.Load(homeEnvFile)
	}
}

func applyEnvOverrides(cfg *Config) {
	if uri := os.Getenv("NEO4J_URI"); uri != "" {
		cfg.Neo4j.URI = uri
	}
	if user := os.Getenv("NEO4J_USERNAME"); user != "" {
		cfg.Neo4j.Username = user
	}
	if pass := os.Getenv("NEO4J_PASSWORD"); pass != "" {
		cfg.Neo4j.Password = pass
	}
	if db := os.Getenv("NEO4J_DATABASE"); db != "" {
		cfg.Neo4j.Database = db
	}

	if size := os.Getenv("GRAPHLOAD_BATCH_SIZE"); size != "" {
		if n, err := strconv.Atoi(size); err == nil && n > 0 {
			cfg.Ingest.BatchSize = n
		}
	}
	if wps := os.Getenv("GRAPHLOAD_WRITES_PER_SECOND"); wps != "" {
		if n, err := strconv.Atoi(wps); err == nil && n >= 0 {
			cfg.Ingest.WritesPerSecond = n
		}
	}

	if driver := os.Getenv("GRAPHLOAD_HISTORY_DRIVER"); driver != "" {
		cfg.History.Driver = driver
	}
	if path := os.Getenv("GRAPHLOAD_HISTORY_PATH"); path != "" {
		cfg.History.Path = expandPath(path)
	}
	if dsn := os.Getenv("GRAPHLOAD_HISTORY_DSN"); dsn != "" {
		cfg.History.DSN = dsn
	}
	if enabled := os.Getenv("GRAPHLOAD_HISTORY_ENABLED"); enabled != "" {
		cfg.History.Enabled = enabled == "true" || enabled == "1"
	}
}

func expandPath(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, path[1:])
}
