package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Database paths
	SQLitePath string `mapstructure:"sqlite-path"`
	FSMDBPath  string `mapstructure:"fsm-db-path"`

	// S3 configuration
	S3Bucket string `mapstructure:"s3-bucket"`
	S3Region string `mapstructure:"s3-region"`

	// Working directory for downloaded batches and cached images
	WorkDir string `mapstructure:"work-dir"`

	// Import limits
	MaxPayloadSize int64 `mapstructure:"max-payload-size"`
	MaxBatchSize   int   `mapstructure:"max-batch-size"`

	// FSM configuration
	FSMMaxRetries int `mapstructure:"fsm-max-retries"`
}

// Load reads configuration from environment, config file, and defaults
func Load() (*Config, error) {
	return load(viper.GetViper())
}

func load(v *viper.Viper) (*Config, error) {
	// Set defaults
	v.SetDefault("sqlite-path", ".artifacts/recipes.db")
	v.SetDefault("fsm-db-path", ".artifacts/fsm")
	v.SetDefault("s3-bucket", "foodrandom-recipes")
	v.SetDefault("s3-region", "us-east-1")
	v.SetDefault("work-dir", "/tmp/foodrandom")
	v.SetDefault("max-payload-size", 4*1024*1024)
	v.SetDefault("max-batch-size", 500)
	v.SetDefault("fsm-max-retries", 5)

	// Environment variables (will be FOODRANDOM_SQLITE_PATH, etc.)
	v.SetEnvPrefix("FOODRANDOM")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.foodrandom")

	// Read config file (ignore if not found)
	_ = v.ReadInConfig()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration for errors
func (c *Config) Validate() error {
	if c.SQLitePath == "" {
		return fmt.Errorf("sqlite-path cannot be empty")
	}
	if c.FSMDBPath == "" {
		return fmt.Errorf("fsm-db-path cannot be empty")
	}
	if c.S3Bucket == "" {
		return fmt.Errorf("s3-bucket cannot be empty")
	}
	if c.WorkDir == "" {
		return fmt.Errorf("work-dir cannot be empty")
	}
	if c.MaxPayloadSize <= 0 {
		return fmt.Errorf("max-payload-size must be positive")
	}
	if c.MaxBatchSize <= 0 {
		return fmt.Errorf("max-batch-size must be positive")
	}
	if c.FSMMaxRetries < 0 {
		return fmt.Errorf("fsm-max-retries must be non-negative")
	}
	return nil
}

// ImportDir is where downloaded batch documents are kept
func (c *Config) ImportDir() string {
	return filepath.Join(c.WorkDir, "imports")
}

// ImageCacheDir is where fetched preview images are kept
func (c *Config) ImageCacheDir() string {
	return filepath.Join(c.WorkDir, "images")
}
