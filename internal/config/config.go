// Package config loads importer configuration from an optional YAML
// file, a .env file, and environment variables, in increasing
// precedence.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable the pipeline takes. It is built here once
// and passed in explicitly; nothing downstream reads the environment.
type Config struct {
	FeedPath     string `yaml:"feed_path"`
	DBPath       string `yaml:"db_path"`
	ImageDir     string `yaml:"image_dir"`
	ImageBaseURL string `yaml:"image_base_url"`

	BatchSize           int  `yaml:"batch_size"`
	MaxImageConcurrency int  `yaml:"max_image_concurrency"`
	Parallel            bool `yaml:"parallel"`

	Dev bool `yaml:"dev"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		FeedPath:            "scraped-listings.json",
		ImageDir:            "images",
		ImageBaseURL:        "https://images.trpe.ae",
		BatchSize:           15,
		MaxImageConcurrency: 5,
		Parallel:            false,
		Dev:                 false,
	}
}

// Load builds the configuration: defaults, then the YAML file at path
// (optional when path is empty or missing), then .env, then environment
// variables.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		}
	}

	// .env is a convenience for local runs; absence is fine.
	_ = godotenv.Load()

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides lets TRPE_* environment variables take precedence
// over file values.
func applyEnvOverrides(cfg *Config) {
	cfg.FeedPath = getEnv("TRPE_FEED_PATH", cfg.FeedPath)
	cfg.DBPath = getEnv("TRPE_DB_PATH", cfg.DBPath)
	cfg.ImageDir = getEnv("TRPE_IMAGE_DIR", cfg.ImageDir)
	cfg.ImageBaseURL = getEnv("TRPE_IMAGE_BASE_URL", cfg.ImageBaseURL)
	cfg.BatchSize = getEnvInt("TRPE_BATCH_SIZE", cfg.BatchSize)
	cfg.MaxImageConcurrency = getEnvInt("TRPE_IMAGE_CONCURRENCY", cfg.MaxImageConcurrency)
	cfg.Parallel = getEnvBool("TRPE_PARALLEL", cfg.Parallel)
	cfg.Dev = getEnvBool("TRPE_DEV", cfg.Dev)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}
