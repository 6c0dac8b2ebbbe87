// Package config provides centralized configuration management for the application.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration parameters for the application.
type Config struct {
	API     APIConfig
	Storage StorageConfig
}

// APIConfig holds BugTracker backend specific configuration.
type APIConfig struct {
	// URL is the base URL of the BugTracker REST API.
	URL string

	// Token is an optional bearer token override. When empty, the
	// token saved by `bugtrack login` is used instead.
	Token string
}

// StorageConfig holds client-local storage configuration.
type StorageConfig struct {
	// DataDir is where client-local state (session token, saved
	// filter presets, recent searches) lives.
	DataDir string
}

// LoadConfig initializes and loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	// Initialize Viper for environment variables
	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Map specific environment variables
	v.BindEnv("bugtrack.api.url", "BUGTRACK_API_URL")
	v.BindEnv("bugtrack.token", "BUGTRACK_TOKEN")
	v.BindEnv("bugtrack.data.dir", "BUGTRACK_DATA_DIR")

	config := &Config{
		API: APIConfig{
			URL:   strings.TrimSuffix(v.GetString("bugtrack.api.url"), "/"),
			Token: v.GetString("bugtrack.token"),
		},
		Storage: StorageConfig{
			DataDir: v.GetString("bugtrack.data.dir"),
		},
	}

	// Default the data dir to ~/.bugtrack when not configured.
	if config.Storage.DataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		config.Storage.DataDir = filepath.Join(homeDir, ".bugtrack")
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// validateConfig ensures that all required configuration values are provided.
func validateConfig(config *Config) error {
	var missingVars []string

	if config.API.URL == "" {
		missingVars = append(missingVars, "BUGTRACK_API_URL")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	return nil
}
