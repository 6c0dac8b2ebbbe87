package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		token   string
		dataDir string
		wantErr bool
	}{
		{
			name:    "All values present",
			url:     "https://bugtracker.example.com/api",
			token:   "test-token",
			dataDir: "/tmp/bugtrack-test",
			wantErr: false,
		},
		{
			name:    "Token optional",
			url:     "https://bugtracker.example.com/api",
			token:   "",
			dataDir: "/tmp/bugtrack-test",
			wantErr: false,
		},
		{
			name:    "Missing API URL",
			url:     "",
			token:   "test-token",
			dataDir: "/tmp/bugtrack-test",
			wantErr: true,
		},
		{
			name:    "Trailing slash stripped from URL",
			url:     "https://bugtracker.example.com/api/",
			token:   "",
			dataDir: "/tmp/bugtrack-test",
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Save original env vars
			origURL := os.Getenv("BUGTRACK_API_URL")
			origToken := os.Getenv("BUGTRACK_TOKEN")
			origDataDir := os.Getenv("BUGTRACK_DATA_DIR")

			// Set test env vars
			require.NoError(t, os.Setenv("BUGTRACK_API_URL", tt.url))
			require.NoError(t, os.Setenv("BUGTRACK_TOKEN", tt.token))
			require.NoError(t, os.Setenv("BUGTRACK_DATA_DIR", tt.dataDir))

			config, err := LoadConfig()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, config)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, config)
				assert.Equal(t, "https://bugtracker.example.com/api", config.API.URL)
				assert.Equal(t, tt.token, config.API.Token)
				assert.Equal(t, tt.dataDir, config.Storage.DataDir)
			}

			// Restore original env vars
			require.NoError(t, os.Setenv("BUGTRACK_API_URL", origURL))
			require.NoError(t, os.Setenv("BUGTRACK_TOKEN", origToken))
			require.NoError(t, os.Setenv("BUGTRACK_DATA_DIR", origDataDir))
		})
	}
}

func TestLoadConfigDefaultDataDir(t *testing.T) {
	origURL := os.Getenv("BUGTRACK_API_URL")
	origDataDir := os.Getenv("BUGTRACK_DATA_DIR")
	defer func() {
		os.Setenv("BUGTRACK_API_URL", origURL)
		os.Setenv("BUGTRACK_DATA_DIR", origDataDir)
	}()

	require.NoError(t, os.Setenv("BUGTRACK_API_URL", "https://bugtracker.example.com/api"))
	require.NoError(t, os.Setenv("BUGTRACK_DATA_DIR", ""))

	config, err := LoadConfig()
	require.NoError(t, err)

	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(homeDir, ".bugtrack"), config.Storage.DataDir)
}
