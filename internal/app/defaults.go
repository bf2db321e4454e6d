package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - CASESYNC_CONFIG_PATH: config file location (default: ~/.config/casesync.toml)
//   - CASESYNC_HOME: base directory for casesync data (default: ~/.local/share/casesync)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

// getConfigPath returns the config file path, checking CASESYNC_CONFIG_PATH
// env var first, then falling back to the default ~/.config/casesync.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("CASESYNC_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "casesync.toml"), nil
}

// getBaseDir returns the base directory for casesync data, checking
// CASESYNC_HOME env var first, then falling back to the XDG default
// ~/.local/share/casesync.
func getBaseDir() (string, error) {
	if path := os.Getenv("CASESYNC_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "casesync"), nil
}
