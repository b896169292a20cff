package config

import (
	"os"
	"path/filepath"

	"rmd-knitter/internal/domain"
)

const (
	appDirName       = ".rmd-knitter"
	settingsFileName = "config.yaml"
	catalogFileName  = "candidates.yaml"
)

// DefaultSettings returns an unconfigured baseline with both tool paths absent.
func DefaultSettings() domain.Settings {
	return domain.Settings{}
}

// DefaultDir returns the per-user directory holding knitter files.
func DefaultDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, appDirName)
}

// DefaultSettingsPath returns the settings document location.
func DefaultSettingsPath() string {
	return filepath.Join(DefaultDir(), settingsFileName)
}

// DefaultCatalogPath returns the optional candidate catalog override location.
func DefaultCatalogPath() string {
	return filepath.Join(DefaultDir(), catalogFileName)
}
