package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// UserConfig represents user preferences stored in ~/.industry/config.json
type UserConfig struct {
	// Station used when a command names no location
	DefaultStationID int64 `json:"default_station_id,omitempty"`

	// Region used for price lookups when a command names none
	DefaultRegionID int64 `json:"default_region_id,omitempty"`
}

// UserConfigHandler manages loading and saving user configuration
type UserConfigHandler struct {
	configPath string
}

// NewUserConfigHandler creates a handler for ~/.industry/config.json
func NewUserConfigHandler() (*UserConfigHandler, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewUserConfigHandlerAt(filepath.Join(homeDir, ".industry", "config.json"))
}

// NewUserConfigHandlerAt creates a handler for the given file, creating its directory
func NewUserConfigHandlerAt(configPath string) (*UserConfigHandler, error) {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}
	return &UserConfigHandler{configPath: configPath}, nil
}

// Load reads the user config from disk
func (h *UserConfigHandler) Load() (*UserConfig, error) {
	if _, err := os.Stat(h.configPath); os.IsNotExist(err) {
		return &UserConfig{}, nil
	}

	data, err := os.ReadFile(h.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read user config: %w", err)
	}

	var config UserConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse user config: %w", err)
	}

	return &config, nil
}

// Save writes the user config to disk
func (h *UserConfigHandler) Save(config *UserConfig) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}

	if err := os.WriteFile(h.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write user config: %w", err)
	}

	return nil
}

func (h *UserConfigHandler) SetDefaultStation(stationID int64) error {
	config, err := h.Load()
	if err != nil {
		return err
	}

	config.DefaultStationID = stationID
	return h.Save(config)
}

func (h *UserConfigHandler) SetDefaultRegion(regionID int64) error {
	config, err := h.Load()
	if err != nil {
		return err
	}

	config.DefaultRegionID = regionID
	return h.Save(config)
}

// Clear removes all stored preferences
func (h *UserConfigHandler) Clear() error {
	return h.Save(&UserConfig{})
}

// GetConfigPath returns the path to the user config file
func (h *UserConfigHandler) GetConfigPath() string {
	return h.configPath
}
