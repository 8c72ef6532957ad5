package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const (
	configDirName  = "dirscope"
	configFileName = "config.json"
)

func DefaultConfig() Config {
	return Config{
		Path:      ".",
		Depth:     1,
		Workers:   0,
		TopFiles:  10,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

func ConfigPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, configDirName, configFileName), nil
}

func LoadConfig() (Config, error) {
	config := DefaultConfig()
	path, err := ConfigPath()
	if err != nil {
		return config, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return config, err
	}
	var stored fileConfig
	if err := json.Unmarshal(data, &stored); err != nil {
		return config, err
	}
	return mergeConfig(config, stored), nil
}

func SaveConfig(config Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeConfig(base Config, stored fileConfig) Config {
	merged := base
	if stored.Path != nil {
		merged.Path = *stored.Path
	}
	if stored.Depth != nil {
		merged.Depth = *stored.Depth
	}
	if stored.Workers != nil {
		merged.Workers = *stored.Workers
	}
	if stored.TopFiles != nil {
		merged.TopFiles = *stored.TopFiles
	}
	if stored.Plain != nil {
		merged.Plain = *stored.Plain
	}
	if stored.LogLevel != nil {
		merged.LogLevel = *stored.LogLevel
	}
	if stored.LogFormat != nil {
		merged.LogFormat = *stored.LogFormat
	}
	return merged
}
