package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/natefinch/atomic"
)

// Config holds the settings for the lyrics tool. Flags given on the command
// line take precedence over the values loaded from the config file.
type Config struct {
	LogLevel        string  `json:"log_level"`
	DatabasePath    string  `json:"database_path"`
	ModelName       string  `json:"model_name"`
	CorpusPath      string  `json:"corpus_path"`
	Lowercase       bool    `json:"lowercase"`
	TrimPunctuation bool    `json:"trim_punctuation"`
	TopWords        int     `json:"top_words"`
	ChartWidth      int     `json:"chart_width"`
	ChartHeight     int     `json:"chart_height"`
	MaxLength       int     `json:"max_length"`
	Temperature     float64 `json:"temperature"`
}

// DefaultConfig creates a configuration with default values. The default
// database lives in memory, so a plain run leaves nothing behind.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:     "info",
		DatabasePath: ":memory:",
		ModelName:    "lyrics",
		CorpusPath:   "lyrics.txt",
		TopWords:     20,
		ChartWidth:   72,
		ChartHeight:  22,
		MaxLength:    10,
		Temperature:  2.0,
	}
}

// LoadConfig reads the configuration from a JSON file at the given path.
// If the file doesn't exist, it creates one with default values.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err = SaveConfig(path, config); err != nil {
				// The tool still runs with defaults.
				fmt.Fprintf(os.Stderr, "warning: failed to write default config file: %v\n", err)
			}
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err = json.Unmarshal(file, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig writes config to path atomically.
func SaveConfig(path string, config *Config) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
