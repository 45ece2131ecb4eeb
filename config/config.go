package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// MIDIConfig defines the MIDI output routing.
type MIDIConfig struct {
	PortName     string `json:"portName,omitempty"`
	DrumChannel  int    `json:"drumChannel,omitempty"`
	SynthChannel int    `json:"synthChannel,omitempty"`
}

// AudioConfig defines the sample playback output.
type AudioConfig struct {
	SampleRate int    `json:"sampleRate,omitempty"`
	SamplePath string `json:"samplePath,omitempty"`
}

// Config is the main configuration structure.
type Config struct {
	MIDI  MIDIConfig  `json:"midi,omitempty"`
	Audio AudioConfig `json:"audio,omitempty"`
	Debug bool        `json:"debug,omitempty"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		MIDI: MIDIConfig{
			DrumChannel:  10,
			SynthChannel: 1,
		},
		Audio: AudioConfig{
			SampleRate: 44100,
		},
	}
}

// ConfigDir returns the config directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "stepseq"), nil
}

// ConfigPath returns the full path to config.json.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// StateDir returns the directory the pattern store persists into.
func StateDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "state"), nil
}

// Load reads the config from disk, or returns defaults if not found.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
