package config

import (
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	LibraryFolder string `koanf:"library_folder"` // path songs are imported from

	// Player settings
	Player PlayerConfig `koanf:"player"`
}

// PlayerConfig holds playback-related configuration.
type PlayerConfig struct {
	DefaultPlaylist    string  `koanf:"default_playlist"`      // catalog-wide playlist name (default: "All songs")
	MaxAutoQueueLength int     `koanf:"max_auto_queue_length"` // auto queue target length (1-100, default: 20)
	MasterVolume       float64 `koanf:"master_volume"`         // initial master volume when nothing persisted (0.0-1.0, default: 0.5)
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	// Expand ~ in library_folder
	if cfg.LibraryFolder != "" {
		cfg.LibraryFolder = expandPath(cfg.LibraryFolder)
	}

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/chorus/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "chorus", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetPlayerConfig returns the player configuration with defaults applied.
func (c *Config) GetPlayerConfig() PlayerConfig {
	cfg := c.Player

	if cfg.DefaultPlaylist == "" {
		cfg.DefaultPlaylist = "All songs"
	}
	if cfg.MaxAutoQueueLength <= 0 || cfg.MaxAutoQueueLength > 100 {
		cfg.MaxAutoQueueLength = 20
	}
	if cfg.MasterVolume <= 0 || cfg.MasterVolume > 1 {
		cfg.MasterVolume = 0.5
	}

	return cfg
}
