package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const configFile = "lanerush.yaml"

// Load loads the game configuration.
// Search order: customPath -> ~/.lanerush/configs/lanerush.yaml -> ./configs/lanerush.yaml -> embedded default.
// Files are decoded on top of the defaults, so a partial file only overrides
// the keys it sets.
func Load(customPath string) (LaneRushConfig, error) {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return LaneRushConfig{}, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		cfg, err := parse(data)
		if err != nil {
			return LaneRushConfig{}, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath(configFile); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if cfg, err := parse(data); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", configFile)); err == nil {
		if cfg, err := parse(data); err == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	cfg, err := parse(defaultLaneRushYAML)
	if err != nil {
		return DefaultLaneRushConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// parse decodes YAML over the hardcoded defaults and validates the result.
func parse(data []byte) (LaneRushConfig, error) {
	cfg := DefaultLaneRushConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return LaneRushConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return LaneRushConfig{}, err
	}
	return cfg, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".lanerush", "configs", filename)
}

// ApplyPreset modifies the config based on a difficulty preset.
func ApplyPreset(cfg *LaneRushConfig, preset DifficultyPreset) {
	switch preset {
	case DifficultyEasy:
		cfg.Obstacles.BaseSpeed = 1.5
		cfg.Obstacles.SpeedPerLevel = 1.0
		cfg.Spawn.BaseIntervalMs = 1500
		cfg.Spawn.LevelStep = 0.06
	case DifficultyHard:
		cfg.Obstacles.BaseSpeed = 2.5
		cfg.Obstacles.SpeedPerLevel = 2.0
		cfg.Spawn.BaseIntervalMs = 1000
		cfg.Spawn.DoubleAtLevel = 3
		cfg.Spawn.TripleAtLevel = 6
	case DifficultyFixed:
		// Level still counts up, but nothing gets harder.
		cfg.Obstacles.SpeedPerLevel = 0
		cfg.Spawn.LevelStep = 0
		cfg.Scoring.LevelSpeedStep = 0
		cfg.Spawn.DoubleAtLevel = 0
		cfg.Spawn.TripleAtLevel = 0
	}
}
