package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadSwarm loads the swarm configuration. Fields missing from the file keep
// their default values.
// Search order: customPath -> ~/.swarm/configs/swarm.yaml -> ./configs/swarm.yaml -> embedded default
func LoadSwarm(customPath string) (SwarmConfig, error) {
	cfg := DefaultSwarmConfig()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("config: failed to read %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: failed to parse %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("swarm.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err == nil {
				return cfg, nil
			}
			cfg = DefaultSwarmConfig()
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", "swarm.yaml")); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			return cfg, nil
		}
		cfg = DefaultSwarmConfig()
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(defaultSwarmYAML, &cfg); err != nil {
		return DefaultSwarmConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".swarm", "configs", filename)
}

// ApplySwarmPreset modifies the config based on a difficulty preset.
func ApplySwarmPreset(cfg *SwarmConfig, preset DifficultyPreset) {
	if preset == DifficultyFixed {
		cfg.Difficulty.Enabled = false
	} else {
		cfg.Difficulty.Enabled = true
		cfg.Difficulty.InitialLevel = InitialLevelForPreset(preset)
	}

	// Adjust the crowd based on difficulty
	switch preset {
	case DifficultyEasy:
		cfg.Gameplay.Lives = 5
		cfg.Population.Goombas /= 2
		cfg.Population.Koopas /= 2
		cfg.Enemies.Speed *= 0.8
	case DifficultyHard:
		cfg.Gameplay.Lives = 2
		cfg.Population.Goombas += cfg.Population.Goombas / 2
		cfg.Population.Koopas += cfg.Population.Koopas / 2
		cfg.Enemies.Speed *= 1.25
	}
}
