package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tui-swarm/internal/sim"
)

func TestDefaultsMatchEngine(t *testing.T) {
	p := DefaultSwarmConfig().ToParams()
	if !reflect.DeepEqual(p, sim.DefaultParams()) {
		t.Errorf("default config should convert to sim.DefaultParams()\ngot  %+v\nwant %+v", p, sim.DefaultParams())
	}
	if err := p.Validate(); err != nil {
		t.Errorf("default params should validate: %v", err)
	}
}

func TestEmbeddedYAMLMatchesDefaults(t *testing.T) {
	var cfg SwarmConfig
	if err := yaml.Unmarshal(GetDefaultYAML("swarm"), &cfg); err != nil {
		t.Fatalf("embedded YAML failed to parse: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultSwarmConfig()) {
		t.Errorf("embedded YAML and DefaultSwarmConfig differ\nyaml %+v\ngo   %+v", cfg, DefaultSwarmConfig())
	}
	if GetDefaultYAML("pong") != nil {
		t.Error("unknown scenario should have no default YAML")
	}
}

func TestLoadSwarmCustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swarm.yaml")
	data := []byte("population:\n  goombas: 7\nenemies:\n  speed: 0.9\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadSwarm(path)
	if err != nil {
		t.Fatalf("LoadSwarm() failed: %v", err)
	}
	if cfg.Population.Goombas != 7 || cfg.Enemies.Speed != 0.9 {
		t.Errorf("overrides not applied: goombas=%d speed=%v", cfg.Population.Goombas, cfg.Enemies.Speed)
	}
	if cfg.Population.Koopas != 24 || cfg.Physics.Gravity != 0.25 {
		t.Errorf("missing keys should keep defaults: koopas=%d gravity=%v", cfg.Population.Koopas, cfg.Physics.Gravity)
	}
}

func TestLoadSwarmErrors(t *testing.T) {
	if _, err := LoadSwarm(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing custom config")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("world: [not, a, map"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := LoadSwarm(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestApplySwarmPreset(t *testing.T) {
	cfg := DefaultSwarmConfig()
	ApplySwarmPreset(&cfg, DifficultyHard)
	if cfg.Gameplay.Lives != 2 || cfg.Population.Goombas != 72 || cfg.Population.Koopas != 36 {
		t.Errorf("hard preset: lives=%d goombas=%d koopas=%d", cfg.Gameplay.Lives, cfg.Population.Goombas, cfg.Population.Koopas)
	}
	if cfg.Difficulty.InitialLevel != 0.7 || !cfg.Difficulty.Enabled {
		t.Errorf("hard preset should enable progression from 0.7, got %v", cfg.Difficulty.InitialLevel)
	}
	if err := cfg.ToParams().Validate(); err != nil {
		t.Errorf("hard preset params should validate: %v", err)
	}

	cfg = DefaultSwarmConfig()
	ApplySwarmPreset(&cfg, DifficultyFixed)
	if cfg.Difficulty.Enabled {
		t.Error("fixed preset should disable progression")
	}
}

func TestParsePreset(t *testing.T) {
	if ParsePreset("easy") != DifficultyEasy {
		t.Error("easy should parse")
	}
	if ParsePreset("nightmare") != DifficultyNormal {
		t.Error("unknown preset should fall back to normal")
	}
}
