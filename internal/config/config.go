// Package config provides YAML-based configuration of the swarm simulation
// and difficulty management.
package config

// SwarmConfig contains all configuration for the swarm simulation.
type SwarmConfig struct {
	World      SwarmWorld       `yaml:"world"`
	Population SwarmPopulation  `yaml:"population"`
	Physics    SwarmPhysics     `yaml:"physics"`
	Enemies    SwarmEnemies     `yaml:"enemies"`
	Items      SwarmItems       `yaml:"items"`
	Timing     SwarmTiming      `yaml:"timing"`
	AI         SwarmAI          `yaml:"ai"`
	Level      SwarmLevel       `yaml:"level"`
	Gameplay   SwarmGameplay    `yaml:"gameplay"`
	Difficulty DifficultyConfig `yaml:"difficulty"`
}

// SwarmWorld defines the simulated screen and spatial structures.
type SwarmWorld struct {
	ScreenW      float64 `yaml:"screen_w"`      // pixels
	ScreenH      float64 `yaml:"screen_h"`      // pixels
	TileSize     float64 `yaml:"tile_size"`     // pixels per tile
	CellSize     float64 `yaml:"cell_size"`     // broad-phase cell, at least 2 tiles
	CellCapacity int     `yaml:"cell_capacity"` // entries per cell before drops
	Seed         uint32  `yaml:"seed"`
}

// SwarmPopulation defines the entity pool ranges.
type SwarmPopulation struct {
	Players   int `yaml:"players"`
	Goombas   int `yaml:"goombas"`
	Koopas    int `yaml:"koopas"`
	Transient int `yaml:"transient"`

	BigStartChance float64 `yaml:"big_start_chance"` // share of players that start big
}

// SwarmPhysics defines movement constants, in pixels per tick.
type SwarmPhysics struct {
	Gravity        float64 `yaml:"gravity"`
	MaxFall        float64 `yaml:"max_fall"`
	JumpImpulse    float64 `yaml:"jump_impulse"`
	BigJumpImpulse float64 `yaml:"big_jump_impulse"`
	MoveSpeed      float64 `yaml:"move_speed"`
	Friction       float64 `yaml:"friction"`
	HeadBounce     float64 `yaml:"head_bounce"`
	StompBounce    float64 `yaml:"stomp_bounce"`
	HitBounce      float64 `yaml:"hit_bounce"`
	StompWindow    float64 `yaml:"stomp_window"`
	LandTolerance  float64 `yaml:"land_tolerance"`
	ShellTolerance float64 `yaml:"shell_tolerance"`
	RespawnMargin  float64 `yaml:"respawn_margin"`
}

// SwarmEnemies defines enemy behaviour.
type SwarmEnemies struct {
	Speed          float64 `yaml:"speed"`
	ShellKickGrace uint32  `yaml:"shell_kick_grace"` // ticks a kicked shell is harmless
	FlattenSeconds float64 `yaml:"flatten_seconds"`
}

// SwarmItems defines question block rewards and projectiles.
type SwarmItems struct {
	WeightCoin     uint32  `yaml:"weight_coin"`
	WeightMushroom uint32  `yaml:"weight_mushroom"`
	WeightFlower   uint32  `yaml:"weight_flower"`
	WeightStar     uint32  `yaml:"weight_star"`
	MushroomSpeed  float64 `yaml:"mushroom_speed"`
	RiseTicks      uint32  `yaml:"rise_ticks"`
	RiseSpeed      float64 `yaml:"rise_speed"`
	CoinLife       uint32  `yaml:"coin_life"`
	CoinSpeed      float64 `yaml:"coin_speed"`
	DebrisLife     uint32  `yaml:"debris_life"`
	DebrisSpeedX   float64 `yaml:"debris_speed_x"`
	DebrisSpeedY   float64 `yaml:"debris_speed_y"`
	FireballSpeed  float64 `yaml:"fireball_speed"`
	FireballLife   uint32  `yaml:"fireball_life"`
	FireCadence    uint32  `yaml:"fire_cadence"`
}

// SwarmTiming defines power-up and death durations, in ticks.
type SwarmTiming struct {
	StarTicks      uint32  `yaml:"star_ticks"`
	GraceTicks     uint32  `yaml:"grace_ticks"`
	SpawnGrace     uint32  `yaml:"spawn_grace_ticks"` // players ignore enemy hits after spawning
	DyingFallSpeed float64 `yaml:"dying_fall_speed"`
	DyingFallFrac  float64 `yaml:"dying_fall_frac"` // share of screen height
	DyingFadeTicks uint32  `yaml:"dying_fade_ticks"`
}

// SwarmAI defines per-tick chances for AI-driven player duplicates.
type SwarmAI struct {
	TurnChance float64 `yaml:"turn_chance"`
	JumpChance float64 `yaml:"jump_chance"`

	ChaseRange      float64 `yaml:"chase_range"` // pixels
	ChaseJumpChance float64 `yaml:"chase_jump_chance"`
	EdgeLookAhead   float64 `yaml:"edge_look_ahead"` // pixels past center
	EdgeJumpChance  float64 `yaml:"edge_jump_chance"`
}

// SwarmLevel defines the procedural level layout.
type SwarmLevel struct {
	PitZoneWidth    int `yaml:"pit_zone_width"` // columns per pit zone
	PitWidth        int `yaml:"pit_width"`
	PlatformSpacing int `yaml:"platform_spacing"` // rows between platform rows
}

// SwarmGameplay defines presenter rules layered over the simulation.
type SwarmGameplay struct {
	Lives int `yaml:"lives"` // controlled player deaths before game over
}

// DifficultyConfig defines the difficulty progression system.
type DifficultyConfig struct {
	Enabled      bool              `yaml:"enabled"`
	InitialLevel float64           `yaml:"initial_level"` // 0.0 = easy, 1.0 = hard
	Progression  ProgressionConfig `yaml:"progression"`
	Scaling      ScalingConfig     `yaml:"scaling"`
}

// ProgressionConfig defines how difficulty increases over time.
type ProgressionConfig struct {
	Type  string `yaml:"type"`   // "score", "time", or "none"
	MaxAt int    `yaml:"max_at"` // Score/ticks at which max difficulty is reached
}

// ScalingConfig defines the magnitude of difficulty changes.
type ScalingConfig struct {
	PressureGain float64 `yaml:"pressure_gain"` // AI pressure added at max difficulty
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// InitialLevelForPreset returns the initial_level for a difficulty preset.
func InitialLevelForPreset(preset DifficultyPreset) float64 {
	switch preset {
	case DifficultyEasy:
		return 0.0
	case DifficultyNormal:
		return 0.3
	case DifficultyHard:
		return 0.7
	default:
		return 0.0
	}
}

// IsFixedPreset returns true if the preset disables progression.
func IsFixedPreset(preset DifficultyPreset) bool {
	return preset == DifficultyFixed
}

// ParsePreset converts a flag value into a preset. Unknown names fall back
// to normal.
func ParsePreset(s string) DifficultyPreset {
	switch p := DifficultyPreset(s); p {
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return p
	default:
		return DifficultyNormal
	}
}
