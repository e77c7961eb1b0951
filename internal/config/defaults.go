package config

import (
	_ "embed"

	"github.com/vovakirdan/tui-swarm/internal/sim"
)

//go:embed defaults/swarm.yaml
var defaultSwarmYAML []byte

// DefaultSwarmConfig returns the default swarm configuration. It mirrors
// sim.DefaultParams so that the engine and the YAML agree.
func DefaultSwarmConfig() SwarmConfig {
	p := sim.DefaultParams()
	return SwarmConfig{
		World: SwarmWorld{
			ScreenW:      p.ScreenW,
			ScreenH:      p.ScreenH,
			TileSize:     p.TileSize,
			CellSize:     p.CellSize,
			CellCapacity: p.CellCapacity,
			Seed:         p.Seed,
		},
		Population: SwarmPopulation{
			Players:   p.Players,
			Goombas:   p.Goombas,
			Koopas:    p.Koopas,
			Transient: p.Transient,

			BigStartChance: p.BigStartChance,
		},
		Physics: SwarmPhysics{
			Gravity:        p.Gravity,
			MaxFall:        p.MaxFall,
			JumpImpulse:    p.JumpImpulse,
			BigJumpImpulse: p.BigJumpImpulse,
			MoveSpeed:      p.MoveSpeed,
			Friction:       p.Friction,
			HeadBounce:     p.HeadBounce,
			StompBounce:    p.StompBounce,
			HitBounce:      p.HitBounce,
			StompWindow:    p.StompWindow,
			LandTolerance:  p.LandTolerance,
			ShellTolerance: p.ShellTolerance,
			RespawnMargin:  p.RespawnMargin,
		},
		Enemies: SwarmEnemies{
			Speed:          p.EnemySpeed,
			ShellKickGrace: p.ShellKickGrace,
			FlattenSeconds: p.FlattenSeconds,
		},
		Items: SwarmItems{
			WeightCoin:     p.WeightCoin,
			WeightMushroom: p.WeightMushroom,
			WeightFlower:   p.WeightFlower,
			WeightStar:     p.WeightStar,
			MushroomSpeed:  p.MushroomSpeed,
			RiseTicks:      p.ItemRiseTicks,
			RiseSpeed:      p.ItemRiseSpeed,
			CoinLife:       p.CoinLife,
			CoinSpeed:      p.CoinSpeed,
			DebrisLife:     p.DebrisLife,
			DebrisSpeedX:   p.DebrisSpeedX,
			DebrisSpeedY:   p.DebrisSpeedY,
			FireballSpeed:  p.FireballSpeed,
			FireballLife:   p.FireballLife,
			FireCadence:    p.FireCadence,
		},
		Timing: SwarmTiming{
			StarTicks:      p.StarTicks,
			GraceTicks:     p.GraceTicks,
			SpawnGrace:     p.SpawnGraceTicks,
			DyingFallSpeed: p.DyingFallSpeed,
			DyingFallFrac:  p.DyingFallFrac,
			DyingFadeTicks: p.DyingFadeTicks,
		},
		AI: SwarmAI{
			TurnChance: p.AITurnChance,
			JumpChance: p.AIJumpChance,

			ChaseRange:      p.ChaseRange,
			ChaseJumpChance: p.ChaseJumpChance,
			EdgeLookAhead:   p.EdgeLookAhead,
			EdgeJumpChance:  p.EdgeJumpChance,
		},
		Level: SwarmLevel{
			PitZoneWidth:    p.PitZoneWidth,
			PitWidth:        p.PitWidth,
			PlatformSpacing: p.PlatformSpacing,
		},
		Gameplay: SwarmGameplay{
			Lives: 3,
		},
		Difficulty: DifficultyConfig{
			Enabled:      true,
			InitialLevel: 0.0,
			Progression: ProgressionConfig{
				Type:  "time",
				MaxAt: 18000, // 5 minutes at 60fps
			},
			Scaling: ScalingConfig{
				PressureGain: 2.0,
			},
		},
	}
}

// ToParams converts the configuration into simulation parameters.
func (c SwarmConfig) ToParams() sim.Params {
	p := sim.DefaultParams()

	p.ScreenW, p.ScreenH = c.World.ScreenW, c.World.ScreenH
	p.TileSize = c.World.TileSize
	p.CellSize = c.World.CellSize
	p.CellCapacity = c.World.CellCapacity
	p.Seed = c.World.Seed

	p.Players = c.Population.Players
	p.Goombas = c.Population.Goombas
	p.Koopas = c.Population.Koopas
	p.Transient = c.Population.Transient
	p.BigStartChance = c.Population.BigStartChance

	ph := c.Physics
	p.Gravity = ph.Gravity
	p.MaxFall = ph.MaxFall
	p.JumpImpulse = ph.JumpImpulse
	p.BigJumpImpulse = ph.BigJumpImpulse
	p.MoveSpeed = ph.MoveSpeed
	p.Friction = ph.Friction
	p.HeadBounce = ph.HeadBounce
	p.StompBounce = ph.StompBounce
	p.HitBounce = ph.HitBounce
	p.StompWindow = ph.StompWindow
	p.LandTolerance = ph.LandTolerance
	p.ShellTolerance = ph.ShellTolerance
	p.RespawnMargin = ph.RespawnMargin

	p.EnemySpeed = c.Enemies.Speed
	p.ShellKickGrace = c.Enemies.ShellKickGrace
	p.FlattenSeconds = c.Enemies.FlattenSeconds

	it := c.Items
	p.WeightCoin = it.WeightCoin
	p.WeightMushroom = it.WeightMushroom
	p.WeightFlower = it.WeightFlower
	p.WeightStar = it.WeightStar
	p.MushroomSpeed = it.MushroomSpeed
	p.ItemRiseTicks = it.RiseTicks
	p.ItemRiseSpeed = it.RiseSpeed
	p.CoinLife = it.CoinLife
	p.CoinSpeed = it.CoinSpeed
	p.DebrisLife = it.DebrisLife
	p.DebrisSpeedX = it.DebrisSpeedX
	p.DebrisSpeedY = it.DebrisSpeedY
	p.FireballSpeed = it.FireballSpeed
	p.FireballLife = it.FireballLife
	p.FireCadence = it.FireCadence

	p.StarTicks = c.Timing.StarTicks
	p.GraceTicks = c.Timing.GraceTicks
	p.SpawnGraceTicks = c.Timing.SpawnGrace
	p.DyingFallSpeed = c.Timing.DyingFallSpeed
	p.DyingFallFrac = c.Timing.DyingFallFrac
	p.DyingFadeTicks = c.Timing.DyingFadeTicks

	p.AITurnChance = c.AI.TurnChance
	p.AIJumpChance = c.AI.JumpChance
	p.ChaseRange = c.AI.ChaseRange
	p.ChaseJumpChance = c.AI.ChaseJumpChance
	p.EdgeLookAhead = c.AI.EdgeLookAhead
	p.EdgeJumpChance = c.AI.EdgeJumpChance

	p.PitZoneWidth = c.Level.PitZoneWidth
	p.PitWidth = c.Level.PitWidth
	p.PlatformSpacing = c.Level.PlatformSpacing
	return p
}

// GetDefaultYAML returns the embedded default YAML for a scenario.
func GetDefaultYAML(id string) []byte {
	switch id {
	case "swarm", "swarm_horde", "swarm_solo":
		return defaultSwarmYAML
	default:
		return nil
	}
}
