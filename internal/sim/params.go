package sim

import (
	"errors"
	"fmt"
)

// ErrInvalidParams is returned by NewEngine for unusable parameters.
var ErrInvalidParams = errors.New("sim: invalid params")

// Params holds every tunable of the simulation. Velocities are pixels per
// tick, durations are ticks unless the name says otherwise.
type Params struct {
	ScreenW, ScreenH float64
	TileSize         float64
	CellSize         float64
	CellCapacity     int
	Seed             uint32

	// Entity pool ranges, in this order.
	Players   int
	Goombas   int
	Koopas    int
	Transient int
	// Share of players that start big.
	BigStartChance float64

	Gravity        float64
	MaxFall        float64
	JumpImpulse    float64
	BigJumpImpulse float64
	MoveSpeed      float64
	Friction       float64
	EnemySpeed     float64
	MushroomSpeed  float64
	HeadBounce     float64
	StompBounce    float64
	HitBounce      float64
	StompWindow    float64
	LandTolerance  float64
	ShellTolerance float64
	ShellKickGrace uint32

	FireballSpeed   float64
	FireballLife    uint32
	FireCadence     uint32
	DebrisLife      uint32
	DebrisSpeedX    float64
	DebrisSpeedY    float64
	CoinLife        uint32
	CoinSpeed       float64
	ItemRiseTicks   uint32
	ItemRiseSpeed   float64
	WeightCoin      uint32
	WeightMushroom  uint32
	WeightFlower    uint32
	WeightStar      uint32
	StarTicks       uint32
	GraceTicks      uint32
	SpawnGraceTicks uint32
	FlattenSeconds  float64
	DyingFallSpeed  float64
	DyingFallFrac   float64
	DyingFadeTicks  uint32
	RespawnMargin   float64
	AITurnChance    float64
	AIJumpChance    float64
	// AI duplicates chase goombas within ChaseRange pixels and look
	// EdgeLookAhead pixels past their center for ground before walking on.
	ChaseRange      float64
	ChaseJumpChance float64
	EdgeLookAhead   float64
	EdgeJumpChance  float64
	PitZoneWidth    int
	PitWidth        int
	PlatformSpacing int
}

// DefaultParams returns the parameters for a 256x224 screen.
func DefaultParams() Params {
	return Params{
		ScreenW:      256,
		ScreenH:      224,
		TileSize:     8,
		CellSize:     32,
		CellCapacity: 16,
		Seed:         0,

		Players:   24,
		Goombas:   48,
		Koopas:    24,
		Transient: 160,

		BigStartChance: 0.2,

		Gravity:        0.25,
		MaxFall:        5,
		JumpImpulse:    -5,
		BigJumpImpulse: -5.5,
		MoveSpeed:      1.5,
		Friction:       0.7,
		EnemySpeed:     0.6,
		MushroomSpeed:  0.8,
		HeadBounce:     1,
		StompBounce:    -4,
		HitBounce:      -2,
		StompWindow:    4,
		LandTolerance:  4,
		ShellTolerance: 2,
		ShellKickGrace: 8,

		FireballSpeed:   3,
		FireballLife:    90,
		FireCadence:     30,
		DebrisLife:      60,
		DebrisSpeedX:    1.2,
		DebrisSpeedY:    -3.5,
		CoinLife:        30,
		CoinSpeed:       -3,
		ItemRiseTicks:   16,
		ItemRiseSpeed:   0.5,
		WeightCoin:      50,
		WeightMushroom:  25,
		WeightFlower:    15,
		WeightStar:      10,
		StarTicks:       600,
		GraceTicks:      90,
		SpawnGraceTicks: 120,
		FlattenSeconds:  1.0,
		DyingFallSpeed:  2,
		DyingFallFrac:   0.25,
		DyingFadeTicks:  30,
		RespawnMargin:   32,
		AITurnChance:    0.01,
		AIJumpChance:    0.02,
		ChaseRange:      64,
		ChaseJumpChance: 0.1,
		EdgeLookAhead:   8,
		EdgeJumpChance:  0.5,
		PitZoneWidth:    16,
		PitWidth:        3,
		PlatformSpacing: 4,
	}
}

// Total returns the entity pool size.
func (p Params) Total() int {
	return p.Players + p.Goombas + p.Koopas + p.Transient
}

// ShellSpeed is the speed of a kicked shell.
func (p Params) ShellSpeed() float64 {
	return 2 * p.EnemySpeed
}

// Validate reports the first unusable parameter.
func (p Params) Validate() error {
	switch {
	case p.ScreenW <= 0 || p.ScreenH <= 0:
		return fmt.Errorf("%w: screen %vx%v", ErrInvalidParams, p.ScreenW, p.ScreenH)
	case p.TileSize <= 0:
		return fmt.Errorf("%w: tile size %v", ErrInvalidParams, p.TileSize)
	case p.CellSize < 2*p.TileSize:
		return fmt.Errorf("%w: cell size %v must be at least twice the tile size", ErrInvalidParams, p.CellSize)
	case p.CellCapacity <= 0:
		return fmt.Errorf("%w: cell capacity %d", ErrInvalidParams, p.CellCapacity)
	case p.Players < 1:
		return fmt.Errorf("%w: need at least one player", ErrInvalidParams)
	case p.Goombas < 0 || p.Koopas < 0 || p.Transient < 0:
		return fmt.Errorf("%w: negative population", ErrInvalidParams)
	case p.PitZoneWidth <= 0 || p.PitWidth < 0 || p.PlatformSpacing <= 0:
		return fmt.Errorf("%w: level layout", ErrInvalidParams)
	case p.FireCadence == 0:
		return fmt.Errorf("%w: fire cadence must be positive", ErrInvalidParams)
	}
	return nil
}
