package sim

import "github.com/vovakirdan/tui-swarm/internal/core"

// Vec2 is a position or velocity in pixel space.
type Vec2 struct {
	X float64 `msgpack:"x"`
	Y float64 `msgpack:"y"`
}

// Kind identifies what an entity is.
type Kind uint8

const (
	KindPlayer Kind = iota
	KindGoomba
	KindKoopa
	KindCoin
	KindMushroom
	KindDebris
	KindFireFlower
	KindStar
	KindFireball
)

func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindGoomba:
		return "goomba"
	case KindKoopa:
		return "koopa"
	case KindCoin:
		return "coin"
	case KindMushroom:
		return "mushroom"
	case KindDebris:
		return "debris"
	case KindFireFlower:
		return "fireflower"
	case KindStar:
		return "star"
	case KindFireball:
		return "fireball"
	default:
		return "unknown"
	}
}

// IsCoreActor reports whether the kind wraps at screen edges, respawns
// after falling off screen and can hit blocks from below.
func (k Kind) IsCoreActor() bool {
	return k == KindPlayer || k == KindGoomba || k == KindKoopa
}

// IsEnemy reports whether the kind is one of the walker enemies.
func (k Kind) IsEnemy() bool {
	return k == KindGoomba || k == KindKoopa
}

// IsPowerUp reports whether the kind is a collectible power-up item.
func (k Kind) IsPowerUp() bool {
	return k == KindMushroom || k == KindFireFlower || k == KindStar
}

// Kind-specific values of Entity.State.
const (
	GoombaWalk uint8 = 0
	GoombaFlat uint8 = 1

	KoopaWalk        uint8 = 0
	KoopaShell       uint8 = 1
	KoopaShellMoving uint8 = 2

	ItemRising uint8 = 0
	ItemActive uint8 = 1
)

// Variant is the look of a player-character duplicate.
type Variant uint8

const (
	VariantMario Variant = iota
	VariantLuigi
	VariantToad
	VariantPrincess
	variantCount
)

func (v Variant) String() string {
	switch v {
	case VariantMario:
		return "mario"
	case VariantLuigi:
		return "luigi"
	case VariantToad:
		return "toad"
	case VariantPrincess:
		return "princess"
	default:
		return "unknown"
	}
}

// Flags is the entity flag bitset.
type Flags uint16

const (
	FlagFacingRight Flags = 1 << iota
	FlagAlive
	FlagOnGround
	FlagBig
	FlagControlled
	FlagDying
	FlagFire
	FlagStar
)

// Entity is one slot of the entity pool.
type Entity struct {
	Pos     Vec2    `msgpack:"pos"`
	Vel     Vec2    `msgpack:"vel"`
	Kind    Kind    `msgpack:"kind"`
	State   uint8   `msgpack:"state"`
	Variant Variant `msgpack:"variant"`
	Flags   Flags   `msgpack:"flags"`
	// Timer counts interaction passes survived; drives animation.
	Timer uint32 `msgpack:"timer"`
	// Age counts ticks in the current lifecycle phase: debris, coin and
	// fireball lifetime, item rise, dying countdown, shell kick grace.
	Age uint32 `msgpack:"age"`
	// StarUntil is the frame at which star power expires.
	StarUntil uint32 `msgpack:"star_until"`
	// GraceUntil is the frame until which enemy touches are ignored.
	GraceUntil uint32 `msgpack:"grace_until"`
	// FlatAt is the elapsed time in seconds at which a goomba was flattened.
	FlatAt float64 `msgpack:"flat_at"`
}

// Has reports whether all flags in f are set.
func (e *Entity) Has(f Flags) bool {
	return e.Flags&f == f
}

// Occupied reports whether the slot holds a live or dying entity.
func (e *Entity) Occupied() bool {
	return e.Flags&(FlagAlive|FlagDying) != 0
}

// Active reports whether the entity is alive and not dying.
func (e *Entity) Active() bool {
	return e.Flags&FlagAlive != 0 && e.Flags&FlagDying == 0
}

// Size returns the entity hitbox in pixels.
func (e *Entity) Size() (w, h float64) {
	switch e.Kind {
	case KindPlayer:
		if e.Has(FlagBig) {
			return 8, 16
		}
		return 8, 8
	case KindKoopa:
		if e.State == KoopaWalk {
			return 8, 12
		}
		return 8, 8
	case KindDebris, KindFireball:
		return 4, 4
	default:
		return 8, 8
	}
}

// Bounds returns the hitbox as a rectangle.
func (e *Entity) Bounds() core.RectF {
	w, h := e.Size()
	return core.RectF{X: e.Pos.X, Y: e.Pos.Y, W: w, H: h}
}

// CenterX returns the horizontal center of the hitbox.
func (e *Entity) CenterX() float64 {
	w, _ := e.Size()
	return e.Pos.X + w/2
}

func (e *Entity) stationaryShell() bool {
	return e.Kind == KindKoopa && e.State == KoopaShell
}

func (e *Entity) movingShell() bool {
	return e.Kind == KindKoopa && e.State == KoopaShellMoving
}

func (e *Entity) flat() bool {
	return e.Kind == KindGoomba && e.State == GoombaFlat
}

// walking reports whether an enemy is in its walking state.
func (e *Entity) walking() bool {
	return e.Kind.IsEnemy() && e.State == 0
}

// interacts reports whether the entity is registered in the broad-phase grid.
func (e *Entity) interacts() bool {
	switch e.Kind {
	case KindPlayer, KindKoopa, KindFireball:
		return true
	case KindGoomba:
		return !e.flat()
	case KindMushroom, KindFireFlower, KindStar:
		return e.State == ItemActive
	default:
		return false
	}
}

func (e *Entity) setFacingFromVel() {
	switch {
	case e.Vel.X > 0.01:
		e.Flags |= FlagFacingRight
	case e.Vel.X < -0.01:
		e.Flags &^= FlagFacingRight
	}
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
