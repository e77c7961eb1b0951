package sim

import "math"

// Snapshot is a copy of the committed simulation state for presenters and
// remote renderers.
type Snapshot struct {
	Frame    uint32        `msgpack:"frame"`
	GridW    uint32        `msgpack:"grid_w"`
	GridH    uint32        `msgpack:"grid_h"`
	TileSize float64       `msgpack:"tile"`
	Entities []Entity      `msgpack:"entities"`
	Blocks   []Block       `msgpack:"blocks"`
	Stats    StatsSnapshot `msgpack:"stats"`
}

// Snapshot copies the committed state. Free entity slots and destroyed
// blocks are left out.
func (e *Engine) Snapshot() Snapshot {
	snap := Snapshot{
		Frame:    e.frame,
		GridW:    e.gridW,
		GridH:    e.gridH,
		TileSize: e.params.TileSize,
		Stats:    e.stats.Snapshot(),
	}
	for _, ent := range e.pool.Committed() {
		if ent.Occupied() {
			snap.Entities = append(snap.Entities, ent)
		}
	}
	for _, b := range e.blocks {
		if !b.Destroyed() {
			snap.Blocks = append(snap.Blocks, b)
		}
	}
	return snap
}

// Hash returns a simple hash of the snapshot for determinism testing.
func (s *Snapshot) Hash() uint64 {
	h := uint64(s.Frame)
	f := func(v float64) {
		h = h*31 + math.Float64bits(v)
	}
	u := func(v uint64) {
		h = h*31 + v
	}

	for _, ent := range s.Entities {
		f(ent.Pos.X)
		f(ent.Pos.Y)
		f(ent.Vel.X)
		f(ent.Vel.Y)
		u(uint64(ent.Kind))
		u(uint64(ent.State))
		u(uint64(ent.Variant))
		u(uint64(ent.Flags))
		u(uint64(ent.Timer))
		u(uint64(ent.Age))
	}
	for _, b := range s.Blocks {
		f(b.Pos.X)
		f(b.Pos.Y)
		u(uint64(b.Kind))
	}
	u(s.Stats.BricksBroken)
	u(s.Stats.ItemsSpawned)
	u(s.Stats.EnemiesDefeated)
	return h
}
