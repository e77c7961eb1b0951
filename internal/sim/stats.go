package sim

import "sync/atomic"

// Stats are run-wide counters updated atomically by pass workers.
type Stats struct {
	BricksBroken     atomic.Uint64
	QuestionsEmptied atomic.Uint64
	ItemsSpawned     atomic.Uint64
	CoinsCollected   atomic.Uint64
	PowerUps         atomic.Uint64
	EnemiesDefeated  atomic.Uint64
	PlayerDeaths     atomic.Uint64
	SpawnDrops       atomic.Uint64
	CellOverflows    atomic.Uint64
	ClaimsLost       atomic.Uint64
	BlocksPlaced     atomic.Uint64
}

// StatsSnapshot is a plain copy of Stats.
type StatsSnapshot struct {
	BricksBroken     uint64 `msgpack:"bricks"`
	QuestionsEmptied uint64 `msgpack:"questions"`
	ItemsSpawned     uint64 `msgpack:"items"`
	CoinsCollected   uint64 `msgpack:"coins"`
	PowerUps         uint64 `msgpack:"powerups"`
	EnemiesDefeated  uint64 `msgpack:"defeats"`
	PlayerDeaths     uint64 `msgpack:"deaths"`
	SpawnDrops       uint64 `msgpack:"spawn_drops"`
	CellOverflows    uint64 `msgpack:"cell_overflows"`
	ClaimsLost       uint64 `msgpack:"claims_lost"`
	BlocksPlaced     uint64 `msgpack:"blocks_placed"`
}

// Snapshot copies the counters.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		BricksBroken:     s.BricksBroken.Load(),
		QuestionsEmptied: s.QuestionsEmptied.Load(),
		ItemsSpawned:     s.ItemsSpawned.Load(),
		CoinsCollected:   s.CoinsCollected.Load(),
		PowerUps:         s.PowerUps.Load(),
		EnemiesDefeated:  s.EnemiesDefeated.Load(),
		PlayerDeaths:     s.PlayerDeaths.Load(),
		SpawnDrops:       s.SpawnDrops.Load(),
		CellOverflows:    s.CellOverflows.Load(),
		ClaimsLost:       s.ClaimsLost.Load(),
		BlocksPlaced:     s.BlocksPlaced.Load(),
	}
}

func (s *Stats) reset() {
	for _, c := range []*atomic.Uint64{
		&s.BricksBroken, &s.QuestionsEmptied, &s.ItemsSpawned, &s.CoinsCollected,
		&s.PowerUps, &s.EnemiesDefeated, &s.PlayerDeaths, &s.SpawnDrops,
		&s.CellOverflows, &s.ClaimsLost, &s.BlocksPlaced,
	} {
		c.Store(0)
	}
}

// Score derives the swarm score from the counters.
func (s StatsSnapshot) Score() int {
	return int(s.CoinsCollected*200 + s.EnemiesDefeated*100 + s.BricksBroken*50 + s.PowerUps*25)
}
