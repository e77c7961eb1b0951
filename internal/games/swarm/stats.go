package swarm

import (
	"time"

	"github.com/vovakirdan/tui-swarm/internal/sim"
	"github.com/vovakirdan/tui-swarm/internal/storage"
)

// RunStats summarizes a finished or interrupted run.
type RunStats struct {
	Scenario string
	Score    int
	Ticks    uint32
	Deaths   int
	Workers  int
	Stats    sim.StatsSnapshot
}

// Record converts the summary into a storage row.
func (s RunStats) Record(mode string, elapsed time.Duration) storage.RunRecord {
	return storage.RunRecord{
		Scenario:      s.Scenario,
		Mode:          mode,
		Score:         s.Score,
		Ticks:         int64(s.Ticks),
		Deaths:        s.Deaths,
		Workers:       s.Workers,
		Bricks:        int64(s.Stats.BricksBroken),
		Coins:         int64(s.Stats.CoinsCollected),
		Defeats:       int64(s.Stats.EnemiesDefeated),
		PowerUps:      int64(s.Stats.PowerUps),
		SpawnDrops:    int64(s.Stats.SpawnDrops),
		CellOverflows: int64(s.Stats.CellOverflows),
		Duration:      elapsed,
	}
}
