package sim

import "math"

// platformRows returns the tile rows that carry platform patterns, from the
// lowest upward.
func platformRows(gridH uint32, spacing int) []int {
	var rows []int
	for y := int(gridH) - 1 - spacing; y >= 3; y -= spacing {
		rows = append(rows, y)
	}
	return rows
}

// IsPitColumn reports whether a ground column is left open. Columns are
// grouped into zones of PitZoneWidth; a hashed subset of zones, never the
// first, gets one pit of PitWidth columns.
func IsPitColumn(col, gridW uint32, p Params) bool {
	zw := uint32(p.PitZoneWidth)
	pw := uint32(p.PitWidth)
	zone := col / zw
	if zone == 0 || pw == 0 {
		return false
	}
	start := zone * zw
	end := start + zw
	if end > gridW {
		end = gridW
	}
	if end-start < pw+4 {
		return false
	}
	h := hash3(zone, p.Seed, saltPit)
	if h&1 != 0 {
		return false
	}
	offset := 2 + (h>>1)%(end-start-pw-3)
	return col >= start+offset && col < start+offset+pw
}

// layoutBlock decides where block slot s goes. Slot s covers column
// s%gridW of layout row s/gridW; row 0 is the ground.
func (e *Engine) layoutBlock(s uint32) (tx, ty int, kind BlockKind, ok bool) {
	p := &e.params
	col := s % e.gridW
	row := s / e.gridW
	if row == 0 {
		if IsPitColumn(col, e.gridW, *p) {
			return 0, 0, 0, false
		}
		return int(col), int(e.gridH) - 1, BlockGround, true
	}

	ry := e.rows[row-1]
	rs := row ^ p.Seed
	switch hash3(row, p.Seed, saltRowType) % 3 {
	case 0: // dense row with gaps
		if hash3(col/4, rs, saltColumn)%3 == 0 {
			return 0, 0, 0, false
		}
		ty = ry
	case 1: // staircases, the top step may reach the next row up
		const period = 5
		h := hash3(col/period, rs, saltColumn)
		if h%3 == 0 {
			return 0, 0, 0, false
		}
		step := int(col % period)
		if h&4 != 0 {
			step = period - 1 - step
		}
		ty = ry - step
	default: // floating platforms
		seg := col / 8
		if col%8 >= 3 || hash3(seg, rs, saltColumn)%2 != 0 {
			return 0, 0, 0, false
		}
		ty = ry - int(hash3(seg, rs, saltPlaceY)%2)
	}
	if ty < 1 {
		return 0, 0, 0, false
	}

	kind = BlockBrick
	if hash3(s, p.Seed, saltBlockKind)%5 == 0 {
		kind = BlockQuestion
	}
	return int(col), ty, kind, true
}

// generate builds the level and the initial population. Blocks are placed
// in parallel with ClaimMin, so when two slots want one tile the lowest slot
// keeps it whatever the scheduling; the second sub-pass hides the losers.
func (e *Engine) generate(tc TickContext) {
	e.stats.reset()
	e.tiles.Reset()

	nb := len(e.blocks)
	ne := e.pool.Len()
	e.disp.run(max(nb, ne), func(i0, i1 int, _ *workerScratch) {
		for i := i0; i < i1; i++ {
			if i < nb {
				e.placeBlock(i)
			}
			if i < ne {
				ent := e.initialEntity(i, tc)
				e.pool.cur[i] = ent
				e.pool.next[i] = ent
			}
		}
	})

	e.disp.run(nb, func(i0, i1 int, _ *workerScratch) {
		for i := i0; i < i1; i++ {
			b := &e.blocks[i]
			if b.Destroyed() {
				continue
			}
			tx, ty := e.tileOf(b)
			if e.tiles.Lookup(tx, ty) != uint32(i) {
				*b = hiddenBlock()
				e.stats.ClaimsLost.Add(1)
				continue
			}
			e.stats.BlocksPlaced.Add(1)
		}
	})

	s := e.stats.Snapshot()
	e.logger.Debug("level generated",
		"grid", [2]uint32{e.gridW, e.gridH},
		"blocks", s.BlocksPlaced,
		"claims_lost", s.ClaimsLost,
		"entities", ne,
	)
}

func (e *Engine) placeBlock(i int) {
	tx, ty, kind, ok := e.layoutBlock(uint32(i))
	if !ok {
		e.blocks[i] = hiddenBlock()
		return
	}
	t := e.params.TileSize
	e.blocks[i] = Block{Pos: Vec2{X: float64(tx) * t, Y: float64(ty) * t}, Kind: kind}
	e.tiles.ClaimMin(tx, ty, uint32(i))
}

// initialEntity returns the generated occupant of pool slot i. Slots are
// grouped by kind: players, goombas, koopas, then the free transient range.
//
// Players drop in from the upper half, one per equal-width column segment
// so they start apart. Enemies start on the ground or a platform row. Every
// player gets a spawn grace window, so a generated overlap with an enemy
// cannot kill anyone before the crowd has moved.
func (e *Engine) initialEntity(i int, tc TickContext) Entity {
	p := &e.params
	var kind Kind
	var speed float64
	switch {
	case i < p.Players:
		kind, speed = KindPlayer, p.MoveSpeed
	case i < p.Players+p.Goombas:
		kind, speed = KindGoomba, p.EnemySpeed
	case i < p.Players+p.Goombas+p.Koopas:
		kind, speed = KindKoopa, p.EnemySpeed
	default:
		return Entity{}
	}

	u := uint32(i)
	sw, sh := tc.Resolution.X, tc.Resolution.Y
	ent := Entity{Kind: kind, Flags: FlagAlive}
	w, h := ent.Size()
	if kind == KindPlayer {
		seg := (sw - w) / float64(p.Players)
		ent.Pos = Vec2{
			X: float64(i)*seg + unit(hash3(u, p.Seed, saltPlaceX))*math.Max(seg-w, 0),
			Y: unit(hash3(u, p.Seed, saltPlaceY)) * sh * 0.5,
		}
	} else {
		ent.Pos = Vec2{
			X: unit(hash3(u, p.Seed, saltPlaceX)) * (sw - w),
			Y: float64(e.enemyRow(u))*p.TileSize - h,
		}
	}
	if hash3(u, p.Seed, saltFacing)&1 == 0 {
		ent.Flags |= FlagFacingRight
		ent.Vel.X = speed
	} else {
		ent.Vel.X = -speed
	}
	if kind == KindPlayer {
		ent.Variant = Variant(hash3(u, p.Seed, saltVariant) % uint32(variantCount))
		ent.GraceUntil = p.SpawnGraceTicks
		if unit(hash3(u, p.Seed, saltBigStart)) < p.BigStartChance {
			ent.Flags |= FlagBig
			ent.Pos.Y = math.Max(ent.Pos.Y-8, 0)
		}
		if i == 0 {
			ent.Flags |= FlagControlled
			ent.Vel.X = 0
		}
	}
	return ent
}

// enemyRow picks the tile row an enemy stands on: the ground or one of the
// platform rows.
func (e *Engine) enemyRow(u uint32) int {
	k := hash3(u, e.params.Seed, saltEnemyRow) % uint32(len(e.rows)+1)
	if k == 0 {
		return int(e.gridH) - 1
	}
	return e.rows[k-1]
}

func (e *Engine) tileOf(b *Block) (int, int) {
	t := e.params.TileSize
	return int(b.Pos.X / t), int(b.Pos.Y / t)
}
