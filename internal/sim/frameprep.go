package sim

// framePrep clears the broad-phase grid, converts destroy-pending blocks
// and carries the entity pool forward.
func (e *Engine) framePrep(tc TickContext) {
	nc := e.grid.Cells()
	nb := len(e.blocks)
	ne := e.pool.Len()

	e.beginPass()
	e.disp.run(max(nc, nb, ne), func(i0, i1 int, _ *workerScratch) {
		for i := i0; i < i1; i++ {
			if i < nc {
				e.grid.ClearCell(i)
			}
			if i < nb {
				e.prepBlock(i, tc)
			}
			if i < ne {
				e.pool.put(i, e.pool.cur[i])
			}
		}
	})
	e.pool.swap()
}

// prepBlock acts on block i if its tile is tagged destroy-pending for it.
// The worker for i is the block's only writer during the pass. It reports
// whether the block changed.
func (e *Engine) prepBlock(i int, tc TickContext) bool {
	b := &e.blocks[i]
	if b.Destroyed() {
		return false
	}
	tx, ty := e.tileOf(b)
	slot := uint32(i)

	switch b.Kind {
	case BlockBrick:
		if !e.tiles.Consume(tx, ty, slot, TileEmpty) {
			return false
		}
		b.Flags |= BlockDestroyed
		e.stats.BricksBroken.Add(1)
		e.spawnDebris(b, slot, tc)
	case BlockQuestion:
		if !e.tiles.Consume(tx, ty, slot, slot) {
			return false
		}
		b.Kind = BlockEmptied
		e.stats.QuestionsEmptied.Add(1)
		e.spawnItem(b, slot, tc)
	default:
		return false
	}
	return true
}

func (e *Engine) spawnDebris(b *Block, slot uint32, tc TickContext) {
	p := &e.params
	for k, dir := range [2]float64{-1, 1} {
		d := Entity{
			Pos:   Vec2{X: b.Pos.X + 2, Y: b.Pos.Y + 2},
			Vel:   Vec2{X: dir * p.DebrisSpeedX, Y: p.DebrisSpeedY},
			Kind:  KindDebris,
			Flags: FlagAlive,
		}
		e.spawn(d, hash3(slot, tc.Frame, saltSpawnRing)+uint32(k))
	}
}

// itemRoll picks the item a question block releases by weighted roll.
func (p *Params) itemRoll(h uint32) Kind {
	total := p.WeightCoin + p.WeightMushroom + p.WeightFlower + p.WeightStar
	if total == 0 {
		return KindCoin
	}
	r := h % total
	switch {
	case r < p.WeightCoin:
		return KindCoin
	case r < p.WeightCoin+p.WeightMushroom:
		return KindMushroom
	case r < p.WeightCoin+p.WeightMushroom+p.WeightFlower:
		return KindFireFlower
	default:
		return KindStar
	}
}

func (e *Engine) spawnItem(b *Block, slot uint32, tc TickContext) {
	p := &e.params
	kind := p.itemRoll(hash3(slot, tc.Frame^p.Seed, saltItemRoll))

	item := Entity{Kind: kind, Flags: FlagAlive | FlagFacingRight}
	if kind == KindCoin {
		item.Pos = Vec2{X: b.Pos.X, Y: b.Pos.Y - p.TileSize}
		item.Vel = Vec2{Y: p.CoinSpeed}
	} else {
		item.Pos = b.Pos
		item.State = ItemRising
	}
	if !e.spawn(item, hash3(slot, tc.Frame, saltSpawnRing)) {
		return
	}
	e.stats.ItemsSpawned.Add(1)
	if kind == KindCoin {
		e.stats.CoinsCollected.Add(1)
	}
}

// spawn places e in the transient range, counting a drop when full.
func (e *Engine) spawn(ent Entity, start uint32) bool {
	if e.pool.spawn(ent, start) {
		return true
	}
	e.stats.SpawnDrops.Add(1)
	return false
}
