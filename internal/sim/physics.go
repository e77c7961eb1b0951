package sim

import "math"

// sideOverlapMin is the vertical overlap below which a block touch is not
// treated as a side collision.
const sideOverlapMin = 1.0

// physics integrates every occupied entity, collides it against the tile
// index and registers interacting kinds in the broad-phase grid.
func (e *Engine) physics(tc TickContext) {
	ne := e.pool.Len()

	e.beginPass()
	e.disp.run(ne, func(i0, i1 int, _ *workerScratch) {
		for i := i0; i < i1; i++ {
			ent := e.pool.cur[i]
			if ent.Occupied() {
				e.physicsStep(i, &ent, tc)
			}
			e.pool.put(i, ent)
		}
	})
	e.pool.swap()
}

func (e *Engine) physicsStep(i int, ent *Entity, tc TickContext) {
	p := &e.params
	sw, sh := tc.Resolution.X, tc.Resolution.Y

	if ent.Has(FlagDying) {
		e.dyingStep(i, ent, tc)
		return
	}

	switch ent.Kind {
	case KindDebris:
		ent.Age++
		ent.Vel.Y = math.Min(ent.Vel.Y+p.Gravity, p.MaxFall)
		ent.Pos.X += ent.Vel.X
		ent.Pos.Y += ent.Vel.Y
		if ent.Pos.Y > sh || ent.Age > p.DebrisLife {
			*ent = Entity{}
		}
		return
	case KindCoin:
		ent.Age++
		ent.Pos.Y += ent.Vel.Y
		ent.Vel.Y *= 0.85
		if ent.Age >= p.CoinLife {
			*ent = Entity{}
		}
		return
	case KindFireball:
		ent.Age++
		ent.Pos.X += ent.Vel.X
		ent.Pos.Y += ent.Vel.Y
		if ent.Age > p.FireballLife || ent.Pos.X < -8 || ent.Pos.X > sw || ent.Pos.Y > sh {
			*ent = Entity{}
			return
		}
		e.register(i, ent)
		return
	case KindGoomba:
		if ent.flat() {
			return
		}
	case KindMushroom, KindFireFlower, KindStar:
		if ent.State == ItemRising {
			ent.Age++
			ent.Pos.Y -= p.ItemRiseSpeed
			if ent.Age >= p.ItemRiseTicks {
				ent.State = ItemActive
				ent.Age = 0
				ent.Vel.X = p.MushroomSpeed
				if !ent.Has(FlagFacingRight) {
					ent.Vel.X = -p.MushroomSpeed
				}
			}
			return
		}
	}

	if !ent.stationaryShell() {
		ent.Vel.Y = math.Min(ent.Vel.Y+p.Gravity, p.MaxFall)
	}
	old := ent.Pos
	ent.Pos.X += ent.Vel.X
	ent.Pos.Y += ent.Vel.Y
	ent.Flags &^= FlagOnGround

	e.collideTiles(ent, old)
	e.floorCheck(ent)

	if ent.Kind == KindStar && ent.Has(FlagOnGround) {
		ent.Vel.Y = p.StompBounce
	}

	if ent.Kind.IsCoreActor() {
		e.wrapOrRespawn(i, ent, tc)
	} else {
		w, _ := ent.Size()
		if ent.Pos.Y > sh || ent.Pos.X < -w || ent.Pos.X > sw {
			*ent = Entity{}
			return
		}
	}

	if ent.interacts() {
		e.register(i, ent)
	}
}

// collideTiles sweeps the tiles spanned between old and the new position,
// bounded to 3 columns and 4 rows.
func (e *Engine) collideTiles(ent *Entity, old Vec2) {
	t := e.params.TileSize
	w, h := ent.Size()

	tx0 := int(math.Floor(math.Min(old.X, ent.Pos.X) / t))
	tx1 := int(math.Floor((math.Max(old.X, ent.Pos.X) + w - 0.001) / t))
	ty0 := int(math.Floor(math.Min(old.Y, ent.Pos.Y) / t))
	ty1 := int(math.Floor((math.Max(old.Y, ent.Pos.Y) + h) / t))
	if tx1 > tx0+2 {
		tx1 = tx0 + 2
	}
	if ty1 > ty0+3 {
		ty1 = ty0 + 3
	}

	for ty := ty0; ty <= ty1; ty++ {
		for tx := tx0; tx <= tx1; tx++ {
			v := e.tiles.Lookup(tx, ty)
			if v == TileEmpty {
				continue
			}
			slot := Slot(v)
			b := &e.blocks[slot]
			if b.Destroyed() {
				continue
			}
			e.resolveBlock(ent, old, w, h, b, tx, ty, slot)
		}
	}
}

func (e *Engine) resolveBlock(ent *Entity, old Vec2, w, h float64, b *Block, tx, ty int, slot uint32) {
	p := &e.params
	t := p.TileSize
	bx, by := b.Pos.X, b.Pos.Y

	if ent.Pos.X >= bx+t || ent.Pos.X+w <= bx || ent.Pos.Y >= by+t || ent.Pos.Y+h <= by {
		return
	}

	switch {
	case ent.Vel.Y >= 0 && old.Y+h <= by+p.LandTolerance:
		ent.Pos.Y = by - h
		ent.Vel.Y = 0
		ent.Flags |= FlagOnGround
	case ent.Vel.Y < 0 && old.Y >= by+t-p.LandTolerance:
		ent.Pos.Y = by + t
		ent.Vel.Y = p.HeadBounce
		if ent.Kind.IsCoreActor() && b.Kind.Breakable() {
			e.tiles.MarkPending(tx, ty, slot)
		}
	default:
		overlapY := math.Min(ent.Pos.Y+h, by+t) - math.Max(ent.Pos.Y, by)
		if overlapY <= sideOverlapMin {
			return
		}
		if ent.CenterX() < bx+t/2 {
			ent.Pos.X = bx - w
		} else {
			ent.Pos.X = bx + t
		}
		ent.Vel.X = -ent.Vel.X
	}
}

// floorCheck catches a resting entity whose feet sit on a tile top that the
// sweep did not report.
func (e *Engine) floorCheck(ent *Entity) {
	if ent.Has(FlagOnGround) || ent.Vel.Y < 0 {
		return
	}
	t := e.params.TileSize
	w, h := ent.Size()
	feet := ent.Pos.Y + h
	ty := int(math.Floor(feet/t + 0.5))
	top := float64(ty) * t
	if math.Abs(feet-top) > 1 {
		return
	}

	tx0 := int(math.Floor(ent.Pos.X / t))
	tx1 := int(math.Floor((ent.Pos.X + w - 0.001) / t))
	for tx := tx0; tx <= tx1; tx++ {
		v := e.tiles.Lookup(tx, ty)
		if v == TileEmpty || e.blocks[Slot(v)].Destroyed() {
			continue
		}
		ent.Pos.Y = top - h
		ent.Vel.Y = 0
		ent.Flags |= FlagOnGround
		return
	}
}

// wrapOrRespawn wraps a core actor at the horizontal screen edges and
// respawns it once it falls RespawnMargin below the screen.
func (e *Engine) wrapOrRespawn(i int, ent *Entity, tc TickContext) {
	sw, sh := tc.Resolution.X, tc.Resolution.Y
	w, _ := ent.Size()
	cx := ent.Pos.X + w/2
	if cx < 0 {
		ent.Pos.X += sw
	} else if cx >= sw {
		ent.Pos.X -= sw
	}
	if ent.Pos.Y > sh+e.params.RespawnMargin {
		e.respawn(i, ent, tc, false)
	}
}

// dyingStep falls a dying actor a fixed fraction of the screen, holds it
// for the fade, then respawns it.
func (e *Engine) dyingStep(i int, ent *Entity, tc TickContext) {
	p := &e.params
	ent.Age++
	fall := uint32(p.DyingFallFrac * tc.Resolution.Y / p.DyingFallSpeed)
	if ent.Age <= fall {
		ent.Pos.Y += p.DyingFallSpeed
		return
	}
	if ent.Age > fall+p.DyingFadeTicks {
		e.respawn(i, ent, tc, true)
	}
}

// respawn moves a core actor to a hashed point on the top, left or right
// screen edge with zero vertical velocity. The controlled player only uses
// the top edge. revive also clears dying and power-ups, and gives players a
// fresh spawn grace window.
func (e *Engine) respawn(i int, ent *Entity, tc TickContext, revive bool) {
	p := &e.params
	sw, sh := tc.Resolution.X, tc.Resolution.Y

	if revive {
		ent.Flags &^= FlagDying | FlagBig | FlagFire | FlagStar
		ent.Flags |= FlagAlive
		if ent.Kind == KindPlayer {
			ent.GraceUntil = tc.Frame + p.SpawnGraceTicks
		}
	}
	ent.Flags &^= FlagOnGround
	if ent.Kind.IsEnemy() {
		ent.State = 0
	}
	ent.Age = 0
	w, _ := ent.Size()

	u := uint32(i)
	edge := hash3(u, tc.Frame, saltEdge) % 3
	if ent.Has(FlagControlled) {
		edge = 0
	}
	hp := hash3(u, tc.Frame, saltEdgePos)

	speed := p.EnemySpeed
	if ent.Kind == KindPlayer {
		speed = p.MoveSpeed
	}
	switch edge {
	case 0:
		ent.Pos = Vec2{X: unit(hp) * (sw - w), Y: 0}
		if hp&1 == 0 {
			speed = -speed
		}
	case 1:
		ent.Pos = Vec2{X: 0, Y: unit(hp) * sh * 0.5}
	default:
		ent.Pos = Vec2{X: sw - w, Y: unit(hp) * sh * 0.5}
		speed = -speed
	}
	if ent.Has(FlagControlled) {
		speed = 0
	}
	ent.Vel = Vec2{X: speed, Y: 0}
	ent.setFacingFromVel()
}

// register adds the entity's center to the broad-phase grid.
func (e *Engine) register(i int, ent *Entity) {
	w, h := ent.Size()
	if !e.grid.Insert(ent.Pos.X+w/2, ent.Pos.Y+h/2, uint32(i)) {
		e.stats.CellOverflows.Add(1)
	}
}
