package sim

import "math"

// interact resolves entity-entity contacts and runs AI and input. Each
// worker writes only its own slot; contact rules are evaluated from the
// committed state of both parties, so each side of a pair reaches the same
// verdict independently.
func (e *Engine) interact(tc TickContext) {
	ne := e.pool.Len()

	e.beginPass()
	e.disp.run(ne, func(i0, i1 int, scratch *workerScratch) {
		for i := i0; i < i1; i++ {
			ent := e.pool.cur[i]
			if ent.Occupied() {
				e.interactStep(i, &ent, tc, scratch)
			}
			e.pool.put(i, ent)
		}
	})
	e.pool.swap()
}

func (e *Engine) interactStep(i int, ent *Entity, tc TickContext, scratch *workerScratch) {
	p := &e.params
	if ent.Has(FlagDying) {
		return
	}

	switch ent.Kind {
	case KindDebris, KindCoin:
		return
	case KindGoomba:
		if ent.flat() {
			if tc.Elapsed-ent.FlatAt >= p.FlattenSeconds {
				e.respawn(i, ent, tc, true)
			}
			return
		}
	case KindMushroom, KindFireFlower, KindStar:
		if ent.State == ItemRising {
			return
		}
		if e.touchedByPlayer(i, scratch) {
			*ent = Entity{}
			return
		}
		ent.setFacingFromVel()
		ent.Timer++
		return
	case KindFireball:
		if e.fireballHit(i, scratch) {
			*ent = Entity{}
			return
		}
		ent.Timer++
		return
	}

	e.resolveContacts(i, ent, tc, scratch)
	if !ent.Active() || ent.flat() {
		return
	}

	e.wrapOrRespawn(i, ent, tc)
	w, _ := ent.Size()
	sw := tc.Resolution.X

	if ent.Kind == KindPlayer {
		if ent.Has(FlagControlled) {
			e.applyInput(ent, tc.Input)
		} else {
			e.wander(i, ent, tc, scratch)
		}
		if ent.Has(FlagFire) && (tc.Frame+uint32(i))%p.FireCadence == 0 {
			e.shoot(i, ent, tc)
		}
		if ent.Has(FlagStar) && tc.Frame >= ent.StarUntil {
			ent.Flags &^= FlagStar
		}
	}

	if ent.movingShell() {
		ent.Age++
		if ent.Pos.X < 0 {
			ent.Vel.X = math.Abs(ent.Vel.X)
		} else if ent.Pos.X+w > sw {
			ent.Vel.X = -math.Abs(ent.Vel.X)
		}
	}

	ent.setFacingFromVel()
	ent.Timer++
}

// neighbors returns the committed entities near slot i. The slice is only
// valid until the next call with the same scratch.
func (e *Engine) neighbors(i int, scratch *workerScratch) []uint32 {
	self := &e.pool.cur[i]
	w, h := self.Size()
	scratch.neighbors = e.grid.Neighbors(self.Pos.X+w/2, self.Pos.Y+h/2, scratch.neighbors[:0])
	return scratch.neighbors
}

// touching tests hitbox overlap, widening stationary shells by the shell
// tolerance so a touch registers before the boxes interpenetrate.
func (e *Engine) touching(a, b *Entity) bool {
	ra, rb := a.Bounds(), b.Bounds()
	if a.stationaryShell() {
		ra = ra.Inflate(e.params.ShellTolerance)
	}
	if b.stationaryShell() {
		rb = rb.Inflate(e.params.ShellTolerance)
	}
	return ra.Intersects(rb)
}

// stomps reports whether a lands on b from above this tick: a falls faster
// than b and a's feet were within the stomp window of b's top before the
// physics step moved it.
func (e *Engine) stomps(a, b *Entity) bool {
	_, ah := a.Size()
	if a.Vel.Y <= 0 || a.Vel.Y <= b.Vel.Y {
		return false
	}
	return a.Pos.Y+ah-a.Vel.Y <= b.Pos.Y+e.params.StompWindow
}

// away returns the direction pointing from other to self, breaking ties by
// slot index so the two sides of a pair disagree.
func away(self, other *Entity, i, j int) float64 {
	d := self.CenterX() - other.CenterX()
	switch {
	case d < 0:
		return -1
	case d > 0:
		return 1
	case i < j:
		return -1
	default:
		return 1
	}
}

func (e *Engine) touchedByPlayer(i int, scratch *workerScratch) bool {
	self := &e.pool.cur[i]
	for _, j := range e.neighbors(i, scratch) {
		other := &e.pool.cur[j]
		if int(j) == i || other.Kind != KindPlayer || !other.Active() {
			continue
		}
		if e.touching(self, other) {
			return true
		}
	}
	return false
}

func (e *Engine) fireballHit(i int, scratch *workerScratch) bool {
	self := &e.pool.cur[i]
	for _, j := range e.neighbors(i, scratch) {
		other := &e.pool.cur[j]
		if int(j) == i || !other.Kind.IsEnemy() || !other.Active() || other.flat() {
			continue
		}
		if e.touching(self, other) {
			return true
		}
	}
	return false
}

// resolveContacts applies the contact rules for a core actor against every
// overlapping neighbor, stopping once the actor changes state.
func (e *Engine) resolveContacts(i int, ent *Entity, tc TickContext, scratch *workerScratch) {
	self := &e.pool.cur[i]
	for _, j := range e.neighbors(i, scratch) {
		if int(j) == i {
			continue
		}
		other := &e.pool.cur[j]
		if !other.Active() || other.flat() || !e.touching(self, other) {
			continue
		}

		switch self.Kind {
		case KindPlayer:
			e.playerMeets(ent, self, other, i, int(j), tc)
		case KindGoomba:
			e.goombaMeets(ent, self, other, i, int(j), tc)
		case KindKoopa:
			e.koopaMeets(ent, self, other, i, int(j))
		}

		if !ent.Active() || ent.State != self.State {
			return
		}
	}
}

func (e *Engine) playerMeets(ent, self, other *Entity, i, j int, tc TickContext) {
	p := &e.params
	switch {
	case other.walking():
		if self.Has(FlagStar) {
			return
		}
		if e.stomps(self, other) {
			ent.Vel.Y = p.StompBounce
			return
		}
		e.playerHit(ent, tc)
	case other.stationaryShell():
		if e.stomps(self, other) {
			ent.Vel.Y = p.StompBounce
			return
		}
		e.pushOut(ent, self, other, i, j, 1)
	case other.movingShell():
		if e.stomps(self, other) {
			ent.Vel.Y = p.StompBounce
			return
		}
		if self.Has(FlagStar) || other.Age < p.ShellKickGrace {
			return
		}
		e.playerHit(ent, tc)
	case other.Kind.IsPowerUp():
		e.powerUp(ent, other.Kind, tc)
	case other.Kind == KindPlayer:
		if e.stomps(self, other) {
			ent.Vel.Y = p.StompBounce
			return
		}
		if e.stomps(other, self) {
			if !self.Has(FlagControlled) && tc.Frame >= ent.GraceUntil {
				e.kill(ent)
			}
			return
		}
		e.pushOut(ent, self, other, i, j, 0.5)
	}
}

// playerHit applies an enemy touch: powered players shrink and get a grace
// window, small ones die.
func (e *Engine) playerHit(ent *Entity, tc TickContext) {
	p := &e.params
	if tc.Frame < ent.GraceUntil {
		return
	}
	if ent.Has(FlagBig) || ent.Has(FlagFire) {
		if ent.Has(FlagBig) {
			ent.Pos.Y += 8
		}
		ent.Flags &^= FlagBig | FlagFire | FlagStar
		ent.GraceUntil = tc.Frame + p.GraceTicks
		ent.Vel.Y = p.HitBounce
		return
	}
	e.kill(ent)
}

func (e *Engine) powerUp(ent *Entity, kind Kind, tc TickContext) {
	grow := func() {
		if !ent.Has(FlagBig) {
			ent.Flags |= FlagBig
			ent.Pos.Y -= 8
		}
	}
	switch kind {
	case KindMushroom:
		grow()
	case KindFireFlower:
		grow()
		ent.Flags |= FlagFire
	case KindStar:
		ent.Flags |= FlagStar
		ent.StarUntil = tc.Frame + e.params.StarTicks
	}
	e.stats.PowerUps.Add(1)
}

func (e *Engine) goombaMeets(ent, self, other *Entity, i, j int, tc TickContext) {
	switch {
	case other.Kind == KindPlayer:
		if other.Has(FlagStar) {
			e.defeat(ent, 0)
			return
		}
		if e.stomps(other, self) {
			ent.State = GoombaFlat
			ent.FlatAt = tc.Elapsed
			ent.Vel = Vec2{}
			e.stats.EnemiesDefeated.Add(1)
		}
	case other.movingShell():
		e.defeat(ent, other.Vel.X)
	case other.Kind == KindFireball:
		e.defeat(ent, other.Vel.X)
	case other.walking() || other.stationaryShell():
		e.turnAway(ent, self, other, i, j)
	}
}

func (e *Engine) koopaMeets(ent, self, other *Entity, i, j int) {
	p := &e.params
	switch self.State {
	case KoopaWalk:
		switch {
		case other.Kind == KindPlayer:
			if other.Has(FlagStar) {
				e.defeat(ent, 0)
				return
			}
			if e.stomps(other, self) {
				ent.State = KoopaShell
				ent.Pos.Y += 4
				ent.Vel = Vec2{}
				ent.Age = 0
				e.stats.EnemiesDefeated.Add(1)
			}
		case other.movingShell(), other.Kind == KindFireball:
			e.defeat(ent, other.Vel.X)
		case other.walking() || other.stationaryShell():
			e.turnAway(ent, self, other, i, j)
		}
	case KoopaShell:
		switch {
		case other.Kind == KindPlayer:
			ent.State = KoopaShellMoving
			ent.Vel.X = p.ShellSpeed() * away(self, other, i, j)
			ent.Age = 0
		case other.Kind == KindFireball:
			e.defeat(ent, other.Vel.X)
		}
	case KoopaShellMoving:
		switch {
		case other.Kind == KindPlayer:
			if !other.Has(FlagStar) && e.stomps(other, self) {
				ent.State = KoopaShell
				ent.Vel.X = 0
				ent.Age = 0
			}
		case other.movingShell(), other.Kind == KindFireball:
			e.defeat(ent, other.Vel.X)
		case other.stationaryShell():
			ent.Vel.X = math.Abs(ent.Vel.X) * away(self, other, i, j)
		}
	}
}

// kill puts an actor into the dying state.
func (e *Engine) kill(ent *Entity) {
	ent.Flags = (ent.Flags &^ (FlagAlive | FlagOnGround)) | FlagDying
	ent.Vel = Vec2{}
	ent.Age = 0
	if ent.Kind == KindPlayer {
		e.stats.PlayerDeaths.Add(1)
	}
}

// defeat kills an enemy, knocking it a few pixels along knock's direction.
func (e *Engine) defeat(ent *Entity, knock float64) {
	if knock != 0 {
		ent.Pos.X += 4 * sign(knock)
	}
	e.kill(ent)
	e.stats.EnemiesDefeated.Add(1)
}

// turnAway sends a walker back the way it came when it meets another.
func (e *Engine) turnAway(ent, self, other *Entity, i, j int) {
	speed := math.Abs(ent.Vel.X)
	if speed == 0 {
		speed = e.params.EnemySpeed
	}
	ent.Vel.X = speed * away(self, other, i, j)
}

// pushOut separates ent from other by share of the horizontal overlap.
func (e *Engine) pushOut(ent, self, other *Entity, i, j int, share float64) {
	ra, rb := self.Bounds(), other.Bounds()
	overlap := math.Min(ra.Right(), rb.Right()) - math.Max(ra.X, rb.X)
	if overlap <= 0 {
		return
	}
	ent.Pos.X += away(self, other, i, j) * overlap * share
}

func (e *Engine) applyInput(ent *Entity, in InputMask) {
	p := &e.params
	left, right := in.Has(InputLeft), in.Has(InputRight)
	switch {
	case left && !right:
		ent.Vel.X = -p.MoveSpeed
	case right && !left:
		ent.Vel.X = p.MoveSpeed
	case ent.Has(FlagOnGround):
		ent.Vel.X *= p.Friction
		if math.Abs(ent.Vel.X) < 0.05 {
			ent.Vel.X = 0
		}
	}
	if in.Has(InputJump) && ent.Has(FlagOnGround) {
		e.jump(ent)
	}
}

// chaseSpeedFrac is the share of MoveSpeed an AI duplicate runs at while
// chasing.
const chaseSpeedFrac = 0.9

// wander drives an AI duplicate. It runs at the nearest walking goomba in
// reach, or turns and jumps at random when there is none. On the ground it
// then looks for a drop ahead. Screen edges bounce it back.
func (e *Engine) wander(i int, ent *Entity, tc TickContext, scratch *workerScratch) {
	p := &e.params
	u := uint32(i)
	pressure := e.pressure

	if target, ok := e.chaseTarget(i, scratch); ok {
		e.chase(u, ent, &target, tc)
	} else {
		if unit(hash3(u, tc.Frame, saltTurn^p.Seed)) < p.AITurnChance*pressure {
			ent.Vel.X = -ent.Vel.X
		}
		if ent.Has(FlagOnGround) && unit(hash3(u, tc.Frame, saltJump^p.Seed)) < p.AIJumpChance*pressure {
			e.jump(ent)
		}
	}
	if ent.Vel.X == 0 {
		ent.Vel.X = p.MoveSpeed
		if !ent.Has(FlagFacingRight) {
			ent.Vel.X = -p.MoveSpeed
		}
	}
	if ent.Has(FlagOnGround) {
		e.avoidEdge(u, ent, tc)
	}

	w, _ := ent.Size()
	if ent.Pos.X < 0 {
		ent.Vel.X = math.Abs(ent.Vel.X)
	} else if ent.Pos.X+w > tc.Resolution.X {
		ent.Vel.X = -math.Abs(ent.Vel.X)
	}
}

// chaseTarget returns the nearest walking goomba within ChaseRange of slot
// i among its broad-phase neighbors. Ties go to the lower slot so the
// result does not depend on grid insertion order.
func (e *Engine) chaseTarget(i int, scratch *workerScratch) (Entity, bool) {
	self := &e.pool.cur[i]
	best, bestD := -1, math.Inf(1)
	for _, j := range e.neighbors(i, scratch) {
		other := &e.pool.cur[j]
		if other.Kind != KindGoomba || !other.Active() || other.flat() {
			continue
		}
		d := math.Hypot(other.CenterX()-self.CenterX(), other.Pos.Y-self.Pos.Y)
		if d > e.params.ChaseRange {
			continue
		}
		if d < bestD || (d == bestD && int(j) < best) {
			best, bestD = int(j), d
		}
	}
	if best < 0 {
		return Entity{}, false
	}
	return e.pool.cur[best], true
}

// chase heads for the target and sometimes jumps to come down on it: when
// it is close or standing on a higher platform.
func (e *Engine) chase(u uint32, ent, target *Entity, tc TickContext) {
	p := &e.params
	dx := target.CenterX() - ent.CenterX()
	dy := target.Pos.Y - ent.Pos.Y
	if math.Abs(dx) > 4 {
		ent.Vel.X = chaseSpeedFrac * p.MoveSpeed * sign(dx)
	}
	if !ent.Has(FlagOnGround) {
		return
	}
	near := math.Abs(dx) < 3*p.TileSize
	above := dy < -2*p.TileSize
	if (near || above) && unit(hash3(u, tc.Frame, saltChaseJump^p.Seed)) < p.ChaseJumpChance {
		e.jump(ent)
	}
}

// avoidEdge keeps a grounded duplicate from walking off a platform. With
// no ground one tile ahead it jumps if a block above ahead could catch it,
// otherwise it turns around.
func (e *Engine) avoidEdge(u uint32, ent *Entity, tc TickContext) {
	p := &e.params
	if ent.Vel.X == 0 {
		return
	}
	t := p.TileSize
	_, h := ent.Size()
	tx := e.wrapColumn(int(math.Floor((ent.CenterX() + sign(ent.Vel.X)*p.EdgeLookAhead) / t)))
	floor := int(math.Round((ent.Pos.Y + h) / t))
	if e.solid(tx, floor) || e.solid(tx, floor+1) {
		return
	}
	if e.ledgeAbove(tx, floor) && unit(hash3(u, tc.Frame, saltEdgeJump^p.Seed)) < p.EdgeJumpChance {
		e.jump(ent)
		return
	}
	ent.Vel.X = -ent.Vel.X
}

// ledgeAbove reports whether a block sits within jumping height above the
// feet row, in column tx or next to it.
func (e *Engine) ledgeAbove(tx, floor int) bool {
	for dy := 1; dy <= e.params.PlatformSpacing+1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if e.solid(e.wrapColumn(tx+dx), floor-dy) {
				return true
			}
		}
	}
	return false
}

// solid reports whether tile (tx, ty) holds a block that is not destroyed.
// Blocks are read-only outside Frame-Prep.
func (e *Engine) solid(tx, ty int) bool {
	v := e.tiles.Lookup(tx, ty)
	return v != TileEmpty && !e.blocks[Slot(v)].Destroyed()
}

// wrapColumn maps a column onto the grid the way core actors wrap.
func (e *Engine) wrapColumn(tx int) int {
	n := int(e.gridW)
	return ((tx % n) + n) % n
}

func (e *Engine) jump(ent *Entity) {
	ent.Vel.Y = e.jumpImpulse(ent)
	ent.Flags &^= FlagOnGround
}

func (e *Engine) jumpImpulse(ent *Entity) float64 {
	if ent.Has(FlagBig) {
		return e.params.BigJumpImpulse
	}
	return e.params.JumpImpulse
}

// shoot spawns a fireball in front of a fire-powered player.
func (e *Engine) shoot(i int, ent *Entity, tc TickContext) {
	p := &e.params
	w, _ := ent.Size()
	fb := Entity{
		Pos:   Vec2{X: ent.Pos.X - 4, Y: ent.Pos.Y + 4},
		Vel:   Vec2{X: -p.FireballSpeed},
		Kind:  KindFireball,
		Flags: FlagAlive,
	}
	if ent.Has(FlagFacingRight) {
		fb.Pos.X = ent.Pos.X + w
		fb.Vel.X = p.FireballSpeed
		fb.Flags |= FlagFacingRight
	}
	e.spawn(fb, hash3(uint32(i), tc.Frame, saltSpawnRing))
}
