package sim

import (
	"context"
	"errors"
	"math"
	"testing"
)

// Slot layout of the scenario engine: players 0-1, goombas 2-3,
// koopas 4-5, transient 6 and up.
const (
	slotPlayer  = 0
	slotGoomba  = 2
	slotKoopa   = 4
	slotKoopa2  = 5
	slotFirst   = 6
	groundRow   = 27
	groundY     = groundRow * 8
	questionSlt = 100
)

// scenario returns an engine with an empty world: no blocks, no entities.
// Steps must start at frame 1 so the level generator does not run.
func scenario(t *testing.T) *Engine {
	t.Helper()
	p := DefaultParams()
	p.Players, p.Goombas, p.Koopas, p.Transient = 2, 2, 2, 16
	e, err := NewEngine(p, WithWorkers(1))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func (e *Engine) setEntity(i int, ent Entity) {
	e.pool.cur[i] = ent
	e.pool.next[i] = ent
}

func (e *Engine) setBlock(slot, tx, ty int, kind BlockKind) {
	t := e.params.TileSize
	e.blocks[slot] = Block{Pos: Vec2{X: float64(tx) * t, Y: float64(ty) * t}, Kind: kind}
	e.tiles.Claim(tx, ty, uint32(slot))
}

// fillGround lays ground along the bottom row using the ground slots.
func (e *Engine) fillGround() {
	for col := 0; col < int(e.gridW); col++ {
		e.setBlock(col, col, groundRow, BlockGround)
	}
}

func step(t *testing.T, e *Engine, frame uint32, input InputMask) {
	t.Helper()
	tc := e.TickContext(frame, float64(frame)/60, 1.0/60, input)
	if err := e.Step(context.Background(), tc); err != nil {
		t.Fatalf("Step(%d): %v", frame, err)
	}
}

func player(x, y float64) Entity {
	return Entity{Pos: Vec2{X: x, Y: y}, Kind: KindPlayer, Flags: FlagAlive | FlagControlled}
}

func countKind(e *Engine, match func(Kind) bool) int {
	n := 0
	for _, ent := range e.Entities() {
		if ent.Occupied() && match(ent.Kind) {
			n++
		}
	}
	return n
}

func TestStepErrors(t *testing.T) {
	e := scenario(t)

	tc := NewTickContext(128, 128, 0, 0, 0, 1, 8)
	if err := e.Step(context.Background(), tc); !errors.Is(err, ErrGridMismatch) {
		t.Errorf("expected ErrGridMismatch, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := e.Step(ctx, e.TickContext(1, 0, 0, 0)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}

	p := DefaultParams()
	p.CellSize = p.TileSize
	if _, err := NewEngine(p); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("expected ErrInvalidParams, got %v", err)
	}
}

func TestBrickBreaksOnce(t *testing.T) {
	e := scenario(t)
	e.setBlock(40, 5, 10, BlockBrick)
	e.setEntity(slotPlayer, Entity{
		Pos: Vec2{X: 40, Y: 89}, Vel: Vec2{Y: -3},
		Kind: KindPlayer, Flags: FlagAlive | FlagControlled,
	})

	step(t, e, 1, 0)
	if v := e.Tiles().Lookup(5, 10); !IsPending(v) || Slot(v) != 40 {
		t.Fatalf("brick should be destroy-pending after the head hit, tile = %#x", v)
	}
	if got := e.Entities()[slotPlayer].Vel.Y; got <= 0 {
		t.Errorf("player should bounce down off the block, vy = %v", got)
	}

	step(t, e, 2, 0)
	if !e.Blocks()[40].Destroyed() {
		t.Error("brick should be destroyed")
	}
	if e.Tiles().Lookup(5, 10) != TileEmpty {
		t.Error("tile should be empty after the brick broke")
	}
	if n := countKind(e, func(k Kind) bool { return k == KindDebris }); n != 2 {
		t.Errorf("expected 2 debris, got %d", n)
	}

	step(t, e, 3, 0)
	if got := e.Stats().BricksBroken; got != 1 {
		t.Errorf("BricksBroken = %d, expected 1", got)
	}
}

func TestQuestionBlockEmptiesOnce(t *testing.T) {
	e := scenario(t)
	e.setBlock(questionSlt, 5, 10, BlockQuestion)
	hit := Entity{
		Pos: Vec2{X: 40, Y: 89}, Vel: Vec2{Y: -3},
		Kind: KindPlayer, Flags: FlagAlive | FlagControlled,
	}
	e.setEntity(slotPlayer, hit)

	step(t, e, 1, 0)
	step(t, e, 2, 0)

	b := e.Blocks()[questionSlt]
	if b.Kind != BlockEmptied || b.Destroyed() {
		t.Fatalf("block should be emptied and solid, got %v destroyed=%v", b.Kind, b.Destroyed())
	}
	if got := e.Tiles().Lookup(5, 10); got != questionSlt {
		t.Errorf("tile should hold the emptied block, got %#x", got)
	}
	items := func(k Kind) bool { return k == KindCoin || k.IsPowerUp() }
	if n := countKind(e, items); n != 1 {
		t.Errorf("expected 1 item, got %d", n)
	}

	e.setEntity(slotPlayer, hit)
	step(t, e, 3, 0)
	step(t, e, 4, 0)
	if got := e.Tiles().Lookup(5, 10); got != questionSlt {
		t.Errorf("emptied block should not be tagged again, tile = %#x", got)
	}
	if got := e.Stats().ItemsSpawned; got != 1 {
		t.Errorf("ItemsSpawned = %d, expected 1", got)
	}
}

func TestPrepBlockIdempotent(t *testing.T) {
	e := scenario(t)
	e.setBlock(40, 3, 3, BlockBrick)
	e.tiles.MarkPending(3, 3, 40)
	e.pool.begin()

	tc := e.TickContext(1, 0, 0, 0)
	if !e.prepBlock(40, tc) {
		t.Fatal("first prepBlock should break the brick")
	}
	if e.prepBlock(40, tc) {
		t.Error("second prepBlock should be a no-op")
	}
	if got := e.Stats().BricksBroken; got != 1 {
		t.Errorf("BricksBroken = %d, expected 1", got)
	}
}

func TestSpawnDropWhenFull(t *testing.T) {
	e := scenario(t)
	for i := slotFirst; i < e.pool.Len(); i++ {
		e.setEntity(i, Entity{Kind: KindCoin, Flags: FlagAlive})
	}
	e.pool.begin()
	if e.spawn(Entity{Kind: KindDebris, Flags: FlagAlive}, 3) {
		t.Fatal("spawn into a full pool should fail")
	}
	if got := e.Stats().SpawnDrops; got != 1 {
		t.Errorf("SpawnDrops = %d, expected 1", got)
	}
}

func TestStompFlattensGoomba(t *testing.T) {
	e := scenario(t)
	e.fillGround()
	e.setEntity(slotGoomba, Entity{Pos: Vec2{X: 100, Y: groundY - 8}, Kind: KindGoomba, Flags: FlagAlive})
	p := player(100, groundY-18)
	p.Vel.Y = 2
	e.setEntity(slotPlayer, p)

	step(t, e, 1, 0)

	g := e.Entities()[slotGoomba]
	if g.State != GoombaFlat || !g.Active() {
		t.Fatalf("goomba should be flat, state=%d flags=%b", g.State, g.Flags)
	}
	if g.FlatAt != 1.0/60 {
		t.Errorf("FlatAt = %v, expected the tick's elapsed time", g.FlatAt)
	}
	pl := e.Entities()[slotPlayer]
	if pl.Vel.Y != e.params.StompBounce || !pl.Active() {
		t.Errorf("player should bounce off the stomp, vy = %v", pl.Vel.Y)
	}
	if got := e.Stats().EnemiesDefeated; got != 1 {
		t.Errorf("EnemiesDefeated = %d, expected 1", got)
	}
}

func TestFlattenUsesElapsedTime(t *testing.T) {
	e := scenario(t)
	e.setEntity(slotGoomba, Entity{
		Pos: Vec2{X: 100, Y: 100}, Kind: KindGoomba, State: GoombaFlat,
		Flags: FlagAlive, FlatAt: 10,
	})

	run := func(frame uint32, elapsed float64) {
		tc := e.TickContext(frame, elapsed, 1.0/60, 0)
		if err := e.Step(context.Background(), tc); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}

	run(1, 10.5)
	if g := e.Entities()[slotGoomba]; g.State != GoombaFlat {
		t.Fatal("goomba should still be flat half a second in")
	}
	run(2, 10.99)
	if g := e.Entities()[slotGoomba]; g.State != GoombaFlat {
		t.Fatal("goomba should still be flat just before one second")
	}
	run(3, 11.0)
	g := e.Entities()[slotGoomba]
	if g.State != GoombaWalk || !g.Active() {
		t.Errorf("goomba should respawn walking after one second, state=%d", g.State)
	}
	if g.Vel.Y != 0 {
		t.Errorf("respawned goomba should have no vertical velocity, vy = %v", g.Vel.Y)
	}
}

func TestPoweredPlayerShrinksOnHit(t *testing.T) {
	e := scenario(t)
	e.fillGround()
	p := player(100, groundY-16)
	p.Flags |= FlagBig | FlagFire
	e.setEntity(slotPlayer, p)
	e.setEntity(slotGoomba, Entity{Pos: Vec2{X: 104, Y: groundY - 8}, Kind: KindGoomba, Flags: FlagAlive})

	step(t, e, 1, 0)

	pl := e.Entities()[slotPlayer]
	if pl.Has(FlagBig) || pl.Has(FlagFire) {
		t.Errorf("player should lose big and fire, flags=%b", pl.Flags)
	}
	if pl.Has(FlagDying) || !pl.Active() {
		t.Error("powered player should survive the hit")
	}
	if pl.GraceUntil != 1+e.params.GraceTicks {
		t.Errorf("GraceUntil = %d, expected %d", pl.GraceUntil, 1+e.params.GraceTicks)
	}
	if g := e.Entities()[slotGoomba]; !g.Active() || g.State != GoombaWalk {
		t.Error("goomba should be unaffected by a side touch")
	}

	// Inside the grace window a second touch does nothing.
	pl.Pos = Vec2{X: 100, Y: groundY - 8}
	pl.Vel = Vec2{}
	e.setEntity(slotPlayer, pl)
	step(t, e, 2, 0)
	if got := e.Entities()[slotPlayer]; got.Has(FlagDying) {
		t.Error("player should not die during the grace window")
	}
}

func TestSmallPlayerDies(t *testing.T) {
	e := scenario(t)
	e.fillGround()
	e.setEntity(slotPlayer, player(100, groundY-8))
	e.setEntity(slotGoomba, Entity{Pos: Vec2{X: 104, Y: groundY - 8}, Kind: KindGoomba, Flags: FlagAlive})

	step(t, e, 1, 0)

	if pl := e.Entities()[slotPlayer]; !pl.Has(FlagDying) {
		t.Error("small player should die on a side touch")
	}
	if got := e.Stats().PlayerDeaths; got != 1 {
		t.Errorf("PlayerDeaths = %d, expected 1", got)
	}
}

func TestShellKick(t *testing.T) {
	e := scenario(t)
	e.fillGround()
	e.setEntity(slotKoopa, Entity{
		Pos: Vec2{X: 100, Y: groundY - 8}, Kind: KindKoopa, State: KoopaShell, Flags: FlagAlive,
	})
	e.setEntity(slotPlayer, player(93, groundY-8))

	step(t, e, 1, 0)

	k := e.Entities()[slotKoopa]
	if k.State != KoopaShellMoving {
		t.Fatalf("shell should be kicked, state=%d", k.State)
	}
	if k.Vel.X != e.params.ShellSpeed() {
		t.Errorf("shell vx = %v, expected %v away from the player", k.Vel.X, e.params.ShellSpeed())
	}
	if pl := e.Entities()[slotPlayer]; !pl.Active() {
		t.Error("kicking a shell should not hurt the player")
	}
}

func TestMovingShellsDefeatEachOther(t *testing.T) {
	e := scenario(t)
	e.fillGround()
	e.setEntity(slotKoopa, Entity{
		Pos: Vec2{X: 100, Y: groundY - 8}, Vel: Vec2{X: 1.2},
		Kind: KindKoopa, State: KoopaShellMoving, Flags: FlagAlive, Age: 20,
	})
	e.setEntity(slotKoopa2, Entity{
		Pos: Vec2{X: 106, Y: groundY - 8}, Vel: Vec2{X: -1.2},
		Kind: KindKoopa, State: KoopaShellMoving, Flags: FlagAlive, Age: 20,
	})

	step(t, e, 1, 0)

	for _, i := range []int{slotKoopa, slotKoopa2} {
		if k := e.Entities()[i]; !k.Has(FlagDying) {
			t.Errorf("shell %d should be dying", i)
		}
	}
	if got := e.Stats().EnemiesDefeated; got != 2 {
		t.Errorf("EnemiesDefeated = %d, expected 2", got)
	}
}

func TestFireballDefeatsGoomba(t *testing.T) {
	e := scenario(t)
	e.fillGround()
	e.setEntity(slotGoomba, Entity{Pos: Vec2{X: 100, Y: groundY - 8}, Kind: KindGoomba, Flags: FlagAlive})
	e.setEntity(slotFirst, Entity{
		Pos: Vec2{X: 95, Y: groundY - 6}, Vel: Vec2{X: 3},
		Kind: KindFireball, Flags: FlagAlive | FlagFacingRight,
	})

	step(t, e, 1, 0)

	if g := e.Entities()[slotGoomba]; !g.Has(FlagDying) {
		t.Error("goomba should be dying")
	}
	if fb := e.Entities()[slotFirst]; fb.Occupied() {
		t.Error("fireball should be consumed")
	}
}

func TestMushroomPowersUp(t *testing.T) {
	e := scenario(t)
	e.fillGround()
	e.setEntity(slotPlayer, player(100, groundY-8))
	e.setEntity(slotFirst, Entity{
		Pos: Vec2{X: 104, Y: groundY - 8}, Kind: KindMushroom, State: ItemActive, Flags: FlagAlive,
	})

	step(t, e, 1, 0)

	if pl := e.Entities()[slotPlayer]; !pl.Has(FlagBig) {
		t.Error("player should be big")
	}
	if m := e.Entities()[slotFirst]; m.Occupied() {
		t.Error("mushroom should be collected")
	}
	if got := e.Stats().PowerUps; got != 1 {
		t.Errorf("PowerUps = %d, expected 1", got)
	}
}

func TestFallRespawnsOnScreen(t *testing.T) {
	e := scenario(t)
	e.setEntity(slotPlayer, player(50, 224+40))

	step(t, e, 1, 0)

	pl := e.Entities()[slotPlayer]
	if pl.Pos.Y != 0 || pl.Vel.Y != 0 {
		t.Errorf("player should respawn at the top edge at rest, pos=%v vel=%v", pl.Pos, pl.Vel)
	}
	if pl.Pos.X < 0 || pl.Pos.X > 256-8 {
		t.Errorf("respawn x = %v, expected on screen", pl.Pos.X)
	}
	if !pl.Has(FlagControlled) {
		t.Error("respawn must keep the controlled flag")
	}
}

func TestInputMovesControlledPlayer(t *testing.T) {
	e := scenario(t)
	e.fillGround()
	e.setEntity(slotPlayer, player(100, groundY-8))

	step(t, e, 1, InputRight)
	if vx := e.Entities()[slotPlayer].Vel.X; vx != e.params.MoveSpeed {
		t.Errorf("vx = %v, expected %v", vx, e.params.MoveSpeed)
	}
	step(t, e, 2, InputJump)
	if vy := e.Entities()[slotPlayer].Vel.Y; vy != e.params.JumpImpulse {
		t.Errorf("vy = %v, expected jump impulse %v", vy, e.params.JumpImpulse)
	}
}

func TestDeterministicSingleWorker(t *testing.T) {
	run := func() []uint64 {
		e, err := NewEngine(DefaultParams(), WithWorkers(1))
		if err != nil {
			t.Fatalf("NewEngine: %v", err)
		}
		var hashes []uint64
		for f := uint32(0); f < 240; f++ {
			in := InputRight
			if f%50 < 10 {
				in |= InputJump
			}
			step(t, e, f, in)
			if f%60 == 59 {
				snap := e.Snapshot()
				hashes = append(hashes, snap.Hash())
			}
		}
		return hashes
	}

	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("snapshot %d differs: %x vs %x", i, a[i], b[i])
		}
	}
}

func TestParallelSlotInvariants(t *testing.T) {
	e, err := NewEngine(DefaultParams(), WithWorkers(8))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	p := e.Params()
	core := p.Players + p.Goombas + p.Koopas

	var kinds []Kind
	for f := uint32(0); f < 300; f++ {
		step(t, e, f, InputJump)
		ents := e.Entities()
		if f == 0 {
			for _, ent := range ents[:core] {
				kinds = append(kinds, ent.Kind)
			}
		}

		controlled := 0
		for i, ent := range ents {
			if ent.Has(FlagControlled) {
				controlled++
			}
			if i < core {
				if !ent.Occupied() || ent.Kind != kinds[i] {
					t.Fatalf("frame %d: core slot %d changed to %v", f, i, ent.Kind)
				}
			} else if ent.Occupied() && ent.Kind.IsCoreActor() {
				t.Fatalf("frame %d: transient slot %d holds a %v", f, i, ent.Kind)
			}
		}
		if controlled != 1 {
			t.Fatalf("frame %d: %d controlled players", f, controlled)
		}
	}
}

func TestScore(t *testing.T) {
	s := StatsSnapshot{CoinsCollected: 1, EnemiesDefeated: 2, BricksBroken: 3, PowerUps: 4}
	if got := s.Score(); got != 650 {
		t.Errorf("Score() = %d, expected 650", got)
	}
}

func TestStarPlayerDefeatsWalkers(t *testing.T) {
	e := scenario(t)
	e.fillGround()
	p := player(100, groundY-8)
	p.Flags |= FlagStar
	p.StarUntil = 1000
	e.setEntity(slotPlayer, p)
	e.setEntity(slotGoomba, Entity{Pos: Vec2{X: 104, Y: groundY - 8}, Kind: KindGoomba, Flags: FlagAlive})
	e.setEntity(slotKoopa, Entity{Pos: Vec2{X: 94, Y: groundY - 12}, Kind: KindKoopa, Flags: FlagAlive})

	step(t, e, 1, 0)

	for _, i := range []int{slotGoomba, slotKoopa} {
		if ent := e.Entities()[i]; !ent.Has(FlagDying) {
			t.Errorf("slot %d should be defeated by the star player", i)
		}
	}
	if pl := e.Entities()[slotPlayer]; !pl.Active() || !pl.Has(FlagStar) {
		t.Errorf("star player should be unharmed, flags=%b", pl.Flags)
	}
	if got := e.Stats().EnemiesDefeated; got != 2 {
		t.Errorf("EnemiesDefeated = %d, expected 2", got)
	}
}

func TestControlledStompsDuplicate(t *testing.T) {
	for _, tt := range []struct {
		name  string
		grace uint32
		dies  bool
	}{
		{"no grace", 0, true},
		{"spawn grace", 100, false},
	} {
		t.Run(tt.name, func(t *testing.T) {
			e := scenario(t)
			e.fillGround()
			e.setEntity(1, Entity{
				Pos: Vec2{X: 100, Y: groundY - 8}, Kind: KindPlayer,
				Flags: FlagAlive | FlagOnGround, GraceUntil: tt.grace,
			})
			p := player(100, groundY-18)
			p.Vel.Y = 2
			e.setEntity(slotPlayer, p)

			step(t, e, 1, 0)

			if dup := e.Entities()[1]; dup.Has(FlagDying) != tt.dies {
				t.Errorf("duplicate dying = %v, expected %v", dup.Has(FlagDying), tt.dies)
			}
			pl := e.Entities()[slotPlayer]
			if !pl.Active() || pl.Vel.Y != e.params.StompBounce {
				t.Errorf("controlled player should bounce off, vy = %v", pl.Vel.Y)
			}
		})
	}
}

func TestStompedKoopaBecomesShell(t *testing.T) {
	e := scenario(t)
	e.fillGround()
	e.setEntity(slotKoopa, Entity{Pos: Vec2{X: 100, Y: groundY - 12}, Kind: KindKoopa, Flags: FlagAlive})
	p := player(100, groundY-22)
	p.Vel.Y = 2
	e.setEntity(slotPlayer, p)

	step(t, e, 1, 0)

	k := e.Entities()[slotKoopa]
	if k.State != KoopaShell || !k.Active() {
		t.Fatalf("koopa should be a stationary shell, state=%d flags=%b", k.State, k.Flags)
	}
	if k.Pos.Y != groundY-8 {
		t.Errorf("shell should sit on the ground, y = %v", k.Pos.Y)
	}
	if k.Vel != (Vec2{}) {
		t.Errorf("shell should be at rest, vel = %v", k.Vel)
	}
	if pl := e.Entities()[slotPlayer]; pl.Vel.Y != e.params.StompBounce {
		t.Errorf("player should bounce off the koopa, vy = %v", pl.Vel.Y)
	}
}

func TestMovingShellDefeatsWalker(t *testing.T) {
	e := scenario(t)
	e.fillGround()
	e.setEntity(slotGoomba, Entity{Pos: Vec2{X: 100, Y: groundY - 8}, Kind: KindGoomba, Flags: FlagAlive})
	e.setEntity(slotKoopa, Entity{
		Pos: Vec2{X: 106, Y: groundY - 8}, Vel: Vec2{X: -1.2},
		Kind: KindKoopa, State: KoopaShellMoving, Flags: FlagAlive, Age: 20,
	})

	step(t, e, 1, 0)

	g := e.Entities()[slotGoomba]
	if !g.Has(FlagDying) {
		t.Fatal("goomba should be defeated by the shell")
	}
	if g.Pos.X != 96 {
		t.Errorf("goomba should be knocked along the shell's path, x = %v", g.Pos.X)
	}
	if k := e.Entities()[slotKoopa]; k.State != KoopaShellMoving || !k.Active() {
		t.Errorf("shell should keep moving, state=%d", k.State)
	}
}

func TestMovingShellBouncesOffStationary(t *testing.T) {
	e := scenario(t)
	e.fillGround()
	e.setEntity(slotKoopa, Entity{
		Pos: Vec2{X: 100, Y: groundY - 8}, Vel: Vec2{X: 1.2},
		Kind: KindKoopa, State: KoopaShellMoving, Flags: FlagAlive, Age: 20,
	})
	e.setEntity(slotKoopa2, Entity{
		Pos: Vec2{X: 108, Y: groundY - 8}, Kind: KindKoopa, State: KoopaShell, Flags: FlagAlive,
	})

	step(t, e, 1, 0)

	if k := e.Entities()[slotKoopa]; k.State != KoopaShellMoving || k.Vel.X != -1.2 {
		t.Errorf("moving shell should bounce back, state=%d vx=%v", k.State, k.Vel.X)
	}
	if k := e.Entities()[slotKoopa2]; k.State != KoopaShell || !k.Active() {
		t.Errorf("stationary shell should be unaffected, state=%d", k.State)
	}
}

func TestRisingItemActivates(t *testing.T) {
	e := scenario(t)
	e.setEntity(slotFirst, Entity{
		Pos: Vec2{X: 100, Y: 100}, Kind: KindMushroom, State: ItemRising,
		Flags: FlagAlive | FlagFacingRight,
	})
	rise := e.params.ItemRiseTicks

	for f := uint32(1); f < rise; f++ {
		step(t, e, f, 0)
	}
	if m := e.Entities()[slotFirst]; m.State != ItemRising || m.Vel.X != 0 {
		t.Fatalf("item should still be rising after %d ticks, state=%d", rise-1, m.State)
	}

	step(t, e, rise, 0)
	m := e.Entities()[slotFirst]
	if m.State != ItemActive {
		t.Fatalf("item should be active after %d ticks, state=%d", rise, m.State)
	}
	if m.Vel.X != e.params.MushroomSpeed {
		t.Errorf("vx = %v, expected %v", m.Vel.X, e.params.MushroomSpeed)
	}
	if want := 100 - float64(rise)*e.params.ItemRiseSpeed; math.Abs(m.Pos.Y-want) > 1e-9 {
		t.Errorf("y = %v, expected %v", m.Pos.Y, want)
	}
}

func TestFirePlayerShootsOnCadence(t *testing.T) {
	e := scenario(t)
	e.fillGround()
	p := player(100, groundY-16)
	p.Flags |= FlagBig | FlagFire
	e.setEntity(slotPlayer, p)
	cadence := e.params.FireCadence

	fresh := func() int {
		n := 0
		for _, ent := range e.Entities() {
			if ent.Occupied() && ent.Kind == KindFireball && ent.Age == 0 {
				n++
			}
		}
		return n
	}

	for f := uint32(1); f <= 2*cadence; f++ {
		step(t, e, f, 0)
		want := 0
		if f%cadence == 0 {
			want = 1
		}
		if got := fresh(); got != want {
			t.Fatalf("frame %d: %d new fireballs, expected %d", f, got, want)
		}
	}
}

func TestDyingFallsFadesRespawns(t *testing.T) {
	e := scenario(t)
	e.setEntity(slotGoomba, Entity{Pos: Vec2{X: 100, Y: 50}, Kind: KindGoomba, Flags: FlagDying})
	p := e.params
	fall := uint32(p.DyingFallFrac * p.ScreenH / p.DyingFallSpeed)

	f := uint32(1)
	for ; f <= fall; f++ {
		step(t, e, f, 0)
	}
	g := e.Entities()[slotGoomba]
	if want := 50 + float64(fall)*p.DyingFallSpeed; g.Pos.Y != want || !g.Has(FlagDying) {
		t.Fatalf("after the fall: y = %v dying = %v, expected y %v", g.Pos.Y, g.Has(FlagDying), want)
	}

	for ; f <= fall+p.DyingFadeTicks; f++ {
		step(t, e, f, 0)
	}
	if g2 := e.Entities()[slotGoomba]; g2.Pos != g.Pos || !g2.Has(FlagDying) {
		t.Fatalf("a fading actor should hold still, pos = %v", g2.Pos)
	}

	step(t, e, f, 0)
	g = e.Entities()[slotGoomba]
	if !g.Active() || g.Has(FlagDying) {
		t.Fatalf("goomba should respawn after the fade, flags=%b", g.Flags)
	}
	onEdge := g.Pos.Y == 0 || g.Pos.X == 0 || g.Pos.X == p.ScreenW-8
	if !onEdge || g.Vel.Y != 0 {
		t.Errorf("respawn should be on a screen edge at rest, pos=%v vel=%v", g.Pos, g.Vel)
	}
}

func TestDebrisCulled(t *testing.T) {
	e := scenario(t)
	p := e.params
	e.setEntity(slotFirst, Entity{Pos: Vec2{X: 100, Y: 50}, Kind: KindDebris, Flags: FlagAlive, Age: p.DebrisLife})
	e.setEntity(slotFirst+1, Entity{Pos: Vec2{X: 100, Y: p.ScreenH - 1}, Vel: Vec2{Y: 1}, Kind: KindDebris, Flags: FlagAlive})
	e.setEntity(slotFirst+2, Entity{Pos: Vec2{X: 100, Y: 50}, Kind: KindDebris, Flags: FlagAlive})

	step(t, e, 1, 0)

	ents := e.Entities()
	if ents[slotFirst].Occupied() {
		t.Error("debris past its lifetime should be culled")
	}
	if ents[slotFirst+1].Occupied() {
		t.Error("debris below the screen should be culled")
	}
	if d := ents[slotFirst+2]; !d.Occupied() || d.Age != 1 {
		t.Errorf("fresh debris should survive, age=%d", d.Age)
	}
}

func TestPossess(t *testing.T) {
	e := scenario(t)
	e.fillGround()
	e.setEntity(slotPlayer, player(40, groundY-8))
	e.setEntity(1, Entity{Pos: Vec2{X: 200, Y: groundY - 8}, Kind: KindPlayer, Flags: FlagAlive})
	e.setEntity(slotGoomba, Entity{Pos: Vec2{X: 120, Y: groundY - 8}, Kind: KindGoomba, Flags: FlagAlive})
	step(t, e, 1, 0)

	controlled := func() []int {
		var slots []int
		for i, ent := range e.Entities() {
			if ent.Has(FlagControlled) {
				slots = append(slots, i)
			}
		}
		return slots
	}

	if err := e.Possess(1); err != nil {
		t.Fatalf("Possess(1): %v", err)
	}
	if got := controlled(); len(got) != 1 || got[0] != 1 {
		t.Fatalf("controlled slots = %v, expected [1]", got)
	}
	step(t, e, 2, InputRight)
	if vx := e.Entities()[1].Vel.X; vx != e.params.MoveSpeed {
		t.Errorf("possessed player should follow input, vx = %v", vx)
	}

	for _, slot := range []int{-1, slotGoomba, 99} {
		if err := e.Possess(slot); !errors.Is(err, ErrNotPossessable) {
			t.Errorf("Possess(%d) = %v, expected ErrNotPossessable", slot, err)
		}
	}

	if slot, err := e.PossessNext(); err != nil || slot != 0 {
		t.Fatalf("PossessNext() = %d, %v; expected slot 0", slot, err)
	}

	// With the other player dying there is nobody to switch to.
	dying := e.Entities()[1]
	e.kill(&dying)
	e.setEntity(1, dying)
	if err := e.Possess(1); !errors.Is(err, ErrNotPossessable) {
		t.Errorf("dying player should not be possessable, got %v", err)
	}
	if _, err := e.PossessNext(); !errors.Is(err, ErrNotPossessable) {
		t.Errorf("PossessNext with no other player: %v", err)
	}
	if got := controlled(); len(got) != 1 || got[0] != 0 {
		t.Errorf("controlled slots = %v, expected [0]", got)
	}
}
