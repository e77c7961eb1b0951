package sim

import "testing"

func TestPoolSpawnAndCarry(t *testing.T) {
	p := NewPool(4, 2)
	p.cur[0] = Entity{Kind: KindGoomba, Flags: FlagAlive}

	p.begin()
	coin := Entity{Kind: KindCoin, Flags: FlagAlive}
	if !p.spawn(coin, 0) {
		t.Fatal("spawn into a free transient slot should succeed")
	}
	for i := 0; i < p.Len(); i++ {
		p.put(i, p.cur[i])
	}
	p.swap()

	got := p.Committed()
	if got[0].Kind != KindGoomba {
		t.Errorf("slot 0 kind = %v, expected goomba", got[0].Kind)
	}
	if got[2].Kind != KindCoin || !got[2].Occupied() {
		t.Errorf("slot 2 should hold the spawned coin, got %+v", got[2])
	}
	if got[3].Occupied() {
		t.Error("slot 3 should stay free")
	}
}

func TestPoolSpawnFull(t *testing.T) {
	p := NewPool(4, 2)
	p.cur[2] = Entity{Kind: KindCoin, Flags: FlagAlive}

	p.begin()
	if !p.spawn(Entity{Kind: KindDebris, Flags: FlagAlive}, 0) {
		t.Fatal("one slot is free, spawn should succeed")
	}
	if p.spawn(Entity{Kind: KindDebris, Flags: FlagAlive}, 1) {
		t.Error("spawn with no free slot should fail")
	}
	if p.next[3].Kind != KindDebris {
		t.Errorf("debris should land in slot 3, got %v", p.next[3].Kind)
	}

	p.begin()
	if !p.claim(3) {
		t.Error("claims from an earlier pass should be stale")
	}
}

func TestPoolNoTransientRange(t *testing.T) {
	p := NewPool(2, 2)
	p.begin()
	if p.spawn(Entity{Kind: KindCoin, Flags: FlagAlive}, 0) {
		t.Error("spawn without a transient range should fail")
	}
}
