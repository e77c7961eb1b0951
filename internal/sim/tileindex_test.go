package sim

import "testing"

func TestTileIndexClaim(t *testing.T) {
	ti := NewTileIndex(4, 3)

	if ti.Lookup(1, 1) != TileEmpty {
		t.Fatalf("new index should be empty, got %#x", ti.Lookup(1, 1))
	}
	if !ti.Claim(1, 1, 7) {
		t.Fatal("Claim on empty tile should succeed")
	}
	if ti.Claim(1, 1, 8) {
		t.Error("Claim on taken tile should fail")
	}
	if got := ti.Lookup(1, 1); got != 7 {
		t.Errorf("Lookup = %d, expected 7", got)
	}
	if ti.Claim(4, 0, 1) || ti.Claim(-1, 0, 1) || ti.Claim(0, 3, 1) {
		t.Error("Claim out of range should fail")
	}
	if ti.Lookup(-1, 5) != TileEmpty {
		t.Error("Lookup out of range should be empty")
	}

	ti.Reset()
	if ti.Lookup(1, 1) != TileEmpty {
		t.Error("Reset should empty every tile")
	}
}

func TestTileIndexClaimMin(t *testing.T) {
	ti := NewTileIndex(2, 2)

	if !ti.ClaimMin(0, 0, 5) {
		t.Error("first ClaimMin should hold the tile")
	}
	if !ti.ClaimMin(0, 0, 3) {
		t.Error("lower slot should take the tile")
	}
	if ti.ClaimMin(0, 0, 7) {
		t.Error("higher slot should not take the tile")
	}
	if ti.ClaimMin(0, 0, 5) {
		t.Error("displaced slot should not get the tile back")
	}
	if got := ti.Lookup(0, 0); got != 3 {
		t.Errorf("tile holds %d, expected lowest slot 3", got)
	}
}

func TestTileIndexPendingLifecycle(t *testing.T) {
	ti := NewTileIndex(2, 2)
	ti.Claim(1, 0, 4)

	if ti.MarkPending(1, 0, 5) {
		t.Error("MarkPending for another slot should fail")
	}
	if !ti.MarkPending(1, 0, 4) {
		t.Fatal("MarkPending should tag the owner")
	}
	if ti.MarkPending(1, 0, 4) {
		t.Error("second MarkPending should fail")
	}

	v := ti.Lookup(1, 0)
	if !IsPending(v) || Slot(v) != 4 {
		t.Errorf("entry %#x should be pending for slot 4", v)
	}
	if IsPending(TileEmpty) {
		t.Error("empty tile is never pending")
	}

	if ti.Consume(1, 0, 5, TileEmpty) {
		t.Error("Consume with the wrong slot should fail")
	}
	if !ti.Consume(1, 0, 4, TileEmpty) {
		t.Fatal("Consume should succeed once")
	}
	if ti.Consume(1, 0, 4, TileEmpty) {
		t.Error("Consume should be a no-op the second time")
	}
	if ti.Lookup(1, 0) != TileEmpty {
		t.Errorf("tile should be empty after consume, got %#x", ti.Lookup(1, 0))
	}
}
