package sim

import "sync/atomic"

const (
	// TileEmpty marks a tile with no block.
	TileEmpty uint32 = 0xFFFFFFFF
	// PendingBit tags a block slot as hit from below, awaiting Frame-Prep.
	PendingBit uint32 = 1 << 31
)

// TileIndex maps tile coordinates to block slots. Entries are mutated only
// through atomic operations so workers of one pass can share it.
type TileIndex struct {
	w, h  uint32
	tiles []atomic.Uint32
}

// NewTileIndex creates an index of w*h empty tiles.
func NewTileIndex(w, h uint32) *TileIndex {
	t := &TileIndex{w: w, h: h, tiles: make([]atomic.Uint32, int(w)*int(h))}
	t.Reset()
	return t
}

// Reset empties every tile. Not safe for concurrent use with other calls.
func (t *TileIndex) Reset() {
	for i := range t.tiles {
		t.tiles[i].Store(TileEmpty)
	}
}

// Width returns the number of tile columns.
func (t *TileIndex) Width() uint32 { return t.w }

// Height returns the number of tile rows.
func (t *TileIndex) Height() uint32 { return t.h }

// index returns the row-major offset of a tile, or -1 when out of range.
func (t *TileIndex) index(tx, ty int) int {
	if tx < 0 || ty < 0 || tx >= int(t.w) || ty >= int(t.h) {
		return -1
	}
	return ty*int(t.w) + tx
}

// Lookup returns the raw entry at a tile, TileEmpty when out of range.
func (t *TileIndex) Lookup(tx, ty int) uint32 {
	i := t.index(tx, ty)
	if i < 0 {
		return TileEmpty
	}
	return t.tiles[i].Load()
}

// Claim stores slot at an empty tile. It reports false when the tile is
// taken or out of range.
func (t *TileIndex) Claim(tx, ty int, slot uint32) bool {
	i := t.index(tx, ty)
	if i < 0 {
		return false
	}
	return t.tiles[i].CompareAndSwap(TileEmpty, slot)
}

// ClaimMin stores slot unless a lower slot already holds the tile. After
// all claimers finish, the tile holds the lowest competing slot no matter
// how the claims interleaved. It reports whether slot held the tile when
// the call returned.
func (t *TileIndex) ClaimMin(tx, ty int, slot uint32) bool {
	i := t.index(tx, ty)
	if i < 0 {
		return false
	}
	for {
		cur := t.tiles[i].Load()
		if cur != TileEmpty && cur <= slot {
			return cur == slot
		}
		if t.tiles[i].CompareAndSwap(cur, slot) {
			return true
		}
	}
}

// MarkPending tags the tile destroy-pending if it still holds slot untagged.
func (t *TileIndex) MarkPending(tx, ty int, slot uint32) bool {
	i := t.index(tx, ty)
	if i < 0 {
		return false
	}
	return t.tiles[i].CompareAndSwap(slot, slot|PendingBit)
}

// Consume swaps a destroy-pending tag for next. It reports false when the
// tile is not tagged for slot, which makes repeated calls no-ops.
func (t *TileIndex) Consume(tx, ty int, slot, next uint32) bool {
	i := t.index(tx, ty)
	if i < 0 {
		return false
	}
	return t.tiles[i].CompareAndSwap(slot|PendingBit, next)
}

// Slot strips the pending tag from an entry.
func Slot(v uint32) uint32 {
	return v &^ PendingBit
}

// IsPending reports whether an entry carries the destroy-pending tag.
func IsPending(v uint32) bool {
	return v != TileEmpty && v&PendingBit != 0
}
