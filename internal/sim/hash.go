package sim

// Salts separate independent decisions drawn from the same index.
const (
	saltPlaceX uint32 = 0x9e3779b9 + iota
	saltPlaceY
	saltFacing
	saltVariant
	saltRowType
	saltColumn
	saltBlockKind
	saltPit
	saltItemRoll
	saltSpawnRing
	saltEdge
	saltEdgePos
	saltTurn
	saltJump
	saltBigStart
	saltEnemyRow
	saltChaseJump
	saltEdgeJump
)

// mix is a 32-bit integer finalizer (lowbias32). It is a fast avalanche
// function for placement decisions, not a statistical RNG.
func mix(x uint32) uint32 {
	x ^= x >> 16
	x *= 0x7feb352d
	x ^= x >> 15
	x *= 0x846ca68b
	x ^= x >> 16
	return x
}

// hash3 combines three words into one well-mixed value.
func hash3(a, b, c uint32) uint32 {
	return mix(a ^ mix(b^mix(c)))
}

// unit maps a hash to [0, 1).
func unit(h uint32) float64 {
	return float64(h) / 4294967296.0
}
