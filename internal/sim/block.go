package sim

// BlockKind identifies a block's behaviour when hit.
type BlockKind uint8

const (
	BlockBrick BlockKind = iota
	BlockQuestion
	BlockEmptied
	BlockGround
)

func (k BlockKind) String() string {
	switch k {
	case BlockBrick:
		return "brick"
	case BlockQuestion:
		return "question"
	case BlockEmptied:
		return "emptied"
	case BlockGround:
		return "ground"
	default:
		return "unknown"
	}
}

// Breakable reports whether a hit from below tags the block destroy-pending.
func (k BlockKind) Breakable() bool {
	return k == BlockBrick || k == BlockQuestion
}

// BlockFlags is the block flag bitset.
type BlockFlags uint8

const (
	BlockDestroyed BlockFlags = 1 << iota
)

// Block is one slot of the block pool. Slots are fixed by level size and
// never reused; a destroyed block stays destroyed.
type Block struct {
	Pos   Vec2       `msgpack:"pos"`
	Kind  BlockKind  `msgpack:"kind"`
	Flags BlockFlags `msgpack:"flags"`
}

// Destroyed reports whether the block is gone for good.
func (b *Block) Destroyed() bool {
	return b.Flags&BlockDestroyed != 0
}

// offscreen is where unplaced and losing blocks are parked.
var offscreen = Vec2{X: -1 << 20, Y: -1 << 20}

func hiddenBlock() Block {
	return Block{Pos: offscreen, Flags: BlockDestroyed}
}
