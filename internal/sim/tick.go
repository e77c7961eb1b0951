package sim

import "math"

// InputMask is the per-tick input bitmask supplied by the host.
type InputMask uint32

const (
	InputLeft  InputMask = 1 << 0
	InputRight InputMask = 1 << 1
	InputJump  InputMask = 1 << 2
)

// Has reports whether all bits of b are set.
func (m InputMask) Has(b InputMask) bool {
	return m&b == b
}

// TickContext carries the host-supplied parameters for one tick.
// It is immutable for the duration of Step.
type TickContext struct {
	Resolution Vec2      // screen size in pixels
	Elapsed    float64   // seconds since the run started
	Delta      float64   // seconds since the previous tick
	Input      InputMask // controlled-player input
	Frame      uint32    // monotonic tick counter, 0 on the first tick
	GridW      uint32    // tile columns
	GridH      uint32    // tile rows
}

// NewTickContext builds a TickContext and derives the tile grid size.
func NewTickContext(width, height, elapsed, delta float64, input InputMask, frame uint32, tileSize float64) TickContext {
	gw, gh := GridSize(width, height, tileSize)
	return TickContext{
		Resolution: Vec2{X: width, Y: height},
		Elapsed:    elapsed,
		Delta:      delta,
		Input:      input,
		Frame:      frame,
		GridW:      gw,
		GridH:      gh,
	}
}

// GridSize returns the number of tile columns and rows covering a screen.
func GridSize(width, height, tileSize float64) (uint32, uint32) {
	if tileSize <= 0 || width <= 0 || height <= 0 {
		return 0, 0
	}
	return uint32(math.Ceil(width / tileSize)), uint32(math.Ceil(height / tileSize))
}
