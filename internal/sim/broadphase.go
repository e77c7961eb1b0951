package sim

import (
	"math"
	"sync/atomic"
)

// Grid is the broad-phase cell grid. Each cell holds up to capacity entity
// indices; registrations past capacity are dropped for the tick.
type Grid struct {
	cellSize float64
	w, h     int
	capacity int
	counts   []atomic.Int32
	items    []uint32
}

// NewGrid creates a grid of cells covering a width x height pixel area.
func NewGrid(width, height, cellSize float64, capacity int) *Grid {
	w := int(math.Ceil(width / cellSize))
	h := int(math.Ceil(height / cellSize))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return &Grid{
		cellSize: cellSize,
		w:        w,
		h:        h,
		capacity: capacity,
		counts:   make([]atomic.Int32, w*h),
		items:    make([]uint32, w*h*capacity),
	}
}

// Cells returns the number of cells.
func (g *Grid) Cells() int { return len(g.counts) }

// Capacity returns the per-cell capacity.
func (g *Grid) Capacity() int { return g.capacity }

// cellCoords maps a pixel position to cell coordinates, clamped to the grid
// so entities above, below or beside the screen still land in an edge cell.
func (g *Grid) cellCoords(x, y float64) (int, int) {
	cx := int(math.Floor(x / g.cellSize))
	cy := int(math.Floor(y / g.cellSize))
	if cx < 0 {
		cx = 0
	} else if cx >= g.w {
		cx = g.w - 1
	}
	if cy < 0 {
		cy = 0
	} else if cy >= g.h {
		cy = g.h - 1
	}
	return cx, cy
}

// ClearCell resets one cell's counter.
func (g *Grid) ClearCell(c int) {
	g.counts[c].Store(0)
}

// Clear resets every cell. Not safe for concurrent use with Insert.
func (g *Grid) Clear() {
	for c := range g.counts {
		g.counts[c].Store(0)
	}
}

// Insert appends idx to the cell containing (x, y). It reports false when
// the cell is full and the entry was dropped.
func (g *Grid) Insert(x, y float64, idx uint32) bool {
	cx, cy := g.cellCoords(x, y)
	c := cy*g.w + cx
	n := int(g.counts[c].Add(1)) - 1
	if n >= g.capacity {
		return false
	}
	g.items[c*g.capacity+n] = idx
	return true
}

// Count returns the number of entries readable from a cell.
func (g *Grid) Count(c int) int {
	n := int(g.counts[c].Load())
	if n > g.capacity {
		return g.capacity
	}
	return n
}

// Neighbors appends the entries of the 3x3 cells around (x, y) to buf.
// Must not run concurrently with Insert.
func (g *Grid) Neighbors(x, y float64, buf []uint32) []uint32 {
	cx, cy := g.cellCoords(x, y)
	for ny := cy - 1; ny <= cy+1; ny++ {
		if ny < 0 || ny >= g.h {
			continue
		}
		for nx := cx - 1; nx <= cx+1; nx++ {
			if nx < 0 || nx >= g.w {
				continue
			}
			c := ny*g.w + nx
			n := g.Count(c)
			buf = append(buf, g.items[c*g.capacity:c*g.capacity+n]...)
		}
	}
	return buf
}
