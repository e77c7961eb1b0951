// Package sim is a deterministic data-parallel platformer simulation.
//
// Every tick runs three passes over fixed-capacity pools: Frame-Prep,
// Physics/Block-Collision and Interaction/AI. Each pass fans out across
// worker goroutines and ends with a barrier. Entities are double-buffered:
// a pass reads the committed buffer and writes the next one. The tile
// index and broad-phase grid are the only shared mutable structures inside
// a pass and are updated with atomics.
package sim

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// ErrGridMismatch is returned by Step when the tick's grid does not match
// the grid the engine was built for.
var ErrGridMismatch = errors.New("sim: tick grid does not match engine")

// ErrNotPossessable is returned when control cannot move to a slot.
var ErrNotPossessable = errors.New("sim: slot is not an active player")

// Engine owns the pools and runs ticks.
type Engine struct {
	params Params
	gridW  uint32
	gridH  uint32
	rows   []int

	tiles  *TileIndex
	blocks []Block
	pool   *Pool
	grid   *Grid
	disp   *dispatcher
	stats  Stats
	logger *log.Logger

	pressure float64
	frame    uint32
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers sets the number of worker goroutines per pass. Zero or less
// means GOMAXPROCS. A single worker makes every run reproducible.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.disp = newDispatcher(n)
	}
}

// WithLogger sets the logger for level and run events.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine allocates every pool up front. Nothing is allocated per tick.
func NewEngine(p Params, opts ...Option) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	gw, gh := GridSize(p.ScreenW, p.ScreenH, p.TileSize)
	rows := platformRows(gh, p.PlatformSpacing)
	nb := int(gw) * (1 + len(rows))

	e := &Engine{
		params:   p,
		gridW:    gw,
		gridH:    gh,
		rows:     rows,
		tiles:    NewTileIndex(gw, gh),
		blocks:   make([]Block, nb),
		pool:     NewPool(p.Total(), p.Players+p.Goombas+p.Koopas),
		grid:     NewGrid(p.ScreenW, p.ScreenH, p.CellSize, p.CellCapacity),
		logger:   log.New(io.Discard),
		pressure: 1,
	}
	for i := range e.blocks {
		e.blocks[i] = hiddenBlock()
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.disp == nil {
		e.disp = newDispatcher(0)
	}
	return e, nil
}

// Step advances the simulation by one tick. Frame 0 generates the level
// first. Cancellation is honoured between passes only; a cancelled Step
// leaves the last fully committed buffer in place.
func (e *Engine) Step(ctx context.Context, tc TickContext) error {
	if tc.GridW != e.gridW || tc.GridH != e.gridH {
		return fmt.Errorf("%w: tick %dx%d, engine %dx%d", ErrGridMismatch, tc.GridW, tc.GridH, e.gridW, e.gridH)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if tc.Frame == 0 {
		e.generate(tc)
	}

	passes := [...]func(TickContext){e.framePrep, e.physics, e.interact}
	for _, pass := range passes {
		if err := ctx.Err(); err != nil {
			return err
		}
		pass(tc)
	}
	e.frame = tc.Frame
	return nil
}

// beginPass opens a pass over the entity pool and clears its free slots.
// The clear runs as its own parallel step so that no spawn in the pass can
// race with it.
func (e *Engine) beginPass() {
	e.pool.begin()
	e.disp.run(e.pool.Len(), func(i0, i1 int, _ *workerScratch) {
		e.pool.clearFree(i0, i1)
	})
}

// TickContext builds the context for frame with the engine's screen size.
func (e *Engine) TickContext(frame uint32, elapsed, delta float64, input InputMask) TickContext {
	p := &e.params
	return NewTickContext(p.ScreenW, p.ScreenH, elapsed, delta, input, frame, p.TileSize)
}

// SetPressure scales the AI turn and jump chances. Call between steps.
func (e *Engine) SetPressure(v float64) {
	if v < 0 {
		v = 0
	}
	e.pressure = v
}

// Params returns the engine parameters.
func (e *Engine) Params() Params { return e.params }

// Workers returns the number of worker goroutines per pass.
func (e *Engine) Workers() int { return e.disp.workers }

// GridW returns the tile columns.
func (e *Engine) GridW() uint32 { return e.gridW }

// GridH returns the tile rows.
func (e *Engine) GridH() uint32 { return e.gridH }

// Entities returns the committed entity pool. Callers must not modify it
// and must not hold it across Step.
func (e *Engine) Entities() []Entity { return e.pool.Committed() }

// Blocks returns the block pool. Callers must not modify it and must not
// hold it across Step.
func (e *Engine) Blocks() []Block { return e.blocks }

// Tiles returns the tile index.
func (e *Engine) Tiles() *TileIndex { return e.tiles }

// Stats returns a copy of the run counters.
func (e *Engine) Stats() StatsSnapshot { return e.stats.Snapshot() }

// Controlled returns the player-controlled entity, if any slot holds it.
func (e *Engine) Controlled() (Entity, bool) {
	if i, ok := e.ControlledSlot(); ok {
		return e.pool.cur[i], true
	}
	return Entity{}, false
}

// ControlledSlot returns the pool slot of the player-controlled entity.
func (e *Engine) ControlledSlot() (int, bool) {
	for i, ent := range e.pool.Committed()[:e.params.Players] {
		if ent.Has(FlagControlled) {
			return i, true
		}
	}
	return 0, false
}

// Possess moves player control to slot, which must hold an active player.
// The previous controlled player becomes an AI duplicate. Call between
// steps.
func (e *Engine) Possess(slot int) error {
	cur := e.pool.cur
	if slot < 0 || slot >= e.params.Players || cur[slot].Kind != KindPlayer || !cur[slot].Active() {
		return fmt.Errorf("%w: slot %d", ErrNotPossessable, slot)
	}
	for i := range cur[:e.params.Players] {
		cur[i].Flags &^= FlagControlled
	}
	cur[slot].Flags |= FlagControlled
	return nil
}

// PossessNext moves control to the next active player after the current
// one, in slot order. It returns the new slot.
func (e *Engine) PossessNext() (int, error) {
	from, _ := e.ControlledSlot()
	n := e.params.Players
	for k := 1; k <= n; k++ {
		i := (from + k) % n
		if i == from {
			break
		}
		if ent := &e.pool.cur[i]; ent.Kind == KindPlayer && ent.Active() {
			return i, e.Possess(i)
		}
	}
	return from, fmt.Errorf("%w: no other active player", ErrNotPossessable)
}
