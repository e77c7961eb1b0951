package sim

import "sync/atomic"

// Pool is the double-buffered entity pool. Passes read cur and write next;
// swap commits next after the barrier.
//
// Each slot of next has at most one writer per pass. Occupied slots are
// written by their own worker. Free slots are cleared before the pass and
// may then be taken by one spawner, which must win the slot's claim word.
type Pool struct {
	cur, next []Entity
	claims    []atomic.Uint64
	epoch     uint64

	transientStart int
}

// NewPool creates a pool of n zeroed (free) slots.
func NewPool(n, transientStart int) *Pool {
	return &Pool{
		cur:            make([]Entity, n),
		next:           make([]Entity, n),
		claims:         make([]atomic.Uint64, n),
		transientStart: transientStart,
	}
}

// Len returns the pool capacity.
func (p *Pool) Len() int { return len(p.cur) }

// Committed returns the committed buffer. Callers must not modify it.
func (p *Pool) Committed() []Entity { return p.cur }

// begin opens a pass; claims from earlier passes become stale.
func (p *Pool) begin() {
	p.epoch++
}

// clearFree empties next for every slot in [i0, i1) that is free in cur.
// It must complete for the whole pool before the pass spawns anything.
func (p *Pool) clearFree(i0, i1 int) {
	for i := i0; i < i1; i++ {
		if !p.cur[i].Occupied() {
			p.next[i] = Entity{}
		}
	}
}

// swap commits the pass output.
func (p *Pool) swap() {
	p.cur, p.next = p.next, p.cur
}

// claim takes slot i for the current pass.
func (p *Pool) claim(i int) bool {
	for {
		v := p.claims[i].Load()
		if v == p.epoch {
			return false
		}
		if p.claims[i].CompareAndSwap(v, p.epoch) {
			return true
		}
	}
}

// put writes the pass result for the worker that owns slot i. Free slots
// belong to spawners and are left alone.
func (p *Pool) put(i int, e Entity) {
	if !p.cur[i].Occupied() {
		return
	}
	p.next[i] = e
}

// spawn writes e into a free transient slot, scanning from start around the
// transient range. It reports false when every slot is taken.
func (p *Pool) spawn(e Entity, start uint32) bool {
	n := len(p.cur) - p.transientStart
	if n <= 0 {
		return false
	}
	s := int(start % uint32(n))
	for k := 0; k < n; k++ {
		i := p.transientStart + (s+k)%n
		if p.cur[i].Occupied() {
			continue
		}
		if p.claim(i) {
			p.next[i] = e
			return true
		}
	}
	return false
}
