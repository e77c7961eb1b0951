package swarm

import (
	"github.com/vovakirdan/tui-swarm/internal/core"
	"github.com/vovakirdan/tui-swarm/internal/sim"
)

// Terminals report key presses and auto-repeats but no releases, so a
// press is held for a number of ticks. The move hold covers the usual
// auto-repeat interval; the jump buffer lets a press shortly before landing
// still jump.
const (
	moveHoldTicks   = 12
	jumpBufferTicks = 6
)

// holdInput turns discrete key presses into a held input mask.
type holdInput struct {
	left, right, jump int
}

// Update registers the frame's presses and returns the mask for this tick.
func (h *holdInput) Update(in core.InputFrame) sim.InputMask {
	if in.Has(core.ActionLeft) {
		h.left, h.right = moveHoldTicks, 0
	}
	if in.Has(core.ActionRight) {
		h.right, h.left = moveHoldTicks, 0
	}
	if in.Has(core.ActionJump) {
		h.jump = jumpBufferTicks
	}

	var m sim.InputMask
	if h.left > 0 {
		m |= sim.InputLeft
		h.left--
	}
	if h.right > 0 {
		m |= sim.InputRight
		h.right--
	}
	if h.jump > 0 {
		m |= sim.InputJump
		h.jump--
	}
	return m
}
