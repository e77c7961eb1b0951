package core

import "testing"

func TestInputFrame(t *testing.T) {
	var f InputFrame
	if f.Has(ActionJump) {
		t.Error("zero frame should have no actions")
	}
	f.Set(ActionLeft)
	f.Set(ActionJump)
	if !f.Has(ActionLeft) || !f.Has(ActionJump) || f.Has(ActionRight) {
		t.Errorf("unexpected actions %v", f.Actions)
	}

	f.Clear()
	if f.Has(ActionLeft) || f.Has(ActionJump) {
		t.Error("Clear should remove all actions")
	}
	f.Set(ActionPause)
	if !f.Has(ActionPause) {
		t.Error("frame should be reusable after Clear")
	}
}

func TestActionString(t *testing.T) {
	if ActionRight.String() != "Right" {
		t.Errorf("ActionRight.String() = %q", ActionRight.String())
	}
	if ActionSwitch.String() != "Switch" {
		t.Errorf("ActionSwitch.String() = %q", ActionSwitch.String())
	}
	if Action(99).String() != "Unknown" {
		t.Errorf("unknown action should stringify as Unknown")
	}
}
