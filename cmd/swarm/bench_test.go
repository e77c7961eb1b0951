package main

import (
	"context"
	"testing"

	"golang.org/x/time/rate"

	"github.com/vovakirdan/tui-swarm/internal/core"
	"github.com/vovakirdan/tui-swarm/internal/games/swarm"
)

func benchConfig() core.RuntimeConfig {
	return core.RuntimeConfig{ScreenW: 60, ScreenH: 30, TickRate: 60, Seed: 3, Workers: 2}
}

func TestRunHeadless(t *testing.T) {
	res, err := runHeadless(context.Background(), swarm.New(), benchConfig(), 200, nil)
	if err != nil {
		t.Fatalf("runHeadless() failed: %v", err)
	}
	if res.Stats.Ticks != 200 {
		t.Errorf("expected 200 ticks, got %d", res.Stats.Ticks)
	}
	if res.Stats.Workers != 2 {
		t.Errorf("expected 2 workers, got %d", res.Stats.Workers)
	}
	if res.TicksPerSecond() <= 0 {
		t.Error("expected positive throughput")
	}
	if res.Stats.Stats.BlocksPlaced == 0 {
		t.Error("expected the level to be generated")
	}
}

func TestRunHeadlessCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := runHeadless(ctx, swarm.New(), benchConfig(), 100, rate.NewLimiter(1000, 1))
	if err != nil {
		t.Fatalf("runHeadless() failed: %v", err)
	}
	if res.Stats.Ticks != 0 {
		t.Errorf("cancelled run should not tick, got %d", res.Stats.Ticks)
	}
}

func TestRunHeadlessTooSmall(t *testing.T) {
	cfg := benchConfig()
	cfg.ScreenW = 5
	if _, err := runHeadless(context.Background(), swarm.New(), cfg, 10, nil); err == nil {
		t.Error("expected an error for a world below the minimum size")
	}
}

func TestPortOf(t *testing.T) {
	tests := map[string]string{":23234": "23234", "0.0.0.0:8089": "8089", "8089": "8089"}
	for in, want := range tests {
		if got := portOf(in); got != want {
			t.Errorf("portOf(%q) = %q, want %q", in, got, want)
		}
	}
}
