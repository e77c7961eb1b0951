package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreSaveAndTopRuns(t *testing.T) {
	store := openTestStore(t)

	for _, score := range []int{100, 50, 200} {
		if _, err := store.SaveRun(RunRecord{Scenario: "swarm", Mode: ModePlay, Score: score}); err != nil {
			t.Fatalf("SaveRun() failed: %v", err)
		}
	}
	// Different scenario
	if _, err := store.SaveRun(RunRecord{Scenario: "swarm_horde", Mode: ModeBench, Score: 500}); err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}

	runs, err := store.TopRuns("swarm", 10)
	if err != nil {
		t.Fatalf("TopRuns() failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("Expected 3 runs, got %d", len(runs))
	}
	want := []int{200, 100, 50}
	for i, r := range runs {
		if r.Score != want[i] {
			t.Errorf("runs[%d].Score = %d, want %d", i, r.Score, want[i])
		}
		if r.Scenario != "swarm" {
			t.Errorf("runs[%d].Scenario = %q, want swarm", i, r.Scenario)
		}
	}
}

func TestStoreSaveRunFields(t *testing.T) {
	store := openTestStore(t)

	in := RunRecord{
		Scenario:      "swarm",
		Mode:          ModeBench,
		Score:         1234,
		Ticks:         3600,
		Deaths:        2,
		Workers:       8,
		Bricks:        4,
		Coins:         3,
		Defeats:       7,
		PowerUps:      1,
		SpawnDrops:    5,
		CellOverflows: 6,
		Duration:      1500 * time.Millisecond,
	}
	id, err := store.SaveRun(in)
	if err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}
	if len(id) != 36 {
		t.Errorf("Expected generated UUID run id, got %q", id)
	}

	got, err := store.RunByID(id)
	if err != nil {
		t.Fatalf("RunByID() failed: %v", err)
	}
	if got == nil {
		t.Fatal("RunByID() returned nil for saved run")
	}
	if got.Score != 1234 || got.Ticks != 3600 || got.Deaths != 2 || got.Workers != 8 {
		t.Errorf("Unexpected run totals: %+v", got)
	}
	if got.Bricks != 4 || got.Coins != 3 || got.Defeats != 7 || got.PowerUps != 1 {
		t.Errorf("Unexpected event counters: %+v", got)
	}
	if got.SpawnDrops != 5 || got.CellOverflows != 6 {
		t.Errorf("Unexpected drop counters: %+v", got)
	}
	if got.Duration != 1500*time.Millisecond {
		t.Errorf("Duration = %v, want 1.5s", got.Duration)
	}
	if got.Mode != ModeBench {
		t.Errorf("Mode = %q, want %q", got.Mode, ModeBench)
	}
	if tps := got.TicksPerSecond(); tps != 2400 {
		t.Errorf("TicksPerSecond() = %v, want 2400", tps)
	}
}

func TestStoreSaveRunKeepsGivenID(t *testing.T) {
	store := openTestStore(t)

	id, err := store.SaveRun(RunRecord{RunID: "fixed-id", Scenario: "swarm", Mode: ModeSSH})
	if err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}
	if id != "fixed-id" {
		t.Errorf("SaveRun() id = %q, want fixed-id", id)
	}

	// Run IDs are unique
	if _, err := store.SaveRun(RunRecord{RunID: "fixed-id", Scenario: "swarm", Mode: ModeSSH}); err == nil {
		t.Error("Expected error saving duplicate run id")
	}
}

func TestStoreRunByIDMissing(t *testing.T) {
	store := openTestStore(t)

	got, err := store.RunByID("nope")
	if err != nil {
		t.Fatalf("RunByID() failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for missing run, got %+v", got)
	}
}

func TestStoreTopRunsLimit(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 20; i++ {
		if _, err := store.SaveRun(RunRecord{Scenario: "swarm", Mode: ModePlay, Score: i * 10}); err != nil {
			t.Fatalf("SaveRun() failed: %v", err)
		}
	}

	runs, err := store.TopRuns("swarm", 5)
	if err != nil {
		t.Fatalf("TopRuns() failed: %v", err)
	}
	if len(runs) != 5 {
		t.Errorf("Expected 5 runs, got %d", len(runs))
	}
	if runs[0].Score != 190 {
		t.Errorf("Expected top score 190, got %d", runs[0].Score)
	}
}

func TestStoreRecentRuns(t *testing.T) {
	store := openTestStore(t)

	scenarios := []string{"swarm", "swarm_solo", "swarm_horde"}
	for i, sc := range scenarios {
		if _, err := store.SaveRun(RunRecord{Scenario: sc, Mode: ModePlay, Score: i}); err != nil {
			t.Fatalf("SaveRun() failed: %v", err)
		}
	}

	runs, err := store.RecentRuns(2)
	if err != nil {
		t.Fatalf("RecentRuns() failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(runs))
	}
	if runs[0].Scenario != "swarm_horde" || runs[1].Scenario != "swarm_solo" {
		t.Errorf("Expected newest first, got %q then %q", runs[0].Scenario, runs[1].Scenario)
	}
}

func TestStoreBestScore(t *testing.T) {
	store := openTestStore(t)

	// No runs yet
	best, err := store.BestScore("swarm")
	if err != nil {
		t.Fatalf("BestScore() failed: %v", err)
	}
	if best != 0 {
		t.Errorf("Expected 0 for no runs, got %d", best)
	}

	for _, score := range []int{100, 300, 200} {
		if _, err := store.SaveRun(RunRecord{Scenario: "swarm", Mode: ModePlay, Score: score}); err != nil {
			t.Fatalf("SaveRun() failed: %v", err)
		}
	}

	best, err = store.BestScore("swarm")
	if err != nil {
		t.Fatalf("BestScore() failed: %v", err)
	}
	if best != 300 {
		t.Errorf("Expected best score 300, got %d", best)
	}
}

func TestStoreClearRuns(t *testing.T) {
	store := openTestStore(t)

	store.SaveRun(RunRecord{Scenario: "swarm", Mode: ModePlay, Score: 100})
	store.SaveRun(RunRecord{Scenario: "swarm", Mode: ModePlay, Score: 200})
	store.SaveRun(RunRecord{Scenario: "swarm_solo", Mode: ModePlay, Score: 500})

	if err := store.ClearRuns("swarm"); err != nil {
		t.Fatalf("ClearRuns() failed: %v", err)
	}

	runs, _ := store.TopRuns("swarm", 10)
	if len(runs) != 0 {
		t.Errorf("Expected 0 runs after clear, got %d", len(runs))
	}

	runs, _ = store.TopRuns("swarm_solo", 10)
	if len(runs) != 1 {
		t.Errorf("Expected 1 swarm_solo run (should not be cleared), got %d", len(runs))
	}
}

func TestStoreScenarioStats(t *testing.T) {
	store := openTestStore(t)

	store.SaveRun(RunRecord{Scenario: "swarm", Mode: ModePlay, Score: 100, Ticks: 600})
	store.SaveRun(RunRecord{Scenario: "swarm", Mode: ModeBench, Score: 300, Ticks: 400})
	store.SaveRun(RunRecord{Scenario: "swarm_horde", Mode: ModePlay, Score: 50, Ticks: 10})

	st, err := store.GetScenarioStats("swarm")
	if err != nil {
		t.Fatalf("GetScenarioStats() failed: %v", err)
	}
	if st.RunsCount != 2 || st.BestScore != 300 || st.TotalTicks != 1000 {
		t.Errorf("Unexpected stats: %+v", st)
	}
	if st.AvgScore != 200 {
		t.Errorf("AvgScore = %v, want 200", st.AvgScore)
	}

	empty, err := store.GetScenarioStats("swarm_solo")
	if err != nil {
		t.Fatalf("GetScenarioStats() failed: %v", err)
	}
	if empty.RunsCount != 0 || empty.BestScore != 0 {
		t.Errorf("Expected empty stats, got %+v", empty)
	}

	all, err := store.GetAllScenarioStats()
	if err != nil {
		t.Fatalf("GetAllScenarioStats() failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 scenarios, got %d", len(all))
	}
	if all["swarm_horde"].BestScore != 50 {
		t.Errorf("swarm_horde BestScore = %d, want 50", all["swarm_horde"].BestScore)
	}
}

func TestStoreNestedPath(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	// Verify nested directories were created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}
