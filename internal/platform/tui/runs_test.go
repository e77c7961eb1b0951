package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-swarm/internal/registry"
	"github.com/vovakirdan/tui-swarm/internal/storage"
)

func TestRunsBoard(t *testing.T) {
	store := testStore(t)
	first := registry.List()[0].ID
	second := registry.List()[1].ID

	for _, score := range []int{100, 300} {
		if _, err := store.SaveRun(storage.RunRecord{Scenario: first, Mode: storage.ModeBench, Score: score, Ticks: 60}); err != nil {
			t.Fatalf("SaveRun() failed: %v", err)
		}
	}

	m := NewRunsModel(store, 120, 30)
	if len(m.runs) != 2 {
		t.Fatalf("expected 2 runs for %s, got %d", first, len(m.runs))
	}
	if m.runs[0].Score != 300 {
		t.Errorf("top run score = %d, want 300", m.runs[0].Score)
	}

	view := m.View()
	if !strings.Contains(view, "RUNS") {
		t.Error("view should show the title")
	}
	if !strings.Contains(view, "best 300") {
		t.Errorf("view should show scenario stats, got:\n%s", view)
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(RunsModel)
	if m.scenarios[m.cursor].ID != second {
		t.Errorf("tab moved to %q, want %q", m.scenarios[m.cursor].ID, second)
	}
	if len(m.runs) != 0 {
		t.Errorf("expected no runs for %s, got %d", second, len(m.runs))
	}
	if !strings.Contains(m.View(), "No runs recorded yet") {
		t.Error("empty scenario should show the empty message")
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m = next.(RunsModel)
	if m.scenarios[m.cursor].ID != first {
		t.Errorf("shift+tab moved to %q, want %q", m.scenarios[m.cursor].ID, first)
	}
}

func TestRunsBoardBackAndNarrow(t *testing.T) {
	m := NewRunsModel(nil, 60, 20)
	if m.showSidebar {
		t.Error("narrow window should not show the sidebar")
	}
	if m.View() == "" {
		t.Error("runs board should render without a store")
	}

	next, cmd := m.Update(runeKey('b'))
	m = next.(RunsModel)
	if !m.IsGoingBack() || cmd == nil {
		t.Error("b should go back")
	}
}
