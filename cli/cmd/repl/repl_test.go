package repl

import (
	"context"
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/san/log"
)

func testLogger() log.Logger { return log.Make(io.Discard) }

func typeText(m model, text string) model {
	for _, r := range text {
		m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	return m
}

func press(m model, k tea.KeyType) model {
	m, _ = m.handleKey(tea.KeyMsg{Type: k})

	return m
}

func TestModel_Execute(t *testing.T) {
	s := newTestSession(t)
	h := NewHistory("")
	m := newModel(context.Background(), s, h, testLogger())

	m = typeText(m, "let x = 41")
	m, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyEnter})

	if cmd == nil {
		t.Fatal("expected output command")
	}

	if m.input.Value() != "" {
		t.Errorf("expected input to be cleared, got %q", m.input.Value())
	}

	if v, ok := s.Lookup("x"); !ok || v != int64(41) {
		t.Errorf("expected x = 41, got %v (%v)", v, ok)
	}

	if h.Len() != 1 || m.historyIdx != 1 {
		t.Errorf("expected 1 history entry at index 1, got %d at %d", h.Len(), m.historyIdx)
	}
}

func TestModel_CommandPrefix(t *testing.T) {
	h := NewHistory("")
	m := newModel(context.Background(), newTestSession(t), h, testLogger())

	m = typeText(m, ":ast")
	m = press(m, tea.KeyEnter)

	if !m.session.showAST {
		t.Error("expected AST echo to be enabled")
	}

	if e, err := h.GetEntry(0); err != nil || e != (HistoryEntry{Line: "ast", Mode: modeCtrl}) {
		t.Errorf("unexpected history entry %+v (%v)", e, err)
	}

	m = typeText(m, ":quit")
	m = press(m, tea.KeyEnter)

	if !m.quitting {
		t.Error("expected quit command to exit")
	}
}

func TestModel_ToggleMode(t *testing.T) {
	m := newModel(context.Background(), newTestSession(t), NewHistory(""), testLogger())

	m = typeText(m, "1 +")
	m = press(m, tea.KeyEsc)

	if m.mode != modeCtrl || m.input.Value() != "" {
		t.Fatalf("expected empty control input, got mode %d %q", m.mode, m.input.Value())
	}

	m = typeText(m, "he")
	m = press(m, tea.KeyEsc)

	if m.mode != modeEval || m.input.Value() != "1 +" {
		t.Fatalf("expected eval input restored, got mode %d %q", m.mode, m.input.Value())
	}

	m = press(m, tea.KeyEsc)

	if m.input.Value() != "he" {
		t.Errorf("expected control input restored, got %q", m.input.Value())
	}
}

func TestModel_TabCycle(t *testing.T) {
	s := newTestSession(t, "let alpha = 1;", "let alpine = 2;")
	m := newModel(context.Background(), s, NewHistory(""), testLogger())

	m = typeText(m, "alp")

	if len(m.matches) != 2 {
		t.Fatalf("expected 2 matches, got %v", m.matches)
	}

	m = press(m, tea.KeyTab)
	first := m.input.Value()

	m = press(m, tea.KeyTab)
	second := m.input.Value()

	if first == second || first == "alp" || second == "alp" {
		t.Fatalf("expected distinct completions, got %q then %q", first, second)
	}

	m = press(m, tea.KeyEsc)

	if m.input.Value() != "alp" || m.tabActive {
		t.Errorf("expected escape to restore %q, got %q", "alp", m.input.Value())
	}
}

func TestModel_HistoryNavigation(t *testing.T) {
	h := NewHistory("")

	for _, e := range []HistoryEntry{
		{Line: "1 + 1", Mode: modeEval},
		{Line: "names", Mode: modeCtrl},
	} {
		if err := h.Write(e.Line, e.Mode); err != nil {
			t.Fatalf("write error: %v", err)
		}
	}

	m := newModel(context.Background(), newTestSession(t), h, testLogger())

	m = press(m, tea.KeyUp)
	if m.input.Value() != "names" || m.mode != modeCtrl {
		t.Fatalf("expected control entry, got mode %d %q", m.mode, m.input.Value())
	}

	m = press(m, tea.KeyUp)
	if m.input.Value() != "1 + 1" || m.mode != modeEval {
		t.Fatalf("expected eval entry, got mode %d %q", m.mode, m.input.Value())
	}

	m = press(m, tea.KeyUp)
	if m.historyIdx != 0 {
		t.Errorf("expected to stay at oldest entry, got %d", m.historyIdx)
	}

	m = press(m, tea.KeyDown)
	m = press(m, tea.KeyDown)

	if m.input.Value() != "" || m.historyIdx != h.Len() {
		t.Errorf("expected empty input past newest entry, got %q at %d",
			m.input.Value(), m.historyIdx)
	}
}

func TestModel_CtrlC(t *testing.T) {
	m := newModel(context.Background(), newTestSession(t), NewHistory(""), testLogger())

	m = typeText(m, "abc")
	m = press(m, tea.KeyCtrlC)

	if m.quitting || m.input.Value() != "" {
		t.Fatalf("expected input cleared without quitting, got %q", m.input.Value())
	}

	m = press(m, tea.KeyCtrlC)

	if !m.quitting {
		t.Error("expected second Ctrl+C to quit")
	}
}
