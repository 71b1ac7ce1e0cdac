package repl

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func TestHistory_Persist(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("load of missing file: %v", err)
	}

	writes := []HistoryEntry{
		{Line: "let x = 1;", Mode: modeEval},
		{Line: "names", Mode: modeCtrl},
		{Line: "x + 1", Mode: modeEval},
		{Line: "x + 1", Mode: modeEval},
		{Line: "let x = 1;", Mode: modeEval},
		{Line: "   ", Mode: modeEval},
	}

	for _, e := range writes {
		if err := h.Write(e.Line, e.Mode); err != nil {
			t.Fatalf("write error: %v", err)
		}
	}

	want := []HistoryEntry{
		{Line: "names", Mode: modeCtrl},
		{Line: "x + 1", Mode: modeEval},
		{Line: "let x = 1;", Mode: modeEval},
	}

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("load error: %v", err)
	}

	for _, hist := range []*History{h, reloaded} {
		got := hist.Entries()
		if len(got) != len(want) {
			t.Fatalf("expected %d entries, got %v", len(want), got)
		}

		for i := range want {
			if got[i] != want[i] {
				t.Errorf("entry %d: expected %+v, got %+v", i, want[i], got[i])
			}
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read error: %v", err)
	}

	if !strings.HasPrefix(string(data), "C:names\n") {
		t.Errorf("unexpected file content %q", data)
	}
}

func TestHistory_Memory(t *testing.T) {
	h := NewHistory("")

	if err := h.Load(); err != nil {
		t.Fatalf("load error: %v", err)
	}

	if err := h.Write("1;", modeEval); err != nil {
		t.Fatalf("write error: %v", err)
	}

	e, err := h.GetEntry(0)
	if err != nil || e.Line != "1;" {
		t.Fatalf("expected entry %q, got %+v (%v)", "1;", e, err)
	}

	if _, err := h.GetEntry(1); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds, got %v", err)
	}

	if _, err := h.GetEntry(-1); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds, got %v", err)
	}
}

func TestHistory_Limit(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)
	h := NewHistory(path)

	for i := range maxHistory + 5 {
		if err := h.Write(strconv.Itoa(i)+";", modeEval); err != nil {
			t.Fatalf("write error: %v", err)
		}
	}

	if h.Len() != maxHistory {
		t.Fatalf("expected %d entries, got %d", maxHistory, h.Len())
	}

	if e, _ := h.GetEntry(0); e.Line != "5;" {
		t.Errorf("expected oldest entry %q, got %q", "5;", e.Line)
	}

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("load error: %v", err)
	}

	if reloaded.Len() != maxHistory {
		t.Errorf("expected %d reloaded entries, got %d", maxHistory, reloaded.Len())
	}
}

func TestParseEntry(t *testing.T) {
	tests := []struct {
		line string
		want HistoryEntry
	}{
		{"E:1 + 2", HistoryEntry{Line: "1 + 2", Mode: modeEval}},
		{"C:quit", HistoryEntry{Line: "quit", Mode: modeCtrl}},
		{"legacy", HistoryEntry{Line: "legacy", Mode: modeEval}},
	}

	for _, tt := range tests {
		if got := parseEntry(tt.line); got != tt.want {
			t.Errorf("parseEntry(%q) = %+v, want %+v", tt.line, got, tt.want)
		}

		if got := parseEntry(tt.want.String()); got != tt.want {
			t.Errorf("round trip of %+v gave %+v", tt.want, got)
		}
	}
}
