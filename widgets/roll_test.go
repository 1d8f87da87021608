package widgets

import (
	"strings"
	"testing"

	"hps-sequence/h2f"
	"hps-sequence/sequencer"
	"hps-sequence/theme"
)

func TestCellOwner(t *testing.T) {
	if _, _, ok := CellOwner(0); ok {
		t.Error("empty cell has an owner")
	}
	// inst 1 single, inst 4 fill: the lower instrument wins
	inst, code, ok := CellOwner(7<<3 | 1<<12)
	if !ok || inst != 1 || code != 7 {
		t.Errorf("CellOwner = %d/%d/%v, want 1/7/true", inst, code, ok)
	}
}

func TestCellSymbol(t *testing.T) {
	sym := theme.New(theme.Plasma()).Symbols
	tests := []struct {
		code uint8
		want rune
	}{
		{0, sym.Empty},
		{sequencer.CodeFill, sym.Fill},
		{sequencer.CodeFill | sequencer.CodeStart, sym.Start},
		{sequencer.CodeFill | sequencer.CodeEnd, sym.End},
		{sequencer.CodeSingle, sym.Single},
	}
	for _, tt := range tests {
		if got := CellSymbol(tt.code, sym); got != tt.want {
			t.Errorf("CellSymbol(%d) = %c, want %c", tt.code, got, tt.want)
		}
	}
}

func TestRenderRoll(t *testing.T) {
	th := theme.New(theme.Plasma())
	sim := h2f.NewSim(nil)
	sim.SetTileOffset(3)
	// logical row 8 lives at physical row 11
	sim.SetTileState(uint16(11*h2f.Pitches+5), sequencer.CodeSingle)
	snap := sim.Snapshot()

	out := RenderRoll(&snap, 16, th)
	lines := strings.Split(out, "\n")
	if len(lines) != 16 {
		t.Fatalf("rendered %d lines, want 16", len(lines))
	}
	current := lines[16-1-sequencer.CurrentRow]
	if !strings.ContainsRune(current, th.Symbols.Playhead) {
		t.Error("current row is not marked")
	}
	if !strings.ContainsRune(current, th.Symbols.Single) {
		t.Error("note missing from the current row")
	}
	for i, line := range lines {
		if i != 16-1-sequencer.CurrentRow && strings.ContainsRune(line, th.Symbols.Single) {
			t.Errorf("note drawn on line %d", i)
		}
	}

	// too few rows still shows the current row
	if got := len(strings.Split(RenderRoll(&snap, 2, th), "\n")); got != sequencer.CurrentRow+1 {
		t.Errorf("short roll has %d lines", got)
	}
}

func TestRenderKeys(t *testing.T) {
	th := theme.New(theme.Plasma())
	var lamps [h2f.Keys]uint8
	lamps[0] = 1 << 2
	lamps[48] = 1
	out := RenderKeys(lamps, th)
	if n := strings.Count(out, string(th.Symbols.Lamp)); n != 2 {
		t.Errorf("%d lit keys, want 2", n)
	}
	if n := strings.Count(out, string(th.Symbols.LampOff)); n != h2f.Keys-2 {
		t.Errorf("%d dark keys, want %d", n, h2f.Keys-2)
	}
}

func TestRenderOctaves(t *testing.T) {
	th := theme.New(theme.Plasma())
	if n := strings.Count(RenderOctaves(2, th), "^"); n != sequencer.NumKeys {
		t.Errorf("octave 2 marks %d keys", n)
	}
	if n := strings.Count(RenderOctaves(sequencer.DrumOctave, th), "^"); n != 1 {
		t.Errorf("drum octave marks %d keys", n)
	}
}

func TestRenderKeyHelp(t *testing.T) {
	out := RenderKeyHelp([]KeySection{
		{Title: "transport", Keys: []KeyBinding{{Key: "space", Desc: "play"}}},
	})
	if !strings.Contains(out, "transport") || !strings.Contains(out, "space") {
		t.Errorf("help = %q", out)
	}
}
