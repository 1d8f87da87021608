package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"hps-sequence/h2f"
	"hps-sequence/sequencer"
	"hps-sequence/theme"
)

// RenderPad renders a single colored symbol
func RenderPad(sym rune, color [3]uint8) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(rgbToHex(color)))
	return style.Render(string(sym))
}

// CellOwner picks the instrument shown for a packed cell: the lowest one
// with a non-zero code.
func CellOwner(packed uint32) (inst, code uint8, ok bool) {
	for i := uint8(0); i < 8; i++ {
		if c := uint8(packed >> (i * 3) & 7); c != 0 {
			return i, c, true
		}
	}
	return 0, 0, false
}

// CellSymbol maps a cell code to its symbol
func CellSymbol(code uint8, sym theme.Symbols) rune {
	switch code & (sequencer.CodeStart | sequencer.CodeEnd) {
	case sequencer.CodeStart | sequencer.CodeEnd:
		return sym.Single
	case sequencer.CodeStart:
		return sym.Start
	case sequencer.CodeEnd:
		return sym.End
	}
	if code == 0 {
		return sym.Empty
	}
	return sym.Fill
}

// RenderRoll renders the lowest rows of the decoded display, newest at the
// top, with the current row marked
func RenderRoll(snap *h2f.Snapshot, rows int, th *theme.Theme) string {
	rows = min(max(rows, sequencer.CurrentRow+1), h2f.Rows)
	dim := lipgloss.NewStyle().Foreground(th.Muted())
	mark := lipgloss.NewStyle().Foreground(th.Accent())

	lines := make([]string, 0, rows)
	for row := rows - 1; row >= 0; row-- {
		var line strings.Builder
		if row == sequencer.CurrentRow {
			line.WriteString(mark.Render(string(th.Symbols.Playhead)))
		} else {
			line.WriteString(" ")
		}
		line.WriteString(" ")
		for pitch := range h2f.Pitches {
			inst, code, ok := CellOwner(snap.Cell(row, pitch))
			if !ok {
				line.WriteString(dim.Render(string(th.Symbols.Empty)))
				continue
			}
			line.WriteString(RenderPad(CellSymbol(code, th.Symbols), th.InstRGB(inst)))
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

// RenderKeys renders the key lamps under the roll
func RenderKeys(lamps [h2f.Keys]uint8, th *theme.Theme) string {
	dim := lipgloss.NewStyle().Foreground(th.Muted())
	var line strings.Builder
	line.WriteString("  ")
	for _, v := range lamps {
		inst, _, ok := CellOwner(lampCells(v))
		if !ok {
			line.WriteString(dim.Render(string(th.Symbols.LampOff)))
			continue
		}
		line.WriteString(RenderPad(th.Symbols.Lamp, th.InstRGB(inst)))
	}
	return line.String()
}

// lampCells spreads a lamp byte (one bit per instrument) into cell codes
func lampCells(v uint8) uint32 {
	var packed uint32
	for i := range 8 {
		if v&(1<<i) != 0 {
			packed |= 1 << (i * 3)
		}
	}
	return packed
}

// RenderOctaves labels the octaves under the keys and marks the active one
func RenderOctaves(active uint8, th *theme.Theme) string {
	labels := []rune(strings.Repeat(" ", h2f.Keys))
	for oct := range sequencer.NumOctaves - 1 {
		labels[oct*sequencer.NumKeys] = rune('0' + oct)
	}
	labels[sequencer.DrumPitch] = 'D'

	marks := []rune(strings.Repeat(" ", h2f.Keys))
	if active == sequencer.DrumOctave {
		marks[sequencer.DrumPitch] = '^'
	} else {
		for i := range sequencer.NumKeys {
			marks[int(active)*sequencer.NumKeys+i] = '^'
		}
	}
	dim := lipgloss.NewStyle().Foreground(th.Muted())
	acc := lipgloss.NewStyle().Foreground(th.Accent())
	return "  " + dim.Render(string(labels)) + "\n  " + acc.Render(string(marks))
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}

func rgbToHex(c [3]uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}
