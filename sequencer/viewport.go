package sequencer

import (
	"slices"
)

// Window geometry, in rows. Row 0 is the oldest tick on screen and row 63
// the newest; CurrentRow is the row under the playhead.
const (
	Rows       = 64
	CurrentRow = 8
	lastRow    = Rows - 1
	ahead      = lastRow - CurrentRow
)

// Cell codes, one 3-bit field per instrument in each display cell.
const (
	CodeFill   = 1
	CodeStart  = 2
	CodeEnd    = 4
	CodeSingle = CodeFill | CodeStart | CodeEnd
)

// Display is the part of the register interface the sequencer drives.
type Display interface {
	SetSubtileScroll(v uint8)
	SetGridScroll(v uint8)
	SetTileOffset(v uint8)
	SetTileState(addr uint16, data uint32)
}

// Viewport maps the window [pos-8, pos+55] onto the 64 physical display
// rows. Physical rows rotate with offset, so scrolling by one row repaints a
// single row instead of the whole screen.
//
// tiles is the shadow of the display memory. The display is write-only;
// every cell update is computed from the shadow and then written through.
type Viewport struct {
	store *NoteStore
	out   Display

	pos    uint32
	offset uint8
	tiles  [Rows * NumPitches]uint32
	view   map[NoteID]struct{} // notes intersecting the window
}

// NewViewport positions the window at tick 0 and blanks the display.
func NewViewport(store *NoteStore, out Display) *Viewport {
	v := &Viewport{
		store: store,
		out:   out,
		view:  make(map[NoteID]struct{}),
	}
	v.writeScroll()
	for addr := range v.tiles {
		out.SetTileState(uint16(addr), 0)
	}
	return v
}

func (v *Viewport) writeScroll() {
	v.out.SetGridScroll(uint8(v.pos + CurrentRow))
	v.out.SetTileOffset(v.offset)
}

func (v *Viewport) addr(row int, pitch uint8) int {
	return (row+int(v.offset))&(Rows-1)*NumPitches + int(pitch)
}

func (v *Viewport) setCell(row int, n Note, code uint8) {
	addr := v.addr(row, n.Pitch)
	shift := uint(n.Inst) * 3
	data := v.tiles[addr]&^(7<<shift) | uint32(code&7)<<shift
	if data == v.tiles[addr] {
		return
	}
	v.tiles[addr] = data
	v.out.SetTileState(uint16(addr), data)
}

func (v *Viewport) rowOf(tick uint32) int {
	return int(int64(tick)-int64(v.pos)) + CurrentRow
}

// draw paints (or with erase, clears) every visible row of n and reports
// whether any row of it is visible.
func (v *Viewport) draw(n Note, erase bool) bool {
	// While pos < 8 the oldest rows lie before tick 0 and nothing can start
	// there, so the past edge never clips.
	startInside := v.pos < CurrentRow || n.Start >= v.pos-CurrentRow
	startVisible := n.Start <= v.pos+ahead
	endVisible := v.pos < CurrentRow || n.End() >= v.pos-CurrentRow
	endInside := n.End() <= v.pos+ahead
	if !startVisible || !endVisible {
		return false
	}

	first, last := v.rowOf(n.Start), v.rowOf(n.End())
	startBorder, endBorder := true, true
	if !startInside {
		first, startBorder = 0, false
	}
	if !endInside {
		last, endBorder = lastRow, false
	}
	for row := first; row <= last; row++ {
		var code uint8
		if !erase {
			code = CodeFill
			if startBorder && row == first {
				code |= CodeStart
			}
			if endBorder && row == last {
				code |= CodeEnd
			}
		}
		v.setCell(row, n, code)
	}
	return true
}

// Draw paints a note that may already overlap the window and adds it to the
// view set. It reports false, writing nothing, when the note is off-screen.
func (v *Viewport) Draw(id NoteID) bool {
	if !v.draw(v.store.mustGet(id), false) {
		return false
	}
	v.view[id] = struct{}{}
	return true
}

// Erase clears a note from the display and drops it from the view set. It
// must run before the note's ID is retired.
func (v *Viewport) Erase(id NoteID) {
	v.draw(v.store.mustGet(id), true)
	delete(v.view, id)
}

// CanScroll reports whether the window may move in that direction; it never
// moves back past its initial position.
func (v *Viewport) CanScroll(forward bool) bool {
	return forward || v.pos > 0
}

// Scroll moves the window by one row. Only the row leaving the window and
// the row entering it are repainted.
func (v *Viewport) Scroll(forward bool) {
	if !v.CanScroll(forward) {
		return
	}

	// Clear the edge row that is about to wrap around to the other side.
	if forward {
		if v.pos >= CurrentRow {
			past := v.pos - CurrentRow
			for id := range v.view {
				n := v.store.mustGet(id)
				if n.Start <= past && n.End() >= past {
					v.setCell(0, n, 0)
					if n.End() == past {
						delete(v.view, id)
					}
				}
			}
		}
	} else {
		future := v.pos + ahead
		for id := range v.view {
			n := v.store.mustGet(id)
			if n.Start <= future && n.End() >= future {
				v.setCell(lastRow, n, 0)
				if n.Start == future {
					delete(v.view, id)
				}
			}
		}
	}

	if forward {
		v.pos++
		v.offset++
	} else {
		v.pos--
		v.offset--
	}
	v.writeScroll()

	if forward {
		future := v.pos + ahead
		for id := range v.view {
			n := v.store.mustGet(id)
			switch {
			case n.End() > future:
				v.setCell(lastRow, n, CodeFill)
			case n.End() == future:
				v.setCell(lastRow, n, CodeFill|CodeEnd)
			}
		}
		for _, id := range v.store.ByStart(future) {
			n := v.store.mustGet(id)
			v.view[id] = struct{}{}
			code := uint8(CodeFill | CodeStart)
			if n.Duration == 1 {
				code = CodeSingle
			}
			v.setCell(lastRow, n, code)
		}
	} else if v.pos >= CurrentRow {
		past := v.pos - CurrentRow
		for id := range v.view {
			n := v.store.mustGet(id)
			switch {
			case n.Start < past:
				v.setCell(0, n, CodeFill)
			case n.Start == past:
				v.setCell(0, n, CodeFill|CodeStart)
			}
		}
		for _, id := range v.store.ByEnd(past) {
			n := v.store.mustGet(id)
			v.view[id] = struct{}{}
			code := uint8(CodeFill | CodeEnd)
			if n.Duration == 1 {
				code = CodeSingle
			}
			v.setCell(0, n, code)
		}
	}
}

// Position is the tick at the current row.
func (v *Viewport) Position() uint32 { return v.pos }

// Offset is the physical row of logical row 0.
func (v *Viewport) Offset() uint8 { return v.offset & (Rows - 1) }

// InView reports whether a note is in the view set.
func (v *Viewport) InView(id NoteID) bool {
	_, ok := v.view[id]
	return ok
}

// Members returns the view set in ID order.
func (v *Viewport) Members() []NoteID {
	ids := make([]NoteID, 0, len(v.view))
	for id := range v.view {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Tile returns the packed cell at a window row.
func (v *Viewport) Tile(row int, pitch uint8) uint32 {
	return v.tiles[v.addr(row, pitch)]
}

// Cell returns one instrument's code at a window row.
func (v *Viewport) Cell(row int, pitch, inst uint8) uint8 {
	return uint8(v.Tile(row, pitch) >> (uint(inst) * 3) & 7)
}
