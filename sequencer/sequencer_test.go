package sequencer

import (
	"testing"
)

type lampEvent struct {
	pitch, inst uint8
	on          bool
}

type fakeLamps struct {
	events []lampEvent
	lit    map[[2]uint8]bool
	clears int
}

func (l *fakeLamps) SetSequencer(pitch, inst uint8, on bool) {
	l.events = append(l.events, lampEvent{pitch, inst, on})
	if l.lit == nil {
		l.lit = make(map[[2]uint8]bool)
	}
	if on {
		l.lit[[2]uint8{pitch, inst}] = true
	} else {
		delete(l.lit, [2]uint8{pitch, inst})
	}
}

func (l *fakeLamps) ClearSequencer() {
	l.clears++
	clear(l.lit)
}

const sub = 4800

func newTestSequencer() (*Sequencer, *fakeDisplay, *fakeLamps) {
	d := &fakeDisplay{}
	l := &fakeLamps{}
	return New(NewNoteStore(), d, l, DefaultTiming), d, l
}

func notes(s *Sequencer) []Note {
	var out []Note
	for _, n := range s.Store().All() {
		out = append(out, n)
	}
	return out
}

func TestPlaybackTriggersNotes(t *testing.T) {
	s, _, l := newTestSequencer()
	s.AddNote(Note{Start: 0, Duration: 2, Pitch: 14, Inst: 1})
	s.AddNote(Note{Start: 1, Duration: 1, Pitch: 48, Inst: 4})

	s.Update(Frame{Now: 1000, Play: true})
	if !l.lit[[2]uint8{14, 1}] {
		t.Fatal("note at the current row not lit on play")
	}

	s.Update(Frame{Now: 1000 + sub, Play: true})
	if !l.lit[[2]uint8{14, 1}] || !l.lit[[2]uint8{48, 4}] {
		t.Fatalf("after one row: lit = %v", l.lit)
	}

	s.Update(Frame{Now: 1000 + 2*sub, Play: true})
	if len(l.lit) != 0 {
		t.Errorf("after two rows: lit = %v", l.lit)
	}
	if s.Viewport().Position() != 2 {
		t.Errorf("pos = %d, want 2", s.Viewport().Position())
	}
}

func TestCatchUpAndSubrow(t *testing.T) {
	s, d, _ := newTestSequencer()
	s.Update(Frame{Now: 0, Play: true})
	s.Update(Frame{Now: 3*sub + sub/2, Play: true})

	if s.Viewport().Position() != 3 {
		t.Errorf("pos = %d, want 3", s.Viewport().Position())
	}
	if d.subtile != 7 {
		t.Errorf("subtile = %d, want 7", d.subtile)
	}
}

func TestTimeBaseWrapAround(t *testing.T) {
	s, _, _ := newTestSequencer()
	start := uint32(1<<32 - 100)
	s.Update(Frame{Now: start, Play: true})
	s.Update(Frame{Now: start + sub, Play: true}) // wraps past zero
	if s.Viewport().Position() != 1 {
		t.Errorf("pos = %d, want 1", s.Viewport().Position())
	}
}

func TestStopClearsIndicators(t *testing.T) {
	s, d, l := newTestSequencer()
	s.AddNote(Note{Start: 0, Duration: 4, Pitch: 2})
	s.Update(Frame{Now: 0, Play: true})
	s.Update(Frame{Now: sub / 2, Play: true})
	if d.subtile == 0 {
		t.Fatal("no sub-row scroll while playing")
	}

	s.Update(Frame{Now: sub / 2, Play: false})
	if d.subtile != 0 || l.clears != 1 || len(l.lit) != 0 {
		t.Errorf("subtile = %d clears = %d lit = %v", d.subtile, l.clears, l.lit)
	}
	if s.Playing() {
		t.Error("still playing")
	}

	// already stopped: nothing to clear
	s.Update(Frame{Now: sub, Play: false})
	if l.clears != 1 {
		t.Errorf("clears = %d, want 1", l.clears)
	}
}

func TestManualScrollWhilePlaying(t *testing.T) {
	s, _, l := newTestSequencer()
	s.AddNote(Note{Start: 1, Duration: 1, Pitch: 5})
	s.Update(Frame{Now: 0, Play: true})

	s.Scroll(true)
	if !l.lit[[2]uint8{5, 0}] {
		t.Fatal("forward scroll did not trigger the note")
	}
	s.Scroll(false)
	if l.clears != 1 || len(l.lit) != 0 {
		t.Errorf("backward scroll: clears = %d lit = %v", l.clears, l.lit)
	}
	s.Scroll(false) // at 0 already
	if l.clears != 1 {
		t.Error("refused scroll still cleared the lamps")
	}
}

func TestShouldLockView(t *testing.T) {
	s, _, _ := newTestSequencer()
	if s.ShouldLockView() {
		t.Error("locked while stopped")
	}
	s.Update(Frame{Play: false, Record: true})
	if s.ShouldLockView() {
		t.Error("locked while armed but stopped")
	}
	s.Update(Frame{Play: true})
	if s.ShouldLockView() {
		t.Error("locked while only playing")
	}
	s.Update(Frame{Play: true, Record: true})
	if !s.ShouldLockView() {
		t.Error("not locked while recording")
	}
}

func TestRecordingRange(t *testing.T) {
	s, _, _ := newTestSequencer()
	s.Update(Frame{Play: true, Record: true, Octave: 2, Inst: 3})

	if !s.InRecordingRange(Note{Pitch: 30, Inst: 3, Duration: 1}) {
		t.Error("pitch 30 inst 3 not in range")
	}
	if s.InRecordingRange(Note{Pitch: 30, Inst: 4, Duration: 1}) {
		t.Error("pitch 30 inst 4 in range")
	}
	if s.InRecordingRange(Note{Pitch: 18, Inst: 3, Duration: 1}) {
		t.Error("other octave in range")
	}

	s.Update(Frame{Play: true, Record: true, Octave: DrumOctave, Inst: 0})
	if !s.InRecordingRange(Note{Pitch: DrumPitch, Inst: 5, Duration: 1}) {
		t.Error("drum voice not in range on the drum register")
	}

	s.Update(Frame{Play: true, Record: false, Octave: 2, Inst: 3})
	if s.InRecordingRange(Note{Pitch: 30, Inst: 3, Duration: 1}) {
		t.Error("in range while not recording")
	}
}

// recorder drives a sequencer through whole control cycles.
type recorder struct {
	s      *Sequencer
	now    uint32
	octave uint8
	inst   uint8
}

func (r *recorder) cycle(keys uint16) {
	r.s.Update(Frame{Now: r.now, Play: true, Record: true, Keys: keys, Octave: r.octave, Inst: r.inst})
}

// at runs a cycle at an offset into the current row.
func (r *recorder) at(offset uint32, keys uint16) {
	r.now = r.now/sub*sub + offset
	r.cycle(keys)
}

// boundary runs the cycle that crosses into the next row.
func (r *recorder) boundary(keys uint16) {
	r.now = (r.now/sub + 1) * sub
	r.cycle(keys)
}

func TestRecordShortKeystroke(t *testing.T) {
	s, d, _ := newTestSequencer()
	r := &recorder{s: s, octave: 1, inst: 2}
	r.at(0, 0)
	r.at(100, 1<<3)
	r.at(200, 0)
	r.boundary(0)

	got := notes(s)
	want := Note{Start: 1, Duration: 1, Pitch: 12 + 3, Inst: 2}
	if len(got) != 1 || got[0] != want {
		t.Fatalf("notes = %+v, want [%+v]", got, want)
	}
	if s.Slot(3) != 0 {
		t.Error("short keystroke left its channel open")
	}
	// pos is now 1, so the note sits on the current row
	if c := d.cell(CurrentRow, 15, 2); c != CodeSingle {
		t.Errorf("cell = %d, want %d", c, CodeSingle)
	}
}

func TestRecordHeldKeyExtends(t *testing.T) {
	s, _, _ := newTestSequencer()
	r := &recorder{s: s, octave: 0, inst: 6}
	r.at(0, 0)
	r.at(100, 1<<0)
	r.boundary(1 << 0)

	id := s.Slot(0)
	if id == 0 {
		t.Fatal("held key has no open note")
	}
	for dur := uint32(2); dur <= 5; dur++ {
		r.at(10, 1<<0)
		r.boundary(1 << 0)

		next := s.Slot(0)
		if next == id {
			t.Fatalf("duration %d: slot kept the old ID", dur)
		}
		if _, ok := s.Store().Get(id); ok {
			t.Fatalf("duration %d: old ID %d still in the store", dur, id)
		}
		n, ok := s.Store().Get(next)
		if !ok || n.Duration != dur || n.Start != 1 {
			t.Fatalf("duration %d: note = %+v, %v", dur, n, ok)
		}
		id = next
	}

	r.at(50, 0)
	r.boundary(0)
	if s.Slot(0) != 0 {
		t.Error("released key still open")
	}
	got := notes(s)
	want := Note{Start: 1, Duration: 5, Pitch: 0, Inst: 6}
	if len(got) != 1 || got[0] != want {
		t.Errorf("notes = %+v, want [%+v]", got, want)
	}
}

func TestRecordRetrigger(t *testing.T) {
	s, _, _ := newTestSequencer()
	r := &recorder{s: s, octave: 1}
	r.at(0, 1<<4)
	r.boundary(1 << 4) // opens at 1
	r.at(100, 0)
	r.at(200, 1<<4) // released and pressed again within the row
	r.boundary(1 << 4)

	got := notes(s)
	if len(got) != 2 {
		t.Fatalf("notes = %+v, want two", got)
	}
	if got[0].Start != 1 || got[0].Duration != 1 || got[1].Start != 2 || got[1].Duration != 1 {
		t.Errorf("notes = %+v", got)
	}
	if n, _ := s.Store().Get(s.Slot(4)); n.Start != 2 {
		t.Errorf("slot holds %+v, want the re-triggered note", n)
	}
}

func TestRecordDrums(t *testing.T) {
	s, _, _ := newTestSequencer()
	r := &recorder{s: s, octave: DrumOctave, inst: 3}
	r.at(0, 0)
	r.at(100, 1<<2|1<<9) // key 9 has no drum voice
	r.at(200, 0)
	r.boundary(0)

	got := notes(s)
	want := Note{Start: 1, Duration: 1, Pitch: DrumPitch, Inst: 2}
	if len(got) != 1 || got[0] != want {
		t.Errorf("notes = %+v, want [%+v]", got, want)
	}
}

func TestRecordingSupersedesRange(t *testing.T) {
	s, _, l := newTestSequencer()
	mine := s.AddNote(Note{Start: 0, Duration: 4, Pitch: 12 + 7, Inst: 1})
	other := s.AddNote(Note{Start: 0, Duration: 4, Pitch: 12 + 7, Inst: 2})
	later := s.AddNote(Note{Start: 3, Duration: 1, Pitch: 12 + 7, Inst: 1})

	r := &recorder{s: s, octave: 1, inst: 1}
	r.at(0, 0)
	if l.lit[[2]uint8{19, 1}] {
		t.Error("note in the recording range was triggered")
	}
	if !l.lit[[2]uint8{19, 2}] {
		t.Error("other instrument not triggered")
	}

	r.boundary(0)
	if _, ok := s.Store().Get(mine); ok {
		t.Error("note covering the recorded row survived")
	}
	if _, ok := s.Store().Get(other); !ok {
		t.Error("other instrument was removed")
	}
	if _, ok := s.Store().Get(later); !ok {
		t.Error("note after the recorded row was removed")
	}
	if s.Viewport().InView(mine) {
		t.Error("removed note still in view")
	}
}

func TestRecordArmResetsSlots(t *testing.T) {
	s, _, _ := newTestSequencer()
	r := &recorder{s: s, octave: 1}
	r.at(0, 1<<1)
	r.boundary(1 << 1)
	if s.Slot(1) == 0 {
		t.Fatal("no open note")
	}

	// Dropping out of record and back in starts a fresh take.
	s.Update(Frame{Now: r.now + 10, Play: true, Keys: 1 << 1, Octave: 1})
	r.at(20, 1<<1)
	if s.Slot(1) != 0 {
		t.Error("slot survived re-arming")
	}
}
