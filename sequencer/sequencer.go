package sequencer

// Illuminator receives the sequenced-playback layer of the key lamps.
type Illuminator interface {
	SetSequencer(pitch, inst uint8, on bool)
	ClearSequencer()
}

// Frame is everything the sequencer needs from one control cycle.
type Frame struct {
	Now    uint32 // time base, in counter ticks
	Play   bool
	Record bool
	Keys   uint16 // live keys, bit set = held
	Octave uint8
	Inst   uint8
}

// Timing sets the grid resolution in counter ticks.
type Timing struct {
	Subdivision uint32 // ticks per row
	SubrowSteps uint32 // smooth-scroll positions within a row
}

// DefaultTiming is 16th notes at 150 BPM on a 48 kHz counter.
var DefaultTiming = Timing{Subdivision: 4800, SubrowSteps: 15}

// Sequencer plays the notes under the current row and records live keys
// into the store while the transport runs. Rows advance once per
// Subdivision ticks of the time base.
type Sequencer struct {
	store  *NoteStore
	view   *Viewport
	out    Display
	lamps  Illuminator
	timing Timing

	playing   bool
	recording bool
	octave    uint8
	inst      uint8

	boundary     uint32 // time base of the last row boundary
	lastKeys     uint16
	everPressed  uint16 // since the last boundary
	everReleased uint16
	slots        [NumKeys]NoteID // note being recorded per channel
}

// New creates a stopped sequencer over store and resets the display.
func New(store *NoteStore, out Display, lamps Illuminator, timing Timing) *Sequencer {
	if timing.Subdivision == 0 {
		timing.Subdivision = DefaultTiming.Subdivision
	}
	if timing.SubrowSteps == 0 {
		timing.SubrowSteps = DefaultTiming.SubrowSteps
	}
	out.SetSubtileScroll(0)
	return &Sequencer{
		store:  store,
		view:   NewViewport(store, out),
		out:    out,
		lamps:  lamps,
		timing: timing,
	}
}

func (s *Sequencer) Store() *NoteStore       { return s.store }
func (s *Sequencer) Viewport() *Viewport     { return s.view }
func (s *Sequencer) Playing() bool           { return s.playing }
func (s *Sequencer) Recording() bool         { return s.recording }
func (s *Sequencer) Slot(channel int) NoteID { return s.slots[channel] }

// ShouldLockView reports whether a take is in progress. Selection changes
// and manual scrolling must wait until it ends.
func (s *Sequencer) ShouldLockView() bool {
	return s.playing && s.recording
}

// Select sets the active octave and instrument.
func (s *Sequencer) Select(octave, inst uint8) {
	s.octave, s.inst = octave, inst
}

// AddNote stores a note and draws it if it is on screen.
func (s *Sequencer) AddNote(n Note) NoteID {
	id := s.store.Insert(n)
	s.view.Draw(id)
	return id
}

func (s *Sequencer) removeNote(id NoteID) {
	s.view.Erase(id)
	s.store.Remove(id)
}

func (s *Sequencer) extendNote(id NoteID) NoteID {
	s.view.Erase(id)
	id = s.store.Extend(id)
	s.view.Draw(id)
	return id
}

// Update runs one control cycle.
func (s *Sequencer) Update(f Frame) {
	s.Select(f.Octave, f.Inst)
	if !f.Play {
		if s.playing {
			s.out.SetSubtileScroll(0)
			s.lamps.ClearSequencer()
		}
		s.playing, s.recording = false, false
		return
	}

	if (!s.playing || !s.recording) && f.Record {
		s.everPressed, s.everReleased = 0, 0
		s.slots = [NumKeys]NoteID{}
	}
	s.recording = f.Record
	s.lastKeys = f.Keys
	s.everPressed |= f.Keys
	s.everReleased |= ^f.Keys

	if !s.playing {
		s.playing = true
		s.boundary = f.Now
		s.playNotesStart()
	}

	// Lagged cycles consume every crossed boundary in order.
	elapsed := f.Now - s.boundary
	for elapsed >= s.timing.Subdivision {
		elapsed -= s.timing.Subdivision
		s.boundary += s.timing.Subdivision
		s.Scroll(true)
		s.everPressed, s.everReleased = 0, 0
	}
	s.out.SetSubtileScroll(uint8(uint64(elapsed) * uint64(s.timing.SubrowSteps) / uint64(s.timing.Subdivision)))
}

// Scroll moves the window one row. While playing it also triggers the
// notes crossing the current row, and while recording it first commits the
// row about to close.
func (s *Sequencer) Scroll(forward bool) {
	if !s.view.CanScroll(forward) {
		return
	}
	if s.playing {
		if forward {
			s.playNotesEnd()
		} else {
			s.lamps.ClearSequencer()
		}
		if s.recording {
			s.writeRecordedNotes()
		}
	}
	s.view.Scroll(forward)
	if forward && s.playing {
		s.playNotesStart()
	}
}

func (s *Sequencer) playNotesStart() {
	for _, id := range s.store.ByStart(s.view.Position()) {
		n := s.store.mustGet(id)
		if !s.inRecordingRange(n) {
			s.lamps.SetSequencer(n.Pitch, n.Inst, true)
		}
	}
}

func (s *Sequencer) playNotesEnd() {
	for _, id := range s.store.ByEnd(s.view.Position()) {
		n := s.store.mustGet(id)
		s.lamps.SetSequencer(n.Pitch, n.Inst, false)
	}
}

// InRecordingRange reports whether live keys currently own n.
func (s *Sequencer) InRecordingRange(n Note) bool {
	return s.inRecordingRange(n)
}

func (s *Sequencer) inRecordingRange(n Note) bool {
	if !s.recording || n.Octave() != s.octave {
		return false
	}
	return s.octave == DrumOctave || n.Inst == s.inst
}

// writeRecordedNotes commits the live key state to the row that is about
// to reach the current row.
func (s *Sequencer) writeRecordedNotes() {
	col := s.view.Position() + 1

	// Whatever the keys say replaces what was recorded here before.
	for _, id := range s.view.Members() {
		n := s.store.mustGet(id)
		if n.Start <= col && n.End() >= col && s.inRecordingRange(n) {
			s.lamps.SetSequencer(n.Pitch, n.Inst, false)
			for c := range s.slots {
				if s.slots[c] == id {
					s.slots[c] = 0
				}
			}
			s.removeNote(id)
		}
	}

	drum := s.octave == DrumOctave
	channels := NumKeys
	if drum {
		channels = NumDrums
	}
	for c := range channels {
		bit := uint16(1) << c
		pressed := s.everPressed&bit != 0
		released := s.everReleased&bit != 0
		current := s.lastKeys&bit != 0

		open := s.slots[c] != 0
		if open && !released {
			s.slots[c] = s.extendNote(s.slots[c])
			continue
		}
		if open {
			s.slots[c] = 0
			if !current {
				continue
			}
		} else if !pressed {
			continue
		}

		n := Note{Start: col, Duration: 1, Pitch: uint8(c) + NumKeys*s.octave, Inst: s.inst}
		if drum {
			n.Pitch, n.Inst = DrumPitch, uint8(c)
		}
		id := s.AddNote(n)
		if current {
			s.slots[c] = id
		}
	}
}
