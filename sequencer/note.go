package sequencer

import "github.com/pkg/errors"

// Instrument geometry.
const (
	NumPitches = 49 // C0..C4 plus the drum register
	NumInsts   = 8
	NumKeys    = 12 // live keys, one octave
	NumDrums   = 8  // drum voices on the drum register
	NumOctaves = 5
	DrumOctave = 4  // octave selector of the drum register
	DrumPitch  = 48 // the single pitch of the drum register
)

// NoteID names a note held by a NoteStore. IDs are never reused; extending
// or removing a note retires its ID. The zero value means no note.
type NoteID uint32

// Note is one event on the piano roll, in subdivision ticks.
type Note struct {
	Start    uint32
	Duration uint32 // at least 1
	Pitch    uint8  // 0..48, 48 = drum register
	Inst     uint8  // instrument, or drum voice on the drum register
}

// End is the last tick the note occupies.
func (n Note) End() uint32 { return n.Start + n.Duration - 1 }

// Octave is the octave selector the note belongs to.
func (n Note) Octave() uint8 { return n.Pitch / NumKeys }

func (n Note) validate() {
	if n.Duration == 0 {
		panic(errors.Errorf("sequencer: note at %d has zero duration", n.Start))
	}
	if n.Pitch >= NumPitches || n.Inst >= NumInsts {
		panic(errors.Errorf("sequencer: note pitch %d inst %d out of range", n.Pitch, n.Inst))
	}
}
