package sequencer

import "sort"

// Instruments of the peripheral's synth.
const (
	instLead   = 0
	instPad    = 1
	instBass   = 2
	instSquare = 3
)

// Drum voices on the drum register.
const (
	drumKick  = 0
	drumSnare = 4
	drumHat   = 5
)

// Presets maps the startup selector to the notes it preloads.
var Presets = map[string]func() []Note{
	"drum": DrumLoop,
	"demo": DemoSong,
}

// PresetNames returns the preset selectors in order.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type song []Note

func (s *song) add(start, dur uint32, pitch, inst uint8) {
	*s = append(*s, Note{Start: start, Duration: dur, Pitch: pitch, Inst: inst})
}

func (s *song) drum(start uint32, voice uint8) {
	s.add(start, 1, DrumPitch, voice)
}

// DrumLoop is 16 bars of kick, hat, snare, hat on every second row.
func DrumLoop() []Note {
	var s song
	for bar := range uint32(16) {
		s.drum(bar*8+0, drumKick)
		s.drum(bar*8+2, drumHat)
		s.drum(bar*8+4, drumSnare)
		s.drum(bar*8+6, drumHat)
	}
	return s
}

// sweep is one step of the intro: low, rest, high, low.
func (s *song) sweep(start uint32, p1, p2 uint8) {
	s.add(start+0, 1, p1, instSquare)
	s.add(start+2, 1, p2, instSquare)
	s.add(start+3, 1, p1, instSquare)
}

// kickBass is a bar of hats, kicks and offbeat bass. Without resolve the
// last bass note drops a whole tone.
func (s *song) kickBass(start uint32, pitch uint8, resolve bool) {
	for i := range uint32(4) {
		s.drum(start+i*4+0, drumHat)
		s.drum(start+i*4+2, drumHat)
		s.drum(start+i*4+0, drumKick)
		bass := pitch
		if i == 3 && !resolve {
			bass -= 2
		}
		s.add(start+i*4+2, 2, bass, instBass)
	}
}

// arp plays root, fifth, octave and twelfth once, or twice with twice set.
func (s *song) arp(start uint32, pitch uint8, twice bool) {
	reps := uint32(1)
	if twice {
		reps = 2
	}
	for i := range reps {
		for j, step := range []uint8{0, 7, 12, 19} {
			s.add(start+i*4+uint32(j), 1, pitch+step, instPad)
		}
	}
}

// run plays one pad note per row.
func (s *song) run(start uint32, pitches ...uint8) {
	for i, p := range pitches {
		s.add(start+uint32(i), 1, p, instPad)
	}
}

// melody plays lead notes back to back.
func (s *song) melody(start uint32, inst uint8, notes ...[2]uint8) {
	for _, n := range notes {
		s.add(start, uint32(n[0]), n[1], inst)
		start += uint32(n[0])
	}
}

// doubled plays a lead note with a square blip on its first row.
func (s *song) doubled(start, dur uint32, pitch uint8) {
	s.add(start, dur, pitch, instLead)
	s.add(start, 1, pitch, instSquare)
}

// stab is the verse two ending chord.
func (s *song) stab(start, dur uint32) {
	s.add(start, dur, 12+4, instBass)
	s.add(start, dur, 12+11, instPad)
	s.add(start, dur, 24+4, instPad)
	s.add(start, dur, 24+8, instPad)
}

// DemoSong is the built-in demo: an intro sweep over a held chord, three
// verse loops with arpeggios and melodies, and an ending.
func DemoSong() []Note {
	var s song

	// Intro
	steps := []uint8{24 + 9, 24 + 4, 24 + 0, 12 + 9, 12 + 4, 12 + 0, 0 + 9, 0 + 4}
	for i := range 7 {
		s.sweep(uint32(i)*4, steps[i], steps[i+1])
	}
	s.add(28, 1, 4, instSquare)
	s.add(30, 1, 7, instSquare)

	s.add(0, 32, 12+9, instPad)
	s.add(0, 32, 12+4, instPad)

	s.add(24, 4, 24, instBass)
	s.add(25, 4, 0, instBass)
	s.add(30, 1, 12+2, instBass)
	s.add(31, 1, 12+4, instBass)

	for i := range uint32(8) {
		s.drum(16+i*2, drumHat)
	}
	for i := range uint32(4) {
		s.drum(24+i, uint8(3-i))
		s.drum(28+i, drumSnare)
		s.drum(28+i, drumKick)
	}

	// Verse 1
	s.kickBass(32, 12+5, true)
	s.kickBass(48, 12+7, true)
	s.kickBass(64, 12+9, true)
	s.kickBass(80, 12+9, false)
	s.drum(93, drumKick)
	s.drum(94, drumKick)
	s.drum(94, drumSnare)
	s.drum(95, drumKick)
	s.drum(95, drumSnare)

	s.arp(32, 5, true)
	s.arp(48, 7, true)
	s.arp(64, 9, true)
	s.arp(80, 9, true)
	s.arp(92, 7, false)

	s.add(38, 8, 24+5, instLead)
	s.melody(32, instLead,
		[2]uint8{2, 12 + 9}, [2]uint8{4, 24 + 0}, [2]uint8{8, 24 + 9},
		[2]uint8{1, 24 + 7}, [2]uint8{1, 24 + 9}, [2]uint8{3, 24 + 11},
		[2]uint8{1, 24 + 9}, [2]uint8{2, 24 + 7}, [2]uint8{2, 24 + 4},
		[2]uint8{2, 24 + 2}, [2]uint8{2, 24 + 4}, [2]uint8{2, 24 + 7},
		[2]uint8{2, 24 + 2}, [2]uint8{2, 24 + 4}, [2]uint8{4, 24 + 9},
		[2]uint8{2, 24 + 9}, [2]uint8{6, 24 + 0})
	s.melody(78, instSquare,
		[2]uint8{1, 24 + 0}, [2]uint8{1, 24 + 2}, [2]uint8{1, 24 + 4})
	s.add(82, 1, 24+9, instSquare)
	s.add(86, 1, 24+9, instSquare)
	s.add(88, 1, 24+0, instSquare)
	s.add(92, 1, 12+11, instSquare)

	// Verse 2
	s.kickBass(96, 12+5, true)
	s.kickBass(112, 12+7, true)
	s.kickBass(128, 12+0, true)

	s.arp(96, 5, true)
	s.arp(112, 7, true)
	s.run(128,
		12+0, 12+4, 12+7, 24+0,
		12+4, 12+7, 24+0, 24+4,
		12+7, 24+0, 24+4, 24+7,
		36+0, 24+7, 24+4, 24+7)

	for _, at := range []uint32{0, 2, 3, 4} {
		s.stab(144+at, 1)
	}
	s.stab(150, 10)
	s.add(156, 4, 4, instBass)
	for i := range uint32(4) {
		s.drum(144+i, uint8(3-i))
	}
	s.drum(148, drumKick)
	s.drum(148, drumSnare)
	s.drum(150, drumKick)
	s.drum(150, drumSnare)
	s.drum(152, drumHat)
	s.drum(154, drumHat)
	for i := uint32(1); i <= 4; i++ {
		s.drum(160-i, drumKick)
		if i <= 2 {
			s.drum(160-i, drumSnare)
		}
	}

	s.add(102, 8, 24+5, instLead)
	s.melody(96, instLead,
		[2]uint8{2, 12 + 9}, [2]uint8{4, 24 + 0}, [2]uint8{8, 24 + 9},
		[2]uint8{1, 24 + 7}, [2]uint8{1, 24 + 9}, [2]uint8{3, 24 + 7},
		[2]uint8{1, 24 + 4}, [2]uint8{2, 24 + 2}, [2]uint8{2, 24 + 0},
		[2]uint8{2, 24 + 2}, [2]uint8{2, 24 + 4}, [2]uint8{2, 24 + 7},
		[2]uint8{2, 24 + 2}, [2]uint8{2, 24 + 4}, [2]uint8{4, 24 + 2},
		[2]uint8{10, 24 + 4})

	// Verse 3
	for i, p := range []uint8{12 + 5, 12 + 7, 12 + 9, 12 + 2, 12 + 5, 12 + 7} {
		s.kickBass(160+uint32(i)*16, p, true)
	}

	s.arp(160, 5, true)
	s.arp(176, 7, true)
	s.arp(192, 9, true)
	s.arp(224, 5, true)
	s.arp(240, 7, true)
	s.arp(232, 12+5, true)
	s.arp(248, 12+7, true)
	s.run(208,
		0+2, 0+6, 0+9, 12+2,
		0+6, 0+9, 12+2, 12+6,
		0+9, 12+2, 12+6, 12+9,
		24+2, 24+6, 24+9, 36+2)

	// lead rows from 156: {duration, pitch}
	verse3 := [][2]uint8{
		{2, 24 + 2}, {2, 24 + 0}, {2, 24 + 0}, {4, 12 + 9}, {8, 24 + 9},
		{1, 24 + 7}, {1, 24 + 9}, {2, 24 + 7}, {1, 24 + 2}, {1, 24 + 4},
		{2, 24 + 2}, {1, 24 + 0}, {1, 24 + 2}, {1, 24 + 4}, {1, 24 + 2},
		{1, 24 + 0}, {1, 24 + 2}, {1, 24 + 2}, {1, 24 + 4}, {1, 24 + 7},
		{1, 24 + 2}, {10, 24 + 4}, {2, 24 + 2}, {4, 24 + 0}, {10, 24 + 9},
		{2, 24 + 11}, {4, 36 + 0}, {16, 24 + 9}, {4, 24 + 7}, {4, 24 + 4},
		{4, 24 + 2}, {4, 24 + 7}, {6, 24 + 1}, {2, 24 + 9}, {24, 24 + 9},
	}
	at := uint32(156)
	for _, n := range verse3 {
		s.doubled(at, uint32(n[0]), n[1])
		at += uint32(n[0])
	}

	// Ending
	s.drum(256, drumKick)
	s.add(256, 32, 9, instBass)
	s.add(256, 6, 12+9, instPad)
	s.add(262, 26, 12+4, instPad)

	return s
}
