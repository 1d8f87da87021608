package h2f

import (
	"sync"
	"time"
)

// SampleRate of the peripheral's free-running counter.
const SampleRate = 48000

// Sim emulates the peripheral in memory. Register writes are decoded into
// tile memory, key lamps and selector state the same way the hardware
// consumes them, and the input word is synthesized from a clock plus
// whatever transport, key and button state the front-end sets.
type Sim struct {
	RegFile

	mu    sync.Mutex
	now   func() time.Time
	start time.Time

	play    bool
	record  bool
	keys    uint16
	held    [4]bool
	pressed [4]time.Time // buttons held until this instant
	source  func() uint16

	state Snapshot
}

// Snapshot is the decoded peripheral state.
type Snapshot struct {
	Tiles   [TileCount]uint32
	Lamps   [Keys]uint8
	Offset  uint8 // tile row offset
	Addr    uint16
	Subtile uint8
	Grid    uint8
	Octave  uint8
	Inst    uint8
	Writes  int // tile data writes since start

	Play   bool
	Record bool
	Keys   uint16
}

// NewSim creates an emulated bridge. A nil clock uses time.Now.
func NewSim(clock func() time.Time) *Sim {
	if clock == nil {
		clock = time.Now
	}
	s := &Sim{now: clock}
	s.start = clock()
	s.RegFile = NewRegFile(s.decode)
	return s
}

func (s *Sim) decode(word int, v uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := &s.state
	switch word {
	case WordControl:
		st.Subtile = uint8(v & 0xF)
		st.Grid = uint8(v >> 4 & 0xF)
		st.Octave = uint8(v >> 8 & 0x7)
		st.Inst = uint8(v >> 11 & 0x7)
		if key := v >> 14 & 0x3F; key < Keys {
			st.Lamps[key] = uint8(v >> 20)
		}
	case WordTile:
		st.Offset = uint8(v & 0x3F)
		st.Addr = uint16(v >> 6 & 0xFFF)
	case WordData:
		if int(st.Addr) < TileCount {
			st.Tiles[st.Addr] = v & 0xFFFFFF
		}
		st.Writes++
	}
}

// Inputs synthesizes the input word.
func (s *Sim) Inputs() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	d := now.Sub(s.start)
	ticks := uint64(d/time.Second)*SampleRate + uint64(d%time.Second)*SampleRate/uint64(time.Second)

	in := Inputs{
		Buttons: ButtonsMask,
		Play:    s.play,
		Record:  s.record,
		Keys:    s.keys,
		Count:   uint16(ticks & (1<<CountBits - 1)),
	}
	if s.source != nil {
		in.Keys |= s.source()
	}
	for i := range s.held {
		if s.held[i] || now.Before(s.pressed[i]) {
			in.Buttons &^= 1 << i // active-low
		}
	}
	return in.Encode()
}

func (s *Sim) Close() error { return nil }

func (s *Sim) TogglePlay() {
	s.mu.Lock()
	s.play = !s.play
	s.mu.Unlock()
}

func (s *Sim) ToggleRecord() {
	s.mu.Lock()
	s.record = !s.record
	s.mu.Unlock()
}

// SetTransport sets both transport switches.
func (s *Sim) SetTransport(play, record bool) {
	s.mu.Lock()
	s.play, s.record = play, record
	s.mu.Unlock()
}

// ToggleKey flips the held state of one of the 12 live keys.
func (s *Sim) ToggleKey(key int) {
	if key < 0 || key >= 12 {
		return
	}
	s.mu.Lock()
	s.keys ^= 1 << key
	s.mu.Unlock()
}

// SetKeys replaces the held key mask.
func (s *Sim) SetKeys(mask uint16) {
	s.mu.Lock()
	s.keys = mask & KeysMask
	s.mu.Unlock()
}

// SetKeySource ORs an external key mask (a MIDI keyboard) into the inputs.
func (s *Sim) SetKeySource(fn func() uint16) {
	s.mu.Lock()
	s.source = fn
	s.mu.Unlock()
}

// PressButton holds KEY[i] for d.
func (s *Sim) PressButton(i int, d time.Duration) {
	if i < 0 || i >= 4 {
		return
	}
	s.mu.Lock()
	s.pressed[i] = s.now().Add(d)
	s.mu.Unlock()
}

// HoldButton holds or releases KEY[i] until changed again.
func (s *Sim) HoldButton(i int, down bool) {
	if i < 0 || i >= 4 {
		return
	}
	s.mu.Lock()
	s.held[i] = down
	s.mu.Unlock()
}

// Snapshot returns a copy of the decoded state.
func (s *Sim) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.state
	snap.Play = s.play
	snap.Record = s.record
	snap.Keys = s.keys
	return snap
}

// Cell returns the packed code shown at a logical row, undoing the tile
// row offset the way the display scanout does.
func (snap *Snapshot) Cell(row, pitch int) uint32 {
	phys := (row + int(snap.Offset)) & (Rows - 1)
	return snap.Tiles[phys*Pitches+pitch]
}
