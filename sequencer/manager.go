package sequencer

import (
	"context"
	"time"

	"hps-sequence/buttons"
	"hps-sequence/debug"
	"hps-sequence/h2f"
	"hps-sequence/keyboard"
)

// Bridge is the part of the peripheral the manager drives.
type Bridge interface {
	Display
	keyboard.LampWriter
	SetActiveOctave(v uint8)
	SetActiveInst(v uint8)
	Inputs() uint32
}

// Options configures a Manager. Zero values take the defaults.
type Options struct {
	Timing       Timing
	Buttons      buttons.Timing
	CounterBits  uint          // width of the hardware sample counter
	PollInterval time.Duration // sleep between cycles in Run, 0 = spin
	Octave       uint8
	Inst         uint8
}

// DefaultOptions matches the DE1-SoC peripheral.
func DefaultOptions() Options {
	return Options{
		Timing:      DefaultTiming,
		Buttons:     buttons.DefaultTiming,
		CounterBits: h2f.CountBits,
		Octave:      1,
	}
}

// Manager owns the control loop: it polls the inputs, keeps the time base,
// routes live keys to the keyboard lamps, handles octave and instrument
// selection, and feeds each cycle to the sequencer.
//
// The time base accumulates the difference between consecutive counter
// samples modulo the counter width. A gap of half the modulus or more
// between two polls (8192 ticks, about 170 ms, for a 14-bit counter at
// 48 kHz) cannot be told apart from a shorter one, so polls must come
// faster than that.
type Manager struct {
	hw       Bridge
	keyboard *keyboard.Keyboard
	buttons  *buttons.Buttons
	seq      *Sequencer
	opts     Options

	timeBase  uint32
	countMask uint16
	prevCount uint16
	polled    bool

	keys   uint16 // live keys as of the last poll
	octave uint8
	inst   uint8
}

// NewManager resets the peripheral and creates a stopped sequencer with an
// empty store.
func NewManager(hw Bridge, opts Options) *Manager {
	def := DefaultOptions()
	if opts.Timing == (Timing{}) {
		opts.Timing = def.Timing
	}
	if opts.Buttons == (buttons.Timing{}) {
		opts.Buttons = def.Buttons
	}
	if opts.CounterBits == 0 || opts.CounterBits > h2f.CountBits {
		opts.CounterBits = def.CounterBits
	}

	m := &Manager{
		hw:        hw,
		opts:      opts,
		countMask: uint16(1)<<opts.CounterBits - 1,
		octave:    opts.Octave,
		inst:      opts.Inst,
	}
	m.buttons = buttons.New(m, opts.Buttons)
	m.keyboard = keyboard.New(hw)
	m.seq = New(NewNoteStore(), hw, m.keyboard, opts.Timing)
	m.seq.Select(m.octave, m.inst)

	hw.SetActiveOctave(m.octave)
	hw.SetActiveInst(m.inst)
	return m
}

func (m *Manager) Keyboard() *keyboard.Keyboard { return m.keyboard }
func (m *Manager) Sequencer() *Sequencer        { return m.seq }
func (m *Manager) TimeBase() uint32             { return m.timeBase }
func (m *Manager) Octave() uint8                { return m.octave }
func (m *Manager) Inst() uint8                  { return m.inst }

// LoadPreset preloads a named note set. Unknown names load nothing.
func (m *Manager) LoadPreset(name string) bool {
	notes, ok := Presets[name]
	if !ok {
		return false
	}
	for _, n := range notes() {
		m.seq.AddNote(n)
	}
	debug.Log("manager", "loaded preset %q (%d notes)", name, m.seq.Store().Len())
	return true
}

// Run polls until ctx is cancelled, then stops playback.
func (m *Manager) Run(ctx context.Context) error {
	debug.Log("manager", "control loop started (poll interval %v)", m.opts.PollInterval)
	var tick <-chan time.Time
	if m.opts.PollInterval > 0 {
		t := time.NewTicker(m.opts.PollInterval)
		defer t.Stop()
		tick = t.C
	}

	for {
		if tick != nil {
			select {
			case <-ctx.Done():
				return m.stop(ctx)
			case <-tick:
			}
		} else if ctx.Err() != nil {
			return m.stop(ctx)
		}
		m.Poll()
	}
}

func (m *Manager) stop(ctx context.Context) error {
	m.seq.Update(Frame{Now: m.timeBase, Octave: m.octave, Inst: m.inst})
	debug.Log("manager", "control loop stopped at time base %d", m.timeBase)
	return ctx.Err()
}

// Poll runs one control cycle.
func (m *Manager) Poll() {
	in := h2f.DecodeInputs(m.hw.Inputs())

	count := in.Count & m.countMask
	if m.polled {
		delta := (count - m.prevCount) & m.countMask
		if delta > m.countMask/2 {
			debug.LogEvery(100, "manager", "poll lag: %d ticks between cycles", delta)
		}
		m.timeBase += uint32(delta)
	}
	m.prevCount, m.polled = count, true

	m.buttons.Update(^in.Buttons&h2f.ButtonsMask, m.timeBase)

	for key := range NumKeys {
		bit := uint16(1) << key
		if (m.keys^in.Keys)&bit != 0 {
			m.monitor(key, in.Keys&bit != 0)
		}
	}
	m.keys = in.Keys

	m.seq.Update(Frame{
		Now:    m.timeBase,
		Play:   in.Play,
		Record: in.Record,
		Keys:   in.Keys,
		Octave: m.octave,
		Inst:   m.inst,
	})
}

// monitor lights the key a live key plays under the current selection. On
// the drum register the first eight keys are drum voices.
func (m *Manager) monitor(key int, on bool) {
	if m.octave == DrumOctave {
		if key < NumDrums {
			m.keyboard.SetMonitor(DrumPitch, uint8(key), on)
		}
		return
	}
	m.keyboard.SetMonitor(NumKeys*m.octave+uint8(key), m.inst, on)
}

func (m *Manager) monitorHeld(on bool) {
	for key := range NumKeys {
		if m.keys&(1<<key) != 0 {
			m.monitor(key, on)
		}
	}
}

func (m *Manager) setOctave(octave uint8) {
	m.monitorHeld(false)
	m.octave = octave
	m.hw.SetActiveOctave(octave)
	m.seq.Select(m.octave, m.inst)
	m.monitorHeld(true)
}

func (m *Manager) setInst(inst uint8) {
	// Drum keys do not depend on the instrument.
	drum := m.octave == DrumOctave
	if !drum {
		m.monitorHeld(false)
	}
	m.inst = inst
	m.hw.SetActiveInst(inst)
	m.seq.Select(m.octave, m.inst)
	if !drum {
		m.monitorHeld(true)
	}
}

// ShiftOctave selects the next or previous octave, wrapping through the
// drum register.
func (m *Manager) ShiftOctave(up bool) {
	if m.seq.ShouldLockView() {
		return
	}
	if up {
		m.setOctave((m.octave + 1) % NumOctaves)
	} else {
		m.setOctave((m.octave + NumOctaves - 1) % NumOctaves)
	}
}

// ShiftInst selects the next or previous instrument, wrapping around.
func (m *Manager) ShiftInst(up bool) {
	if m.seq.ShouldLockView() {
		return
	}
	if up {
		m.setInst((m.inst + 1) % NumInsts)
	} else {
		m.setInst((m.inst + NumInsts - 1) % NumInsts)
	}
}

// ScrollScreen moves the window by one row.
func (m *Manager) ScrollScreen(forward bool) {
	if m.seq.ShouldLockView() {
		return
	}
	m.seq.Scroll(forward)
}
