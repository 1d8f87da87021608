// Package midi is the optional MIDI side channel: it mirrors sequenced
// playback to a synth and reads a MIDI keyboard as live keys.
package midi

import (
	"sync"

	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"

	"hps-sequence/debug"
)

// Note mapping of the mirror.
const (
	BaseNote     = 36 // MIDI note of pitch 0
	DrumPitch    = 48 // the drum register
	DrumChannel  = 9  // channel 10
	NoteVelocity = 100
)

// Mirror sends sequenced playback as MIDI notes. Melodic notes play on the
// channel of their instrument; drum voices play on channel 10 through a kit.
type Mirror struct {
	send func(gomidi.Message) error
	kit  DrumKit

	mu     sync.Mutex
	held   map[[2]uint8]bool // sounding (channel, note) pairs
	failed bool
}

// NewMirror creates a mirror over a send function.
func NewMirror(send func(gomidi.Message) error, kit DrumKit) *Mirror {
	return &Mirror{send: send, kit: kit, held: make(map[[2]uint8]bool)}
}

// OpenMirror opens the named output port.
func OpenMirror(port string, kit DrumKit) (*Mirror, error) {
	out, err := gomidi.FindOutPort(port)
	if err != nil {
		return nil, errors.Wrapf(err, "find output port %q", port)
	}
	send, err := gomidi.SendTo(out)
	if err != nil {
		return nil, errors.Wrapf(err, "open output port %q", port)
	}
	debug.Log("midi", "mirroring to %s", out.String())
	return NewMirror(send, kit), nil
}

// Map returns the channel and MIDI note of a display pitch and instrument.
func (m *Mirror) Map(pitch, inst uint8) (channel, note uint8) {
	if pitch == DrumPitch {
		return DrumChannel, m.kit.Notes[inst&7]
	}
	return inst & 0xF, BaseNote + pitch
}

// SequencedNote sends the note on or off. A failed send disables the mirror.
func (m *Mirror) SequencedNote(pitch, inst uint8, on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failed {
		return
	}

	channel, note := m.Map(pitch, inst)
	key := [2]uint8{channel, note}
	msg := gomidi.NoteOff(channel, note)
	if on {
		msg = gomidi.NoteOn(channel, note, NoteVelocity)
		m.held[key] = true
	} else {
		delete(m.held, key)
	}
	if err := m.send(msg); err != nil {
		m.failed = true
		debug.Log("midi", "mirror disabled: %v", err)
	}
}

// Close silences every sounding note.
func (m *Mirror) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var first error
	for key := range m.held {
		if err := m.send(gomidi.NoteOff(key[0], key[1])); err != nil && first == nil {
			first = err
		}
	}
	clear(m.held)
	return first
}
