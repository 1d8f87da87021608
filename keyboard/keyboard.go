// Package keyboard drives the illuminated keyboard at the bottom of the
// display. Each key has two layers, the live-press monitor and the
// sequenced playback, each holding one bit per instrument. The key lamp
// shows both layers combined.
package keyboard

import "github.com/pkg/errors"

// Keys is the number of illuminated keys (four octaves plus the drum key).
const Keys = 49

// LampWriter receives the combined state of one key.
type LampWriter interface {
	SetKeyState(key, value uint8)
}

// Listener is told about changes to the sequenced playback layer.
type Listener interface {
	SequencedNote(pitch, inst uint8, on bool)
}

// Keyboard combines the two illumination layers.
type Keyboard struct {
	out       LampWriter
	monitor   [Keys]uint8
	sequencer [Keys]uint8
	listeners []Listener
}

// New creates a keyboard and turns every lamp off.
func New(out LampWriter) *Keyboard {
	k := &Keyboard{out: out}
	for i := uint8(0); i < Keys; i++ {
		out.SetKeyState(i, 0)
	}
	return k
}

// AddListener registers l for sequenced layer changes.
func (k *Keyboard) AddListener(l Listener) {
	k.listeners = append(k.listeners, l)
}

// setKey panics on a key or instrument the lamps cannot show.
func (k *Keyboard) setKey(layer *[Keys]uint8, pitch, inst uint8, on bool) {
	if pitch >= Keys || inst > 7 {
		panic(errors.Errorf("keyboard: key %d inst %d out of range", pitch, inst))
	}
	mask := uint8(1) << inst
	if on {
		layer[pitch] |= mask
	} else {
		layer[pitch] &^= mask
	}
	k.out.SetKeyState(pitch, k.monitor[pitch]|k.sequencer[pitch])
}

// SetMonitor lights or clears a live-pressed key.
func (k *Keyboard) SetMonitor(pitch, inst uint8, on bool) {
	k.setKey(&k.monitor, pitch, inst, on)
}

// SetSequencer lights or clears a key played back by the sequencer.
func (k *Keyboard) SetSequencer(pitch, inst uint8, on bool) {
	k.setKey(&k.sequencer, pitch, inst, on)
	for _, l := range k.listeners {
		l.SequencedNote(pitch, inst, on)
	}
}

// ClearSequencer drops the whole playback layer. Only keys that had a
// playback bit are rewritten.
func (k *Keyboard) ClearSequencer() {
	for i := range k.sequencer {
		bits := k.sequencer[i]
		if bits == 0 {
			continue
		}
		k.sequencer[i] = 0
		k.out.SetKeyState(uint8(i), k.monitor[i])
		for inst := uint8(0); inst < 8; inst++ {
			if bits&(1<<inst) == 0 {
				continue
			}
			for _, l := range k.listeners {
				l.SequencedNote(uint8(i), inst, false)
			}
		}
	}
}

// State returns the combined lamp value of a key.
func (k *Keyboard) State(pitch uint8) uint8 {
	if pitch >= Keys {
		return 0
	}
	return k.monitor[pitch] | k.sequencer[pitch]
}
