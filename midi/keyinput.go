package midi

import (
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"hps-sequence/debug"
)

// KeyInput folds a MIDI keyboard into the 12 live keys: every held note
// presses the key of its pitch class, in any octave.
type KeyInput struct {
	mu    sync.Mutex
	count [128]uint8 // held count per MIDI note, for repeated note-ons
	mask  atomic.Uint32

	stopFunc func()
}

// NewKeyInput creates a key input that is fed through Handle.
func NewKeyInput() *KeyInput {
	return &KeyInput{}
}

// OpenKeyInput listens on the named input port.
func OpenKeyInput(port string) (*KeyInput, error) {
	in, err := gomidi.FindInPort(port)
	if err != nil {
		return nil, errors.Wrapf(err, "find input port %q", port)
	}
	return ListenKeyInput(in)
}

// ListenKeyInput listens on an input port.
func ListenKeyInput(in drivers.In) (*KeyInput, error) {
	k := NewKeyInput()
	stop, err := gomidi.ListenTo(in, func(msg gomidi.Message, timestampms int32) {
		k.Handle(msg)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open input %s", in.String())
	}
	k.stopFunc = stop
	debug.Log("midi", "keys from %s", in.String())
	return k, nil
}

// Handle applies one MIDI message. Note-on with velocity 0 is a note-off.
func (k *KeyInput) Handle(msg gomidi.Message) {
	var channel, note, velocity uint8
	switch {
	case msg.GetNoteOn(&channel, &note, &velocity) && velocity > 0:
		k.set(note, true)
	case msg.GetNoteOn(&channel, &note, &velocity), msg.GetNoteOff(&channel, &note, &velocity):
		k.set(note, false)
	}
}

func (k *KeyInput) set(note uint8, on bool) {
	if note > 127 {
		return
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if on {
		k.count[note]++
	} else if k.count[note] > 0 {
		k.count[note]--
	}

	var mask uint32
	for n, c := range k.count {
		if c > 0 {
			mask |= 1 << (n % 12)
		}
	}
	k.mask.Store(mask)
}

// Keys returns the live key mask. Safe to call from any goroutine.
func (k *KeyInput) Keys() uint16 {
	return uint16(k.mask.Load())
}

func (k *KeyInput) Close() error {
	if k.stopFunc != nil {
		k.stopFunc()
	}
	return nil
}
