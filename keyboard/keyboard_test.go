package keyboard

import "testing"

type lampLog struct {
	writes []lampWrite
	lamps  [Keys]uint8
}

type lampWrite struct{ key, value uint8 }

func (l *lampLog) SetKeyState(key, value uint8) {
	l.writes = append(l.writes, lampWrite{key, value})
	l.lamps[key] = value
}

type noteLog struct{ events []string }

func (n *noteLog) SequencedNote(pitch, inst uint8, on bool) {
	s := "off"
	if on {
		s = "on"
	}
	n.events = append(n.events, s)
}

func TestNewClearsAllLamps(t *testing.T) {
	out := &lampLog{}
	New(out)
	if len(out.writes) != Keys {
		t.Fatalf("expected %d initial writes, got %d", Keys, len(out.writes))
	}
}

func TestLayersCombine(t *testing.T) {
	out := &lampLog{}
	k := New(out)

	k.SetMonitor(10, 0, true)
	k.SetSequencer(10, 3, true)
	if out.lamps[10] != 1|1<<3 {
		t.Fatalf("lamp = %08b, want both layers", out.lamps[10])
	}

	k.SetMonitor(10, 0, false)
	if out.lamps[10] != 1<<3 {
		t.Fatalf("lamp = %08b after monitor release", out.lamps[10])
	}
	if k.State(10) != 1<<3 {
		t.Errorf("State(10) = %08b", k.State(10))
	}
}

func TestClearSequencerRewritesOnlyLitKeys(t *testing.T) {
	out := &lampLog{}
	k := New(out)
	notes := &noteLog{}
	k.AddListener(notes)

	k.SetMonitor(5, 1, true)
	k.SetSequencer(5, 2, true)
	k.SetSequencer(48, 0, true)
	k.SetSequencer(48, 4, true)

	out.writes = nil
	notes.events = nil
	k.ClearSequencer()

	if len(out.writes) != 2 {
		t.Fatalf("expected 2 rewrites, got %d", len(out.writes))
	}
	if out.lamps[5] != 1<<1 {
		t.Errorf("monitor layer lost: %08b", out.lamps[5])
	}
	if out.lamps[48] != 0 {
		t.Errorf("drum key still lit: %08b", out.lamps[48])
	}
	if len(notes.events) != 3 {
		t.Errorf("expected 3 note-offs, got %v", notes.events)
	}
}

func TestOutOfRangePanics(t *testing.T) {
	tests := []struct {
		name string
		fn   func(k *Keyboard)
	}{
		{"sequencer key 49", func(k *Keyboard) { k.SetSequencer(49, 0, true) }},
		{"monitor inst 8", func(k *Keyboard) { k.SetMonitor(3, 8, true) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &lampLog{}
			k := New(out)
			out.writes = nil
			defer func() {
				if recover() == nil {
					t.Error("did not panic")
				}
				if len(out.writes) != 0 {
					t.Errorf("unexpected writes: %v", out.writes)
				}
			}()
			tt.fn(k)
		})
	}
}
