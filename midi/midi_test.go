package midi

import (
	"errors"
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"
)

type sent struct {
	msgs []gomidi.Message
	err  error
}

func (s *sent) send(msg gomidi.Message) error {
	s.msgs = append(s.msgs, msg)
	return s.err
}

func TestMirrorMapping(t *testing.T) {
	m := NewMirror(nil, GetKit("gm"))
	tests := []struct {
		pitch, inst   uint8
		channel, note uint8
	}{
		{0, 0, 0, 36},
		{47, 7, 7, 83},
		{12, 3, 3, 48},
		{DrumPitch, 0, DrumChannel, 36},
		{DrumPitch, 4, DrumChannel, 38},
		{DrumPitch, 5, DrumChannel, 42},
	}
	for _, tt := range tests {
		ch, note := m.Map(tt.pitch, tt.inst)
		if ch != tt.channel || note != tt.note {
			t.Errorf("Map(%d, %d) = %d/%d, want %d/%d",
				tt.pitch, tt.inst, ch, note, tt.channel, tt.note)
		}
	}
}

func TestMirrorSendsNotes(t *testing.T) {
	var s sent
	m := NewMirror(s.send, GetKit("rd8"))
	m.SequencedNote(10, 2, true)
	m.SequencedNote(DrumPitch, 4, true)
	m.SequencedNote(10, 2, false)

	if len(s.msgs) != 3 {
		t.Fatalf("sent %d messages", len(s.msgs))
	}
	var ch, key, vel uint8
	if !s.msgs[0].GetNoteOn(&ch, &key, &vel) || ch != 2 || key != 46 || vel != NoteVelocity {
		t.Errorf("first message = %v", s.msgs[0])
	}
	if !s.msgs[1].GetNoteOn(&ch, &key, &vel) || ch != DrumChannel || key != 40 {
		t.Errorf("drum message = %v", s.msgs[1])
	}
	if !s.msgs[2].GetNoteOff(&ch, &key, &vel) || ch != 2 || key != 46 {
		t.Errorf("third message = %v", s.msgs[2])
	}

	// the drum hit is still sounding
	s.msgs = nil
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	if len(s.msgs) != 1 || !s.msgs[0].GetNoteOff(&ch, &key, &vel) || key != 40 {
		t.Errorf("Close sent %v", s.msgs)
	}
}

func TestMirrorDisablesOnError(t *testing.T) {
	s := sent{err: errors.New("port gone")}
	m := NewMirror(s.send, GetKit("gm"))
	m.SequencedNote(1, 0, true)
	m.SequencedNote(1, 0, false)
	if len(s.msgs) != 1 {
		t.Errorf("sent %d messages after a failure, want 1", len(s.msgs))
	}
}

func TestGetKitFallsBack(t *testing.T) {
	if GetKit("nope").Name != "General MIDI" {
		t.Error("unknown kit did not fall back to GM")
	}
	for _, name := range KitNames() {
		if _, ok := Kits[name]; !ok {
			t.Errorf("KitNames lists missing kit %q", name)
		}
	}
}

func TestKeyInputPitchClasses(t *testing.T) {
	k := NewKeyInput()
	k.Handle(gomidi.NoteOn(0, 60, 90)) // C
	k.Handle(gomidi.NoteOn(0, 76, 90)) // E
	k.Handle(gomidi.NoteOn(3, 48, 90)) // C again, other octave
	if got := k.Keys(); got != 1<<0|1<<4 {
		t.Fatalf("keys = %012b", got)
	}

	k.Handle(gomidi.NoteOff(0, 60))
	if got := k.Keys(); got != 1<<0|1<<4 {
		t.Errorf("C released while another C is held: %012b", got)
	}
	k.Handle(gomidi.NoteOn(3, 48, 0)) // velocity 0 is note-off
	k.Handle(gomidi.NoteOff(0, 76))
	if got := k.Keys(); got != 0 {
		t.Errorf("keys = %012b after releasing all", got)
	}

	k.Handle(gomidi.NoteOff(0, 61)) // stray note-off
	if got := k.Keys(); got != 0 {
		t.Errorf("stray note-off pressed a key: %012b", got)
	}
}
