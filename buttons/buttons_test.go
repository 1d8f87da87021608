package buttons

import (
	"reflect"
	"testing"
)

type recorder struct {
	calls []string
	times []uint32
	now   uint32
}

func (r *recorder) log(s string) {
	r.calls = append(r.calls, s)
	r.times = append(r.times, r.now)
}

func (r *recorder) ShiftOctave(up bool) {
	if up {
		r.log("octave+")
	} else {
		r.log("octave-")
	}
}

func (r *recorder) ShiftInst(up bool) {
	if up {
		r.log("inst+")
	} else {
		r.log("inst-")
	}
}

func (r *recorder) ScrollScreen(forward bool) {
	if forward {
		r.log("scroll+")
	} else {
		r.log("scroll-")
	}
}

// hold samples the buttons every 100 ticks in [from, to].
func hold(b *Buttons, r *recorder, pressed uint8, from, to uint32) {
	for t := from; t <= to; t += 100 {
		r.now = t
		b.Update(pressed, t)
	}
}

func TestOctaveNeedsDebounceAndFiresOnce(t *testing.T) {
	r := &recorder{}
	b := New(r, DefaultTiming)
	b.Update(0, 0)

	hold(b, r, 1<<keyOctaveDown, 100, 4700)
	if len(r.calls) != 0 {
		t.Fatalf("fired before debounce: %v", r.calls)
	}
	hold(b, r, 1<<keyOctaveDown, 4800, 20000)
	if !reflect.DeepEqual(r.calls, []string{"octave-"}) {
		t.Fatalf("calls = %v", r.calls)
	}
	if r.times[0] != 4800 {
		t.Errorf("fired at %d, want 4800", r.times[0])
	}

	// release and press again
	hold(b, r, 0, 20100, 20100)
	hold(b, r, 1<<keyOctaveUp, 20200, 30000)
	if !reflect.DeepEqual(r.calls, []string{"octave-", "octave+"}) {
		t.Fatalf("calls = %v", r.calls)
	}
}

func TestScrollRepeatSchedule(t *testing.T) {
	r := &recorder{}
	b := New(r, DefaultTiming)
	b.Update(0, 0)

	hold(b, r, 1<<keyScrollForward, 100, 19000)
	want := []uint32{4800, 16800, 17800, 18800}
	if !reflect.DeepEqual(r.times, want) {
		t.Fatalf("scroll times = %v, want %v", r.times, want)
	}
	for _, c := range r.calls {
		if c != "scroll+" {
			t.Fatalf("unexpected call %q", c)
		}
	}

	// releasing resets the repeat schedule
	hold(b, r, 0, 19100, 19100)
	r.calls, r.times = nil, nil
	hold(b, r, 1<<keyScrollBack, 19200, 25000)
	if !reflect.DeepEqual(r.times, []uint32{19100 + 4800}) {
		t.Fatalf("scroll back times = %v", r.times)
	}
}

func TestChordShiftsInstrumentOnly(t *testing.T) {
	r := &recorder{}
	b := New(r, DefaultTiming)
	b.Update(0, 0)

	hold(b, r, 1<<keyOctaveDown|1<<keyScrollBack, 100, 40000)
	if !reflect.DeepEqual(r.calls, []string{"inst-"}) {
		t.Fatalf("calls = %v", r.calls)
	}

	hold(b, r, 0, 40100, 40100)
	hold(b, r, 1<<keyScrollForward|1<<keyOctaveUp, 40200, 40200)
	if !reflect.DeepEqual(r.calls, []string{"inst-", "inst+"}) {
		t.Fatalf("calls = %v", r.calls)
	}
}

func TestSingleActionSuppressesChord(t *testing.T) {
	r := &recorder{}
	b := New(r, DefaultTiming)
	b.Update(0, 0)

	hold(b, r, 1<<keyOctaveDown, 100, 5000)
	hold(b, r, 1<<keyOctaveDown|1<<keyScrollBack, 5100, 6000)
	if !reflect.DeepEqual(r.calls, []string{"octave-"}) {
		t.Fatalf("calls = %v", r.calls)
	}
}
