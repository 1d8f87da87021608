// Package buttons turns the four transport-panel push buttons into
// edge-triggered intents.
//
//	KEY3        octave down       KEY0        octave up
//	KEY2        scroll back       KEY1        scroll forward
//	KEY3+KEY2   instrument down   KEY1+KEY0   instrument up
//
// A button acts only after it has been held for the debounce time. Scroll
// buttons repeat: the first step fires after the debounce time, the second
// ScrollDelay later, and then one every ScrollInterval. Pressing a chord
// suppresses the single-button actions of its members until they are
// released, and vice versa.
package buttons

// Intents receives the actions decoded from the buttons.
type Intents interface {
	ShiftOctave(up bool)
	ShiftInst(up bool)
	ScrollScreen(forward bool)
}

// Timing is measured in time base ticks.
type Timing struct {
	Debounce       uint32
	ScrollDelay    uint32
	ScrollInterval uint32
}

// DefaultTiming matches a 48 kHz time base.
var DefaultTiming = Timing{
	Debounce:       4800,
	ScrollDelay:    12000,
	ScrollInterval: 1000,
}

const (
	keyOctaveUp = iota
	keyScrollForward
	keyScrollBack
	keyOctaveDown
)

type Buttons struct {
	intents Intents
	timing  Timing
	now     uint32

	pressed [4]bool
	lastUp  [4]uint32 // time base when each button was last seen released

	scrollBackCount, scrollFwdCount uint32

	// set once an action fired, cleared on release
	octaveDownDone, octaveUpDone  bool
	scrollBackDone, scrollFwdDone bool
	instDownDone, instUpDone      bool
}

func New(intents Intents, timing Timing) *Buttons {
	return &Buttons{intents: intents, timing: timing}
}

func (b *Buttons) delayEnded(key int) bool {
	return b.now-b.lastUp[key] >= b.timing.Debounce
}

func (b *Buttons) scrollDue(key int, count *uint32) bool {
	elapsed := b.now - b.lastUp[key]
	required := b.timing.Debounce
	if *count > 0 {
		required += (*count-1)*b.timing.ScrollInterval + b.timing.ScrollDelay
	}
	if elapsed < required {
		return false
	}
	*count++
	return true
}

// Update processes one sample of the buttons. pressed has bit i set when
// KEY[i] is down (already inverted from the active-low input).
func (b *Buttons) Update(pressed uint8, now uint32) {
	b.now = now
	for i := range b.pressed {
		b.pressed[i] = pressed&(1<<i) != 0
		if !b.pressed[i] {
			b.lastUp[i] = now
		}
	}
	p := b.pressed

	if !p[keyOctaveDown] && !p[keyScrollBack] {
		b.instDownDone = false
	} else if !b.instDownDone && p[keyOctaveDown] && p[keyScrollBack] {
		b.instDownDone = true
		b.octaveDownDone = true
		b.scrollBackDone = true
		b.intents.ShiftInst(false)
	}

	if !p[keyScrollForward] && !p[keyOctaveUp] {
		b.instUpDone = false
	} else if !b.instUpDone && p[keyScrollForward] && p[keyOctaveUp] {
		b.instUpDone = true
		b.octaveUpDone = true
		b.scrollFwdDone = true
		b.intents.ShiftInst(true)
	}

	if !p[keyOctaveDown] {
		b.octaveDownDone = false
	} else if !b.octaveDownDone && b.delayEnded(keyOctaveDown) {
		b.octaveDownDone = true
		b.instDownDone = true
		b.intents.ShiftOctave(false)
	}

	if !p[keyScrollBack] {
		b.scrollBackDone = false
		b.scrollBackCount = 0
	} else if !b.scrollBackDone && b.scrollDue(keyScrollBack, &b.scrollBackCount) {
		b.instDownDone = true
		b.intents.ScrollScreen(false)
	}

	if !p[keyScrollForward] {
		b.scrollFwdDone = false
		b.scrollFwdCount = 0
	} else if !b.scrollFwdDone && b.scrollDue(keyScrollForward, &b.scrollFwdCount) {
		b.instUpDone = true
		b.intents.ScrollScreen(true)
	}

	if !p[keyOctaveUp] {
		b.octaveUpDone = false
	} else if !b.octaveUpDone && b.delayEnded(keyOctaveUp) {
		b.octaveUpDone = true
		b.instUpDone = true
		b.intents.ShiftOctave(true)
	}
}
