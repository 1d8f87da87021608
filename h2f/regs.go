// Package h2f talks to the display/synthesis peripheral over the
// lightweight HPS-to-FPGA bridge.
//
// The bridge exposes three write-only output words and one input word:
//
//	word 0   [3:0] sub-tile scroll   [7:4] grid scroll
//	         [10:8] octave   [13:11] instrument   [27:14] key state
//	word 4   [5:0] tile row offset   [17:6] tile address
//	word 8   [23:0] tile data (writing it commits to the latched address)
//	word 12  input snapshot, see DecodeInputs
//
// Output words are never read back. RegFile keeps the last value written to
// each of them and every field update is packed from that copy.
package h2f

// Lightweight bridge window on the Cyclone V HPS.
const (
	BridgeBase = 0xFF200000
	BridgeSpan = 0x1000
)

// Word indices into the bridge window.
const (
	WordControl = 0
	WordTile    = 4
	WordData    = 8
	WordInputs  = 12
)

// Display geometry as seen by the peripheral.
const (
	Rows      = 64
	Pitches   = 49
	TileCount = Rows * Pitches
	Keys      = 49
)

// Bridge is the register interface of the peripheral.
type Bridge interface {
	SetSubtileScroll(v uint8)
	SetGridScroll(v uint8)
	SetActiveOctave(v uint8)
	SetActiveInst(v uint8)
	SetKeyState(key, value uint8)
	SetTileOffset(v uint8)
	SetTileState(addr uint16, data uint32)

	// Inputs returns the raw input snapshot word.
	Inputs() uint32

	Close() error
}

// RegFile packs register fields into the output words. The write hook is
// called with the word index and its complete new value.
type RegFile struct {
	words [3]uint32 // control, tile, data
	write func(word int, value uint32)
}

// NewRegFile creates a register file that forwards every word write to fn.
func NewRegFile(fn func(word int, value uint32)) RegFile {
	return RegFile{write: fn}
}

// Word returns the last value written to an output word.
func (r *RegFile) Word(word int) uint32 {
	return r.words[word/4]
}

func (r *RegFile) setBits(word int, start, length uint, value uint32) {
	mask := (uint32(1)<<length - 1) << start
	i := word / 4
	r.words[i] = r.words[i]&^mask | value<<start&mask
	if r.write != nil {
		r.write(word, r.words[i])
	}
}

func (r *RegFile) SetSubtileScroll(v uint8) { r.setBits(WordControl, 0, 4, uint32(v)) }
func (r *RegFile) SetGridScroll(v uint8)    { r.setBits(WordControl, 4, 4, uint32(v)) }
func (r *RegFile) SetActiveOctave(v uint8)  { r.setBits(WordControl, 8, 3, uint32(v)) }
func (r *RegFile) SetActiveInst(v uint8)    { r.setBits(WordControl, 11, 3, uint32(v)) }
func (r *RegFile) SetTileOffset(v uint8)    { r.setBits(WordTile, 0, 6, uint32(v)) }

// SetKeyState sets the illumination of one key. value holds one bit per
// instrument.
func (r *RegFile) SetKeyState(key, value uint8) {
	r.setBits(WordControl, 14, 14, uint32(value)<<6|uint32(key))
}

// SetTileState latches the tile address and then writes its data.
func (r *RegFile) SetTileState(addr uint16, data uint32) {
	r.setBits(WordTile, 6, 12, uint32(addr))
	r.setBits(WordData, 0, 24, data)
}

// Inputs is a decoded input snapshot.
type Inputs struct {
	Buttons uint8  // KEY[3:0], active-low as read
	Play    bool   // transport play switch
	Record  bool   // transport record switch
	Keys    uint16 // 12 live keys, bit set = pressed
	Count   uint16 // free-running sample counter (14 bits)
}

// Input word layout.
const (
	ButtonsMask = 0xF
	PlayBit     = 1 << 4
	RecordBit   = 1 << 5
	KeysShift   = 6
	KeysMask    = 0xFFF
	CountShift  = 18
	CountBits   = 14
)

// DecodeInputs splits a raw input word into its fields.
func DecodeInputs(raw uint32) Inputs {
	return Inputs{
		Buttons: uint8(raw & ButtonsMask),
		Play:    raw&PlayBit != 0,
		Record:  raw&RecordBit != 0,
		Keys:    uint16(raw >> KeysShift & KeysMask),
		Count:   uint16(raw >> CountShift),
	}
}

// Encode packs the snapshot back into a raw input word.
func (in Inputs) Encode() uint32 {
	raw := uint32(in.Buttons&ButtonsMask) |
		uint32(in.Keys&KeysMask)<<KeysShift |
		uint32(in.Count)<<CountShift
	if in.Play {
		raw |= PlayBit
	}
	if in.Record {
		raw |= RecordBit
	}
	return raw
}
