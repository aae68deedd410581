package pis

// Effect classes (high nibble of the 12-bit effect).
const (
	EffectArpeggio     = 0x0
	EffectSlideUp      = 0x1
	EffectSlideDown    = 0x2
	EffectPortamento   = 0x3
	EffectPositionJump = 0xB
	EffectVolume       = 0xC
	EffectPatternBreak = 0xD
	EffectExtended     = 0xE
	EffectSpeed        = 0xF
)

// Extended effect sub-commands (mid nibble of an 0xE effect).
const (
	ExtendedLoop       = 0x6
	ExtendedVolumeUp   = 0xA
	ExtendedVolumeDown = 0xB
)

// noNote is the first note value that means "no note".
const noNote = 12

// Effect is a 12-bit effect word: class in bits 11-8, parameter in bits 7-0.
type Effect uint16

// Class returns the effect class (bits 11-8, 0x0-0xF).
func (e Effect) Class() uint8 { return uint8(e>>8) & 0x0F }

// Param returns the 8-bit parameter (bits 7-0).
func (e Effect) Param() uint8 { return uint8(e) }

// Mid returns bits 7-4 of the parameter.
func (e Effect) Mid() uint8 { return uint8(e>>4) & 0x0F }

// Low returns bits 3-0 of the parameter.
func (e Effect) Low() uint8 { return uint8(e) & 0x0F }

// Row is one unpacked pattern cell for a single voice.
type Row struct {
	Note       uint8 // 0-11, 12-15 = no note
	Octave     uint8 // 0-7
	Instrument uint8 // 0 = none, 1-31 = instrument slot
	Effect     Effect
}

// HasNote reports whether the row triggers a note.
func (r Row) HasNote() bool { return r.Note < noNote }

// HasInstrument reports whether the row selects an instrument.
func (r Row) HasInstrument() bool { return r.Instrument > 0 }

// UnpackRow decodes a packed 24-bit row.
//
//	byte0: note(4) | octave(3) | instrument bit 4
//	byte1: instrument bits 3-0 | effect bits 11-8
//	byte2: effect bits 7-0
func UnpackRow(packed uint32) Row {
	b0 := uint8(packed >> 16)
	b1 := uint8(packed >> 8)
	b2 := uint8(packed)
	return Row{
		Note:       b0 >> 4,
		Octave:     (b0 >> 1) & 0x07,
		Instrument: (b0&0x01)<<4 | b1>>4,
		Effect:     Effect(uint16(b1&0x0F)<<8 | uint16(b2)),
	}
}

// PackRowBytes combines three row bytes into the packed 24-bit form.
func PackRowBytes(b0, b1, b2 uint8) uint32 {
	return uint32(b0)<<16 | uint32(b1)<<8 | uint32(b2)
}

// Pack encodes the row back into its 24-bit form. Fields are masked to
// their bit widths, so Pack(UnpackRow(x)) == x for any 24-bit x.
func (r Row) Pack() uint32 {
	b0 := (r.Note&0x0F)<<4 | (r.Octave&0x07)<<1 | (r.Instrument>>4)&0x01
	b1 := (r.Instrument&0x0F)<<4 | uint8(r.Effect>>8)&0x0F
	b2 := uint8(r.Effect)
	return PackRowBytes(b0, b1, b2)
}
