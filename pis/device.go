package pis

// Device is a register-addressed FM synthesizer with an OPL2 register map.
type Device interface {
	// WriteRegister stores val at register addr.
	WriteRegister(addr, val uint8)
	// Reset returns every register and voice to power-on state.
	Reset()
	// Render fills out with mono samples.
	Render(out []int16)
}

// Register addresses written by the sequencer.
const (
	regWaveSelect   = 0x01
	waveSelectOn    = 0x20
	regOpMultiplier = 0x20
	regOpLevel      = 0x40
	regOpAttack     = 0x60
	regOpSustain    = 0x80
	regFreqLow      = 0xA0
	regKeyBlock     = 0xB0
	regFeedback     = 0xC0
	regOpWaveform   = 0xE0
	keyOnBit        = 0x20
	carrierOffset   = 3
)

// Frequency codes at the edges of the note table, used for the octave
// wrap of portamento.
const (
	freqLowB  = 0x143
	freqLowC  = 0x157
	freqHighB = 0x287
	freqHighC = 0x2AE
)

// frequencyTable holds the 10-bit frequency code of each semitone C..B.
var frequencyTable = [12]int{
	0x157, 0x16B, 0x181, 0x198, 0x1B0, 0x1CA,
	0x1E5, 0x202, 0x220, 0x241, 0x263, 0x287,
}

// voiceOperatorOffset maps a voice to the register offset of its modulator.
// The carrier sits 3 registers above.
var voiceOperatorOffset = [Voices]uint8{0, 1, 2, 8, 9, 10, 16, 17, 18}

// NoteFrequency returns the frequency code for a semitone, clamping the
// index into the table.
func NoteFrequency(note int) int {
	return frequencyTable[clampInt(note, 0, len(frequencyTable)-1)]
}

// writePitch sets frequency and octave for a voice and keys it on.
func writePitch(dev Device, v, freq, octave int) {
	freq &= 0x3FF
	octave = clampInt(octave, 0, 7)
	dev.WriteRegister(regFreqLow+uint8(v), uint8(freq))
	dev.WriteRegister(regKeyBlock+uint8(v), keyOnBit|uint8(octave)<<2|uint8(freq>>8))
}

// writeNoteOff keys a voice off.
func writeNoteOff(dev Device, v int) {
	dev.WriteRegister(regKeyBlock+uint8(v), 0)
}

// writeInstrument loads both operators and the feedback/connection byte.
func writeInstrument(dev Device, v int, in *Instrument) {
	off := voiceOperatorOffset[v]
	dev.WriteRegister(regOpMultiplier+off, in.Mul1)
	dev.WriteRegister(regOpMultiplier+off+carrierOffset, in.Mul2)
	dev.WriteRegister(regOpLevel+off, in.Lev1)
	dev.WriteRegister(regOpLevel+off+carrierOffset, in.Lev2)
	dev.WriteRegister(regOpAttack+off, in.Atd1)
	dev.WriteRegister(regOpAttack+off+carrierOffset, in.Atd2)
	dev.WriteRegister(regOpSustain+off, in.Sur1)
	dev.WriteRegister(regOpSustain+off+carrierOffset, in.Sur2)
	dev.WriteRegister(regOpWaveform+off, in.Wav1)
	dev.WriteRegister(regOpWaveform+off+carrierOffset, in.Wav2)
	dev.WriteRegister(regFeedback+uint8(v), in.FbCon)
}

// writeLevels writes the scaled output levels of both operators.
func writeLevels(dev Device, v int, l1, l2 int) {
	off := voiceOperatorOffset[v]
	dev.WriteRegister(regOpLevel+off, uint8(l1))
	dev.WriteRegister(regOpLevel+off+carrierOffset, uint8(l2))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
