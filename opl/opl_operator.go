package opl

import "math"

// sineTable is a quarter-sine log table: 256 entries of -log2(sin((2i+1)/512 * pi/2))
// in 4.8 fixed-point.
var sineTable [256]uint16

// pow2Table holds 2^(1-(i+1)/256) scaled to 11 bits, converting log-domain
// attenuation back to linear amplitude.
var pow2Table [256]uint16

func init() {
	for i := 0; i < 256; i++ {
		angle := float64(2*i+1) / 512.0 * math.Pi / 2.0
		sineTable[i] = uint16(math.Round(-math.Log2(math.Sin(angle)) * 256.0))
	}
	for i := 0; i < 256; i++ {
		pow2Table[i] = uint16(math.Round(math.Pow(2.0, 1.0-float64(i+1)/256.0) * 1024.0))
	}
}

// Waveforms selectable through registers $E0-$F5.
const (
	waveSine        = 0
	waveHalfSine    = 1
	waveAbsSine     = 2
	waveQuarterSine = 3
)

// computeOperatorOutput computes the signed output of an operator given its
// phase (with modulation), attenuation and waveform.
func computeOperatorOutput(phase uint32, atten uint16, wave uint8) int16 {
	// Top 10 bits of the 20-bit phase
	phaseIdx := (phase >> 10) & 0x3FF

	negative := phaseIdx&0x200 != 0
	mirror := phaseIdx&0x100 != 0

	switch wave {
	case waveHalfSine:
		if negative {
			return 0
		}
	case waveAbsSine:
		negative = false
	case waveQuarterSine:
		if mirror {
			return 0
		}
		negative = false
	}

	idx := phaseIdx & 0xFF
	if mirror {
		idx = 0xFF - idx
	}

	// Envelope is 10-bit, shift to 4.8 format
	totalAtten := uint32(sineTable[idx]) + uint32(atten)<<2

	intPart := totalAtten >> 8
	fracPart := totalAtten & 0xFF
	linear := (uint32(pow2Table[fracPart]) << 2) >> intPart

	if negative {
		return -int16(linear)
	}
	return int16(linear)
}

// evaluateChannel steps both operators and returns the channel's output.
func (c *Chip) evaluateChannel(ch *channel) int32 {
	mod := &ch.op[0]
	car := &ch.op[1]

	if mod.egLevel >= 0x3FF && car.egLevel >= 0x3FF && !ch.keyOn {
		return 0
	}

	var vibDelta int32
	if mod.vib || car.vib {
		vibDelta = c.lfoVibratoDelta(ch.fNum)
	}
	stepPhase(mod, ch, vibDelta)
	stepPhase(car, ch, vibDelta)

	amAtten := c.lfoAMAttenuation()

	m := c.opOut(mod, feedback(mod, ch.feedback), amAtten)
	if ch.additive {
		return int32(m) + int32(c.opOut(car, 0, amAtten))
	}
	return int32(c.opOut(car, int32(m)>>1, amAtten))
}

// feedback computes the self-feedback modulation for the modulator.
func feedback(op *operator, fbLevel uint8) int32 {
	if fbLevel == 0 {
		return 0
	}
	return (int32(op.prevOut[0]) + int32(op.prevOut[1])) >> (10 - uint(fbLevel))
}

// opOut computes an operator's output with phase modulation in the 10-bit
// phase index domain and stores history for feedback.
func (c *Chip) opOut(op *operator, modulation int32, amAtten uint16) int16 {
	wave := op.wave
	if !c.waveSelect {
		wave = waveSine
	}
	phase := op.phaseCounter + uint32(modulation<<10)
	out := computeOperatorOutput(phase, totalLevel(op, amAtten), wave)

	op.prevOut[1] = op.prevOut[0]
	op.prevOut[0] = out
	return out
}
