package opl

// mulTable maps the 4-bit MUL field to twice the frequency multiple.
// MUL=0 is x0.5; 11, 13 and 14 repeat their neighbours.
var mulTable = [16]uint32{1, 2, 4, 6, 8, 10, 12, 14, 16, 18, 20, 20, 24, 24, 30, 30}

// computePhaseIncrement calculates the 20-bit phase increment for an operator.
// fNum: 10-bit F-number, block: 3-bit octave, mul: 4-bit multiplier.
// The output frequency is inc * nativeRate / 2^20.
func computePhaseIncrement(fNum uint16, block, mul uint8) uint32 {
	base := uint32(fNum&0x3FF) << uint(block&0x07)
	return (base * mulTable[mul&0x0F] >> 1) & 0xFFFFF
}

// computeKeyCode computes the 4-bit key code used for rate scaling.
// keyCode = [block(3), F10 or F9 depending on note select]
func computeKeyCode(fNum uint16, block uint8, noteSelect bool) uint8 {
	bit := (fNum >> 9) & 1
	if noteSelect {
		bit = (fNum >> 8) & 1
	}
	return (block&0x07)<<1 | uint8(bit)
}

// kslTable is the key scale attenuation for the top four F-number bits
// at block 7, in 0.75dB units.
var kslTable = [16]int{0, 24, 32, 37, 40, 43, 45, 47, 48, 50, 51, 52, 53, 54, 55, 56}

// kslShift scales the base attenuation into envelope units (0.09375dB)
// for KSL 0 (off), 1 (3dB/oct), 2 (1.5dB/oct) and 3 (6dB/oct).
var kslShift = [4]uint{0, 2, 1, 3}

// keyScaleAttenuation returns the pitch dependent attenuation of an operator.
func keyScaleAttenuation(fNum uint16, block, ksl uint8) uint16 {
	if ksl == 0 {
		return 0
	}
	a := kslTable[(fNum>>6)&0x0F] - 8*(7-int(block&0x07))
	if a <= 0 {
		return 0
	}
	return uint16(a) << kslShift[ksl&0x03]
}

// stepPhase advances an operator's phase accumulator. vibDelta is an
// F-number offset applied when the operator has vibrato enabled.
func stepPhase(op *operator, ch *channel, vibDelta int32) {
	inc := op.phaseInc
	if op.vib && vibDelta != 0 {
		f := int32(ch.fNum) + vibDelta
		if f < 0 {
			f = 0
		} else if f > 0x3FF {
			f = 0x3FF
		}
		inc = computePhaseIncrement(uint16(f), ch.block, op.mul)
	}
	op.phaseCounter = (op.phaseCounter + inc) & 0xFFFFF
}
