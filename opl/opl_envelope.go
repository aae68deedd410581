package opl

// egIncrementTable defines the attenuation increment patterns for rates 4-47.
// For rates 4-47, the shift value (11 - rate>>2) controls how often updates
// occur, and rate&3 selects one of 4 base patterns. Row 0 is unused.
var egIncrementTable = [5][8]uint8{
	{0, 0, 0, 0, 0, 0, 0, 0},
	{0, 1, 0, 1, 0, 1, 0, 1}, // rate&3 == 0
	{0, 1, 0, 1, 1, 1, 0, 1}, // rate&3 == 1
	{0, 1, 1, 1, 0, 1, 1, 1}, // rate&3 == 2
	{0, 1, 1, 1, 1, 1, 1, 1}, // rate&3 == 3
}

// egHighRateTable defines per-rate increment patterns for rates 48-63,
// which update on every counter tick.
var egHighRateTable = [16][8]uint8{
	{1, 1, 1, 1, 1, 1, 1, 1}, // rate 48
	{1, 1, 1, 2, 1, 1, 1, 2}, // rate 49
	{1, 2, 1, 2, 1, 2, 1, 2}, // rate 50
	{1, 2, 2, 2, 1, 2, 2, 2}, // rate 51
	{2, 2, 2, 2, 2, 2, 2, 2}, // rate 52
	{2, 2, 2, 4, 2, 2, 2, 4}, // rate 53
	{2, 4, 2, 4, 2, 4, 2, 4}, // rate 54
	{2, 4, 4, 4, 2, 4, 4, 4}, // rate 55
	{4, 4, 4, 4, 4, 4, 4, 4}, // rate 56
	{4, 4, 4, 8, 4, 4, 4, 8}, // rate 57
	{4, 8, 4, 8, 4, 8, 4, 8}, // rate 58
	{4, 8, 8, 8, 4, 8, 8, 8}, // rate 59
	{8, 8, 8, 8, 8, 8, 8, 8}, // rate 60
	{8, 8, 8, 8, 8, 8, 8, 8}, // rate 61
	{8, 8, 8, 8, 8, 8, 8, 8}, // rate 62
	{8, 8, 8, 8, 8, 8, 8, 8}, // rate 63
}

// effectiveRate computes 4*rate + rks, clamped to 63. Returns 0 if rate is 0.
// With KSR clear only the top two key code bits scale the rate.
func effectiveRate(rate uint8, op *operator) uint8 {
	if rate == 0 {
		return 0
	}
	rks := op.keyCode >> 2
	if op.ksr {
		rks = op.keyCode
	}
	r := 4*int(rate) + int(rks)
	if r > 63 {
		r = 63
	}
	return uint8(r)
}

// stepEnvelopes advances the envelope for all operators by one native sample.
func (c *Chip) stepEnvelopes() {
	c.egCounter++
	for i := range c.ch {
		for j := range c.ch[i].op {
			stepOperatorEnvelope(&c.ch[i].op[j], c.egCounter)
		}
	}
}

// stepOperatorEnvelope advances one operator's envelope by one EG step.
func stepOperatorEnvelope(op *operator, counter uint32) {
	if op.egState == egDecay && op.egLevel >= sustainLevel(op.sl) {
		op.egState = egSustain
	}

	var rate uint8
	switch op.egState {
	case egAttack:
		rate = effectiveRate(op.ar, op)
	case egDecay:
		rate = effectiveRate(op.dr, op)
	case egSustain:
		if op.egt {
			return // Held until key off
		}
		rate = effectiveRate(op.rr, op)
	case egRelease:
		rate = effectiveRate(op.rr, op)
	}

	if rate == 0 {
		return // Frozen
	}

	var incr uint8
	if rate >= 48 {
		incr = egHighRateTable[rate-48][counter&7]
	} else {
		shift := uint(11 - int(rate>>2))
		if counter&((1<<shift)-1) != 0 {
			return
		}
		pattern := (rate & 3) + 1
		incr = egIncrementTable[pattern][(counter>>shift)&7]
	}
	if incr == 0 {
		return
	}

	if op.egState == egAttack {
		if rate >= 60 {
			op.egLevel = 0
		} else {
			// Exponential attack toward 0
			step := (^int32(op.egLevel) * int32(incr)) >> 4
			newLevel := int32(op.egLevel) + step
			if newLevel <= 0 {
				op.egLevel = 0
			} else {
				op.egLevel = uint16(newLevel)
			}
		}
		if op.egLevel == 0 {
			op.egState = egDecay
		}
		return
	}

	op.egLevel += uint16(incr)
	if op.egLevel > 0x3FF {
		op.egLevel = 0x3FF
	}
}

// sustainLevel converts the 4-bit SL field to a 10-bit attenuation level
// in 3dB steps. SL 15 means 93dB.
func sustainLevel(sl uint8) uint16 {
	if sl >= 15 {
		return 0x3E0
	}
	return uint16(sl) << 5
}

// totalLevel returns the combined envelope, TL, key scale and tremolo
// attenuation, capped at 0x3FF.
func totalLevel(op *operator, amAtten uint16) uint16 {
	total := op.egLevel + uint16(op.tl)<<3 + op.kslAtten
	if op.am {
		total += amAtten
	}
	if total > 0x3FF {
		return 0x3FF
	}
	return total
}
