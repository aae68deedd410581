package opl

// Tremolo is a triangle sweeping 0..amPeak envelope units at ~3.7Hz.
// Vibrato walks vibTable at ~6.1Hz.
const (
	amPeak       = 52   // ~4.8dB in envelope units
	amStepPeriod = 128  // Native samples per tremolo step
	vibPeriod    = 1024 // Native samples per vibrato step
)

// vibTable is the vibrato shape in eighths of a cycle.
var vibTable = [8]int32{0, 1, 2, 1, 0, -1, -2, -1}

// stepLFO advances both low frequency oscillators by one native sample.
func (c *Chip) stepLFO() {
	c.amCnt++
	if c.amCnt >= amStepPeriod {
		c.amCnt = 0
		c.amPos++
		if c.amPos >= 2*amPeak {
			c.amPos = 0
		}
	}
	if c.amPos < amPeak {
		c.amOut = uint16(c.amPos)
	} else {
		c.amOut = uint16(2*amPeak - 1 - int(c.amPos))
	}

	c.vibCnt++
	if c.vibCnt >= vibPeriod {
		c.vibCnt = 0
		c.vibPos = (c.vibPos + 1) & 7
	}
}

// lfoAMAttenuation returns the tremolo attenuation. Shallow depth is
// a quarter of the deep setting (~1.2dB).
func (c *Chip) lfoAMAttenuation() uint16 {
	if c.amDeep {
		return c.amOut
	}
	return c.amOut >> 2
}

// lfoVibratoDelta returns the F-number offset for vibrato. The offset is
// proportional to the top three F-number bits so every note gets the same
// relative depth (~14 cents deep, ~7 cents shallow).
func (c *Chip) lfoVibratoDelta(fNum uint16) int32 {
	delta := int32(fNum>>7) * vibTable[c.vibPos]
	if c.vibDeep {
		return delta >> 1
	}
	return delta >> 2
}
