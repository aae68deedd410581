// Package opl implements a two-operator FM synthesizer with the register
// map of the Yamaha YM3812 (OPL2). Rhythm mode and the chip timers are not
// emulated.
package opl

import "math"

// DefaultClock is the master clock of a stock AdLib card.
const DefaultClock = 3579545

// Envelope states
const (
	egAttack  = 0
	egDecay   = 1
	egSustain = 2
	egRelease = 3
)

// Channels is the number of melodic channels.
const Channels = 9

// operator holds decoded register state for one of the two operators in a channel.
type operator struct {
	// Register fields
	am   bool  // Tremolo enable
	vib  bool  // Vibrato enable
	egt  bool  // Sustained envelope (hold at sustain level until key off)
	ksr  bool  // Key scale rate
	mul  uint8 // Frequency multiplier (4-bit)
	ksl  uint8 // Key scale level (2-bit)
	tl   uint8 // Total level (6-bit, 0=loudest)
	ar   uint8 // Attack rate (4-bit)
	dr   uint8 // Decay rate (4-bit)
	sl   uint8 // Sustain level (4-bit)
	rr   uint8 // Release rate (4-bit)
	wave uint8 // Waveform (2-bit)

	// Phase generator state
	phaseCounter uint32 // 20-bit phase accumulator
	phaseInc     uint32 // 20-bit phase increment (recomputed on freq change)
	keyCode      uint8  // 4-bit key code for rate scaling
	kslAtten     uint16 // Key scale attenuation in envelope units

	// Envelope generator state
	egState uint8
	egLevel uint16 // 10-bit attenuation (0=full vol, 0x3FF=silent)

	prevOut [2]int16 // Previous two outputs (for feedback)
}

// channel holds decoded register state for one of nine FM channels.
// op[0] is the modulator, op[1] the carrier.
type channel struct {
	op [2]operator

	fNum  uint16 // 10-bit F-number
	block uint8  // 3-bit block (octave)
	keyOn bool

	feedback uint8 // 3-bit feedback level (0=disabled)
	additive bool  // Connection: false=FM, true=both operators audible
}

// Chip is an OPL2-compatible FM synthesizer. It produces mono samples at
// the output rate given to New by holding the most recent native sample.
// Chip is not safe for concurrent use.
type Chip struct {
	sampleRate  int
	clockHz     int
	nativeClock int // Internal sample rate (clockHz / 72)

	regs [256]uint8
	ch   [Channels]channel

	waveSelect bool // Register $01 bit 5
	noteSelect bool // Register $08 bit 6 (NTS)
	amDeep     bool // Register $BD bit 7
	vibDeep    bool // Register $BD bit 6

	// Envelope generator global counter
	egCounter uint32

	// LFO state
	amCnt  uint16
	amPos  uint8
	amOut  uint16
	vibCnt uint16
	vibPos uint8

	// Timing for sample generation
	resampAccum       int
	lastSample        int16
	nativeSampleCount uint64

	// Optional first-order low-pass on the output
	lpfAlpha float64
	lpfPrev  float64
}

// New creates an OPL2 synthesizer clocked at clockHz producing sampleRate
// samples per second.
func New(clockHz, sampleRate int) *Chip {
	if clockHz <= 0 {
		clockHz = DefaultClock
	}
	if sampleRate <= 0 {
		sampleRate = clockHz / 72
	}
	c := &Chip{
		sampleRate:  sampleRate,
		clockHz:     clockHz,
		nativeClock: clockHz / 72,
	}
	c.Reset()
	return c
}

// NativeRate returns the chip's internal sample rate.
func (c *Chip) NativeRate() int {
	return c.nativeClock
}

// SampleRate returns the output sample rate.
func (c *Chip) SampleRate() int {
	return c.sampleRate
}

// SetLowPass enables a first-order RC low-pass filter at cutoffHz on the
// output. A cutoff of zero disables it.
func (c *Chip) SetLowPass(cutoffHz float64) {
	if cutoffHz <= 0 || c.sampleRate <= 0 {
		c.lpfAlpha = 0
		return
	}
	// alpha = dt / (RC + dt) where RC = 1/(2*pi*fc)
	c.lpfAlpha = 1.0 / (float64(c.sampleRate)/(2*math.Pi*cutoffHz) + 1)
}

// Reset silences every channel and clears all registers.
func (c *Chip) Reset() {
	c.regs = [256]uint8{}
	c.waveSelect = false
	c.noteSelect = false
	c.amDeep = false
	c.vibDeep = false
	c.egCounter = 0
	c.amCnt, c.amPos, c.amOut = 0, 0, 0
	c.vibCnt, c.vibPos = 0, 0
	c.resampAccum = 0
	c.lastSample = 0
	c.lpfPrev = 0
	for i := range c.ch {
		c.ch[i] = channel{}
		for j := range c.ch[i].op {
			c.ch[i].op[j].egState = egRelease
			c.ch[i].op[j].egLevel = 0x3FF // Silent
		}
	}
}

// Register returns the last value written to addr.
func (c *Chip) Register(addr uint8) uint8 {
	return c.regs[addr]
}

// KeyOn reports whether channel ch is keyed on.
func (c *Chip) KeyOn(ch int) bool {
	if ch < 0 || ch >= Channels {
		return false
	}
	return c.ch[ch].keyOn
}

// Envelope returns the envelope attenuation of operator op (0=modulator,
// 1=carrier) of channel ch. 0 is full volume, 0x3FF silent.
func (c *Chip) Envelope(ch, op int) uint16 {
	if ch < 0 || ch >= Channels || op < 0 || op > 1 {
		return 0x3FF
	}
	return c.ch[ch].op[op].egLevel
}

// WriteRegister writes val to register addr.
func (c *Chip) WriteRegister(addr, val uint8) {
	c.regs[addr] = val

	switch {
	case addr < 0x20:
		c.writeGlobalRegister(addr, val)
	case addr < 0xA0:
		c.writeOperatorRegister(addr, val)
	case addr == 0xBD:
		c.amDeep = val&0x80 != 0
		c.vibDeep = val&0x40 != 0
	case addr < 0xD0:
		c.writeChannelRegister(addr, val)
	case addr >= 0xE0:
		c.writeOperatorRegister(addr, val)
	}
}

// writeGlobalRegister handles writes to registers $01-$1F. Timer
// registers $02-$04 are accepted and ignored.
func (c *Chip) writeGlobalRegister(addr, val uint8) {
	switch addr {
	case 0x01:
		c.waveSelect = val&0x20 != 0
	case 0x08:
		c.noteSelect = val&0x40 != 0
		for i := range c.ch {
			c.updateChannelFrequency(i)
		}
	}
}

// operatorSlot decodes the low five bits of an operator register address.
// Slots 6-7 of each group of eight are unused.
func operatorSlot(addr uint8) (ch, op int, ok bool) {
	off := int(addr & 0x1F)
	group := off >> 3
	within := off & 7
	if group > 2 || within > 5 {
		return 0, 0, false
	}
	return group*3 + within%3, within / 3, true
}

// writeOperatorRegister handles writes to registers $20-$95 and $E0-$F5.
func (c *Chip) writeOperatorRegister(addr, val uint8) {
	chIdx, opIdx, ok := operatorSlot(addr)
	if !ok {
		return
	}
	op := &c.ch[chIdx].op[opIdx]

	switch addr & 0xE0 {
	case 0x20:
		// AM/VIB/EGT/KSR/MUL
		op.am = val&0x80 != 0
		op.vib = val&0x40 != 0
		op.egt = val&0x20 != 0
		op.ksr = val&0x10 != 0
		op.mul = val & 0x0F
		c.updateChannelFrequency(chIdx)
	case 0x40:
		// KSL/TL
		op.ksl = val >> 6
		op.tl = val & 0x3F
		c.updateChannelFrequency(chIdx)
	case 0x60:
		// AR/DR
		op.ar = val >> 4
		op.dr = val & 0x0F
	case 0x80:
		// SL/RR
		op.sl = val >> 4
		op.rr = val & 0x0F
	case 0xE0:
		// Waveform
		op.wave = val & 0x03
	}
}

// writeChannelRegister handles writes to registers $A0-$C8.
func (c *Chip) writeChannelRegister(addr, val uint8) {
	chIdx := int(addr & 0x0F)
	if chIdx >= Channels {
		return
	}
	ch := &c.ch[chIdx]

	switch addr & 0xF0 {
	case 0xA0:
		// F-Number low 8 bits
		ch.fNum = (ch.fNum & 0x300) | uint16(val)
		c.updateChannelFrequency(chIdx)
	case 0xB0:
		// Key on, block, F-Number high 2 bits
		ch.fNum = (ch.fNum & 0x0FF) | uint16(val&0x03)<<8
		ch.block = (val >> 2) & 0x07
		c.updateChannelFrequency(chIdx)
		c.writeKeyOnOff(chIdx, val&0x20 != 0)
	case 0xC0:
		// Feedback/Connection
		ch.feedback = (val >> 1) & 0x07
		ch.additive = val&0x01 != 0
	}
}

// writeKeyOnOff applies a key state change to both operators of a channel.
func (c *Chip) writeKeyOnOff(chIdx int, on bool) {
	ch := &c.ch[chIdx]
	if on == ch.keyOn {
		return
	}
	ch.keyOn = on

	for i := range ch.op {
		op := &ch.op[i]
		if on {
			// Key on: reset phase, start attack
			op.phaseCounter = 0
			op.egState = egAttack
			if effectiveRate(op.ar, op) >= 60 {
				op.egLevel = 0
				op.egState = egDecay
			}
		} else {
			op.egState = egRelease
		}
	}
}

// updateChannelFrequency recomputes key codes, key scale attenuation and
// phase increments for both operators of a channel.
func (c *Chip) updateChannelFrequency(chIdx int) {
	ch := &c.ch[chIdx]
	kc := computeKeyCode(ch.fNum, ch.block, c.noteSelect)
	for i := range ch.op {
		op := &ch.op[i]
		op.keyCode = kc
		op.kslAtten = keyScaleAttenuation(ch.fNum, ch.block, op.ksl)
		op.phaseInc = computePhaseIncrement(ch.fNum, ch.block, op.mul)
	}
}

// clockNative produces one sample at the native rate.
func (c *Chip) clockNative() int16 {
	c.nativeSampleCount++
	c.stepLFO()
	c.stepEnvelopes()

	var sum int32
	for i := range c.ch {
		sum += c.evaluateChannel(&c.ch[i])
	}
	return int16(clampInt32(sum, -32768, 32767))
}

// Render fills out with mono samples at the output rate.
func (c *Chip) Render(out []int16) {
	for i := range out {
		// Zero-order hold resample from the native rate (~49.7kHz)
		c.resampAccum += c.nativeClock
		for c.resampAccum >= c.sampleRate {
			c.resampAccum -= c.sampleRate
			c.lastSample = c.clockNative()
		}
		s := c.lastSample
		if c.lpfAlpha > 0 {
			c.lpfPrev = c.lpfAlpha*float64(s) + (1-c.lpfAlpha)*c.lpfPrev
			s = int16(math.Round(c.lpfPrev))
		}
		out[i] = s
	}
}

// clampInt32 clamps v to [min, max].
func clampInt32(v, min, max int32) int32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
