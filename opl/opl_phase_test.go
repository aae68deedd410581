package opl

import "testing"

func TestComputePhaseIncrement(t *testing.T) {
	tests := []struct {
		fNum  uint16
		block uint8
		mul   uint8
		want  uint32
	}{
		{0x244, 4, 1, 0x244 << 4},
		{0x244, 4, 0, 0x244 << 3},
		{0x244, 4, 2, 0x244 << 5},
		{0x244, 4, 11, 0x244 << 4 * 10},
		{0x157, 0, 1, 0x157},
		{0x3FF, 7, 15, 0x3FF << 7 * 15 & 0xFFFFF},
	}
	for _, tc := range tests {
		if got := computePhaseIncrement(tc.fNum, tc.block, tc.mul); got != tc.want {
			t.Errorf("fnum=%03X block=%d mul=%d: got %d, want %d", tc.fNum, tc.block, tc.mul, got, tc.want)
		}
	}
}

func TestComputePhaseIncrement_A440(t *testing.T) {
	inc := computePhaseIncrement(0x244, 4, 1)
	hz := float64(inc) * float64(DefaultClock/72) / (1 << 20)
	if hz < 439 || hz > 441 {
		t.Errorf("got %.2f Hz, want ~440", hz)
	}
}

func TestComputeKeyCode(t *testing.T) {
	if kc := computeKeyCode(0x200, 5, false); kc != 5<<1|1 {
		t.Errorf("NTS off: got %d", kc)
	}
	if kc := computeKeyCode(0x100, 5, false); kc != 5<<1 {
		t.Errorf("NTS off, F9 clear: got %d", kc)
	}
	if kc := computeKeyCode(0x100, 5, true); kc != 5<<1|1 {
		t.Errorf("NTS on: got %d", kc)
	}
}

func TestKeyScaleAttenuation(t *testing.T) {
	tests := []struct {
		fNum       uint16
		block, ksl uint8
		want       uint16
	}{
		{0x3FF, 7, 0, 0},
		{0x3FF, 7, 3, 56 << 3},
		{0x3FF, 7, 1, 56 << 2},
		{0x3FF, 7, 2, 56 << 1},
		{0x3FF, 6, 3, 48 << 3},
		{0x3FF, 0, 3, 0},
		{0x000, 7, 3, 0},
	}
	for _, tc := range tests {
		if got := keyScaleAttenuation(tc.fNum, tc.block, tc.ksl); got != tc.want {
			t.Errorf("fnum=%03X block=%d ksl=%d: got %d, want %d", tc.fNum, tc.block, tc.ksl, got, tc.want)
		}
	}
}

func TestVibrato_ModulatesIncrement(t *testing.T) {
	c := New(DefaultClock, 44100)
	ch := &c.ch[0]
	ch.fNum, ch.block = 0x200, 4
	op := &ch.op[0]
	op.mul = 1
	op.phaseInc = computePhaseIncrement(ch.fNum, ch.block, op.mul)

	stepPhase(op, ch, 4)
	if op.phaseCounter != op.phaseInc {
		t.Error("vibrato delta must be ignored without VIB")
	}

	op.vib = true
	op.phaseCounter = 0
	stepPhase(op, ch, 4)
	if want := computePhaseIncrement(0x204, 4, 1); op.phaseCounter != want {
		t.Errorf("got %d, want %d", op.phaseCounter, want)
	}
}

func TestLFO_VibratoDelta(t *testing.T) {
	c := New(DefaultClock, 44100)
	c.vibPos = 2
	if d := c.lfoVibratoDelta(0x200); d != 2 {
		t.Errorf("shallow: got %d, want 2", d)
	}
	c.vibDeep = true
	if d := c.lfoVibratoDelta(0x200); d != 4 {
		t.Errorf("deep: got %d, want 4", d)
	}
	c.vibPos = 6
	if d := c.lfoVibratoDelta(0x200); d != -4 {
		t.Errorf("deep negative: got %d, want -4", d)
	}
}

func TestLFO_TremoloTriangle(t *testing.T) {
	c := New(DefaultClock, 44100)
	c.amDeep = true
	peak := uint16(0)
	for i := 0; i < 2*amPeak*amStepPeriod; i++ {
		c.stepLFO()
		if a := c.lfoAMAttenuation(); a > peak {
			peak = a
		}
	}
	if peak != amPeak-1 {
		t.Errorf("peak: got %d, want %d", peak, amPeak-1)
	}
	if c.amOut != 0 {
		t.Errorf("full cycle should end at 0, got %d", c.amOut)
	}
}
