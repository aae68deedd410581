package opl

import "testing"

// programSine sets up channel 0 as a pure carrier sine with an instant
// attack and held sustain. The modulator never leaves silence.
func programSine(c *Chip, fNum uint16, block uint8) {
	c.WriteRegister(0x20, 0x01)
	c.WriteRegister(0x40, 0x3F)
	c.WriteRegister(0x60, 0x00)
	c.WriteRegister(0x23, 0x21) // EGT, MUL=1
	c.WriteRegister(0x43, 0x00)
	c.WriteRegister(0x63, 0xF0)
	c.WriteRegister(0x83, 0x0F)
	c.WriteRegister(0xC0, 0x00)
	c.WriteRegister(0xA0, uint8(fNum))
	c.WriteRegister(0xB0, 0x20|block<<2|uint8(fNum>>8))
}

func risingCrossings(buf []int16) int {
	n := 0
	for i := 1; i < len(buf); i++ {
		if buf[i-1] < 0 && buf[i] >= 0 {
			n++
		}
	}
	return n
}

func TestRender_SilentAfterReset(t *testing.T) {
	c := New(DefaultClock, 44100)
	buf := make([]int16, 1024)
	c.Render(buf)
	for i, s := range buf {
		if s != 0 {
			t.Fatalf("sample %d: got %d, want 0", i, s)
		}
	}
}

func TestRender_SineFrequency(t *testing.T) {
	c := New(DefaultClock, DefaultClock/72)
	programSine(c, 0x244, 4)

	buf := make([]int16, c.SampleRate())
	c.Render(buf)

	if n := risingCrossings(buf); n < 438 || n > 442 {
		t.Errorf("got %d cycles in one second, want ~440", n)
	}

	var peak int16
	for _, s := range buf {
		if s > peak {
			peak = s
		}
	}
	if peak < 7000 {
		t.Errorf("peak: got %d, want near full scale", peak)
	}
}

func TestRender_TotalLevelAttenuates(t *testing.T) {
	loud := New(DefaultClock, 44100)
	programSine(loud, 0x244, 4)
	quiet := New(DefaultClock, 44100)
	programSine(quiet, 0x244, 4)
	quiet.WriteRegister(0x43, 0x08) // 6dB

	a := make([]int16, 4410)
	b := make([]int16, 4410)
	loud.Render(a)
	quiet.Render(b)

	var pa, pb int16
	for i := range a {
		pa = max(pa, a[i])
		pb = max(pb, b[i])
	}
	ratio := float64(pa) / float64(pb)
	if ratio < 1.9 || ratio > 2.1 {
		t.Errorf("6dB should halve amplitude: peaks %d/%d", pa, pb)
	}
}

func TestRender_WaveSelectGatesWaveform(t *testing.T) {
	c := New(DefaultClock, 44100)
	programSine(c, 0x244, 4)
	c.WriteRegister(0xE3, 0x01) // Half sine

	buf := make([]int16, 4410)
	c.Render(buf)
	if !hasNegative(buf) {
		t.Fatal("waveform must stay sine while wave select is off")
	}

	c.WriteRegister(0x01, 0x20)
	c.Render(buf)
	if hasNegative(buf) {
		t.Error("half sine should never go negative")
	}
}

func hasNegative(buf []int16) bool {
	for _, s := range buf {
		if s < 0 {
			return true
		}
	}
	return false
}

func TestComputeOperatorOutput_Waveforms(t *testing.T) {
	// Phase index 0x300 is the start of the fourth quarter
	quarter := func(q uint32) uint32 { return (q<<8 | 0x40) << 10 }

	if v := computeOperatorOutput(quarter(2), 0, waveSine); v >= 0 {
		t.Errorf("sine third quarter: got %d, want negative", v)
	}
	if v := computeOperatorOutput(quarter(2), 0, waveHalfSine); v != 0 {
		t.Errorf("half sine third quarter: got %d, want 0", v)
	}
	if v := computeOperatorOutput(quarter(2), 0, waveAbsSine); v <= 0 {
		t.Errorf("abs sine third quarter: got %d, want positive", v)
	}
	if v := computeOperatorOutput(quarter(1), 0, waveQuarterSine); v != 0 {
		t.Errorf("quarter sine second quarter: got %d, want 0", v)
	}
	if v := computeOperatorOutput(quarter(2), 0, waveQuarterSine); v <= 0 {
		t.Errorf("quarter sine third quarter: got %d, want positive", v)
	}
	if v := computeOperatorOutput(quarter(0), 0x3FF, waveSine); v != 0 {
		t.Errorf("full attenuation: got %d, want 0", v)
	}
}

func TestEnvelope_ReleaseReachesSilence(t *testing.T) {
	c := New(DefaultClock, 44100)
	programSine(c, 0x244, 4)
	c.WriteRegister(0x83, 0x0F)

	buf := make([]int16, 441)
	c.Render(buf)
	c.WriteRegister(0xB0, 0x00|4<<2|0x02)
	for i := 0; i < 20; i++ {
		c.Render(buf)
	}

	if c.Envelope(0, 1) != 0x3FF {
		t.Errorf("carrier envelope: got %X, want 3FF", c.Envelope(0, 1))
	}
	c.Render(buf)
	for i, s := range buf {
		if s != 0 {
			t.Fatalf("sample %d after release: got %d", i, s)
		}
	}
}

func TestEnvelope_SustainHoldsWithEGT(t *testing.T) {
	c := New(DefaultClock, 44100)
	programSine(c, 0x244, 4)
	c.WriteRegister(0x63, 0xFF) // Instant attack, fastest decay
	c.WriteRegister(0x83, 0x4F) // SL=4, RR=15

	buf := make([]int16, 4410)
	c.Render(buf)

	op := &c.ch[0].op[1]
	if op.egState != egSustain {
		t.Fatalf("state: got %d, want sustain", op.egState)
	}
	if lvl := c.Envelope(0, 1); lvl < 4<<5 || lvl > 4<<5+8 {
		t.Errorf("sustain level: got %d, want ~%d", lvl, 4<<5)
	}
}

func TestEnvelope_PercussiveDecaysWithoutEGT(t *testing.T) {
	c := New(DefaultClock, 44100)
	programSine(c, 0x244, 4)
	c.WriteRegister(0x23, 0x01) // EGT clear
	c.WriteRegister(0x63, 0xFF)
	c.WriteRegister(0x83, 0x4F)

	buf := make([]int16, 4410)
	c.Render(buf)

	if lvl := c.Envelope(0, 1); lvl != 0x3FF {
		t.Errorf("percussive envelope: got %X, want 3FF while key is held", lvl)
	}
}

func TestEffectiveRate(t *testing.T) {
	op := &operator{keyCode: 0x0D}
	if r := effectiveRate(0, op); r != 0 {
		t.Errorf("rate 0: got %d", r)
	}
	if r := effectiveRate(5, op); r != 20+3 {
		t.Errorf("KSR off: got %d, want 23", r)
	}
	op.ksr = true
	if r := effectiveRate(5, op); r != 20+13 {
		t.Errorf("KSR on: got %d, want 33", r)
	}
	if r := effectiveRate(15, op); r != 63 {
		t.Errorf("clamp: got %d, want 63", r)
	}
}

func TestRender_ResamplesNativeClock(t *testing.T) {
	for _, rate := range []int{8000, 22050, 44100, 48000, 96000} {
		c := New(DefaultClock, rate)
		c.Render(make([]int16, 1000))
		want := uint64(1000 * c.NativeRate() / rate)
		if c.nativeSampleCount != want {
			t.Errorf("rate %d: clocked %d native samples, want %d", rate, c.nativeSampleCount, want)
		}
	}
}

func TestSetLowPass(t *testing.T) {
	c := New(DefaultClock, 44100)
	c.SetLowPass(4000)
	if c.lpfAlpha <= 0 || c.lpfAlpha >= 1 {
		t.Errorf("alpha: got %f", c.lpfAlpha)
	}
	c.SetLowPass(0)
	if c.lpfAlpha != 0 {
		t.Error("cutoff 0 should disable the filter")
	}
}
