package pis

import "testing"

func TestVolumeSlide_UpClampsAt63(t *testing.T) {
	m := newTestModule(1)
	setCell(m, 0, Row{Note: 0, Octave: 4, Instrument: 1, Effect: 0xC3E})
	for row := 1; row < 5; row++ {
		setCell(m, row, Row{Note: 12, Effect: 0xEA5})
	}
	e, _ := newTestEngine(t, m)

	stepRow(e)
	if v := e.Voice(0).Volume; v != 62 {
		t.Fatalf("start volume: got %d, want 62", v)
	}
	for row := 1; row < 5; row++ {
		stepRow(e)
		if v := e.Voice(0).Volume; v != 63 {
			t.Errorf("row %d: volume got %d, want 63", row, v)
		}
	}
}

func TestVolumeSlide_DownClampsAt2(t *testing.T) {
	m := newTestModule(1)
	setCell(m, 0, Row{Note: 0, Octave: 4, Instrument: 1, Effect: 0xC05})
	for row := 1; row < 5; row++ {
		setCell(m, row, Row{Note: 12, Effect: 0xEB5})
	}
	e, dev := newTestEngine(t, m)

	stepRow(e)
	if v := e.Voice(0).Volume; v != 5 {
		t.Fatalf("start volume: got %d, want 5", v)
	}
	for row := 1; row < 5; row++ {
		stepRow(e)
		if v := e.Voice(0).Volume; v != 2 {
			t.Errorf("row %d: volume got %d, want 2", row, v)
		}
	}
	// 64 - (2*48 >> 6) = 63
	if dev.regs[0x40] != 63 {
		t.Errorf("modulator level: got %d, want 63", dev.regs[0x40])
	}
}

func TestVolumeSlide_WithoutInstrumentIgnored(t *testing.T) {
	m := newTestModule(1)
	setCell(m, 0, Row{Note: 12, Effect: 0xEA5})
	e, dev := newTestEngine(t, m)
	dev.clear()

	stepRow(e)

	if dev.indexOf(0x40) >= 0 {
		t.Error("volume slide without instrument must not write levels")
	}
}

func TestPortamento_ConvergesUp(t *testing.T) {
	for _, inc := range []int{1, 3, 8, 0x40, 0xFF} {
		e, dev := newTestEngine(t, newTestModule(1))
		vs := &e.voices[0]
		vs.Frequency, vs.Octave = 0x200, 3
		vs.PortaDestFreq, vs.PortaDestOctave = 0x180, 4
		vs.PortaSign = 1
		vs.PortaIncrement = inc

		dest := pitch(0x180, 4)
		for i := 0; vs.PortaIncrement != 0; i++ {
			if i > 10000 {
				t.Fatalf("inc %d: portamento never arrived", inc)
			}
			e.perFrameEffects()
			if p := pitch(vs.Frequency, vs.Octave); p > dest {
				t.Fatalf("inc %d: overshoot to %03X/%d", inc, vs.Frequency, vs.Octave)
			}
		}

		if vs.Frequency != 0x180 || vs.Octave != 4 {
			t.Errorf("inc %d: arrived at %03X/%d, want 180/4", inc, vs.Frequency, vs.Octave)
		}
		if dev.regs[0xA0] != 0x80 || dev.regs[0xB0] != 0x31 {
			t.Errorf("inc %d: device pitch %02X/%02X, want 80/31", inc, dev.regs[0xA0], dev.regs[0xB0])
		}
	}
}

func TestPortamento_ConvergesDown(t *testing.T) {
	for _, inc := range []int{1, 8, 0x30} {
		e, _ := newTestEngine(t, newTestModule(1))
		vs := &e.voices[0]
		vs.Frequency, vs.Octave = 0x180, 4
		vs.PortaDestFreq, vs.PortaDestOctave = 0x200, 3
		vs.PortaSign = -1
		vs.PortaIncrement = inc

		dest := pitch(0x200, 3)
		for i := 0; vs.PortaIncrement != 0; i++ {
			if i > 10000 {
				t.Fatalf("inc %d: portamento never arrived", inc)
			}
			e.perFrameEffects()
			if p := pitch(vs.Frequency, vs.Octave); p < dest {
				t.Fatalf("inc %d: overshoot to %03X/%d", inc, vs.Frequency, vs.Octave)
			}
		}
		if vs.Frequency != 0x200 || vs.Octave != 3 {
			t.Errorf("inc %d: arrived at %03X/%d, want 200/3", inc, vs.Frequency, vs.Octave)
		}
	}
}

func TestPortamento_OctaveWrapUp(t *testing.T) {
	e, _ := newTestEngine(t, newTestModule(1))
	vs := &e.voices[0]
	vs.Frequency, vs.Octave = 0x280, 3
	vs.PortaDestFreq, vs.PortaDestOctave = 0x200, 4
	vs.PortaSign = 1
	vs.PortaIncrement = 0x10

	e.perFrameEffects()

	// 0x290 is past B, so it folds to 0x143 + 9 one octave up
	if vs.Frequency != 0x14C || vs.Octave != 4 {
		t.Errorf("got %03X/%d, want 14C/4", vs.Frequency, vs.Octave)
	}
}

func TestArpeggio_Cycles(t *testing.T) {
	m := newTestModule(1)
	setCell(m, 0, Row{Note: 0, Octave: 4, Instrument: 1, Effect: 0x047})
	e, dev := newTestEngine(t, m)
	stepRow(e)

	want := []struct{ lo, hi uint8 }{
		{0xB0, 0x31}, // E
		{0x02, 0x32}, // G
		{0x57, 0x31}, // C
	}
	for i, w := range want {
		e.Tick()
		if dev.regs[0xA0] != w.lo || dev.regs[0xB0] != w.hi {
			t.Errorf("step %d: got %02X/%02X, want %02X/%02X", i, dev.regs[0xA0], dev.regs[0xB0], w.lo, w.hi)
		}
	}
}

func TestArpeggio_WrapsIntoNextOctave(t *testing.T) {
	m := newTestModule(1)
	setCell(m, 0, Row{Note: 9, Octave: 4, Instrument: 1, Effect: 0x037})
	e, _ := newTestEngine(t, m)
	stepRow(e)

	vs := e.Voice(0)
	if vs.ArpeggioFreq[1] != 0x157 || vs.ArpeggioOctave[1] != 5 {
		t.Errorf("step 1: got %03X/%d, want 157/5", vs.ArpeggioFreq[1], vs.ArpeggioOctave[1])
	}
	if vs.ArpeggioFreq[2] != 0x1B0 || vs.ArpeggioOctave[2] != 5 {
		t.Errorf("step 2: got %03X/%d, want 1B0/5", vs.ArpeggioFreq[2], vs.ArpeggioOctave[2])
	}
}

func TestArpeggio_ClampsNoteIndex(t *testing.T) {
	m := newTestModule(1)
	// 11+15 and 11+14 both land past B of the next octave
	setCell(m, 0, Row{Note: 11, Octave: 7, Instrument: 1, Effect: 0x0FE})
	e, dev := newTestEngine(t, m)
	stepRow(e)

	vs := e.Voice(0)
	for i := 1; i <= 2; i++ {
		if vs.ArpeggioFreq[i] != 0x287 || vs.ArpeggioOctave[i] != 8 {
			t.Errorf("step %d: got %03X/%d, want 287/8", i, vs.ArpeggioFreq[i], vs.ArpeggioOctave[i])
		}
	}

	e.Tick()
	// Octave 8 is written as 7
	if dev.regs[0xB0] != 0x20|7<<2|0x02 {
		t.Errorf("key/block: got %02X", dev.regs[0xB0])
	}
}

func TestArpeggio_ParamFFAfterNoteIsIgnored(t *testing.T) {
	m := newTestModule(1)
	setCell(m, 0, Row{Note: 11, Octave: 7, Instrument: 1, Effect: 0x0FF})
	e, _ := newTestEngine(t, m)
	stepRow(e)

	vs := e.Voice(0)
	if vs.Arpeggio {
		t.Error("param FF matches the absent previous effect and must not build a table")
	}
	for i, f := range vs.ArpeggioFreq {
		if f != 0 {
			t.Errorf("step %d: got %03X, want 000", i, f)
		}
	}
}

func TestArpeggio_SameParamKeepsTable(t *testing.T) {
	m := newTestModule(1)
	setCell(m, 0, Row{Note: 0, Octave: 4, Instrument: 1, Effect: 0x047})
	setCell(m, 1, Row{Note: 12, Effect: 0x047})
	e, _ := newTestEngine(t, m)

	stepRow(e)
	e.voices[0].ArpeggioFreq[1] = 0x111
	stepRow(e)

	if got := e.Voice(0).ArpeggioFreq[1]; got != 0x111 {
		t.Errorf("table rebuilt for repeated parameter: got %03X", got)
	}
	if !e.Voice(0).Arpeggio {
		t.Error("arpeggio should stay enabled")
	}
}

func TestSlide_UpAndDown(t *testing.T) {
	tests := []struct {
		effect Effect
		freq   int
	}{
		{0x110, 0x167},
		{0x210, 0x147},
	}
	for _, tc := range tests {
		m := newTestModule(1)
		setCell(m, 0, Row{Note: 0, Octave: 4, Instrument: 1, Effect: tc.effect})
		e, dev := newTestEngine(t, m)
		stepRow(e)
		e.Tick()

		if got := e.Voice(0).Frequency; got != tc.freq {
			t.Errorf("effect %03X: frequency got %03X, want %03X", tc.effect, got, tc.freq)
		}
		if dev.regs[0xA0] != uint8(tc.freq) {
			t.Errorf("effect %03X: device freq got %02X", tc.effect, dev.regs[0xA0])
		}
	}
}

func TestSpeed_SetsTicksPerRow(t *testing.T) {
	m := newTestModule(1)
	setCell(m, 0, Row{Note: 12, Effect: 0xF03})
	e, _ := newTestEngine(t, m)

	stepRow(e)
	if e.speed != 3 {
		t.Fatalf("speed: got %d, want 3", e.speed)
	}
	for i := 0; i < 2; i++ {
		e.Tick()
		if e.row != 1 || e.count == 0 {
			t.Fatalf("tick %d: row advanced early", i)
		}
	}
	e.Tick()
	if e.row != 2 {
		t.Errorf("row: got %d, want 2", e.row)
	}
}

func TestSpeedZero_StopsPlayback(t *testing.T) {
	m := newTestModule(1)
	setCell(m, 0, Row{Note: 0, Octave: 4, Instrument: 1})
	setCell(m, 1, Row{Note: 12, Effect: 0xF00})
	setCell(m, 2, Row{Note: 2, Octave: 4})
	e, dev := newTestEngine(t, m)

	stepRow(e)
	stepRow(e)
	if e.Playing() {
		t.Fatal("F00 should stop playback")
	}

	dev.clear()
	before := e.Transport()
	for i := 0; i < 100; i++ {
		e.Tick()
	}
	if len(dev.writes) != 0 {
		t.Errorf("ticks after stop wrote %d registers", len(dev.writes))
	}
	if after := e.Transport(); after != before {
		t.Errorf("transport changed after stop: %+v -> %+v", before, after)
	}

	e.Start(m)
	if !e.Playing() {
		t.Error("a new load should restart playback")
	}
}
