package pis

import "testing"

func TestUnpackRow_Fields(t *testing.T) {
	r := UnpackRow(PackRowBytes(0x5A, 0x3F, 0x12))

	if r.Note != 5 {
		t.Errorf("note: got %d, want 5", r.Note)
	}
	if r.Octave != 5 {
		t.Errorf("octave: got %d, want 5", r.Octave)
	}
	if r.Instrument != 3 {
		t.Errorf("instrument: got %d, want 3", r.Instrument)
	}
	if r.Effect != 0xF12 {
		t.Errorf("effect: got 0x%03X, want 0xF12", r.Effect)
	}
}

func TestUnpackRow_InstrumentHighBit(t *testing.T) {
	// Bit 0 of byte 0 is instrument bit 4
	r := UnpackRow(PackRowBytes(0x01, 0x20, 0x00))
	if r.Instrument != 0x12 {
		t.Errorf("instrument: got 0x%02X, want 0x12", r.Instrument)
	}
}

func TestRowPack_RoundTrip(t *testing.T) {
	for b0 := 0; b0 < 256; b0++ {
		for _, b1 := range []uint8{0x00, 0x0F, 0x3F, 0x80, 0xF1, 0xFF} {
			for _, b2 := range []uint8{0x00, 0x12, 0x7F, 0xFF} {
				packed := PackRowBytes(uint8(b0), b1, b2)
				if got := UnpackRow(packed).Pack(); got != packed {
					t.Fatalf("round trip of %06X gave %06X", packed, got)
				}
			}
		}
	}
}

func TestEffect_Fields(t *testing.T) {
	e := Effect(0xE6A)
	if e.Class() != 0xE {
		t.Errorf("class: got %X, want E", e.Class())
	}
	if e.Param() != 0x6A {
		t.Errorf("param: got %02X, want 6A", e.Param())
	}
	if e.Mid() != 0x6 {
		t.Errorf("mid: got %X, want 6", e.Mid())
	}
	if e.Low() != 0xA {
		t.Errorf("low: got %X, want A", e.Low())
	}
}

func TestRow_HasNoteAndInstrument(t *testing.T) {
	tests := []struct {
		row        Row
		note, inst bool
	}{
		{Row{Note: 0}, true, false},
		{Row{Note: 11, Instrument: 1}, true, true},
		{Row{Note: 12, Instrument: 31}, false, true},
		{Row{Note: 15}, false, false},
	}
	for _, tc := range tests {
		if tc.row.HasNote() != tc.note {
			t.Errorf("%+v HasNote: got %v, want %v", tc.row, tc.row.HasNote(), tc.note)
		}
		if tc.row.HasInstrument() != tc.inst {
			t.Errorf("%+v HasInstrument: got %v, want %v", tc.row, tc.row.HasInstrument(), tc.inst)
		}
	}
}
