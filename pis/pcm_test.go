package pis

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"s16": FormatS16, "int16": FormatS16, "f32": FormatFloat32, "float": FormatFloat32} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("%q: got %v, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("u8"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestInt16ToFloat32(t *testing.T) {
	got := Int16ToFloat32(nil, []int16{0, 16384, -32768, 32767})
	want := []float32{0, 0.5, -1, 32767.0 / 32768.0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFrameEncoder_S16Stereo(t *testing.T) {
	fe := &FrameEncoder{Format: FormatS16, Channels: 2}
	if fe.FrameSize() != 4 {
		t.Fatalf("frame size: got %d, want 4", fe.FrameSize())
	}
	dst := make([]byte, 8)
	n := fe.Encode(dst, []int16{0x1234, -2})
	if n != 8 {
		t.Fatalf("bytes written: got %d, want 8", n)
	}
	for i, want := range []uint16{0x1234, 0x1234, 0xFFFE, 0xFFFE} {
		if got := binary.LittleEndian.Uint16(dst[i*2:]); got != want {
			t.Errorf("word %d: got %04X, want %04X", i, got, want)
		}
	}
}

func TestFrameEncoder_Float32Mono(t *testing.T) {
	fe := &FrameEncoder{Format: FormatFloat32}
	dst := make([]byte, 8)
	n := fe.Encode(dst, []int16{16384, -16384})
	if n != 8 {
		t.Fatalf("bytes written: got %d, want 8", n)
	}
	for i, want := range []float32{0.5, -0.5} {
		if got := math.Float32frombits(binary.LittleEndian.Uint32(dst[i*4:])); got != want {
			t.Errorf("sample %d: got %v, want %v", i, got, want)
		}
	}
}
