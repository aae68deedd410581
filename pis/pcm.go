package pis

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/viterin/vek/vek32"
)

// Format is an output sample encoding.
type Format int

const (
	FormatS16     Format = iota // Signed 16-bit little endian
	FormatFloat32               // 32-bit float little endian, -1..1
)

func (f Format) String() string {
	switch f {
	case FormatS16:
		return "s16"
	case FormatFloat32:
		return "f32"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// BytesPerSample returns the size of one encoded sample.
func (f Format) BytesPerSample() int {
	if f == FormatFloat32 {
		return 4
	}
	return 2
}

// ParseFormat accepts "s16" or "f32".
func ParseFormat(s string) (Format, error) {
	switch s {
	case "s16", "S16", "int16":
		return FormatS16, nil
	case "f32", "F32", "float32", "float":
		return FormatFloat32, nil
	}
	return 0, fmt.Errorf("unknown sample format %q (use s16 or f32)", s)
}

// Int16ToFloat32 converts samples to floats in [-1, 1).
func Int16ToFloat32(dst []float32, src []int16) []float32 {
	if cap(dst) < len(src) {
		dst = make([]float32, len(src))
	}
	dst = dst[:len(src)]
	for i, s := range src {
		dst[i] = float32(s)
	}
	vek32.MulNumber_Inplace(dst, 1.0/32768.0)
	return dst
}

// FrameEncoder writes mono samples as interleaved frames, copying each
// sample to every channel.
type FrameEncoder struct {
	Format   Format
	Channels int
	scratch  []float32
}

// FrameSize returns the number of bytes in one frame.
func (fe *FrameEncoder) FrameSize() int {
	return fe.Format.BytesPerSample() * fe.channels()
}

func (fe *FrameEncoder) channels() int {
	if fe.Channels < 1 {
		return 1
	}
	return fe.Channels
}

// Encode writes len(mono) frames to dst and returns the bytes written.
// dst must hold at least len(mono)*FrameSize() bytes.
func (fe *FrameEncoder) Encode(dst []byte, mono []int16) int {
	ch := fe.channels()
	off := 0

	if fe.Format == FormatFloat32 {
		fe.scratch = Int16ToFloat32(fe.scratch, mono)
		for _, f := range fe.scratch {
			bits := math.Float32bits(f)
			for c := 0; c < ch; c++ {
				binary.LittleEndian.PutUint32(dst[off:], bits)
				off += 4
			}
		}
		return off
	}

	for _, s := range mono {
		for c := 0; c < ch; c++ {
			binary.LittleEndian.PutUint16(dst[off:], uint16(s))
			off += 2
		}
	}
	return off
}
