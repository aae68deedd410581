package ui

import (
	"testing"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/user-none/pisplay/pis"
	"github.com/user-none/pisplay/player"
)

func TestContextOptions(t *testing.T) {
	tests := []struct {
		format pis.Format
		want   oto.Format
	}{
		{pis.FormatS16, oto.FormatSignedInt16LE},
		{pis.FormatFloat32, oto.FormatFloat32LE},
	}
	for _, tc := range tests {
		cfg := player.Config{SampleRate: 44100, Channels: 1, Format: tc.format}
		op, err := contextOptions(cfg)
		if err != nil {
			t.Fatalf("%v: %v", tc.format, err)
		}
		if op.Format != tc.want {
			t.Errorf("%v: format got %v, want %v", tc.format, op.Format, tc.want)
		}
		if op.SampleRate != 44100 || op.ChannelCount != 1 {
			t.Errorf("%v: got %d Hz / %d ch", tc.format, op.SampleRate, op.ChannelCount)
		}
		if op.BufferSize != 50*time.Millisecond {
			t.Errorf("%v: buffer size %v", tc.format, op.BufferSize)
		}
	}
}

func TestContextOptions_UnknownFormat(t *testing.T) {
	if _, err := contextOptions(player.Config{SampleRate: 48000, Channels: 2, Format: pis.Format(99)}); err == nil {
		t.Error("expected error for unknown format")
	}
}
