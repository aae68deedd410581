// Package ui connects a player to the platform audio output.
package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/user-none/pisplay/pis"
	"github.com/user-none/pisplay/player"
)

// AudioPlayer pulls PCM from a source reader through oto.
type AudioPlayer struct {
	player *oto.Player
}

// oto context singleton
var (
	otoCtx      *oto.Context
	otoInitOnce sync.Once
	otoInitErr  error
	otoOptions  oto.NewContextOptions
)

// otoFormat maps a sample format to the oto constant.
func otoFormat(f pis.Format) (oto.Format, error) {
	switch f {
	case pis.FormatS16:
		return oto.FormatSignedInt16LE, nil
	case pis.FormatFloat32:
		return oto.FormatFloat32LE, nil
	}
	return 0, fmt.Errorf("unsupported sample format %v", f)
}

// contextOptions builds the oto options for an output configuration.
func contextOptions(cfg player.Config) (oto.NewContextOptions, error) {
	format, err := otoFormat(cfg.Format)
	if err != nil {
		return oto.NewContextOptions{}, err
	}
	return oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: cfg.Channels,
		Format:       format,
		BufferSize:   50 * time.Millisecond,
	}, nil
}

// ensureOtoContext initializes the oto audio context on first use. oto
// allows one context per process, so later calls must ask for the same
// output.
func ensureOtoContext(op oto.NewContextOptions) (*oto.Context, error) {
	otoInitOnce.Do(func() {
		otoOptions = op
		var readyChan chan struct{}
		otoCtx, readyChan, otoInitErr = oto.NewContext(&op)
		if otoInitErr != nil {
			return
		}
		<-readyChan
	})
	if otoInitErr != nil {
		return nil, otoInitErr
	}
	if op.SampleRate != otoOptions.SampleRate || op.ChannelCount != otoOptions.ChannelCount || op.Format != otoOptions.Format {
		return nil, fmt.Errorf("audio already opened at %d Hz, %d channels", otoOptions.SampleRate, otoOptions.ChannelCount)
	}
	return otoCtx, nil
}

// NewAudioPlayer starts playback of src, which must produce frames in the
// layout described by cfg.
func NewAudioPlayer(src io.Reader, cfg player.Config, volume float64) (*AudioPlayer, error) {
	op, err := contextOptions(cfg)
	if err != nil {
		return nil, err
	}
	ctx, err := ensureOtoContext(op)
	if err != nil {
		return nil, fmt.Errorf("oto audio not available: %w", err)
	}

	p := ctx.NewPlayer(src)
	// About 100ms of device buffering
	frameSize := cfg.Channels * cfg.Format.BytesPerSample()
	p.SetBufferSize(cfg.SampleRate / 10 * frameSize)
	p.SetVolume(volume)
	p.Play()

	return &AudioPlayer{player: p}, nil
}

// SetVolume sets the playback volume (0.0 = silent, 1.0 = full).
func (a *AudioPlayer) SetVolume(vol float64) {
	a.player.SetVolume(vol)
}

// BufferedSize returns the bytes queued inside oto.
func (a *AudioPlayer) BufferedSize() int {
	return a.player.BufferedSize()
}

// Close stops the oto player. The source reader is not closed.
func (a *AudioPlayer) Close() {
	if a.player != nil {
		a.player.Close()
	}
}
