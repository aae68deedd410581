package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/user-none/pisplay/jukebox"
	"github.com/user-none/pisplay/loader"
	"github.com/user-none/pisplay/pis"
	"github.com/user-none/pisplay/player"
	"github.com/user-none/pisplay/ui"
)

// outputFlags select the live audio output.
type outputFlags struct {
	playlist string
	volume   float64
	rate     int
	format   string
	lowPass  float64
	cache    int
}

func (o *outputFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.playlist, "playlist", "", "YAML playlist (default: arguments or built in list)")
	f.Float64Var(&o.volume, "volume", 1.0, "output volume, 0.0 to 1.0")
	f.IntVar(&o.rate, "rate", 48000, "output sample rate in Hz")
	f.StringVar(&o.format, "format", "s16", "output sample format: s16 or f32")
	f.Float64Var(&o.lowPass, "lowpass", 0, "output low-pass cutoff in Hz, 0 to disable")
	f.IntVar(&o.cache, "cache", loader.DefaultCacheSize, "number of parsed modules to keep")
}

// session is a running player with audio output and a jukebox.
type session struct {
	fs      afero.Fs
	loader  *loader.Loader
	player  *player.Player
	audio   *ui.AudioPlayer
	jukebox *jukebox.Jukebox
}

func (o *outputFlags) playlistFor(fs afero.Fs, args []string) (*jukebox.Playlist, error) {
	switch {
	case o.playlist != "":
		return jukebox.LoadPlaylist(fs, o.playlist)
	case len(args) > 0:
		return jukebox.FromPaths(args), nil
	default:
		return jukebox.DefaultPlaylist(), nil
	}
}

// openSession starts playback of the first tune. Audio failure is only a
// warning so the HTTP API stays usable on machines without sound.
func openSession(o *outputFlags, args []string) (*session, error) {
	format, err := pis.ParseFormat(o.format)
	if err != nil {
		return nil, err
	}

	fs := afero.NewOsFs()
	list, err := o.playlistFor(fs, args)
	if err != nil {
		return nil, err
	}

	l, err := loader.New(fs, o.cache)
	if err != nil {
		return nil, err
	}

	cfg := player.DefaultConfig()
	cfg.SampleRate = o.rate
	cfg.Format = format
	cfg.LowPassHz = o.lowPass
	p := player.New(cfg, l)

	jb, err := jukebox.New(list, p)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("invalid playlist: %w", err)
	}
	if err := jb.Start(); err != nil {
		log.Printf("Warning: %v", err)
	}

	audio, err := ui.NewAudioPlayer(p, p.Config(), o.volume)
	if err != nil {
		log.Printf("Warning: audio initialization failed: %v", err)
	}

	return &session{fs: fs, loader: l, player: p, audio: audio, jukebox: jb}, nil
}

func (s *session) Close() {
	if s.audio != nil {
		s.audio.Close()
	}
	s.player.Close()
}

// runFrames advances the jukebox at 50Hz until ctx is done.
func (s *session) runFrames(ctx context.Context) error {
	t := time.NewTicker(time.Second / jukebox.FrameRate)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			s.jukebox.Frame()
		}
	}
}

// drain pulls audio from the player in real time and discards it, so a
// session without a sound device still advances.
func (s *session) drain(ctx context.Context) error {
	if s.audio != nil {
		return nil
	}
	cfg := s.player.Config()
	frameSize := cfg.Channels * cfg.Format.BytesPerSample()
	buf := make([]byte, cfg.SampleRate/jukebox.FrameRate*frameSize)

	t := time.NewTicker(time.Second / jukebox.FrameRate)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if _, err := s.player.Read(buf); err != nil {
				return nil
			}
		}
	}
}
