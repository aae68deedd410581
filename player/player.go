// Package player connects a replay engine, an OPL chip and an audio clock
// behind an io.Reader that an audio backend pulls from, and serializes
// tune changes against the audio thread.
package player

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/user-none/pisplay/opl"
	"github.com/user-none/pisplay/pis"
)

// ErrClosed is returned by operations on a closed player.
var ErrClosed = errors.New("player closed")

// ModuleLoader provides parsed modules by path.
type ModuleLoader interface {
	Load(path string) (*pis.Module, error)
}

// Config selects the output stream produced by Read.
type Config struct {
	SampleRate int
	Channels   int
	Format     pis.Format
	ChipClock  int     // OPL master clock in Hz
	LowPassHz  float64 // Output filter cutoff, 0 to disable
}

// DefaultConfig returns 48kHz stereo signed 16-bit output.
func DefaultConfig() Config {
	return Config{
		SampleRate: 48000,
		Channels:   2,
		Format:     pis.FormatS16,
		ChipClock:  opl.DefaultClock,
	}
}

// Player plays one module at a time.
type Player struct {
	cfg    Config
	loader ModuleLoader

	chip   *opl.Chip
	engine *pis.Engine
	clock  *pis.Clock
	gate   *Gate

	// ctl serializes control operations
	ctl    sync.Mutex
	closed bool

	// Written while the gate is paused, read by the audio thread inside it
	path string

	stopReq atomic.Bool
	held    atomic.Bool

	status SharedStatus

	// Owned by the audio thread
	enc   pis.FrameEncoder
	mono  []int16
	meter Meter
}

// New creates a stopped player. loader may be nil if only LoadModule is used.
func New(cfg Config, loader ModuleLoader) *Player {
	def := DefaultConfig()
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = def.SampleRate
	}
	if cfg.Channels <= 0 {
		cfg.Channels = def.Channels
	}
	if cfg.ChipClock <= 0 {
		cfg.ChipClock = def.ChipClock
	}

	chip := opl.New(cfg.ChipClock, cfg.SampleRate)
	chip.SetLowPass(cfg.LowPassHz)
	engine := pis.NewEngine(chip)

	p := &Player{
		cfg:    cfg,
		loader: loader,
		chip:   chip,
		engine: engine,
		gate:   NewGate(),
		enc:    pis.FrameEncoder{Format: cfg.Format, Channels: cfg.Channels},
	}
	p.clock = pis.NewClock(stopTicker{p}, chip, cfg.SampleRate)
	return p
}

// Config returns the output configuration.
func (p *Player) Config() Config {
	return p.cfg
}

// LoadAndPlay loads the module at path and starts it from the beginning.
// On failure the current tune keeps playing untouched.
func (p *Player) LoadAndPlay(path string) error {
	if p.loader == nil {
		return errors.New("player has no module loader")
	}
	m, err := p.loader.Load(path)
	if err != nil {
		return err
	}
	return p.LoadModule(m, path)
}

// LoadModule installs an already parsed module and starts it. path is
// only reported in the status.
func (p *Player) LoadModule(m *pis.Module, path string) error {
	if m == nil {
		return errors.New("nil module")
	}

	p.ctl.Lock()
	defer p.ctl.Unlock()
	if p.closed {
		return ErrClosed
	}

	p.gate.Pause()
	p.engine.Start(m)
	p.clock.Reset()
	p.path = path
	p.stopReq.Store(false)
	p.status.Update(p.snapshot())
	p.gate.Resume()
	return nil
}

// Stop halts the sequencer at the next tick. Notes already keyed on
// keep sounding through their release.
func (p *Player) Stop() {
	p.stopReq.Store(true)
}

// SetHeld freezes or unfreezes playback. A held player renders silence
// without advancing the song.
func (p *Player) SetHeld(held bool) {
	p.held.Store(held)
}

// TogglePause flips the held state and returns the new value.
func (p *Player) TogglePause() bool {
	for {
		old := p.held.Load()
		if p.held.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// Status returns the latest snapshot published by the audio thread.
func (p *Player) Status() Status {
	s := p.status.Read()
	s.Held = p.held.Load()
	return s
}

// Close stops playback. Read returns io.EOF afterwards.
func (p *Player) Close() error {
	p.ctl.Lock()
	defer p.ctl.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	p.gate.Close()
	p.engine.Stop()
	return nil
}

// Read fills b with whole frames of audio in the configured format. It is
// called by the audio backend and never blocks on control operations.
func (p *Player) Read(b []byte) (int, error) {
	if p.gate.Closed() {
		return 0, io.EOF
	}
	frames := len(b) / p.enc.FrameSize()
	if frames == 0 {
		return 0, nil
	}
	if cap(p.mono) < frames {
		p.mono = make([]int16, frames)
	}
	mono := p.mono[:frames]

	if p.gate.Enter() {
		// A held player never ticks, so pick up a stop here too.
		p.applyStop()
		if p.held.Load() {
			clear(mono)
		} else {
			p.clock.Render(mono)
		}
		p.status.Update(p.snapshot())
		p.gate.Leave()
	} else {
		clear(mono)
	}

	p.status.SetLevels(p.meter.Measure(mono))
	return p.enc.Encode(b, mono), nil
}

// stopTicker ticks the engine unless a stop was requested since the last
// tick. The clock calls it from inside Read, so a stop lands on the next
// tick even when one Read spans several.
type stopTicker struct {
	p *Player
}

func (t stopTicker) Tick() {
	if t.p.applyStop() {
		return
	}
	t.p.engine.Tick()
}

// applyStop consumes a pending stop request. Callers hold the gate.
func (p *Player) applyStop() bool {
	if !p.stopReq.Swap(false) {
		return false
	}
	p.engine.Stop()
	return true
}

// snapshot builds a status from engine state. Callers hold the gate.
func (p *Player) snapshot() Status {
	t := p.engine.Transport()
	s := Status{
		Path:        p.path,
		Playing:     t.Playing,
		Position:    t.Position,
		OrderLength: t.OrderLength,
		Row:         t.Row,
		Speed:       t.Speed,
		Ticks:       t.Ticks,
		Seconds:     float64(t.Ticks) / pis.TickRate,
	}
	for v := range s.Voices {
		vs := p.engine.Voice(v)
		inst := -1
		if i, ok := vs.Instrument.Get(); ok {
			inst = i
		}
		s.Voices[v] = VoiceStatus{
			Instrument: inst,
			Note:       vs.Note,
			Octave:     vs.Octave,
			Frequency:  vs.Frequency,
			Volume:     vs.Volume,
			KeyOn:      p.chip.KeyOn(v),
		}
	}
	return s
}
