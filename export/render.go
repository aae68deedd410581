// Package export renders modules offline to WAV audio and Standard MIDI
// Files.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/user-none/pisplay/opl"
	"github.com/user-none/pisplay/pis"
)

// DefaultMaxDuration bounds renders of songs that loop forever.
const DefaultMaxDuration = 10 * time.Minute

// releaseTail is rendered after a song stops so the last notes can decay.
const releaseTail = time.Second

// End reports why a render finished.
type End int

const (
	EndLimit   End = iota // Duration limit reached
	EndStopped            // Song stopped itself with speed 0
	EndLooped             // Order jumped backwards
)

func (e End) String() string {
	switch e {
	case EndStopped:
		return "stopped"
	case EndLooped:
		return "looped"
	default:
		return "limit"
	}
}

// Options controls an offline render.
type Options struct {
	SampleRate  int
	ChipClock   int
	LowPassHz   float64
	MaxDuration time.Duration

	// StopAtLoop ends the render the first time the order position moves
	// backwards, which is how songs repeat. A single position song ends
	// when its row moves backwards.
	StopAtLoop bool
}

func (o Options) withDefaults() Options {
	if o.SampleRate <= 0 {
		o.SampleRate = 44100
	}
	if o.ChipClock <= 0 {
		o.ChipClock = opl.DefaultClock
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = DefaultMaxDuration
	}
	return o
}

func (o Options) maxTicks() uint64 {
	return uint64(o.MaxDuration * pis.TickRate / time.Second)
}

// Summary describes a finished render.
type Summary struct {
	Ticks    uint64
	Duration time.Duration
	End      End
}

// runSong calls step once per tick until the song ends, the limit is
// reached or ctx is cancelled. step must advance e by exactly one tick.
func runSong(ctx context.Context, e *pis.Engine, opts Options, step func()) (Summary, error) {
	var sum Summary
	limit := opts.maxTicks()
	lastPos, lastRow := 0, 0

	for sum.Ticks < limit {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		step()
		sum.Ticks++

		t := e.Transport()
		if !t.Playing {
			sum.End = EndStopped
			break
		}
		if opts.StopAtLoop && looped(t, lastPos, lastRow) {
			sum.End = EndLooped
			break
		}
		lastPos, lastRow = t.Position, t.Row
	}
	sum.Duration = time.Duration(sum.Ticks) * time.Second / pis.TickRate
	return sum, nil
}

func looped(t pis.Transport, lastPos, lastRow int) bool {
	if t.Position < lastPos {
		return true
	}
	return t.OrderLength == 1 && t.Row < lastRow
}

// Render plays m from the start and returns mono samples at
// opts.SampleRate.
func Render(ctx context.Context, m *pis.Module, opts Options) ([]int16, Summary, error) {
	if m == nil {
		return nil, Summary{}, fmt.Errorf("render: nil module")
	}
	opts = opts.withDefaults()

	chip := opl.New(opts.ChipClock, opts.SampleRate)
	chip.SetLowPass(opts.LowPassHz)
	engine := pis.NewEngine(chip)
	engine.Start(m)
	clock := pis.NewClock(engine, chip, opts.SampleRate)

	// The clock starts a full tick from the boundary, so each chunk of
	// one tick's samples ends with exactly one Tick.
	chunk := make([]int16, clock.SamplesPerTick())
	var out []int16
	sum, err := runSong(ctx, engine, opts, func() {
		clock.Render(chunk)
		out = append(out, chunk...)
	})
	if err != nil {
		return nil, sum, err
	}

	if sum.End == EndStopped {
		tail := make([]int16, int(releaseTail*time.Duration(opts.SampleRate)/time.Second))
		chip.Render(tail)
		out = append(out, tail...)
	}
	return out, sum, nil
}
