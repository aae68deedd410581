package export

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/user-none/pisplay/pis"
)

// One quarter note at 120 bpm lasts 25 replay ticks, so MIDI ticks and
// replay ticks line up one to one.
const (
	midiResolution = 25
	midiTempoBPM   = 120
)

// carrierLevelReg gives the carrier total level register of each voice.
var carrierLevelReg = [pis.Voices]uint8{0x43, 0x44, 0x45, 0x4B, 0x4C, 0x4D, 0x53, 0x54, 0x55}

type noteEvent struct {
	tick     uint64
	voice    uint8
	on       bool
	key      uint8
	velocity uint8
}

// noteRecorder is a Device that turns key-on register writes into note
// events instead of sound.
type noteRecorder struct {
	clockHz  float64
	tick     uint64
	regs     [256]uint8
	sounding [pis.Voices]int // MIDI key, -1 when silent
	events   []noteEvent
}

func newNoteRecorder(clockHz int) *noteRecorder {
	r := &noteRecorder{clockHz: float64(clockHz)}
	for v := range r.sounding {
		r.sounding[v] = -1
	}
	return r
}

func (r *noteRecorder) Reset() {
	r.silenceAll()
	r.regs = [256]uint8{}
}

func (r *noteRecorder) Render(out []int16) {
	clear(out)
}

func (r *noteRecorder) WriteRegister(addr, val uint8) {
	r.regs[addr] = val
	if addr < 0xB0 || addr >= 0xB0+pis.Voices {
		return
	}

	v := addr - 0xB0
	if val&0x20 == 0 {
		r.release(v)
		return
	}

	fnum := int(r.regs[0xA0+v]) | int(val&0x03)<<8
	block := int(val>>2) & 0x07
	key := midiKey(fnum, block, r.clockHz)
	if r.sounding[v] == key {
		return
	}
	r.release(v)
	r.events = append(r.events, noteEvent{
		tick:     r.tick,
		voice:    v,
		on:       true,
		key:      uint8(key),
		velocity: levelVelocity(r.regs[carrierLevelReg[v]]),
	})
	r.sounding[v] = key
}

func (r *noteRecorder) release(v uint8) {
	if r.sounding[v] < 0 {
		return
	}
	r.events = append(r.events, noteEvent{tick: r.tick, voice: v, key: uint8(r.sounding[v])})
	r.sounding[v] = -1
}

func (r *noteRecorder) silenceAll() {
	for v := range r.sounding {
		r.release(uint8(v))
	}
}

// midiKey converts an OPL frequency number and block to the nearest MIDI
// key, clamped to 0-127.
func midiKey(fnum, block int, clockHz float64) int {
	if fnum == 0 {
		return 0
	}
	hz := float64(fnum) * (clockHz / 72) / math.Exp2(float64(20-block))
	key := int(math.Round(69 + 12*math.Log2(hz/440)))
	return max(0, min(127, key))
}

// levelVelocity maps the 6-bit carrier attenuation to a MIDI velocity.
func levelVelocity(level uint8) uint8 {
	tl := int(level & 0x3F)
	return uint8(max(1, 127*(63-tl)/63))
}

// WriteMIDI plays m without audio and writes its notes as a single track
// Standard MIDI File, one channel per voice.
func WriteMIDI(ctx context.Context, w io.Writer, m *pis.Module, opts Options) (Summary, error) {
	if m == nil {
		return Summary{}, fmt.Errorf("midi: nil module")
	}
	opts = opts.withDefaults()

	rec := newNoteRecorder(opts.ChipClock)
	engine := pis.NewEngine(rec)
	engine.Start(m)

	sum, err := runSong(ctx, engine, opts, func() {
		engine.Tick()
		rec.tick++
	})
	if err != nil {
		return sum, err
	}
	rec.silenceAll()

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(midiResolution)
	if err := s.Add(buildTrack(rec.events)); err != nil {
		return sum, fmt.Errorf("failed to add track: %w", err)
	}
	if _, err := s.WriteTo(w); err != nil {
		return sum, fmt.Errorf("failed to write MIDI: %w", err)
	}
	return sum, nil
}

func buildTrack(events []noteEvent) smf.Track {
	// Note offs sort before note ons on the same tick
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return !events[i].on && events[j].on
	})

	var track smf.Track
	microsecondsPerBeat := uint32(60000000 / midiTempoBPM)
	track.Add(0, smf.Message([]byte{
		0xFF, 0x51, 0x03,
		byte(microsecondsPerBeat >> 16),
		byte(microsecondsPerBeat >> 8),
		byte(microsecondsPerBeat),
	}))

	var last uint64
	for _, ev := range events {
		delta := uint32(ev.tick - last)
		last = ev.tick
		if ev.on {
			track.Add(delta, midi.NoteOn(ev.voice, ev.key, ev.velocity))
		} else {
			track.Add(delta, midi.NoteOff(ev.voice, ev.key))
		}
	}
	track.Close(0)
	return track
}
