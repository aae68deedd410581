package pis

// Transport is a snapshot of the engine's song cursor.
type Transport struct {
	Position    int
	Row         int
	Speed       int
	Count       int
	OrderLength int
	Playing     bool
	Ticks       uint64
}

// Engine owns the replay state of one module and drives a Device.
// It is not safe for concurrent use; callers serialize Tick with Start.
type Engine struct {
	mod *Module
	dev Device

	speed    int
	count    int
	position int
	row      int

	positionJump Optional[int]
	patternBreak Optional[int]

	arpeggioIndex int

	looping      bool
	loopStartRow int
	loopCount    int

	playing bool
	ticks   uint64

	voices [Voices]VoiceState
	rows   [Voices]Row
}

// NewEngine creates an idle engine writing to dev.
func NewEngine(dev Device) *Engine {
	e := &Engine{dev: dev}
	e.Reset()
	return e
}

// Start installs m, resets the device, enables waveform selection and
// resets the replay state. Playback starts on the next Tick. A nil
// module leaves the engine stopped.
func (e *Engine) Start(m *Module) {
	e.mod = m
	e.dev.Reset()
	e.dev.WriteRegister(regWaveSelect, waveSelectOn)
	e.Reset()
	e.playing = m != nil
}

// Reset restores the transport and every voice to load-time defaults.
// Count starts one short of the speed so the first tick unpacks row 0.
func (e *Engine) Reset() {
	e.speed = DefaultSpeed
	e.count = DefaultSpeed - 1
	e.position = 0
	e.row = 0
	e.positionJump = Optional[int]{}
	e.patternBreak = Optional[int]{}
	e.arpeggioIndex = 0
	e.looping = false
	e.loopStartRow = 0
	e.loopCount = 0
	e.ticks = 0
	for v := range e.voices {
		e.voices[v] = VoiceState{Volume: maxVolume}
		e.rows[v] = Row{}
	}
}

// Stop halts the sequencer. The device keeps rendering whatever is keyed on.
func (e *Engine) Stop() {
	e.playing = false
}

// Playing reports whether ticks advance the song.
func (e *Engine) Playing() bool {
	return e.playing
}

// Module returns the installed module, or nil.
func (e *Engine) Module() *Module {
	return e.mod
}

// Transport returns the current cursor.
func (e *Engine) Transport() Transport {
	t := Transport{
		Position: e.position,
		Row:      e.row,
		Speed:    e.speed,
		Count:    e.count,
		Playing:  e.playing,
		Ticks:    e.ticks,
	}
	if e.mod != nil {
		t.OrderLength = e.mod.OrderLength
	}
	return t
}

// Voice returns a copy of one voice's state.
func (e *Engine) Voice(v int) VoiceState {
	return e.voices[v]
}

// Tick runs one 50 Hz step: a row step every speed ticks, per-frame
// effects otherwise. It does nothing while stopped.
func (e *Engine) Tick() {
	if !e.playing || e.mod == nil {
		return
	}
	e.ticks++

	e.count++
	if e.count >= e.speed {
		e.unpackRows()
		for v := range e.voices {
			e.replayVoice(v)
		}
		e.advance()
		return
	}

	e.perFrameEffects()
}

// unpackRows decodes the current row of every voice into the row buffer.
func (e *Engine) unpackRows() {
	for v := range e.rows {
		e.rows[v] = e.mod.Row(e.position, v, e.row)
	}
}

// advance moves the cursor after a row, honoring a pending position jump
// first and a pending pattern break second.
func (e *Engine) advance() {
	switch {
	case e.positionJump.Valid:
		e.position = e.positionJump.V
		if brk, ok := e.patternBreak.Get(); ok {
			// Jump combined with break
			e.row = brk
			e.patternBreak = Optional[int]{}
		} else {
			e.row = 0
		}
		e.positionJump = Optional[int]{}
	case e.patternBreak.Valid:
		e.nextPosition()
		e.row = e.patternBreak.V
		e.patternBreak = Optional[int]{}
	default:
		e.row++
		if e.row >= RowsPerPattern {
			e.row = 0
			e.nextPosition()
		}
	}

	// Effect parameters can point past the song
	if e.position < 0 || e.position >= e.mod.OrderLength {
		e.position = 0
	}
	if e.row < 0 || e.row >= RowsPerPattern {
		e.row = 0
	}

	e.count = 0
}

func (e *Engine) nextPosition() {
	e.position++
	if e.position >= e.mod.OrderLength {
		e.position = 0
	}
}
