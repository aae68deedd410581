package pis

// entryKind is how a voice enters a new row.
type entryKind int

const (
	entryPortamento entryKind = iota
	entryInstrumentNote
	entryInstrumentOnly
	entryNoteOnly
	entryEffectOnly
)

func (k entryKind) String() string {
	switch k {
	case entryPortamento:
		return "portamento"
	case entryInstrumentNote:
		return "instrument+note"
	case entryInstrumentOnly:
		return "instrument"
	case entryNoteOnly:
		return "note"
	default:
		return "effect"
	}
}

// classifyEntry picks the entry case for a row. Tone portamento wins over
// everything else.
func classifyEntry(r Row) entryKind {
	switch {
	case r.Effect.Class() == EffectPortamento:
		return entryPortamento
	case r.HasInstrument() && r.HasNote():
		return entryInstrumentNote
	case r.HasInstrument():
		return entryInstrumentOnly
	case r.HasNote():
		return entryNoteOnly
	default:
		return entryEffectOnly
	}
}

// replayVoice processes the buffered row of voice v.
func (e *Engine) replayVoice(v int) {
	vs := &e.voices[v]
	r := e.rows[v]

	switch classifyEntry(r) {
	case entryPortamento:
		e.enterWithPortamento(v, vs, r)
	case entryInstrumentNote:
		e.enterWithInstrumentAndNote(v, vs, r)
	case entryInstrumentOnly:
		e.enterWithInstrumentOnly(v, vs, r)
	case entryNoteOnly:
		e.enterWithNoteOnly(v, vs, r)
	case entryEffectOnly:
		e.enterWithEffectOnly(v, vs, r)
	}

	e.handleEffect(v, vs, r)

	if r.Effect != 0 {
		vs.PreviousEffect = Some(r.Effect)
	} else {
		vs.PreviousEffect = Optional[Effect]{}
		vs.resetVolatiles()
	}
}

func (e *Engine) enterWithPortamento(v int, vs *VoiceState, r Row) {
	if r.HasInstrument() {
		e.setInstrument(v, int(r.Instrument))
		if vs.Volume < maxVolume {
			e.setLevel(v, int(r.Instrument), Optional[int]{}, false)
		}
	}
	if !r.HasNote() {
		return
	}

	vs.PortaSrcFreq = vs.Frequency
	vs.PortaSrcOctave = vs.Octave
	vs.PortaDestFreq = NoteFrequency(int(r.Note))
	vs.PortaDestOctave = int(r.Octave)

	switch {
	case vs.PortaDestOctave < vs.Octave:
		vs.PortaSign = -1
	case vs.PortaDestOctave > vs.Octave:
		vs.PortaSign = 1
	case vs.PortaDestFreq < vs.Frequency:
		vs.PortaSign = -1
	default:
		vs.PortaSign = 1
	}
}

func (e *Engine) enterWithInstrumentAndNote(v int, vs *VoiceState, r Row) {
	vs.PreviousEffect = Optional[Effect]{}
	writeNoteOff(e.dev, v)

	inst := int(r.Instrument)
	isNew := !vs.Instrument.Valid || vs.Instrument.V != inst

	if r.Effect.Class() != EffectVolume {
		if isNew {
			e.setInstrument(v, inst)
		} else if vs.Volume < maxVolume {
			e.setLevel(v, inst, Optional[int]{}, false)
		}
	} else {
		if isNew {
			e.setInstrument(v, inst)
		}
		e.setLevel(v, inst, Some(int(r.Effect.Param())), true)
	}

	e.setNote(v, vs, r)
}

func (e *Engine) enterWithInstrumentOnly(v int, vs *VoiceState, r Row) {
	inst := int(r.Instrument)
	if vs.Instrument.Valid && vs.Instrument.V == inst {
		return
	}

	e.setInstrument(v, inst)
	if r.Effect.Class() == EffectVolume {
		e.setLevel(v, inst, Some(int(r.Effect.Param())), true)
	} else if vs.Volume < maxVolume {
		e.setLevel(v, inst, Optional[int]{}, false)
	}

	if vs.afterArpeggio() {
		writePitch(e.dev, v, vs.Frequency, vs.Octave)
	}
}

func (e *Engine) enterWithNoteOnly(v int, vs *VoiceState, r Row) {
	vs.PreviousEffect = Optional[Effect]{}

	if inst, ok := vs.Instrument.Get(); ok {
		if r.Effect.Class() == EffectVolume {
			e.setLevel(v, inst, Some(int(r.Effect.Param())), true)
		} else if vs.Volume < maxVolume {
			e.setLevel(v, inst, Optional[int]{}, false)
		}
	}

	e.setNote(v, vs, r)
}

func (e *Engine) enterWithEffectOnly(v int, vs *VoiceState, r Row) {
	if inst, ok := vs.Instrument.Get(); ok && r.Effect.Class() == EffectVolume {
		e.setLevel(v, inst, Some(int(r.Effect.Param())), true)
	}

	if vs.afterArpeggio() {
		writePitch(e.dev, v, vs.Frequency, vs.Octave)
	}
}

// setNote keys the row's note on and records it as the voice's base pitch.
func (e *Engine) setNote(v int, vs *VoiceState, r Row) {
	freq := NoteFrequency(int(r.Note))
	writePitch(e.dev, v, freq, int(r.Octave))
	vs.Note = int(r.Note)
	vs.Octave = int(r.Octave)
	vs.Frequency = freq
}

// setInstrument loads instrument slot inst into voice v.
func (e *Engine) setInstrument(v, inst int) {
	writeInstrument(e.dev, v, e.instrument(inst))
	e.voices[v].Instrument = Some(inst)
}

// setLevel scales both operator levels of voice v. An absent gain means
// full volume. With correction the scale tops out two steps lower, which
// is what an explicit volume effect expects.
func (e *Engine) setLevel(v, inst int, gain Optional[int], correction bool) {
	base := 64
	if correction {
		base = 62
	}

	g := 64
	if val, ok := gain.Get(); ok {
		g = clampInt(val, minVolume, maxVolume)
		e.voices[v].Volume = g
	} else {
		e.voices[v].Volume = maxVolume
	}

	in := e.instrument(inst)
	l1 := base - (g * (64 - int(in.Lev1)) >> 6)
	l2 := base - (g * (64 - int(in.Lev2)) >> 6)
	writeLevels(e.dev, v, l1, l2)
}

func (e *Engine) instrument(inst int) *Instrument {
	return &e.mod.Instruments[inst&(MaxInstruments-1)]
}
