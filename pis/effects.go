package pis

// handleEffect applies the row effect of voice v.
func (e *Engine) handleEffect(v int, vs *VoiceState, r Row) {
	param := int(r.Effect.Param())

	switch r.Effect.Class() {
	case EffectArpeggio:
		if param != 0 {
			e.handleArpeggio(vs, r)
		} else {
			vs.Arpeggio = false
		}
	case EffectSlideUp:
		vs.SlideIncrement = param
	case EffectSlideDown:
		vs.SlideIncrement = -param
	case EffectPortamento:
		vs.setVolatiles(false, 0, param)
	case EffectPositionJump:
		vs.resetVolatiles()
		e.positionJump = Some(param)
	case EffectPatternBreak:
		vs.resetVolatiles()
		e.patternBreak = Some(param)
	case EffectExtended:
		e.handleExtended(v, vs, r)
	case EffectSpeed:
		vs.resetVolatiles()
		if param != 0 {
			e.speed = param
		} else {
			// Speed zero is the song's own end marker
			e.playing = false
		}
	}
}

// handleArpeggio builds the three-step pitch table. The table is only
// rebuilt when the parameter changes from the previous row.
func (e *Engine) handleArpeggio(vs *VoiceState, r Row) {
	prevLow := uint8(0xFF)
	if prev, ok := vs.PreviousEffect.Get(); ok {
		prevLow = prev.Param()
	}

	if r.Effect.Param() != prevLow {
		vs.ArpeggioFreq[0] = NoteFrequency(vs.Note)
		vs.ArpeggioOctave[0] = vs.Octave
		vs.ArpeggioFreq[1], vs.ArpeggioOctave[1] = arpeggioStep(vs.Note+int(r.Effect.Mid()), vs.Octave)
		vs.ArpeggioFreq[2], vs.ArpeggioOctave[2] = arpeggioStep(vs.Note+int(r.Effect.Low()), vs.Octave)
		vs.Arpeggio = true
	}

	vs.SlideIncrement = 0
	vs.PortaIncrement = 0
}

// arpeggioStep returns frequency and octave for a note that may have
// moved into the next octave.
func arpeggioStep(note, octave int) (int, int) {
	if note < noNote {
		return NoteFrequency(note), octave
	}
	return NoteFrequency(note - noNote), octave + 1
}

func (e *Engine) handleExtended(v int, vs *VoiceState, r Row) {
	switch r.Effect.Mid() {
	case ExtendedLoop:
		e.handleLoop(r)
	case ExtendedVolumeUp, ExtendedVolumeDown:
		e.handleVolumeSlide(v, vs, r)
	}
}

// handleLoop implements the pattern loop. A zero count marks the loop
// start; a non-zero count repeats back to it that many times.
func (e *Engine) handleLoop(r Row) {
	count := int(r.Effect.Low())

	if !e.looping {
		if count == 0 {
			e.loopStartRow = e.row
		} else {
			e.loopCount = count
			e.looping = true
		}
	}

	if e.looping && count != 0 {
		e.loopCount--
		if e.loopCount >= 0 {
			// advance() adds one
			e.row = e.loopStartRow - 1
		} else {
			e.looping = false
		}
	}
}

func (e *Engine) handleVolumeSlide(v int, vs *VoiceState, r Row) {
	inst, ok := vs.Instrument.Get()
	if !ok {
		return
	}

	level := vs.Volume
	if r.Effect.Mid() == ExtendedVolumeUp {
		level += int(r.Effect.Low())
	} else {
		level -= int(r.Effect.Low())
	}
	e.setLevel(v, inst, Some(clampInt(level, minVolume, maxVolume)), false)
}

// perFrameEffects runs on every tick that does not step a row.
func (e *Engine) perFrameEffects() {
	e.arpeggioIndex++
	if e.arpeggioIndex == 3 {
		e.arpeggioIndex = 0
	}

	for v := range e.voices {
		vs := &e.voices[v]
		switch {
		case vs.SlideIncrement != 0:
			vs.Frequency += vs.SlideIncrement
			writePitch(e.dev, v, vs.Frequency, vs.Octave)
		case vs.PortaIncrement != 0:
			e.stepPortamento(v, vs)
		case vs.Arpeggio:
			i := e.arpeggioIndex
			writePitch(e.dev, v, vs.ArpeggioFreq[i], vs.ArpeggioOctave[i])
		}
	}
}

// stepPortamento moves the voice one increment toward its destination.
// Frequencies past the B/C boundaries wrap into the neighbouring octave.
// Arrival is tested on the octave-scaled pitch after the wrap, so the
// glide stops on the destination pair without passing it.
func (e *Engine) stepPortamento(v int, vs *VoiceState) {
	if vs.PortaSign > 0 {
		vs.Frequency += vs.PortaIncrement
		if vs.Frequency > freqHighB {
			vs.Frequency = freqLowB + (vs.Frequency - freqHighB)
			vs.Octave++
		}
		if pitch(vs.Frequency, vs.Octave) >= pitch(vs.PortaDestFreq, vs.PortaDestOctave) {
			vs.Frequency = vs.PortaDestFreq
			vs.Octave = vs.PortaDestOctave
			vs.PortaIncrement = 0
		}
	} else {
		vs.Frequency -= vs.PortaIncrement
		if vs.Frequency < freqLowC {
			vs.Frequency = freqHighC - (freqLowC - vs.Frequency)
			vs.Octave--
		}
		if pitch(vs.Frequency, vs.Octave) <= pitch(vs.PortaDestFreq, vs.PortaDestOctave) {
			vs.Frequency = vs.PortaDestFreq
			vs.Octave = vs.PortaDestOctave
			vs.PortaIncrement = 0
		}
	}

	writePitch(e.dev, v, vs.Frequency, vs.Octave)
}

// pitch maps a frequency code and octave onto one linear scale.
func pitch(freq, octave int) int {
	if octave < 0 {
		return freq >> uint(-octave)
	}
	return freq << uint(octave)
}
