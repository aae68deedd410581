package pis

// Volume bounds. Volume 63 means the instrument's own level.
const (
	minVolume = 2
	maxVolume = 63
)

// VoiceState is the sequencer state of one voice.
type VoiceState struct {
	Instrument     Optional[int]
	Volume         int
	Note           int
	Octave         int
	Frequency      int
	PreviousEffect Optional[Effect]

	SlideIncrement int

	PortaIncrement  int
	PortaSrcFreq    int
	PortaSrcOctave  int
	PortaDestFreq   int
	PortaDestOctave int
	PortaSign       int

	Arpeggio       bool
	ArpeggioFreq   [3]int
	ArpeggioOctave [3]int
}

// setVolatiles replaces the per-frame modifiers.
func (vs *VoiceState) setVolatiles(arpeggio bool, slide, porta int) {
	vs.Arpeggio = arpeggio
	vs.SlideIncrement = slide
	vs.PortaIncrement = porta
}

// resetVolatiles turns off slide, portamento and arpeggio.
func (vs *VoiceState) resetVolatiles() {
	vs.setVolatiles(false, 0, 0)
}

// afterArpeggio reports whether the previous row carried an effect whose
// class bits are clear, which is how a just-finished arpeggio shows up.
func (vs *VoiceState) afterArpeggio() bool {
	prev, ok := vs.PreviousEffect.Get()
	return ok && prev&0xF00 == 0
}
