package player

import (
	"sync"

	"github.com/user-none/pisplay/pis"
)

// VoiceStatus describes one voice at the time of the last render.
type VoiceStatus struct {
	Instrument int  `json:"instrument"` // -1 when none is selected
	Note       int  `json:"note"`
	Octave     int  `json:"octave"`
	Frequency  int  `json:"frequency"`
	Volume     int  `json:"volume"`
	KeyOn      bool `json:"key_on"`
}

// Status is a snapshot of the player.
type Status struct {
	Path        string  `json:"path"`
	Playing     bool    `json:"playing"`
	Held        bool    `json:"held"`
	Position    int     `json:"position"`
	OrderLength int     `json:"order_length"`
	Row         int     `json:"row"`
	Speed       int     `json:"speed"`
	Ticks       uint64  `json:"ticks"`
	Seconds     float64 `json:"seconds"`
	Peak        float32 `json:"peak"`
	RMS         float32 `json:"rms"`

	Voices [pis.Voices]VoiceStatus `json:"voices"`
}

// SharedStatus holds the status written by the audio thread and read by
// control threads.
type SharedStatus struct {
	mu sync.Mutex
	s  Status
}

// Update replaces the snapshot.
func (ss *SharedStatus) Update(s Status) {
	ss.mu.Lock()
	ss.s = s
	ss.mu.Unlock()
}

// SetLevels updates only the meter readings.
func (ss *SharedStatus) SetLevels(peak, rms float32) {
	ss.mu.Lock()
	ss.s.Peak = peak
	ss.s.RMS = rms
	ss.mu.Unlock()
}

// Read returns a copy of the snapshot.
func (ss *SharedStatus) Read() Status {
	ss.mu.Lock()
	s := ss.s
	ss.mu.Unlock()
	return s
}
