package player

import (
	"math"

	"github.com/viterin/vek/vek32"

	"github.com/user-none/pisplay/pis"
)

// Meter measures the peak and RMS level of sample buffers, normalised so
// full scale is 1.
type Meter struct {
	tmp  []float32
	tmp2 []float32
}

// Measure returns the peak and RMS level of samples.
func (m *Meter) Measure(samples []int16) (peak, rms float32) {
	if len(samples) == 0 {
		return 0, 0
	}
	m.tmp = pis.Int16ToFloat32(m.tmp, samples)
	if cap(m.tmp2) < len(m.tmp) {
		m.tmp2 = make([]float32, len(m.tmp))
	}
	sq := vek32.Mul_Into(m.tmp2[:len(m.tmp)], m.tmp, m.tmp)
	rms = float32(math.Sqrt(float64(vek32.Mean(sq))))

	vek32.Abs_Inplace(m.tmp)
	peak = vek32.Max(m.tmp)
	return peak, rms
}
