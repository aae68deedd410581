package pis

import "fmt"

// Info summarizes a module's contents.
type Info struct {
	OrderLength int `json:"order_length"`
	Patterns    int `json:"patterns"`
	Instruments int `json:"instruments"`

	// Notes counts note cells reached through the order list.
	Notes int `json:"notes"`

	// Effects counts non-empty effects by class, keyed "0" to "F".
	Effects map[string]int `json:"effects"`

	// Seconds is the length of one pass through the order at the default
	// speed, ignoring jumps, breaks and speed changes.
	Seconds float64 `json:"seconds"`
}

// Info walks the order list and returns a summary.
func (m *Module) Info() Info {
	info := Info{
		OrderLength: m.OrderLength,
		Patterns:    m.PatternCount,
		Instruments: m.InstrumentCount,
		Effects:     make(map[string]int),
	}
	for pos := range m.Order {
		for v := 0; v < Voices; v++ {
			for row := 0; row < RowsPerPattern; row++ {
				r := m.Row(pos, v, row)
				if r.HasNote() {
					info.Notes++
				}
				if r.Effect != 0 {
					info.Effects[fmt.Sprintf("%X", r.Effect.Class())]++
				}
			}
		}
	}
	ticks := len(m.Order) * RowsPerPattern * DefaultSpeed
	info.Seconds = float64(ticks) / TickRate
	return info
}
