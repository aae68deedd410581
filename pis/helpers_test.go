package pis

import "testing"

type regWrite struct {
	addr, val uint8
}

// recordingDevice captures register writes instead of synthesizing.
type recordingDevice struct {
	writes   []regWrite
	regs     [256]uint8
	resets   int
	rendered int
}

func (d *recordingDevice) WriteRegister(addr, val uint8) {
	d.writes = append(d.writes, regWrite{addr, val})
	d.regs[addr] = val
}

func (d *recordingDevice) Reset() {
	d.resets++
	d.regs = [256]uint8{}
	d.writes = nil
}

func (d *recordingDevice) Render(out []int16) {
	d.rendered += len(out)
	for i := range out {
		out[i] = 0
	}
}

func (d *recordingDevice) clear() {
	d.writes = d.writes[:0]
}

// indexOf returns the position of the first write to addr, or -1.
func (d *recordingDevice) indexOf(addr uint8) int {
	for i, w := range d.writes {
		if w.addr == addr {
			return i
		}
	}
	return -1
}

func (d *recordingDevice) count(addr uint8) int {
	n := 0
	for _, w := range d.writes {
		if w.addr == addr {
			n++
		}
	}
	return n
}

var emptyCell = Row{Note: 0x0F}

// newTestModule returns a module with the given order length where voice 0
// reads pattern slot 1 and every other voice reads the empty slot 0.
// Instrument slots 1 and 2 carry distinct patches.
func newTestModule(orderLength int) *Module {
	m := &Module{
		OrderLength:     orderLength,
		PatternCount:    2,
		InstrumentCount: 2,
		PatternMap:      []uint8{0, 1},
		InstrumentMap:   []uint8{1, 2},
		Order:           make([][Voices]uint8, orderLength),
	}
	for slot := range m.Patterns {
		for row := range m.Patterns[slot] {
			m.Patterns[slot][row] = emptyCell.Pack()
		}
	}
	for pos := range m.Order {
		m.Order[pos][0] = 1
	}
	m.Instruments[1] = Instrument{
		Mul1: 0x01, Mul2: 0x02, Lev1: 0x10, Lev2: 0x00,
		Atd1: 0xF0, Atd2: 0xF1, Sur1: 0x77, Sur2: 0x78,
		Wav1: 0x00, Wav2: 0x01, FbCon: 0x0E,
	}
	m.Instruments[2] = Instrument{
		Mul1: 0x21, Mul2: 0x22, Lev1: 0x20, Lev2: 0x08,
		Atd1: 0xA0, Atd2: 0xA1, Sur1: 0x55, Sur2: 0x56,
		Wav1: 0x02, Wav2: 0x03, FbCon: 0x01,
	}
	return m
}

// setCell stores a row for voice 0 at the given pattern row.
func setCell(m *Module, row int, r Row) {
	m.Patterns[1][row] = r.Pack()
}

func newTestEngine(t *testing.T, m *Module) (*Engine, *recordingDevice) {
	t.Helper()
	dev := &recordingDevice{}
	e := NewEngine(dev)
	e.Start(m)
	return e, dev
}

// stepRow ticks until the engine has processed one row.
func stepRow(e *Engine) {
	for {
		e.Tick()
		if e.count == 0 || !e.playing {
			return
		}
	}
}
