// Package pis implements the replay engine for PIS modules: a compact
// tracker format driving nine two-operator FM voices through OPL2 style
// register writes.
package pis

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// Structural limits of the format.
const (
	Voices         = 9
	RowsPerPattern = 64
	MaxOrderLength = 256
	MaxPatterns    = 128
	MaxInstruments = 64
	InstrumentSize = 11
	rowSize        = 3
)

// Playback constants.
const (
	DefaultSpeed = 6
	TickRate     = 50 // Ticks per second
)

// Instrument holds the operator registers of one two-operator patch.
// Operator 1 is the modulator, operator 2 the carrier.
type Instrument struct {
	Mul1, Mul2 uint8 // AM/VIB/EG/KSR/MUL
	Lev1, Lev2 uint8 // KSL/TL
	Atd1, Atd2 uint8 // Attack/decay
	Sur1, Sur2 uint8 // Sustain/release
	Wav1, Wav2 uint8 // Waveform select
	FbCon      uint8 // Feedback/connection
}

// Module is a parsed PIS song. It is never modified after Parse returns.
type Module struct {
	OrderLength     int
	PatternCount    int
	InstrumentCount int

	// PatternMap and InstrumentMap give the physical slot of each stored
	// pattern and instrument, in file order.
	PatternMap    []uint8
	InstrumentMap []uint8

	// Order holds one physical pattern slot per voice for each position.
	Order [][Voices]uint8

	Patterns    [MaxPatterns][RowsPerPattern]uint32
	Instruments [MaxInstruments]Instrument
}

// Row returns the unpacked row for a voice at the given position and row.
// Out of range coordinates yield an empty row (no note, no instrument,
// no effect).
func (m *Module) Row(position, voice, row int) Row {
	if position < 0 || position >= len(m.Order) || voice < 0 || voice >= Voices ||
		row < 0 || row >= RowsPerPattern {
		return Row{Note: 0x0F}
	}
	slot := int(m.Order[position][voice])
	if slot >= MaxPatterns {
		return Row{Note: 0x0F}
	}
	return UnpackRow(m.Patterns[slot][row])
}

// parser reads the sequential layout and tracks the byte offset for errors.
type parser struct {
	r   io.Reader
	off int64
}

func (p *parser) read(buf []byte, what string) error {
	n, err := io.ReadFull(p.r, buf)
	p.off += int64(n)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &FormatError{Offset: p.off, Reason: "truncated " + what, Err: io.ErrUnexpectedEOF}
	}
	return &IOError{Path: "module stream", Err: err}
}

func (p *parser) fail(offset int64, format string, args ...any) error {
	return &FormatError{Offset: offset, Reason: fmt.Sprintf(format, args...)}
}

// ParseBytes parses a module held in memory.
func ParseBytes(data []byte) (*Module, error) {
	return Parse(bytes.NewReader(data))
}

// Parse reads a module from r. Every declared count and remap entry is
// checked against the fixed storage of the format before use; any
// violation or early end of data returns a *FormatError and no module.
func Parse(r io.Reader) (*Module, error) {
	p := &parser{r: bufio.NewReader(r)}

	var hdr [3]byte
	if err := p.read(hdr[:], "header"); err != nil {
		return nil, err
	}

	m := &Module{
		OrderLength:     int(hdr[0]),
		PatternCount:    int(hdr[1]),
		InstrumentCount: int(hdr[2]),
	}
	if m.OrderLength == 0 {
		return nil, p.fail(0, "empty order list")
	}
	if m.PatternCount > MaxPatterns {
		return nil, p.fail(1, "pattern count %d exceeds %d", m.PatternCount, MaxPatterns)
	}
	if m.InstrumentCount > MaxInstruments {
		return nil, p.fail(2, "instrument count %d exceeds %d", m.InstrumentCount, MaxInstruments)
	}

	m.PatternMap = make([]uint8, m.PatternCount)
	if err := p.read(m.PatternMap, "pattern map"); err != nil {
		return nil, err
	}
	for i, slot := range m.PatternMap {
		if int(slot) >= MaxPatterns {
			return nil, p.fail(3+int64(i), "pattern map entry %d references slot %d", i, slot)
		}
	}

	base := p.off
	m.InstrumentMap = make([]uint8, m.InstrumentCount)
	if err := p.read(m.InstrumentMap, "instrument map"); err != nil {
		return nil, err
	}
	for i, slot := range m.InstrumentMap {
		if int(slot) >= MaxInstruments {
			return nil, p.fail(base+int64(i), "instrument map entry %d references slot %d", i, slot)
		}
	}

	base = p.off
	order := make([]byte, m.OrderLength*Voices)
	if err := p.read(order, "order list"); err != nil {
		return nil, err
	}
	m.Order = make([][Voices]uint8, m.OrderLength)
	for i, slot := range order {
		if int(slot) >= MaxPatterns {
			return nil, p.fail(base+int64(i), "order entry %d/%d references pattern slot %d",
				i/Voices, i%Voices, slot)
		}
		m.Order[i/Voices][i%Voices] = slot
	}

	var pattern [RowsPerPattern * rowSize]byte
	for _, slot := range m.PatternMap {
		if err := p.read(pattern[:], "pattern data"); err != nil {
			return nil, err
		}
		for row := 0; row < RowsPerPattern; row++ {
			b := pattern[row*rowSize:]
			m.Patterns[slot][row] = PackRowBytes(b[0], b[1], b[2])
		}
	}

	var instr [InstrumentSize]byte
	for _, slot := range m.InstrumentMap {
		if err := p.read(instr[:], "instrument data"); err != nil {
			return nil, err
		}
		m.Instruments[slot] = Instrument{
			Mul1: instr[0], Mul2: instr[1],
			Lev1: instr[2], Lev2: instr[3],
			Atd1: instr[4], Atd2: instr[5],
			Sur1: instr[6], Sur2: instr[7],
			Wav1: instr[8], Wav2: instr[9],
			FbCon: instr[10],
		}
	}

	return m, nil
}

// MarshalBinary encodes the module in the PIS layout. Only the patterns
// and instruments named by the remap tables are written.
func (m *Module) MarshalBinary() ([]byte, error) {
	if m.OrderLength < 1 || m.OrderLength > 0xFF || len(m.Order) != m.OrderLength {
		return nil, fmt.Errorf("pis: invalid order length %d (%d entries)", m.OrderLength, len(m.Order))
	}
	if m.PatternCount > MaxPatterns || len(m.PatternMap) != m.PatternCount {
		return nil, fmt.Errorf("pis: invalid pattern count %d", m.PatternCount)
	}
	if m.InstrumentCount > MaxInstruments || len(m.InstrumentMap) != m.InstrumentCount {
		return nil, fmt.Errorf("pis: invalid instrument count %d", m.InstrumentCount)
	}

	size := 3 + m.PatternCount + m.InstrumentCount + m.OrderLength*Voices +
		m.PatternCount*RowsPerPattern*rowSize + m.InstrumentCount*InstrumentSize
	out := make([]byte, 0, size)

	out = append(out, uint8(m.OrderLength), uint8(m.PatternCount), uint8(m.InstrumentCount))
	out = append(out, m.PatternMap...)
	out = append(out, m.InstrumentMap...)
	for _, pos := range m.Order {
		out = append(out, pos[:]...)
	}
	for _, slot := range m.PatternMap {
		if int(slot) >= MaxPatterns {
			return nil, fmt.Errorf("pis: pattern slot %d out of range", slot)
		}
		for _, packed := range m.Patterns[slot] {
			out = append(out, uint8(packed>>16), uint8(packed>>8), uint8(packed))
		}
	}
	for _, slot := range m.InstrumentMap {
		if int(slot) >= MaxInstruments {
			return nil, fmt.Errorf("pis: instrument slot %d out of range", slot)
		}
		in := m.Instruments[slot]
		out = append(out, in.Mul1, in.Mul2, in.Lev1, in.Lev2, in.Atd1, in.Atd2,
			in.Sur1, in.Sur2, in.Wav1, in.Wav2, in.FbCon)
	}
	return out, nil
}
