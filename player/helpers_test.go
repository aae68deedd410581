package player

import (
	"errors"
	"testing"

	"github.com/user-none/pisplay/pis"
)

// toneModule returns a module whose first row keys a sustained C-4 on
// every voice with instrument 1.
func toneModule(t *testing.T) *pis.Module {
	t.Helper()
	b := []byte{1, 1, 1, 0, 1}
	for v := 0; v < pis.Voices; v++ {
		b = append(b, 0)
	}
	for row := 0; row < pis.RowsPerPattern; row++ {
		if row == 0 {
			b = append(b, 0x08, 0x10, 0x00)
		} else {
			b = append(b, 0xC0, 0x00, 0x00)
		}
	}
	b = append(b, 0x21, 0x21, 0x3F, 0x00, 0xF0, 0xF0, 0x0F, 0x0F, 0x00, 0x00, 0x00)
	m, err := pis.ParseBytes(b)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

// mapLoader serves modules and errors by path.
type mapLoader struct {
	mods map[string]*pis.Module
	errs map[string]error
}

func (l *mapLoader) Load(path string) (*pis.Module, error) {
	if err, ok := l.errs[path]; ok {
		return nil, err
	}
	if m, ok := l.mods[path]; ok {
		return m, nil
	}
	return nil, &pis.IOError{Path: path, Err: errNotFound}
}

var errNotFound = errors.New("not found")

func newTestPlayer(t *testing.T, cfg Config) (*Player, *mapLoader) {
	t.Helper()
	l := &mapLoader{
		mods: map[string]*pis.Module{"tone.pis": toneModule(t)},
		errs: map[string]error{"bad.pis": &pis.FormatError{Offset: 0, Reason: "empty order"}},
	}
	p := New(cfg, l)
	t.Cleanup(func() { p.Close() })
	return p, l
}

func allZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
