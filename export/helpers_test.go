package export

import (
	"testing"

	"github.com/user-none/pisplay/pis"
)

// buildModule returns a module with orderLength positions that all play
// pattern slot 0 on every voice. cell supplies the three row bytes.
func buildModule(t *testing.T, orderLength int, cell func(row int) [3]byte) *pis.Module {
	t.Helper()
	b := []byte{byte(orderLength), 1, 1, 0, 1}
	for pos := 0; pos < orderLength; pos++ {
		for v := 0; v < pis.Voices; v++ {
			b = append(b, 0)
		}
	}
	for row := 0; row < pis.RowsPerPattern; row++ {
		c := cell(row)
		b = append(b, c[0], c[1], c[2])
	}
	b = append(b, 0x21, 0x21, 0x3F, 0x00, 0xF0, 0xF0, 0x0F, 0x0F, 0x00, 0x00, 0x00)
	m, err := pis.ParseBytes(b)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

var emptyCell = [3]byte{0xC0, 0x00, 0x00}

// toneThenStop keys C-4 with instrument 1 on row 0 and stops on row 1.
func toneThenStop(row int) [3]byte {
	switch row {
	case 0:
		return [3]byte{0x08, 0x10, 0x00}
	case 1:
		return [3]byte{0xC0, 0x0F, 0x00}
	}
	return emptyCell
}

func silentRows(int) [3]byte { return emptyCell }
