//go:build unix

package tty

import (
	"testing"

	"xv6go/kernel/driver/console"
	"xv6go/kernel/mem"
	"xv6go/kernel/mem/hostmem"
)

// setupVt attaches a terminal to a console whose text buffer lives in a host
// arena and returns the buffer.
func setupVt(t *testing.T) (*Vt, []uint16) {
	t.Helper()

	arena, err := hostmem.New(mem.Mb)
	if err != nil {
		t.Fatal(err)
	}
	arena.Install()
	t.Cleanup(func() { _ = arena.Close() })

	cons := new(console.Vga)
	cons.Init()

	vt := new(Vt)
	vt.Init(cons)

	base := mem.PointerTo[[80 * 25]uint16](mem.Virt(mem.KernBase + console.TextBufferAddr)).Get()
	return vt, base[:]
}

func TestVtPosition(t *testing.T) {
	specs := []struct {
		inX, inY   uint16
		expX, expY uint16
	}{
		{20, 20, 20, 20},
		{100, 20, 79, 20},
		{10, 200, 10, 24},
		{10, 200, 10, 24},
		{100, 100, 79, 24},
	}

	vt, _ := setupVt(t)

	w, h := vt.Dimensions()
	if w != 80 || h != 25 {
		t.Fatalf("Dimensions wrong: got %v x %v", w, h)
	}

	for specIndex, spec := range specs {
		vt.SetPosition(spec.inX, spec.inY)
		if x, y := vt.Position(); x != spec.expX || y != spec.expY {
			t.Errorf("[spec %d] expected setting position to (%d, %d) to update the position to (%d, %d); got (%d, %d)", specIndex, spec.inX, spec.inY, spec.expX, spec.expY, x, y)
		}
	}
}

func TestWrite(t *testing.T) {
	vt, fb := setupVt(t)

	vt.Clear()
	vt.SetPosition(0, 0)
	if n, err := vt.Write([]byte("12\n\t3\n4\r567\b8")); err != nil || n != 13 {
		t.Fatalf("expected Write to consume 13 bytes; got %d, %v", n, err)
	}

	// Tab at the end of a row
	vt.SetPosition(78, 3)
	_, _ = vt.Write([]byte("\t9"))

	// Trigger scroll
	vt.SetPosition(79, 24)
	_, _ = vt.Write([]byte{'!'})

	// Everything has scrolled up by one line, dropping the "12" row.
	specs := []struct {
		x, y    uint16
		expChar byte
	}{
		// tab stop
		{0, 0, ' '},
		{3, 0, ' '},
		{4, 0, '3'},
		{0, 1, '5'},
		{1, 1, '6'},
		{2, 1, '8'}, // overwritten after BS
		// tab at the end of a row wraps
		{78, 2, ' '},
		{79, 2, ' '},
		{0, 3, '9'},
		{79, 23, '!'},
		{0, 24, ' '},
	}

	for specIndex, spec := range specs {
		ch := byte(fb[(spec.y*80)+spec.x] & 0xFF)
		if ch != spec.expChar {
			t.Errorf("[spec %d] expected char at (%d, %d) to be %c; got %c", specIndex, spec.x, spec.y, spec.expChar, ch)
		}
	}

	if x, y := vt.Position(); x != 0 || y != 24 {
		t.Fatalf("expected cursor at (0, 24) after the scroll; got (%d, %d)", x, y)
	}
}
