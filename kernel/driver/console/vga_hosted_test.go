//go:build unix

package console

import (
	"testing"

	"xv6go/kernel/mem"
	"xv6go/kernel/mem/hostmem"
)

func TestVgaTextBuffer(t *testing.T) {
	arena, err := hostmem.New(mem.Mb)
	if err != nil {
		t.Fatal(err)
	}
	arena.Install()
	defer func() { _ = arena.Close() }()

	var cons Vga
	cons.Init()
	cons.Write('A', MakeAttr(White, Blue), 1, 0)

	cell := *mem.PointerTo[uint16](mem.Virt(mem.KernBase + TextBufferAddr)).At(1)
	if exp := uint16(MakeAttr(White, Blue))<<8 | 'A'; cell != exp {
		t.Fatalf("expected the text buffer cell to hold 0x%x; got 0x%x", exp, cell)
	}
}
