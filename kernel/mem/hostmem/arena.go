//go:build unix

// Package hostmem backs the kernel's physical memory with an anonymous
// mapping in a hosted process so the allocator and the page-table code can
// run outside the kernel image.
package hostmem

import (
	"unsafe"

	"golang.org/x/sys/unix"

	"xv6go/kernel"
	"xv6go/kernel/mem"
)

var (
	errOutsideArena = &kernel.Error{Module: "hostmem", Message: "kernel address is not backed by the host arena"}
	errArenaSize    = &kernel.Error{Module: "hostmem", Message: "arena size must be non-zero and below the device window"}
)

// Arena is a block of host memory standing in for physical addresses
// [0, Size()). Kernel virtual address KernBase+p resolves to byte p of the
// arena once the arena is installed.
type Arena struct {
	mem []byte
}

// New maps an arena of at least size bytes. The size is rounded up to a
// multiple of the host page size.
func New(size mem.Size) (*Arena, error) {
	hostPageSize := mem.Size(unix.Getpagesize())
	size = (size + hostPageSize - 1) &^ (hostPageSize - 1)
	if size == 0 || size > mem.DevSpace-mem.KernBase {
		return nil, errArenaSize
	}

	buf, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, err
	}

	return &Arena{mem: buf}, nil
}

// Size returns the number of bytes backed by the arena.
func (a *Arena) Size() mem.Size {
	return mem.Size(len(a.mem))
}

// PhysTop returns the first physical page that is not backed by the arena.
func (a *Arena) PhysTop() mem.PhysPage {
	return mem.PageRoundDown(mem.Phys(uint32(len(a.mem))))
}

// Install makes the arena the backing store for every kernel virtual address
// dereferenced through mem.Pointer.
func (a *Arena) Install() {
	mem.SetTranslator(a.translate)
}

// Close uninstalls the arena and releases the host mapping.
func (a *Arena) Close() error {
	mem.SetTranslator(nil)
	buf := a.mem
	a.mem = nil
	return unix.Munmap(buf)
}

func (a *Arena) translate(v mem.VirtAddr) unsafe.Pointer {
	off := mem.V2P(v).Raw()
	if v.Raw() < mem.KernBase || uint64(off) >= uint64(len(a.mem)) {
		panic(errOutsideArena)
	}
	return unsafe.Pointer(&a.mem[off])
}
