// Package pmm implements the kernel's physical page allocator.
//
// Free physical memory is kept on a single free-list of 4 KiB pages. The list
// is populated in two phases: Init releases the memory the boot page table
// already maps and, once the kernel page table is active, InitLate releases
// the rest of RAM. Both phases use Free, so every page on the list has been
// bounds checked and poisoned.
package pmm

import (
	"io"

	"xv6go/kernel"
	"xv6go/kernel/kfmt"
	"xv6go/kernel/mem"
)

var (
	// kmem is the allocator used by the kernel.
	kmem FreeList
)

// Init sets the bounds of the allocator from layout and releases the pages
// in [layout.KernelEnd, earlyEnd). earlyEnd is clamped to the kernel alias of
// PHYSTOP.
func Init(layout mem.Layout, earlyEnd mem.VirtAddr) *kernel.Error {
	if err := kmem.Init(layout); err != nil {
		return err
	}

	if physTop := layout.PhysTopVirt(); mem.Less(physTop, earlyEnd) {
		earlyEnd = physTop.Unaligned()
	}

	InitEarly(layout.KernelEnd, earlyEnd)
	kfmt.Printf("[kalloc] early range: 0x%8x - 0x%8x, %d pages free\n", layout.KernelEnd.Raw(), earlyEnd.Raw(), kmem.FreePages())
	return nil
}

// InitEarly releases the pages in [start, end) before the kernel page table
// exists. Only memory mapped by the boot page table may be passed in.
func InitEarly(start, end mem.VirtAddr) {
	kmem.FreeRange(start, end)
}

// InitLate releases the pages in [start, end) once the kernel page table
// maps all of physical memory.
func InitLate(start, end mem.VirtAddr) {
	kmem.FreeRange(start, end)
	kfmt.Printf("[kalloc] late range: 0x%8x - 0x%8x, %d pages free\n", start.Raw(), end.Raw(), kmem.FreePages())
}

// Alloc reserves one physical page and returns its kernel virtual address.
// It returns ErrOutOfMemory if no page is available.
func Alloc() (mem.VirtPage, *kernel.Error) {
	return kmem.Alloc()
}

// Free returns a page obtained by Alloc to the allocator.
func Free(page mem.VirtPage) {
	kmem.Free(page)
}

// FreeAddr returns the page at addr to the allocator. addr must be
// page-aligned.
func FreeAddr(addr mem.VirtAddr) {
	kmem.FreeAddr(addr)
}

// FreePages returns the number of free physical pages.
func FreePages() uint32 {
	return kmem.FreePages()
}

// PrintStats writes the allocator state to w.
func PrintStats(w io.Writer) {
	kmem.printStats(w)
}
