package mem

import "xv6go/kernel"

// Memory layout of the i386 target.
const (
	// ExtMem is the start of extended memory; everything below it is the
	// legacy I/O hole.
	ExtMem = 0x00100000

	// KernBase is the first kernel virtual address. Every physical address
	// p has the kernel alias KernBase+p.
	KernBase = 0x80000000

	// KernLink is the virtual address the kernel image is linked at.
	KernLink = KernBase + ExtMem

	// DevSpace is the base of the memory-mapped device window. It is
	// identity mapped up to the top of the 4 GiB space.
	DevSpace = 0xFE000000

	// DefaultPhysTop is the physical memory ceiling used when the boot code
	// does not supply one.
	DefaultPhysTop = 0x0E000000
)

// The kernel alias of DefaultPhysTop must not reach into the device window;
// the conversion below stops compiling if it does.
const _ = uint32(DevSpace - (KernBase + DefaultPhysTop))

var (
	errLayoutData      = &kernel.Error{Module: "mem", Message: "kernel data segment lies outside the kernel image"}
	errLayoutPhysTop   = &kernel.Error{Module: "mem", Message: "PHYSTOP too high: its kernel alias overlaps the device window"}
	errLayoutKernelEnd = &kernel.Error{Module: "mem", Message: "kernel image ends above PHYSTOP"}
)

// Layout describes the values supplied by the boot loader and the linker
// that the memory subsystem needs before it can run.
type Layout struct {
	// KernelEnd is the first virtual address after the loaded kernel image
	// (the linker's end symbol). Pages below it are never handed out.
	KernelEnd VirtAddr

	// Data is the start of the kernel's data segment (the linker's data
	// symbol). Text and read-only data live in [KernLink, Data).
	Data VirtPage

	// PhysTop is the top of the physical memory managed by the kernel.
	PhysTop PhysPage
}

// DefaultLayout returns a layout for the given image symbols and the default
// physical memory ceiling.
func DefaultLayout(kernelEnd VirtAddr, data VirtPage) Layout {
	return Layout{
		KernelEnd: kernelEnd,
		Data:      data,
		PhysTop:   PhysPage{raw: DefaultPhysTop},
	}
}

// Validate checks that the layout can be mapped by the kernel page table.
func (l Layout) Validate() *kernel.Error {
	switch {
	case Less(l.Data, Virt(KernLink)) || Less(l.KernelEnd, l.Data):
		return errLayoutData
	case l.PhysTop.raw > DevSpace-KernBase:
		return errLayoutPhysTop
	case Less(l.PhysTop, V2P(l.KernelEnd)):
		return errLayoutKernelEnd
	}
	return nil
}

// PhysTopVirt returns the kernel alias of PhysTop.
func (l Layout) PhysTopVirt() VirtPage {
	return P2V(l.PhysTop)
}
