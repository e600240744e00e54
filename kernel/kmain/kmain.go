package kmain

import (
	"xv6go/kernel"
	"xv6go/kernel/driver/console"
	"xv6go/kernel/driver/tty"
	"xv6go/kernel/kfmt"
	"xv6go/kernel/mem"
	"xv6go/kernel/mem/pmm"
	"xv6go/kernel/mem/vmm"
)

// EarlyMemTop is the end of the memory mapped by the boot page table. Only
// pages below it can be handed to the allocator before the kernel page table
// is active.
const EarlyMemTop = mem.KernBase + 4<<20

var (
	cons console.Vga
	vt   tty.Vt

	errKmainReturned = &kernel.Error{Module: "kmain", Message: "Kmain returned"}
	errBadDataSymbol = &kernel.Error{Module: "kmain", Message: "data symbol is not page-aligned"}
)

// Kmain is the only Go symbol that is visible (exported) from the rt0 initialization
// code. This function is invoked by the rt0 assembly code after setting up the GDT
// and setting up a a minimal g0 struct that allows Go code using the 4K stack
// allocated by the assembly code.
//
// The rt0 code passes the virtual addresses of the end of the kernel image
// and of the start of its data segment, as emitted by the linker.
//
// Kmain is not expected to return. If it does, the rt0 code will halt the CPU.
//
//go:noinline
func Kmain(kernelEnd, dataStart uintptr) {
	// The text buffer sits in the low 4M covered by the boot page table.
	cons.Init()
	vt.Init(&cons)
	vt.Clear()
	kfmt.SetOutputSink(&vt)

	data, ok := mem.Realign[mem.PageAligned](mem.Virt(uint32(dataStart)))
	if !ok {
		panic(errBadDataSymbol)
	}

	layout := mem.DefaultLayout(mem.Virt(uint32(kernelEnd)), data)
	if err := Bringup(layout, vmm.Init); err != nil {
		panic(err)
	}

	// Use kfmt.Panic instead of panic to prevent the compiler from
	// treating kfmt.Panic as dead-code and eliminating it.
	kfmt.Panic(errKmainReturned)
}

// Bringup initializes the memory subsystem for layout: the allocator
// receives the pages mapped by the boot page table, installFn builds the
// kernel page table and the allocator then receives the rest of RAM.
func Bringup(layout mem.Layout, installFn func(mem.Layout) *kernel.Error) *kernel.Error {
	earlyEnd := mem.Virt(EarlyMemTop)

	var err *kernel.Error
	if err = pmm.Init(layout, earlyEnd); err != nil {
		return err
	} else if err = installFn(layout); err != nil {
		return err
	}

	if physTop := layout.PhysTopVirt(); mem.Less(earlyEnd, physTop) {
		pmm.InitLate(earlyEnd, physTop.Unaligned())
	}
	pmm.PrintStats(kfmt.GetOutputSink())
	return nil
}
