// Package vmm builds and maintains the two-level x86 page tables: the kernel
// page table shared by every address space and the per-process user ranges
// below KernBase.
package vmm

import (
	"io"

	"xv6go/kernel"
	"xv6go/kernel/cpu"
	"xv6go/kernel/kfmt"
	"xv6go/kernel/mem"
	"xv6go/kernel/mem/pmm"
)

var (
	// allocFn and freeFn are used by tests to override calls to the
	// physical page allocator.
	allocFn = pmm.Alloc
	freeFn  = pmm.Free

	// switchPDTFn is used by tests to override calls to switchPDT which
	// will cause a fault if called in user-mode.
	switchPDTFn = cpu.SwitchPDT

	// flushTLBEntryFn is used by tests to override calls to flushTLBEntry
	// which will cause a fault if called in user-mode.
	flushTLBEntryFn = cpu.FlushTLBEntry

	// kernelTable is the page table used while no process is running. It
	// is set up by Init.
	kernelTable Table

	// kernelLayout is the layout kernelTable was built from.
	kernelLayout mem.Layout

	// activeTable is the table most recently loaded via Activate.
	activeTable Table
)

// Init builds the kernel page table for layout, verifies it against the
// kernel memory map and switches the MMU to it.
func Init(layout mem.Layout) *kernel.Error {
	if err := Setup(layout); err != nil {
		return err
	}

	SwitchKernelTable()
	return nil
}

// Setup builds and verifies the kernel page table like Init but does not
// load it into the MMU.
func Setup(layout mem.Layout) *kernel.Error {
	t, err := SetupKernelTable(layout)
	if err != nil {
		return err
	}
	checkKernelTable(t, layout)

	kernelTable, kernelLayout = t, layout
	kfmt.Printf("[vmm] kernel page table at 0x%8x\n", mem.V2P(t.root).Raw())
	return nil
}

// KernelTable returns the kernel page table. It is the null table until
// Setup or Init succeeds.
func KernelTable() Table {
	return kernelTable
}

// SwitchKernelTable makes the kernel page table the active one.
func SwitchKernelTable() {
	kernelTable.Activate()
}

// PrintKernelMap writes the kernel memory map of the installed kernel page
// table to w.
func PrintKernelMap(w io.Writer) {
	printKernelMap(w, kernelLayout)
}
