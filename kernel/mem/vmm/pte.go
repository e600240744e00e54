package vmm

import (
	"xv6go/kernel"
	"xv6go/kernel/mem"
)

var (
	// ErrInvalidMapping is returned when trying to lookup a virtual memory address that is not yet mapped.
	ErrInvalidMapping = &kernel.Error{Module: "vmm", Message: "virtual address does not point to a mapped physical page"}

	errNoHugePageSupport = &kernel.Error{Module: "vmm", Message: "huge pages are not supported"}
)

// PageTableEntryFlag describes a flag that can be applied to a page table entry.
type PageTableEntryFlag uint32

const (
	// FlagPresent is set when the entry maps a page or a page table.
	FlagPresent PageTableEntryFlag = 1 << iota

	// FlagRW is set if the page can be written to.
	FlagRW

	// FlagUserAccessible is set if user-mode code can access this page. If
	// not set only kernel code can access this page.
	FlagUserAccessible

	// FlagPageSize is set on a page directory entry that maps a 4 MiB
	// superpage directly instead of pointing to a page table.
	FlagPageSize PageTableEntryFlag = 1 << 7
)

const (
	// entriesPerTable is the number of entries in a page directory or a
	// page table.
	entriesPerTable = 1024

	pdxShift  = 22
	ptxShift  = 12
	indexMask = entriesPerTable - 1

	// ptePhysPageMask extracts the physical page address from an entry.
	ptePhysPageMask = uint32(0xfffff000)

	// pteFlagMask extracts the flag bits from an entry.
	pteFlagMask = uint32(0xfff)
)

// Entry is a 32-bit page directory or page table entry. It encodes the
// address of a physical page together with a set of flags.
type Entry uint32

// HasFlags returns true if this entry has all the input flags set.
func (pte Entry) HasFlags(flags PageTableEntryFlag) bool {
	return (uint32(pte) & uint32(flags)) == uint32(flags)
}

// HasAnyFlag returns true if this entry has at least one of the input flags set.
func (pte Entry) HasAnyFlag(flags PageTableEntryFlag) bool {
	return (uint32(pte) & uint32(flags)) != 0
}

// SetFlags sets the input list of flags to the page table entry.
func (pte *Entry) SetFlags(flags PageTableEntryFlag) {
	*pte = (Entry)(uint32(*pte) | uint32(flags))
}

// ClearFlags unsets the input list of flags from the page table entry.
func (pte *Entry) ClearFlags(flags PageTableEntryFlag) {
	*pte = (Entry)(uint32(*pte) &^ uint32(flags))
}

// Flags returns the flag bits of the entry.
func (pte Entry) Flags() PageTableEntryFlag {
	return PageTableEntryFlag(uint32(pte) & pteFlagMask)
}

// Frame returns the physical page that this page table entry points to.
func (pte Entry) Frame() mem.PhysPage {
	return mem.PageRoundDown(mem.Phys(uint32(pte) & ptePhysPageMask))
}

// SetFrame updates the page table entry to point to the given physical page.
func (pte *Entry) SetFrame(frame mem.PhysPage) {
	*pte = (Entry)((uint32(*pte) &^ ptePhysPageMask) | frame.Raw())
}

// pageTable is the in-memory layout of a page directory or a page table.
type pageTable [entriesPerTable]Entry

// tableAt returns the page table stored in page.
func tableAt(page mem.VirtPage) *pageTable {
	return mem.PointerTo[pageTable](page).Get()
}

// pdx returns the page directory index of va.
func pdx(va uint32) uint32 { return va >> pdxShift & indexMask }

// ptx returns the page table index of va.
func ptx(va uint32) uint32 { return va >> ptxShift & indexMask }

// pgaddr builds the virtual address of the page with directory index d and
// table index t.
func pgaddr(d, t uint32) uint32 { return d<<pdxShift | t<<ptxShift }
