package pmm

import (
	"io"

	"xv6go/kernel"
	"xv6go/kernel/kfmt"
	"xv6go/kernel/mem"
	"xv6go/kernel/sync"
)

// PoisonByte is written over every byte of a page when it is freed so that
// dangling references read garbage instead of stale data.
const PoisonByte = 0x01

var (
	// ErrOutOfMemory is returned by Alloc when the free-list is empty.
	ErrOutOfMemory = &kernel.Error{Module: "kalloc", Message: "out of memory"}

	errFreeOutOfRange = &kernel.Error{Module: "kalloc", Message: "kfree: page outside of [kernel end, PHYSTOP)"}
	errFreeMisaligned = &kernel.Error{Module: "kalloc", Message: "kfree: address is not page-aligned"}
)

// run overlays the first word of a free page and links it to the next free
// page. A null next marks the end of the list.
type run struct {
	next mem.VirtPage
}

// FreeList is a LIFO list of free physical pages, threaded through the pages
// themselves and addressed by their kernel virtual aliases. Pages are never
// coalesced; every allocation returns exactly one page.
type FreeList struct {
	lock sync.Spinlock

	head  mem.VirtPage
	count uint32

	// Pages in [kernelEnd, physTop) may be freed.
	kernelEnd mem.VirtAddr
	physTop   mem.VirtPage
}

// Init empties the list and sets the range of pages it will accept.
func (fl *FreeList) Init(layout mem.Layout) *kernel.Error {
	if err := layout.Validate(); err != nil {
		return err
	}

	fl.lock.Acquire()
	fl.head = mem.VirtPage{}
	fl.count = 0
	fl.kernelEnd = layout.KernelEnd
	fl.physTop = layout.PhysTopVirt()
	fl.lock.Release()

	return nil
}

// FreeRange releases every whole page inside [start, end). start is rounded
// up and end is rounded down to a page boundary.
func (fl *FreeList) FreeRange(start, end mem.VirtAddr) {
	last := mem.PageRoundDown(end)
	for page := mem.PageRoundUp(start); mem.Less(page, last); page.Increase(1) {
		fl.Free(page)
	}
}

// Free poisons page and pushes it on the list. Freeing a page that lies
// below the end of the kernel image or at or above PHYSTOP is a fatal error.
func (fl *FreeList) Free(page mem.VirtPage) {
	if mem.Less(page, fl.kernelEnd) || !mem.Less(page, fl.physTop) {
		panic(errFreeOutOfRange)
	}

	mem.FillPage(page, PoisonByte)

	fl.lock.Acquire()
	mem.PointerTo[run](page).Get().next = fl.head
	fl.head = page
	fl.count++
	fl.lock.Release()
}

// FreeAddr behaves like Free for an address that is not statically known to
// be page-aligned. A misaligned address is a fatal error.
func (fl *FreeList) FreeAddr(addr mem.VirtAddr) {
	page, ok := mem.Realign[mem.PageAligned](addr)
	if !ok {
		panic(errFreeMisaligned)
	}
	fl.Free(page)
}

// Alloc pops the most recently freed page. The page contents are
// unspecified; callers that need zeroed memory must clear it.
func (fl *FreeList) Alloc() (mem.VirtPage, *kernel.Error) {
	fl.lock.Acquire()
	page := fl.head
	if page.IsNull() {
		fl.lock.Release()
		return page, ErrOutOfMemory
	}
	fl.head = mem.PointerTo[run](page).Get().next
	fl.count--
	fl.lock.Release()

	return page, nil
}

// FreePages returns the number of pages currently on the list.
func (fl *FreeList) FreePages() uint32 {
	fl.lock.Acquire()
	count := fl.count
	fl.lock.Release()
	return count
}

// printStats writes a summary of the list state to w.
func (fl *FreeList) printStats(w io.Writer) {
	free := fl.FreePages()
	kfmt.Fprintf(w, "[kalloc] managed range: 0x%8x - 0x%8x\n", mem.PageRoundUp(fl.kernelEnd).Raw(), fl.physTop.Raw())
	kfmt.Fprintf(w, "[kalloc] free pages: %d (%d KiB)\n", free, free*(mem.PageSize>>10))
}
