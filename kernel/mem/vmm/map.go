package vmm

import (
	"xv6go/kernel"
	"xv6go/kernel/mem"
)

var errRemap = &kernel.Error{Module: "vmm", Message: "remap: virtual page is already mapped"}

// MapPages maps the pages covering [va, va+size) to the physical pages
// starting at pa. Page tables are allocated on demand. va and pa need not be
// page-aligned; both are rounded down. A zero size maps nothing. Mapping a
// page that is already present is a fatal error.
//
// The range may end at the top of the address space, in which case va+size
// wraps to 0.
func MapPages(t Table, va mem.VirtAddr, size uint32, pa mem.PhysAddr, perm PageTableEntryFlag) *kernel.Error {
	if size == 0 {
		return nil
	}

	page := mem.PageRoundDown(va)
	last := mem.PageRoundDown(va.Next(size - 1))
	frame := mem.PageRoundDown(pa)

	for {
		pte, err := walk(t, page.Raw(), true)
		if err != nil {
			return err
		}

		if pte.HasFlags(FlagPresent) {
			panic(errRemap)
		}

		*pte = 0
		pte.SetFrame(frame)
		pte.SetFlags(perm | FlagPresent)

		if page == last {
			return nil
		}
		page.Increase(1)
		frame.Increase(1)
	}
}
