package vmm

import (
	"xv6go/kernel"
	"xv6go/kernel/mem"
)

// walk returns the page table entry for va in t. If the page table that
// holds the entry is missing and create is set, walk allocates a zeroed page
// table and installs it. Otherwise a missing page table yields
// ErrInvalidMapping. The returned entry may itself be non-present.
func walk(t Table, va uint32, create bool) (*Entry, *kernel.Error) {
	pde := &tableAt(t.root)[pdx(va)]

	if pde.HasFlags(FlagPageSize) {
		return nil, errNoHugePageSupport
	}

	if !pde.HasFlags(FlagPresent) {
		if !create {
			return nil, ErrInvalidMapping
		}

		tablePage, err := allocFn()
		if err != nil {
			return nil, err
		}
		mem.FillPage(tablePage, 0)

		// Permissions are enforced by the leaf entries; the directory
		// entry is as permissive as possible.
		*pde = 0
		pde.SetFrame(mem.V2P(tablePage))
		pde.SetFlags(FlagPresent | FlagRW | FlagUserAccessible)
	}

	return &tableAt(mem.P2V(pde.Frame()))[ptx(va)], nil
}

// Walk returns the page table entry that maps page in t. When create is set,
// a missing page table is allocated and the returned entry may be blank.
// Otherwise Walk returns ErrInvalidMapping unless page is mapped.
func Walk(t Table, page mem.VirtPage, create bool) (*Entry, *kernel.Error) {
	pte, err := walk(t, page.Raw(), create)
	if err != nil {
		return nil, err
	}

	if !create && !pte.HasFlags(FlagPresent) {
		return nil, ErrInvalidMapping
	}

	return pte, nil
}

// Translate returns the physical address that corresponds to va in t or
// ErrInvalidMapping if va is not mapped.
func Translate(t Table, va mem.VirtAddr) (mem.PhysAddr, *kernel.Error) {
	pte, err := Walk(t, mem.PageRoundDown(va), false)
	if err != nil {
		return mem.PhysAddr{}, err
	}

	return pte.Frame().Unaligned().Next(va.PageOffset()), nil
}
