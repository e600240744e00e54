package vmm

import (
	"xv6go/kernel"
	"xv6go/kernel/mem"
)

var (
	errFreeNullFrame     = &kernel.Error{Module: "vmm", Message: "deallocuvm: present entry maps physical page 0"}
	errInitImageTooLarge = &kernel.Error{Module: "vmm", Message: "inituvm: image does not fit in one page"}
	errUserRangeTooLarge = &kernel.Error{Module: "vmm", Message: "allocuvm: size reaches into kernel space"}
)

// InitUserRange maps a single zeroed, user-writable page at virtual address
// 0 in t and copies src into it. It is used to load the first process image,
// which must be smaller than a page.
func InitUserRange(t Table, src []byte) *kernel.Error {
	if len(src) >= mem.PageSize {
		panic(errInitImageTooLarge)
	}

	page, err := allocFn()
	if err != nil {
		return err
	}
	mem.FillPage(page, 0)

	if err = MapPages(t, mem.Virt(0), mem.PageSize, mem.V2P(page).Unaligned(), FlagRW|FlagUserAccessible); err != nil {
		freeFn(page)
		return err
	}

	mem.CopyToPage(page, src)
	return nil
}

// AllocUserRange grows the user part of t from oldSize to newSize bytes by
// mapping zeroed, user-writable pages. It returns the new size. If a page
// cannot be allocated every page added by this call is released again and
// the error is returned. Sizes reaching KernBase are rejected.
func AllocUserRange(t Table, oldSize, newSize uint32) (uint32, *kernel.Error) {
	if newSize >= mem.KernBase {
		return 0, errUserRangeTooLarge
	}
	if newSize < oldSize {
		return oldSize, nil
	}

	for a := mem.PageRoundUp(mem.Virt(oldSize)); a.Raw() < newSize; a.Increase(1) {
		page, err := allocFn()
		if err != nil {
			DeallocUserRange(t, newSize, oldSize)
			return 0, err
		}
		mem.FillPage(page, 0)

		if err = MapPages(t, a.Unaligned(), mem.PageSize, mem.V2P(page).Unaligned(), FlagRW|FlagUserAccessible); err != nil {
			DeallocUserRange(t, newSize, oldSize)
			freeFn(page)
			return 0, err
		}
	}

	return newSize, nil
}

// DeallocUserRange shrinks the user part of t from oldSize to newSize bytes.
// Every present page in [roundup(newSize), oldSize) is returned to the
// physical allocator and its entry cleared. Stretches without a page table
// are skipped a directory entry at a time. It returns the new size, or
// oldSize if newSize is not smaller.
func DeallocUserRange(t Table, oldSize, newSize uint32) uint32 {
	if newSize >= oldSize {
		return oldSize
	}

	active := t == activeTable
	for a := mem.PageRoundUp(mem.Virt(newSize)); a.Raw() < oldSize; {
		pte, err := walk(t, a.Raw(), false)
		if err != nil {
			next := pgaddr(pdx(a.Raw())+1, 0)
			if next <= a.Raw() {
				break
			}
			a = mem.PageRoundDown(mem.Virt(next))
			continue
		}

		if pte.HasFlags(FlagPresent) {
			frame := pte.Frame()
			if frame.IsNull() {
				panic(errFreeNullFrame)
			}
			freeFn(mem.P2V(frame))
			*pte = 0
			if active {
				flushTLBEntryFn(uintptr(a.Raw()))
			}
		}

		if a.Increase(1); a.IsNull() {
			break
		}
	}

	return newSize
}
