package vmm

import (
	"xv6go/kernel"
	"xv6go/kernel/mem"
)

var errNullTable = &kernel.Error{Module: "vmm", Message: "freevm: no page directory"}

// Table is a two-level page table identified by the kernel virtual address
// of its page directory. The zero Table is the null table.
type Table struct {
	root mem.VirtPage
}

// NewTable allocates an empty page directory.
func NewTable() (Table, *kernel.Error) {
	root, err := allocFn()
	if err != nil {
		return Table{}, err
	}
	mem.FillPage(root, 0)
	return Table{root: root}, nil
}

// Root returns the kernel virtual address of the page directory.
func (t Table) Root() mem.VirtPage { return t.root }

// IsNull reports whether t is the null table.
func (t Table) IsNull() bool { return t.root.IsNull() }

// Activate loads the page directory of t into the MMU.
func (t Table) Activate() {
	if t.IsNull() {
		panic(errNullTable)
	}
	switchPDTFn(uintptr(mem.V2P(t.root).Raw()))
	activeTable = t
}

// FreeTable releases every user page mapped by t, every page table it owns
// and finally its page directory. Superpage directory entries do not point
// to page tables and are skipped.
func FreeTable(t Table) {
	if t.IsNull() {
		panic(errNullTable)
	}

	DeallocUserRange(t, mem.KernBase, 0)

	dir := tableAt(t.root)
	for i := range dir {
		if dir[i].HasFlags(FlagPresent) && !dir[i].HasFlags(FlagPageSize) {
			freeFn(mem.P2V(dir[i].Frame()))
		}
	}
	freeFn(t.root)

	if t == activeTable {
		activeTable = Table{}
	}
}
