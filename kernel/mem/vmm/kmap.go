package vmm

import (
	"io"

	"xv6go/kernel"
	"xv6go/kernel/kfmt"
	"xv6go/kernel/mem"
)

var (
	errPhysTopTooHigh = &kernel.Error{Module: "vmm", Message: "PHYSTOP too high"}
	errKernelMapCheck = &kernel.Error{Module: "vmm", Message: "kernel page table does not match the kernel memory map"}

	kernelMapPrefix = []byte("[vmm] ")
	permRW, permRO  = "rw", "r-"
)

// Segment is one entry of the kernel memory map: the virtual range starting
// at Virt is mapped to the physical range [PhysStart, PhysEnd) with the given
// permissions. A PhysEnd of 0 denotes the top of the 4 GiB space.
type Segment struct {
	Virt      mem.VirtPage
	PhysStart mem.PhysPage
	PhysEnd   mem.PhysPage
	Perm      PageTableEntryFlag
}

// Size returns the number of bytes covered by the segment.
func (s Segment) Size() uint32 {
	return s.PhysEnd.Raw() - s.PhysStart.Raw()
}

// KernelMap returns the mappings present in every address space:
//
//	[KernBase, KernLink)        -> [0, ExtMem)         I/O space
//	[KernLink, data)            -> [ExtMem, V2P(data)) kernel text and rodata
//	[data, KernBase+PHYSTOP)    -> [V2P(data), PHYSTOP) kernel data and free memory
//	[DevSpace, 4 GiB)           -> [DevSpace, 4 GiB)   memory-mapped devices
func KernelMap(layout mem.Layout) [4]Segment {
	var (
		kernBase = mem.PageRoundDown(mem.Virt(mem.KernBase))
		kernLink = mem.PageRoundDown(mem.Virt(mem.KernLink))
		devVirt  = mem.PageRoundDown(mem.Virt(mem.DevSpace))
		devPhys  = mem.PageRoundDown(mem.Phys(mem.DevSpace))
	)

	return [4]Segment{
		{Virt: kernBase, PhysStart: mem.PhysPage{}, PhysEnd: mem.PageRoundDown(mem.Phys(mem.ExtMem)), Perm: FlagRW},
		{Virt: kernLink, PhysStart: mem.V2P(kernLink), PhysEnd: mem.V2P(layout.Data), Perm: 0},
		{Virt: layout.Data, PhysStart: mem.V2P(layout.Data), PhysEnd: layout.PhysTop, Perm: FlagRW},
		{Virt: devVirt, PhysStart: devPhys, PhysEnd: mem.PhysPage{}, Perm: FlagRW},
	}
}

// SetupKernelTable allocates a page directory and installs the kernel memory
// map described by layout. If a page table cannot be allocated, every page
// acquired so far is released and the error is returned.
func SetupKernelTable(layout mem.Layout) (Table, *kernel.Error) {
	if layout.PhysTop.Raw() > mem.DevSpace-mem.KernBase {
		panic(errPhysTopTooHigh)
	}
	if err := layout.Validate(); err != nil {
		return Table{}, err
	}

	t, err := NewTable()
	if err != nil {
		return Table{}, err
	}

	for _, seg := range KernelMap(layout) {
		if err = MapPages(t, seg.Virt.Unaligned(), seg.Size(), seg.PhysStart.Unaligned(), seg.Perm); err != nil {
			FreeTable(t)
			return Table{}, err
		}
	}

	return t, nil
}

// checkKernelTable verifies that the first page of every kernel map segment,
// and the page after the start of the data segment, translate to the
// expected physical page.
func checkKernelTable(t Table, layout mem.Layout) {
	segments := KernelMap(layout)
	for _, seg := range segments {
		checkKernelPage(t, seg.Virt, seg.PhysStart)
	}

	if dataPage := layout.Data.Next(1); mem.Less(dataPage, layout.PhysTopVirt()) {
		checkKernelPage(t, dataPage, mem.V2P(dataPage))
	}
}

func checkKernelPage(t Table, page mem.VirtPage, exp mem.PhysPage) {
	pte, err := Walk(t, page, false)
	if err != nil || pte.Frame() != exp {
		panic(errKernelMapCheck)
	}
}

// printKernelMap writes the kernel memory map for layout to w, one segment
// per line.
func printKernelMap(w io.Writer, layout mem.Layout) {
	pw := kfmt.PrefixWriter{Sink: w, Prefix: kernelMapPrefix}
	for _, seg := range KernelMap(layout) {
		perm := permRO
		if seg.Perm&FlagRW != 0 {
			perm = permRW
		}
		kfmt.Fprintf(&pw, "0x%8x - 0x%8x -> 0x%8x - 0x%8x %s\n",
			seg.Virt.Raw(), seg.Virt.Raw()+seg.Size(),
			seg.PhysStart.Raw(), seg.PhysEnd.Raw(),
			perm,
		)
	}
}
