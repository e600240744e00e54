// Package mem defines the typed address model shared by the physical page
// allocator and the virtual memory manager.
//
// An Address carries two type parameters that exist only at compile time: the
// address space it belongs to (Physical or Virtual) and its alignment class
// (Unaligned or PageAligned). Mixing a physical and a virtual address, or
// passing an arbitrary address where a page is required, is a type error.
// Crossing either boundary goes through a named conversion: V2P/P2V for the
// space, FromRaw/Realign/PageRoundUp/PageRoundDown for the alignment.
//
// Addresses are 32 bits wide, the machine word of the i386 target. All
// arithmetic wraps modulo 2^32 exactly like raw pointer arithmetic would.
package mem

import "cmp"

// Physical tags addresses in the physical address space.
type Physical struct{}

// Virtual tags addresses in the kernel's virtual address space.
type Virtual struct{}

// Space is satisfied by the two address-space tags.
type Space interface {
	Physical | Virtual
}

// Unaligned is the alignment class that accepts any address. Arithmetic on
// Unaligned addresses moves in 1-byte strides.
type Unaligned struct{}

func (Unaligned) stride() uint32      { return 1 }
func (Unaligned) accepts(uint32) bool { return true }

// PageAligned is the alignment class of addresses that are a multiple of
// PageSize. Arithmetic on PageAligned addresses moves in page strides.
type PageAligned struct{}

func (PageAligned) stride() uint32          { return PageSize }
func (PageAligned) accepts(raw uint32) bool { return raw&pageMask == 0 }

// Alignment is satisfied by the two alignment classes. Its methods are
// unexported so no other package can introduce a new class.
type Alignment interface {
	Unaligned | PageAligned

	// stride is the number of bytes covered by one unit of arithmetic.
	stride() uint32

	// accepts reports whether raw satisfies the alignment predicate.
	accepts(raw uint32) bool
}

// Address is a machine-word address tagged with its space and alignment.
// The zero value is the null address of the given space.
type Address[S Space, A Alignment] struct {
	raw uint32
}

// Shorthands for the four space/alignment combinations.
type (
	PhysAddr = Address[Physical, Unaligned]
	PhysPage = Address[Physical, PageAligned]
	VirtAddr = Address[Virtual, Unaligned]
	VirtPage = Address[Virtual, PageAligned]
)

// FromRaw builds an address from a raw value. It returns false if raw does
// not satisfy the predicate of the alignment class A.
func FromRaw[S Space, A Alignment](raw uint32) (Address[S, A], bool) {
	var align A
	if !align.accepts(raw) {
		return Address[S, A]{}, false
	}
	return Address[S, A]{raw: raw}, true
}

// Phys returns an unaligned physical address. It cannot fail.
func Phys(raw uint32) PhysAddr { return PhysAddr{raw: raw} }

// Virt returns an unaligned virtual address. It cannot fail.
func Virt(raw uint32) VirtAddr { return VirtAddr{raw: raw} }

// Raw returns the numeric value of the address.
func (a Address[S, A]) Raw() uint32 { return a.raw }

// IsNull reports whether this is the zero address.
func (a Address[S, A]) IsNull() bool { return a.raw == 0 }

// Increase advances the address by units strides of its alignment class.
func (a *Address[S, A]) Increase(units uint32) {
	var align A
	a.raw += units * align.stride()
}

// Decrease moves the address back by units strides of its alignment class.
func (a *Address[S, A]) Decrease(units uint32) {
	var align A
	a.raw -= units * align.stride()
}

// Next returns the address units strides after a.
func (a Address[S, A]) Next(units uint32) Address[S, A] {
	a.Increase(units)
	return a
}

// Prev returns the address units strides before a.
func (a Address[S, A]) Prev(units uint32) Address[S, A] {
	a.Decrease(units)
	return a
}

// IncreaseBytes advances the address by n bytes. If the result would violate
// the alignment class the address is left unchanged and false is returned.
func (a *Address[S, A]) IncreaseBytes(n uint32) bool {
	return a.setChecked(a.raw + n)
}

// DecreaseBytes moves the address back by n bytes. If the result would
// violate the alignment class the address is left unchanged and false is
// returned.
func (a *Address[S, A]) DecreaseBytes(n uint32) bool {
	return a.setChecked(a.raw - n)
}

func (a *Address[S, A]) setChecked(raw uint32) bool {
	var align A
	if !align.accepts(raw) {
		return false
	}
	a.raw = raw
	return true
}

// Unaligned drops the alignment guarantee of a. Every address is a valid
// Unaligned address so this never fails.
func (a Address[S, A]) Unaligned() Address[S, Unaligned] {
	return Address[S, Unaligned]{raw: a.raw}
}

// PageOffset returns the offset of a within its page.
func (a Address[S, A]) PageOffset() uint32 { return a.raw & pageMask }

// Realign re-validates a against the alignment class B. It is the only way
// to promote an existing address to PageAligned without rounding.
func Realign[B Alignment, S Space, A Alignment](a Address[S, A]) (Address[S, B], bool) {
	return FromRaw[S, B](a.raw)
}

// PageRoundUp returns the first page boundary at or above a. Addresses in the
// last page of the 4 GiB space wrap to 0.
func PageRoundUp[S Space, A Alignment](a Address[S, A]) Address[S, PageAligned] {
	return Address[S, PageAligned]{raw: (a.raw + pageMask) &^ pageMask}
}

// PageRoundDown returns the page boundary at or below a.
func PageRoundDown[S Space, A Alignment](a Address[S, A]) Address[S, PageAligned] {
	return Address[S, PageAligned]{raw: a.raw &^ pageMask}
}

// V2P converts a kernel virtual address to the physical address it aliases.
func V2P[A Alignment](v Address[Virtual, A]) Address[Physical, A] {
	return Address[Physical, A]{raw: v.raw - KernBase}
}

// P2V converts a physical address to its kernel virtual alias.
func P2V[A Alignment](p Address[Physical, A]) Address[Virtual, A] {
	return Address[Virtual, A]{raw: p.raw + KernBase}
}

// Equal reports whether two addresses of the same space are numerically
// equal, regardless of their alignment classes.
func Equal[S Space, A, B Alignment](x Address[S, A], y Address[S, B]) bool {
	return x.raw == y.raw
}

// Compare orders two addresses of the same space by value, regardless of
// their alignment classes. It returns -1, 0 or +1 like cmp.Compare.
func Compare[S Space, A, B Alignment](x Address[S, A], y Address[S, B]) int {
	return cmp.Compare(x.raw, y.raw)
}

// Less reports whether x is numerically below y.
func Less[S Space, A, B Alignment](x Address[S, A], y Address[S, B]) bool {
	return x.raw < y.raw
}
