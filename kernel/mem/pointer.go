package mem

import (
	"unsafe"

	"xv6go/kernel"
)

var (
	// translateFn turns a kernel virtual address into a dereferenceable
	// pointer. In the kernel image this is the identity; hosted builds
	// install a translator backed by host memory via SetTranslator.
	translateFn = identityTranslate
)

func identityTranslate(v VirtAddr) unsafe.Pointer {
	return unsafe.Pointer(uintptr(v.raw))
}

// SetTranslator replaces the function used to dereference kernel virtual
// addresses. Passing nil restores the identity translation.
func SetTranslator(fn func(VirtAddr) unsafe.Pointer) {
	if fn == nil {
		fn = identityTranslate
	}
	translateFn = fn
}

// Pointer is a typed pointer into kernel virtual memory. Arithmetic on a
// Pointer moves in units of sizeof(T). A Pointer grants access to memory; it
// says nothing about who owns the page behind it.
type Pointer[T any] struct {
	addr VirtAddr
}

// PointerTo returns a pointer to a T stored at the virtual address v.
func PointerTo[T any, A Alignment](v Address[Virtual, A]) Pointer[T] {
	return Pointer[T]{addr: v.Unaligned()}
}

// Cast reinterprets p as a pointer to U.
func Cast[U, T any](p Pointer[T]) Pointer[U] {
	return Pointer[U]{addr: p.addr}
}

// Address returns the virtual address p points to.
func (p Pointer[T]) Address() VirtAddr { return p.addr }

// IsNull reports whether p is the null pointer.
func (p Pointer[T]) IsNull() bool { return p.addr.IsNull() }

// Page returns the address of p as a page if it is page-aligned.
func (p Pointer[T]) Page() (VirtPage, bool) {
	return Realign[PageAligned](p.addr)
}

// Increase advances p by units elements.
func (p *Pointer[T]) Increase(units uint32) {
	p.addr.Increase(units * sizeOf[T]())
}

// Decrease moves p back by units elements.
func (p *Pointer[T]) Decrease(units uint32) {
	p.addr.Decrease(units * sizeOf[T]())
}

// IncreaseBytes advances p by n bytes. It fails, leaving p unchanged, if the
// result is not suitably aligned for a T.
func (p *Pointer[T]) IncreaseBytes(n uint32) bool {
	return p.setChecked(p.addr.raw + n)
}

// DecreaseBytes moves p back by n bytes. It fails, leaving p unchanged, if
// the result is not suitably aligned for a T.
func (p *Pointer[T]) DecreaseBytes(n uint32) bool {
	return p.setChecked(p.addr.raw - n)
}

func (p *Pointer[T]) setChecked(raw uint32) bool {
	if raw%alignOf[T]() != 0 {
		return false
	}
	p.addr.raw = raw
	return true
}

// Get returns a Go pointer to the T at p.
func (p Pointer[T]) Get() *T {
	return (*T)(translateFn(p.addr))
}

// At returns a Go pointer to the i-th T following p.
func (p Pointer[T]) At(i uint32) *T {
	p.Increase(i)
	return p.Get()
}

func sizeOf[T any]() uint32 {
	var v T
	return uint32(unsafe.Sizeof(v))
}

func alignOf[T any]() uint32 {
	var v T
	return uint32(unsafe.Alignof(v))
}

// PageBytes returns the contents of page as a byte slice.
func PageBytes(page VirtPage) []byte {
	return unsafe.Slice(PointerTo[byte](page).Get(), PageSize)
}

// FillPage sets every byte of page to value.
func FillPage(page VirtPage, value byte) {
	kernel.Memset(unsafe.Pointer(PointerTo[byte](page).Get()), value, PageSize)
}

// CopyToPage copies src to the start of page. src must not be larger than a
// page.
func CopyToPage(page VirtPage, src []byte) {
	if len(src) == 0 {
		return
	}
	kernel.Memcopy(unsafe.Pointer(&src[0]), unsafe.Pointer(PointerTo[byte](page).Get()), uintptr(len(src)))
}
