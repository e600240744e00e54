package kernel

import "unsafe"

// Memset sets size bytes starting at dst to value. Instead of a byte loop it
// performs log2(size) copy calls, doubling the initialized prefix each time;
// page-sized fills are the common case so this is noticeably faster.
func Memset(dst unsafe.Pointer, value byte, size uintptr) {
	if size == 0 {
		return
	}

	target := unsafe.Slice((*byte)(dst), size)
	target[0] = value
	for filled := uintptr(1); filled < size; filled *= 2 {
		copy(target[filled:], target[:filled])
	}
}

// Memcopy copies size bytes from src to dst. The regions must not overlap.
func Memcopy(src, dst unsafe.Pointer, size uintptr) {
	if size == 0 {
		return
	}

	copy(unsafe.Slice((*byte)(dst), size), unsafe.Slice((*byte)(src), size))
}
