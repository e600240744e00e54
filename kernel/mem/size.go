package mem

// Size represents a memory block size in bytes.
type Size uint64

// Common memory block sizes.
const (
	Byte Size = 1
	Kb        = 1024 * Byte
	Mb        = 1024 * Kb
	Gb        = 1024 * Mb
)

// Pages returns the number of whole pages needed to hold a block of this
// size.
func (s Size) Pages() uint32 {
	return uint32((s + PageSize - 1) >> PageShift)
}
