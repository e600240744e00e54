package mem

const (
	// PageShift is equal to log2(PageSize). Shifting an address right by
	// PageShift yields its page number.
	PageShift = 12

	// PageSize defines the size of a page in bytes.
	PageSize = 1 << PageShift

	// pageMask selects the offset bits of an address within its page.
	pageMask = PageSize - 1
)
