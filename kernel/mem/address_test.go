package mem

import "testing"

func TestFromRaw(t *testing.T) {
	t.Run("unaligned accepts everything", func(t *testing.T) {
		for _, raw := range []uint32{0, 1, 0xfff, 0x1000, 0x80106123, 0xffffffff} {
			addr, ok := FromRaw[Virtual, Unaligned](raw)
			if !ok {
				t.Errorf("expected FromRaw to accept 0x%x", raw)
				continue
			}
			if addr.Raw() != raw {
				t.Errorf("expected raw value 0x%x; got 0x%x", raw, addr.Raw())
			}
		}
	})

	t.Run("page aligned rejects non-multiples of the page size", func(t *testing.T) {
		for raw := uint32(0); raw < 4*PageSize; raw++ {
			_, ok := FromRaw[Physical, PageAligned](raw)
			if exp := raw%PageSize == 0; ok != exp {
				t.Fatalf("FromRaw(0x%x): expected ok=%t; got %t", raw, exp, ok)
			}
		}

		for _, raw := range []uint32{0x80106001, 0xfffff800, 0x7fffffff} {
			if addr, ok := FromRaw[Virtual, PageAligned](raw); ok || !addr.IsNull() {
				t.Errorf("expected FromRaw to reject 0x%x and return the null address", raw)
			}
		}
	})

	t.Run("page aligned accepts every page boundary", func(t *testing.T) {
		for page := uint32(0); page < 1<<20; page += 997 {
			raw := page << PageShift
			if _, ok := FromRaw[Virtual, PageAligned](raw); !ok {
				t.Fatalf("expected FromRaw to accept 0x%x", raw)
			}
		}
	})
}

func TestAddressArithmetic(t *testing.T) {
	t.Run("unaligned strides are bytes", func(t *testing.T) {
		addr := Virt(0x80000000)
		addr.Increase(3)
		if exp := uint32(0x80000003); addr.Raw() != exp {
			t.Fatalf("expected 0x%x; got 0x%x", exp, addr.Raw())
		}
		addr.Decrease(4)
		if exp := uint32(0x7fffffff); addr.Raw() != exp {
			t.Fatalf("expected 0x%x; got 0x%x", exp, addr.Raw())
		}
	})

	t.Run("page aligned strides are pages", func(t *testing.T) {
		page, _ := FromRaw[Physical, PageAligned](0x106000)
		page.Increase(2)
		if exp := uint32(0x108000); page.Raw() != exp {
			t.Fatalf("expected 0x%x; got 0x%x", exp, page.Raw())
		}
		page.Decrease(8)
		if exp := uint32(0x100000); page.Raw() != exp {
			t.Fatalf("expected 0x%x; got 0x%x", exp, page.Raw())
		}

		if exp, got := uint32(0x101000), page.Next(1).Raw(); got != exp {
			t.Fatalf("expected Next to return 0x%x; got 0x%x", exp, got)
		}
		if exp, got := uint32(0xff000), page.Prev(1).Raw(); got != exp {
			t.Fatalf("expected Prev to return 0x%x; got 0x%x", exp, got)
		}
		if page.Raw() != 0x100000 {
			t.Fatal("expected Next/Prev not to modify the receiver")
		}
	})

	t.Run("arithmetic wraps at the word size", func(t *testing.T) {
		page, _ := FromRaw[Virtual, PageAligned](0xfffff000)
		page.Increase(1)
		if !page.IsNull() {
			t.Fatalf("expected increment past the last page to wrap to 0; got 0x%x", page.Raw())
		}
		page.Decrease(1)
		if exp := uint32(0xfffff000); page.Raw() != exp {
			t.Fatalf("expected decrement below 0 to wrap to 0x%x; got 0x%x", exp, page.Raw())
		}
	})
}

func TestAddressByteArithmetic(t *testing.T) {
	page, _ := FromRaw[Virtual, PageAligned](0x80200000)

	if page.IncreaseBytes(12) {
		t.Fatal("expected IncreaseBytes to fail when the result is not page-aligned")
	}
	if exp := uint32(0x80200000); page.Raw() != exp {
		t.Fatalf("expected failed IncreaseBytes to leave the address at 0x%x; got 0x%x", exp, page.Raw())
	}

	if !page.IncreaseBytes(2 * PageSize) {
		t.Fatal("expected IncreaseBytes to succeed for a page multiple")
	}
	if exp := uint32(0x80202000); page.Raw() != exp {
		t.Fatalf("expected 0x%x; got 0x%x", exp, page.Raw())
	}

	if page.DecreaseBytes(1) {
		t.Fatal("expected DecreaseBytes to fail when the result is not page-aligned")
	}
	if !page.DecreaseBytes(PageSize) || page.Raw() != 0x80201000 {
		t.Fatalf("expected DecreaseBytes to step back one page; got 0x%x", page.Raw())
	}

	addr := Phys(0x10)
	if !addr.IncreaseBytes(3) || addr.Raw() != 0x13 {
		t.Fatalf("expected unaligned IncreaseBytes to always succeed; got 0x%x", addr.Raw())
	}
	if !addr.DecreaseBytes(0x14) || addr.Raw() != 0xffffffff {
		t.Fatalf("expected unaligned DecreaseBytes to wrap; got 0x%x", addr.Raw())
	}
}

func TestRealign(t *testing.T) {
	if page, ok := Realign[PageAligned](Virt(0x80106000)); !ok || page.Raw() != 0x80106000 {
		t.Fatalf("expected aligned address to be promoted; got 0x%x, %t", page.Raw(), ok)
	}

	if _, ok := Realign[PageAligned](Phys(0x106004)); ok {
		t.Fatal("expected misaligned address to be rejected")
	}

	page, _ := FromRaw[Physical, PageAligned](0x3000)
	if addr, ok := Realign[Unaligned](page); !ok || addr.Raw() != 0x3000 {
		t.Fatal("expected demotion to Unaligned to succeed")
	}
	if addr := page.Unaligned(); addr.Raw() != 0x3000 {
		t.Fatal("expected Unaligned to preserve the value")
	}
}

func TestPageRounding(t *testing.T) {
	specs := []struct {
		in, down, up uint32
	}{
		{0, 0, 0},
		{1, 0, 0x1000},
		{0xfff, 0, 0x1000},
		{0x1000, 0x1000, 0x1000},
		{0x80106001, 0x80106000, 0x80107000},
		{0xfffff001, 0xfffff000, 0},
	}

	for specIndex, spec := range specs {
		addr := Virt(spec.in)
		if got := PageRoundDown(addr).Raw(); got != spec.down {
			t.Errorf("[spec %d] expected PageRoundDown(0x%x) = 0x%x; got 0x%x", specIndex, spec.in, spec.down, got)
		}
		if got := PageRoundUp(addr).Raw(); got != spec.up {
			t.Errorf("[spec %d] expected PageRoundUp(0x%x) = 0x%x; got 0x%x", specIndex, spec.in, spec.up, got)
		}
		if got := addr.PageOffset(); got != spec.in&0xfff {
			t.Errorf("[spec %d] expected PageOffset(0x%x) = 0x%x; got 0x%x", specIndex, spec.in, spec.in&0xfff, got)
		}
	}
}

func TestSpaceConversion(t *testing.T) {
	t.Run("round trip unaligned", func(t *testing.T) {
		for raw := uint32(0); raw < DefaultPhysTop; raw += 0x1237 {
			p := Phys(raw)
			if got := V2P(P2V(p)); got != p {
				t.Fatalf("expected v2p(p2v(0x%x)) to round trip; got 0x%x", raw, got.Raw())
			}

			v := Virt(KernBase + raw)
			if got := P2V(V2P(v)); got != v {
				t.Fatalf("expected p2v(v2p(0x%x)) to round trip; got 0x%x", v.Raw(), got.Raw())
			}
		}
	})

	t.Run("round trip page aligned", func(t *testing.T) {
		for raw := uint32(0); raw < DefaultPhysTop; raw += PageSize {
			p, _ := FromRaw[Physical, PageAligned](raw)
			v := P2V(p)
			if exp := KernBase + raw; v.Raw() != exp {
				t.Fatalf("expected p2v(0x%x) = 0x%x; got 0x%x", raw, exp, v.Raw())
			}
			if got := V2P(v); got != p {
				t.Fatalf("expected v2p(p2v(0x%x)) to round trip; got 0x%x", raw, got.Raw())
			}
		}
	})

	t.Run("kernel image end", func(t *testing.T) {
		if got := V2P(Virt(0x80106000)).Raw(); got != 0x106000 {
			t.Fatalf("expected v2p(0x80106000) = 0x106000; got 0x%x", got)
		}
	})
}

func TestComparison(t *testing.T) {
	page, _ := FromRaw[Virtual, PageAligned](0x80106000)
	addr := Virt(0x80106000)

	if !Equal(page, addr) || !Equal(addr, page) {
		t.Fatal("expected addresses with different alignment tags but equal values to compare equal")
	}
	if Compare(page, addr) != 0 {
		t.Fatal("expected Compare to return 0 for equal values")
	}

	higher := Virt(0x80106001)
	if Equal(page, higher) {
		t.Fatal("expected different values to compare unequal")
	}
	if Compare(page, higher) != -1 || Compare(higher, page) != 1 {
		t.Fatal("expected Compare to order by raw value")
	}
	if !Less(page, higher) || Less(higher, page) || Less(page, addr) {
		t.Fatal("expected Less to order by raw value")
	}
}

func TestSize(t *testing.T) {
	specs := []struct {
		size Size
		exp  uint32
	}{
		{0, 0},
		{1, 1},
		{PageSize, 1},
		{PageSize + 1, 2},
		{4 * Mb, 1024},
	}

	for specIndex, spec := range specs {
		if got := spec.size.Pages(); got != spec.exp {
			t.Errorf("[spec %d] expected Size(%d).Pages() = %d; got %d", specIndex, spec.size, spec.exp, got)
		}
	}
}
