package softblit

import "testing"

// sameSurface compares every pixel of a and b.
func sameSurface(t *testing.T, a, b *Surface) {
	t.Helper()
	for y := range a.H() {
		for x := range a.W() {
			if pa, pb := a.PixelAt(x, y), b.PixelAt(x, y); pa != pb {
				t.Fatalf("pixel (%d, %d): %#x != %#x", x, y, pa, pb)
			}
		}
	}
}

// sprite draws a keyed shape: a border of key pixels around a pattern.
func sprite(t *testing.T, f [5]uint32, key uint32) *Surface {
	t.Helper()
	s := newTestSurface(t, 9, 7, int(f[0]), f[1], f[2], f[3], f[4])
	fillPattern(s)
	for y := range 7 {
		for x := range 9 {
			if x == 0 || y == 0 || x == 8 || (x+y)%4 == 0 {
				s.SetPixelAt(x, y, key)
			}
		}
	}
	return s
}

func TestRLEColorKeyMatchesGeneric(t *testing.T) {
	xrgb := [5]uint32{32, 0xFF0000, 0xFF00, 0xFF, 0}
	const key = 0xFF00FF

	tests := []struct {
		name    string
		srcRect *Rect
		dstAt   Rect
		alpha   uint8
		want    BlitKind
	}{
		{"full", nil, Rect{X: 1, Y: 2}, 255, BlitRLE},
		{"clipped source", &Rect{X: 3, Y: 1, W: 4, H: 5}, Rect{X: 4}, 255, BlitRLE},
		{"clipped destination", nil, Rect{X: -4, Y: 6}, 255, BlitRLE},
		{"with surface alpha", nil, Rect{X: 2, Y: 2}, 100, BlitRLE},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rle := sprite(t, xrgb, key)
			plain := sprite(t, xrgb, key)
			if err := rle.SetColorKey(SrcColorKey|RLEAccel, key); err != nil {
				t.Fatal(err)
			}
			if err := plain.SetColorKey(SrcColorKey, key); err != nil {
				t.Fatal(err)
			}
			if tt.alpha != 255 {
				rle.SetAlpha(SrcAlpha|RLEAccel, tt.alpha)
				plain.SetAlpha(SrcAlpha, tt.alpha)
			}

			d1 := newTestSurface(t, 12, 10, 32, 0, 0, 0, 0)
			d2 := newTestSurface(t, 12, 10, 32, 0, 0, 0, 0)
			fillAll(d1, 0x203040)
			fillAll(d2, 0x203040)

			r1, r2 := tt.dstAt, tt.dstAt
			if err := UpperBlit(rle, tt.srcRect, d1, &r1); err != nil {
				t.Fatal(err)
			}
			if err := UpperBlit(plain, tt.srcRect, d2, &r2); err != nil {
				t.Fatal(err)
			}
			if rle.BlitKind() != tt.want {
				t.Errorf("BlitKind() = %v, want %v", rle.BlitKind(), tt.want)
			}
			if rle.Flags()&RLEAccel == 0 {
				t.Error("RLEAccel not set after mapping")
			}
			if plain.BlitKind() == BlitRLE {
				t.Error("surface without RLEAccelOK was encoded")
			}
			if r1 != r2 {
				t.Errorf("dstRect %+v != %+v", r1, r2)
			}
			sameSurface(t, d1, d2)
		})
	}
}

func TestRLEAlphaMatchesGeneric(t *testing.T) {
	argb := [5]uint32{32, 0xFF0000, 0xFF00, 0xFF, 0xFF000000}
	build := func() *Surface {
		s := newTestSurface(t, 8, 4, 32, argb[1], argb[2], argb[3], argb[4])
		for y := range 4 {
			for x := range 8 {
				var a uint32
				switch (x + y) % 3 {
				case 1:
					a = 0xFF
				case 2:
					a = 0x60
				}
				s.SetPixelAt(x, y, a<<24|uint32(x*30)<<16|uint32(y*60)<<8|0x33)
			}
		}
		return s
	}

	for _, dstFmt := range [][5]uint32{
		{32, 0xFF0000, 0xFF00, 0xFF, 0},
		{16, 0xF800, 0x07E0, 0x001F, 0},
		{32, 0xFF0000, 0xFF00, 0xFF, 0xFF000000},
	} {
		rle, plain := build(), build()
		if err := rle.SetAlpha(SrcAlpha|RLEAccel, 255); err != nil {
			t.Fatal(err)
		}

		d1 := newTestSurface(t, 10, 6, int(dstFmt[0]), dstFmt[1], dstFmt[2], dstFmt[3], dstFmt[4])
		d2 := newTestSurface(t, 10, 6, int(dstFmt[0]), dstFmt[1], dstFmt[2], dstFmt[3], dstFmt[4])
		fillAll(d1, d1.Format().MapRGBA(10, 200, 90, 0x80))
		fillAll(d2, d2.Format().MapRGBA(10, 200, 90, 0x80))

		if err := UpperBlit(rle, &Rect{X: 1, W: 7, H: 4}, d1, &Rect{X: 2, Y: 1}); err != nil {
			t.Fatal(err)
		}
		if err := UpperBlit(plain, &Rect{X: 1, W: 7, H: 4}, d2, &Rect{X: 2, Y: 1}); err != nil {
			t.Fatal(err)
		}
		if rle.BlitKind() != BlitRLEAlpha {
			t.Errorf("%d bpp: BlitKind() = %v, want rle-alpha", dstFmt[0], rle.BlitKind())
		}
		sameSurface(t, d1, d2)
	}
}

// An 8-bit format with an alpha mask still blits through its palette, so
// RLEAccel must not change the result.
func TestRLEAlphaSkipsIndexedSources(t *testing.T) {
	build := func() *Surface {
		s := newTestSurface(t, 2, 1, 8, 0x30, 0x0C, 0x03, 0xC0)
		s.SetPixelAt(0, 0, 0x30)
		s.SetPixelAt(1, 0, 0xF0)
		return s
	}
	rle, plain := build(), build()
	if err := rle.SetAlpha(SrcAlpha|RLEAccel, 255); err != nil {
		t.Fatal(err)
	}
	if err := plain.SetAlpha(SrcAlpha, 255); err != nil {
		t.Fatal(err)
	}

	d1 := newTestSurface(t, 2, 1, 32, 0xFF0000, 0xFF00, 0xFF, 0)
	d2 := newTestSurface(t, 2, 1, 32, 0xFF0000, 0xFF00, 0xFF, 0)
	fillAll(d1, 0x0000FF)
	fillAll(d2, 0x0000FF)
	if err := UpperBlit(rle, nil, d1, nil); err != nil {
		t.Fatal(err)
	}
	if err := UpperBlit(plain, nil, d2, nil); err != nil {
		t.Fatal(err)
	}
	if rle.BlitKind() != BlitGenericAlpha || rle.Flags()&RLEAccel != 0 {
		t.Errorf("BlitKind() = %v, flags %#x; want generic-alpha without RLEAccel", rle.BlitKind(), rle.Flags())
	}
	sameSurface(t, d1, d2)
	if d1.PixelAt(0, 0) != 0xFF0000 || d1.PixelAt(1, 0) != 0xFF0000 {
		t.Errorf("dst = %#x %#x, want red twice", d1.PixelAt(0, 0), d1.PixelAt(1, 0))
	}
}

func TestRLENotUsedForBitmaps(t *testing.T) {
	bitmap := newTestSurface(t, 8, 1, 1, 0, 0, 0, 0)
	if err := bitmap.SetColorKey(SrcColorKey|RLEAccel, 0); err != nil {
		t.Fatal(err)
	}
	dst := newTestSurface(t, 8, 1, 32, 0, 0, 0, 0)
	if err := UpperBlit(bitmap, nil, dst, nil); err != nil {
		t.Fatal(err)
	}
	if bitmap.BlitKind() != BlitGenericKey {
		t.Errorf("bitmap BlitKind() = %v, want generic-key", bitmap.BlitKind())
	}
	if bitmap.Flags()&RLEAccel != 0 {
		t.Error("bitmap was run-length encoded")
	}
}

// Locking an RLE surface exposes its pixels; the last unlock encodes the
// changes so the next blit sees them.
func TestRLELockModifyUnlock(t *testing.T) {
	const key = 0xFF00FF
	src := newTestSurface(t, 4, 1, 32, 0, 0, 0, 0)
	for x := range 4 {
		src.SetPixelAt(x, 0, 0x010101*uint32(x+1))
	}
	src.SetPixelAt(2, 0, key)
	if err := src.SetColorKey(SrcColorKey|RLEAccelOK, key); err != nil {
		t.Fatal(err)
	}
	dst := newTestSurface(t, 4, 1, 32, 0, 0, 0, 0)
	if err := UpperBlit(src, nil, dst, nil); err != nil {
		t.Fatal(err)
	}
	if src.Flags()&RLEAccel == 0 || !src.MustLock() {
		t.Fatal("surface not encoded")
	}

	if err := src.Lock(); err != nil {
		t.Fatal(err)
	}
	if src.rle != nil {
		t.Error("runs kept while locked")
	}
	src.SetPixelAt(0, 0, key)
	src.SetPixelAt(2, 0, 0xABCDEF)
	src.Unlock()
	if src.rle == nil || src.Flags()&RLEAccel == 0 {
		t.Fatal("Unlock did not encode again")
	}

	fillAll(dst, 0)
	if err := UpperBlit(src, nil, dst, nil); err != nil {
		t.Fatal(err)
	}
	want := []uint32{0, 0x020202, 0xABCDEF, 0x040404}
	for x, w := range want {
		if got := dst.PixelAt(x, 0); got != w {
			t.Errorf("dst(%d) = %#x, want %#x", x, got, w)
		}
	}
}

func TestRLEDroppedWhenKeyRemoved(t *testing.T) {
	src := newTestSurface(t, 4, 4, 32, 0, 0, 0, 0)
	if err := src.SetColorKey(SrcColorKey|RLEAccel, 0); err != nil {
		t.Fatal(err)
	}
	dst := newTestSurface(t, 4, 4, 32, 0, 0, 0, 0)
	if err := UpperBlit(src, nil, dst, nil); err != nil {
		t.Fatal(err)
	}
	if src.Flags()&RLEAccel == 0 {
		t.Fatal("surface not encoded")
	}
	if err := src.SetColorKey(0, 0); err != nil {
		t.Fatal(err)
	}
	if src.Flags()&(RLEAccel|RLEAccelOK) != 0 || src.rle != nil {
		t.Errorf("flags %#x after removing the key", src.Flags())
	}
}

func BenchmarkBlitRLEColorKey(b *testing.B) {
	src, _ := NewSurface(SWSurface, 256, 256, 32, 0, 0, 0, 0)
	dst, _ := NewSurface(SWSurface, 256, 256, 32, 0, 0, 0, 0)
	for y := range 256 {
		for x := range 256 {
			if (x/16+y/16)%2 == 0 {
				src.SetPixelAt(x, y, 0x336699)
			}
		}
	}
	_ = src.SetColorKey(SrcColorKey|RLEAccel, 0)
	for b.Loop() {
		_ = UpperBlit(src, nil, dst, nil)
	}
}
