package softblit

import (
	"math"
	"sync"
	"testing"
)

func TestFormatVersionWraps(t *testing.T) {
	saved := formatVersionCounter.Load()
	t.Cleanup(func() { formatVersionCounter.Store(saved) })

	formatVersionCounter.Store(math.MaxInt32 - 1)
	if v := nextFormatVersion(); v != math.MaxInt32 {
		t.Fatalf("nextFormatVersion() = %d, want %d", v, math.MaxInt32)
	}
	if v := nextFormatVersion(); v != 1 {
		t.Errorf("nextFormatVersion() after MaxInt32 = %d, want 1", v)
	}
}

func TestFormatVersionUnique(t *testing.T) {
	const n = 64
	var (
		mu   sync.Mutex
		seen = make(map[uint32]bool)
		wg   sync.WaitGroup
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v := nextFormatVersion()
			mu.Lock()
			seen[v] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	if len(seen) != n {
		t.Errorf("got %d distinct versions, want %d", len(seen), n)
	}
	if seen[0] || seen[staleVersion] {
		t.Error("counter produced a reserved version")
	}
}

func TestFormatChangedInvalidatesMaps(t *testing.T) {
	src, _ := NewSurface(SWSurface, 4, 4, 32, 0, 0, 0, 0)
	dst, _ := NewSurface(SWSurface, 4, 4, 16, 0, 0, 0, 0)
	if err := UpperBlit(src, nil, dst, nil); err != nil {
		t.Fatal(err)
	}
	if !src.bmap.validFor(dst) {
		t.Fatal("map not valid after blit")
	}

	before := dst.FormatVersion()
	if err := dst.Reformat(32, 0, 0, 0, 0); err != nil {
		t.Fatal(err)
	}
	if dst.FormatVersion() == before {
		t.Error("Reformat kept the format version")
	}
	if src.bmap.validFor(dst) {
		t.Error("map still valid after the destination was reformatted")
	}
	if err := UpperBlit(src, nil, dst, nil); err != nil {
		t.Fatal(err)
	}
	if src.BlitKind() != BlitCopy {
		t.Errorf("BlitKind() after remap = %v, want copy", src.BlitKind())
	}
}

func TestMapForgetsFreedDestination(t *testing.T) {
	src, _ := NewSurface(SWSurface, 4, 4, 32, 0, 0, 0, 0)
	dst, _ := NewSurface(SWSurface, 4, 4, 32, 0, 0, 0, 0)
	if err := UpperBlit(src, nil, dst, nil); err != nil {
		t.Fatal(err)
	}
	dst.Free()

	other, _ := NewSurface(SWSurface, 4, 4, 32, 0, 0, 0, 0)
	if src.bmap.validFor(other) {
		t.Error("map valid for a surface it was never built for")
	}
	if err := UpperBlit(src, nil, other, nil); err != nil {
		t.Fatal(err)
	}
}
