package softblit

import (
	"errors"
	"fmt"

	"github.com/gogpu/softblit/internal/pixel"
)

// rleRun is a run of visible pixels in one row.
type rleRun struct {
	x, n int32
	// translucent runs need blending; the others are opaque or, for a
	// colour key, plain copies.
	translucent bool
}

// rleData is the run-length encoding of a surface: for each row, the runs
// of pixels that are not transparent. The pixel buffer stays the source of
// truth; the runs only let blits skip transparent spans.
type rleData struct {
	rows  [][]rleRun
	alpha bool
}

var errNoRLE = errors.New("softblit: surface cannot be run-length encoded")

// encodeRLE builds the run-length encoding of s and sets RLEAccel.
func (s *Surface) encodeRLE() error {
	if s.flags&RLEAccel != 0 {
		s.unRLE()
	}
	if s.flags&HWSurface != 0 {
		return fmt.Errorf("%w: video memory surface", errNoRLE)
	}
	if s.format.BitsPerPixel < 8 {
		return fmt.Errorf("%w: %d bpp", errNoRLE, s.format.BitsPerPixel)
	}
	if s.flags&SrcColorKey == 0 && (s.flags&SrcAlpha == 0 || s.format.Amask == 0) {
		return fmt.Errorf("%w: no colour key or alpha channel", errNoRLE)
	}

	locked := s.MustLock()
	if locked {
		if err := s.Lock(); err != nil {
			return err
		}
	}
	var rle *rleData
	if s.flags&SrcColorKey != 0 {
		rle = s.encodeColorKeyRuns()
	} else {
		rle = s.encodeAlphaRuns()
	}
	// Unlock before RLEAccel is set so the unlock does not encode again.
	if locked {
		s.Unlock()
	}

	s.rle = rle
	s.flags |= RLEAccel
	Logger().Debug("surface rle encoded", "w", s.w, "h", s.h, "alpha", rle.alpha)
	return nil
}

// unRLE drops the run-length encoding.
func (s *Surface) unRLE() {
	s.flags &^= RLEAccel
	s.rle = nil
}

// encodeColorKeyRuns records the runs of pixels that differ from the
// colour key, ignoring alpha bits.
func (s *Surface) encodeColorKeyRuns() *rleData {
	f := s.format
	bpp := int(f.BytesPerPixel)
	rgbmask := ^f.Amask
	ckey := f.Colorkey & rgbmask
	buf := s.data()

	rle := &rleData{rows: make([][]rleRun, s.h)}
	for y := range s.h {
		row := buf[y*s.pitch:]
		var runs []rleRun
		start := -1
		for x := 0; x <= s.w; x++ {
			visible := x < s.w && pixel.Load(row[x*bpp:], bpp)&rgbmask != ckey
			switch {
			case visible && start < 0:
				start = x
			case !visible && start >= 0:
				runs = append(runs, rleRun{x: int32(start), n: int32(x - start)})
				start = -1
			}
		}
		rle.rows[y] = runs
	}
	return rle
}

// encodeAlphaRuns records runs of opaque and of translucent pixels,
// skipping fully transparent ones.
func (s *Surface) encodeAlphaRuns() *rleData {
	f := s.format
	bpp := int(f.BytesPerPixel)
	buf := s.data()

	const (
		transparent = iota
		opaque
		translucent
	)
	class := func(p uint32) int {
		_, _, _, a := f.unpackRGBA(p)
		switch a {
		case 0:
			return transparent
		case 255:
			return opaque
		}
		return translucent
	}

	rle := &rleData{rows: make([][]rleRun, s.h), alpha: true}
	for y := range s.h {
		row := buf[y*s.pitch:]
		var runs []rleRun
		start, cur := 0, transparent
		for x := 0; x <= s.w; x++ {
			c := transparent
			if x < s.w {
				c = class(pixel.Load(row[x*bpp:], bpp))
			}
			if c == cur {
				continue
			}
			if cur != transparent {
				runs = append(runs, rleRun{x: int32(start), n: int32(x - start), translucent: cur == translucent})
			}
			start, cur = x, c
		}
		rle.rows[y] = runs
	}
	return rle
}

// rleBlit blits the runs of src that fall inside sr.
func rleBlit(src *Surface, sr Rect, dst *Surface, dr Rect) error {
	if dst.MustLock() {
		if err := dst.Lock(); err != nil {
			return err
		}
		defer dst.Unlock()
	}
	if sr.W == 0 || sr.H == 0 {
		return nil
	}

	b := newBlitInfo(src, sr, dst, dr)
	var opaque, translucent spanFunc
	switch {
	case src.bmap.rle == BlitRLEAlpha:
		opaque = packedSpan(b, false, true)
		translucent = opaque
	case blitSelector(src)&selAlpha != 0:
		opaque = genericSpan(b, BlitGenericAlpha)
		translucent = opaque
	default:
		opaque = copySpan
	}
	if opaque == nil {
		return nil
	}

	x0, x1 := sr.X, sr.X+sr.W
	for y := range sr.H {
		srow, drow := b.srcRow(y), b.dstRow(y)
		for _, run := range src.rle.rows[sr.Y+y] {
			a := max(int(run.x), x0)
			e := min(int(run.x+run.n), x1)
			if a >= e {
				continue
			}
			span := opaque
			if run.translucent {
				span = translucent
			}
			span(b, srow, drow, a, dr.X+a-x0, e-a)
		}
	}
	return nil
}
