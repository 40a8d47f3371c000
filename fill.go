package softblit

import (
	"errors"
	"fmt"

	"github.com/gogpu/softblit/internal/pixel"
)

// FillRect fills rect of dst with a raw pixel value. A nil rect fills the
// clip rectangle; otherwise rect is clipped in place and an empty result
// is a no-op. Hardware surfaces are filled by the device when it supports
// it.
func FillRect(dst *Surface, rect *Rect, color uint32) error {
	if dst == nil || dst.freed {
		return setError(ErrNilSurface)
	}
	bits := int(dst.format.BitsPerPixel)
	if bits < 8 && !pixel.Packed(bits) {
		return setError(fmt.Errorf("%w: %d bpp", ErrUnsupportedFill, bits))
	}

	var r Rect
	if rect != nil {
		if !intersectRect(*rect, dst.clip, rect) {
			return nil
		}
		r = *rect
	} else {
		r = dst.clip
		if r.Empty() {
			return nil
		}
	}

	if dst.flags&HWSurface != 0 {
		if dev := CurrentDevice(); dev != nil {
			if info := dev.Info(); info.BlitFill {
				err := dev.FillHWRect(dst, videoOffset(dst, r, info), color)
				if err == nil {
					return nil
				}
				if !errors.Is(err, ErrFallbackToSoftware) {
					return setError(fmt.Errorf("softblit: hardware fill: %w", err))
				}
				Logger().Warn("hardware fill declined, using software", "err", err)
			}
		}
	}

	if err := dst.Lock(); err != nil {
		return err
	}
	defer dst.Unlock()

	buf := dst.data()
	if pixel.Packed(bits) {
		for y := r.Y; y < r.Y+r.H; y++ {
			row := buf[y*dst.pitch:]
			for x := r.X; x < r.X+r.W; x++ {
				pixel.StoreAt(row, x, bits, color)
			}
		}
		return nil
	}

	bpp := int(dst.format.BytesPerPixel)
	for y := r.Y; y < r.Y+r.H; y++ {
		pixel.Fill(buf[y*dst.pitch+r.X*bpp:], bpp, r.W, color)
	}
	return nil
}
