package softblit

import (
	"github.com/gogpu/softblit/internal/blend"
	"github.com/gogpu/softblit/internal/pixel"
)

// packedSpan returns the span routine for sources of 2 to 4 bytes per
// pixel. It returns nil when the blit cannot change the destination.
//
// The colour key is compared with the alpha bits masked off. Without
// blending, per-pixel alpha is copied when both formats have an alpha
// channel; otherwise the destination alpha is the source's per-surface
// alpha. Per-surface blending makes the destination opaque; per-pixel
// blending keeps the destination alpha and skips transparent pixels.
// Indexed destinations receive the blended colour through the 3-3-2
// dither table.
func packedSpan(b *blitInfo, key, alpha bool) spanFunc {
	sf, df := b.sf, b.df
	sbpp := int(sf.BytesPerPixel)
	dbpp := int(df.BytesPerPixel)
	rgbmask := ^sf.Amask
	ckey := sf.Colorkey & rgbmask
	perPixel := alpha && sf.Amask != 0
	sA := uint32(sf.Alpha)
	table := b.table

	if alpha && !perPixel && sA == 0 {
		return nil
	}

	if dbpp == 1 {
		colors := df.Palette.colors
		return func(b *blitInfo, srow, drow []byte, sx, dx, n int) {
			for i := range n {
				p := pixel.Load(srow[(sx+i)*sbpp:], sbpp)
				if key && p&rgbmask == ckey {
					continue
				}
				r, g, bl, a := sf.unpackRGBA(p)
				d := &drow[dx+i]
				if alpha {
					if !perPixel {
						a = sA
					}
					if a == 0 {
						continue
					}
					var dc Color
					if int(*d) < len(colors) {
						dc = colors[*d]
					}
					r, g, bl = blend.RGB(r, g, bl, a, uint32(dc.R), uint32(dc.G), uint32(dc.B))
				}
				idx := ditherIndex(r, g, bl)
				if table != nil {
					idx = table[idx]
				}
				*d = idx
			}
		}
	}

	switch {
	case !alpha:
		copyAlpha := sf.Amask != 0 && df.Amask != 0
		setA := uint32(0)
		if df.Amask != 0 {
			setA = sA
		}
		return func(b *blitInfo, srow, drow []byte, sx, dx, n int) {
			for i := range n {
				p := pixel.Load(srow[(sx+i)*sbpp:], sbpp)
				if key && p&rgbmask == ckey {
					continue
				}
				r, g, bl, a := sf.unpackRGBA(p)
				if !copyAlpha {
					a = setA
				}
				pixel.Store(drow[(dx+i)*dbpp:], dbpp, df.packRGBA(r, g, bl, a))
			}
		}

	case perPixel:
		return func(b *blitInfo, srow, drow []byte, sx, dx, n int) {
			for i := range n {
				p := pixel.Load(srow[(sx+i)*sbpp:], sbpp)
				if key && p&rgbmask == ckey {
					continue
				}
				r, g, bl, a := sf.unpackRGBA(p)
				if a == 0 {
					continue
				}
				d := drow[(dx+i)*dbpp:]
				dr, dg, db, da := df.unpackRGBA(pixel.Load(d, dbpp))
				r, g, bl = blend.RGB(r, g, bl, a, dr, dg, db)
				pixel.Store(d, dbpp, df.packRGBA(r, g, bl, da))
			}
		}

	default:
		dA := uint32(0)
		if df.Amask != 0 {
			dA = 255
		}
		return func(b *blitInfo, srow, drow []byte, sx, dx, n int) {
			for i := range n {
				p := pixel.Load(srow[(sx+i)*sbpp:], sbpp)
				if key && p&rgbmask == ckey {
					continue
				}
				r, g, bl, _ := sf.unpackRGBA(p)
				d := drow[(dx+i)*dbpp:]
				dr, dg, db, _ := df.unpackRGBA(pixel.Load(d, dbpp))
				r, g, bl = blend.RGB(r, g, bl, sA, dr, dg, db)
				pixel.Store(d, dbpp, df.packRGBA(r, g, bl, dA))
			}
		}
	}
}
