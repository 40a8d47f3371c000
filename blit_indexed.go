package softblit

import (
	"github.com/gogpu/softblit/internal/blend"
	"github.com/gogpu/softblit/internal/pixel"
)

// indexedSpan returns the span routine for palette sources of 1, 4 or 8
// bits per pixel.
//
// Into an indexed destination the map table translates indices (no table
// means the indices carry over). Into a packed destination the table holds
// the converted pixel for each palette entry. Alpha blending mixes the
// palette colour with the destination using the per-surface alpha and
// leaves an alpha destination opaque.
func indexedSpan(b *blitInfo, key, alpha bool) spanFunc {
	bits := int(b.sf.BitsPerPixel)
	dbpp := int(b.df.BytesPerPixel)
	ckey := b.sf.Colorkey
	table := b.table

	if dbpp == 1 {
		return func(b *blitInfo, srow, drow []byte, sx, dx, n int) {
			for i := range n {
				idx := pixel.LoadAt(srow, sx+i, bits)
				if key && idx == ckey {
					continue
				}
				if table != nil {
					idx = uint32(table[idx])
				}
				drow[dx+i] = byte(idx)
			}
		}
	}

	entry := tableEntrySize(b.df)
	if !alpha {
		return func(b *blitInfo, srow, drow []byte, sx, dx, n int) {
			for i := range n {
				idx := int(pixel.LoadAt(srow, sx+i, bits))
				if key && uint32(idx) == ckey {
					continue
				}
				o := (dx + i) * dbpp
				copy(drow[o:o+dbpp], table[idx*entry:])
			}
		}
	}

	colors := b.sf.Palette.colors
	a := uint32(b.sf.Alpha)
	df := b.df
	dA := uint32(0)
	if df.Amask != 0 {
		dA = 255
	}
	return func(b *blitInfo, srow, drow []byte, sx, dx, n int) {
		for i := range n {
			idx := pixel.LoadAt(srow, sx+i, bits)
			if key && idx == ckey {
				continue
			}
			var c Color
			if int(idx) < len(colors) {
				c = colors[idx]
			}
			d := drow[(dx+i)*dbpp:]
			dr, dg, db, _ := df.unpackRGBA(pixel.Load(d, dbpp))
			r, g, bl := blend.RGB(uint32(c.R), uint32(c.G), uint32(c.B), a, dr, dg, db)
			pixel.Store(d, dbpp, df.packRGBA(r, g, bl, dA))
		}
	}
}
