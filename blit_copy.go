package softblit

import "github.com/gogpu/softblit/internal/pixel"

// copySpan copies pixels verbatim between identical formats.
func copySpan(b *blitInfo, srow, drow []byte, sx, dx, n int) {
	bits := int(b.sf.BitsPerPixel)
	if pixel.Packed(bits) {
		copyPacked(srow, drow, sx, dx, n, bits, false)
		return
	}
	bpp := int(b.sf.BytesPerPixel)
	copy(drow[dx*bpp:(dx+n)*bpp], srow[sx*bpp:(sx+n)*bpp])
}

// copyPacked copies sub-byte pixels one at a time, right to left if asked.
func copyPacked(srow, drow []byte, sx, dx, n, bits int, backwards bool) {
	for i := range n {
		if backwards {
			i = n - 1 - i
		}
		pixel.StoreAt(drow, dx+i, bits, pixel.LoadAt(srow, sx+i, bits))
	}
}

// blitCopyOverlap copies within one surface. When the destination starts
// after the source in memory, rows are copied bottom-up and packed pixels
// right to left so no source pixel is overwritten before it is read.
func blitCopyOverlap(b *blitInfo) {
	pitch := b.src.pitch
	bits := int(b.sf.BitsPerPixel)
	srcStart := b.sr.Y*pitch*8 + b.sr.X*bits
	dstStart := b.dr.Y*pitch*8 + b.dr.X*bits
	backwards := dstStart > srcStart

	if !pixel.Packed(bits) {
		// copy has memmove semantics within a row.
		b.rows(copySpan, backwards)
		return
	}
	b.rows(func(b *blitInfo, srow, drow []byte, sx, dx, n int) {
		copyPacked(srow, drow, sx, dx, n, bits, backwards)
	}, backwards)
}
