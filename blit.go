package softblit

import (
	"errors"
	"fmt"
)

// UpperBlit copies srcRect of src to dst at the origin of dstRect.
//
// A nil srcRect means the whole source; a nil dstRect means (0, 0). Only
// the origin of dstRect is read. The source rectangle is clipped to the
// source surface and the destination to the clip rectangle of dst, keeping
// source and destination pixels in step. If dstRect is not nil it receives
// the final destination rectangle, which is 0x0 when nothing was drawn.
//
// Neither surface may be locked.
func UpperBlit(src *Surface, srcRect *Rect, dst *Surface, dstRect *Rect) error {
	if src == nil || dst == nil || src.freed || dst.freed {
		return setError(ErrNilSurface)
	}
	if src.Locked() || dst.Locked() {
		return setError(ErrSurfaceLocked)
	}

	var full Rect
	if dstRect == nil {
		dstRect = &full
	}

	var srcx, srcy, w, h int
	if srcRect != nil {
		srcx, w = srcRect.X, srcRect.W
		if srcx < 0 {
			w += srcx
			dstRect.X -= srcx
			srcx = 0
		}
		if maxw := src.w - srcx; maxw < w {
			w = maxw
		}

		srcy, h = srcRect.Y, srcRect.H
		if srcy < 0 {
			h += srcy
			dstRect.Y -= srcy
			srcy = 0
		}
		if maxh := src.h - srcy; maxh < h {
			h = maxh
		}
	} else {
		w, h = src.w, src.h
	}

	clip := dst.clip
	if dx := clip.X - dstRect.X; dx > 0 {
		w -= dx
		dstRect.X += dx
		srcx += dx
	}
	if dx := dstRect.X + w - clip.X - clip.W; dx > 0 {
		w -= dx
	}
	if dy := clip.Y - dstRect.Y; dy > 0 {
		h -= dy
		dstRect.Y += dy
		srcy += dy
	}
	if dy := dstRect.Y + h - clip.Y - clip.H; dy > 0 {
		h -= dy
	}

	if w > 0 && h > 0 {
		dstRect.W, dstRect.H = w, h
		return LowerBlit(src, Rect{X: srcx, Y: srcy, W: w, H: h}, dst, *dstRect)
	}
	dstRect.W, dstRect.H = 0, 0
	return nil
}

// BlitSurface is UpperBlit.
func BlitSurface(src *Surface, srcRect *Rect, dst *Surface, dstRect *Rect) error {
	return UpperBlit(src, srcRect, dst, dstRect)
}

// LowerBlit copies srcRect of src to the origin of dstRect without
// clipping. The size is taken from srcRect; both rectangles must lie
// inside their surfaces.
func LowerBlit(src *Surface, srcRect Rect, dst *Surface, dstRect Rect) error {
	if src == nil || dst == nil || src.freed || dst.freed {
		return setError(ErrNilSurface)
	}
	dstRect.W, dstRect.H = srcRect.W, srcRect.H
	if srcRect.W < 0 || srcRect.H < 0 || !srcRect.In(src.Rect()) || !dstRect.In(dst.Rect()) {
		return setError(fmt.Errorf("%w: %+v from %dx%d to %+v in %dx%d",
			ErrInvalidRect, srcRect, src.w, src.h, dstRect, dst.w, dst.h))
	}

	if !src.bmap.validFor(dst) {
		if err := mapSurface(src, dst); err != nil {
			return setError(err)
		}
	}

	if src.flags&HWAccel != 0 {
		if dev := CurrentDevice(); dev != nil {
			info := dev.Info()
			err := dev.BlitHW(src, videoOffset(src, srcRect, info), dst, videoOffset(dst, dstRect, info))
			if err == nil {
				return nil
			}
			if !errors.Is(err, ErrFallbackToSoftware) {
				return setError(fmt.Errorf("softblit: hardware blit: %w", err))
			}
			Logger().Warn("hardware blit declined, using software", "err", err)
		}
	}

	if src.bmap.rle != BlitNone && src.rle != nil {
		return setError(rleBlit(src, srcRect, dst, dstRect))
	}
	return setError(softBlit(src, srcRect, dst, dstRect))
}

// blitInfo carries everything a pixel routine needs for one blit.
type blitInfo struct {
	src, dst *Surface
	sf, df   *PixelFormat
	sp, dp   []byte // pixel views, starting at row 0
	sr, dr   Rect
	table    []byte
}

func newBlitInfo(src *Surface, sr Rect, dst *Surface, dr Rect) *blitInfo {
	return &blitInfo{
		src:   src,
		dst:   dst,
		sf:    src.format,
		df:    dst.format,
		sp:    src.data(),
		dp:    dst.data(),
		sr:    sr,
		dr:    dr,
		table: src.bmap.table,
	}
}

// srcRow and dstRow return row y of the blit rectangle.
func (b *blitInfo) srcRow(y int) []byte { return b.sp[(b.sr.Y+y)*b.src.pitch:] }
func (b *blitInfo) dstRow(y int) []byte { return b.dp[(b.dr.Y+y)*b.dst.pitch:] }

// spanFunc converts n pixels of a row, source pixel sx to destination
// pixel dx (both absolute x coordinates).
type spanFunc func(b *blitInfo, srow, drow []byte, sx, dx, n int)

// softBlit runs the software routine of the map, locking surfaces that
// need it.
func softBlit(src *Surface, sr Rect, dst *Surface, dr Rect) error {
	if dst.MustLock() {
		if err := dst.Lock(); err != nil {
			return err
		}
		defer dst.Unlock()
	}
	if src != dst && src.MustLock() {
		if err := src.Lock(); err != nil {
			return err
		}
		defer src.Unlock()
	}
	if sr.W == 0 || sr.H == 0 {
		return nil
	}

	b := newBlitInfo(src, sr, dst, dr)
	switch k := src.bmap.kind; k {
	case BlitCopy:
		b.rows(copySpan, false)
	case BlitCopyOverlap:
		blitCopyOverlap(b)
	case BlitGeneric, BlitGenericKey, BlitGenericAlpha, BlitGenericKeyAlpha:
		span := genericSpan(b, k)
		if span == nil {
			return nil
		}
		b.rows(span, false)
	default:
		return fmt.Errorf("%w: blit map has no routine", ErrUnsupportedBlit)
	}
	return nil
}

// rows runs span over every row of the blit, bottom row first if asked.
func (b *blitInfo) rows(span spanFunc, bottomUp bool) {
	for i := range b.sr.H {
		y := i
		if bottomUp {
			y = b.sr.H - 1 - i
		}
		span(b, b.srcRow(y), b.dstRow(y), b.sr.X, b.dr.X, b.sr.W)
	}
}

// genericSpan returns the converting span routine for kind, or nil when
// the blit has no visible effect.
func genericSpan(b *blitInfo, kind BlitKind) spanFunc {
	key := kind == BlitGenericKey || kind == BlitGenericKeyAlpha
	alpha := kind == BlitGenericAlpha || kind == BlitGenericKeyAlpha
	if b.sf.BytesPerPixel == 1 {
		return indexedSpan(b, key, alpha)
	}
	return packedSpan(b, key, alpha)
}
