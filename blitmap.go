package softblit

import (
	"fmt"

	"github.com/gogpu/softblit/internal/pixel"
)

// staleVersion marks a blit map that has never been validated or has been
// invalidated. Format versions never reach it.
const staleVersion = ^uint32(0)

// blitMap caches how a surface is blitted onto its last destination.
//
// The destination is remembered by id and format version only; checking
// staleness never touches the destination itself.
type blitMap struct {
	dstID         uint64
	formatVersion uint32

	// identity: source pixels can be copied verbatim.
	identity bool
	// table translates palette indices: one byte per source colour for an
	// indexed destination, one packed pixel per source colour (3-byte
	// pixels padded to 4) for a packed destination.
	table []byte

	// kind is the pixel routine; rle is BlitRLE or BlitRLEAlpha when the
	// source is to be blitted from its run-length encoding.
	kind BlitKind
	rle  BlitKind
}

func newBlitMap() *blitMap {
	return &blitMap{formatVersion: staleVersion}
}

// invalidate forgets the destination and anything derived from it.
func (m *blitMap) invalidate() {
	m.dstID = 0
	m.formatVersion = staleVersion
	m.identity = false
	m.table = nil
	m.kind = BlitNone
	m.rle = BlitNone
}

// validFor reports whether the map was built for dst in its current format.
func (m *blitMap) validFor(dst *Surface) bool {
	return m.dstID == dst.id && m.formatVersion == dst.formatVersion
}

// map1to1 builds the table translating src palette indices to the nearest
// dst entries. If src is an exact prefix of dst, it reports identical and
// returns no table.
func map1to1(src, dst *Palette) (table []byte, identical bool) {
	if src.equalPrefix(dst) {
		return nil, true
	}
	table = make([]byte, src.Len())
	for i, c := range src.colors {
		table[i] = dst.FindColor(c.R, c.G, c.B)
	}
	return table, false
}

// map1toN builds the table of dst pixels for each src palette entry.
// Alpha comes from the source's per-surface alpha when dst has an alpha
// channel.
func map1toN(src, dst *PixelFormat) []byte {
	pal := src.Palette
	bpp := int(dst.BytesPerPixel)
	entry := tableEntrySize(dst)
	alpha := uint32(0)
	if dst.Amask != 0 {
		alpha = uint32(src.Alpha)
	}
	table := make([]byte, pal.Len()*entry)
	for i, c := range pal.colors {
		v := dst.packRGBA(uint32(c.R), uint32(c.G), uint32(c.B), alpha)
		pixel.Store(table[i*entry:], bpp, v)
	}
	return table
}

// tableEntrySize is the stride of a map1toN table.
func tableEntrySize(dst *PixelFormat) int {
	if dst.BytesPerPixel == 3 {
		return 4
	}
	return int(dst.BytesPerPixel)
}

// mapNto1 builds the table translating 3-3-2 dither indices into the dst
// palette. A nil table means the dither index is the dst index.
func mapNto1(dst *PixelFormat) []byte {
	dithered := NewPalette(256)
	DitherColors(dithered.colors, 8)
	table, _ := map1to1(dithered, dst.Palette)
	return table
}

// mapSurface validates the blit map of src for dst and selects the blitter.
func mapSurface(src, dst *Surface) error {
	m := src.bmap
	if src.flags&RLEAccel != 0 {
		src.unRLE()
	}
	m.invalidate()

	sf, df := src.format, dst.format
	switch {
	case sf.BytesPerPixel == 1 && df.BytesPerPixel == 1:
		if sf.Palette == nil || df.Palette == nil {
			return fmt.Errorf("%w: 8-bit format without palette", ErrNoPalette)
		}
		// Two hardware surfaces are assumed to share the device palette.
		if src.flags&HWSurface != 0 && dst.flags&HWSurface != 0 {
			m.identity = true
		} else {
			m.table, m.identity = map1to1(sf.Palette, df.Palette)
		}
		if sf.BitsPerPixel != df.BitsPerPixel {
			m.identity = false
		}

	case sf.BytesPerPixel == 1:
		if sf.Palette == nil {
			return fmt.Errorf("%w: 8-bit format without palette", ErrNoPalette)
		}
		m.table = map1toN(sf, df)

	case df.BytesPerPixel == 1:
		if df.Palette == nil {
			return fmt.Errorf("%w: 8-bit format without palette", ErrNoPalette)
		}
		m.table = mapNto1(df)
		m.identity = false

	default:
		m.identity = sf.Equal(df)
	}

	m.dstID = dst.id
	m.formatVersion = dst.formatVersion
	return calculateBlit(src, dst)
}
