package softblit

import (
	"fmt"
	"math/bits"

	"github.com/gogpu/softblit/internal/pixel"
)

// PixelFormat describes how colours are encoded in a surface's pixels.
//
// For packed formats each channel is stored as (value >> loss) << shift and
// selected by its mask. A channel that is absent has mask 0, shift 0 and
// loss 8. Formats of 8 bits or fewer per pixel are indexed and carry a
// Palette.
type PixelFormat struct {
	Palette       *Palette
	BitsPerPixel  uint8
	BytesPerPixel uint8

	Rloss, Gloss, Bloss, Aloss     uint8
	Rshift, Gshift, Bshift, Ashift uint8
	Rmask, Gmask, Bmask, Amask     uint32

	// Colorkey is the transparent pixel value used by colour-keyed blits.
	Colorkey uint32
	// Alpha is the per-surface alpha applied by alpha blits.
	Alpha uint8
}

// NewPixelFormat builds a format of the given depth.
//
// If any of rmask, gmask, bmask is non-zero the format is packed with those
// masks; amask adds an alpha channel. If all three are zero and bpp > 8 a
// standard layout is used: blue in the low bits, then green, then red, with
// green taking any bits left over and at most 24 bits in total.
//
// Formats of 8 bits or fewer get a palette of 1<<bpp entries. With masks the
// palette is derived from them; a two-colour palette defaults to white then
// black; any other palette starts out black.
func NewPixelFormat(bpp int, rmask, gmask, bmask, amask uint32) (*PixelFormat, error) {
	if bpp < 1 || bpp > 32 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDepth, bpp)
	}
	f := &PixelFormat{
		BitsPerPixel:  uint8(bpp),
		BytesPerPixel: uint8((bpp + 7) / 8),
		Alpha:         255,
	}

	switch {
	case rmask != 0 || gmask != 0 || bmask != 0:
		var err error
		if f.Rshift, f.Rloss, err = maskLayout(rmask); err != nil {
			return nil, fmt.Errorf("red: %w", err)
		}
		if f.Gshift, f.Gloss, err = maskLayout(gmask); err != nil {
			return nil, fmt.Errorf("green: %w", err)
		}
		if f.Bshift, f.Bloss, err = maskLayout(bmask); err != nil {
			return nil, fmt.Errorf("blue: %w", err)
		}
		if f.Ashift, f.Aloss, err = maskLayout(amask); err != nil {
			return nil, fmt.Errorf("alpha: %w", err)
		}
		f.Rmask, f.Gmask, f.Bmask, f.Amask = rmask, gmask, bmask, amask

	case bpp > 8:
		n := min(bpp, 24)
		f.Rloss = uint8(8 - n/3)
		f.Gloss = uint8(8 - n/3 - n%3)
		f.Bloss = uint8(8 - n/3)
		f.Rshift = uint8(n/3 + n%3 + n/3)
		f.Gshift = uint8(n / 3)
		f.Bshift = 0
		f.Aloss = 8
		f.Rmask = (0xFF >> f.Rloss) << f.Rshift
		f.Gmask = (0xFF >> f.Gloss) << f.Gshift
		f.Bmask = (0xFF >> f.Bloss) << f.Bshift

	default:
		f.Rloss, f.Gloss, f.Bloss, f.Aloss = 8, 8, 8, 8
	}

	if bpp <= 8 {
		f.Palette = NewPalette(1 << bpp)
		switch {
		case rmask != 0 || gmask != 0 || bmask != 0:
			f.fillMaskPalette()
		case bpp == 1:
			f.Palette.colors[0] = Color{R: 0xFF, G: 0xFF, B: 0xFF}
		}
	}
	return f, nil
}

// maskLayout derives shift and loss from a channel mask. A zero mask is an
// absent channel.
func maskLayout(mask uint32) (shift, loss uint8, err error) {
	if mask == 0 {
		return 0, 8, nil
	}
	s := bits.TrailingZeros32(mask)
	w := bits.OnesCount32(mask)
	if mask>>uint(s) != 1<<uint(w)-1 {
		return 0, 0, fmt.Errorf("%w: %#08x is not contiguous", ErrInvalidMask, mask)
	}
	if w > 8 {
		return 0, 0, fmt.Errorf("%w: %#08x is wider than 8 bits", ErrInvalidMask, mask)
	}
	return uint8(s), uint8(8 - w), nil
}

// fillMaskPalette sets each palette entry to its index unpacked through the
// channel masks, replicating the channel bits across the whole byte.
func (f *PixelFormat) fillMaskPalette() {
	rm, rw := replicator(f.Rmask, f.Rloss)
	gm, gw := replicator(f.Gmask, f.Gloss)
	bm, bw := replicator(f.Bmask, f.Bloss)
	for i := range f.Palette.colors {
		r := (uint32(i) & f.Rmask) >> f.Rshift
		g := (uint32(i) & f.Gmask) >> f.Gshift
		b := (uint32(i) & f.Bmask) >> f.Bshift
		f.Palette.colors[i] = Color{
			R: uint8(r<<f.Rloss | (r*rm)>>rw),
			G: uint8(g<<f.Gloss | (g*gm)>>gw),
			B: uint8(b<<f.Bloss | (b*bm)>>bw),
		}
	}
}

// replicator returns the multiplier that spreads a channel of the given
// loss over the low bits, and the channel width.
func replicator(mask uint32, loss uint8) (m, w uint32) {
	if mask == 0 {
		return 0, 0
	}
	w = 8 - uint32(loss)
	for i := int(loss); i > 0; i -= int(w) {
		m |= 1 << uint(i)
	}
	return m, w
}

// Equal reports whether f and g encode pixels identically: same depth,
// masks and losses.
func (f *PixelFormat) Equal(g *PixelFormat) bool {
	return f.BitsPerPixel == g.BitsPerPixel &&
		f.Rmask == g.Rmask && f.Gmask == g.Gmask &&
		f.Bmask == g.Bmask && f.Amask == g.Amask &&
		f.Rloss == g.Rloss && f.Gloss == g.Gloss &&
		f.Bloss == g.Bloss && f.Aloss == g.Aloss
}

// Indexed reports whether pixels are palette indices.
func (f *PixelFormat) Indexed() bool { return f.Palette != nil }

// clone returns a deep copy of f.
func (f *PixelFormat) clone() *PixelFormat {
	c := *f
	if f.Palette != nil {
		c.Palette = f.Palette.clone()
	}
	return &c
}

// MapRGB returns the pixel value closest to (r, g, b). An alpha channel,
// if present, is set to fully opaque.
func (f *PixelFormat) MapRGB(r, g, b uint8) uint32 {
	if f.Palette != nil {
		return uint32(f.Palette.FindColor(r, g, b))
	}
	return f.pack(uint32(r), uint32(g), uint32(b)) | f.Amask
}

// MapRGBA returns the pixel value closest to (r, g, b, a). Palette formats
// ignore a.
func (f *PixelFormat) MapRGBA(r, g, b, a uint8) uint32 {
	if f.Palette != nil {
		return uint32(f.Palette.FindColor(r, g, b))
	}
	return f.pack(uint32(r), uint32(g), uint32(b)) |
		((uint32(a)>>f.Aloss)<<f.Ashift)&f.Amask
}

// GetRGB unpacks a pixel value into 8-bit channels.
func (f *PixelFormat) GetRGB(p uint32) (r, g, b uint8) {
	r, g, b, _ = f.GetRGBA(p)
	return r, g, b
}

// GetRGBA unpacks a pixel value into 8-bit channels. The largest value a
// channel can hold unpacks to exactly 255. Formats without alpha, and
// palette formats, report a = 255.
func (f *PixelFormat) GetRGBA(p uint32) (r, g, b, a uint8) {
	if f.Palette != nil {
		if int(p) >= len(f.Palette.colors) {
			return 0, 0, 0, 255
		}
		c := f.Palette.colors[p]
		return c.R, c.G, c.B, 255
	}
	r = pixel.Expand((p&f.Rmask)>>f.Rshift, f.Rloss)
	g = pixel.Expand((p&f.Gmask)>>f.Gshift, f.Gloss)
	b = pixel.Expand((p&f.Bmask)>>f.Bshift, f.Bloss)
	if f.Amask == 0 {
		return r, g, b, 255
	}
	a = pixel.Expand((p&f.Amask)>>f.Ashift, f.Aloss)
	return r, g, b, a
}

// pack assembles colour channels without touching alpha.
func (f *PixelFormat) pack(r, g, b uint32) uint32 {
	return (r>>f.Rloss)<<f.Rshift | (g>>f.Gloss)<<f.Gshift | (b>>f.Bloss)<<f.Bshift
}

// packRGBA assembles all four channels; alpha vanishes when the format has
// no alpha channel because Aloss is then 8.
func (f *PixelFormat) packRGBA(r, g, b, a uint32) uint32 {
	return f.pack(r, g, b) | (a>>f.Aloss)<<f.Ashift
}

// unpackRGBA is GetRGBA for packed formats, returning 0 alpha when the
// format has none.
func (f *PixelFormat) unpackRGBA(p uint32) (r, g, b, a uint32) {
	r = uint32(pixel.Expand((p&f.Rmask)>>f.Rshift, f.Rloss))
	g = uint32(pixel.Expand((p&f.Gmask)>>f.Gshift, f.Gloss))
	b = uint32(pixel.Expand((p&f.Bmask)>>f.Bshift, f.Bloss))
	a = uint32(pixel.Expand((p&f.Amask)>>f.Ashift, f.Aloss))
	return r, g, b, a
}

// calculatePitch returns the 4-byte aligned row size of a w pixel wide
// surface in format f.
func calculatePitch(f *PixelFormat, w int) int {
	pitch := w * int(f.BytesPerPixel)
	switch f.BitsPerPixel {
	case 1:
		pitch = (pitch + 7) / 8
	case 4:
		pitch = (pitch + 1) / 2
	}
	return (pitch + 3) &^ 3
}

// String describes the format, e.g. "32bpp R=00ff0000 G=0000ff00 B=000000ff A=ff000000".
func (f *PixelFormat) String() string {
	if f.Palette != nil {
		return fmt.Sprintf("%dbpp indexed(%d)", f.BitsPerPixel, f.Palette.Len())
	}
	return fmt.Sprintf("%dbpp R=%08x G=%08x B=%08x A=%08x",
		f.BitsPerPixel, f.Rmask, f.Gmask, f.Bmask, f.Amask)
}
