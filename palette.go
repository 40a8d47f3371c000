package softblit

import "github.com/gogpu/softblit/internal/cache"

// paletteMemoSize bounds the nearest-colour memo of a palette.
const paletteMemoSize = 4096

// Palette is the colour table of an indexed pixel format.
//
// Entries are changed only through SetColors so the nearest-colour memo
// stays in step with the table.
type Palette struct {
	colors []Color
	memo   *cache.Cache[uint32, uint8]
}

// NewPalette returns a palette of n black entries.
func NewPalette(n int) *Palette {
	return &Palette{
		colors: make([]Color, n),
		memo:   cache.New[uint32, uint8](paletteMemoSize),
	}
}

// Len returns the number of entries.
func (p *Palette) Len() int { return len(p.colors) }

// Color returns entry i.
func (p *Palette) Color(i int) Color { return p.colors[i] }

// Colors returns a copy of the entries.
func (p *Palette) Colors() []Color {
	return append([]Color(nil), p.colors...)
}

// SetColors copies colors into the palette starting at index first.
// Colours that do not fit are dropped; the result reports whether all of
// them were stored.
func (p *Palette) SetColors(colors []Color, first int) bool {
	if first < 0 || first >= len(p.colors) {
		return false
	}
	n := copy(p.colors[first:], colors)
	p.memo.Clear()
	return n == len(colors)
}

// clone returns an independent copy of p.
func (p *Palette) clone() *Palette {
	c := NewPalette(len(p.colors))
	copy(c.colors, p.colors)
	return c
}

// equalPrefix reports whether the first len(p) entries of q match p
// exactly, A included.
func (p *Palette) equalPrefix(q *Palette) bool {
	if len(p.colors) > len(q.colors) {
		return false
	}
	for i, c := range p.colors {
		if q.colors[i] != c {
			return false
		}
	}
	return true
}

// allBlack reports whether every entry has zero R, G and B.
func (p *Palette) allBlack() bool {
	for _, c := range p.colors {
		if c.R != 0 || c.G != 0 || c.B != 0 {
			return false
		}
	}
	return true
}

// FindColor returns the index of the entry nearest to (r, g, b) by squared
// RGB distance. Ties keep the lower index; an exact match stops the scan.
func (p *Palette) FindColor(r, g, b uint8) uint8 {
	key := Color{R: r, G: g, B: b}.rgbKey()
	return p.memo.GetOrCreate(key, func() uint8 {
		return findColor(p.colors, r, g, b)
	})
}

func findColor(colors []Color, r, g, b uint8) uint8 {
	smallest := ^uint32(0)
	pixel := 0
	for i, c := range colors {
		rd := int32(c.R) - int32(r)
		gd := int32(c.G) - int32(g)
		bd := int32(c.B) - int32(b)
		d := uint32(rd*rd + gd*gd + bd*bd)
		if d < smallest {
			pixel = i
			if d == 0 {
				break
			}
			smallest = d
		}
	}
	return uint8(pixel)
}

// DitherColors fills colors with the 3-3-2 ramp used for 8-bit dithering:
// index bits RRRGGGBB, each field replicated to a full byte. Only bpp 8
// is supported; other depths leave colors untouched.
func DitherColors(colors []Color, bpp int) {
	if bpp != 8 {
		return
	}
	for i := range colors {
		if i > 255 {
			break
		}
		r := uint8(i & 0xE0)
		r |= r>>3 | r>>6
		g := uint8((i << 3) & 0xE0)
		g |= g>>3 | g>>6
		b := uint8(i & 0x03)
		b |= b << 2
		b |= b << 4
		colors[i] = Color{R: r, G: g, B: b}
	}
}

// ditherIndex packs a colour into the 3-3-2 index of the dither ramp.
func ditherIndex(r, g, b uint32) uint8 {
	return uint8((r>>5)<<5 | (g>>5)<<2 | b>>6)
}
