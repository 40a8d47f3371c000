package softblit

import "image/color"

// Color is a palette entry. A is carried along with the colour but palette
// formats always report full opacity when pixels are unpacked.
type Color struct {
	R, G, B, A uint8
}

// RGBA implements color.Color. Palette colours are treated as opaque.
func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	return r, g, b, 0xFFFF
}

// ColorFrom converts any color.Color to a palette entry, undoing alpha
// premultiplication.
func ColorFrom(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{R: n.R, G: n.G, B: n.B}
}

// rgbKey packs the colour channels into a cache key.
func (c Color) rgbKey() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}
