package softblit

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Surface implements image.Image so surfaces can be handed to image
// encoders and draw routines directly.
var _ image.Image = (*Surface)(nil)

// ColorModel implements image.Image.
func (s *Surface) ColorModel() color.Model {
	if s.format.Palette != nil {
		return s.paletteModel()
	}
	return color.NRGBAModel
}

// Bounds implements image.Image.
func (s *Surface) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.w, s.h)
}

// At implements image.Image.
func (s *Surface) At(x, y int) color.Color {
	r, g, b, a := s.format.GetRGBA(s.PixelAt(x, y))
	return color.NRGBA{R: r, G: g, B: b, A: a}
}

func (s *Surface) paletteModel() color.Palette {
	p := make(color.Palette, s.format.Palette.Len())
	for i, c := range s.format.Palette.colors {
		p[i] = color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xFF}
	}
	return p
}

// ToImage copies the surface into a standard image: *image.Paletted for
// indexed formats, *image.NRGBA otherwise.
func (s *Surface) ToImage() image.Image {
	if s.MustLock() {
		if err := s.Lock(); err == nil {
			defer s.Unlock()
		}
	}
	if s.format.Palette != nil {
		img := image.NewPaletted(s.Bounds(), s.paletteModel())
		for y := range s.h {
			for x := range s.w {
				img.Pix[y*img.Stride+x] = uint8(s.PixelAt(x, y))
			}
		}
		return img
	}

	img := image.NewNRGBA(s.Bounds())
	for y := range s.h {
		row := img.Pix[y*img.Stride:]
		for x := range s.w {
			r, g, b, a := s.format.GetRGBA(s.PixelAt(x, y))
			row[x*4+0] = r
			row[x*4+1] = g
			row[x*4+2] = b
			row[x*4+3] = a
		}
	}
	return img
}

// NRGBA masks for 32-bit surfaces whose bytes match image.NRGBA.
const (
	NRGBARmask uint32 = 0x000000FF
	NRGBAGmask uint32 = 0x0000FF00
	NRGBABmask uint32 = 0x00FF0000
	NRGBAAmask uint32 = 0xFF000000
)

// NewSurfaceFromImage creates a software surface holding img. Paletted
// images of up to 256 colours become 8-bit indexed surfaces; everything
// else becomes a 32-bit surface with the NRGBA masks.
func NewSurfaceFromImage(img image.Image) (*Surface, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	if p, ok := img.(*image.Paletted); ok && len(p.Palette) <= 256 {
		s, err := NewSurface(SWSurface, w, h, 8, 0, 0, 0, 0)
		if err != nil {
			return nil, err
		}
		colors := make([]Color, len(p.Palette))
		for i, c := range p.Palette {
			colors[i] = ColorFrom(c)
		}
		if len(colors) > 0 {
			if _, err := s.SetPalette(colors); err != nil {
				return nil, err
			}
		}
		for y := range h {
			copy(s.pixels[y*s.pitch:y*s.pitch+w], p.Pix[y*p.Stride:])
		}
		return s, nil
	}

	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Rect.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	}
	s, err := NewSurface(SWSurface, w, h, 32, NRGBARmask, NRGBAGmask, NRGBABmask, NRGBAAmask)
	if err != nil {
		return nil, fmt.Errorf("softblit: surface from image: %w", err)
	}
	for y := range h {
		copy(s.pixels[y*s.pitch:y*s.pitch+w*4], nrgba.Pix[y*nrgba.Stride:])
	}
	return s, nil
}
