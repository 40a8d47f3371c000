package softblit

import "fmt"

// ConvertSurface returns a new surface in format with the pixels of s.
//
// The destination palette, if any, is copied; an all-black palette is
// rejected. A colour key on s is carried over remapped to the new format,
// unless flags does not ask for SrcColorKey and format has an alpha
// channel, in which case the key is left out. Per-surface alpha is carried
// over too, or folded into the alpha channel of an alpha format, leaving
// the converted surface with SrcAlpha and an opaque surface alpha. s keeps
// its own colour key and alpha.
func ConvertSurface(s *Surface, format *PixelFormat, flags SurfaceFlags) (*Surface, error) {
	if s == nil || s.freed {
		return nil, setError(ErrNilSurface)
	}
	if format.Palette != nil && format.Palette.allBlack() {
		return nil, setError(ErrEmptyPalette)
	}

	if format.Amask != 0 && flags&HWSurface != 0 && !GetVideoInfo().BlitHWAlpha {
		flags &^= HWSurface
	}

	conv, err := newSurface(flags, s.w, s.h, int(format.BitsPerPixel),
		format.Rmask, format.Gmask, format.Bmask, format.Amask)
	if err != nil {
		return nil, setError(err)
	}

	if format.Palette != nil && conv.format.Palette != nil {
		conv.format.Palette = format.Palette.clone()
	}

	// Save the colour key and alpha of s and switch them off for the copy.
	var colorkey uint32
	alpha := uint8(255)
	saved := s.flags
	if saved&SrcColorKey != 0 {
		if flags&SrcColorKey == 0 && format.Amask != 0 {
			saved &^= SrcColorKey
		} else {
			colorkey = s.format.Colorkey
			s.setColorKey(0, 0)
		}
	}
	if saved&SrcAlpha != 0 {
		if format.Amask != 0 {
			s.flags &^= SrcAlpha
			s.bmap.invalidate()
		} else {
			alpha = s.format.Alpha
			s.setAlpha(0, 0)
		}
	}

	blitErr := LowerBlit(s, s.Rect(), conv, s.Rect())

	conv.SetClipRect(&s.clip)
	if saved&SrcColorKey != 0 {
		cflags := saved & (SrcColorKey | RLEAccelOK)
		r, g, b := s.format.GetRGB(colorkey)
		conv.setColorKey(cflags|flags&RLEAccelOK, conv.format.MapRGB(r, g, b))
		s.setColorKey(cflags, colorkey)
	}
	if saved&SrcAlpha != 0 {
		aflags := saved & (SrcAlpha | RLEAccelOK)
		conv.setAlpha(aflags|flags&RLEAccelOK, alpha)
		if format.Amask != 0 {
			s.flags |= SrcAlpha
			s.bmap.invalidate()
		} else {
			s.setAlpha(aflags, alpha)
		}
	}

	if blitErr != nil {
		conv.Free()
		return nil, setError(fmt.Errorf("softblit: convert: %w", blitErr))
	}
	return conv, nil
}

// Convert is ConvertSurface as a method.
func (s *Surface) Convert(format *PixelFormat, flags SurfaceFlags) (*Surface, error) {
	return ConvertSurface(s, format, flags)
}

// DisplayFormat converts s to the format of the public surface, in video
// memory when the device accelerates hardware blits.
func DisplayFormat(s *Surface) (*Surface, error) {
	public := PublicSurface()
	if public == nil {
		return nil, setError(ErrNoDevice)
	}
	flags := SWSurface
	if public.flags&HWSurface != 0 && GetVideoInfo().BlitHW {
		flags = HWSurface
	}
	flags |= s.flags & (SrcColorKey | SrcAlpha | RLEAccelOK)
	return ConvertSurface(s, public.format, flags)
}

// DisplayFormatAlpha converts s to a 32-bit format with an alpha channel
// suited to blitting onto the public surface: ARGB8888, or ABGR8888 when
// the public surface stores red in the low bits.
func DisplayFormatAlpha(s *Surface) (*Surface, error) {
	public := PublicSurface()
	if public == nil {
		return nil, setError(ErrNoDevice)
	}
	amask := uint32(0xFF000000)
	rmask := uint32(0x00FF0000)
	gmask := uint32(0x0000FF00)
	bmask := uint32(0x000000FF)

	vf := public.format
	switch vf.BytesPerPixel {
	case 2:
		if vf.Rmask == 0x1F && (vf.Bmask == 0xF800 || vf.Bmask == 0x7C00) {
			rmask, bmask = 0xFF, 0xFF0000
		}
	case 3, 4:
		if vf.Rmask == 0xFF && vf.Bmask == 0xFF0000 {
			rmask, bmask = 0xFF, 0xFF0000
		}
	}

	format, err := NewPixelFormat(32, rmask, gmask, bmask, amask)
	if err != nil {
		return nil, setError(err)
	}
	flags := public.flags & HWSurface
	flags |= s.flags & (SrcAlpha | RLEAccelOK)
	return ConvertSurface(s, format, flags)
}
