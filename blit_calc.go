package softblit

import "fmt"

// BlitKind identifies the routine a blit map runs.
type BlitKind uint8

// Blit kinds.
const (
	// BlitNone: the map is stale or no routine fits.
	BlitNone BlitKind = iota
	// BlitCopy copies rows verbatim.
	BlitCopy
	// BlitCopyOverlap copies rows verbatim within one surface, ordering
	// rows and pixels so that unread source pixels are never overwritten.
	BlitCopyOverlap
	// BlitGeneric converts every pixel between formats.
	BlitGeneric
	// BlitGenericKey converts pixels, skipping the colour key.
	BlitGenericKey
	// BlitGenericAlpha converts pixels with alpha blending.
	BlitGenericAlpha
	// BlitGenericKeyAlpha converts pixels with alpha blending, skipping the
	// colour key.
	BlitGenericKeyAlpha
	// BlitRLE blits the runs of a colour-keyed RLE surface.
	BlitRLE
	// BlitRLEAlpha blits the runs of a per-pixel alpha RLE surface.
	BlitRLEAlpha
	// BlitHardware: the device performs the blit.
	BlitHardware
)

var blitKindNames = [...]string{
	BlitNone:            "none",
	BlitCopy:            "copy",
	BlitCopyOverlap:     "copy-overlap",
	BlitGeneric:         "generic",
	BlitGenericKey:      "generic-key",
	BlitGenericAlpha:    "generic-alpha",
	BlitGenericKeyAlpha: "generic-key-alpha",
	BlitRLE:             "rle",
	BlitRLEAlpha:        "rle-alpha",
	BlitHardware:        "hardware",
}

func (k BlitKind) String() string {
	if int(k) < len(blitKindNames) {
		return blitKindNames[k]
	}
	return fmt.Sprintf("BlitKind(%d)", uint8(k))
}

// Blit selector bits.
const (
	selKey   = 1
	selAlpha = 2
)

// blitSelector combines the colour key and alpha state of s: bit 0 for a
// colour key, bit 1 when alpha blending has any effect.
func blitSelector(s *Surface) int {
	sel := 0
	if s.flags&SrcColorKey != 0 {
		sel |= selKey
	}
	if s.flags&SrcAlpha != 0 && (s.format.Alpha != 255 || s.format.Amask != 0) {
		sel |= selAlpha
	}
	return sel
}

var genericKinds = [4]BlitKind{BlitGeneric, BlitGenericKey, BlitGenericAlpha, BlitGenericKeyAlpha}

// genericKind picks the converting blitter for a source and destination
// format, or BlitNone if the pair is unsupported.
func genericKind(sf, df *PixelFormat, sel int) BlitKind {
	if df.BitsPerPixel < 8 {
		return BlitNone
	}
	if sf.BitsPerPixel < 8 && sf.BitsPerPixel != 1 && sf.BitsPerPixel != 4 {
		return BlitNone
	}
	if sel&selAlpha != 0 && sf.BytesPerPixel == 1 && df.BytesPerPixel < 2 {
		return BlitNone
	}
	return genericKinds[sel]
}

// calculateBlit chooses the blitter for the freshly validated map of src.
func calculateBlit(src, dst *Surface) error {
	m := src.bmap
	if src.flags&RLEAccel != 0 {
		src.unRLE()
	}
	m.kind = BlitNone
	m.rle = BlitNone

	src.flags &^= HWAccel
	if m.identity && hwBlitAllowed(src, dst) {
		src.flags |= HWAccel
	}

	sf, df := src.format, dst.format
	sel := blitSelector(src)

	var kind BlitKind
	switch {
	case m.identity && sel == 0 && src == dst:
		kind = BlitCopyOverlap
	case m.identity && sel == 0:
		kind = BlitCopy
	default:
		kind = genericKind(sf, df, sel)
	}
	if kind == BlitNone {
		m.invalidate()
		return fmt.Errorf("%w: %v to %v, selector %d", ErrUnsupportedBlit, sf, df, sel)
	}
	m.kind = kind

	if src.flags&RLEAccelOK != 0 && src.flags&HWAccel == 0 {
		switch {
		case m.identity && (sel == selKey || sel == selKey|selAlpha && sf.Amask == 0):
			if src.encodeRLE() == nil {
				m.rle = BlitRLE
			}
		case sel == selAlpha && sf.Amask != 0 && sf.BytesPerPixel >= 2 && df.BytesPerPixel >= 2:
			if src.encodeRLE() == nil {
				m.rle = BlitRLEAlpha
			}
		}
	}

	Logger().Debug("blit map validated",
		"src", sf.String(), "dst", df.String(),
		"identity", m.identity, "table", len(m.table),
		"kind", kind.String(), "rle", m.rle.String(),
		"hwaccel", src.flags&HWAccel != 0)
	return nil
}

// hwBlitAllowed asks the device whether it takes over blits from src to dst.
func hwBlitAllowed(src, dst *Surface) bool {
	dev := CurrentDevice()
	if dev == nil || dst.flags&HWSurface == 0 {
		return false
	}
	info := dev.Info()
	var ok bool
	if src.flags&HWSurface != 0 {
		ok = info.BlitHW
		if ok && src.flags&SrcColorKey != 0 {
			ok = info.BlitHWColorKey
		}
		if ok && src.flags&SrcAlpha != 0 {
			ok = info.BlitHWAlpha
		}
	} else {
		ok = info.BlitSW
		if ok && src.flags&SrcColorKey != 0 {
			ok = info.BlitSWColorKey
		}
		if ok && src.flags&SrcAlpha != 0 {
			ok = info.BlitSWAlpha
		}
	}
	return ok && dev.CheckHWBlit(src, dst)
}

// BlitKind reports the routine the next blit from s to its last
// destination will use: BlitHardware when the device accelerates it,
// BlitNone if the map has been invalidated.
func (s *Surface) BlitKind() BlitKind {
	m := s.bmap
	switch {
	case m.formatVersion == staleVersion:
		return BlitNone
	case s.flags&HWAccel != 0:
		return BlitHardware
	case m.rle != BlitNone && s.rle != nil:
		return m.rle
	}
	return m.kind
}

// Identity reports whether the last validated blit map copies pixels
// without conversion.
func (s *Surface) Identity() bool {
	return s.bmap.identity
}
