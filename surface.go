package softblit

import (
	"fmt"
	"math"

	"github.com/gogpu/softblit/internal/pixel"
)

// SurfaceFlags control how a surface is stored and blitted.
type SurfaceFlags uint32

// Surface flags.
const (
	// SWSurface requests a surface in system memory.
	SWSurface SurfaceFlags = 0x00000000
	// HWSurface requests, or reports, a surface in video memory.
	HWSurface SurfaceFlags = 0x00000001
	// AsyncBlit marks a surface the device may blit asynchronously.
	AsyncBlit SurfaceFlags = 0x00000004
	// HWAccel reports that blits from the surface run on the device.
	HWAccel SurfaceFlags = 0x00000100
	// SrcColorKey enables colour-keyed blits.
	SrcColorKey SurfaceFlags = 0x00001000
	// RLEAccelOK allows the surface to be run-length encoded.
	RLEAccelOK SurfaceFlags = 0x00002000
	// RLEAccel reports that the surface is run-length encoded.
	RLEAccel SurfaceFlags = 0x00004000
	// SrcAlpha enables alpha blending.
	SrcAlpha SurfaceFlags = 0x00010000
	// PreAlloc reports that the pixel buffer belongs to the caller.
	PreAlloc SurfaceFlags = 0x01000000
)

// Surface size limits. Widths and heights must be strictly less.
const (
	MaxWidth  = 16384
	MaxHeight = 65536
)

// lockState tracks recursive locks. The byte offset is applied to the
// pixel view on the 0 to 1 transition and removed on 1 to 0.
type lockState struct {
	depth         int
	offsetApplied bool
}

// Surface is a rectangle of pixels in a given format.
//
// Surfaces are reference counted: NewSurface returns a surface with one
// reference, Ref adds one and Free drops one.
type Surface struct {
	id     uint64
	flags  SurfaceFlags
	format *PixelFormat
	w, h   int
	pitch  int
	pixels []byte
	offset int
	hwdata any
	clip   Rect
	lock   lockState
	refs   int

	formatVersion uint32
	bmap          *blitMap
	rle           *rleData
	freed         bool
}

// NewSurface allocates a surface of w x h pixels at the given depth.
//
// HWSurface in flags asks for video memory. It is honoured only when the
// public surface is itself a hardware surface; a requested colour key or
// alpha adds it, and it is dropped again if the device cannot accelerate
// that kind of blit. A hardware surface takes the public surface's format.
// A non-zero amask enables SrcAlpha.
func NewSurface(flags SurfaceFlags, w, h, depth int, rmask, gmask, bmask, amask uint32) (*Surface, error) {
	s, err := newSurface(flags, w, h, depth, rmask, gmask, bmask, amask)
	if err != nil {
		return nil, setError(err)
	}
	return s, nil
}

func newSurface(flags SurfaceFlags, w, h, depth int, rmask, gmask, bmask, amask uint32) (*Surface, error) {
	if err := checkSize(w, h); err != nil {
		return nil, err
	}

	dev := CurrentDevice()
	var screen *Surface
	if dev != nil {
		screen = PublicSurface()
	}
	if screen != nil && screen.flags&HWSurface != 0 {
		info := dev.Info()
		if flags&(SrcColorKey|SrcAlpha) != 0 {
			flags |= HWSurface
		}
		if flags&SrcColorKey != 0 && !info.BlitHWColorKey {
			flags &^= HWSurface
		}
		if flags&SrcAlpha != 0 && !info.BlitHWAlpha {
			flags &^= HWSurface
		}
	} else {
		flags &^= HWSurface
	}

	if flags&HWSurface != 0 {
		sf := screen.format
		depth = int(sf.BitsPerPixel)
		rmask, gmask, bmask, amask = sf.Rmask, sf.Gmask, sf.Bmask, sf.Amask
	}

	format, err := NewPixelFormat(depth, rmask, gmask, bmask, amask)
	if err != nil {
		return nil, err
	}

	s := &Surface{
		id:     nextSurfaceID(),
		flags:  SWSurface,
		format: format,
		w:      w,
		h:      h,
		bmap:   newBlitMap(),
	}
	if format.Amask != 0 {
		s.flags |= SrcAlpha
	}
	s.pitch = calculatePitch(format, w)
	if uint64(s.pitch)*uint64(h) > math.MaxInt {
		return nil, fmt.Errorf("%w: %dx%d surface", ErrOutOfMemory, w, h)
	}
	s.SetClipRect(nil)
	formatChanged(s)

	if flags&HWSurface != 0 {
		s.allocHW(dev)
	}
	if s.flags&HWSurface == 0 && w > 0 && h > 0 {
		s.pixels = make([]byte, s.pitch*h)
	}
	s.refs = 1
	return s, nil
}

// allocHW asks the device for video memory, leaving s in system memory if
// it declines.
func (s *Surface) allocHW(dev VideoDevice) {
	pixels, hwdata, err := dev.AllocHWSurface(s)
	if err == nil && len(pixels) < s.pitch*s.h {
		s.hwdata = hwdata
		dev.FreeHWSurface(s)
		s.hwdata = nil
		err = fmt.Errorf("%w: device returned %d bytes", ErrBufferTooSmall, len(pixels))
	}
	if err != nil {
		Logger().Warn("hardware surface unavailable, using system memory",
			"w", s.w, "h", s.h, "err", err)
		return
	}
	s.pixels = pixels
	s.hwdata = hwdata
	s.flags |= HWSurface
}

func checkSize(w, h int) error {
	if w < 0 || h < 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, w, h)
	}
	if w >= MaxWidth || h >= MaxHeight {
		return fmt.Errorf("%w: %dx%d", ErrTooLarge, w, h)
	}
	return nil
}

// NewSurfaceFrom wraps a caller-owned pixel buffer. The buffer must hold
// pitch*h bytes and is never released by the surface.
func NewSurfaceFrom(pixels []byte, w, h, depth, pitch int, rmask, gmask, bmask, amask uint32) (*Surface, error) {
	if err := checkSize(w, h); err != nil {
		return nil, setError(err)
	}
	s, err := newSurface(SWSurface, 0, 0, depth, rmask, gmask, bmask, amask)
	if err != nil {
		return nil, setError(err)
	}
	if pitch < minRowBytes(s.format, w) {
		return nil, setError(fmt.Errorf("%w: pitch %d for width %d", ErrBufferTooSmall, pitch, w))
	}
	if len(pixels) < pitch*h {
		return nil, setError(fmt.Errorf("%w: %d bytes, need %d", ErrBufferTooSmall, len(pixels), pitch*h))
	}
	s.flags |= PreAlloc
	s.pixels = pixels
	s.w = w
	s.h = h
	s.pitch = pitch
	s.SetClipRect(nil)
	return s, nil
}

// NewVideoSurface wraps device memory as a hardware surface. Video devices
// use it to build the video surface; the pixels stay owned by the device
// and FreeHWSurface is called with hwdata when the surface is released.
func NewVideoSurface(pixels []byte, w, h, depth, pitch int, rmask, gmask, bmask, amask uint32, hwdata any) (*Surface, error) {
	s, err := NewSurfaceFrom(pixels, w, h, depth, pitch, rmask, gmask, bmask, amask)
	if err != nil {
		return nil, err
	}
	s.flags |= HWSurface
	s.hwdata = hwdata
	return s, nil
}

// minRowBytes returns the unaligned number of bytes a row of w pixels uses.
func minRowBytes(f *PixelFormat, w int) int {
	switch f.BitsPerPixel {
	case 1:
		return (w + 7) / 8
	case 4:
		return (w + 1) / 2
	}
	return w * int(f.BytesPerPixel)
}

// W returns the width in pixels.
func (s *Surface) W() int { return s.w }

// H returns the height in pixels.
func (s *Surface) H() int { return s.h }

// Pitch returns the length of a row in bytes.
func (s *Surface) Pitch() int { return s.pitch }

// Format returns the pixel format. It is owned by the surface.
func (s *Surface) Format() *PixelFormat { return s.format }

// Flags returns the surface flags.
func (s *Surface) Flags() SurfaceFlags { return s.flags }

// Rect returns the full surface rectangle.
func (s *Surface) Rect() Rect { return Rect{W: s.w, H: s.h} }

// Pixels returns the pixel buffer. While the surface is locked the view
// starts at the surface offset.
func (s *Surface) Pixels() []byte {
	if s.lock.offsetApplied {
		return s.pixels[s.offset:]
	}
	return s.pixels
}

// data is the view blitters and fills work on.
func (s *Surface) data() []byte {
	return s.pixels[s.offset:]
}

// Offset returns the byte offset applied to the pixel view while locked.
func (s *Surface) Offset() int { return s.offset }

// SetOffset sets the byte offset applied while the surface is locked.
// Devices use it to address the visible part of a larger buffer.
func (s *Surface) SetOffset(off int) error {
	if s.lock.depth > 0 {
		return setError(ErrSurfaceLocked)
	}
	if off < 0 || off+s.pitch*s.h > len(s.pixels) {
		return setError(fmt.Errorf("%w: offset %d", ErrInvalidRect, off))
	}
	s.offset = off
	return nil
}

// HWData returns the device handle attached to a hardware surface.
func (s *Surface) HWData() any { return s.hwdata }

// RefCount returns the number of references.
func (s *Surface) RefCount() int { return s.refs }

// Ref adds a reference; each Ref needs a matching Free.
func (s *Surface) Ref() *Surface {
	s.refs++
	return s
}

// Locked reports whether the surface is locked.
func (s *Surface) Locked() bool { return s.lock.depth > 0 }

// MustLock reports whether the surface must be locked before its pixels
// are accessed directly.
func (s *Surface) MustLock() bool {
	return s.offset != 0 || s.flags&(HWSurface|AsyncBlit|RLEAccel) != 0
}

// FormatVersion returns the version stamped on the surface by the last
// change of its format or palette.
func (s *Surface) FormatVersion() uint32 { return s.formatVersion }

// ClipRect returns the clipping rectangle blits into s are confined to.
func (s *Surface) ClipRect() Rect { return s.clip }

// SetClipRect sets the clipping rectangle to r intersected with the
// surface. A nil r clips to the whole surface. It reports whether the
// resulting rectangle is non-empty.
func (s *Surface) SetClipRect(r *Rect) bool {
	full := s.Rect()
	if r == nil {
		s.clip = full
		return true
	}
	return intersectRect(*r, full, &s.clip)
}

// PixelAt returns the raw pixel value at (x, y), or 0 outside the surface.
func (s *Surface) PixelAt(x, y int) uint32 {
	if x < 0 || y < 0 || x >= s.w || y >= s.h || s.pixels == nil {
		return 0
	}
	return pixel.LoadAt(s.data()[y*s.pitch:], x, int(s.format.BitsPerPixel))
}

// SetPixelAt stores a raw pixel value at (x, y). Writes outside the
// surface are ignored. Callers must lock surfaces for which MustLock is
// true.
func (s *Surface) SetPixelAt(x, y int, v uint32) {
	if x < 0 || y < 0 || x >= s.w || y >= s.h || s.pixels == nil {
		return
	}
	pixel.StoreAt(s.data()[y*s.pitch:], x, int(s.format.BitsPerPixel), v)
}

// Lock prepares the pixels for direct access. Locks nest; only the first
// one locks a hardware surface and decodes an RLE surface.
func (s *Surface) Lock() error {
	if s.freed {
		return setError(ErrNilSurface)
	}
	if s.lock.depth == 0 {
		if s.flags&(HWSurface|AsyncBlit) != 0 {
			if dev := CurrentDevice(); dev != nil {
				if err := dev.LockHWSurface(s); err != nil {
					return setError(fmt.Errorf("softblit: lock surface: %w", err))
				}
			}
		}
		if s.flags&RLEAccel != 0 {
			s.unRLE()
			// Remember to encode again on the last unlock.
			s.flags |= RLEAccel
		}
		s.lock.offsetApplied = true
	}
	s.lock.depth++
	return nil
}

// Unlock releases one lock. The last unlock releases a hardware surface or
// re-encodes an RLE surface from the (possibly modified) pixels.
func (s *Surface) Unlock() {
	if s.lock.depth == 0 {
		return
	}
	s.lock.depth--
	if s.lock.depth > 0 {
		return
	}
	s.lock.offsetApplied = false

	if s.flags&(HWSurface|AsyncBlit) != 0 {
		if dev := CurrentDevice(); dev != nil {
			dev.UnlockHWSurface(s)
		}
	} else if s.flags&RLEAccel != 0 {
		s.flags &^= RLEAccel
		if err := s.encodeRLE(); err != nil {
			Logger().Debug("rle re-encode failed", "err", err)
		}
	}
}

// SetColorKey enables (flag has SrcColorKey) or disables the colour key.
// Adding RLEAccel or RLEAccelOK to flag allows run-length encoding.
// Setting the same flag and key again does nothing.
func (s *Surface) SetColorKey(flag SurfaceFlags, key uint32) error {
	if s == nil || s.freed {
		return setError(ErrNilSurface)
	}
	s.setColorKey(flag, key)
	return nil
}

func (s *Surface) setColorKey(flag SurfaceFlags, key uint32) {
	if flag&SrcColorKey != 0 {
		if flag&(RLEAccel|RLEAccelOK) != 0 {
			flag = SrcColorKey | RLEAccelOK
		} else {
			flag = SrcColorKey
		}
	} else {
		flag = 0
	}

	if flag == s.flags&(SrcColorKey|RLEAccelOK) && key == s.format.Colorkey {
		return
	}

	if s.flags&RLEAccel != 0 {
		s.unRLE()
	}

	if flag != 0 {
		s.flags |= SrcColorKey
		s.format.Colorkey = key
		if s.flags&HWAccel != 0 {
			if !setHWColorKey(s, key) {
				s.flags &^= HWAccel
			}
		}
		if flag&RLEAccelOK != 0 {
			s.flags |= RLEAccelOK
		} else {
			s.flags &^= RLEAccelOK
		}
	} else {
		s.flags &^= SrcColorKey | RLEAccelOK
		s.format.Colorkey = 0
	}
	s.bmap.invalidate()
}

func setHWColorKey(s *Surface, key uint32) bool {
	ks, ok := CurrentDevice().(ColorKeySetter)
	if !ok {
		return false
	}
	if err := ks.SetHWColorKey(s, key); err != nil {
		Logger().Warn("hardware colour key rejected", "err", err)
		return false
	}
	return true
}

// SetAlpha enables (flag has SrcAlpha) or disables alpha blending with the
// given per-surface alpha. Adding RLEAccel or RLEAccelOK to flag allows
// run-length encoding. Disabling resets the alpha to 255.
//
// Changing only the alpha value keeps the blit map unless the old or the
// new value is 255: the choice of blitter depends on opacity, not on the
// weight.
func (s *Surface) SetAlpha(flag SurfaceFlags, value uint8) error {
	if s == nil || s.freed {
		return setError(ErrNilSurface)
	}
	s.setAlpha(flag, value)
	return nil
}

func (s *Surface) setAlpha(flag SurfaceFlags, value uint8) {
	oldFlags := s.flags
	oldAlpha := uint32(s.format.Alpha)

	if flag&SrcAlpha != 0 {
		if flag&(RLEAccel|RLEAccelOK) != 0 {
			flag = SrcAlpha | RLEAccelOK
		} else {
			flag = SrcAlpha
		}
	} else {
		flag = 0
	}

	if flag == s.flags&(SrcAlpha|RLEAccelOK) && (flag == 0 || uint32(value) == oldAlpha) {
		return
	}

	if flag&RLEAccelOK == 0 && s.flags&RLEAccel != 0 {
		s.unRLE()
	}

	if flag != 0 {
		s.flags |= SrcAlpha
		s.format.Alpha = value
		if s.flags&HWAccel != 0 {
			if !setHWAlpha(s, value) {
				s.flags &^= HWAccel
			}
		}
		if flag&RLEAccelOK != 0 {
			s.flags |= RLEAccelOK
		} else {
			s.flags &^= RLEAccelOK
		}
	} else {
		s.flags &^= SrcAlpha
		s.format.Alpha = 255
	}

	if s.flags&HWAccel != 0 || oldFlags != s.flags ||
		((oldAlpha+1)^(uint32(value)+1))&0x100 != 0 {
		s.bmap.invalidate()
	}
}

func setHWAlpha(s *Surface, alpha uint8) bool {
	as, ok := CurrentDevice().(AlphaSetter)
	if !ok {
		return false
	}
	if err := as.SetHWAlpha(s, alpha); err != nil {
		Logger().Warn("hardware alpha rejected", "err", err)
		return false
	}
	return true
}

// SetAlphaChannel sets the alpha byte of every pixel of a 32-bit surface
// whose alpha mask is 0xFF000000 or 0x000000FF.
func (s *Surface) SetAlphaChannel(value uint8) error {
	var offset int
	if s.format.BytesPerPixel != 4 {
		return setError(fmt.Errorf("%w: %d bytes per pixel", ErrUnsupportedAlphaMask, s.format.BytesPerPixel))
	}
	switch s.format.Amask {
	case 0xFF000000:
		offset = 3
	case 0x000000FF:
		offset = 0
	default:
		return setError(fmt.Errorf("%w: %#08x", ErrUnsupportedAlphaMask, s.format.Amask))
	}
	if s.MustLock() {
		if err := s.Lock(); err != nil {
			return err
		}
		defer s.Unlock()
	}
	buf := s.data()
	for y := range s.h {
		row := buf[y*s.pitch:]
		for x := range s.w {
			row[x*4+offset] = value
		}
	}
	return nil
}

// SetColors copies colors into the palette starting at index first and
// reports whether all of them fit. Every blit map involving s is
// invalidated. When s is the public surface the device palette is updated
// too.
func (s *Surface) SetColors(colors []Color, first int) (bool, error) {
	pal := s.format.Palette
	if pal == nil {
		return false, setError(ErrNoPalette)
	}
	if first < 0 || first >= pal.Len() {
		return false, setError(fmt.Errorf("%w: first %d of %d", ErrPaletteRange, first, pal.Len()))
	}
	all := pal.SetColors(colors, first)
	n := min(len(colors), pal.Len()-first)

	videoMu.RLock()
	dev, screen, shadow := video.dev, video.screen, video.shadow
	videoMu.RUnlock()

	if dev != nil && s == shadow && screen != nil && screen.format.Palette != nil {
		screen.format.Palette.SetColors(colors[:n], first)
		formatChanged(screen)
	}
	formatChanged(s)

	public := shadow
	if public == nil {
		public = screen
	}
	if dev != nil && s == public {
		if ps, ok := dev.(PaletteSetter); ok {
			if err := ps.SetHWColors(first, colors[:n]); err != nil {
				Logger().Warn("device palette update failed", "err", err)
			}
		}
	}
	return all, nil
}

// SetPalette replaces the palette from index 0.
func (s *Surface) SetPalette(colors []Color) (bool, error) {
	return s.SetColors(colors, 0)
}

// Reformat replaces the pixel format. Blit maps targeting s become stale.
// The pixel contents are kept as raw bytes; an owned buffer grows if the
// new format needs more room.
func (s *Surface) Reformat(bpp int, rmask, gmask, bmask, amask uint32) error {
	if s.lock.depth > 0 {
		return setError(ErrSurfaceLocked)
	}
	f, err := NewPixelFormat(bpp, rmask, gmask, bmask, amask)
	if err != nil {
		return setError(err)
	}
	pitch := calculatePitch(f, s.w)
	need := pitch * s.h
	if need > len(s.pixels)-s.offset {
		if s.flags&(PreAlloc|HWSurface) != 0 {
			return setError(fmt.Errorf("%w: %d bytes, need %d", ErrBufferTooSmall, len(s.pixels), need))
		}
		grown := make([]byte, need)
		copy(grown, s.data())
		s.pixels = grown
		s.offset = 0
	}

	if s.flags&RLEAccel != 0 {
		s.unRLE()
	}
	formatChanged(s)
	s.format = f
	s.pitch = pitch
	return nil
}

// Free drops a reference. The last one releases the surface: pending
// locks are drained, hardware memory is returned to the device and the
// pixel buffer is dropped. The video and shadow surfaces are never freed
// while a device is registered.
func (s *Surface) Free() {
	if s == nil || s.freed || isSingleton(s) {
		return
	}
	s.refs--
	if s.refs > 0 {
		return
	}
	for s.lock.depth > 0 {
		s.Unlock()
	}
	if s.flags&RLEAccel != 0 {
		s.unRLE()
	}
	s.bmap.invalidate()
	if s.hwdata != nil {
		if dev := CurrentDevice(); dev != nil {
			dev.FreeHWSurface(s)
		}
		s.hwdata = nil
	}
	s.pixels = nil
	s.freed = true
}

// Freed reports whether the last reference has been dropped.
func (s *Surface) Freed() bool { return s.freed }
