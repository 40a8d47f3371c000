package softblit

import (
	"errors"
	"sync/atomic"
)

// Errors returned by softblit. Wrapped errors carry more context; test with
// errors.Is.
var (
	// ErrInvalidDepth is returned for a bit depth outside 1..32.
	ErrInvalidDepth = errors.New("softblit: invalid bit depth")

	// ErrInvalidMask is returned for a channel mask that is not a single
	// run of at most 8 bits.
	ErrInvalidMask = errors.New("softblit: invalid channel mask")

	// ErrInvalidDimensions is returned for negative widths or heights.
	ErrInvalidDimensions = errors.New("softblit: invalid dimensions")

	// ErrTooLarge is returned when width >= 16384 or height >= 65536.
	ErrTooLarge = errors.New("softblit: width or height is too large")

	// ErrBufferTooSmall is returned when a caller-supplied pixel buffer
	// cannot hold pitch*height bytes.
	ErrBufferTooSmall = errors.New("softblit: pixel buffer too small")

	// ErrSurfaceLocked is returned when blitting to or from a locked surface.
	ErrSurfaceLocked = errors.New("softblit: surfaces must not be locked during blit")

	// ErrNilSurface is returned when a nil or freed surface is passed.
	ErrNilSurface = errors.New("softblit: nil or freed surface")

	// ErrUnsupportedBlit is returned when no blitter handles the combination
	// of formats, colour key and alpha.
	ErrUnsupportedBlit = errors.New("softblit: blit combination not supported")

	// ErrEmptyPalette is returned when converting to a format whose palette
	// is entirely black.
	ErrEmptyPalette = errors.New("softblit: empty destination palette")

	// ErrNoPalette is returned for palette operations on a packed format.
	ErrNoPalette = errors.New("softblit: surface has no palette")

	// ErrPaletteRange is returned when the first colour index is outside
	// the palette.
	ErrPaletteRange = errors.New("softblit: palette index out of range")

	// ErrUnsupportedFill is returned by FillRect for depths it cannot fill.
	ErrUnsupportedFill = errors.New("softblit: fill rect on unsupported surface format")

	// ErrInvalidRect is returned by LowerBlit for rectangles that do not fit
	// inside their surfaces.
	ErrInvalidRect = errors.New("softblit: rectangle outside surface")

	// ErrUnsupportedAlphaMask is returned by SetAlphaChannel for surfaces
	// whose alpha is not a whole byte at either end of a 32-bit pixel.
	ErrUnsupportedAlphaMask = errors.New("softblit: unsupported surface alpha mask format")

	// ErrOutOfMemory is returned when a buffer size overflows.
	ErrOutOfMemory = errors.New("softblit: out of memory")

	// ErrNoDevice is returned by operations that need an active video device
	// or video surface.
	ErrNoDevice = errors.New("softblit: no video mode has been set")

	// ErrFallbackToSoftware is returned by a VideoDevice to decline an
	// operation. The caller transparently runs the software path instead.
	ErrFallbackToSoftware = errors.New("softblit: falling back to software")
)

// lastError holds the most recent error reported by an exported operation.
var lastError atomic.Pointer[error]

// setError records err as the last error and returns it unchanged.
func setError(err error) error {
	if err != nil {
		lastError.Store(&err)
	}
	return err
}

// GetError returns the message of the most recent error reported by any
// softblit operation, or "" if none occurred since the last ClearError.
func GetError() string {
	if p := lastError.Load(); p != nil {
		return (*p).Error()
	}
	return ""
}

// ClearError forgets the last error.
func ClearError() {
	lastError.Store(nil)
}
