package softblit

import (
	"fmt"
	"sync"

	"github.com/gogpu/softblit/internal/gamma"
)

// VideoInfo describes what a video device can accelerate.
type VideoInfo struct {
	// HWAvailable reports that hardware surfaces can be created.
	HWAvailable bool

	// BlitHW: hardware to hardware blits are accelerated.
	BlitHW bool
	// BlitHWColorKey: colour-keyed hardware to hardware blits are accelerated.
	BlitHWColorKey bool
	// BlitHWAlpha: alpha hardware to hardware blits are accelerated.
	BlitHWAlpha bool

	// BlitSW: software to hardware blits are accelerated.
	BlitSW bool
	// BlitSWColorKey: colour-keyed software to hardware blits are accelerated.
	BlitSWColorKey bool
	// BlitSWAlpha: alpha software to hardware blits are accelerated.
	BlitSWAlpha bool

	// BlitFill: rectangle fills are accelerated.
	BlitFill bool

	// VideoMem is the total video memory in kilobytes.
	VideoMem int

	// OffsetX and OffsetY locate the visible area inside the video
	// surface's hardware buffer. They are added to rectangles on the video
	// surface before they reach the device.
	OffsetX, OffsetY int
}

// VideoDevice is a platform backend that owns hardware-resident pixel
// buffers. softblit calls it; it never implements it.
//
// Any hook may return ErrFallbackToSoftware (or any other error) to decline;
// softblit then keeps the surface in system memory or runs the software
// blitter.
type VideoDevice interface {
	// Name returns the driver name, e.g. "dummy".
	Name() string

	// Init prepares the device. Called once by RegisterDevice.
	Init() error

	// Close releases device resources.
	Close()

	// Info reports the device capabilities.
	Info() VideoInfo

	// AllocHWSurface provides a hardware buffer for s, which already has
	// its format, size and pitch. The returned pixels must hold at least
	// Pitch()*H() bytes; hwdata is opaque to softblit.
	AllocHWSurface(s *Surface) (pixels []byte, hwdata any, err error)

	// LockHWSurface makes the pixels of a hardware surface accessible.
	LockHWSurface(s *Surface) error

	// UnlockHWSurface ends direct access begun with LockHWSurface.
	UnlockHWSurface(s *Surface)

	// FreeHWSurface releases the hardware buffer of s.
	FreeHWSurface(s *Surface)

	// CheckHWBlit reports whether the device will blit src onto dst.
	CheckHWBlit(src, dst *Surface) bool

	// BlitHW copies srcRect of src to dstRect of dst. Rectangles are
	// clipped and offset already.
	BlitHW(src *Surface, srcRect Rect, dst *Surface, dstRect Rect) error

	// FillHWRect fills rect of dst with a pixel value.
	FillHWRect(dst *Surface, rect Rect, color uint32) error
}

// ColorKeySetter is implemented by devices that keep colour keys in
// hardware. A failure drops hardware acceleration for the surface.
type ColorKeySetter interface {
	SetHWColorKey(s *Surface, key uint32) error
}

// AlphaSetter is implemented by devices that keep per-surface alpha in
// hardware. A failure drops hardware acceleration for the surface.
type AlphaSetter interface {
	SetHWAlpha(s *Surface, alpha uint8) error
}

// PaletteSetter is implemented by devices with a physical palette. It is
// called when the colours of the public surface change.
type PaletteSetter interface {
	SetHWColors(first int, colors []Color) error
}

// GammaRampSetter is implemented by devices with hardware gamma tables.
type GammaRampSetter interface {
	SetGammaRamp(r, g, b *GammaRamp) error
}

// video is the process-wide video state.
var (
	videoMu sync.RWMutex
	video   struct {
		dev    VideoDevice
		screen *Surface // the video surface
		shadow *Surface // the shadow surface, if any
		ramp   [3]gamma.Ramp
		gamma  bool // ramp has been set
	}
)

// RegisterDevice makes dev the active video device. Init is called first;
// on failure nothing changes. A previously registered device is closed.
func RegisterDevice(dev VideoDevice) error {
	if dev == nil {
		return setError(fmt.Errorf("%w: nil device", ErrNoDevice))
	}
	if err := dev.Init(); err != nil {
		return setError(fmt.Errorf("softblit: init %s: %w", dev.Name(), err))
	}
	propagateLogger(dev, Logger())

	videoMu.Lock()
	old := video.dev
	video.dev = dev
	video.screen = nil
	video.shadow = nil
	video.gamma = false
	videoMu.Unlock()

	if old != nil && old != dev {
		old.Close()
	}
	Logger().Info("video device registered", "driver", dev.Name())
	return nil
}

// UnregisterDevice closes and removes the active device. The video and
// shadow surfaces lose their singleton status and may be freed.
func UnregisterDevice() {
	videoMu.Lock()
	dev := video.dev
	video.dev = nil
	video.screen = nil
	video.shadow = nil
	video.gamma = false
	videoMu.Unlock()

	if dev != nil {
		dev.Close()
		Logger().Info("video device closed", "driver", dev.Name())
	}
}

// CurrentDevice returns the active device or nil.
func CurrentDevice() VideoDevice {
	videoMu.RLock()
	defer videoMu.RUnlock()
	return video.dev
}

// SetVideoSurfaces designates the video surface and the optional shadow
// surface. The public surface is the shadow surface when there is one.
// Both are exempt from Free while a device is registered.
func SetVideoSurfaces(screen, shadow *Surface) error {
	videoMu.Lock()
	defer videoMu.Unlock()
	if video.dev == nil {
		return setError(ErrNoDevice)
	}
	video.screen = screen
	video.shadow = shadow
	return nil
}

// VideoSurface returns the video surface, or nil.
func VideoSurface() *Surface {
	videoMu.RLock()
	defer videoMu.RUnlock()
	return video.screen
}

// PublicSurface returns the surface applications draw to: the shadow
// surface if one is set, otherwise the video surface.
func PublicSurface() *Surface {
	videoMu.RLock()
	defer videoMu.RUnlock()
	if video.shadow != nil {
		return video.shadow
	}
	return video.screen
}

// GetVideoInfo returns the capabilities of the active device, or a zero
// VideoInfo without one.
func GetVideoInfo() VideoInfo {
	if dev := CurrentDevice(); dev != nil {
		return dev.Info()
	}
	return VideoInfo{}
}

// isSingleton reports whether s is the video or shadow surface of an
// active device.
func isSingleton(s *Surface) bool {
	videoMu.RLock()
	defer videoMu.RUnlock()
	return video.dev != nil && (s == video.screen || s == video.shadow)
}

// isVideoSurface reports whether s is the video surface.
func isVideoSurface(s *Surface) bool {
	videoMu.RLock()
	defer videoMu.RUnlock()
	return video.dev != nil && s == video.screen
}

// videoOffset shifts r by the device offset when s is the video surface.
func videoOffset(s *Surface, r Rect, info VideoInfo) Rect {
	if isVideoSurface(s) {
		r.X += info.OffsetX
		r.Y += info.OffsetY
	}
	return r
}
