package dummy

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"

	"github.com/gogpu/softblit"
	"github.com/gogpu/softblit/internal/pixel"
)

// Name is the driver name.
const Name = "dummy"

// HardwareEnv enables hardware emulation for the registered driver when it
// holds a true value ("1", "true").
const HardwareEnv = "SOFTBLIT_DUMMY_HW"

// ErrNotCurrent is returned by SetVideoMode on a device that is not the
// registered softblit device.
var ErrNotCurrent = errors.New("dummy: device is not registered")

func init() {
	softblit.RegisterDriver(Name, 10, func() (softblit.VideoDevice, error) {
		hw, _ := strconv.ParseBool(os.Getenv(HardwareEnv))
		return New(WithHardware(hw)), nil
	}, nil)
}

// buffer is the hwdata of every surface the device allocated.
type buffer struct {
	dev  *Device
	size int
}

// Stats counts the work done by a device.
type Stats struct {
	Allocs    int // hardware surfaces allocated, the video surface included
	Frees     int
	Locks     int
	Blits     int // blits performed by the device
	Fills     int // fills performed by the device
	Fallbacks int // blits and fills handed back to software
	MemUsed   int // bytes of video memory in use
}

// Device is the dummy video device. It is safe for concurrent use.
type Device struct {
	mu           sync.Mutex
	info         softblit.VideoInfo
	hw           bool
	customInfo   bool
	failColorKey bool
	logger       *slog.Logger

	screen  *softblit.Surface
	palette []softblit.Color
	ramps   [3]softblit.GammaRamp
	stats   Stats
}

// New creates a device. Without options it accelerates nothing.
func New(opts ...Option) *Device {
	d := &Device{logger: softblit.Logger()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Current returns the registered device if it is a dummy device.
func Current() *Device {
	d, _ := softblit.CurrentDevice().(*Device)
	return d
}

// Name implements softblit.VideoDevice.
func (d *Device) Name() string { return Name }

// Init implements softblit.VideoDevice.
func (d *Device) Init() error {
	d.log().Debug("dummy: init", "hardware", d.hw, "videomem", d.info.VideoMem)
	return nil
}

// Close implements softblit.VideoDevice. The video surface is dropped;
// surfaces still holding device buffers keep their memory.
func (d *Device) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.screen = nil
	d.stats.MemUsed = 0
}

// Info implements softblit.VideoDevice.
func (d *Device) Info() softblit.VideoInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.info
}

// SetLogger receives the softblit logger.
func (d *Device) SetLogger(l *slog.Logger) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.logger = l
}

func (d *Device) log() *slog.Logger {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.logger
}

// Stats returns a snapshot of the device counters.
func (d *Device) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// Palette returns the colours last written to the physical palette.
func (d *Device) Palette() []softblit.Color {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]softblit.Color(nil), d.palette...)
}

// GammaRamps returns the tables last written to the device.
func (d *Device) GammaRamps() (r, g, b softblit.GammaRamp) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ramps[0], d.ramps[1], d.ramps[2]
}

// reserve takes size bytes of video memory.
func (d *Device) reserve(size int) (*buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.hw {
		return nil, fmt.Errorf("%w: no hardware surfaces", softblit.ErrFallbackToSoftware)
	}
	if d.stats.MemUsed+size > d.info.VideoMem*1024 {
		return nil, fmt.Errorf("%w: out of video memory (%d of %d KB used)",
			softblit.ErrFallbackToSoftware, d.stats.MemUsed/1024, d.info.VideoMem)
	}
	d.stats.MemUsed += size
	d.stats.Allocs++
	return &buffer{dev: d, size: size}, nil
}

// AllocHWSurface implements softblit.VideoDevice.
func (d *Device) AllocHWSurface(s *softblit.Surface) ([]byte, any, error) {
	size := s.Pitch() * s.H()
	b, err := d.reserve(size)
	if err != nil {
		d.log().Debug("dummy: hardware surface refused", "w", s.W(), "h", s.H(), "err", err)
		return nil, nil, err
	}
	return make([]byte, size), b, nil
}

// LockHWSurface implements softblit.VideoDevice.
func (d *Device) LockHWSurface(*softblit.Surface) error {
	d.mu.Lock()
	d.stats.Locks++
	d.mu.Unlock()
	return nil
}

// UnlockHWSurface implements softblit.VideoDevice.
func (d *Device) UnlockHWSurface(*softblit.Surface) {}

// FreeHWSurface implements softblit.VideoDevice.
func (d *Device) FreeHWSurface(s *softblit.Surface) {
	b, ok := s.HWData().(*buffer)
	if !ok || b.dev != d {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stats.MemUsed = max(d.stats.MemUsed-b.size, 0)
	d.stats.Frees++
}

// owns reports whether s lives in this device's memory.
func (d *Device) owns(s *softblit.Surface) bool {
	b, ok := s.HWData().(*buffer)
	return ok && b.dev == d
}

// CheckHWBlit implements softblit.VideoDevice. The device copies whole
// bytes, so packed pixels are left to software.
func (d *Device) CheckHWBlit(src, dst *softblit.Surface) bool {
	if !d.owns(dst) || src.Format().BitsPerPixel < 8 {
		return false
	}
	if d.failColorKey && src.Flags()&softblit.SrcColorKey != 0 {
		return false
	}
	return src.Format().BytesPerPixel == dst.Format().BytesPerPixel
}

func (d *Device) fallback(op string, err error) error {
	d.mu.Lock()
	d.stats.Fallbacks++
	d.mu.Unlock()
	d.log().Debug("dummy: "+op+" declined", "err", err)
	return err
}

// BlitHW implements softblit.VideoDevice. It copies pixels, skipping the
// source colour key; alpha blits are declined.
func (d *Device) BlitHW(src *softblit.Surface, sr softblit.Rect, dst *softblit.Surface, dr softblit.Rect) error {
	if src.Flags()&softblit.SrcAlpha != 0 {
		return d.fallback("blit", fmt.Errorf("%w: alpha blit", softblit.ErrFallbackToSoftware))
	}
	bpp := int(dst.Format().BytesPerPixel)
	sp, dp := src.Pixels(), dst.Pixels()
	spitch, dpitch := src.Pitch(), dst.Pitch()
	keyed := src.Flags()&softblit.SrcColorKey != 0
	key := src.Format().Colorkey &^ src.Format().Amask

	// Walk backwards when copying a surface onto a later part of itself.
	backward := src == dst && (dr.Y > sr.Y || dr.Y == sr.Y && dr.X > sr.X)
	for i := range sr.H {
		row := i
		if backward {
			row = sr.H - 1 - i
		}
		s := sp[(sr.Y+row)*spitch+sr.X*bpp:]
		t := dp[(dr.Y+row)*dpitch+dr.X*bpp:]
		if !keyed {
			copy(t[:sr.W*bpp], s[:sr.W*bpp])
			continue
		}
		for j := range sr.W {
			x := j
			if backward {
				x = sr.W - 1 - j
			}
			v := pixel.Load(s[x*bpp:], bpp)
			if v&^src.Format().Amask != key {
				pixel.Store(t[x*bpp:], bpp, v)
			}
		}
	}

	d.mu.Lock()
	d.stats.Blits++
	d.mu.Unlock()
	return nil
}

// FillHWRect implements softblit.VideoDevice.
func (d *Device) FillHWRect(dst *softblit.Surface, r softblit.Rect, color uint32) error {
	bits := int(dst.Format().BitsPerPixel)
	if pixel.Packed(bits) {
		return d.fallback("fill", fmt.Errorf("%w: %d-bit fill", softblit.ErrFallbackToSoftware, bits))
	}
	bpp := int(dst.Format().BytesPerPixel)
	p, pitch := dst.Pixels(), dst.Pitch()
	for y := r.Y; y < r.Y+r.H; y++ {
		pixel.Fill(p[y*pitch+r.X*bpp:], bpp, r.W, color)
	}

	d.mu.Lock()
	d.stats.Fills++
	d.mu.Unlock()
	return nil
}

// SetHWColorKey implements softblit.ColorKeySetter.
func (d *Device) SetHWColorKey(_ *softblit.Surface, key uint32) error {
	if d.failColorKey {
		return fmt.Errorf("dummy: colour key %#x not supported", key)
	}
	return nil
}

// SetHWAlpha implements softblit.AlphaSetter.
func (d *Device) SetHWAlpha(*softblit.Surface, uint8) error { return nil }

// SetHWColors implements softblit.PaletteSetter.
func (d *Device) SetHWColors(first int, colors []softblit.Color) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n := first + len(colors); n > len(d.palette) {
		d.palette = append(d.palette, make([]softblit.Color, n-len(d.palette))...)
	}
	copy(d.palette[first:], colors)
	return nil
}

// SetGammaRamp implements softblit.GammaRampSetter.
func (d *Device) SetGammaRamp(r, g, b *softblit.GammaRamp) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ramps = [3]softblit.GammaRamp{*r, *g, *b}
	return nil
}

// modeMasks returns the channel masks of a video mode.
func modeMasks(bpp int) (r, g, b uint32, err error) {
	switch bpp {
	case 8:
		return 0, 0, 0, nil
	case 15:
		return 0x7C00, 0x03E0, 0x001F, nil
	case 16:
		return 0xF800, 0x07E0, 0x001F, nil
	case 24, 32:
		return 0xFF0000, 0x00FF00, 0x0000FF, nil
	}
	return 0, 0, 0, fmt.Errorf("%w: %d-bit video mode", softblit.ErrInvalidDepth, bpp)
}

// SetVideoMode creates the video surface and makes it current. The
// device must be registered. 8-bit modes get the 3-3-2 dither palette.
// The previous video surface, if any, is freed.
func (d *Device) SetVideoMode(w, h, bpp int) (*softblit.Surface, error) {
	if softblit.CurrentDevice() != softblit.VideoDevice(d) {
		return nil, ErrNotCurrent
	}
	rmask, gmask, bmask, err := modeMasks(bpp)
	if err != nil {
		return nil, err
	}

	screen, err := d.newScreen(w, h, bpp, rmask, gmask, bmask)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	old := d.screen
	d.screen = screen
	d.mu.Unlock()

	if err := softblit.SetVideoSurfaces(screen, nil); err != nil {
		return nil, err
	}
	if old != nil {
		old.Free()
	}

	if bpp == 8 {
		colors := make([]softblit.Color, 256)
		softblit.DitherColors(colors, 8)
		if _, err := screen.SetPalette(colors); err != nil {
			return nil, err
		}
	}
	d.log().Info("dummy: video mode set", "w", w, "h", h, "bpp", bpp,
		"hardware", screen.Flags()&softblit.HWSurface != 0)
	return screen, nil
}

// newScreen builds the video surface: device memory with the visible area
// at the configured offset, or a software surface without hardware.
func (d *Device) newScreen(w, h, bpp int, rmask, gmask, bmask uint32) (*softblit.Surface, error) {
	info := d.Info()
	if !d.hw {
		return softblit.NewSurface(softblit.SWSurface, w, h, bpp, rmask, gmask, bmask, 0)
	}

	bytes := (bpp + 7) / 8
	ox, oy := info.OffsetX, info.OffsetY
	pitch := ((w+ox)*bytes + 3) &^ 3
	size := pitch*(h+oy) + ox*bytes

	b, err := d.reserve(size)
	if err != nil {
		return nil, err
	}
	screen, err := softblit.NewVideoSurface(make([]byte, size), w, h, bpp, pitch, rmask, gmask, bmask, 0, b)
	if err == nil && (ox != 0 || oy != 0) {
		err = screen.SetOffset(oy*pitch + ox*bytes)
	}
	if err != nil {
		d.mu.Lock()
		d.stats.MemUsed -= size
		d.stats.Allocs--
		d.mu.Unlock()
		return nil, err
	}
	return screen, nil
}
