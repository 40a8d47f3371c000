package softblit

import (
	"errors"
	"log/slog"
	"testing"
)

// fakeDevice records the calls softblit makes and fails on request.
type fakeDevice struct {
	name    string
	info    VideoInfo
	initErr error
	logger  *slog.Logger
	closed  bool

	allocErr error
	blitErr  error
	fillErr  error
	keyErr   error
	alphaErr error

	allocs, frees   int
	locks, unlocks  int
	blits, fills    int
	keys, alphas    int
	lastBlit        [2]Rect
	lastFill        Rect
	colors          []Color
	ramps           [3]GammaRamp
	rampCalls       int
	checkHWBlitDeny bool
}

func (d *fakeDevice) Name() string {
	if d.name == "" {
		return "fake"
	}
	return d.name
}

func (d *fakeDevice) Init() error              { return d.initErr }
func (d *fakeDevice) Close()                   { d.closed = true }
func (d *fakeDevice) Info() VideoInfo          { return d.info }
func (d *fakeDevice) SetLogger(l *slog.Logger) { d.logger = l }

func (d *fakeDevice) AllocHWSurface(s *Surface) ([]byte, any, error) {
	if d.allocErr != nil {
		return nil, nil, d.allocErr
	}
	d.allocs++
	return make([]byte, s.Pitch()*s.H()), d.allocs, nil
}

func (d *fakeDevice) LockHWSurface(*Surface) error { d.locks++; return nil }
func (d *fakeDevice) UnlockHWSurface(*Surface)     { d.unlocks++ }
func (d *fakeDevice) FreeHWSurface(*Surface)       { d.frees++ }

func (d *fakeDevice) CheckHWBlit(src, dst *Surface) bool { return !d.checkHWBlitDeny }

func (d *fakeDevice) BlitHW(src *Surface, sr Rect, dst *Surface, dr Rect) error {
	d.blits++
	d.lastBlit = [2]Rect{sr, dr}
	return d.blitErr
}

func (d *fakeDevice) FillHWRect(dst *Surface, r Rect, color uint32) error {
	d.fills++
	d.lastFill = r
	return d.fillErr
}

func (d *fakeDevice) SetHWColorKey(*Surface, uint32) error { d.keys++; return d.keyErr }
func (d *fakeDevice) SetHWAlpha(*Surface, uint8) error     { d.alphas++; return d.alphaErr }

func (d *fakeDevice) SetHWColors(first int, colors []Color) error {
	d.colors = append(d.colors[:0], colors...)
	return nil
}

func (d *fakeDevice) SetGammaRamp(r, g, b *GammaRamp) error {
	d.rampCalls++
	d.ramps = [3]GammaRamp{*r, *g, *b}
	return nil
}

// fullHW accelerates everything.
var fullHW = VideoInfo{
	HWAvailable:    true,
	BlitHW:         true,
	BlitHWColorKey: true,
	BlitHWAlpha:    true,
	BlitSW:         true,
	BlitSWColorKey: true,
	BlitSWAlpha:    true,
	BlitFill:       true,
	VideoMem:       4096,
}

// useDevice registers dev for the duration of the test.
func useDevice(t *testing.T, dev VideoDevice) {
	t.Helper()
	if err := RegisterDevice(dev); err != nil {
		t.Fatalf("RegisterDevice() = %v", err)
	}
	t.Cleanup(UnregisterDevice)
}

// hwScreen builds a hardware video surface and makes it current.
func hwScreen(t *testing.T, w, h, bpp int, rmask, gmask, bmask uint32) *Surface {
	t.Helper()
	f, err := NewPixelFormat(bpp, rmask, gmask, bmask, 0)
	if err != nil {
		t.Fatal(err)
	}
	pitch := calculatePitch(f, w)
	screen, err := NewVideoSurface(make([]byte, pitch*h), w, h, bpp, pitch, rmask, gmask, bmask, 0, "screen")
	if err != nil {
		t.Fatalf("NewVideoSurface() = %v", err)
	}
	if err := SetVideoSurfaces(screen, nil); err != nil {
		t.Fatalf("SetVideoSurfaces() = %v", err)
	}
	return screen
}

func TestRegisterDevice(t *testing.T) {
	first := &fakeDevice{name: "first"}
	useDevice(t, first)
	if CurrentDevice() != first {
		t.Fatal("CurrentDevice() is not the registered device")
	}

	second := &fakeDevice{name: "second"}
	useDevice(t, second)
	if !first.closed {
		t.Error("replaced device was not closed")
	}
	if CurrentDevice() != second {
		t.Error("CurrentDevice() is not the new device")
	}

	UnregisterDevice()
	if !second.closed {
		t.Error("UnregisterDevice did not close the device")
	}
	if CurrentDevice() != nil {
		t.Error("CurrentDevice() != nil after UnregisterDevice")
	}
}

func TestRegisterDeviceInitFailure(t *testing.T) {
	ok := &fakeDevice{}
	useDevice(t, ok)

	bad := &fakeDevice{name: "bad", initErr: errors.New("boom")}
	if err := RegisterDevice(bad); err == nil {
		t.Fatal("RegisterDevice() succeeded for a failing device")
	}
	if CurrentDevice() != ok {
		t.Error("failed registration replaced the device")
	}
	if err := RegisterDevice(nil); !errors.Is(err, ErrNoDevice) {
		t.Errorf("RegisterDevice(nil) = %v, want ErrNoDevice", err)
	}
}

func TestSetVideoSurfacesWithoutDevice(t *testing.T) {
	UnregisterDevice()
	s, _ := NewSurface(SWSurface, 4, 4, 32, 0, 0, 0, 0)
	if err := SetVideoSurfaces(s, nil); !errors.Is(err, ErrNoDevice) {
		t.Errorf("SetVideoSurfaces() = %v, want ErrNoDevice", err)
	}
	if GetVideoInfo() != (VideoInfo{}) {
		t.Error("GetVideoInfo() without device is not zero")
	}
}

func TestPublicSurfacePrefersShadow(t *testing.T) {
	useDevice(t, &fakeDevice{})
	screen, _ := NewSurface(SWSurface, 8, 8, 8, 0, 0, 0, 0)
	shadow, _ := NewSurface(SWSurface, 8, 8, 8, 0, 0, 0, 0)

	if err := SetVideoSurfaces(screen, shadow); err != nil {
		t.Fatal(err)
	}
	if PublicSurface() != shadow {
		t.Error("PublicSurface() is not the shadow surface")
	}
	if VideoSurface() != screen {
		t.Error("VideoSurface() is not the video surface")
	}

	if err := SetVideoSurfaces(screen, nil); err != nil {
		t.Fatal(err)
	}
	if PublicSurface() != screen {
		t.Error("PublicSurface() without shadow is not the video surface")
	}
}

func TestHardwareSurfaceAllocation(t *testing.T) {
	tests := []struct {
		name   string
		info   VideoInfo
		flags  SurfaceFlags
		wantHW bool
	}{
		{"plain request", fullHW, HWSurface, true},
		{"software request", fullHW, SWSurface, false},
		{"colour key promotes", fullHW, SrcColorKey, true},
		{"colour key unsupported", VideoInfo{HWAvailable: true, BlitHW: true}, HWSurface | SrcColorKey, false},
		{"alpha unsupported", VideoInfo{HWAvailable: true, BlitHW: true, BlitHWColorKey: true}, HWSurface | SrcAlpha, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := &fakeDevice{info: tt.info}
			useDevice(t, dev)
			hwScreen(t, 16, 16, 16, 0xF800, 0x07E0, 0x001F)

			s, err := NewSurface(tt.flags, 8, 8, 32, 0xFF0000, 0xFF00, 0xFF, 0)
			if err != nil {
				t.Fatal(err)
			}
			if got := s.Flags()&HWSurface != 0; got != tt.wantHW {
				t.Fatalf("HWSurface = %v, want %v", got, tt.wantHW)
			}
			if tt.wantHW {
				if s.Format().BitsPerPixel != 16 || s.Format().Rmask != 0xF800 {
					t.Errorf("hardware surface format = %v, want the screen format", s.Format())
				}
				s.Free()
				if dev.frees != 1 {
					t.Errorf("FreeHWSurface calls = %d, want 1", dev.frees)
				}
			}
		})
	}
}

func TestHardwareAllocationDeclined(t *testing.T) {
	dev := &fakeDevice{info: fullHW, allocErr: ErrFallbackToSoftware}
	useDevice(t, dev)
	hwScreen(t, 16, 16, 32, 0xFF0000, 0xFF00, 0xFF)

	s, err := NewSurface(HWSurface, 8, 8, 32, 0, 0, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if s.Flags()&HWSurface != 0 {
		t.Error("declined allocation still reports HWSurface")
	}
	if len(s.Pixels()) != s.Pitch()*s.H() {
		t.Errorf("len(Pixels()) = %d, want %d", len(s.Pixels()), s.Pitch()*s.H())
	}
}

func TestHardwareLock(t *testing.T) {
	dev := &fakeDevice{info: fullHW}
	useDevice(t, dev)
	hwScreen(t, 16, 16, 32, 0xFF0000, 0xFF00, 0xFF)

	s, _ := NewSurface(HWSurface, 8, 8, 32, 0, 0, 0, 0)
	if !s.MustLock() {
		t.Fatal("hardware surface does not need locking")
	}
	for range 3 {
		if err := s.Lock(); err != nil {
			t.Fatal(err)
		}
	}
	for range 3 {
		s.Unlock()
	}
	if dev.locks != 1 || dev.unlocks != 1 {
		t.Errorf("device locks/unlocks = %d/%d, want 1/1", dev.locks, dev.unlocks)
	}
}

func TestHardwareBlitAndFallback(t *testing.T) {
	dev := &fakeDevice{info: fullHW}
	useDevice(t, dev)
	screen := hwScreen(t, 16, 16, 32, 0xFF0000, 0xFF00, 0xFF)

	src, _ := NewSurface(HWSurface, 4, 4, 32, 0, 0, 0, 0)
	if err := UpperBlit(src, nil, screen, &Rect{X: 2, Y: 3}); err != nil {
		t.Fatal(err)
	}
	if src.BlitKind() != BlitHardware {
		t.Fatalf("BlitKind() = %v, want hardware", src.BlitKind())
	}
	if dev.blits != 1 {
		t.Fatalf("device blits = %d, want 1", dev.blits)
	}
	if want := (Rect{X: 2, Y: 3, W: 4, H: 4}); dev.lastBlit[1] != want {
		t.Errorf("device destination = %+v, want %+v", dev.lastBlit[1], want)
	}

	// Declined hardware blits run in software.
	src.SetPixelAt(0, 0, 0x00ABCDEF)
	dev.blitErr = ErrFallbackToSoftware
	if err := UpperBlit(src, nil, screen, &Rect{}); err != nil {
		t.Fatalf("fallback blit = %v", err)
	}
	if got := screen.PixelAt(0, 0); got != 0x00ABCDEF {
		t.Errorf("software fallback pixel = %#x, want 0xabcdef", got)
	}

	dev.blitErr = errors.New("device lost")
	if err := UpperBlit(src, nil, screen, nil); err == nil {
		t.Error("hardware failure was not reported")
	}
}

func TestHardwareBlitOffset(t *testing.T) {
	info := fullHW
	info.OffsetX, info.OffsetY = 5, 7
	dev := &fakeDevice{info: info}
	useDevice(t, dev)
	screen := hwScreen(t, 16, 16, 32, 0xFF0000, 0xFF00, 0xFF)

	src, _ := NewSurface(HWSurface, 2, 2, 32, 0, 0, 0, 0)
	if err := UpperBlit(src, nil, screen, &Rect{X: 1, Y: 1}); err != nil {
		t.Fatal(err)
	}
	if got, want := dev.lastBlit[1], (Rect{X: 6, Y: 8, W: 2, H: 2}); got != want {
		t.Errorf("offset destination = %+v, want %+v", got, want)
	}
	if got, want := dev.lastBlit[0], (Rect{W: 2, H: 2}); got != want {
		t.Errorf("source rect = %+v, want %+v (not the video surface)", got, want)
	}

	if err := FillRect(screen, &Rect{X: 1, Y: 2, W: 3, H: 4}, 0); err != nil {
		t.Fatal(err)
	}
	if got, want := dev.lastFill, (Rect{X: 6, Y: 9, W: 3, H: 4}); got != want {
		t.Errorf("offset fill = %+v, want %+v", got, want)
	}
}

func TestHardwareColorKeyRejected(t *testing.T) {
	dev := &fakeDevice{info: fullHW, keyErr: errors.New("no key support")}
	useDevice(t, dev)
	screen := hwScreen(t, 16, 16, 32, 0xFF0000, 0xFF00, 0xFF)

	src, _ := NewSurface(HWSurface, 4, 4, 32, 0, 0, 0, 0)
	if err := UpperBlit(src, nil, screen, nil); err != nil {
		t.Fatal(err)
	}
	if src.Flags()&HWAccel == 0 {
		t.Fatal("HWAccel not set after mapping")
	}
	if err := src.SetColorKey(SrcColorKey, 0); err != nil {
		t.Fatal(err)
	}
	if dev.keys != 1 {
		t.Errorf("SetHWColorKey calls = %d, want 1", dev.keys)
	}
	if src.Flags()&HWAccel != 0 {
		t.Error("HWAccel kept after the device rejected the colour key")
	}
}

func TestCheckHWBlitDenied(t *testing.T) {
	dev := &fakeDevice{info: fullHW, checkHWBlitDeny: true}
	useDevice(t, dev)
	screen := hwScreen(t, 16, 16, 32, 0xFF0000, 0xFF00, 0xFF)

	src, _ := NewSurface(SWSurface, 4, 4, 32, 0xFF0000, 0xFF00, 0xFF, 0)
	if err := UpperBlit(src, nil, screen, nil); err != nil {
		t.Fatal(err)
	}
	if src.BlitKind() != BlitCopy {
		t.Errorf("BlitKind() = %v, want copy", src.BlitKind())
	}
	if dev.blits != 0 {
		t.Errorf("device blits = %d, want 0", dev.blits)
	}
}

func TestSingletonSurfacesNotFreed(t *testing.T) {
	useDevice(t, &fakeDevice{})
	screen := hwScreen(t, 8, 8, 32, 0xFF0000, 0xFF00, 0xFF)

	screen.Free()
	if screen.Freed() {
		t.Fatal("video surface freed while the device is active")
	}

	UnregisterDevice()
	screen.Free()
	if !screen.Freed() {
		t.Error("video surface not freed after the device closed")
	}
}

func TestPaletteMirroredToVideoSurface(t *testing.T) {
	dev := &fakeDevice{}
	useDevice(t, dev)
	screen, _ := NewSurface(SWSurface, 8, 8, 8, 0, 0, 0, 0)
	shadow, _ := NewSurface(SWSurface, 8, 8, 8, 0, 0, 0, 0)
	if err := SetVideoSurfaces(screen, shadow); err != nil {
		t.Fatal(err)
	}
	before := screen.FormatVersion()

	colors := []Color{{R: 1}, {G: 2}, {B: 3}}
	all, err := shadow.SetColors(colors, 10)
	if err != nil || !all {
		t.Fatalf("SetColors() = %v, %v", all, err)
	}
	if got := screen.Format().Palette.Color(11); got != colors[1] {
		t.Errorf("video palette[11] = %+v, want %+v", got, colors[1])
	}
	if screen.FormatVersion() == before {
		t.Error("video surface format version unchanged")
	}
	if len(dev.colors) != 3 || dev.colors[2] != colors[2] {
		t.Errorf("device palette = %+v, want %+v", dev.colors, colors)
	}
}
