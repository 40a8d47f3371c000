package dummy

import "github.com/gogpu/softblit"

// Option configures a Device.
type Option func(*Device)

// defaultVideoMem is the video memory of an emulated card, in kilobytes.
const defaultVideoMem = 8192

// hardwareInfo is what an emulated card accelerates unless WithInfo says
// otherwise.
var hardwareInfo = softblit.VideoInfo{
	HWAvailable:    true,
	BlitHW:         true,
	BlitHWColorKey: true,
	BlitSW:         true,
	BlitSWColorKey: true,
	BlitFill:       true,
	VideoMem:       defaultVideoMem,
}

// WithHardware turns hardware emulation on or off.
func WithHardware(on bool) Option {
	return func(d *Device) {
		x, y := d.info.OffsetX, d.info.OffsetY
		switch {
		case !on:
			d.info = softblit.VideoInfo{}
			d.customInfo = false
		case !d.customInfo:
			d.info = hardwareInfo
		}
		d.info.OffsetX, d.info.OffsetY = x, y
		d.hw = on
	}
}

// WithInfo replaces the reported capabilities and enables hardware
// emulation. Offsets set by WithOffset are kept.
func WithInfo(info softblit.VideoInfo) Option {
	return func(d *Device) {
		x, y := d.info.OffsetX, d.info.OffsetY
		d.info = info
		d.info.OffsetX, d.info.OffsetY = x, y
		d.hw = true
		d.customInfo = true
	}
}

// WithOffset places the visible area x pixels right and y rows down
// inside the video buffer. It only affects hardware video surfaces.
func WithOffset(x, y int) Option {
	return func(d *Device) {
		d.info.OffsetX, d.info.OffsetY = max(x, 0), max(y, 0)
	}
}

// WithFailColorKey makes the device refuse hardware colour keys, so keyed
// surfaces lose their acceleration.
func WithFailColorKey() Option {
	return func(d *Device) {
		d.failColorKey = true
	}
}
