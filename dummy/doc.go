// Package dummy provides a headless softblit video driver.
//
// The driver keeps every buffer in ordinary memory. By default it offers
// no acceleration and the video surface is a plain software surface.
// With hardware emulation enabled it behaves like an accelerated card:
// surfaces are allocated from a bounded pool of "video memory", blits
// between them and rectangle fills run in the driver, and the visible
// area may sit at an offset inside the video buffer. This exercises the
// hardware code paths of softblit without a display.
//
// # Registration
//
// Importing the package registers the driver under the name "dummy" with
// priority 10:
//
//	import _ "github.com/gogpu/softblit/dummy"
//
//	if err := softblit.VideoInit(softblit.WithDriver("dummy")); err != nil {
//		log.Fatal(err)
//	}
//	screen, err := dummy.Current().SetVideoMode(640, 480, 32)
//
// Setting SOFTBLIT_DUMMY_HW=1 enables hardware emulation for the
// registered driver. Devices built with New can be registered directly
// with softblit.RegisterDevice.
package dummy
