// Package softblit is a software surface and blit engine for packed and
// palettized pixel buffers.
//
// # Overview
//
// A [Surface] owns a pixel buffer described by a [PixelFormat]: bit depth,
// per-channel masks, shifts and losses, an optional [Palette], a colour key
// and a per-surface alpha value. [UpperBlit] copies a rectangle from one
// surface to another, converting pixel formats and applying colour keys and
// alpha blending on the way.
//
// # Quick Start
//
//	src, _ := softblit.NewSurface(softblit.SWSurface, 64, 64, 32,
//		0x00FF0000, 0x0000FF00, 0x000000FF, 0)
//	dst, _ := softblit.NewSurface(softblit.SWSurface, 320, 240, 16,
//		0xF800, 0x07E0, 0x001F, 0)
//
//	_ = softblit.FillRect(src, nil, src.Format().MapRGB(255, 0, 0))
//	_ = src.SetColorKey(softblit.SrcColorKey|softblit.RLEAccelOK, 0)
//	_ = softblit.UpperBlit(src, nil, dst, &softblit.Rect{X: 10, Y: 10})
//
// # Blit Mapping
//
// Every surface carries a blit map: the cached decision of how to copy its
// pixels onto the last destination it was blitted to. The map records
// whether the two formats are identical, the palette translation table when
// one is needed, and the [BlitKind] that will run. It is rebuilt lazily
// whenever the destination changes or the destination's format version no
// longer matches the one captured at validation time.
//
// # Video Devices
//
// Hardware-backed surfaces are delegated to a [VideoDevice]. Devices are
// registered by name (see [RegisterDriver]) and activated with
// [VideoInit]. Without a device every surface is a plain software surface.
// The dummy sub-package provides an in-memory device that emulates
// hardware surfaces.
//
// # Byte Order
//
// Multi-byte pixels are stored little-endian. A 32-bit pixel with masks
// R=0x000000FF G=0x0000FF00 B=0x00FF0000 A=0xFF000000 is laid out in memory
// as R, G, B, A bytes, the same order as [image.NRGBA].
//
// # Concurrency
//
// Surfaces are not safe for concurrent use. Locking a surface prepares its
// pixels for direct access; it is a reentrant counter, not a mutex.
// Package-level state (logger, last error, video device) is safe for
// concurrent use.
package softblit
