// Command blitdemo draws a scene with the softblit blitters on the dummy
// video driver and writes it as PNG and BMP.
package main

import (
	"flag"
	"image/color"
	"log"
	"log/slog"
	"os"

	"golang.org/x/image/colornames"

	"github.com/gogpu/softblit"
	"github.com/gogpu/softblit/dummy"
)

func main() {
	var (
		width   = flag.Int("width", 320, "screen width")
		height  = flag.Int("height", 240, "screen height")
		bpp     = flag.Int("bpp", 32, "screen depth: 8, 15, 16, 24 or 32")
		hw      = flag.Bool("hw", false, "emulate hardware surfaces")
		pngOut  = flag.String("png", "blitdemo.png", "PNG output file")
		bmpOut  = flag.String("bmp", "blitdemo.bmp", "BMP output file (8-bit)")
		verbose = flag.Bool("v", false, "log blit selection")
	)
	flag.Parse()

	if *verbose {
		softblit.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	dev := dummy.New(dummy.WithHardware(*hw))
	if err := softblit.RegisterDevice(dev); err != nil {
		log.Fatalf("register device: %v", err)
	}
	defer softblit.UnregisterDevice()

	screen, err := dev.SetVideoMode(*width, *height, *bpp)
	if err != nil {
		log.Fatalf("set video mode: %v", err)
	}

	drawBackground(screen)
	if err := drawSprites(screen); err != nil {
		log.Fatalf("sprites: %v", err)
	}
	if err := drawGlass(screen); err != nil {
		log.Fatalf("glass: %v", err)
	}
	if err := drawShade(screen); err != nil {
		log.Fatalf("shade: %v", err)
	}

	if err := screen.SavePNG(*pngOut); err != nil {
		log.Fatalf("save: %v", err)
	}
	if err := saveIndexed(screen, *bmpOut); err != nil {
		log.Fatalf("save: %v", err)
	}

	st := dev.Stats()
	log.Printf("Demo saved to %s and %s (%dx%d, %d bpp, %d device blits, %d device fills)\n",
		*pngOut, *bmpOut, *width, *height, *bpp, st.Blits, st.Fills)
}

func mapColor(s *softblit.Surface, c color.RGBA) uint32 {
	return s.Format().MapRGB(c.R, c.G, c.B)
}

// drawBackground fills horizontal bands.
func drawBackground(screen *softblit.Surface) {
	bands := []color.RGBA{
		colornames.Midnightblue, colornames.Navy, colornames.Darkslateblue,
		colornames.Steelblue, colornames.Cadetblue, colornames.Seagreen,
	}
	h := screen.H() / len(bands)
	for i, c := range bands {
		r := softblit.Rect{Y: i * h, W: screen.W(), H: h + 1}
		_ = softblit.FillRect(screen, &r, mapColor(screen, c))
	}
}

// drawSprites blits a run-length encoded, colour-keyed diamond in a grid,
// partly off screen to exercise clipping.
func drawSprites(screen *softblit.Surface) error {
	const size = 24
	sprite, err := softblit.NewSurface(softblit.SWSurface, size, size, 32, 0xFF0000, 0xFF00, 0xFF, 0)
	if err != nil {
		return err
	}
	defer sprite.Free()

	key := mapColor(sprite, colornames.Magenta)
	_ = softblit.FillRect(sprite, nil, key)
	for y := range size {
		d := min(y, size-1-y)
		r := softblit.Rect{X: size/2 - d, Y: y, W: 2 * d, H: 1}
		_ = softblit.FillRect(sprite, &r, mapColor(sprite, colornames.Gold))
	}
	if err := sprite.SetColorKey(softblit.SrcColorKey|softblit.RLEAccel, key); err != nil {
		return err
	}

	display, err := softblit.DisplayFormat(sprite)
	if err != nil {
		return err
	}
	defer display.Free()

	for y := -size / 2; y < screen.H(); y += 2 * size {
		for x := -size / 2; x < screen.W(); x += 2 * size {
			if err := softblit.UpperBlit(display, nil, screen, &softblit.Rect{X: x, Y: y}); err != nil {
				return err
			}
		}
	}
	return nil
}

// drawGlass blends a translucent panel over the middle of the screen.
func drawGlass(screen *softblit.Surface) error {
	w, h := screen.W()/2, screen.H()/3
	panel, err := softblit.NewSurface(softblit.SWSurface, w, h, 32, 0xFF0000, 0xFF00, 0xFF, 0)
	if err != nil {
		return err
	}
	defer panel.Free()

	_ = softblit.FillRect(panel, nil, mapColor(panel, colornames.White))
	if err := panel.SetAlpha(softblit.SrcAlpha, 96); err != nil {
		return err
	}
	return softblit.UpperBlit(panel, nil, screen, &softblit.Rect{X: w / 2, Y: h})
}

// drawShade blits a surface with a per-pixel alpha ramp along the bottom.
func drawShade(screen *softblit.Surface) error {
	w, h := screen.W(), screen.H()/6
	shade, err := softblit.NewSurface(softblit.SWSurface, w, h, 32, 0xFF0000, 0xFF00, 0xFF, 0xFF000000)
	if err != nil {
		return err
	}
	defer shade.Free()

	for x := range w {
		a := uint8(x * 255 / max(w-1, 1))
		r := softblit.Rect{X: x, W: 1, H: h}
		_ = softblit.FillRect(shade, &r, shade.Format().MapRGBA(0, 0, 0, a))
	}

	display, err := softblit.DisplayFormatAlpha(shade)
	if err != nil {
		return err
	}
	defer display.Free()
	return softblit.UpperBlit(display, nil, screen, &softblit.Rect{Y: screen.H() - h})
}

// saveIndexed converts the screen to the 3-3-2 palette and writes a BMP.
func saveIndexed(screen *softblit.Surface, path string) error {
	f, err := softblit.NewPixelFormat(8, 0, 0, 0, 0)
	if err != nil {
		return err
	}
	colors := make([]softblit.Color, 256)
	softblit.DitherColors(colors, 8)
	f.Palette.SetColors(colors, 0)

	indexed, err := screen.Convert(f, softblit.SWSurface)
	if err != nil {
		return err
	}
	defer indexed.Free()
	return indexed.SaveBMP(path)
}
