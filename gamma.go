package softblit

import (
	"fmt"

	"github.com/gogpu/softblit/internal/gamma"
)

// GammaRamp maps each 8-bit intensity to a 16-bit output intensity.
type GammaRamp = gamma.Ramp

// CalculateGammaRamp returns the ramp for gamma g. g <= 0 yields an
// all-black ramp and g == 1 the linear ramp.
func CalculateGammaRamp(g float64) GammaRamp {
	return gamma.Calculate(g)
}

// GammaFromRamp estimates the gamma value of a ramp.
func GammaFromRamp(r *GammaRamp) float64 {
	return gamma.FromRamp(r)
}

// SetGamma sets the display gamma of each channel.
func SetGamma(red, green, blue float64) error {
	r := gamma.Calculate(red)
	g := gamma.Calculate(green)
	b := gamma.Calculate(blue)
	return SetGammaRamp(&r, &g, &b)
}

// SetGammaRamp sets the display gamma tables. A nil ramp leaves that
// channel unchanged. Devices implementing GammaRampSetter receive the
// complete tables.
func SetGammaRamp(red, green, blue *GammaRamp) error {
	videoMu.Lock()
	dev := video.dev
	if dev == nil {
		videoMu.Unlock()
		return setError(ErrNoDevice)
	}
	if !video.gamma {
		for i := range video.ramp {
			video.ramp[i] = gamma.Identity()
		}
		video.gamma = true
	}
	for i, r := range []*GammaRamp{red, green, blue} {
		if r != nil {
			video.ramp[i] = *r
		}
	}
	ramps := video.ramp
	videoMu.Unlock()

	if gs, ok := dev.(GammaRampSetter); ok {
		if err := gs.SetGammaRamp(&ramps[0], &ramps[1], &ramps[2]); err != nil {
			return setError(fmt.Errorf("softblit: set gamma ramp: %w", err))
		}
	}
	return nil
}

// GetGammaRamp returns the current gamma tables, linear until set.
func GetGammaRamp() (red, green, blue GammaRamp) {
	videoMu.RLock()
	defer videoMu.RUnlock()
	if !video.gamma {
		id := gamma.Identity()
		return id, id, id
	}
	return video.ramp[0], video.ramp[1], video.ramp[2]
}

// GetGamma estimates the current gamma of each channel.
func GetGamma() (red, green, blue float64) {
	r, g, b := GetGammaRamp()
	return gamma.FromRamp(&r), gamma.FromRamp(&g), gamma.FromRamp(&b)
}

// ApplyGamma returns colors mapped through the current gamma tables.
func ApplyGamma(colors []Color) []Color {
	r, g, b := GetGammaRamp()
	out := make([]Color, len(colors))
	for i, c := range colors {
		out[i] = Color{R: r.Apply(c.R), G: g.Apply(c.G), B: b.Apply(c.B), A: c.A}
	}
	return out
}
