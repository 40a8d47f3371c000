// Package gamma computes 16-bit gamma ramps and applies them to 8-bit colour
// channels.
//
// A ramp has 256 entries, one per input intensity, each holding the output
// intensity scaled to 0..65535.
package gamma

import "math"

// Ramp is a 256-entry gamma lookup table.
type Ramp [256]uint16

// identity is the ramp for gamma 1.0: each byte replicated into 16 bits.
var identity Ramp

func init() {
	for i := range identity {
		identity[i] = uint16(i<<8 | i)
	}
}

// Identity returns the linear ramp.
func Identity() Ramp { return identity }

// Calculate builds the ramp for the given gamma value.
// A gamma of 0 or less produces an all-black ramp.
func Calculate(g float64) Ramp {
	var r Ramp
	switch {
	case g <= 0:
		return r
	case g == 1:
		return identity
	}
	inv := 1 / g
	for i := range r {
		v := int(math.Pow(float64(i)/256, inv)*65535 + 0.5)
		if v > 65535 {
			v = 65535
		}
		r[i] = uint16(v)
	}
	return r
}

// FromRamp estimates the gamma value a ramp was built with from the mean
// log ratio of its entries. Entries at either end of the output range carry
// no information and are skipped. The linear ramp and a ramp with no usable
// entries both report 1.
func FromRamp(r *Ramp) float64 {
	if *r == identity {
		return 1
	}
	sum := 0.0
	count := 0
	for i := 1; i < len(r); i++ {
		if r[i] == 0 || r[i] == 65535 {
			continue
		}
		in := float64(i) / 256
		out := float64(r[i]) / 65535
		sum += math.Log(out) / math.Log(in)
		count++
	}
	if count == 0 || sum <= 0 {
		return 1
	}
	return float64(count) / sum
}

// Apply maps an 8-bit channel value through the ramp.
func (r *Ramp) Apply(v uint8) uint8 {
	return uint8(r[v] >> 8)
}
