// Package blend provides the integer alpha-blending arithmetic used by the
// software blitters.
//
// All functions work on 8-bit channel values carried in uint32 so they can
// be fed straight from unpacked pixels without conversions.
package blend

// Channel blends source channel s over destination channel d with weight a:
//
//	d + (s - d) * a / 255
//
// The division truncates toward zero, so a == 255 yields exactly s and
// a == 0 yields exactly d.
func Channel(s, d, a uint32) uint32 {
	sd := int32(s) - int32(d)
	return uint32(int32(d) + sd*int32(a)/255)
}

// RGB blends the three colour channels in one call.
func RGB(sr, sg, sb, a, dr, dg, db uint32) (r, g, b uint32) {
	return Channel(sr, dr, a), Channel(sg, dg, a), Channel(sb, db, a)
}
