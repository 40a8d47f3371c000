package pixel

// expandLUT maps a channel value with the given loss (0..8) to the full
// 8-bit range. Built once in init, 9 x 256 bytes.
//
// For loss <= 4 the entry is (v << loss) + (v >> (8 - 2*loss)), the rule
// that makes the largest representable value come out as exactly 255.
// For loss 5..7 that shift would be negative, so the channel bits are
// replicated down to bit 0 instead; both rules agree where both apply.
var expandLUT [9][256]uint8

func init() {
	for loss := 0; loss <= 8; loss++ {
		width := 8 - loss
		if width == 0 {
			continue
		}
		for v := 0; v < 1<<width; v++ {
			expandLUT[loss][v] = expandSlow(uint32(v), loss)
		}
	}
}

func expandSlow(v uint32, loss int) uint8 {
	if loss <= 4 {
		return uint8((v << loss) + (v >> (8 - 2*loss)))
	}
	width := 8 - loss
	out := v << loss
	for shift := loss - width; shift > -width; shift -= width {
		if shift >= 0 {
			out |= v << shift
		} else {
			out |= v >> -shift
		}
	}
	return uint8(out)
}

// Expand converts a channel value v (already shifted down to bit 0) with
// the given loss into an 8-bit value. A channel with loss 8 is absent and
// always expands to 0.
func Expand(v uint32, loss uint8) uint8 {
	if loss >= 8 {
		return 0
	}
	return expandLUT[loss][v&0xFF]
}
