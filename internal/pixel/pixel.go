// Package pixel provides raw pixel access and channel expansion for packed
// pixel formats.
//
// Multi-byte pixels are stored little-endian: a 3-byte pixel is
// b[0] | b[1]<<8 | b[2]<<16. Every blitter and lookup table in softblit
// goes through Load and Store so the byte order is decided in one place.
package pixel

import "encoding/binary"

// Load reads a pixel of bpp bytes (1 to 4) from the start of b.
func Load(b []byte, bpp int) uint32 {
	switch bpp {
	case 1:
		return uint32(b[0])
	case 2:
		return uint32(binary.LittleEndian.Uint16(b))
	case 3:
		return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
	case 4:
		return binary.LittleEndian.Uint32(b)
	default:
		return 0
	}
}

// Store writes the low bpp bytes (1 to 4) of v to the start of b.
func Store(b []byte, bpp int, v uint32) {
	switch bpp {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(v))
	case 3:
		b[0] = byte(v)
		b[1] = byte(v >> 8)
		b[2] = byte(v >> 16)
	case 4:
		binary.LittleEndian.PutUint32(b, v)
	}
}

// Fill writes n consecutive pixels of value v starting at b.
func Fill(b []byte, bpp, n int, v uint32) {
	if n <= 0 {
		return
	}
	if bpp == 1 {
		c := byte(v)
		for i := range b[:n] {
			b[i] = c
		}
		return
	}
	Store(b, bpp, v)
	// Double the written prefix until the span is full.
	span := n * bpp
	for done := bpp; done < span; done *= 2 {
		copy(b[done:span], b[:done])
	}
}
