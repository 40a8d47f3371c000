package pixel

// LoadAt reads pixel x of a row for any depth. 1- and 4-bit pixels are
// packed most significant bits first; other depths occupy whole bytes.
func LoadAt(row []byte, x, bitsPerPixel int) uint32 {
	switch bitsPerPixel {
	case 1:
		return uint32(row[x>>3]>>(7-uint(x&7))) & 1
	case 4:
		b := row[x>>1]
		if x&1 == 0 {
			return uint32(b >> 4)
		}
		return uint32(b & 0x0F)
	}
	bpp := (bitsPerPixel + 7) / 8
	return Load(row[x*bpp:], bpp)
}

// StoreAt writes pixel x of a row for any depth; see LoadAt.
func StoreAt(row []byte, x, bitsPerPixel int, v uint32) {
	switch bitsPerPixel {
	case 1:
		shift := 7 - uint(x&7)
		i := x >> 3
		row[i] = row[i]&^(1<<shift) | byte(v&1)<<shift
		return
	case 4:
		i := x >> 1
		if x&1 == 0 {
			row[i] = row[i]&0x0F | byte(v&0x0F)<<4
		} else {
			row[i] = row[i]&0xF0 | byte(v&0x0F)
		}
		return
	}
	bpp := (bitsPerPixel + 7) / 8
	Store(row[x*bpp:], bpp, v)
}

// Packed reports whether pixels of the given depth share bytes.
func Packed(bitsPerPixel int) bool {
	return bitsPerPixel == 1 || bitsPerPixel == 4
}
