// Package cache provides a small generic cache with a soft size limit.
//
// softblit uses it to memoise nearest-colour lookups against a palette:
// MapRGB on an indexed format scans every palette entry, and the same few
// colours tend to be mapped over and over while drawing.
//
//	c := cache.New[uint32, uint8](1024)
//	idx := c.GetOrCreate(rgb, func() uint8 { return findColor(rgb) })
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
