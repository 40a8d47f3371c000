package softblit

import (
	"math"
	"sync/atomic"
)

// formatVersionCounter is shared by every surface. 0 means never validated;
// the counter wraps from math.MaxInt32 back to 1 so it never reaches the
// stale sentinel of a blit map.
var formatVersionCounter atomic.Uint32

// nextFormatVersion bumps the process-wide counter and returns the new
// value.
func nextFormatVersion() uint32 {
	for {
		old := formatVersionCounter.Load()
		next := old + 1
		if next > math.MaxInt32 {
			next = 1
		}
		if formatVersionCounter.CompareAndSwap(old, next) {
			return next
		}
	}
}

// formatChanged stamps s with a fresh format version, which makes every
// blit map targeting s stale, and invalidates the map of s itself.
func formatChanged(s *Surface) {
	s.formatVersion = nextFormatVersion()
	s.bmap.invalidate()
}

// surfaceIDs hands out the identities blit maps use to refer to their
// destination without holding it.
var surfaceIDs atomic.Uint64

func nextSurfaceID() uint64 {
	return surfaceIDs.Add(1)
}
