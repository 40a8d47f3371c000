package softblit

import "image"

// Rect is a rectangle with its origin at the top-left corner.
// A Rect with W or H of zero or less is empty.
type Rect struct {
	X, Y int
	W, H int
}

// Empty reports whether r covers no pixels.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Intersect returns the intersection of r and s. Empty intersections keep
// the clamped origin and report zero width or height.
func (r Rect) Intersect(s Rect) Rect {
	x0 := max(r.X, s.X)
	x1 := min(r.X+r.W, s.X+s.W)
	y0 := max(r.Y, s.Y)
	y1 := min(r.Y+r.H, s.Y+s.H)
	return Rect{X: x0, Y: y0, W: max(x1-x0, 0), H: max(y1-y0, 0)}
}

// In reports whether r lies entirely inside s.
func (r Rect) In(s Rect) bool {
	return r.X >= s.X && r.Y >= s.Y &&
		r.X+r.W <= s.X+s.W && r.Y+r.H <= s.Y+s.H
}

// Image returns r as an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H)
}

// RectFromImage converts an image.Rectangle.
func RectFromImage(r image.Rectangle) Rect {
	r = r.Canon()
	return Rect{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()}
}

// intersectRect clips a against b into out and reports whether the result
// is non-empty.
func intersectRect(a, b Rect, out *Rect) bool {
	*out = a.Intersect(b)
	return !out.Empty()
}
