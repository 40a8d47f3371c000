package softblit

import (
	"image"
	"image/color"
	"testing"
)

// Verify at compile time that Color implements color.Color.
var _ color.Color = Color{}

func TestColor_ColorInterface(t *testing.T) {
	tests := []struct {
		name                       string
		c                          Color
		wantR, wantG, wantB, wantA uint32
	}{
		{"black", Color{}, 0, 0, 0, 0xFFFF},
		{"white", Color{R: 255, G: 255, B: 255}, 0xFFFF, 0xFFFF, 0xFFFF, 0xFFFF},
		{"red ignores alpha", Color{R: 255, A: 10}, 0xFFFF, 0, 0, 0xFFFF},
		{"mid grey", Color{R: 0x80, G: 0x80, B: 0x80}, 0x8080, 0x8080, 0x8080, 0xFFFF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b, a := tt.c.RGBA()
			if r != tt.wantR || g != tt.wantG || b != tt.wantB || a != tt.wantA {
				t.Errorf("RGBA() = (%#x, %#x, %#x, %#x), want (%#x, %#x, %#x, %#x)",
					r, g, b, a, tt.wantR, tt.wantG, tt.wantB, tt.wantA)
			}
		})
	}
}

func TestColorFrom(t *testing.T) {
	tests := []struct {
		name string
		in   color.Color
		want Color
	}{
		{"nrgba", color.NRGBA{R: 10, G: 20, B: 30, A: 255}, Color{R: 10, G: 20, B: 30}},
		{"premultiplied", color.RGBA{R: 64, G: 0, B: 0, A: 128}, Color{R: 127}},
		{"gray", color.Gray{Y: 99}, Color{R: 99, G: 99, B: 99}},
		{"roundtrip", Color{R: 1, G: 2, B: 3}, Color{R: 1, G: 2, B: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ColorFrom(tt.in); got != tt.want {
				t.Errorf("ColorFrom(%v) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRectIntersect(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want Rect
	}{
		{"inside", Rect{X: 2, Y: 2, W: 4, H: 4}, Rect{W: 10, H: 10}, Rect{X: 2, Y: 2, W: 4, H: 4}},
		{"overlap", Rect{X: -2, Y: 5, W: 6, H: 10}, Rect{W: 10, H: 10}, Rect{X: 0, Y: 5, W: 4, H: 5}},
		{"disjoint", Rect{X: 20, Y: 20, W: 4, H: 4}, Rect{W: 10, H: 10}, Rect{X: 20, Y: 20}},
		{"touching", Rect{X: 10, W: 4, H: 4}, Rect{W: 10, H: 10}, Rect{X: 10, H: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.Intersect(tt.b)
			if got != tt.want {
				t.Errorf("Intersect() = %+v, want %+v", got, tt.want)
			}
			var out Rect
			if ok := intersectRect(tt.a, tt.b, &out); ok == got.Empty() {
				t.Errorf("intersectRect() = %v for %+v", ok, got)
			}
		})
	}
}

func TestRectIn(t *testing.T) {
	outer := Rect{W: 8, H: 8}
	tests := []struct {
		r    Rect
		want bool
	}{
		{Rect{W: 8, H: 8}, true},
		{Rect{X: 7, Y: 7, W: 1, H: 1}, true},
		{Rect{X: 7, Y: 7, W: 2, H: 1}, false},
		{Rect{X: -1, W: 1, H: 1}, false},
		{Rect{X: 8, Y: 8}, true},
	}
	for _, tt := range tests {
		if got := tt.r.In(outer); got != tt.want {
			t.Errorf("%+v.In(%+v) = %v, want %v", tt.r, outer, got, tt.want)
		}
	}
}

func TestRectImage(t *testing.T) {
	r := Rect{X: 1, Y: 2, W: 3, H: 4}
	ir := r.Image()
	if ir != image.Rect(1, 2, 4, 6) {
		t.Errorf("Image() = %v", ir)
	}
	if back := RectFromImage(ir); back != r {
		t.Errorf("RectFromImage() = %+v, want %+v", back, r)
	}
	if got := RectFromImage(image.Rectangle{Min: image.Pt(4, 6), Max: image.Pt(1, 2)}); got != r {
		t.Errorf("RectFromImage(non-canonical) = %+v, want %+v", got, r)
	}
}
