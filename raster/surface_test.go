package raster

import (
	"image/color"
	"testing"

	"dotfield/hal"
)

var white = color.RGBA{R: 255, G: 255, B: 255, A: 255}

func newSurface(t *testing.T, w, h int) *Surface {
	t.Helper()
	fb := hal.New(hal.Options{Width: w, Height: h}).Display().Framebuffer()
	s, ok := New(fb)
	if !ok {
		t.Fatalf("New() ok = false")
	}
	return s
}

type badFramebuffer struct{ hal.Framebuffer }

func (badFramebuffer) Format() hal.PixelFormat { return 0 }

func TestNewRejectsUnusableFramebuffer(t *testing.T) {
	if _, ok := New(nil); ok {
		t.Fatalf("New(nil) ok = true")
	}
	fb := hal.New(hal.Options{Width: 4, Height: 4}).Display().Framebuffer()
	if _, ok := New(badFramebuffer{fb}); ok {
		t.Fatalf("New(non-RGB565) ok = true")
	}
}

func TestSetPixelClips(t *testing.T) {
	s := newSurface(t, 4, 3)
	s.SetPixel(-1, 0, white)
	s.SetPixel(4, 0, white)
	s.SetPixel(0, 3, white)
	s.SetPixel(3, 2, white)

	if got := s.At(3, 2); got != white {
		t.Fatalf("At(3,2) = %v, want white", got)
	}
	if got := s.At(0, 0); got.R != 0 {
		t.Fatalf("At(0,0) = %v, want black", got)
	}
}

func TestClearUsesBackground(t *testing.T) {
	s := newSurface(t, 2, 2)
	s.SetPixel(1, 1, white)
	s.Background = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	s.Clear()
	if got := s.At(1, 1); got.B != 255 || got.R != 0 {
		t.Fatalf("At(1,1) after Clear = %v, want blue", got)
	}
}

func TestFillCircle(t *testing.T) {
	s := newSurface(t, 20, 20)
	s.FillCircle(10, 10, 3, white)

	if got := s.At(10, 10); got != white {
		t.Fatalf("centre = %v, want white", got)
	}
	if got := s.At(10, 15); got.R != 0 {
		t.Fatalf("outside = %v, want black", got)
	}
}

func TestFillCircleSubPixelBlends(t *testing.T) {
	s := newSurface(t, 4, 4)
	s.FillCircle(1.5, 1.5, 0.3, white)

	got := s.At(1, 1)
	if got.R == 0 || got.R == 255 {
		t.Fatalf("sub-pixel dot = %v, want partial coverage", got)
	}

	s.FillCircle(2.5, 2.5, 0, white)
	if got := s.At(2, 2); got.R != 0 {
		t.Fatalf("zero-radius dot drew %v", got)
	}
}

func TestFillCircleUnitRadiusAlwaysVisible(t *testing.T) {
	s := newSurface(t, 8, 8)
	s.FillCircle(3.99, 3.99, 1, white)
	if got := s.At(3, 3); got != white {
		t.Fatalf("unit dot = %v, want white", got)
	}
}

func TestStrokeLineOpaque(t *testing.T) {
	s := newSurface(t, 10, 10)
	s.StrokeLine(0, 0, 9, 9, 1, white)
	for i := 0; i < 10; i++ {
		if got := s.At(i, i); got != white {
			t.Fatalf("At(%d,%d) = %v, want white", i, i, got)
		}
	}
	if got := s.At(9, 0); got.R != 0 {
		t.Fatalf("off-line pixel = %v", got)
	}
}

func TestStrokeLineHairlineBlends(t *testing.T) {
	s := newSurface(t, 10, 2)
	s.StrokeLine(0, 0, 9, 0, 0.5, white)
	got := s.At(5, 0)
	if got.R < 100 || got.R > 150 {
		t.Fatalf("half-alpha line = %v, want roughly mid grey", got)
	}

	s.StrokeLine(0, 1, 9, 1, 0, white)
	if got := s.At(5, 1); got.R != 0 {
		t.Fatalf("zero-width line drew %v", got)
	}
}

func TestStrokeLineClipsOffscreen(t *testing.T) {
	s := newSurface(t, 5, 5)
	s.StrokeLine(-10, 2, 20, 2, 1, white)
	for x := 0; x < 5; x++ {
		if got := s.At(x, 2); got != white {
			t.Fatalf("At(%d,2) = %v, want white", x, got)
		}
	}
}
