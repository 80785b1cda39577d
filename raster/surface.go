// Package raster draws particles and links into an RGB565 framebuffer.
//
// The surface is software-only and allocation-free in the draw path. Coordinates are
// in pixels; anything outside the framebuffer is clipped.
package raster

import (
	"image/color"
	"math"

	"dotfield/hal"
)

// Surface renders into a hal.Framebuffer.
type Surface struct {
	fb     hal.Framebuffer
	buf    []byte
	stride int
	w      int
	h      int

	// Background is the Clear color.
	Background color.RGBA
}

// New wraps fb. It reports false when fb cannot be drawn into.
func New(fb hal.Framebuffer) (*Surface, bool) {
	if fb == nil || fb.Format() != hal.PixelFormatRGB565 {
		return nil, false
	}
	buf := fb.Buffer()
	w, h, stride := fb.Width(), fb.Height(), fb.StrideBytes()
	if buf == nil || w <= 0 || h <= 0 || stride < w*2 || len(buf) < stride*h {
		return nil, false
	}
	return &Surface{
		fb:         fb,
		buf:        buf,
		stride:     stride,
		w:          w,
		h:          h,
		Background: color.RGBA{A: 0xFF},
	}, true
}

func (s *Surface) Size() (w, h int) { return s.w, s.h }

// Framebuffer returns the wrapped framebuffer.
func (s *Surface) Framebuffer() hal.Framebuffer { return s.fb }

func (s *Surface) Clear() {
	s.fb.ClearRGB(s.Background.R, s.Background.G, s.Background.B)
}

// Present publishes the frame.
func (s *Surface) Present() error { return s.fb.Present() }

// At returns the pixel at x, y, or transparent black outside the surface.
func (s *Surface) At(x, y int) color.RGBA {
	if x < 0 || y < 0 || x >= s.w || y >= s.h {
		return color.RGBA{}
	}
	return hal.ColorAt(s.buf, s.stride, x, y)
}

// SetPixel writes an opaque pixel.
func (s *Surface) SetPixel(x, y int, c color.RGBA) {
	if x < 0 || y < 0 || x >= s.w || y >= s.h {
		return
	}
	s.put(x, y, hal.RGB565(c.R, c.G, c.B))
}

// BlendPixel mixes c over the existing pixel with the given coverage in [0, 1].
func (s *Surface) BlendPixel(x, y int, c color.RGBA, alpha float64) {
	if alpha <= 0 || x < 0 || y < 0 || x >= s.w || y >= s.h {
		return
	}
	if alpha >= 1 {
		s.put(x, y, hal.RGB565(c.R, c.G, c.B))
		return
	}
	dst := s.At(x, y)
	s.put(x, y, hal.RGB565(mix(dst.R, c.R, alpha), mix(dst.G, c.G, alpha), mix(dst.B, c.B, alpha)))
}

func (s *Surface) put(x, y int, p uint16) {
	off := y*s.stride + x*2
	s.buf[off] = byte(p)
	s.buf[off+1] = byte(p >> 8)
}

// FillCircle draws a disc. Discs smaller than a pixel are drawn as one pixel
// whose coverage is the disc area.
func (s *Surface) FillCircle(cx, cy, r float64, c color.RGBA) {
	if r <= 0 || math.IsNaN(cx) || math.IsNaN(cy) {
		return
	}
	if r < 1 {
		s.BlendPixel(int(math.Floor(cx)), int(math.Floor(cy)), c, math.Min(1, math.Pi*r*r))
		return
	}

	x0 := int(math.Floor(cx - r))
	x1 := int(math.Ceil(cx + r))
	y0 := int(math.Floor(cy - r))
	y1 := int(math.Ceil(cy + r))
	r2 := r * r
	hit := false
	for y := max(y0, 0); y <= min(y1, s.h-1); y++ {
		dy := float64(y) + 0.5 - cy
		for x := max(x0, 0); x <= min(x1, s.w-1); x++ {
			dx := float64(x) + 0.5 - cx
			if dx*dx+dy*dy > r2 {
				continue
			}
			s.SetPixel(x, y, c)
			hit = true
		}
	}
	if !hit {
		s.SetPixel(int(math.Floor(cx)), int(math.Floor(cy)), c)
	}
}

// StrokeLine draws a one-pixel Bresenham line. Widths below one pixel blend
// the line with alpha equal to the width.
func (s *Surface) StrokeLine(fx0, fy0, fx1, fy1, width float64, c color.RGBA) {
	alpha := math.Min(1, width)
	if alpha <= 0 {
		return
	}
	x0, y0 := int(math.Floor(fx0)), int(math.Floor(fy0))
	x1, y1 := int(math.Floor(fx1)), int(math.Floor(fy1))

	dx := absInt(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -absInt(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		s.BlendPixel(x0, y0, c, alpha)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func mix(dst, src uint8, a float64) uint8 {
	v := float64(dst)*(1-a) + float64(src)*a
	return uint8(math.Round(math.Max(0, math.Min(255, v))))
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
