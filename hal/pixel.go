package hal

import "image/color"

// RGB565 packs 8-bit channels into a 16bpp pixel.
func RGB565(r, g, b uint8) uint16 {
	rr := uint16(r>>3) & 0x1F
	gg := uint16(g>>2) & 0x3F
	bb := uint16(b>>3) & 0x1F
	return (rr << 11) | (gg << 5) | bb
}

// RGB888From565 expands a 16bpp pixel to 8-bit channels.
func RGB888From565(p uint16) (r, g, b uint8) {
	rr := (p >> 11) & 0x1F
	gg := (p >> 5) & 0x3F
	bb := p & 0x1F

	r = uint8((rr * 255) / 31)
	g = uint8((gg * 255) / 63)
	b = uint8((bb * 255) / 31)
	return r, g, b
}

// PixelAt reads an RGB565 pixel from a little-endian buffer.
func PixelAt(buf []byte, stride, x, y int) (uint16, bool) {
	off := y*stride + x*2
	if x < 0 || y < 0 || off < 0 || off+1 >= len(buf) {
		return 0, false
	}
	return uint16(buf[off]) | uint16(buf[off+1])<<8, true
}

// ColorAt reads a pixel as opaque RGBA.
func ColorAt(buf []byte, stride, x, y int) color.RGBA {
	p, ok := PixelAt(buf, stride, x, y)
	if !ok {
		return color.RGBA{}
	}
	r, g, b := RGB888From565(p)
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}
}
