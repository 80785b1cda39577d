package dots

import (
	"fmt"
	"image/color"

	"dotfield/particles"
	"dotfield/raster"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

var (
	hudColor      = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	hudBackground = color.RGBA{A: 0xFF}
)

// hud draws a one-line status overlay in the top-left corner.
type hud struct {
	d       *surfaceDisplayer
	font    tinyfont.Fonter
	enabled bool
	line    string
}

func newHUD(s *raster.Surface, enabled bool) *hud {
	return &hud{
		d:       &surfaceDisplayer{s: s},
		font:    &tinyfont.TomThumb,
		enabled: enabled,
	}
}

func (h *hud) draw(f *particles.Field, st particles.Stats) {
	if h == nil || !h.enabled {
		return
	}
	p := f.Profile()
	h.line = fmt.Sprintf("%s %d dots %d links %s", p.Name, st.Dots, st.Links, f.Mode())
	_, outbox := tinyfont.LineWidth(h.font, h.line)
	h.d.fillRect(0, 0, int(outbox)+4, 9, hudBackground)
	tinyfont.WriteLine(h.d, h.font, 2, 7, h.line, hudColor)
}

// surfaceDisplayer adapts raster.Surface to the tinyfont display interface.
type surfaceDisplayer struct {
	s *raster.Surface
}

var _ drivers.Displayer = (*surfaceDisplayer)(nil)

func (d *surfaceDisplayer) Size() (x, y int16) {
	w, h := d.s.Size()
	return int16(w), int16(h)
}

func (d *surfaceDisplayer) SetPixel(x, y int16, c color.RGBA) {
	d.s.SetPixel(int(x), int(y), c)
}

func (d *surfaceDisplayer) Display() error { return nil }

func (d *surfaceDisplayer) fillRect(x, y, w, h int, c color.RGBA) {
	for py := y; py < y+h; py++ {
		for px := x; px < x+w; px++ {
			d.s.SetPixel(px, py, c)
		}
	}
}
