package particles

import "image/color"

// Surface is an immediate-mode 2D drawing target.
//
// Implementations should clip out-of-bounds coordinates.
type Surface interface {
	Size() (w, h int)
	Clear()
	FillCircle(x, y, r float64, c color.RGBA)
	StrokeLine(x0, y0, x1, y1, width float64, c color.RGBA)
}
