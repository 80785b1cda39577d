package app

import (
	"fmt"
	"image/color"
	"runtime/debug"
	"strings"
	"unicode/utf8"

	"dotfield/raster"

	"go.uber.org/zap"
	"tinygo.org/x/tinyfont"
)

// guard turns a panic inside step into an error and paints it on the display.
// Once a step has panicked every later call returns the same error.
func (a *App) guard(step func() error) func() error {
	var failed error
	return func() (err error) {
		if failed != nil {
			return failed
		}
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			stack := debug.Stack()
			a.log.Error("panic", zap.Any("value", r), zap.ByteString("stack", stack))
			a.panicScreen(r, stack)
			failed = fmt.Errorf("app panic: %v", r)
			err = failed
		}()
		return step()
	}
}

func (a *App) panicScreen(value any, stack []byte) {
	if a.h == nil {
		return
	}
	disp := a.h.Display()
	if disp == nil {
		return
	}
	surf, ok := raster.New(disp.Framebuffer())
	if !ok {
		return
	}
	surf.Background = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	surf.Clear()

	font := &tinyfont.TomThumb
	const lineHeight = 7
	_, glyph := tinyfont.LineWidth(font, "0")
	w, h := surf.Size()
	cols := int16(1)
	if glyph > 0 {
		cols = int16(w) / int16(glyph)
	}

	lines := []string{"panic:", fmt.Sprint(value)}
	for _, line := range strings.Split(string(stack), "\n") {
		if line != "" {
			lines = append(lines, strings.ReplaceAll(line, "\t", "  "))
		}
	}

	d := panicDisplay{s: surf}
	fg := color.RGBA{A: 0xFF}
	y := int16(lineHeight)
	for _, line := range lines {
		for len(line) > 0 && int(y) < h {
			chunk, rest := takeRunes(line, cols)
			tinyfont.WriteLine(d, font, 0, y, chunk, fg)
			y += lineHeight
			line = strings.TrimLeft(rest, " ")
		}
	}
	_ = surf.Present()
}

type panicDisplay struct {
	s *raster.Surface
}

func (d panicDisplay) Size() (x, y int16) {
	w, h := d.s.Size()
	return int16(w), int16(h)
}

func (d panicDisplay) SetPixel(x, y int16, c color.RGBA) { d.s.SetPixel(int(x), int(y), c) }

func (d panicDisplay) Display() error { return nil }

func takeRunes(s string, n int16) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	if int64(len(s)) <= int64(n) {
		return s, ""
	}
	var i int
	var count int16
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		if size <= 0 {
			break
		}
		i += size
		count++
	}
	if i >= len(s) {
		return s, ""
	}
	return s[:i], s[i:]
}
