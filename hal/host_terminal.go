package hal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TerminalConfig controls the terminal host runner.
type TerminalConfig struct {
	// Logger and Clock are taken from Options; the framebuffer size is derived from the screen.
	Options

	// Hz is the render and step rate.
	Hz int

	// Screen overrides the terminal screen (tests pass a simulation screen).
	// A caller-provided screen must already be initialised.
	Screen tcell.Screen
}

// RunTerminal renders the framebuffer into a terminal, two pixels per cell using
// upper half blocks, and forwards mouse motion as pointer events.
//
// Escape and Ctrl-C quit. The framebuffer is sized to the screen when the run starts.
func RunTerminal(ctx context.Context, newApp func(HAL) func() error, cfg TerminalConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 30
	}

	screen := cfg.Screen
	if screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("terminal: %w", err)
		}
		if err := s.Init(); err != nil {
			return fmt.Errorf("terminal init: %w", err)
		}
		screen = s
	}
	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.HideCursor()

	cols, rows := screen.Size()
	if cols <= 0 || rows <= 0 {
		screen.Fini()
		return fmt.Errorf("terminal: invalid size %dx%d", cols, rows)
	}

	opts := cfg.Options
	opts.Width = cols
	opts.Height = rows * 2
	h := New(opts)
	step := newApp(h)

	h.log.Debug("terminal run", zap.Int("cols", cols), zap.Int("rows", rows))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// PollEvent returns nil once the screen is finalised.
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventMouse:
				x, y := ev.Position()
				h.MovePointer(x, y*2)
			case *tcell.EventKey:
				if kev, ok := translateKey(ev); ok {
					h.kbd.emit(kev)
				}
			}
		}
	})
	g.Go(func() error {
		defer screen.Fini()

		t := time.NewTicker(time.Second / time.Duration(cfg.Hz))
		defer t.Stop()

		var lastPresent uint64
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-t.C:
				h.Step()
				if step != nil {
					if err := step(); err != nil {
						if errors.Is(err, ErrQuit) {
							return nil
						}
						return err
					}
				}
				if n := h.fb.presentCount(); n != lastPresent {
					lastPresent = n
					drawTerminal(screen, h.fb)
				}
			}
		}
	})
	return g.Wait()
}

func translateKey(ev *tcell.EventKey) (KeyEvent, bool) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return KeyEvent{Code: KeyEscape, Press: true}, true
	case tcell.KeyEnter:
		return KeyEvent{Code: KeyEnter, Press: true}, true
	case tcell.KeyF1:
		return KeyEvent{Code: KeyF1, Press: true}, true
	case tcell.KeyF2:
		return KeyEvent{Code: KeyF2, Press: true}, true
	case tcell.KeyRune:
		if ev.Modifiers()&tcell.ModCtrl != 0 && (ev.Rune() == 'c' || ev.Rune() == 'C') {
			return KeyEvent{Code: KeyEscape, Press: true}, true
		}
		return KeyEvent{Press: true, Rune: ev.Rune()}, true
	}
	return KeyEvent{}, false
}

func drawTerminal(screen tcell.Screen, fb *hostFramebuffer) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	rows := fb.height / 2
	for row := 0; row < rows; row++ {
		for x := 0; x < fb.width; x++ {
			top := ColorAt(fb.front, fb.stride, x, row*2)
			bottom := ColorAt(fb.front, fb.stride, x, row*2+1)
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B))).
				Background(tcell.NewRGBColor(int32(bottom.R), int32(bottom.G), int32(bottom.B)))
			screen.SetContent(x, row, '▀', nil, style)
		}
	}
	screen.Show()
}
