// Package app wires the dot backdrop to a HAL.
//
// Hosts call the returned step function once per frame on their own goroutine.
// Each step drains the HAL tick stream, advances the kernel, and reports
// hal.ErrQuit when the user asked to leave.
package app

import (
	"dotfield/hal"
	"dotfield/kernel"
	"dotfield/particles"
	"dotfield/tasks/dots"

	"go.uber.org/zap"
)

// Config selects how the backdrop is mounted.
type Config struct {
	Dots dots.Options
}

// App owns the kernel and the currently mounted backdrop.
type App struct {
	h   hal.HAL
	log *zap.Logger
	cfg Config

	k     *kernel.Kernel
	ticks <-chan uint64
	dots  *dots.Component
	quit  bool
}

// New initializes the app with default config.
func New(h hal.HAL) func() error {
	return NewWithConfig(h, Config{})
}

// NewWithConfig initializes the app and returns its step function.
func NewWithConfig(h hal.HAL, cfg Config) func() error {
	a := newApp(h, cfg)
	return a.guard(a.Step)
}

func newApp(h hal.HAL, cfg Config) *App {
	a := &App{h: h, cfg: cfg, k: kernel.New()}
	if h != nil {
		a.log = h.Logger()
	}
	if a.log == nil {
		a.log = zap.NewNop()
	}
	if a.cfg.Dots.Logger == nil {
		a.cfg.Dots.Logger = a.log
	}

	if h != nil {
		if ht := h.Time(); ht != nil {
			a.ticks = ht.Ticks()
		}
		if in := h.Input(); in != nil {
			if kb := in.Keyboard(); kb != nil {
				kernel.Listen(a.k, kb.Events(), a.handleKey)
			}
		}
	}
	a.mount()
	return a
}

// Step advances the app to the latest host tick.
func (a *App) Step() error {
	now := a.k.Now()
drain:
	for {
		select {
		case seq, ok := <-a.ticks:
			if !ok {
				a.ticks = nil
				break drain
			}
			now = seq
		default:
			break drain
		}
	}
	a.k.Step(now)

	if a.quit {
		a.unmount()
		return hal.ErrQuit
	}
	return nil
}

// Dots returns the mounted backdrop, or nil while it is unmounted.
func (a *App) Dots() *dots.Component { return a.dots }

func (a *App) handleKey(ev hal.KeyEvent) {
	if !ev.Press {
		return
	}
	switch ev.Code {
	case hal.KeyEscape:
		a.log.Info("quit requested")
		a.quit = true
	case hal.KeyEnter:
		if a.dots != nil {
			a.unmount()
		} else {
			a.mount()
		}
	case hal.KeyF1:
		a.cfg.Dots.HUD = !a.cfg.Dots.HUD
		if a.dots != nil {
			a.dots.SetHUD(a.cfg.Dots.HUD)
		}
	case hal.KeyF2:
		if a.cfg.Dots.Mode == particles.IterateAll {
			a.cfg.Dots.Mode = particles.IterateOne
		} else {
			a.cfg.Dots.Mode = particles.IterateAll
		}
		if a.dots != nil {
			a.dots.Field().SetMode(a.cfg.Dots.Mode)
		}
		a.log.Debug("iteration mode", zap.Stringer("mode", a.cfg.Dots.Mode))
	}
}

func (a *App) mount() {
	if a.h == nil {
		return
	}
	c := dots.Mount(a.k, a.h.Display(), a.h.Input(), a.cfg.Dots)
	if !c.Mounted() {
		return
	}
	a.dots = c
}

func (a *App) unmount() {
	if a.dots == nil {
		return
	}
	a.dots.Unmount()
	a.dots = nil
}
