package hal

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Options

	Hz         int
	Ticks      uint64
	StepBudget int

	// Orbit moves a synthetic pointer in a circle around the framebuffer centre.
	Orbit bool
}

// RunHeadless runs the app without opening a window.
//
// It returns the host so callers can inspect or snapshot the final frame. A step
// returning ErrQuit ends the run without error.
func RunHeadless(ctx context.Context, newApp func(HAL) func() error, cfg HeadlessConfig) (*Host, error) {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	if cfg.StepBudget <= 0 {
		cfg.StepBudget = 1
	}

	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return nil, fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}

	h := New(cfg.Options)
	step := newApp(h)

	h.log.Debug("headless run",
		zap.Int("hz", cfg.Hz),
		zap.Uint64("ticks", cfg.Ticks),
		zap.Int("width", h.fb.width),
		zap.Int("height", h.fb.height),
	)

	t := time.NewTicker(d)
	defer t.Stop()

	var tick uint64
	for {
		select {
		case <-ctx.Done():
			return h, ctx.Err()
		case <-t.C:
			h.Step()
			if cfg.Orbit {
				x, y := orbit(h.fb.width, h.fb.height, tick)
				h.MovePointer(x, y)
			}
			if step != nil {
				for i := 0; i < cfg.StepBudget; i++ {
					if err := step(); err != nil {
						if errors.Is(err, ErrQuit) {
							return h, nil
						}
						return h, err
					}
				}
			}
			tick++
			if cfg.Ticks > 0 && tick >= cfg.Ticks {
				return h, nil
			}
		}
	}
}

func orbit(w, h int, tick uint64) (x, y int) {
	r := float64(min(w, h)) / 4
	a := float64(tick) * 0.05
	return w/2 + int(r*math.Cos(a)), h/2 + int(r*math.Sin(a))
}
