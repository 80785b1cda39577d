package hal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestRunHeadlessStopsAfterTicks(t *testing.T) {
	defer goleak.VerifyNone(t)

	steps := 0
	h, err := RunHeadless(context.Background(), func(HAL) func() error {
		return func() error {
			steps++
			return nil
		}
	}, HeadlessConfig{Options: Options{Width: 32, Height: 16}, Hz: 1000, Ticks: 5, StepBudget: 2})
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, 10, steps)
	assert.Equal(t, 32, h.fb.Width())
}

func TestRunHeadlessQuit(t *testing.T) {
	defer goleak.VerifyNone(t)

	steps := 0
	_, err := RunHeadless(context.Background(), func(HAL) func() error {
		return func() error {
			steps++
			if steps == 3 {
				return ErrQuit
			}
			return nil
		}
	}, HeadlessConfig{Hz: 1000})
	require.NoError(t, err)
	assert.Equal(t, 3, steps)
}

func TestRunHeadlessPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	_, err := RunHeadless(context.Background(), func(HAL) func() error {
		return func() error { return boom }
	}, HeadlessConfig{Hz: 1000})
	assert.ErrorIs(t, err, boom)
}

func TestRunHeadlessContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := RunHeadless(ctx, func(HAL) func() error { return nil }, HeadlessConfig{Hz: 1000})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRunHeadlessOrbitMovesPointer(t *testing.T) {
	var events <-chan PointerEvent
	_, err := RunHeadless(context.Background(), func(h HAL) func() error {
		events = h.Input().Pointer().Events()
		return nil
	}, HeadlessConfig{Options: Options{Width: 100, Height: 100}, Hz: 1000, Ticks: 3, Orbit: true})
	require.NoError(t, err)
	assert.Greater(t, len(events), 0)
}

func TestRunTerminalSimulation(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(20, 6)

	var (
		width, height int
		pointer       []PointerEvent
	)
	newApp := func(h HAL) func() error {
		fb := h.Display().Framebuffer()
		width, height = fb.Width(), fb.Height()
		keys := h.Input().Keyboard().Events()
		ptr := h.Input().Pointer().Events()
		return func() error {
			quit := false
		drainKeys:
			for {
				select {
				case ev := <-keys:
					quit = quit || ev.Code == KeyEscape
				default:
					break drainKeys
				}
			}
		drainPointer:
			for {
				select {
				case ev := <-ptr:
					pointer = append(pointer, ev)
				default:
					break drainPointer
				}
			}
			if quit {
				return ErrQuit
			}
			fb.ClearRGB(255, 0, 0)
			return fb.Present()
		}
	}

	screen.InjectMouse(3, 2, tcell.ButtonNone, tcell.ModNone)

	done := make(chan error, 1)
	go func() {
		done <- RunTerminal(context.Background(), newApp, TerminalConfig{Screen: screen, Hz: 200})
	}()

	var runErr error
	require.Eventually(t, func() bool {
		screen.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)
		select {
		case runErr = <-done:
			return true
		default:
			return false
		}
	}, 2*time.Second, 20*time.Millisecond)
	require.NoError(t, runErr)

	assert.Equal(t, 20, width)
	assert.Equal(t, 12, height)
	assert.Contains(t, pointer, PointerEvent{X: 3, Y: 4})
}

func TestTranslateKey(t *testing.T) {
	ev, ok := translateKey(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl))
	require.True(t, ok)
	assert.Equal(t, KeyEscape, ev.Code)

	ev, ok = translateKey(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone))
	require.True(t, ok)
	assert.Equal(t, 'x', ev.Rune)

	_, ok = translateKey(tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone))
	assert.False(t, ok)
}
