package app

import (
	"errors"
	"testing"
	"time"

	"dotfield/hal"
	"dotfield/particles"
	"dotfield/tasks/dots"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type rig struct {
	clk  *clock.Mock
	host *hal.Host
	app  *App
}

func newRig(t *testing.T, cfg Config) *rig {
	t.Helper()
	clk := clock.NewMock()
	host := hal.New(hal.Options{Width: 320, Height: 240, Clock: clk})
	if cfg.Dots.Seed == 0 {
		cfg.Dots.Seed = 7
	}
	return &rig{clk: clk, host: host, app: newApp(host, cfg)}
}

// frame advances host time by one backdrop frame and runs one app step.
func (r *rig) frame() error {
	r.clk.Add(time.Second / dots.DefaultFPS)
	r.host.Step()
	return r.app.Step()
}

func TestStepAnimates(t *testing.T) {
	r := newRig(t, Config{})
	require.NotNil(t, r.app.Dots())

	for i := 0; i < 10; i++ {
		require.NoError(t, r.frame())
	}
	assert.Greater(t, r.app.Dots().Stats().Tick, uint64(5))
	assert.Equal(t, 150, r.app.Dots().Stats().Dots)
	assert.Greater(t, r.host.Presents(), uint64(5))
}

func TestStepUsesLatestTick(t *testing.T) {
	r := newRig(t, Config{})
	r.clk.Add(500 * time.Millisecond)
	r.host.Step()
	r.clk.Add(500 * time.Millisecond)
	r.host.Step()
	require.NoError(t, r.app.Step())

	assert.Equal(t, r.host.Now(), r.app.k.Now())
	assert.Equal(t, uint64(1), r.app.Dots().Stats().Tick, "missed frames are not replayed")
}

func TestEscapeQuits(t *testing.T) {
	r := newRig(t, Config{})
	require.NoError(t, r.frame())
	component := r.app.Dots()

	r.host.PressKey(hal.KeyEscape, 0)
	err := r.frame()
	require.ErrorIs(t, err, hal.ErrQuit)
	assert.False(t, component.Mounted())
	assert.Nil(t, r.app.Dots())
}

func TestEnterTogglesMount(t *testing.T) {
	r := newRig(t, Config{})
	first := r.app.Dots()
	require.NotNil(t, first)

	r.host.PressKey(hal.KeyEnter, 0)
	require.NoError(t, r.frame())
	assert.Nil(t, r.app.Dots())
	assert.False(t, first.Mounted())

	timers, listeners := r.app.k.Pending()
	assert.Zero(t, timers)
	assert.Equal(t, 1, listeners, "only the keyboard listener stays")

	r.host.PressKey(hal.KeyEnter, 0)
	require.NoError(t, r.frame())
	second := r.app.Dots()
	require.NotNil(t, second)
	assert.NotEqual(t, first.ID(), second.ID())
	assert.False(t, second.Field().Populated())
}

func TestFunctionKeys(t *testing.T) {
	r := newRig(t, Config{})
	require.False(t, r.app.Dots().HUD())
	require.Equal(t, particles.IterateAll, r.app.Dots().Field().Mode())

	r.host.PressKey(hal.KeyF1, 0)
	r.host.PressKey(hal.KeyF2, 0)
	require.NoError(t, r.frame())
	assert.True(t, r.app.Dots().HUD())
	assert.Equal(t, particles.IterateOne, r.app.Dots().Field().Mode())

	// A remounted backdrop keeps the toggled settings.
	r.host.PressKey(hal.KeyEnter, 0)
	r.host.PressKey(hal.KeyEnter, 0)
	require.NoError(t, r.frame())
	require.NotNil(t, r.app.Dots())
	assert.True(t, r.app.Dots().HUD())
	assert.Equal(t, particles.IterateOne, r.app.Dots().Field().Mode())
}

func TestKeyReleaseIgnored(t *testing.T) {
	r := newRig(t, Config{})
	r.app.handleKey(hal.KeyEvent{Code: hal.KeyEscape})
	assert.False(t, r.app.quit)
}

type bareHAL struct{}

func (bareHAL) Logger() *zap.Logger  { return nil }
func (bareHAL) Display() hal.Display { return nil }
func (bareHAL) Input() hal.Input     { return nil }
func (bareHAL) Time() hal.Time       { return nil }

func TestNoDisplayIsHarmless(t *testing.T) {
	step := NewWithConfig(bareHAL{}, Config{})
	for i := 0; i < 3; i++ {
		require.NoError(t, step())
	}
	require.NoError(t, New(nil)())
}

func TestGuardRecoversPanic(t *testing.T) {
	r := newRig(t, Config{})
	calls := 0
	step := r.app.guard(func() error {
		calls++
		panic("boom")
	})

	err := step()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.True(t, errors.Is(step(), err))
	assert.Equal(t, 1, calls, "a failed app is not stepped again")

	img := r.host.Image()
	white := 0
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] == 0xFF && img.Pix[i+1] == 0xFF && img.Pix[i+2] == 0xFF {
			white++
		}
	}
	assert.Greater(t, white, len(img.Pix)/8, "panic screen background")
}
