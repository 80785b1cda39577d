package dots

import (
	"fmt"
	"image/color"

	"dotfield/hal"
	"dotfield/kernel"
	"dotfield/particles"
	"dotfield/raster"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultFPS is the target frame rate of the backdrop.
const DefaultFPS = 30

// ProfileCustom selects Options.Custom instead of a built-in profile.
const ProfileCustom = "custom"

// Options configures a mounted backdrop.
type Options struct {
	// Profile is "auto", "compact", "full" or "custom".
	Profile string
	Custom  particles.Profile

	Mode      particles.IterationMode
	Seed      int64
	Color     color.RGBA
	LineWidth float64
	FPS       int
	HUD       bool

	Logger *zap.Logger
}

// Component is one mounted instance of the dot backdrop.
//
// All methods must be called from the kernel's goroutine.
type Component struct {
	id  string
	log *zap.Logger

	surf  *raster.Surface
	field *particles.Field
	hud   *hud

	timer   *kernel.Timer
	pointer *kernel.Listener

	stats   particles.Stats
	mounted bool
}

// Mount creates the backdrop on d and starts animating it on k.
//
// If the display has no usable framebuffer the component stays unmounted and
// does nothing; the backdrop is decorative, so this is not an error.
func Mount(k *kernel.Kernel, d hal.Display, in hal.Input, opts Options) *Component {
	c := &Component{
		id:  uuid.NewString(),
		log: opts.Logger,
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	c.log = c.log.With(zap.String("component", "dots"), zap.String("id", c.id))

	if d == nil {
		c.log.Debug("no display")
		return c
	}
	surf, ok := raster.New(d.Framebuffer())
	if !ok {
		c.log.Debug("no drawable framebuffer")
		return c
	}

	w, h := surf.Size()
	profile, err := resolveProfile(opts, w)
	if err != nil {
		c.log.Warn("backdrop disabled", zap.Error(err))
		return c
	}
	field, err := particles.NewField(w, h, particles.Config{
		Profile:   profile,
		Mode:      opts.Mode,
		Seed:      opts.Seed,
		Color:     opts.Color,
		LineWidth: opts.LineWidth,
	})
	if err != nil {
		c.log.Warn("backdrop disabled", zap.Error(err))
		return c
	}

	c.surf = surf
	c.field = field
	c.hud = newHUD(surf, opts.HUD)

	fps := opts.FPS
	if fps <= 0 {
		fps = DefaultFPS
	}
	c.timer = k.Every(uint64(1000/fps), c.tick)
	if in != nil {
		if p := in.Pointer(); p != nil {
			c.pointer = kernel.Listen(k, p.Events(), c.onPointer)
		}
	}
	c.mounted = true

	c.log.Info("mounted",
		zap.String("profile", profile.Name),
		zap.Int("count", profile.Count),
		zap.Int("width", w),
		zap.Int("height", h),
		zap.Int("fps", fps),
		zap.Stringer("iterate", opts.Mode),
	)
	return c
}

func resolveProfile(opts Options, width int) (particles.Profile, error) {
	if opts.Profile == ProfileCustom {
		p := opts.Custom
		if p.Name == "" {
			p.Name = ProfileCustom
		}
		if err := p.Validate(); err != nil {
			return particles.Profile{}, fmt.Errorf("custom profile: %w", err)
		}
		return p, nil
	}
	return particles.ProfileByName(opts.Profile, width)
}

// Unmount stops the animation and clears the surface. It is idempotent.
func (c *Component) Unmount() {
	if !c.mounted {
		return
	}
	c.mounted = false
	c.timer.Stop()
	c.pointer.Remove()
	c.surf.Clear()
	_ = c.surf.Present()
	c.log.Info("unmounted", zap.Uint64("ticks", c.stats.Tick))
}

func (c *Component) ID() string               { return c.id }
func (c *Component) Mounted() bool            { return c.mounted }
func (c *Component) Stats() particles.Stats   { return c.stats }
func (c *Component) Field() *particles.Field  { return c.field }
func (c *Component) Surface() *raster.Surface { return c.surf }

// HUD reports whether the overlay is drawn.
func (c *Component) HUD() bool { return c.hud != nil && c.hud.enabled }

// SetHUD toggles the overlay; it shows up on the next tick.
func (c *Component) SetHUD(on bool) {
	if c.hud != nil {
		c.hud.enabled = on
	}
}

func (c *Component) tick(uint64) {
	if !c.mounted {
		return
	}
	c.stats = c.field.Tick(c.surf)
	c.hud.draw(c.field, c.stats)
	_ = c.surf.Present()
}

func (c *Component) onPointer(ev hal.PointerEvent) {
	if !c.mounted {
		return
	}
	c.field.SetCursor(float64(ev.X), float64(ev.Y))
}
