package particles

import (
	"fmt"
	"image/color"
	"math"
	"math/rand"
	"time"
)

// Accent is the default fill and stroke color (#ff7155).
var Accent = color.RGBA{R: 0xFF, G: 0x71, B: 0x55, A: 0xFF}

// DefaultLineWidth matches a hairline stroke; the raster backend maps it to alpha.
const DefaultLineWidth = 0.1

// IterationMode selects how the link pass is rooted.
type IterationMode uint8

const (
	// IterateAll checks every unordered pair each tick.
	IterateAll IterationMode = iota
	// IterateOne only checks pairs rooted at the first particle.
	IterateOne
)

func (m IterationMode) String() string {
	switch m {
	case IterateAll:
		return "all"
	case IterateOne:
		return "one"
	default:
		return "unknown"
	}
}

// ParseIterationMode parses "all" or "one".
func ParseIterationMode(s string) (IterationMode, error) {
	switch s {
	case "", "all":
		return IterateAll, nil
	case "one":
		return IterateOne, nil
	default:
		return IterateAll, fmt.Errorf("unknown iteration mode %q", s)
	}
}

// Config controls a Field.
type Config struct {
	Profile   Profile
	Mode      IterationMode
	Seed      int64 // 0 seeds from the wall clock
	Color     color.RGBA
	LineWidth float64
}

// Particle is a single animated dot.
type Particle struct {
	X, Y   float64
	VX, VY float64
	Radius float64
}

// Stats describes one tick.
type Stats struct {
	Tick  uint64
	Dots  int
	Links int
}

// Field is the particle set plus the cursor it reacts to.
//
// A Field is not safe for concurrent use.
type Field struct {
	w, h float64
	cfg  Config
	rng  *rand.Rand

	particles []Particle

	cursorX float64
	cursorY float64

	tick uint64
}

// NewField creates a field for a w×h surface. Particles are created on the first Tick.
func NewField(w, h int, cfg Config) (*Field, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid surface size %dx%d", w, h)
	}
	if err := cfg.Profile.Validate(); err != nil {
		return nil, err
	}
	if cfg.Color == (color.RGBA{}) {
		cfg.Color = Accent
	}
	if cfg.LineWidth <= 0 {
		cfg.LineWidth = DefaultLineWidth
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Field{
		w:       float64(w),
		h:       float64(h),
		cfg:     cfg,
		rng:     rand.New(rand.NewSource(seed)),
		cursorX: float64(w) / 2,
		cursorY: float64(h) / 2,
	}, nil
}

func (f *Field) Size() (w, h int)        { return int(f.w), int(f.h) }
func (f *Field) Profile() Profile        { return f.cfg.Profile }
func (f *Field) Mode() IterationMode     { return f.cfg.Mode }
func (f *Field) SetMode(m IterationMode) { f.cfg.Mode = m }
func (f *Field) Cursor() (x, y float64)  { return f.cursorX, f.cursorY }
func (f *Field) SetCursor(x, y float64)  { f.cursorX, f.cursorY = x, y }
func (f *Field) Len() int                { return len(f.particles) }
func (f *Field) Ticks() uint64           { return f.tick }
func (f *Field) Populated() bool         { return f.particles != nil }

// Particles returns a copy of the current particle set.
func (f *Field) Particles() []Particle {
	out := make([]Particle, len(f.particles))
	copy(out, f.particles)
	return out
}

// Populate creates the particle set if it does not exist yet.
func (f *Field) Populate() {
	if f.particles != nil {
		return
	}
	p := f.cfg.Profile
	f.particles = make([]Particle, p.Count)
	for i := range f.particles {
		d := &f.particles[i]
		d.X = f.rng.Float64() * f.w
		d.Y = f.rng.Float64() * f.h
		d.VX = -0.5 + f.rng.Float64()
		d.VY = -0.5 + f.rng.Float64()
		if p.fixedRadius() {
			d.Radius = p.RadiusMin
		} else {
			d.Radius = p.RadiusMin + f.rng.Float64()*(p.RadiusMax-p.RadiusMin)
		}
	}
}

// Reset drops the particle set and recentres the cursor. The next Tick repopulates.
func (f *Field) Reset() {
	f.particles = nil
	f.cursorX = f.w / 2
	f.cursorY = f.h / 2
	f.tick = 0
}

// Tick redraws the field on s and advances it by one step.
func (f *Field) Tick(s Surface) Stats {
	f.Populate()

	var st Stats
	if s != nil {
		s.Clear()
		for i := range f.particles {
			d := &f.particles[i]
			s.FillCircle(d.X, d.Y, d.Radius, f.cfg.Color)
		}
		st.Dots = len(f.particles)
		st.Links = f.link(s)
	}
	f.move()

	f.tick++
	st.Tick = f.tick
	return st
}

func (f *Field) link(s Surface) int {
	roots := len(f.particles)
	if f.cfg.Mode == IterateOne && roots > 1 {
		roots = 1
	}

	links := 0
	for i := 0; i < roots; i++ {
		a := &f.particles[i]
		if !f.nearCursor(a) {
			continue
		}
		for j := i + 1; j < len(f.particles); j++ {
			b := &f.particles[j]
			if !f.linked(a, b) || !f.nearCursor(b) {
				continue
			}
			s.StrokeLine(a.X, a.Y, b.X, b.Y, f.cfg.LineWidth, f.cfg.Color)
			links++
		}
	}
	return links
}

func (f *Field) linked(a, b *Particle) bool {
	d := f.cfg.Profile.LinkDistance
	return math.Abs(a.X-b.X) < d && math.Abs(a.Y-b.Y) < d
}

func (f *Field) nearCursor(p *Particle) bool {
	r := f.cfg.Profile.CursorRadius
	return math.Abs(p.X-f.cursorX) < r && math.Abs(p.Y-f.cursorY) < r
}

func (f *Field) move() {
	for i := range f.particles {
		d := &f.particles[i]
		d.VX = reflect(d.X, d.VX, f.w)
		d.VY = reflect(d.Y, d.VY, f.h)
		d.X += d.VX
		d.Y += d.VY
	}
}

// reflect negates v when pos sits on or beyond an edge of [0, limit] and v points outward.
// Velocities already pointing back inside are left alone so a particle cannot stick to an edge.
func reflect(pos, v, limit float64) float64 {
	if (pos <= 0 && v < 0) || (pos >= limit && v > 0) {
		return -v
	}
	return v
}
