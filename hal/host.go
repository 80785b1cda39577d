package hal

import (
	"image"
	"io"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// Default host framebuffer size.
const (
	DefaultWidth  = 1024
	DefaultHeight = 768
)

// Options configures a host HAL.
type Options struct {
	Width  int
	Height int
	Logger *zap.Logger
	Clock  clock.Clock
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Clock == nil {
		o.Clock = clock.New()
	}
	return o
}

// Host is the desktop HAL implementation shared by the window, terminal, and headless runners.
type Host struct {
	log *zap.Logger
	fb  *hostFramebuffer
	kbd *hostKeyboard
	ptr *hostPointer
	t   *hostTime
}

// New returns a host HAL implementation.
func New(opts Options) *Host {
	opts = opts.withDefaults()
	return &Host{
		log: opts.Logger,
		fb:  newHostFramebuffer(opts.Width, opts.Height),
		kbd: newHostKeyboard(),
		ptr: newHostPointer(),
		t:   newHostTime(opts.Clock),
	}
}

func (h *Host) Logger() *zap.Logger { return h.log }
func (h *Host) Display() Display    { return hostDisplay{fb: h.fb} }
func (h *Host) Input() Input        { return hostInput{kbd: h.kbd, ptr: h.ptr} }
func (h *Host) Time() Time          { return h.t }

// Step advances host time; runners call it once per host frame before the app step.
func (h *Host) Step() { h.t.step(1) }

// Now returns the last emitted tick.
func (h *Host) Now() uint64 { return h.t.now() }

// MovePointer injects a pointer event as if the user moved the pointer.
func (h *Host) MovePointer(x, y int) { h.ptr.move(x, y) }

// PressKey injects a key press.
func (h *Host) PressKey(code KeyCode, r rune) { h.kbd.emit(KeyEvent{Code: code, Press: true, Rune: r}) }

// Presents returns how many frames have been presented.
func (h *Host) Presents() uint64 { return h.fb.presentCount() }

// Image returns the last presented frame.
func (h *Host) Image() *image.RGBA { return h.fb.Image() }

// WritePNG encodes the last presented frame as PNG.
func (h *Host) WritePNG(w io.Writer) error { return h.fb.WritePNG(w) }

type hostDisplay struct {
	fb *hostFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

type hostInput struct {
	kbd *hostKeyboard
	ptr *hostPointer
}

func (in hostInput) Keyboard() Keyboard { return in.kbd }
func (in hostInput) Pointer() Pointer   { return in.ptr }

type hostKeyboard struct {
	ch chan KeyEvent
}

func newHostKeyboard() *hostKeyboard {
	return &hostKeyboard{ch: make(chan KeyEvent, 64)}
}

func (k *hostKeyboard) Events() <-chan KeyEvent { return k.ch }

func (k *hostKeyboard) emit(ev KeyEvent) {
	select {
	case k.ch <- ev:
	default:
	}
}

type hostPointer struct {
	ch      chan PointerEvent
	lastX   int
	lastY   int
	hasLast bool
}

func newHostPointer() *hostPointer {
	return &hostPointer{ch: make(chan PointerEvent, 64)}
}

func (p *hostPointer) Events() <-chan PointerEvent { return p.ch }

// move emits an event when the position changed. Full queues drop the event;
// the next move carries a fresher position anyway.
func (p *hostPointer) move(x, y int) {
	if p.hasLast && p.lastX == x && p.lastY == y {
		return
	}
	p.lastX, p.lastY, p.hasLast = x, y, true
	select {
	case p.ch <- PointerEvent{X: x, Y: y}:
	default:
	}
}
