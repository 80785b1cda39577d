package hal

import (
	"time"

	"github.com/benbjohnson/clock"
)

const tickDur = time.Millisecond

type hostTime struct {
	clk clock.Clock
	ch  chan uint64
	seq uint64

	last time.Time
	acc  time.Duration
}

func newHostTime(clk clock.Clock) *hostTime {
	if clk == nil {
		clk = clock.New()
	}
	return &hostTime{clk: clk, ch: make(chan uint64, 1024)}
}

func (t *hostTime) Ticks() <-chan uint64 { return t.ch }

// step converts host time elapsed since the previous call into ticks.
// The first call emits n ticks so consumers see time start moving immediately.
func (t *hostTime) step(n uint64) {
	now := t.clk.Now()
	if t.last.IsZero() {
		t.last = now
		t.acc = 0
		t.stepN(n)
		return
	}

	t.acc += now.Sub(t.last)
	t.last = now

	ticks := uint64(t.acc / tickDur)
	if ticks == 0 {
		return
	}
	t.acc = t.acc % tickDur
	t.stepN(ticks)
}

func (t *hostTime) stepN(n uint64) {
	for i := uint64(0); i < n; i++ {
		t.seq++
		select {
		case t.ch <- t.seq:
		default:
			// Consumers only need the latest value; drop the oldest to make room.
			select {
			case <-t.ch:
			default:
			}
			select {
			case t.ch <- t.seq:
			default:
			}
		}
	}
}

func (t *hostTime) now() uint64 { return t.seq }
