// Package kernel is a single-threaded cooperative event loop.
//
// Timers and listeners only run inside Step, on the goroutine that calls it. Hosts
// call Step once per frame with the current HAL tick, so callbacks never overlap
// and state shared between them needs no locking.
package kernel

// maxDrain bounds how many queued events one listener handles per Step.
const maxDrain = 64

// Kernel owns timers and listeners.
type Kernel struct {
	now uint64

	timers    []*Timer
	listeners []*Listener
}

// New creates a kernel instance.
func New() *Kernel {
	return &Kernel{}
}

// Now returns the last tick passed to Step.
func (k *Kernel) Now() uint64 { return k.now }

// Pending returns the number of live timers and listeners.
func (k *Kernel) Pending() (timers, listeners int) {
	for _, t := range k.timers {
		if !t.stopped {
			timers++
		}
	}
	for _, l := range k.listeners {
		if !l.removed {
			listeners++
		}
	}
	return timers, listeners
}

// Timer is a recurring callback measured in ticks.
type Timer struct {
	interval uint64
	next     uint64
	fn       func(now uint64)
	stopped  bool
}

// Every registers fn to run every interval ticks, first at Now()+interval.
//
// A timer fires at most once per Step. If Step is called late, the missed periods
// are dropped rather than replayed.
func (k *Kernel) Every(interval uint64, fn func(now uint64)) *Timer {
	if interval == 0 {
		interval = 1
	}
	t := &Timer{interval: interval, next: k.now + interval, fn: fn}
	k.timers = append(k.timers, t)
	return t
}

// Stop cancels the timer. It is safe to call more than once and from inside callbacks.
func (t *Timer) Stop() {
	if t == nil {
		return
	}
	t.stopped = true
}

// Stopped reports whether Stop was called.
func (t *Timer) Stopped() bool { return t == nil || t.stopped }

// Listener drains a channel on every Step.
type Listener struct {
	drain   func()
	removed bool
}

// Listen registers fn for values received on ch. A closed channel removes the listener.
func Listen[T any](k *Kernel, ch <-chan T, fn func(T)) *Listener {
	l := &Listener{}
	if ch == nil || fn == nil {
		l.removed = true
		return l
	}
	l.drain = func() {
		for i := 0; i < maxDrain && !l.removed; i++ {
			select {
			case v, ok := <-ch:
				if !ok {
					l.removed = true
					return
				}
				fn(v)
			default:
				return
			}
		}
	}
	k.listeners = append(k.listeners, l)
	return l
}

// Remove detaches the listener. Events still queued in the channel are left there.
func (l *Listener) Remove() {
	if l == nil {
		return
	}
	l.removed = true
}

// Removed reports whether the listener is detached.
func (l *Listener) Removed() bool { return l == nil || l.removed }

// Step advances the kernel to now: listeners run first, then due timers in
// registration order. Timers and listeners added during Step run from the next Step.
func (k *Kernel) Step(now uint64) {
	if now > k.now {
		k.now = now
	}

	listeners := k.listeners
	for _, l := range listeners {
		if !l.removed {
			l.drain()
		}
	}

	timers := k.timers
	for _, t := range timers {
		if t.stopped || k.now < t.next {
			continue
		}
		t.next += t.interval
		if t.next <= k.now {
			t.next = k.now + t.interval
		}
		t.fn(k.now)
	}

	k.compact()
}

func (k *Kernel) compact() {
	timers := k.timers[:0]
	for _, t := range k.timers {
		if !t.stopped {
			timers = append(timers, t)
		}
	}
	clear(k.timers[len(timers):])
	k.timers = timers

	listeners := k.listeners[:0]
	for _, l := range k.listeners {
		if !l.removed {
			listeners = append(listeners, l)
		}
	}
	clear(k.listeners[len(listeners):])
	k.listeners = listeners
}
