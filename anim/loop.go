// Package anim is the cooperative scheduler and animation toolkit shared by every
// visualization.
//
// A Loop is the single executor of engine callbacks: animation frames, timers and
// events posted from other goroutines all run on the goroutine that drives the loop
// (Run in production, Advance in tests). Engine state is therefore never locked;
// it is only ever touched from loop callbacks.
package anim

import (
	"context"
	"sort"
	"sync"
	"time"
)

// FrameInterval is the frame period of a running loop (60 fps).
const FrameInterval = time.Second / 60

// Handle identifies a pending frame or timer callback. The zero Handle is never issued.
type Handle uint64

type timer struct {
	id Handle
	at time.Duration
	fn func()
}

type frame struct {
	id Handle
	fn func(now time.Duration)
}

// Loop is a single-threaded frame and timer scheduler with a monotonic clock that
// starts at zero. Only Post is safe to call from other goroutines.
type Loop struct {
	mu     sync.Mutex
	posted []func()
	wake   chan struct{}

	now    time.Duration
	nextID Handle
	frames []frame
	timers []timer
	live   map[Handle]bool
}

// NewLoop creates an idle loop at time zero.
func NewLoop() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		live: make(map[Handle]bool),
	}
}

// Now returns the loop clock.
func (l *Loop) Now() time.Duration { return l.now }

// Post queues fn to run on the loop goroutine at the start of the next tick.
// It is the only method safe for concurrent use.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.posted = append(l.posted, fn)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// RequestFrame schedules fn for the next frame. Frames requested from inside a
// frame callback run on the following tick.
func (l *Loop) RequestFrame(fn func(now time.Duration)) Handle {
	id := l.issue()
	l.frames = append(l.frames, frame{id: id, fn: fn})
	return id
}

// After schedules fn to run once d has elapsed on the loop clock.
func (l *Loop) After(d time.Duration, fn func()) Handle {
	if d < 0 {
		d = 0
	}
	id := l.issue()
	l.timers = append(l.timers, timer{id: id, at: l.now + d, fn: fn})
	sort.SliceStable(l.timers, func(i, j int) bool { return l.timers[i].at < l.timers[j].at })
	return id
}

// Cancel drops a pending callback. Cancelling a fired or unknown handle is a no-op.
func (l *Loop) Cancel(h Handle) {
	delete(l.live, h)
}

// Pending reports the number of live frame and timer callbacks.
func (l *Loop) Pending() int { return len(l.live) }

func (l *Loop) issue() Handle {
	l.nextID++
	l.live[l.nextID] = true
	return l.nextID
}

// Tick advances the clock to now and runs, in order: posted events, due timers
// (earliest first), then the frames requested before this tick.
func (l *Loop) Tick(now time.Duration) {
	if now > l.now {
		l.now = now
	}

	l.mu.Lock()
	posted := l.posted
	l.posted = nil
	l.mu.Unlock()
	for _, fn := range posted {
		fn()
	}

	for len(l.timers) > 0 && l.timers[0].at <= l.now {
		t := l.timers[0]
		l.timers = l.timers[1:]
		if !l.live[t.id] {
			continue
		}
		delete(l.live, t.id)
		t.fn()
	}

	frames := l.frames
	l.frames = nil
	for _, f := range frames {
		if !l.live[f.id] {
			continue
		}
		delete(l.live, f.id)
		f.fn(l.now)
	}
}

// Advance runs the loop on a virtual clock for d, one frame interval at a time.
// Advance(0) runs a single tick at the current time.
func (l *Loop) Advance(d time.Duration) {
	if d <= 0 {
		l.Tick(l.now)
		return
	}
	end := l.now + d
	for l.now < end {
		step := FrameInterval
		if l.now+step > end {
			step = end - l.now
		}
		l.Tick(l.now + step)
	}
}

// Settle advances until nothing is pending or max has elapsed. It returns true
// when the loop went idle.
func (l *Loop) Settle(max time.Duration) bool {
	end := l.now + max
	for l.now < end {
		l.Tick(l.now + FrameInterval)
		if l.idle() {
			return true
		}
	}
	return l.idle()
}

func (l *Loop) idle() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.live) == 0 && len(l.posted) == 0
}

// Run drives the loop in real time until ctx is cancelled. Posted events wake it
// immediately; frames and timers are serviced every FrameInterval.
func (l *Loop) Run(ctx context.Context) error {
	start := time.Now().Add(-l.now)
	ticker := time.NewTicker(FrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case <-l.wake:
		}
		l.Tick(time.Since(start))
	}
}
